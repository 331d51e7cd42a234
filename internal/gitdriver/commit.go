package gitdriver

import "time"

// Commit is a single entry from a log_window or log_pickaxe/log_line_range
// call. ChangedFiles is the raw, unfiltered list of repo-relative paths;
// IgnoreFilter is applied by the caller (AnalysisContext), not here, so
// GitDriver stays a pure streaming layer over git's own output.
type Commit struct {
	SHA          string
	AuthorName   string
	AuthorEmail  string
	CommittedAt  time.Time
	Message      string
	ChangedFiles []string
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	for i, r := range c.Message {
		if r == '\n' {
			return c.Message[:i]
		}
	}
	return c.Message
}

// CommitWindow is an ordered, contiguous sequence of commits, newest first.
type CommitWindow struct {
	Commits []Commit
}
