package gitdriver

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LogLineRange returns, newest first and capped at limit, every commit that
// touched lines [startLine, endLine] of file on the current branch. It shells
// to `git log -L`, the one history query with no equivalent anywhere in
// go-git -- go-git's blame walks a single revision, not a commit history.
// An inverted range (endLine < startLine) is never a valid query and returns
// an empty window rather than silently swapping the bounds.
func (d *Driver) LogLineRange(ctx context.Context, file string, startLine, endLine, limit int) (*CommitWindow, string, error) {
	if limit <= 0 {
		limit = 50
	}
	if endLine < startLine {
		return &CommitWindow{}, "", nil
	}

	rel := canonicalRelPath(d.repoRoot, file)
	spec := fmt.Sprintf("%d,%d:%s", startLine, endLine, rel)

	stdout, stderr, err := d.run(ctx, "log",
		"-L", spec,
		"-n", strconv.Itoa(limit),
	)
	if err != nil {
		lower := strings.ToLower(stderr.String())
		if strings.Contains(lower, "does not have any commits") ||
			strings.Contains(lower, "has only") ||
			strings.Contains(lower, "outside diff hunk") {
			return &CommitWindow{}, "", nil
		}
		if perr := d.Probe(ctx); perr != nil {
			return nil, "", perr
		}
		return &CommitWindow{}, "git failed", nil
	}

	window := parseLineRangeLog(stdout.String())
	if len(window.Commits) > limit {
		window.Commits = window.Commits[:limit]
	}
	return window, "", nil
}

// parseLineRangeLog parses `git log -L` output: each commit starts with a
// "commit <sha>" line, followed by Author/Date/message lines, followed by a
// "diff --git" hunk that this function does not need to interpret -- unlike
// --name-only mode, -L has no machine-friendly header format, so headers are
// recovered from the plain commit/Author/Date lines git always emits first.
func parseLineRangeLog(output string) *CommitWindow {
	window := &CommitWindow{}
	lines := strings.Split(output, "\n")

	var current *Commit
	var inMessage bool
	var messageLines []string

	flush := func() {
		if current != nil {
			current.Message = strings.TrimRight(strings.Join(messageLines, "\n"), "\n")
			window.Commits = append(window.Commits, *current)
		}
		current = nil
		messageLines = nil
		inMessage = false
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "commit "):
			flush()
			sha := strings.TrimSpace(strings.TrimPrefix(line, "commit "))
			current = &Commit{SHA: sha}
		case current != nil && strings.HasPrefix(line, "Author: "):
			current.AuthorName, current.AuthorEmail = splitAuthorLine(strings.TrimPrefix(line, "Author: "))
		case current != nil && strings.HasPrefix(line, "Date: "):
			current.CommittedAt = parseGitDate(strings.TrimSpace(strings.TrimPrefix(line, "Date: ")))
		case current != nil && strings.HasPrefix(line, "diff "):
			inMessage = false
		case current != nil && line == "" && !inMessage && current.Message == "" && len(messageLines) == 0:
			inMessage = true
		case current != nil && inMessage:
			messageLines = append(messageLines, strings.TrimPrefix(line, "    "))
		}
	}
	flush()

	return window
}

func splitAuthorLine(s string) (name, email string) {
	start := strings.Index(s, "<")
	end := strings.Index(s, ">")
	if start < 0 || end < 0 || end < start {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(s[:start]), s[start+1 : end]
}

// parseGitDate parses the default `git log` date format, e.g.
// "Mon Jan 2 15:04:05 2006 -0700". An unparseable value yields the zero time
// rather than an error -- a timestamp we can't read is not worth failing the
// whole query over.
func parseGitDate(s string) time.Time {
	t, err := time.Parse("Mon Jan 2 15:04:05 2006 -0700", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
