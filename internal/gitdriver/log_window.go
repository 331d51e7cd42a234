package gitdriver

import (
	"context"
	"strconv"
	"strings"
	"time"
)

const commitHeaderFieldCount = 5

// LogWindow returns the last n commits on the current branch, newest first.
// Output is parsed from a single `git log --name-only` invocation using the
// format "sha|ISO8601|authorName|authorEmail|subject" as the commit header,
// followed by one changed path per line and a blank line separating commits
// -- exactly the shape git produces natively, so the whole window streams
// through one process.
func (d *Driver) LogWindow(ctx context.Context, n int) (*CommitWindow, string, error) {
	if n <= 0 {
		n = 50
	}

	stdout, stderr, err := d.run(ctx, "log",
		"-n", strconv.Itoa(n),
		"--name-only",
		"--format="+headerFormat,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(stderr.String()), "does not have any commits") ||
			strings.Contains(strings.ToLower(stderr.String()), "bad default revision") ||
			strings.Contains(strings.ToLower(stderr.String()), "unknown revision") {
			return &CommitWindow{}, "", nil
		}
		if err2 := d.Probe(ctx); err2 != nil {
			return nil, "", err2
		}
		return &CommitWindow{}, "git failed", nil
	}

	window, perr := parseLogWindow(stdout.String())
	if perr != nil {
		return &CommitWindow{}, "git failed", nil
	}
	return window, "", nil
}

const headerFormat = "%H|%cI|%aN|%ae|%s"

func parseLogWindow(output string) (*CommitWindow, error) {
	lines := strings.Split(output, "\n")
	window := &CommitWindow{}

	var current *Commit
	flush := func() {
		if current != nil {
			window.Commits = append(window.Commits, *current)
			current = nil
		}
	}

	for _, line := range lines {
		if header, ok := parseCommitHeader(line); ok {
			flush()
			current = &header
			continue
		}
		if line == "" {
			continue
		}
		if current == nil {
			continue
		}
		current.ChangedFiles = append(current.ChangedFiles, line)
	}
	flush()

	return window, nil
}

// parseCommitHeader recognizes a header line (sha|date|author|email|subject)
// by requiring a 40-hex sha in the first field; file paths never match.
func parseCommitHeader(line string) (Commit, bool) {
	parts := strings.SplitN(line, "|", commitHeaderFieldCount)
	if len(parts) != commitHeaderFieldCount {
		return Commit{}, false
	}
	if !isHexSHA(parts[0]) {
		return Commit{}, false
	}
	committedAt, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		committedAt = time.Time{}
	}
	return Commit{
		SHA:         parts[0],
		CommittedAt: committedAt,
		AuthorName:  parts[2],
		AuthorEmail: parts[3],
		Message:     parts[4],
	}, true
}

func isHexSHA(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}
