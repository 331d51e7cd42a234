package gitdriver

import (
	"context"
	"strconv"
	"strings"
)

// LogGrepMessage returns commits whose message matches query (case
// insensitive, extended regex), optionally restricted to pathFilter. Shares
// LogWindow's header format and flat --name-only shape, so the same
// parseLogWindow parser applies.
func (d *Driver) LogGrepMessage(ctx context.Context, query, pathFilter string, limit int) (*CommitWindow, string, error) {
	if limit <= 0 {
		limit = 50
	}

	args := []string{
		"log",
		"-n", strconv.Itoa(limit),
		"--name-only",
		"--format=" + headerFormat,
		"--grep=" + query,
		"--extended-regexp",
		"--regexp-ignore-case",
	}
	if pathFilter != "" {
		args = append(args, "--", pathFilter)
	}

	stdout, stderr, err := d.run(ctx, args...)
	if err != nil {
		if strings.Contains(strings.ToLower(stderr.String()), "does not have any commits") {
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
