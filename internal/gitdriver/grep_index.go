package gitdriver

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// GrepIndex returns the repo-relative paths of every tracked file whose
// content matches pattern (an extended regular expression), using a single
// `git grep -l -E` invocation against HEAD rather than walking the tree
// ourselves -- git already maintains the index git grep reads.
func (d *Driver) GrepIndex(ctx context.Context, pattern string) ([]string, string, error) {
	stdout, stderr, err := d.run(ctx, "grep", "-l", "-I", "-E", pattern, "HEAD")
	if err != nil {
		lower := strings.ToLower(stderr.String())
		if strings.Contains(lower, "does not have any commits") {
			return nil, "", nil
		}
		if exitedWithNoMatches(err) {
			return nil, "", nil
		}
		if perr := d.Probe(ctx); perr != nil {
			return nil, "", perr
		}
		return nil, "git failed", nil
	}

	var paths []string
	_ = scanLines(stdout, func(line string) error {
		path, ok := strings.CutPrefix(line, "HEAD:")
		if !ok {
			path = line
		}
		path = strings.TrimSpace(path)
		if path != "" {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, "", nil
}

// exitedWithNoMatches recognizes git grep's convention of exiting with
// status 1 and no stderr output when nothing matched -- that is not a
// failure, just an empty result set.
func exitedWithNoMatches(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	return exitErr.ExitCode() == 1
}
