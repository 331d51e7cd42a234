package gitdriver

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// regexMetaRe matches characters that only make sense in a regular
// expression; their presence picks -G (regex pickaxe) over -S (literal
// string pickaxe, which also counts occurrences rather than testing for any
// change -- the cheaper and more common case for a plain identifier query).
var regexMetaRe = regexp.MustCompile(`[.*+?^${}()|[\]\\]`)

// LogPickaxe finds commits whose diff introduces or removes query, optionally
// scoped to pathFilter, newest first, capped at limit.
func (d *Driver) LogPickaxe(ctx context.Context, query, pathFilter string, limit int) (*CommitWindow, string, error) {
	if limit <= 0 {
		limit = 50
	}

	pickaxeFlag := "-S"
	if regexMetaRe.MatchString(query) {
		pickaxeFlag = "-G"
	}

	args := []string{
		"log",
		pickaxeFlag, query,
		"-n", strconv.Itoa(limit),
		"--name-only",
		"--format=" + headerFormat,
	}
	if pathFilter != "" {
		args = append(args, "--", pathFilter)
	}

	stdout, stderr, err := d.run(ctx, args...)
	if err != nil {
		lower := strings.ToLower(stderr.String())
		if strings.Contains(lower, "does not have any commits") ||
			strings.Contains(lower, "bad revision") {
			return &CommitWindow{}, "", nil
		}
		if perr := d.Probe(ctx); perr != nil {
			return nil, "", perr
		}
		return &CommitWindow{}, "git failed", nil
	}

	window, _ := parseLogWindow(stdout.String())
	return window, "", nil
}
