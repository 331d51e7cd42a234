package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// repoRootFor resolves the git repository root containing path (a file or
// directory, relative or absolute). It shells out to git directly rather
// than going through gitdriver.Driver, which requires a root to already be
// known.
func repoRootFor(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	dir := abs
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	cmd := exec.CommandContext(context.Background(), "git", "-C", dir, "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
