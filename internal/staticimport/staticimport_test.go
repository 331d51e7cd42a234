package staticimport

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/byronwade/memoria/internal/analysiscontext"
	"github.com/stretchr/testify/require"
)

func initFixtureRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoErrorf(t, err, "git %v: %s", args, out)
	}

	run("init", "-q", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.js"), []byte("export function widget() {}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("import { widget } from \"./widget\"\n"), 0644))
	run("add", ".")
	run("commit", "-q", "-m", "add widget and app")

	return dir
}

func TestComputeFindsTextualImporters(t *testing.T) {
	dir := initFixtureRepo(t)
	analysiscontext.Reset()
	t.Cleanup(analysiscontext.Reset)
	ac, err := analysiscontext.Get(dir)
	require.NoError(t, err)

	importers, err := Compute(context.Background(), ac, "widget.js")
	require.NoError(t, err)
	require.Len(t, importers, 1)
	require.Equal(t, "app.js", string(importers[0]))
}

func TestComputeExcludesTargetItself(t *testing.T) {
	dir := initFixtureRepo(t)
	analysiscontext.Reset()
	t.Cleanup(analysiscontext.Reset)
	ac, err := analysiscontext.Get(dir)
	require.NoError(t, err)

	importers, err := Compute(context.Background(), ac, "app.js")
	require.NoError(t, err)
	require.Empty(t, importers)
}
