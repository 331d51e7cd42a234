package coupling

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/byronwade/memoria/internal/analysiscontext"
	"github.com/byronwade/memoria/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initCochangeRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Ada", "GIT_AUTHOR_EMAIL=ada@example.com",
			"GIT_COMMITTER_NAME=Ada", "GIT_COMMITTER_EMAIL=ada@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoErrorf(t, err, "git %v: %s", args, out)
	}

	run("init", "-q", "-b", "main")
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	write("service.go", "package pkg\n")
	write("handler.go", "package pkg\n")
	run("add", ".")
	run("commit", "-q", "-m", "initial commit")

	for i := 0; i < 3; i++ {
		write("service.go", "package pkg\nfunc V"+string(rune('A'+i))+"() {}\n")
		write("handler.go", "package pkg\nfunc H"+string(rune('A'+i))+"() {}\n")
		run("add", ".")
		run("commit", "-q", "-m", "update service and handler")
	}

	return dir
}

func TestComputeFindsCochangedFile(t *testing.T) {
	dir := initCochangeRepo(t)
	analysiscontext.Reset()
	t.Cleanup(analysiscontext.Reset)
	ac, err := analysiscontext.Get(dir)
	require.NoError(t, err)

	edges, err := Compute(context.Background(), ac, "service.go", 0)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "handler.go", edges[0].File)
	assert.Equal(t, report.SourceGit, edges[0].Source)
	assert.Equal(t, 100, edges[0].Score)
}

func TestComputeBelowMinimumHistoryReturnsNil(t *testing.T) {
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Ada", "GIT_AUTHOR_EMAIL=ada@example.com",
			"GIT_COMMITTER_NAME=Ada", "GIT_COMMITTER_EMAIL=ada@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoErrorf(t, err, "git %v: %s", args, out)
	}
	run("init", "-q", "-b", "main")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0644))
	run("add", ".")
	run("commit", "-q", "-m", "add a.go")

	analysiscontext.Reset()
	t.Cleanup(analysiscontext.Reset)
	ac, err := analysiscontext.Get(dir)
	require.NoError(t, err)

	edges, err := Compute(context.Background(), ac, "a.go", 0)
	require.NoError(t, err)
	assert.Nil(t, edges)
}

func TestComputeThresholdOverride(t *testing.T) {
	dir := initCochangeRepo(t)
	analysiscontext.Reset()
	t.Cleanup(analysiscontext.Reset)
	ac, err := analysiscontext.Get(dir)
	require.NoError(t, err)

	edges, err := Compute(context.Background(), ac, "service.go", 101)
	require.NoError(t, err)
	assert.Empty(t, edges)
}
