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

func TestDedupeEdgesKeepsFirstOccurrence(t *testing.T) {
	edges := []report.CouplingEdge{
		{File: "a.go", Score: 10},
		{File: "a.go", Score: 90},
		{File: "b.go", Score: 50},
	}
	deduped := dedupeEdges(edges)
	require.Len(t, deduped, 2)
	assert.Equal(t, 10, deduped[0].Score)
}

func TestCapEdgesSortsDescendingAndCaps(t *testing.T) {
	edges := make([]report.CouplingEdge, 0, 8)
	for i := 0; i < 8; i++ {
		edges = append(edges, report.CouplingEdge{File: "f.go", Score: i})
	}
	capped := capEdges(edges)
	assert.Len(t, capped, maxSecondaryEdges)
	assert.Equal(t, 7, capped[0].Score)
}

func TestExtractRoutesNormalizesDynamicSegments(t *testing.T) {
	routes := extractRoutes(routeDefRe, `router.get("/users/:id", handler)`)
	require.Len(t, routes, 1)
	assert.Equal(t, "/users/:param", routes[0])
}

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
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.go"), []byte("package pkg\n\nfunc widget() {}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget_test.go"), []byte("package pkg\n\nfunc testWidget() { widget() }\n"), 0644))
	run("add", ".")
	run("commit", "-q", "-m", "add widget and its test")

	return dir
}

func TestComputeTestFindsMatchingTestFile(t *testing.T) {
	dir := initFixtureRepo(t)
	analysiscontext.Reset()
	t.Cleanup(analysiscontext.Reset)
	ac, err := analysiscontext.Get(dir)
	require.NoError(t, err)

	edges, err := ComputeTest(context.Background(), ac, "widget.go")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "widget_test.go", edges[0].File)
}

func TestComputeTestReverseMapsFromTestFile(t *testing.T) {
	dir := initFixtureRepo(t)
	analysiscontext.Reset()
	t.Cleanup(analysiscontext.Reset)
	ac, err := analysiscontext.Get(dir)
	require.NoError(t, err)

	edges, err := ComputeTest(context.Background(), ac, "widget_test.go")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "widget.go", edges[0].File)
}
