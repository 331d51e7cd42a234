package drift

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/byronwade/memoria/internal/analysiscontext"
	"github.com/byronwade/memoria/pkg/report"
	"github.com/stretchr/testify/require"
)

func writeWithMtime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestComputeFlagsStaleCoupledFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	writeWithMtime(t, filepath.Join(dir, "target.go"), now)
	writeWithMtime(t, filepath.Join(dir, "stale.go"), now.Add(-30*24*time.Hour))
	writeWithMtime(t, filepath.Join(dir, "fresh.go"), now.Add(-1*time.Hour))

	ac := &analysiscontext.Context{RepoRoot: dir}
	coupled := []report.CouplingEdge{{File: "stale.go"}, {File: "fresh.go"}}

	items := Compute(ac, "target.go", coupled, 7)
	require.Len(t, items, 1)
	require.Equal(t, "stale.go", items[0].File)
	require.GreaterOrEqual(t, items[0].DaysOld, 29)
}

func TestComputeMissingTargetReturnsNil(t *testing.T) {
	dir := t.TempDir()
	ac := &analysiscontext.Context{RepoRoot: dir}
	items := Compute(ac, "nope.go", []report.CouplingEdge{{File: "a.go"}}, 7)
	require.Nil(t, items)
}

func TestComputeSkipsMissingCoupledFiles(t *testing.T) {
	dir := t.TempDir()
	writeWithMtime(t, filepath.Join(dir, "target.go"), time.Now())
	ac := &analysiscontext.Context{RepoRoot: dir}

	items := Compute(ac, "target.go", []report.CouplingEdge{{File: "gone.go"}}, 7)
	require.Nil(t, items)
}
