package volatility

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/byronwade/memoria/internal/analysiscontext"
	"github.com/byronwade/memoria/internal/config"
	"github.com/byronwade/memoria/pkg/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanicWeightPicksHighestMatchingKeyword(t *testing.T) {
	keywords := config.DefaultPanicKeywords()
	assert.Equal(t, 3.0, panicWeight("fix: security vulnerability in auth", keywords))
	assert.Equal(t, 1.0, panicWeight("fix typo", keywords))
	assert.Equal(t, 0.0, panicWeight("add README section", keywords))
}

func TestDecayFactorHalvesAtHalfLife(t *testing.T) {
	now := time.Now()
	assert.InDelta(t, 1.0, decayFactor(now, now), 0.001)
	assert.InDelta(t, 0.5, decayFactor(now, now.Add(-30*24*time.Hour)), 0.01)
	assert.Equal(t, 0.0, decayFactor(now, time.Time{}))
}

func TestIsOwnedThreshold(t *testing.T) {
	assert.True(t, IsOwned(&report.AuthorShare{Percentage: 71}))
	assert.False(t, IsOwned(&report.AuthorShare{Percentage: 69}))
	assert.False(t, IsOwned(nil))
}

func initFixtureRepo(t *testing.T) string {
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
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0644))
	run("add", "a.go")
	run("commit", "-q", "-m", "add a.go")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\nfunc Fix() {}\n"), 0644))
	run("add", "a.go")
	run("commit", "-q", "-m", "critical: fix crash")

	return dir
}

func TestComputeAggregatesPanicScoreAndAuthors(t *testing.T) {
	dir := initFixtureRepo(t)
	analysiscontext.Reset()
	t.Cleanup(analysiscontext.Reset)
	ac, err := analysiscontext.Get(dir)
	require.NoError(t, err)

	result := Compute(context.Background(), ac, "a.go")
	assert.Equal(t, 2, result.CommitCount)
	assert.Greater(t, result.PanicScore, 0)
	require.NotNil(t, result.TopAuthor)
	assert.Equal(t, "Ada", result.TopAuthor.Name)
	assert.Equal(t, 100.0, result.TopAuthor.Percentage)
}

func TestComputeEmptyHistoryReturnsZeroValue(t *testing.T) {
	dir := initFixtureRepo(t)
	analysiscontext.Reset()
	t.Cleanup(analysiscontext.Reset)
	ac, err := analysiscontext.Get(dir)
	require.NoError(t, err)

	result := Compute(context.Background(), ac, "never-existed.go")
	assert.Equal(t, report.VolatilityResult{}, result)
}
