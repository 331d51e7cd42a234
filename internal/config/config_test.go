package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsNil(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadValidJSON(t *testing.T) {
	dir := t.TempDir()
	body := `{
		"thresholds": {"couplingPercent": 20, "driftDays": 5, "analysisWindow": 80},
		"ignore": ["vendor/**"],
		"riskWeights": {"volatility": 0.5, "coupling": 0.2, "drift": 0.2, "importers": 0.1}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 20.0, cfg.Thresholds.CouplingPercent)
	assert.Equal(t, []string{"vendor/**"}, cfg.Ignore)
}

func TestLoadValidTOMLFallback(t *testing.T) {
	dir := t.TempDir()
	body := "[thresholds]\ncouplingPercent = 30\ndriftDays = 10\nanalysisWindow = 40\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileNameTOML), []byte(body), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 30.0, cfg.Thresholds.CouplingPercent)
}

func TestLoadRejectsUnrecognizedKey(t *testing.T) {
	dir := t.TempDir()
	body := `{"thresholds": {"couplingPercent": 20}, "notAKey": true}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadRejectsOutOfRangeThreshold(t *testing.T) {
	dir := t.TempDir()
	body := `{"thresholds": {"couplingPercent": 500}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestEffectiveRiskWeightsMergesOverZero(t *testing.T) {
	cfg := &Config{RiskWeights: RiskWeights{Volatility: 0.9}}
	w := EffectiveRiskWeights(cfg)
	assert.Equal(t, 0.9, w.Volatility)
	assert.Equal(t, DefaultRiskWeights().Coupling, w.Coupling)
}

func TestEffectiveRiskWeightsNilConfig(t *testing.T) {
	assert.Equal(t, DefaultRiskWeights(), EffectiveRiskWeights(nil))
}

func TestEffectivePanicKeywordsMergesOverrides(t *testing.T) {
	cfg := &Config{PanicKeywords: map[string]float64{"bug": 3, "yolo": 2}}
	merged := EffectivePanicKeywords(cfg)
	assert.Equal(t, 3.0, merged["bug"])
	assert.Equal(t, 2.0, merged["yolo"])
	assert.Equal(t, DefaultPanicKeywords()["security"], merged["security"])
}

func TestAdaptiveThresholdsVelocityBuckets(t *testing.T) {
	fast := AdaptiveThresholds(RepoVelocity{CommitsPerWeek: 40}, nil)
	assert.Equal(t, 10.0, fast.CouplingPercent)
	assert.Equal(t, 3.0, fast.DriftDays)

	slow := AdaptiveThresholds(RepoVelocity{CommitsPerWeek: 1}, nil)
	assert.Equal(t, 25.0, slow.CouplingPercent)
	assert.Equal(t, 14.0, slow.DriftDays)

	mid := AdaptiveThresholds(RepoVelocity{CommitsPerWeek: 10}, nil)
	assert.Equal(t, 15.0, mid.CouplingPercent)
	assert.Equal(t, 7.0, mid.DriftDays)
}

func TestAdaptiveThresholdsConfigOverridesDerived(t *testing.T) {
	cfg := &Config{Thresholds: Thresholds{CouplingPercent: 99}}
	th := AdaptiveThresholds(RepoVelocity{CommitsPerWeek: 40}, cfg)
	assert.Equal(t, 99.0, th.CouplingPercent)
	assert.Equal(t, 3.0, th.DriftDays) // untouched field keeps the derived value
}

func TestClampWindow(t *testing.T) {
	assert.Equal(t, 1, clampWindow(0))
	assert.Equal(t, 200, clampWindow(10000))
	assert.Equal(t, 20, clampWindow(100))
}
