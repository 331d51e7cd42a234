// Package config loads and validates .memoria.json (or .memoria.toml), the
// closed-schema per-repository configuration file the analysis pipeline
// consults for thresholds, ignore patterns, panic keyword weights, and risk
// weights.
//
// Loading never throws into the pipeline: a missing, malformed, or
// out-of-range config file simply yields a nil *Config, and callers fall
// back to Defaults() -- the same stance the teacher's own config loader
// takes toward a missing project config, generalized here to reject
// unrecognized top-level keys too.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	koanfjson "github.com/knadh/koanf/parsers/json"
	koanftoml "github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileName is the default config file Memoria reads from a repository root.
// FileNameTOML is tried as a fallback when FileName doesn't exist, for
// repositories that prefer a TOML config over JSON.
const (
	FileName     = ".memoria.json"
	FileNameTOML = ".memoria.toml"
)

// Thresholds holds the tunable numeric gates used across the pipeline.
type Thresholds struct {
	CouplingPercent float64 `koanf:"couplingPercent" json:"couplingPercent"`
	DriftDays       float64 `koanf:"driftDays" json:"driftDays"`
	AnalysisWindow  int     `koanf:"analysisWindow" json:"analysisWindow"`
}

// RiskWeights is the per-signal weighting of the compound risk score.
// Fields are non-negative; they need not sum to 1 (the calculator does not
// normalize them, it clamps the weighted sum to 0..100), but negative
// weights are a validation error.
type RiskWeights struct {
	Volatility float64 `koanf:"volatility" json:"volatility"`
	Coupling   float64 `koanf:"coupling" json:"coupling"`
	Drift      float64 `koanf:"drift" json:"drift"`
	Importers  float64 `koanf:"importers" json:"importers"`
}

// Config is the effective configuration after merging defaults with
// .memoria.json. Zero value is never valid standalone -- always start from
// Defaults() and overlay.
type Config struct {
	Thresholds    Thresholds         `koanf:"thresholds" json:"thresholds"`
	Ignore        []string           `koanf:"ignore" json:"ignore"`
	PanicKeywords map[string]float64 `koanf:"panicKeywords" json:"panicKeywords"`
	RiskWeights   RiskWeights        `koanf:"riskWeights" json:"riskWeights"`
}

// recognizedTopLevelKeys is the closed set of keys .memoria.json may
// declare. Any other top-level key fails validation outright.
var recognizedTopLevelKeys = map[string]bool{
	"thresholds":    true,
	"ignore":        true,
	"panicKeywords": true,
	"riskWeights":   true,
}

// DefaultThresholds are the static fallback thresholds used when neither
// config nor the adaptive velocity model applies.
func DefaultThresholds() Thresholds {
	return Thresholds{CouplingPercent: 15, DriftDays: 7, AnalysisWindow: 50}
}

// DefaultRiskWeights sum to 1.0: volatility carries the most signal, then
// coupling, then drift, then import fan-out.
func DefaultRiskWeights() RiskWeights {
	return RiskWeights{Volatility: 0.35, Coupling: 0.30, Drift: 0.20, Importers: 0.15}
}

// DefaultPanicKeywords maps a commit-message term to its weight (0..3);
// heavier words pull a commit's panic contribution up more. Base set,
// mergeable with user overrides via EffectivePanicKeywords.
func DefaultPanicKeywords() map[string]float64 {
	return map[string]float64{
		"security":      3,
		"vulnerability": 3,
		"crash":         3,
		"data loss":     3,
		"revert":        2,
		"hotfix":        2,
		"breaking":      2,
		"critical":      2,
		"fix":           1,
		"bug":           1,
		"patch":         1,
		"error":         1,
		"refactor":      0.5,
		"cleanup":       0.5,
	}
}

// Defaults returns a fully populated Config with no user overrides.
func Defaults() *Config {
	return &Config{
		Thresholds:    DefaultThresholds(),
		Ignore:        nil,
		PanicKeywords: DefaultPanicKeywords(),
		RiskWeights:   DefaultRiskWeights(),
	}
}

// Load reads repoRoot/.memoria.json, falling back to repoRoot/.memoria.toml
// when the JSON file is absent, parses and validates whichever is found, and
// returns the merged Config. It returns (nil, nil) -- not an error -- for a
// missing file, invalid syntax, an unrecognized top-level key, or any
// out-of-range value; callers use Defaults() in every such case. Any other
// read failure also yields (nil, nil): the returned error is always nil.
func Load(repoRoot string) (*Config, error) {
	path := filepath.Join(repoRoot, FileName)
	parser := koanf.Parser(koanfjson.Parser())
	probeKeys := probeJSONKeys

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, nil
		}
		path = filepath.Join(repoRoot, FileNameTOML)
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, nil
		}
		parser = koanftoml.Parser()
		probeKeys = probeTOMLKeys
	}

	keys, err := probeKeys(raw)
	if err != nil {
		return nil, nil
	}
	for _, key := range keys {
		if !recognizedTopLevelKeys[key] {
			return nil, nil
		}
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, nil
	}

	cfg := Defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, nil
	}

	if !cfg.valid() {
		return nil, nil
	}
	return cfg, nil
}

// probeJSONKeys lists the top-level keys of a JSON config, ahead of the
// koanf unmarshal, so an unrecognized key fails validation before any field
// merge happens.
func probeJSONKeys(raw []byte) ([]string, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(probe))
	for key := range probe {
		keys = append(keys, key)
	}
	return keys, nil
}

// probeTOMLKeys does the same for a TOML config, parsing directly with the
// koanf TOML parser rather than going through a provider.
func probeTOMLKeys(raw []byte) ([]string, error) {
	parsed, err := koanftoml.Parser().Unmarshal(raw)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(parsed))
	for key := range parsed {
		keys = append(keys, key)
	}
	return keys, nil
}

func (c *Config) valid() bool {
	t := c.Thresholds
	if t.CouplingPercent < 0 || t.CouplingPercent > 100 {
		return false
	}
	if t.DriftDays < 0 {
		return false
	}
	if t.AnalysisWindow < 1 || t.AnalysisWindow > 200 {
		return false
	}
	for _, w := range []float64{c.RiskWeights.Volatility, c.RiskWeights.Coupling, c.RiskWeights.Drift, c.RiskWeights.Importers} {
		if w < 0 {
			return false
		}
	}
	for _, w := range c.PanicKeywords {
		if w < 0 || w > 3 {
			return false
		}
	}
	return true
}

// EffectiveRiskWeights merges cfg's RiskWeights over DefaultRiskWeights,
// field by field: a zero field in cfg falls back to the default rather than
// being treated as an explicit zero-weight override. cfg may be nil.
func EffectiveRiskWeights(cfg *Config) RiskWeights {
	defaults := DefaultRiskWeights()
	if cfg == nil {
		return defaults
	}
	w := cfg.RiskWeights
	if w.Volatility == 0 {
		w.Volatility = defaults.Volatility
	}
	if w.Coupling == 0 {
		w.Coupling = defaults.Coupling
	}
	if w.Drift == 0 {
		w.Drift = defaults.Drift
	}
	if w.Importers == 0 {
		w.Importers = defaults.Importers
	}
	return w
}

// EffectivePanicKeywords merges the base keyword set with cfg's overrides;
// user keys win on collision. cfg may be nil.
func EffectivePanicKeywords(cfg *Config) map[string]float64 {
	merged := DefaultPanicKeywords()
	if cfg == nil {
		return merged
	}
	for k, v := range cfg.PanicKeywords {
		merged[k] = v
	}
	return merged
}

// RepoVelocity is the commit-rate signal AdaptiveThresholds uses to pick
// defaults when the caller hasn't overridden a field explicitly.
type RepoVelocity struct {
	CommitsPerWeek float64
	TotalCommits   int
}

// AdaptiveThresholds derives {couplingThreshold, driftDays, analysisWindow}
// from repo velocity, then lets any explicitly-set config field override the
// derived value. A Config field counts as "explicitly set" when it differs
// from the zero value of its type -- AnalysisWindow's zero is 0, which can
// never be a valid window, so a present-but-zero window is always treated as
// unset.
func AdaptiveThresholds(v RepoVelocity, cfg *Config) Thresholds {
	var derived Thresholds
	switch {
	case v.CommitsPerWeek >= 25:
		derived.CouplingPercent = 10
		derived.DriftDays = 3
	case v.CommitsPerWeek <= 2:
		derived.CouplingPercent = 25
		derived.DriftDays = 14
	default:
		derived.CouplingPercent = 15
		derived.DriftDays = 7
	}

	derived.AnalysisWindow = clampWindow(v.TotalCommits)

	if cfg == nil {
		return derived
	}
	if cfg.Thresholds.CouplingPercent != 0 {
		derived.CouplingPercent = cfg.Thresholds.CouplingPercent
	}
	if cfg.Thresholds.DriftDays != 0 {
		derived.DriftDays = cfg.Thresholds.DriftDays
	}
	if cfg.Thresholds.AnalysisWindow != 0 {
		derived.AnalysisWindow = cfg.Thresholds.AnalysisWindow
	}
	return derived
}

// clampWindow scales the analysis window with total repo commits -- a
// quiet, young repo gets a small window; a long-lived one is capped at 200
// so a single analyze_file call never has to walk the entire history.
func clampWindow(totalCommits int) int {
	window := totalCommits / 5
	if window < 1 {
		window = 1
	}
	if window > 200 {
		window = 200
	}
	return window
}
