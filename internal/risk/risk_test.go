package risk

import (
	"testing"

	"github.com/byronwade/memoria/internal/config"
	"github.com/byronwade/memoria/pkg/report"
	"github.com/stretchr/testify/assert"
)

func TestComputeNoSignalsIsZero(t *testing.T) {
	got := Compute(report.VolatilityResult{}, nil, nil, 0, config.DefaultRiskWeights())
	assert.Equal(t, 0, got.Score)
	assert.Equal(t, report.RiskLow, got.Level)
	assert.Empty(t, got.Factors)
}

func TestComputeHighVolatilityDominates(t *testing.T) {
	vol := report.VolatilityResult{PanicScore: 100}
	got := Compute(vol, nil, nil, 0, config.DefaultRiskWeights())
	assert.InDelta(t, 35, got.Score, 1)
	assert.Contains(t, got.Factors[0], "High volatility")
}

func TestComputeCriticalScoreLevel(t *testing.T) {
	vol := report.VolatilityResult{PanicScore: 100}
	coupled := []report.CouplingEdge{{File: "a.go", Score: 100}, {File: "b.go", Score: 100}}
	drift := []report.DriftItem{{File: "a.go", DaysOld: 30}}
	got := Compute(vol, coupled, drift, 20, config.DefaultRiskWeights())
	assert.Equal(t, report.RiskCritical, got.Level)
	assert.GreaterOrEqual(t, got.Score, 75)
}

func TestComputeScoreNeverExceeds100(t *testing.T) {
	vol := report.VolatilityResult{PanicScore: 1000}
	coupled := []report.CouplingEdge{{File: "a.go", Score: 1000}}
	got := Compute(vol, coupled, nil, 1000, config.RiskWeights{Volatility: 1, Coupling: 1, Drift: 1, Importers: 1})
	assert.LessOrEqual(t, got.Score, 100)
}

func TestCouplingComponentUsesTopThreeMean(t *testing.T) {
	edges := []report.CouplingEdge{
		{File: "a.go", Score: 10},
		{File: "b.go", Score: 90},
		{File: "c.go", Score: 80},
		{File: "d.go", Score: 70},
	}
	got := couplingComponent(edges)
	// mean of top 3 (90, 80, 70) = 80, times 1.5 = 120, clamped to 100.
	assert.Equal(t, 100.0, got)
}
