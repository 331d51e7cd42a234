// Package risk computes the compound 0-100 risk score from the other
// engines' outputs, weighted by Config.RiskWeights.
package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/byronwade/memoria/internal/config"
	"github.com/byronwade/memoria/pkg/report"
)

const (
	topCoupledForMean     = 3
	couplingMeanMultiplier = 1.5
	driftPerItem          = 20
	importerPerItem       = 10

	volatilityVisibility = 25
	couplingVisibility   = 30
	driftVisibility      = 1
	importerVisibility   = 5
)

// Compute derives the RiskAssessment from a file's volatility, coupling,
// drift, and importer signals, weighted per weights.
func Compute(vol report.VolatilityResult, coupled []report.CouplingEdge, drift []report.DriftItem, importerCount int, weights config.RiskWeights) report.RiskAssessment {
	volComp := float64(vol.PanicScore)
	couplingComp := couplingComponent(coupled)
	driftComp := math.Min(100, float64(len(drift))*driftPerItem)
	importerComp := math.Min(100, float64(importerCount)*importerPerItem)

	score := volComp*weights.Volatility + couplingComp*weights.Coupling + driftComp*weights.Drift + importerComp*weights.Importers
	rounded := int(math.Round(clampPercent(score)))

	return report.RiskAssessment{
		Score:   rounded,
		Level:   report.LevelForScore(rounded),
		Factors: factors(vol.PanicScore, couplingComp, len(coupled), len(drift), importerCount),
	}
}

func couplingComponent(coupled []report.CouplingEdge) float64 {
	if len(coupled) == 0 {
		return 0
	}
	n := len(coupled)
	if n > topCoupledForMean {
		n = topCoupledForMean
	}
	sorted := make([]report.CouplingEdge, len(coupled))
	copy(sorted, coupled)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	var sum int
	for i := 0; i < n; i++ {
		sum += sorted[i].Score
	}
	mean := float64(sum) / float64(n)
	return math.Min(100, mean*couplingMeanMultiplier)
}

func factors(panicScore int, couplingComp float64, coupledCount, driftCount, importerCount int) []string {
	var out []string
	if panicScore >= volatilityVisibility {
		out = append(out, fmt.Sprintf("High volatility (%d%%)", panicScore))
	}
	if couplingComp >= couplingVisibility {
		out = append(out, fmt.Sprintf("Tightly coupled (%d files)", coupledCount))
	}
	if driftCount >= driftVisibility {
		out = append(out, "Stale coupled files")
	}
	if importerCount >= importerVisibility {
		out = append(out, fmt.Sprintf("Heavily imported (%d dependents)", importerCount))
	}
	return out
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

