// Package drift flags coupled files whose filesystem mtime is far apart
// from the target file's, in either direction, a proxy for "one of these
// files was updated but its historically coupled partner was not".
package drift

import (
	"os"
	"path/filepath"

	"github.com/byronwade/memoria/internal/analysiscontext"
	"github.com/byronwade/memoria/pkg/report"
)

const maxDriftItems = 5

const secondsPerDay = 86400

// Compute compares mtime(target) against mtime(f) for each coupled edge,
// recording f when the two have drifted apart by more than driftDays.
// Coupled files no longer present on disk are silently skipped.
func Compute(ac *analysiscontext.Context, targetPath string, coupled []report.CouplingEdge, driftDays float64) []report.DriftItem {
	targetInfo, err := os.Stat(filepath.Join(ac.RepoRoot, ac.Canonicalize(targetPath)))
	if err != nil {
		return nil
	}
	targetMtime := targetInfo.ModTime()

	var items []report.DriftItem
	for _, edge := range coupled {
		info, err := os.Stat(filepath.Join(ac.RepoRoot, edge.File))
		if err != nil {
			continue
		}
		delta := targetMtime.Sub(info.ModTime()).Seconds()
		if delta < 0 {
			delta = -delta
		}
		if delta/secondsPerDay <= driftDays {
			continue
		}
		items = append(items, report.DriftItem{File: edge.File, DaysOld: int(delta / secondsPerDay)})
		if len(items) >= maxDriftItems {
			break
		}
	}
	return items
}
