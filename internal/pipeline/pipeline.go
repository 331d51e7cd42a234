// Package pipeline orchestrates every engine into a single AnalysisReport,
// enforcing the per-engine soft deadline and per-request hard deadline, and
// owning the report-level cache entry.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/byronwade/memoria/internal/analysiscontext"
	"github.com/byronwade/memoria/internal/cache"
	"github.com/byronwade/memoria/internal/config"
	"github.com/byronwade/memoria/internal/coupling"
	"github.com/byronwade/memoria/internal/drift"
	"github.com/byronwade/memoria/internal/gitdriver"
	"github.com/byronwade/memoria/internal/risk"
	"github.com/byronwade/memoria/internal/siblings"
	"github.com/byronwade/memoria/internal/staticimport"
	"github.com/byronwade/memoria/internal/volatility"
	"github.com/byronwade/memoria/pkg/report"
	"github.com/sourcegraph/conc"
)

// HardDeadline bounds the entire analyze_file request.
const HardDeadline = 2 * time.Second

// SoftDeadline bounds a single engine's contribution; an engine that
// exceeds it is treated as degraded rather than blocking the others.
const SoftDeadline = 1 * time.Second

// Coordinator runs the full pipeline for one repository.
type Coordinator struct {
	RepoRoot string
}

// New creates a Coordinator rooted at repoRoot.
func New(repoRoot string) *Coordinator {
	return &Coordinator{RepoRoot: repoRoot}
}

// AnalyzeFile runs every engine for path and returns the merged
// AnalysisReport, reading from and writing to the shared Cache.
func (co *Coordinator) AnalyzeFile(ctx context.Context, path string) (*report.AnalysisReport, error) {
	ac, err := analysiscontext.Get(co.RepoRoot)
	if err != nil {
		return nil, err
	}

	absPath := path
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(co.RepoRoot, path)
	}
	cacheKey := "report:" + absPath
	if content, err := os.ReadFile(absPath); err == nil {
		cacheKey += ":" + cache.HashContent(content)
	}

	if cached, ok := ac.Cache.Get(cacheKey); ok {
		if rep, ok := cached.(*report.AnalysisReport); ok {
			return rep, nil
		}
	}

	hardCtx, cancel := context.WithTimeout(ctx, HardDeadline)
	defer cancel()

	rep := co.run(hardCtx, ac, path)

	if !rep.Partial {
		ac.Cache.Set(cacheKey, rep)
	}
	return rep, nil
}

func (co *Coordinator) run(ctx context.Context, ac *analysiscontext.Context, path string) *report.AnalysisReport {
	rep := &report.AnalysisReport{FilePath: ac.Canonicalize(path)}

	var (
		mu       sync.Mutex
		degraded = make(map[string]string)
	)
	markDegraded := func(key, reason string) {
		mu.Lock()
		degraded[key] = reason
		mu.Unlock()
	}

	history, _ := ac.FileHistory(ctx, path)
	needSiblings := len(history) == 0
	threshold := int(config.AdaptiveThresholds(repoVelocity(ctx, ac), ac.Config).CouplingPercent)

	var (
		vol       report.VolatilityResult
		coupled   []report.CouplingEdge
		typeEdges []report.CouplingEdge
		contentE  []report.CouplingEdge
		apiEdges  []report.CouplingEdge
		testEdges []report.CouplingEdge
		transEdge []report.CouplingEdge
		importers []report.Importer
		sibling   *report.SiblingGuidance
		driftList []report.DriftItem
	)

	wg := conc.NewWaitGroup()

	wg.Go(func() {
		softCtx, cancel := context.WithTimeout(ctx, SoftDeadline)
		defer cancel()

		resultCh := make(chan report.VolatilityResult, 1)
		go func() { resultCh <- volatility.Compute(softCtx, ac, path) }()

		select {
		case vol = <-resultCh:
		case <-softCtx.Done():
			markDegraded("volatility", "timeout")
		}
	})

	wg.Go(func() {
		result, err := coupling.Compute(ctx, ac, path, threshold)
		if err != nil {
			markDegraded("coupling", "git failed")
			return
		}
		coupled = result
	})
	wg.Go(func() {
		result, err := coupling.ComputeType(ctx, ac, path)
		if err == nil {
			typeEdges = result
		}
	})
	wg.Go(func() {
		result, err := coupling.ComputeContent(ctx, ac, path)
		if err == nil {
			contentE = result
		}
	})
	wg.Go(func() {
		result, err := coupling.ComputeAPI(ctx, ac, path)
		if err == nil {
			apiEdges = result
		}
	})
	wg.Go(func() {
		result, err := coupling.ComputeTest(ctx, ac, path)
		if err == nil {
			testEdges = result
		}
	})
	wg.Go(func() {
		result, err := coupling.ComputeTransitive(ctx, ac, path)
		if err == nil {
			transEdge = result
		}
	})
	wg.Go(func() {
		result, err := staticimport.Compute(ctx, ac, path)
		if err != nil {
			markDegraded("importers", "git failed")
			return
		}
		importers = result
	})
	if needSiblings {
		wg.Go(func() {
			result, err := siblings.Compute(ctx, ac, path)
			if err == nil {
				sibling = result
			}
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		rep.Partial = true
	}

	// DriftEngine depends on CouplingEngine's edges, so it starts only after
	// the coupling fan-out above has had its chance to finish.
	if len(coupled) > 0 {
		driftList = drift.Compute(ac, path, coupled, ac.Config.Thresholds.DriftDays)
	}

	allCoupled := mergeCoupled(coupled, typeEdges, contentE, apiEdges, testEdges, transEdge)

	rep.Volatility = vol
	rep.Coupled = allCoupled
	rep.Drift = driftList
	rep.Importers = importers
	rep.Siblings = sibling
	rep.Risk = risk.Compute(vol, allCoupled, driftList, len(importers), config.EffectiveRiskWeights(ac.Config))

	if len(degraded) > 0 {
		rep.Degraded = degraded
		rep.Partial = true
	}
	return rep
}

// repoVelocity derives commits-per-week and total commit count from the
// shared CommitWindow, feeding AdaptiveThresholds the same signal every
// engine in this request already paid to compute.
func repoVelocity(ctx context.Context, ac *analysiscontext.Context) config.RepoVelocity {
	window, err := ac.Window(ctx)
	if err != nil || window == nil {
		return config.RepoVelocity{}
	}
	return velocityFromWindow(window)
}

// velocityFromWindow derives commits-per-week and total commit count from an
// already-fetched CommitWindow; split out from repoVelocity so the pure
// arithmetic is testable without a real git fetch.
func velocityFromWindow(window *gitdriver.CommitWindow) config.RepoVelocity {
	if window == nil || len(window.Commits) == 0 {
		return config.RepoVelocity{}
	}

	oldest := window.Commits[0].CommittedAt
	newest := window.Commits[0].CommittedAt
	for _, c := range window.Commits {
		if c.CommittedAt.Before(oldest) {
			oldest = c.CommittedAt
		}
		if c.CommittedAt.After(newest) {
			newest = c.CommittedAt
		}
	}

	weeks := newest.Sub(oldest).Hours() / (24 * 7)
	if weeks < 1 {
		weeks = 1
	}
	return config.RepoVelocity{
		CommitsPerWeek: float64(len(window.Commits)) / weeks,
		TotalCommits:   len(window.Commits),
	}
}

func mergeCoupled(groups ...[]report.CouplingEdge) []report.CouplingEdge {
	seen := make(map[string]bool)
	var merged []report.CouplingEdge
	for _, group := range groups {
		for _, edge := range group {
			if seen[edge.File] {
				continue
			}
			seen[edge.File] = true
			merged = append(merged, edge)
		}
	}
	return merged
}
