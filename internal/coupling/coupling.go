// Package coupling computes files that historically co-change with a
// target file, plus diff evidence for the strongest edges.
package coupling

import (
	"context"
	"fmt"
	"sort"

	"github.com/byronwade/memoria/internal/analysiscontext"
	"github.com/byronwade/memoria/pkg/report"
	"github.com/sourcegraph/conc/pool"
)

const (
	minHistorySize    = 3
	maxChangedFiles   = 15
	maxEdges          = 5
	defaultThreshold  = 15
	evidenceFanoutCap = 4
)

// Compute returns up to maxEdges CouplingEdges for path, sorted by score
// descending then file ascending, each carrying diff evidence from the most
// recent shared commit. threshold overrides defaultThreshold when positive.
func Compute(ctx context.Context, ac *analysiscontext.Context, path string, threshold int) ([]report.CouplingEdge, error) {
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	history, err := ac.FileHistory(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(history) < minHistorySize {
		return nil, nil
	}

	target := ac.Canonicalize(path)
	cochange := make(map[string]int)
	lastSharedCommit := make(map[string]string)
	lastSharedSubject := make(map[string]string)

	total := len(history)
	for _, commit := range history {
		if len(commit.ChangedFiles) > maxChangedFiles {
			continue
		}
		for _, f := range commit.ChangedFiles {
			if f == target {
				continue
			}
			cochange[f]++
			if _, ok := lastSharedCommit[f]; !ok {
				lastSharedCommit[f] = commit.SHA
				lastSharedSubject[f] = commit.Subject()
			}
		}
	}

	type candidate struct {
		file  string
		score int
	}
	var candidates []candidate
	for f, count := range cochange {
		score := int(round(float64(count) / float64(total) * 100))
		if score >= threshold {
			candidates = append(candidates, candidate{file: f, score: score})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].file < candidates[j].file
	})
	if len(candidates) > maxEdges {
		candidates = candidates[:maxEdges]
	}

	edges := make([]report.CouplingEdge, len(candidates))
	for i, c := range candidates {
		edges[i] = report.CouplingEdge{
			File:   c.file,
			Score:  c.score,
			Source: report.SourceGit,
		}
	}

	p := pool.New().WithMaxGoroutines(evidenceFanoutCap)
	for i := range edges {
		i := i
		c := candidates[i]
		p.Go(func() {
			sha := lastSharedCommit[c.file]
			if sha == "" {
				return
			}
			diff, err := ac.Driver.ShowDiff(ctx, sha, c.file)
			if err != nil || diff == nil {
				return
			}
			edges[i].Evidence = diff
			edges[i].Reason = fmt.Sprintf("%s (%s)", truncate(lastSharedSubject[c.file], 60), diff.ChangeType)
		})
	}
	p.Wait()

	return edges, nil
}

func round(v float64) float64 {
	if v < 0 {
		return -round(-v)
	}
	whole := float64(int(v))
	if v-whole >= 0.5 {
		return whole + 1
	}
	return whole
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
