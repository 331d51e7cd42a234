// Package volatility computes the historical-instability signal for a file:
// a 0-100 panic score derived from commit messages and recency decay, plus
// authorship and recency-decay detail.
package volatility

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/byronwade/memoria/internal/analysiscontext"
	"github.com/byronwade/memoria/internal/config"
	"github.com/byronwade/memoria/internal/gitdriver"
	"github.com/byronwade/memoria/pkg/report"
)

const (
	maxWeight          = 3.0
	decayHalfLifeDays  = 30.0
	maxScoredCommits   = 20
	maxPanicCommits    = 5
	ownershipThreshold = 0.70
)

// Compute returns the VolatilityResult for path. It never fails: an empty or
// unreadable history yields a zero-valued result.
func Compute(ctx context.Context, ac *analysiscontext.Context, path string) report.VolatilityResult {
	history, err := ac.FileHistory(ctx, path)
	if err != nil || len(history) == 0 {
		return report.VolatilityResult{}
	}

	keywords := config.EffectivePanicKeywords(ac.Config)
	now := time.Now()

	type scored struct {
		commit  gitdriver.Commit
		weight  float64
		decay   float64
		product float64
	}

	scoredCommits := make([]scored, 0, len(history))
	var weightedScore float64

	for _, commit := range history {
		weight := panicWeight(commit.Message, keywords)
		decay := decayFactor(now, commit.CommittedAt)
		product := weight * decay
		scoredCommits = append(scoredCommits, scored{commit: commit, weight: weight, decay: decay, product: product})
		weightedScore += product
	}

	n := len(history)
	if n > maxScoredCommits {
		n = maxScoredCommits
	}
	panicScore := 0
	if n > 0 {
		ratio := weightedScore / (float64(n) * maxWeight)
		panicScore = int(math.Round(clampPercent(ratio * 100)))
	}

	authorDetails, topAuthor := authorShares(history)

	oldest, newest := history[0].CommittedAt, history[0].CommittedAt
	for _, c := range history {
		if c.CommittedAt.Before(oldest) {
			oldest = c.CommittedAt
		}
		if c.CommittedAt.After(newest) {
			newest = c.CommittedAt
		}
	}

	sort.SliceStable(scoredCommits, func(i, j int) bool {
		if scoredCommits[i].product != scoredCommits[j].product {
			return scoredCommits[i].product > scoredCommits[j].product
		}
		return scoredCommits[i].commit.CommittedAt.After(scoredCommits[j].commit.CommittedAt)
	})

	panicCommits := make([]report.PanicCommit, 0, maxPanicCommits)
	for i := 0; i < len(scoredCommits) && i < maxPanicCommits; i++ {
		sc := scoredCommits[i]
		panicCommits = append(panicCommits, report.PanicCommit{
			SHA:          sc.commit.SHA,
			Subject:      sc.commit.Subject(),
			CommittedAt:  sc.commit.CommittedAt,
			PanicWeight:  sc.weight,
			DecayedScore: sc.product,
		})
	}

	return report.VolatilityResult{
		PanicScore:    panicScore,
		CommitCount:   len(history),
		AuthorDetails: authorDetails,
		TopAuthor:     topAuthor,
		RecencyDecay: report.RecencyDecay{
			OldestCommitDays: daysSince(now, oldest),
			NewestCommitDays: daysSince(now, newest),
			DecayFactor:      decayFactor(now, newest),
		},
		PanicCommits: panicCommits,
	}
}

func panicWeight(message string, keywords map[string]float64) float64 {
	lower := strings.ToLower(message)
	var max float64
	for keyword, weight := range keywords {
		if strings.Contains(lower, keyword) && weight > max {
			max = weight
		}
	}
	return max
}

func decayFactor(now, committedAt time.Time) float64 {
	if committedAt.IsZero() {
		return 0
	}
	days := now.Sub(committedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Pow(0.5, days/decayHalfLifeDays)
}

func daysSince(now, t time.Time) int {
	if t.IsZero() {
		return 0
	}
	d := now.Sub(t).Hours() / 24
	if d < 0 {
		d = 0
	}
	return int(d)
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

// authorShares groups history by (name, email), computing commit counts,
// percentages, and first/last commit times. topAuthor is nil only when
// history is empty, which Compute already guards against.
func authorShares(history []gitdriver.Commit) ([]report.AuthorShare, *report.AuthorShare) {
	type key struct{ name, email string }
	byAuthor := make(map[key]*report.AuthorShare)
	order := make([]key, 0)

	for _, c := range history {
		k := key{name: c.AuthorName, email: c.AuthorEmail}
		share, ok := byAuthor[k]
		if !ok {
			share = &report.AuthorShare{Name: c.AuthorName, Email: c.AuthorEmail, FirstCommit: c.CommittedAt, LastCommit: c.CommittedAt}
			byAuthor[k] = share
			order = append(order, k)
		}
		share.Commits++
		if c.CommittedAt.Before(share.FirstCommit) {
			share.FirstCommit = c.CommittedAt
		}
		if c.CommittedAt.After(share.LastCommit) {
			share.LastCommit = c.CommittedAt
		}
	}

	total := len(history)
	details := make([]report.AuthorShare, 0, len(order))
	var top *report.AuthorShare
	for _, k := range order {
		share := byAuthor[k]
		share.Percentage = float64(share.Commits) / float64(total) * 100
		details = append(details, *share)
	}

	sort.Slice(details, func(i, j int) bool { return details[i].Commits > details[j].Commits })
	if len(details) > 0 {
		top = &details[0]
	}
	return details, top
}

// IsOwned reports whether share represents single-author dominance, per the
// 70% ownership threshold the presentation layer uses to flag a file as
// owned by one contributor.
func IsOwned(share *report.AuthorShare) bool {
	return share != nil && share.Percentage/100 >= ownershipThreshold
}
