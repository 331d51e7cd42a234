// Package history implements ask_history: a targeted commit-message and
// content search surfaced over GitDriver's pickaxe and line-range log modes,
// independent of the cached CommitWindow the analyze_file pipeline uses.
package history

import (
	"context"
	"fmt"

	"github.com/byronwade/memoria/internal/analysiscontext"
	"github.com/byronwade/memoria/internal/gitdriver"
	"github.com/byronwade/memoria/pkg/report"
)

const defaultLimit = 20

// Request is the ask_history input: {query, path?, mode?, limit?,
// startLine?, endLine?}.
type Request struct {
	Query     string
	Path      string
	Mode      string
	Limit     int
	StartLine int
	EndLine   int
}

// Search resolves an ask_history request against repoRoot. A StartLine/
// EndLine pair switches to GitDriver.LogLineRange regardless of Mode, per
// the line-range contract; otherwise Mode selects message search, pickaxe
// diff search, or their union.
func Search(ctx context.Context, repoRoot string, req Request) (*report.HistorySearchOutput, error) {
	ac, err := analysiscontext.Get(repoRoot)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	mode := req.Mode
	if mode == "" {
		mode = "both"
	}

	cacheKey := cacheKeyFor(req, mode, limit)
	cached, err := ac.Cache.GetOrLoad(ctx, cacheKey, func(c context.Context) (any, error) {
		return search(c, ac.Driver, req, mode, limit)
	})
	if err != nil {
		return nil, err
	}
	return cached.(*report.HistorySearchOutput), nil
}

func cacheKeyFor(req Request, mode string, limit int) string {
	key := fmt.Sprintf("history:%s:%s:%s:%d", req.Query, req.Path, mode, limit)
	if req.StartLine != 0 || req.EndLine != 0 {
		key += fmt.Sprintf(":L%d-%d", req.StartLine, req.EndLine)
	}
	return key
}

func search(ctx context.Context, driver *gitdriver.Driver, req Request, mode string, limit int) (*report.HistorySearchOutput, error) {
	if req.StartLine != 0 || req.EndLine != 0 {
		window, reason, err := driver.LogLineRange(ctx, req.Path, req.StartLine, req.EndLine, limit)
		if err != nil {
			return nil, err
		}
		matches := toMatches(window, report.MatchDiff)
		return &report.HistorySearchOutput{
			Results:    matches,
			TotalFound: len(matches),
			Partial:    reason != "",
		}, nil
	}

	var (
		matches []report.HistoryMatch
		partial bool
	)

	if mode == "message" || mode == "both" {
		window, reason, err := driver.LogGrepMessage(ctx, req.Query, req.Path, limit)
		if err != nil {
			return nil, err
		}
		matches = append(matches, toMatches(window, report.MatchMessage)...)
		partial = partial || reason != ""
	}

	if mode == "diff" || mode == "both" {
		window, reason, err := driver.LogPickaxe(ctx, req.Query, req.Path, limit)
		if err != nil {
			return nil, err
		}
		matches = append(matches, toMatches(window, report.MatchDiff)...)
		partial = partial || reason != ""
	}

	matches = dedupeBySHA(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	return &report.HistorySearchOutput{
		Results:    matches,
		TotalFound: len(matches),
		Partial:    partial,
	}, nil
}

func toMatches(window *gitdriver.CommitWindow, matchType report.HistoryMatchType) []report.HistoryMatch {
	if window == nil {
		return nil
	}
	matches := make([]report.HistoryMatch, 0, len(window.Commits))
	for _, c := range window.Commits {
		matches = append(matches, report.HistoryMatch{
			SHA:       c.SHA,
			Author:    c.AuthorName,
			Date:      c.CommittedAt,
			Subject:   c.Subject(),
			MatchType: matchType,
		})
	}
	return matches
}

// dedupeBySHA keeps the first occurrence of each commit, preferring whichever
// mode found it first so "both" mode's union favors message matches.
func dedupeBySHA(matches []report.HistoryMatch) []report.HistoryMatch {
	seen := make(map[string]bool, len(matches))
	out := make([]report.HistoryMatch, 0, len(matches))
	for _, m := range matches {
		if seen[m.SHA] {
			continue
		}
		seen[m.SHA] = true
		out = append(out, m)
	}
	return out
}
