// Package siblings infers conventions for a new file (one with no commit
// history of its own) by sampling other files of the same extension in its
// directory.
package siblings

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/byronwade/memoria/internal/analysiscontext"
	"github.com/byronwade/memoria/internal/volatility"
	"github.com/byronwade/memoria/pkg/report"
)

const (
	maxSampled        = 5
	minSiblingsNeeded = 2
	minSharedPrefix   = 3
	commonThreshold   = 0.5
)

var importLineRe = regexp.MustCompile(`(?m)^\s*(?:import|from|const\s+\w+\s*=\s*require)\s*\(?\s*['"]([^'"]+)['"]`)

// Compute samples up to maxSampled sibling files (same extension, same
// directory, excluding path itself) and reports the conventions they share.
// Returns nil when fewer than minSiblingsNeeded siblings exist.
func Compute(ctx context.Context, ac *analysiscontext.Context, path string) (*report.SiblingGuidance, error) {
	target := ac.Canonicalize(path)
	dir := filepath.Dir(target)
	ext := filepath.Ext(target)

	entries, err := os.ReadDir(filepath.Join(ac.RepoRoot, dir))
	if err != nil {
		return nil, nil
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		rel := filepath.ToSlash(filepath.Join(dir, e.Name()))
		if rel == target || filepath.Ext(e.Name()) != ext {
			continue
		}
		if ac.Ignore.Matches(rel, false) {
			continue
		}
		candidates = append(candidates, rel)
	}
	if len(candidates) < minSiblingsNeeded {
		return nil, nil
	}

	sort.Strings(candidates)
	if len(candidates) > maxSampled {
		candidates = candidates[:maxSampled]
	}

	var totalPanic float64
	hasTests := false
	importCounts := make(map[string]int)

	for _, sibling := range candidates {
		vol := volatility.Compute(ctx, ac, sibling)
		totalPanic += float64(vol.PanicScore)

		if matchesTestConvention(sibling) {
			hasTests = true
		}

		content, err := os.ReadFile(filepath.Join(ac.RepoRoot, sibling))
		if err != nil {
			continue
		}
		seen := make(map[string]bool)
		for _, m := range importLineRe.FindAllStringSubmatch(string(content), -1) {
			if len(m) < 2 || seen[m[1]] {
				continue
			}
			seen[m[1]] = true
			importCounts[m[1]]++
		}
	}

	var commonImports []string
	for imp, count := range importCounts {
		if float64(count)/float64(len(candidates)) > commonThreshold {
			commonImports = append(commonImports, imp)
		}
	}
	sort.Strings(commonImports)

	patterns := detectNamingPatterns(candidates)

	return &report.SiblingGuidance{
		SampledFiles:     candidates,
		AvgPanicScore:    totalPanic / float64(len(candidates)),
		HasMatchingTests: hasTests,
		CommonImports:    commonImports,
		Patterns:         patterns,
	}, nil
}

func matchesTestConvention(path string) bool {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.HasSuffix(base, ".test") || strings.HasSuffix(base, ".spec") || strings.HasSuffix(base, "_test")
}

// detectNamingPatterns finds a shared prefix or suffix of length >= 3 across
// sample basenames (without extension), reporting a confidence proportional
// to how many siblings share it.
func detectNamingPatterns(paths []string) []report.NamingPattern {
	stems := make([]string, len(paths))
	for i, p := range paths {
		stems[i] = strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	}

	var patterns []report.NamingPattern
	if prefix, count := commonAffix(stems, true); len(prefix) >= minSharedPrefix {
		patterns = append(patterns, report.NamingPattern{
			Description: "shared prefix \"" + prefix + "\"",
			Confidence:  int(float64(count) / float64(len(stems)) * 100),
		})
	}
	if suffix, count := commonAffix(stems, false); len(suffix) >= minSharedPrefix {
		patterns = append(patterns, report.NamingPattern{
			Description: "shared suffix \"" + suffix + "\"",
			Confidence:  int(float64(count) / float64(len(stems)) * 100),
		})
	}
	return patterns
}

func commonAffix(stems []string, prefix bool) (string, int) {
	if len(stems) == 0 {
		return "", 0
	}
	candidate := stems[0]
	for _, s := range stems[1:] {
		candidate = sharedAffix(candidate, s, prefix)
		if candidate == "" {
			return "", 0
		}
	}
	count := 0
	for _, s := range stems {
		if prefix && strings.HasPrefix(s, candidate) {
			count++
		} else if !prefix && strings.HasSuffix(s, candidate) {
			count++
		}
	}
	return candidate, count
}

func sharedAffix(a, b string, prefix bool) string {
	if !prefix {
		a, b = reverseString(a), reverseString(b)
	}
	n := minInt(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	result := a[:i]
	if !prefix {
		result = reverseString(result)
	}
	return result
}

func reverseString(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
