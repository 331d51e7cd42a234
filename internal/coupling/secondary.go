package coupling

import (
	"context"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/byronwade/memoria/internal/analysiscontext"
	"github.com/byronwade/memoria/pkg/report"
)

const maxSecondaryEdges = 5

// ComputeType finds files that use the target's declared type/interface
// names, scored by how many names they share with the target.
func ComputeType(ctx context.Context, ac *analysiscontext.Context, path string) ([]report.CouplingEdge, error) {
	target := ac.Canonicalize(path)
	source, err := readFile(ac.RepoRoot, target)
	if err != nil {
		return nil, nil
	}
	names := ExtractTypeNames(ctx, target, source)
	if len(names) == 0 {
		return nil, nil
	}

	hits := make(map[string]int)
	for _, name := range names {
		files, _, err := ac.Driver.GrepIndex(ctx, regexp.QuoteMeta(name))
		if err != nil {
			continue
		}
		for _, f := range files {
			if f == target {
				continue
			}
			hits[f]++
		}
	}
	return topEdges(hits, ac, report.SourceType, "shares declared types"), nil
}

// ComputeContent finds files sharing at least 2 meaningful string literals
// with the target.
func ComputeContent(ctx context.Context, ac *analysiscontext.Context, path string) ([]report.CouplingEdge, error) {
	target := ac.Canonicalize(path)
	source, err := readFile(ac.RepoRoot, target)
	if err != nil {
		return nil, nil
	}
	literals := ExtractStringLiterals(ctx, target, source)
	if len(literals) == 0 {
		return nil, nil
	}

	shared := make(map[string]int)
	for _, literal := range literals {
		files, _, err := ac.Driver.GrepIndex(ctx, regexp.QuoteMeta(literal))
		if err != nil {
			continue
		}
		for _, f := range files {
			if f == target {
				continue
			}
			shared[f]++
		}
	}

	filtered := make(map[string]int)
	for f, count := range shared {
		if count >= 2 {
			filtered[f] = count
		}
	}
	return topEdges(filtered, ac, report.SourceContent, "shares string literals"), nil
}

var (
	endpointLiteralRe = regexp.MustCompile(`["'\x60](/(?:api|v1|v2)/[a-zA-Z0-9_\-/:{}]*)["'\x60]`)
	routeDefRe        = regexp.MustCompile(`(?:app\.(?:get|post|put|delete|patch)|@(?:Get|Post|Put|Delete|Patch)|router\.(?:get|post|put|delete|patch))\s*\(\s*["'\x60](/[a-zA-Z0-9_\-/:{}]*)["'\x60]`)
	dynamicSegmentRe  = regexp.MustCompile(`:[a-zA-Z0-9_]+`)
)

// ComputeAPI recognizes endpoint literals and route-definition patterns. A
// target that defines routes is matched against files that consume those
// endpoint strings, and vice versa.
func ComputeAPI(ctx context.Context, ac *analysiscontext.Context, path string) ([]report.CouplingEdge, error) {
	target := ac.Canonicalize(path)
	source, err := readFile(ac.RepoRoot, target)
	if err != nil {
		return nil, nil
	}
	text := string(source)

	routes := extractRoutes(routeDefRe, text)
	endpoints := extractRoutes(endpointLiteralRe, text)

	hits := make(map[string]int)
	if len(routes) > 0 {
		for _, route := range routes {
			files, _, err := ac.Driver.GrepIndex(ctx, regexp.QuoteMeta(route))
			if err != nil {
				continue
			}
			for _, f := range files {
				if f == target {
					continue
				}
				hits[f]++
			}
		}
		return topEdges(hits, ac, report.SourceAPI, "consumes endpoint"), nil
	}

	for _, endpoint := range endpoints {
		files, _, err := ac.Driver.GrepIndex(ctx, regexp.QuoteMeta(endpoint))
		if err != nil {
			continue
		}
		for _, f := range files {
			if f == target {
				continue
			}
			hits[f]++
		}
	}
	return topEdges(hits, ac, report.SourceAPI, "defines endpoint"), nil
}

func extractRoutes(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var routes []string
	for _, m := range matches {
		if len(m) < 2 {
			continue
		}
		normalized := dynamicSegmentRe.ReplaceAllString(m[1], ":param")
		if !seen[normalized] {
			seen[normalized] = true
			routes = append(routes, normalized)
		}
	}
	return routes
}

// testCandidateSuffixes are appended to a file's stem (with the original
// extension) to guess at its test file.
var testCandidateSuffixes = []string{".test", ".spec", "_test"}

// ComputeTest maps the target to its canonical test path(s), or, when the
// target is itself a test file, reverse-maps to the file it tests.
func ComputeTest(ctx context.Context, ac *analysiscontext.Context, path string) ([]report.CouplingEdge, error) {
	target := ac.Canonicalize(path)
	dir := filepath.Dir(target)
	ext := filepath.Ext(target)
	base := filepath.Base(target)
	stem := strings.TrimSuffix(base, ext)

	if isTestFile(stem) {
		subject := stripTestSuffix(stem)
		candidate := filepath.ToSlash(filepath.Join(dir, subject+ext))
		if exists, _, _ := ac.Driver.GrepIndex(ctx, regexp.QuoteMeta(subject)); containsPath(exists, candidate) {
			return []report.CouplingEdge{{File: candidate, Score: 80, Source: report.SourceTest, Reason: "file under test"}}, nil
		}
		return nil, nil
	}

	var edges []report.CouplingEdge
	for _, suffix := range testCandidateSuffixes {
		candidate := filepath.ToSlash(filepath.Join(dir, stem+suffix+ext))
		files, _, err := ac.Driver.GrepIndex(ctx, regexp.QuoteMeta(stem))
		if err != nil {
			continue
		}
		if containsPath(files, candidate) {
			edges = append(edges, report.CouplingEdge{File: candidate, Score: 80, Source: report.SourceTest, Reason: "matching test file"})
		}
	}
	for _, dirPattern := range []string{"tests", "__tests__"} {
		files, _, err := ac.Driver.GrepIndex(ctx, regexp.QuoteMeta(stem))
		if err != nil {
			continue
		}
		for _, f := range files {
			if strings.Contains(f, dirPattern+"/") && strings.Contains(filepath.Base(f), stem) {
				edges = append(edges, report.CouplingEdge{File: f, Score: 70, Source: report.SourceTest, Reason: "matching test file"})
			}
		}
	}
	return capEdges(dedupeEdges(edges)), nil
}

func isTestFile(stem string) bool {
	for _, suffix := range testCandidateSuffixes {
		if strings.HasSuffix(stem, suffix) {
			return true
		}
	}
	return false
}

func stripTestSuffix(stem string) string {
	for _, suffix := range testCandidateSuffixes {
		if strings.HasSuffix(stem, suffix) {
			return strings.TrimSuffix(stem, suffix)
		}
	}
	return stem
}

func containsPath(paths []string, target string) bool {
	for _, p := range paths {
		if p == target {
			return true
		}
	}
	return false
}

var barrelFileRe = regexp.MustCompile(`^index\.(ts|tsx|js|jsx|mjs)$`)

// ComputeTransitive finds barrel files (index.*) re-exporting the target,
// then files that import those barrels rather than the target directly.
func ComputeTransitive(ctx context.Context, ac *analysiscontext.Context, path string) ([]report.CouplingEdge, error) {
	target := ac.Canonicalize(path)
	stem := strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))

	barrelCandidates, _, err := ac.Driver.GrepIndex(ctx, regexp.QuoteMeta(stem))
	if err != nil {
		return nil, nil
	}

	var barrels []string
	for _, f := range barrelCandidates {
		if barrelFileRe.MatchString(filepath.Base(f)) {
			barrels = append(barrels, f)
		}
	}
	if len(barrels) == 0 {
		return nil, nil
	}

	var edges []report.CouplingEdge
	for _, barrel := range barrels {
		edges = append(edges, report.CouplingEdge{File: barrel, Score: 60, Source: report.SourceTransitive, Reason: "re-exports via " + barrel})

		barrelStem := strings.TrimSuffix(filepath.Base(barrel), filepath.Ext(barrel))
		dirToken := filepath.Base(filepath.Dir(barrel))
		importers, _, err := ac.Driver.GrepIndex(ctx, regexp.QuoteMeta(dirToken))
		if err != nil {
			continue
		}
		for _, imp := range importers {
			if imp == target || imp == barrel {
				continue
			}
			edges = append(edges, report.CouplingEdge{File: imp, Score: 40, Source: report.SourceTransitive, Reason: "imports via " + barrelStem})
		}
	}
	return capEdges(dedupeEdges(edges)), nil
}

func topEdges(hits map[string]int, ac *analysiscontext.Context, source report.CouplingSource, reason string) []report.CouplingEdge {
	if len(hits) == 0 {
		return nil
	}
	type candidate struct {
		file  string
		count int
	}
	var candidates []candidate
	for f, c := range hits {
		candidates = append(candidates, candidate{file: f, count: c})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].file < candidates[j].file
	})
	if len(candidates) > maxSecondaryEdges {
		candidates = candidates[:maxSecondaryEdges]
	}

	maxCount := candidates[0].count
	edges := make([]report.CouplingEdge, len(candidates))
	for i, c := range candidates {
		score := int(round(float64(c.count) / float64(maxCount) * 100))
		edges[i] = report.CouplingEdge{File: c.file, Score: score, Source: source, Reason: reason}
	}
	return edges
}

func dedupeEdges(edges []report.CouplingEdge) []report.CouplingEdge {
	seen := make(map[string]bool)
	var out []report.CouplingEdge
	for _, e := range edges {
		if seen[e.File] {
			continue
		}
		seen[e.File] = true
		out = append(out, e)
	}
	return out
}

func capEdges(edges []report.CouplingEdge) []report.CouplingEdge {
	sort.Slice(edges, func(i, j int) bool { return edges[i].Score > edges[j].Score })
	if len(edges) > maxSecondaryEdges {
		edges = edges[:maxSecondaryEdges]
	}
	return edges
}
