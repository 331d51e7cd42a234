package gitdriver

import (
	"context"
	"regexp"
	"strings"

	"github.com/byronwade/memoria/pkg/report"
)

const (
	maxDiffLines  = 10
	maxDiffLength = 120
)

// ShowDiff runs a unified diff scoped to file at sha and summarizes it.
func (d *Driver) ShowDiff(ctx context.Context, sha, file string) (*report.DiffSummary, error) {
	stdout, _, err := d.run(ctx, "show", "--unified=0", "--format=", sha, "--", file)
	if err != nil {
		return &report.DiffSummary{ChangeType: report.ChangeUnknown}, nil
	}
	return summarizeDiff(file, stdout.String()), nil
}

func summarizeDiff(file, diffText string) *report.DiffSummary {
	summary := &report.DiffSummary{}
	hunks := 0

	for _, line := range strings.Split(diffText, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			hunks++
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			// file header, not content
		case strings.HasPrefix(line, "+"):
			summary.Additions = appendCapped(summary.Additions, truncateLine(line[1:]))
		case strings.HasPrefix(line, "-"):
			summary.Removals = appendCapped(summary.Removals, truncateLine(line[1:]))
		}
	}

	summary.Hunks = hunks
	summary.NetChange = len(summary.Additions) - len(summary.Removals)
	summary.HasBreakingChange = detectBreakingChange(summary.Removals)
	summary.ChangeType = detectChangeType(file, diffText)
	return summary
}

func appendCapped(lines []string, line string) []string {
	if len(lines) >= maxDiffLines {
		return lines
	}
	return append(lines, line)
}

func truncateLine(line string) string {
	if len(line) <= maxDiffLength {
		return line
	}
	return line[:maxDiffLength-1] + "…"
}

var breakingKeywordRe = regexp.MustCompile(`(?i)BREAKING|export\s+(function|const|class|interface|type)\s+\w+|func\s+[A-Z]\w*\s*\(|removed?\s+required\s+field`)

// detectBreakingChange looks for removed-line patterns that the spec names
// as the canonical minimum heuristic: an explicit BREAKING marker, a removed
// exported symbol, or language signals of a changed signature / removed
// required field. Implementers are expected to extend this set (§9 open
// question); this is the documented minimum, not a claim of completeness.
func detectBreakingChange(removals []string) bool {
	for _, line := range removals {
		if breakingKeywordRe.MatchString(line) {
			return true
		}
	}
	return false
}

var (
	schemaFileRe = regexp.MustCompile(`(?i)schema|migration`)
	schemaBodyRe = regexp.MustCompile(`(?i)CREATE TABLE|ALTER TABLE`)
	typesFileRe  = regexp.MustCompile(`\.d\.ts$`)
	typesBodyRe  = regexp.MustCompile(`\binterface\b|\btype\s+\w+\s*=`)
	apiRouteRe   = regexp.MustCompile(`app\.(get|post|put|delete|patch)\s*\(|@(Get|Post|Put|Delete|Patch)\s*\(|export\s+async\s+function\s+(GET|POST|PUT|DELETE|PATCH)\b`)
)

// detectChangeType infers a DiffSummary.ChangeType from filename and content
// patterns, per the precedence order in §4.1: types, then schema, then api,
// then logic if anything changed at all, else unknown.
func detectChangeType(file, diffText string) report.ChangeType {
	switch {
	case typesFileRe.MatchString(file), typesBodyRe.MatchString(diffText):
		return report.ChangeTypes
	case schemaFileRe.MatchString(file), schemaBodyRe.MatchString(diffText):
		return report.ChangeSchema
	case apiRouteRe.MatchString(diffText):
		return report.ChangeAPI
	case strings.TrimSpace(diffText) != "":
		return report.ChangeLogic
	default:
		return report.ChangeUnknown
	}
}
