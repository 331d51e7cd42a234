// Package staticimport finds files that textually reference a target file's
// basename in an import-like position, deliberately language-agnostic.
package staticimport

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/byronwade/memoria/internal/analysiscontext"
	"github.com/byronwade/memoria/pkg/report"
)

const maxImporters = 100

// Compute returns the deduplicated list of files whose text matches an
// import/from/require pattern referencing the target's stem, excluding the
// target itself and anything the IgnoreFilter rejects.
func Compute(ctx context.Context, ac *analysiscontext.Context, path string) ([]report.Importer, error) {
	target := ac.Canonicalize(path)
	stem := regexp.QuoteMeta(strings.TrimSuffix(filepath.Base(target), filepath.Ext(target)))
	pattern := `(import|from|require)\s+['"][^'"]*` + stem + `[^'"]*['"]`

	files, _, err := ac.Driver.GrepIndex(ctx, pattern)
	if err != nil {
		return nil, err
	}

	filtered := ac.Ignore.FilterPaths(files)

	seen := make(map[string]bool)
	importers := make([]report.Importer, 0, len(filtered))
	for _, f := range filtered {
		if f == target || seen[f] {
			continue
		}
		seen[f] = true
		importers = append(importers, report.Importer(f))
		if len(importers) >= maxImporters {
			break
		}
	}
	return importers, nil
}
