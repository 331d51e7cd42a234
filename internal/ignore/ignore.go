// Package ignore builds a gitignore-semantics path matcher from three
// layered sources: a fixed universal set of common build/VCS/editor
// artifacts, the repository's own .gitignore files, and user patterns from
// Config. It is built directly on go-git's gitignore package, the same way
// the example scanner composes config patterns with .gitignore content --
// no hand-rolled glob matcher.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Filter matches repo-relative paths against universal, .gitignore, and
// user-supplied patterns.
type Filter struct {
	matcher gitignore.Matcher
}

// universalPatterns covers build outputs, lockfiles, VCS directories, editor
// metadata, and per-language artifact dirs across the ecosystems the
// pipeline is likely to see in a single repository.
var universalPatterns = []string{
	".git/",
	".hg/",
	".svn/",
	"node_modules/",
	"vendor/",
	"third_party/",
	"dist/",
	"build/",
	"out/",
	"bin/",
	"target/",
	".next/",
	".nuxt/",
	".turbo/",
	".cache/",
	"coverage/",
	".nyc_output/",
	"__pycache__/",
	".pytest_cache/",
	".mypy_cache/",
	".venv/",
	"venv/",
	".tox/",
	"site-packages/",
	".bundle/",
	"sorbet/",
	".yarn/",
	".idea/",
	".vscode/",
	".vs/",
	"*.lock",
	"go.sum",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"Cargo.lock",
	"Gemfile.lock",
	"*.min.js",
	"*.min.css",
	"*.pb.go",
	"*.gen.go",
	"*.generated.go",
	"*.pyc",
	"*.class",
	".gradle/",
	"obj/",
	"logs/",
	"Thumbs.db",
	"**/generated/",
	"**/mocks/",
	".DS_Store",
	"*.log",
}

// New builds a Filter for a repository rooted at repoRoot, combining the
// universal set, repoRoot's .gitignore tree (when readGitignore is true),
// and userPatterns (Config.Ignore, gitignore syntax).
func New(repoRoot string, readGitignore bool, userPatterns []string) *Filter {
	var patterns []gitignore.Pattern

	for _, p := range universalPatterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	for _, p := range userPatterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	if readGitignore {
		fs := osfs.New(repoRoot)
		if gitPatterns, err := gitignore.ReadPatterns(fs, nil); err == nil {
			patterns = append(patterns, gitPatterns...)
		}
	}

	return &Filter{matcher: gitignore.NewMatcher(patterns)}
}

// Matches reports whether path (repo-relative, slash-separated) is excluded.
// isDir should be true when path names a directory, enabling trailing-slash
// directory-only patterns.
func (f *Filter) Matches(path string, isDir bool) bool {
	if f == nil || f.matcher == nil {
		return false
	}
	clean := filepath.ToSlash(path)
	parts := strings.Split(clean, "/")
	return f.matcher.Match(parts, isDir)
}

// FilterPaths removes every excluded path from paths, preserving order.
// Paths are treated as files, not directories.
func (f *Filter) FilterPaths(paths []string) []string {
	if f == nil {
		return paths
	}
	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		if !f.Matches(p, false) {
			kept = append(kept, p)
		}
	}
	return kept
}
