// Package analysiscontext builds the per-request state every engine shares:
// the resolved Config, the IgnoreFilter, the lazily-computed CommitWindow,
// and handles to GitDriver and Cache. One Context is constructed per
// top-level analyze_file call and memoized by repository root so nested
// work on the same file reuses the already-parsed window.
package analysiscontext

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/byronwade/memoria/internal/cache"
	"github.com/byronwade/memoria/internal/config"
	"github.com/byronwade/memoria/internal/gitdriver"
	"github.com/byronwade/memoria/internal/ignore"
)

// maxWindowFromEnv reads MEMORIA_MAX_WINDOW, the one environment variable
// the core consumes: an integer 1..200 capping window size regardless of
// config or adaptive sizing. Absent, empty, or out-of-range values disable
// the cap.
func maxWindowFromEnv() int {
	raw := os.Getenv("MEMORIA_MAX_WINDOW")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 200 {
		return 0
	}
	return n
}

// Context is immutable after construction and safe for concurrent use by
// every engine fanned out over a single analyze_file request. Config and the
// IgnoreFilter are shared by reference; CommitWindow is computed once,
// lazily, the first time any engine asks for it.
type Context struct {
	RepoRoot string
	Config   *config.Config
	Ignore   *ignore.Filter
	Driver   *gitdriver.Driver
	Cache    *cache.Cache

	windowOnce sync.Once
	window     *gitdriver.CommitWindow
	windowErr  error
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]*Context)
)

// Get returns the memoized Context for repoRoot, building one on first use.
// Subsequent calls for the same canonical root within the process lifetime
// return the same instance, so nested analyses reuse its CommitWindow.
func Get(repoRoot string) (*Context, error) {
	canonical, err := filepath.Abs(repoRoot)
	if err != nil {
		canonical = repoRoot
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if existing, ok := registry[canonical]; ok {
		return existing, nil
	}

	cfg, _ := config.Load(canonical)
	effectiveCfg := cfg
	if effectiveCfg == nil {
		effectiveCfg = config.Defaults()
	}

	filter := ignore.New(canonical, true, effectiveCfg.Ignore)

	ctx := &Context{
		RepoRoot: canonical,
		Config:   effectiveCfg,
		Ignore:   filter,
		Driver:   gitdriver.New(canonical),
		Cache:    cache.New(),
	}
	registry[canonical] = ctx
	return ctx, nil
}

// Reset discards every memoized Context, so the next Get re-reads config
// and rebuilds the CommitWindow. Only tests call it.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]*Context)
}

// Window returns the repository's CommitWindow, computing it at most once
// per Context via the AnalysisWindow size from Config (adaptive thresholds
// are applied by callers that already know repo velocity; Window here uses
// the static configured/default size as the initial fetch).
func (c *Context) Window(ctx context.Context) (*gitdriver.CommitWindow, error) {
	c.windowOnce.Do(func() {
		n := c.Config.Thresholds.AnalysisWindow
		if n <= 0 {
			n = config.DefaultThresholds().AnalysisWindow
		}
		if maxWindow := maxWindowFromEnv(); maxWindow > 0 && n > maxWindow {
			n = maxWindow
		}
		window, reason, err := c.Driver.LogWindow(ctx, n)
		if err != nil {
			c.windowErr = err
			return
		}
		if reason != "" {
			c.window = &gitdriver.CommitWindow{}
			return
		}
		c.window = window
	})
	return c.window, c.windowErr
}

// FileHistory filters the CommitWindow to commits that touched path,
// applying the IgnoreFilter to each commit's ChangedFiles list along the
// way so every downstream engine sees the same filtered view.
func (c *Context) FileHistory(ctx context.Context, path string) ([]gitdriver.Commit, error) {
	window, err := c.Window(ctx)
	if err != nil {
		return nil, err
	}

	rel := c.Canonicalize(path)

	var history []gitdriver.Commit
	for _, commit := range window.Commits {
		filtered := c.Ignore.FilterPaths(commit.ChangedFiles)
		touches := false
		for _, f := range filtered {
			if f == rel {
				touches = true
				break
			}
		}
		if !touches {
			continue
		}
		commit.ChangedFiles = filtered
		history = append(history, commit)
	}
	return history, nil
}

// Canonicalize converts an absolute or repo-relative path into the
// slash-separated, repo-relative form CommitWindow entries use.
func (c *Context) Canonicalize(path string) string {
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(c.RepoRoot, path); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}
