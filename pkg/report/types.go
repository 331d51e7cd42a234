// Package report defines the wire data contract returned by the analysis
// pipeline: a structured risk report for a single file in a git repository.
package report

import "time"

// ChangeType classifies what kind of change a DiffSummary represents.
type ChangeType string

const (
	ChangeSchema  ChangeType = "schema"
	ChangeAPI     ChangeType = "api"
	ChangeTypes   ChangeType = "types"
	ChangeLogic   ChangeType = "logic"
	ChangeUnknown ChangeType = "unknown"
)

// CouplingSource identifies which signal produced a CouplingEdge.
type CouplingSource string

const (
	SourceGit         CouplingSource = "git"
	SourceType        CouplingSource = "type"
	SourceContent     CouplingSource = "content"
	SourceAPI         CouplingSource = "api"
	SourceTest        CouplingSource = "test"
	SourceTransitive  CouplingSource = "transitive"
)

// RiskLevel buckets a 0-100 risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// LevelForScore is the pure low/medium/high/critical mapping used everywhere
// a risk score needs a human label: <25 low, <50 medium, <75 high, >=75 critical.
func LevelForScore(score int) RiskLevel {
	switch {
	case score < 25:
		return RiskLow
	case score < 50:
		return RiskMedium
	case score < 75:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// HistoryMatchType identifies what a HistoryMatch matched on.
type HistoryMatchType string

const (
	MatchMessage HistoryMatchType = "message"
	MatchDiff    HistoryMatchType = "diff"
)

// DiffSummary is evidence attached to a CouplingEdge: the shape of the most
// recent shared change between the target and the coupled file.
type DiffSummary struct {
	Additions         []string   `json:"additions"`
	Removals          []string   `json:"removals"`
	Hunks             int        `json:"hunks"`
	NetChange         int        `json:"netChange"`
	HasBreakingChange bool       `json:"hasBreakingChange"`
	ChangeType        ChangeType `json:"changeType"`
}

// CouplingEdge is one file that tends to change alongside the target.
type CouplingEdge struct {
	File     string         `json:"file"`
	Score    int            `json:"score"`
	Reason   string         `json:"reason"`
	Source   CouplingSource `json:"source"`
	Evidence *DiffSummary   `json:"evidence,omitempty"`
}

// AuthorShare is one author's contribution to a file's history.
type AuthorShare struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Commits     int       `json:"commits"`
	Percentage  float64   `json:"percentage"`
	FirstCommit time.Time `json:"firstCommit"`
	LastCommit  time.Time `json:"lastCommit"`
}

// RecencyDecay summarizes how old the file's history is and how much that
// age has discounted its volatility signal.
type RecencyDecay struct {
	OldestCommitDays int     `json:"oldestCommitDays"`
	NewestCommitDays int     `json:"newestCommitDays"`
	DecayFactor      float64 `json:"decayFactor"`
}

// PanicCommit is one of a file's highest-scoring commits by decayed panic
// weight. A commit with no panic keyword can appear, with a zero score, when
// fewer than five commits carry one.
type PanicCommit struct {
	SHA          string    `json:"sha"`
	Subject      string    `json:"subject"`
	CommittedAt  time.Time `json:"committedAt"`
	PanicWeight  float64   `json:"panicWeight"`
	DecayedScore float64   `json:"decayedScore"`
}

// VolatilityResult is the instability signal computed from commit history.
type VolatilityResult struct {
	PanicScore    int            `json:"panicScore"`
	CommitCount   int            `json:"commitCount"`
	AuthorDetails []AuthorShare  `json:"authorDetails"`
	TopAuthor     *AuthorShare   `json:"topAuthor,omitempty"`
	RecencyDecay  RecencyDecay   `json:"recencyDecay"`
	PanicCommits  []PanicCommit  `json:"panicCommits"`
}

// DriftItem names a coupled file whose filesystem mtime is more than the
// drift threshold apart from the target's, in either direction.
type DriftItem struct {
	File    string `json:"file"`
	DaysOld int    `json:"daysOld"`
}

// Importer is a file that textually imports the target by stem.
type Importer string

// NamingPattern is one convention SiblingGuidance detected across a
// directory's sibling files, with a 0-100 confidence.
type NamingPattern struct {
	Description string `json:"description"`
	Confidence  int    `json:"confidence"`
}

// SiblingGuidance reports conventions inferred from a new file's directory
// siblings, used only when the target has no commit history of its own.
type SiblingGuidance struct {
	SampledFiles      []string        `json:"sampledFiles"`
	AvgPanicScore     float64         `json:"avgPanicScore"`
	HasMatchingTests  bool            `json:"hasMatchingTests"`
	CommonImports     []string        `json:"commonImports"`
	Patterns          []NamingPattern `json:"patterns"`
}

// RiskAssessment is the compound 0-100 score and its human-readable factors.
type RiskAssessment struct {
	Score   int       `json:"score"`
	Level   RiskLevel `json:"level"`
	Factors []string  `json:"factors"`
}

// AnalysisReport is the full response to an analyze_file request.
type AnalysisReport struct {
	FilePath  string           `json:"filePath"`
	Risk      RiskAssessment   `json:"risk"`
	Volatility VolatilityResult `json:"volatility"`
	Coupled   []CouplingEdge   `json:"coupled"`
	Drift     []DriftItem      `json:"drift"`
	Importers []Importer       `json:"importers"`
	Siblings  *SiblingGuidance `json:"siblings,omitempty"`

	// Partial is set when the per-request deadline expired before every
	// engine finished (engines that didn't finish contribute empty results),
	// and whenever Degraded is non-empty.
	Partial bool `json:"partial,omitempty"`
	// Degraded names, per engine key, why that engine's contribution is
	// empty or incomplete (e.g. "git failed", "timeout").
	Degraded map[string]string `json:"degraded,omitempty"`
}

// HistoryMatch is one commit returned by ask_history.
type HistoryMatch struct {
	SHA       string           `json:"sha"`
	Author    string           `json:"author"`
	Date      time.Time        `json:"date"`
	Subject   string           `json:"subject"`
	MatchType HistoryMatchType `json:"matchType"`
	Snippet   string           `json:"snippet,omitempty"`
}

// HistorySearchOutput is the response to an ask_history request.
type HistorySearchOutput struct {
	Results    []HistoryMatch `json:"results"`
	TotalFound int            `json:"totalFound"`
	Partial    bool           `json:"partial,omitempty"`
}
