package mcpserver

// Tool descriptions optimized for LLM context efficiency.
// Keep descriptions concise - focus on what the tool does and when to use it.

func describeAnalyzeFile() string {
	return `Produces a structured risk report for a single file in a git repository.

USE WHEN:
- Deciding how carefully to review or test a change to this file
- Finding which other files tend to need a matching edit
- Checking whether a file's git history shows a pattern of panic fixes

METRICS RETURNED:
- risk: a 0-100 compound score with human-readable factors
- volatility: panic score, author ownership, recency decay, top panic commits
- coupled: files that tend to change alongside this one, with evidence
- drift: coupled files whose last edit is far apart in time from this file's
- importers: files that textually import this file
- siblings: directory conventions, used only for files with no history`
}

func describeAskHistory() string {
	return `Searches a file's or repository's git history by commit message, content
change (pickaxe), or exact line range.

USE WHEN:
- Finding when and why a specific behavior was introduced
- Locating the commit that last touched a line range before editing it
- Distinguishing a message-level mention from an actual code change

MODES:
- message: git log --grep over commit subjects/bodies
- diff: pickaxe search (-S for literal strings, -G for regex) over added/removed lines
- both (default): union of message and diff matches, deduped by commit

A startLine/endLine pair switches to a line-range log regardless of mode.`
}
