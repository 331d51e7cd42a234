// Package progress renders a single-line stderr spinner around a one-shot
// analysis run, so a `memoria analyze` invocation against a slow repository
// (a cold git log walk, a large tree-sitter parse) doesn't sit silent.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a single indeterminate-length spinner for one analysis run.
// Memoria analyzes one file per invocation, so there's no total count to
// track against -- unlike the teacher's batch file processor, there is only
// ever a start and an end.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
}

// NewSpinner starts a spinner describing the operation in label. The bar
// clears itself on Finish, so FinishSuccess/FinishError control what (if
// anything) replaces it on stderr.
func NewSpinner(label string) *Tracker {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, label: label}
}

// FinishSuccess clears the spinner with no further output; the pipeline's
// own formatter prints the report next.
func (t *Tracker) FinishSuccess() {
	t.bar.Finish()
	t.bar.Clear()
}

// FinishError clears the spinner and prints the failure reason to stderr
// before the caller returns its own wrapped error.
func (t *Tracker) FinishError(err error) {
	t.bar.Finish()
	t.bar.Clear()
	fmt.Fprintf(os.Stderr, "  %s error: %v\n", t.label, err)
}
