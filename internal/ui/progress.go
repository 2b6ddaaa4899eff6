package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"vtp/internal/domain"
	"vtp/internal/tree"
)

// ProgressBar creates and manages progress bars
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a new progress bar over count test cases, writing
// to out (stderr when nil)
func NewProgressBar(count int, out io.Writer) *ProgressBar {
	if out == nil {
		out = os.Stderr
	}
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(describe(0, 0, 0)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &ProgressBar{bar: bar}
}

func describe(passed, failed, skipped int) string {
	return color.CyanString("Running tests: ") +
		color.GreenString("[passed: %d", passed) +
		" | " +
		color.RedString("failed: %d", failed) +
		" | " +
		color.YellowString("skipped: %d]", skipped)
}

// Update updates the progress bar with the counts of finished test cases
func (p *ProgressBar) Update(passed, failed, skipped int) {
	_ = p.bar.Set(passed + failed + skipped)
	p.bar.Describe(describe(passed, failed, skipped))
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

// ProgressReporter advances a ProgressBar whenever a test case reaches a
// final state. Each test case is counted once.
type ProgressReporter struct {
	bar  *ProgressBar
	seen map[string]bool

	passed, failed, skipped int
}

// NewProgressReporter creates a reporter driving bar
func NewProgressReporter(bar *ProgressBar) *ProgressReporter {
	return &ProgressReporter{
		bar:  bar,
		seen: make(map[string]bool),
	}
}

func (r *ProgressReporter) Loaded(*tree.Tree) {}

func (r *ProgressReporter) Output(string) {}

func (r *ProgressReporter) NodeChanged(state tree.NodeState) {
	if state.Kind != tree.KindTestCase || !state.Status.IsTerminal() || r.seen[state.ID] {
		return
	}
	r.seen[state.ID] = true

	switch state.Status {
	case domain.StatusPassed:
		r.passed++
	case domain.StatusFailed, domain.StatusErrored:
		r.failed++
	default:
		r.skipped++
	}
	if r.bar != nil {
		r.bar.Update(r.passed, r.failed, r.skipped)
	}
}

// SetBar replaces the bar driven by the reporter
func (r *ProgressReporter) SetBar(bar *ProgressBar) {
	r.bar = bar
}

// Counts returns the passed, failed and skipped test cases seen so far
func (r *ProgressReporter) Counts() (passed, failed, skipped int) {
	return r.passed, r.failed, r.skipped
}
