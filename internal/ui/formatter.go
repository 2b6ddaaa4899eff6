package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"vtp/internal/config"
	"vtp/internal/domain"
	"vtp/internal/tree"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to out, stdout when nil
func NewFormatter(cfg *config.Config, out io.Writer) *Formatter {
	if out == nil {
		out = os.Stdout
	}
	return &Formatter{
		config: cfg,
		out:    out,
	}
}

// StatusGlyph returns the symbol printed in front of a node
func StatusGlyph(status domain.TestStatus) string {
	switch status {
	case domain.StatusPassed:
		return "✓"
	case domain.StatusFailed:
		return "✗"
	case domain.StatusErrored:
		return "!"
	case domain.StatusSkipped:
		return "-"
	case domain.StatusRunning:
		return "▶"
	case domain.StatusQueued:
		return "…"
	default:
		return "○"
	}
}

func statusColor(status domain.TestStatus) *color.Color {
	switch status {
	case domain.StatusPassed:
		return color.New(color.FgGreen)
	case domain.StatusFailed, domain.StatusErrored:
		return color.New(color.FgRed)
	case domain.StatusSkipped:
		return color.New(color.FgYellow)
	case domain.StatusRunning, domain.StatusQueued:
		return color.New(color.FgCyan)
	default:
		return color.New(color.Reset)
	}
}

// FormatDuration renders a duration the way the tree shows it
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// NodeLine renders a single node without tree connectors
func NodeLine(state tree.NodeState) string {
	var b strings.Builder
	b.WriteString(StatusGlyph(state.Status))
	b.WriteString(" ")
	b.WriteString(state.Label)
	if d := FormatDuration(state.Duration); d != "" {
		fmt.Fprintf(&b, " (%s)", d)
	}
	if state.Message != "" && (state.Status == domain.StatusFailed || state.Status == domain.StatusErrored) {
		fmt.Fprintf(&b, " - %s", state.Message)
	}
	return b.String()
}

// PrintTree prints the test tree with one line per node
func (f *Formatter) PrintTree(t *tree.Tree) {
	roots := t.Roots()
	cases := 0
	for _, root := range roots {
		cases += len(t.Leaves(root.ID))
	}

	if len(roots) == 0 {
		color.New(color.FgYellow).Fprintln(f.out, "No VUnit run scripts found")
		return
	}

	color.New(color.FgGreen).Fprintf(f.out, "Found %d script(s) with %d test case(s):\n\n", len(roots), cases)
	for i, root := range roots {
		state := root.State()
		color.New(color.FgCyan).Fprintln(f.out, NodeLine(state))
		f.printChildren(root, "")
		if i < len(roots)-1 {
			fmt.Fprintln(f.out)
		}
	}
}

func (f *Formatter) printChildren(n *tree.Node, prefix string) {
	children := n.Children()
	for i, child := range children {
		last := i == len(children)-1
		connector, next := "├── ", "│   "
		if last {
			connector, next = "└── ", "    "
		}

		state := child.State()
		fmt.Fprint(f.out, prefix+connector)
		statusColor(state.Status).Fprintln(f.out, NodeLine(state))
		f.printChildren(child, prefix+next)
	}
}

// scriptRow accumulates counters of one script for the summary table
type scriptRow struct {
	script                                 string
	tests, passed, failed, skipped, errors int
}

// PrintSummary prints the run counters per script and the verdict
func (f *Formatter) PrintSummary(record *domain.RunRecord) {
	var rows []*scriptRow
	byScript := map[string]*scriptRow{}
	for _, res := range record.Results {
		row, ok := byScript[res.Script]
		if !ok {
			row = &scriptRow{script: res.Script}
			byScript[res.Script] = row
			rows = append(rows, row)
		}
		row.tests++
		switch res.Status {
		case domain.StatusPassed:
			row.passed++
		case domain.StatusFailed:
			row.failed++
		case domain.StatusSkipped:
			row.skipped++
		case domain.StatusErrored:
			row.errors++
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle("VUnit Test Results")
	t.AppendHeader(table.Row{"Script", "Tests", "Passed", "Failed", "Skipped", "Errored"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Script", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Errored", Align: text.AlignRight},
	})
	for _, row := range rows {
		t.AppendRow(table.Row{f.relative(row.script), row.tests, row.passed, row.failed, row.skipped, row.errors})
	}

	meta := record.Meta
	t.AppendFooter(table.Row{
		fmt.Sprintf("TOTAL (%.2fs)", meta.DurationSeconds),
		meta.Total, meta.Passed, meta.Failed, meta.Skipped, meta.Errored,
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Fprintln(f.out)
	switch {
	case meta.Cancelled:
		color.New(color.FgYellow).Fprintln(f.out, "⚠ Test run cancelled")
	case meta.Failed+meta.Errored == 0:
		color.New(color.FgGreen).Fprintf(f.out, "✓ All %d test case(s) passed!\n", meta.Passed)
	default:
		color.New(color.FgRed).Fprintf(f.out, "✗ %d test case(s) failed, %d errored\n", meta.Failed, meta.Errored)
		f.PrintFailures(record)
	}

	if meta.Diagnostics > 0 {
		color.New(color.FgYellow).Fprintf(f.out, "%d problem(s) reported, see 'vtp problems'\n", meta.Diagnostics)
	}
}

// PrintFailures prints the failed and errored cases of record
func (f *Formatter) PrintFailures(record *domain.RunRecord) {
	for _, res := range record.Failures() {
		name := res.Name
		if name == "" {
			name = f.relative(res.Script)
		}
		line := "  " + StatusGlyph(res.Status) + " " + name
		if res.Message != "" {
			line += ": " + res.Message
		}
		color.New(color.FgRed).Fprintln(f.out, line)
	}
}

// PrintDiagnostics prints one line per diagnostic, file:line:col: severity: message
func (f *Formatter) PrintDiagnostics(list []domain.Diagnostic) {
	if len(list) == 0 {
		color.New(color.FgGreen).Fprintln(f.out, "✓ No problems reported")
		return
	}
	for _, d := range list {
		c := color.New(color.FgRed)
		if d.Severity == domain.SeverityWarning {
			c = color.New(color.FgYellow)
		}
		rel := d
		rel.File = f.relative(d.File)
		c.Fprintln(f.out, rel.String())
	}
}

func (f *Formatter) relative(path string) string {
	if f.config == nil {
		return path
	}
	return f.config.RelativeToWorkspace(path)
}
