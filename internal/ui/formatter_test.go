package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"vtp/internal/config"
	"vtp/internal/domain"
	"vtp/internal/tree"
)

const script = "/ws/sim/run.py"

func newTestFormatter(t *testing.T) (*Formatter, *bytes.Buffer) {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	cfg := config.New()
	cfg.WorkspaceRoot = "/ws"
	var buf bytes.Buffer
	return NewFormatter(cfg, &buf), &buf
}

func TestStatusGlyph(t *testing.T) {
	tests := []struct {
		status domain.TestStatus
		want   string
	}{
		{domain.StatusPassed, "✓"},
		{domain.StatusFailed, "✗"},
		{domain.StatusErrored, "!"},
		{domain.StatusSkipped, "-"},
		{domain.StatusRunning, "▶"},
		{domain.StatusQueued, "…"},
		{domain.StatusUnset, "○"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusGlyph(tt.status))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "", FormatDuration(0))
	assert.Equal(t, "12ms", FormatDuration(12*time.Millisecond))
	assert.Equal(t, "1.50s", FormatDuration(1500*time.Millisecond))
}

func TestNodeLine(t *testing.T) {
	tests := []struct {
		name  string
		state tree.NodeState
		want  string
	}{
		{
			name:  "passed with duration",
			state: tree.NodeState{Label: "one", Status: domain.StatusPassed, Duration: 5 * time.Millisecond},
			want:  "✓ one (5ms)",
		},
		{
			name:  "failed shows message",
			state: tree.NodeState{Label: "two", Status: domain.StatusFailed, Message: "boom"},
			want:  "✗ two - boom",
		},
		{
			name:  "passed hides message",
			state: tree.NodeState{Label: "three", Status: domain.StatusPassed, Message: "ignored"},
			want:  "✓ three",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NodeLine(tt.state))
		})
	}
}

func TestFormatter_PrintTree(t *testing.T) {
	f, buf := newTestFormatter(t)

	tr := tree.New()
	tr.AddScript(script, "sim/run.py", domain.ExportData{Tests: []domain.ExportedTest{
		{Name: "lib.tb.one"},
		{Name: "lib.tb.two"},
	}}, nil)
	tr.Finish(tree.NameID(script, "lib.tb.one"), domain.StatusPassed, "", 12*time.Millisecond)
	tr.Finish(tree.NameID(script, "lib.tb.two"), domain.StatusFailed, "boom", 0)

	f.PrintTree(tr)

	out := buf.String()
	assert.Contains(t, out, "Found 1 script(s) with 2 test case(s):")
	assert.Contains(t, out, "○ sim/run.py\n")
	assert.Contains(t, out, "└── ○ lib\n")
	assert.Contains(t, out, "    └── ○ tb\n")
	assert.Contains(t, out, "        ├── ✓ one (12ms)\n")
	assert.Contains(t, out, "        └── ✗ two - boom\n")
}

func TestFormatter_PrintTreeEmpty(t *testing.T) {
	f, buf := newTestFormatter(t)
	f.PrintTree(tree.New())
	assert.Contains(t, buf.String(), "No VUnit run scripts found")
}

func TestFormatter_PrintSummary(t *testing.T) {
	f, buf := newTestFormatter(t)

	record := &domain.RunRecord{
		Results: []domain.CaseResult{
			{Script: script, Name: "lib.tb.one", Status: domain.StatusPassed},
			{Script: script, Name: "lib.tb.two", Status: domain.StatusFailed, Message: "boom"},
			{Script: script, Name: "lib.tb.three", Status: domain.StatusSkipped},
		},
		Diagnostics: []domain.Diagnostic{{File: "/ws/tb.vhd", Message: "bad"}},
	}
	record.Finish(2 * time.Second)

	f.PrintSummary(record)

	out := buf.String()
	assert.Contains(t, out, "sim/run.py")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "✗ 1 test case(s) failed, 0 errored")
	assert.Contains(t, out, "✗ lib.tb.two: boom")
	assert.Contains(t, out, "1 problem(s) reported")
}

func TestFormatter_PrintSummaryVerdicts(t *testing.T) {
	t.Run("all passed", func(t *testing.T) {
		f, buf := newTestFormatter(t)
		record := &domain.RunRecord{Results: []domain.CaseResult{{Script: script, Name: "a", Status: domain.StatusPassed}}}
		record.Finish(time.Second)
		f.PrintSummary(record)
		assert.Contains(t, buf.String(), "✓ All 1 test case(s) passed!")
	})

	t.Run("cancelled", func(t *testing.T) {
		f, buf := newTestFormatter(t)
		record := &domain.RunRecord{Meta: domain.RunMeta{Cancelled: true}}
		record.Finish(time.Second)
		f.PrintSummary(record)
		assert.Contains(t, buf.String(), "Test run cancelled")
	})
}

func TestFormatter_PrintDiagnostics(t *testing.T) {
	f, buf := newTestFormatter(t)

	f.PrintDiagnostics([]domain.Diagnostic{
		{File: "/ws/src/tb.vhd", Line: 9, Column: 2, Severity: domain.SeverityError, Message: "oops"},
		{File: "/ws/src/pkg.vhd", Line: 0, Column: 0, Severity: domain.SeverityWarning, Message: "hmm"},
	})

	assert.Equal(t, "src/tb.vhd:10:3: error: oops\nsrc/pkg.vhd:1:1: warning: hmm\n", buf.String())
}

func TestFormatter_PrintDiagnosticsEmpty(t *testing.T) {
	f, buf := newTestFormatter(t)
	f.PrintDiagnostics(nil)
	assert.Contains(t, buf.String(), "No problems reported")
}
