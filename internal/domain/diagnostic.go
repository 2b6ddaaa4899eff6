package domain

import "fmt"

// Severity of a diagnostic reported by the simulator or VUnit.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DiagnosticSource is attached to every diagnostic produced from tool output.
const DiagnosticSource = "VUnit"

// Diagnostic is a located problem in a source file. Line and Column are zero-based.
type Diagnostic struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Source   string   `json:"source,omitempty"`
}

// SameRange reports whether both diagnostics carry the same range and message.
// Severity and source do not take part in the comparison.
func (d Diagnostic) SameRange(other Diagnostic) bool {
	return d.Line == other.Line && d.Column == other.Column && d.Message == other.Message
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line+1, d.Column+1, d.Severity, d.Message)
}
