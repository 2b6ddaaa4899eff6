package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"vtp/internal/domain"
)

// AssertionMarker arms the assertion location matcher
const AssertionMarker = "** Error: Assertion violation."

// AssertionMessage is the message of diagnostics created from assertion failures
const AssertionMessage = "Assertion violation."

var (
	// pass (P=1 S=0 F=0 T=1) lib.tb.case (0.5 seconds)
	boundaryRe = regexp.MustCompile(`^\s*(pass|fail) \(([^)]*)\) (.+?)(?: \((\d+(?:\.\d+)?) (?:s|seconds)\))?\s*$`)

	startRe = regexp.MustCompile(`^\s*Starting (.+?)\s*$`)

	// ** Error: tb.vhd(10): (vcom-1136) Unknown identifier
	// ** Error (suppressible): C:/src/tb.vhd(12,4): message
	// *** Warning[W1] tb.vhd(5).message
	//
	// The file needs an extension. Absolute paths may contain spaces.
	problemRe = regexp.MustCompile(`^[#\s]*\*{2,3}\s*(Error|Warning|Fatal|Failure)\b(?:\s*\([^)]*\)|\s*\[[^\]]*\])?\s*:?\s*(?:.*?[\s(])?((?:[A-Za-z]:)?[/\\][^()\r\n]*?\.\w+|[^\s()]+\.\w+)\((\d+)(?:,\s*(\d+))?\)\)?[.:]?\)?\s*(.*)$`)

	stoppedRe = regexp.MustCompile(`Stopped at (\S+) line (\d+)`)
)

type boundary struct {
	passed      bool
	name        string
	duration    time.Duration
	hasDuration bool
}

func matchBoundary(line string, withTime bool) (boundary, bool) {
	m := boundaryRe.FindStringSubmatch(line)
	if m == nil {
		return boundary{}, false
	}
	b := boundary{passed: m[1] == "pass", name: m[3]}
	if withTime && m[4] != "" {
		if secs, err := strconv.ParseFloat(m[4], 64); err == nil {
			b.duration = time.Duration(math.Round(secs*1000)) * time.Millisecond
			b.hasDuration = true
		}
	}
	return b, true
}

func matchStart(line string) (string, bool) {
	m := startRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func matchProblem(line string) (domain.Diagnostic, bool) {
	m := problemRe.FindStringSubmatch(line)
	if m == nil {
		return domain.Diagnostic{}, false
	}
	lineNo, err := strconv.Atoi(m[3])
	if err != nil {
		return domain.Diagnostic{}, false
	}
	col := 0
	if m[4] != "" {
		if c, err := strconv.Atoi(m[4]); err == nil && c > 0 {
			col = c - 1
		}
	}
	severity := domain.SeverityError
	if m[1] == "Warning" {
		severity = domain.SeverityWarning
	}
	msg := strings.TrimSpace(m[5])
	if msg == "" {
		msg = strings.TrimSpace(line)
	}
	return domain.Diagnostic{
		File:     m[2],
		Line:     zeroBased(lineNo),
		Column:   col,
		Severity: severity,
		Message:  msg,
		Source:   domain.DiagnosticSource,
	}, true
}

func matchStopped(line string) (domain.Diagnostic, bool) {
	m := stoppedRe.FindStringSubmatch(line)
	if m == nil {
		return domain.Diagnostic{}, false
	}
	lineNo, err := strconv.Atoi(m[2])
	if err != nil {
		return domain.Diagnostic{}, false
	}
	return domain.Diagnostic{
		File:     m[1],
		Line:     zeroBased(lineNo),
		Severity: domain.SeverityError,
		Message:  AssertionMessage,
		Source:   domain.DiagnosticSource,
	}, true
}

func zeroBased(n int) int {
	if n < 1 {
		return 0
	}
	return n - 1
}
