package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"vtp/internal/domain"
)

// Viewer displays the problems of a run
type Viewer interface {
	View(record *domain.RunRecord) error
}

// ProblemItem is one entry of the problems list
type ProblemItem struct {
	Title    string
	Severity domain.Severity
	File     string
	Line     int // zero-based, -1 when unknown
	Column   int
	Message  string
	Case     *domain.CaseResult
}

// ProblemItems lists the diagnostics of record followed by its failed cases
func ProblemItems(record *domain.RunRecord, relative func(string) string) []ProblemItem {
	if relative == nil {
		relative = func(p string) string { return p }
	}

	var items []ProblemItem
	for _, d := range record.Diagnostics {
		items = append(items, ProblemItem{
			Title:    fmt.Sprintf("%s:%d %s", relative(d.File), d.Line+1, d.Message),
			Severity: d.Severity,
			File:     d.File,
			Line:     d.Line,
			Column:   d.Column,
			Message:  d.Message,
		})
	}
	for _, res := range record.Failures() {
		res := res
		name := res.Name
		if name == "" {
			name = relative(res.Script)
		}
		item := ProblemItem{
			Title:    fmt.Sprintf("%s %s", StatusGlyph(res.Status), name),
			Severity: domain.SeverityError,
			File:     res.File,
			Line:     -1,
			Message:  res.Message,
			Case:     &res,
		}
		if res.File != "" && res.Line > 0 {
			item.Line = res.Line - 1
		}
		items = append(items, item)
	}
	return items
}

// SourceExcerpt returns the lines around the zero-based line of path, each
// prefixed with its one-based number. The target line is marked with '>'.
func SourceExcerpt(path string, line, around int) ([]string, error) {
	if path == "" || line < 0 {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	first, last := line-around, line+around
	var out []string
	scanner := bufio.NewScanner(f)
	for n := 0; scanner.Scan(); n++ {
		if n < first {
			continue
		}
		if n > last {
			break
		}
		marker := " "
		if n == line {
			marker = ">"
		}
		out = append(out, fmt.Sprintf("%s %4d | %s", marker, n+1, strings.TrimRight(scanner.Text(), "\r")))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return out, nil
}
