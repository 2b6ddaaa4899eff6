package domain

import "strings"

// QualifiedName is a dotted VUnit test name: library.testbench.testcase.
// The test case part may itself contain dots.
type QualifiedName string

// Parts holds the decomposed segments of a QualifiedName.
type Parts struct {
	Library   string
	Testbench string
	TestCase  string
}

// Split decomposes the name. The first segment is the library, the second the
// testbench and the remaining segments joined by "." the test case.
func (n QualifiedName) Split() Parts {
	segments := strings.Split(string(n), ".")
	var p Parts
	p.Library = segments[0]
	if len(segments) > 1 {
		p.Testbench = segments[1]
	}
	if len(segments) > 2 {
		p.TestCase = strings.Join(segments[2:], ".")
	}
	return p
}

// LibraryPrefix returns "library".
func (p Parts) LibraryPrefix() string {
	return p.Library
}

// TestbenchPrefix returns "library.testbench".
func (p Parts) TestbenchPrefix() string {
	return p.Library + "." + p.Testbench
}

// Position is a zero-based anchor inside a source file.
type Position struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// TestStatus is the state of a node in the test tree.
type TestStatus string

const (
	StatusUnset   TestStatus = ""
	StatusQueued  TestStatus = "queued"
	StatusRunning TestStatus = "running"
	StatusPassed  TestStatus = "passed"
	StatusFailed  TestStatus = "failed"
	StatusSkipped TestStatus = "skipped"
	StatusErrored TestStatus = "errored"
)

// IsTerminal reports whether the status is a final result of a run.
func (s TestStatus) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusSkipped, StatusErrored:
		return true
	}
	return false
}
