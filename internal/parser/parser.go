package parser

import (
	"time"

	"vtp/internal/domain"
)

// Parser folds VUnit output lines into events
type Parser interface {
	Interpret(line string) []Event
	Reset()
}

// EventKind identifies what a line reported
type EventKind int

const (
	EventStarted EventKind = iota
	EventPassed
	EventFailed
	EventDiagnostic
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventPassed:
		return "passed"
	case EventFailed:
		return "failed"
	case EventDiagnostic:
		return "diagnostic"
	default:
		return "unknown"
	}
}

// Event is a single state transition recognized in the output
type Event struct {
	Kind EventKind

	// Name is the qualified test name for start and boundary events
	Name        domain.QualifiedName
	Message     string
	Duration    time.Duration
	HasDuration bool

	// Diagnostic is set for EventDiagnostic
	Diagnostic *domain.Diagnostic
}
