package parser

import (
	"strings"

	"github.com/acarl005/stripansi"

	"vtp/internal/config"
	"vtp/internal/domain"
)

// Interpreter recognizes test boundaries and diagnostics in VUnit output.
// The only state carried between lines is the assertion flag. An
// Interpreter serves one process at a time and is not safe for concurrent use.
type Interpreter struct {
	matchProblems  bool
	matchAssertion bool
	showTime       bool

	armed bool
}

// NewInterpreter creates an Interpreter with the toggles from cfg
func NewInterpreter(cfg *config.Config) *Interpreter {
	return &Interpreter{
		matchProblems:  cfg.MatchProblems,
		matchAssertion: cfg.MatchAssertionFailure,
		showTime:       cfg.ShowExecutionTime,
	}
}

// Interpret returns the events reported by a single output line. The matchers
// are independent, so one line may produce several events.
func (i *Interpreter) Interpret(line string) []Event {
	line = strings.TrimRight(stripansi.Strip(line), "\r\n")

	var events []Event

	if b, ok := matchBoundary(line, i.showTime); ok {
		ev := Event{
			Kind:        EventPassed,
			Name:        domain.QualifiedName(b.name),
			Duration:    b.duration,
			HasDuration: b.hasDuration,
		}
		if !b.passed {
			ev.Kind = EventFailed
			ev.Message = b.name + " failed!"
		}
		events = append(events, ev)
	} else if name, ok := matchStart(line); ok {
		events = append(events, Event{Kind: EventStarted, Name: domain.QualifiedName(name)})
	}

	if i.matchProblems {
		if d, ok := matchProblem(line); ok {
			events = append(events, Event{Kind: EventDiagnostic, Diagnostic: &d})
		}
	}

	if i.matchAssertion {
		if !i.armed && strings.Contains(line, AssertionMarker) {
			i.armed = true
		}
		if i.armed {
			if d, ok := matchStopped(line); ok {
				i.armed = false
				events = append(events, Event{Kind: EventDiagnostic, Diagnostic: &d})
			}
		}
	}

	return events
}

// Armed reports whether an assertion failure awaits its location line
func (i *Interpreter) Armed() bool {
	return i.armed
}

// Reset clears the assertion flag at the end of a process
func (i *Interpreter) Reset() {
	i.armed = false
}
