package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQualifiedName_Split(t *testing.T) {
	tests := []struct {
		name     QualifiedName
		expected Parts
	}{
		{"lib.bench.case1", Parts{Library: "lib", Testbench: "bench", TestCase: "case1"}},
		{"lib.bench.case1.case2", Parts{Library: "lib", Testbench: "bench", TestCase: "case1.case2"}},
		{"lib.tb_foo.test with spaces", Parts{Library: "lib", Testbench: "tb_foo", TestCase: "test with spaces"}},
		{"lib.bench", Parts{Library: "lib", Testbench: "bench"}},
		{"lib", Parts{Library: "lib"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.name.Split())
		})
	}
}

func TestParts_Prefixes(t *testing.T) {
	p := QualifiedName("lib.tb.a.b").Split()
	assert.Equal(t, "lib", p.LibraryPrefix())
	assert.Equal(t, "lib.tb", p.TestbenchPrefix())
}

func TestDiagnostic_SameRange(t *testing.T) {
	a := Diagnostic{File: "a.vhd", Line: 3, Column: 0, Severity: SeverityError, Message: "x"}

	assert.True(t, a.SameRange(Diagnostic{Line: 3, Message: "x", Severity: SeverityWarning}))
	assert.False(t, a.SameRange(Diagnostic{Line: 3, Column: 1, Message: "x"}))
	assert.False(t, a.SameRange(Diagnostic{Line: 3, Message: "y"}))
	assert.Equal(t, "a.vhd:4:1: error: x", a.String())
}

func TestRunRecord_Finish(t *testing.T) {
	rec := &RunRecord{
		Results: []CaseResult{
			{Status: StatusPassed},
			{Status: StatusPassed},
			{Status: StatusFailed},
			{Status: StatusSkipped},
			{Status: StatusErrored},
		},
		Diagnostics: []Diagnostic{{File: "a"}},
	}
	rec.Finish(1500 * time.Millisecond)

	assert.Equal(t, 5, rec.Meta.Total)
	assert.Equal(t, 2, rec.Meta.Passed)
	assert.Equal(t, 1, rec.Meta.Failed)
	assert.Equal(t, 1, rec.Meta.Skipped)
	assert.Equal(t, 1, rec.Meta.Errored)
	assert.Equal(t, 1, rec.Meta.Diagnostics)
	assert.InDelta(t, 1.5, rec.Meta.DurationSeconds, 1e-9)
	assert.Len(t, rec.Failures(), 2)
}

func TestErrors(t *testing.T) {
	perr := &ProcessError{Script: "run.py", ExitCode: 3}
	assert.Contains(t, perr.Error(), "(3)")

	cause := errors.New("unexpected EOF")
	var target *ParseError
	wrapped := error(&ParseError{Path: "x.json", Err: cause})
	assert.True(t, errors.As(wrapped, &target))
	assert.ErrorIs(t, wrapped, cause)

	assert.Equal(t, "run.py missing", NewConfigError("%s missing", "run.py").Error())
}
