package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtp/internal/domain"
)

func TestProblemItems(t *testing.T) {
	record := &domain.RunRecord{
		Diagnostics: []domain.Diagnostic{
			{File: "/ws/tb.vhd", Line: 4, Column: 1, Severity: domain.SeverityWarning, Message: "unused"},
		},
		Results: []domain.CaseResult{
			{Script: "/ws/run.py", Name: "lib.tb.ok", Status: domain.StatusPassed},
			{Script: "/ws/run.py", Name: "lib.tb.bad", Status: domain.StatusFailed, Message: "boom", File: "/ws/tb.vhd", Line: 7},
			{Script: "/ws/run.py", Status: domain.StatusErrored, Message: "Error in Execution of /ws/run.py"},
		},
	}

	items := ProblemItems(record, func(p string) string { return filepath.Base(p) })
	require.Len(t, items, 3)

	assert.Equal(t, "tb.vhd:5 unused", items[0].Title)
	assert.Equal(t, domain.SeverityWarning, items[0].Severity)
	assert.Nil(t, items[0].Case)

	assert.Equal(t, "✗ lib.tb.bad", items[1].Title)
	assert.Equal(t, 6, items[1].Line)
	require.NotNil(t, items[1].Case)
	assert.Equal(t, "lib.tb.bad", items[1].Case.Name)

	assert.Equal(t, "! run.py", items[2].Title)
	assert.Equal(t, -1, items[2].Line)
	assert.Equal(t, "run.py", filepath.Base(items[2].Case.Script))
}

func TestSourceExcerpt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tb.vhd")
	require.NoError(t, os.WriteFile(path, []byte("l1\nl2\nl3\nl4\nl5\n"), 0644))

	lines, err := SourceExcerpt(path, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"     2 | l2",
		">    3 | l3",
		"     4 | l4",
	}, lines)

	lines, err = SourceExcerpt(path, 0, 2)
	require.NoError(t, err)
	assert.Len(t, lines, 3)

	lines, err = SourceExcerpt("", 3, 1)
	assert.NoError(t, err)
	assert.Nil(t, lines)

	_, err = SourceExcerpt(filepath.Join(t.TempDir(), "missing.vhd"), 0, 1)
	assert.Error(t, err)
}
