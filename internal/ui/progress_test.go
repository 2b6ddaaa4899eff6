package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"vtp/internal/domain"
	"vtp/internal/tree"
)

func TestProgressReporter_CountsEachCaseOnce(t *testing.T) {
	var buf bytes.Buffer
	r := NewProgressReporter(NewProgressBar(4, &buf))

	events := []tree.NodeState{
		{ID: "a", Kind: tree.KindTestCase, Status: domain.StatusRunning},
		{ID: "a", Kind: tree.KindTestCase, Status: domain.StatusPassed},
		{ID: "a", Kind: tree.KindTestCase, Status: domain.StatusPassed},
		{ID: "b", Kind: tree.KindTestCase, Status: domain.StatusFailed},
		{ID: "c", Kind: tree.KindTestCase, Status: domain.StatusErrored},
		{ID: "d", Kind: tree.KindTestCase, Status: domain.StatusSkipped},
		{ID: "tb", Kind: tree.KindTestbench, Status: domain.StatusFailed},
	}
	for _, ev := range events {
		r.NodeChanged(ev)
	}

	passed, failed, skipped := r.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 1, skipped)
	assert.NotEmpty(t, buf.String())
}

func TestProgressReporter_NilBar(t *testing.T) {
	r := NewProgressReporter(nil)
	r.NodeChanged(tree.NodeState{ID: "a", Kind: tree.KindTestCase, Status: domain.StatusPassed})

	passed, _, _ := r.Counts()
	assert.Equal(t, 1, passed)
}
