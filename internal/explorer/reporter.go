package explorer

import (
	"sync"

	"vtp/internal/tree"
)

// Reporter receives progress from a Session. Calls are serialized.
type Reporter interface {
	Loaded(t *tree.Tree)
	NodeChanged(state tree.NodeState)
	Output(line string)
}

// NopReporter ignores everything
type NopReporter struct{}

func (NopReporter) Loaded(*tree.Tree)          {}
func (NopReporter) NodeChanged(tree.NodeState) {}
func (NopReporter) Output(string)              {}

// syncReporter serializes calls coming from the stdout and stderr readers
type syncReporter struct {
	mu sync.Mutex
	r  Reporter
}

func (s *syncReporter) Loaded(t *tree.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Loaded(t)
}

func (s *syncReporter) NodeChanged(state tree.NodeState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.NodeChanged(state)
}

func (s *syncReporter) Output(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Output(line)
}
