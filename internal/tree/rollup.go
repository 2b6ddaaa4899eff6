package tree

import (
	"time"

	"vtp/internal/domain"
)

// Rollup recomputes the status of every container in the subtree of id and
// of its ancestors from their leaves. It returns the containers that changed.
func (t *Tree) Rollup(id string) []NodeState {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.index[id]
	if !ok {
		return nil
	}

	var changed []NodeState
	var post func(*Node)
	post = func(n *Node) {
		for _, c := range n.Children() {
			post(c)
		}
		if rollupNode(n) {
			changed = append(changed, n.State())
		}
	}
	post(n)

	for p := n.parent; p != nil; p = p.parent {
		if rollupNode(p) {
			changed = append(changed, p.State())
		}
	}
	return changed
}

// RollupAncestors recomputes only the ancestors of id
func (t *Tree) RollupAncestors(id string) []NodeState {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.index[id]
	if !ok {
		return nil
	}
	var changed []NodeState
	for p := n.parent; p != nil; p = p.parent {
		if rollupNode(p) {
			changed = append(changed, p.State())
		}
	}
	return changed
}

// rollupNode derives a container status from its direct children. Containers
// without children keep their status. Priority: running, queued, errored,
// failed, passed, skipped. A container only counts as skipped when every
// child with a result was skipped.
func rollupNode(n *Node) bool {
	if !n.IsContainer() || n.IsLeaf() {
		return false
	}

	var running, queued, errored, failed, passed, skipped bool
	var duration time.Duration
	for _, c := range n.Children() {
		duration += c.Duration
		switch c.Status {
		case domain.StatusRunning:
			running = true
		case domain.StatusQueued:
			queued = true
		case domain.StatusErrored:
			errored = true
		case domain.StatusFailed:
			failed = true
		case domain.StatusPassed:
			passed = true
		case domain.StatusSkipped:
			skipped = true
		}
	}

	status := domain.StatusUnset
	switch {
	case running:
		status = domain.StatusRunning
	case queued:
		status = domain.StatusQueued
	case errored:
		status = domain.StatusErrored
	case failed:
		status = domain.StatusFailed
	case passed:
		status = domain.StatusPassed
	case skipped:
		status = domain.StatusSkipped
	}

	busy := running
	if n.Status == status && n.Duration == duration && n.Busy == busy {
		return false
	}
	n.Status = status
	n.Duration = duration
	n.Busy = busy
	if status != domain.StatusErrored {
		n.Message = ""
	}
	return true
}
