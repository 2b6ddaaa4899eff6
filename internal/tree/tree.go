package tree

import (
	"sync"
	"time"

	"vtp/internal/domain"
)

// Tree is a forest of script nodes. It owns every node and indexes them by id.
type Tree struct {
	mu    sync.RWMutex
	roots []*Node
	index map[string]*Node
}

// New creates an empty Tree
func New() *Tree {
	return &Tree{index: make(map[string]*Node)}
}

// PositionFunc resolves a source location to a position
type PositionFunc func(domain.SourceLocation) (domain.Position, bool)

// AddScript adds a script root built from its export. A script with an empty
// export still gets a root without children.
func (t *Tree) AddScript(script, label string, data domain.ExportData, locate PositionFunc) *Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	root, ok := t.index[ScriptID(script)]
	if !ok {
		root = newNode(ScriptID(script), label, KindScript, script, "")
		t.roots = append(t.roots, root)
		t.index[root.ID] = root
	}

	for _, test := range data.Tests {
		parts := test.Name.Split()

		lib := t.insert(root, newNode(NameID(script, parts.LibraryPrefix()), parts.Library, KindLibrary, script, parts.LibraryPrefix()))
		if parts.Testbench == "" {
			continue
		}

		var leaf *Node
		if parts.TestCase == "" {
			leaf = newNode(NameID(script, parts.TestbenchPrefix()), parts.Testbench, KindTestCase, script, parts.TestbenchPrefix())
			leaf = t.insert(lib, leaf)
		} else {
			tb := t.insert(lib, newNode(NameID(script, parts.TestbenchPrefix()), parts.Testbench, KindTestbench, script, parts.TestbenchPrefix()))
			if tb.File == "" {
				tb.File = test.Location.FileName
			}
			leaf = t.insert(tb, newNode(NameID(script, string(test.Name)), parts.TestCase, KindTestCase, script, string(test.Name)))
		}

		leaf.File = test.Location.FileName
		if locate != nil {
			if pos, ok := locate(test.Location); ok {
				leaf.Position = &pos
			}
		}
	}
	return root
}

func (t *Tree) insert(parent, child *Node) *Node {
	n := parent.addChild(child)
	t.index[n.ID] = n
	return n
}

// SortRoots orders the script roots naturally by label
func (t *Tree) SortRoots() {
	t.mu.Lock()
	defer t.mu.Unlock()
	SortNatural(t.roots)
}

// Roots returns the script nodes in display order
func (t *Tree) Roots() []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*Node{}, t.roots...)
}

// Node looks up a node by id
func (t *Tree) Node(id string) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.index[id]
	return n, ok
}

// State returns a copy of the node with the given id
func (t *Tree) State(id string) (NodeState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.index[id]
	if !ok {
		return NodeState{}, false
	}
	return n.State(), true
}

// Len returns the number of nodes
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.index)
}

// IDs returns every node id in depth-first order
func (t *Tree) IDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.index))
	for _, root := range t.roots {
		walk(root, func(n *Node) { ids = append(ids, n.ID) })
	}
	return ids
}

// Contains reports whether id is scopeID or one of its descendants
func (t *Tree) Contains(scopeID, id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for n := t.index[id]; n != nil; n = n.parent {
		if n.ID == scopeID {
			return true
		}
	}
	return false
}

// Walk calls fn for id and its descendants, depth-first in insertion order.
// fn runs under the read lock and must not call back into the tree.
func (t *Tree) Walk(id string, fn func(*Node)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n, ok := t.index[id]; ok {
		walk(n, fn)
	}
}

func walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, c := range n.Children() {
		walk(c, fn)
	}
}

// Leaves returns the test case nodes below id, or id itself for a leaf
func (t *Tree) Leaves(id string) []*Node {
	var leaves []*Node
	t.Walk(id, func(n *Node) {
		if n.Kind == KindTestCase {
			leaves = append(leaves, n)
		}
	})
	return leaves
}

// FindByName returns the nodes whose id or dotted name equals name
func (t *Tree) FindByName(name string) []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n, ok := t.index[name]; ok {
		return []*Node{n}
	}
	var found []*Node
	for _, root := range t.roots {
		walk(root, func(n *Node) {
			if n.Name != "" && n.Name == name {
				found = append(found, n)
			}
		})
	}
	return found
}

// Update applies fn to the node under the tree lock
func (t *Tree) Update(id string, fn func(*Node)) (NodeState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.index[id]
	if !ok {
		return NodeState{}, false
	}
	fn(n)
	return n.State(), true
}

// SetStatus records a status and message for id
func (t *Tree) SetStatus(id string, status domain.TestStatus, message string) (NodeState, bool) {
	return t.Update(id, func(n *Node) {
		n.Status = status
		n.Message = message
	})
}

// Finish records a terminal result for a leaf and clears its busy flag
func (t *Tree) Finish(id string, status domain.TestStatus, message string, duration time.Duration) (NodeState, bool) {
	return t.Update(id, func(n *Node) {
		n.Status = status
		n.Message = message
		n.Duration = duration
		n.Busy = false
	})
}

// Reset clears the run state of id and its descendants
func (t *Tree) Reset(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n, ok := t.index[id]; ok {
		walk(n, func(n *Node) {
			n.Status = domain.StatusUnset
			n.Busy = false
			n.Duration = 0
			n.Message = ""
		})
	}
}
