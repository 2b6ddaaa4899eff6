package tree

import (
	"time"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"vtp/internal/domain"
)

// Kind is the level of a node in the test tree
type Kind int

const (
	KindScript Kind = iota
	KindLibrary
	KindTestbench
	KindTestCase
)

func (k Kind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindLibrary:
		return "library"
	case KindTestbench:
		return "testbench"
	case KindTestCase:
		return "testcase"
	default:
		return "unknown"
	}
}

// Node is an entry of the test tree. Status fields are only written through
// Tree methods.
type Node struct {
	ID       string
	Label    string
	Kind     Kind
	Script   string
	Name     string
	File     string
	Position *domain.Position

	Status   domain.TestStatus
	Busy     bool
	Duration time.Duration
	Message  string

	parent   *Node
	children *linkedhashmap.Map
}

func newNode(id, label string, kind Kind, script, name string) *Node {
	return &Node{
		ID:       id,
		Label:    label,
		Kind:     kind,
		Script:   script,
		Name:     name,
		children: linkedhashmap.New(),
	}
}

// Parent returns the parent node, nil for scripts
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the children in insertion order
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, n.children.Size())
	it := n.children.Iterator()
	for it.Next() {
		out = append(out, it.Value().(*Node))
	}
	return out
}

// Child looks up a direct child by id
func (n *Node) Child(id string) (*Node, bool) {
	v, ok := n.children.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Node), true
}

// IsLeaf reports whether the node has no children
func (n *Node) IsLeaf() bool {
	return n.children.Empty()
}

// IsContainer reports whether the node groups other nodes
func (n *Node) IsContainer() bool {
	return n.Kind != KindTestCase
}

// State returns a copy of the mutable fields
func (n *Node) State() NodeState {
	return NodeState{
		ID:       n.ID,
		Label:    n.Label,
		Kind:     n.Kind,
		Script:   n.Script,
		Name:     n.Name,
		Status:   n.Status,
		Busy:     n.Busy,
		Duration: n.Duration,
		Message:  n.Message,
	}
}

// NodeState is a point-in-time copy of a node, safe to hand to other goroutines
type NodeState struct {
	ID       string
	Label    string
	Kind     Kind
	Script   string
	Name     string
	Status   domain.TestStatus
	Busy     bool
	Duration time.Duration
	Message  string
}

// addChild inserts child unless a node with the same id exists, in which case
// the existing node is returned.
func (n *Node) addChild(child *Node) *Node {
	if existing, ok := n.Child(child.ID); ok {
		return existing
	}
	child.parent = n
	n.children.Put(child.ID, child)
	return child
}
