package square

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// NodeID is a stable identifier assigned in pre-order when a Tree is built.
type NodeID int

// NoNode is returned where a node has no parent.
const NoNode NodeID = -1

var (
	ErrEmptyTree = errors.New("square: tree has no root")
	ErrCycle     = errors.New("square: node reachable more than once")
)

// Tree indexes a square hierarchy so nodes can be addressed by NodeID.
type Tree struct {
	Root *Node

	nodes    []*Node
	parents  []NodeID
	depths   []int
	children [][]NodeID
	index    map[*Node]NodeID
}

// NewTree indexes root. It fails if any node is shared or is its own ancestor.
func NewTree(root *Node) (*Tree, error) {
	if root == nil {
		return nil, ErrEmptyTree
	}
	t := &Tree{Root: root, index: make(map[*Node]NodeID)}
	if err := t.add(root, NoNode, 0); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) add(n *Node, parent NodeID, depth int) error {
	if _, seen := t.index[n]; seen {
		return fmt.Errorf("%w: %q", ErrCycle, n.Name)
	}
	id := NodeID(len(t.nodes))
	t.index[n] = id
	t.nodes = append(t.nodes, n)
	t.parents = append(t.parents, parent)
	t.depths = append(t.depths, depth)
	t.children = append(t.children, nil)
	if parent != NoNode {
		t.children[parent] = append(t.children[parent], id)
	}
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		if err := t.add(c, id, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Parse decodes a chart data blob. It accepts a bare node or an object with a "root" node.
func Parse(data []byte) (*Tree, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrEmptyTree
	}

	var envelope struct {
		Root *Node `json:"root"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("square: decode tree: %w", err)
	}
	if envelope.Root != nil {
		return NewTree(envelope.Root)
	}

	var root Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("square: decode tree: %w", err)
	}
	return NewTree(&root)
}

// Marshal encodes the tree back into its chart data form.
func (t *Tree) Marshal() ([]byte, error) {
	return json.Marshal(t.Root)
}

// Clone returns a deep copy with identical NodeIDs.
func (t *Tree) Clone() *Tree {
	c, err := NewTree(t.Root.clone())
	if err != nil {
		// the source was already validated
		panic(err)
	}
	return c
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node with id, or nil.
func (t *Tree) Node(id NodeID) *Node {
	if !t.valid(id) {
		return nil
	}
	return t.nodes[id]
}

// ID returns the identifier of n if it belongs to the tree.
func (t *Tree) ID(n *Node) (NodeID, bool) {
	id, ok := t.index[n]
	return id, ok
}

// Parent returns the parent id of id, or NoNode for the root and unknown ids.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.parents[id]
}

// Children returns the ids of id's children in order.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	return t.children[id]
}

// Depth returns the recursion depth of id; the root is 0.
func (t *Tree) Depth(id NodeID) int {
	if !t.valid(id) {
		return -1
	}
	return t.depths[id]
}

// Class returns the synthetic class of id.
func (t *Tree) Class(id NodeID) Class { return ClassForDepth(t.Depth(id)) }

// ParentText returns the label of id's parent, or "" for the root.
func (t *Tree) ParentText(id NodeID) string {
	p := t.Parent(id)
	if p == NoNode {
		return ""
	}
	return t.nodes[p].Name
}

// Walk visits nodes depth-first in pre-order. Returning false from fn skips that node's subtree.
func (t *Tree) Walk(fn func(id NodeID, n *Node, depth int) bool) {
	if len(t.nodes) == 0 {
		return
	}
	t.walk(0, fn)
}

func (t *Tree) walk(id NodeID, fn func(NodeID, *Node, int) bool) {
	if !fn(id, t.nodes[id], t.depths[id]) {
		return
	}
	for _, c := range t.children[id] {
		t.walk(c, fn)
	}
}

func (t *Tree) valid(id NodeID) bool { return id >= 0 && int(id) < len(t.nodes) }
