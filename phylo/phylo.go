// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package phylo implements a rooted phylogenetic tree
// ready for repeated bottom-up passes.
//
// The nodes of a tree are stored in an arena
// addressed by dense integer indices
// sorted in post-order
// (i.e., children are always before their parent),
// so the root is always the last node.
// Once built,
// a tree is never modified,
// so it can be read by many goroutines at the same time.
package phylo

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoTree is returned when a tree is required
// but none is given.
var ErrNoTree = errors.New("undefined tree")

// A MalformedTreeError is returned
// when a tree has a structural defect.
type MalformedTreeError struct {
	// ID of the offending node,
	// or -1 if the error is not bound to a node.
	ID     int
	Reason string
}

func (e *MalformedTreeError) Error() string {
	if e.ID < 0 {
		return fmt.Sprintf("malformed tree: %s", e.Reason)
	}
	return fmt.Sprintf("malformed tree: node %d: %s", e.ID, e.Reason)
}

// A Node is the description of a node
// used to build a tree.
type Node struct {
	// ID of the node.
	ID int

	// ID of the parent node.
	// The root uses -1.
	Parent int

	// Length of the branch
	// between the node and its parent.
	// It is ignored at the root.
	Length float64

	// Name of the node.
	// It is required for terminals,
	// and ignored for internal nodes.
	Name string
}

type node struct {
	id     int
	parent int
	length float64

	// children are stored in Tree.kids[first:last]
	first, last int

	// leaf position, or -1 for internal nodes
	leaf int
}

// A Tree is a rooted phylogenetic tree.
type Tree struct {
	nodes []node
	kids  []int

	leaves []int // leaf position -> node index
	names  []string
	index  map[string]int

	total float64
}

// BuildOption sets an option when building a tree.
type BuildOption func(*buildParam)

type buildParam struct {
	strict bool
}

// StrictLengths is an option
// to reject any non-root branch
// with a zero length.
func StrictLengths() BuildOption {
	return func(p *buildParam) {
		p.strict = true
	}
}

// Build creates a new tree
// from a list of nodes.
//
// The list of nodes can be in any order.
// Children are kept in the order
// in which they are found in the list.
// Terminals are numbered in post-order.
func Build(nodes []Node, opts ...BuildOption) (*Tree, error) {
	var p buildParam
	for _, fn := range opts {
		fn(&p)
	}
	if len(nodes) == 0 {
		return nil, &MalformedTreeError{ID: -1, Reason: "empty tree"}
	}

	ids := make(map[int]int, len(nodes))
	root := -1
	for i, n := range nodes {
		if n.ID < 0 {
			return nil, &MalformedTreeError{ID: n.ID, Reason: "invalid node ID"}
		}
		if _, dup := ids[n.ID]; dup {
			return nil, &MalformedTreeError{ID: n.ID, Reason: "repeated node ID"}
		}
		ids[n.ID] = i
		if n.Parent < 0 {
			if root >= 0 {
				return nil, &MalformedTreeError{ID: n.ID, Reason: fmt.Sprintf("more than one root (also node %d)", nodes[root].ID)}
			}
			root = i
		}
	}
	if root < 0 {
		return nil, &MalformedTreeError{ID: -1, Reason: "no root"}
	}

	children := make([][]int, len(nodes))
	for i, n := range nodes {
		if i == root {
			continue
		}
		pi, ok := ids[n.Parent]
		if !ok {
			return nil, &MalformedTreeError{ID: n.ID, Reason: fmt.Sprintf("unknown parent %d", n.Parent)}
		}
		if pi == i {
			return nil, &MalformedTreeError{ID: n.ID, Reason: "node is its own parent"}
		}
		if math.IsNaN(n.Length) || math.IsInf(n.Length, 0) || n.Length < 0 {
			return nil, &MalformedTreeError{ID: n.ID, Reason: fmt.Sprintf("invalid branch length %v", n.Length)}
		}
		if p.strict && n.Length == 0 {
			return nil, &MalformedTreeError{ID: n.ID, Reason: "zero branch length"}
		}
		children[pi] = append(children[pi], i)
	}

	order := postOrder(root, children)
	if len(order) < len(nodes) {
		return nil, unreachable(nodes, ids, order)
	}

	t := &Tree{
		nodes: make([]node, len(nodes)),
		kids:  make([]int, 0, len(nodes)-1),
		index: make(map[string]int),
	}
	pos := make([]int, len(nodes)) // input index -> arena index
	for a, i := range order {
		pos[i] = a
	}
	for a, i := range order {
		n := nodes[i]
		tn := node{
			id:     n.ID,
			parent: -1,
			leaf:   -1,
			first:  len(t.kids),
		}
		if i != root {
			tn.parent = pos[ids[n.Parent]]
			tn.length = n.Length
			t.total += n.Length
		}
		for _, c := range children[i] {
			t.kids = append(t.kids, pos[c])
		}
		tn.last = len(t.kids)

		if tn.first == tn.last {
			if n.Name == "" {
				return nil, &MalformedTreeError{ID: n.ID, Reason: "unnamed terminal"}
			}
			if prev, dup := t.index[n.Name]; dup {
				return nil, &MalformedTreeError{ID: n.ID, Reason: fmt.Sprintf("terminal name %q already used by node %d", n.Name, t.nodes[t.leaves[prev]].id)}
			}
			tn.leaf = len(t.leaves)
			t.index[n.Name] = tn.leaf
			t.leaves = append(t.leaves, a)
			t.names = append(t.names, n.Name)
		}
		t.nodes[a] = tn
	}

	return t, nil
}

// PostOrder returns the input indices of the nodes
// reachable from the root,
// in post-order.
func postOrder(root int, children [][]int) []int {
	type frame struct {
		n    int
		next int
	}

	order := make([]int, 0, len(children))
	stack := []frame{{n: root}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.next < len(children[f.n]) {
			c := children[f.n][f.next]
			f.next++
			stack = append(stack, frame{n: c})
			continue
		}
		order = append(order, f.n)
		stack = stack[:len(stack)-1]
	}
	return order
}

// Unreachable builds the error for a node
// that can not be reached from the root.
func unreachable(nodes []Node, ids map[int]int, order []int) error {
	seen := make([]bool, len(nodes))
	for _, i := range order {
		seen[i] = true
	}
	for i, n := range nodes {
		if seen[i] {
			continue
		}

		// walk up the parents
		// until a visited node is found
		path := map[int]bool{i: true}
		for j := ids[n.Parent]; !seen[j]; j = ids[nodes[j].Parent] {
			if path[j] {
				return &MalformedTreeError{ID: n.ID, Reason: fmt.Sprintf("cycle through node %d", nodes[j].ID)}
			}
			path[j] = true
		}
		return &MalformedTreeError{ID: n.ID, Reason: "disconnected from the root"}
	}
	return &MalformedTreeError{ID: -1, Reason: "disconnected tree"}
}

// Children returns the arena indices
// of the children of a node.
// The returned slice must not be modified.
func (t *Tree) Children(n int) []int {
	nd := t.nodes[n]
	return t.kids[nd.first:nd.last:nd.last]
}

// ID returns the ID used for a node
// when the tree was built.
func (t *Tree) ID(n int) int {
	return t.nodes[n].id
}

// IsLeaf returns true if a node is a terminal.
func (t *Tree) IsLeaf(n int) bool {
	return t.nodes[n].leaf >= 0
}

// Leaf returns the leaf position
// of a terminal name.
func (t *Tree) Leaf(name string) (int, bool) {
	p, ok := t.index[name]
	return p, ok
}

// LeafName returns the name of the terminal
// at a leaf position.
func (t *Tree) LeafName(pos int) string {
	return t.names[pos]
}

// LeafNode returns the arena index of the terminal
// at a leaf position.
func (t *Tree) LeafNode(pos int) int {
	return t.leaves[pos]
}

// LeafPos returns the leaf position of a node,
// or -1 if the node is not a terminal.
func (t *Tree) LeafPos(n int) int {
	return t.nodes[n].leaf
}

// Leaves returns the number of terminals.
func (t *Tree) Leaves() int {
	return len(t.leaves)
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Length returns the length of the branch
// between a node and its parent.
// It is always 0 for the root.
func (t *Tree) Length(n int) float64 {
	return t.nodes[n].length
}

// Names returns the names of the terminals
// sorted by leaf position.
func (t *Tree) Names() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}

// Parent returns the arena index of the parent of a node,
// or -1 if the node is the root.
func (t *Tree) Parent(n int) int {
	return t.nodes[n].parent
}

// Root returns the arena index of the root.
func (t *Tree) Root() int {
	return len(t.nodes) - 1
}

// TotalLength returns the sum of all branch lengths.
func (t *Tree) TotalLength() float64 {
	return t.total
}
