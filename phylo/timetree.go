// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package phylo

import "github.com/js-arias/timetree"

// MillionYears is the unit used for branch lengths
// of time-calibrated trees.
const MillionYears = 1_000_000

// FromTimeTree builds a tree
// from a time-calibrated tree.
//
// The length of each branch
// is the difference between the age of the parent
// and the age of the node,
// in million years.
// As ages are stored in years,
// lengths below a year are lost.
// Use ReadNewick to keep the lengths of a Newick tree.
func FromTimeTree(t *timetree.Tree, opts ...BuildOption) (*Tree, error) {
	if t == nil {
		return nil, ErrNoTree
	}

	ids := t.Nodes()
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		n := Node{
			ID:     id,
			Parent: -1,
		}
		if !t.IsRoot(id) {
			p := t.Parent(id)
			n.Parent = p
			n.Length = float64(t.Age(p)-t.Age(id)) / MillionYears
		}
		if t.IsTerm(id) {
			n.Name = t.Taxon(id)
		}
		nodes = append(nodes, n)
	}
	return Build(nodes, opts...)
}
