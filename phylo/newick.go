// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package phylo

import (
	"io"

	"github.com/evolbioinfo/gotree/io/newick"
	"github.com/evolbioinfo/gotree/tree"
)

// ReadNewick reads a single tree in Newick format.
//
// Branch lengths are kept as found in the file,
// without any rounding,
// and a missing length is taken as zero.
// Terminal names are kept as found in the file.
func ReadNewick(r io.Reader, opts ...BuildOption) (*Tree, error) {
	nt, err := newick.NewParser(r).Parse()
	if err != nil {
		return nil, err
	}
	if nt == nil || nt.Root() == nil {
		return nil, ErrNoTree
	}

	type item struct {
		n, prev *tree.Node
		parent  int
		length  float64
	}

	var nodes []Node
	stack := []item{{n: nt.Root(), parent: -1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := len(nodes)
		nodes = append(nodes, Node{
			ID:     id,
			Parent: it.parent,
			Length: it.length,
		})

		neigh := it.n.Neigh()
		edges := it.n.Edges()
		children := 0
		// reversed, so children are visited in file order
		for i := len(neigh) - 1; i >= 0; i-- {
			if neigh[i] == it.prev {
				continue
			}
			l := edges[i].Length()
			if l == tree.NIL_LENGTH {
				l = 0
			}
			stack = append(stack, item{
				n:      neigh[i],
				prev:   it.n,
				parent: id,
				length: l,
			})
			children++
		}
		if children == 0 {
			nodes[id].Name = it.n.Name()
		}
	}
	return Build(nodes, opts...)
}
