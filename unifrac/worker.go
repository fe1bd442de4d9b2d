// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package unifrac

import (
	"context"
	"log/slog"

	"github.com/js-arias/ssu/distmat"
	"github.com/js-arias/ssu/phylo"
	"github.com/js-arias/ssu/stride"
	"github.com/js-arias/ssu/table"
)

// Nodes visited between checks of the context.
const checkEvery = 1024

// A worker computes the distances of a group of pairs
// in a single post-order pass over a shared tree.
type worker struct {
	tree *phylo.Tree
	k    kernel
	rule contribution

	// local samples
	global []int
	counts [][]float64
	totals []float64

	// owned pairs,
	// as local sample indices
	i, j     []int
	num, den []float64

	values []float64
	stack  [][]float64
	free   [][]float64
}

func newWorker(t *phylo.Tree, samples []table.Sample, g stride.Group, k kernel, rule contribution) *worker {
	w := &worker{
		tree: t,
		k:    k,
		rule: rule,
		i:    make([]int, 0, g.Len()),
		j:    make([]int, 0, g.Len()),
		num:  make([]float64, g.Len()),
		den:  make([]float64, g.Len()),
	}

	local := make([]int, len(samples))
	for x := range local {
		local[x] = -1
	}
	index := func(s int) int {
		if local[s] < 0 {
			local[s] = len(w.global)
			w.global = append(w.global, s)
			w.counts = append(w.counts, samples[s].Counts)
			w.totals = append(w.totals, samples[s].Total)
		}
		return local[s]
	}
	g.Each(len(samples), func(i, j int) {
		w.i = append(w.i, index(i))
		w.j = append(w.j, index(j))
	})
	w.values = make([]float64, len(w.global))
	return w
}

// Run performs the post-order pass.
// The state of each node is the summed abundance
// of its descendant terminals
// for each local sample.
// As nodes are in post-order,
// the states of the children of a node
// are always at the top of the stack.
func (w *worker) run(ctx context.Context) error {
	if len(w.i) == 0 {
		return nil
	}

	t := w.tree
	root := t.Root()
	for n := 0; n < t.Len(); n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		var state []float64
		if t.IsLeaf(n) {
			state = w.alloc()
			pos := t.LeafPos(n)
			for s, c := range w.counts {
				state[s] = c[pos]
			}
		} else {
			top := len(w.stack) - len(t.Children(n))
			state = w.stack[top]
			for _, c := range w.stack[top+1:] {
				for s, v := range c {
					state[s] += v
				}
				w.free = append(w.free, c)
			}
			clear(w.stack[top:])
			w.stack = w.stack[:top]
		}

		if n != root {
			if length := t.Length(n); length > 0 && hasAbundance(state) {
				for s, c := range state {
					w.values[s] = w.k.value(c, w.totals[s])
				}
				w.rule.add(w, length, state)
			}
		}
		w.stack = append(w.stack, state)
	}
	clear(w.stack)
	w.stack = w.stack[:0]
	return nil
}

func (w *worker) alloc() []float64 {
	if len(w.free) == 0 {
		return make([]float64, len(w.global))
	}
	s := w.free[len(w.free)-1]
	w.free = w.free[:len(w.free)-1]
	clear(s)
	return s
}

func hasAbundance(state []float64) bool {
	for _, v := range state {
		if v > 0 {
			return true
		}
	}
	return false
}

// Partial returns the final distances of the owned pairs.
// A pair with a zero denominator
// receives a distance of 0.
func (w *worker) partial(samples []table.Sample, logger *slog.Logger) distmat.Partial {
	p := distmat.Partial{
		I: make([]int, 0, len(w.i)),
		J: make([]int, 0, len(w.j)),
		D: make([]float64, 0, len(w.num)),
	}
	norm := w.k.normalized()
	for x := range w.i {
		i, j := w.global[w.i[x]], w.global[w.j[x]]
		if !norm {
			p.Add(i, j, w.num[x])
			continue
		}
		if w.den[x] == 0 {
			logger.Warn("zero denominator, distance set to 0",
				"sample1", samples[i].Label,
				"sample2", samples[j].Label,
			)
			p.Add(i, j, 0)
			continue
		}
		p.Add(i, j, w.num[x]/w.den[x])
	}
	return p
}
