// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package unifrac implements the Strided State UniFrac algorithm
// to calculate phylogenetic beta-diversity distances
// between community samples.
//
// The pairs of samples are split into disjoint groups
// (see package stride),
// and each group is assigned to a goroutine.
// Each goroutine makes its own post-order pass
// over the same, read-only, tree.
// At each node,
// the summed abundance of each sample is calculated once,
// and then used for all the pairs of the group.
package unifrac

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/js-arias/ssu/distmat"
	"github.com/js-arias/ssu/phylo"
	"github.com/js-arias/ssu/stride"
	"github.com/js-arias/ssu/table"
	"golang.org/x/sync/errgroup"
)

// Options is a collection of parameters
// for a distance calculation.
type Options struct {
	// Method is the UniFrac variant.
	Method Method

	// Alpha is the exponent of the Generalized UniFrac.
	// It is ignored by other methods.
	Alpha float64

	// If VarianceAdjust is true,
	// each term is weighted by the inverse
	// of the binomial standard deviation
	// of the node abundances.
	VarianceAdjust bool

	// Threads is the number of goroutines
	// used in the calculation.
	// It must be at least 1.
	Threads int

	// If DropEmpty is true,
	// samples without abundance in the tree
	// are removed when a table is aligned.
	// Only used by Run.
	DropEmpty bool

	// Logger receives the warnings.
	// If nil, warnings are discarded.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// Compute returns the distance matrix
// between a set of samples,
// already aligned to the terminals of a tree.
// Samples in the matrix are in input order.
func Compute(ctx context.Context, t *phylo.Tree, samples []table.Sample, o Options) (*distmat.Matrix, error) {
	if t == nil {
		return nil, phylo.ErrNoTree
	}
	k, rule, err := o.strategy()
	if err != nil {
		return nil, err
	}
	groups, err := stride.Partition(len(samples), o.Threads)
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(samples))
	for i, s := range samples {
		if len(s.Counts) != t.Leaves() {
			return nil, fmt.Errorf("sample %q: got %d abundances, want %d", s.Label, len(s.Counts), t.Leaves())
		}
		if s.Total <= 0 {
			return nil, &table.EmptySampleError{Sample: s.Label}
		}
		labels[i] = s.Label
	}

	logger := o.logger()
	logger.Debug("unifrac",
		"method", o.Method.String(),
		"variance-adjusted", o.VarianceAdjust,
		"samples", len(samples),
		"terminals", t.Leaves(),
		"pairs", stride.Pairs(len(samples)),
		"threads", o.Threads,
	)

	parts := make([]distmat.Partial, len(groups))
	g, gCtx := errgroup.WithContext(ctx)
	for x, gr := range groups {
		g.Go(func() error {
			w := newWorker(t, samples, gr, k, rule)
			if err := w.run(gCtx); err != nil {
				return err
			}
			parts[x] = w.partial(samples, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return distmat.Assemble(labels, parts...)
}

// Run aligns a table to a tree
// and returns the distance matrix
// between the samples of the table.
func Run(ctx context.Context, t *phylo.Tree, tab *table.Table, o Options) (*distmat.Matrix, error) {
	if t == nil {
		return nil, phylo.ErrNoTree
	}
	samples, err := table.Align(tab, t, table.Param{
		Logger:    o.Logger,
		DropEmpty: o.DropEmpty,
	})
	if err != nil {
		return nil, err
	}
	return Compute(ctx, t, samples, o)
}
