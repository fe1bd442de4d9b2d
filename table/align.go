// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package table

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// An EmptySampleError is returned
// when a sample has no abundance
// after its alignment with a tree.
type EmptySampleError struct {
	Sample string
}

func (e *EmptySampleError) Error() string {
	return fmt.Sprintf("sample %q: no abundance on the tree terminals", e.Sample)
}

// A LeafMap is a mapping between terminal names
// and dense leaf positions.
type LeafMap interface {
	// Leaf returns the position of a terminal.
	Leaf(name string) (int, bool)

	// LeafName returns the terminal name
	// at a leaf position.
	LeafName(pos int) string

	// Leaves returns the number of terminals.
	Leaves() int
}

// A Sample is the abundance vector of a sample
// aligned to the leaf positions of a tree.
// It must be taken as read-only.
type Sample struct {
	Label  string
	Counts []float64
	Total  float64
}

// Param is a collection of parameters
// for a table alignment.
type Param struct {
	// Logger receives the warnings.
	// If nil, warnings are discarded.
	Logger *slog.Logger

	// If DropEmpty is true,
	// samples without abundance are removed
	// instead of returning an error.
	DropEmpty bool
}

// Align maps the features of a table
// onto the leaf positions of a tree.
//
// Features are matched first by their exact name.
// If there is no exact match,
// a canonical form of the name
// (lower case, with underscores as spaces
// and collapsed blanks)
// is used,
// but only for terminals
// not already matched by another feature.
// Features without a terminal in the tree
// are dropped with a warning.
func Align(t *Table, leaves LeafMap, p Param) ([]Sample, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pos, missing := match(t, leaves)
	if len(missing) > 0 {
		logger.Warn("features not found in tree",
			"dropped", len(missing),
			"features", len(t.features),
			"example", missing[0],
		)
	}

	samples := make([]Sample, 0, len(t.samples))
	for s, label := range t.samples {
		counts := make([]float64, leaves.Leaves())
		for f, v := range t.counts[s] {
			if pos[f] < 0 {
				continue
			}
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, fmt.Errorf("sample %q: feature %q: invalid abundance %v", label, t.features[f], v)
			}
			counts[pos[f]] += v
		}
		total := floats.Sum(counts)
		if total <= 0 {
			if !p.DropEmpty {
				return nil, &EmptySampleError{Sample: label}
			}
			logger.Warn("empty sample dropped", "sample", label)
			continue
		}

		samples = append(samples, Sample{
			Label:  label,
			Counts: counts,
			Total:  total,
		})
	}
	return samples, nil
}

// Missing returns the features of a table
// without a terminal in the tree.
func Missing(t *Table, leaves LeafMap) []string {
	_, missing := match(t, leaves)
	return missing
}

// Match returns the leaf position of each feature
// (-1 for missing features)
// and the list of missing features.
// A terminal receives at most one feature.
func match(t *Table, leaves LeafMap) (pos []int, missing []string) {
	pos = make([]int, len(t.features))
	used := make([]bool, leaves.Leaves())
	for f, id := range t.features {
		lp, ok := leaves.Leaf(id)
		if !ok {
			pos[f] = -1
			continue
		}
		if lp < 0 || lp >= leaves.Leaves() {
			panic(fmt.Sprintf("table: leaf position %d out of range [0, %d)", lp, leaves.Leaves()))
		}
		pos[f] = lp
		used[lp] = true
	}

	var canon map[string]int
	for f, id := range t.features {
		if pos[f] >= 0 {
			continue
		}
		if canon == nil {
			canon = canonLeaves(leaves)
		}
		lp, ok := canon[canonical(id)]
		if !ok || lp < 0 || used[lp] {
			missing = append(missing, id)
			continue
		}
		pos[f] = lp
		used[lp] = true
	}
	return pos, missing
}

// Canonical returns the canonical form of a name.
func canonical(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// CanonLeaves returns the canonical form
// of the terminal names.
// Names that collide in canonical form
// are marked as ambiguous.
func canonLeaves(leaves LeafMap) map[string]int {
	canon := make(map[string]int, leaves.Leaves())
	for i := 0; i < leaves.Leaves(); i++ {
		c := canonical(leaves.LeafName(i))
		if _, dup := canon[c]; dup {
			canon[c] = -1
			continue
		}
		canon[c] = i
	}
	return canon
}
