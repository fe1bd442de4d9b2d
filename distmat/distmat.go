// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package distmat implements a symmetric distance matrix
// with labeled rows and columns.
package distmat

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// A Matrix is a square symmetric distance matrix
// with zero diagonal.
type Matrix struct {
	labels []string
	index  map[string]int
	m      *mat.SymDense
}

// A Partial is a set of distances
// for a subset of sample pairs.
type Partial struct {
	I, J []int
	D    []float64
}

// Add adds a distance to a partial matrix.
func (p *Partial) Add(i, j int, d float64) {
	p.I = append(p.I, i)
	p.J = append(p.J, j)
	p.D = append(p.D, d)
}

func newMatrix(labels []string) (*Matrix, error) {
	m := &Matrix{
		labels: make([]string, len(labels)),
		index:  make(map[string]int, len(labels)),
	}
	for i, l := range labels {
		if _, dup := m.index[l]; dup {
			return nil, fmt.Errorf("repeated label %q", l)
		}
		m.index[l] = i
		m.labels[i] = l
	}
	if len(labels) > 0 {
		m.m = mat.NewSymDense(len(labels), nil)
	}
	return m, nil
}

// Assemble merges a set of partial matrices
// into a distance matrix.
// Each unordered pair of samples
// must be defined exactly once in the partials.
func Assemble(labels []string, parts ...Partial) (*Matrix, error) {
	m, err := newMatrix(labels)
	if err != nil {
		return nil, err
	}

	n := len(labels)
	written := make([]bool, n*(n-1)/2)
	count := 0
	for _, p := range parts {
		if len(p.I) != len(p.D) || len(p.J) != len(p.D) {
			return nil, fmt.Errorf("partial matrix with inconsistent lengths")
		}
		for x, d := range p.D {
			i, j := p.I[x], p.J[x]
			if i < 0 || j < 0 || i >= n || j >= n || i == j {
				return nil, fmt.Errorf("invalid pair (%d, %d) for %d samples", i, j, n)
			}
			if i > j {
				i, j = j, i
			}
			c := condensedIndex(n, i, j)
			if written[c] {
				return nil, fmt.Errorf("pair %q-%q defined more than once", labels[i], labels[j])
			}
			written[c] = true
			count++
			m.m.SetSym(i, j, d)
		}
	}
	if want := n * (n - 1) / 2; count != want {
		return nil, fmt.Errorf("incomplete matrix: got %d pairs, want %d", count, want)
	}
	return m, nil
}

// CondensedIndex returns the position of pair (i, j),
// with i < j,
// in the upper triangle of an n x n matrix.
func condensedIndex(n, i, j int) int {
	return i*n - i*(i+1)/2 + j - i - 1
}

// At returns the distance between samples i and j.
func (m *Matrix) At(i, j int) float64 {
	if i == j {
		return 0
	}
	return m.m.At(i, j)
}

// Condensed returns the upper triangle of the matrix
// in row order.
func (m *Matrix) Condensed() []float64 {
	n := len(m.labels)
	if n < 2 {
		return nil
	}
	c := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c = append(c, m.m.At(i, j))
		}
	}
	return c
}

// Dist returns the distance between two samples.
func (m *Matrix) Dist(a, b string) (float64, bool) {
	i, ok := m.index[a]
	if !ok {
		return 0, false
	}
	j, ok := m.index[b]
	if !ok {
		return 0, false
	}
	return m.At(i, j), true
}

// Labels returns the sample labels
// in matrix order.
func (m *Matrix) Labels() []string {
	ls := make([]string, len(m.labels))
	copy(ls, m.labels)
	return ls
}

// Len returns the number of samples.
func (m *Matrix) Len() int {
	return len(m.labels)
}

// Permute returns a new matrix
// with the samples in the indicated order.
func (m *Matrix) Permute(labels []string) (*Matrix, error) {
	if len(labels) != len(m.labels) {
		return nil, fmt.Errorf("permutation: got %d labels, want %d", len(labels), len(m.labels))
	}
	idx := make([]int, len(labels))
	for i, l := range labels {
		j, ok := m.index[l]
		if !ok {
			return nil, fmt.Errorf("permutation: unknown label %q", l)
		}
		idx[i] = j
	}

	nm, err := newMatrix(labels)
	if err != nil {
		return nil, fmt.Errorf("permutation: %v", err)
	}
	for i := range idx {
		for j := i + 1; j < len(idx); j++ {
			nm.m.SetSym(i, j, m.m.At(idx[i], idx[j]))
		}
	}
	return nm, nil
}

// Summary is a description of the distances
// of a matrix.
type Summary struct {
	Pairs  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Summary returns the summary statistics
// of the distances between different samples.
func (m *Matrix) Summary() Summary {
	c := m.Condensed()
	if len(c) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(c, nil)
	if len(c) == 1 {
		std = 0
	}
	return Summary{
		Pairs:  len(c),
		Min:    floats.Min(c),
		Max:    floats.Max(c),
		Mean:   mean,
		StdDev: std,
	}
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pairs: %d\n", s.Pairs)
	fmt.Fprintf(&b, "min:   %.6f\n", s.Min)
	fmt.Fprintf(&b, "max:   %.6f\n", s.Max)
	fmt.Fprintf(&b, "mean:  %.6f\n", s.Mean)
	fmt.Fprintf(&b, "sd:    %.6f\n", s.StdDev)
	return b.String()
}
