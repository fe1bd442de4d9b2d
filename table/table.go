// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package table implements a sample-by-feature abundance table
// and its alignment to the terminals of a phylogenetic tree.
package table

import (
	"fmt"
	"strings"
)

// A Table is a sample-by-feature abundance table.
// Samples are kept in input order.
type Table struct {
	samples  []string
	features []string
	sIdx     map[string]int
	fIdx     map[string]int

	// counts[sample][feature]
	counts [][]float64
}

// New creates a new table
// with the indicated samples and features.
// All abundances are set to zero.
func New(samples, features []string) (*Table, error) {
	t := &Table{
		samples:  make([]string, 0, len(samples)),
		features: make([]string, 0, len(features)),
		sIdx:     make(map[string]int, len(samples)),
		fIdx:     make(map[string]int, len(features)),
		counts:   make([][]float64, len(samples)),
	}
	for _, s := range samples {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, fmt.Errorf("empty sample label")
		}
		if _, dup := t.sIdx[s]; dup {
			return nil, fmt.Errorf("repeated sample %q", s)
		}
		t.sIdx[s] = len(t.samples)
		t.samples = append(t.samples, s)
	}
	for _, f := range features {
		f = strings.TrimSpace(f)
		if f == "" {
			return nil, fmt.Errorf("empty feature ID")
		}
		if _, dup := t.fIdx[f]; dup {
			return nil, fmt.Errorf("repeated feature %q", f)
		}
		t.fIdx[f] = len(t.features)
		t.features = append(t.features, f)
	}
	for i := range t.counts {
		t.counts[i] = make([]float64, len(t.features))
	}
	return t, nil
}

// Add adds an abundance value
// to the current value of a sample-feature cell.
// Unknown samples or features are ignored.
func (t *Table) Add(sample, feature string, v float64) {
	s, f, ok := t.cell(sample, feature)
	if !ok {
		return
	}
	t.counts[s][f] += v
}

// Features returns the feature IDs
// in input order.
func (t *Table) Features() []string {
	fs := make([]string, len(t.features))
	copy(fs, t.features)
	return fs
}

// Samples returns the sample labels
// in input order.
func (t *Table) Samples() []string {
	ss := make([]string, len(t.samples))
	copy(ss, t.samples)
	return ss
}

// Set sets the abundance value
// of a sample-feature cell.
// Unknown samples or features are ignored.
func (t *Table) Set(sample, feature string, v float64) {
	s, f, ok := t.cell(sample, feature)
	if !ok {
		return
	}
	t.counts[s][f] = v
}

// Value returns the abundance value
// of a sample-feature cell.
func (t *Table) Value(sample, feature string) float64 {
	s, f, ok := t.cell(sample, feature)
	if !ok {
		return 0
	}
	return t.counts[s][f]
}

func (t *Table) cell(sample, feature string) (s, f int, ok bool) {
	s, ok = t.sIdx[strings.TrimSpace(sample)]
	if !ok {
		return 0, 0, false
	}
	f, ok = t.fIdx[strings.TrimSpace(feature)]
	if !ok {
		return 0, 0, false
	}
	return s, f, true
}
