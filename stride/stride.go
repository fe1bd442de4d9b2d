// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package stride implements the partition
// of the sample pairs of a distance matrix
// into disjoint groups of work.
//
// Pairs are arranged in strides.
// A stride s pairs each sample k
// with the sample (k+s+1) mod N,
// so a stride visits every sample exactly once
// (or twice, if N is even and s = N/2-1,
// in which case only the first half of the stride is kept).
// There are N/2 strides,
// that cover the N(N-1)/2 unordered pairs
// exactly once.
package stride

import "fmt"

// An InvalidParallelismError is returned
// when the number of groups is not positive.
type InvalidParallelismError struct {
	P int
}

func (e *InvalidParallelismError) Error() string {
	return fmt.Sprintf("invalid parallelism degree %d: must be at least 1", e.P)
}

// Pairs returns the number of unordered pairs
// of n samples.
func Pairs(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// Strides returns the number of strides
// of n samples.
func Strides(n int) int {
	return n / 2
}

// Len returns the number of pairs
// in stride s of n samples.
func Len(n, s int) int {
	if n%2 == 0 && s == n/2-1 {
		return n / 2
	}
	return n
}

// A Group is a range of pairs
// ordered by stride,
// and inside each stride,
// by the first sample of the pair.
type Group struct {
	// Start and End define the half-open range
	// [Start, End) of pair indices.
	Start, End int
}

// Len returns the number of pairs in the group.
func (g Group) Len() int {
	return g.End - g.Start
}

// Each calls fn for each pair in the group.
// The pair index q maps to stride q/n,
// and to the sample q mod n of that stride.
func (g Group) Each(n int, fn func(i, j int)) {
	for q := g.Start; q < g.End; q++ {
		s := q / n
		k := q % n
		fn(k, (k+s+1)%n)
	}
}

// Partition splits the pairs of n samples
// into p disjoint groups of contiguous pairs.
// Group sizes differ by at most one pair.
// The partition is deterministic for a given (n, p),
// and some groups can be empty
// if there are less pairs than groups.
func Partition(n, p int) ([]Group, error) {
	if p < 1 {
		return nil, &InvalidParallelismError{P: p}
	}

	total := Pairs(n)
	groups := make([]Group, p)
	for g := range groups {
		groups[g] = Group{
			Start: g * total / p,
			End:   (g + 1) * total / p,
		}
	}
	return groups, nil
}
