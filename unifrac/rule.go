// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package unifrac

import (
	"fmt"
	"math"
)

// A kernel is the contribution rule of a method
// for a single pair of samples
// at a single node.
type kernel interface {
	// value returns the value of a sample at a node,
	// from the summed abundance of the node
	// and the total abundance of the sample.
	value(count, total float64) float64

	// term returns the numerator and denominator terms
	// for a pair of sample values,
	// for a branch of unit length.
	term(u, v float64) (num, den float64)

	// normalized is true if the distance
	// is the ratio between the numerator and the denominator.
	normalized() bool
}

type unweighted struct{}

func (unweighted) value(count, total float64) float64 {
	if count > 0 {
		return 1
	}
	return 0
}

func (unweighted) term(u, v float64) (num, den float64) {
	return math.Abs(u - v), math.Max(u, v)
}

func (unweighted) normalized() bool { return true }

type weightedUnnormalized struct{}

func (weightedUnnormalized) value(count, total float64) float64 {
	return count / total
}

func (weightedUnnormalized) term(u, v float64) (num, den float64) {
	return math.Abs(u - v), 0
}

func (weightedUnnormalized) normalized() bool { return false }

type weightedNormalized struct{}

func (weightedNormalized) value(count, total float64) float64 {
	return count / total
}

func (weightedNormalized) term(u, v float64) (num, den float64) {
	return math.Abs(u - v), u + v
}

func (weightedNormalized) normalized() bool { return true }

type generalized struct {
	alpha float64
}

func (generalized) value(count, total float64) float64 {
	return count / total
}

func (g generalized) term(u, v float64) (num, den float64) {
	s := u + v
	if s == 0 {
		return 0, 0
	}
	sp := math.Pow(s, g.alpha)
	if u == 0 || v == 0 {
		// keeps num <= den after rounding
		return sp, sp
	}
	return sp * math.Abs(u-v) / s, sp
}

func (generalized) normalized() bool { return true }

// A contribution adds the contribution of a node
// to the pairs owned by a worker.
type contribution interface {
	add(w *worker, length float64, counts []float64)
}

// Plain adds the kernel terms
// scaled by the branch length.
type plain struct {
	k kernel
}

func (r plain) add(w *worker, length float64, _ []float64) {
	for x, i := range w.i {
		j := w.j[x]
		num, den := r.k.term(w.values[i], w.values[j])
		w.num[x] += length * num
		w.den[x] += length * den
	}
}

// Adjusted adds the kernel terms
// scaled by the branch length
// and divided by the binomial standard deviation
// of the pair counts at the node.
type adjusted struct {
	k kernel
}

func (r adjusted) add(w *worker, length float64, counts []float64) {
	for x, i := range w.i {
		j := w.j[x]
		mi := counts[i] + counts[j]
		m := w.totals[i] + w.totals[j]
		vaw := math.Sqrt(mi * (m - mi))
		if vaw == 0 {
			continue
		}
		num, den := r.k.term(w.values[i], w.values[j])
		w.num[x] += length * num / vaw
		w.den[x] += length * den / vaw
	}
}

// Strategy returns the kernel and contribution rule
// for a set of options.
func (o Options) strategy() (kernel, contribution, error) {
	var k kernel
	switch o.Method {
	case Unweighted:
		k = unweighted{}
	case WeightedUnnormalized:
		k = weightedUnnormalized{}
	case WeightedNormalized:
		k = weightedNormalized{}
	case Generalized:
		if math.IsNaN(o.Alpha) || math.IsInf(o.Alpha, 0) || o.Alpha < 0 {
			return nil, nil, fmt.Errorf("invalid alpha value %v", o.Alpha)
		}
		k = generalized{alpha: o.Alpha}
	default:
		return nil, nil, fmt.Errorf("%w: %v", ErrUnknownMethod, o.Method)
	}

	if o.VarianceAdjust {
		return k, adjusted{k: k}, nil
	}
	return k, plain{k: k}, nil
}
