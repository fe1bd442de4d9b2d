// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package unifrac_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/js-arias/ssu/distmat"
	"github.com/js-arias/ssu/phylo"
	"github.com/js-arias/ssu/stride"
	"github.com/js-arias/ssu/table"
	"github.com/js-arias/ssu/unifrac"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

type config struct {
	name string
	opts unifrac.Options
}

var configs = []config{
	{"unweighted", unifrac.Options{Method: unifrac.Unweighted}},
	{"weighted unnormalized", unifrac.Options{Method: unifrac.WeightedUnnormalized}},
	{"weighted normalized", unifrac.Options{Method: unifrac.WeightedNormalized}},
	{"generalized 0.5", unifrac.Options{Method: unifrac.Generalized, Alpha: 0.5}},
	{"generalized 0", unifrac.Options{Method: unifrac.Generalized, Alpha: 0}},
	{"vaw unweighted", unifrac.Options{Method: unifrac.Unweighted, VarianceAdjust: true}},
	{"vaw weighted unnormalized", unifrac.Options{Method: unifrac.WeightedUnnormalized, VarianceAdjust: true}},
	{"vaw weighted normalized", unifrac.Options{Method: unifrac.WeightedNormalized, VarianceAdjust: true}},
	{"vaw generalized", unifrac.Options{Method: unifrac.Generalized, Alpha: 0.5, VarianceAdjust: true}},
}

func compute(t testing.TB, tr *phylo.Tree, samples []table.Sample, o unifrac.Options, threads int) *distmat.Matrix {
	t.Helper()

	o.Threads = threads
	m, err := unifrac.Compute(context.Background(), tr, samples, o)
	if err != nil {
		t.Fatalf("unable to compute distances: %v", err)
	}
	return m
}

func newSample(label string, counts ...float64) table.Sample {
	return table.Sample{
		Label:  label,
		Counts: counts,
		Total:  floats.Sum(counts),
	}
}

// ((l1:1,l2:1):1,(l3:1,l4:1):1);
func balancedTree(t testing.TB) *phylo.Tree {
	t.Helper()

	tr, err := phylo.Build([]phylo.Node{
		{ID: 0, Parent: -1},
		{ID: 1, Parent: 0, Length: 1},
		{ID: 2, Parent: 0, Length: 1},
		{ID: 3, Parent: 1, Length: 1, Name: "l1"},
		{ID: 4, Parent: 1, Length: 1, Name: "l2"},
		{ID: 5, Parent: 2, Length: 1, Name: "l3"},
		{ID: 6, Parent: 2, Length: 1, Name: "l4"},
	})
	if err != nil {
		t.Fatalf("unable to build tree: %v", err)
	}
	return tr
}

// (l1:1,l2:2,l3:3);
func starTree(t testing.TB) *phylo.Tree {
	t.Helper()

	tr, err := phylo.Build([]phylo.Node{
		{ID: 0, Parent: -1},
		{ID: 1, Parent: 0, Length: 1, Name: "l1"},
		{ID: 2, Parent: 0, Length: 2, Name: "l2"},
		{ID: 3, Parent: 0, Length: 3, Name: "l3"},
	})
	if err != nil {
		t.Fatalf("unable to build tree: %v", err)
	}
	return tr
}

func TestBalancedDisjoint(t *testing.T) {
	tr := balancedTree(t)
	samples := []table.Sample{
		newSample("A", 1, 1, 0, 0),
		newSample("B", 0, 0, 1, 1),
	}

	tests := map[unifrac.Method]float64{
		unifrac.Unweighted:           1,
		unifrac.WeightedUnnormalized: 4,
		unifrac.WeightedNormalized:   1,
	}
	for meth, want := range tests {
		m := compute(t, tr, samples, unifrac.Options{Method: meth}, 1)
		if d, _ := m.Dist("A", "B"); d != want {
			t.Errorf("%s: got %.6f, want %.6f", meth, d, want)
		}
	}
}

func TestStarTree(t *testing.T) {
	tr := starTree(t)
	samples := []table.Sample{
		newSample("A", 1, 1, 2),
		newSample("B", 2, 1, 1),
	}

	// proportions: A = (0.25, 0.25, 0.5), B = (0.5, 0.25, 0.25)
	// weighted: 1*0.25 + 2*0 + 3*0.25 = 1
	// denominator: 1*0.75 + 2*0.5 + 3*0.75 = 4
	tests := map[unifrac.Method]float64{
		unifrac.Unweighted:           0,
		unifrac.WeightedUnnormalized: 1,
		unifrac.WeightedNormalized:   0.25,
	}
	for meth, want := range tests {
		m := compute(t, tr, samples, unifrac.Options{Method: meth}, 1)
		d, _ := m.Dist("A", "B")
		if !scalar.EqualWithinAbsOrRel(d, want, 1e-12, 1e-12) {
			t.Errorf("%s: got %.6f, want %.6f", meth, d, want)
		}
	}

	// variance adjusted weighted:
	// node counts for A and B are (1, 2), (1, 1), (2, 1)
	// with a total count of 8.
	vaw := 1*0.25/math.Sqrt(3*5) + 3*0.25/math.Sqrt(3*5)
	m := compute(t, tr, samples, unifrac.Options{Method: unifrac.WeightedUnnormalized, VarianceAdjust: true}, 1)
	if d, _ := m.Dist("A", "B"); !scalar.EqualWithinAbsOrRel(d, vaw, 1e-12, 1e-12) {
		t.Errorf("vaw weighted: got %.6f, want %.6f", d, vaw)
	}
}

func TestIdentical(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	tr := randomTree(rng, 30)
	base := randomSamples(rng, tr, 1)[0]
	a := base
	a.Label = "a"
	b := base
	b.Label = "b"
	b.Counts = append([]float64(nil), base.Counts...)

	for _, c := range configs {
		m := compute(t, tr, []table.Sample{a, b}, c.opts, 2)
		if d, _ := m.Dist("a", "b"); d != 0 {
			t.Errorf("%s: identical samples: got %g, want 0", c.name, d)
		}
	}
}

func TestRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	tr := randomTree(rng, 50)
	samples := randomSamples(rng, tr, 17)

	for _, c := range configs {
		m := compute(t, tr, samples, c.opts, 4)
		testMatrix(t, c, tr, samples, m)
	}
}

func testMatrix(t testing.TB, c config, tr *phylo.Tree, samples []table.Sample, m *distmat.Matrix) {
	t.Helper()

	if m.Len() != len(samples) {
		t.Fatalf("%s: size: got %d, want %d", c.name, m.Len(), len(samples))
	}
	for i := range samples {
		if d := m.At(i, i); d != 0 {
			t.Errorf("%s: diagonal %d: got %g", c.name, i, d)
		}
		for j := range samples {
			d := m.At(i, j)
			if d != m.At(j, i) {
				t.Errorf("%s: asymmetric value at (%d, %d)", c.name, i, j)
			}
			if d < 0 {
				t.Errorf("%s: negative distance at (%d, %d): %g", c.name, i, j, d)
			}
			if c.opts.Method.Bounded() && d > 1 {
				t.Errorf("%s: distance at (%d, %d) out of range: %g", c.name, i, j, d)
			}
			if i == j {
				continue
			}
			want := naive(tr, samples[i], samples[j], c.opts)
			if !scalar.EqualWithinAbsOrRel(d, want, 1e-12, 1e-12) {
				t.Errorf("%s: distance at (%d, %d): got %.12f, want %.12f", c.name, i, j, d, want)
			}
		}
	}
}

func TestThreads(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	tr := randomTree(rng, 40)
	samples := randomSamples(rng, tr, 23)

	for _, c := range configs {
		seq := compute(t, tr, samples, c.opts, 1)
		for _, p := range []int{2, 3, 8, 300} {
			par := compute(t, tr, samples, c.opts, p)
			for i := range samples {
				for j := range samples {
					if seq.At(i, j) != par.At(i, j) {
						t.Errorf("%s: threads %d: at (%d, %d): got %g, want %g (bitwise)", c.name, p, i, j, par.At(i, j), seq.At(i, j))
					}
				}
			}
		}
	}
}

func TestPermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 17))
	tr := randomTree(rng, 25)
	samples := randomSamples(rng, tr, 9)

	perm := rng.Perm(len(samples))
	shuffled := make([]table.Sample, len(samples))
	for i, p := range perm {
		shuffled[i] = samples[p]
	}

	for _, c := range configs {
		m := compute(t, tr, samples, c.opts, 3)
		sm := compute(t, tr, shuffled, c.opts, 2)
		for i, p := range perm {
			if sm.Labels()[i] != samples[p].Label {
				t.Errorf("%s: label %d: got %q, want %q", c.name, i, sm.Labels()[i], samples[p].Label)
			}
			for j, q := range perm {
				if sm.At(i, j) != m.At(p, q) {
					t.Errorf("%s: permuted (%d, %d): got %g, want %g", c.name, i, j, sm.At(i, j), m.At(p, q))
				}
			}
		}
	}
}

func TestGeneralizedAlphaOne(t *testing.T) {
	rng := rand.New(rand.NewPCG(19, 23))
	tr := randomTree(rng, 30)
	samples := randomSamples(rng, tr, 8)

	g := compute(t, tr, samples, unifrac.Options{Method: unifrac.Generalized, Alpha: 1}, 2)
	w := compute(t, tr, samples, unifrac.Options{Method: unifrac.WeightedNormalized}, 2)
	for i := range samples {
		for j := range samples {
			if !scalar.EqualWithinAbsOrRel(g.At(i, j), w.At(i, j), 1e-12, 1e-12) {
				t.Errorf("at (%d, %d): generalized: got %.12f, want %.12f", i, j, g.At(i, j), w.At(i, j))
			}
		}
	}
}

func TestZeroDenominator(t *testing.T) {
	tr, err := phylo.Build([]phylo.Node{
		{ID: 0, Parent: -1},
		{ID: 1, Parent: 0, Length: 0, Name: "a"},
		{ID: 2, Parent: 0, Length: 0, Name: "b"},
	})
	if err != nil {
		t.Fatalf("unable to build tree: %v", err)
	}
	samples := []table.Sample{
		newSample("A", 1, 0),
		newSample("B", 0, 1),
	}

	var logs bytes.Buffer
	o := unifrac.Options{
		Method: unifrac.Unweighted,
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	}
	m := compute(t, tr, samples, o, 1)
	if d, _ := m.Dist("A", "B"); d != 0 {
		t.Errorf("zero denominator: got %g, want 0", d)
	}
	if !strings.Contains(logs.String(), "zero denominator") {
		t.Errorf("expecting a warning, got %q", logs.String())
	}
}

func TestErrors(t *testing.T) {
	tr := balancedTree(t)
	samples := []table.Sample{
		newSample("A", 1, 1, 0, 0),
		newSample("B", 0, 0, 1, 1),
	}
	ctx := context.Background()

	_, err := unifrac.Compute(ctx, tr, samples, unifrac.Options{Threads: 0})
	var pErr *stride.InvalidParallelismError
	if !errors.As(err, &pErr) {
		t.Errorf("zero threads: got error %v, want an InvalidParallelismError", err)
	}

	_, err = unifrac.Compute(ctx, tr, samples, unifrac.Options{Method: unifrac.Method(42), Threads: 1})
	if !errors.Is(err, unifrac.ErrUnknownMethod) {
		t.Errorf("unknown method: got error %v, want %v", err, unifrac.ErrUnknownMethod)
	}

	_, err = unifrac.Compute(ctx, tr, samples, unifrac.Options{Method: unifrac.Generalized, Alpha: -1, Threads: 1})
	if err == nil {
		t.Errorf("negative alpha: expecting error")
	}

	_, err = unifrac.Compute(ctx, nil, samples, unifrac.Options{Threads: 1})
	if !errors.Is(err, phylo.ErrNoTree) {
		t.Errorf("nil tree: got error %v, want %v", err, phylo.ErrNoTree)
	}

	bad := []table.Sample{samples[0], newSample("C", 1, 1)}
	if _, err := unifrac.Compute(ctx, tr, bad, unifrac.Options{Threads: 1}); err == nil {
		t.Errorf("short sample: expecting error")
	}

	empty := []table.Sample{samples[0], {Label: "E", Counts: make([]float64, 4)}}
	_, err = unifrac.Compute(ctx, tr, empty, unifrac.Options{Threads: 1})
	var eErr *table.EmptySampleError
	if !errors.As(err, &eErr) {
		t.Errorf("empty sample: got error %v, want an EmptySampleError", err)
	}
}

func TestCancel(t *testing.T) {
	tr := balancedTree(t)
	samples := []table.Sample{
		newSample("A", 1, 1, 0, 0),
		newSample("B", 0, 0, 1, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := unifrac.Compute(ctx, tr, samples, unifrac.Options{Threads: 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: got error %v, want %v", err, context.Canceled)
	}
}

func TestRun(t *testing.T) {
	tr := balancedTree(t)
	tab, err := table.New([]string{"A", "B", "E"}, []string{"l1", "l2", "l3", "l4", "other"})
	if err != nil {
		t.Fatalf("unable to create table: %v", err)
	}
	tab.Set("A", "l1", 3)
	tab.Set("A", "l2", 1)
	tab.Set("B", "l3", 2)
	tab.Set("B", "l4", 5)
	tab.Set("E", "other", 5)

	o := unifrac.Options{Method: unifrac.Unweighted, Threads: 2}
	if _, err := unifrac.Run(context.Background(), tr, tab, o); err == nil {
		t.Errorf("empty sample: expecting error")
	}

	o.DropEmpty = true
	m, err := unifrac.Run(context.Background(), tr, tab, o)
	if err != nil {
		t.Fatalf("unable to compute distances: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("samples: got %d, want %d", m.Len(), 2)
	}
	if d, _ := m.Dist("A", "B"); d != 1 {
		t.Errorf("distance A-B: got %.6f, want %.6f", d, 1.0)
	}
}

func TestParseMethod(t *testing.T) {
	tests := map[string]unifrac.Method{
		"unweighted":            unifrac.Unweighted,
		"Weighted_Unnormalized": unifrac.WeightedUnnormalized,
		"weighted-normalized":   unifrac.WeightedNormalized,
		"weighted normalized":   unifrac.WeightedNormalized,
		"generalized":           unifrac.Generalized,
	}
	for name, want := range tests {
		m, err := unifrac.ParseMethod(name)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", name, err)
			continue
		}
		if m != want {
			t.Errorf("%q: got %v, want %v", name, m, want)
		}
		if n, _ := unifrac.ParseMethod(m.String()); n != m {
			t.Errorf("%q: string round trip: got %v, want %v", name, n, m)
		}
	}

	if _, err := unifrac.ParseMethod("jaccard"); !errors.Is(err, unifrac.ErrUnknownMethod) {
		t.Errorf("unknown method: got error %v, want %v", err, unifrac.ErrUnknownMethod)
	}
}

// RandomTree returns a random binary tree
// with some zero length branches.
func randomTree(rng *rand.Rand, leaves int) *phylo.Tree {
	nodes := make([]phylo.Node, 0, 2*leaves-1)
	active := make([]int, 0, leaves)
	for i := 0; i < leaves; i++ {
		nodes = append(nodes, phylo.Node{
			ID:   i,
			Name: fmt.Sprintf("t%d", i),
		})
		active = append(active, i)
	}

	pick := func() int {
		x := rng.IntN(len(active))
		n := active[x]
		active[x] = active[len(active)-1]
		active = active[:len(active)-1]
		return n
	}
	length := func() float64 {
		if rng.IntN(10) == 0 {
			return 0
		}
		return rng.Float64()
	}
	for len(active) > 1 {
		id := len(nodes)
		for _, c := range []int{pick(), pick()} {
			nodes[c].Parent = id
			nodes[c].Length = length()
		}
		nodes = append(nodes, phylo.Node{ID: id})
		active = append(active, id)
	}
	nodes[active[0]].Parent = -1

	tr, err := phylo.Build(nodes)
	if err != nil {
		panic(err)
	}
	return tr
}

// RandomSamples returns sparse random samples.
func randomSamples(rng *rand.Rand, tr *phylo.Tree, n int) []table.Sample {
	samples := make([]table.Sample, n)
	for i := range samples {
		counts := make([]float64, tr.Leaves())
		for j := range counts {
			if rng.IntN(3) == 0 {
				counts[j] = float64(rng.IntN(20) + 1)
			}
		}
		if floats.Sum(counts) == 0 {
			counts[rng.IntN(len(counts))] = 1
		}
		samples[i] = newSample(fmt.Sprintf("s%d", i), counts...)
	}
	return samples
}

// Naive calculates the distance between two samples
// directly from the node sums.
func naive(tr *phylo.Tree, a, b table.Sample, o unifrac.Options) float64 {
	sa := nodeSums(tr, a.Counts)
	sb := nodeSums(tr, b.Counts)

	var num, den float64
	for n := 0; n < tr.Len(); n++ {
		if n == tr.Root() {
			continue
		}
		length := tr.Length(n)
		ca, cb := sa[n], sb[n]

		w := 1.0
		if o.VarianceAdjust {
			mi := ca + cb
			m := a.Total + b.Total
			w = math.Sqrt(mi * (m - mi))
			if w == 0 {
				continue
			}
		}

		pa, pb := ca/a.Total, cb/b.Total
		switch o.Method {
		case unifrac.Unweighted:
			ua, ub := ca > 0, cb > 0
			if ua != ub {
				num += length / w
			}
			if ua || ub {
				den += length / w
			}
		case unifrac.WeightedUnnormalized:
			num += length * math.Abs(pa-pb) / w
		case unifrac.WeightedNormalized:
			num += length * math.Abs(pa-pb) / w
			den += length * (pa + pb) / w
		case unifrac.Generalized:
			s := pa + pb
			if s == 0 {
				continue
			}
			sp := math.Pow(s, o.Alpha)
			num += length * sp * math.Abs(pa-pb) / s / w
			den += length * sp / w
		}
	}

	if o.Method == unifrac.WeightedUnnormalized {
		return num
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func nodeSums(tr *phylo.Tree, counts []float64) []float64 {
	sums := make([]float64, tr.Len())
	for n := 0; n < tr.Len(); n++ {
		if tr.IsLeaf(n) {
			sums[n] = counts[tr.LeafPos(n)]
		}
		if p := tr.Parent(n); p >= 0 {
			sums[p] += sums[n]
		}
	}
	return sums
}

func TestShortBranches(t *testing.T) {
	nwk := "((GG_OTU_1:0.0000004,GG_OTU_2:0.0000013):0.0000021,GG_OTU_3:0.0000117);"
	tr, err := phylo.ReadNewick(strings.NewReader(nwk))
	if err != nil {
		t.Fatalf("unable to read newick tree: %v", err)
	}

	counts := func(names ...string) []float64 {
		c := make([]float64, tr.Leaves())
		for _, n := range names {
			pos, ok := tr.Leaf(n)
			if !ok {
				t.Fatalf("terminal %q not found", n)
			}
			c[pos] = 1
		}
		return c
	}
	samples := []table.Sample{
		newSample("A", counts("GG_OTU_1", "GG_OTU_3")...),
		newSample("B", counts("GG_OTU_2", "GG_OTU_3")...),
	}

	// unique: 0.4 + 1.3, observed: 0.4 + 1.3 + 2.1 + 11.7
	want := 1.7 / 15.5
	m := compute(t, tr, samples, unifrac.Options{Method: unifrac.Unweighted}, 1)
	if d, _ := m.Dist("A", "B"); !scalar.EqualWithinAbsOrRel(d, want, 1e-12, 1e-12) {
		t.Errorf("unweighted: got %.6f, want %.6f", d, want)
	}
}
