// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package param_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/js-arias/ssu/param"
	"github.com/js-arias/ssu/unifrac"
)

func TestParam(t *testing.T) {
	name := filepath.Join(t.TempDir(), "tmp-parameters-for-test.tab")
	p := param.New(name)
	testParam(t, p, nil, name)

	if err := p.SetMethod("Generalized"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetAlpha(0.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.SetVariance(true)
	p.SetDropEmpty(true)
	p.SetStrict(true)

	if err := p.Write(); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	np, err := param.Read(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	testParam(t, np, p, name)

	o := np.Options(4, nil)
	if o.Method != unifrac.Generalized {
		t.Errorf("options method: got %v, want %v", o.Method, unifrac.Generalized)
	}
	if o.Alpha != 0.5 {
		t.Errorf("options alpha: got %.6f, want %.6f", o.Alpha, 0.5)
	}
	if !o.VarianceAdjust || !o.DropEmpty {
		t.Errorf("options flags: got %v %v, want true true", o.VarianceAdjust, o.DropEmpty)
	}
	if o.Threads != 4 {
		t.Errorf("options threads: got %d, want %d", o.Threads, 4)
	}
}

func TestParamPartial(t *testing.T) {
	name := filepath.Join(t.TempDir(), "partial.tab")
	data := `# partial parameters
parameter	value
method	weighted_normalized
unknown	value
`
	if err := os.WriteFile(name, []byte(data), 0o644); err != nil {
		t.Fatalf("unable to write file: %v", err)
	}

	p, err := param.Read(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	if p.Method() != unifrac.WeightedNormalized {
		t.Errorf("method: got %v, want %v", p.Method(), unifrac.WeightedNormalized)
	}
	if p.Alpha() != param.DefaultAlpha {
		t.Errorf("alpha: got %.6f, want %.6f", p.Alpha(), param.DefaultAlpha)
	}
}

func TestParamErrors(t *testing.T) {
	tests := map[string]string{
		"no header": "method\tunweighted\n",
		"method":    "parameter\tvalue\nmethod\tjaccard\n",
		"alpha":     "parameter\tvalue\nalpha\t-1\n",
		"variance":  "parameter\tvalue\nvariance\tmaybe\n",
	}

	dir := t.TempDir()
	for name, data := range tests {
		f := filepath.Join(dir, "param.tab")
		if err := os.WriteFile(f, []byte(data), 0o644); err != nil {
			t.Fatalf("unable to write file: %v", err)
		}
		if _, err := param.Read(f); err == nil {
			t.Errorf("%s: expecting error", name)
		}
	}

	p := param.New("x")
	if err := p.SetMethod("jaccard"); !errors.Is(err, unifrac.ErrUnknownMethod) {
		t.Errorf("set method: got error %v, want %v", err, unifrac.ErrUnknownMethod)
	}
}

func testParam(t testing.TB, p, want *param.P, name string) {
	t.Helper()

	if want == nil {
		want = param.New(name)
	}

	if p.Name() != want.Name() {
		t.Errorf("name: got %q, want %q", p.Name(), want.Name())
	}
	if p.Method() != want.Method() {
		t.Errorf("method: got %v, want %v", p.Method(), want.Method())
	}
	if p.Alpha() != want.Alpha() {
		t.Errorf("alpha: got %.6f, want %.6f", p.Alpha(), want.Alpha())
	}
	if p.Variance() != want.Variance() {
		t.Errorf("variance: got %v, want %v", p.Variance(), want.Variance())
	}
	if p.DropEmpty() != want.DropEmpty() {
		t.Errorf("drop-empty: got %v, want %v", p.DropEmpty(), want.DropEmpty())
	}
	if p.Strict() != want.Strict() {
		t.Errorf("strict: got %v, want %v", p.Strict(), want.Strict())
	}
}
