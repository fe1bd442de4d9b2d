// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package param implements reading and writing
// of the parameters of a UniFrac analysis.
package param

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/js-arias/ssu/unifrac"
)

// Key is a keyword to identify
// the type of parameter in a parameter file.
type Key string

// Valid parameters
const (
	// Alpha is the exponent of the Generalized UniFrac.
	Alpha Key = "alpha"

	// DropEmpty is true if samples without abundance
	// in the tree should be ignored.
	DropEmpty Key = "drop-empty"

	// Method is the UniFrac variant.
	Method Key = "method"

	// Strict is true if the tree must have
	// strictly positive branch lengths.
	Strict Key = "strict"

	// Variance is true if variance adjusted weights
	// should be used.
	Variance Key = "variance"
)

// Default alpha value.
const DefaultAlpha = 1.0

// P represents a collection of analysis parameters.
type P struct {
	name string // file name

	method unifrac.Method
	alpha  float64
	vaw    bool
	drop   bool
	strict bool
}

// New creates a new parameter collection
// with default values.
func New(name string) *P {
	return &P{
		name:   name,
		method: unifrac.Unweighted,
		alpha:  DefaultAlpha,
	}
}

var header = []string{
	"parameter",
	"value",
}

// Read reads a parameter file from a TSV file.
//
// The TSV must contains the following fields:
//
//   - parameter, the name of the parameter
//   - value, the value of the parameter
//
// Here is an example file:
//
//	# ssu parameters
//	parameter	value
//	method	generalized
//	alpha	0.5
//	variance	false
//
// Parameters not defined in the file
// keep their default values.
func Read(name string) (*P, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := read(f, name)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return p, nil
}

func read(r io.Reader, name string) (*P, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	p := New(name)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "parameter"
		k := Key(strings.ToLower(strings.TrimSpace(row[fields[f]])))

		f = "value"
		v := strings.TrimSpace(row[fields[f]])
		var e error
		switch k {
		case Alpha:
			var a float64
			a, e = strconv.ParseFloat(v, 64)
			if e == nil {
				e = p.SetAlpha(a)
			}
		case DropEmpty:
			p.drop, e = strconv.ParseBool(v)
		case Method:
			e = p.SetMethod(v)
		case Strict:
			p.strict, e = strconv.ParseBool(v)
		case Variance:
			p.vaw, e = strconv.ParseBool(v)
		default:
			continue
		}
		if e != nil {
			return nil, fmt.Errorf("on row %d, field %q: %v", ln, f, e)
		}
	}
	return p, nil
}

// Alpha returns the exponent
// of the Generalized UniFrac.
func (p *P) Alpha() float64 {
	return p.alpha
}

// DropEmpty returns true if empty samples
// are ignored.
func (p *P) DropEmpty() bool {
	return p.drop
}

// Method returns the UniFrac variant.
func (p *P) Method() unifrac.Method {
	return p.method
}

// Name returns the name of the parameter file.
func (p *P) Name() string {
	return p.name
}

// Options returns the options for a distance calculation
// using the indicated number of goroutines.
func (p *P) Options(threads int, logger *slog.Logger) unifrac.Options {
	return unifrac.Options{
		Method:         p.method,
		Alpha:          p.alpha,
		VarianceAdjust: p.vaw,
		Threads:        threads,
		DropEmpty:      p.drop,
		Logger:         logger,
	}
}

// SetAlpha sets the exponent of the Generalized UniFrac.
func (p *P) SetAlpha(a float64) error {
	if math.IsNaN(a) || math.IsInf(a, 0) || a < 0 {
		return fmt.Errorf("invalid alpha value: %v", a)
	}
	p.alpha = a
	return nil
}

// SetDropEmpty sets whether empty samples are ignored.
func (p *P) SetDropEmpty(drop bool) {
	p.drop = drop
}

// SetMethod sets the UniFrac variant.
func (p *P) SetMethod(name string) error {
	m, err := unifrac.ParseMethod(name)
	if err != nil {
		return err
	}
	p.method = m
	return nil
}

// SetName sets the name of a parameter collection.
func (p *P) SetName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	p.name = name
}

// SetStrict sets whether zero length branches
// are rejected.
func (p *P) SetStrict(strict bool) {
	p.strict = strict
}

// SetVariance sets whether variance adjusted weights are used.
func (p *P) SetVariance(vaw bool) {
	p.vaw = vaw
}

// Strict returns true if zero length branches
// are rejected.
func (p *P) Strict() bool {
	return p.strict
}

// Variance returns true if variance adjusted weights
// are used.
func (p *P) Variance() bool {
	return p.vaw
}

// Write writes a parameter collection into a file.
func (p *P) Write() (err error) {
	f, err := os.Create(p.name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# ssu parameters\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", p.name, err)
	}

	rows := [][]string{
		{string(Method), p.method.String()},
		{string(Alpha), strconv.FormatFloat(p.alpha, 'g', -1, 64)},
		{string(Variance), strconv.FormatBool(p.vaw)},
		{string(DropEmpty), strconv.FormatBool(p.drop)},
		{string(Strict), strconv.FormatBool(p.strict)},
	}
	for _, row := range rows {
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("on file %q: %v", p.name, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", p.name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", p.name, err)
	}
	return nil
}
