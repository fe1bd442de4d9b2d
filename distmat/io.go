// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package distmat

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadTSV reads a distance matrix
// from a square TSV file.
//
// The first row contains an empty cell
// followed by the sample labels.
// Each following row contains a sample label
// and the distances to each sample,
// in the same order as the header.
// Lines starting with '#' are ignored.
//
// Here is an example file:
//
//	# unweighted unifrac
//		S1	S2	S3
//	S1	0	0.5	1
//	S2	0.5	0	0.25
//	S3	1	0.25	0
func ReadTSV(r io.Reader) (*Matrix, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	labels := make([]string, 0, len(head)-1)
	for _, h := range head[1:] {
		labels = append(labels, strings.TrimSpace(h))
	}
	m, err := newMatrix(labels)
	if err != nil {
		return nil, fmt.Errorf("on header: %v", err)
	}

	row := 0
	for {
		rec, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}
		if row >= len(labels) {
			return nil, fmt.Errorf("on row %d: too many rows", ln)
		}
		if l := strings.TrimSpace(rec[0]); l != labels[row] {
			return nil, fmt.Errorf("on row %d: got sample %q, want %q", ln, l, labels[row])
		}

		for j := 0; j < len(labels); j++ {
			vs := strings.TrimSpace(rec[j+1])
			d, err := strconv.ParseFloat(vs, 64)
			if err != nil {
				return nil, fmt.Errorf("on row %d: column %q: %q: %v", ln, labels[j], vs, err)
			}
			switch {
			case j == row:
				if d != 0 {
					return nil, fmt.Errorf("on row %d: non-zero diagonal value %q", ln, vs)
				}
			case j < row:
				if prev := m.m.At(row, j); prev != d {
					return nil, fmt.Errorf("on row %d: column %q: asymmetric value %q (want %v)", ln, labels[j], vs, prev)
				}
			default:
				m.m.SetSym(row, j, d)
			}
		}
		row++
	}
	if row != len(labels) {
		return nil, fmt.Errorf("got %d rows, want %d", row, len(labels))
	}
	return m, nil
}

// TSV writes a distance matrix
// as a square TSV file.
func (m *Matrix) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'

	header := make([]string, 0, len(m.labels)+1)
	header = append(header, "")
	header = append(header, m.labels...)
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for i, l := range m.labels {
		row := make([]string, 0, len(m.labels)+1)
		row = append(row, l)
		for j := range m.labels {
			row = append(row, strconv.FormatFloat(m.At(i, j), 'g', -1, 64))
		}
		if err := tab.Write(row); err != nil {
			return fmt.Errorf("when writing data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("when writing data: %v", err)
	}
	return nil
}
