// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// HeaderID is the name of the first column
// of a classic BIOM tab-delimited table.
const HeaderID = "#OTU ID"

// ReadTSV reads a table from a classic BIOM TSV file.
//
// The header row starts with a feature ID column,
// followed by one column for each sample.
// The first column of the header can be "#OTU ID",
// any other line starting with '#'
// is taken as a comment.
// A last column named "taxonomy" or "metadata"
// is ignored.
// Each following row contains a feature ID,
// and the abundance of that feature in each sample.
//
// Here is an example file:
//
//	# Constructed from biom file
//	#OTU ID	S1	S2	S3
//	GG_OTU_1	0	5	1
//	GG_OTU_2	2	0	1
//	GG_OTU_3	1	1	0
func ReadTSV(r io.Reader) (*Table, error) {
	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.FieldsPerRecord = -1
	tab.LazyQuotes = true

	var header []string
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("while reading header: %v", io.ErrUnexpectedEOF)
		}
		if err != nil {
			return nil, fmt.Errorf("while reading header: %v", err)
		}
		if len(row) == 0 {
			continue
		}
		if strings.HasPrefix(row[0], "#") && !isHeaderID(row[0]) {
			continue
		}
		header = row
		break
	}

	samples := header[1:]
	if n := len(samples); n > 0 {
		last := strings.ToLower(strings.TrimSpace(samples[n-1]))
		if last == "taxonomy" || last == "metadata" {
			samples = samples[:n-1]
		}
	}

	type featRow struct {
		id     string
		ln     int
		values []float64
	}
	var rows []featRow
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}
		if len(row) == 0 || strings.HasPrefix(row[0], "#") {
			continue
		}
		if len(row)-1 < len(samples) {
			return nil, fmt.Errorf("on row %d: got %d values, want %d", ln, len(row)-1, len(samples))
		}

		fr := featRow{
			id:     strings.TrimSpace(row[0]),
			ln:     ln,
			values: make([]float64, len(samples)),
		}
		for i := range samples {
			vs := strings.TrimSpace(row[i+1])
			v, err := strconv.ParseFloat(vs, 64)
			if err != nil {
				return nil, fmt.Errorf("on row %d: sample %q: %q: %v", ln, samples[i], vs, err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, fmt.Errorf("on row %d: sample %q: invalid abundance %q", ln, samples[i], vs)
			}
			fr.values[i] = v
		}
		rows = append(rows, fr)
	}

	features := make([]string, 0, len(rows))
	for _, fr := range rows {
		features = append(features, fr.id)
	}
	t, err := New(samples, features)
	if err != nil {
		return nil, err
	}
	for f, fr := range rows {
		for s, v := range fr.values {
			t.counts[s][f] = v
		}
	}
	return t, nil
}

func isHeaderID(s string) bool {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	return s == "#otu id" || s == "# otu id"
}

// TSV writes a table as a classic BIOM TSV file.
func (t *Table) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'

	header := make([]string, 0, len(t.samples)+1)
	header = append(header, HeaderID)
	header = append(header, t.samples...)
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for f, id := range t.features {
		row := make([]string, 0, len(t.samples)+1)
		row = append(row, id)
		for s := range t.samples {
			row = append(row, strconv.FormatFloat(t.counts[s][f], 'g', -1, 64))
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
