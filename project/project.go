// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package project implements reading and writing
// of SSU project files.
//
// A SSU project is a tab-delimited file (TSV)
// used to store the different data files
// required by SSU commands.
//
// The tree of a project is either a collection
// of time-calibrated trees
// (with branch lengths rounded to years)
// or a single Newick tree
// (with branch lengths kept as read).
// A project has only one of them.
package project

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"
)

// Dataset is a keyword to identify
// the type of a dataset file in a project.
type Dataset string

// Valid dataset types.
const (
	// File for the analysis parameters.
	Params Dataset = "param"

	// File for the feature table
	// (the abundances of the features in each sample).
	Table Dataset = "table"

	// File for a single phylogenetic tree
	// in Newick format.
	Newick Dataset = "newick"

	// File for a collection of time-calibrated trees.
	Trees Dataset = "trees"
)

// Datasets that define the tree of a project.
var treeSets = []Dataset{Newick, Trees}

// ParseDataset returns the dataset
// with the given name.
func ParseDataset(name string) (Dataset, error) {
	s := Dataset(strings.ToLower(strings.TrimSpace(name)))
	switch s {
	case Params, Table, Newick, Trees:
		return s, nil
	}
	return "", fmt.Errorf("unknown dataset %q", name)
}

// A Project represents a collection of paths
// for particular datasets.
type Project struct {
	name  string
	paths map[Dataset]string
}

// New creates a new empty project.
func New() *Project {
	return &Project{
		name:  "",
		paths: make(map[Dataset]string),
	}
}

var header = []string{
	"dataset",
	"path",
}

// Read reads a project file from a TSV file.
//
// The TSV must contain the following fields:
//
//   - dataset, for the kind of file
//   - path, for the path of the file
//
// Here is an example file:
//
//	# ssu project files
//	dataset	path
//	param	param.tab
//	table	table.tab.gz
//	trees	trees.tab
//
// Unknown or repeated datasets are errors,
// as well as a project with both
// a Newick tree and a tree collection.
func Read(name string) (*Project, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tsv := csv.NewReader(f)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("on file %q: header: %v", name, err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("on file %q: expecting field %q", name, h)
		}
	}

	p := New()
	p.name = name
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}

		f := "dataset"
		s, err := ParseDataset(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: field %q: %v", name, ln, f, err)
		}
		if _, dup := p.paths[s]; dup {
			return nil, fmt.Errorf("on file %q: on row %d: field %q: repeated dataset %q", name, ln, f, s)
		}

		f = "path"
		path := strings.TrimSpace(row[fields[f]])
		if path == "" {
			return nil, fmt.Errorf("on file %q: on row %d: field %q: empty path", name, ln, f)
		}
		p.paths[s] = path
	}

	if p.paths[Newick] != "" && p.paths[Trees] != "" {
		return nil, fmt.Errorf("on file %q: datasets %q and %q are both defined", name, Newick, Trees)
	}
	return p, nil
}

// Add adds a filepath of a dataset to a given project.
// It returns the previous value
// for the dataset.
// If path is empty,
// the dataset is removed.
//
// As a project has a single tree source,
// adding a Newick tree removes the tree collection,
// and vice versa.
func (p *Project) Add(set Dataset, path string) string {
	prev := p.paths[set]
	if path == "" {
		delete(p.paths, set)
		return prev
	}

	if slices.Contains(treeSets, set) {
		for _, s := range treeSets {
			delete(p.paths, s)
		}
	}
	p.paths[set] = path
	return prev
}

// Name returns the project file name.
func (p *Project) Name() string {
	return p.name
}

// Path returns the path of the given dataset.
func (p *Project) Path(set Dataset) string {
	return p.paths[set]
}

// Sets returns the datasets defined on a project.
func (p *Project) Sets() []Dataset {
	var sets []Dataset
	for s := range p.paths {
		sets = append(sets, s)
	}
	slices.Sort(sets)
	return sets
}

// TreeSet returns the dataset
// used to store the tree of the project,
// or an empty dataset if no tree is defined.
func (p *Project) TreeSet() Dataset {
	for _, s := range treeSets {
		if p.paths[s] != "" {
			return s
		}
	}
	return ""
}

// SetName sets the project file name.
func (p *Project) SetName(name string) {
	p.name = name
}

// Write writes a project into a file.
func (p *Project) Write() (err error) {
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
	fmt.Fprintf(bw, "# ssu project files\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", p.name, err)
	}

	sets := p.Sets()
	for _, s := range sets {
		row := []string{
			string(s),
			p.paths[s],
		}
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
