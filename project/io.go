// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/js-arias/ssu/param"
	"github.com/js-arias/ssu/phylo"
	"github.com/js-arias/ssu/table"
	"github.com/js-arias/timetree"
	"github.com/klauspost/compress/gzip"
)

// Gzip magic number.
var gzipMagic = []byte{0x1f, 0x8b}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var err error
	for _, c := range rc.closers {
		if e := c.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// Open opens a data file for reading.
// If the file is gzip compressed,
// it will be decompressed while reading.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(f)
	magic, _ := br.Peek(len(gzipMagic))
	if len(magic) < len(gzipMagic) || magic[0] != gzipMagic[0] || magic[1] != gzipMagic[1] {
		return &readCloser{Reader: br, closers: []io.Closer{f}}, nil
	}

	z, err := gzip.NewReader(br)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return &readCloser{Reader: z, closers: []io.Closer{z, f}}, nil
}

// Params reads the analysis parameters
// as defined in a project.
// If no parameter file is defined,
// it returns the default parameters.
func (p *Project) Params() (*param.P, error) {
	name := p.Path(Params)
	if name == "" {
		return param.New(""), nil
	}
	return param.Read(name)
}

// Table reads a feature table
// as defined in a project.
func (p *Project) Table() (*table.Table, error) {
	name := p.Path(Table)
	if name == "" {
		return nil, fmt.Errorf("feature table not defined in project %q", p.name)
	}

	f, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := table.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return t, nil
}

// Tree reads a tree defined in a project.
// If name is empty,
// the project must have a single tree.
func (p *Project) Tree(name string, opts ...phylo.BuildOption) (*phylo.Tree, error) {
	if name == "" {
		ls, err := p.TreeNames()
		if err != nil {
			return nil, err
		}
		switch len(ls) {
		case 0:
			return nil, fmt.Errorf("project %q: %w", p.name, phylo.ErrNoTree)
		case 1:
			name = ls[0]
		default:
			return nil, fmt.Errorf("project %q: %d trees found, a tree name is required", p.name, len(ls))
		}
	}

	var t *phylo.Tree
	var err error
	switch p.TreeSet() {
	case Newick:
		t, err = p.newickTree(name, opts...)
	case Trees:
		var c *timetree.Collection
		c, err = p.Trees()
		if err != nil {
			return nil, err
		}
		tt := c.Tree(name)
		if tt == nil {
			return nil, fmt.Errorf("project %q: tree %q: %w", p.name, name, phylo.ErrNoTree)
		}
		t, err = phylo.FromTimeTree(tt, opts...)
	default:
		return nil, fmt.Errorf("project %q: %w", p.name, phylo.ErrNoTree)
	}
	if err != nil {
		return nil, fmt.Errorf("project %q: tree %q: %w", p.name, name, err)
	}
	return t, nil
}

func (p *Project) newickTree(name string, opts ...phylo.BuildOption) (*phylo.Tree, error) {
	path := p.Path(Newick)
	if name != NewickName(path) {
		return nil, phylo.ErrNoTree
	}

	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := phylo.ReadNewick(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", path, err)
	}
	return t, nil
}

// TreeNames returns the names of the trees
// defined in a project.
func (p *Project) TreeNames() ([]string, error) {
	switch p.TreeSet() {
	case Newick:
		return []string{NewickName(p.Path(Newick))}, nil
	case Trees:
		c, err := p.Trees()
		if err != nil {
			return nil, err
		}
		return c.Names(), nil
	}
	return nil, nil
}

var newickExt = []string{".gz", ".nwk", ".newick", ".tre", ".tree"}

// NewickName returns the name of the tree
// stored in a Newick file,
// i.e., the file name without directories
// and Newick or gzip extensions.
func NewickName(path string) string {
	name := filepath.Base(path)
	for _, ext := range newickExt {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// Trees reads a tree collection file
// as defined in a project.
func (p *Project) Trees() (*timetree.Collection, error) {
	name := p.Path(Trees)
	if name == "" {
		return nil, fmt.Errorf("trees not defined in project %q", p.name)
	}

	f, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := timetree.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return c, nil
}
