// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package add implements a command to add trees
// to a SSU project.
package add

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/ssu/phylo"
	"github.com/js-arias/ssu/project"
	"github.com/js-arias/timetree"
)

var Command = &command.Command{
	Usage: `add [-f|--file <tree-file>] [--newick]
	<project-file> [<tree-file>...]`,
	Short: "add phylogenetic trees to a SSU project",
	Long: `
Command add reads one or more trees from one or more tree files, and adds the
trees to a SSU project.

The first argument of the command is the name of the project file. If no
project file exists, a new project will be created.

One or more tree files can be given as arguments. If no file is given the
trees will be read from the standard input. Files can be compressed with gzip.

By default, the input is expected to be in the form of tab-delimited tree
files (see 'ssu help tree-files'). Trees in these files store node ages in
years, so branch lengths are rounded to years, and terminal names are
rewritten into a canonical form (e.g., "GG_OTU_1" is stored as "Gg otu 1").

To use a tree in newick format (i.e., a tree in parenthetical format), use the
flag --newick. In this case a single tree is read, and it is stored as found
in the input, so branch lengths are kept without rounding, and terminal names
are kept as they are. The name of the tree is the name of the project tree
file without extension. A project uses either a newick tree, or a tree collection, so
adding a newick tree replaces the trees of the project, and vice versa.

By default the trees will be stored in the tree file currently defined for the
project. If the project does not have a tree file, a new one will be created
with the name 'trees.tab' (or 'tree.nwk' for newick trees). A different tree
file name can be defined using the flag --file, or -f. If this flag is used,
and there is tree file already defined, then a new file with that name will be
created, and used as the tree file for the project (previously defined trees
will be kept, except when changing the tree format).
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeFile string
var newickFlag bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeFile, "file", "", "")
	c.Flags().StringVar(&treeFile, "f", "", "")
	c.Flags().BoolVar(&newickFlag, "newick", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	pFile := args[0]
	p, err := openProject(pFile)
	if err != nil {
		return err
	}

	args = args[1:]
	if newickFlag {
		return addNewick(c, p, args)
	}

	var tc *timetree.Collection
	if tf := p.Path(project.Trees); tf != "" {
		tc, err = p.Trees()
		if err != nil {
			return fmt.Errorf("on project %q: %v", pFile, err)
		}
	}
	if tc == nil {
		tc = timetree.NewCollection()
	}

	if len(args) == 0 {
		args = append(args, "-")
	}
	for _, a := range args {
		fn := a
		if fn == "-" {
			fn = ""
			a = "stdin"
		}
		nc, err := readTreeFile(c.Stdin(), fn)
		if err != nil {
			return err
		}

		for _, tn := range nc.Names() {
			t := nc.Tree(tn)
			// only valid trees can be stored
			if _, err := phylo.FromTimeTree(t); err != nil {
				return fmt.Errorf("when adding tree %q from %q: %v", tn, a, err)
			}
			if err := tc.Add(t); err != nil {
				return fmt.Errorf("when adding trees from %q: %v", a, err)
			}
		}
	}

	if treeFile == "" {
		treeFile = p.Path(project.Trees)
		if treeFile == "" {
			treeFile = "trees.tab"
		}
	}

	if err := writeTrees(tc); err != nil {
		return err
	}
	p.Add(project.Trees, treeFile)
	if err := p.Write(); err != nil {
		return err
	}

	return nil
}

func openProject(name string) (*project.Project, error) {
	p, err := project.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		p := project.New()
		p.SetName(name)
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open project %q: %v", name, err)
	}
	return p, nil
}

func readTreeFile(r io.Reader, name string) (*timetree.Collection, error) {
	if name != "" {
		f, err := project.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		name = "stdin"
	}

	c, err := timetree.ReadTSV(r)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return c, nil
}

func writeTrees(tc *timetree.Collection) (err error) {
	f, err := os.Create(treeFile)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := tc.TSV(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", treeFile, err)
	}
	return nil
}

// AddNewick validates a newick tree
// and stores it in the tree file of the project.
func addNewick(c *command.Command, p *project.Project, args []string) error {
	if len(args) > 1 {
		return c.UsageError("only one newick tree file is allowed")
	}
	r := c.Stdin()
	name := "stdin"
	if len(args) == 1 && args[0] != "-" {
		name = args[0]
		f, err := project.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("while reading file %q: %v", name, err)
	}
	// only valid trees can be stored
	if _, err := phylo.ReadNewick(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("while reading file %q: %v", name, err)
	}

	if treeFile == "" {
		treeFile = p.Path(project.Newick)
		if treeFile == "" {
			treeFile = "tree.nwk"
		}
	}
	if err := os.WriteFile(treeFile, data, 0o644); err != nil {
		return err
	}
	p.Add(project.Newick, treeFile)
	return p.Write()
}
