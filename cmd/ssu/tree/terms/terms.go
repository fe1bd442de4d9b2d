// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package terms implements a command to print
// the list of the terminals in the trees of a SSU project.
package terms

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/js-arias/command"
	"github.com/js-arias/ssu/phylo"
	"github.com/js-arias/ssu/project"
	"github.com/js-arias/ssu/table"
)

var Command = &command.Command{
	Usage: "terms [--tree <tree-name>] [--missing] <project-file>",
	Short: "print a list of tree terminals",
	Long: `
Command terms reads the trees from a SSU project and print the name of the
terminals in the standard output.

The argument of the command is the name of the project file.

By default all terminals will be printed. If the flag --tree is set, only the
terminals of the indicated tree will be printed.

If the flag --missing is set, it will print the features of the project table
that are not found in the terminals of the trees. Features are matched with
the same rules used for distance calculations (see 'ssu help table-files').
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeName string
var missing bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().BoolVar(&missing, "missing", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	var ls []string
	if treeName != "" {
		ls = append(ls, treeName)
	} else {
		ls, err = p.TreeNames()
		if err != nil {
			return err
		}
	}

	var trees []*phylo.Tree
	for _, tn := range ls {
		t, err := p.Tree(tn)
		if errors.Is(err, phylo.ErrNoTree) {
			continue
		}
		if err != nil {
			return err
		}
		trees = append(trees, t)
	}

	if missing {
		return printMissing(c.Stdout(), p, trees)
	}

	terms := make(map[string]bool)
	for _, t := range trees {
		for _, tax := range t.Names() {
			terms[tax] = true
		}
	}

	termList := make([]string, 0, len(terms))
	for tax := range terms {
		termList = append(termList, tax)
	}
	slices.Sort(termList)
	for _, term := range termList {
		fmt.Fprintf(c.Stdout(), "%s\n", term)
	}
	return nil
}

// PrintMissing prints the features of the table
// without a terminal in any of the trees,
// using the same matching rules used for distances.
func printMissing(w io.Writer, p *project.Project, trees []*phylo.Tree) error {
	tab, err := p.Table()
	if err != nil {
		return err
	}

	count := make(map[string]int)
	for _, t := range trees {
		for _, f := range table.Missing(tab, t) {
			count[f]++
		}
	}
	for _, f := range tab.Features() {
		if count[f] == len(trees) {
			fmt.Fprintf(w, "%s\n", f)
		}
	}
	return nil
}
