// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package samples implements a command to print
// the samples of the feature table of a SSU project.
package samples

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/js-arias/command"
	"github.com/js-arias/ssu/project"
	"github.com/js-arias/ssu/table"
	"gonum.org/v1/gonum/floats"
)

var Command = &command.Command{
	Usage: "samples [--tree <tree-name>] <project-file>",
	Short: "print the samples of a feature table",
	Long: `
Command samples reads the feature table of a SSU project, and prints the
samples in the standard output, as a tab-delimited table with the total
abundance of each sample.

The argument of the command is the name of the project file.

If the project has a tree, it will also print the abundance of each sample
that is found in the terminals of the tree. If the project has more than one
tree, use the flag --tree to select the tree.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeName string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeName, "tree", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	tab, err := p.Table()
	if err != nil {
		return err
	}

	var inTree map[string]float64
	if p.TreeSet() != "" {
		t, err := p.Tree(treeName)
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewTextHandler(c.Stderr(), nil))
		samples, err := table.Align(tab, t, table.Param{
			Logger:    logger,
			DropEmpty: true,
		})
		if err != nil {
			return err
		}
		inTree = make(map[string]float64, len(samples))
		for _, s := range samples {
			inTree[s.Label] = s.Total
		}
	}

	features := tab.Features()
	values := make([]float64, len(features))
	fmt.Fprintf(c.Stdout(), "sample\ttotal")
	if inTree != nil {
		fmt.Fprintf(c.Stdout(), "\tin-tree")
	}
	fmt.Fprintf(c.Stdout(), "\n")
	for _, s := range tab.Samples() {
		for i, f := range features {
			values[i] = tab.Value(s, f)
		}
		fmt.Fprintf(c.Stdout(), "%s\t%s", s, strconv.FormatFloat(floats.Sum(values), 'g', -1, 64))
		if inTree != nil {
			fmt.Fprintf(c.Stdout(), "\t%s", strconv.FormatFloat(inTree[s], 'g', -1, 64))
		}
		fmt.Fprintf(c.Stdout(), "\n")
	}
	return nil
}
