// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package prj implements a command to print
// the basic information of a project.
package prj

import (
	"fmt"
	"io"
	"math"

	"github.com/js-arias/command"
	"github.com/js-arias/ssu/project"
	"github.com/js-arias/ssu/stride"
)

var Command = &command.Command{
	Usage: "prj <project-file>",
	Short: "print information about a project",
	Long: `
Command prj reads a SSU project and prints the information of the different
project elements into the standard output.

The argument of the command is the name of the project file.
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	if p.TreeSet() != "" {
		if err := printTrees(c.Stdout(), p); err != nil {
			return err
		}
	}
	if p.Path(project.Table) != "" {
		if err := printTable(c.Stdout(), p); err != nil {
			return err
		}
	}

	prm, err := p.Params()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Stdout(), "Parameters:\n")
	if name := prm.Name(); name != "" {
		fmt.Fprintf(c.Stdout(), "\tfile: %s\n", name)
	}
	fmt.Fprintf(c.Stdout(), "\tmethod: %s\n", prm.Method())
	fmt.Fprintf(c.Stdout(), "\tvariance adjusted: %v\n", prm.Variance())
	fmt.Fprintf(c.Stdout(), "\n")

	return nil
}

func printTrees(w io.Writer, p *project.Project) error {
	ls, err := p.TreeNames()
	if err != nil {
		return err
	}

	set := p.TreeSet()
	fmt.Fprintf(w, "Trees:\n")
	fmt.Fprintf(w, "\tfile: %s\n", p.Path(set))
	fmt.Fprintf(w, "\tformat: %s\n", set)
	fmt.Fprintf(w, "\ttrees: %d\n", len(ls))
	for _, tn := range ls {
		t, err := p.Tree(tn)
		if err != nil {
			return err
		}
		min := math.MaxFloat64
		for n := 0; n < t.Len(); n++ {
			if n == t.Root() {
				continue
			}
			if l := t.Length(n); l < min {
				min = l
			}
		}
		if t.Len() == 1 {
			min = 0
		}
		fmt.Fprintf(w, "\t%s: terminals: %d, nodes: %d, length: %.6f, min branch: %.6f\n", tn, t.Leaves(), t.Len(), t.TotalLength(), min)
	}
	fmt.Fprintf(w, "\n")
	return nil
}

func printTable(w io.Writer, p *project.Project) error {
	tab, err := p.Table()
	if err != nil {
		return err
	}

	n := len(tab.Samples())
	fmt.Fprintf(w, "Feature table:\n")
	fmt.Fprintf(w, "\tfile: %s\n", p.Path(project.Table))
	fmt.Fprintf(w, "\tsamples: %d\n", n)
	fmt.Fprintf(w, "\tfeatures: %d\n", len(tab.Features()))
	fmt.Fprintf(w, "\tsample pairs: %d\n", stride.Pairs(n))
	fmt.Fprintf(w, "\n")
	return nil
}
