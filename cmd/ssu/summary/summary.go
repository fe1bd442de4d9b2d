// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package summary implements a command to print
// a summary of a distance matrix.
package summary

import (
	"fmt"
	"slices"

	"github.com/js-arias/command"
	"github.com/js-arias/ssu/distmat"
	"github.com/js-arias/ssu/project"
)

var Command = &command.Command{
	Usage: "summary [--sort] <distance-file>",
	Short: "print a summary of a distance matrix",
	Long: `
Command summary reads a distance matrix file, and prints the number of sample
pairs, and the minimum, maximum, mean, and standard deviation of the
distances.

The argument of the command is the name of the distance matrix file (see
'ssu help distance-files'). The file can be compressed with gzip.

If the flag --sort is set, the matrix will be printed in the standard output
with the samples sorted by name.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var sortFlag bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&sortFlag, "sort", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting distance matrix file")
	}

	m, err := readMatrix(args[0])
	if err != nil {
		return err
	}

	if sortFlag {
		labels := m.Labels()
		slices.Sort(labels)
		sm, err := m.Permute(labels)
		if err != nil {
			return err
		}
		if err := sm.TSV(c.Stdout()); err != nil {
			return err
		}
		return nil
	}

	fmt.Fprint(c.Stdout(), m.Summary())
	return nil
}

func readMatrix(name string) (*distmat.Matrix, error) {
	f, err := project.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := distmat.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return m, nil
}
