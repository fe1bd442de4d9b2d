// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package add implements a command to add a feature table
// to a SSU project.
package add

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/ssu/project"
	"github.com/js-arias/ssu/table"
	"github.com/klauspost/compress/gzip"
)

var Command = &command.Command{
	Usage: `add [-f|--file <table-file>] [--gzip]
	<project-file> <table-file>`,
	Short: "add a feature table to a SSU project",
	Long: `
Command add reads a feature table in the classic BIOM tab-delimited format,
and adds it to a SSU project.

The first argument of the command is the name of the project file. If no
project file exists, a new project will be created.

The second argument is the table file. If no file is given, the table will be
read from the standard input. The file can be compressed with gzip.

By default, the table file is added to the project as is. If the table is read
from the standard input, or if the flag --file, or -f, is defined, the table
will be written in a new file, and that file will be added to the project. If
the flag --gzip is set, the new file will be compressed with gzip.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var tableFile string
var useGzip bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&tableFile, "file", "", "")
	c.Flags().StringVar(&tableFile, "f", "", "")
	c.Flags().BoolVar(&useGzip, "gzip", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	p, err := openProject(args[0])
	if err != nil {
		return err
	}

	in := "-"
	if len(args) > 1 {
		in = args[1]
	}
	tab, err := readTable(c.Stdin(), in)
	if err != nil {
		return err
	}

	switch {
	case tableFile != "":
		if err := writeTable(tab); err != nil {
			return err
		}
	case in == "-":
		tableFile = "table.tab"
		if useGzip {
			tableFile += ".gz"
		}
		if err := writeTable(tab); err != nil {
			return err
		}
	default:
		tableFile = in
	}

	p.Add(project.Table, tableFile)
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

func readTable(r io.Reader, name string) (*table.Table, error) {
	if name != "-" {
		f, err := project.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		name = "stdin"
	}

	tab, err := table.ReadTSV(r)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return tab, nil
}

func writeTable(tab *table.Table) (err error) {
	f, err := os.Create(tableFile)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if !useGzip {
		if err := tab.TSV(f); err != nil {
			return fmt.Errorf("while writing to %q: %v", tableFile, err)
		}
		return nil
	}

	z := gzip.NewWriter(f)
	if err := tab.TSV(z); err != nil {
		return fmt.Errorf("while writing to %q: %v", tableFile, err)
	}
	if err := z.Close(); err != nil {
		return fmt.Errorf("while writing to %q: %v", tableFile, err)
	}
	return nil
}
