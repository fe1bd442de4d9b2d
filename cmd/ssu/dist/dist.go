// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package dist implements a command to calculate
// the UniFrac distances between the samples
// of a SSU project.
package dist

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/js-arias/command"
	"github.com/js-arias/ssu/distmat"
	"github.com/js-arias/ssu/param"
	"github.com/js-arias/ssu/phylo"
	"github.com/js-arias/ssu/project"
	"github.com/js-arias/ssu/unifrac"
	"github.com/klauspost/compress/gzip"
)

var Command = &command.Command{
	Usage: `dist [--tree <tree-name>]
	[--method <name>] [--alpha <value>] [--vaw]
	[--drop-empty] [--strict]
	[-o|--output <file>] [--summary]
	[--cpu <number>] [--log <level>]
	<project-file>`,
	Short: "calculate UniFrac distances",
	Long: `
Command dist reads a SSU project, and calculates the UniFrac distance between
each pair of samples of the feature table, using the Strided State UniFrac
algorithm.

The argument of the command is the name of the project file. The project must
have a tree and a feature table.

If the project has more than one tree, the flag --tree must be used to select
the tree used in the calculation.

By default, the parameters of the distance are taken from the parameters file
of the project (see 'ssu help param-files'). Several flags can be used to
override those values. The flag --method sets the UniFrac method (valid values
are "unweighted", "weighted_unnormalized", "weighted_normalized", and
"generalized"). The flag --alpha sets the exponent of the generalized UniFrac.
The flag --vaw enables variance adjusted weights. The flag --drop-empty
ignores samples without abundance in the tree, instead of returning an error.
The flag --strict rejects trees with zero length branches.

By default, the distance matrix is printed in the standard output. Use the
flag --output, or -o, to define an output file. If the file name ends with
".gz" the file will be compressed with gzip. If the flag --summary is defined,
a summary of the distances will be printed in the standard error.

By default, all available CPUs will be used in the processing. Set --cpu flag
to use a different number of CPUs. The results do not depend on the number of
CPUs.

Warnings (for example, features not found in the tree) are printed in the
standard error. Use the flag --log to set the logging level. Valid values are
"debug", "info", "warn", and "error". Default is "warn".
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeName string
var methodName string
var alphaFlag float64
var vawFlag bool
var dropEmpty bool
var strictFlag bool
var output string
var summary bool
var numCPU int
var logLevel string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().StringVar(&methodName, "method", "", "")
	c.Flags().Float64Var(&alphaFlag, "alpha", math.NaN(), "")
	c.Flags().BoolVar(&vawFlag, "vaw", false, "")
	c.Flags().BoolVar(&dropEmpty, "drop-empty", false, "")
	c.Flags().BoolVar(&strictFlag, "strict", false, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().BoolVar(&summary, "summary", false, "")
	c.Flags().IntVar(&numCPU, "cpu", runtime.NumCPU(), "")
	c.Flags().StringVar(&logLevel, "log", "warn", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return c.UsageError(fmt.Sprintf("flag --log: %v", err))
	}
	logger := slog.New(slog.NewTextHandler(c.Stderr(), &slog.HandlerOptions{Level: level}))

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	prm, err := p.Params()
	if err != nil {
		return err
	}
	if err := setParams(prm); err != nil {
		return c.UsageError(err.Error())
	}

	if p.TreeSet() == "" {
		msg := fmt.Sprintf("tree file not defined in project %q", args[0])
		return c.UsageError(msg)
	}
	if p.Path(project.Table) == "" {
		msg := fmt.Sprintf("feature table not defined in project %q", args[0])
		return c.UsageError(msg)
	}

	var opts []phylo.BuildOption
	if prm.Strict() {
		opts = append(opts, phylo.StrictLengths())
	}
	t, err := p.Tree(treeName, opts...)
	if err != nil {
		return err
	}
	tab, err := p.Table()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	m, err := unifrac.Run(ctx, t, tab, prm.Options(numCPU, logger))
	if err != nil {
		return err
	}
	logger.Info("distances calculated",
		"samples", m.Len(),
		"method", prm.Method().String(),
		"elapsed", time.Since(start),
	)

	if err := writeMatrix(c.Stdout(), m, prm, args[0]); err != nil {
		return err
	}
	if summary {
		fmt.Fprint(c.Stderr(), m.Summary())
	}
	return nil
}

func setParams(prm *param.P) error {
	if methodName != "" {
		if err := prm.SetMethod(methodName); err != nil {
			return fmt.Errorf("flag --method: %v (valid methods: %s)", err, strings.Join(unifrac.Methods(), ", "))
		}
	}
	if !math.IsNaN(alphaFlag) {
		if err := prm.SetAlpha(alphaFlag); err != nil {
			return fmt.Errorf("flag --alpha: %v", err)
		}
	}
	if vawFlag {
		prm.SetVariance(true)
	}
	if dropEmpty {
		prm.SetDropEmpty(true)
	}
	if strictFlag {
		prm.SetStrict(true)
	}
	return nil
}

func writeMatrix(w io.Writer, m *distmat.Matrix, prm *param.P, pName string) (err error) {
	if output != "" {
		var f *os.File
		f, err = os.Create(output)
		if err != nil {
			return err
		}
		defer func() {
			e := f.Close()
			if e != nil && err == nil {
				err = e
			}
		}()
		w = f

		if strings.HasSuffix(strings.ToLower(output), ".gz") {
			z := gzip.NewWriter(f)
			defer func() {
				e := z.Close()
				if e != nil && err == nil {
					err = e
				}
			}()
			w = z
		}
	} else {
		output = "stdout"
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# unifrac distances\n")
	fmt.Fprintf(bw, "# project: %s\n", pName)
	fmt.Fprintf(bw, "# method: %s\n", prm.Method())
	if prm.Method() == unifrac.Generalized {
		fmt.Fprintf(bw, "# alpha: %g\n", prm.Alpha())
	}
	if prm.Variance() {
		fmt.Fprintf(bw, "# variance adjusted\n")
	}
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	if err := m.TSV(bw); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	return nil
}
