// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package paramcmd implements a command to manage
// the parameters of a distance calculation.
package paramcmd

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/ssu/param"
	"github.com/js-arias/ssu/project"
	"github.com/js-arias/ssu/unifrac"
)

var Command = &command.Command{
	Usage: `param [--add <param-file>] [--file <file-name>]
	[--method <name>] [--alpha <value>]
	[--vaw <bool>] [--drop-empty <bool>] [--strict <bool>]
	<project-file>`,
	Short: "manage distance parameters",
	Long: `
Command param manages the parameters of the UniFrac distance defined for a SSU
project.

The argument of the command is the name of the project file.

By default, the command will print the currently defined parameters.

If the flag --add is defined, it will use the indicated file for the
parameters.

By default, any change on the parameters will be stored in the current
parameters file. If the project does not have a parameters file, a new one
will be created with the name 'param.tab'. Use the flag --file to define a new
parameters file.

To set the UniFrac method use the flag --method. Valid values are:

	- unweighted             only the presence of the features is used.
	- weighted_unnormalized  the abundance of the features is used, and the
	                         distance is not normalized.
	- weighted_normalized    the abundance of the features is used, and the
	                         distance is normalized to [0, 1].
	- generalized            the generalized UniFrac, the flag --alpha sets
	                         the exponent.

The default method for a project is unweighted, with an alpha value of 1.

The flag --vaw, with a value of true or false, sets whether variance adjusted
weights are used. The flag --drop-empty sets whether samples without abundance
in the tree are ignored. The flag --strict sets whether trees with zero length
branches are rejected.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var addFile string
var paramFile string
var methodName string
var alphaFlag float64
var vawFlag string
var dropFlag string
var strictFlag string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&addFile, "add", "", "")
	c.Flags().StringVar(&paramFile, "file", "", "")
	c.Flags().StringVar(&methodName, "method", "", "")
	c.Flags().Float64Var(&alphaFlag, "alpha", math.NaN(), "")
	c.Flags().StringVar(&vawFlag, "vaw", "", "")
	c.Flags().StringVar(&dropFlag, "drop-empty", "", "")
	c.Flags().StringVar(&strictFlag, "strict", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	if addFile != "" {
		if _, err := param.Read(addFile); err != nil {
			return err
		}
		p.Add(project.Params, addFile)
		if err := p.Write(); err != nil {
			return err
		}
		return nil
	}

	prm, err := p.Params()
	if err != nil {
		return err
	}
	if paramFile != "" {
		prm.SetName(paramFile)
	}

	ed := false
	if methodName != "" {
		if err := prm.SetMethod(methodName); err != nil {
			return fmt.Errorf("flag --method: %v (valid methods: %s)", err, strings.Join(unifrac.Methods(), ", "))
		}
		ed = true
	}
	if !math.IsNaN(alphaFlag) {
		if err := prm.SetAlpha(alphaFlag); err != nil {
			return fmt.Errorf("flag --alpha: %v", err)
		}
		ed = true
	}
	boolFlags := []struct {
		name  string
		value string
		set   func(bool)
	}{
		{"vaw", vawFlag, prm.SetVariance},
		{"drop-empty", dropFlag, prm.SetDropEmpty},
		{"strict", strictFlag, prm.SetStrict},
	}
	for _, bf := range boolFlags {
		if bf.value == "" {
			continue
		}
		v, err := strconv.ParseBool(bf.value)
		if err != nil {
			return fmt.Errorf("flag --%s: %v", bf.name, err)
		}
		bf.set(v)
		ed = true
	}

	if prm.Name() == "" {
		if !ed {
			printParams(c.Stdout(), prm)
			return nil
		}
		prm.SetName("param.tab")
	}

	if p.Path(project.Params) != prm.Name() {
		if err := prm.Write(); err != nil {
			return err
		}
		p.Add(project.Params, prm.Name())
		if err := p.Write(); err != nil {
			return err
		}
		return nil
	}
	if ed {
		if err := prm.Write(); err != nil {
			return err
		}
		return nil
	}

	printParams(c.Stdout(), prm)
	return nil
}

func printParams(w io.Writer, prm *param.P) {
	name := prm.Name()
	if name == "" {
		name = "(defaults)"
	}
	fmt.Fprintf(w, "file:       %s\n", name)
	fmt.Fprintf(w, "method:     %s\n", prm.Method())
	if prm.Method() == unifrac.Generalized {
		fmt.Fprintf(w, "alpha:      %.6g\n", prm.Alpha())
	}
	if prm.Variance() {
		fmt.Fprintf(w, "variance:   adjusted\n")
	}
	if prm.DropEmpty() {
		fmt.Fprintf(w, "drop-empty: true\n")
	}
	if prm.Strict() {
		fmt.Fprintf(w, "strict:     true\n")
	}
}
