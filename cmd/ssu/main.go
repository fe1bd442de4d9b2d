// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// SSU is a tool to calculate phylogenetic beta-diversity
// using Strided State UniFrac.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/ssu/cmd/ssu/dist"
	"github.com/js-arias/ssu/cmd/ssu/paramcmd"
	"github.com/js-arias/ssu/cmd/ssu/prj"
	"github.com/js-arias/ssu/cmd/ssu/summary"
	"github.com/js-arias/ssu/cmd/ssu/tablecmd"
	"github.com/js-arias/ssu/cmd/ssu/tree"
)

var app = &command.Command{
	Usage: "ssu <command> [<argument>...]",
	Short: "a tool for phylogenetic beta-diversity",
}

func init() {
	app.Add(dist.Command)
	app.Add(paramcmd.Command)
	app.Add(prj.Command)
	app.Add(summary.Command)
	app.Add(tablecmd.Command)
	app.Add(tree.Command)
}

func main() {
	app.Main()
}
