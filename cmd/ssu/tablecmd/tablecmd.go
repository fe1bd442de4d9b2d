// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tablecmd is a metapackage for commands
// that dealt with feature tables.
package tablecmd

import (
	"github.com/js-arias/command"
	"github.com/js-arias/ssu/cmd/ssu/tablecmd/add"
	"github.com/js-arias/ssu/cmd/ssu/tablecmd/samples"
)

var Command = &command.Command{
	Usage: "table <command> [<argument>...]",
	Short: "commands for feature tables",
}

func init() {
	Command.Add(add.Command)
	Command.Add(samples.Command)
}
