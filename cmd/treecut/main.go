// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// TreeCut is a tool to select the resolution
// to interpret hypothesis tests
// made on the nodes of a tree.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/treecut/cmd/treecut/add"
	"github.com/js-arias/treecut/cmd/treecut/evalcmd"
	"github.com/js-arias/treecut/cmd/treecut/nodes"
	"github.com/js-arias/treecut/cmd/treecut/simcmd"
)

var app = &command.Command{
	Usage: "treecut <command> [<argument>...]",
	Short: "a tool to select the resolution of tests on a tree",
}

func init() {
	app.Add(add.Command)
	app.Add(evalcmd.Command)
	app.Add(nodes.Command)
	app.Add(simcmd.Command)
}

func main() {
	app.Main()
}
