// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package nodes implements a command to print
// the nodes of the trees of a TreeCut project.
package nodes

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/treecut/cut"
	"github.com/js-arias/treecut/project"
)

var Command = &command.Command{
	Usage: "nodes [--tree <tree-name>] <project-file>",
	Short: "print the nodes of a tree",
	Long: `
Command nodes reads the trees from a TreeCut project and prints the ID, the
parent, the leaf status, and the taxon name (for the leaves) of every node,
in the standard output.

The argument of the command is the name of the project file.

By default the nodes of all trees will be printed. If the flag --tree is set,
only the nodes of the indicated tree will be printed.
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

	tc, err := p.Trees()
	if err != nil {
		return err
	}

	var ls []string
	if treeName != "" {
		ls = append(ls, treeName)
	} else {
		ls = tc.Names()
	}

	for _, tn := range ls {
		st := tc.Tree(tn)
		if st == nil {
			continue
		}
		t := cut.NewTree(st)
		for _, n := range t.Nodes() {
			parent, err := t.Parent(n)
			if err != nil {
				return err
			}
			leaf := "-"
			taxon := ""
			if t.IsLeaf(n) {
				leaf = "leaf"
				taxon = t.Taxon(n)
			}
			fmt.Fprintf(c.Stdout(), "%s\t%d\t%d\t%s\t%s\n", tn, n, parent, leaf, taxon)
		}
	}
	return nil
}
