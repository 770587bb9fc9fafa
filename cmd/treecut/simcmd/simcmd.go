// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package simcmd implements a command to write
// a simulated score table
// for the tree of a TreeCut project.
package simcmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/treecut/cut"
	"github.com/js-arias/treecut/project"
	"github.com/js-arias/treecut/scores"
	"github.com/js-arias/treecut/sim"
)

var Command = &command.Command{
	Usage: `sim [--tree <tree-name>] [--feature <name>]
	[--signal <node>,...] [--untested <node>,...]
	[--alpha <value>] [--seed <value>]
	[-o|--output <file>] <project-file>`,
	Short: "write a simulated score table",
	Long: `
Command sim reads a tree from a TreeCut project and writes a simulated score
table with one row per tree node, in the standard output.

The argument of the command is the name of the project file.

By default the first tree of the project is used. Use the flag --tree to
simulate over a different tree.

The flag --signal indicates the nodes with a true effect, as a comma
separated list of node IDs; their p-values are drawn from a Beta(alpha, 1)
distribution, concentrated near zero, with the shape set by the flag --alpha
(by default 0.05). Any other node gets a uniform p-value. The flag --untested
indicates nodes without test data, reported with a missing p-value.

The simulation is reproducible: the flag --seed sets the seed of the random
sources. Use the flag --output, or -o, to define an output file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeName string
var feature string
var signalFlag string
var untestedFlag string
var alphaFlag float64
var seedFlag int
var output string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().StringVar(&feature, "feature", "", "")
	c.Flags().StringVar(&signalFlag, "signal", "", "")
	c.Flags().StringVar(&untestedFlag, "untested", "", "")
	c.Flags().Float64Var(&alphaFlag, "alpha", 0.05, "")
	c.Flags().IntVar(&seedFlag, "seed", 1, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
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
	name := treeName
	if name == "" {
		ls := tc.Names()
		if len(ls) == 0 {
			return fmt.Errorf("while reading trees: empty collection")
		}
		name = ls[0]
	}
	st := tc.Tree(name)
	if st == nil {
		return fmt.Errorf("tree %q not in project", name)
	}

	signal, err := nodeList(signalFlag)
	if err != nil {
		return fmt.Errorf("flag --signal: %v", err)
	}
	untested, err := nodeList(untestedFlag)
	if err != nil {
		return fmt.Errorf("flag --untested: %v", err)
	}

	t := cut.NewTree(st)
	for _, n := range append(signal, untested...) {
		if !t.Has(n) {
			return fmt.Errorf("on tree %q: %w: node %d", name, cut.ErrInvalidNode, n)
		}
	}

	tab := sim.Scores(t, sim.Param{
		Feature:  feature,
		Signal:   signal,
		Alpha:    alphaFlag,
		Untested: untested,
		Seed:     uint64(seedFlag),
	})

	w := c.Stdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := scores.Single(tab).TSV(w); err != nil {
		return fmt.Errorf("while writing simulated scores: %v", err)
	}
	return nil
}

func nodeList(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var ns []int
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}
	return ns, nil
}
