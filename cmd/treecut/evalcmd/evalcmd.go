// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package evalcmd implements a command to evaluate
// the candidate partitions of a TreeCut project
// and report the best resolution.
package evalcmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/js-arias/command"
	"github.com/js-arias/timetree"
	"github.com/js-arias/treecut/cut"
	"github.com/js-arias/treecut/multitest"
	"github.com/js-arias/treecut/project"
	"github.com/js-arias/treecut/scores"
)

var Command = &command.Command{
	Usage: `eval [--tree <tree-name>] [--method <method>]
	[--limit <value>] [--pseudo] [--multiple]
	[--nodecol <name>] [--pcol <name>] [--signcol <name>] [--featcol <name>]
	[-o|--output <prefix>] [--cpu <number>] <project-file>`,
	Short: "select the best resolution for the tests on a tree",
	Long: `
Command eval reads the tree, the score table, and the candidate partitions of
a TreeCut project, evaluates every candidate partition, and selects the one
with the most discoveries among the candidates that keep the false discovery
rate controlled at the leaf level of the tree.

The argument of the command is the name of the project file.

By default the first tree of the project is used. Use the flag --tree to
evaluate a different tree.

The flag --method sets the multiple testing correction; valid methods are
"bh" (Benjamini-Hochberg, the default), "by" (Benjamini-Yekutieli), "holm",
and "bonferroni". The flag --limit sets the target false discovery rate, by
default 0.05.

If the flag --pseudo is set, discoveries are counted on pseudo-leaves, the
deepest tested nodes of each feature, instead of the real leaves of the tree.

If the flag --multiple is set, the score table must assign each row to a
tested feature, and each feature is matched with its own candidate family.
The flags --nodecol, --pcol, --signcol, and --featcol set the column names of
the score table for the node IDs, the p-values, the effect signs, and the
feature names.

Two output files are written as TSV: one with the evaluation of every
candidate partition (suffix 'levels'), and one with the final test results on
the winning partition (suffix 'best'). The prefix of the output file names is
the name of the project file. To set a different prefix, use the flag
--output, or -o.

By default, all available CPUs will be used in the calculations. Set the flag
--cpu to use a different number of CPUs.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeName string
var methodFlag string
var limitFlag float64
var pseudoFlag bool
var multipleFlag bool
var nodeCol string
var pCol string
var signCol string
var featCol string
var output string
var numCPU int

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().StringVar(&methodFlag, "method", "", "")
	c.Flags().Float64Var(&limitFlag, "limit", 0.05, "")
	c.Flags().BoolVar(&pseudoFlag, "pseudo", false, "")
	c.Flags().BoolVar(&multipleFlag, "multiple", false, "")
	c.Flags().StringVar(&nodeCol, "nodecol", "", "")
	c.Flags().StringVar(&pCol, "pcol", "", "")
	c.Flags().StringVar(&signCol, "signcol", "", "")
	c.Flags().StringVar(&featCol, "featcol", "", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().IntVar(&numCPU, "cpu", runtime.GOMAXPROCS(0), "")
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
	st, err := pickTree(tc)
	if err != nil {
		return err
	}

	cols := scores.Columns{
		Node:    nodeCol,
		P:       pCol,
		Sign:    signCol,
		Feature: featCol,
	}
	data, err := p.Scores(cols, multipleFlag)
	if err != nil {
		return err
	}

	cands, err := p.Candidates()
	if err != nil {
		return err
	}

	method, err := multitest.Parse(methodFlag)
	if err != nil {
		return err
	}

	cut.SetCPU(numCPU)
	t := cut.NewTree(st)
	res, err := cut.Eval(t, data, cands, cut.Options{
		Method:     method,
		Limit:      limitFlag,
		PseudoLeaf: pseudoFlag,
	})
	if err != nil {
		return fmt.Errorf("on tree %q: %v", st.Name(), err)
	}

	if output == "" {
		output = args[0]
	}
	lf := fmt.Sprintf("%s-%s-levels.tab", output, st.Name())
	if err := writeLevels(lf, res); err != nil {
		return err
	}
	bf := fmt.Sprintf("%s-%s-best.tab", output, st.Name())
	if err := writeBest(bf, res); err != nil {
		return err
	}

	sig := 0
	for _, r := range res.Rows {
		if r.Significant {
			sig++
		}
	}
	fmt.Fprintf(c.Stdout(), "tree %q: best level %g: %d nodes, %d significant\n", st.Name(), res.T, len(res.Rows), sig)
	return nil
}

func pickTree(tc *timetree.Collection) (*timetree.Tree, error) {
	name := treeName
	if name == "" {
		ls := tc.Names()
		if len(ls) == 0 {
			return nil, fmt.Errorf("while reading trees: empty collection")
		}
		name = ls[0]
	}
	t := tc.Tree(name)
	if t == nil {
		return nil, fmt.Errorf("tree %q not in project", name)
	}
	return t, nil
}

func writeLevels(name string, res *cut.Result) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := res.LevelsTSV(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", name, err)
	}
	return nil
}

func writeBest(name string, res *cut.Result) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := res.TSV(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", name, err)
	}
	return nil
}
