// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package add implements a command to add
// a data file to a TreeCut project.
package add

import (
	"errors"
	"fmt"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/treecut/project"
)

var Command = &command.Command{
	Usage: "add --set <dataset> <project-file> <data-file>",
	Short: "add a data file to a project",
	Long: `
Command add registers a data file in a TreeCut project, creating the project
file if it does not exist.

The first argument of the command is the name of the project file, and the
second argument is the path of the data file to be registered.

The flag --set is required and indicates the dataset stored in the data file.
Valid dataset types are:

	trees	   the trees under study
	scores	   the per-node test results
	candidates the candidate partitions of the trees

If the project already has a file for the dataset, it will be replaced.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var setFlag string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&setFlag, "set", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 2 {
		return c.UsageError("expecting project file and data file")
	}

	var set project.Dataset
	switch d := project.Dataset(setFlag); d {
	case project.Trees, project.Scores, project.Candidates:
		set = d
	case "":
		return c.UsageError("flag --set must be defined")
	default:
		return c.UsageError(fmt.Sprintf("unknown dataset %q", setFlag))
	}

	pFile := args[0]
	p, err := project.Read(pFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		p = project.New()
		p.SetName(pFile)
	}

	df := args[1]
	if _, err := os.Stat(df); err != nil {
		return err
	}
	p.Add(set, df)

	if err := p.Write(); err != nil {
		return err
	}
	return nil
}
