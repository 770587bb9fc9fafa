// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"fmt"
	"os"

	"github.com/js-arias/timetree"
	"github.com/js-arias/treecut/candidate"
	"github.com/js-arias/treecut/scores"
)

// Candidates reads a candidate partition file
// as defined in a project.
func (p *Project) Candidates() (*candidate.Collection, error) {
	name := p.Path(Candidates)
	if name == "" {
		return nil, fmt.Errorf("candidates not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := candidate.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("when reading %q: %v", name, err)
	}
	return c, nil
}

// Scores reads a score table file
// as defined in a project.
// If multiple is true,
// the file must assign each row
// to a tested feature.
func (p *Project) Scores(cols scores.Columns, multiple bool) (*scores.Collection, error) {
	name := p.Path(Scores)
	if name == "" {
		return nil, fmt.Errorf("scores not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := scores.ReadTSV(f, cols, multiple)
	if err != nil {
		return nil, fmt.Errorf("when reading %q: %v", name, err)
	}
	return c, nil
}

// Trees reads a tree collection file
// as defined in a project.
func (p *Project) Trees() (*timetree.Collection, error) {
	name := p.Path(Trees)
	if name == "" {
		return nil, fmt.Errorf("trees not defined in project %q", p.name)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := timetree.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return c, nil
}
