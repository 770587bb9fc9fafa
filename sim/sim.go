// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sim implements simulated score tables
// over a tree,
// for worked examples
// and for testing the resolution selection.
package sim

import (
	"math"

	"github.com/js-arias/treecut/cut"
	"github.com/js-arias/treecut/scores"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Param is a collection of parameters
// for a simulation.
type Param struct {
	// Name of the simulated feature.
	Feature string

	// Nodes with a true effect.
	// Their p-values are drawn
	// from a Beta(Alpha, 1) distribution,
	// concentrated near zero.
	Signal []int

	// Shape of the signal distribution,
	// in (0, 1).
	// By default 0.05.
	Alpha float64

	// Nodes without test data,
	// reported with a missing p-value.
	Untested []int

	// Seed for the random sources.
	Seed uint64
}

// Scores returns a simulated score table
// with one row per tree node:
// signal nodes get small p-values
// and a shared direction of effect,
// every other node gets a uniform p-value
// and a random direction.
func Scores(t *cut.Tree, p Param) *scores.Table {
	if p.Alpha <= 0 || p.Alpha >= 1 {
		p.Alpha = 0.05
	}
	src := rand.NewSource(p.Seed)
	signal := distuv.Beta{Alpha: p.Alpha, Beta: 1, Src: src}
	noise := distuv.Uniform{Min: 0, Max: 1, Src: src}
	coin := distuv.Bernoulli{P: 0.5, Src: src}

	isSignal := make(map[int]bool, len(p.Signal))
	for _, n := range p.Signal {
		isSignal[n] = true
	}
	skip := make(map[int]bool, len(p.Untested))
	for _, n := range p.Untested {
		skip[n] = true
	}

	// signal effects share a direction
	dir := 2*coin.Rand() - 1

	tab := scores.NewTable(p.Feature)
	for _, n := range t.Nodes() {
		if skip[n] {
			tab.Add(n, math.NaN(), 0)
			continue
		}
		if isSignal[n] {
			tab.Add(n, signal.Rand(), dir)
			continue
		}
		tab.Add(n, noise.Rand(), 2*coin.Rand()-1)
	}
	return tab
}
