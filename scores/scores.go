// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package scores provides per-node hypothesis test results
// (p-values and effect directions)
// for the nodes of a tree.
package scores

import (
	"math"
	"slices"
)

// A Row is the test result of a single tree node:
// a p-value and the direction of the effect.
// A NaN p-value means that the node was not tested,
// never that it was tested and found non-significant.
type Row struct {
	Node int     // node ID in the tree
	P    float64 // p-value, NaN if untested
	Sign float64 // effect value, only its sign is used
}

// A Table is an ordered collection of test results
// for a single tested feature
// (for example, the test of a single gene
// over a shared tree).
// There is at most one row per tree node.
type Table struct {
	feature string
	rows    []Row
	node    map[int]int // node ID to row index
}

// NewTable creates a new empty table
// for the given feature.
func NewTable(feature string) *Table {
	return &Table{
		feature: feature,
		node:    make(map[int]int),
	}
}

// Add adds the test result of a node to a table.
// If the node already has a result,
// it will be replaced.
func (t *Table) Add(node int, p, sign float64) {
	if i, ok := t.node[node]; ok {
		t.rows[i] = Row{Node: node, P: p, Sign: sign}
		return
	}
	t.node[node] = len(t.rows)
	t.rows = append(t.rows, Row{Node: node, P: p, Sign: sign})
}

// Feature returns the name of the tested feature.
func (t *Table) Feature() string {
	return t.feature
}

// Len returns the number of rows in a table.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the i-th row of a table,
// in insertion order.
func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// RowOf returns the row index of a node,
// or -1 if the node has no result.
func (t *Table) RowOf(node int) int {
	i, ok := t.node[node]
	if !ok {
		return -1
	}
	return i
}

// Nodes returns the IDs of the nodes with results,
// sorted by ID.
func (t *Table) Nodes() []int {
	ns := make([]int, 0, len(t.node))
	for n := range t.node {
		ns = append(ns, n)
	}
	slices.Sort(ns)
	return ns
}

// Tested returns the set of nodes
// with a non-missing p-value.
func (t *Table) Tested() map[int]bool {
	tested := make(map[int]bool, len(t.rows))
	for _, r := range t.rows {
		if math.IsNaN(r.P) {
			continue
		}
		tested[r.Node] = true
	}
	return tested
}

// A Collection is a set of score tables
// indexed by feature name.
type Collection struct {
	features map[string]*Table
}

// NewCollection creates a new empty collection.
func NewCollection() *Collection {
	return &Collection{
		features: make(map[string]*Table),
	}
}

// Single creates a collection with a single feature,
// for analyses in which all rows
// belong to the same tested hypothesis set.
func Single(t *Table) *Collection {
	c := NewCollection()
	c.Add(t)
	return c
}

// Add adds a table to a collection.
// A table with the same feature name
// will be replaced.
func (c *Collection) Add(t *Table) {
	c.features[t.feature] = t
}

// Features returns the feature names in a collection,
// sorted by name.
func (c *Collection) Features() []string {
	fs := make([]string, 0, len(c.features))
	for f := range c.features {
		fs = append(fs, f)
	}
	slices.Sort(fs)
	return fs
}

// Table returns the table of the given feature,
// or nil if the feature is not in the collection.
func (c *Collection) Table(feature string) *Table {
	return c.features[feature]
}
