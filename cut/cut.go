// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package cut implements the selection
// of the best resolution
// to interpret hypothesis tests
// made on the nodes of a tree.
//
// Given per-node test results,
// and a family of candidate partitions of the tree
// keyed by a tuning parameter,
// it picks the partition with the most discoveries
// among the partitions that keep
// the false discovery rate controlled
// at the leaf level of the tree.
package cut

import (
	"errors"
	"fmt"

	"github.com/js-arias/timetree"
)

// ErrInvalidNode is the error produced
// when a node ID is not part of the tree under study.
var ErrInvalidNode = errors.New("node not in tree")

// A Tree is a read-only view of a time tree
// used for the resolution analysis.
// It adds descendant and root-path queries
// over the source tree.
type Tree struct {
	t *timetree.Tree

	nodes []int
	ids   map[int]bool
	paths [][]int // per leaf, from the leaf up to the root
}

// NewTree creates a new tree
// from the indicated source tree.
func NewTree(t *timetree.Tree) *Tree {
	nt := &Tree{
		t:     t,
		nodes: t.Nodes(),
		ids:   make(map[int]bool, len(t.Nodes())),
	}
	for _, n := range nt.nodes {
		nt.ids[n] = true
	}

	for _, n := range nt.nodes {
		if !t.IsTerm(n) {
			continue
		}
		path := []int{n}
		for id := n; !t.IsRoot(id); {
			id = t.Parent(id)
			path = append(path, id)
		}
		nt.paths = append(nt.paths, path)
	}
	return nt
}

// Name returns the name of the tree.
func (t *Tree) Name() string {
	return t.t.Name()
}

// Nodes returns the IDs of all the nodes of the tree,
// sorted by ID.
func (t *Tree) Nodes() []int {
	return t.nodes
}

// Has returns true if the given node
// is part of the tree.
func (t *Tree) Has(id int) bool {
	return t.ids[id]
}

// IsLeaf returns true if the given node
// is a leaf of the tree.
func (t *Tree) IsLeaf(id int) bool {
	if !t.ids[id] {
		return false
	}
	return t.t.IsTerm(id)
}

// Leaves returns the IDs of the leaves of the tree,
// sorted by ID.
func (t *Tree) Leaves() []int {
	var ls []int
	for _, n := range t.nodes {
		if t.t.IsTerm(n) {
			ls = append(ls, n)
		}
	}
	return ls
}

// Root returns the ID of the root of the tree.
func (t *Tree) Root() int {
	return t.t.Root()
}

// Parent returns the ID of the parent of a node,
// or -1 for the root.
func (t *Tree) Parent(id int) (int, error) {
	if !t.ids[id] {
		return -1, fmt.Errorf("%w: node %d", ErrInvalidNode, id)
	}
	if t.t.IsRoot(id) {
		return -1, nil
	}
	return t.t.Parent(id), nil
}

// Taxon returns the taxon name of a node,
// if the node is a leaf.
func (t *Tree) Taxon(id int) string {
	if !t.ids[id] {
		return ""
	}
	return t.t.Taxon(id)
}

// Paths returns the root-to-leaf paths of the tree,
// one per leaf,
// ordered from the leaf up to the root.
// The returned paths are shared
// and should not be modified.
func (t *Tree) Paths() [][]int {
	return t.paths
}

// Descendants returns the descendants of a node,
// including the node itself unless self is false.
// If leavesOnly is true,
// only leaves will be returned.
func (t *Tree) Descendants(id int, leavesOnly, self bool) ([]int, error) {
	if !t.ids[id] {
		return nil, fmt.Errorf("%w: node %d", ErrInvalidNode, id)
	}

	var ds []int
	t.walkDesc(id, func(n int) {
		if n == id && !self {
			return
		}
		if leavesOnly && !t.t.IsTerm(n) {
			return
		}
		ds = append(ds, n)
	})
	return ds, nil
}

func (t *Tree) walkDesc(id int, fn func(n int)) {
	fn(id)
	for _, c := range t.t.Children(id) {
		t.walkDesc(c, fn)
	}
}

// LeafCounts returns, per node,
// the number of members of the given leaf set
// in the subtree of the node,
// the node itself included.
// A nil set selects the real leaves of the tree.
func (t *Tree) LeafCounts(leaves map[int]bool) map[int]int {
	counts := make(map[int]int, len(t.nodes))
	t.countLeaves(t.t.Root(), leaves, counts)
	return counts
}

func (t *Tree) countLeaves(id int, leaves map[int]bool, counts map[int]int) int {
	n := 0
	if leaves == nil {
		if t.t.IsTerm(id) {
			n = 1
		}
	} else if leaves[id] {
		n = 1
	}
	for _, c := range t.t.Children(id) {
		n += t.countLeaves(c, leaves, counts)
	}
	counts[id] = n
	return n
}
