// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package candidate provides families of candidate partitions
// of a tree,
// each partition a set of nodes
// representing a cut of the tree at a given resolution,
// and keyed by the value of a tuning parameter.
package candidate

import (
	"errors"
	"slices"
)

// ErrLevelKeys is the error produced
// when candidate families that should be evaluated jointly
// do not share the same set of tuning values.
var ErrLevelKeys = errors.New("candidate families with different level keys")

// A Family is an ordered mapping
// from tuning values to candidate partitions
// for a single feature.
// Larger tuning values are expected to produce
// coarser partitions.
type Family struct {
	feature string
	levels  map[float64][]int
}

// New creates a new empty family
// for the given feature.
func New(feature string) *Family {
	return &Family{
		feature: feature,
		levels:  make(map[float64][]int),
	}
}

// Add adds the nodes of a partition
// at the given tuning value.
// Repeated nodes are stored only once.
func (f *Family) Add(level float64, nodes ...int) {
	ns := f.levels[level]
	for _, n := range nodes {
		if slices.Contains(ns, n) {
			continue
		}
		ns = append(ns, n)
	}
	slices.Sort(ns)
	f.levels[level] = ns
}

// Feature returns the name of the feature
// of the family.
func (f *Family) Feature() string {
	return f.feature
}

// Levels returns the tuning values defined in a family,
// sorted in ascending order.
func (f *Family) Levels() []float64 {
	ls := make([]float64, 0, len(f.levels))
	for l := range f.levels {
		ls = append(ls, l)
	}
	slices.Sort(ls)
	return ls
}

// Nodes returns the nodes of the partition
// at the given tuning value,
// sorted by ID.
func (f *Family) Nodes(level float64) []int {
	return f.levels[level]
}

// A Collection is a set of candidate families
// indexed by feature name.
type Collection struct {
	features map[string]*Family
}

// NewCollection creates a new empty collection.
func NewCollection() *Collection {
	return &Collection{
		features: make(map[string]*Family),
	}
}

// Add adds a family to a collection.
// A family with the same feature name
// will be replaced.
func (c *Collection) Add(f *Family) {
	c.features[f.feature] = f
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

// Family returns the family of the given feature,
// or nil if the feature is not in the collection.
func (c *Collection) Family(feature string) *Family {
	return c.features[feature]
}

// Levels returns the tuning values shared
// by all the families of a collection,
// sorted in ascending order.
// It returns ErrLevelKeys
// if the families do not share
// exactly the same tuning values.
func (c *Collection) Levels() ([]float64, error) {
	var levels []float64
	for i, f := range c.Features() {
		ls := c.Family(f).Levels()
		if i == 0 {
			levels = ls
			continue
		}
		if !slices.Equal(levels, ls) {
			return nil, ErrLevelKeys
		}
	}
	return levels, nil
}
