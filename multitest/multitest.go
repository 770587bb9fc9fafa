// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package multitest implements corrections
// for multiple hypothesis testing,
// producing adjusted p-values
// comparable against a single significance level.
package multitest

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Method is a keyword
// to identify a multiple testing correction.
type Method string

// Valid correction methods.
const (
	// Benjamini-Hochberg step-up procedure.
	// Controls the false discovery rate
	// under independence or positive dependence.
	BH Method = "bh"

	// Benjamini-Yekutieli step-up procedure.
	// Controls the false discovery rate
	// under arbitrary dependence.
	BY Method = "by"

	// Holm step-down procedure.
	// Controls the family-wise error rate.
	Holm Method = "holm"

	// Bonferroni single-step correction.
	// Controls the family-wise error rate.
	Bonferroni Method = "bonferroni"
)

// Parse returns the method
// for a given keyword name.
// An empty name selects the default method
// (Benjamini-Hochberg).
func Parse(name string) (Method, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch m := Method(name); m {
	case "":
		return BH, nil
	case BH, BY, Holm, Bonferroni:
		return m, nil
	}
	return "", fmt.Errorf("unknown correction method %q", name)
}

// Adjust returns the adjusted p-values
// for a sequence of p-values,
// preserving the input order.
// NaN values
// (i.e. untested hypotheses)
// are passed through unchanged
// and do not count towards the number of tests.
func (m Method) Adjust(p []float64) []float64 {
	adj := make([]float64, len(p))

	// indexes of the tested hypotheses,
	// sorted by p-value
	ord := make([]int, 0, len(p))
	for i, v := range p {
		if math.IsNaN(v) {
			adj[i] = v
			continue
		}
		ord = append(ord, i)
	}
	sort.Slice(ord, func(i, j int) bool {
		return p[ord[i]] < p[ord[j]]
	})
	n := len(ord)

	switch m {
	case BH, BY:
		c := 1.0
		if m == BY {
			c = 0
			for i := 1; i <= n; i++ {
				c += 1 / float64(i)
			}
		}
		min := 1.0
		for i := n - 1; i >= 0; i-- {
			v := c * float64(n) * p[ord[i]] / float64(i+1)
			if v < min {
				min = v
			}
			adj[ord[i]] = min
		}
	case Holm:
		max := 0.0
		for i := 0; i < n; i++ {
			v := float64(n-i) * p[ord[i]]
			if v > max {
				max = v
			}
			if max > 1 {
				max = 1
			}
			adj[ord[i]] = max
		}
	case Bonferroni:
		for _, i := range ord {
			v := float64(n) * p[i]
			if v > 1 {
				v = 1
			}
			adj[i] = v
		}
	default:
		panic(fmt.Sprintf("multitest: invalid method %q", m))
	}
	return adj
}
