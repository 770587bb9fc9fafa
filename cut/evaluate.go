// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package cut

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/js-arias/treecut/candidate"
	"github.com/js-arias/treecut/multitest"
	"github.com/js-arias/treecut/scores"
	"gonum.org/v1/gonum/floats"
)

// Options is a collection of parameters
// for an evaluation.
type Options struct {
	// Multiple testing correction method.
	// By default Benjamini-Hochberg.
	Method multitest.Method

	// Target false discovery rate.
	// By default 0.05.
	Limit float64

	// If true,
	// discoveries are counted on pseudo-leaves,
	// the effective leaves of each feature
	// given its untested nodes,
	// instead of the real leaves of the tree.
	PseudoLeaf bool
}

func (o Options) withDefaults() (Options, error) {
	m, err := multitest.Parse(string(o.Method))
	if err != nil {
		return o, err
	}
	o.Method = m
	if o.Limit == 0 {
		o.Limit = 0.05
	}
	if o.Limit < 0 || o.Limit > 1 {
		return o, fmt.Errorf("invalid target FDR %g", o.Limit)
	}
	return o, nil
}

// A Level is the evaluation
// of a single candidate partition,
// at a given value of the tuning parameter.
type Level struct {
	// Tuning value of the candidate.
	T float64

	// Largest tuning value admissible
	// for a candidate with the observed
	// average branch size.
	Upper float64

	// True if the candidate keeps
	// the leaf-level FDR controlled.
	Valid bool

	// True if the candidate is among the best
	// valid candidates.
	Best bool

	// Number of rejected nodes.
	RejNodes int

	// Number of real leaves
	// under the rejected nodes.
	RejLeaves int

	// Number of pseudo-leaves
	// under the rejected nodes
	// (pseudo-leaf mode only).
	RejPseudo int

	// per feature,
	// the selected row indexes of its score table
	sel map[string][]int
}

// evaluator holds the shared read-only inputs
// of an evaluation.
type evaluator struct {
	t        *Tree
	data     *scores.Collection
	cands    *candidate.Collection
	opts     Options
	features []string

	real   map[int]int            // real-leaf counts per node
	pseudo map[string]map[int]int // per feature, pseudo-leaf counts
}

// Upper is rounded to a fixed precision
// so that candidates sitting on the bound
// do not flicker between runs.
const upperPrec = 1e10

// evalLevel evaluates the candidate partition
// at a single tuning value.
func (e *evaluator) evalLevel(lv float64) Level {
	// match candidate nodes to score rows
	// and pool the p-values of all features
	sel := make(map[string][]int, len(e.features))
	var pool []float64
	type ref struct {
		feature string
		node    int
	}
	var refs []ref
	for _, f := range e.features {
		tab := e.data.Table(f)
		cs := e.cands.Family(f).Nodes(lv)
		in := make(map[int]bool, len(cs))
		for _, n := range cs {
			in[n] = true
		}
		for i := 0; i < tab.Len(); i++ {
			r := tab.Row(i)
			if !in[r.Node] {
				continue
			}
			sel[f] = append(sel[f], i)
			pool = append(pool, r.P)
			refs = append(refs, ref{feature: f, node: r.Node})
		}
	}

	// joint correction over the pooled p-values
	adj := e.opts.Method.Adjust(pool)
	var rejRaw []float64
	rej := make(map[string]map[int]bool, len(e.features))
	for i, v := range adj {
		if math.IsNaN(v) || v > e.opts.Limit {
			continue
		}
		rejRaw = append(rejRaw, pool[i])
		r := refs[i]
		if rej[r.feature] == nil {
			rej[r.feature] = make(map[int]bool)
		}
		rej[r.feature][r.node] = true
	}

	// raw p-value threshold for the branch accounting;
	// with no rejection the sentinel keeps
	// every node out
	maxp := -1.0
	if len(rejRaw) > 0 {
		maxp = floats.Max(rejRaw)
	}

	nC := e.branches(maxp)

	var rejNodes, rejLeaves, rejPseudo int
	for f, ns := range rej {
		for n := range ns {
			rejNodes++
			rejLeaves += e.real[n]
			if e.opts.PseudoLeaf {
				rejPseudo += e.pseudo[f][n]
			}
		}
	}

	nm := rejLeaves
	if e.opts.PseudoLeaf {
		nm = rejPseudo
	}
	avSize := float64(nm) / math.Max(float64(nC), 1)
	upper := 2 * e.opts.Limit * (math.Max(avSize, 1) - 1)
	if upper > 1 {
		upper = 1
	}
	upper = math.Round(upper*upperPrec) / upperPrec

	return Level{
		T:         lv,
		Upper:     upper,
		Valid:     upper > lv || lv == 0,
		RejNodes:  rejNodes,
		RejLeaves: rejLeaves,
		RejPseudo: rejPseudo,
		sel:       sel,
	}
}

// branches approximates the number of independent branches
// implicated by the rejections:
// among the nodes with a raw p-value at or below maxp,
// and within each direction of effect,
// leaf rejections that share an immediate parent
// merge into a single branch,
// while internal nodes count on their own.
func (e *evaluator) branches(maxp float64) int {
	nC := 0
	for _, f := range e.features {
		tab := e.data.Table(f)
		internal := make(map[int]map[int]bool)
		parents := make(map[int]map[int]bool)
		for i := 0; i < tab.Len(); i++ {
			r := tab.Row(i)
			if math.IsNaN(r.P) || r.P > maxp {
				continue
			}
			s := sign(r.Sign)
			if !e.t.IsLeaf(r.Node) {
				if internal[s] == nil {
					internal[s] = make(map[int]bool)
				}
				internal[s][r.Node] = true
				continue
			}
			p, err := e.t.Parent(r.Node)
			if err != nil || p < 0 {
				continue
			}
			if parents[s] == nil {
				parents[s] = make(map[int]bool)
			}
			parents[s][p] = true
		}
		for _, ns := range internal {
			nC += len(ns)
		}
		for _, ns := range parents {
			nC += len(ns)
		}
	}
	return nC
}

func sign(v float64) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

var numCPU = 1

// SetCPU sets the number of process
// used for the evaluation.
func SetCPU(cpu int) {
	numCPU = cpu
}

// Eval evaluates all the candidate partitions
// of a candidate family
// and returns the results
// for the best valid candidate.
//
// The score tables and the candidate families
// must be defined for the same features,
// and all the families must share
// the same set of tuning values;
// a mismatch aborts the whole evaluation.
// It returns ErrNoValidCandidate
// if no candidate keeps the leaf-level FDR controlled.
func Eval(t *Tree, data *scores.Collection, cands *candidate.Collection, opts Options) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	features := data.Features()
	if !slices.Equal(features, cands.Features()) {
		return nil, fmt.Errorf("score features %v do not match candidate features %v", features, cands.Features())
	}
	levels, err := cands.Levels()
	if err != nil {
		return nil, err
	}

	for _, f := range features {
		for _, n := range data.Table(f).Nodes() {
			if !t.Has(n) {
				return nil, fmt.Errorf("feature %q: scores: %w: node %d", f, ErrInvalidNode, n)
			}
		}
		fam := cands.Family(f)
		for _, lv := range levels {
			for _, n := range fam.Nodes(lv) {
				if !t.Has(n) {
					return nil, fmt.Errorf("feature %q: candidate at %g: %w: node %d", f, lv, ErrInvalidNode, n)
				}
			}
		}
	}

	e := &evaluator{
		t:        t,
		data:     data,
		cands:    cands,
		opts:     opts,
		features: features,
		real:     t.LeafCounts(nil),
	}
	if opts.PseudoLeaf {
		e.pseudo = make(map[string]map[int]int, len(features))
		for _, f := range features {
			pl := t.PseudoLeaves(data.Table(f).Tested())
			e.pseudo[f] = t.LeafCounts(pl)
		}
	}

	// parallel part:
	// each tuning value is independent
	// and writes only to its own slot
	cpu := numCPU
	if cpu <= 0 {
		cpu = 1
	}
	table := make([]Level, len(levels))
	levelChan := make(chan int, cpu*2)
	var wg sync.WaitGroup
	for range cpu {
		go func() {
			for i := range levelChan {
				table[i] = e.evalLevel(levels[i])
				wg.Done()
			}
		}()
	}
	for i := range levels {
		wg.Add(1)
		levelChan <- i
	}
	wg.Wait()
	close(levelChan)

	return e.assemble(table)
}
