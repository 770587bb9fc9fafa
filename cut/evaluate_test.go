// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package cut_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/js-arias/treecut/candidate"
	"github.com/js-arias/treecut/cut"
	"github.com/js-arias/treecut/scores"
)

var leafNames = []string{
	"Alpha", "Bravo", "Charlie", "Delta", "Echo",
	"Foxtrot", "Golf", "Hotel", "India", "Juliet",
}

// scenario returns the test tree
// and the IDs of its nodes:
// the leaves by taxon name,
// and the internal nodes by label,
// with "x1" the parent of Alpha and Bravo,
// "x2" the parent of Charlie,
// "x3" the parent of Delta and Echo,
// "l1" the ancestor of the first five leaves,
// and "root" the root.
func scenario(t testing.TB) (*cut.Tree, map[string]int) {
	t.Helper()

	tr := newTree(t, testNewick)
	ids := make(map[string]int)
	for _, nm := range leafNames {
		ids[nm] = leaf(t, tr, nm)
	}
	ids["x1"] = parent(t, tr, ids["Alpha"])
	ids["x2"] = parent(t, tr, ids["Charlie"])
	ids["x3"] = parent(t, tr, ids["Delta"])
	ids["l1"] = parent(t, tr, ids["x1"])
	ids["x4"] = parent(t, tr, ids["Foxtrot"])
	ids["x5"] = parent(t, tr, ids["Hotel"])
	ids["x6"] = parent(t, tr, ids["India"])
	ids["l2"] = parent(t, tr, ids["x4"])
	ids["root"] = tr.Root()
	return tr, ids
}

// scenarioScores returns a score table
// with a strong signal on the first five leaves
// and their ancestors,
// and near-uniform p-values everywhere else.
func scenarioScores(ids map[string]int) *scores.Table {
	tab := scores.NewTable("")

	signal := map[string]float64{
		"Alpha": 0.0004, "Bravo": 0.0003, "Charlie": 0.0002,
		"Delta": 0.0004, "Echo": 0.0005,
		"x1": 0.00001, "x3": 0.00001, "l1": 0.0000001,
	}
	noise := map[string]float64{
		"Foxtrot": 0.5, "Golf": 0.6, "Hotel": 0.7,
		"India": 0.8, "Juliet": 0.9,
		"x2": 0.35, "x4": 0.45, "x5": 0.55, "x6": 0.65,
		"l2": 0.75, "root": 0.85,
	}
	for nm, p := range signal {
		tab.Add(ids[nm], p, 1)
	}
	for nm, p := range noise {
		tab.Add(ids[nm], p, 1)
	}
	return tab
}

// scenarioCands returns a candidate family
// with three resolutions:
// all the leaves,
// the first five leaves collapsed into their ancestor,
// and the whole tree collapsed into the root.
func scenarioCands(ids map[string]int) *candidate.Collection {
	f := candidate.New("")
	for _, nm := range leafNames {
		f.Add(0, ids[nm])
	}
	f.Add(0.3, ids["l1"], ids["Foxtrot"], ids["Golf"], ids["Hotel"], ids["India"], ids["Juliet"])
	f.Add(0.6, ids["root"])

	c := candidate.NewCollection()
	c.Add(f)
	return c
}

func TestEval(t *testing.T) {
	tr, ids := scenario(t)
	data := scores.Single(scenarioScores(ids))
	cands := scenarioCands(ids)

	res, err := cut.Eval(tr, data, cands, cut.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.T != 0.3 {
		t.Errorf("best level: got %g, want %g", res.T, 0.3)
	}

	want := []struct {
		t        float64
		upper    float64
		valid    bool
		best     bool
		rejNodes int
		rejLeaf  int
	}{
		{t: 0, upper: 0, valid: true, rejNodes: 5, rejLeaf: 5},
		{t: 0.3, upper: 0.4, valid: true, best: true, rejNodes: 1, rejLeaf: 5},
		{t: 0.6, upper: 0, valid: false},
	}
	if len(res.Levels) != len(want) {
		t.Fatalf("levels: got %d, want %d", len(res.Levels), len(want))
	}
	for i, w := range want {
		lv := res.Levels[i]
		if lv.T != w.t {
			t.Errorf("level %d: got t %g, want %g", i, lv.T, w.t)
		}
		if math.Abs(lv.Upper-w.upper) > 1e-9 {
			t.Errorf("level %g: got upper %g, want %g", lv.T, lv.Upper, w.upper)
		}
		if lv.Valid != w.valid {
			t.Errorf("level %g: got valid %v, want %v", lv.T, lv.Valid, w.valid)
		}
		if lv.Best != w.best {
			t.Errorf("level %g: got best %v, want %v", lv.T, lv.Best, w.best)
		}
		if lv.RejNodes != w.rejNodes {
			t.Errorf("level %g: got %d rejected nodes, want %d", lv.T, lv.RejNodes, w.rejNodes)
		}
		if lv.RejLeaves != w.rejLeaf {
			t.Errorf("level %g: got %d rejected leaves, want %d", lv.T, lv.RejLeaves, w.rejLeaf)
		}
		if lv.Upper < 0 {
			t.Errorf("level %g: negative upper bound %g", lv.T, lv.Upper)
		}
	}

	// the winning partition collapses the signal
	// into a single ancestor node
	if len(res.Rows) != 6 {
		t.Fatalf("result rows: got %d, want %d", len(res.Rows), 6)
	}
	var sig []int
	for _, r := range res.Rows {
		if r.Significant {
			sig = append(sig, r.Node)
		}
	}
	if !reflect.DeepEqual(sig, []int{ids["l1"]}) {
		t.Errorf("significant nodes: got %v, want %v", sig, []int{ids["l1"]})
	}

	if part := res.Partition(""); !reflect.DeepEqual(part, cands.Family("").Nodes(0.3)) {
		t.Errorf("winning partition: got %v, want %v", part, cands.Family("").Nodes(0.3))
	}
}

func TestEvalAllOnes(t *testing.T) {
	tr, ids := scenario(t)

	tab := scores.NewTable("")
	for _, n := range tr.Nodes() {
		tab.Add(n, 1, 1)
	}
	cands := scenarioCands(ids)

	res, err := cut.Eval(tr, scores.Single(tab), cands, cut.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// only the zero level is valid
	if res.T != 0 {
		t.Errorf("best level: got %g, want %g", res.T, 0.0)
	}
	for _, lv := range res.Levels {
		if lv.T == 0 {
			if !lv.Valid {
				t.Errorf("level 0: should always be valid")
			}
			continue
		}
		if lv.Valid {
			t.Errorf("level %g: without rejections it should be invalid", lv.T)
		}
	}
	for _, r := range res.Rows {
		if r.Significant {
			t.Errorf("node %d: unexpected significant result", r.Node)
		}
	}
}

func TestEvalNoValidCandidate(t *testing.T) {
	tr, ids := scenario(t)

	tab := scores.NewTable("")
	for _, n := range tr.Nodes() {
		tab.Add(n, 1, 1)
	}
	f := candidate.New("")
	f.Add(0.6, ids["root"])
	cands := candidate.NewCollection()
	cands.Add(f)

	_, err := cut.Eval(tr, scores.Single(tab), cands, cut.Options{})
	if !errors.Is(err, cut.ErrNoValidCandidate) {
		t.Errorf("got error %v, want %v", err, cut.ErrNoValidCandidate)
	}
}

func TestEvalPseudoLeaf(t *testing.T) {
	tr, ids := scenario(t)

	tab := scenarioScores(ids)
	tab.Add(ids["Delta"], math.NaN(), 0)
	tab.Add(ids["Echo"], math.NaN(), 0)
	cands := scenarioCands(ids)

	res, err := cut.Eval(tr, scores.Single(tab), cands, cut.Options{PseudoLeaf: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// at level 0.3 the rejection of the shared ancestor
	// covers four pseudo-leaves,
	// and its bound falls exactly on the level,
	// so the level is no longer valid
	lv := res.Levels[1]
	if lv.T != 0.3 {
		t.Fatalf("level: got t %g, want %g", lv.T, 0.3)
	}
	if lv.RejNodes != 1 || lv.RejLeaves != 5 || lv.RejPseudo != 4 {
		t.Errorf("level %g: got (%d, %d, %d), want (%d, %d, %d)",
			lv.T, lv.RejNodes, lv.RejLeaves, lv.RejPseudo, 1, 5, 4)
	}
	if math.Abs(lv.Upper-0.3) > 1e-9 {
		t.Errorf("level %g: got upper %g, want %g", lv.T, lv.Upper, 0.3)
	}
	if lv.Valid {
		t.Errorf("level %g: a bound equal to the level should not be valid", lv.T)
	}

	if res.T != 0 {
		t.Errorf("best level: got %g, want %g", res.T, 0.0)
	}
	lv = res.Levels[0]
	if lv.RejNodes != 3 || lv.RejLeaves != 3 || lv.RejPseudo != 3 {
		t.Errorf("level %g: got (%d, %d, %d), want (%d, %d, %d)",
			lv.T, lv.RejNodes, lv.RejLeaves, lv.RejPseudo, 3, 3, 3)
	}
}

func TestEvalBranchSigns(t *testing.T) {
	tr := newTree(t, "(Alpha:1,Bravo:1);")
	alpha := leaf(t, tr, "Alpha")
	bravo := leaf(t, tr, "Bravo")

	f := candidate.New("")
	f.Add(0, alpha, bravo)
	cands := candidate.NewCollection()
	cands.Add(f)

	// effects in the same direction
	// merge into a single branch
	tab := scores.NewTable("")
	tab.Add(alpha, 0.001, 1)
	tab.Add(bravo, 0.001, 1)
	tab.Add(tr.Root(), 0.9, 1)

	res, err := cut.Eval(tr, scores.Single(tab), cands, cut.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Levels[0].Upper; math.Abs(got-0.1) > 1e-9 {
		t.Errorf("same sign: got upper %g, want %g", got, 0.1)
	}

	// opposite effects are kept
	// on different branches
	tab.Add(bravo, 0.001, -1)
	res, err = cut.Eval(tr, scores.Single(tab), cands, cut.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Levels[0].Upper; got != 0 {
		t.Errorf("opposite signs: got upper %g, want %g", got, 0.0)
	}
}

func TestEvalErrors(t *testing.T) {
	tr, ids := scenario(t)
	data := scores.Single(scenarioScores(ids))

	// candidate families must share the level keys
	ga := scores.NewTable("gene-a")
	ga.Add(ids["Alpha"], 0.01, 1)
	gb := scores.NewTable("gene-b")
	gb.Add(ids["Alpha"], 0.02, -1)
	multi := scores.NewCollection()
	multi.Add(ga)
	multi.Add(gb)

	fa := candidate.New("gene-a")
	fa.Add(0, ids["Alpha"])
	fb := candidate.New("gene-b")
	fb.Add(0, ids["Alpha"])
	fb.Add(0.3, ids["x1"])
	mc := candidate.NewCollection()
	mc.Add(fa)
	mc.Add(fb)

	if _, err := cut.Eval(tr, multi, mc, cut.Options{}); !errors.Is(err, candidate.ErrLevelKeys) {
		t.Errorf("mismatched levels: got error %v, want %v", err, candidate.ErrLevelKeys)
	}

	// scores and candidates must define the same features
	if _, err := cut.Eval(tr, data, mc, cut.Options{}); err == nil {
		t.Errorf("mismatched features: expecting error")
	}

	// all node IDs must be part of the tree
	bad := scores.NewTable("")
	bad.Add(1000, 0.01, 1)
	if _, err := cut.Eval(tr, scores.Single(bad), scenarioCands(ids), cut.Options{}); !errors.Is(err, cut.ErrInvalidNode) {
		t.Errorf("invalid node: got error %v, want %v", err, cut.ErrInvalidNode)
	}

	// unknown correction method
	if _, err := cut.Eval(tr, data, scenarioCands(ids), cut.Options{Method: "westfall-young"}); err == nil {
		t.Errorf("unknown method: expecting error")
	}
}

func TestEvalDeterministic(t *testing.T) {
	tr, ids := scenario(t)
	data := scores.Single(scenarioScores(ids))
	cands := scenarioCands(ids)

	cut.SetCPU(4)
	defer cut.SetCPU(1)

	res, err := cut.Eval(tr, data, cands, cut.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range 10 {
		nr, err := cut.Eval(tr, data, cands, cut.Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if nr.T != res.T {
			t.Fatalf("best level: got %g, want %g", nr.T, res.T)
		}
		if !reflect.DeepEqual(nr.Rows, res.Rows) {
			t.Fatalf("rows: got %v, want %v", nr.Rows, res.Rows)
		}
		for i, lv := range nr.Levels {
			w := res.Levels[i]
			if lv.T != w.T || lv.Upper != w.Upper || lv.Valid != w.Valid || lv.Best != w.Best || lv.RejNodes != w.RejNodes || lv.RejLeaves != w.RejLeaves {
				t.Fatalf("level %g: got %+v, want %+v", lv.T, lv, w)
			}
		}
	}
}
