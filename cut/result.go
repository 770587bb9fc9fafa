// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package cut

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/js-arias/treecut/candidate"
)

// ErrNoValidCandidate is the error produced
// when no candidate partition keeps
// the leaf-level FDR controlled.
var ErrNoValidCandidate = errors.New("no valid candidate partition")

// A Row is the final test result of a node
// in the winning partition.
type Row struct {
	Feature     string
	Node        int
	P           float64 // raw p-value
	Sign        float64 // effect value
	Adjusted    float64 // adjusted p-value
	Significant bool
}

// A Result is the outcome of an evaluation:
// the winning tuning value,
// the final test results on the winning partition,
// and the full evaluation table
// of all the candidates.
type Result struct {
	// Winning tuning value
	// (the first of the best candidates,
	// in ascending tuning order).
	T float64

	// Final test results,
	// ordered by feature
	// and then by score table order.
	Rows []Row

	// Evaluation of every candidate,
	// in ascending tuning order.
	Levels []Level

	// Options used for the evaluation.
	Options Options

	cands *candidate.Collection
}

// Partition returns the nodes
// of the winning candidate partition
// for the given feature.
func (r *Result) Partition(feature string) []int {
	f := r.cands.Family(feature)
	if f == nil {
		return nil
	}
	return f.Nodes(r.T)
}

// assemble selects the best valid candidate
// and recomputes the final significance
// on the winning partition alone.
func (e *evaluator) assemble(table []Level) (*Result, error) {
	best := -1
	for i, lv := range table {
		if !lv.Valid {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		nm, bm := lv.RejLeaves, table[best].RejLeaves
		if e.opts.PseudoLeaf {
			nm, bm = lv.RejPseudo, table[best].RejPseudo
		}
		if nm > bm {
			best = i
			continue
		}
		// prefer fewer, larger branches
		// at equal leaf coverage
		if nm == bm && lv.RejNodes < table[best].RejNodes {
			best = i
		}
	}
	if best < 0 {
		return nil, ErrNoValidCandidate
	}

	// flag all the candidates tied with the winner
	for i, lv := range table {
		if !lv.Valid {
			continue
		}
		nm, bm := lv.RejLeaves, table[best].RejLeaves
		if e.opts.PseudoLeaf {
			nm, bm = lv.RejPseudo, table[best].RejPseudo
		}
		if nm == bm && lv.RejNodes == table[best].RejNodes {
			table[i].Best = true
		}
	}

	// final correction,
	// on the winning partition alone
	win := table[best]
	var pool []float64
	var rows []Row
	for _, f := range e.features {
		tab := e.data.Table(f)
		for _, i := range win.sel[f] {
			r := tab.Row(i)
			pool = append(pool, r.P)
			rows = append(rows, Row{
				Feature: f,
				Node:    r.Node,
				P:       r.P,
				Sign:    r.Sign,
			})
		}
	}
	adj := e.opts.Method.Adjust(pool)
	for i, v := range adj {
		rows[i].Adjusted = v
		rows[i].Significant = !math.IsNaN(v) && v <= e.opts.Limit
	}

	return &Result{
		T:       win.T,
		Rows:    rows,
		Levels:  table,
		Options: e.opts,
		cands:   e.cands,
	}, nil
}

// TSV writes the final test results
// as a TSV file.
func (r *Result) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := []string{"feature", "node", "pvalue", "sign", "adjusted", "significant"}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, row := range r.Rows {
		rec := []string{
			row.Feature,
			strconv.Itoa(row.Node),
			formatP(row.P),
			strconv.FormatFloat(row.Sign, 'g', -1, 64),
			formatP(row.Adjusted),
			strconv.FormatBool(row.Significant),
		}
		if err := tab.Write(rec); err != nil {
			return fmt.Errorf("unable to write data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("unable to write data: %v", err)
	}
	return nil
}

// LevelsTSV writes the evaluation
// of every candidate partition
// as a TSV file.
func (r *Result) LevelsTSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := []string{"level", "upper", "valid", "rej_nodes", "rej_leaves", "rej_pseudo", "best"}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, lv := range r.Levels {
		rec := []string{
			strconv.FormatFloat(lv.T, 'g', -1, 64),
			strconv.FormatFloat(lv.Upper, 'g', -1, 64),
			strconv.FormatBool(lv.Valid),
			strconv.Itoa(lv.RejNodes),
			strconv.Itoa(lv.RejLeaves),
			strconv.Itoa(lv.RejPseudo),
			strconv.FormatBool(lv.Best),
		}
		if err := tab.Write(rec); err != nil {
			return fmt.Errorf("unable to write data: %v", err)
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("unable to write data: %v", err)
	}
	return nil
}

func formatP(p float64) string {
	if math.IsNaN(p) {
		return "NA"
	}
	return strconv.FormatFloat(p, 'g', -1, 64)
}
