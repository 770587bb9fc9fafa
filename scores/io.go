// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package scores

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Columns maps the roles of a score table
// onto the column names of a TSV file.
// An empty name selects the default for that role.
// The feature role is optional:
// if the file has no feature column,
// all rows are read as a single feature
// with an empty name.
type Columns struct {
	Node    string // node IDs, default "node"
	P       string // p-values, default "pvalue"
	Sign    string // effect values, default "sign"
	Feature string // feature names, default "feature"
}

func (c Columns) withDefaults() Columns {
	if c.Node == "" {
		c.Node = "node"
	}
	if c.P == "" {
		c.P = "pvalue"
	}
	if c.Sign == "" {
		c.Sign = "sign"
	}
	if c.Feature == "" {
		c.Feature = "feature"
	}
	return c
}

// ReadTSV reads a collection of score tables
// from a TSV file.
//
// With the default column mapping,
// the TSV file must contain the following fields:
//
//   - node, the ID of the tested node
//   - pvalue, the p-value of the test,
//     "NA" (or an empty field) if the node was not tested
//   - sign, the direction of the effect
//
// An optional "feature" field assigns each row
// to a tested feature;
// without it all rows belong to a single feature.
// Here is an example file:
//
//	feature	node	pvalue	sign
//	gene-a	1	0.00001	1
//	gene-a	2	NA	0
//	gene-a	11	0.76021	-1
//	gene-b	1	0.00241	-1
//
// If multiple is true,
// the feature field is required,
// and reading fails without it.
func ReadTSV(r io.Reader, cols Columns, multiple bool) (*Collection, error) {
	cols = cols.withDefaults()

	tab := csv.NewReader(r)
	tab.Comma = '\t'
	tab.Comment = '#'

	head, err := tab.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range []string{cols.Node, cols.P, cols.Sign} {
		if _, ok := fields[strings.ToLower(h)]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}
	iNode := fields[strings.ToLower(cols.Node)]
	iP := fields[strings.ToLower(cols.P)]
	iSign := fields[strings.ToLower(cols.Sign)]
	iFeature, hasFeature := fields[strings.ToLower(cols.Feature)]
	if multiple && !hasFeature {
		return nil, fmt.Errorf("expecting field %q", cols.Feature)
	}

	c := NewCollection()
	for {
		row, err := tab.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tab.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		feature := ""
		if hasFeature {
			feature = strings.Join(strings.Fields(row[iFeature]), " ")
		}

		node, err := strconv.Atoi(row[iNode])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, cols.Node, err)
		}

		p, err := parseP(row[iP])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, cols.P, err)
		}

		sign, err := parseSign(row[iSign])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, cols.Sign, err)
		}

		t := c.Table(feature)
		if t == nil {
			t = NewTable(feature)
			c.Add(t)
		}
		t.Add(node, p, sign)
	}
	return c, nil
}

func parseP(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("p-value %g out of range", p)
	}
	return p, nil
}

func parseSign(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "na") || strings.EqualFold(s, "nan") {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// TSV writes a collection of score tables
// as a TSV file,
// using the canonical column names.
func (c *Collection) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := []string{"feature", "node", "pvalue", "sign"}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, f := range c.Features() {
		t := c.Table(f)
		for i := 0; i < t.Len(); i++ {
			r := t.Row(i)
			p := "NA"
			if !math.IsNaN(r.P) {
				p = strconv.FormatFloat(r.P, 'g', -1, 64)
			}
			row := []string{
				f,
				strconv.Itoa(r.Node),
				p,
				strconv.FormatFloat(r.Sign, 'g', -1, 64),
			}
			if err := tab.Write(row); err != nil {
				return fmt.Errorf("unable to write data: %v", err)
			}
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("unable to write data: %v", err)
	}
	return nil
}
