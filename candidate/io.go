// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package candidate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadTSV reads a collection of candidate families
// from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - level, the tuning value of the partition
//   - node, the ID of a node in the partition
//
// An optional "feature" field assigns each partition
// to a tested feature;
// without it all partitions belong to a single feature.
// Here is an example file:
//
//	feature	level	node
//	gene-a	0	1
//	gene-a	0	2
//	gene-a	0.3	11
//	gene-b	0	1
func ReadTSV(r io.Reader) (*Collection, error) {
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
	for _, h := range []string{"level", "node"} {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}
	iFeature, hasFeature := fields["feature"]

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

		f := "level"
		level, err := strconv.ParseFloat(row[fields[f]], 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}

		f = "node"
		node, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}

		fam := c.Family(feature)
		if fam == nil {
			fam = New(feature)
			c.Add(fam)
		}
		fam.Add(level, node)
	}
	return c, nil
}

// TSV writes a collection of candidate families
// as a TSV file.
func (c *Collection) TSV(w io.Writer) error {
	tab := csv.NewWriter(w)
	tab.Comma = '\t'
	tab.UseCRLF = true

	header := []string{"feature", "level", "node"}
	if err := tab.Write(header); err != nil {
		return fmt.Errorf("unable to write header: %v", err)
	}

	for _, f := range c.Features() {
		fam := c.Family(f)
		for _, l := range fam.Levels() {
			for _, n := range fam.Nodes(l) {
				row := []string{
					f,
					strconv.FormatFloat(l, 'g', -1, 64),
					strconv.Itoa(n),
				}
				if err := tab.Write(row); err != nil {
					return fmt.Errorf("unable to write data: %v", err)
				}
			}
		}
	}

	tab.Flush()
	if err := tab.Error(); err != nil {
		return fmt.Errorf("unable to write data: %v", err)
	}
	return nil
}
