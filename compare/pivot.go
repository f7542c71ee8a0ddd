// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compare derives comparative views from a Dataset: pivot
// tables with one column per implementation, and ratio series between
// two implementations.
//
// Views are computed from the Dataset on demand and hold no other
// state. A missing measurement is always represented by absence, never
// by zero.
package compare

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/mimcabc/credbench/dataset"
	"github.com/mimcabc/credbench/internal/texttab"
)

// A RowKey identifies a row of a Pivot.
type RowKey struct {
	Attributes  int
	Credentials int
}

type cellKey struct {
	row  RowKey
	impl string
}

// A Pivot re-keys a Dataset by (attribute count, credential count),
// with one column per implementation.
type Pivot struct {
	// Columns are the implementation names, in column order.
	Columns []string
	// Rows are the row keys in ascending order of attribute count,
	// then credential count. Only rows with at least one present
	// cell are included.
	Rows []RowKey

	cells map[cellKey]float64
}

// NewPivot builds a Pivot of d. If columns is empty, every
// implementation in d becomes a column, in sorted order. Otherwise
// exactly the named implementations are used, in the given order.
func NewPivot(d *dataset.Dataset, columns ...string) *Pivot {
	if len(columns) == 0 {
		columns = d.Implementations()
	} else {
		columns = dedup(columns)
	}
	want := make(map[string]bool, len(columns))
	for _, c := range columns {
		want[c] = true
	}

	p := &Pivot{Columns: columns, cells: make(map[cellKey]float64)}
	rows := make(map[RowKey]bool)
	for i := 0; i < d.Len(); i++ {
		r := d.At(i)
		if !want[r.Implementation] {
			continue
		}
		rk := RowKey{r.Attributes, r.Credentials}
		p.cells[cellKey{rk, r.Implementation}] = r.MeanMS
		if !rows[rk] {
			rows[rk] = true
			p.Rows = append(p.Rows, rk)
		}
	}
	sort.Slice(p.Rows, func(i, j int) bool {
		a, b := p.Rows[i], p.Rows[j]
		if a.Attributes != b.Attributes {
			return a.Attributes < b.Attributes
		}
		return a.Credentials < b.Credentials
	})
	return p
}

func dedup(ss []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Get returns the cell at row for implementation impl, and whether it
// is present.
func (p *Pivot) Get(row RowKey, impl string) (float64, bool) {
	v, ok := p.cells[cellKey{row, impl}]
	return v, ok
}

// Cells returns the number of present cells.
func (p *Pivot) Cells() int {
	return len(p.cells)
}

// WriteCSV writes p to w as CSV. Absent cells are written as empty
// fields.
func (p *Pivot) WriteCSV(w io.Writer) error {
	tab := [][]string{append([]string{"attribute_count", "credential_count"}, p.Columns...)}
	for _, rk := range p.Rows {
		row := []string{strconv.Itoa(rk.Attributes), strconv.Itoa(rk.Credentials)}
		for _, c := range p.Columns {
			s := ""
			if v, ok := p.Get(rk, c); ok {
				s = dataset.FormatMillis(v)
			}
			row = append(row, s)
		}
		tab = append(tab, row)
	}
	cw := csv.NewWriter(w)
	return cw.WriteAll(tab)
}

// ToText writes p to w as an aligned text table, with means rounded
// to prec decimal places and absent cells left blank. The
// implementation columns share a centered "mean_ms" heading.
func (p *Pivot) ToText(w io.Writer, prec int) error {
	var t texttab.Table
	if len(p.Columns) > 0 {
		t.Row().Cell("").Cell("").Span(len(p.Columns), "mean_ms", texttab.Center)
	}
	t.Row().Cell("attrs").Cell("creds")
	for _, c := range p.Columns {
		t.Cell(c, texttab.Right)
	}
	for _, rk := range p.Rows {
		t.Row().
			Cell(strconv.Itoa(rk.Attributes), texttab.Right).
			Cell(strconv.Itoa(rk.Credentials), texttab.Right)
		for _, c := range p.Columns {
			s := ""
			if v, ok := p.Get(rk, c); ok {
				s = strconv.FormatFloat(v, 'f', prec, 64)
			}
			t.Cell(s, texttab.Right)
		}
	}
	return t.Format(w)
}
