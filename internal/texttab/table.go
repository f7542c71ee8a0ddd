// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package texttab lays out fixed-width text tables.
package texttab

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// Table accumulates cells row by row and formats them with aligned
// columns. Its methods return the Table so calls can be chained.
type Table struct {
	cells []cell
	cols  int

	curRow, curCol int
}

type cell struct {
	row, col, span int
	value          string
	margin         int
	align          align
}

// A CellOption modifies a cell as it is added.
type CellOption func(c *cell)

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

// Cells are left-aligned unless one of these options is given.
var (
	Center CellOption = func(c *cell) { c.align = alignCenter }
	Right  CellOption = func(c *cell) { c.align = alignRight }
)

func (a align) pad(s string, w int) string {
	n := utf8.RuneCountInString(s)
	switch a {
	case alignCenter:
		return strings.Repeat(" ", (w-n)/2) + s
	case alignRight:
		return strings.Repeat(" ", w-n) + s
	}
	return s
}

// Row starts a new row.
func (t *Table) Row() *Table {
	if len(t.cells) > 0 {
		t.curRow++
	}
	t.curCol = 0
	return t
}

// Cell adds a single-column cell at the current position.
func (t *Table) Cell(value string, opts ...CellOption) *Table {
	return t.Span(1, value, opts...)
}

// Span adds a cell covering cols columns at the current position.
func (t *Table) Span(cols int, value string, opts ...CellOption) *Table {
	margin := 2
	if t.curCol == 0 {
		margin = 0
	}
	c := cell{t.curRow, t.curCol, cols, value, margin, alignLeft}
	for _, o := range opts {
		o(&c)
	}
	t.cells = append(t.cells, c)
	t.curCol += cols
	if t.curCol > t.cols {
		t.cols = t.curCol
	}
	return t
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Format writes the laid-out table to w.
func (t *Table) Format(w io.Writer) error {
	// Column widths, including left margins. Single-column cells
	// go first so spans only widen what is still too narrow.
	ws := make([]int, t.cols)
	cells := append([]cell(nil), t.cells...)
	sort.SliceStable(cells, func(i, j int) bool { return cells[i].span < cells[j].span })
	for _, c := range cells {
		need := utf8.RuneCountInString(c.value) + c.margin
		if c.span == 1 {
			ws[c.col] = max(ws[c.col], need)
			continue
		}
		have := 0
		for col := c.col; col < c.col+c.span; col++ {
			have += ws[col]
		}
		if have < need {
			// Give the shortfall to the last spanned column.
			ws[c.col+c.span-1] += need - have
		}
	}

	offs := make([]int, t.cols+1)
	for i, w := range ws {
		offs[i+1] = offs[i] + w
	}

	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].row != cells[j].row {
			return cells[i].row < cells[j].row
		}
		return cells[i].col < cells[j].col
	})
	row, off := 0, 0
	for _, c := range cells {
		if strings.TrimSpace(c.value) == "" {
			continue
		}
		for c.row > row {
			if _, err := fmt.Fprint(w, "\n"); err != nil {
				return err
			}
			row++
			off = 0
		}
		start := offs[c.col] + c.margin
		width := offs[c.col+c.span] - start
		s := c.align.pad(c.value, width)
		if _, err := fmt.Fprintf(w, "%*s%s", start-off, "", s); err != nil {
			return err
		}
		off = start + utf8.RuneCountInString(s)
	}
	if len(cells) > 0 {
		if _, err := fmt.Fprint(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
