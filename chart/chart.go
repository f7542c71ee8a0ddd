// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart draws line charts of a Dataset and its ratio series.
//
// Charts are returned as *plot.Plot values and written to a caller
// supplied io.Writer; this package never chooses where output goes.
package chart

import (
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/mimcabc/credbench/compare"
	"github.com/mimcabc/credbench/dataset"
)

// Default chart dimensions.
var (
	Width  = 10 * vg.Inch
	Height = 6 * vg.Inch
)

// Scaling plots mean duration against credential count at a fixed
// attribute count, one line per implementation.
func Scaling(d *dataset.Dataset, attributes int) (*plot.Plot, error) {
	rs := d.Filter(func(r dataset.Record) bool { return r.Attributes == attributes })
	if len(rs) == 0 {
		return nil, fmt.Errorf("no records with %d attributes", attributes)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Time vs. credential count (%d attributes per credential)", attributes)
	p.X.Label.Text = "Number of credentials"
	p.Y.Label.Text = "Execution time (ms)"
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	// Records are sorted by implementation, then credential
	// count, so each implementation is a contiguous run.
	var creds []int
	seen := make(map[int]bool)
	line := 0
	for i := 0; i < len(rs); {
		j := i
		for j < len(rs) && rs[j].Implementation == rs[i].Implementation {
			j++
		}
		xys := make(plotter.XYs, 0, j-i)
		for _, r := range rs[i:j] {
			xys = append(xys, plotter.XY{X: float64(r.Credentials), Y: r.MeanMS})
			if !seen[r.Credentials] {
				seen[r.Credentials] = true
				creds = append(creds, r.Credentials)
			}
		}
		if err := addLine(p, line, rs[i].Implementation, xys); err != nil {
			return nil, err
		}
		line++
		i = j
	}
	p.X.Tick.Marker = countTicks(creds)
	return p, nil
}

// Ratios plots one or more ratio series against credential count.
// Series with no points are left out.
func Ratios(series []*compare.Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Relative cost"
	p.X.Label.Text = "Number of credentials"
	p.Y.Label.Text = "numerator time / denominator time"
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	var creds []int
	seen := make(map[int]bool)
	line := 0
	for _, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			xys[i] = plotter.XY{X: float64(pt.Credentials), Y: pt.Ratio}
			if !seen[pt.Credentials] {
				seen[pt.Credentials] = true
				creds = append(creds, pt.Credentials)
			}
		}
		label := fmt.Sprintf("%s (%d attrs)", s.Pair, s.Attributes)
		if err := addLine(p, line, label, xys); err != nil {
			return nil, err
		}
		line++
	}
	if line == 0 {
		return nil, fmt.Errorf("no ratio points to plot")
	}
	p.X.Tick.Marker = countTicks(creds)
	return p, nil
}

func addLine(p *plot.Plot, i int, label string, xys plotter.XYs) error {
	l, s, err := plotter.NewLinePoints(xys)
	if err != nil {
		return fmt.Errorf("plotting %s: %w", label, err)
	}
	l.Color = plotutil.Color(i)
	l.Dashes = plotutil.Dashes(i)
	l.Width = vg.Points(2)
	s.Color = plotutil.Color(i)
	s.Shape = plotutil.Shape(i)
	s.Radius = vg.Points(4)
	p.Add(l, s)
	p.Legend.Add(label, l, s)
	return nil
}

// countTicks labels exactly the given counts on an axis.
func countTicks(counts []int) plot.Ticker {
	ticks := make(plot.ConstantTicks, len(counts))
	for i, c := range counts {
		ticks[i] = plot.Tick{Value: float64(c), Label: strconv.Itoa(c)}
	}
	return ticks
}

// Write renders p to w in the given format ("png", "svg", "pdf", ...)
// at the default size.
func Write(w io.Writer, p *plot.Plot, format string) error {
	wt, err := p.WriterTo(Width, Height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
