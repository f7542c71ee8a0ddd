// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package extract runs the extraction pipeline: it walks a result
// tree, reads the mean of every unit's report and builds a Dataset.
//
// Units that cannot be used (a malformed directory name, a missing or
// unreadable report) are skipped and listed in the Result. A duplicate
// measurement aborts the run.
package extract

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mimcabc/credbench/criterion"
	"github.com/mimcabc/credbench/dataset"
	"github.com/mimcabc/credbench/locate"
)

// Options configures Run.
type Options struct {
	// Parallel is the maximum number of reports read at once.
	// Values below 2 read reports one at a time.
	Parallel int

	// Warn, if non-nil, is called for every unit whose report
	// could not be used. Skips made by the Walker itself are
	// reported through the Walker's own Warn.
	Warn func(format string, args ...interface{})
}

// A Result is the outcome of a successful Run.
type Result struct {
	Dataset *dataset.Dataset

	// Skipped lists every entry that did not produce a record,
	// sorted by path.
	Skipped []locate.Skip
}

type outcome struct {
	unit locate.Unit
	ms   float64
	err  error
}

// Run extracts a Dataset from the units produced by w.
//
// Run consumes w; it fails if w cannot read the tree root, if a
// measurement appears twice, or if ctx is canceled.
func Run(ctx context.Context, w *locate.Walker, opts Options) (*Result, error) {
	var (
		mu       sync.Mutex
		outcomes []outcome
	)
	read := func(u locate.Unit) {
		ms, err := criterion.MeanMillis(w.FS, u.Report)
		mu.Lock()
		outcomes = append(outcomes, outcome{u, ms, err})
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	if opts.Parallel > 1 {
		g.SetLimit(opts.Parallel)
	}
	for w.Scan() {
		if err := gctx.Err(); err != nil {
			break
		}
		u := w.Unit()
		if opts.Parallel > 1 {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				read(u)
				return nil
			})
		} else {
			read(u)
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := w.Err(); err != nil {
		return nil, err
	}

	// Arrival order is arbitrary when reading in parallel; the
	// Builder's result does not depend on it, but warnings should.
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].unit.Report < outcomes[j].unit.Report })

	skipped := append([]locate.Skip(nil), w.Skipped()...)
	var b dataset.Builder
	for _, o := range outcomes {
		if o.err != nil {
			s := locate.Skip{Path: o.unit.Report, Reason: o.err}
			var re *criterion.ReportError
			if errors.As(o.err, &re) {
				s.Reason = re.Err
			}
			skipped = append(skipped, s)
			if opts.Warn != nil {
				opts.Warn("%s\n", s)
			}
			continue
		}
		rec := dataset.Record{
			Implementation: o.unit.Implementation,
			Credentials:    o.unit.Params.Credentials,
			Attributes:     o.unit.Params.Attributes,
			MeanMS:         o.ms,
		}
		if err := b.Add(rec); err != nil {
			return nil, err
		}
	}
	d, err := b.Build()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(skipped, func(i, j int) bool { return skipped[i].Path < skipped[j].Path })
	return &Result{Dataset: d, Skipped: skipped}, nil
}
