// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package locate finds benchmark result units in a result tree.
//
// A result tree has one directory per implementation, each holding
// one directory per parameter token (see package benchparam):
//
//	root/
//		impl_x/
//			4creds_16attrs/new/estimates.json
//			16creds_16attrs/new/estimates.json
//		impl_y/
//			...
//
// Entries that do not fit this layout are skipped, not treated as
// errors, so that one stray directory or missing report does not
// prevent the rest of the tree from being read.
package locate

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/mimcabc/credbench/benchparam"
)

// DefaultReportPath is where Criterion writes the estimates of the
// latest run, relative to a parameter directory.
const DefaultReportPath = "new/estimates.json"

// reservedName is the directory Criterion uses for its HTML reports
// at every level of the tree.
const reservedName = "report"

var (
	// ErrNotDir is the skip reason for plain files in the tree.
	ErrNotDir = errors.New("not a directory")

	// ErrReserved is the skip reason for Criterion's own
	// report directories and hidden entries.
	ErrReserved = errors.New("reserved name")

	// ErrNoReport is the skip reason for a parameter directory
	// that has no report at the expected location.
	ErrNoReport = errors.New("no report")
)

// A Unit is one benchmark measurement found in the tree.
type Unit struct {
	Implementation string
	Params         benchparam.Params

	// Report is the path of the report artifact in the Walker's FS.
	Report string
}

// A Skip records a tree entry that was not turned into a Unit.
type Skip struct {
	Path   string
	Reason error
}

func (s Skip) String() string {
	return fmt.Sprintf("skipping %s: %v", s.Path, s.Reason)
}

// A Walker enumerates the Units of a result tree. Use it like a
// bufio.Scanner: call Scan until it returns false, then check Err.
//
// A Walker walks the tree once and cannot be restarted. Units are
// produced lazily, one implementation directory at a time.
type Walker struct {
	// FS holds the result tree.
	FS fs.FS

	// Root is the directory in FS containing the implementation
	// directories. If empty, "." is used.
	Root string

	// ReportPath is the location of the report artifact relative
	// to a parameter directory. If empty, DefaultReportPath is
	// used.
	ReportPath string

	// Warn, if non-nil, is called for every skipped entry.
	Warn func(format string, args ...interface{})

	// impls is the list of implementation directories not yet
	// visited, or nil if the walk has not started.
	impls []string
	impl  string
	// entries are the unvisited entries of the current
	// implementation directory.
	entries []fs.DirEntry

	unit    Unit
	skipped []Skip
	err     error
}

func (w *Walker) root() string {
	if w.Root == "" {
		return "."
	}
	return w.Root
}

func (w *Walker) reportPath() string {
	if w.ReportPath == "" {
		return DefaultReportPath
	}
	return w.ReportPath
}

func (w *Walker) skip(p string, reason error) {
	s := Skip{p, reason}
	w.skipped = append(w.skipped, s)
	if w.Warn != nil {
		w.Warn("%s\n", s)
	}
}

// init lists the implementation directories.
func (w *Walker) init() bool {
	w.impls = []string{}
	ents, err := fs.ReadDir(w.FS, w.root())
	if err != nil {
		w.err = fmt.Errorf("reading result tree: %w", err)
		return false
	}
	for _, ent := range ents {
		p := path.Join(w.root(), ent.Name())
		switch {
		case reserved(ent.Name()):
			w.skip(p, ErrReserved)
		case !ent.IsDir():
			w.skip(p, ErrNotDir)
		default:
			w.impls = append(w.impls, ent.Name())
		}
	}
	return true
}

func reserved(name string) bool {
	return name == reservedName || strings.HasPrefix(name, ".")
}

// Scan advances to the next Unit and reports whether there is one.
// It returns false at the end of the tree or if the root directory
// cannot be read; in the latter case Err returns the error.
func (w *Walker) Scan() bool {
	if w.err != nil {
		return false
	}
	if w.impls == nil && !w.init() {
		return false
	}

	for {
		for len(w.entries) > 0 {
			ent := w.entries[0]
			w.entries = w.entries[1:]
			if w.accept(ent) {
				return true
			}
		}

		if len(w.impls) == 0 {
			return false
		}
		w.impl = w.impls[0]
		w.impls = w.impls[1:]
		dir := path.Join(w.root(), w.impl)
		ents, err := fs.ReadDir(w.FS, dir)
		if err != nil {
			// One unreadable implementation does not
			// spoil the others.
			w.skip(dir, err)
			continue
		}
		w.entries = ents
	}
}

// accept considers one entry of the current implementation directory
// and sets w.unit if it is a valid unit.
func (w *Walker) accept(ent fs.DirEntry) bool {
	dir := path.Join(w.root(), w.impl, ent.Name())
	if reserved(ent.Name()) {
		w.skip(dir, ErrReserved)
		return false
	}
	if !ent.IsDir() {
		w.skip(dir, ErrNotDir)
		return false
	}
	params, err := benchparam.Decode(ent.Name())
	if err != nil {
		w.skip(dir, err)
		return false
	}
	report := path.Join(dir, w.reportPath())
	fi, err := fs.Stat(w.FS, report)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = ErrNoReport
		}
		w.skip(dir, err)
		return false
	}
	if fi.IsDir() {
		w.skip(dir, fmt.Errorf("%w: %s is a directory", ErrNoReport, w.reportPath()))
		return false
	}
	w.unit = Unit{w.impl, params, report}
	return true
}

// Unit returns the Unit found by the last call to Scan.
func (w *Walker) Unit() Unit {
	return w.unit
}

// Skipped returns the entries skipped so far.
func (w *Walker) Skipped() []Skip {
	return w.skipped
}

// Err returns the error that stopped Scan, if any. Skipped entries
// are not errors.
func (w *Walker) Err() error {
	return w.err
}
