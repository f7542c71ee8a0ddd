// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dataset assembles benchmark measurements into a sorted,
// de-duplicated table.
//
// A Builder accumulates Records and rejects any measurement
// configuration seen twice. Build freezes the Builder's contents into
// a Dataset, which is never modified afterwards and may be shared
// freely between goroutines.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// A Record is one measurement.
type Record struct {
	Implementation string
	Credentials    int
	Attributes     int
	MeanMS         float64 // mean duration in milliseconds
}

// Key returns the measurement configuration of r.
func (r Record) Key() Key {
	return Key{r.Implementation, r.Credentials, r.Attributes}
}

// A Key identifies a measurement configuration. At most one Record
// per Key exists in a Dataset.
type Key struct {
	Implementation string
	Credentials    int
	Attributes     int
}

func (k Key) String() string {
	return fmt.Sprintf("(%s, %d creds, %d attrs)", k.Implementation, k.Credentials, k.Attributes)
}

// Less orders keys by implementation name, then credential count,
// then attribute count.
func (k Key) Less(o Key) bool {
	if k.Implementation != o.Implementation {
		return k.Implementation < o.Implementation
	}
	if k.Credentials != o.Credentials {
		return k.Credentials < o.Credentials
	}
	return k.Attributes < o.Attributes
}

// A DuplicateError reports a measurement configuration that was added
// to a Builder more than once.
type DuplicateError struct {
	Key Key
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate measurement %s", e.Key)
}

// An InvalidRecordError reports a Record whose fields are out of range.
type InvalidRecordError struct {
	Record Record
	Reason string
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("invalid record %s: %s", e.Record.Key(), e.Reason)
}

// ErrEmpty is reported by Dataset.Warnings when a Dataset has no
// records.
var ErrEmpty = errors.New("dataset is empty")

func validate(r Record) error {
	bad := func(reason string) error {
		return &InvalidRecordError{r, reason}
	}
	switch {
	case r.Implementation == "":
		return bad("empty implementation name")
	case r.Credentials <= 0:
		return bad("credential count must be positive")
	case r.Attributes <= 0:
		return bad("attribute count must be positive")
	case math.IsNaN(r.MeanMS) || math.IsInf(r.MeanMS, 0) || r.MeanMS < 0:
		return bad(fmt.Sprintf("mean %v is not a finite non-negative duration", r.MeanMS))
	}
	return nil
}

// A Builder collects Records into a Dataset.
// The zero Builder is ready to use.
type Builder struct {
	records map[Key]float64

	// err is the first error returned by Add.
	err error
}

// Add adds r to the Builder. It returns a *DuplicateError if a Record
// with the same Key was already added, whether or not the values are
// equal, and an *InvalidRecordError if r is malformed. A failed Add
// also causes Build to fail.
func (b *Builder) Add(r Record) error {
	err := validate(r)
	if err == nil {
		if _, ok := b.records[r.Key()]; ok {
			err = &DuplicateError{r.Key()}
		}
	}
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return err
	}
	if b.records == nil {
		b.records = make(map[Key]float64)
	}
	b.records[r.Key()] = r.MeanMS
	return nil
}

// Build returns the accumulated Records as a Dataset. If any call to
// Add failed, Build returns that error instead.
//
// An empty Builder produces an empty Dataset whose Warnings contain
// ErrEmpty; this is not an error.
func (b *Builder) Build() (*Dataset, error) {
	if b.err != nil {
		return nil, b.err
	}
	keys := make([]Key, 0, len(b.records))
	for k := range b.records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	d := &Dataset{
		records: make([]Record, len(keys)),
		index:   make(map[Key]int, len(keys)),
	}
	for i, k := range keys {
		d.records[i] = Record{k.Implementation, k.Credentials, k.Attributes, b.records[k]}
		d.index[k] = i
	}
	if len(d.records) == 0 {
		d.warnings = append(d.warnings, ErrEmpty)
	}
	return d, nil
}

// FromRecords builds a Dataset from rs in a single step.
func FromRecords(rs []Record) (*Dataset, error) {
	var b Builder
	for _, r := range rs {
		if err := b.Add(r); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// A Dataset is an immutable table of Records sorted by Key.
type Dataset struct {
	records []Record
	index   map[Key]int

	warnings []error
}

// Warnings returns the conditions the caller should report but that
// do not make d unusable.
func (d *Dataset) Warnings() []error {
	return append([]error(nil), d.warnings...)
}

// Len returns the number of records in d.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of d's records in sorted order.
func (d *Dataset) Records() []Record {
	return append([]Record(nil), d.records...)
}

// At returns the i'th record in sorted order.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Lookup returns the mean for the given configuration and whether a
// record exists for it.
func (d *Dataset) Lookup(impl string, credentials, attributes int) (float64, bool) {
	i, ok := d.index[Key{impl, credentials, attributes}]
	if !ok {
		return 0, false
	}
	return d.records[i].MeanMS, true
}

// Implementations returns the distinct implementation names in d, in
// sorted order.
func (d *Dataset) Implementations() []string {
	var out []string
	for i, r := range d.records {
		// Records are sorted by implementation first.
		if i == 0 || d.records[i-1].Implementation != r.Implementation {
			out = append(out, r.Implementation)
		}
	}
	return out
}

// CredentialCounts returns the distinct credential counts in d in
// ascending order.
func (d *Dataset) CredentialCounts() []int {
	return d.distinct(func(r Record) int { return r.Credentials })
}

// AttributeCounts returns the distinct attribute counts in d in
// ascending order.
func (d *Dataset) AttributeCounts() []int {
	return d.distinct(func(r Record) int { return r.Attributes })
}

func (d *Dataset) distinct(f func(Record) int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, r := range d.records {
		if v := f(r); !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// Filter returns the records of d for which keep returns true, in
// sorted order.
func (d *Dataset) Filter(keep func(Record) bool) []Record {
	var out []Record
	for _, r := range d.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
