// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package criterion reads the statistical reports written by the
// Criterion benchmark harness.
//
// Each benchmark writes an estimates document, a JSON object holding
// one Estimate per statistic. All durations in the document are in
// nanoseconds.
package criterion

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
)

// NanosPerMilli is the conversion factor from the report's native
// unit to milliseconds.
const NanosPerMilli = 1e6

var (
	// ErrUnreadableReport indicates a report that could not be
	// read or does not have the shape of an estimates document.
	ErrUnreadableReport = errors.New("unreadable report")

	// ErrMissingMetric indicates a well-formed report that lacks
	// the mean point estimate.
	ErrMissingMetric = errors.New("missing metric field mean.point_estimate")
)

// A ReportError records a failure to extract a metric from the report
// at Path. Err is ErrUnreadableReport or ErrMissingMetric, possibly
// wrapping the underlying cause.
type ReportError struct {
	Path string
	Err  error
}

func (e *ReportError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *ReportError) Unwrap() error {
	return e.Err
}

// A ConfidenceInterval bounds an estimate.
type ConfidenceInterval struct {
	ConfidenceLevel float64 `json:"confidence_level"`
	LowerBound      float64 `json:"lower_bound"`
	UpperBound      float64 `json:"upper_bound"`
}

// An Estimate is one statistic from a report.
//
// PointEstimate is a pointer so that a missing or null field can be
// told apart from a zero duration.
type Estimate struct {
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	PointEstimate      *float64           `json:"point_estimate"`
	StandardError      float64            `json:"standard_error"`
}

// Estimates is a decoded estimates document. Statistics absent from
// the document are nil; Criterion omits Slope for benchmarks with too
// few iterations.
type Estimates struct {
	Mean         *Estimate `json:"mean"`
	Median       *Estimate `json:"median"`
	MedianAbsDev *Estimate `json:"median_abs_dev"`
	Slope        *Estimate `json:"slope"`
	StdDev       *Estimate `json:"std_dev"`
}

// Decode parses an estimates document from r. Anything after the
// document other than white space makes it unreadable.
func Decode(r io.Reader) (*Estimates, error) {
	var est Estimates
	dec := json.NewDecoder(r)
	if err := dec.Decode(&est); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableReport, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after estimates", ErrUnreadableReport)
	}
	return &est, nil
}

// ReadEstimates reads and decodes the estimates document name in fsys.
func ReadEstimates(fsys fs.FS, name string) (*Estimates, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, &ReportError{name, fmt.Errorf("%w: %v", ErrUnreadableReport, err)}
	}
	defer f.Close()
	est, err := Decode(f)
	if err != nil {
		return nil, &ReportError{name, err}
	}
	return est, nil
}

// MeanNanos returns the mean point estimate in nanoseconds.
func (est *Estimates) MeanNanos() (float64, error) {
	if est.Mean == nil || est.Mean.PointEstimate == nil {
		return 0, ErrMissingMetric
	}
	ns := *est.Mean.PointEstimate
	if math.IsNaN(ns) || math.IsInf(ns, 0) || ns < 0 {
		return 0, fmt.Errorf("%w: mean.point_estimate is %v", ErrUnreadableReport, ns)
	}
	return ns, nil
}

// MeanMillis reads the report name in fsys and returns its mean point
// estimate converted to milliseconds. Failures are *ReportError values
// wrapping ErrUnreadableReport or ErrMissingMetric.
func MeanMillis(fsys fs.FS, name string) (float64, error) {
	est, err := ReadEstimates(fsys, name)
	if err != nil {
		return 0, err
	}
	ns, err := est.MeanNanos()
	if err != nil {
		return 0, &ReportError{name, err}
	}
	return ns / NanosPerMilli, nil
}
