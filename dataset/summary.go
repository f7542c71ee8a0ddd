// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"fmt"
	"io"
	"strconv"

	"github.com/aclements/go-moremath/stats"
	"github.com/mimcabc/credbench/internal/texttab"
)

// A Summary describes the shape of a Dataset.
type Summary struct {
	Records          int
	Implementations  []string
	CredentialCounts []int
	AttributeCounts  []int

	// MinMS and MaxMS bound the measured means. They are zero
	// for an empty Dataset.
	MinMS, MaxMS float64
}

// Summarize returns the Summary of d.
func (d *Dataset) Summarize() Summary {
	s := Summary{
		Records:          d.Len(),
		Implementations:  d.Implementations(),
		CredentialCounts: d.CredentialCounts(),
		AttributeCounts:  d.AttributeCounts(),
	}
	if d.Len() > 0 {
		xs := make([]float64, d.Len())
		for i, r := range d.records {
			xs[i] = r.MeanMS
		}
		s.MinMS, s.MaxMS = stats.Sample{Xs: xs}.Bounds()
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d records; implementations %v; credential counts %v; attribute counts %v; mean %s..%s ms",
		s.Records, s.Implementations, s.CredentialCounts, s.AttributeCounts,
		FormatMillis(s.MinMS), FormatMillis(s.MaxMS))
}

// ToText writes d to w as an aligned text table with mean durations
// rounded to the given number of decimal places.
func (d *Dataset) ToText(w io.Writer, prec int) error {
	var t texttab.Table
	t.Row()
	for _, h := range Header {
		t.Cell(h)
	}
	for _, r := range d.records {
		t.Row().
			Cell(r.Implementation).
			Cell(strconv.Itoa(r.Credentials), texttab.Right).
			Cell(strconv.Itoa(r.Attributes), texttab.Right).
			Cell(strconv.FormatFloat(r.MeanMS, 'f', prec, 64), texttab.Right)
	}
	return t.Format(w)
}
