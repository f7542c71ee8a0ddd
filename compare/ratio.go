// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/mimcabc/credbench/dataset"
)

// A Pair selects the two implementations of a ratio series.
type Pair struct {
	Numerator, Denominator string
}

func (p Pair) String() string {
	return p.Numerator + "/" + p.Denominator
}

// ParsePair parses a pair written as "numerator/denominator".
func ParsePair(s string) (Pair, error) {
	i := strings.Index(s, "/")
	if i < 0 {
		return Pair{}, fmt.Errorf("pair %q: want numerator/denominator", s)
	}
	p := Pair{s[:i], s[i+1:]}
	if p.Numerator == "" || p.Denominator == "" || strings.Contains(p.Denominator, "/") {
		return Pair{}, fmt.Errorf("pair %q: want numerator/denominator", s)
	}
	return p, nil
}

// A Point is one entry of a ratio Series.
type Point struct {
	Credentials int
	Ratio       float64
}

// Overhead returns the numerator's extra cost over the denominator
// as a percentage. A ratio of 2.5 is an overhead of 150%.
func (pt Point) Overhead() float64 {
	return (pt.Ratio - 1) * 100
}

// A Series is the ratio of two implementations' means at a fixed
// attribute count, indexed by credential count.
type Series struct {
	Pair       Pair
	Attributes int

	// Points are in ascending order of credential count. A
	// credential count is present only if both implementations
	// have a record for it and the ratio is defined.
	Points []Point

	// Undefined lists, in ascending order, the credential counts
	// where both implementations have a record but the
	// denominator's mean is zero and the numerator's is not.
	Undefined []int
}

// Ratios computes the ratio series of pair at the given attribute
// count. Credential counts where either side has no record are
// omitted. Two zero means compare as a ratio of 1. A zero denominator
// under a non-zero numerator has no finite ratio; such counts are
// kept out of Points and listed in Undefined instead, so they remain
// distinguishable from missing records.
func Ratios(d *dataset.Dataset, pair Pair, attributes int) *Series {
	s := &Series{Pair: pair, Attributes: attributes}
	for _, c := range d.CredentialCounts() {
		num, ok := d.Lookup(pair.Numerator, c, attributes)
		if !ok {
			continue
		}
		den, ok := d.Lookup(pair.Denominator, c, attributes)
		if !ok {
			continue
		}
		var r float64
		switch {
		case num == den:
			r = 1
		case den == 0:
			s.Undefined = append(s.Undefined, c)
			continue
		default:
			r = num / den
		}
		s.Points = append(s.Points, Point{c, r})
	}
	return s
}

// AllRatios computes the ratio series of pair at every attribute
// count in d, skipping attribute counts where the pair never has
// records at the same credential count.
func AllRatios(d *dataset.Dataset, pair Pair) []*Series {
	var out []*Series
	for _, a := range d.AttributeCounts() {
		if s := Ratios(d, pair, a); len(s.Points) > 0 || len(s.Undefined) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Lookup returns the ratio at the given credential count and whether
// it is present.
func (s *Series) Lookup(credentials int) (float64, bool) {
	for _, pt := range s.Points {
		if pt.Credentials == credentials {
			return pt.Ratio, true
		}
	}
	return 0, false
}

// GeoMean returns the geometric mean of the series' ratios. It reports
// false if the series is empty or contains a zero ratio.
func (s *Series) GeoMean() (float64, bool) {
	if len(s.Points) == 0 {
		return 0, false
	}
	xs := make([]float64, len(s.Points))
	for i, pt := range s.Points {
		xs[i] = pt.Ratio
	}
	gm := stats.GeoMean(xs)
	if math.IsNaN(gm) || gm == 0 {
		return 0, false
	}
	return gm, true
}

func (s *Series) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s @ %d attrs:", s.Pair, s.Attributes)
	for _, pt := range s.Points {
		fmt.Fprintf(&b, " %d=%.3fx", pt.Credentials, pt.Ratio)
	}
	for _, c := range s.Undefined {
		fmt.Fprintf(&b, " %d=undefined", c)
	}
	if gm, ok := s.GeoMean(); ok {
		fmt.Fprintf(&b, " (geomean %.3fx)", gm)
	}
	return b.String()
}

// WriteRatiosCSV writes the series to w as CSV, one row per point.
func WriteRatiosCSV(w io.Writer, series []*Series) error {
	tab := [][]string{{"numerator", "denominator", "attribute_count", "credential_count", "ratio", "overhead_pct"}}
	for _, s := range series {
		for _, pt := range s.Points {
			tab = append(tab, []string{
				s.Pair.Numerator,
				s.Pair.Denominator,
				strconv.Itoa(s.Attributes),
				strconv.Itoa(pt.Credentials),
				strconv.FormatFloat(pt.Ratio, 'f', -1, 64),
				strconv.FormatFloat(pt.Overhead(), 'f', 2, 64),
			})
		}
	}
	cw := csv.NewWriter(w)
	return cw.WriteAll(tab)
}
