// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mimcabc/credbench/dataset"
)

func mustDataset(t *testing.T, rs ...dataset.Record) *dataset.Dataset {
	t.Helper()
	d, err := dataset.FromRecords(rs)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func testDataset(t *testing.T) *dataset.Dataset {
	return mustDataset(t,
		dataset.Record{Implementation: "impl_x", Credentials: 4, Attributes: 16, MeanMS: 7.28},
		dataset.Record{Implementation: "impl_x", Credentials: 16, Attributes: 16, MeanMS: 20},
		dataset.Record{Implementation: "impl_x", Credentials: 32, Attributes: 16, MeanMS: 40},
		dataset.Record{Implementation: "impl_x", Credentials: 4, Attributes: 4, MeanMS: 3},
		dataset.Record{Implementation: "impl_y", Credentials: 4, Attributes: 16, MeanMS: 2.85},
		dataset.Record{Implementation: "impl_y", Credentials: 16, Attributes: 16, MeanMS: 10},
		dataset.Record{Implementation: "impl_z", Credentials: 8, Attributes: 32, MeanMS: 1.5},
	)
}

func TestPivotCompleteness(t *testing.T) {
	d := testDataset(t)
	p := NewPivot(d)
	if diff := cmp.Diff([]string{"impl_x", "impl_y", "impl_z"}, p.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
	wantRows := []RowKey{{4, 4}, {16, 4}, {16, 16}, {16, 32}, {32, 8}}
	if diff := cmp.Diff(wantRows, p.Rows); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}

	// Every record is a present cell with the record's value.
	for _, r := range d.Records() {
		v, ok := p.Get(RowKey{r.Attributes, r.Credentials}, r.Implementation)
		if !ok || v != r.MeanMS {
			t.Errorf("cell for %v = %v, %v; want %v, true", r.Key(), v, ok, r.MeanMS)
		}
	}
	// And there are no other cells.
	n := 0
	for _, rk := range p.Rows {
		for _, c := range p.Columns {
			if _, ok := p.Get(rk, c); ok {
				n++
				if _, ok := d.Lookup(c, rk.Credentials, rk.Attributes); !ok {
					t.Errorf("extra cell %v/%s", rk, c)
				}
			}
		}
	}
	if n != d.Len() || p.Cells() != d.Len() {
		t.Errorf("pivot has %d cells (Cells()=%d), dataset has %d records", n, p.Cells(), d.Len())
	}

	if v, ok := p.Get(RowKey{16, 32}, "impl_y"); ok {
		t.Errorf("absent cell reported present with value %v", v)
	}
}

func TestPivotColumns(t *testing.T) {
	d := testDataset(t)
	p := NewPivot(d, "impl_y", "impl_x", "impl_y", "impl_unknown")
	if diff := cmp.Diff([]string{"impl_y", "impl_x", "impl_unknown"}, p.Columns); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
	// impl_z's only row must not appear.
	wantRows := []RowKey{{4, 4}, {16, 4}, {16, 16}, {16, 32}}
	if diff := cmp.Diff(wantRows, p.Rows); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}
}

func TestPivotEmpty(t *testing.T) {
	d := mustDataset(t)
	p := NewPivot(d)
	if len(p.Columns) != 0 || len(p.Rows) != 0 || p.Cells() != 0 {
		t.Errorf("pivot of empty dataset = %+v", p)
	}
	var buf strings.Builder
	if err := p.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "attribute_count,credential_count\n"; got != want {
		t.Errorf("CSV = %q, want %q", got, want)
	}
}

func TestPivotCSV(t *testing.T) {
	var buf strings.Builder
	if err := NewPivot(testDataset(t)).WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	want := `attribute_count,credential_count,impl_x,impl_y,impl_z
4,4,3,,
16,4,7.28,2.85,
16,16,20,10,
16,32,40,,
32,8,,,1.5
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("CSV mismatch (-want +got):\n%s", diff)
	}
}

func TestPivotText(t *testing.T) {
	var buf strings.Builder
	if err := NewPivot(testDataset(t), "impl_x", "impl_y").ToText(&buf, 2); err != nil {
		t.Fatal(err)
	}
	want := "" +
		"                 mean_ms\n" +
		"attrs  creds  impl_x  impl_y\n" +
		"    4      4    3.00\n" +
		"   16      4    7.28    2.85\n" +
		"   16     16   20.00   10.00\n" +
		"   16     32   40.00\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("text mismatch (-want +got):\n%s", diff)
	}
}

func TestRatiosScenario(t *testing.T) {
	d := mustDataset(t,
		dataset.Record{Implementation: "impl_x", Credentials: 4, Attributes: 16, MeanMS: 7.28},
		dataset.Record{Implementation: "impl_y", Credentials: 4, Attributes: 16, MeanMS: 2.85},
	)
	s := Ratios(d, Pair{"impl_x", "impl_y"}, 16)
	if len(s.Points) != 1 || s.Points[0].Credentials != 4 {
		t.Fatalf("Points = %v, want one point at 4 credentials", s.Points)
	}
	if got := s.Points[0].Ratio; math.Abs(got-2.5543859649) > 1e-9 {
		t.Errorf("ratio = %v, want 2.5543859649...", got)
	}
}

func TestRatiosOmitMissing(t *testing.T) {
	d := testDataset(t)
	s := Ratios(d, Pair{"impl_x", "impl_y"}, 16)
	want := []Point{{4, 2.5543859649122806}, {16, 2}}
	if diff := cmp.Diff(want, s.Points, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Points mismatch (-want +got):\n%s", diff)
	}
	if r, ok := s.Lookup(32); ok {
		t.Errorf("Lookup(32) = %v, true; want absent", r)
	}

	// Reversed pair, other attribute counts, unknown names.
	if got := Ratios(d, Pair{"impl_y", "impl_x"}, 16).Points; len(got) != 2 || got[1].Ratio != 0.5 {
		t.Errorf("reversed Points = %v", got)
	}
	if got := Ratios(d, Pair{"impl_x", "impl_y"}, 4).Points; len(got) != 0 {
		t.Errorf("Points at 4 attrs = %v, want none", got)
	}
	if got := Ratios(d, Pair{"impl_x", "nope"}, 16).Points; len(got) != 0 {
		t.Errorf("Points against unknown implementation = %v, want none", got)
	}
}

func TestRatiosZero(t *testing.T) {
	d := mustDataset(t,
		dataset.Record{Implementation: "a", Credentials: 1, Attributes: 1, MeanMS: 0},
		dataset.Record{Implementation: "b", Credentials: 1, Attributes: 1, MeanMS: 0},
		dataset.Record{Implementation: "a", Credentials: 2, Attributes: 1, MeanMS: 5},
		dataset.Record{Implementation: "b", Credentials: 2, Attributes: 1, MeanMS: 0},
		dataset.Record{Implementation: "a", Credentials: 3, Attributes: 1, MeanMS: 0},
		dataset.Record{Implementation: "b", Credentials: 3, Attributes: 1, MeanMS: 4},
	)
	s := Ratios(d, Pair{"a", "b"}, 1)
	want := []Point{{1, 1}, {3, 0}}
	if diff := cmp.Diff(want, s.Points); diff != "" {
		t.Errorf("Points mismatch (-want +got):\n%s", diff)
	}
	// Both records exist at 2 credentials, so the gap is reported
	// as undefined rather than missing.
	if diff := cmp.Diff([]int{2}, s.Undefined); diff != "" {
		t.Errorf("Undefined mismatch (-want +got):\n%s", diff)
	}
	if _, ok := s.Lookup(2); ok {
		t.Errorf("Lookup(2) found a point for a zero denominator")
	}
	if got, want := s.String(), "a/b @ 1 attrs: 1=1.000x 3=0.000x 2=undefined"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if all := AllRatios(d, Pair{"a", "b"}); len(all) != 1 || len(all[0].Undefined) != 1 {
		t.Errorf("AllRatios = %v, want one series with one undefined count", all)
	}
	if got := Ratios(d, Pair{"a", "nope"}, 1).Undefined; len(got) != 0 {
		t.Errorf("Undefined against unknown implementation = %v, want none", got)
	}
	if _, ok := s.GeoMean(); ok {
		t.Errorf("GeoMean of series with a zero ratio reported ok")
	}
}

func TestGeoMeanAndOverhead(t *testing.T) {
	s := &Series{Points: []Point{{4, 2}, {16, 8}}}
	gm, ok := s.GeoMean()
	if !ok || math.Abs(gm-4) > 1e-12 {
		t.Errorf("GeoMean = %v, %v; want 4, true", gm, ok)
	}
	if _, ok := new(Series).GeoMean(); ok {
		t.Errorf("GeoMean of empty series reported ok")
	}
	if got := (Point{4, 2.5}).Overhead(); got != 150 {
		t.Errorf("Overhead = %v, want 150", got)
	}
	if got := (Point{4, 0.75}).Overhead(); got != -25 {
		t.Errorf("Overhead = %v, want -25", got)
	}
}

func TestAllRatiosCSV(t *testing.T) {
	d := testDataset(t)
	series := AllRatios(d, Pair{"impl_x", "impl_y"})
	if len(series) != 1 || series[0].Attributes != 16 {
		t.Fatalf("AllRatios = %v", series)
	}
	var buf strings.Builder
	if err := WriteRatiosCSV(&buf, series); err != nil {
		t.Fatal(err)
	}
	want := `numerator,denominator,attribute_count,credential_count,ratio,overhead_pct
impl_x,impl_y,16,4,2.5543859649122806,155.44
impl_x,impl_y,16,16,2,100.00
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("CSV mismatch (-want +got):\n%s", diff)
	}
	if got, want := series[0].String(), "impl_x/impl_y @ 16 attrs: 4=2.554x 16=2.000x (geomean 2.260x)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParsePair(t *testing.T) {
	p, err := ParsePair("multi_credential_batch_verify/non_private_with_batch")
	if err != nil {
		t.Fatal(err)
	}
	if want := (Pair{"multi_credential_batch_verify", "non_private_with_batch"}); p != want {
		t.Errorf("ParsePair = %+v, want %+v", p, want)
	}
	if p.String() != "multi_credential_batch_verify/non_private_with_batch" {
		t.Errorf("String() = %q", p.String())
	}
	for _, bad := range []string{"", "a", "a/", "/b", "a/b/c"} {
		if _, err := ParsePair(bad); err == nil {
			t.Errorf("ParsePair(%q) succeeded", bad)
		}
	}
}

func TestSum(t *testing.T) {
	d := testDataset(t)
	s := Sum(d, 16, "impl_x", "impl_y")
	want := []Total{{4, 10.13}, {16, 30}}
	if diff := cmp.Diff(want, s.Totals, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Totals mismatch (-want +got):\n%s", diff)
	}
	// impl_y has no record at 32 credentials.
	if v, ok := s.Lookup(32); ok {
		t.Errorf("Lookup(32) = %v, true; want absent", v)
	}
	if got := Sum(d, 16, "impl_x", "impl_y", "impl_z").Totals; len(got) != 0 {
		t.Errorf("Totals with an implementation lacking records = %v, want none", got)
	}
	if got := Sum(d, 16).Totals; len(got) != 0 {
		t.Errorf("Totals of no implementations = %v, want none", got)
	}

	d = mustDataset(t,
		dataset.Record{Implementation: "show", Credentials: 4, Attributes: 8, MeanMS: 1.5},
		dataset.Record{Implementation: "verify", Credentials: 4, Attributes: 8, MeanMS: 2.25},
	)
	if got, want := Sum(d, 8, "show", "verify").String(), "show+verify @ 8 attrs: 4=3.75ms"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseSum(t *testing.T) {
	got, err := ParseSum("show+verify")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"show", "verify"}, got); diff != "" {
		t.Errorf("ParseSum mismatch (-want +got):\n%s", diff)
	}
	for _, bad := range []string{"", "show", "show+", "+verify", "a++b"} {
		if _, err := ParseSum(bad); err == nil {
			t.Errorf("ParseSum(%q) succeeded", bad)
		}
	}
}
