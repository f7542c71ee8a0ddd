// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Header is the column header of the CSV form of a Dataset.
var Header = []string{"implementation", "credential_count", "attribute_count", "mean_ms"}

// FormatMillis formats a duration in milliseconds with the fewest
// digits that represent it exactly.
func FormatMillis(ms float64) string {
	return strconv.FormatFloat(ms, 'f', -1, 64)
}

// WriteCSV writes d to w as CSV, one row per record in sorted order,
// preceded by Header. The output depends only on the contents of d.
func (d *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range d.records {
		row := []string{
			r.Implementation,
			strconv.Itoa(r.Credentials),
			strconv.Itoa(r.Attributes),
			FormatMillis(r.MeanMS),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a Dataset in the form written by WriteCSV. Rows may be
// in any order; they are checked for duplicates exactly as by Builder.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	hdr, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reading dataset: missing header")
	} else if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	for i, h := range Header {
		if hdr[i] != h {
			return nil, fmt.Errorf("reading dataset: column %d is %q, want %q", i+1, hdr[i], h)
		}
	}

	var b Builder
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("reading dataset: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("reading dataset: line %d: %w", line, err)
		}
		if err := b.Add(rec); err != nil {
			return nil, fmt.Errorf("reading dataset: line %d: %w", line, err)
		}
	}
	return b.Build()
}

func parseRow(row []string) (Record, error) {
	creds, err := strconv.Atoi(row[1])
	if err != nil {
		return Record{}, fmt.Errorf("bad credential_count %q", row[1])
	}
	attrs, err := strconv.Atoi(row[2])
	if err != nil {
		return Record{}, fmt.Errorf("bad attribute_count %q", row[2])
	}
	mean, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad mean_ms %q", row[3])
	}
	return Record{row[0], creds, attrs, mean}, nil
}
