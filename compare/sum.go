// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compare

import (
	"fmt"
	"strings"

	"github.com/mimcabc/credbench/dataset"
)

// A Total is one entry of a Combined series.
type Total struct {
	Credentials int
	MeanMS      float64
}

// A Combined series is the summed mean of several implementations at a
// fixed attribute count, such as the cost of a show followed by a
// verify.
type Combined struct {
	Implementations []string
	Attributes      int

	// Totals are in ascending order of credential count. A
	// credential count is present only if every implementation has
	// a record for it.
	Totals []Total
}

// ParseSum parses implementations written as "a+b[+c...]".
func ParseSum(s string) ([]string, error) {
	impls := strings.Split(s, "+")
	if len(impls) < 2 {
		return nil, fmt.Errorf("sum %q: want impl+impl", s)
	}
	for _, impl := range impls {
		if impl == "" {
			return nil, fmt.Errorf("sum %q: empty implementation name", s)
		}
	}
	return impls, nil
}

// Sum computes the combined series of impls at the given attribute
// count. Credential counts where any implementation has no record are
// omitted, never counted as zero.
func Sum(d *dataset.Dataset, attributes int, impls ...string) *Combined {
	s := &Combined{Implementations: impls, Attributes: attributes}
	for _, c := range d.CredentialCounts() {
		total, ok := 0.0, len(impls) > 0
		for _, impl := range impls {
			v, found := d.Lookup(impl, c, attributes)
			if !found {
				ok = false
				break
			}
			total += v
		}
		if ok {
			s.Totals = append(s.Totals, Total{c, total})
		}
	}
	return s
}

// Lookup returns the total at the given credential count and whether
// it is present.
func (s *Combined) Lookup(credentials int) (float64, bool) {
	for _, t := range s.Totals {
		if t.Credentials == credentials {
			return t.MeanMS, true
		}
	}
	return 0, false
}

func (s *Combined) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s @ %d attrs:", strings.Join(s.Implementations, "+"), s.Attributes)
	for _, t := range s.Totals {
		fmt.Fprintf(&b, " %d=%sms", t.Credentials, dataset.FormatMillis(t.MeanMS))
	}
	return b.String()
}
