// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchparam

import (
	"errors"
	"math/rand"
	"testing"
)

func TestEncode(t *testing.T) {
	for _, test := range []struct {
		creds, attrs int
		want         string
	}{
		{4, 16, "4creds_16attrs"},
		{32, 4, "32creds_4attrs"},
		{1, 1, "1creds_1attrs"},
		{1024, 128, "1024creds_128attrs"},
	} {
		if got := Encode(test.creds, test.attrs); got != test.want {
			t.Errorf("Encode(%d, %d) = %q, want %q", test.creds, test.attrs, got, test.want)
		}
		p := Params{test.creds, test.attrs}
		if got := p.String(); got != test.want {
			t.Errorf("%+v.String() = %q, want %q", p, got, test.want)
		}
	}
}

func TestDecode(t *testing.T) {
	for _, test := range []struct {
		token string
		want  Params
	}{
		{"4creds_16attrs", Params{4, 16}},
		{"32creds_32attrs", Params{32, 32}},
		{"1creds_100attrs", Params{1, 100}},
	} {
		got, err := Decode(test.token)
		if err != nil {
			t.Errorf("Decode(%q): unexpected error %v", test.token, err)
			continue
		}
		if got != test.want {
			t.Errorf("Decode(%q) = %+v, want %+v", test.token, got, test.want)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, token := range []string{
		"",
		"abc_attrs",
		"4creds",
		"4creds_",
		"4creds_16",
		"creds_16attrs",
		"4creds_attrs",
		"xcreds_16attrs",
		"4creds_16xattrs",
		"0creds_16attrs",
		"4creds_0attrs",
		"-4creds_16attrs",
		"+4creds_16attrs",
		"04creds_16attrs",
		"4creds_16attrs_extra",
		"16attrs_4creds",
		"4 creds_16attrs",
		"99999999999999999999creds_1attrs",
	} {
		p, err := Decode(token)
		if err == nil {
			t.Errorf("Decode(%q) = %+v, want error", token, p)
			continue
		}
		var mte *MalformedTokenError
		if !errors.As(err, &mte) {
			t.Errorf("Decode(%q) error %T, want *MalformedTokenError", token, err)
			continue
		}
		if mte.Token != token {
			t.Errorf("Decode(%q) error names token %q", token, mte.Token)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	check := func(c, a int) {
		got, err := Decode(Encode(c, a))
		if err != nil {
			t.Fatalf("Decode(Encode(%d, %d)): %v", c, a, err)
		}
		if got != (Params{c, a}) {
			t.Fatalf("Decode(Encode(%d, %d)) = %+v", c, a, got)
		}
	}
	for c := 1; c <= 64; c++ {
		for a := 1; a <= 64; a++ {
			check(c, a)
		}
	}
	for i := 0; i < 1000; i++ {
		check(1+r.Intn(1<<30), 1+r.Intn(1<<30))
	}
}
