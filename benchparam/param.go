// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchparam encodes and decodes the parameter tokens used to
// name benchmark result directories.
//
// A token has the form
//
//	{credentials}creds_{attributes}attrs
//
// for example "4creds_16attrs". Both counts are positive decimal
// integers written without sign or leading zeros, so every valid
// parameter pair has exactly one token.
package benchparam

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	credsMarker = "creds_"
	attrsMarker = "attrs"
)

// Params is the pair of counts a single benchmark measurement was
// run with.
type Params struct {
	Credentials int // number of credentials exercised
	Attributes  int // number of attributes per credential
}

// String returns the canonical token for p.
func (p Params) String() string {
	return Encode(p.Credentials, p.Attributes)
}

// Encode returns the canonical token for the given counts.
func Encode(credentials, attributes int) string {
	buf := make([]byte, 0, 24)
	buf = strconv.AppendInt(buf, int64(credentials), 10)
	buf = append(buf, credsMarker...)
	buf = strconv.AppendInt(buf, int64(attributes), 10)
	buf = append(buf, attrsMarker...)
	return string(buf)
}

// A MalformedTokenError reports a directory name that is not a valid
// parameter token.
type MalformedTokenError struct {
	Token string
	Err   error
}

func (e *MalformedTokenError) Error() string {
	return fmt.Sprintf("malformed parameter token %q: %v", e.Token, e.Err)
}

func (e *MalformedTokenError) Unwrap() error {
	return e.Err
}

var (
	errNoCreds = errors.New("missing \"" + credsMarker + "\" marker")
	errNoAttrs = errors.New("missing \"" + attrsMarker + "\" suffix")
)

// Decode parses a parameter token. It is the exact inverse of Encode:
// Decode(Encode(c, a)) returns Params{c, a} for all positive c and a.
// Any other input yields a *MalformedTokenError.
func Decode(token string) (Params, error) {
	fail := func(err error) (Params, error) {
		return Params{}, &MalformedTokenError{token, err}
	}

	i := strings.Index(token, credsMarker)
	if i < 0 {
		return fail(errNoCreds)
	}
	credStr, rest := token[:i], token[i+len(credsMarker):]
	if !strings.HasSuffix(rest, attrsMarker) {
		return fail(errNoAttrs)
	}
	attrStr := strings.TrimSuffix(rest, attrsMarker)

	creds, err := parseCount("credential count", credStr)
	if err != nil {
		return fail(err)
	}
	attrs, err := parseCount("attribute count", attrStr)
	if err != nil {
		return fail(err)
	}
	return Params{creds, attrs}, nil
}

// parseCount parses a positive decimal integer in canonical form.
func parseCount(what, s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty %s", what)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%s %q is not a decimal integer", what, s)
		}
	}
	if s[0] == '0' {
		// Covers "0" and non-canonical leading zeros.
		return 0, fmt.Errorf("%s %q is not a positive integer in canonical form", what, s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", what, s, err)
	}
	return n, nil
}
