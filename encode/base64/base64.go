// Copyright (c) 2026 WorkHub Authors.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package base64 implements the base64 encoding of all binary cryptographic
// fields of WorkHub (ciphertexts, IVs, wrapped keys and public keys).
package base64

import (
	"encoding/base64"
	"strings"
)

// base64Encoding defines the base64 encoding used in WorkHub.
var base64Encoding = base64.StdEncoding

// Encode returns the base64 encoding of src without line breaks.
func Encode(src []byte) string {
	return base64Encoding.EncodeToString(src)
}

// Decode returns the bytes represented by the base64 string s.
// Line breaks and other whitespace are ignored, mobile clients insert them
// every 76 characters.
func Decode(s string) ([]byte, error) {
	if strings.ContainsAny(s, " \t\r\n") {
		s = strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\t', '\r', '\n':
				return -1
			}
			return r
		}, s)
	}
	return base64Encoding.DecodeString(s)
}
