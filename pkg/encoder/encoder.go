/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package encoder provides the URL-safe, unpadded base64 encoding used
// throughout the protocol for operation payloads, deltas and hashes.
package encoder

import (
	"encoding/base64"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrMalformedEncoding is returned when a string fails to decode as
// base64url, or decodes to bytes that are not valid UTF-8 when UTF-8 is
// required.
var ErrMalformedEncoding = errors.New("malformed encoding")

// EncodeToString encodes bytes into an unpadded base64 URL encoded string.
func EncodeToString(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeString decodes an unpadded base64 URL encoded string into bytes.
func DecodeString(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedEncoding, err.Error())
	}

	return b, nil
}

// DecodeAsUTF8 decodes a base64url string and verifies the result is
// valid UTF-8, returning it as a string.
func DecodeAsUTF8(s string) (string, error) {
	b, err := DecodeString(s)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(b) {
		return "", errors.Wrap(ErrMalformedEncoding, "decoded content is not valid UTF-8")
	}

	return string(b), nil
}
