/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package patch models the RFC 6902 JSON Patch document carried by an
// Update operation.
package patch

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/pkg/errors"
)

// ErrInvalidPatch is returned when a patch document is not a well-formed
// RFC 6902 JSON Patch array, or fails to apply to a document.
var ErrInvalidPatch = errors.New("invalid patch")

// JSONPatch is a parsed RFC 6902 JSON Patch document: an ordered list of
// patch operations.
type JSONPatch struct {
	raw     json.RawMessage
	decoded jsonpatch.Patch
}

// NewJSONPatch parses s (a JSON-Patch array) into a JSONPatch, validating
// that every entry is a well-formed patch operation.
func NewJSONPatch(s string) (*JSONPatch, error) {
	return FromBytes([]byte(s))
}

// FromBytes parses patch bytes (a JSON-Patch array) into a JSONPatch.
func FromBytes(b []byte) (*JSONPatch, error) {
	decoded, err := jsonpatch.DecodePatch(b)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPatch, err.Error())
	}

	return &JSONPatch{raw: append(json.RawMessage(nil), b...), decoded: decoded}, nil
}

// Bytes returns the patch's original encoded form.
func (p *JSONPatch) Bytes() []byte {
	return p.raw
}

// MarshalJSON implements json.Marshaler, re-emitting the original bytes.
func (p *JSONPatch) MarshalJSON() ([]byte, error) {
	return p.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *JSONPatch) UnmarshalJSON(b []byte) error {
	parsed, err := FromBytes(b)
	if err != nil {
		return err
	}

	*p = *parsed

	return nil
}

// Apply applies the patch to docBytes (a JSON document), returning the
// resulting bytes without mutating docBytes. Each patch operation is
// tested for validity before being applied (strict mode); any invalid
// operation fails the whole patch.
func (p *JSONPatch) Apply(docBytes []byte) ([]byte, error) {
	result, err := p.decoded.Apply(docBytes)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPatch, err.Error())
	}

	return result, nil
}
