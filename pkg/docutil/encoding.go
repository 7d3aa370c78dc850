/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package docutil

import "github.com/jonnycrunch/sidetree-core/pkg/encoder"

// EncodeToString encodes bytes into an unpadded base64 URL encoded string.
func EncodeToString(b []byte) string {
	return encoder.EncodeToString(b)
}

// DecodeString decodes an unpadded base64 URL encoded string into bytes.
func DecodeString(s string) ([]byte, error) {
	return encoder.DecodeString(s)
}

// DecodeAsUTF8 decodes a base64url string into a UTF-8 string, failing if
// the decoded bytes are not valid UTF-8.
func DecodeAsUTF8(s string) (string, error) {
	return encoder.DecodeAsUTF8(s)
}
