/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jws defines the JSON Web Key representation used for signing
// and verification keys embedded in DID Documents, and the canonical
// JWS signing input used by the protocol.
package jws

// Sidetree's only defined curve is SECP256K1, which RFC 7518 does not
// name; by convention it is represented with crv "secp256k1" (some
// implementations use "P-256K"). Neither go-jose nor the Go standard
// library's elliptic curve registry know this curve, so the JWK type
// here is hand-rolled rather than built on an RFC 7518 JWK library.

// JWK is a minimal JSON Web Key, sufficient to represent the EC public
// keys embedded in a DID Document's publicKey entries.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

// Headers represents the (unprotected, in this protocol) header map
// carried alongside a signer; kept for parity with signer implementations
// that attach a "kid" the way a standard JWS protected header would.
type Headers map[string]interface{}

// KeyID returns the "kid" header value, if present.
func (h Headers) KeyID() string {
	kid, ok := h["kid"].(string)
	if !ok {
		return ""
	}

	return kid
}

// SigningInput returns the canonical bytes that are signed: the ASCII
// string "." + encodedPayload. There is no protected header in this
// protocol, so the input is always this two-field concatenation.
func SigningInput(encodedPayload string) []byte {
	return []byte("." + encodedPayload)
}
