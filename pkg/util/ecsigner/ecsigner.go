/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ecsigner implements the protocol's signer contract over
// SECP256K1: sign(encoded_payload, private_key) -> signature.
package ecsigner

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec"

	"github.com/jonnycrunch/sidetree-core/pkg/jws"
)

// Signer signs the canonical JWS signing input with a SECP256K1 private
// key, identified by a key ID within the target DID Document.
type Signer struct {
	privateKey *btcec.PrivateKey
	kid        string
}

// New creates a Signer for the given private key and signing key ID.
func New(privateKey *btcec.PrivateKey, kid string) *Signer {
	return &Signer{privateKey: privateKey, kid: kid}
}

// KeyID returns the signing key's id within the target DID Document.
func (s *Signer) KeyID() string {
	return s.kid
}

// Headers returns the (empty, in this protocol) header map along with
// the kid, for callers that model signers generically over jws.Headers.
func (s *Signer) Headers() jws.Headers {
	return jws.Headers{"kid": s.kid}
}

// Sign signs ASCII("." + encodedPayload) and returns a DER-encoded
// ECDSA signature over SECP256K1.
func (s *Signer) Sign(encodedPayload string) ([]byte, error) {
	digest := sha256.Sum256(jws.SigningInput(encodedPayload))

	sig, err := s.privateKey.Sign(digest[:])
	if err != nil {
		return nil, err
	}

	return sig.Serialize(), nil
}
