/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec"
)

// Verify reports whether signature is a valid SECP256K1 signature by
// pubKey over ASCII("." + encodedPayload). It never returns an error:
// any malformed signature or mismatched key is simply "not verified",
// per the protocol's Cryptography contract.
func Verify(encodedPayload string, signature []byte, pubKey *btcec.PublicKey) bool {
	if pubKey == nil || len(signature) == 0 {
		return false
	}

	sig, err := btcec.ParseDERSignature(signature, btcec.S256())
	if err != nil {
		return false
	}

	digest := sha256.Sum256(SigningInput(encodedPayload))

	return sig.Verify(digest[:], pubKey)
}
