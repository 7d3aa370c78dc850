/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package pubkey converts the JWK representation of a signing key into a
// usable SECP256K1 public key.
package pubkey

import (
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	"github.com/pkg/errors"

	"github.com/jonnycrunch/sidetree-core/pkg/encoder"
	"github.com/jonnycrunch/sidetree-core/pkg/jws"
)

const (
	ktyEC = "EC"

	crvSecp256k1 = "secp256k1"
	crvP256K     = "P-256K" // Sidetree convention for the same curve
)

// GetECKey parses a JWK into a SECP256K1 public key usable for signature
// verification.
func GetECKey(jwk *jws.JWK) (*btcec.PublicKey, error) {
	if jwk == nil {
		return nil, errors.New("public key is nil")
	}

	if jwk.Kty != ktyEC {
		return nil, errors.Errorf("unsupported key type: %s", jwk.Kty)
	}

	if jwk.Crv != crvSecp256k1 && jwk.Crv != crvP256K {
		return nil, errors.Errorf("unsupported curve: %s (only SECP256K1 is defined)", jwk.Crv)
	}

	x, err := decodeCoordinate(jwk.X)
	if err != nil {
		return nil, errors.Wrap(err, "decode x coordinate")
	}

	y, err := decodeCoordinate(jwk.Y)
	if err != nil {
		return nil, errors.Wrap(err, "decode y coordinate")
	}

	pub := &btcec.PublicKey{
		Curve: btcec.S256(),
		X:     x,
		Y:     y,
	}

	if !btcec.S256().IsOnCurve(pub.X, pub.Y) {
		return nil, errors.New("public key is not on the SECP256K1 curve")
	}

	return pub, nil
}

// JWKFromPublicKey converts a SECP256K1 public key into its JWK form.
func JWKFromPublicKey(pub *btcec.PublicKey) *jws.JWK {
	return &jws.JWK{
		Kty: ktyEC,
		Crv: crvSecp256k1,
		X:   encodeCoordinate(pub.X),
		Y:   encodeCoordinate(pub.Y),
	}
}

func decodeCoordinate(s string) (*big.Int, error) {
	b, err := encoder.DecodeString(s)
	if err != nil {
		return nil, err
	}

	return new(big.Int).SetBytes(b), nil
}

func encodeCoordinate(n *big.Int) string {
	return encoder.EncodeToString(n.Bytes())
}
