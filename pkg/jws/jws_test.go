/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws_test

import (
	"testing"

	"github.com/btcsuite/btcd/btcec"
	"github.com/stretchr/testify/require"

	"github.com/jonnycrunch/sidetree-core/pkg/encoder"
	"github.com/jonnycrunch/sidetree-core/pkg/jws"
	"github.com/jonnycrunch/sidetree-core/pkg/util/ecsigner"
	"github.com/jonnycrunch/sidetree-core/pkg/util/pubkey"
)

func TestSigningInput(t *testing.T) {
	require.Equal(t, []byte(".abc"), jws.SigningInput("abc"))
}

func TestHeadersKeyID(t *testing.T) {
	require.Equal(t, "key1", jws.Headers{"kid": "key1"}.KeyID())
	require.Equal(t, "", jws.Headers{}.KeyID())
}

func TestSignAndVerify(t *testing.T) {
	privKey, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)

	signer := ecsigner.New(privKey, "key1")

	payload := encoder.EncodeToString([]byte(`{"hello":"world"}`))

	sig, err := signer.Sign(payload)
	require.NoError(t, err)
	require.NotEmpty(t, sig)

	jwk := pubkey.JWKFromPublicKey(privKey.PubKey())
	pub, err := pubkey.GetECKey(jwk)
	require.NoError(t, err)

	require.True(t, jws.Verify(payload, sig, pub))

	// wrong payload
	require.False(t, jws.Verify(encoder.EncodeToString([]byte("tampered")), sig, pub))

	// garbage signature
	require.False(t, jws.Verify(payload, []byte("not a signature"), pub))

	// nil key
	require.False(t, jws.Verify(payload, sig, nil))

	// wrong key
	otherKey, err := btcec.NewPrivateKey(btcec.S256())
	require.NoError(t, err)
	require.False(t, jws.Verify(payload, sig, otherKey.PubKey()))
}
