/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package docutil provides the multihash and DID-string helpers shared
// by every component that computes or parses an operation hash (§4.6.2).
package docutil

import (
	"crypto"
	"hash"

	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
)

// sha2_256 is the only multihash code this protocol version defines.
const sha2_256 = 18

// ComputeMultihash hashes data with the algorithm named by multihashCode
// and wraps the digest in a self-describing multihash.
func ComputeMultihash(multihashCode uint, data []byte) ([]byte, error) {
	h, err := GetHash(multihashCode)
	if err != nil {
		return nil, err
	}

	if _, err := h.Write(data); err != nil {
		return nil, errors.Wrap(err, "write hash input")
	}

	return multihash.Encode(h.Sum(nil), uint64(multihashCode))
}

// GetHash returns the hash.Hash for multihashCode, or an error if the
// code names an algorithm this protocol version does not support.
func GetHash(multihashCode uint) (hash.Hash, error) {
	switch multihashCode {
	case sha2_256:
		return crypto.SHA256.New(), nil
	default:
		return nil, errors.Errorf("algorithm not supported, unable to compute hash: %d", multihashCode)
	}
}

// IsSupportedMultihash checks to see if the given encoded hash has been hashed using valid multihash code.
func IsSupportedMultihash(encodedMultihash string) bool {
	code, err := GetMultihashCode(encodedMultihash)
	if err != nil {
		return false
	}

	return multihash.ValidCode(code)
}

// IsComputedUsingHashAlgorithm checks to see if the given encoded hash has been hashed using multihash code.
func IsComputedUsingHashAlgorithm(encodedMultihash string, code uint64) bool {
	mhCode, err := GetMultihashCode(encodedMultihash)
	if err != nil {
		return false
	}

	return mhCode == code
}

// GetMultihashCode returns multihash code from encoded multihash.
func GetMultihashCode(encodedMultihash string) (uint64, error) {
	multihashBytes, err := DecodeString(encodedMultihash)
	if err != nil {
		return 0, err
	}

	mh, err := multihash.Decode(multihashBytes)
	if err != nil {
		return 0, err
	}

	return mh.Code, nil
}

// IsValidHash compares encoded content with encoded multihash.
func IsValidHash(encodedContent, encodedMultihash string) error {
	content, err := DecodeString(encodedContent)
	if err != nil {
		return err
	}

	code, err := GetMultihashCode(encodedMultihash)
	if err != nil {
		return err
	}

	computedMultihash, err := ComputeMultihash(uint(code), content)
	if err != nil {
		return err
	}

	encodedComputedMultihash := EncodeToString(computedMultihash)

	if encodedComputedMultihash != encodedMultihash {
		return errors.New("supplied hash doesn't match original content")
	}

	return nil
}
