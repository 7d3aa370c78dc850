/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package docutil

import "strings"

// NamespaceDelimiter separates a DID method namespace from its unique suffix.
const NamespaceDelimiter = ":"

// CalculateUniqueSuffix computes the DID unique suffix for a Create
// operation: the base64url-encoded multihash of the encoded payload's
// ASCII bytes (§4.6.2) — the same hash_input batch.Operation.Hash computes
// for a Create, not the decoded payload.
func CalculateUniqueSuffix(encodedPayload string, multihashCode uint) (string, error) {
	mh, err := ComputeMultihash(multihashCode, []byte(encodedPayload))
	if err != nil {
		return "", err
	}

	return EncodeToString(mh), nil
}

// GetSuffix extracts the unique suffix from a DID string given its
// method namespace, e.g. GetSuffix("did:sidetree", "did:sidetree:abc") == "abc".
func GetSuffix(namespace, did string) string {
	prefix := namespace + NamespaceDelimiter
	if !strings.HasPrefix(did, prefix) {
		return did
	}

	return strings.TrimPrefix(did, prefix)
}

// GetNamespaceAndSuffix splits a DID into its method namespace and unique
// suffix by locating the last namespace delimiter.
func GetNamespaceAndSuffix(did string) (string, string, error) {
	pos := strings.LastIndex(did, NamespaceDelimiter)
	if pos == -1 {
		return "", "", ErrInvalidDID
	}

	return did[:pos], did[pos+1:], nil
}
