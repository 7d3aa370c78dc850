/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package document

import "github.com/pkg/errors"

// IsValidOriginalDocument is the structural predicate for a newly
// created DID Document (§4.5): it must carry at least one public key
// with an id and a type, and no "id" of its own (the DID is derived
// from the document's hash, not asserted by it).
func IsValidOriginalDocument(doc DIDDocument) error {
	if doc.ID() != "" {
		return errors.New("original document must NOT have the id property")
	}

	keys := doc.PublicKeys()
	if len(keys) == 0 {
		return errors.New("original document must define at least one public key")
	}

	for _, pk := range keys {
		if pk.ID() == "" {
			return errors.New("public key id is missing")
		}

		if pk.Type() == "" {
			return errors.New("public key type is missing")
		}

		for _, purpose := range pk.Purpose() {
			if s, ok := purpose.(string); !ok || s == "" {
				return errors.Errorf("public key %q declares an invalid purpose entry", pk.ID())
			}
		}
	}

	return nil
}
