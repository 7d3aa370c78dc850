/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package document

import (
	"encoding/json"

	"github.com/jonnycrunch/sidetree-core/pkg/patch"
)

// ApplyPatch applies p to doc and returns the resulting document. doc is
// never mutated: the result is built from a freshly marshaled copy.
func ApplyPatch(doc DIDDocument, p *patch.JSONPatch) (DIDDocument, error) {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	patched, err := p.Apply(docBytes)
	if err != nil {
		return nil, err
	}

	return FromBytes(patched)
}
