/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package document implements the Document Rules component: validating a
// newly created DID Document and applying JSON Patches to produce new
// document versions.
package document

import (
	"encoding/json"
	"io"
	"io/ioutil"
)

// DIDDocument is a generic, loosely-typed DID Document. Sidetree DID
// methods do not constrain document contents beyond the fields this
// package inspects, so the underlying representation is a JSON object.
type DIDDocument map[string]interface{}

// FromBytes parses raw JSON bytes into a DIDDocument.
func FromBytes(data []byte) (DIDDocument, error) {
	doc := make(DIDDocument)

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// DidDocumentFromBytes is an alias for FromBytes, kept for call sites
// that spell out the full "DidDocument" name.
func DidDocumentFromBytes(data []byte) (DIDDocument, error) {
	return FromBytes(data)
}

// DIDDocumentFromReader reads and parses a DIDDocument from r.
func DIDDocumentFromReader(r io.Reader) (DIDDocument, error) {
	bytes, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return FromBytes(bytes)
}

// ID returns the document's "id" field, or "" if absent.
func (doc DIDDocument) ID() string {
	return stringValue(doc, "id")
}

// Context returns the document's "@context" entries.
func (doc DIDDocument) Context() []interface{} {
	return interfaceArray(doc["@context"])
}

// JSONLdObject returns the document as a generic JSON-LD object, i.e.
// itself.
func (doc DIDDocument) JSONLdObject() map[string]interface{} {
	return doc
}

// PublicKey is one entry of a DID Document's publicKey array.
type PublicKey map[string]interface{}

// ID returns the public key's id.
func (pk PublicKey) ID() string {
	return stringValue(pk, "id")
}

// Type returns the public key's type.
func (pk PublicKey) Type() string {
	return stringValue(pk, "type")
}

// Purpose returns the public key's declared purposes.
func (pk PublicKey) Purpose() []interface{} {
	return interfaceArray(pk["purpose"])
}

// JWK returns the public key's jwk object, if any.
func (pk PublicKey) JWK() map[string]interface{} {
	m, ok := pk["jwk"].(map[string]interface{})
	if !ok {
		return nil
	}

	return m
}

// PublicKeys returns the document's publicKey array, skipping the field
// entirely (returning an empty slice) if it is missing or malformed.
func (doc DIDDocument) PublicKeys() []PublicKey {
	raw, ok := doc["publicKey"].([]interface{})
	if !ok {
		return []PublicKey{}
	}

	keys := make([]PublicKey, 0, len(raw))

	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return []PublicKey{}
		}

		keys = append(keys, PublicKey(m))
	}

	return keys
}

// PublicKey looks up a single public key by id, as required for
// signature verification (§4.6.4, §4.7.4).
func (doc DIDDocument) PublicKey(id string) (PublicKey, bool) {
	for _, pk := range doc.PublicKeys() {
		if pk.ID() == id {
			return pk, true
		}
	}

	return nil, false
}

// Service is one entry of a DID Document's service array.
type Service map[string]interface{}

// Services returns the document's service array, or an empty slice if
// missing or malformed.
func (doc DIDDocument) Services() []Service {
	raw, ok := doc["service"].([]interface{})
	if !ok {
		return []Service{}
	}

	services := make([]Service, 0, len(raw))

	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return []Service{}
		}

		services = append(services, Service(m))
	}

	return services
}

// Authentication returns the document's authentication references.
func (doc DIDDocument) Authentication() []interface{} {
	return interfaceArray(doc["authentication"])
}

// AssertionMethod returns the document's assertionMethod references.
func (doc DIDDocument) AssertionMethod() []interface{} {
	return interfaceArray(doc["assertionMethod"])
}

// AgreementKey returns the document's keyAgreement references.
func (doc DIDDocument) AgreementKey() []interface{} {
	return interfaceArray(doc["keyAgreement"])
}

// DelegationKey returns the document's capabilityDelegation references.
func (doc DIDDocument) DelegationKey() []interface{} {
	return interfaceArray(doc["capabilityDelegation"])
}

// InvocationKey returns the document's capabilityInvocation references.
func (doc DIDDocument) InvocationKey() []interface{} {
	return interfaceArray(doc["capabilityInvocation"])
}

func stringValue(doc map[string]interface{}, key string) string {
	s, ok := doc[key].(string)
	if !ok {
		return ""
	}

	return s
}

func interfaceArray(v interface{}) []interface{} {
	arr, ok := v.([]interface{})
	if !ok {
		return []interface{}{}
	}

	return arr
}
