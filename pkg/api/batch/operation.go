/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package batch defines the canonical, immutable Operation value and the
// ledger anchoring metadata that accompanies it once ingested.
package batch

import (
	"github.com/pkg/errors"

	"github.com/jonnycrunch/sidetree-core/pkg/api/protocol"
	"github.com/jonnycrunch/sidetree-core/pkg/docutil"
	"github.com/jonnycrunch/sidetree-core/pkg/document"
	"github.com/jonnycrunch/sidetree-core/pkg/patch"
)

// OperationType is the tagged variant of a DID mutation operation.
type OperationType string

const (
	// OperationTypeCreate captures the "create" operation type.
	OperationTypeCreate OperationType = "create"

	// OperationTypeUpdate captures the "update" operation type.
	OperationTypeUpdate OperationType = "update"

	// OperationTypeDelete captures the "delete" operation type.
	OperationTypeDelete OperationType = "delete"

	// OperationTypeRecover captures the "recover" operation type. Its
	// payload semantics are reserved; see the Operation Processor for
	// the documented gap.
	OperationTypeRecover OperationType = "recover"
)

// ErrHashTimeUnknown is returned when an operation hash is requested for
// an operation that was never anchored.
var ErrHashTimeUnknown = errors.New("cannot compute operation hash: transaction time unknown")

// AnchoringContext is the ledger-supplied envelope accompanying every
// ingested operation. (TransactionNumber, OperationIndex) is globally
// unique and totally ordered.
type AnchoringContext struct {
	TransactionTime   uint64
	TransactionNumber uint64
	BatchFileHash     []byte
	OperationIndex    uint32
}

// Less orders two anchoring contexts by (TransactionNumber, OperationIndex),
// the protocol's total order over anchored operations.
func (a AnchoringContext) Less(other AnchoringContext) bool {
	if a.TransactionNumber != other.TransactionNumber {
		return a.TransactionNumber < other.TransactionNumber
	}

	return a.OperationIndex < other.OperationIndex
}

// Operation is the immutable, parsed representation of one anchored
// operation. It is constructed once, by pkg/operation, and never mutated.
type Operation struct {
	// OperationBuffer is the original raw bytes, preserved byte-for-byte:
	// hashing of non-Create operations is defined over this buffer.
	OperationBuffer []byte

	// Anchoring is nil until the operation has been anchored on the
	// ledger; Hash and Create's UniqueSuffix require it.
	Anchoring *AnchoringContext

	Type OperationType

	// SigningKeyID identifies a key within the target DID Document.
	SigningKeyID string

	// Signature is the opaque signature bytes over the JWS signing input.
	Signature []byte

	// EncodedPayload is the base64url-encoded payload exactly as received.
	EncodedPayload string

	// Document is populated for Create operations: the original DID
	// Document supplied in the payload.
	Document document.DIDDocument

	// DID, OperationNumber, PreviousOperationHash and Patch are
	// populated for Update operations.
	DID                   string
	OperationNumber       uint32
	PreviousOperationHash []byte
	Patch                 *patch.JSONPatch

	// DeleteDID is populated for Delete operations.
	DeleteDID string
}

// Hash computes the operation hash per §4.6.2: the multihash of the
// encoded payload for Create operations, or of the full operation buffer
// for every other type, using the hash algorithm in force at the
// operation's anchoring time.
func (op *Operation) Hash(protocols *protocol.Registry) (string, error) {
	if op.Anchoring == nil {
		return "", ErrHashTimeUnknown
	}

	p, err := protocols.Get(op.Anchoring.TransactionTime)
	if err != nil {
		return "", err
	}

	if op.Type == OperationTypeCreate {
		return docutil.CalculateUniqueSuffix(op.EncodedPayload, p.HashAlgorithmInMultiHashCode)
	}

	digest, err := docutil.ComputeMultihash(p.HashAlgorithmInMultiHashCode, op.OperationBuffer)
	if err != nil {
		return "", err
	}

	return docutil.EncodeToString(digest), nil
}

// UniqueSuffix returns the DID unique suffix this operation applies to.
// For Create operations this requires a protocol lookup, since the
// suffix *is* the operation hash; for others it is read directly from
// the embedded DID.
func (op *Operation) UniqueSuffix(protocols *protocol.Registry) (string, error) {
	switch op.Type {
	case OperationTypeCreate:
		return op.Hash(protocols)
	case OperationTypeUpdate:
		_, suffix, err := docutil.GetNamespaceAndSuffix(op.DID)
		return suffix, err
	case OperationTypeDelete:
		_, suffix, err := docutil.GetNamespaceAndSuffix(op.DeleteDID)
		return suffix, err
	default:
		return "", errors.Errorf("cannot compute unique suffix for operation type %q", op.Type)
	}
}
