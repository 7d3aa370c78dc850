/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package operation implements the Operation constructor: parsing and
// well-formedness checking of a raw operation buffer into an immutable
// batch.Operation (§4.6). No signature verification and no semantic
// validation against other operations happens here — that is the
// Operation Processor's concern.
package operation

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/jonnycrunch/sidetree-core/pkg/api/batch"
	"github.com/jonnycrunch/sidetree-core/pkg/docutil"
	"github.com/jonnycrunch/sidetree-core/pkg/document"
	"github.com/jonnycrunch/sidetree-core/pkg/patch"
)

// ErrMalformedOperation is returned when an operation buffer fails JSON
// parsing, schema validation, or payload-schema validation.
var ErrMalformedOperation = errors.New("malformed operation")

// wireOperation mirrors the JSON wire format of §6.
type wireOperation struct {
	Header struct {
		Operation   string                 `json:"operation"`
		Kid         string                 `json:"kid"`
		ProofOfWork map[string]interface{} `json:"proofOfWork"`
	} `json:"header"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

type createPayload = document.DIDDocument

type updatePayload struct {
	DID                   string          `json:"did"`
	OperationNumber       uint32          `json:"operationNumber"`
	PreviousOperationHash string          `json:"previousOperationHash"`
	Patch                 json.RawMessage `json:"patch"`
}

type deletePayload struct {
	DID string `json:"did"`
}

// Parse constructs an Operation from a raw buffer and its anchoring
// context (which may be nil for an operation not yet anchored, e.g. at
// submission time before the ledger assigns it a position).
func Parse(operationBuffer []byte, anchoring *batch.AnchoringContext) (*batch.Operation, error) {
	var wire wireOperation
	if err := json.Unmarshal(operationBuffer, &wire); err != nil {
		return nil, wrapMalformed(err)
	}

	if err := checkWellFormedHeader(&wire); err != nil {
		return nil, err
	}

	opType, err := parseOperationType(wire.Header.Operation)
	if err != nil {
		return nil, err
	}

	decodedPayload, err := docutil.DecodeAsUTF8(wire.Payload)
	if err != nil {
		return nil, wrapMalformed(err)
	}

	signature, err := docutil.DecodeString(wire.Signature)
	if err != nil {
		return nil, wrapMalformed(err)
	}

	op := &batch.Operation{
		OperationBuffer: append([]byte(nil), operationBuffer...),
		Anchoring:       anchoring,
		Type:            opType,
		SigningKeyID:    wire.Header.Kid,
		Signature:       signature,
		EncodedPayload:  wire.Payload,
	}

	switch opType {
	case batch.OperationTypeCreate:
		if err := parseCreatePayload(op, decodedPayload); err != nil {
			return nil, err
		}
	case batch.OperationTypeUpdate:
		if err := parseUpdatePayload(op, decodedPayload); err != nil {
			return nil, err
		}
	case batch.OperationTypeDelete:
		if err := parseDeletePayload(op, decodedPayload); err != nil {
			return nil, err
		}
	case batch.OperationTypeRecover:
		// Reserved: no defined payload semantics (§9). Well-formedness
		// beyond "is this JSON" is intentionally not enforced; resolve
		// never applies a Recover operation.
		if !json.Valid([]byte(decodedPayload)) {
			return nil, wrapMalformed(errors.New("recover payload is not valid JSON"))
		}
	}

	return op, nil
}

func checkWellFormedHeader(wire *wireOperation) error {
	if wire.Header.Kid == "" {
		return wrapMalformed(errors.New("header.kid is required"))
	}

	if wire.Header.ProofOfWork == nil {
		return wrapMalformed(errors.New("header.proofOfWork is required"))
	}

	if wire.Payload == "" {
		return wrapMalformed(errors.New("payload is required"))
	}

	if wire.Signature == "" {
		return wrapMalformed(errors.New("signature is required"))
	}

	return nil
}

func parseOperationType(s string) (batch.OperationType, error) {
	switch s {
	case string(batch.OperationTypeCreate):
		return batch.OperationTypeCreate, nil
	case string(batch.OperationTypeUpdate):
		return batch.OperationTypeUpdate, nil
	case string(batch.OperationTypeDelete):
		return batch.OperationTypeDelete, nil
	case string(batch.OperationTypeRecover):
		return batch.OperationTypeRecover, nil
	default:
		return "", wrapMalformed(errors.Errorf("unknown header.operation value %q", s))
	}
}

func parseCreatePayload(op *batch.Operation, decodedPayload string) error {
	doc, err := document.FromBytes([]byte(decodedPayload))
	if err != nil {
		return wrapMalformed(err)
	}

	if err := document.IsValidOriginalDocument(doc); err != nil {
		return wrapMalformed(err)
	}

	op.Document = doc

	return nil
}

func parseUpdatePayload(op *batch.Operation, decodedPayload string) error {
	var p updatePayload
	if err := json.Unmarshal([]byte(decodedPayload), &p); err != nil {
		return wrapMalformed(err)
	}

	if p.DID == "" {
		return wrapMalformed(errors.New("update payload missing did"))
	}

	if p.OperationNumber < 1 {
		return wrapMalformed(errors.New("update payload operationNumber must be >= 1"))
	}

	if !docutil.IsSupportedMultihash(p.PreviousOperationHash) {
		return wrapMalformed(errors.New("update payload previousOperationHash is required and must be a valid multihash encoding"))
	}

	prevHash, err := docutil.DecodeString(p.PreviousOperationHash)
	if err != nil {
		return wrapMalformed(err)
	}

	jsonPatch, err := patch.FromBytes(p.Patch)
	if err != nil {
		return wrapMalformed(err)
	}

	op.DID = p.DID
	op.OperationNumber = p.OperationNumber
	op.PreviousOperationHash = prevHash
	op.Patch = jsonPatch

	return nil
}

func parseDeletePayload(op *batch.Operation, decodedPayload string) error {
	var p deletePayload
	if err := json.Unmarshal([]byte(decodedPayload), &p); err != nil {
		return wrapMalformed(err)
	}

	if p.DID == "" {
		return wrapMalformed(errors.New("delete payload missing did"))
	}

	op.DeleteDID = p.DID

	return nil
}

func wrapMalformed(err error) error {
	return errors.Wrap(ErrMalformedOperation, err.Error())
}
