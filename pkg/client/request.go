/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package client builds operation buffers in the wire format of §6,
// ready for anchoring. It is a convenience for callers constructing
// operations (tests, the demo CLI) — the core itself never builds
// operations, only parses and resolves them.
package client

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/jonnycrunch/sidetree-core/pkg/docutil"
)

// Signer signs the canonical JWS signing input for an encoded payload
// and reports the key id used to do so.
type Signer interface {
	KeyID() string
	Sign(encodedPayload string) ([]byte, error)
}

type header struct {
	Operation   string                 `json:"operation"`
	Kid         string                 `json:"kid"`
	ProofOfWork map[string]interface{} `json:"proofOfWork"`
}

type wireOperation struct {
	Header    header `json:"header"`
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

func buildAndSign(operation string, payload interface{}, signer Signer, proofOfWork map[string]interface{}) ([]byte, error) {
	if signer == nil {
		return nil, errors.New("missing signer")
	}

	if signer.KeyID() == "" {
		return nil, errors.New("kid must be present")
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	encodedPayload := docutil.EncodeToString(payloadBytes)

	sig, err := signer.Sign(encodedPayload)
	if err != nil {
		return nil, err
	}

	if proofOfWork == nil {
		proofOfWork = map[string]interface{}{}
	}

	op := wireOperation{
		Header: header{
			Operation:   operation,
			Kid:         signer.KeyID(),
			ProofOfWork: proofOfWork,
		},
		Payload:   encodedPayload,
		Signature: docutil.EncodeToString(sig),
	}

	return json.Marshal(op)
}

// CreateRequestInfo carries the data needed to build a create operation.
// Create operations are conventionally self-signed by a key named in the
// original document.
type CreateRequestInfo struct {
	Document    map[string]interface{}
	Signer      Signer
	ProofOfWork map[string]interface{}
}

// NewCreateRequest builds a create operation buffer.
func NewCreateRequest(info *CreateRequestInfo) ([]byte, error) {
	if info.Document == nil {
		return nil, errors.New("missing document")
	}

	return buildAndSign(opCreate, info.Document, info.Signer, info.ProofOfWork)
}

// UpdateRequestInfo carries the data needed to build an update operation.
type UpdateRequestInfo struct {
	DID                   string
	OperationNumber       uint32
	PreviousOperationHash string
	Patch                 json.RawMessage
	Signer                Signer
	ProofOfWork           map[string]interface{}
}

type updatePayload struct {
	DID                   string          `json:"did"`
	OperationNumber       uint32          `json:"operationNumber"`
	PreviousOperationHash string          `json:"previousOperationHash"`
	Patch                 json.RawMessage `json:"patch"`
}

// NewUpdateRequest builds an update operation buffer.
func NewUpdateRequest(info *UpdateRequestInfo) ([]byte, error) {
	if info.DID == "" {
		return nil, errors.New("missing did")
	}

	if info.OperationNumber < 1 {
		return nil, errors.New("operationNumber must be >= 1")
	}

	payload := updatePayload{
		DID:                   info.DID,
		OperationNumber:       info.OperationNumber,
		PreviousOperationHash: info.PreviousOperationHash,
		Patch:                 info.Patch,
	}

	return buildAndSign(opUpdate, payload, info.Signer, info.ProofOfWork)
}

// DeleteRequestInfo carries the data needed to build a delete operation.
type DeleteRequestInfo struct {
	DID         string
	Signer      Signer
	ProofOfWork map[string]interface{}
}

type deletePayload struct {
	DID string `json:"did"`
}

// NewDeleteRequest builds a delete operation buffer.
func NewDeleteRequest(info *DeleteRequestInfo) ([]byte, error) {
	if info.DID == "" {
		return nil, errors.New("missing did")
	}

	return buildAndSign(opDelete, deletePayload{DID: info.DID}, info.Signer, info.ProofOfWork)
}

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)
