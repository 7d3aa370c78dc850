/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package txnhandler assembles the Operations anchored by one ledger
// transaction: it fetches the transaction's batch file from the CAS,
// decompresses it, and parses each entry into a batch.Operation (§6).
package txnhandler

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/jonnycrunch/sidetree-core/pkg/api/batch"
	"github.com/jonnycrunch/sidetree-core/pkg/api/cas"
	"github.com/jonnycrunch/sidetree-core/pkg/api/protocol"
	"github.com/jonnycrunch/sidetree-core/pkg/api/txn"
	"github.com/jonnycrunch/sidetree-core/pkg/docutil"
	"github.com/jonnycrunch/sidetree-core/pkg/operation"
)

type decompressionProvider interface {
	Decompress(alg string, data []byte) ([]byte, error)
}

// OperationProvider assembles batch Operations from a transaction's
// batch file.
type OperationProvider struct {
	cas       cas.CAS
	protocols protocol.ClientProvider
	dp        decompressionProvider
}

// NewOperationProvider returns an OperationProvider reading batch files
// from cas, decompressing with dp, and resolving protocol parameters
// from protocols.
func NewOperationProvider(c cas.CAS, protocols protocol.ClientProvider, dp decompressionProvider) *OperationProvider {
	return &OperationProvider{cas: c, protocols: protocols, dp: dp}
}

// GetTxnOperations reads, decompresses and parses every operation
// anchored by t.
func (h *OperationProvider) GetTxnOperations(t *txn.SidetreeTxn) ([]*batch.Operation, error) {
	registry, err := h.protocols.ForNamespace(t.Namespace)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve protocol registry for namespace %q", t.Namespace)
	}

	p, err := registry.Get(t.TransactionTime)
	if err != nil {
		return nil, errors.Wrap(err, "resolve protocol parameters")
	}

	raw, err := h.cas.Read(t.BatchFileHash)
	if err != nil {
		return nil, errors.Wrapf(err, "read batch file[%s]", t.BatchFileHash)
	}

	if !docutil.IsComputedUsingHashAlgorithm(t.BatchFileHash, uint64(p.HashAlgorithmInMultiHashCode)) {
		return nil, errors.Errorf("batch file address[%s] was not computed using the configured hash algorithm", t.BatchFileHash)
	}

	if err := docutil.IsValidHash(docutil.EncodeToString(raw), t.BatchFileHash); err != nil {
		return nil, errors.Wrapf(err, "batch file[%s] content does not match its address", t.BatchFileHash)
	}

	if uint(len(raw)) > p.MaxBatchFileSize {
		return nil, errors.Errorf("batch file[%s] size %d exceeds maximum size %d", t.BatchFileHash, len(raw), p.MaxBatchFileSize)
	}

	content, err := h.dp.Decompress(p.CompressionAlgorithm, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress batch file[%s] using %q", t.BatchFileHash, p.CompressionAlgorithm)
	}

	var buffers []json.RawMessage
	if err := json.Unmarshal(content, &buffers); err != nil {
		return nil, errors.Wrapf(err, "parse batch file[%s]", t.BatchFileHash)
	}

	if uint(len(buffers)) > p.MaxOperationsPerBatch {
		return nil, errors.Errorf("batch file[%s] contains %d operations, exceeding maximum %d", t.BatchFileHash, len(buffers), p.MaxOperationsPerBatch)
	}

	ops := make([]*batch.Operation, 0, len(buffers))

	for i, buf := range buffers {
		anchoring := &batch.AnchoringContext{
			TransactionTime:   t.TransactionTime,
			TransactionNumber: t.TransactionNumber,
			BatchFileHash:     []byte(t.BatchFileHash),
			OperationIndex:    uint32(i),
		}

		op, err := operation.Parse(buf, anchoring)
		if err != nil {
			return nil, errors.Wrapf(err, "parse operation %d of batch file[%s]", i, t.BatchFileHash)
		}

		ops = append(ops, op)
	}

	return ops, nil
}
