/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package processor implements the Operation Processor: the component
// that indexes anchored operations as they are ingested and, on demand,
// deterministically reconstructs a DID Document's current state from
// them (§4.7). Process is intentionally dumb: it only files an operation
// under its DID's bucket. Every correctness rule - which Create wins,
// which Updates chain, whether a Delete takes effect - lives in Resolve,
// so that calling Process in any order, any number of times, never
// changes what Resolve returns.
package processor

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/jonnycrunch/sidetree-core/pkg/api/batch"
	"github.com/jonnycrunch/sidetree-core/pkg/api/protocol"
	"github.com/jonnycrunch/sidetree-core/pkg/docutil"
	"github.com/jonnycrunch/sidetree-core/pkg/document"
	"github.com/jonnycrunch/sidetree-core/pkg/jws"
	"github.com/jonnycrunch/sidetree-core/pkg/util/pubkey"
)

// ErrNotAnchored is returned by Process when given an operation with no
// anchoring context: only anchored operations carry the total order that
// indexing depends on.
var ErrNotAnchored = errors.New("operation has not been anchored")

// ErrDIDNotFound names the case where no validly-signed Create operation
// produces the requested unique suffix. Resolve does not return it: it
// reports that case through its boolean result with a nil error.
var ErrDIDNotFound = errors.New("did not found")

type anchorKey struct {
	txn   uint64
	index uint32
}

func keyOf(a *batch.AnchoringContext) anchorKey {
	return anchorKey{txn: a.TransactionNumber, index: a.OperationIndex}
}

// opBucket holds every operation observed for one DID unique suffix,
// partitioned by type. Updates are additionally indexed by the encoded
// hash of the operation they claim as predecessor, since that is how
// Resolve walks the chain.
type opBucket struct {
	creates        []*batch.Operation
	updatesByPrior map[string][]*batch.Operation
	deletes        []*batch.Operation
	seen           map[anchorKey]bool
}

func newOpBucket() *opBucket {
	return &opBucket{updatesByPrior: make(map[string][]*batch.Operation), seen: make(map[anchorKey]bool)}
}

// OperationProcessor indexes anchored operations and resolves DID
// Documents from them. It holds no document cache: every Resolve call
// rebuilds the state from scratch, which is what makes it safe to call
// after a Rollback or out of ingestion order.
type OperationProcessor struct {
	mu        sync.RWMutex
	protocols *protocol.Registry
	buckets   map[string]*opBucket
}

// New returns an OperationProcessor that resolves protocol parameters
// (hash algorithm, etc.) from protocols.
func New(protocols *protocol.Registry) *OperationProcessor {
	return &OperationProcessor{protocols: protocols, buckets: make(map[string]*opBucket)}
}

// ClientProvider resolves the OperationProcessor for a given DID method
// namespace, mirroring protocol.ClientProvider for deployments that
// process more than one namespace.
type ClientProvider interface {
	ForNamespace(namespace string) (*OperationProcessor, error)
}

// SingleNamespaceProvider is a ClientProvider backed by one
// OperationProcessor, returned regardless of the requested namespace.
type SingleNamespaceProvider struct {
	Processor *OperationProcessor
}

// ForNamespace implements ClientProvider.
func (p *SingleNamespaceProvider) ForNamespace(_ string) (*OperationProcessor, error) {
	if p.Processor == nil {
		return nil, errors.New("operation processor not configured")
	}

	return p.Processor, nil
}

// Process indexes op under its DID's bucket. It is idempotent: indexing
// the same anchored operation twice has no additional effect.
func (p *OperationProcessor) Process(op *batch.Operation) error {
	if op.Anchoring == nil {
		return ErrNotAnchored
	}

	if op.Type == batch.OperationTypeRecover {
		// Recover payload semantics are reserved (§9): the operation is
		// accepted but not indexed, and Resolve never consults it.
		return nil
	}

	suffix, err := op.UniqueSuffix(p.protocols)
	if err != nil {
		return errors.Wrap(err, "compute unique suffix")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket, ok := p.buckets[suffix]
	if !ok {
		bucket = newOpBucket()
		p.buckets[suffix] = bucket
	}

	ak := keyOf(op.Anchoring)
	if bucket.seen[ak] {
		return nil
	}

	bucket.seen[ak] = true

	switch op.Type {
	case batch.OperationTypeCreate:
		bucket.creates = append(bucket.creates, op)
	case batch.OperationTypeUpdate:
		key := docutil.EncodeToString(op.PreviousOperationHash)
		bucket.updatesByPrior[key] = append(bucket.updatesByPrior[key], op)
	case batch.OperationTypeDelete:
		bucket.deletes = append(bucket.deletes, op)
	case batch.OperationTypeRecover:
		// Not reached: Process returns before indexing a Recover
		// operation.
	}

	return nil
}

// Rollback discards every indexed operation anchored at or after
// transactionNumber, for every DID. It is used when the ledger reports
// a reorg: the discarded operations may be re-anchored (possibly
// differently) and re-submitted to Process.
func (p *OperationProcessor) Rollback(transactionNumber uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for suffix, bucket := range p.buckets {
		bucket.creates = filterOps(bucket.creates, transactionNumber)
		bucket.deletes = filterOps(bucket.deletes, transactionNumber)

		for key, ops := range bucket.updatesByPrior {
			remaining := filterOps(ops, transactionNumber)
			if len(remaining) == 0 {
				delete(bucket.updatesByPrior, key)
			} else {
				bucket.updatesByPrior[key] = remaining
			}
		}

		for ak := range bucket.seen {
			if ak.txn >= transactionNumber {
				delete(bucket.seen, ak)
			}
		}

		if len(bucket.creates) == 0 && len(bucket.deletes) == 0 && len(bucket.updatesByPrior) == 0 {
			delete(p.buckets, suffix)
		}
	}

	return nil
}

func filterOps(ops []*batch.Operation, transactionNumber uint64) []*batch.Operation {
	kept := ops[:0:0]

	for _, op := range ops {
		if op.Anchoring.TransactionNumber < transactionNumber {
			kept = append(kept, op)
		}
	}

	return kept
}

// Resolve reconstructs the current DID Document for did, per §4.7.4:
// select the winning Create, extend it with every validly-chained
// Update, and tombstone the result if a validly-signed Delete is found.
// The second return value is false if the DID has no resolvable state
// (no valid Create, or it has been deleted).
func (p *OperationProcessor) Resolve(did string) (document.DIDDocument, bool, error) {
	suffix := did

	if ns, s, err := docutil.GetNamespaceAndSuffix(did); err == nil {
		_ = ns
		suffix = s
	}

	p.mu.RLock()
	bucket, ok := p.buckets[suffix]
	if !ok {
		p.mu.RUnlock()
		return nil, false, nil
	}

	creates := append([]*batch.Operation(nil), bucket.creates...)
	deletes := append([]*batch.Operation(nil), bucket.deletes...)
	updatesByPrior := make(map[string][]*batch.Operation, len(bucket.updatesByPrior))

	for k, ops := range bucket.updatesByPrior {
		updatesByPrior[k] = append([]*batch.Operation(nil), ops...)
	}

	p.mu.RUnlock()

	create, createHash, err := p.selectCreate(creates, suffix)
	if err != nil {
		return nil, false, err
	}

	if create == nil {
		return nil, false, nil
	}

	doc := create.Document
	currentHash := createHash
	opNumber := uint32(0)

	for {
		next, nextHash, found := p.selectNextUpdate(updatesByPrior, currentHash, opNumber, doc)
		if !found {
			break
		}

		patched, err := document.ApplyPatch(doc, next.Patch)
		if err != nil {
			// A patch that fails to apply against the current state does
			// not abort resolution; the chain simply stops here, as if
			// the update had never been found.
			break
		}

		doc = patched
		currentHash = nextHash
		opNumber = next.OperationNumber
	}

	if p.hasValidDelete(deletes, did, doc) {
		return nil, false, nil
	}

	return doc, true, nil
}

// selectCreate returns the winning Create operation: among those whose
// own hash equals suffix and whose embedded signature verifies against
// their own document, the one anchored earliest.
func (p *OperationProcessor) selectCreate(creates []*batch.Operation, suffix string) (*batch.Operation, []byte, error) {
	var winner *batch.Operation

	for _, op := range creates {
		hash, err := op.Hash(p.protocols)
		if err != nil {
			continue
		}

		if hash != suffix {
			continue
		}

		if !verifySignature(op.Document, op.SigningKeyID, op.EncodedPayload, op.Signature) {
			continue
		}

		if winner == nil || op.Anchoring.Less(*winner.Anchoring) {
			winner = op
		}
	}

	if winner == nil {
		return nil, nil, nil
	}

	hash, err := winner.Hash(p.protocols)
	if err != nil {
		return nil, nil, err
	}

	decoded, err := docutil.DecodeString(hash)
	if err != nil {
		return nil, nil, err
	}

	return winner, decoded, nil
}

// selectNextUpdate returns the winning candidate for the step following
// currentHash/opNumber: among Updates chained from currentHash whose
// operationNumber is exactly opNumber+1 and whose signature verifies
// against a key in doc, the one anchored earliest.
func (p *OperationProcessor) selectNextUpdate(updatesByPrior map[string][]*batch.Operation, currentHash []byte, opNumber uint32, doc document.DIDDocument) (*batch.Operation, []byte, bool) {
	candidates := updatesByPrior[docutil.EncodeToString(currentHash)]

	var winner *batch.Operation

	for _, op := range candidates {
		if op.OperationNumber != opNumber+1 {
			continue
		}

		if !verifySignature(doc, op.SigningKeyID, op.EncodedPayload, op.Signature) {
			continue
		}

		if winner == nil || op.Anchoring.Less(*winner.Anchoring) {
			winner = op
		}
	}

	if winner == nil {
		return nil, nil, false
	}

	hash, err := winner.Hash(p.protocols)
	if err != nil {
		return nil, nil, false
	}

	decoded, err := docutil.DecodeString(hash)
	if err != nil {
		return nil, nil, false
	}

	return winner, decoded, true
}

// hasValidDelete reports whether any Delete operation targeting did
// carries a valid signature against doc, the document state reached
// after applying every valid Update. A Delete is terminal: once found
// valid it tombstones the DID regardless of its anchoring position
// relative to the last applied Update.
func (p *OperationProcessor) hasValidDelete(deletes []*batch.Operation, did string, doc document.DIDDocument) bool {
	for _, op := range deletes {
		if op.DeleteDID != did {
			continue
		}

		if verifySignature(doc, op.SigningKeyID, op.EncodedPayload, op.Signature) {
			return true
		}
	}

	return false
}

func verifySignature(doc document.DIDDocument, keyID, encodedPayload string, signature []byte) bool {
	pk, ok := doc.PublicKey(keyID)
	if !ok {
		return false
	}

	jwk, err := jwkFromMap(pk.JWK())
	if err != nil {
		return false
	}

	ecKey, err := pubkey.GetECKey(jwk)
	if err != nil {
		return false
	}

	return jws.Verify(encodedPayload, signature, ecKey)
}

func jwkFromMap(m map[string]interface{}) (*jws.JWK, error) {
	if m == nil {
		return nil, errors.New("missing jwk")
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}

	var jwk jws.JWK
	if err := json.Unmarshal(raw, &jwk); err != nil {
		return nil, err
	}

	return &jwk, nil
}
