/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mocks provides fakes for the core's external collaborators
// (CAS, ledger) and test key material, used throughout this module's
// test suites the way the teacher's pkg/mocks backs its own tests.
package mocks

import (
	"sync"

	"github.com/btcsuite/btcd/btcec"

	"github.com/jonnycrunch/sidetree-core/pkg/api/cas"
	"github.com/jonnycrunch/sidetree-core/pkg/api/protocol"
	"github.com/jonnycrunch/sidetree-core/pkg/api/txn"
	"github.com/jonnycrunch/sidetree-core/pkg/compression"
	"github.com/jonnycrunch/sidetree-core/pkg/docutil"
)

// DefaultNS is the DID method namespace used across this module's tests.
const DefaultNS = "did:sidetree"

// DefaultMultihashCode is the multihash code used across this module's
// tests (SHA-256).
const DefaultMultihashCode = 18

// NewMockCAS returns an empty in-memory CAS.
func NewMockCAS() *CAS {
	return &CAS{store: make(map[string][]byte)}
}

// CAS is an in-memory content-addressed store keyed by the encoded
// multihash of each stored blob, for tests and the demo CLI.
type CAS struct {
	mu          sync.RWMutex
	store       map[string][]byte
	Unavailable bool // when true, Read returns cas.ErrUnavailable regardless of address
}

// Write stores content under its encoded multihash, the way a real CAS
// address is derived, and returns that address.
func (c *CAS) Write(content []byte) string {
	digest, err := docutil.ComputeMultihash(DefaultMultihashCode, content)
	if err != nil {
		panic(err) // DefaultMultihashCode is always supported
	}

	address := docutil.EncodeToString(digest)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[address] = content

	return address
}

// Read implements cas.CAS.
func (c *CAS) Read(address string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Unavailable {
		return nil, cas.ErrUnavailable
	}

	content, ok := c.store[address]
	if !ok {
		return nil, cas.ErrNotFound
	}

	return content, nil
}

// Ledger is an in-memory ledger feed: tests push batches onto Feed and
// the observer drains it.
type Ledger struct {
	Feed chan []txn.SidetreeTxn
}

// NewMockLedger returns a Ledger with a buffered feed channel.
func NewMockLedger() *Ledger {
	return &Ledger{Feed: make(chan []txn.SidetreeTxn, 100)}
}

// RegisterForSidetreeTxn implements the observer's Ledger contract.
func (l *Ledger) RegisterForSidetreeTxn() <-chan []txn.SidetreeTxn {
	return l.Feed
}

// NewMockProtocolRegistry returns a single-version protocol registry
// matching DefaultMultihashCode, suitable for most tests.
func NewMockProtocolRegistry() *protocol.Registry {
	return protocol.NewRegistry(protocol.Protocol{
		StartTransactionTime:         0,
		HashAlgorithmInMultiHashCode: DefaultMultihashCode,
		MaxOperationSize:             2000,
		MaxOperationsPerBatch:        100,
		MaxBatchFileSize:             1000000,
		CompressionAlgorithm:         compression.Gzip,
	})
}

// NewMockProtocolClientProvider returns a ClientProvider backed by
// NewMockProtocolRegistry, regardless of requested namespace.
func NewMockProtocolClientProvider() protocol.ClientProvider {
	return &protocol.SingleNamespaceProvider{Registry: NewMockProtocolRegistry()}
}

// GenerateKeyPair returns a fresh SECP256K1 key pair for test signing.
func GenerateKeyPair() (*btcec.PrivateKey, *btcec.PublicKey, error) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, nil, err
	}

	return priv, priv.PubKey(), nil
}
