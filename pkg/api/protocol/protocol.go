/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package protocol defines the process-wide protocol parameter table and
// the registry that resolves parameters in force at a given ledger time.
package protocol

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Protocol holds the parameters in force starting at a given transaction
// time.
type Protocol struct {
	// StartTransactionTime is the ledger time at which this entry
	// becomes effective.
	StartTransactionTime uint64

	// HashAlgorithmInMultiHashCode is the multihash code used to compute
	// operation hashes and DID unique suffixes under this protocol version.
	HashAlgorithmInMultiHashCode uint

	// MaxOperationSize is the maximum size, in bytes, of a single
	// operation buffer.
	MaxOperationSize uint

	// MaxOperationsPerBatch is the maximum number of operations allowed
	// in a single anchored batch.
	MaxOperationsPerBatch uint

	// MaxBatchFileSize is the maximum size, in bytes, of a compressed
	// batch file read from the CAS.
	MaxBatchFileSize uint

	// CompressionAlgorithm names the algorithm (from pkg/compression's
	// registry) that a batch file is compressed with under this protocol
	// version.
	CompressionAlgorithm string
}

// ErrNoProtocolConfigured is returned when no protocol entry applies to
// the requested transaction time.
var ErrNoProtocolConfigured = errors.New("no protocol configured for transaction time")

// Registry is a process-wide, read-only (once built by NewRegistry) table
// of protocol versions ordered by StartTransactionTime.
type Registry struct {
	mu        sync.RWMutex
	protocols []Protocol
}

// NewRegistry builds a Registry from an unordered set of protocol
// versions, sorting them by StartTransactionTime.
func NewRegistry(protocols ...Protocol) *Registry {
	sorted := make([]Protocol, len(protocols))
	copy(sorted, protocols)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTransactionTime < sorted[j].StartTransactionTime
	})

	return &Registry{protocols: sorted}
}

// Get returns the protocol parameters in force at transactionTime: the
// entry with the largest StartTransactionTime <= transactionTime.
func (r *Registry) Get(transactionTime uint64) (Protocol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var current *Protocol

	for i := range r.protocols {
		if r.protocols[i].StartTransactionTime > transactionTime {
			break
		}

		current = &r.protocols[i]
	}

	if current == nil {
		return Protocol{}, ErrNoProtocolConfigured
	}

	return *current, nil
}

// Current returns the most recent protocol version in the table,
// regardless of transaction time, for callers that need "whatever the
// latest protocol is" rather than a historical lookup.
func (r *Registry) Current() (Protocol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.protocols) == 0 {
		return Protocol{}, ErrNoProtocolConfigured
	}

	return r.protocols[len(r.protocols)-1], nil
}

// ClientProvider resolves a Registry for a given DID method namespace.
// Deployments that serve more than one namespace (each with its own
// protocol table) implement this; single-namespace deployments can use
// the provided SingleNamespaceProvider.
type ClientProvider interface {
	ForNamespace(namespace string) (*Registry, error)
}

// SingleNamespaceProvider is a ClientProvider backed by one Registry,
// returned regardless of the requested namespace. This is the common
// case: one DID method, one protocol table.
type SingleNamespaceProvider struct {
	Registry *Registry
}

// ForNamespace implements ClientProvider.
func (p *SingleNamespaceProvider) ForNamespace(_ string) (*Registry, error) {
	if p.Registry == nil {
		return nil, errors.New("protocol registry not configured")
	}

	return p.Registry, nil
}
