/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package observer drains the ledger's transaction feed and hands every
// anchored operation to the Operation Processor (§5). It is the single
// writer of ingestion: Start launches one goroutine that processes
// transactions strictly in the order the ledger reports them, so that
// TransactionNumber order is preserved into Process calls even though
// Resolve never relies on that order itself.
package observer

import (
	"github.com/pkg/errors"

	"github.com/jonnycrunch/sidetree-core/internal/log"
	"github.com/jonnycrunch/sidetree-core/pkg/api/batch"
	"github.com/jonnycrunch/sidetree-core/pkg/api/txn"
)

var logger = log.New("observer")

// Ledger reports anchored transactions in increasing TransactionNumber
// order over a channel that is closed when the feed ends.
type Ledger interface {
	RegisterForSidetreeTxn() <-chan []txn.SidetreeTxn
}

// OperationProvider assembles the Operations anchored by one transaction.
type OperationProvider interface {
	GetTxnOperations(sidetreeTxn *txn.SidetreeTxn) ([]*batch.Operation, error)
}

// OperationProcessor indexes one anchored operation.
type OperationProcessor interface {
	Process(op *batch.Operation) error
}

// ProcessorProvider resolves the OperationProcessor for a transaction's
// namespace.
type ProcessorProvider interface {
	ForNamespace(namespace string) (OperationProcessor, error)
}

// Providers contains every collaborator the Observer and TxnProcessor need.
type Providers struct {
	Ledger            Ledger
	TxnOpsProvider    OperationProvider
	ProcessorProvider ProcessorProvider
}

// TxnProcessor resolves and indexes every operation anchored by a single
// ledger transaction.
type TxnProcessor struct {
	*Providers
}

// NewTxnProcessor returns a TxnProcessor backed by providers.
func NewTxnProcessor(providers *Providers) *TxnProcessor {
	return &TxnProcessor{Providers: providers}
}

// Process assembles sidetreeTxn's operations and indexes each one.
func (p *TxnProcessor) Process(sidetreeTxn txn.SidetreeTxn) error {
	ops, err := p.TxnOpsProvider.GetTxnOperations(&sidetreeTxn)
	if err != nil {
		return errors.Wrapf(err, "failed to retrieve operations for batch file[%s]", sidetreeTxn.BatchFileHash)
	}

	proc, err := p.ProcessorProvider.ForNamespace(sidetreeTxn.Namespace)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve operation processor for namespace[%s]", sidetreeTxn.Namespace)
	}

	for _, op := range ops {
		if err := proc.Process(op); err != nil {
			return errors.Wrapf(err, "failed to index operation from batch file[%s]", sidetreeTxn.BatchFileHash)
		}
	}

	return nil
}

// Observer drains the ledger's transaction feed on a dedicated goroutine
// until Stop is called or the feed closes.
type Observer struct {
	*Providers

	stop chan struct{}
	done chan struct{}
}

// New returns an Observer backed by providers. Call Start to begin
// draining the ledger feed.
func New(providers *Providers) *Observer {
	return &Observer{
		Providers: providers,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the ingestion loop.
func (o *Observer) Start() {
	go o.listen()
}

// Stop signals the ingestion loop to exit and waits for it to do so.
func (o *Observer) Stop() {
	close(o.stop)
	<-o.done
}

func (o *Observer) listen() {
	defer close(o.done)

	txnProcessor := NewTxnProcessor(o.Providers)
	feed := o.Ledger.RegisterForSidetreeTxn()

	for {
		select {
		case batchTxns, ok := <-feed:
			if !ok {
				return
			}

			for _, sidetreeTxn := range batchTxns {
				if err := txnProcessor.Process(sidetreeTxn); err != nil {
					logger.Errorf("failed to process transaction[%d]: %s", sidetreeTxn.TransactionNumber, err)
				}
			}
		case <-o.stop:
			return
		}
	}
}
