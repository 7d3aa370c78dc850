/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Command sidetree-core is a local, single-process demonstration of the
// core: it submits a Create operation followed by an Update, anchors
// both in a single batch file written to an in-memory CAS, feeds the
// batch through the observer, and resolves the resulting DID Document.
// It exists to exercise the wiring end to end, not as a production
// Sidetree node.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonnycrunch/sidetree-core/internal/config"
	"github.com/jonnycrunch/sidetree-core/internal/log"
	"github.com/jonnycrunch/sidetree-core/pkg/api/protocol"
	"github.com/jonnycrunch/sidetree-core/pkg/api/txn"
	"github.com/jonnycrunch/sidetree-core/pkg/client"
	"github.com/jonnycrunch/sidetree-core/pkg/compression"
	"github.com/jonnycrunch/sidetree-core/pkg/docutil"
	"github.com/jonnycrunch/sidetree-core/pkg/mocks"
	"github.com/jonnycrunch/sidetree-core/pkg/observer"
	"github.com/jonnycrunch/sidetree-core/pkg/processor"
	"github.com/jonnycrunch/sidetree-core/pkg/txnhandler"
	"github.com/jonnycrunch/sidetree-core/pkg/util/ecsigner"
	"github.com/jonnycrunch/sidetree-core/pkg/util/pubkey"
)

var logger = log.New("cmd")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sidetree-core",
		Short: "Demonstrate the operation ingestion and resolution core",
		Long:  "Submits a create and an update for a sample DID, anchors them, and resolves the result.",
		RunE:  runDemo,
	}

	config.AddFlags(cmd)

	return cmd
}

// processorAdapter narrows *processor.OperationProcessor to the
// observer's OperationProcessor interface, and its SingleNamespaceProvider
// to the observer's ProcessorProvider interface. Both processor packages
// define their own ClientProvider-shaped interfaces against their own
// concrete return types, so the two don't satisfy each other's interfaces
// without this seam.
type processorAdapter struct {
	p *processor.OperationProcessor
}

func (p *processorAdapter) ForNamespace(_ string) (observer.OperationProcessor, error) {
	return p.p, nil
}

func runDemo(cmd *cobra.Command, _ []string) error {
	proto, err := config.Protocol(cmd)
	if err != nil {
		return err
	}

	namespace := config.Namespace(cmd)
	registry := protocol.NewRegistry(proto)

	privKey, pubKey, err := mocks.GenerateKeyPair()
	if err != nil {
		return err
	}

	signer := ecsigner.New(privKey, "key-1")
	jwk := pubkey.JWKFromPublicKey(pubKey)

	doc := map[string]interface{}{
		"publicKey": []interface{}{
			map[string]interface{}{
				"id":   signer.KeyID(),
				"type": "Secp256k1VerificationKey2018",
				"jwk":  jwk,
			},
		},
	}

	createBuf, err := client.NewCreateRequest(&client.CreateRequestInfo{Document: doc, Signer: signer})
	if err != nil {
		return err
	}

	createHash, err := docutil.ComputeMultihash(proto.HashAlgorithmInMultiHashCode, []byte(encodedPayloadOf(createBuf)))
	if err != nil {
		return err
	}

	did := fmt.Sprintf("%s:%s", namespace, docutil.EncodeToString(createHash))

	updateBuf, err := client.NewUpdateRequest(&client.UpdateRequestInfo{
		DID:                   did,
		OperationNumber:       1,
		PreviousOperationHash: docutil.EncodeToString(createHash),
		Patch:                 json.RawMessage(`[{"op":"add","path":"/service","value":[{"id":"svc-1","type":"demo"}]}]`),
		Signer:                signer,
	})
	if err != nil {
		return err
	}

	cas := mocks.NewMockCAS()

	batchFile, err := json.Marshal([]json.RawMessage{createBuf, updateBuf})
	if err != nil {
		return err
	}

	compressed, err := compression.New(compression.WithDefaultAlgorithms()).Compress(proto.CompressionAlgorithm, batchFile)
	if err != nil {
		return err
	}

	address := cas.Write(compressed)

	clientProvider := &protocol.SingleNamespaceProvider{Registry: registry}
	opProvider := txnhandler.NewOperationProvider(cas, clientProvider, compression.New(compression.WithDefaultAlgorithms()))

	proc := processor.New(registry)

	providers := &observer.Providers{
		Ledger:            mocks.NewMockLedger(),
		TxnOpsProvider:    opProvider,
		ProcessorProvider: &processorAdapter{p: proc},
	}

	ledger := providers.Ledger.(*mocks.Ledger)

	o := observer.New(providers)
	o.Start()
	defer o.Stop()

	ledger.Feed <- []txn.SidetreeTxn{{
		TransactionTime:   0,
		TransactionNumber: 1,
		BatchFileHash:     address,
		Namespace:         namespace,
	}}

	// Give the observer's goroutine a turn; a production caller would
	// instead block on a resolution retry loop or a done signal.
	time.Sleep(50 * time.Millisecond)

	resolved, found, err := proc.Resolve(did)
	if err != nil {
		return err
	}

	if !found {
		logger.Errorf("did %s did not resolve", did)
		return fmt.Errorf("did %s did not resolve", did)
	}

	out, err := json.MarshalIndent(resolved, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}

func encodedPayloadOf(operationBuffer []byte) string {
	var wire struct {
		Payload string `json:"payload"`
	}

	_ = json.Unmarshal(operationBuffer, &wire)

	return wire.Payload
}
