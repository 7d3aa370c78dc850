/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package processor_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcec"
	"github.com/stretchr/testify/require"

	"github.com/jonnycrunch/sidetree-core/pkg/api/batch"
	"github.com/jonnycrunch/sidetree-core/pkg/client"
	"github.com/jonnycrunch/sidetree-core/pkg/docutil"
	"github.com/jonnycrunch/sidetree-core/pkg/document"
	"github.com/jonnycrunch/sidetree-core/pkg/mocks"
	"github.com/jonnycrunch/sidetree-core/pkg/operation"
	"github.com/jonnycrunch/sidetree-core/pkg/processor"
	"github.com/jonnycrunch/sidetree-core/pkg/util/ecsigner"
	"github.com/jonnycrunch/sidetree-core/pkg/util/pubkey"
)

type keyedDoc struct {
	priv *btcec.PrivateKey
	doc  map[string]interface{}
}

func newCreateDoc(t *testing.T, keyID string) keyedDoc {
	t.Helper()

	priv, pub, err := mocks.GenerateKeyPair()
	require.NoError(t, err)

	jwk := pubkey.JWKFromPublicKey(pub)

	doc := map[string]interface{}{
		"publicKey": []interface{}{
			map[string]interface{}{"id": keyID, "type": "JsonWebKey2020", "jwk": jwk},
		},
	}

	return keyedDoc{priv: priv, doc: doc}
}

func anchor(buf []byte, txn uint64, idx uint32) *batch.AnchoringContext {
	mh, err := docutil.ComputeMultihash(mocks.DefaultMultihashCode, buf)
	if err != nil {
		panic(err)
	}

	return &batch.AnchoringContext{
		TransactionTime:   0,
		TransactionNumber: txn,
		BatchFileHash:     mh,
		OperationIndex:    idx,
	}
}

func mustParse(t *testing.T, buf []byte, txn uint64, idx uint32) *batch.Operation {
	t.Helper()

	op, err := operation.Parse(buf, anchor(buf, txn, idx))
	require.NoError(t, err)

	return op
}

// buildCreateChain returns a validly anchored Create at txn 1 plus n
// Updates (each adding a fresh key named keyN, which signs the next
// Update; earlier keys stay in the document) anchored at
// consecutive transaction numbers starting at 2, along with the signer
// in force after each update (index 0 is the create's signer).
func buildCreateChain(t *testing.T, n int) ([]*batch.Operation, []*ecsigner.Signer) {
	t.Helper()

	kd := newCreateDoc(t, "key0")
	signer0 := ecsigner.New(kd.priv, "key0")

	createBuf, err := client.NewCreateRequest(&client.CreateRequestInfo{Document: kd.doc, Signer: signer0})
	require.NoError(t, err)

	createOp := mustParse(t, createBuf, 1, 0)

	ops := []*batch.Operation{createOp}
	signers := []*ecsigner.Signer{signer0}

	registry := mocks.NewMockProtocolRegistry()
	prevHashStr, err := createOp.Hash(registry)
	require.NoError(t, err)

	prevSigner := signer0

	for i := 1; i <= n; i++ {
		newPriv, newPub, err := mocks.GenerateKeyPair()
		require.NoError(t, err)

		newKeyID := fmt.Sprintf("key%d", i)
		newSigner := ecsigner.New(newPriv, newKeyID)

		patchBytes := []byte(fmt.Sprintf(
			`[{"op":"add","path":"/publicKey/-","value":{"id":%q,"type":"JsonWebKey2020","jwk":%s}}]`,
			newKeyID, mustMarshalJWK(t, pubkey.JWKFromPublicKey(newPub))))

		buf, err := client.NewUpdateRequest(&client.UpdateRequestInfo{
			DID:                   "did:sidetree:" + mustSuffix(t, createOp),
			OperationNumber:       uint32(i),
			PreviousOperationHash: prevHashStr,
			Patch:                 patchBytes,
			Signer:                prevSigner,
		})
		require.NoError(t, err)

		updateOp := mustParse(t, buf, uint64(i+1), 0)
		ops = append(ops, updateOp)
		signers = append(signers, newSigner)

		prevHashStr, err = updateOp.Hash(registry)
		require.NoError(t, err)
		prevSigner = newSigner
	}

	return ops, signers
}

func mustMarshalJWK(t *testing.T, jwk interface{}) []byte {
	t.Helper()

	b, err := json.Marshal(jwk)
	require.NoError(t, err)

	return b
}

func mustSuffix(t *testing.T, createOp *batch.Operation) string {
	t.Helper()

	suffix, err := createOp.UniqueSuffix(mocks.NewMockProtocolRegistry())
	require.NoError(t, err)

	return suffix
}

func did(t *testing.T, createOp *batch.Operation) string {
	return mocks.DefaultNS + ":" + mustSuffix(t, createOp)
}

func TestResolve_CreateOnly(t *testing.T) {
	ops, _ := buildCreateChain(t, 0)

	p := processor.New(mocks.NewMockProtocolRegistry())
	require.NoError(t, p.Process(ops[0]))

	doc, found, err := p.Resolve(did(t, ops[0]))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, doc.PublicKeys(), 1)
}

func TestResolve_OrderIndependent(t *testing.T) {
	ops, _ := buildCreateChain(t, 4)

	permutations := [][]int{
		{0, 1, 2, 3, 4},
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 3, 0, 4, 2},
	}

	var reference document.DIDDocument

	for pi, perm := range permutations {
		p := processor.New(mocks.NewMockProtocolRegistry())

		for _, i := range perm {
			require.NoError(t, p.Process(ops[i]))
		}

		doc, found, err := p.Resolve(did(t, ops[0]))
		require.NoError(t, err)
		require.True(t, found)
		require.Len(t, doc.PublicKeys(), 5)

		if pi == 0 {
			reference = doc
		} else {
			require.Equal(t, reference, doc)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	ops, _ := buildCreateChain(t, 2)

	p := processor.New(mocks.NewMockProtocolRegistry())

	for _, op := range ops {
		require.NoError(t, p.Process(op))
		require.NoError(t, p.Process(op))
		require.NoError(t, p.Process(op))
	}

	doc, found, err := p.Resolve(did(t, ops[0]))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, doc.PublicKeys(), 3)
}

func TestResolve_ForgedCreateSignatureIgnored(t *testing.T) {
	genuine, _ := buildCreateChain(t, 0)

	otherPriv, _, err := mocks.GenerateKeyPair()
	require.NoError(t, err)

	forgedBuf, err := client.NewCreateRequest(&client.CreateRequestInfo{
		Document: genuine[0].Document,
		Signer:   ecsigner.New(otherPriv, "key0"),
	})
	require.NoError(t, err)

	forgedOp := mustParse(t, forgedBuf, 1, 1)

	p := processor.New(mocks.NewMockProtocolRegistry())
	require.NoError(t, p.Process(forgedOp))

	_, found, err := p.Resolve(did(t, forgedOp))
	require.NoError(t, err)
	require.False(t, found)
}

func TestResolve_RevokedKeyReplayRejected(t *testing.T) {
	ops, signers := buildCreateChain(t, 1)

	registry := mocks.NewMockProtocolRegistry()
	prevHashAfterU1, err := ops[1].Hash(registry)
	require.NoError(t, err)

	// U2, signed with key1, rotates key0 away by removing it.
	rotateBuf, err := client.NewUpdateRequest(&client.UpdateRequestInfo{
		DID:                   did(t, ops[0]),
		OperationNumber:       2,
		PreviousOperationHash: prevHashAfterU1,
		Patch:                 []byte(`[{"op":"remove","path":"/publicKey/0"}]`),
		Signer:                signers[1],
	})
	require.NoError(t, err)

	rotateOp := mustParse(t, rotateBuf, 3, 0)

	prevHashAfterU2, err := rotateOp.Hash(registry)
	require.NoError(t, err)

	// U3 signed with the key that was current before U2 rotated it away.
	replayBuf, err := client.NewUpdateRequest(&client.UpdateRequestInfo{
		DID:                   did(t, ops[0]),
		OperationNumber:       3,
		PreviousOperationHash: prevHashAfterU2,
		Patch:                 []byte(`[{"op":"add","path":"/service","value":[]}]`),
		Signer:                signers[0],
	})
	require.NoError(t, err)

	replayOp := mustParse(t, replayBuf, 10, 0)

	p := processor.New(registry)
	for _, op := range ops {
		require.NoError(t, p.Process(op))
	}
	require.NoError(t, p.Process(rotateOp))
	require.NoError(t, p.Process(replayOp))

	doc, found, err := p.Resolve(did(t, ops[0]))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, doc.PublicKeys(), 1) // key1 only: U2 removed key0
	require.Equal(t, "key1", doc.PublicKeys()[0].ID())
	require.Nil(t, doc["service"]) // the replay signed with key0 never applied
}

func TestResolve_CompetingUpdatesSamePredecessor(t *testing.T) {
	ops, signers := buildCreateChain(t, 1)

	registry := mocks.NewMockProtocolRegistry()
	createHash, err := ops[0].Hash(registry)
	require.NoError(t, err)

	rivalBuf, err := client.NewUpdateRequest(&client.UpdateRequestInfo{
		DID:                   did(t, ops[0]),
		OperationNumber:       1,
		PreviousOperationHash: createHash,
		Patch:                 []byte(`[{"op":"add","path":"/service","value":["rival"]}]`),
		Signer:                signers[0],
	})
	require.NoError(t, err)

	// Anchored in the same transaction as the create, earlier than ops[1]
	// (txn 2), so it should win the race for operationNumber 1.
	rivalOp := mustParse(t, rivalBuf, 1, 1)

	p := processor.New(registry)
	require.NoError(t, p.Process(ops[0]))
	require.NoError(t, p.Process(ops[1]))
	require.NoError(t, p.Process(rivalOp))

	doc, found, err := p.Resolve(did(t, ops[0]))
	require.NoError(t, err)
	require.True(t, found)
	// Only key0: ops[1] (the loser at txn 2), which adds key1, never
	// applied; the rival (txn 1) won and added its service entry.
	require.Len(t, doc.PublicKeys(), 1)
	require.Equal(t, []interface{}{"rival"}, doc["service"])
}

func TestResolve_DanglingPreviousHashInert(t *testing.T) {
	ops, _ := buildCreateChain(t, 0)

	bogusHash, err := docutil.ComputeMultihash(mocks.DefaultMultihashCode, []byte("nonexistent"))
	require.NoError(t, err)

	irrelevantPriv, _, err := mocks.GenerateKeyPair()
	require.NoError(t, err)

	buf, err := client.NewUpdateRequest(&client.UpdateRequestInfo{
		DID:                   did(t, ops[0]),
		OperationNumber:       1,
		PreviousOperationHash: docutil.EncodeToString(bogusHash),
		Patch:                 []byte(`[{"op":"add","path":"/service","value":[]}]`),
		Signer:                ecsigner.New(irrelevantPriv, "key0"),
	})
	require.NoError(t, err)

	danglingOp := mustParse(t, buf, 2, 0)

	p := processor.New(mocks.NewMockProtocolRegistry())
	require.NoError(t, p.Process(ops[0]))
	require.NoError(t, p.Process(danglingOp))

	doc, found, err := p.Resolve(did(t, ops[0]))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, doc.Services(), 0)
}

func TestResolve_DeleteWithoutValidSignatureIgnored(t *testing.T) {
	ops, _ := buildCreateChain(t, 0)

	otherPriv, _, err := mocks.GenerateKeyPair()
	require.NoError(t, err)

	buf, err := client.NewDeleteRequest(&client.DeleteRequestInfo{
		DID:    did(t, ops[0]),
		Signer: ecsigner.New(otherPriv, "key0"),
	})
	require.NoError(t, err)

	deleteOp := mustParse(t, buf, 2, 0)

	p := processor.New(mocks.NewMockProtocolRegistry())
	require.NoError(t, p.Process(ops[0]))
	require.NoError(t, p.Process(deleteOp))

	doc, found, err := p.Resolve(did(t, ops[0]))
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, doc)
}

func TestResolve_ValidDeleteTombstones(t *testing.T) {
	ops, signers := buildCreateChain(t, 0)

	buf, err := client.NewDeleteRequest(&client.DeleteRequestInfo{
		DID:    did(t, ops[0]),
		Signer: signers[0],
	})
	require.NoError(t, err)

	deleteOp := mustParse(t, buf, 2, 0)

	p := processor.New(mocks.NewMockProtocolRegistry())
	require.NoError(t, p.Process(ops[0]))
	require.NoError(t, p.Process(deleteOp))

	_, found, err := p.Resolve(did(t, ops[0]))
	require.NoError(t, err)
	require.False(t, found)
}

func TestResolve_OperationNumberMismatchSkipped(t *testing.T) {
	ops, signers := buildCreateChain(t, 0)

	registry := mocks.NewMockProtocolRegistry()
	createHash, err := ops[0].Hash(registry)
	require.NoError(t, err)

	buf, err := client.NewUpdateRequest(&client.UpdateRequestInfo{
		DID:                   did(t, ops[0]),
		OperationNumber:       5, // should be 1
		PreviousOperationHash: createHash,
		Patch:                 []byte(`[{"op":"add","path":"/service","value":[]}]`),
		Signer:                signers[0], // validly signed, so only the number can reject it
	})
	require.NoError(t, err)

	badOp := mustParse(t, buf, 2, 0)

	p := processor.New(registry)
	require.NoError(t, p.Process(ops[0]))
	require.NoError(t, p.Process(badOp))

	doc, found, err := p.Resolve(did(t, ops[0]))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, doc.Services(), 0)
}

func TestResolve_UnknownDIDNotFound(t *testing.T) {
	p := processor.New(mocks.NewMockProtocolRegistry())

	_, found, err := p.Resolve("did:sidetree:doesnotexist")
	require.NoError(t, err)
	require.False(t, found)
}

func TestRollback_RemovesAnchoredOperations(t *testing.T) {
	ops, _ := buildCreateChain(t, 2)

	p := processor.New(mocks.NewMockProtocolRegistry())
	for _, op := range ops {
		require.NoError(t, p.Process(op))
	}

	doc, found, err := p.Resolve(did(t, ops[0]))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, doc.PublicKeys(), 3)

	require.NoError(t, p.Rollback(3)) // discard everything from txn 3 on (the second update)

	doc, found, err = p.Resolve(did(t, ops[0]))
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, doc.PublicKeys(), 2)
}
