// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTxID = "3b40265111d8bb3c3c608d95b3a0bf83461ace32d79336579a1939b3aad1c0b7"

func testInput(t *testing.T, index uint32) ledger.TransactionInput {
	t.Helper()
	txID, err := crypto.TransactionHashFromHex(testTxID)
	require.NoError(t, err)
	return ledger.NewTransactionInput(txID, index)
}

func testOutput(t *testing.T, coin num.BigNum) ledger.TransactionOutput {
	t.Helper()
	addr := ledger.NewEnterpriseAddress(
		0,
		ledger.NewKeyHashCredential(
			testKeyHash(t, "3f35615835258addded1c2e169f3a2ab4ae94d606bde030e7947f518"),
		),
	)
	return ledger.NewTransactionOutput(addr, ledger.NewValue(coin))
}

func testRewardAddress(t *testing.T, keyHash string) ledger.RewardAddress {
	t.Helper()
	return ledger.NewRewardAddress(0, ledger.NewKeyHashCredential(testKeyHash(t, keyHash)))
}

func TestTransactionBodyRoundTrip(t *testing.T) {
	ttl := num.BigNum(1000)
	networkID := uint8(0)
	body := ledger.NewTransactionBody(
		[]ledger.TransactionInput{testInput(t, 1), testInput(t, 0)},
		[]ledger.TransactionOutput{testOutput(t, 2_000_000)},
		num.BigNum(170_000),
	)
	body.TTL = &ttl
	body.NetworkID = &networkID
	body.RequiredSigners = []crypto.Ed25519KeyHash{
		testKeyHash(t, "4ff5f8e3d43ce6b19ec4197e331e86d0f5e58b02d7a75b5e74cff95d"),
	}
	body.Withdrawals = ledger.Withdrawals{
		testRewardAddress(t, "4ff5f8e3d43ce6b19ec4197e331e86d0f5e58b02d7a75b5e74cff95d"): 5_000,
	}
	data, err := body.MarshalCBOR()
	require.NoError(t, err)
	var decoded ledger.TransactionBody
	require.NoError(t, decoded.UnmarshalCBOR(data))
	assert.Len(t, decoded.Inputs, 2)
	assert.Equal(t, body.Fee, decoded.Fee)
	require.NotNil(t, decoded.TTL)
	assert.Equal(t, ttl, *decoded.TTL)
	require.NotNil(t, decoded.NetworkID)
	assert.Equal(t, networkID, *decoded.NetworkID)
	assert.Nil(t, decoded.ValidityStartInterval)
	assert.Nil(t, decoded.Certs)
	reencoded, err := decoded.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, data, reencoded)
}

func TestTransactionBodyMissingField(t *testing.T) {
	// {0: [], 1: []}
	data := []byte{0xa2, 0x00, 0x80, 0x01, 0x80}
	var body ledger.TransactionBody
	err := body.UnmarshalCBOR(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cbor.ErrDeserialize))
	assert.Contains(t, err.Error(), "fee")
}

func TestTransactionBodyUnknownKey(t *testing.T) {
	// {0: [], 1: [], 2: 0, 99: 0}
	data := []byte{0xa4, 0x00, 0x80, 0x01, 0x80, 0x02, 0x00, 0x18, 0x63, 0x00}
	var body ledger.TransactionBody
	require.Error(t, body.UnmarshalCBOR(data))
}

func TestTransactionBodyInvalidNetworkID(t *testing.T) {
	// {0: [], 1: [], 2: 0, 15: 2}
	data := []byte{0xa4, 0x00, 0x80, 0x01, 0x80, 0x02, 0x00, 0x0f, 0x02}
	var body ledger.TransactionBody
	require.Error(t, body.UnmarshalCBOR(data))
}

func TestTransactionBodySetTag(t *testing.T) {
	input, err := testInput(t, 0).MarshalCBOR()
	require.NoError(t, err)
	output, err := testOutput(t, 1_000_000).MarshalCBOR()
	require.NoError(t, err)
	data := cbor.EncodeMapOrdered([]cbor.MapEntry{
		{Key: cbor.EncodeUint(0), Value: cbor.EncodeSet([]cbor.RawMessage{input}, true)},
		{Key: cbor.EncodeUint(1), Value: cbor.EncodeArray([]cbor.RawMessage{output}, false)},
		{Key: cbor.EncodeUint(2), Value: cbor.EncodeUint(200_000)},
	}, false)
	var body ledger.TransactionBody
	require.NoError(t, body.UnmarshalCBOR(data))
	reencoded, err := body.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, data, reencoded)
}

func TestTransactionHashIgnoresInsertionOrder(t *testing.T) {
	keys := []string{
		"3f35615835258addded1c2e169f3a2ab4ae94d606bde030e7947f518",
		"4ff5f8e3d43ce6b19ec4197e331e86d0f5e58b02d7a75b5e74cff95d",
	}
	var hashes []crypto.TransactionHash
	for _, order := range [][]int{{0, 1}, {1, 0}} {
		body := ledger.NewTransactionBody(
			[]ledger.TransactionInput{testInput(t, 0)},
			[]ledger.TransactionOutput{testOutput(t, 1_000_000)},
			num.BigNum(200_000),
		)
		body.Withdrawals = ledger.Withdrawals{}
		for _, idx := range order {
			body.Withdrawals.Insert(testRewardAddress(t, keys[idx]), num.BigNum(idx+1))
		}
		hash, err := ledger.HashTransaction(body)
		require.NoError(t, err)
		hashes = append(hashes, hash)
	}
	assert.Equal(t, hashes[0], hashes[1])
}

func TestTransactionRoundTrip(t *testing.T) {
	body := ledger.NewTransactionBody(
		[]ledger.TransactionInput{testInput(t, 0)},
		[]ledger.TransactionOutput{testOutput(t, 1_000_000)},
		num.BigNum(200_000),
	)
	auxData := ledger.NewAuxiliaryData()
	auxData.AddMetadatum(674, ledger.MetadataText("hello"))
	tx := ledger.NewTransaction(*body, *ledger.NewTransactionWitnessSet(), auxData)
	data, err := tx.MarshalCBOR()
	require.NoError(t, err)
	decoded, err := ledger.TransactionFromBytes(data)
	require.NoError(t, err)
	assert.True(t, decoded.IsValid)
	require.NotNil(t, decoded.AuxiliaryData)
	assert.Equal(t, 1, decoded.AuxiliaryData.Metadata.Len())
	clone, err := decoded.Clone()
	require.NoError(t, err)
	cloneData, err := clone.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, data, cloneData)
}

func TestTransactionLegacyFormat(t *testing.T) {
	body, err := ledger.NewTransactionBody(
		[]ledger.TransactionInput{testInput(t, 0)},
		[]ledger.TransactionOutput{testOutput(t, 1_000_000)},
		num.BigNum(200_000),
	).MarshalCBOR()
	require.NoError(t, err)
	data := cbor.EncodeArray([]cbor.RawMessage{body, {0xa0}, cbor.EncodeNull()}, false)
	tx, err := ledger.TransactionFromBytes(data)
	require.NoError(t, err)
	assert.True(t, tx.IsValid)
	assert.Nil(t, tx.AuxiliaryData)
}

func TestFixedTransactionKeepsBodyBytes(t *testing.T) {
	input, err := testInput(t, 0).MarshalCBOR()
	require.NoError(t, err)
	output, err := testOutput(t, 1_000_000).MarshalCBOR()
	require.NoError(t, err)
	// Outputs as an indefinite-length array, which re-encodes differently
	rawBody := cbor.EncodeMapOrdered([]cbor.MapEntry{
		{Key: cbor.EncodeUint(0), Value: cbor.EncodeArray([]cbor.RawMessage{input}, false)},
		{Key: cbor.EncodeUint(1), Value: cbor.EncodeArray([]cbor.RawMessage{output}, true)},
		{Key: cbor.EncodeUint(2), Value: cbor.EncodeUint(200_000)},
	}, false)
	data := cbor.EncodeArray([]cbor.RawMessage{
		rawBody,
		{0xa0},
		cbor.EncodeBool(true),
		cbor.EncodeNull(),
	}, false)
	fixed, err := ledger.FixedTransactionFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, rawBody, fixed.RawBody())
	assert.Equal(t, crypto.HashTransactionBytes(rawBody), fixed.TransactionHash())

	body := fixed.Body()
	canonicalHash, err := ledger.HashTransaction(&body)
	require.NoError(t, err)
	assert.NotEqual(t, canonicalHash, fixed.TransactionHash())

	encoded, err := fixed.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, data, encoded)

	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	require.NoError(t, fixed.Sign(key))
	witnessSet := fixed.WitnessSet()
	require.Len(t, witnessSet.Vkeys, 1)
	txHash := fixed.TransactionHash()
	assert.True(t, witnessSet.Vkeys[0].Vkey.Verify(txHash.Bytes(), witnessSet.Vkeys[0].Signature))
	assert.Equal(t, rawBody, fixed.RawBody())
}
