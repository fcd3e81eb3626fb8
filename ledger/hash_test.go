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
	"encoding/hex"
	"testing"

	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/blinklabs-io/gocsl/plutus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPlutusData(t *testing.T) {
	testDefs := []struct {
		data         plutus.PlutusData
		expectedHash string
	}{
		{
			data:         plutus.NewPlutusIntegerFromInt64(42),
			expectedHash: "9e1199a988ba72ffd6e9c269cadb3b53b5f360ff99f112d9b2ee30c4d74ad88b",
		},
		{
			data:         plutus.NewConstrPlutusData(0),
			expectedHash: "923918e403bf43c34b4ef6b48eb2ee04babed17320d8d1b9ff9ad086e86f44ec",
		},
	}
	for _, testDef := range testDefs {
		hash, err := ledger.HashPlutusData(testDef.data)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if hash.String() != testDef.expectedHash {
			t.Fatalf(
				"did not get expected hash\n  got:    %s\n  wanted: %s",
				hash.String(),
				testDef.expectedHash,
			)
		}
	}
}

func TestHashDatumKeepsOriginalBytes(t *testing.T) {
	// 42 encoded with a non-minimal 2-byte argument
	raw := []byte{0x19, 0x00, 0x2a}
	var datum plutus.Datum
	require.NoError(t, datum.UnmarshalCBOR(raw))
	hash, err := ledger.HashDatum(datum)
	require.NoError(t, err)
	assert.Equal(t, crypto.HashDataBytes(raw), hash)
	canonical, err := ledger.HashPlutusData(datum.Data)
	require.NoError(t, err)
	assert.NotEqual(t, canonical, hash)
}

func TestHashScriptDataDatumsOnly(t *testing.T) {
	datums := []plutus.Datum{plutus.NewDatum(plutus.NewPlutusIntegerFromInt64(42))}
	hash, err := ledger.HashScriptData(nil, ledger.Costmdls{}, datums)
	require.NoError(t, err)
	// 0x80 || [42] || 0xa0
	preimage, err := hex.DecodeString("8081182aa0")
	require.NoError(t, err)
	assert.Equal(t, crypto.HashScriptDataBytes(preimage), hash)
}

func TestHashScriptDataWithRedeemers(t *testing.T) {
	redeemers := ledger.NewRedeemers(
		ledger.NewRedeemer(
			ledger.RedeemerTagSpend,
			0,
			plutus.NewConstrPlutusData(0),
			ledger.NewExUnits(1000, 2000),
		),
	)
	costModels := ledger.Costmdls{ledger.PlutusV2: ledger.NewCostModel(1, 2, 3)}
	hash, err := ledger.HashScriptData(&redeemers, costModels, nil)
	require.NoError(t, err)
	redeemerBytes, err := redeemers.MarshalCBOR()
	require.NoError(t, err)
	views, err := costModels.LanguageViewsEncoding()
	require.NoError(t, err)
	assert.Equal(t, crypto.HashScriptDataBytes(append(redeemerBytes, views...)), hash)

	// The map form hashes differently
	redeemers.SetMapFormat(true)
	mapHash, err := ledger.HashScriptData(&redeemers, costModels, nil)
	require.NoError(t, err)
	assert.NotEqual(t, hash, mapHash)
}

func TestMakeVkeyWitness(t *testing.T) {
	key, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	body := ledger.NewTransactionBody(
		[]ledger.TransactionInput{testInput(t, 0)},
		[]ledger.TransactionOutput{testOutput(t, 1_000_000)},
		num.BigNum(200_000),
	)
	txHash, err := ledger.HashTransaction(body)
	require.NoError(t, err)
	witness := ledger.MakeVkeyWitness(txHash, key)
	assert.True(t, witness.Vkey.Verify(txHash.Bytes(), witness.Signature))
	assert.Equal(t, key.ToPublic().Hash(), witness.Vkey.Hash())

	data, err := witness.MarshalCBOR()
	require.NoError(t, err)
	var decoded ledger.Vkeywitness
	require.NoError(t, decoded.UnmarshalCBOR(data))
	assert.Equal(t, witness, decoded)
}

func TestMakeIcarusBootstrapWitness(t *testing.T) {
	entropy, err := hex.DecodeString("46e62370a138a182a498b8e2885bc032379ddf38")
	require.NoError(t, err)
	root := crypto.Bip32PrivateKeyFromBip39Entropy(entropy, nil)
	path, err := crypto.ParseDerivationPath("44H/1815H/0H/0/0")
	require.NoError(t, err)
	key := root.DerivePath(path)
	addr := ledger.NewIcarusByronAddress(key.ToPublic(), ledger.ByronMainnetProtocolMagic)
	body := ledger.NewTransactionBody(
		[]ledger.TransactionInput{testInput(t, 0)},
		[]ledger.TransactionOutput{testOutput(t, 1_000_000)},
		num.BigNum(200_000),
	)
	txHash, err := ledger.HashTransaction(body)
	require.NoError(t, err)
	witness, err := ledger.MakeIcarusBootstrapWitness(txHash, addr, key)
	require.NoError(t, err)
	assert.True(t, witness.Vkey.Verify(txHash.Bytes(), witness.Signature))
	assert.Len(t, witness.ChainCode, 32)
	// Mainnet addresses carry no network magic attribute
	assert.Equal(t, []byte{0xa0}, witness.Attributes)
}
