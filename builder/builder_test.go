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

package builder_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/blinklabs-io/gocsl/builder"
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/blinklabs-io/gocsl/plutus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTxID        = "3b40265111d8bb3c3c608d95b3a0bf83461ace32d79336579a1939b3aad1c0b7"
	testPaymentHash = "3f35615835258addded1c2e169f3a2ab4ae94d606bde030e7947f518"
	testChangeHash  = "f7f1a9e5a4b1c3d6e8f0a2b4c6d8e0f1a3b5c7d9e1f3a5b7c9d1e3f5"
	testStakeHash   = "1c7e2a5d4b3f6e8a9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d"
)

func testConfigOptions() []builder.ConfigOptionFunc {
	return []builder.ConfigOptionFunc{
		builder.WithFeeAlgo(ledger.NewLinearFee(44, 155381)),
		builder.WithPoolDeposit(500_000_000),
		builder.WithKeyDeposit(2_000_000),
		builder.WithMaxValueSize(5000),
		builder.WithMaxTxSize(16384),
		builder.WithCoinsPerUtxoByte(4310),
	}
}

func newTestBuilder(t *testing.T, opts ...builder.ConfigOptionFunc) *builder.TransactionBuilder {
	t.Helper()
	cfg, err := builder.NewTransactionBuilderConfig(append(testConfigOptions(), opts...)...)
	require.NoError(t, err)
	return builder.NewTransactionBuilder(
		cfg,
		builder.WithRandomSource(rand.New(rand.NewPCG(1, 2))),
	)
}

func testKeyHash(t *testing.T, hexStr string) crypto.Ed25519KeyHash {
	t.Helper()
	ret, err := crypto.Ed25519KeyHashFromHex(hexStr)
	require.NoError(t, err)
	return ret
}

func testInput(t *testing.T, index uint32) ledger.TransactionInput {
	t.Helper()
	txID, err := crypto.TransactionHashFromHex(testTxID)
	require.NoError(t, err)
	return ledger.NewTransactionInput(txID, index)
}

func testAddress(t *testing.T, keyHash string) ledger.Address {
	t.Helper()
	return ledger.NewEnterpriseAddress(0, ledger.NewKeyHashCredential(testKeyHash(t, keyHash)))
}

func testPolicy(t *testing.T) (builder.NativeScriptSource, ledger.AssetName) {
	t.Helper()
	src, err := builder.NewNativeScriptSource(
		ledger.ScriptPubkey{KeyHash: testKeyHash(t, testPaymentHash)},
	)
	require.NoError(t, err)
	name, err := ledger.NewAssetName([]byte("token"))
	require.NoError(t, err)
	return src, name
}

func testAssets(policy crypto.PolicyID, name ledger.AssetName, quantity num.BigNum) ledger.MultiAsset {
	ret := ledger.MultiAsset{}
	ret.SetAsset(policy, name, quantity)
	return ret
}

func requireBalanced(t *testing.T, b *builder.TransactionBuilder) {
	t.Helper()
	totalIn, err := b.GetTotalInput()
	require.NoError(t, err)
	totalOut, err := b.GetTotalOutput()
	require.NoError(t, err)
	fee, ok := b.GetFeeIfSet()
	require.True(t, ok)
	totalOut, err = totalOut.CheckedAdd(ledger.NewValue(fee))
	require.NoError(t, err)
	c, ok := totalIn.Compare(totalOut)
	require.True(t, ok)
	require.Equal(t, 0, c, "input %s, output plus fee %s", totalIn.Coin, totalOut.Coin)
}

func TestConfigMissingFields(t *testing.T) {
	testDefs := []struct {
		field string
		opts  []builder.ConfigOptionFunc
	}{
		{
			field: "fee_algo",
		},
		{
			field: "pool_deposit",
			opts: []builder.ConfigOptionFunc{
				builder.WithFeeAlgo(ledger.NewLinearFee(44, 155381)),
			},
		},
		{
			field: "coins_per_utxo_byte",
			opts:  append(testConfigOptions()[:5:5], builder.WithCoinsPerUtxoByte(0)),
		},
		{
			field: "ex_unit_prices",
			opts: append(
				testConfigOptions(),
				builder.WithExUnitPrices(
					ledger.NewExUnitPrices(num.NewUnitInterval(1, 0), num.NewUnitInterval(1, 1)),
				),
			),
		},
	}
	for _, testDef := range testDefs {
		_, err := builder.NewTransactionBuilderConfig(testDef.opts...)
		if err == nil {
			t.Fatalf("expected an error for missing %s", testDef.field)
		}
		if !errors.Is(err, builder.ErrInvalidConfig) {
			t.Fatalf("unexpected error type: %s", err)
		}
		var cfgErr builder.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		if cfgErr.Field != testDef.field {
			t.Fatalf("did not get expected field\n  got: %s\n  wanted: %s", cfgErr.Field, testDef.field)
		}
	}
}

func TestAddChangeSimple(t *testing.T) {
	b := newTestBuilder(t)
	b.AddKeyInput(testKeyHash(t, testPaymentHash), testInput(t, 0), ledger.NewValue(5_000_000))
	require.NoError(t, b.AddOutput(
		ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(2_000_000)),
	))
	b.SetTTL(1000)
	added, err := b.AddChangeIfNeeded(testAddress(t, testChangeHash))
	require.NoError(t, err)
	require.True(t, added)
	fee, ok := b.GetFeeIfSet()
	require.True(t, ok)
	minFee, err := b.MinFee()
	require.NoError(t, err)
	assert.Equal(t, minFee, fee)
	outputs := b.Outputs()
	require.Len(t, outputs, 2)
	assert.Equal(t, num.BigNum(5_000_000-2_000_000)-fee, outputs[1].Amount.Coin)
	requireBalanced(t, b)
	tx, err := b.BuildTx()
	require.NoError(t, err)
	assert.Equal(t, fee, tx.Body.Fee)
	assert.Len(t, tx.Body.Outputs, 2)
}

func TestAddChangeBurnsDust(t *testing.T) {
	b := newTestBuilder(t)
	b.AddKeyInput(testKeyHash(t, testPaymentHash), testInput(t, 0), ledger.NewValue(2_200_000))
	require.NoError(t, b.AddOutput(
		ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(2_000_000)),
	))
	added, err := b.AddChangeIfNeeded(testAddress(t, testChangeHash))
	require.NoError(t, err)
	assert.False(t, added)
	fee, _ := b.GetFeeIfSet()
	assert.Equal(t, num.BigNum(200_000), fee)
	assert.Len(t, b.Outputs(), 1)
	requireBalanced(t, b)
}

func TestAddChangeInsufficient(t *testing.T) {
	b := newTestBuilder(t)
	b.AddKeyInput(testKeyHash(t, testPaymentHash), testInput(t, 0), ledger.NewValue(2_000_000))
	require.NoError(t, b.AddOutput(
		ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(2_000_000)),
	))
	_, err := b.AddChangeIfNeeded(testAddress(t, testChangeHash))
	require.ErrorIs(t, err, builder.ErrUTxOBalanceInsufficient)
	var balanceErr builder.InsufficientBalanceError
	require.ErrorAs(t, err, &balanceErr)
	assert.False(t, balanceErr.Deficit.Coin.IsZero())
}

func TestAddChangeFeeAlreadySet(t *testing.T) {
	b := newTestBuilder(t)
	b.SetFee(200_000)
	_, err := b.AddChangeIfNeeded(testAddress(t, testChangeHash))
	require.ErrorIs(t, err, builder.ErrFeeAlreadySet)
}

func TestAddChangeWithAssets(t *testing.T) {
	src, name := testPolicy(t)
	for _, preferPure := range []bool{false, true} {
		b := newTestBuilder(t, builder.WithPreferPureChange(preferPure))
		b.AddKeyInput(
			testKeyHash(t, testPaymentHash),
			testInput(t, 0),
			ledger.Value{Coin: 10_000_000, MultiAsset: testAssets(src.Hash(), name, 100)},
		)
		require.NoError(t, b.AddOutput(
			ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(2_000_000)),
		))
		added, err := b.AddChangeIfNeeded(testAddress(t, testChangeHash))
		require.NoError(t, err)
		require.True(t, added)
		outputs := b.Outputs()
		if preferPure {
			require.Len(t, outputs, 3)
			assert.False(t, outputs[2].Amount.HasAssets())
		} else {
			require.Len(t, outputs, 2)
		}
		assert.Equal(t, num.BigNum(100), outputs[1].Amount.GetAsset(src.Hash(), name))
		requireBalanced(t, b)
	}
}

func TestAddOutputBelowMinimum(t *testing.T) {
	b := newTestBuilder(t)
	err := b.AddOutput(
		ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(100_000)),
	)
	require.ErrorIs(t, err, builder.ErrOutputBelowMinimum)
	var minErr builder.OutputBelowMinimumError
	require.ErrorAs(t, err, &minErr)
	assert.Equal(t, uint64(100_000), minErr.Coin)
	assert.Greater(t, minErr.Minimum, minErr.Coin)
}

func TestBuildRequiresFee(t *testing.T) {
	b := newTestBuilder(t)
	b.AddKeyInput(testKeyHash(t, testPaymentHash), testInput(t, 0), ledger.NewValue(5_000_000))
	_, err := b.Build()
	require.ErrorIs(t, err, builder.ErrFeeNotSet)
}

func TestBuildTxTooLarge(t *testing.T) {
	b := newTestBuilder(t, builder.WithMaxTxSize(100))
	b.AddKeyInput(testKeyHash(t, testPaymentHash), testInput(t, 0), ledger.NewValue(5_000_000))
	require.NoError(t, b.AddOutput(
		ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(2_000_000)),
	))
	b.SetFee(3_000_000)
	_, err := b.Build()
	require.ErrorIs(t, err, builder.ErrTransactionTooLarge)
}

func TestBuildTxUnbalanced(t *testing.T) {
	b := newTestBuilder(t)
	b.AddKeyInput(testKeyHash(t, testPaymentHash), testInput(t, 0), ledger.NewValue(5_000_000))
	require.NoError(t, b.AddOutput(
		ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(2_000_000)),
	))
	b.SetFee(200_000)
	_, err := b.BuildTx()
	require.ErrorIs(t, err, builder.ErrUnbalancedTransaction)
	tx, err := b.BuildTxUnsafe()
	require.NoError(t, err)
	assert.Equal(t, num.BigNum(200_000), tx.Body.Fee)
}

func TestBuildTxMissingScriptWitness(t *testing.T) {
	src, _ := testPolicy(t)
	b := newTestBuilder(t)
	b.AddScriptInput(src.Hash(), testInput(t, 0), ledger.NewValue(5_000_000))
	_, err := b.BuildTx()
	require.ErrorIs(t, err, builder.ErrMissingScriptWitness)
	var witnessErr builder.MissingScriptWitnessError
	require.ErrorAs(t, err, &witnessErr)
	assert.Equal(t, src.Hash(), witnessErr.Hash)
	assert.Equal(t, 0, b.AddRequiredNativeInputScripts(src))
	added, err := b.AddChangeIfNeeded(testAddress(t, testChangeHash))
	require.NoError(t, err)
	require.True(t, added)
	tx, err := b.BuildTx()
	require.NoError(t, err)
	require.Len(t, tx.WitnessSet.NativeScripts, 1)
}

func TestMintAssetAndOutput(t *testing.T) {
	src, name := testPolicy(t)
	b := newTestBuilder(t)
	b.AddKeyInput(testKeyHash(t, testPaymentHash), testInput(t, 0), ledger.NewValue(5_000_000))
	err := b.AddMintAssetAndOutputMinRequiredCoin(
		src,
		name,
		num.NewIntFromInt64(10),
		builder.NewTransactionOutputBuilder().WithAddress(testAddress(t, testPaymentHash)),
	)
	require.NoError(t, err)
	added, err := b.AddChangeIfNeeded(testAddress(t, testChangeHash))
	require.NoError(t, err)
	require.True(t, added)
	requireBalanced(t, b)
	tx, err := b.BuildTx()
	require.NoError(t, err)
	assets, ok := tx.Body.Mint.Get(src.Hash())
	require.True(t, ok)
	amount, ok := assets.Get(name)
	require.True(t, ok)
	assert.Equal(t, num.NewIntFromInt64(10), amount)
	assert.Len(t, tx.WitnessSet.NativeScripts, 1)
	err = b.AddMintAssetAndOutput(
		src,
		name,
		num.NewIntFromInt64(-1),
		builder.NewTransactionOutputBuilder().WithAddress(testAddress(t, testPaymentHash)),
		2_000_000,
	)
	require.ErrorIs(t, err, builder.ErrInvalidMintAmount)
}

func TestCertificateDepositAndWithdrawal(t *testing.T) {
	stake := ledger.NewKeyHashCredential(testKeyHash(t, testStakeHash))
	certs := builder.NewCertificatesBuilder()
	require.NoError(t, certs.Add(ledger.NewStakeRegistration(stake)))
	withdrawals := builder.NewWithdrawalsBuilder()
	require.NoError(t, withdrawals.Add(ledger.NewRewardAddress(0, stake), 1_000_000))
	b := newTestBuilder(t)
	b.SetCerts(certs)
	b.SetWithdrawals(withdrawals)
	deposit, err := b.GetDeposit()
	require.NoError(t, err)
	assert.Equal(t, num.BigNum(2_000_000), deposit)
	implicit, err := b.GetImplicitInput()
	require.NoError(t, err)
	assert.Equal(t, num.BigNum(1_000_000), implicit.Coin)
	b.AddKeyInput(testKeyHash(t, testPaymentHash), testInput(t, 0), ledger.NewValue(5_000_000))
	added, err := b.AddChangeIfNeeded(testAddress(t, testChangeHash))
	require.NoError(t, err)
	require.True(t, added)
	requireBalanced(t, b)
	fee, _ := b.GetFeeIfSet()
	assert.Equal(t, num.BigNum(5_000_000+1_000_000-2_000_000)-fee, b.Outputs()[0].Amount.Coin)
}

func TestCertificateScriptNeedsWitness(t *testing.T) {
	src, _ := testPolicy(t)
	certs := builder.NewCertificatesBuilder()
	cert := ledger.NewStakeDeregistration(ledger.NewScriptHashCredential(src.Hash()))
	err := certs.Add(cert)
	require.ErrorIs(t, err, builder.ErrMissingScriptWitness)
	require.NoError(t, certs.AddWithNativeScript(cert, src))
	assert.Equal(t, 1, certs.Len())
}

func TestLegacyTTL(t *testing.T) {
	ttl, err := builder.LegacyTTLToUint32(builder.LegacyTTLFromUint32(12345))
	require.NoError(t, err)
	assert.Equal(t, uint32(12345), ttl)
	_, err = builder.LegacyTTLToUint32(num.BigNum(1) << 33)
	require.ErrorIs(t, err, builder.ErrInvalidLegacyTTL)
}

func TestOutputBuilderMinRequiredCoin(t *testing.T) {
	src, name := testPolicy(t)
	ob := builder.NewTransactionOutputBuilder().WithAddress(testAddress(t, testPaymentHash))
	_, err := ob.WithAssetAndMinRequiredCoin(testAssets(src.Hash(), name, 1), 4310)
	require.NoError(t, err)
	output, err := ob.Build()
	require.NoError(t, err)
	minAda, err := ledger.MinAdaForOutput(output, 4310)
	require.NoError(t, err)
	assert.Equal(t, minAda, output.Amount.Coin)
	_, err = builder.NewTransactionOutputBuilder().WithCoin(1).Build()
	require.ErrorIs(t, err, builder.ErrIncompleteOutput)
}

func TestAddInputTwiceCountsOnce(t *testing.T) {
	b := newTestBuilder(t)
	keyHash := testKeyHash(t, testPaymentHash)
	b.AddKeyInput(keyHash, testInput(t, 0), ledger.NewValue(5_000_000))
	b.AddKeyInput(keyHash, testInput(t, 0), ledger.NewValue(5_000_000))
	totalIn, err := b.GetTotalInput()
	require.NoError(t, err)
	assert.Equal(t, num.BigNum(5_000_000), totalIn.Coin)
	require.NoError(t, b.AddOutput(
		ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(2_000_000)),
	))
	added, err := b.AddChangeIfNeeded(testAddress(t, testChangeHash))
	require.NoError(t, err)
	require.True(t, added)
	requireBalanced(t, b)
	tx, err := b.BuildTx()
	require.NoError(t, err)
	require.Len(t, tx.Body.Inputs, 1)
	var outputTotal num.BigNum
	for _, output := range tx.Body.Outputs {
		outputTotal += output.Amount.Coin
	}
	assert.Equal(t, num.BigNum(5_000_000), outputTotal+tx.Body.Fee)
}

func TestAddInputReplacesEarlierAmount(t *testing.T) {
	b := newTestBuilder(t)
	keyHash := testKeyHash(t, testPaymentHash)
	b.AddKeyInput(keyHash, testInput(t, 0), ledger.NewValue(9_000_000))
	b.AddKeyInput(keyHash, testInput(t, 0), ledger.NewValue(3_000_000))
	totalIn, err := b.GetExplicitInput()
	require.NoError(t, err)
	assert.Equal(t, num.BigNum(3_000_000), totalIn.Coin)
}

func TestNetworkMismatch(t *testing.T) {
	mainnetAddr := ledger.NewEnterpriseAddress(
		1,
		ledger.NewKeyHashCredential(testKeyHash(t, testPaymentHash)),
	)
	testDefs := []struct {
		name string
		run  func(b *builder.TransactionBuilder) error
	}{
		{
			name: "output",
			run: func(b *builder.TransactionBuilder) error {
				b.SetNetworkID(1)
				return b.AddOutput(
					ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(2_000_000)),
				)
			},
		},
		{
			name: "change",
			run: func(b *builder.TransactionBuilder) error {
				b.SetNetworkID(1)
				if err := b.AddOutput(
					ledger.NewTransactionOutput(mainnetAddr, ledger.NewValue(2_000_000)),
				); err != nil {
					return err
				}
				_, err := b.AddChangeIfNeeded(testAddress(t, testChangeHash))
				return err
			},
		},
		{
			name: "output added before network id",
			run: func(b *builder.TransactionBuilder) error {
				if err := b.AddOutput(
					ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(2_000_000)),
				); err != nil {
					return err
				}
				if _, err := b.AddChangeIfNeeded(testAddress(t, testChangeHash)); err != nil {
					return err
				}
				b.SetNetworkID(1)
				_, err := b.BuildTx()
				return err
			},
		},
	}
	for _, testDef := range testDefs {
		b := newTestBuilder(t)
		b.AddKeyInput(testKeyHash(t, testPaymentHash), testInput(t, 0), ledger.NewValue(5_000_000))
		err := testDef.run(b)
		if !errors.Is(err, builder.ErrNetworkMismatch) {
			t.Fatalf("%s: did not get expected error, got: %v", testDef.name, err)
		}
		var mismatch builder.NetworkMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, uint8(1), mismatch.Expected)
		assert.Equal(t, uint8(0), mismatch.Actual)
	}
}

func TestNetworkMatch(t *testing.T) {
	mainnetAddr := ledger.NewEnterpriseAddress(
		1,
		ledger.NewKeyHashCredential(testKeyHash(t, testPaymentHash)),
	)
	b := newTestBuilder(t)
	b.SetNetworkID(1)
	b.AddKeyInput(testKeyHash(t, testPaymentHash), testInput(t, 0), ledger.NewValue(5_000_000))
	require.NoError(t, b.AddOutput(
		ledger.NewTransactionOutput(mainnetAddr, ledger.NewValue(2_000_000)),
	))
	added, err := b.AddChangeIfNeeded(mainnetAddr)
	require.NoError(t, err)
	require.True(t, added)
	tx, err := b.BuildTx()
	require.NoError(t, err)
	require.NotNil(t, tx.Body.NetworkID)
	assert.Equal(t, uint8(1), *tx.Body.NetworkID)
}

func TestCancelledPlutusMintNeedsNoScriptData(t *testing.T) {
	script := builder.NewPlutusScriptSource(
		ledger.NewPlutusScript(
			ledger.PlutusV2,
			[]byte{0x4d, 0x01, 0x00, 0x00, 0x33, 0x22, 0x22, 0x20, 0x05, 0x12, 0x00, 0x12, 0x00, 0x11},
		),
	)
	witness := builder.NewMintWitnessPlutus(script, ledger.Redeemer{
		Data:    plutus.NewDatum(plutus.NewPlutusIntegerFromInt64(0)),
		ExUnits: ledger.NewExUnits(1_000, 1_000),
	})
	name, err := ledger.NewAssetName([]byte("token"))
	require.NoError(t, err)
	mint := builder.NewMintBuilder()
	require.NoError(t, mint.AddAsset(witness, name, num.NewIntFromInt64(5)))
	require.True(t, mint.HasPlutusScripts())
	require.NoError(t, mint.AddAsset(witness, name, num.NewIntFromInt64(-5)))
	assert.False(t, mint.HasPlutusScripts())
	assert.Equal(t, 0, mint.Build().Len())

	b := newTestBuilder(t)
	b.SetMintBuilder(mint)
	b.AddKeyInput(testKeyHash(t, testPaymentHash), testInput(t, 0), ledger.NewValue(5_000_000))
	require.NoError(t, b.AddOutput(
		ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(2_000_000)),
	))
	_, err = b.AddChangeIfNeeded(testAddress(t, testChangeHash))
	require.NoError(t, err)
	tx, err := b.BuildTx()
	require.NoError(t, err)
	assert.Empty(t, tx.WitnessSet.PlutusScripts)
	assert.Nil(t, tx.WitnessSet.Redeemers)
	assert.Nil(t, tx.Body.ScriptDataHash)
}
