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
	"testing"

	"github.com/blinklabs-io/gocsl/builder"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUtxos(t *testing.T, amounts ...ledger.Value) []ledger.TransactionUnspentOutput {
	t.Helper()
	ret := make([]ledger.TransactionUnspentOutput, 0, len(amounts))
	for idx, amount := range amounts {
		ret = append(ret, ledger.NewTransactionUnspentOutput(
			testInput(t, uint32(idx)),
			ledger.NewTransactionOutput(testAddress(t, testPaymentHash), amount),
		))
	}
	return ret
}

func TestCoinSelectionStrategyString(t *testing.T) {
	testDefs := []struct {
		strategy builder.CoinSelectionStrategy
		expected string
	}{
		{builder.LargestFirst, "LargestFirst"},
		{builder.RandomImprove, "RandomImprove"},
		{builder.LargestFirstMultiAsset, "LargestFirstMultiAsset"},
		{builder.RandomImproveMultiAsset, "RandomImproveMultiAsset"},
		{builder.CoinSelectionStrategy(9), "CoinSelectionStrategy(9)"},
	}
	for _, testDef := range testDefs {
		if got := testDef.strategy.String(); got != testDef.expected {
			t.Fatalf("did not get expected name\n  got: %s\n  wanted: %s", got, testDef.expected)
		}
	}
}

func TestCoinSelectionLargestFirst(t *testing.T) {
	utxos := testUtxos(
		t,
		ledger.NewValue(1_000_000),
		ledger.NewValue(7_000_000),
		ledger.NewValue(3_000_000),
	)
	b := newTestBuilder(t)
	require.NoError(t, b.AddOutput(
		ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(5_000_000)),
	))
	require.NoError(t, b.AddInputsFrom(utxos, builder.LargestFirst))
	explicit, err := b.GetExplicitInput()
	require.NoError(t, err)
	assert.Equal(t, num.BigNum(7_000_000), explicit.Coin)
	added, err := b.AddChangeIfNeeded(testAddress(t, testChangeHash))
	require.NoError(t, err)
	assert.True(t, added)
	requireBalanced(t, b)
}

func TestCoinSelectionRandomImprove(t *testing.T) {
	amounts := make([]ledger.Value, 0, 20)
	for i := range 20 {
		amounts = append(amounts, ledger.NewValue(num.BigNum(1_000_000*(i+1))))
	}
	utxos := testUtxos(t, amounts...)
	b := newTestBuilder(t)
	require.NoError(t, b.AddOutput(
		ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(10_000_000)),
	))
	require.NoError(t, b.AddInputsFrom(utxos, builder.RandomImprove))
	explicit, err := b.GetExplicitInput()
	require.NoError(t, err)
	minFee, err := b.MinFee()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, explicit.Coin, num.BigNum(10_000_000)+minFee)
	_, err = b.AddChangeIfNeeded(testAddress(t, testChangeHash))
	require.NoError(t, err)
	requireBalanced(t, b)
}

func TestCoinSelectionSkipsExistingInputs(t *testing.T) {
	utxos := testUtxos(t, ledger.NewValue(9_000_000), ledger.NewValue(4_000_000))
	b := newTestBuilder(t)
	b.AddKeyInput(testKeyHash(t, testPaymentHash), utxos[0].Input, utxos[0].Output.Amount)
	require.NoError(t, b.AddOutput(
		ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(10_000_000)),
	))
	require.NoError(t, b.AddInputsFrom(utxos, builder.LargestFirst))
	explicit, err := b.GetExplicitInput()
	require.NoError(t, err)
	assert.Equal(t, num.BigNum(13_000_000), explicit.Coin)
}

func TestCoinSelectionNonAdaOutput(t *testing.T) {
	src, name := testPolicy(t)
	utxos := testUtxos(t, ledger.Value{Coin: 5_000_000, MultiAsset: testAssets(src.Hash(), name, 10)})
	for _, strategy := range []builder.CoinSelectionStrategy{builder.LargestFirst, builder.RandomImprove} {
		b := newTestBuilder(t)
		require.NoError(t, b.AddOutput(ledger.NewTransactionOutput(
			testAddress(t, testPaymentHash),
			ledger.Value{Coin: 2_000_000, MultiAsset: testAssets(src.Hash(), name, 5)},
		)))
		err := b.AddInputsFrom(utxos, strategy)
		require.ErrorIs(t, err, builder.ErrNonAdaOutput, "strategy %s", strategy)
	}
}

func TestCoinSelectionMultiAsset(t *testing.T) {
	src, name := testPolicy(t)
	utxos := testUtxos(
		t,
		ledger.NewValue(50_000_000),
		ledger.Value{Coin: 2_000_000, MultiAsset: testAssets(src.Hash(), name, 10)},
		ledger.NewValue(40_000_000),
	)
	for _, strategy := range []builder.CoinSelectionStrategy{
		builder.LargestFirstMultiAsset,
		builder.RandomImproveMultiAsset,
	} {
		b := newTestBuilder(t)
		require.NoError(t, b.AddOutput(ledger.NewTransactionOutput(
			testAddress(t, testPaymentHash),
			ledger.Value{Coin: 3_000_000, MultiAsset: testAssets(src.Hash(), name, 5)},
		)))
		require.NoError(t, b.AddInputsFrom(utxos, strategy), "strategy %s", strategy)
		explicit, err := b.GetExplicitInput()
		require.NoError(t, err)
		assert.Equal(t, num.BigNum(10), explicit.GetAsset(src.Hash(), name))
		added, err := b.AddChangeIfNeeded(testAddress(t, testChangeHash))
		require.NoError(t, err)
		assert.True(t, added)
		requireBalanced(t, b)
	}
}

func TestCoinSelectionInsufficient(t *testing.T) {
	utxos := testUtxos(t, ledger.NewValue(1_000_000), ledger.NewValue(1_000_000))
	for _, strategy := range []builder.CoinSelectionStrategy{builder.LargestFirst, builder.RandomImprove} {
		b := newTestBuilder(t)
		require.NoError(t, b.AddOutput(
			ledger.NewTransactionOutput(testAddress(t, testPaymentHash), ledger.NewValue(5_000_000)),
		))
		err := b.AddInputsFrom(utxos, strategy)
		require.ErrorIs(t, err, builder.ErrUTxOBalanceInsufficient, "strategy %s", strategy)
		var balanceErr builder.InsufficientBalanceError
		require.ErrorAs(t, err, &balanceErr)
		assert.False(t, balanceErr.Deficit.Coin.IsZero())
	}
}
