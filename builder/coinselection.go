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

package builder

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
)

type CoinSelectionStrategy int

const (
	// LargestFirst adds the UTxOs holding the most ADA first. Outputs must be pure ADA.
	LargestFirst CoinSelectionStrategy = iota
	// RandomImprove follows CIP-2 random-improve. Outputs must be pure ADA.
	RandomImprove
	// LargestFirstMultiAsset covers each native asset with the UTxOs holding the most of it,
	// then covers ADA the same way
	LargestFirstMultiAsset
	// RandomImproveMultiAsset runs random-improve for each native asset and then for ADA
	RandomImproveMultiAsset
)

func (s CoinSelectionStrategy) String() string {
	switch s {
	case LargestFirst:
		return "LargestFirst"
	case RandomImprove:
		return "RandomImprove"
	case LargestFirstMultiAsset:
		return "LargestFirstMultiAsset"
	case RandomImproveMultiAsset:
		return "RandomImproveMultiAsset"
	default:
		return fmt.Sprintf("CoinSelectionStrategy(%d)", int(s))
	}
}

// selectionTarget describes the part of a value that a selection pass covers
type selectionTarget struct {
	quantity func(ledger.TransactionUnspentOutput) num.BigNum
	deficit  func(num.BigNum) ledger.Value
}

var coinTarget = selectionTarget{
	quantity: func(utxo ledger.TransactionUnspentOutput) num.BigNum {
		return utxo.Output.Amount.Coin
	},
	deficit: ledger.NewValue,
}

func assetTarget(policy crypto.PolicyID, name ledger.AssetName) selectionTarget {
	return selectionTarget{
		quantity: func(utxo ledger.TransactionUnspentOutput) num.BigNum {
			return utxo.Output.Amount.GetAsset(policy, name)
		},
		deficit: func(missing num.BigNum) ledger.Value {
			ma := ledger.MultiAsset{}
			ma.SetAsset(policy, name, missing)
			return ledger.NewValueFromAssets(ma)
		},
	}
}

// AddInputsFrom selects inputs from utxos until the inputs cover the outputs, deposits and the
// fee. UTxOs already used as inputs are skipped.
func (b *TransactionBuilder) AddInputsFrom(
	utxos []ledger.TransactionUnspentOutput,
	strategy CoinSelectionStrategy,
) error {
	available := make([]ledger.TransactionUnspentOutput, 0, len(utxos))
	for _, utxo := range utxos {
		if !b.inputs.contains(utxo.Input) {
			available = append(available, utxo)
		}
	}
	b.logger.Debug(
		"selecting inputs",
		"component", "builder",
		"strategy", strategy.String(),
		"utxos", len(available),
	)
	var err error
	switch strategy {
	case LargestFirst, RandomImprove:
		for _, output := range b.outputs {
			if output.Amount.HasAssets() {
				return ErrNonAdaOutput
			}
		}
		if strategy == LargestFirst {
			_, err = b.selectLargestFirst(available)
		} else {
			_, err = b.selectRandomImprove(available)
		}
	case LargestFirstMultiAsset, RandomImproveMultiAsset:
		available, err = b.selectAssets(available, strategy == RandomImproveMultiAsset)
		if err != nil {
			return err
		}
		if strategy == LargestFirstMultiAsset {
			_, err = b.selectLargestFirst(available)
		} else {
			_, err = b.selectRandomImprove(available)
		}
	default:
		return fmt.Errorf("unknown coin selection strategy %d", int(strategy))
	}
	return err
}

func (b *TransactionBuilder) addSelected(utxo ledger.TransactionUnspentOutput) error {
	return b.AddRegularInput(utxo.Output.Address, utxo.Input, utxo.Output.Amount)
}

// deficit returns the value still needed by the outputs, including deposits and burned assets,
// and, when withFee is set, an estimate of the fee
func (b *TransactionBuilder) deficit(withFee bool) (ledger.Value, error) {
	totalIn, err := b.GetTotalInput()
	if err != nil {
		return ledger.Value{}, err
	}
	totalOut, err := b.GetTotalOutput()
	if err != nil {
		return ledger.Value{}, err
	}
	if withFee {
		fee, err := b.minFeeWith(feePlaceholder)
		if err != nil {
			return ledger.Value{}, err
		}
		if totalOut, err = totalOut.CheckedAdd(ledger.NewValue(fee)); err != nil {
			return ledger.Value{}, err
		}
	}
	return totalOut.ClampedSub(totalIn), nil
}

// selectLargestFirst adds the UTxOs with the most ADA until the outputs and the fee are covered
func (b *TransactionBuilder) selectLargestFirst(
	available []ledger.TransactionUnspentOutput,
) ([]ledger.TransactionUnspentOutput, error) {
	remaining := slices.Clone(available)
	slices.SortStableFunc(remaining, func(x, y ledger.TransactionUnspentOutput) int {
		return cmp.Compare(y.Output.Amount.Coin, x.Output.Amount.Coin)
	})
	for {
		missing, err := b.deficit(true)
		if err != nil {
			return nil, err
		}
		if missing.Coin.IsZero() {
			return remaining, nil
		}
		if len(remaining) == 0 {
			return nil, InsufficientBalanceError{Deficit: ledger.NewValue(missing.Coin)}
		}
		if err := b.addSelected(remaining[0]); err != nil {
			return nil, err
		}
		remaining = remaining[1:]
	}
}

// selectRandomImprove covers the ADA needed by the outputs with random-improve and then covers
// the fee with the largest remaining UTxOs
func (b *TransactionBuilder) selectRandomImprove(
	available []ledger.TransactionUnspentOutput,
) ([]ledger.TransactionUnspentOutput, error) {
	missing, err := b.deficit(false)
	if err != nil {
		return nil, err
	}
	remaining := available
	if !missing.Coin.IsZero() {
		var chosen []ledger.TransactionUnspentOutput
		chosen, remaining, err = b.randomImprove(available, coinTarget, missing.Coin)
		if err != nil {
			return nil, err
		}
		for _, utxo := range chosen {
			if err := b.addSelected(utxo); err != nil {
				return nil, err
			}
		}
	}
	return b.selectLargestFirst(remaining)
}

// selectAssets covers each native asset the outputs need and returns the UTxOs left unused
func (b *TransactionBuilder) selectAssets(
	available []ledger.TransactionUnspentOutput,
	random bool,
) ([]ledger.TransactionUnspentOutput, error) {
	missing, err := b.deficit(false)
	if err != nil {
		return nil, err
	}
	remaining := available
	for _, policy := range missing.MultiAsset.Keys() {
		assets, _ := missing.MultiAsset.Get(policy)
		for _, name := range assets.Keys() {
			target, _ := assets.Get(name)
			t := assetTarget(policy, name)
			var chosen []ledger.TransactionUnspentOutput
			if random {
				chosen, remaining, err = b.randomImprove(remaining, t, target)
			} else {
				chosen, remaining, err = largestFirst(remaining, t, target)
			}
			if err != nil {
				return nil, err
			}
			for _, utxo := range chosen {
				if err := b.addSelected(utxo); err != nil {
					return nil, err
				}
			}
		}
	}
	return remaining, nil
}

// largestFirst picks the UTxOs holding the most of a quantity until target is reached
func largestFirst(
	available []ledger.TransactionUnspentOutput,
	t selectionTarget,
	target num.BigNum,
) ([]ledger.TransactionUnspentOutput, []ledger.TransactionUnspentOutput, error) {
	sorted := slices.Clone(available)
	slices.SortStableFunc(sorted, func(x, y ledger.TransactionUnspentOutput) int {
		return cmp.Compare(t.quantity(y), t.quantity(x))
	})
	var total num.BigNum
	var chosen, rest []ledger.TransactionUnspentOutput
	for _, utxo := range sorted {
		q := t.quantity(utxo)
		if total >= target || q.IsZero() {
			rest = append(rest, utxo)
			continue
		}
		total = saturatingAdd(total, q)
		chosen = append(chosen, utxo)
	}
	if total < target {
		return nil, nil, InsufficientBalanceError{Deficit: t.deficit(target - total)}
	}
	return chosen, rest, nil
}

// randomImprove picks random UTxOs holding a quantity until target is reached, then keeps
// adding random UTxOs while they bring the total closer to twice the target without going
// over three times the target
func (b *TransactionBuilder) randomImprove(
	available []ledger.TransactionUnspentOutput,
	t selectionTarget,
	target num.BigNum,
) ([]ledger.TransactionUnspentOutput, []ledger.TransactionUnspentOutput, error) {
	var pool, rest []ledger.TransactionUnspentOutput
	for _, utxo := range available {
		if t.quantity(utxo).IsZero() {
			rest = append(rest, utxo)
		} else {
			pool = append(pool, utxo)
		}
	}
	b.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	var total num.BigNum
	var chosen []ledger.TransactionUnspentOutput
	for len(pool) > 0 && total < target {
		total = saturatingAdd(total, t.quantity(pool[0]))
		chosen = append(chosen, pool[0])
		pool = pool[1:]
	}
	if total < target {
		return nil, nil, InsufficientBalanceError{Deficit: t.deficit(target - total)}
	}
	ideal := saturatingAdd(target, target)
	upper := saturatingAdd(ideal, target)
	for _, utxo := range pool {
		candidate := saturatingAdd(total, t.quantity(utxo))
		if candidate <= upper && distance(candidate, ideal) < distance(total, ideal) {
			total = candidate
			chosen = append(chosen, utxo)
			continue
		}
		rest = append(rest, utxo)
	}
	return chosen, rest, nil
}

func saturatingAdd(a, c num.BigNum) num.BigNum {
	ret, err := a.CheckedAdd(c)
	if err != nil {
		return num.BigNumMax
	}
	return ret
}

func distance(a, c num.BigNum) num.BigNum {
	if a > c {
		return a - c
	}
	return c - a
}
