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
	"errors"
	"fmt"

	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
)

// Number of fee estimates tried before giving up on a stable fee
const maxFeeIterations = 10

var errChangeBelowMinimum = errors.New("change output below minimum ADA")

// AddChangeIfNeeded sets the fee and sends any value left over to changeAddr. It returns false
// when no change output was added, either because nothing is left over or because the leftover
// ADA is below the minimum for an output and is added to the fee instead.
func (b *TransactionBuilder) AddChangeIfNeeded(changeAddr ledger.Address) (bool, error) {
	return b.addChange(changeAddr, nil)
}

// AddChangeIfNeededWithDatum is AddChangeIfNeeded with a datum attached to each change output
func (b *TransactionBuilder) AddChangeIfNeededWithDatum(
	changeAddr ledger.Address,
	datum ledger.DataOption,
) (bool, error) {
	return b.addChange(changeAddr, &datum)
}

func (b *TransactionBuilder) addChange(
	changeAddr ledger.Address,
	datum *ledger.DataOption,
) (bool, error) {
	if b.fee != nil {
		return false, ErrFeeAlreadySet
	}
	if err := b.checkNetwork(changeAddr); err != nil {
		return false, err
	}
	totalIn, err := b.GetTotalInput()
	if err != nil {
		return false, err
	}
	totalOut, err := b.GetTotalOutput()
	if err != nil {
		return false, err
	}
	available, err := totalIn.CheckedSub(totalOut)
	if err != nil {
		return false, InsufficientBalanceError{Deficit: totalOut.ClampedSub(totalIn)}
	}
	feeNoChange, _, err := b.settleFee(func(num.BigNum) ([]ledger.TransactionOutput, error) {
		return nil, nil
	})
	if err != nil {
		return false, err
	}
	if available.Coin < feeNoChange {
		return false, InsufficientBalanceError{
			Deficit: ledger.NewValue(feeNoChange - available.Coin),
		}
	}
	newChange := func(amount ledger.Value) ledger.TransactionOutput {
		ret := ledger.NewTransactionOutput(changeAddr, amount)
		ret.Datum = datum
		return ret
	}
	if !available.HasAssets() {
		if available.Coin == feeNoChange {
			b.SetFee(feeNoChange)
			return false, nil
		}
		fee, outputs, err := b.settleFee(func(fee num.BigNum) ([]ledger.TransactionOutput, error) {
			coin, err := available.Coin.CheckedSub(fee)
			if err != nil {
				return nil, errChangeBelowMinimum
			}
			output := newChange(ledger.NewValue(coin))
			minAda, err := ledger.MinAdaForOutput(output, b.config.CoinsPerUtxoByte())
			if err != nil {
				return nil, err
			}
			if coin < minAda {
				return nil, errChangeBelowMinimum
			}
			return []ledger.TransactionOutput{output}, nil
		})
		if errors.Is(err, errChangeBelowMinimum) {
			b.logger.Debug(
				"leftover below minimum output, adding it to the fee",
				"component", "builder",
				"leftover", available.Coin.String(),
			)
			b.SetFee(available.Coin)
			return false, nil
		}
		if err != nil {
			return false, err
		}
		b.outputs = append(b.outputs, outputs...)
		b.SetFee(fee)
		b.logger.Debug(
			"added change output",
			"component", "builder",
			"fee", fee.String(),
		)
		return true, nil
	}
	chunks, err := b.packAssets(available.MultiAsset)
	if err != nil {
		return false, err
	}
	fee, outputs, err := b.settleFee(func(fee num.BigNum) ([]ledger.TransactionOutput, error) {
		coin, err := available.Coin.CheckedSub(fee)
		if err != nil {
			return nil, ErrNotEnoughAdaForChange
		}
		return b.assetChangeOutputs(chunks, coin, newChange)
	})
	if err != nil {
		return false, err
	}
	b.outputs = append(b.outputs, outputs...)
	b.SetFee(fee)
	b.logger.Debug(
		"added change outputs",
		"component", "builder",
		"outputs", len(outputs),
		"fee", fee.String(),
	)
	return true, nil
}

// settleFee searches for a fee that covers the transaction with the outputs produced for that
// fee appended
func (b *TransactionBuilder) settleFee(
	outputsFor func(num.BigNum) ([]ledger.TransactionOutput, error),
) (num.BigNum, []ledger.TransactionOutput, error) {
	var fee num.BigNum
	for range maxFeeIterations {
		outputs, err := outputsFor(fee)
		if err != nil {
			return 0, nil, err
		}
		tmp := b.clone()
		tmp.outputs = append(tmp.outputs, outputs...)
		next, err := tmp.minFeeWith(fee)
		if err != nil {
			return 0, nil, err
		}
		if next == fee {
			return fee, outputs, nil
		}
		fee = next
	}
	// Accept a fee above the minimum if the estimates keep moving
	outputs, err := outputsFor(fee)
	if err != nil {
		return 0, nil, err
	}
	tmp := b.clone()
	tmp.outputs = append(tmp.outputs, outputs...)
	minFee, err := tmp.minFeeWith(fee)
	if err != nil {
		return 0, nil, err
	}
	if minFee > fee {
		return 0, nil, fmt.Errorf("%w: fee did not settle", ErrUnbalancedTransaction)
	}
	return fee, outputs, nil
}

// packAssets splits assets into groups that each fit in an output value of at most the maximum
// value size
func (b *TransactionBuilder) packAssets(assets ledger.MultiAsset) ([]ledger.MultiAsset, error) {
	maxSize := int(b.config.MaxValueSize())
	// Size checks use the largest coin so that the final coin never grows a value past the limit
	valueSize := func(ma ledger.MultiAsset) (int, error) {
		data, err := ledger.Value{Coin: num.BigNumMax, MultiAsset: ma}.MarshalCBOR()
		if err != nil {
			return 0, err
		}
		return len(data), nil
	}
	var ret []ledger.MultiAsset
	current := ledger.MultiAsset{}
	for _, policy := range assets.Keys() {
		policyAssets, _ := assets.Get(policy)
		for _, name := range policyAssets.Keys() {
			quantity, _ := policyAssets.Get(name)
			if quantity.IsZero() {
				continue
			}
			candidate := current.Clone()
			candidate.SetAsset(policy, name, quantity)
			size, err := valueSize(candidate)
			if err != nil {
				return nil, err
			}
			if size <= maxSize {
				current = candidate
				continue
			}
			if current.Len() == 0 {
				return nil, fmt.Errorf(
					"%w: asset %s.%s alone needs %d bytes, maximum %d",
					ErrOutputValueTooLarge,
					policy,
					name,
					size,
					maxSize,
				)
			}
			ret = append(ret, current)
			current = ledger.MultiAsset{}
			current.SetAsset(policy, name, quantity)
		}
	}
	if current.Len() > 0 {
		ret = append(ret, current)
	}
	return ret, nil
}

// assetChangeOutputs gives each asset group its minimum ADA and places the rest of coin in the
// last group, or in a separate output when pure ADA change is preferred and can stand alone
func (b *TransactionBuilder) assetChangeOutputs(
	chunks []ledger.MultiAsset,
	coin num.BigNum,
	newChange func(ledger.Value) ledger.TransactionOutput,
) ([]ledger.TransactionOutput, error) {
	coinsPerUtxoByte := b.config.CoinsPerUtxoByte()
	ret := make([]ledger.TransactionOutput, 0, len(chunks)+1)
	remaining := coin
	for _, chunk := range chunks {
		output := newChange(ledger.Value{MultiAsset: chunk})
		minAda, err := ledger.MinAdaForOutput(output, coinsPerUtxoByte)
		if err != nil {
			return nil, err
		}
		if remaining, err = remaining.CheckedSub(minAda); err != nil {
			return nil, ErrNotEnoughAdaForChange
		}
		output.Amount.Coin = minAda
		ret = append(ret, output)
	}
	if remaining.IsZero() {
		return ret, nil
	}
	if b.config.PreferPureChange() {
		pure := newChange(ledger.NewValue(remaining))
		minAda, err := ledger.MinAdaForOutput(pure, coinsPerUtxoByte)
		if err != nil {
			return nil, err
		}
		if remaining >= minAda {
			return append(ret, pure), nil
		}
	}
	last := &ret[len(ret)-1]
	total, err := last.Amount.Coin.CheckedAdd(remaining)
	if err != nil {
		return nil, err
	}
	last.Amount.Coin = total
	return ret, nil
}
