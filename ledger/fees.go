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

package ledger

import (
	"fmt"
	"math"
	"math/big"

	"github.com/blinklabs-io/gocsl/num"
)

const (
	// Per-output overhead added to the output size for the minimum coin calculation
	outputSizeOverhead = 160
	// Reference script fees are priced in tiers of this many bytes
	refScriptFeeTierSize = 25600
)

// Each reference script fee tier costs 1.2 times the previous one
var refScriptFeeMultiplier = big.NewRat(12, 10)

// LinearFee is the size based fee: constant + coefficient * size
type LinearFee struct {
	Coefficient num.BigNum `json:"coefficient"`
	Constant    num.BigNum `json:"constant"`
}

func NewLinearFee(coefficient, constant num.BigNum) LinearFee {
	return LinearFee{Coefficient: coefficient, Constant: constant}
}

// FeeForSize returns the fee for a transaction of size bytes
func (f LinearFee) FeeForSize(size int) (num.BigNum, error) {
	tmp, err := num.BigNum(size).CheckedMul(f.Coefficient)
	if err != nil {
		return 0, err
	}
	return tmp.CheckedAdd(f.Constant)
}

// MinFee returns the size based fee of tx
func MinFee(tx *Transaction, linearFee LinearFee) (num.BigNum, error) {
	data, err := tx.MarshalCBOR()
	if err != nil {
		return 0, err
	}
	return linearFee.FeeForSize(len(data))
}

// CalculateExUnitsCeilCost prices an execution budget, rounding up
func CalculateExUnitsCeilCost(exUnits ExUnits, prices ExUnitPrices) (num.BigNum, error) {
	memPrice := prices.MemPrice.Rat()
	stepPrice := prices.StepPrice.Rat()
	if memPrice == nil || stepPrice == nil {
		return 0, fmt.Errorf("execution unit price: %w", num.ErrDivideByZero)
	}
	total := new(big.Rat).Mul(memPrice, new(big.Rat).SetUint64(exUnits.Mem.Uint64()))
	total.Add(total, new(big.Rat).Mul(stepPrice, new(big.Rat).SetUint64(exUnits.Steps.Uint64())))
	return ratCeil(total)
}

// MinScriptFee prices the total budget of the transaction redeemers
func MinScriptFee(tx *Transaction, prices ExUnitPrices) (num.BigNum, error) {
	if tx.WitnessSet.Redeemers == nil {
		return 0, nil
	}
	total, err := tx.WitnessSet.Redeemers.TotalExUnits()
	if err != nil {
		return 0, err
	}
	return CalculateExUnitsCeilCost(total, prices)
}

// MinRefScriptFee prices totalSize bytes of reference scripts. Every 25600 bytes the price per
// byte is multiplied by 1.2. The result is rounded down.
func MinRefScriptFee(totalSize int, coinsPerByte num.UnitInterval) (num.BigNum, error) {
	price := coinsPerByte.Rat()
	if price == nil {
		return 0, fmt.Errorf("reference script price: %w", num.ErrDivideByZero)
	}
	acc := new(big.Rat)
	remaining := int64(totalSize)
	for remaining >= refScriptFeeTierSize {
		acc.Add(acc, new(big.Rat).Mul(price, big.NewRat(refScriptFeeTierSize, 1)))
		price = new(big.Rat).Mul(price, refScriptFeeMultiplier)
		remaining -= refScriptFeeTierSize
	}
	acc.Add(acc, new(big.Rat).Mul(price, big.NewRat(remaining, 1)))
	ret := new(big.Int).Quo(acc.Num(), acc.Denom())
	if !ret.IsUint64() {
		return 0, num.ErrOverflow
	}
	return num.BigNum(ret.Uint64()), nil
}

func ratCeil(r *big.Rat) (num.BigNum, error) {
	q, m := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	if m.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	if !q.IsUint64() {
		return 0, num.ErrOverflow
	}
	return num.BigNum(q.Uint64()), nil
}

// MinAdaForOutput returns the minimum coin the output must carry: (160 + output size) times
// coinsPerUtxoByte, where the size is measured with the output holding that coin amount
func MinAdaForOutput(output TransactionOutput, coinsPerUtxoByte num.BigNum) (num.BigNum, error) {
	required := func(o TransactionOutput) (num.BigNum, error) {
		size, err := o.Size()
		if err != nil {
			return 0, err
		}
		return num.BigNum(size + outputSizeOverhead).CheckedMul(coinsPerUtxoByte)
	}
	tmp := output
	tmp.Amount = output.Amount.Clone()
	// The size of the coin field depends on the coin itself, which converges within a few rounds
	for range 3 {
		coin, err := required(tmp)
		if err != nil {
			return 0, err
		}
		if tmp.Amount.Coin >= coin {
			return coin, nil
		}
		tmp.Amount.Coin = coin
	}
	tmp.Amount.Coin = math.MaxUint64
	return required(tmp)
}
