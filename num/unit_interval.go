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

package num

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/blinklabs-io/gocsl/cbor"
)

// UnitInterval is a ratio, encoded as tag 30 around [numerator, denominator]. It is used for
// pool margins, pledge influence and execution unit prices.
type UnitInterval struct {
	Numerator   BigNum `json:"numerator"`
	Denominator BigNum `json:"denominator"`
}

func NewUnitInterval(numerator, denominator BigNum) UnitInterval {
	return UnitInterval{Numerator: numerator, Denominator: denominator}
}

// UnitIntervalFromDecimal converts a decimal string such as "0.0577" to the exact ratio in
// lowest terms
func UnitIntervalFromDecimal(s string) (UnitInterval, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok || r.Sign() < 0 {
		return UnitInterval{}, ParseError{Type: "UnitInterval", Input: s}
	}
	return UnitIntervalFromRat(r)
}

// UnitIntervalFromRat converts a non-negative rational whose parts fit in a BigNum
func UnitIntervalFromRat(r *big.Rat) (UnitInterval, error) {
	if r.Sign() < 0 || !r.Num().IsUint64() || !r.Denom().IsUint64() {
		return UnitInterval{}, fmt.Errorf("%s: %w", r.String(), ErrOutOfRange)
	}
	return UnitInterval{
		Numerator:   BigNum(r.Num().Uint64()),
		Denominator: BigNum(r.Denom().Uint64()),
	}, nil
}

// Rat returns the ratio as a big.Rat. A zero denominator yields nil.
func (u UnitInterval) Rat() *big.Rat {
	if u.Denominator == 0 {
		return nil
	}
	return new(big.Rat).SetFrac(
		new(big.Int).SetUint64(uint64(u.Numerator)),
		new(big.Int).SetUint64(uint64(u.Denominator)),
	)
}

// MulCeil multiplies v by the ratio, rounding up
func (u UnitInterval) MulCeil(v BigNum) (BigNum, error) {
	if u.Denominator == 0 {
		return 0, ErrDivideByZero
	}
	prod := new(big.Int).Mul(
		new(big.Int).SetUint64(uint64(v)),
		new(big.Int).SetUint64(uint64(u.Numerator)),
	)
	d := new(big.Int).SetUint64(uint64(u.Denominator))
	q, m := new(big.Int).QuoRem(prod, d, new(big.Int))
	if m.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	if !q.IsUint64() {
		return 0, fmt.Errorf("%s * %s: %w", v, u, ErrOverflow)
	}
	return BigNum(q.Uint64()), nil
}

func (u UnitInterval) String() string {
	return fmt.Sprintf("%d/%d", u.Numerator, u.Denominator)
}

func (u UnitInterval) MarshalCBOR() ([]byte, error) {
	content := cbor.EncodeArray(
		[]cbor.RawMessage{
			cbor.EncodeUint(uint64(u.Numerator)),
			cbor.EncodeUint(uint64(u.Denominator)),
		},
		false,
	)
	return cbor.EncodeTagged(cbor.CborTagRational, content), nil
}

func (u *UnitInterval) UnmarshalCBOR(data []byte) error {
	tagNum, content, err := cbor.DecodeTagged(data)
	if err != nil {
		return cbor.WrapDeserialize("UnitInterval", err)
	}
	if tagNum != cbor.CborTagRational {
		return cbor.WrapDeserialize(
			"UnitInterval",
			fmt.Errorf("unexpected tag %d", tagNum),
		)
	}
	items, err := cbor.DecodeArrayLen(content, "UnitInterval", 2, 2)
	if err != nil {
		return cbor.WrapDeserialize("UnitInterval", err)
	}
	var tmp UnitInterval
	if err := tmp.Numerator.UnmarshalCBOR(items[0]); err != nil {
		return cbor.WrapDeserialize("UnitInterval", err)
	}
	if err := tmp.Denominator.UnmarshalCBOR(items[1]); err != nil {
		return cbor.WrapDeserialize("UnitInterval", err)
	}
	if tmp.Denominator == 0 {
		return cbor.WrapDeserialize("UnitInterval", errors.New("zero denominator"))
	}
	*u = tmp
	return nil
}
