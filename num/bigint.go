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
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/blinklabs-io/gocsl/cbor"
)

// BigInt is an arbitrary precision signed integer. Values outside the CBOR integer range are
// encoded as bignums (tags 2 and 3). The zero value is 0.
type BigInt struct {
	v *big.Int
}

// NewBigInt returns a BigInt holding a copy of v
func NewBigInt(v *big.Int) BigInt {
	if v == nil {
		return BigInt{}
	}
	return BigInt{v: new(big.Int).Set(v)}
}

func BigIntFromInt64(v int64) BigInt {
	return BigInt{v: big.NewInt(v)}
}

func BigIntFromString(s string) (BigInt, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return BigInt{}, ParseError{Type: "BigInt", Input: s}
	}
	return BigInt{v: v}, nil
}

func (b BigInt) val() *big.Int {
	if b.v == nil {
		return new(big.Int)
	}
	return b.v
}

// Big returns a copy of the value
func (b BigInt) Big() *big.Int {
	return new(big.Int).Set(b.val())
}

func (b BigInt) IsZero() bool {
	return b.val().Sign() == 0
}

// AsBigNum returns the value when it fits in a BigNum
func (b BigInt) AsBigNum() (BigNum, bool) {
	v := b.val()
	if v.Sign() < 0 || !v.IsUint64() {
		return 0, false
	}
	return BigNum(v.Uint64()), true
}

// AsInt returns the value when it fits in the CBOR integer range
func (b BigInt) AsInt() (Int, bool) {
	ret, err := IntFromBig(b.val())
	return ret, err == nil
}

func (b BigInt) Add(other BigInt) BigInt {
	return BigInt{v: new(big.Int).Add(b.val(), other.val())}
}

func (b BigInt) Sub(other BigInt) BigInt {
	return BigInt{v: new(big.Int).Sub(b.val(), other.val())}
}

func (b BigInt) Mul(other BigInt) BigInt {
	return BigInt{v: new(big.Int).Mul(b.val(), other.val())}
}

func (b BigInt) Pow(exp uint32) BigInt {
	return BigInt{v: new(big.Int).Exp(b.val(), big.NewInt(int64(exp)), nil)}
}

func (b BigInt) Abs() BigInt {
	return BigInt{v: new(big.Int).Abs(b.val())}
}

func (b BigInt) Increment() BigInt {
	return BigInt{v: new(big.Int).Add(b.val(), big.NewInt(1))}
}

// DivFloor divides rounding toward negative infinity
func (b BigInt) DivFloor(other BigInt) (BigInt, error) {
	if other.IsZero() {
		return BigInt{}, ErrDivideByZero
	}
	q, m := new(big.Int).DivMod(b.val(), other.val(), new(big.Int))
	// Euclidean division rounds toward negative infinity only for positive divisors
	if other.val().Sign() < 0 && m.Sign() != 0 {
		q.Sub(q, big.NewInt(1))
	}
	return BigInt{v: q}, nil
}

// DivCeil divides rounding toward positive infinity
func (b BigInt) DivCeil(other BigInt) (BigInt, error) {
	floor, err := b.DivFloor(other)
	if err != nil {
		return BigInt{}, err
	}
	if new(big.Int).Mul(floor.val(), other.val()).Cmp(b.val()) != 0 {
		return floor.Increment(), nil
	}
	return floor, nil
}

func (b BigInt) Compare(other BigInt) int {
	return b.val().Cmp(other.val())
}

func (b BigInt) Equal(other BigInt) bool {
	return b.Compare(other) == 0
}

func (b BigInt) String() string {
	return b.val().String()
}

func (b BigInt) MarshalCBOR() ([]byte, error) {
	v := b.val()
	if i, err := IntFromBig(v); err == nil {
		return i.MarshalCBOR()
	}
	if v.Sign() >= 0 {
		return cbor.EncodeTagged(
			cbor.CborTagPositiveBignum,
			cbor.EncodeBoundedBytes(v.Bytes()),
		), nil
	}
	// Negative bignums carry -1-v
	tmp := new(big.Int).Neg(v)
	tmp.Sub(tmp, big.NewInt(1))
	return cbor.EncodeTagged(
		cbor.CborTagNegativeBignum,
		cbor.EncodeBoundedBytes(tmp.Bytes()),
	), nil
}

func (b *BigInt) UnmarshalCBOR(data []byte) error {
	major, err := cbor.MajorType(data)
	if err != nil {
		return cbor.WrapDeserialize("BigInt", err)
	}
	switch major {
	case cbor.MajorTypeUint, cbor.MajorTypeNegInt:
		var tmp Int
		if err := tmp.UnmarshalCBOR(data); err != nil {
			return cbor.WrapDeserialize("BigInt", err)
		}
		b.v = tmp.Big()
		return nil
	case cbor.MajorTypeTag:
		tagNum, content, err := cbor.DecodeTagged(data)
		if err != nil {
			return cbor.WrapDeserialize("BigInt", err)
		}
		raw, err := cbor.DecodeBytes(content)
		if err != nil {
			return cbor.WrapDeserialize("BigInt", err)
		}
		v := new(big.Int).SetBytes(raw)
		switch tagNum {
		case cbor.CborTagPositiveBignum:
		case cbor.CborTagNegativeBignum:
			v.Neg(v)
			v.Sub(v, big.NewInt(1))
		default:
			return cbor.WrapDeserialize(
				"BigInt",
				fmt.Errorf("unexpected tag %d", tagNum),
			)
		}
		b.v = v
		return nil
	default:
		return cbor.WrapDeserialize(
			"BigInt",
			cbor.UnexpectedTypeError{Expected: "integer or bignum", Actual: major},
		)
	}
}

func (b BigInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	s, err := unquoteNumber(data)
	if err != nil {
		return err
	}
	tmp, err := BigIntFromString(s)
	if err != nil {
		return err
	}
	*b = tmp
	return nil
}
