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
	"math"
	"math/big"

	"github.com/blinklabs-io/gocsl/cbor"
)

// Int is a signed integer covering the full CBOR integer range [-2^64, 2^64-1]. It is stored
// the way CBOR stores it: a sign and an argument, where negative values are -1-arg.
type Int struct {
	negative bool
	arg      uint64
}

// NewInt returns a non-negative Int
func NewInt(v BigNum) Int {
	return Int{arg: uint64(v)}
}

// NewNegativeInt returns -v
func NewNegativeInt(v BigNum) Int {
	if v == 0 {
		return Int{}
	}
	return Int{negative: true, arg: uint64(v) - 1}
}

func NewIntFromInt64(v int64) Int {
	if v >= 0 {
		return Int{arg: uint64(v)}
	}
	// -1-v does not overflow for any negative int64
	return Int{negative: true, arg: uint64(-1 - v)}
}

// IntFromBig converts a big.Int, failing when it is outside the CBOR integer range
func IntFromBig(v *big.Int) (Int, error) {
	if v.Sign() >= 0 {
		if !v.IsUint64() {
			return Int{}, fmt.Errorf("%s: %w", v, ErrOutOfRange)
		}
		return Int{arg: v.Uint64()}, nil
	}
	// arg = -1 - v
	tmp := new(big.Int).Neg(v)
	tmp.Sub(tmp, big.NewInt(1))
	if !tmp.IsUint64() {
		return Int{}, fmt.Errorf("%s: %w", v, ErrOutOfRange)
	}
	return Int{negative: true, arg: tmp.Uint64()}, nil
}

// IntFromString parses a base 10 string
func IntFromString(s string) (Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int{}, ParseError{Type: "Int", Input: s}
	}
	return IntFromBig(v)
}

// IsPositive reports whether the value is zero or greater
func (i Int) IsPositive() bool {
	return !i.negative
}

func (i Int) IsZero() bool {
	return !i.negative && i.arg == 0
}

// AsPositive returns the value when it is not negative
func (i Int) AsPositive() (BigNum, bool) {
	if i.negative {
		return 0, false
	}
	return BigNum(i.arg), true
}

// AsNegative returns the magnitude of a negative value. It fails for -2^64, whose magnitude
// does not fit in a BigNum.
func (i Int) AsNegative() (BigNum, bool) {
	if !i.negative || i.arg == math.MaxUint64 {
		return 0, false
	}
	return BigNum(i.arg + 1), true
}

func (i Int) AsInt64() (int64, error) {
	if i.arg > math.MaxInt64 {
		return 0, fmt.Errorf("%s does not fit in int64: %w", i, ErrOutOfRange)
	}
	if i.negative {
		return -1 - int64(i.arg), nil
	}
	return int64(i.arg), nil
}

func (i Int) AsInt32() (int32, error) {
	v, err := i.AsInt64()
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%s does not fit in int32: %w", i, ErrOutOfRange)
	}
	return int32(v), nil
}

func (i Int) Big() *big.Int {
	ret := new(big.Int).SetUint64(i.arg)
	if i.negative {
		ret.Neg(ret)
		ret.Sub(ret, big.NewInt(1))
	}
	return ret
}

// Compare returns -1, 0 or 1
func (i Int) Compare(other Int) int {
	switch {
	case i.negative && !other.negative:
		return -1
	case !i.negative && other.negative:
		return 1
	case i.arg == other.arg:
		return 0
	}
	less := i.arg < other.arg
	if i.negative {
		less = !less
	}
	if less {
		return -1
	}
	return 1
}

func (i Int) String() string {
	if !i.negative {
		return BigNum(i.arg).String()
	}
	return i.Big().String()
}

func (i Int) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeInt(i.negative, i.arg), nil
}

func (i *Int) UnmarshalCBOR(data []byte) error {
	negative, arg, err := cbor.DecodeInt(data)
	if err != nil {
		return cbor.WrapDeserialize("Int", err)
	}
	i.negative = negative
	i.arg = arg
	return nil
}

func (i Int) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

func (i *Int) UnmarshalJSON(data []byte) error {
	s, err := unquoteNumber(data)
	if err != nil {
		return err
	}
	tmp, err := IntFromString(s)
	if err != nil {
		return err
	}
	*i = tmp
	return nil
}
