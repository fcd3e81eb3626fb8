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
	"math/bits"
	"strconv"

	"github.com/blinklabs-io/gocsl/cbor"
)

// BigNum is an unsigned 64-bit quantity used for coin amounts, slots and indices. Arithmetic
// through the Checked* methods fails instead of wrapping.
type BigNum uint64

const (
	BigNumZero BigNum = 0
	BigNumOne  BigNum = 1
	BigNumMax  BigNum = math.MaxUint64
)

// BigNumFromString parses a base 10 string
func BigNumFromString(s string) (BigNum, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, ParseError{Type: "BigNum", Input: s}
	}
	return BigNum(v), nil
}

func (b BigNum) Uint64() uint64 {
	return uint64(b)
}

func (b BigNum) String() string {
	return strconv.FormatUint(uint64(b), 10)
}

func (b BigNum) IsZero() bool {
	return b == 0
}

func (b BigNum) CheckedAdd(other BigNum) (BigNum, error) {
	sum, carry := bits.Add64(uint64(b), uint64(other), 0)
	if carry != 0 {
		return 0, fmt.Errorf("%s + %s: %w", b, other, ErrOverflow)
	}
	return BigNum(sum), nil
}

func (b BigNum) CheckedSub(other BigNum) (BigNum, error) {
	diff, borrow := bits.Sub64(uint64(b), uint64(other), 0)
	if borrow != 0 {
		return 0, fmt.Errorf("%s - %s: %w", b, other, ErrUnderflow)
	}
	return BigNum(diff), nil
}

func (b BigNum) CheckedMul(other BigNum) (BigNum, error) {
	hi, lo := bits.Mul64(uint64(b), uint64(other))
	if hi != 0 {
		return 0, fmt.Errorf("%s * %s: %w", b, other, ErrOverflow)
	}
	return BigNum(lo), nil
}

// ClampedSub subtracts other, saturating at zero
func (b BigNum) ClampedSub(other BigNum) BigNum {
	if other > b {
		return 0
	}
	return b - other
}

// DivFloor divides by other, rounding down
func (b BigNum) DivFloor(other BigNum) (BigNum, error) {
	if other == 0 {
		return 0, ErrDivideByZero
	}
	return b / other, nil
}

// Compare returns -1, 0 or 1
func (b BigNum) Compare(other BigNum) int {
	switch {
	case b < other:
		return -1
	case b > other:
		return 1
	default:
		return 0
	}
}

func (b BigNum) LessThan(other BigNum) bool {
	return b < other
}

func MaxBigNum(a, b BigNum) BigNum {
	return max(a, b)
}

func MinBigNum(a, b BigNum) BigNum {
	return min(a, b)
}

// SumBigNums adds all values, failing on overflow
func SumBigNums(values ...BigNum) (BigNum, error) {
	var total BigNum
	var err error
	for _, v := range values {
		if total, err = total.CheckedAdd(v); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (b BigNum) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeUint(uint64(b)), nil
}

func (b *BigNum) UnmarshalCBOR(data []byte) error {
	v, err := cbor.DecodeUint(data)
	if err != nil {
		return cbor.WrapDeserialize("BigNum", err)
	}
	*b = BigNum(v)
	return nil
}

// MarshalJSON renders the value as a decimal string, since JSON numbers are not safe above 2^53
func (b BigNum) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON accepts a decimal string or a JSON number
func (b *BigNum) UnmarshalJSON(data []byte) error {
	s, err := unquoteNumber(data)
	if err != nil {
		return err
	}
	tmp, err := BigNumFromString(s)
	if err != nil {
		return err
	}
	*b = tmp
	return nil
}

// unquoteNumber returns the digits of a JSON string or number
func unquoteNumber(data []byte) (string, error) {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
