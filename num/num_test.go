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

package num_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigNumCheckedBoundaries(t *testing.T) {
	if _, err := num.BigNumMax.CheckedAdd(num.BigNumOne); !errors.Is(err, num.ErrOverflow) {
		t.Fatalf("did not get expected overflow error, got: %v", err)
	}
	if _, err := num.BigNumZero.CheckedSub(num.BigNumOne); !errors.Is(err, num.ErrUnderflow) {
		t.Fatalf("did not get expected underflow error, got: %v", err)
	}
	if _, err := num.BigNumMax.CheckedMul(num.BigNum(2)); !errors.Is(err, num.ErrOverflow) {
		t.Fatalf("did not get expected overflow error, got: %v", err)
	}
	assert.Equal(t, num.BigNumZero, num.BigNumZero.ClampedSub(num.BigNumOne))
	assert.Equal(t, num.BigNum(3), num.BigNum(5).ClampedSub(num.BigNum(2)))
	sum, err := num.BigNum(40).CheckedAdd(num.BigNum(2))
	require.NoError(t, err)
	assert.Equal(t, num.BigNum(42), sum)
}

func TestBigNumOrdering(t *testing.T) {
	assert.Equal(t, -1, num.BigNum(1).Compare(num.BigNum(2)))
	assert.Equal(t, 0, num.BigNum(2).Compare(num.BigNum(2)))
	assert.Equal(t, 1, num.BigNumMax.Compare(num.BigNumZero))
	assert.True(t, num.BigNumZero.LessThan(num.BigNumMax))
	assert.Equal(t, num.BigNum(9), num.MaxBigNum(num.BigNum(9), num.BigNum(3)))
	assert.Equal(t, num.BigNum(3), num.MinBigNum(num.BigNum(9), num.BigNum(3)))
}

func TestBigNumStringAndJSON(t *testing.T) {
	v, err := num.BigNumFromString("18446744073709551615")
	require.NoError(t, err)
	assert.Equal(t, num.BigNumMax, v)
	if _, err := num.BigNumFromString("18446744073709551616"); err == nil {
		t.Fatalf("did not get expected error parsing out-of-range value")
	}
	if _, err := num.BigNumFromString("-1"); err == nil {
		t.Fatalf("did not get expected error parsing negative value")
	}
	data, err := json.Marshal(num.BigNum(1000000))
	require.NoError(t, err)
	assert.Equal(t, `"1000000"`, string(data))
	var back num.BigNum
	require.NoError(t, json.Unmarshal([]byte(`1000000`), &back))
	assert.Equal(t, num.BigNum(1000000), back)
}

func TestBigNumCbor(t *testing.T) {
	data, err := cbor.Encode(num.BigNum(1000000))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1a, 0x00, 0x0f, 0x42, 0x40}, data)
	var back num.BigNum
	require.NoError(t, back.UnmarshalCBOR(data))
	assert.Equal(t, num.BigNum(1000000), back)
	if err := back.UnmarshalCBOR([]byte{0x20}); !errors.Is(err, cbor.ErrDeserialize) {
		t.Fatalf("did not get expected deserialize error, got: %v", err)
	}
}

func TestIntRange(t *testing.T) {
	testDefs := []struct {
		input    string
		expected []byte
	}{
		{input: "0", expected: []byte{0x00}},
		{input: "-1", expected: []byte{0x20}},
		{input: "-500", expected: []byte{0x39, 0x01, 0xf3}},
		{input: "18446744073709551615", expected: []byte{0x1b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{input: "-18446744073709551616", expected: []byte{0x3b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}
	for _, testDef := range testDefs {
		v, err := num.IntFromString(testDef.input)
		require.NoError(t, err, testDef.input)
		data, err := v.MarshalCBOR()
		require.NoError(t, err)
		assert.Equal(t, testDef.expected, data, testDef.input)
		var back num.Int
		require.NoError(t, back.UnmarshalCBOR(data))
		assert.Equal(t, testDef.input, back.String())
	}
	if _, err := num.IntFromString("18446744073709551616"); !errors.Is(err, num.ErrOutOfRange) {
		t.Fatalf("did not get expected out of range error, got: %v", err)
	}
}

func TestIntAccessors(t *testing.T) {
	neg := num.NewNegativeInt(num.BigNum(5))
	assert.False(t, neg.IsPositive())
	mag, ok := neg.AsNegative()
	assert.True(t, ok)
	assert.Equal(t, num.BigNum(5), mag)
	_, ok = neg.AsPositive()
	assert.False(t, ok)
	v, err := neg.AsInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(-5), v)
	assert.True(t, num.NewNegativeInt(num.BigNumZero).IsZero())
	assert.Equal(t, num.NewIntFromInt64(math.MinInt64).String(), "-9223372036854775808")
	big := num.NewInt(num.BigNumMax)
	if _, err := big.AsInt64(); err == nil {
		t.Fatalf("did not get expected error converting to int64")
	}
	assert.Equal(t, -1, neg.Compare(num.NewIntFromInt64(-4)))
	assert.Equal(t, 1, num.NewIntFromInt64(-4).Compare(neg))
	assert.Equal(t, -1, neg.Compare(num.NewInt(num.BigNumZero)))
}

func TestBigIntCbor(t *testing.T) {
	testDefs := []string{
		"0",
		"12345",
		"-12345",
		"18446744073709551616",
		"-18446744073709551617",
		"1234567890123456789012345678901234567890",
	}
	for _, input := range testDefs {
		v, err := num.BigIntFromString(input)
		require.NoError(t, err)
		data, err := v.MarshalCBOR()
		require.NoError(t, err)
		var back num.BigInt
		require.NoError(t, back.UnmarshalCBOR(data))
		assert.True(t, v.Equal(back), input)
	}
	v, _ := num.BigIntFromString("18446744073709551616")
	data, _ := v.MarshalCBOR()
	// tag 2 around 9 bytes
	assert.Equal(t, []byte{0xc2, 0x49, 0x01, 0, 0, 0, 0, 0, 0, 0, 0}, data)
}

func TestBigIntDivision(t *testing.T) {
	testDefs := []struct {
		a, b        int64
		floor, ceil int64
	}{
		{a: 7, b: 2, floor: 3, ceil: 4},
		{a: -7, b: 2, floor: -4, ceil: -3},
		{a: 7, b: -2, floor: -4, ceil: -3},
		{a: -7, b: -2, floor: 3, ceil: 4},
		{a: 6, b: 3, floor: 2, ceil: 2},
	}
	for _, testDef := range testDefs {
		a := num.BigIntFromInt64(testDef.a)
		b := num.BigIntFromInt64(testDef.b)
		floor, err := a.DivFloor(b)
		require.NoError(t, err)
		ceil, err := a.DivCeil(b)
		require.NoError(t, err)
		assert.Equal(t, num.BigIntFromInt64(testDef.floor).String(), floor.String())
		assert.Equal(t, num.BigIntFromInt64(testDef.ceil).String(), ceil.String())
	}
	if _, err := num.BigIntFromInt64(1).DivFloor(num.BigInt{}); !errors.Is(err, num.ErrDivideByZero) {
		t.Fatalf("did not get expected divide by zero error")
	}
}

func TestUnitInterval(t *testing.T) {
	u, err := num.UnitIntervalFromDecimal("0.0577")
	require.NoError(t, err)
	assert.Equal(t, num.NewUnitInterval(577, 10000), u)
	data, err := u.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xd8, 0x1e, 0x82, 0x19, 0x02, 0x41, 0x19, 0x27, 0x10}, data)
	var back num.UnitInterval
	require.NoError(t, back.UnmarshalCBOR(data))
	assert.Equal(t, u, back)
	ceil, err := u.MulCeil(num.BigNum(10001))
	require.NoError(t, err)
	// 10001 * 577 / 10000 = 577.0577
	assert.Equal(t, num.BigNum(578), ceil)
	jsonData, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"numerator":"577","denominator":"10000"}`, string(jsonData))
}
