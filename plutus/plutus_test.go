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

package plutus_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/internal/test"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/blinklabs-io/gocsl/plutus"
	"github.com/blinklabs-io/plutigo/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlutusDataCbor(t *testing.T) {
	twoTo64, _ := new(big.Int).SetString("18446744073709551616", 10)
	testDefs := []struct {
		name    string
		data    plutus.PlutusData
		cborHex string
	}{
		{
			name:    "constr with fields",
			data:    plutus.NewConstrPlutusData(0, plutus.NewPlutusIntegerFromInt64(1)),
			cborHex: "d8799f01ff",
		},
		{
			name:    "constr without fields",
			data:    plutus.NewConstrPlutusData(1),
			cborHex: "d87a80",
		},
		{
			name:    "constr 7",
			data:    plutus.NewConstrPlutusData(7),
			cborHex: "d9050080",
		},
		{
			name:    "constr 200",
			data:    plutus.NewConstrPlutusData(200),
			cborHex: "d8668218c880",
		},
		{
			name:    "empty list",
			data:    plutus.NewPlutusList(),
			cborHex: "80",
		},
		{
			name: "list",
			data: plutus.NewPlutusList(
				plutus.NewPlutusIntegerFromInt64(1),
				plutus.NewPlutusIntegerFromInt64(-2),
			),
			cborHex: "9f0121ff",
		},
		{
			name:    "bignum",
			data:    plutus.NewPlutusInteger(num.NewBigInt(twoTo64)),
			cborHex: "c249010000000000000000",
		},
		{
			name:    "bytes",
			data:    plutus.PlutusBytes{0xde, 0xad},
			cborHex: "42dead",
		},
	}
	for _, testDef := range testDefs {
		encoded, err := plutus.Encode(testDef.data)
		if err != nil {
			t.Fatalf("%s: unexpected error: %s", testDef.name, err)
		}
		if hex.EncodeToString(encoded) != testDef.cborHex {
			t.Fatalf(
				"%s: did not get expected CBOR\n  got:    %x\n  wanted: %s",
				testDef.name,
				encoded,
				testDef.cborHex,
			)
		}
		decoded, err := plutus.Decode(encoded)
		if err != nil {
			t.Fatalf("%s: unexpected decode error: %s", testDef.name, err)
		}
		if !plutus.Equal(testDef.data, decoded) {
			t.Fatalf("%s: decoded data does not match original", testDef.name)
		}
	}
}

func TestPlutusDataPreservesFraming(t *testing.T) {
	// Definite list and indefinite map as produced by other encoders
	for _, cborHex := range []string{"820102", "bf0102ff", "d879820102"} {
		d, err := plutus.Decode(test.DecodeHexString(cborHex))
		require.NoError(t, err)
		encoded, err := plutus.Encode(d)
		require.NoError(t, err)
		assert.Equal(t, cborHex, hex.EncodeToString(encoded))
	}
}

func TestPlutusMapOrder(t *testing.T) {
	m := plutus.NewPlutusMap()
	_, err := m.Insert(plutus.PlutusBytes("b"), plutus.NewPlutusIntegerFromInt64(1))
	require.NoError(t, err)
	_, err = m.Insert(plutus.PlutusBytes("a"), plutus.NewPlutusIntegerFromInt64(2))
	require.NoError(t, err)
	prev, err := m.Insert(plutus.PlutusBytes("b"), plutus.NewPlutusIntegerFromInt64(3))
	require.NoError(t, err)
	assert.True(t, plutus.Equal(plutus.NewPlutusIntegerFromInt64(1), prev))
	encoded, err := plutus.Encode(m)
	require.NoError(t, err)
	// Insertion order, not canonical order
	assert.Equal(t, "a2416203416102", hex.EncodeToString(encoded))
	v, ok := m.Get(plutus.PlutusBytes("a"))
	assert.True(t, ok)
	assert.True(t, plutus.Equal(plutus.NewPlutusIntegerFromInt64(2), v))
}

func TestPlutusBoundedBytes(t *testing.T) {
	long := bytes.Repeat([]byte{0x01}, 65)
	encoded, err := plutus.Encode(plutus.PlutusBytes(long))
	require.NoError(t, err)
	assert.Equal(t, byte(0x5f), encoded[0])
	assert.Equal(t, byte(0xff), encoded[len(encoded)-1])
	decoded, err := plutus.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, plutus.PlutusBytes(long), decoded)
}

func TestPlutusDataDecodeErrors(t *testing.T) {
	testDefs := []struct {
		name    string
		cborHex string
	}{
		{name: "text string", cborHex: "6161"},
		{name: "unknown tag", cborHex: "d903e880"},
		{name: "trailing bytes", cborHex: "0101"},
		{name: "bad list item", cborHex: "82016161"},
		{name: "duplicate map key", cborHex: "a201010102"},
	}
	for _, testDef := range testDefs {
		raw, _ := hex.DecodeString(testDef.cborHex)
		_, err := plutus.Decode(raw)
		if !errors.Is(err, cbor.ErrDeserialize) {
			t.Fatalf("%s: did not get expected deserialize error, got: %v", testDef.name, err)
		}
	}
	_, err := plutus.Decode(test.DecodeHexString("82016161"))
	assert.Contains(t, err.Error(), "PlutusData -> PlutusList -> [1]")
}

func TestIntegerJSON(t *testing.T) {
	value, err := num.BigIntFromString("12345")
	require.NoError(t, err)
	d := plutus.NewPlutusInteger(value)
	detailed, err := plutus.ToJSON(d, plutus.DetailedSchema)
	require.NoError(t, err)
	test.AssertJSONEqual(t, `{"int": 12345}`, detailed)
	basic, err := plutus.ToJSON(d, plutus.BasicConversions)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(basic))
	back, err := plutus.FromJSON(detailed, plutus.DetailedSchema)
	require.NoError(t, err)
	assert.True(t, plutus.Equal(d, back))
	back, err = plutus.FromJSON(basic, plutus.BasicConversions)
	require.NoError(t, err)
	assert.True(t, plutus.Equal(d, back))
}

func TestDetailedSchemaJSON(t *testing.T) {
	m := plutus.NewPlutusMap()
	_, err := m.Insert(plutus.PlutusBytes{0xaa}, plutus.NewPlutusList())
	require.NoError(t, err)
	d := plutus.NewConstrPlutusData(
		2,
		plutus.NewPlutusIntegerFromInt64(-7),
		plutus.PlutusBytes{0x01, 0x02},
		m,
	)
	expected := `{"constructor": 2, "fields": [
		{"int": -7},
		{"bytes": "0102"},
		{"map": [{"k": {"bytes": "aa"}, "v": {"list": []}}]}
	]}`
	out, err := plutus.ToJSON(d, plutus.DetailedSchema)
	require.NoError(t, err)
	test.AssertJSONEqual(t, expected, out)
	back, err := plutus.FromJSON([]byte(expected), plutus.DetailedSchema)
	require.NoError(t, err)
	assert.True(t, plutus.Equal(d, back))
	for _, bad := range []string{
		`{"int": 1.5}`,
		`{"int": 1, "bytes": "00"}`,
		`{"bytes": "zz"}`,
		`{"constructor": -1, "fields": []}`,
		`{"map": [{"k": {"int": 1}}]}`,
		`12`,
	} {
		if _, err := plutus.FromJSON([]byte(bad), plutus.DetailedSchema); !errors.Is(err, plutus.ErrJSON) {
			t.Fatalf("did not get expected JSON error for %s, got: %v", bad, err)
		}
	}
}

func TestBasicConversionsJSON(t *testing.T) {
	in := `{"0xaa": 1, "5": [1, 2], "hello": "0x01", "text": "abc"}`
	d, err := plutus.FromJSON([]byte(in), plutus.BasicConversions)
	require.NoError(t, err)
	m, ok := d.(*plutus.PlutusMap)
	require.True(t, ok)
	keys := m.Keys()
	require.Len(t, keys, 4)
	assert.Equal(t, plutus.PlutusBytes{0xaa}, keys[0])
	assert.True(t, plutus.Equal(plutus.NewPlutusIntegerFromInt64(5), keys[1]))
	assert.Equal(t, plutus.PlutusBytes("hello"), keys[2])
	v, _ := m.Get(plutus.PlutusBytes("text"))
	assert.Equal(t, plutus.PlutusBytes("abc"), v)
	out, err := plutus.ToJSON(d, plutus.BasicConversions)
	require.NoError(t, err)
	test.AssertJSONEqual(
		t,
		`{"0xaa": 1, "5": [1, 2], "0x68656c6c6f": "0x01", "0x74657874": "0x616263"}`,
		out,
	)
	if _, err := plutus.ToJSON(plutus.NewConstrPlutusData(0), plutus.BasicConversions); !errors.Is(err, plutus.ErrJSON) {
		t.Fatalf("did not get expected error for constructor, got: %v", err)
	}
	for _, bad := range []string{`1.5`, `null`, `true`, `{"a": null}`} {
		if _, err := plutus.FromJSON([]byte(bad), plutus.BasicConversions); !errors.Is(err, plutus.ErrJSON) {
			t.Fatalf("did not get expected JSON error for %s, got: %v", bad, err)
		}
	}
}

func TestNoConversionsJSON(t *testing.T) {
	in := `{"name": "abc", "values": [1, "x"]}`
	d, err := plutus.FromJSON([]byte(in), plutus.NoConversions)
	require.NoError(t, err)
	out, err := plutus.ToJSON(d, plutus.NoConversions)
	require.NoError(t, err)
	test.AssertJSONEqual(t, in, out)
	// 0x strings are not special
	d, err = plutus.FromJSON([]byte(`"0x01"`), plutus.NoConversions)
	require.NoError(t, err)
	assert.Equal(t, plutus.PlutusBytes("0x01"), d)
	if _, err := plutus.ToJSON(plutus.PlutusBytes{0xff}, plutus.NoConversions); !errors.Is(err, plutus.ErrJSON) {
		t.Fatalf("did not get expected error for invalid UTF-8, got: %v", err)
	}
}

func TestPlutigoBridge(t *testing.T) {
	d := plutus.NewConstrPlutusData(
		1,
		plutus.NewPlutusIntegerFromInt64(5),
		plutus.PlutusBytes{0x01},
	)
	pd, err := plutus.ToPlutigo(d)
	require.NoError(t, err)
	constr, ok := pd.(*data.Constr)
	if !ok {
		t.Fatalf("did not get expected plutigo type, got %T", pd)
	}
	assert.Equal(t, uint(1), constr.Tag)
	assert.Len(t, constr.Fields, 2)
	back, err := plutus.FromPlutigo(pd)
	require.NoError(t, err)
	expected, err := plutus.ToJSON(d, plutus.DetailedSchema)
	require.NoError(t, err)
	actual, err := plutus.ToJSON(back, plutus.DetailedSchema)
	require.NoError(t, err)
	test.AssertJSONEqual(t, string(expected), actual)
}

func TestDatumKeepsOriginalBytes(t *testing.T) {
	// Definite-length list with a non-minimal integer encoding
	raw := test.DecodeHexString("d879811801")
	var datum plutus.Datum
	require.NoError(t, datum.UnmarshalCBOR(raw))
	encoded, err := datum.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, raw, encoded)
}
