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

package ledger_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/blinklabs-io/gocsl/internal/test"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadatumJSON(t *testing.T) {
	testDefs := []struct {
		name     string
		schema   ledger.MetadataJsonSchema
		json     string
		expected string
	}{
		{
			name:     "basic object with mixed keys",
			schema:   ledger.BasicMetadataConversions,
			json:     `{"receiver_id": "SJKdj34k3jjKFDKfjFUDfdjkfd", "sender_id": "jkfdsufjdk34h3Sdfjdhfduf873", "comment": "happy birthday", "tags": [0, 264, -1024, 32]}`,
			expected: `{"receiver_id": "SJKdj34k3jjKFDKfjFUDfdjkfd", "sender_id": "jkfdsufjdk34h3Sdfjdhfduf873", "comment": "happy birthday", "tags": [0, 264, -1024, 32]}`,
		},
		{
			name:     "basic bytes and integer keys",
			schema:   ledger.BasicMetadataConversions,
			json:     `{"0x8badf00d": "0xdeadbeef", "9": 5, "obj": {"a": [{"5": 2}, {}]}}`,
			expected: `{"0x8badf00d": "0xdeadbeef", "9": 5, "obj": {"a": [{"5": 2}, {}]}}`,
		},
		{
			name:     "no conversions keeps hex strings as text",
			schema:   ledger.NoMetadataConversions,
			json:     `{"key": "0xdeadbeef", "list": [1, -2]}`,
			expected: `{"key": "0xdeadbeef", "list": [1, -2]}`,
		},
		{
			name:   "detailed schema",
			schema: ledger.DetailedMetadataSchema,
			json: `{"map": [
				{"k": {"string": "name"}, "v": {"string": "gocsl"}},
				{"k": {"int": 7}, "v": {"list": [{"int": -14}, {"bytes": "8badf00d"}]}}
			]}`,
			expected: `{"map": [
				{"k": {"string": "name"}, "v": {"string": "gocsl"}},
				{"k": {"int": 7}, "v": {"list": [{"int": -14}, {"bytes": "8badf00d"}]}}
			]}`,
		},
	}
	for _, testDef := range testDefs {
		m, err := ledger.MetadatumFromJSON([]byte(testDef.json), testDef.schema)
		if err != nil {
			t.Fatalf("%s: failure parsing JSON: %s", testDef.name, err)
		}
		// Check that the value survives a CBOR round trip before converting back
		data, err := m.MarshalCBOR()
		if err != nil {
			t.Fatalf("%s: failure encoding metadatum: %s", testDef.name, err)
		}
		decoded, err := ledger.DecodeMetadatum(data)
		if err != nil {
			t.Fatalf("%s: failure decoding metadatum: %s", testDef.name, err)
		}
		out, err := ledger.MetadatumToJSON(decoded, testDef.schema)
		if err != nil {
			t.Fatalf("%s: failure rendering JSON: %s", testDef.name, err)
		}
		test.AssertJSONEqual(t, testDef.expected, out)
	}
}

func TestMetadatumJSONErrors(t *testing.T) {
	testDefs := []struct {
		name   string
		schema ledger.MetadataJsonSchema
		json   string
	}{
		{name: "floats", schema: ledger.BasicMetadataConversions, json: `1.5`},
		{name: "booleans", schema: ledger.NoMetadataConversions, json: `true`},
		{name: "null", schema: ledger.BasicMetadataConversions, json: `{"a": null}`},
		{name: "long text", schema: ledger.NoMetadataConversions, json: `"` + strings.Repeat("x", 65) + `"`},
		{name: "two keys", schema: ledger.DetailedMetadataSchema, json: `{"int": 1, "string": "a"}`},
		{name: "bad hex", schema: ledger.DetailedMetadataSchema, json: `{"bytes": "zz"}`},
		{name: "integer out of range", schema: ledger.DetailedMetadataSchema, json: `{"int": 18446744073709551616}`},
	}
	for _, testDef := range testDefs {
		_, err := ledger.MetadatumFromJSON([]byte(testDef.json), testDef.schema)
		if !errors.Is(err, ledger.ErrMetadataJSON) {
			t.Fatalf("%s: expected metadata JSON error, got: %v", testDef.name, err)
		}
	}
	// Byte strings have no representation without conversions
	_, err := ledger.MetadatumToJSON(ledger.MetadataBytes{0x01}, ledger.NoMetadataConversions)
	assert.ErrorIs(t, err, ledger.ErrMetadataJSON)
}

func TestMetadataStringLimits(t *testing.T) {
	_, err := ledger.NewMetadataText(strings.Repeat("x", 64))
	assert.NoError(t, err)
	_, err = ledger.NewMetadataText(strings.Repeat("x", 65))
	assert.Error(t, err)
	_, err = ledger.NewMetadataBytes(make([]byte, 65))
	assert.Error(t, err)
	// Text string of 65 bytes
	data := append(test.DecodeHexString("7841"), bytes.Repeat([]byte("x"), 65)...)
	_, err = ledger.DecodeMetadatum(data)
	assert.Error(t, err)
}

func TestArbitraryBytesMetadatum(t *testing.T) {
	data := bytes.Repeat([]byte{0xab}, 150)
	m := ledger.EncodeArbitraryBytesAsMetadatum(data)
	require.Len(t, m, 3)
	for _, item := range m {
		chunk, ok := item.(ledger.MetadataBytes)
		require.True(t, ok)
		assert.LessOrEqual(t, len(chunk), ledger.MaxMetadataStringLength)
	}
	decoded, err := ledger.DecodeArbitraryBytesFromMetadatum(m)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestGeneralMetadataOrdering(t *testing.T) {
	first := ledger.GeneralTransactionMetadata{}
	second := ledger.GeneralTransactionMetadata{}
	labels := []num.BigNum{674, 1, 721}
	for _, label := range labels {
		first.Insert(label, ledger.MetadataText("v"))
	}
	for idx := len(labels) - 1; idx >= 0; idx-- {
		second.Insert(labels[idx], ledger.MetadataText("v"))
	}
	firstCbor, err := first.MarshalCBOR()
	require.NoError(t, err)
	secondCbor, err := second.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, firstCbor, secondCbor)
	assert.Equal(t, []num.BigNum{1, 674, 721}, first.Keys())
}

func TestAuxiliaryDataFormats(t *testing.T) {
	keyHash := testKeyHash(t, "4ff5f8e3d43ce6b19ec4197e331e86d0f5e58b02d7a75b5e74cff95d")
	testDefs := []struct {
		name         string
		auxData      *ledger.AuxiliaryData
		firstByte    byte
		expectAlonzo bool
	}{
		{
			name: "metadata only",
			auxData: &ledger.AuxiliaryData{
				Metadata: ledger.GeneralTransactionMetadata{674: ledger.MetadataText("hi")},
			},
			firstByte: 0xa1,
		},
		{
			name: "native scripts",
			auxData: &ledger.AuxiliaryData{
				Metadata:      ledger.GeneralTransactionMetadata{674: ledger.MetadataText("hi")},
				NativeScripts: []ledger.NativeScript{ledger.ScriptPubkey{KeyHash: keyHash}},
			},
			firstByte: 0x82,
		},
		{
			name: "plutus scripts",
			auxData: &ledger.AuxiliaryData{
				PlutusScripts: []ledger.PlutusScript{
					ledger.NewPlutusScript(ledger.PlutusV2, []byte{0x4e, 0x4d, 0x01}),
				},
			},
			firstByte:    0xd9,
			expectAlonzo: true,
		},
	}
	for _, testDef := range testDefs {
		data, err := testDef.auxData.MarshalCBOR()
		if err != nil {
			t.Fatalf("%s: failure encoding: %s", testDef.name, err)
		}
		if data[0] != testDef.firstByte {
			t.Fatalf("%s: encoding started with %02x, expected %02x", testDef.name, data[0], testDef.firstByte)
		}
		var decoded ledger.AuxiliaryData
		if err := decoded.UnmarshalCBOR(data); err != nil {
			t.Fatalf("%s: failure decoding: %s", testDef.name, err)
		}
		if decoded.PreferAlonzoFormat() != testDef.expectAlonzo {
			t.Fatalf("%s: unexpected format flag", testDef.name)
		}
		reencoded, err := decoded.MarshalCBOR()
		if err != nil {
			t.Fatalf("%s: failure re-encoding: %s", testDef.name, err)
		}
		assert.Equal(t, data, reencoded, testDef.name)
	}
}
