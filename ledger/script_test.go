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
	"errors"
	"testing"

	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/internal/test"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMultisigScript(t *testing.T) ledger.NativeScript {
	t.Helper()
	return ledger.ScriptAll{
		Scripts: []ledger.NativeScript{
			ledger.ScriptNOfK{
				N: 1,
				Scripts: []ledger.NativeScript{
					ledger.ScriptPubkey{KeyHash: testKeyHash(t, "3f35615835258addded1c2e169f3a2ab4ae94d606bde030e7947f518")},
					ledger.ScriptPubkey{KeyHash: testKeyHash(t, "4ff5f8e3d43ce6b19ec4197e331e86d0f5e58b02d7a75b5e74cff95d")},
				},
			},
			ledger.TimelockStart{Slot: 1000},
			ledger.TimelockExpiry{Slot: 2000},
			ledger.ScriptAny{Scripts: []ledger.NativeScript{}},
		},
	}
}

func TestNativeScriptRoundTrip(t *testing.T) {
	script := testMultisigScript(t)
	data, err := script.MarshalCBOR()
	require.NoError(t, err)
	decoded, err := ledger.DecodeNativeScript(data)
	require.NoError(t, err)
	reencoded, err := decoded.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, data, reencoded)

	hash, err := ledger.NativeScriptHash(script)
	require.NoError(t, err)
	expected := crypto.Blake2b224(append([]byte{ledger.ScriptNamespaceNative}, data...))
	assert.Equal(t, expected, hash.Bytes())

	signers := ledger.NativeScriptRequiredSigners(script)
	assert.Len(t, signers, 2)
}

func TestNativeScriptJSON(t *testing.T) {
	script := testMultisigScript(t)
	out, err := ledger.NativeScriptToJSON(script)
	require.NoError(t, err)
	test.AssertJSONEqual(
		t,
		`{
			"type": "all",
			"scripts": [
				{
					"type": "atLeast",
					"required": 1,
					"scripts": [
						{"type": "sig", "keyHash": "3f35615835258addded1c2e169f3a2ab4ae94d606bde030e7947f518"},
						{"type": "sig", "keyHash": "4ff5f8e3d43ce6b19ec4197e331e86d0f5e58b02d7a75b5e74cff95d"}
					]
				},
				{"type": "after", "slot": 1000},
				{"type": "before", "slot": 2000},
				{"type": "any", "scripts": []}
			]
		}`,
		out,
	)
	decoded, err := ledger.NativeScriptFromJSON(out)
	require.NoError(t, err)
	expectedCbor, err := script.MarshalCBOR()
	require.NoError(t, err)
	decodedCbor, err := decoded.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, expectedCbor, decodedCbor)
}

func TestNativeScriptJSONErrors(t *testing.T) {
	testDefs := []string{
		`{"type": "sig", "keyHash": "abcd"}`,
		`{"type": "all"}`,
		`{"type": "atLeast", "scripts": []}`,
		`{"type": "after"}`,
		`{"type": "unknown"}`,
	}
	for _, testDef := range testDefs {
		_, err := ledger.NativeScriptFromJSON([]byte(testDef))
		if !errors.Is(err, ledger.ErrNativeScriptJSON) {
			t.Fatalf("expected native script JSON error for %s, got: %v", testDef, err)
		}
	}
}

func TestScriptHashNamespaces(t *testing.T) {
	body := []byte{0x4e, 0x4d, 0x01, 0x00, 0x00, 0x33, 0x22, 0x22, 0x20, 0x05, 0x12, 0x00, 0x12, 0x00, 0x11}
	v1 := ledger.NewPlutusScript(ledger.PlutusV1, body)
	v2 := ledger.NewPlutusScript(ledger.PlutusV2, body)
	v3 := ledger.NewPlutusScript(ledger.PlutusV3, body)
	assert.NotEqual(t, v1.Hash(), v2.Hash())
	assert.NotEqual(t, v2.Hash(), v3.Hash())
	assert.Equal(t, crypto.HashScriptBytes(ledger.ScriptNamespacePlutusV2, body), v2.Hash())
}

func TestScriptRefRoundTrip(t *testing.T) {
	testDefs := []ledger.ScriptRef{
		ledger.NewNativeScriptRef(testMultisigScript(t)),
		ledger.NewPlutusScriptRef(ledger.NewPlutusScript(ledger.PlutusV2, []byte{0x01, 0x02})),
	}
	for _, ref := range testDefs {
		data, err := ref.MarshalCBOR()
		require.NoError(t, err)
		// tag 24
		assert.Equal(t, []byte{0xd8, 0x18}, data[:2])
		var decoded ledger.ScriptRef
		require.NoError(t, decoded.UnmarshalCBOR(data))
		expectedHash, err := ref.Hash()
		require.NoError(t, err)
		decodedHash, err := decoded.Hash()
		require.NoError(t, err)
		assert.Equal(t, expectedHash, decodedHash)
	}
}
