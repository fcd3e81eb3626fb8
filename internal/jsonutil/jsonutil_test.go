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

package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectEntriesOrder(t *testing.T) {
	v, err := Parse([]byte(` {"b": 1, "aA": "x\"y", "c": [1, {"d": null}]} `))
	require.NoError(t, err)
	entries, err := ObjectEntries(v)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "b", entries[0].Key)
	assert.Equal(t, "aA", entries[1].Key)
	assert.Equal(t, "c", entries[2].Key)
	s, err := AsString(entries[1].Value)
	require.NoError(t, err)
	assert.Equal(t, `x"y`, s)
	items, err := ArrayItems(entries[2].Value)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, Object, items[1].Type)
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte(`{"a": 1} x`)); err == nil {
		t.Fatalf("did not get expected error for trailing data")
	}
	v, err := Parse([]byte(`{"a": 1, "a": 2}`))
	require.NoError(t, err)
	if _, err := ObjectEntries(v); err == nil {
		t.Fatalf("did not get expected error for duplicate key")
	}
	v, err = Parse([]byte(`1e3`))
	require.NoError(t, err)
	if _, err := AsInteger(v); err == nil {
		t.Fatalf("did not get expected error for float")
	}
	v, err = Parse([]byte(`-340282366920938463463374607431768211456`))
	require.NoError(t, err)
	i, err := AsInteger(v)
	require.NoError(t, err)
	assert.Equal(t, "-340282366920938463463374607431768211456", i.String())
}

func TestEncode(t *testing.T) {
	out := EncodeObject([]Member{
		{Key: "z", Value: []byte("1")},
		{Key: "a<b", Value: EncodeArray([][]byte{EncodeString("é"), []byte("2")})},
	})
	assert.Equal(t, `{"z":1,"a<b":["é",2]}`, string(out))
}
