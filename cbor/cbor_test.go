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

package cbor_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendHead(t *testing.T) {
	testDefs := []struct {
		arg      uint64
		expected []byte
	}{
		{arg: 0, expected: []byte{0x00}},
		{arg: 23, expected: []byte{0x17}},
		{arg: 24, expected: []byte{0x18, 0x18}},
		{arg: 256, expected: []byte{0x19, 0x01, 0x00}},
		{arg: 65536, expected: []byte{0x1a, 0x00, 0x01, 0x00, 0x00}},
		{
			arg:      1 << 32,
			expected: []byte{0x1b, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00},
		},
	}
	for _, testDef := range testDefs {
		got := cbor.AppendHead(nil, cbor.MajorTypeUint, testDef.arg)
		if !bytes.Equal(got, testDef.expected) {
			t.Fatalf(
				"did not get expected head for %d: got %x, wanted %x",
				testDef.arg,
				got,
				testDef.expected,
			)
		}
		// The library encoder must agree
		libData, err := cbor.Encode(testDef.arg)
		require.NoError(t, err)
		assert.Equal(t, testDef.expected, libData)
	}
}

func TestEncodeMapOrdering(t *testing.T) {
	a := []cbor.MapEntry{
		{Key: []byte{0x02}, Value: []byte{0x61, 0x62}},
		{Key: []byte{0x01}, Value: []byte{0x61, 0x61}},
	}
	b := []cbor.MapEntry{a[1], a[0]}
	encA, err := cbor.EncodeMap(a)
	require.NoError(t, err)
	encB, err := cbor.EncodeMap(b)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa2, 0x01, 0x61, 0x61, 0x02, 0x61, 0x62}, encA)
	assert.Equal(t, encA, encB)
	_, err = cbor.EncodeMap([]cbor.MapEntry{a[0], a[0]})
	assert.Error(t, err)
}

func TestDecodeMapEntries(t *testing.T) {
	entries, err := cbor.DecodeMapEntries([]byte{0xbf, 0x01, 0x02, 0x03, 0x04, 0xff})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, cbor.RawMessage{0x03}, entries[1].Key)
	assert.Equal(t, cbor.RawMessage{0x04}, entries[1].Value)
	if _, err := cbor.DecodeMapEntries([]byte{0xa2, 0x01, 0x02, 0x01, 0x03}); err == nil {
		t.Fatalf("did not get expected error for duplicate map key")
	}
	if _, err := cbor.DecodeMapEntries([]byte{0x82, 0x01, 0x02}); err == nil {
		t.Fatalf("did not get expected error for non-map")
	}
}

func TestDecodeExactTrailingBytes(t *testing.T) {
	var tmp uint64
	if err := cbor.DecodeExact([]byte{0x01, 0x02}, &tmp); err == nil {
		t.Fatalf("did not get expected error for trailing data")
	}
	require.NoError(t, cbor.DecodeExact([]byte{0x18, 0x2a}, &tmp))
	assert.Equal(t, uint64(42), tmp)
}

func TestEncodeBoundedBytes(t *testing.T) {
	short := bytes.Repeat([]byte{0xab}, 64)
	assert.Equal(t, cbor.EncodeBytes(short), cbor.EncodeBoundedBytes(short))
	long := bytes.Repeat([]byte{0xab}, 65)
	enc := cbor.EncodeBoundedBytes(long)
	assert.Len(t, enc, 70)
	assert.Equal(t, byte(0x5f), enc[0])
	assert.Equal(t, byte(0xff), enc[len(enc)-1])
	decoded, err := cbor.DecodeBytes(enc)
	require.NoError(t, err)
	assert.Equal(t, long, decoded)
}

func TestDecodeInt(t *testing.T) {
	neg, arg, err := cbor.DecodeInt(cbor.EncodeInt(true, 99))
	require.NoError(t, err)
	assert.True(t, neg)
	assert.Equal(t, uint64(99), arg)
	if _, _, err := cbor.DecodeInt([]byte{0x40}); err == nil {
		t.Fatalf("did not get expected error decoding bytes as int")
	}
}

func TestDeserializeErrorPath(t *testing.T) {
	base := errors.New("boom")
	err := cbor.WrapDeserialize(
		"TransactionBody",
		cbor.WrapDeserialize("outputs", cbor.WrapDeserializeIndex(1, base)),
	)
	assert.True(t, errors.Is(err, cbor.ErrDeserialize))
	assert.True(t, errors.Is(err, base))
	assert.Equal(
		t,
		"deserialize error: TransactionBody -> outputs -> [1]: boom",
		err.Error(),
	)
	assert.NoError(t, cbor.WrapDeserialize("x", nil))
}

func TestAlternativeTags(t *testing.T) {
	for _, alt := range []uint64{0, 6, 7, 127} {
		tagNum, wrapped := cbor.AlternativeToTag(alt)
		assert.False(t, wrapped)
		assert.True(t, cbor.IsAlternativeTag(tagNum))
		back, ok := cbor.TagToAlternative(tagNum)
		assert.True(t, ok)
		assert.Equal(t, alt, back)
	}
	tagNum, wrapped := cbor.AlternativeToTag(128)
	assert.True(t, wrapped)
	assert.Equal(t, uint64(cbor.CborTagAlternative3), tagNum)
}

func TestUnwrapSet(t *testing.T) {
	inner := cbor.EncodeArray([]cbor.RawMessage{{0x01}}, false)
	content, tagged, err := cbor.UnwrapSet(cbor.EncodeSet([]cbor.RawMessage{{0x01}}, true))
	require.NoError(t, err)
	assert.True(t, tagged)
	assert.Equal(t, cbor.RawMessage(inner), content)
	content, tagged, err = cbor.UnwrapSet(inner)
	require.NoError(t, err)
	assert.False(t, tagged)
	assert.Equal(t, cbor.RawMessage(inner), content)
}

func TestWrapped(t *testing.T) {
	inner := []byte{0x82, 0x01, 0x02}
	enc := cbor.EncodeWrapped(inner)
	libEnc, err := cbor.Encode(cbor.WrappedCbor(inner))
	require.NoError(t, err)
	assert.Equal(t, libEnc, enc)
	out, err := cbor.DecodeWrapped(enc)
	require.NoError(t, err)
	assert.Equal(t, inner, out)
}
