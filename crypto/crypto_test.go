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

package crypto_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashWrongLength(t *testing.T) {
	_, err := crypto.Ed25519KeyHashFromBytes(make([]byte, 20))
	if !errors.Is(err, crypto.ErrWrongLength) {
		t.Fatalf("did not get expected wrong length error, got: %v", err)
	}
	assert.Equal(t, "Ed25519KeyHash length was 20 bytes, expected 28", err.Error())
	if _, err := crypto.TransactionHashFromBytes(make([]byte, 28)); err == nil {
		t.Fatalf("did not get expected error for short transaction hash")
	}
	if _, err := crypto.ScriptHashFromHex("zz"); !errors.Is(err, crypto.ErrMalformedEncoding) {
		t.Fatalf("did not get expected malformed encoding error, got: %v", err)
	}
}

func TestHashBech32(t *testing.T) {
	raw := bytes.Repeat([]byte{0x42}, 28)
	keyHash, err := crypto.Ed25519KeyHashFromBytes(raw)
	require.NoError(t, err)
	encoded := keyHash.Bech32()
	assert.Contains(t, encoded, "addr_vkh1")
	back, err := crypto.Ed25519KeyHashFromBech32(encoded)
	require.NoError(t, err)
	assert.Equal(t, keyHash, back)
	// Same bytes, different domain
	if _, err := crypto.ScriptHashFromBech32(encoded); !errors.Is(err, crypto.ErrInvalidBech32) {
		t.Fatalf("did not get expected bech32 prefix error, got: %v", err)
	}
	custom, err := keyHash.ToBech32("stake_vkh")
	require.NoError(t, err)
	back, err = crypto.Ed25519KeyHashFromBech32(custom, "stake_vkh")
	require.NoError(t, err)
	assert.Equal(t, keyHash, back)
	// Corrupt the checksum
	corrupt := encoded[:len(encoded)-1] + "q"
	if encoded[len(encoded)-1] == 'q' {
		corrupt = encoded[:len(encoded)-1] + "p"
	}
	if _, err := crypto.Ed25519KeyHashFromBech32(corrupt); !errors.Is(err, crypto.ErrInvalidBech32) {
		t.Fatalf("did not get expected bech32 checksum error, got: %v", err)
	}
}

func TestHashCbor(t *testing.T) {
	raw := bytes.Repeat([]byte{0x01}, 32)
	txHash, err := crypto.TransactionHashFromBytes(raw)
	require.NoError(t, err)
	data, err := cbor.Encode(txHash)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x58, 0x20}, raw...), data)
	var back crypto.TransactionHash
	require.NoError(t, back.UnmarshalCBOR(data))
	assert.Equal(t, txHash, back)
	var wrong crypto.ScriptHash
	if err := wrong.UnmarshalCBOR(data); !errors.Is(err, crypto.ErrWrongLength) {
		t.Fatalf("did not get expected wrong length error, got: %v", err)
	}
}

func TestBlake2b(t *testing.T) {
	assert.Equal(
		t,
		"0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8",
		hex.EncodeToString(crypto.Blake2b256(nil)),
	)
	assert.Len(t, crypto.Blake2b224([]byte("abc")), 28)
	a := crypto.HashScriptBytes(0, []byte{0x01})
	b := crypto.HashScriptBytes(1, []byte{0x01})
	assert.NotEqual(t, a, b)
}

func TestNormalKeySignVerify(t *testing.T) {
	priv, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	pub := priv.ToPublic()
	msg := []byte("hello")
	sig := priv.Sign(msg)
	assert.True(t, pub.Verify(msg, sig))
	assert.False(t, pub.Verify([]byte("other"), sig))
	back, err := crypto.PrivateKeyFromBech32(priv.ToBech32())
	require.NoError(t, err)
	assert.Equal(t, priv.Bytes(), back.Bytes())
	assert.False(t, back.IsExtended())
	if _, err := crypto.PublicKeyFromBytes(make([]byte, 31)); !errors.Is(err, crypto.ErrWrongLength) {
		t.Fatalf("did not get expected wrong length error, got: %v", err)
	}
}

func TestExtendedKeySignVerify(t *testing.T) {
	priv, err := crypto.GenerateExtendedPrivateKey()
	require.NoError(t, err)
	assert.True(t, priv.IsExtended())
	pub := priv.ToPublic()
	msg := []byte("extended")
	assert.True(t, pub.Verify(msg, priv.Sign(msg)))
	back, err := crypto.PrivateKeyFromBech32(priv.ToBech32())
	require.NoError(t, err)
	assert.True(t, back.IsExtended())
	assert.Equal(t, pub, back.ToPublic())
}

func testRootKey() crypto.Bip32PrivateKey {
	entropy, _ := hex.DecodeString("0ccb74f36b7da1649a8144675522d4d8097c6412")
	return crypto.Bip32PrivateKeyFromBip39Entropy(entropy, nil)
}

func TestBip32SoftDerivationMatchesPublic(t *testing.T) {
	root := testRootKey()
	account := root.DerivePath([]uint32{
		crypto.HardenedIndex(1852),
		crypto.HardenedIndex(1815),
		crypto.HardenedIndex(0),
	})
	for _, index := range []uint32{0, 1, 0x7FFFFFFF} {
		fromPriv := account.Derive(index).ToPublic()
		fromPub, err := account.ToPublic().Derive(index)
		require.NoError(t, err)
		assert.Equal(t, fromPriv, fromPub, "index %d", index)
	}
	// Signing with the derived raw key verifies against the derived public key
	child := account.Derive(0).Derive(0)
	msg := []byte("tx body hash")
	sig := child.ToRawKey().Sign(msg)
	assert.True(t, child.ToPublic().ToRawKey().Verify(msg, sig))
}

func TestBip32HardenedPublicDerivationFails(t *testing.T) {
	pub := testRootKey().ToPublic()
	_, err := pub.Derive(0x80000000)
	if !errors.Is(err, crypto.ErrInvalidDerivationIndex) {
		t.Fatalf("did not get expected derivation index error, got: %v", err)
	}
	if _, err := pub.Derive(0x7FFFFFFF); err != nil {
		t.Fatalf("unexpected error deriving max soft index: %s", err)
	}
}

func TestBip32Encoding(t *testing.T) {
	root := testRootKey()
	back, err := crypto.Bip32PrivateKeyFromBech32(root.ToBech32())
	require.NoError(t, err)
	assert.Equal(t, root, back)
	pubBack, err := crypto.Bip32PublicKeyFromHex(root.ToPublic().String())
	require.NoError(t, err)
	assert.Equal(t, root.ToPublic(), pubBack)
	assert.Equal(t, root.ChainCode(), root.ToPublic().ChainCode())
	if _, err := crypto.Bip32PrivateKeyFromBytes(make([]byte, 64)); !errors.Is(err, crypto.ErrWrongLength) {
		t.Fatalf("did not get expected wrong length error, got: %v", err)
	}
}

func TestParseDerivationPath(t *testing.T) {
	path, err := crypto.ParseDerivationPath("m/1852'/1815'/0'/0/5")
	require.NoError(t, err)
	assert.Equal(
		t,
		[]uint32{0x8000073c, 0x80000717, 0x80000000, 0, 5},
		path,
	)
	path2, err := crypto.ParseDerivationPath("1852H/1815H/0H/0/5")
	require.NoError(t, err)
	assert.Equal(t, path, path2)
	if _, err := crypto.ParseDerivationPath("1852/abc"); err == nil {
		t.Fatalf("did not get expected error for invalid path")
	}
}
