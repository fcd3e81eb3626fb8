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

package crypto

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// HardenedOffset is added to an index to make it hardened
	HardenedOffset uint32 = 0x80000000

	Bip32PrivateKeySize = 96
	Bip32PublicKeySize  = 64
	chainCodeSize       = 32

	Bip32PrivateKeyPrefix = "xprv"
	Bip32PublicKeyPrefix  = "xpub"

	// Icarus master key generation
	icarusIterations = 4096
)

// HardenedIndex returns the hardened form of index
func HardenedIndex(index uint32) uint32 {
	return index | HardenedOffset
}

func isHardened(index uint32) bool {
	return index&HardenedOffset != 0
}

// ParseDerivationPath parses a path such as "m/1852'/1815'/0'/0/0" or "1852H/1815H/0H/0/0"
func ParseDerivationPath(path string) ([]uint32, error) {
	path = strings.TrimPrefix(strings.TrimSpace(path), "m/")
	if path == "" || path == "m" {
		return nil, nil
	}
	parts := strings.Split(path, "/")
	ret := make([]uint32, 0, len(parts))
	for _, part := range parts {
		hardened := false
		if trimmed, ok := strings.CutSuffix(part, "'"); ok {
			part, hardened = trimmed, true
		} else if trimmed, ok := strings.CutSuffix(strings.ToUpper(part), "H"); ok {
			part, hardened = trimmed, true
		}
		v, err := strconv.ParseUint(part, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("invalid derivation path component %q: %w", part, err)
		}
		idx := uint32(v)
		if hardened {
			idx = HardenedIndex(idx)
		}
		ret = append(ret, idx)
	}
	return ret, nil
}

// Bip32PrivateKey is a BIP32-Ed25519 extended private key: kL || kR || chain code
type Bip32PrivateKey struct {
	data [Bip32PrivateKeySize]byte
}

// Bip32PrivateKeyFromBip39Entropy derives a master key from BIP39 entropy the way Icarus
// wallets do
func Bip32PrivateKeyFromBip39Entropy(entropy []byte, password []byte) Bip32PrivateKey {
	seed := pbkdf2.Key(password, entropy, icarusIterations, Bip32PrivateKeySize, sha512.New)
	seed[0] &= 0xf8
	seed[31] &= 0x1f
	seed[31] |= 0x40
	var ret Bip32PrivateKey
	copy(ret.data[:], seed)
	return ret
}

func Bip32PrivateKeyFromBytes(b []byte) (Bip32PrivateKey, error) {
	if len(b) != Bip32PrivateKeySize {
		return Bip32PrivateKey{}, WrongLengthError{
			Type:     "Bip32PrivateKey",
			Expected: Bip32PrivateKeySize,
			Actual:   len(b),
		}
	}
	if _, err := PrivateKeyFromExtendedBytes(b[:64]); err != nil {
		return Bip32PrivateKey{}, err
	}
	var ret Bip32PrivateKey
	copy(ret.data[:], b)
	return ret, nil
}

func Bip32PrivateKeyFromHex(s string) (Bip32PrivateKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Bip32PrivateKey{}, fmt.Errorf("Bip32PrivateKey: %w: %w", ErrMalformedEncoding, err)
	}
	return Bip32PrivateKeyFromBytes(b)
}

func Bip32PrivateKeyFromBech32(s string) (Bip32PrivateKey, error) {
	_, data, err := decodeBech32Prefixed("Bip32PrivateKey", s, Bip32PrivateKeyPrefix)
	if err != nil {
		return Bip32PrivateKey{}, err
	}
	return Bip32PrivateKeyFromBytes(data)
}

func (k Bip32PrivateKey) Bytes() []byte {
	return append([]byte(nil), k.data[:]...)
}

func (k Bip32PrivateKey) String() string {
	return hex.EncodeToString(k.data[:])
}

func (k Bip32PrivateKey) ToBech32() string {
	ret, _ := EncodeBech32(Bip32PrivateKeyPrefix, k.data[:])
	return ret
}

func (k Bip32PrivateKey) ChainCode() []byte {
	return append([]byte(nil), k.data[64:]...)
}

// ToRawKey returns the extended signing key without the chain code
func (k Bip32PrivateKey) ToRawKey() PrivateKey {
	return PrivateKey{extended: true, data: append([]byte(nil), k.data[:64]...)}
}

func (k Bip32PrivateKey) ToPublic() Bip32PublicKey {
	var ret Bip32PublicKey
	copy(ret.data[:32], extendedPublicKey(k.data[:32]))
	copy(ret.data[32:], k.data[64:])
	return ret
}

// Derive returns the child key at index. Both hardened and soft indices are allowed.
func (k Bip32PrivateKey) Derive(index uint32) Bip32PrivateKey {
	kL := k.data[:32]
	kR := k.data[32:64]
	cc := k.data[64:]
	idx := binary.LittleEndian.AppendUint32(nil, index)
	zMac := hmac.New(sha512.New, cc)
	ccMac := hmac.New(sha512.New, cc)
	if isHardened(index) {
		zMac.Write([]byte{0x00})
		zMac.Write(kL)
		zMac.Write(kR)
		ccMac.Write([]byte{0x01})
		ccMac.Write(kL)
		ccMac.Write(kR)
	} else {
		pub := extendedPublicKey(kL)
		zMac.Write([]byte{0x02})
		zMac.Write(pub)
		ccMac.Write([]byte{0x03})
		ccMac.Write(pub)
	}
	zMac.Write(idx)
	ccMac.Write(idx)
	z := zMac.Sum(nil)
	var ret Bip32PrivateKey
	copy(ret.data[:32], add28Mul8(kL, z[:28]))
	copy(ret.data[32:64], add256(kR, z[32:]))
	copy(ret.data[64:], ccMac.Sum(nil)[32:])
	return ret
}

// DerivePath derives along each index in turn
func (k Bip32PrivateKey) DerivePath(path []uint32) Bip32PrivateKey {
	ret := k
	for _, index := range path {
		ret = ret.Derive(index)
	}
	return ret
}

// Bip32PublicKey is a BIP32-Ed25519 extended public key: public key || chain code
type Bip32PublicKey struct {
	data [Bip32PublicKeySize]byte
}

func Bip32PublicKeyFromBytes(b []byte) (Bip32PublicKey, error) {
	if len(b) != Bip32PublicKeySize {
		return Bip32PublicKey{}, WrongLengthError{
			Type:     "Bip32PublicKey",
			Expected: Bip32PublicKeySize,
			Actual:   len(b),
		}
	}
	if _, err := new(edwards25519.Point).SetBytes(b[:32]); err != nil {
		return Bip32PublicKey{}, fmt.Errorf("Bip32PublicKey: %w: %w", ErrInvalidKey, err)
	}
	var ret Bip32PublicKey
	copy(ret.data[:], b)
	return ret, nil
}

func Bip32PublicKeyFromHex(s string) (Bip32PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Bip32PublicKey{}, fmt.Errorf("Bip32PublicKey: %w: %w", ErrMalformedEncoding, err)
	}
	return Bip32PublicKeyFromBytes(b)
}

func Bip32PublicKeyFromBech32(s string) (Bip32PublicKey, error) {
	_, data, err := decodeBech32Prefixed("Bip32PublicKey", s, Bip32PublicKeyPrefix)
	if err != nil {
		return Bip32PublicKey{}, err
	}
	return Bip32PublicKeyFromBytes(data)
}

func (k Bip32PublicKey) Bytes() []byte {
	return append([]byte(nil), k.data[:]...)
}

func (k Bip32PublicKey) String() string {
	return hex.EncodeToString(k.data[:])
}

func (k Bip32PublicKey) ToBech32() string {
	ret, _ := EncodeBech32(Bip32PublicKeyPrefix, k.data[:])
	return ret
}

func (k Bip32PublicKey) ChainCode() []byte {
	return append([]byte(nil), k.data[32:]...)
}

func (k Bip32PublicKey) ToRawKey() PublicKey {
	var ret PublicKey
	copy(ret.data[:], k.data[:32])
	return ret
}

// Derive returns the child key at a soft index. Hardened indices need the private key and
// fail with ErrInvalidDerivationIndex.
func (k Bip32PublicKey) Derive(index uint32) (Bip32PublicKey, error) {
	if isHardened(index) {
		return Bip32PublicKey{}, DerivationIndexError{Index: index}
	}
	pub := k.data[:32]
	cc := k.data[32:]
	idx := binary.LittleEndian.AppendUint32(nil, index)
	zMac := hmac.New(sha512.New, cc)
	zMac.Write([]byte{0x02})
	zMac.Write(pub)
	zMac.Write(idx)
	ccMac := hmac.New(sha512.New, cc)
	ccMac.Write([]byte{0x03})
	ccMac.Write(pub)
	ccMac.Write(idx)
	z := zMac.Sum(nil)
	parent, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return Bip32PublicKey{}, fmt.Errorf("Bip32PublicKey: %w: %w", ErrInvalidKey, err)
	}
	tweak := new(edwards25519.Point).ScalarBaseMult(
		reduceScalar(add28Mul8(make([]byte, 32), z[:28])),
	)
	child := new(edwards25519.Point).Add(parent, tweak)
	var ret Bip32PublicKey
	copy(ret.data[:32], child.Bytes())
	copy(ret.data[32:], ccMac.Sum(nil)[32:])
	return ret, nil
}

// DerivePath derives along each index in turn
func (k Bip32PublicKey) DerivePath(path []uint32) (Bip32PublicKey, error) {
	ret := k
	for _, index := range path {
		var err error
		if ret, err = ret.Derive(index); err != nil {
			return Bip32PublicKey{}, err
		}
	}
	return ret, nil
}

// add28Mul8 returns x + 8*y over 256-bit little-endian integers, where y has 28 bytes
func add28Mul8(x []byte, y []byte) []byte {
	out := make([]byte, 32)
	var carry uint16
	for i := range 28 {
		r := uint16(x[i]) + uint16(y[i])<<3 + carry
		out[i] = byte(r)
		carry = r >> 8
	}
	for i := 28; i < 32; i++ {
		r := uint16(x[i]) + carry
		out[i] = byte(r)
		carry = r >> 8
	}
	return out
}

// add256 returns x + y modulo 2^256 over little-endian integers
func add256(x []byte, y []byte) []byte {
	out := make([]byte, 32)
	var carry uint16
	for i := range 32 {
		r := uint16(x[i]) + uint16(y[i]) + carry
		out[i] = byte(r)
		carry = r >> 8
	}
	return out
}
