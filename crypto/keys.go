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
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/blinklabs-io/gocsl/cbor"
)

const (
	PublicKeySize          = ed25519.PublicKeySize
	NormalPrivateKeySize   = ed25519.SeedSize
	ExtendedPrivateKeySize = 64

	PublicKeyPrefix          = "ed25519_pk"
	NormalPrivateKeyPrefix   = "ed25519_sk"
	ExtendedPrivateKeyPrefix = "ed25519e_sk"
)

// PublicKey is an ed25519 verification key
type PublicKey struct {
	data [PublicKeySize]byte
}

func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) != PublicKeySize {
		return PublicKey{}, WrongLengthError{
			Type:     "PublicKey",
			Expected: PublicKeySize,
			Actual:   len(b),
		}
	}
	var ret PublicKey
	copy(ret.data[:], b)
	return ret, nil
}

func PublicKeyFromHex(s string) (PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("PublicKey: %w: %w", ErrMalformedEncoding, err)
	}
	return PublicKeyFromBytes(b)
}

func PublicKeyFromBech32(s string) (PublicKey, error) {
	_, data, err := decodeBech32Prefixed("PublicKey", s, PublicKeyPrefix)
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKeyFromBytes(data)
}

func (k PublicKey) Bytes() []byte {
	return append([]byte(nil), k.data[:]...)
}

func (k PublicKey) String() string {
	return hex.EncodeToString(k.data[:])
}

func (k PublicKey) ToBech32() string {
	// The prefix is a valid constant
	ret, _ := EncodeBech32(PublicKeyPrefix, k.data[:])
	return ret
}

// Hash returns the key hash used in credentials and required signers
func (k PublicKey) Hash() Ed25519KeyHash {
	return HashKeyBytes(k.data[:])
}

// Verify reports whether sig is a valid signature of data by this key
func (k PublicKey) Verify(data []byte, sig Ed25519Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(k.data[:]), data, sig.Bytes())
}

func (k PublicKey) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeBytes(k.data[:]), nil
}

func (k *PublicKey) UnmarshalCBOR(data []byte) error {
	b, err := cbor.DecodeBytes(data)
	if err != nil {
		return cbor.WrapDeserialize("PublicKey", err)
	}
	tmp, err := PublicKeyFromBytes(b)
	if err != nil {
		return cbor.WrapDeserialize("PublicKey", err)
	}
	*k = tmp
	return nil
}

func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PublicKey) UnmarshalText(text []byte) error {
	tmp, err := PublicKeyFromHex(string(text))
	if err != nil {
		return err
	}
	*k = tmp
	return nil
}

// PrivateKey is an ed25519 signing key, either a normal 32-byte seed or a 64-byte extended
// key as produced by BIP32-Ed25519 derivation
type PrivateKey struct {
	extended bool
	// seed for normal keys, kL || kR for extended keys
	data []byte
}

// GeneratePrivateKey creates a random normal key
func GeneratePrivateKey() (PrivateKey, error) {
	seed := make([]byte, NormalPrivateKeySize)
	if _, err := rand.Read(seed); err != nil {
		return PrivateKey{}, err
	}
	return PrivateKey{data: seed}, nil
}

// GenerateExtendedPrivateKey creates a random extended key
func GenerateExtendedPrivateKey() (PrivateKey, error) {
	seed := make([]byte, NormalPrivateKeySize)
	if _, err := rand.Read(seed); err != nil {
		return PrivateKey{}, err
	}
	// Expanded the same way as a normal seed
	digest := sha512.Sum512(seed)
	clampScalar(digest[:32])
	return PrivateKey{extended: true, data: digest[:]}, nil
}

// PrivateKeyFromNormalBytes builds a key from a 32-byte seed
func PrivateKeyFromNormalBytes(b []byte) (PrivateKey, error) {
	if len(b) != NormalPrivateKeySize {
		return PrivateKey{}, WrongLengthError{
			Type:     "PrivateKey",
			Expected: NormalPrivateKeySize,
			Actual:   len(b),
		}
	}
	return PrivateKey{data: append([]byte(nil), b...)}, nil
}

// PrivateKeyFromExtendedBytes builds a key from a 64-byte kL || kR pair
func PrivateKeyFromExtendedBytes(b []byte) (PrivateKey, error) {
	if len(b) != ExtendedPrivateKeySize {
		return PrivateKey{}, WrongLengthError{
			Type:     "PrivateKey",
			Expected: ExtendedPrivateKeySize,
			Actual:   len(b),
		}
	}
	// The top bit of kL must be clear and the lowest three bits must be zero
	if b[0]&0x07 != 0 || b[31]&0x80 != 0 {
		return PrivateKey{}, fmt.Errorf("PrivateKey: %w: scalar is not clamped", ErrInvalidKey)
	}
	return PrivateKey{extended: true, data: append([]byte(nil), b...)}, nil
}

// PrivateKeyFromBech32 decodes either a normal or an extended key based on the prefix
func PrivateKeyFromBech32(s string) (PrivateKey, error) {
	hrp, data, err := decodeBech32Prefixed(
		"PrivateKey",
		s,
		NormalPrivateKeyPrefix,
		ExtendedPrivateKeyPrefix,
	)
	if err != nil {
		return PrivateKey{}, err
	}
	if hrp == ExtendedPrivateKeyPrefix {
		return PrivateKeyFromExtendedBytes(data)
	}
	return PrivateKeyFromNormalBytes(data)
}

func (k PrivateKey) IsExtended() bool {
	return k.extended
}

func (k PrivateKey) Bytes() []byte {
	return append([]byte(nil), k.data...)
}

func (k PrivateKey) ToBech32() string {
	prefix := NormalPrivateKeyPrefix
	if k.extended {
		prefix = ExtendedPrivateKeyPrefix
	}
	ret, _ := EncodeBech32(prefix, k.data)
	return ret
}

func (k PrivateKey) ToPublic() PublicKey {
	var ret PublicKey
	if k.extended {
		copy(ret.data[:], extendedPublicKey(k.data[:32]))
		return ret
	}
	priv := ed25519.NewKeyFromSeed(k.data)
	copy(ret.data[:], priv.Public().(ed25519.PublicKey))
	return ret
}

// Sign produces an ed25519 signature of message
func (k PrivateKey) Sign(message []byte) Ed25519Signature {
	var sig []byte
	if k.extended {
		sig = extendedSign(k.data[:32], k.data[32:64], message)
	} else {
		sig = ed25519.Sign(ed25519.NewKeyFromSeed(k.data), message)
	}
	return Ed25519Signature{data: string(sig)}
}

func clampScalar(k []byte) {
	k[0] &= 0xf8
	k[31] &= 0x7f
	k[31] |= 0x40
}

// reduceScalar interprets a 32-byte little-endian value modulo the group order
func reduceScalar(b []byte) *edwards25519.Scalar {
	wide := make([]byte, 64)
	copy(wide, b)
	// SetUniformBytes only fails on a wrong input length
	s, _ := edwards25519.NewScalar().SetUniformBytes(wide)
	return s
}

func extendedPublicKey(kL []byte) []byte {
	return new(edwards25519.Point).ScalarBaseMult(reduceScalar(kL)).Bytes()
}

// extendedSign signs with an expanded key, where kR takes the place of the hashed seed prefix
func extendedSign(kL []byte, kR []byte, message []byte) []byte {
	pub := extendedPublicKey(kL)
	h := sha512.New()
	h.Write(kR)
	h.Write(message)
	r, _ := edwards25519.NewScalar().SetUniformBytes(h.Sum(nil))
	R := new(edwards25519.Point).ScalarBaseMult(r).Bytes()
	h.Reset()
	h.Write(R)
	h.Write(pub)
	h.Write(message)
	k, _ := edwards25519.NewScalar().SetUniformBytes(h.Sum(nil))
	s := edwards25519.NewScalar().MultiplyAdd(k, reduceScalar(kL), r)
	sig := make([]byte, 0, 64)
	sig = append(sig, R...)
	return append(sig, s.Bytes()...)
}
