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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/blinklabs-io/gocsl/cbor"
)

// Kind describes a family of fixed-length byte values
type Kind interface {
	// Name is used in error messages
	Name() string
	// Size is the exact length in bytes
	Size() int
	// Prefix is the default bech32 human-readable prefix
	Prefix() string
}

// Fixed is an immutable fixed-length byte value. Values of different kinds are distinct types,
// so a key hash can't be passed where a script hash is expected even though both are 28 bytes.
// Fixed is comparable and can be used as a map key. The zero value is all zero bytes.
type Fixed[K Kind] struct {
	// string instead of []byte so the type stays comparable and immutable
	data string
}

func kindOf[K Kind]() K {
	var k K
	return k
}

// FixedFromBytes copies b into a new value, failing if b has the wrong length
func FixedFromBytes[K Kind](b []byte) (Fixed[K], error) {
	k := kindOf[K]()
	if len(b) != k.Size() {
		return Fixed[K]{}, WrongLengthError{
			Type:     k.Name(),
			Expected: k.Size(),
			Actual:   len(b),
		}
	}
	return Fixed[K]{data: string(b)}, nil
}

// FixedFromHex decodes a hex string
func FixedFromHex[K Kind](s string) (Fixed[K], error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Fixed[K]{}, fmt.Errorf(
			"%s: %w: %w",
			kindOf[K]().Name(),
			ErrMalformedEncoding,
			err,
		)
	}
	return FixedFromBytes[K](b)
}

// FixedFromBech32 decodes a bech32 string. With no prefixes given, the default prefix of the
// kind is required.
func FixedFromBech32[K Kind](s string, prefixes ...string) (Fixed[K], error) {
	k := kindOf[K]()
	if len(prefixes) == 0 {
		prefixes = []string{k.Prefix()}
	}
	_, data, err := decodeBech32Prefixed(k.Name(), s, prefixes...)
	if err != nil {
		return Fixed[K]{}, err
	}
	return FixedFromBytes[K](data)
}

// Bytes returns a copy of the value
func (f Fixed[K]) Bytes() []byte {
	if f.data == "" {
		return make([]byte, kindOf[K]().Size())
	}
	return []byte(f.data)
}

// String returns the value as hex
func (f Fixed[K]) String() string {
	return hex.EncodeToString(f.Bytes())
}

// ToBech32 encodes the value with the given prefix
func (f Fixed[K]) ToBech32(prefix string) (string, error) {
	return EncodeBech32(prefix, f.Bytes())
}

// Bech32 encodes the value with the default prefix of its kind
func (f Fixed[K]) Bech32() string {
	ret, err := f.ToBech32(kindOf[K]().Prefix())
	if err != nil {
		// The default prefixes are all valid, so this only happens on a programming error
		panic(fmt.Sprintf("bech32 encoding of %s failed: %s", kindOf[K]().Name(), err))
	}
	return ret
}

func (f Fixed[K]) IsZero() bool {
	return strings.Trim(f.data, "\x00") == ""
}

// Compare orders values bytewise
func (f Fixed[K]) Compare(other Fixed[K]) int {
	return strings.Compare(string(f.Bytes()), string(other.Bytes()))
}

func (f Fixed[K]) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeBytes(f.Bytes()), nil
}

func (f *Fixed[K]) UnmarshalCBOR(data []byte) error {
	b, err := cbor.DecodeBytes(data)
	if err != nil {
		return cbor.WrapDeserialize(kindOf[K]().Name(), err)
	}
	tmp, err := FixedFromBytes[K](b)
	if err != nil {
		return cbor.WrapDeserialize(kindOf[K]().Name(), err)
	}
	*f = tmp
	return nil
}

// MarshalText renders hex, which also makes the value usable as a JSON map key
func (f Fixed[K]) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Fixed[K]) UnmarshalText(text []byte) error {
	tmp, err := FixedFromHex[K](string(text))
	if err != nil {
		return err
	}
	*f = tmp
	return nil
}
