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

package cbor

import (
	"fmt"
	"reflect"

	_cbor "github.com/fxamacker/cbor/v2"
)

const (
	// Useful tag numbers
	CborTagPositiveBignum = 2
	CborTagNegativeBignum = 3
	CborTagCbor           = 24
	CborTagRational       = 30
	CborTagSet            = 258
	CborTagMap            = 259

	// Tag ranges for "alternatives"
	// https://www.ietf.org/archive/id/draft-bormann-cbor-notable-tags-07.html#name-enumerated-alternative-data
	CborTagAlternative1Min = 121
	CborTagAlternative1Max = 127
	CborTagAlternative2Min = 1280
	CborTagAlternative2Max = 1400
	CborTagAlternative3    = 102
)

var customTagSet _cbor.TagSet

func init() {
	customTagSet = _cbor.NewTagSet()
	tagOpts := _cbor.TagOptions{
		EncTag: _cbor.EncTagRequired,
		DecTag: _cbor.DecTagRequired,
	}
	// Wrapped CBOR
	if err := customTagSet.Add(
		tagOpts,
		reflect.TypeOf(WrappedCbor{}),
		CborTagCbor,
	); err != nil {
		panic(err)
	}
}

// WrappedCbor corresponds to CBOR tag 24 and is used to encode nested CBOR data
type WrappedCbor []byte

func (w WrappedCbor) Bytes() []byte {
	return w[:]
}

// EncodeWrapped encodes already encoded CBOR as tag 24 around a byte string
func EncodeWrapped(inner []byte) []byte {
	return EncodeTagged(CborTagCbor, EncodeBytes(inner))
}

// DecodeWrapped returns the nested CBOR carried by a tag 24 item
func DecodeWrapped(data []byte) ([]byte, error) {
	tagNum, content, err := DecodeTagged(data)
	if err != nil {
		return nil, err
	}
	if tagNum != CborTagCbor {
		return nil, fmt.Errorf("unexpected tag %d, expected %d", tagNum, CborTagCbor)
	}
	return DecodeBytes(content)
}
