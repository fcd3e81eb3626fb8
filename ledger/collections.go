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

package ledger

import (
	"github.com/blinklabs-io/gocsl/cbor"
)

type cborMarshaler interface {
	MarshalCBOR() ([]byte, error)
}

// encodeItems encodes every item in order
func encodeItems[T cborMarshaler](items []T) ([]cbor.RawMessage, error) {
	ret := make([]cbor.RawMessage, 0, len(items))
	for _, item := range items {
		data, err := item.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		ret = append(ret, data)
	}
	return ret, nil
}

// encodeSet encodes items as an array, under the set tag when tagged is set
func encodeSet[T cborMarshaler](items []T, tagged bool) ([]byte, error) {
	raw, err := encodeItems(items)
	if err != nil {
		return nil, err
	}
	return cbor.EncodeSet(raw, tagged), nil
}

// decodeSet calls fn for every item of an array that may be wrapped in the set tag, and reports
// whether the tag was present. Item errors carry the item index.
func decodeSet(data []byte, fn func(item cbor.RawMessage) error) (bool, error) {
	content, tagged, err := cbor.UnwrapSet(data)
	if err != nil {
		return false, err
	}
	items, err := cbor.DecodeArray(content)
	if err != nil {
		return false, err
	}
	for idx, item := range items {
		if err := fn(item); err != nil {
			return false, cbor.WrapDeserializeIndex(idx, err)
		}
	}
	return tagged, nil
}

// decodeList is decodeSet for types with an UnmarshalCBOR method
func decodeList[T any, PT interface {
	*T
	UnmarshalCBOR([]byte) error
}](data []byte) ([]T, bool, error) {
	var ret []T
	tagged, err := decodeSet(data, func(item cbor.RawMessage) error {
		var tmp T
		if err := PT(&tmp).UnmarshalCBOR(item); err != nil {
			return err
		}
		ret = append(ret, tmp)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return ret, tagged, nil
}
