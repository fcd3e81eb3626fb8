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
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
)

// Plutus bounded byte strings are split into chunks of this size
const boundedBytesChunkSize = 64

var (
	cachedEncMode     _cbor.EncMode
	cachedEncModeErr  error
	cachedEncModeOnce sync.Once
)

func getEncMode() (_cbor.EncMode, error) {
	cachedEncModeOnce.Do(func() {
		opts := _cbor.EncOptions{
			// Make sure that maps have ordered keys
			Sort: _cbor.SortCoreDeterministic,
		}
		cachedEncMode, cachedEncModeErr = opts.EncModeWithTags(customTagSet)
	})
	return cachedEncMode, cachedEncModeErr
}

// Encode encodes data as canonical CBOR
func Encode(data any) ([]byte, error) {
	em, err := getEncMode()
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(nil)
	enc := em.NewEncoder(buf)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AppendHead appends the initial byte and argument for a CBOR item of the given major type
func AppendHead(buf []byte, majorType uint8, arg uint64) []byte {
	switch {
	case arg <= uint64(MaxUintSimple):
		return append(buf, majorType|uint8(arg))
	case arg <= 0xff:
		return append(buf, majorType|24, uint8(arg))
	case arg <= 0xffff:
		buf = append(buf, majorType|25)
		return binary.BigEndian.AppendUint16(buf, uint16(arg))
	case arg <= 0xffffffff:
		buf = append(buf, majorType|26)
		return binary.BigEndian.AppendUint32(buf, uint32(arg))
	default:
		buf = append(buf, majorType|27)
		return binary.BigEndian.AppendUint64(buf, arg)
	}
}

// EncodeUint encodes an unsigned integer
func EncodeUint(v uint64) []byte {
	return AppendHead(nil, MajorTypeUint, v)
}

// EncodeInt encodes an integer of either sign. The value is -1-arg when negative is true
func EncodeInt(negative bool, arg uint64) []byte {
	if negative {
		return AppendHead(nil, MajorTypeNegInt, arg)
	}
	return AppendHead(nil, MajorTypeUint, arg)
}

// EncodeBytes encodes a definite-length byte string
func EncodeBytes(b []byte) []byte {
	ret := AppendHead(make([]byte, 0, len(b)+9), MajorTypeByteString, uint64(len(b)))
	return append(ret, b...)
}

// EncodeText encodes a definite-length text string
func EncodeText(s string) []byte {
	ret := AppendHead(make([]byte, 0, len(s)+9), MajorTypeTextString, uint64(len(s)))
	return append(ret, s...)
}

// EncodeBool encodes a boolean
func EncodeBool(v bool) []byte {
	if v {
		return []byte{SimpleTrue}
	}
	return []byte{SimpleFalse}
}

// EncodeNull returns the CBOR null value
func EncodeNull() []byte {
	return []byte{SimpleNull}
}

// EncodeBoundedBytes encodes a byte string, splitting it into an indefinite-length string of
// 64-byte chunks when it is longer than 64 bytes
func EncodeBoundedBytes(b []byte) []byte {
	if len(b) <= boundedBytesChunkSize {
		return EncodeBytes(b)
	}
	ret := []byte{MajorTypeByteString | indefiniteLength}
	for chunk := range slices.Chunk(b, boundedBytesChunkSize) {
		ret = append(ret, EncodeBytes(chunk)...)
	}
	return append(ret, breakCode)
}

// EncodeArray builds an array from already encoded items
func EncodeArray(items []RawMessage, indefinite bool) []byte {
	size := 9
	for _, item := range items {
		size += len(item)
	}
	ret := make([]byte, 0, size)
	if indefinite {
		ret = append(ret, MajorTypeArray|indefiniteLength)
	} else {
		ret = AppendHead(ret, MajorTypeArray, uint64(len(items)))
	}
	for _, item := range items {
		ret = append(ret, item...)
	}
	if indefinite {
		ret = append(ret, breakCode)
	}
	return ret
}

// EncodeTagged wraps already encoded content in a tag
func EncodeTagged(tagNum uint64, content []byte) []byte {
	ret := AppendHead(make([]byte, 0, len(content)+9), MajorTypeTag, tagNum)
	return append(ret, content...)
}

// EncodeSet encodes items as an array, optionally wrapped in the set tag
func EncodeSet(items []RawMessage, tagged bool) []byte {
	ret := EncodeArray(items, false)
	if tagged {
		return EncodeTagged(CborTagSet, ret)
	}
	return ret
}

// EncodeMap builds a definite-length map from already encoded entries. Entries are written in
// core deterministic order regardless of the order they are provided in.
func EncodeMap(entries []MapEntry) ([]byte, error) {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b MapEntry) int {
		return bytes.Compare(a.Key, b.Key)
	})
	size := 9
	for i, entry := range sorted {
		if i > 0 && bytes.Equal(sorted[i-1].Key, entry.Key) {
			return nil, fmt.Errorf("duplicate map key %x", []byte(entry.Key))
		}
		size += len(entry.Key) + len(entry.Value)
	}
	ret := AppendHead(make([]byte, 0, size), MajorTypeMap, uint64(len(sorted)))
	for _, entry := range sorted {
		ret = append(ret, entry.Key...)
		ret = append(ret, entry.Value...)
	}
	return ret, nil
}

// EncodeMapOrdered builds a map from already encoded entries, keeping the order given
func EncodeMapOrdered(entries []MapEntry, indefinite bool) []byte {
	var ret []byte
	if indefinite {
		ret = append(ret, MajorTypeMap|indefiniteLength)
	} else {
		ret = AppendHead(ret, MajorTypeMap, uint64(len(entries)))
	}
	for _, entry := range entries {
		ret = append(ret, entry.Key...)
		ret = append(ret, entry.Value...)
	}
	if indefinite {
		ret = append(ret, breakCode)
	}
	return ret
}

// IndefLengthList encodes its items as an indefinite-length list
type IndefLengthList []any

func (i IndefLengthList) MarshalCBOR() ([]byte, error) {
	items := make([]RawMessage, 0, len(i))
	for _, item := range i {
		data, err := Encode(item)
		if err != nil {
			return nil, err
		}
		items = append(items, data)
	}
	return EncodeArray(items, true), nil
}
