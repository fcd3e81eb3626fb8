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
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
)

var (
	cachedDecMode     _cbor.DecMode
	cachedDecModeErr  error
	cachedDecModeOnce sync.Once
)

// getDecMode returns a cached DecMode, initializing it on first use
func getDecMode() (_cbor.DecMode, error) {
	cachedDecModeOnce.Do(func() {
		decOptions := _cbor.DecOptions{
			ExtraReturnErrors: _cbor.ExtraDecErrorUnknownField,
			DupMapKey:         _cbor.DupMapKeyEnforcedAPF,
			// This defaults to 32, but Plutus data in the wild nests deeper
			MaxNestedLevels: 256,
		}
		cachedDecMode, cachedDecModeErr = decOptions.DecModeWithTags(customTagSet)
	})
	return cachedDecMode, cachedDecModeErr
}

// Decode decodes the first CBOR item in dataBytes into dest and returns the number of bytes read
func Decode(dataBytes []byte, dest any) (int, error) {
	decMode, err := getDecMode()
	if err != nil {
		return 0, err
	}
	dec := decMode.NewDecoder(bytes.NewReader(dataBytes))
	err = dec.Decode(dest)
	return dec.NumBytesRead(), err
}

// DecodeExact decodes dataBytes into dest and fails if anything follows the first CBOR item
func DecodeExact(dataBytes []byte, dest any) error {
	bytesRead, err := Decode(dataBytes, dest)
	if err != nil {
		return err
	}
	if bytesRead != len(dataBytes) {
		return fmt.Errorf(
			"found %d trailing bytes after CBOR item",
			len(dataBytes)-bytesRead,
		)
	}
	return nil
}

type head struct {
	major      uint8
	arg        uint64
	size       int
	indefinite bool
}

// readHead parses the initial byte and argument of the first CBOR item
func readHead(data []byte) (head, error) {
	if len(data) == 0 {
		return head{}, io.ErrUnexpectedEOF
	}
	h := head{major: data[0] & MajorTypeMask}
	info := data[0] &^ MajorTypeMask
	switch {
	case info <= MaxUintSimple:
		h.arg = uint64(info)
		h.size = 1
	case info == 24:
		h.size = 2
	case info == 25:
		h.size = 3
	case info == 26:
		h.size = 5
	case info == 27:
		h.size = 9
	case info == indefiniteLength:
		switch h.major {
		case MajorTypeByteString, MajorTypeTextString, MajorTypeArray, MajorTypeMap:
			h.indefinite = true
			h.size = 1
			return h, nil
		}
		return head{}, fmt.Errorf("invalid indefinite length for major type %d", h.major>>5)
	default:
		return head{}, fmt.Errorf("invalid additional information %d", info)
	}
	if len(data) < h.size {
		return head{}, io.ErrUnexpectedEOF
	}
	switch h.size {
	case 2:
		h.arg = uint64(data[1])
	case 3:
		h.arg = uint64(binary.BigEndian.Uint16(data[1:3]))
	case 5:
		h.arg = uint64(binary.BigEndian.Uint32(data[1:5]))
	case 9:
		h.arg = binary.BigEndian.Uint64(data[1:9])
	}
	return h, nil
}

// MajorType returns the major type bits of the first CBOR item
func MajorType(data []byte) (uint8, error) {
	if len(data) == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	return data[0] & MajorTypeMask, nil
}

// IsNull returns whether data is the CBOR null value
func IsNull(data []byte) bool {
	return len(data) == 1 && data[0] == SimpleNull
}

// IsIndefinite returns whether the first CBOR item uses indefinite-length framing
func IsIndefinite(data []byte) bool {
	h, err := readHead(data)
	return err == nil && h.indefinite
}

// DecodeUint decodes a CBOR unsigned integer
func DecodeUint(data []byte) (uint64, error) {
	h, err := readHead(data)
	if err != nil {
		return 0, err
	}
	if h.major != MajorTypeUint {
		return 0, UnexpectedTypeError{Expected: "unsigned integer", Actual: h.major}
	}
	if h.size != len(data) {
		return 0, fmt.Errorf("found %d trailing bytes after CBOR item", len(data)-h.size)
	}
	return h.arg, nil
}

// DecodeInt decodes a CBOR integer of either sign. The value is -1-arg when negative is true
func DecodeInt(data []byte) (negative bool, arg uint64, err error) {
	h, err := readHead(data)
	if err != nil {
		return false, 0, err
	}
	if h.major != MajorTypeUint && h.major != MajorTypeNegInt {
		return false, 0, UnexpectedTypeError{Expected: "integer", Actual: h.major}
	}
	if h.size != len(data) {
		return false, 0, fmt.Errorf("found %d trailing bytes after CBOR item", len(data)-h.size)
	}
	return h.major == MajorTypeNegInt, h.arg, nil
}

// DecodeBytes decodes a CBOR byte string, definite or chunked
func DecodeBytes(data []byte) ([]byte, error) {
	if t, err := MajorType(data); err != nil {
		return nil, err
	} else if t != MajorTypeByteString {
		return nil, UnexpectedTypeError{Expected: "byte string", Actual: t}
	}
	var ret []byte
	if err := DecodeExact(data, &ret); err != nil {
		return nil, err
	}
	if ret == nil {
		ret = []byte{}
	}
	return ret, nil
}

// DecodeText decodes a CBOR text string
func DecodeText(data []byte) (string, error) {
	if t, err := MajorType(data); err != nil {
		return "", err
	} else if t != MajorTypeTextString {
		return "", UnexpectedTypeError{Expected: "text string", Actual: t}
	}
	var ret string
	if err := DecodeExact(data, &ret); err != nil {
		return "", err
	}
	return ret, nil
}

// DecodeBool decodes a CBOR boolean
func DecodeBool(data []byte) (bool, error) {
	if len(data) == 1 {
		switch data[0] {
		case SimpleTrue:
			return true, nil
		case SimpleFalse:
			return false, nil
		}
	}
	return false, errors.New("expected boolean")
}

// DecodeArray decodes a CBOR array of any framing into its raw items
func DecodeArray(data []byte) ([]RawMessage, error) {
	if t, err := MajorType(data); err != nil {
		return nil, err
	} else if t != MajorTypeArray {
		return nil, UnexpectedTypeError{Expected: "array", Actual: t}
	}
	var ret []RawMessage
	if err := DecodeExact(data, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// DecodeArrayLen decodes a CBOR array and checks that it has between minLen and maxLen items
func DecodeArrayLen(
	data []byte,
	typeName string,
	minLen int,
	maxLen int,
) ([]RawMessage, error) {
	items, err := DecodeArray(data)
	if err != nil {
		return nil, err
	}
	if len(items) < minLen || len(items) > maxLen {
		expected := fmt.Sprintf("%d", minLen)
		if maxLen != minLen {
			expected = fmt.Sprintf("%d to %d", minLen, maxLen)
		}
		return nil, LengthError{Type: typeName, Expected: expected, Actual: len(items)}
	}
	return items, nil
}

// ListLength determines the number of items in a CBOR list
func ListLength(cborData []byte) (int, error) {
	h, err := readHead(cborData)
	if err != nil {
		return 0, err
	}
	if h.major != MajorTypeArray {
		return 0, UnexpectedTypeError{Expected: "array", Actual: h.major}
	}
	if !h.indefinite {
		if h.arg > math.MaxInt32 {
			return 0, fmt.Errorf("list length too large: %d", h.arg)
		}
		return int(h.arg), nil
	}
	items, err := DecodeArray(cborData)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// DecodeIdFromList extracts the first item from a CBOR list, which must be an unsigned integer
func DecodeIdFromList(cborData []byte) (int, error) {
	h, err := readHead(cborData)
	if err != nil {
		return 0, err
	}
	if h.major != MajorTypeArray {
		return 0, UnexpectedTypeError{Expected: "array", Actual: h.major}
	}
	if !h.indefinite && h.arg == 0 {
		return 0, errors.New("cannot return first item from empty list")
	}
	first, err := readHead(cborData[h.size:])
	if err != nil {
		return 0, err
	}
	if first.major != MajorTypeUint {
		return 0, fmt.Errorf("first list item was not numeric, found major type %d", first.major>>5)
	}
	if first.arg > math.MaxInt32 {
		return 0, fmt.Errorf("decoded numeric value too large: %d", first.arg)
	}
	return int(first.arg), nil
}

// MapEntry is a raw key/value pair in the order it appeared in the encoded map
type MapEntry struct {
	Key   RawMessage
	Value RawMessage
}

// DecodeMapEntries decodes a CBOR map of any framing into its raw entries, preserving the
// encoded order. Duplicate keys are rejected.
func DecodeMapEntries(data []byte) ([]MapEntry, error) {
	h, err := readHead(data)
	if err != nil {
		return nil, err
	}
	if h.major != MajorTypeMap {
		return nil, UnexpectedTypeError{Expected: "map", Actual: h.major}
	}
	decMode, err := getDecMode()
	if err != nil {
		return nil, err
	}
	rest := data[h.size:]
	dec := decMode.NewDecoder(bytes.NewReader(rest))
	capacity := min(h.arg, uint64(len(rest)/2))
	ret := make([]MapEntry, 0, capacity)
	seen := make(map[string]struct{}, capacity)
	bytesRead := 0
	for i := uint64(0); h.indefinite || i < h.arg; i++ {
		if h.indefinite {
			if bytesRead >= len(rest) {
				return nil, io.ErrUnexpectedEOF
			}
			if rest[bytesRead] == breakCode {
				bytesRead++
				break
			}
		}
		var entry MapEntry
		if err := dec.Decode(&entry.Key); err != nil {
			return nil, err
		}
		if err := dec.Decode(&entry.Value); err != nil {
			return nil, err
		}
		bytesRead = dec.NumBytesRead()
		if _, ok := seen[string(entry.Key)]; ok {
			return nil, fmt.Errorf("duplicate map key %x", []byte(entry.Key))
		}
		seen[string(entry.Key)] = struct{}{}
		ret = append(ret, entry)
	}
	if bytesRead != len(rest) {
		return nil, fmt.Errorf("found %d trailing bytes after CBOR map", len(rest)-bytesRead)
	}
	return ret, nil
}

// DecodeUintMap decodes a CBOR map whose keys are all unsigned integers
func DecodeUintMap(data []byte) (map[uint64]RawMessage, error) {
	entries, err := DecodeMapEntries(data)
	if err != nil {
		return nil, err
	}
	ret := make(map[uint64]RawMessage, len(entries))
	for _, entry := range entries {
		key, err := DecodeUint(entry.Key)
		if err != nil {
			return nil, fmt.Errorf("map key: %w", err)
		}
		if _, ok := ret[key]; ok {
			return nil, fmt.Errorf("duplicate map key %d", key)
		}
		ret[key] = entry.Value
	}
	return ret, nil
}

// DecodeTagged decodes a CBOR tag and returns its number and raw content
func DecodeTagged(data []byte) (uint64, RawMessage, error) {
	if t, err := MajorType(data); err != nil {
		return 0, nil, err
	} else if t != MajorTypeTag {
		return 0, nil, UnexpectedTypeError{Expected: "tag", Actual: t}
	}
	var tmp RawTag
	if err := DecodeExact(data, &tmp); err != nil {
		return 0, nil, err
	}
	return tmp.Number, tmp.Content, nil
}

// UnwrapSet strips the set tag from data if present, reporting whether it was there
func UnwrapSet(data []byte) (RawMessage, bool, error) {
	if t, err := MajorType(data); err != nil {
		return nil, false, err
	} else if t != MajorTypeTag {
		return data, false, nil
	}
	tagNum, content, err := DecodeTagged(data)
	if err != nil {
		return nil, false, err
	}
	if tagNum != CborTagSet {
		return nil, false, fmt.Errorf("unexpected tag %d, expected set tag %d", tagNum, CborTagSet)
	}
	return content, true, nil
}
