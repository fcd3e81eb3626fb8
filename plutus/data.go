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

// Package plutus implements the Plutus data model along with its CBOR encoding and the
// supported JSON conventions.
package plutus

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/num"
)

// PlutusData is one of ConstrPlutusData, *PlutusMap, PlutusList, PlutusInteger or PlutusBytes
type PlutusData interface {
	isPlutusData()
	MarshalCBOR() ([]byte, error)
}

// ConstrPlutusData is a constructor application: an alternative number and its fields
type ConstrPlutusData struct {
	Alternative uint64
	Fields      PlutusList
}

func NewConstrPlutusData(alternative uint64, fields ...PlutusData) ConstrPlutusData {
	return ConstrPlutusData{
		Alternative: alternative,
		Fields:      NewPlutusList(fields...),
	}
}

func (ConstrPlutusData) isPlutusData() {}

func (c ConstrPlutusData) MarshalCBOR() ([]byte, error) {
	fields, err := c.Fields.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	tagNum, wrapped := cbor.AlternativeToTag(c.Alternative)
	if wrapped {
		return cbor.EncodeTagged(
			tagNum,
			cbor.EncodeArray(
				[]cbor.RawMessage{cbor.EncodeUint(c.Alternative), fields},
				false,
			),
		), nil
	}
	return cbor.EncodeTagged(tagNum, fields), nil
}

func (c *ConstrPlutusData) UnmarshalCBOR(data []byte) error {
	tagNum, content, err := cbor.DecodeTagged(data)
	if err != nil {
		return cbor.WrapDeserialize("ConstrPlutusData", err)
	}
	alt, ok := cbor.TagToAlternative(tagNum)
	if !ok {
		if tagNum != cbor.CborTagAlternative3 {
			return cbor.WrapDeserialize(
				"ConstrPlutusData",
				fmt.Errorf("unexpected tag %d", tagNum),
			)
		}
		items, err := cbor.DecodeArrayLen(content, "ConstrPlutusData", 2, 2)
		if err != nil {
			return cbor.WrapDeserialize("ConstrPlutusData", err)
		}
		if alt, err = cbor.DecodeUint(items[0]); err != nil {
			return cbor.WrapDeserialize("ConstrPlutusData", err)
		}
		content = items[1]
	}
	var fields PlutusList
	if err := fields.UnmarshalCBOR(content); err != nil {
		return cbor.WrapDeserialize("ConstrPlutusData", err)
	}
	c.Alternative = alt
	c.Fields = fields
	return nil
}

// PlutusList is an ordered list of data. Non-empty lists are written with indefinite-length
// framing unless the list was decoded from a definite-length encoding.
type PlutusList struct {
	items    []PlutusData
	definite bool
}

func NewPlutusList(items ...PlutusData) PlutusList {
	return PlutusList{items: items}
}

func (PlutusList) isPlutusData() {}

func (l PlutusList) Len() int {
	return len(l.items)
}

// Get returns the item at index, panicking when it is out of range like a slice does
func (l PlutusList) Get(index int) PlutusData {
	return l.items[index]
}

func (l *PlutusList) Add(item PlutusData) {
	l.items = append(l.items, item)
}

func (l PlutusList) Items() []PlutusData {
	return l.items
}

// SetDefinite selects definite-length framing for non-empty lists
func (l *PlutusList) SetDefinite(definite bool) {
	l.definite = definite
}

func (l PlutusList) MarshalCBOR() ([]byte, error) {
	items := make([]cbor.RawMessage, 0, len(l.items))
	for _, item := range l.items {
		if item == nil {
			return nil, errors.New("nil PlutusData in list")
		}
		data, err := item.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		items = append(items, data)
	}
	return cbor.EncodeArray(items, !l.definite && len(items) > 0), nil
}

func (l *PlutusList) UnmarshalCBOR(data []byte) error {
	rawItems, err := cbor.DecodeArray(data)
	if err != nil {
		return cbor.WrapDeserialize("PlutusList", err)
	}
	items := make([]PlutusData, 0, len(rawItems))
	for idx, rawItem := range rawItems {
		item, err := decodeData(rawItem)
		if err != nil {
			return cbor.WrapDeserialize("PlutusList", cbor.WrapDeserializeIndex(idx, err))
		}
		items = append(items, item)
	}
	l.items = items
	l.definite = len(items) > 0 && !cbor.IsIndefinite(data)
	return nil
}

// PlutusMapEntry is a key/value pair of a PlutusMap
type PlutusMapEntry struct {
	Key   PlutusData
	Value PlutusData
}

// PlutusMap is a map of data to data that keeps insertion order. Keys are compared by their
// encoding.
type PlutusMap struct {
	entries    []PlutusMapEntry
	indefinite bool
}

func NewPlutusMap() *PlutusMap {
	return &PlutusMap{}
}

func (*PlutusMap) isPlutusData() {}

func (m *PlutusMap) Len() int {
	return len(m.entries)
}

func (m *PlutusMap) indexOf(key PlutusData) (int, error) {
	keyCbor, err := key.MarshalCBOR()
	if err != nil {
		return -1, err
	}
	for idx, entry := range m.entries {
		tmp, err := entry.Key.MarshalCBOR()
		if err != nil {
			return -1, err
		}
		if bytes.Equal(tmp, keyCbor) {
			return idx, nil
		}
	}
	return -1, nil
}

// Insert sets the value for key and returns the previous value, if any. New keys are appended.
func (m *PlutusMap) Insert(key PlutusData, value PlutusData) (PlutusData, error) {
	idx, err := m.indexOf(key)
	if err != nil {
		return nil, err
	}
	if idx >= 0 {
		prev := m.entries[idx].Value
		m.entries[idx].Value = value
		return prev, nil
	}
	m.entries = append(m.entries, PlutusMapEntry{Key: key, Value: value})
	return nil, nil
}

func (m *PlutusMap) Get(key PlutusData) (PlutusData, bool) {
	idx, err := m.indexOf(key)
	if err != nil || idx < 0 {
		return nil, false
	}
	return m.entries[idx].Value, true
}

// Keys returns the keys in insertion order
func (m *PlutusMap) Keys() []PlutusData {
	ret := make([]PlutusData, 0, len(m.entries))
	for _, entry := range m.entries {
		ret = append(ret, entry.Key)
	}
	return ret
}

func (m *PlutusMap) Entries() []PlutusMapEntry {
	return m.entries
}

func (m *PlutusMap) MarshalCBOR() ([]byte, error) {
	entries := make([]cbor.MapEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		if entry.Key == nil || entry.Value == nil {
			return nil, errors.New("nil PlutusData in map")
		}
		key, err := entry.Key.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		value, err := entry.Value.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		entries = append(entries, cbor.MapEntry{Key: key, Value: value})
	}
	return cbor.EncodeMapOrdered(entries, m.indefinite), nil
}

func (m *PlutusMap) UnmarshalCBOR(data []byte) error {
	rawEntries, err := cbor.DecodeMapEntries(data)
	if err != nil {
		return cbor.WrapDeserialize("PlutusMap", err)
	}
	entries := make([]PlutusMapEntry, 0, len(rawEntries))
	for idx, rawEntry := range rawEntries {
		key, err := decodeData(rawEntry.Key)
		if err != nil {
			return cbor.WrapDeserialize("PlutusMap", cbor.WrapDeserializeIndex(idx, err))
		}
		value, err := decodeData(rawEntry.Value)
		if err != nil {
			return cbor.WrapDeserialize("PlutusMap", cbor.WrapDeserializeIndex(idx, err))
		}
		entries = append(entries, PlutusMapEntry{Key: key, Value: value})
	}
	m.entries = entries
	m.indefinite = cbor.IsIndefinite(data)
	return nil
}

// PlutusInteger is an arbitrary precision integer
type PlutusInteger struct {
	Value num.BigInt
}

func NewPlutusInteger(v num.BigInt) PlutusInteger {
	return PlutusInteger{Value: v}
}

func NewPlutusIntegerFromInt64(v int64) PlutusInteger {
	return PlutusInteger{Value: num.BigIntFromInt64(v)}
}

func (PlutusInteger) isPlutusData() {}

func (i PlutusInteger) Big() *big.Int {
	return i.Value.Big()
}

func (i PlutusInteger) MarshalCBOR() ([]byte, error) {
	return i.Value.MarshalCBOR()
}

func (i *PlutusInteger) UnmarshalCBOR(data []byte) error {
	return i.Value.UnmarshalCBOR(data)
}

// PlutusBytes is a byte string. Values over 64 bytes are written in 64-byte chunks.
type PlutusBytes []byte

func (PlutusBytes) isPlutusData() {}

func (b PlutusBytes) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeBoundedBytes(b), nil
}

func (b *PlutusBytes) UnmarshalCBOR(data []byte) error {
	tmp, err := cbor.DecodeBytes(data)
	if err != nil {
		return cbor.WrapDeserialize("PlutusBytes", err)
	}
	*b = tmp
	return nil
}

// Decode parses a single Plutus data item, failing on trailing bytes
func Decode(data []byte) (PlutusData, error) {
	var raw cbor.RawMessage
	if err := cbor.DecodeExact(data, &raw); err != nil {
		return nil, cbor.WrapDeserialize("PlutusData", err)
	}
	ret, err := decodeData(raw)
	if err != nil {
		return nil, cbor.WrapDeserialize("PlutusData", err)
	}
	return ret, nil
}

func decodeData(data []byte) (PlutusData, error) {
	major, err := cbor.MajorType(data)
	if err != nil {
		return nil, err
	}
	switch major {
	case cbor.MajorTypeUint, cbor.MajorTypeNegInt:
		var tmp PlutusInteger
		if err := tmp.UnmarshalCBOR(data); err != nil {
			return nil, err
		}
		return tmp, nil
	case cbor.MajorTypeByteString:
		var tmp PlutusBytes
		if err := tmp.UnmarshalCBOR(data); err != nil {
			return nil, err
		}
		return tmp, nil
	case cbor.MajorTypeArray:
		var tmp PlutusList
		if err := tmp.UnmarshalCBOR(data); err != nil {
			return nil, err
		}
		return tmp, nil
	case cbor.MajorTypeMap:
		tmp := NewPlutusMap()
		if err := tmp.UnmarshalCBOR(data); err != nil {
			return nil, err
		}
		return tmp, nil
	case cbor.MajorTypeTag:
		tagNum, _, err := cbor.DecodeTagged(data)
		if err != nil {
			return nil, err
		}
		switch {
		case tagNum == cbor.CborTagPositiveBignum, tagNum == cbor.CborTagNegativeBignum:
			var tmp PlutusInteger
			if err := tmp.UnmarshalCBOR(data); err != nil {
				return nil, err
			}
			return tmp, nil
		case cbor.IsAlternativeTag(tagNum):
			var tmp ConstrPlutusData
			if err := tmp.UnmarshalCBOR(data); err != nil {
				return nil, err
			}
			return tmp, nil
		default:
			return nil, fmt.Errorf("unexpected tag %d for Plutus data", tagNum)
		}
	default:
		return nil, cbor.UnexpectedTypeError{Expected: "Plutus data", Actual: major}
	}
}

// Encode returns the CBOR encoding of d
func Encode(d PlutusData) ([]byte, error) {
	if d == nil {
		return nil, errors.New("nil PlutusData")
	}
	return d.MarshalCBOR()
}

// Equal reports whether a and b have the same encoding
func Equal(a PlutusData, b PlutusData) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	aCbor, err := a.MarshalCBOR()
	if err != nil {
		return false
	}
	bCbor, err := b.MarshalCBOR()
	if err != nil {
		return false
	}
	return bytes.Equal(aCbor, bCbor)
}

// Datum wraps PlutusData and keeps the bytes it was decoded from, so that its hash matches
// the hash of the original encoding
type Datum struct {
	cbor.DecodeStoreCbor
	Data PlutusData
}

func NewDatum(d PlutusData) Datum {
	return Datum{Data: d}
}

func (d *Datum) UnmarshalCBOR(data []byte) error {
	tmp, err := Decode(data)
	if err != nil {
		return err
	}
	d.Data = tmp
	d.SetCbor(data)
	return nil
}

func (d Datum) MarshalCBOR() ([]byte, error) {
	if orig := d.Cbor(); orig != nil {
		return orig, nil
	}
	return Encode(d.Data)
}
