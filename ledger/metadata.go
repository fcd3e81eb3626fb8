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
	"bytes"
	"encoding/hex"
	"fmt"
	"maps"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/internal/jsonutil"
	"github.com/blinklabs-io/gocsl/num"
)

// Metadata byte and text strings are limited to this many bytes
const MaxMetadataStringLength = 64

// TransactionMetadatum is one of *MetadataMap, MetadataList, MetadataInt, MetadataBytes or
// MetadataText
type TransactionMetadatum interface {
	isMetadatum()
	MarshalCBOR() ([]byte, error)
}

// MetadataMapEntry is a key/value pair of a MetadataMap
type MetadataMapEntry struct {
	Key   TransactionMetadatum
	Value TransactionMetadatum
}

// MetadataMap is a metadata map that keeps insertion order. Keys are compared by their encoding.
type MetadataMap struct {
	entries []MetadataMapEntry
}

func NewMetadataMap() *MetadataMap {
	return &MetadataMap{}
}

func (*MetadataMap) isMetadatum() {}

func (m *MetadataMap) Len() int {
	return len(m.entries)
}

func (m *MetadataMap) indexOf(key TransactionMetadatum) (int, error) {
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

// Insert sets the value for key, returning the previous value if there was one
func (m *MetadataMap) Insert(key TransactionMetadatum, value TransactionMetadatum) (TransactionMetadatum, error) {
	idx, err := m.indexOf(key)
	if err != nil {
		return nil, err
	}
	if idx >= 0 {
		prev := m.entries[idx].Value
		m.entries[idx].Value = value
		return prev, nil
	}
	m.entries = append(m.entries, MetadataMapEntry{Key: key, Value: value})
	return nil, nil
}

func (m *MetadataMap) Get(key TransactionMetadatum) (TransactionMetadatum, bool) {
	idx, err := m.indexOf(key)
	if err != nil || idx < 0 {
		return nil, false
	}
	return m.entries[idx].Value, true
}

// GetText looks up a text key
func (m *MetadataMap) GetText(key string) (TransactionMetadatum, bool) {
	return m.Get(MetadataText(key))
}

func (m *MetadataMap) Keys() []TransactionMetadatum {
	ret := make([]TransactionMetadatum, 0, len(m.entries))
	for _, entry := range m.entries {
		ret = append(ret, entry.Key)
	}
	return ret
}

func (m *MetadataMap) Entries() []MetadataMapEntry {
	return m.entries
}

func (m *MetadataMap) MarshalCBOR() ([]byte, error) {
	entries := make([]cbor.MapEntry, 0, len(m.entries))
	for _, entry := range m.entries {
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
	return cbor.EncodeMapOrdered(entries, false), nil
}

// MetadataList is a list of metadata
type MetadataList []TransactionMetadatum

func (MetadataList) isMetadatum() {}

func (l MetadataList) MarshalCBOR() ([]byte, error) {
	items, err := encodeItems(l)
	if err != nil {
		return nil, err
	}
	return cbor.EncodeArray(items, false), nil
}

// MetadataInt is an integer in the range -2^64 to 2^64-1
type MetadataInt struct {
	Value num.Int
}

func NewMetadataInt(v num.Int) MetadataInt {
	return MetadataInt{Value: v}
}

func (MetadataInt) isMetadatum() {}

func (i MetadataInt) MarshalCBOR() ([]byte, error) {
	return i.Value.MarshalCBOR()
}

// MetadataBytes is a byte string of at most 64 bytes
type MetadataBytes []byte

func NewMetadataBytes(b []byte) (MetadataBytes, error) {
	if len(b) > MaxMetadataStringLength {
		return nil, fmt.Errorf(
			"metadata bytes length was %d, expected at most %d",
			len(b),
			MaxMetadataStringLength,
		)
	}
	return MetadataBytes(b), nil
}

func (MetadataBytes) isMetadatum() {}

func (b MetadataBytes) MarshalCBOR() ([]byte, error) {
	if len(b) > MaxMetadataStringLength {
		return nil, fmt.Errorf("metadata bytes longer than %d bytes", MaxMetadataStringLength)
	}
	return cbor.EncodeBytes(b), nil
}

// MetadataText is a text string of at most 64 bytes
type MetadataText string

func NewMetadataText(s string) (MetadataText, error) {
	if len(s) > MaxMetadataStringLength {
		return "", fmt.Errorf(
			"metadata text length was %d bytes, expected at most %d",
			len(s),
			MaxMetadataStringLength,
		)
	}
	return MetadataText(s), nil
}

func (MetadataText) isMetadatum() {}

func (t MetadataText) MarshalCBOR() ([]byte, error) {
	if len(t) > MaxMetadataStringLength {
		return nil, fmt.Errorf("metadata text longer than %d bytes", MaxMetadataStringLength)
	}
	return cbor.EncodeText(string(t)), nil
}

// DecodeMetadatum decodes any metadata value
func DecodeMetadatum(data []byte) (TransactionMetadatum, error) {
	ret, err := decodeMetadatum(data)
	if err != nil {
		return nil, cbor.WrapDeserialize("TransactionMetadatum", err)
	}
	return ret, nil
}

func decodeMetadatum(data []byte) (TransactionMetadatum, error) {
	t, err := cbor.MajorType(data)
	if err != nil {
		return nil, err
	}
	switch t {
	case cbor.MajorTypeUint, cbor.MajorTypeNegInt:
		var i num.Int
		if err := i.UnmarshalCBOR(data); err != nil {
			return nil, err
		}
		return MetadataInt{Value: i}, nil
	case cbor.MajorTypeByteString:
		b, err := cbor.DecodeBytes(data)
		if err != nil {
			return nil, err
		}
		return NewMetadataBytes(b)
	case cbor.MajorTypeTextString:
		s, err := cbor.DecodeText(data)
		if err != nil {
			return nil, err
		}
		return NewMetadataText(s)
	case cbor.MajorTypeArray:
		items, err := cbor.DecodeArray(data)
		if err != nil {
			return nil, err
		}
		ret := make(MetadataList, 0, len(items))
		for idx, item := range items {
			tmp, err := decodeMetadatum(item)
			if err != nil {
				return nil, cbor.WrapDeserializeIndex(idx, err)
			}
			ret = append(ret, tmp)
		}
		return ret, nil
	case cbor.MajorTypeMap:
		entries, err := cbor.DecodeMapEntries(data)
		if err != nil {
			return nil, err
		}
		ret := NewMetadataMap()
		for idx, entry := range entries {
			key, err := decodeMetadatum(entry.Key)
			if err != nil {
				return nil, cbor.WrapDeserializeIndex(idx, err)
			}
			value, err := decodeMetadatum(entry.Value)
			if err != nil {
				return nil, cbor.WrapDeserializeIndex(idx, err)
			}
			ret.entries = append(ret.entries, MetadataMapEntry{Key: key, Value: value})
		}
		return ret, nil
	default:
		return nil, cbor.UnexpectedTypeError{Expected: "metadatum", Actual: t}
	}
}

// EncodeArbitraryBytesAsMetadatum splits data of any length into a list of 64 byte chunks
func EncodeArbitraryBytesAsMetadatum(data []byte) MetadataList {
	ret := MetadataList{}
	for chunk := range slices.Chunk(data, MaxMetadataStringLength) {
		ret = append(ret, MetadataBytes(bytes.Clone(chunk)))
	}
	return ret
}

// DecodeArbitraryBytesFromMetadatum reverses EncodeArbitraryBytesAsMetadatum
func DecodeArbitraryBytesFromMetadatum(m TransactionMetadatum) ([]byte, error) {
	list, ok := m.(MetadataList)
	if !ok {
		return nil, fmt.Errorf("expected metadata list, found %T", m)
	}
	var ret []byte
	for idx, item := range list {
		chunk, ok := item.(MetadataBytes)
		if !ok {
			return nil, fmt.Errorf("list item %d: expected metadata bytes, found %T", idx, item)
		}
		ret = append(ret, chunk...)
	}
	return ret, nil
}

// GeneralTransactionMetadata maps metadata labels to values
type GeneralTransactionMetadata map[num.BigNum]TransactionMetadatum

func (g GeneralTransactionMetadata) Len() int {
	return len(g)
}

// Insert sets the value for label, returning the previous value if there was one
func (g GeneralTransactionMetadata) Insert(
	label num.BigNum,
	value TransactionMetadatum,
) (TransactionMetadatum, bool) {
	prev, ok := g[label]
	g[label] = value
	return prev, ok
}

func (g GeneralTransactionMetadata) Get(label num.BigNum) (TransactionMetadatum, bool) {
	ret, ok := g[label]
	return ret, ok
}

// Keys returns the labels in ascending order
func (g GeneralTransactionMetadata) Keys() []num.BigNum {
	return slices.Sorted(maps.Keys(g))
}

func (g GeneralTransactionMetadata) MarshalCBOR() ([]byte, error) {
	entries := make([]cbor.MapEntry, 0, len(g))
	for label, value := range g {
		valueCbor, err := value.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		entries = append(entries, cbor.MapEntry{
			Key:   cbor.EncodeUint(label.Uint64()),
			Value: valueCbor,
		})
	}
	return cbor.EncodeMap(entries)
}

func (g *GeneralTransactionMetadata) UnmarshalCBOR(data []byte) error {
	entries, err := cbor.DecodeUintMap(data)
	if err != nil {
		return cbor.WrapDeserialize("GeneralTransactionMetadata", err)
	}
	ret := make(GeneralTransactionMetadata, len(entries))
	for label, raw := range entries {
		value, err := DecodeMetadatum(raw)
		if err != nil {
			return cbor.WrapDeserialize(
				"GeneralTransactionMetadata",
				cbor.WrapDeserialize(strconv.FormatUint(label, 10), err),
			)
		}
		ret[num.BigNum(label)] = value
	}
	*g = ret
	return nil
}

func (g GeneralTransactionMetadata) MarshalJSON() ([]byte, error) {
	members := make([]jsonutil.Member, 0, len(g))
	for _, label := range g.Keys() {
		value, err := MetadatumToJSON(g[label], DetailedMetadataSchema)
		if err != nil {
			return nil, err
		}
		members = append(members, jsonutil.Member{Key: label.String(), Value: value})
	}
	return jsonutil.EncodeObject(members), nil
}

// MetadataJsonSchema selects the JSON convention used for metadata
type MetadataJsonSchema int

const (
	// NoMetadataConversions maps strings to text, numbers to integers and requires text keys
	NoMetadataConversions MetadataJsonSchema = iota
	// BasicMetadataConversions also maps 0x prefixed strings to bytes and allows integer and
	// byte keys, in the same way as cardano-cli's "no schema" metadata format
	BasicMetadataConversions
	// DetailedMetadataSchema is cardano-cli's detailed schema, which covers all metadata
	DetailedMetadataSchema
)

func (s MetadataJsonSchema) String() string {
	switch s {
	case NoMetadataConversions:
		return "NoConversions"
	case BasicMetadataConversions:
		return "BasicConversions"
	case DetailedMetadataSchema:
		return "DetailedSchema"
	default:
		return "MetadataJsonSchema(" + strconv.Itoa(int(s)) + ")"
	}
}

func metadataErrorf(schema MetadataJsonSchema, format string, args ...any) error {
	return MetadataJSONError{Schema: schema, Msg: fmt.Sprintf(format, args...)}
}

// MetadatumToJSON renders a metadata value under schema
func MetadatumToJSON(m TransactionMetadatum, schema MetadataJsonSchema) ([]byte, error) {
	switch schema {
	case DetailedMetadataSchema:
		return metadatumToDetailedJSON(m)
	case NoMetadataConversions, BasicMetadataConversions:
		return metadatumToSimpleJSON(m, schema)
	default:
		return nil, metadataErrorf(schema, "unknown schema")
	}
}

// MetadatumFromJSON parses a metadata value rendered under schema
func MetadatumFromJSON(data []byte, schema MetadataJsonSchema) (TransactionMetadatum, error) {
	v, err := jsonutil.Parse(data)
	if err != nil {
		return nil, metadataErrorf(schema, "invalid JSON: %s", err)
	}
	switch schema {
	case DetailedMetadataSchema:
		return metadatumFromDetailedJSON(v)
	case NoMetadataConversions, BasicMetadataConversions:
		return metadatumFromSimpleJSON(v, schema)
	default:
		return nil, metadataErrorf(schema, "unknown schema")
	}
}

func metadatumToDetailedJSON(m TransactionMetadatum) ([]byte, error) {
	schema := DetailedMetadataSchema
	wrap := func(key string, value []byte) []byte {
		return jsonutil.EncodeObject([]jsonutil.Member{{Key: key, Value: value}})
	}
	switch v := m.(type) {
	case *MetadataMap:
		entries := make([][]byte, 0, v.Len())
		for _, entry := range v.entries {
			key, err := metadatumToDetailedJSON(entry.Key)
			if err != nil {
				return nil, err
			}
			value, err := metadatumToDetailedJSON(entry.Value)
			if err != nil {
				return nil, err
			}
			entries = append(entries, jsonutil.EncodeObject([]jsonutil.Member{
				{Key: "k", Value: key},
				{Key: "v", Value: value},
			}))
		}
		return wrap("map", jsonutil.EncodeArray(entries)), nil
	case MetadataList:
		items := make([][]byte, 0, len(v))
		for _, item := range v {
			tmp, err := metadatumToDetailedJSON(item)
			if err != nil {
				return nil, err
			}
			items = append(items, tmp)
		}
		return wrap("list", jsonutil.EncodeArray(items)), nil
	case MetadataInt:
		return wrap("int", []byte(v.Value.String())), nil
	case MetadataBytes:
		return wrap("bytes", jsonutil.EncodeString(hex.EncodeToString(v))), nil
	case MetadataText:
		return wrap("string", jsonutil.EncodeString(string(v))), nil
	default:
		return nil, metadataErrorf(schema, "unsupported metadatum %T", m)
	}
}

func metadatumToSimpleJSON(m TransactionMetadatum, schema MetadataJsonSchema) ([]byte, error) {
	switch v := m.(type) {
	case *MetadataMap:
		members := make([]jsonutil.Member, 0, v.Len())
		for _, entry := range v.entries {
			key, err := simpleMetadataKey(entry.Key, schema)
			if err != nil {
				return nil, err
			}
			value, err := metadatumToSimpleJSON(entry.Value, schema)
			if err != nil {
				return nil, err
			}
			members = append(members, jsonutil.Member{Key: key, Value: value})
		}
		return jsonutil.EncodeObject(members), nil
	case MetadataList:
		items := make([][]byte, 0, len(v))
		for _, item := range v {
			tmp, err := metadatumToSimpleJSON(item, schema)
			if err != nil {
				return nil, err
			}
			items = append(items, tmp)
		}
		return jsonutil.EncodeArray(items), nil
	case MetadataInt:
		return []byte(v.Value.String()), nil
	case MetadataBytes:
		if schema == NoMetadataConversions {
			return nil, metadataErrorf(schema, "bytes are not supported")
		}
		return jsonutil.EncodeString("0x" + hex.EncodeToString(v)), nil
	case MetadataText:
		return jsonutil.EncodeString(string(v)), nil
	default:
		return nil, metadataErrorf(schema, "unsupported metadatum %T", m)
	}
}

func simpleMetadataKey(m TransactionMetadatum, schema MetadataJsonSchema) (string, error) {
	switch v := m.(type) {
	case MetadataText:
		return string(v), nil
	case MetadataInt:
		if schema == BasicMetadataConversions {
			return v.Value.String(), nil
		}
	case MetadataBytes:
		if schema == BasicMetadataConversions {
			return "0x" + hex.EncodeToString(v), nil
		}
	}
	return "", metadataErrorf(schema, "map key %T is not supported", m)
}

func metadatumFromSimpleJSON(v jsonutil.Value, schema MetadataJsonSchema) (TransactionMetadatum, error) {
	switch v.Type {
	case jsonutil.Number:
		return metadataIntFromJSON(v, schema)
	case jsonutil.String:
		s, err := jsonutil.AsString(v)
		if err != nil {
			return nil, metadataErrorf(schema, "%s", err)
		}
		return simpleMetadataString(s, schema)
	case jsonutil.Array:
		items, err := jsonutil.ArrayItems(v)
		if err != nil {
			return nil, metadataErrorf(schema, "%s", err)
		}
		ret := make(MetadataList, 0, len(items))
		for _, item := range items {
			tmp, err := metadatumFromSimpleJSON(item, schema)
			if err != nil {
				return nil, err
			}
			ret = append(ret, tmp)
		}
		return ret, nil
	case jsonutil.Object:
		entries, err := jsonutil.ObjectEntries(v)
		if err != nil {
			return nil, metadataErrorf(schema, "%s", err)
		}
		ret := NewMetadataMap()
		for _, entry := range entries {
			key, err := simpleMetadataKeyFromString(entry.Key, schema)
			if err != nil {
				return nil, err
			}
			value, err := metadatumFromSimpleJSON(entry.Value, schema)
			if err != nil {
				return nil, err
			}
			if _, err := ret.Insert(key, value); err != nil {
				return nil, err
			}
		}
		return ret, nil
	default:
		return nil, metadataErrorf(schema, "JSON %s values are not supported", v.Type)
	}
}

func metadataIntFromJSON(v jsonutil.Value, schema MetadataJsonSchema) (MetadataInt, error) {
	i, err := jsonutil.AsInteger(v)
	if err != nil {
		return MetadataInt{}, metadataErrorf(schema, "%s", err)
	}
	tmp, err := num.IntFromBig(i)
	if err != nil {
		return MetadataInt{}, metadataErrorf(schema, "integer %s out of range", i)
	}
	return MetadataInt{Value: tmp}, nil
}

func simpleMetadataString(s string, schema MetadataJsonSchema) (TransactionMetadatum, error) {
	if schema == BasicMetadataConversions {
		if hexStr, ok := strings.CutPrefix(s, "0x"); ok {
			if b, err := hex.DecodeString(hexStr); err == nil {
				ret, err := NewMetadataBytes(b)
				if err != nil {
					return nil, metadataErrorf(schema, "%s", err)
				}
				return ret, nil
			}
		}
	}
	ret, err := NewMetadataText(s)
	if err != nil {
		return nil, metadataErrorf(schema, "%s", err)
	}
	return ret, nil
}

func simpleMetadataKeyFromString(key string, schema MetadataJsonSchema) (TransactionMetadatum, error) {
	if schema == BasicMetadataConversions && !strings.HasPrefix(key, "0x") {
		if i, ok := new(big.Int).SetString(key, 10); ok {
			tmp, err := num.IntFromBig(i)
			if err != nil {
				return nil, metadataErrorf(schema, "integer key %s out of range", key)
			}
			return MetadataInt{Value: tmp}, nil
		}
	}
	return simpleMetadataString(key, schema)
}

func metadatumFromDetailedJSON(v jsonutil.Value) (TransactionMetadatum, error) {
	schema := DetailedMetadataSchema
	if v.Type != jsonutil.Object {
		return nil, metadataErrorf(schema, "expected object, found %s", v.Type)
	}
	entries, err := jsonutil.ObjectEntries(v)
	if err != nil {
		return nil, metadataErrorf(schema, "%s", err)
	}
	if len(entries) != 1 {
		return nil, metadataErrorf(schema, "expected exactly one key, found %d", len(entries))
	}
	value := entries[0].Value
	switch entries[0].Key {
	case "int":
		if value.Type != jsonutil.Number {
			return nil, metadataErrorf(schema, `"int" must be a number`)
		}
		return metadataIntFromJSON(value, schema)
	case "bytes":
		s, err := detailedString(value, "bytes")
		if err != nil {
			return nil, err
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, metadataErrorf(schema, "invalid hex string %q", s)
		}
		ret, err := NewMetadataBytes(b)
		if err != nil {
			return nil, metadataErrorf(schema, "%s", err)
		}
		return ret, nil
	case "string":
		s, err := detailedString(value, "string")
		if err != nil {
			return nil, err
		}
		ret, err := NewMetadataText(s)
		if err != nil {
			return nil, metadataErrorf(schema, "%s", err)
		}
		return ret, nil
	case "list":
		if value.Type != jsonutil.Array {
			return nil, metadataErrorf(schema, `"list" must be an array`)
		}
		items, err := jsonutil.ArrayItems(value)
		if err != nil {
			return nil, metadataErrorf(schema, "%s", err)
		}
		ret := make(MetadataList, 0, len(items))
		for _, item := range items {
			tmp, err := metadatumFromDetailedJSON(item)
			if err != nil {
				return nil, err
			}
			ret = append(ret, tmp)
		}
		return ret, nil
	case "map":
		if value.Type != jsonutil.Array {
			return nil, metadataErrorf(schema, `"map" must be an array`)
		}
		items, err := jsonutil.ArrayItems(value)
		if err != nil {
			return nil, metadataErrorf(schema, "%s", err)
		}
		ret := NewMetadataMap()
		for _, item := range items {
			if item.Type != jsonutil.Object {
				return nil, metadataErrorf(schema, "map entries must be objects")
			}
			pair, err := jsonutil.ObjectEntries(item)
			if err != nil {
				return nil, metadataErrorf(schema, "%s", err)
			}
			rawKey, okK := jsonutil.Field(pair, "k")
			rawValue, okV := jsonutil.Field(pair, "v")
			if !okK || !okV || len(pair) != 2 {
				return nil, metadataErrorf(schema, `map entries must have exactly "k" and "v"`)
			}
			key, err := metadatumFromDetailedJSON(rawKey)
			if err != nil {
				return nil, err
			}
			val, err := metadatumFromDetailedJSON(rawValue)
			if err != nil {
				return nil, err
			}
			if _, err := ret.Insert(key, val); err != nil {
				return nil, err
			}
		}
		return ret, nil
	default:
		return nil, metadataErrorf(schema, "unknown key %q", entries[0].Key)
	}
}

func detailedString(v jsonutil.Value, key string) (string, error) {
	if v.Type != jsonutil.String {
		return "", metadataErrorf(DetailedMetadataSchema, "%q must be a string", key)
	}
	s, err := jsonutil.AsString(v)
	if err != nil {
		return "", metadataErrorf(DetailedMetadataSchema, "%s", err)
	}
	return s, nil
}
