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

// Package jsonutil walks and writes JSON while keeping object keys in document order, which
// the datum and metadata JSON schemas depend on.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/buger/jsonparser"
)

type ValueType = jsonparser.ValueType

const (
	String  = jsonparser.String
	Number  = jsonparser.Number
	Object  = jsonparser.Object
	Array   = jsonparser.Array
	Boolean = jsonparser.Boolean
	Null    = jsonparser.Null
)

// Value is a raw JSON value along with its type. String values are still escaped and carry
// no quotes.
type Value struct {
	Raw  []byte
	Type ValueType
}

// Entry is an object member in document order
type Entry struct {
	Key   string
	Value Value
}

// Parse returns the single top-level value in data
func Parse(data []byte) (Value, error) {
	raw, typ, offset, err := jsonparser.Get(data)
	if err != nil {
		return Value{}, err
	}
	if len(bytes.TrimSpace(data[offset:])) != 0 {
		return Value{}, errors.New("unexpected data after top-level JSON value")
	}
	return Value{Raw: raw, Type: typ}, nil
}

// ObjectEntries returns the members of a JSON object in document order, rejecting duplicates
func ObjectEntries(v Value) ([]Entry, error) {
	if v.Type != Object {
		return nil, fmt.Errorf("expected JSON object, found %s", v.Type)
	}
	var ret []Entry
	seen := map[string]struct{}{}
	err := jsonparser.ObjectEach(
		v.Raw,
		func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
			k := string(key)
			if _, ok := seen[k]; ok {
				return fmt.Errorf("duplicate JSON object key %q", k)
			}
			seen[k] = struct{}{}
			ret = append(ret, Entry{Key: k, Value: Value{Raw: value, Type: dataType}})
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ArrayItems returns the items of a JSON array
func ArrayItems(v Value) ([]Value, error) {
	if v.Type != Array {
		return nil, fmt.Errorf("expected JSON array, found %s", v.Type)
	}
	ret := []Value{}
	var innerErr error
	_, err := jsonparser.ArrayEach(
		v.Raw,
		func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
			if err != nil && innerErr == nil {
				innerErr = err
			}
			ret = append(ret, Value{Raw: value, Type: dataType})
		},
	)
	if err != nil {
		return nil, err
	}
	if innerErr != nil {
		return nil, innerErr
	}
	return ret, nil
}

// AsString unescapes a JSON string value
func AsString(v Value) (string, error) {
	if v.Type != String {
		return "", fmt.Errorf("expected JSON string, found %s", v.Type)
	}
	return jsonparser.ParseString(v.Raw)
}

// AsInteger parses a JSON number that must be an integer of any size
func AsInteger(v Value) (*big.Int, error) {
	if v.Type != Number {
		return nil, fmt.Errorf("expected JSON number, found %s", v.Type)
	}
	s := string(v.Raw)
	if strings.ContainsAny(s, ".eE") {
		return nil, fmt.Errorf("floating point number %s is not supported", s)
	}
	ret, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid JSON integer %s", s)
	}
	return ret, nil
}

// Field returns the value of a member of entries
func Field(entries []Entry, key string) (Value, bool) {
	for _, entry := range entries {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return Value{}, false
}

// Member is an already encoded object member
type Member struct {
	Key   string
	Value []byte
}

// EncodeString encodes s as a JSON string without HTML escaping
func EncodeString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string can't fail
	_ = enc.Encode(s)
	return bytes.TrimRight(buf.Bytes(), "\n")
}

// EncodeObject writes members in the order given
func EncodeObject(members []Member) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, member := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(EncodeString(member.Key))
		buf.WriteByte(':')
		buf.Write(member.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// EncodeArray writes items in the order given
func EncodeArray(items [][]byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(item)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}
