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

package plutus

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/blinklabs-io/gocsl/internal/jsonutil"
	"github.com/blinklabs-io/gocsl/num"
)

// PlutusDatumSchema selects the JSON convention used for Plutus data
type PlutusDatumSchema int

const (
	// NoConversions maps JSON values directly: numbers are integers, strings are their UTF-8
	// bytes, arrays are lists and objects are maps with UTF-8 byte keys. Only data whose byte
	// strings are all valid UTF-8 and which has no constructors can be written.
	NoConversions PlutusDatumSchema = iota
	// BasicConversions is the cardano-node "no schema" format. Strings starting with 0x are
	// hex bytes, object keys may also be integers. Constructors are not supported.
	BasicConversions
	// DetailedSchema is the cardano-node detailed format, which covers all Plutus data
	DetailedSchema
)

func (s PlutusDatumSchema) String() string {
	switch s {
	case NoConversions:
		return "NoConversions"
	case BasicConversions:
		return "BasicConversions"
	case DetailedSchema:
		return "DetailedSchema"
	default:
		return "PlutusDatumSchema(" + strconv.Itoa(int(s)) + ")"
	}
}

// ErrJSON is matched by every JSONError
var ErrJSON = errors.New("plutus data JSON error")

// JSONError is returned when data can't be converted to or from JSON under a schema
type JSONError struct {
	Schema PlutusDatumSchema
	Msg    string
}

func (e JSONError) Error() string {
	return fmt.Sprintf("plutus data JSON (%s): %s", e.Schema, e.Msg)
}

func (JSONError) Is(target error) bool {
	return target == ErrJSON
}

func jsonErrorf(schema PlutusDatumSchema, format string, args ...any) error {
	return JSONError{Schema: schema, Msg: fmt.Sprintf(format, args...)}
}

// ToJSON renders d under schema
func ToJSON(d PlutusData, schema PlutusDatumSchema) ([]byte, error) {
	switch schema {
	case DetailedSchema:
		return toDetailedJSON(d)
	case BasicConversions, NoConversions:
		return toSimpleJSON(d, schema, false)
	default:
		return nil, jsonErrorf(schema, "unknown schema")
	}
}

// FromJSON parses data rendered under schema
func FromJSON(data []byte, schema PlutusDatumSchema) (PlutusData, error) {
	v, err := jsonutil.Parse(data)
	if err != nil {
		return nil, jsonErrorf(schema, "invalid JSON: %s", err)
	}
	switch schema {
	case DetailedSchema:
		return fromDetailedJSON(v)
	case BasicConversions, NoConversions:
		return fromSimpleJSON(v, schema)
	default:
		return nil, jsonErrorf(schema, "unknown schema")
	}
}

func toDetailedJSON(d PlutusData) ([]byte, error) {
	switch v := d.(type) {
	case ConstrPlutusData:
		fields, err := toDetailedList(v.Fields)
		if err != nil {
			return nil, err
		}
		return jsonutil.EncodeObject([]jsonutil.Member{
			{Key: "constructor", Value: []byte(strconv.FormatUint(v.Alternative, 10))},
			{Key: "fields", Value: fields},
		}), nil
	case *PlutusMap:
		items := make([][]byte, 0, v.Len())
		for _, entry := range v.Entries() {
			key, err := toDetailedJSON(entry.Key)
			if err != nil {
				return nil, err
			}
			value, err := toDetailedJSON(entry.Value)
			if err != nil {
				return nil, err
			}
			items = append(items, jsonutil.EncodeObject([]jsonutil.Member{
				{Key: "k", Value: key},
				{Key: "v", Value: value},
			}))
		}
		return jsonutil.EncodeObject([]jsonutil.Member{
			{Key: "map", Value: jsonutil.EncodeArray(items)},
		}), nil
	case PlutusList:
		list, err := toDetailedList(v)
		if err != nil {
			return nil, err
		}
		return jsonutil.EncodeObject([]jsonutil.Member{{Key: "list", Value: list}}), nil
	case PlutusInteger:
		return jsonutil.EncodeObject([]jsonutil.Member{
			{Key: "int", Value: []byte(v.Value.String())},
		}), nil
	case PlutusBytes:
		return jsonutil.EncodeObject([]jsonutil.Member{
			{Key: "bytes", Value: jsonutil.EncodeString(hex.EncodeToString(v))},
		}), nil
	default:
		return nil, jsonErrorf(DetailedSchema, "unsupported data type %T", d)
	}
}

func toDetailedList(l PlutusList) ([]byte, error) {
	items := make([][]byte, 0, l.Len())
	for _, item := range l.Items() {
		tmp, err := toDetailedJSON(item)
		if err != nil {
			return nil, err
		}
		items = append(items, tmp)
	}
	return jsonutil.EncodeArray(items), nil
}

func fromDetailedJSON(v jsonutil.Value) (PlutusData, error) {
	entries, err := jsonutil.ObjectEntries(v)
	if err != nil {
		return nil, jsonErrorf(DetailedSchema, "%s", err)
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, entry.Key)
	}
	slices.Sort(keys)
	switch strings.Join(keys, ",") {
	case "constructor,fields":
		altValue, _ := jsonutil.Field(entries, "constructor")
		alt, err := jsonutil.AsInteger(altValue)
		if err != nil || alt.Sign() < 0 || !alt.IsUint64() {
			return nil, jsonErrorf(DetailedSchema, "invalid constructor %s", altValue.Raw)
		}
		fieldsValue, _ := jsonutil.Field(entries, "fields")
		fields, err := fromDetailedList(fieldsValue)
		if err != nil {
			return nil, err
		}
		return ConstrPlutusData{Alternative: alt.Uint64(), Fields: fields}, nil
	case "map":
		mapValue, _ := jsonutil.Field(entries, "map")
		items, err := jsonutil.ArrayItems(mapValue)
		if err != nil {
			return nil, jsonErrorf(DetailedSchema, "map: %s", err)
		}
		ret := NewPlutusMap()
		for _, item := range items {
			pair, err := jsonutil.ObjectEntries(item)
			if err != nil || len(pair) != 2 {
				return nil, jsonErrorf(DetailedSchema, "map entries must be {\"k\", \"v\"} objects")
			}
			keyValue, okK := jsonutil.Field(pair, "k")
			valueValue, okV := jsonutil.Field(pair, "v")
			if !okK || !okV {
				return nil, jsonErrorf(DetailedSchema, "map entries must be {\"k\", \"v\"} objects")
			}
			key, err := fromDetailedJSON(keyValue)
			if err != nil {
				return nil, err
			}
			value, err := fromDetailedJSON(valueValue)
			if err != nil {
				return nil, err
			}
			if _, err := ret.Insert(key, value); err != nil {
				return nil, err
			}
		}
		return ret, nil
	case "list":
		listValue, _ := jsonutil.Field(entries, "list")
		return fromDetailedList(listValue)
	case "int":
		intValue, _ := jsonutil.Field(entries, "int")
		i, err := jsonutil.AsInteger(intValue)
		if err != nil {
			return nil, jsonErrorf(DetailedSchema, "int: %s", err)
		}
		return NewPlutusInteger(num.NewBigInt(i)), nil
	case "bytes":
		bytesValue, _ := jsonutil.Field(entries, "bytes")
		s, err := jsonutil.AsString(bytesValue)
		if err != nil {
			return nil, jsonErrorf(DetailedSchema, "bytes: %s", err)
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, jsonErrorf(DetailedSchema, "bytes: invalid hex %q", s)
		}
		return PlutusBytes(b), nil
	default:
		return nil, jsonErrorf(
			DetailedSchema,
			"unexpected object with keys [%s]",
			strings.Join(keys, ", "),
		)
	}
}

func fromDetailedList(v jsonutil.Value) (PlutusList, error) {
	items, err := jsonutil.ArrayItems(v)
	if err != nil {
		return PlutusList{}, jsonErrorf(DetailedSchema, "%s", err)
	}
	ret := NewPlutusList()
	for _, item := range items {
		tmp, err := fromDetailedJSON(item)
		if err != nil {
			return PlutusList{}, err
		}
		ret.Add(tmp)
	}
	return ret, nil
}

func toSimpleJSON(d PlutusData, schema PlutusDatumSchema, isKey bool) ([]byte, error) {
	switch v := d.(type) {
	case ConstrPlutusData:
		return nil, jsonErrorf(schema, "constructors are not supported")
	case *PlutusMap:
		if isKey {
			return nil, jsonErrorf(schema, "maps are not supported as keys")
		}
		members := make([]jsonutil.Member, 0, v.Len())
		for _, entry := range v.Entries() {
			key, err := simpleKey(entry.Key, schema)
			if err != nil {
				return nil, err
			}
			value, err := toSimpleJSON(entry.Value, schema, false)
			if err != nil {
				return nil, err
			}
			members = append(members, jsonutil.Member{Key: key, Value: value})
		}
		return jsonutil.EncodeObject(members), nil
	case PlutusList:
		if isKey {
			return nil, jsonErrorf(schema, "lists are not supported as keys")
		}
		items := make([][]byte, 0, v.Len())
		for _, item := range v.Items() {
			tmp, err := toSimpleJSON(item, schema, false)
			if err != nil {
				return nil, err
			}
			items = append(items, tmp)
		}
		return jsonutil.EncodeArray(items), nil
	case PlutusInteger:
		return []byte(v.Value.String()), nil
	case PlutusBytes:
		if schema == NoConversions {
			if !utf8.Valid(v) {
				return nil, jsonErrorf(schema, "bytes %x are not valid UTF-8", []byte(v))
			}
			return jsonutil.EncodeString(string(v)), nil
		}
		return jsonutil.EncodeString("0x" + hex.EncodeToString(v)), nil
	default:
		return nil, jsonErrorf(schema, "unsupported data type %T", d)
	}
}

func simpleKey(d PlutusData, schema PlutusDatumSchema) (string, error) {
	switch v := d.(type) {
	case PlutusBytes:
		if schema == NoConversions {
			if !utf8.Valid(v) {
				return "", jsonErrorf(schema, "map key %x is not valid UTF-8", []byte(v))
			}
			return string(v), nil
		}
		return "0x" + hex.EncodeToString(v), nil
	case PlutusInteger:
		if schema == NoConversions {
			return "", jsonErrorf(schema, "integer map keys are not supported")
		}
		return v.Value.String(), nil
	default:
		// Produces the matching error for the other variants
		if _, err := toSimpleJSON(d, schema, true); err != nil {
			return "", err
		}
		return "", jsonErrorf(schema, "unsupported map key type %T", d)
	}
}

func fromSimpleJSON(v jsonutil.Value, schema PlutusDatumSchema) (PlutusData, error) {
	switch v.Type {
	case jsonutil.Number:
		i, err := jsonutil.AsInteger(v)
		if err != nil {
			return nil, jsonErrorf(schema, "%s", err)
		}
		return NewPlutusInteger(num.NewBigInt(i)), nil
	case jsonutil.String:
		s, err := jsonutil.AsString(v)
		if err != nil {
			return nil, jsonErrorf(schema, "%s", err)
		}
		return simpleStringToBytes(s, schema)
	case jsonutil.Array:
		items, err := jsonutil.ArrayItems(v)
		if err != nil {
			return nil, jsonErrorf(schema, "%s", err)
		}
		ret := NewPlutusList()
		for _, item := range items {
			tmp, err := fromSimpleJSON(item, schema)
			if err != nil {
				return nil, err
			}
			ret.Add(tmp)
		}
		return ret, nil
	case jsonutil.Object:
		entries, err := jsonutil.ObjectEntries(v)
		if err != nil {
			return nil, jsonErrorf(schema, "%s", err)
		}
		ret := NewPlutusMap()
		for _, entry := range entries {
			key, err := simpleKeyFromString(entry.Key, schema)
			if err != nil {
				return nil, err
			}
			value, err := fromSimpleJSON(entry.Value, schema)
			if err != nil {
				return nil, err
			}
			if _, err := ret.Insert(key, value); err != nil {
				return nil, err
			}
		}
		return ret, nil
	default:
		return nil, jsonErrorf(schema, "JSON %s values are not supported", v.Type)
	}
}

func simpleStringToBytes(s string, schema PlutusDatumSchema) (PlutusData, error) {
	if schema == BasicConversions {
		if hexStr, ok := strings.CutPrefix(s, "0x"); ok {
			b, err := hex.DecodeString(hexStr)
			if err != nil {
				return nil, jsonErrorf(schema, "invalid hex string %q", s)
			}
			return PlutusBytes(b), nil
		}
	}
	return PlutusBytes(s), nil
}

func simpleKeyFromString(key string, schema PlutusDatumSchema) (PlutusData, error) {
	if schema == BasicConversions && !strings.HasPrefix(key, "0x") {
		if i, ok := new(big.Int).SetString(key, 10); ok {
			return NewPlutusInteger(num.NewBigInt(i)), nil
		}
	}
	return simpleStringToBytes(key, schema)
}
