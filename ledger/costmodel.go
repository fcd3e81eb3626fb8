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
	"fmt"
	"maps"
	"slices"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/num"
)

// CostModel is the list of cost parameters for one Plutus language, in parameter order
type CostModel []num.Int

func NewCostModel(ops ...int64) CostModel {
	ret := make(CostModel, 0, len(ops))
	for _, op := range ops {
		ret = append(ret, num.NewIntFromInt64(op))
	}
	return ret
}

func (c CostModel) Len() int {
	return len(c)
}

// Set replaces the parameter at idx, returning the previous value
func (c CostModel) Set(idx int, value num.Int) num.Int {
	prev := c[idx]
	c[idx] = value
	return prev
}

func (c CostModel) Get(idx int) num.Int {
	return c[idx]
}

func (c CostModel) MarshalCBOR() ([]byte, error) {
	items, err := encodeItems(c)
	if err != nil {
		return nil, err
	}
	return cbor.EncodeArray(items, false), nil
}

func (c *CostModel) UnmarshalCBOR(data []byte) error {
	items, err := cbor.DecodeArray(data)
	if err != nil {
		return cbor.WrapDeserialize("CostModel", err)
	}
	ret := make(CostModel, 0, len(items))
	for idx, item := range items {
		var tmp num.Int
		if err := tmp.UnmarshalCBOR(item); err != nil {
			return cbor.WrapDeserialize("CostModel", cbor.WrapDeserializeIndex(idx, err))
		}
		ret = append(ret, tmp)
	}
	*c = ret
	return nil
}

// Costmdls maps each language to its cost model
type Costmdls map[Language]CostModel

func (c Costmdls) Len() int {
	return len(c)
}

// Insert sets the cost model for language, returning the previous one if there was one
func (c Costmdls) Insert(language Language, model CostModel) (CostModel, bool) {
	prev, ok := c[language]
	c[language] = model
	return prev, ok
}

func (c Costmdls) Get(language Language) (CostModel, bool) {
	ret, ok := c[language]
	return ret, ok
}

func (c Costmdls) Keys() []Language {
	return slices.Sorted(maps.Keys(c))
}

// RetainLanguageVersions returns the cost models for the given languages only
func (c Costmdls) RetainLanguageVersions(languages []Language) (Costmdls, error) {
	ret := Costmdls{}
	for _, language := range languages {
		model, ok := c[language]
		if !ok {
			return nil, MissingCostModelError{Language: language}
		}
		ret[language] = model
	}
	return ret, nil
}

func (c Costmdls) MarshalCBOR() ([]byte, error) {
	entries := make([]cbor.MapEntry, 0, len(c))
	for language, model := range c {
		value, err := model.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		entries = append(entries, cbor.MapEntry{
			Key:   cbor.EncodeUint(uint64(language)),
			Value: value,
		})
	}
	return cbor.EncodeMap(entries)
}

func (c *Costmdls) UnmarshalCBOR(data []byte) error {
	entries, err := cbor.DecodeUintMap(data)
	if err != nil {
		return cbor.WrapDeserialize("Costmdls", err)
	}
	ret := make(Costmdls, len(entries))
	for key, raw := range entries {
		if key > uint64(PlutusV3) {
			return cbor.WrapDeserialize("Costmdls", fmt.Errorf("unknown language %d", key))
		}
		var model CostModel
		if err := model.UnmarshalCBOR(raw); err != nil {
			return cbor.WrapDeserialize("Costmdls", err)
		}
		ret[Language(key)] = model
	}
	*c = ret
	return nil
}

// LanguageViewsEncoding is the cost model encoding included in the script data hash. PlutusV1
// keeps the encoding of the original Alonzo ledger: its key is the encoded language id wrapped
// in a byte string, and its value is an indefinite-length parameter list wrapped in a byte string.
func (c Costmdls) LanguageViewsEncoding() ([]byte, error) {
	entries := make([]cbor.MapEntry, 0, len(c))
	for language, model := range c {
		items, err := encodeItems(model)
		if err != nil {
			return nil, err
		}
		if language == PlutusV1 {
			entries = append(entries, cbor.MapEntry{
				Key:   cbor.EncodeBytes(cbor.EncodeUint(uint64(language))),
				Value: cbor.EncodeBytes(cbor.EncodeArray(items, true)),
			})
			continue
		}
		entries = append(entries, cbor.MapEntry{
			Key:   cbor.EncodeUint(uint64(language)),
			Value: cbor.EncodeArray(items, false),
		})
	}
	return cbor.EncodeMap(entries)
}
