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
	"slices"
	"strconv"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/blinklabs-io/gocsl/plutus"
)

type RedeemerTag uint8

const (
	RedeemerTagSpend     RedeemerTag = 0
	RedeemerTagMint      RedeemerTag = 1
	RedeemerTagCert      RedeemerTag = 2
	RedeemerTagReward    RedeemerTag = 3
	RedeemerTagVoting    RedeemerTag = 4
	RedeemerTagProposing RedeemerTag = 5
)

func (t RedeemerTag) String() string {
	switch t {
	case RedeemerTagSpend:
		return "spend"
	case RedeemerTagMint:
		return "mint"
	case RedeemerTagCert:
		return "cert"
	case RedeemerTagReward:
		return "reward"
	case RedeemerTagVoting:
		return "vote"
	case RedeemerTagProposing:
		return "propose"
	default:
		return "RedeemerTag(" + strconv.Itoa(int(t)) + ")"
	}
}

func (t RedeemerTag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func decodeRedeemerTag(data []byte) (RedeemerTag, error) {
	tmp, err := cbor.DecodeUint(data)
	if err != nil {
		return 0, err
	}
	if tmp > uint64(RedeemerTagProposing) {
		return 0, fmt.Errorf("unknown redeemer tag %d", tmp)
	}
	return RedeemerTag(tmp), nil
}

// ExUnits is a script execution budget
type ExUnits struct {
	Mem   num.BigNum `json:"mem"`
	Steps num.BigNum `json:"steps"`
}

func NewExUnits(mem, steps num.BigNum) ExUnits {
	return ExUnits{Mem: mem, Steps: steps}
}

func (e ExUnits) CheckedAdd(other ExUnits) (ExUnits, error) {
	mem, err := e.Mem.CheckedAdd(other.Mem)
	if err != nil {
		return ExUnits{}, err
	}
	steps, err := e.Steps.CheckedAdd(other.Steps)
	if err != nil {
		return ExUnits{}, err
	}
	return ExUnits{Mem: mem, Steps: steps}, nil
}

func (e ExUnits) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeArray([]cbor.RawMessage{
		cbor.EncodeUint(e.Mem.Uint64()),
		cbor.EncodeUint(e.Steps.Uint64()),
	}, false), nil
}

func (e *ExUnits) UnmarshalCBOR(data []byte) error {
	items, err := cbor.DecodeArrayLen(data, "ExUnits", 2, 2)
	if err != nil {
		return err
	}
	mem, err := cbor.DecodeUint(items[0])
	if err != nil {
		return cbor.WrapDeserialize("ExUnits", cbor.WrapDeserialize("mem", err))
	}
	steps, err := cbor.DecodeUint(items[1])
	if err != nil {
		return cbor.WrapDeserialize("ExUnits", cbor.WrapDeserialize("steps", err))
	}
	e.Mem = num.BigNum(mem)
	e.Steps = num.BigNum(steps)
	return nil
}

// ExUnitPrices is the lovelace price of one unit of memory and one step
type ExUnitPrices struct {
	MemPrice  num.UnitInterval `json:"mem_price"`
	StepPrice num.UnitInterval `json:"step_price"`
}

func NewExUnitPrices(memPrice, stepPrice num.UnitInterval) ExUnitPrices {
	return ExUnitPrices{MemPrice: memPrice, StepPrice: stepPrice}
}

func (p ExUnitPrices) MarshalCBOR() ([]byte, error) {
	mem, err := p.MemPrice.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	steps, err := p.StepPrice.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	return cbor.EncodeArray([]cbor.RawMessage{mem, steps}, false), nil
}

func (p *ExUnitPrices) UnmarshalCBOR(data []byte) error {
	items, err := cbor.DecodeArrayLen(data, "ExUnitPrices", 2, 2)
	if err != nil {
		return err
	}
	if err := p.MemPrice.UnmarshalCBOR(items[0]); err != nil {
		return cbor.WrapDeserialize("ExUnitPrices", cbor.WrapDeserialize("mem_price", err))
	}
	if err := p.StepPrice.UnmarshalCBOR(items[1]); err != nil {
		return cbor.WrapDeserialize("ExUnitPrices", cbor.WrapDeserialize("step_price", err))
	}
	return nil
}

// Redeemer is the argument and budget for one script execution, identified by its purpose tag
// and the index of the item it validates within the sorted body collection
type Redeemer struct {
	Tag     RedeemerTag
	Index   num.BigNum
	Data    plutus.Datum
	ExUnits ExUnits
}

func NewRedeemer(tag RedeemerTag, index num.BigNum, data plutus.PlutusData, exUnits ExUnits) Redeemer {
	return Redeemer{
		Tag:     tag,
		Index:   index,
		Data:    plutus.NewDatum(data),
		ExUnits: exUnits,
	}
}

func (r Redeemer) key() redeemerKey {
	return redeemerKey{tag: r.Tag, index: r.Index}
}

func (r Redeemer) MarshalCBOR() ([]byte, error) {
	data, err := r.Data.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	exUnits, err := r.ExUnits.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	return cbor.EncodeArray([]cbor.RawMessage{
		cbor.EncodeUint(uint64(r.Tag)),
		cbor.EncodeUint(r.Index.Uint64()),
		data,
		exUnits,
	}, false), nil
}

func (r *Redeemer) UnmarshalCBOR(data []byte) error {
	if err := r.unmarshalCBOR(data); err != nil {
		return cbor.WrapDeserialize("Redeemer", err)
	}
	return nil
}

func (r *Redeemer) unmarshalCBOR(data []byte) error {
	items, err := cbor.DecodeArrayLen(data, "Redeemer", 4, 4)
	if err != nil {
		return err
	}
	tag, err := decodeRedeemerTag(items[0])
	if err != nil {
		return cbor.WrapDeserialize("tag", err)
	}
	index, err := cbor.DecodeUint(items[1])
	if err != nil {
		return cbor.WrapDeserialize("index", err)
	}
	r.Tag = tag
	r.Index = num.BigNum(index)
	if err := r.Data.UnmarshalCBOR(items[2]); err != nil {
		return cbor.WrapDeserialize("data", err)
	}
	return r.ExUnits.UnmarshalCBOR(items[3])
}

type redeemerKey struct {
	tag   RedeemerTag
	index num.BigNum
}

func (k redeemerKey) compare(other redeemerKey) int {
	if k.tag != other.tag {
		return int(k.tag) - int(other.tag)
	}
	return k.index.Compare(other.index)
}

// Redeemers is the witness set redeemer collection. It is encoded in the legacy array form
// unless it was decoded from the map form.
type Redeemers struct {
	items     []Redeemer
	mapFormat bool
}

func NewRedeemers(items ...Redeemer) Redeemers {
	return Redeemers{items: items}
}

func (r Redeemers) Len() int {
	return len(r.items)
}

func (r Redeemers) Get(idx int) Redeemer {
	return r.items[idx]
}

func (r *Redeemers) Add(redeemer Redeemer) {
	r.items = append(r.items, redeemer)
}

func (r Redeemers) Items() []Redeemer {
	return r.items
}

func (r Redeemers) IsMapFormat() bool {
	return r.mapFormat
}

func (r *Redeemers) SetMapFormat(mapFormat bool) {
	r.mapFormat = mapFormat
}

// TotalExUnits sums the budgets of every redeemer
func (r Redeemers) TotalExUnits() (ExUnits, error) {
	var ret ExUnits
	for _, item := range r.items {
		var err error
		ret, err = ret.CheckedAdd(item.ExUnits)
		if err != nil {
			return ExUnits{}, err
		}
	}
	return ret, nil
}

func (r Redeemers) MarshalCBOR() ([]byte, error) {
	if !r.mapFormat {
		items, err := encodeItems(r.items)
		if err != nil {
			return nil, err
		}
		return cbor.EncodeArray(items, false), nil
	}
	entries := make([]cbor.MapEntry, 0, len(r.items))
	for _, item := range r.items {
		data, err := item.Data.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		exUnits, err := item.ExUnits.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		entries = append(entries, cbor.MapEntry{
			Key: cbor.EncodeArray([]cbor.RawMessage{
				cbor.EncodeUint(uint64(item.Tag)),
				cbor.EncodeUint(item.Index.Uint64()),
			}, false),
			Value: cbor.EncodeArray([]cbor.RawMessage{data, exUnits}, false),
		})
	}
	return cbor.EncodeMap(entries)
}

func (r *Redeemers) UnmarshalCBOR(data []byte) error {
	if err := r.unmarshalCBOR(data); err != nil {
		return cbor.WrapDeserialize("Redeemers", err)
	}
	return nil
}

func (r *Redeemers) unmarshalCBOR(data []byte) error {
	t, err := cbor.MajorType(data)
	if err != nil {
		return err
	}
	*r = Redeemers{}
	switch t {
	case cbor.MajorTypeArray:
		items, _, err := decodeList[Redeemer](data)
		if err != nil {
			return err
		}
		r.items = items
	case cbor.MajorTypeMap:
		entries, err := cbor.DecodeMapEntries(data)
		if err != nil {
			return err
		}
		r.mapFormat = true
		for idx, entry := range entries {
			var item Redeemer
			if err := item.unmarshalMapEntry(entry); err != nil {
				return cbor.WrapDeserializeIndex(idx, err)
			}
			r.items = append(r.items, item)
		}
	default:
		return cbor.UnexpectedTypeError{Expected: "redeemers array or map", Actual: t}
	}
	seen := map[redeemerKey]bool{}
	for _, item := range r.items {
		if seen[item.key()] {
			return fmt.Errorf("duplicate redeemer %s:%d", item.Tag, item.Index)
		}
		seen[item.key()] = true
	}
	return nil
}

func (r *Redeemer) unmarshalMapEntry(entry cbor.MapEntry) error {
	key, err := cbor.DecodeArrayLen(entry.Key, "RedeemerKey", 2, 2)
	if err != nil {
		return err
	}
	value, err := cbor.DecodeArrayLen(entry.Value, "RedeemerValue", 2, 2)
	if err != nil {
		return err
	}
	tag, err := decodeRedeemerTag(key[0])
	if err != nil {
		return cbor.WrapDeserialize("tag", err)
	}
	index, err := cbor.DecodeUint(key[1])
	if err != nil {
		return cbor.WrapDeserialize("index", err)
	}
	r.Tag = tag
	r.Index = num.BigNum(index)
	if err := r.Data.UnmarshalCBOR(value[0]); err != nil {
		return cbor.WrapDeserialize("data", err)
	}
	return r.ExUnits.UnmarshalCBOR(value[1])
}

// Sort orders the redeemers by tag and then index
func (r *Redeemers) Sort() {
	slices.SortStableFunc(r.items, func(a, b Redeemer) int {
		return a.key().compare(b.key())
	})
}
