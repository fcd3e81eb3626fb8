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
	"cmp"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/plutus"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

// TransactionInput references an output of an earlier transaction
type TransactionInput struct {
	TransactionID crypto.TransactionHash `json:"transaction_id"`
	Index         uint32                 `json:"index"`
}

func NewTransactionInput(txID crypto.TransactionHash, index uint32) TransactionInput {
	return TransactionInput{TransactionID: txID, Index: index}
}

// Compare orders inputs by transaction ID and then index, the order the ledger sorts them in
func (i TransactionInput) Compare(other TransactionInput) int {
	if c := i.TransactionID.Compare(other.TransactionID); c != 0 {
		return c
	}
	return cmp.Compare(i.Index, other.Index)
}

func (i TransactionInput) String() string {
	return fmt.Sprintf("%s#%d", i.TransactionID, i.Index)
}

func (i TransactionInput) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeArray(
		[]cbor.RawMessage{
			cbor.EncodeBytes(i.TransactionID.Bytes()),
			cbor.EncodeUint(uint64(i.Index)),
		},
		false,
	), nil
}

func (i *TransactionInput) UnmarshalCBOR(data []byte) error {
	items, err := cbor.DecodeArrayLen(data, "TransactionInput", 2, 2)
	if err != nil {
		return cbor.WrapDeserialize("TransactionInput", err)
	}
	var txID crypto.TransactionHash
	if err := txID.UnmarshalCBOR(items[0]); err != nil {
		return cbor.WrapDeserialize("TransactionInput", err)
	}
	index, err := cbor.DecodeUint(items[1])
	if err != nil {
		return cbor.WrapDeserialize("TransactionInput", err)
	}
	if index > 0xFFFFFFFF {
		return cbor.WrapDeserialize(
			"TransactionInput",
			fmt.Errorf("output index %d out of range", index),
		)
	}
	*i = TransactionInput{TransactionID: txID, Index: uint32(index)}
	return nil
}

func (i TransactionInput) Utxorpc() *utxorpc.TxInput {
	return &utxorpc.TxInput{
		TxHash:      i.TransactionID.Bytes(),
		OutputIndex: i.Index,
	}
}

// DataOption is the datum attached to an output: either a datum hash or inline data
type DataOption struct {
	hash  crypto.DataHash
	datum *plutus.Datum
}

func NewDataOptionHash(hash crypto.DataHash) DataOption {
	return DataOption{hash: hash}
}

func NewDataOptionInline(data plutus.PlutusData) DataOption {
	d := plutus.NewDatum(data)
	return DataOption{datum: &d}
}

// Hash returns the datum hash when the option holds one
func (o DataOption) Hash() (crypto.DataHash, bool) {
	if o.datum != nil {
		return crypto.DataHash{}, false
	}
	return o.hash, true
}

// Data returns the inline datum when the option holds one
func (o DataOption) Data() (plutus.PlutusData, bool) {
	if o.datum == nil {
		return nil, false
	}
	return o.datum.Data, true
}

func (o DataOption) IsInline() bool {
	return o.datum != nil
}

func (o DataOption) MarshalCBOR() ([]byte, error) {
	if o.datum == nil {
		return cbor.EncodeArray(
			[]cbor.RawMessage{cbor.EncodeUint(0), cbor.EncodeBytes(o.hash.Bytes())},
			false,
		), nil
	}
	inner, err := o.datum.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	return cbor.EncodeArray(
		[]cbor.RawMessage{cbor.EncodeUint(1), cbor.EncodeWrapped(inner)},
		false,
	), nil
}

func (o *DataOption) UnmarshalCBOR(data []byte) error {
	items, err := cbor.DecodeArrayLen(data, "DataOption", 2, 2)
	if err != nil {
		return cbor.WrapDeserialize("DataOption", err)
	}
	kind, err := cbor.DecodeUint(items[0])
	if err != nil {
		return cbor.WrapDeserialize("DataOption", err)
	}
	switch kind {
	case 0:
		var hash crypto.DataHash
		if err := hash.UnmarshalCBOR(items[1]); err != nil {
			return cbor.WrapDeserialize("DataOption", err)
		}
		*o = DataOption{hash: hash}
	case 1:
		inner, err := cbor.DecodeWrapped(items[1])
		if err != nil {
			return cbor.WrapDeserialize("DataOption", err)
		}
		var d plutus.Datum
		if err := d.UnmarshalCBOR(inner); err != nil {
			return cbor.WrapDeserialize("DataOption", err)
		}
		*o = DataOption{datum: &d}
	default:
		return cbor.WrapDeserialize("DataOption", fmt.Errorf("unknown datum option %d", kind))
	}
	return nil
}

// TransactionOutput sends a value to an address, optionally with a datum and a reference script.
// Outputs with an inline datum or a script reference use the map encoding. Others use the legacy
// array encoding unless they were decoded from a map.
type TransactionOutput struct {
	Address   Address
	Amount    Value
	Datum     *DataOption
	ScriptRef *ScriptRef
	mapFormat bool
}

func NewTransactionOutput(address Address, amount Value) TransactionOutput {
	return TransactionOutput{Address: address, Amount: amount}
}

func (o *TransactionOutput) SetDataHash(hash crypto.DataHash) {
	d := NewDataOptionHash(hash)
	o.Datum = &d
}

func (o *TransactionOutput) SetPlutusData(data plutus.PlutusData) {
	d := NewDataOptionInline(data)
	o.Datum = &d
}

func (o *TransactionOutput) SetScriptRef(ref ScriptRef) {
	o.ScriptRef = &ref
}

// SetMapFormat selects the map encoding even when the legacy array encoding could be used
func (o *TransactionOutput) SetMapFormat(mapFormat bool) {
	o.mapFormat = mapFormat
}

func (o TransactionOutput) IsMapFormat() bool {
	return o.mapFormat || o.ScriptRef != nil || (o.Datum != nil && o.Datum.IsInline())
}

func (o TransactionOutput) MarshalCBOR() ([]byte, error) {
	if o.Address == nil {
		return nil, errors.New("transaction output has no address")
	}
	amount, err := o.Amount.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	if !o.IsMapFormat() {
		items := []cbor.RawMessage{encodeAddress(o.Address), amount}
		if o.Datum != nil {
			hash, _ := o.Datum.Hash()
			items = append(items, cbor.EncodeBytes(hash.Bytes()))
		}
		return cbor.EncodeArray(items, false), nil
	}
	entries := []cbor.MapEntry{
		{Key: cbor.EncodeUint(0), Value: encodeAddress(o.Address)},
		{Key: cbor.EncodeUint(1), Value: amount},
	}
	if o.Datum != nil {
		datum, err := o.Datum.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		entries = append(entries, cbor.MapEntry{Key: cbor.EncodeUint(2), Value: datum})
	}
	if o.ScriptRef != nil {
		ref, err := o.ScriptRef.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		entries = append(entries, cbor.MapEntry{Key: cbor.EncodeUint(3), Value: ref})
	}
	return cbor.EncodeMap(entries)
}

func (o *TransactionOutput) UnmarshalCBOR(data []byte) error {
	if err := o.unmarshalCBOR(data); err != nil {
		return cbor.WrapDeserialize("TransactionOutput", err)
	}
	return nil
}

func (o *TransactionOutput) unmarshalCBOR(data []byte) error {
	t, err := cbor.MajorType(data)
	if err != nil {
		return err
	}
	var ret TransactionOutput
	if t == cbor.MajorTypeArray {
		items, err := cbor.DecodeArrayLen(data, "TransactionOutput", 2, 3)
		if err != nil {
			return err
		}
		if ret.Address, err = decodeAddress(items[0]); err != nil {
			return err
		}
		if err := ret.Amount.UnmarshalCBOR(items[1]); err != nil {
			return err
		}
		if len(items) == 3 {
			var hash crypto.DataHash
			if err := hash.UnmarshalCBOR(items[2]); err != nil {
				return cbor.WrapDeserialize("datum_hash", err)
			}
			ret.SetDataHash(hash)
		}
		*o = ret
		return nil
	}
	fields, err := cbor.DecodeUintMap(data)
	if err != nil {
		return err
	}
	ret.mapFormat = true
	for key, value := range fields {
		switch key {
		case 0:
			if ret.Address, err = decodeAddress(value); err != nil {
				return err
			}
		case 1:
			if err := ret.Amount.UnmarshalCBOR(value); err != nil {
				return err
			}
		case 2:
			var d DataOption
			if err := d.UnmarshalCBOR(value); err != nil {
				return err
			}
			ret.Datum = &d
		case 3:
			var ref ScriptRef
			if err := ref.UnmarshalCBOR(value); err != nil {
				return err
			}
			ret.ScriptRef = &ref
		default:
			return fmt.Errorf("unknown output field %d", key)
		}
	}
	if ret.Address == nil {
		return errors.New("missing address")
	}
	if _, ok := fields[1]; !ok {
		return errors.New("missing amount")
	}
	*o = ret
	return nil
}

type transactionOutputJSON struct {
	Address    string          `json:"address"`
	Amount     Value           `json:"amount"`
	DataHash   *string         `json:"data_hash,omitempty"`
	PlutusData json.RawMessage `json:"plutus_data,omitempty"`
	ScriptRef  *string         `json:"script_ref,omitempty"`
}

// MarshalJSON renders the output with inline datums in the detailed Plutus JSON schema
func (o TransactionOutput) MarshalJSON() ([]byte, error) {
	if o.Address == nil {
		return nil, errors.New("transaction output has no address")
	}
	tmp := transactionOutputJSON{
		Address: o.Address.String(),
		Amount:  o.Amount,
	}
	if o.Datum != nil {
		if hash, ok := o.Datum.Hash(); ok {
			s := hash.String()
			tmp.DataHash = &s
		} else {
			d, _ := o.Datum.Data()
			data, err := plutus.ToJSON(d, plutus.DetailedSchema)
			if err != nil {
				return nil, err
			}
			tmp.PlutusData = data
		}
	}
	if o.ScriptRef != nil {
		ref, err := o.ScriptRef.scriptCbor()
		if err != nil {
			return nil, err
		}
		s := fmt.Sprintf("%x", ref)
		tmp.ScriptRef = &s
	}
	return json.Marshal(tmp)
}

// Size returns the encoded size of the output
func (o TransactionOutput) Size() (int, error) {
	data, err := o.MarshalCBOR()
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

func (o TransactionOutput) Utxorpc() *utxorpc.TxOutput {
	var assets []*utxorpc.Multiasset
	for _, policy := range o.Amount.MultiAsset.Keys() {
		ma := &utxorpc.Multiasset{
			PolicyId: policy.Bytes(),
		}
		policyAssets := o.Amount.MultiAsset[policy]
		for _, name := range policyAssets.Keys() {
			ma.Assets = append(ma.Assets, &utxorpc.Asset{
				Name:       name.Bytes(),
				OutputCoin: policyAssets[name].Uint64(),
			})
		}
		assets = append(assets, ma)
	}
	ret := &utxorpc.TxOutput{
		Coin:   o.Amount.Coin.Uint64(),
		Assets: assets,
	}
	if o.Address != nil {
		ret.Address = o.Address.Bytes()
	}
	if o.Datum != nil {
		if hash, ok := o.Datum.Hash(); ok {
			ret.Datum = &utxorpc.Datum{Hash: hash.Bytes()}
		} else if o.Datum.datum != nil {
			if data, err := o.Datum.datum.MarshalCBOR(); err == nil {
				ret.Datum = &utxorpc.Datum{
					Hash:         crypto.HashDataBytes(data).Bytes(),
					OriginalCbor: data,
				}
			}
		}
	}
	return ret
}

// TransactionUnspentOutput pairs an output with the input that references it
type TransactionUnspentOutput struct {
	Input  TransactionInput
	Output TransactionOutput
}

func NewTransactionUnspentOutput(input TransactionInput, output TransactionOutput) TransactionUnspentOutput {
	return TransactionUnspentOutput{Input: input, Output: output}
}

func (u TransactionUnspentOutput) MarshalCBOR() ([]byte, error) {
	input, err := u.Input.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	output, err := u.Output.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	return cbor.EncodeArray([]cbor.RawMessage{input, output}, false), nil
}

func (u *TransactionUnspentOutput) UnmarshalCBOR(data []byte) error {
	items, err := cbor.DecodeArrayLen(data, "TransactionUnspentOutput", 2, 2)
	if err != nil {
		return cbor.WrapDeserialize("TransactionUnspentOutput", err)
	}
	var ret TransactionUnspentOutput
	if err := ret.Input.UnmarshalCBOR(items[0]); err != nil {
		return cbor.WrapDeserialize("TransactionUnspentOutput", err)
	}
	if err := ret.Output.UnmarshalCBOR(items[1]); err != nil {
		return cbor.WrapDeserialize("TransactionUnspentOutput", err)
	}
	*u = ret
	return nil
}
