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
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/blinklabs-io/gocsl/plutus"
)

// Transaction body map keys
const (
	bodyKeyInputs                = 0
	bodyKeyOutputs               = 1
	bodyKeyFee                   = 2
	bodyKeyTTL                   = 3
	bodyKeyCerts                 = 4
	bodyKeyWithdrawals           = 5
	bodyKeyUpdate                = 6
	bodyKeyAuxiliaryDataHash     = 7
	bodyKeyValidityStartInterval = 8
	bodyKeyMint                  = 9
	bodyKeyScriptDataHash        = 11
	bodyKeyCollateral            = 13
	bodyKeyRequiredSigners       = 14
	bodyKeyNetworkID             = 15
	bodyKeyCollateralReturn      = 16
	bodyKeyTotalCollateral       = 17
	bodyKeyReferenceInputs       = 18
)

// TransactionBody is the signed part of a transaction. Optional fields are nil when absent.
type TransactionBody struct {
	Inputs                []TransactionInput
	Outputs               []TransactionOutput
	Fee                   num.BigNum
	TTL                   *num.BigNum
	Certs                 *Certificates
	Withdrawals           Withdrawals
	Update                *Update
	AuxiliaryDataHash     *crypto.AuxiliaryDataHash
	ValidityStartInterval *num.BigNum
	Mint                  Mint
	ScriptDataHash        *crypto.ScriptDataHash
	Collateral            []TransactionInput
	RequiredSigners       []crypto.Ed25519KeyHash
	NetworkID             *uint8
	CollateralReturn      *TransactionOutput
	TotalCollateral       *num.BigNum
	ReferenceInputs       []TransactionInput
	// keys whose sets were decoded with the set tag
	taggedSets map[int]bool
}

func NewTransactionBody(
	inputs []TransactionInput,
	outputs []TransactionOutput,
	fee num.BigNum,
) *TransactionBody {
	return &TransactionBody{Inputs: inputs, Outputs: outputs, Fee: fee}
}

func (b *TransactionBody) MarshalCBOR() ([]byte, error) {
	var entries []cbor.MapEntry
	add := func(key int, value []byte, err error) error {
		if err != nil {
			return err
		}
		entries = append(entries, cbor.MapEntry{Key: cbor.EncodeUint(uint64(key)), Value: value})
		return nil
	}
	inputs, err := encodeSet(b.Inputs, b.taggedSets[bodyKeyInputs])
	if err := add(bodyKeyInputs, inputs, err); err != nil {
		return nil, err
	}
	outputs, err := encodeItems(b.Outputs)
	if err != nil {
		return nil, err
	}
	if err := add(bodyKeyOutputs, cbor.EncodeArray(outputs, false), nil); err != nil {
		return nil, err
	}
	if err := add(bodyKeyFee, cbor.EncodeUint(b.Fee.Uint64()), nil); err != nil {
		return nil, err
	}
	if b.TTL != nil {
		if err := add(bodyKeyTTL, cbor.EncodeUint(b.TTL.Uint64()), nil); err != nil {
			return nil, err
		}
	}
	if b.Certs != nil {
		tmp, err := b.Certs.MarshalCBOR()
		if err := add(bodyKeyCerts, tmp, err); err != nil {
			return nil, err
		}
	}
	if b.Withdrawals != nil {
		tmp, err := b.Withdrawals.MarshalCBOR()
		if err := add(bodyKeyWithdrawals, tmp, err); err != nil {
			return nil, err
		}
	}
	if b.Update != nil {
		tmp, err := b.Update.MarshalCBOR()
		if err := add(bodyKeyUpdate, tmp, err); err != nil {
			return nil, err
		}
	}
	if b.AuxiliaryDataHash != nil {
		tmp, err := b.AuxiliaryDataHash.MarshalCBOR()
		if err := add(bodyKeyAuxiliaryDataHash, tmp, err); err != nil {
			return nil, err
		}
	}
	if b.ValidityStartInterval != nil {
		tmp := cbor.EncodeUint(b.ValidityStartInterval.Uint64())
		if err := add(bodyKeyValidityStartInterval, tmp, nil); err != nil {
			return nil, err
		}
	}
	if b.Mint != nil {
		tmp, err := b.Mint.MarshalCBOR()
		if err := add(bodyKeyMint, tmp, err); err != nil {
			return nil, err
		}
	}
	if b.ScriptDataHash != nil {
		tmp, err := b.ScriptDataHash.MarshalCBOR()
		if err := add(bodyKeyScriptDataHash, tmp, err); err != nil {
			return nil, err
		}
	}
	if b.Collateral != nil {
		tmp, err := encodeSet(b.Collateral, b.taggedSets[bodyKeyCollateral])
		if err := add(bodyKeyCollateral, tmp, err); err != nil {
			return nil, err
		}
	}
	if b.RequiredSigners != nil {
		tmp, err := encodeSet(b.RequiredSigners, b.taggedSets[bodyKeyRequiredSigners])
		if err := add(bodyKeyRequiredSigners, tmp, err); err != nil {
			return nil, err
		}
	}
	if b.NetworkID != nil {
		if err := add(bodyKeyNetworkID, cbor.EncodeUint(uint64(*b.NetworkID)), nil); err != nil {
			return nil, err
		}
	}
	if b.CollateralReturn != nil {
		tmp, err := b.CollateralReturn.MarshalCBOR()
		if err := add(bodyKeyCollateralReturn, tmp, err); err != nil {
			return nil, err
		}
	}
	if b.TotalCollateral != nil {
		tmp := cbor.EncodeUint(b.TotalCollateral.Uint64())
		if err := add(bodyKeyTotalCollateral, tmp, nil); err != nil {
			return nil, err
		}
	}
	if b.ReferenceInputs != nil {
		tmp, err := encodeSet(b.ReferenceInputs, b.taggedSets[bodyKeyReferenceInputs])
		if err := add(bodyKeyReferenceInputs, tmp, err); err != nil {
			return nil, err
		}
	}
	return cbor.EncodeMap(entries)
}

func (b *TransactionBody) UnmarshalCBOR(data []byte) error {
	if err := b.unmarshalCBOR(data); err != nil {
		return cbor.WrapDeserialize("TransactionBody", err)
	}
	return nil
}

func decodeOptionalUint(data []byte) (*num.BigNum, error) {
	tmp, err := cbor.DecodeUint(data)
	if err != nil {
		return nil, err
	}
	ret := num.BigNum(tmp)
	return &ret, nil
}

func decodeInputSet(data []byte) ([]TransactionInput, bool, error) {
	ret, tagged, err := decodeList[TransactionInput](data)
	if err == nil && ret == nil {
		ret = []TransactionInput{}
	}
	return ret, tagged, err
}

func (b *TransactionBody) unmarshalCBOR(data []byte) error {
	entries, err := cbor.DecodeUintMap(data)
	if err != nil {
		return err
	}
	*b = TransactionBody{taggedSets: map[int]bool{}}
	for _, key := range []int{bodyKeyInputs, bodyKeyOutputs, bodyKeyFee} {
		if _, ok := entries[uint64(key)]; !ok {
			return fmt.Errorf("missing required field %s", bodyKeyName(uint64(key)))
		}
	}
	for _, key := range slices.Sorted(maps.Keys(entries)) {
		raw := entries[key]
		var tagged bool
		var err error
		switch key {
		case bodyKeyInputs:
			b.Inputs, tagged, err = decodeInputSet(raw)
		case bodyKeyOutputs:
			b.Outputs, _, err = decodeList[TransactionOutput](raw)
		case bodyKeyFee:
			var fee uint64
			fee, err = cbor.DecodeUint(raw)
			b.Fee = num.BigNum(fee)
		case bodyKeyTTL:
			b.TTL, err = decodeOptionalUint(raw)
		case bodyKeyCerts:
			b.Certs = &Certificates{}
			err = b.Certs.UnmarshalCBOR(raw)
		case bodyKeyWithdrawals:
			err = b.Withdrawals.UnmarshalCBOR(raw)
		case bodyKeyUpdate:
			b.Update = &Update{}
			err = b.Update.UnmarshalCBOR(raw)
		case bodyKeyAuxiliaryDataHash:
			b.AuxiliaryDataHash = &crypto.AuxiliaryDataHash{}
			err = b.AuxiliaryDataHash.UnmarshalCBOR(raw)
		case bodyKeyValidityStartInterval:
			b.ValidityStartInterval, err = decodeOptionalUint(raw)
		case bodyKeyMint:
			err = b.Mint.UnmarshalCBOR(raw)
		case bodyKeyScriptDataHash:
			b.ScriptDataHash = &crypto.ScriptDataHash{}
			err = b.ScriptDataHash.UnmarshalCBOR(raw)
		case bodyKeyCollateral:
			b.Collateral, tagged, err = decodeInputSet(raw)
		case bodyKeyRequiredSigners:
			b.RequiredSigners, tagged, err = decodeList[crypto.Ed25519KeyHash](raw)
			if err == nil && b.RequiredSigners == nil {
				b.RequiredSigners = []crypto.Ed25519KeyHash{}
			}
		case bodyKeyNetworkID:
			var networkID uint64
			networkID, err = cbor.DecodeUint(raw)
			if err == nil && networkID > 1 {
				err = fmt.Errorf("invalid network id %d", networkID)
			}
			tmp := uint8(networkID)
			b.NetworkID = &tmp
		case bodyKeyCollateralReturn:
			b.CollateralReturn = &TransactionOutput{}
			err = b.CollateralReturn.UnmarshalCBOR(raw)
		case bodyKeyTotalCollateral:
			b.TotalCollateral, err = decodeOptionalUint(raw)
		case bodyKeyReferenceInputs:
			b.ReferenceInputs, tagged, err = decodeInputSet(raw)
		default:
			err = fmt.Errorf("unsupported transaction body key %d", key)
		}
		if err != nil {
			return cbor.WrapDeserialize(bodyKeyName(key), err)
		}
		if tagged {
			b.taggedSets[int(key)] = true
		}
	}
	return nil
}

func bodyKeyName(key uint64) string {
	switch key {
	case bodyKeyInputs:
		return "inputs"
	case bodyKeyOutputs:
		return "outputs"
	case bodyKeyFee:
		return "fee"
	case bodyKeyTTL:
		return "ttl"
	case bodyKeyCerts:
		return "certs"
	case bodyKeyWithdrawals:
		return "withdrawals"
	case bodyKeyUpdate:
		return "update"
	case bodyKeyAuxiliaryDataHash:
		return "auxiliary_data_hash"
	case bodyKeyValidityStartInterval:
		return "validity_start_interval"
	case bodyKeyMint:
		return "mint"
	case bodyKeyScriptDataHash:
		return "script_data_hash"
	case bodyKeyCollateral:
		return "collateral"
	case bodyKeyRequiredSigners:
		return "required_signers"
	case bodyKeyNetworkID:
		return "network_id"
	case bodyKeyCollateralReturn:
		return "collateral_return"
	case bodyKeyTotalCollateral:
		return "total_collateral"
	case bodyKeyReferenceInputs:
		return "reference_inputs"
	default:
		return fmt.Sprintf("key %d", key)
	}
}

type transactionBodyJSON struct {
	Inputs                []TransactionInput        `json:"inputs"`
	Outputs               []TransactionOutput       `json:"outputs"`
	Fee                   num.BigNum                `json:"fee"`
	TTL                   *num.BigNum               `json:"ttl,omitempty"`
	Certs                 *Certificates             `json:"certs,omitempty"`
	Withdrawals           Withdrawals               `json:"withdrawals,omitempty"`
	AuxiliaryDataHash     *crypto.AuxiliaryDataHash `json:"auxiliary_data_hash,omitempty"`
	ValidityStartInterval *num.BigNum               `json:"validity_start_interval,omitempty"`
	Mint                  Mint                      `json:"mint,omitempty"`
	ScriptDataHash        *crypto.ScriptDataHash    `json:"script_data_hash,omitempty"`
	Collateral            []TransactionInput        `json:"collateral,omitempty"`
	RequiredSigners       []crypto.Ed25519KeyHash   `json:"required_signers,omitempty"`
	NetworkID             *uint8                    `json:"network_id,omitempty"`
	CollateralReturn      *TransactionOutput        `json:"collateral_return,omitempty"`
	TotalCollateral       *num.BigNum               `json:"total_collateral,omitempty"`
	ReferenceInputs       []TransactionInput        `json:"reference_inputs,omitempty"`
}

func (b *TransactionBody) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionBodyJSON{
		Inputs:                b.Inputs,
		Outputs:               b.Outputs,
		Fee:                   b.Fee,
		TTL:                   b.TTL,
		Certs:                 b.Certs,
		Withdrawals:           b.Withdrawals,
		AuxiliaryDataHash:     b.AuxiliaryDataHash,
		ValidityStartInterval: b.ValidityStartInterval,
		Mint:                  b.Mint,
		ScriptDataHash:        b.ScriptDataHash,
		Collateral:            b.Collateral,
		RequiredSigners:       b.RequiredSigners,
		NetworkID:             b.NetworkID,
		CollateralReturn:      b.CollateralReturn,
		TotalCollateral:       b.TotalCollateral,
		ReferenceInputs:       b.ReferenceInputs,
	})
}

// Transaction is a body with its witnesses, validity flag and optional auxiliary data
type Transaction struct {
	Body          TransactionBody
	WitnessSet    TransactionWitnessSet
	IsValid       bool
	AuxiliaryData *AuxiliaryData
}

func NewTransaction(
	body TransactionBody,
	witnessSet TransactionWitnessSet,
	auxData *AuxiliaryData,
) *Transaction {
	return &Transaction{
		Body:          body,
		WitnessSet:    witnessSet,
		IsValid:       true,
		AuxiliaryData: auxData,
	}
}

// TransactionFromBytes decodes a transaction, rejecting trailing bytes
func TransactionFromBytes(data []byte) (*Transaction, error) {
	var ret Transaction
	if err := ret.UnmarshalCBOR(data); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (t *Transaction) Hash() (crypto.TransactionHash, error) {
	return HashTransaction(&t.Body)
}

func (t *Transaction) MarshalCBOR() ([]byte, error) {
	body, err := t.Body.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	witnessSet, err := t.WitnessSet.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	auxData := cbor.EncodeNull()
	if t.AuxiliaryData != nil {
		auxData, err = t.AuxiliaryData.MarshalCBOR()
		if err != nil {
			return nil, err
		}
	}
	return cbor.EncodeArray([]cbor.RawMessage{
		body,
		witnessSet,
		cbor.EncodeBool(t.IsValid),
		auxData,
	}, false), nil
}

func (t *Transaction) UnmarshalCBOR(data []byte) error {
	if err := t.unmarshalCBOR(data); err != nil {
		return cbor.WrapDeserialize("Transaction", err)
	}
	return nil
}

func (t *Transaction) unmarshalCBOR(data []byte) error {
	items, err := cbor.DecodeArrayLen(data, "Transaction", 3, 4)
	if err != nil {
		return err
	}
	*t = Transaction{IsValid: true}
	if err := t.Body.UnmarshalCBOR(items[0]); err != nil {
		return err
	}
	if err := t.WitnessSet.UnmarshalCBOR(items[1]); err != nil {
		return err
	}
	rawAux := items[2]
	// The validity flag was added in Alonzo
	if len(items) == 4 {
		valid, err := cbor.DecodeBool(items[2])
		if err != nil {
			return cbor.WrapDeserialize("is_valid", err)
		}
		t.IsValid = valid
		rawAux = items[3]
	}
	if !cbor.IsNull(rawAux) {
		t.AuxiliaryData = &AuxiliaryData{}
		if err := t.AuxiliaryData.UnmarshalCBOR(rawAux); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the transaction, including the encoding choices it was decoded
// with
func (t *Transaction) Clone() (*Transaction, error) {
	data, err := t.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	return TransactionFromBytes(data)
}

type transactionWitnessSetJSON struct {
	Vkeys         []Vkeywitness      `json:"vkeys,omitempty"`
	NativeScripts []json.RawMessage  `json:"native_scripts,omitempty"`
	Bootstraps    []BootstrapWitness `json:"bootstraps,omitempty"`
	PlutusScripts []PlutusScript     `json:"plutus_scripts,omitempty"`
	PlutusData    []json.RawMessage  `json:"plutus_data,omitempty"`
	Redeemers     []redeemerJSON     `json:"redeemers,omitempty"`
}

type redeemerJSON struct {
	Tag     RedeemerTag     `json:"tag"`
	Index   num.BigNum      `json:"index"`
	Data    json.RawMessage `json:"data"`
	ExUnits ExUnits         `json:"ex_units"`
}

func (w *TransactionWitnessSet) MarshalJSON() ([]byte, error) {
	tmp := transactionWitnessSetJSON{
		Vkeys:         w.Vkeys,
		Bootstraps:    w.Bootstraps,
		PlutusScripts: w.PlutusScripts,
	}
	for _, script := range w.NativeScripts {
		scriptJSON, err := NativeScriptToJSON(script)
		if err != nil {
			return nil, err
		}
		tmp.NativeScripts = append(tmp.NativeScripts, scriptJSON)
	}
	for _, datum := range w.PlutusData {
		dataJSON, err := plutus.ToJSON(datum.Data, plutus.DetailedSchema)
		if err != nil {
			return nil, err
		}
		tmp.PlutusData = append(tmp.PlutusData, dataJSON)
	}
	if w.Redeemers != nil {
		for _, redeemer := range w.Redeemers.Items() {
			dataJSON, err := plutus.ToJSON(redeemer.Data.Data, plutus.DetailedSchema)
			if err != nil {
				return nil, err
			}
			tmp.Redeemers = append(tmp.Redeemers, redeemerJSON{
				Tag:     redeemer.Tag,
				Index:   redeemer.Index,
				Data:    dataJSON,
				ExUnits: redeemer.ExUnits,
			})
		}
	}
	return json.Marshal(tmp)
}

func (t *Transaction) MarshalJSON() ([]byte, error) {
	tmp := struct {
		Body          *TransactionBody           `json:"body"`
		WitnessSet    *TransactionWitnessSet     `json:"witness_set"`
		IsValid       bool                       `json:"is_valid"`
		AuxiliaryData GeneralTransactionMetadata `json:"auxiliary_data,omitempty"`
	}{
		Body:       &t.Body,
		WitnessSet: &t.WitnessSet,
		IsValid:    t.IsValid,
	}
	if t.AuxiliaryData != nil {
		tmp.AuxiliaryData = t.AuxiliaryData.Metadata
	}
	return json.Marshal(tmp)
}

// FixedTransaction is a decoded transaction that keeps the bytes of its parts as received, so
// that its hash and any added witnesses apply to the original encoding
type FixedTransaction struct {
	body         TransactionBody
	bodyBytes    []byte
	witnessSet   TransactionWitnessSet
	witnessBytes []byte
	isValid      bool
	auxData      *AuxiliaryData
	auxDataBytes []byte
}

// FixedTransactionFromBytes decodes a transaction and keeps its original part encodings
func FixedTransactionFromBytes(data []byte) (*FixedTransaction, error) {
	items, err := cbor.DecodeArrayLen(data, "Transaction", 3, 4)
	if err != nil {
		return nil, cbor.WrapDeserialize("Transaction", err)
	}
	isValid := true
	rawAux := items[2]
	if len(items) == 4 {
		isValid, err = cbor.DecodeBool(items[2])
		if err != nil {
			return nil, cbor.WrapDeserialize("Transaction", cbor.WrapDeserialize("is_valid", err))
		}
		rawAux = items[3]
	}
	var auxBytes []byte
	if !cbor.IsNull(rawAux) {
		auxBytes = rawAux
	}
	ret, err := NewFixedTransaction(items[0], items[1], isValid, auxBytes)
	if err != nil {
		return nil, cbor.WrapDeserialize("Transaction", err)
	}
	return ret, nil
}

// NewFixedTransaction builds a transaction from encoded parts. auxDataBytes may be nil.
func NewFixedTransaction(
	bodyBytes []byte,
	witnessBytes []byte,
	isValid bool,
	auxDataBytes []byte,
) (*FixedTransaction, error) {
	ret := &FixedTransaction{
		bodyBytes:    slices.Clone(bodyBytes),
		witnessBytes: slices.Clone(witnessBytes),
		isValid:      isValid,
		auxDataBytes: slices.Clone(auxDataBytes),
	}
	if err := ret.body.UnmarshalCBOR(bodyBytes); err != nil {
		return nil, err
	}
	if err := ret.witnessSet.UnmarshalCBOR(witnessBytes); err != nil {
		return nil, err
	}
	if auxDataBytes != nil {
		ret.auxData = &AuxiliaryData{}
		if err := ret.auxData.UnmarshalCBOR(auxDataBytes); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func (f *FixedTransaction) Body() TransactionBody {
	return f.body
}

func (f *FixedTransaction) RawBody() []byte {
	return slices.Clone(f.bodyBytes)
}

func (f *FixedTransaction) WitnessSet() TransactionWitnessSet {
	return f.witnessSet
}

func (f *FixedTransaction) RawWitnessSet() []byte {
	return slices.Clone(f.witnessBytes)
}

// SetWitnessSet replaces the witness set, which is then encoded canonically
func (f *FixedTransaction) SetWitnessSet(witnessSet TransactionWitnessSet) error {
	data, err := witnessSet.MarshalCBOR()
	if err != nil {
		return err
	}
	f.witnessSet = witnessSet
	f.witnessBytes = data
	return nil
}

func (f *FixedTransaction) IsValid() bool {
	return f.isValid
}

func (f *FixedTransaction) AuxiliaryData() *AuxiliaryData {
	return f.auxData
}

func (f *FixedTransaction) RawAuxiliaryData() []byte {
	return slices.Clone(f.auxDataBytes)
}

// TransactionHash hashes the body bytes as received
func (f *FixedTransaction) TransactionHash() crypto.TransactionHash {
	return crypto.HashTransactionBytes(f.bodyBytes)
}

// AddVkeyWitness appends a witness and re-encodes the witness set
func (f *FixedTransaction) AddVkeyWitness(witness Vkeywitness) error {
	witnessSet := f.witnessSet
	witnessSet.Vkeys = append(slices.Clone(witnessSet.Vkeys), witness)
	return f.SetWitnessSet(witnessSet)
}

// AddBootstrapWitness appends a witness and re-encodes the witness set
func (f *FixedTransaction) AddBootstrapWitness(witness BootstrapWitness) error {
	witnessSet := f.witnessSet
	witnessSet.Bootstraps = append(slices.Clone(witnessSet.Bootstraps), witness)
	return f.SetWitnessSet(witnessSet)
}

// Sign adds a vkey witness for the transaction hash made with key
func (f *FixedTransaction) Sign(key crypto.PrivateKey) error {
	return f.AddVkeyWitness(MakeVkeyWitness(f.TransactionHash(), key))
}

func (f *FixedTransaction) MarshalCBOR() ([]byte, error) {
	auxData := cbor.EncodeNull()
	if f.auxDataBytes != nil {
		auxData = f.auxDataBytes
	}
	return cbor.EncodeArray([]cbor.RawMessage{
		f.bodyBytes,
		f.witnessBytes,
		cbor.EncodeBool(f.isValid),
		auxData,
	}, false), nil
}
