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
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/plutus"
)

// Witness set map keys
const (
	witnessKeyVkeys         = 0
	witnessKeyNativeScripts = 1
	witnessKeyBootstraps    = 2
	witnessKeyPlutusV1      = 3
	witnessKeyPlutusData    = 4
	witnessKeyRedeemers     = 5
	witnessKeyPlutusV2      = 6
	witnessKeyPlutusV3      = 7
)

type Vkeywitness struct {
	cbor.StructAsArray
	Vkey      crypto.PublicKey
	Signature crypto.Ed25519Signature
}

func NewVkeywitness(vkey crypto.PublicKey, signature crypto.Ed25519Signature) Vkeywitness {
	return Vkeywitness{Vkey: vkey, Signature: signature}
}

func (w Vkeywitness) MarshalCBOR() ([]byte, error) {
	type tVkeywitness Vkeywitness
	return cbor.Encode((*tVkeywitness)(&w))
}

func (w *Vkeywitness) UnmarshalCBOR(data []byte) error {
	type tVkeywitness Vkeywitness
	var tmp tVkeywitness
	if err := cbor.DecodeExact(data, &tmp); err != nil {
		return cbor.WrapDeserialize("Vkeywitness", err)
	}
	*w = Vkeywitness(tmp)
	return nil
}

// BootstrapWitness authorizes spending from a Byron address
type BootstrapWitness struct {
	cbor.StructAsArray
	Vkey       crypto.PublicKey
	Signature  crypto.Ed25519Signature
	ChainCode  []byte
	Attributes []byte
}

func NewBootstrapWitness(
	vkey crypto.PublicKey,
	signature crypto.Ed25519Signature,
	chainCode []byte,
	attributes []byte,
) BootstrapWitness {
	return BootstrapWitness{
		Vkey:       vkey,
		Signature:  signature,
		ChainCode:  chainCode,
		Attributes: attributes,
	}
}

func (w BootstrapWitness) MarshalCBOR() ([]byte, error) {
	type tBootstrapWitness BootstrapWitness
	return cbor.Encode((*tBootstrapWitness)(&w))
}

func (w *BootstrapWitness) UnmarshalCBOR(data []byte) error {
	type tBootstrapWitness BootstrapWitness
	var tmp tBootstrapWitness
	if err := cbor.DecodeExact(data, &tmp); err != nil {
		return cbor.WrapDeserialize("BootstrapWitness", err)
	}
	if len(tmp.ChainCode) != 32 {
		return cbor.WrapDeserialize(
			"BootstrapWitness",
			crypto.WrongLengthError{Type: "chain code", Expected: 32, Actual: len(tmp.ChainCode)},
		)
	}
	*w = BootstrapWitness(tmp)
	return nil
}

// TransactionWitnessSet holds everything needed to authorize a transaction besides the body
type TransactionWitnessSet struct {
	Vkeys         []Vkeywitness
	NativeScripts []NativeScript
	Bootstraps    []BootstrapWitness
	PlutusScripts []PlutusScript
	PlutusData    []plutus.Datum
	Redeemers     *Redeemers
	// keys whose sets were decoded with the set tag
	taggedSets map[int]bool
}

func NewTransactionWitnessSet() *TransactionWitnessSet {
	return &TransactionWitnessSet{}
}

func (w *TransactionWitnessSet) IsEmpty() bool {
	return len(w.Vkeys) == 0 &&
		len(w.NativeScripts) == 0 &&
		len(w.Bootstraps) == 0 &&
		len(w.PlutusScripts) == 0 &&
		len(w.PlutusData) == 0 &&
		(w.Redeemers == nil || w.Redeemers.Len() == 0)
}

// AddPlutusData appends a datum
func (w *TransactionWitnessSet) AddPlutusData(data plutus.PlutusData) {
	w.PlutusData = append(w.PlutusData, plutus.NewDatum(data))
}

// PlutusLanguages returns the languages of the Plutus scripts, in language order
func (w *TransactionWitnessSet) PlutusLanguages() []Language {
	var ret []Language
	for _, script := range w.PlutusScripts {
		if !slices.Contains(ret, script.Language) {
			ret = append(ret, script.Language)
		}
	}
	slices.Sort(ret)
	return ret
}

func (w *TransactionWitnessSet) plutusScriptsFor(language Language) []PlutusScript {
	var ret []PlutusScript
	for _, script := range w.PlutusScripts {
		if script.Language == language {
			ret = append(ret, script)
		}
	}
	return ret
}

func plutusScriptWitnessKey(language Language) int {
	switch language {
	case PlutusV1:
		return witnessKeyPlutusV1
	case PlutusV2:
		return witnessKeyPlutusV2
	default:
		return witnessKeyPlutusV3
	}
}

func (w *TransactionWitnessSet) MarshalCBOR() ([]byte, error) {
	var entries []cbor.MapEntry
	add := func(key int, value []byte, err error) error {
		if err != nil {
			return err
		}
		entries = append(entries, cbor.MapEntry{Key: cbor.EncodeUint(uint64(key)), Value: value})
		return nil
	}
	if len(w.Vkeys) > 0 {
		tmp, err := encodeSet(w.Vkeys, w.taggedSets[witnessKeyVkeys])
		if err := add(witnessKeyVkeys, tmp, err); err != nil {
			return nil, err
		}
	}
	if len(w.NativeScripts) > 0 {
		tmp, err := encodeSet(w.NativeScripts, w.taggedSets[witnessKeyNativeScripts])
		if err := add(witnessKeyNativeScripts, tmp, err); err != nil {
			return nil, err
		}
	}
	if len(w.Bootstraps) > 0 {
		tmp, err := encodeSet(w.Bootstraps, w.taggedSets[witnessKeyBootstraps])
		if err := add(witnessKeyBootstraps, tmp, err); err != nil {
			return nil, err
		}
	}
	for _, language := range Languages {
		scripts := w.plutusScriptsFor(language)
		if len(scripts) == 0 {
			continue
		}
		key := plutusScriptWitnessKey(language)
		tmp, err := encodeSet(scripts, w.taggedSets[key])
		if err := add(key, tmp, err); err != nil {
			return nil, err
		}
	}
	if len(w.PlutusData) > 0 {
		tmp, err := encodeSet(w.PlutusData, w.taggedSets[witnessKeyPlutusData])
		if err := add(witnessKeyPlutusData, tmp, err); err != nil {
			return nil, err
		}
	}
	if w.Redeemers != nil && w.Redeemers.Len() > 0 {
		tmp, err := w.Redeemers.MarshalCBOR()
		if err := add(witnessKeyRedeemers, tmp, err); err != nil {
			return nil, err
		}
	}
	return cbor.EncodeMap(entries)
}

func (w *TransactionWitnessSet) UnmarshalCBOR(data []byte) error {
	if err := w.unmarshalCBOR(data); err != nil {
		return cbor.WrapDeserialize("TransactionWitnessSet", err)
	}
	return nil
}

func (w *TransactionWitnessSet) unmarshalCBOR(data []byte) error {
	entries, err := cbor.DecodeUintMap(data)
	if err != nil {
		return err
	}
	*w = TransactionWitnessSet{taggedSets: map[int]bool{}}
	for _, key := range slices.Sorted(maps.Keys(entries)) {
		raw := entries[key]
		var tagged bool
		var err error
		switch key {
		case witnessKeyVkeys:
			w.Vkeys, tagged, err = decodeList[Vkeywitness](raw)
		case witnessKeyNativeScripts:
			tagged, err = decodeSet(raw, func(item cbor.RawMessage) error {
				script, err := DecodeNativeScript(item)
				if err != nil {
					return err
				}
				w.NativeScripts = append(w.NativeScripts, script)
				return nil
			})
		case witnessKeyBootstraps:
			w.Bootstraps, tagged, err = decodeList[BootstrapWitness](raw)
		case witnessKeyPlutusV1, witnessKeyPlutusV2, witnessKeyPlutusV3:
			language := PlutusV1
			switch key {
			case witnessKeyPlutusV2:
				language = PlutusV2
			case witnessKeyPlutusV3:
				language = PlutusV3
			}
			tagged, err = decodeSet(raw, func(item cbor.RawMessage) error {
				script, err := decodePlutusScript(language, item)
				if err != nil {
					return err
				}
				w.PlutusScripts = append(w.PlutusScripts, script)
				return nil
			})
		case witnessKeyPlutusData:
			w.PlutusData, tagged, err = decodeList[plutus.Datum](raw)
		case witnessKeyRedeemers:
			var redeemers Redeemers
			err = redeemers.UnmarshalCBOR(raw)
			w.Redeemers = &redeemers
		default:
			err = fmt.Errorf("unknown witness set key %d", key)
		}
		if err != nil {
			return cbor.WrapDeserialize(witnessKeyName(key), err)
		}
		if tagged {
			w.taggedSets[int(key)] = true
		}
	}
	return nil
}

func witnessKeyName(key uint64) string {
	switch key {
	case witnessKeyVkeys:
		return "vkeywitnesses"
	case witnessKeyNativeScripts:
		return "native_scripts"
	case witnessKeyBootstraps:
		return "bootstraps"
	case witnessKeyPlutusV1:
		return "plutus_v1_scripts"
	case witnessKeyPlutusData:
		return "plutus_data"
	case witnessKeyRedeemers:
		return "redeemers"
	case witnessKeyPlutusV2:
		return "plutus_v2_scripts"
	case witnessKeyPlutusV3:
		return "plutus_v3_scripts"
	default:
		return fmt.Sprintf("key %d", key)
	}
}
