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

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/num"
)

// Auxiliary data map keys in the Alonzo form
const (
	auxKeyMetadata      = 0
	auxKeyNativeScripts = 1
	auxKeyPlutusV1      = 2
	auxKeyPlutusV2      = 3
	auxKeyPlutusV3      = 4
)

// AuxiliaryData holds transaction metadata and auxiliary scripts. It is encoded as a plain
// metadata map when it only has metadata, as a [metadata, native scripts] pair when it also has
// native scripts, and as the tagged Alonzo map when it has Plutus scripts or was decoded from
// that form.
type AuxiliaryData struct {
	Metadata      GeneralTransactionMetadata
	NativeScripts []NativeScript
	PlutusScripts []PlutusScript
	preferAlonzo  bool
}

func NewAuxiliaryData() *AuxiliaryData {
	return &AuxiliaryData{}
}

// SetPreferAlonzoFormat forces the tagged map encoding
func (a *AuxiliaryData) SetPreferAlonzoFormat(prefer bool) {
	a.preferAlonzo = prefer
}

func (a *AuxiliaryData) PreferAlonzoFormat() bool {
	return a.preferAlonzo
}

// AddMetadatum sets a metadata label, creating the metadata map if needed
func (a *AuxiliaryData) AddMetadatum(label uint64, value TransactionMetadatum) {
	if a.Metadata == nil {
		a.Metadata = GeneralTransactionMetadata{}
	}
	a.Metadata.Insert(num.BigNum(label), value)
}

func (a *AuxiliaryData) IsEmpty() bool {
	return a.Metadata.Len() == 0 && len(a.NativeScripts) == 0 && len(a.PlutusScripts) == 0
}

func (a *AuxiliaryData) plutusScriptsFor(language Language) []PlutusScript {
	var ret []PlutusScript
	for _, script := range a.PlutusScripts {
		if script.Language == language {
			ret = append(ret, script)
		}
	}
	return ret
}

func (a *AuxiliaryData) MarshalCBOR() ([]byte, error) {
	metadata := a.Metadata
	if metadata == nil {
		metadata = GeneralTransactionMetadata{}
	}
	metadataCbor, err := metadata.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	if !a.preferAlonzo && len(a.PlutusScripts) == 0 {
		if len(a.NativeScripts) == 0 {
			return metadataCbor, nil
		}
		scriptsCbor, err := encodeNativeScripts(a.NativeScripts)
		if err != nil {
			return nil, err
		}
		return cbor.EncodeArray([]cbor.RawMessage{metadataCbor, scriptsCbor}, false), nil
	}
	var entries []cbor.MapEntry
	if a.Metadata != nil {
		entries = append(entries, cbor.MapEntry{
			Key:   cbor.EncodeUint(auxKeyMetadata),
			Value: metadataCbor,
		})
	}
	if len(a.NativeScripts) > 0 {
		scriptsCbor, err := encodeNativeScripts(a.NativeScripts)
		if err != nil {
			return nil, err
		}
		entries = append(entries, cbor.MapEntry{
			Key:   cbor.EncodeUint(auxKeyNativeScripts),
			Value: scriptsCbor,
		})
	}
	for _, language := range Languages {
		scripts := a.plutusScriptsFor(language)
		if len(scripts) == 0 {
			continue
		}
		scriptsCbor, err := encodeSet(scripts, false)
		if err != nil {
			return nil, err
		}
		entries = append(entries, cbor.MapEntry{
			Key:   cbor.EncodeUint(uint64(auxKeyPlutusV1 + int(language))),
			Value: scriptsCbor,
		})
	}
	mapCbor, err := cbor.EncodeMap(entries)
	if err != nil {
		return nil, err
	}
	return cbor.EncodeTagged(cbor.CborTagMap, mapCbor), nil
}

func (a *AuxiliaryData) UnmarshalCBOR(data []byte) error {
	if err := a.unmarshalCBOR(data); err != nil {
		return cbor.WrapDeserialize("AuxiliaryData", err)
	}
	return nil
}

func (a *AuxiliaryData) unmarshalCBOR(data []byte) error {
	t, err := cbor.MajorType(data)
	if err != nil {
		return err
	}
	*a = AuxiliaryData{}
	switch t {
	case cbor.MajorTypeMap:
		return a.Metadata.UnmarshalCBOR(data)
	case cbor.MajorTypeArray:
		items, err := cbor.DecodeArrayLen(data, "AuxiliaryData", 2, 2)
		if err != nil {
			return err
		}
		if err := a.Metadata.UnmarshalCBOR(items[0]); err != nil {
			return err
		}
		scripts, err := decodeNativeScriptList(items[1])
		if err != nil {
			return cbor.WrapDeserialize("auxiliary_scripts", err)
		}
		a.NativeScripts = scripts
		return nil
	case cbor.MajorTypeTag:
		tagNum, content, err := cbor.DecodeTagged(data)
		if err != nil {
			return err
		}
		if tagNum != cbor.CborTagMap {
			return fmt.Errorf("unexpected tag %d", tagNum)
		}
		a.preferAlonzo = true
		entries, err := cbor.DecodeUintMap(content)
		if err != nil {
			return err
		}
		for key, raw := range entries {
			switch key {
			case auxKeyMetadata:
				if err := a.Metadata.UnmarshalCBOR(raw); err != nil {
					return err
				}
			case auxKeyNativeScripts:
				scripts, err := decodeNativeScriptList(raw)
				if err != nil {
					return cbor.WrapDeserialize("native_scripts", err)
				}
				a.NativeScripts = scripts
			case auxKeyPlutusV1, auxKeyPlutusV2, auxKeyPlutusV3:
				language := Language(key - auxKeyPlutusV1)
				_, err := decodeSet(raw, func(item cbor.RawMessage) error {
					script, err := decodePlutusScript(language, item)
					if err != nil {
						return err
					}
					a.PlutusScripts = append(a.PlutusScripts, script)
					return nil
				})
				if err != nil {
					return cbor.WrapDeserialize(language.String()+" scripts", err)
				}
			default:
				return fmt.Errorf("unknown auxiliary data key %d", key)
			}
		}
		return nil
	default:
		return cbor.UnexpectedTypeError{Expected: "auxiliary data", Actual: t}
	}
}

// Hash returns the blake2b-256 hash of the encoded auxiliary data
func (a *AuxiliaryData) Hash() (crypto.AuxiliaryDataHash, error) {
	data, err := a.MarshalCBOR()
	if err != nil {
		return crypto.AuxiliaryDataHash{}, err
	}
	return crypto.HashAuxiliaryDataBytes(data), nil
}
