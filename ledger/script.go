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
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/num"
)

// Script hash namespaces
const (
	ScriptNamespaceNative   = 0
	ScriptNamespacePlutusV1 = 1
	ScriptNamespacePlutusV2 = 2
	ScriptNamespacePlutusV3 = 3
)

// Language is a Plutus language version. The numeric values are the cost model keys.
type Language uint8

const (
	PlutusV1 Language = 0
	PlutusV2 Language = 1
	PlutusV3 Language = 2
)

// Languages lists every supported language in key order
var Languages = []Language{PlutusV1, PlutusV2, PlutusV3}

func (l Language) String() string {
	switch l {
	case PlutusV1:
		return "PlutusV1"
	case PlutusV2:
		return "PlutusV2"
	case PlutusV3:
		return "PlutusV3"
	default:
		return fmt.Sprintf("Language(%d)", uint8(l))
	}
}

// namespace returns the byte prepended to scripts of this language before hashing
func (l Language) namespace() byte {
	return byte(l) + 1
}

func LanguageFromString(s string) (Language, error) {
	for _, l := range Languages {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown Plutus language %q", s)
}

func (l Language) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeUint(uint64(l)), nil
}

func (l *Language) UnmarshalCBOR(data []byte) error {
	v, err := cbor.DecodeUint(data)
	if err != nil {
		return cbor.WrapDeserialize("Language", err)
	}
	if v > uint64(PlutusV3) {
		return cbor.WrapDeserialize("Language", fmt.Errorf("unknown language %d", v))
	}
	*l = Language(v)
	return nil
}

func (l Language) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Language) UnmarshalText(text []byte) error {
	tmp, err := LanguageFromString(string(text))
	if err != nil {
		return err
	}
	*l = tmp
	return nil
}

// PlutusScript is a compiled Plutus script for a specific language
type PlutusScript struct {
	Language Language
	bytes    []byte
}

func NewPlutusScript(language Language, script []byte) PlutusScript {
	return PlutusScript{Language: language, bytes: append([]byte(nil), script...)}
}

func PlutusScriptFromHex(language Language, s string) (PlutusScript, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return PlutusScript{}, fmt.Errorf("PlutusScript: %w: %w", crypto.ErrMalformedEncoding, err)
	}
	return NewPlutusScript(language, b), nil
}

// Bytes returns the serialized script as carried in a witness set
func (s PlutusScript) Bytes() []byte {
	return append([]byte(nil), s.bytes...)
}

func (s PlutusScript) Size() int {
	return len(s.bytes)
}

func (s PlutusScript) Hash() crypto.ScriptHash {
	return crypto.HashScriptBytes(s.Language.namespace(), s.bytes)
}

// MarshalCBOR encodes the script body only. The language is implied by where the script
// appears.
func (s PlutusScript) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeBytes(s.bytes), nil
}

func (s PlutusScript) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Language Language `json:"language"`
		Script   string   `json:"script"`
	}{
		Language: s.Language,
		Script:   hex.EncodeToString(s.bytes),
	})
}

func decodePlutusScript(language Language, data []byte) (PlutusScript, error) {
	b, err := cbor.DecodeBytes(data)
	if err != nil {
		return PlutusScript{}, cbor.WrapDeserialize("PlutusScript", err)
	}
	return PlutusScript{Language: language, bytes: b}, nil
}

type NativeScriptKind uint8

const (
	NativeScriptKindPubkey         NativeScriptKind = 0
	NativeScriptKindAll            NativeScriptKind = 1
	NativeScriptKindAny            NativeScriptKind = 2
	NativeScriptKindNOfK           NativeScriptKind = 3
	NativeScriptKindTimelockStart  NativeScriptKind = 4
	NativeScriptKindTimelockExpiry NativeScriptKind = 5
)

// NativeScript is one of ScriptPubkey, ScriptAll, ScriptAny, ScriptNOfK, TimelockStart or
// TimelockExpiry
type NativeScript interface {
	isNativeScript()
	Kind() NativeScriptKind
	MarshalCBOR() ([]byte, error)
}

// ScriptPubkey requires a signature from the key
type ScriptPubkey struct {
	KeyHash crypto.Ed25519KeyHash
}

// ScriptAll requires every sub-script to be satisfied
type ScriptAll struct {
	Scripts []NativeScript
}

// ScriptAny requires at least one sub-script to be satisfied
type ScriptAny struct {
	Scripts []NativeScript
}

// ScriptNOfK requires at least N sub-scripts to be satisfied
type ScriptNOfK struct {
	N       uint32
	Scripts []NativeScript
}

// TimelockStart is satisfied from the slot onward
type TimelockStart struct {
	Slot num.BigNum
}

// TimelockExpiry is satisfied before the slot
type TimelockExpiry struct {
	Slot num.BigNum
}

func (ScriptPubkey) isNativeScript()   {}
func (ScriptAll) isNativeScript()      {}
func (ScriptAny) isNativeScript()      {}
func (ScriptNOfK) isNativeScript()     {}
func (TimelockStart) isNativeScript()  {}
func (TimelockExpiry) isNativeScript() {}

func (ScriptPubkey) Kind() NativeScriptKind   { return NativeScriptKindPubkey }
func (ScriptAll) Kind() NativeScriptKind      { return NativeScriptKindAll }
func (ScriptAny) Kind() NativeScriptKind      { return NativeScriptKindAny }
func (ScriptNOfK) Kind() NativeScriptKind     { return NativeScriptKindNOfK }
func (TimelockStart) Kind() NativeScriptKind  { return NativeScriptKindTimelockStart }
func (TimelockExpiry) Kind() NativeScriptKind { return NativeScriptKindTimelockExpiry }

func encodeNativeScripts(scripts []NativeScript) ([]byte, error) {
	raw, err := encodeItems(scripts)
	if err != nil {
		return nil, err
	}
	return cbor.EncodeArray(raw, false), nil
}

func (s ScriptPubkey) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeArray(
		[]cbor.RawMessage{
			cbor.EncodeUint(uint64(NativeScriptKindPubkey)),
			cbor.EncodeBytes(s.KeyHash.Bytes()),
		},
		false,
	), nil
}

func (s ScriptAll) MarshalCBOR() ([]byte, error) {
	scripts, err := encodeNativeScripts(s.Scripts)
	if err != nil {
		return nil, err
	}
	return cbor.EncodeArray(
		[]cbor.RawMessage{cbor.EncodeUint(uint64(NativeScriptKindAll)), scripts},
		false,
	), nil
}

func (s ScriptAny) MarshalCBOR() ([]byte, error) {
	scripts, err := encodeNativeScripts(s.Scripts)
	if err != nil {
		return nil, err
	}
	return cbor.EncodeArray(
		[]cbor.RawMessage{cbor.EncodeUint(uint64(NativeScriptKindAny)), scripts},
		false,
	), nil
}

func (s ScriptNOfK) MarshalCBOR() ([]byte, error) {
	scripts, err := encodeNativeScripts(s.Scripts)
	if err != nil {
		return nil, err
	}
	return cbor.EncodeArray(
		[]cbor.RawMessage{
			cbor.EncodeUint(uint64(NativeScriptKindNOfK)),
			cbor.EncodeUint(uint64(s.N)),
			scripts,
		},
		false,
	), nil
}

func (s TimelockStart) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeArray(
		[]cbor.RawMessage{
			cbor.EncodeUint(uint64(NativeScriptKindTimelockStart)),
			cbor.EncodeUint(s.Slot.Uint64()),
		},
		false,
	), nil
}

func (s TimelockExpiry) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeArray(
		[]cbor.RawMessage{
			cbor.EncodeUint(uint64(NativeScriptKindTimelockExpiry)),
			cbor.EncodeUint(s.Slot.Uint64()),
		},
		false,
	), nil
}

func decodeNativeScriptList(data []byte) ([]NativeScript, error) {
	items, err := cbor.DecodeArray(data)
	if err != nil {
		return nil, err
	}
	ret := make([]NativeScript, 0, len(items))
	for idx, item := range items {
		script, err := DecodeNativeScript(item)
		if err != nil {
			return nil, cbor.WrapDeserializeIndex(idx, err)
		}
		ret = append(ret, script)
	}
	return ret, nil
}

// DecodeNativeScript decodes any native script variant
func DecodeNativeScript(data []byte) (NativeScript, error) {
	ret, err := decodeNativeScript(data)
	if err != nil {
		return nil, cbor.WrapDeserialize("NativeScript", err)
	}
	return ret, nil
}

func decodeNativeScript(data []byte) (NativeScript, error) {
	items, err := cbor.DecodeArrayLen(data, "NativeScript", 2, 3)
	if err != nil {
		return nil, err
	}
	kind, err := cbor.DecodeUint(items[0])
	if err != nil {
		return nil, err
	}
	expectLen := func(n int) error {
		if len(items) != n {
			return cbor.LengthError{
				Type:     fmt.Sprintf("NativeScript kind %d", kind),
				Expected: fmt.Sprintf("%d", n),
				Actual:   len(items),
			}
		}
		return nil
	}
	switch NativeScriptKind(kind) {
	case NativeScriptKindPubkey:
		if err := expectLen(2); err != nil {
			return nil, err
		}
		var hash crypto.Ed25519KeyHash
		if err := hash.UnmarshalCBOR(items[1]); err != nil {
			return nil, err
		}
		return ScriptPubkey{KeyHash: hash}, nil
	case NativeScriptKindAll, NativeScriptKindAny:
		if err := expectLen(2); err != nil {
			return nil, err
		}
		scripts, err := decodeNativeScriptList(items[1])
		if err != nil {
			return nil, err
		}
		if NativeScriptKind(kind) == NativeScriptKindAll {
			return ScriptAll{Scripts: scripts}, nil
		}
		return ScriptAny{Scripts: scripts}, nil
	case NativeScriptKindNOfK:
		if err := expectLen(3); err != nil {
			return nil, err
		}
		n, err := cbor.DecodeUint(items[1])
		if err != nil {
			return nil, err
		}
		if n > 0xFFFFFFFF {
			return nil, fmt.Errorf("required script count %d out of range", n)
		}
		scripts, err := decodeNativeScriptList(items[2])
		if err != nil {
			return nil, err
		}
		return ScriptNOfK{N: uint32(n), Scripts: scripts}, nil
	case NativeScriptKindTimelockStart, NativeScriptKindTimelockExpiry:
		if err := expectLen(2); err != nil {
			return nil, err
		}
		slot, err := cbor.DecodeUint(items[1])
		if err != nil {
			return nil, err
		}
		if NativeScriptKind(kind) == NativeScriptKindTimelockStart {
			return TimelockStart{Slot: num.BigNum(slot)}, nil
		}
		return TimelockExpiry{Slot: num.BigNum(slot)}, nil
	default:
		return nil, fmt.Errorf("unknown native script kind %d", kind)
	}
}

// NativeScriptHash returns the hash of a native script, which is also its policy ID
func NativeScriptHash(script NativeScript) (crypto.ScriptHash, error) {
	data, err := script.MarshalCBOR()
	if err != nil {
		return crypto.ScriptHash{}, err
	}
	return crypto.HashScriptBytes(ScriptNamespaceNative, data), nil
}

// NativeScriptRequiredSigners returns the distinct key hashes referenced by a script, in the
// order they are first found
func NativeScriptRequiredSigners(script NativeScript) []crypto.Ed25519KeyHash {
	var ret []crypto.Ed25519KeyHash
	seen := map[crypto.Ed25519KeyHash]struct{}{}
	var walk func(NativeScript)
	walk = func(s NativeScript) {
		switch v := s.(type) {
		case ScriptPubkey:
			if _, ok := seen[v.KeyHash]; !ok {
				seen[v.KeyHash] = struct{}{}
				ret = append(ret, v.KeyHash)
			}
		case ScriptAll:
			for _, sub := range v.Scripts {
				walk(sub)
			}
		case ScriptAny:
			for _, sub := range v.Scripts {
				walk(sub)
			}
		case ScriptNOfK:
			for _, sub := range v.Scripts {
				walk(sub)
			}
		}
	}
	walk(script)
	return ret
}

type nativeScriptJSON struct {
	Type     string             `json:"type"`
	KeyHash  string             `json:"keyHash,omitempty"`
	Required *uint32            `json:"required,omitempty"`
	Slot     *uint64            `json:"slot,omitempty"`
	Scripts  *[]json.RawMessage `json:"scripts,omitempty"`
}

// NativeScriptToJSON renders a script in the cardano-cli simple script format
func NativeScriptToJSON(script NativeScript) ([]byte, error) {
	tmp, err := nativeScriptToJSON(script)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tmp)
}

func nativeScriptToJSON(script NativeScript) (*nativeScriptJSON, error) {
	subScripts := func(scripts []NativeScript) (*[]json.RawMessage, error) {
		ret := make([]json.RawMessage, 0, len(scripts))
		for _, sub := range scripts {
			data, err := NativeScriptToJSON(sub)
			if err != nil {
				return nil, err
			}
			ret = append(ret, data)
		}
		return &ret, nil
	}
	var err error
	ret := &nativeScriptJSON{}
	switch v := script.(type) {
	case ScriptPubkey:
		ret.Type = "sig"
		ret.KeyHash = v.KeyHash.String()
	case ScriptAll:
		ret.Type = "all"
		ret.Scripts, err = subScripts(v.Scripts)
	case ScriptAny:
		ret.Type = "any"
		ret.Scripts, err = subScripts(v.Scripts)
	case ScriptNOfK:
		ret.Type = "atLeast"
		ret.Required = &v.N
		ret.Scripts, err = subScripts(v.Scripts)
	case TimelockStart:
		ret.Type = "after"
		slot := v.Slot.Uint64()
		ret.Slot = &slot
	case TimelockExpiry:
		ret.Type = "before"
		slot := v.Slot.Uint64()
		ret.Slot = &slot
	default:
		return nil, NativeScriptJSONError{Msg: fmt.Sprintf("unsupported native script %T", script)}
	}
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// NativeScriptFromJSON parses a script in the cardano-cli simple script format
func NativeScriptFromJSON(data []byte) (NativeScript, error) {
	var tmp nativeScriptJSON
	if err := json.Unmarshal(data, &tmp); err != nil {
		return nil, NativeScriptJSONError{Msg: err.Error()}
	}
	subScripts := func() ([]NativeScript, error) {
		if tmp.Scripts == nil {
			return nil, NativeScriptJSONError{Msg: fmt.Sprintf("%q script is missing scripts", tmp.Type)}
		}
		ret := make([]NativeScript, 0, len(*tmp.Scripts))
		for _, raw := range *tmp.Scripts {
			sub, err := NativeScriptFromJSON(raw)
			if err != nil {
				return nil, err
			}
			ret = append(ret, sub)
		}
		return ret, nil
	}
	slot := func() (num.BigNum, error) {
		if tmp.Slot == nil {
			return 0, NativeScriptJSONError{Msg: fmt.Sprintf("%q script is missing slot", tmp.Type)}
		}
		return num.BigNum(*tmp.Slot), nil
	}
	switch tmp.Type {
	case "sig":
		hash, err := crypto.Ed25519KeyHashFromHex(tmp.KeyHash)
		if err != nil {
			return nil, NativeScriptJSONError{Msg: err.Error()}
		}
		return ScriptPubkey{KeyHash: hash}, nil
	case "all":
		scripts, err := subScripts()
		if err != nil {
			return nil, err
		}
		return ScriptAll{Scripts: scripts}, nil
	case "any":
		scripts, err := subScripts()
		if err != nil {
			return nil, err
		}
		return ScriptAny{Scripts: scripts}, nil
	case "atLeast":
		if tmp.Required == nil {
			return nil, NativeScriptJSONError{Msg: `"atLeast" script is missing required`}
		}
		scripts, err := subScripts()
		if err != nil {
			return nil, err
		}
		return ScriptNOfK{N: *tmp.Required, Scripts: scripts}, nil
	case "after":
		s, err := slot()
		if err != nil {
			return nil, err
		}
		return TimelockStart{Slot: s}, nil
	case "before":
		s, err := slot()
		if err != nil {
			return nil, err
		}
		return TimelockExpiry{Slot: s}, nil
	default:
		return nil, NativeScriptJSONError{Msg: fmt.Sprintf("unknown script type %q", tmp.Type)}
	}
}

// ScriptRef is a script attached to an output for use as a reference script. It holds either a
// native script or a Plutus script.
type ScriptRef struct {
	native NativeScript
	plutus *PlutusScript
}

func NewNativeScriptRef(script NativeScript) ScriptRef {
	return ScriptRef{native: script}
}

func NewPlutusScriptRef(script PlutusScript) ScriptRef {
	return ScriptRef{plutus: &script}
}

func (r ScriptRef) NativeScript() (NativeScript, bool) {
	return r.native, r.native != nil
}

func (r ScriptRef) PlutusScript() (PlutusScript, bool) {
	if r.plutus == nil {
		return PlutusScript{}, false
	}
	return *r.plutus, true
}

func (r ScriptRef) Hash() (crypto.ScriptHash, error) {
	if r.plutus != nil {
		return r.plutus.Hash(), nil
	}
	if r.native == nil {
		return crypto.ScriptHash{}, errors.New("empty script reference")
	}
	return NativeScriptHash(r.native)
}

// Size returns the size counted towards the reference script fee
func (r ScriptRef) Size() (int, error) {
	if r.plutus != nil {
		return r.plutus.Size(), nil
	}
	if r.native == nil {
		return 0, errors.New("empty script reference")
	}
	data, err := r.native.MarshalCBOR()
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// scriptCbor encodes the script as [namespace, script]
func (r ScriptRef) scriptCbor() ([]byte, error) {
	if r.plutus != nil {
		return cbor.EncodeArray(
			[]cbor.RawMessage{
				cbor.EncodeUint(uint64(r.plutus.Language.namespace())),
				cbor.EncodeBytes(r.plutus.bytes),
			},
			false,
		), nil
	}
	if r.native == nil {
		return nil, errors.New("empty script reference")
	}
	native, err := r.native.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	return cbor.EncodeArray(
		[]cbor.RawMessage{cbor.EncodeUint(ScriptNamespaceNative), native},
		false,
	), nil
}

func (r ScriptRef) MarshalCBOR() ([]byte, error) {
	inner, err := r.scriptCbor()
	if err != nil {
		return nil, err
	}
	return cbor.EncodeWrapped(inner), nil
}

func (r *ScriptRef) UnmarshalCBOR(data []byte) error {
	inner, err := cbor.DecodeWrapped(data)
	if err != nil {
		return cbor.WrapDeserialize("ScriptRef", err)
	}
	items, err := cbor.DecodeArrayLen(inner, "ScriptRef", 2, 2)
	if err != nil {
		return cbor.WrapDeserialize("ScriptRef", err)
	}
	ns, err := cbor.DecodeUint(items[0])
	if err != nil {
		return cbor.WrapDeserialize("ScriptRef", err)
	}
	switch ns {
	case ScriptNamespaceNative:
		native, err := DecodeNativeScript(items[1])
		if err != nil {
			return cbor.WrapDeserialize("ScriptRef", err)
		}
		*r = ScriptRef{native: native}
	case ScriptNamespacePlutusV1, ScriptNamespacePlutusV2, ScriptNamespacePlutusV3:
		script, err := decodePlutusScript(Language(ns-1), items[1])
		if err != nil {
			return cbor.WrapDeserialize("ScriptRef", err)
		}
		*r = ScriptRef{plutus: &script}
	default:
		return cbor.WrapDeserialize("ScriptRef", fmt.Errorf("unknown script namespace %d", ns))
	}
	return nil
}
