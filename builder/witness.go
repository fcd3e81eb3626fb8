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

package builder

import (
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/blinklabs-io/gocsl/plutus"
)

// NativeScriptSource provides a native script either inline in the witness set or through a
// reference input carrying it
type NativeScriptSource struct {
	script   ledger.NativeScript
	hash     crypto.ScriptHash
	refInput *ledger.TransactionInput
	refSize  int
}

func NewNativeScriptSource(script ledger.NativeScript) (NativeScriptSource, error) {
	hash, err := ledger.NativeScriptHash(script)
	if err != nil {
		return NativeScriptSource{}, err
	}
	return NativeScriptSource{script: script, hash: hash}, nil
}

// NewNativeScriptSourceFromRef uses the script stored in the output referenced by input. size is
// the encoded script size, used for the reference script fee.
func NewNativeScriptSourceFromRef(
	hash crypto.ScriptHash,
	input ledger.TransactionInput,
	size int,
) NativeScriptSource {
	return NativeScriptSource{hash: hash, refInput: &input, refSize: size}
}

func (s NativeScriptSource) Hash() crypto.ScriptHash {
	return s.hash
}

// Script returns the inline script, if the source is not a reference
func (s NativeScriptSource) Script() (ledger.NativeScript, bool) {
	return s.script, s.script != nil
}

// RefInput returns the reference input holding the script, if there is one
func (s NativeScriptSource) RefInput() (ledger.TransactionInput, bool) {
	if s.refInput == nil {
		return ledger.TransactionInput{}, false
	}
	return *s.refInput, true
}

// PlutusScriptSource provides a Plutus script either inline in the witness set or through a
// reference input carrying it
type PlutusScriptSource struct {
	script   *ledger.PlutusScript
	hash     crypto.ScriptHash
	language ledger.Language
	refInput *ledger.TransactionInput
	refSize  int
}

func NewPlutusScriptSource(script ledger.PlutusScript) PlutusScriptSource {
	return PlutusScriptSource{
		script:   &script,
		hash:     script.Hash(),
		language: script.Language,
	}
}

// NewPlutusScriptSourceFromRef uses the script stored in the output referenced by input. size is
// the encoded script size, used for the reference script fee.
func NewPlutusScriptSourceFromRef(
	hash crypto.ScriptHash,
	input ledger.TransactionInput,
	language ledger.Language,
	size int,
) PlutusScriptSource {
	return PlutusScriptSource{
		hash:     hash,
		language: language,
		refInput: &input,
		refSize:  size,
	}
}

func (s PlutusScriptSource) Hash() crypto.ScriptHash {
	return s.hash
}

func (s PlutusScriptSource) Language() ledger.Language {
	return s.language
}

// Script returns the inline script, if the source is not a reference
func (s PlutusScriptSource) Script() (ledger.PlutusScript, bool) {
	if s.script == nil {
		return ledger.PlutusScript{}, false
	}
	return *s.script, true
}

// RefInput returns the reference input holding the script, if there is one
func (s PlutusScriptSource) RefInput() (ledger.TransactionInput, bool) {
	if s.refInput == nil {
		return ledger.TransactionInput{}, false
	}
	return *s.refInput, true
}

// PlutusWitness is what a Plutus script needs to validate one purpose: the script, its datum
// (spending only) and the redeemer. The redeemer tag and index are set by the builder.
type PlutusWitness struct {
	script   PlutusScriptSource
	datum    *plutus.Datum
	redeemer ledger.Redeemer
}

// NewPlutusWitness returns a witness with a datum supplied in the witness set. datum may be nil
// for purposes other than spending.
func NewPlutusWitness(
	script PlutusScriptSource,
	datum plutus.PlutusData,
	redeemer ledger.Redeemer,
) PlutusWitness {
	ret := PlutusWitness{script: script, redeemer: redeemer}
	if datum != nil {
		tmp := plutus.NewDatum(datum)
		ret.datum = &tmp
	}
	return ret
}

// NewPlutusWitnessWithInlineDatum returns a witness for an input whose output carries its datum
// inline
func NewPlutusWitnessWithInlineDatum(
	script PlutusScriptSource,
	redeemer ledger.Redeemer,
) PlutusWitness {
	return PlutusWitness{script: script, redeemer: redeemer}
}

func (w PlutusWitness) Script() PlutusScriptSource {
	return w.script
}

func (w PlutusWitness) Datum() (plutus.Datum, bool) {
	if w.datum == nil {
		return plutus.Datum{}, false
	}
	return *w.datum, true
}

func (w PlutusWitness) Redeemer() ledger.Redeemer {
	return w.redeemer
}

// redeemerFor returns the witness redeemer with its purpose set
func (w PlutusWitness) redeemerFor(tag ledger.RedeemerTag, index int) ledger.Redeemer {
	ret := w.redeemer
	ret.Tag = tag
	ret.Index = num.BigNum(index)
	return ret
}

// scriptWitnesses collects the scripts, datums and redeemers contributed by one part of the
// transaction
type scriptWitnesses struct {
	nativeScripts []ledger.NativeScript
	plutusScripts []ledger.PlutusScript
	datums        []plutus.Datum
	redeemers     []ledger.Redeemer
	languages     []ledger.Language
	refInputs     []ledger.TransactionInput
	refScriptSize int
}

func (w *scriptWitnesses) addNative(source NativeScriptSource) {
	if script, ok := source.Script(); ok {
		w.nativeScripts = append(w.nativeScripts, script)
	}
	if input, ok := source.RefInput(); ok {
		w.refInputs = append(w.refInputs, input)
		w.refScriptSize += source.refSize
	}
}

func (w *scriptWitnesses) addPlutus(witness PlutusWitness, tag ledger.RedeemerTag, index int) {
	source := witness.script
	if script, ok := source.Script(); ok {
		w.plutusScripts = append(w.plutusScripts, script)
	}
	if input, ok := source.RefInput(); ok {
		w.refInputs = append(w.refInputs, input)
		w.refScriptSize += source.refSize
	}
	w.languages = append(w.languages, source.language)
	if datum, ok := witness.Datum(); ok {
		w.datums = append(w.datums, datum)
	}
	w.redeemers = append(w.redeemers, witness.redeemerFor(tag, index))
}

func (w *scriptWitnesses) merge(other scriptWitnesses) {
	w.nativeScripts = append(w.nativeScripts, other.nativeScripts...)
	w.plutusScripts = append(w.plutusScripts, other.plutusScripts...)
	w.datums = append(w.datums, other.datums...)
	w.redeemers = append(w.redeemers, other.redeemers...)
	w.languages = append(w.languages, other.languages...)
	w.refInputs = append(w.refInputs, other.refInputs...)
	w.refScriptSize += other.refScriptSize
}
