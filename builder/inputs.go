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
	"fmt"
	"slices"

	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/ledger"
)

type txInputEntry struct {
	input   ledger.TransactionInput
	amount  ledger.Value
	keyHash *crypto.Ed25519KeyHash
	byron   *ledger.ByronAddress
	// set for script locked inputs, whose witness may still be pending
	scriptHash *crypto.ScriptHash
	native     *NativeScriptSource
	plutus     *PlutusWitness
}

func (e txInputEntry) hasScriptWitness() bool {
	return e.native != nil || e.plutus != nil
}

// TxInputsBuilder accumulates inputs along with what is needed to witness them
type TxInputsBuilder struct {
	entries         []txInputEntry
	requiredSigners []crypto.Ed25519KeyHash
}

func NewTxInputsBuilder() *TxInputsBuilder {
	return &TxInputsBuilder{}
}

// add registers entry, replacing any earlier entry for the same input
func (b *TxInputsBuilder) add(entry txInputEntry) {
	entry.amount = entry.amount.Clone()
	idx := slices.IndexFunc(b.entries, func(e txInputEntry) bool {
		return e.input.Compare(entry.input) == 0
	})
	if idx >= 0 {
		b.entries[idx] = entry
		return
	}
	b.entries = append(b.entries, entry)
}

// AddKeyInput adds an input locked by a payment key
func (b *TxInputsBuilder) AddKeyInput(
	hash crypto.Ed25519KeyHash,
	input ledger.TransactionInput,
	amount ledger.Value,
) {
	b.add(txInputEntry{input: input, amount: amount, keyHash: &hash})
}

// AddScriptInput adds an input locked by a script whose witness is supplied later with
// AddRequiredNativeInputScripts or AddRequiredPlutusInputScripts
func (b *TxInputsBuilder) AddScriptInput(
	hash crypto.ScriptHash,
	input ledger.TransactionInput,
	amount ledger.Value,
) {
	b.add(txInputEntry{input: input, amount: amount, scriptHash: &hash})
}

// AddNativeScriptInput adds an input locked by a native script
func (b *TxInputsBuilder) AddNativeScriptInput(
	script NativeScriptSource,
	input ledger.TransactionInput,
	amount ledger.Value,
) {
	hash := script.Hash()
	b.add(txInputEntry{input: input, amount: amount, scriptHash: &hash, native: &script})
}

// AddPlutusScriptInput adds an input locked by a Plutus script
func (b *TxInputsBuilder) AddPlutusScriptInput(
	witness PlutusWitness,
	input ledger.TransactionInput,
	amount ledger.Value,
) {
	hash := witness.script.Hash()
	b.add(txInputEntry{input: input, amount: amount, scriptHash: &hash, plutus: &witness})
}

// AddBootstrapInput adds an input locked by a Byron address
func (b *TxInputsBuilder) AddBootstrapInput(
	addr ledger.ByronAddress,
	input ledger.TransactionInput,
	amount ledger.Value,
) {
	b.add(txInputEntry{input: input, amount: amount, byron: &addr})
}

// AddRegularInput adds an input, choosing the witness kind from the address. Script locked
// inputs are left with a pending witness.
func (b *TxInputsBuilder) AddRegularInput(
	addr ledger.Address,
	input ledger.TransactionInput,
	amount ledger.Value,
) error {
	if byron, ok := addr.(ledger.ByronAddress); ok {
		b.AddBootstrapInput(byron, input, amount)
		return nil
	}
	cred, ok := ledger.PaymentCredential(addr)
	if !ok {
		return fmt.Errorf("%w: %s address", ErrUnsupportedInputAddress, addr.Kind())
	}
	if hash, ok := cred.ToKeyHash(); ok {
		b.AddKeyInput(hash, input, amount)
		return nil
	}
	hash, _ := cred.ToScriptHash()
	b.AddScriptInput(hash, input, amount)
	return nil
}

// AddRequiredNativeInputScripts supplies scripts for pending script inputs. It returns the
// number of script inputs still missing a witness.
func (b *TxInputsBuilder) AddRequiredNativeInputScripts(scripts ...NativeScriptSource) int {
	for i := range b.entries {
		entry := &b.entries[i]
		if entry.scriptHash == nil || entry.hasScriptWitness() {
			continue
		}
		for _, script := range scripts {
			if script.Hash() == *entry.scriptHash {
				tmp := script
				entry.native = &tmp
				break
			}
		}
	}
	return len(b.MissingScripts())
}

// AddRequiredPlutusInputScripts supplies Plutus witnesses for pending script inputs. It returns
// the number of script inputs still missing a witness.
func (b *TxInputsBuilder) AddRequiredPlutusInputScripts(witnesses ...PlutusWitness) int {
	for i := range b.entries {
		entry := &b.entries[i]
		if entry.scriptHash == nil || entry.hasScriptWitness() {
			continue
		}
		for _, witness := range witnesses {
			if witness.script.Hash() == *entry.scriptHash {
				tmp := witness
				entry.plutus = &tmp
				break
			}
		}
	}
	return len(b.MissingScripts())
}

// AddRequiredSigner requires a signature from a key that does not lock any input
func (b *TxInputsBuilder) AddRequiredSigner(hash crypto.Ed25519KeyHash) {
	if !slices.Contains(b.requiredSigners, hash) {
		b.requiredSigners = append(b.requiredSigners, hash)
	}
}

// MissingScripts returns the script hashes of inputs still waiting for a witness
func (b *TxInputsBuilder) MissingScripts() []crypto.ScriptHash {
	var ret []crypto.ScriptHash
	for _, entry := range b.entries {
		if entry.scriptHash != nil && !entry.hasScriptWitness() &&
			!slices.Contains(ret, *entry.scriptHash) {
			ret = append(ret, *entry.scriptHash)
		}
	}
	return ret
}

func (b *TxInputsBuilder) Len() int {
	return len(b.entries)
}

// Inputs returns the inputs in ledger order
func (b *TxInputsBuilder) Inputs() []ledger.TransactionInput {
	ret := make([]ledger.TransactionInput, 0, len(b.entries))
	for _, entry := range b.entries {
		ret = append(ret, entry.input)
	}
	slices.SortFunc(ret, ledger.TransactionInput.Compare)
	return slices.CompactFunc(ret, func(a, b ledger.TransactionInput) bool {
		return a.Compare(b) == 0
	})
}

func (b *TxInputsBuilder) contains(input ledger.TransactionInput) bool {
	return slices.ContainsFunc(b.entries, func(e txInputEntry) bool {
		return e.input.Compare(input) == 0
	})
}

// TotalValue sums the values of every input
func (b *TxInputsBuilder) TotalValue() (ledger.Value, error) {
	var ret ledger.Value
	for _, entry := range b.entries {
		var err error
		ret, err = ret.CheckedAdd(entry.amount)
		if err != nil {
			return ledger.Value{}, err
		}
	}
	return ret, nil
}

// keyHashes returns the payment key hashes whose signatures the inputs need
func (b *TxInputsBuilder) keyHashes() []crypto.Ed25519KeyHash {
	var ret []crypto.Ed25519KeyHash
	add := func(hash crypto.Ed25519KeyHash) {
		if !slices.Contains(ret, hash) {
			ret = append(ret, hash)
		}
	}
	for _, entry := range b.entries {
		if entry.keyHash != nil {
			add(*entry.keyHash)
		}
		if entry.native != nil {
			if script, ok := entry.native.Script(); ok {
				for _, hash := range ledger.NativeScriptRequiredSigners(script) {
					add(hash)
				}
			}
		}
	}
	for _, hash := range b.requiredSigners {
		add(hash)
	}
	return ret
}

func (b *TxInputsBuilder) bootstrapAddresses() []ledger.ByronAddress {
	var ret []ledger.ByronAddress
	for _, entry := range b.entries {
		if entry.byron != nil {
			ret = append(ret, *entry.byron)
		}
	}
	return ret
}

func (b *TxInputsBuilder) hasPlutusInputs() bool {
	return slices.ContainsFunc(b.entries, func(e txInputEntry) bool {
		return e.plutus != nil
	})
}

// witnesses collects the script witnesses of the inputs. Spend redeemers are indexed by the
// position of their input in ledger order.
func (b *TxInputsBuilder) witnesses() scriptWitnesses {
	var ret scriptWitnesses
	sorted := b.Inputs()
	for _, entry := range b.entries {
		switch {
		case entry.native != nil:
			ret.addNative(*entry.native)
		case entry.plutus != nil:
			index := slices.IndexFunc(sorted, func(i ledger.TransactionInput) bool {
				return i.Compare(entry.input) == 0
			})
			ret.addPlutus(*entry.plutus, ledger.RedeemerTagSpend, index)
		}
	}
	return ret
}
