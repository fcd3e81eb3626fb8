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

	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
)

type withdrawalEntry struct {
	amount num.BigNum
	native *NativeScriptSource
	plutus *PlutusWitness
}

// WithdrawalsBuilder accumulates reward withdrawals along with the script witnesses of script
// reward accounts
type WithdrawalsBuilder struct {
	entries map[ledger.RewardAddress]withdrawalEntry
}

func NewWithdrawalsBuilder() *WithdrawalsBuilder {
	return &WithdrawalsBuilder{entries: map[ledger.RewardAddress]withdrawalEntry{}}
}

// Add adds a withdrawal from a key reward account
func (b *WithdrawalsBuilder) Add(addr ledger.RewardAddress, amount num.BigNum) error {
	if hash, ok := addr.Payment.ToScriptHash(); ok {
		return MissingScriptWitnessError{Kind: "withdrawal", Hash: hash}
	}
	b.entries[addr] = withdrawalEntry{amount: amount}
	return nil
}

// AddWithNativeScript adds a withdrawal from a native script reward account
func (b *WithdrawalsBuilder) AddWithNativeScript(
	addr ledger.RewardAddress,
	amount num.BigNum,
	script NativeScriptSource,
) error {
	if err := checkWithdrawalScript(addr, script.Hash()); err != nil {
		return err
	}
	b.entries[addr] = withdrawalEntry{amount: amount, native: &script}
	return nil
}

// AddWithPlutusWitness adds a withdrawal from a Plutus script reward account
func (b *WithdrawalsBuilder) AddWithPlutusWitness(
	addr ledger.RewardAddress,
	amount num.BigNum,
	witness PlutusWitness,
) error {
	if err := checkWithdrawalScript(addr, witness.script.Hash()); err != nil {
		return err
	}
	b.entries[addr] = withdrawalEntry{amount: amount, plutus: &witness}
	return nil
}

func checkWithdrawalScript(addr ledger.RewardAddress, hash crypto.ScriptHash) error {
	expected, ok := addr.Payment.ToScriptHash()
	if !ok {
		return fmt.Errorf("%w: reward account %s has no script credential", ErrScriptWitnessMismatch, addr)
	}
	if expected != hash {
		return fmt.Errorf("%w: expected %s, got %s", ErrScriptWitnessMismatch, expected, hash)
	}
	return nil
}

func (b *WithdrawalsBuilder) Len() int {
	return len(b.entries)
}

func (b *WithdrawalsBuilder) Build() ledger.Withdrawals {
	ret := make(ledger.Withdrawals, len(b.entries))
	for addr, entry := range b.entries {
		ret.Insert(addr, entry.amount)
	}
	return ret
}

// Total sums the withdrawn amounts
func (b *WithdrawalsBuilder) Total() (num.BigNum, error) {
	return b.Build().Total()
}

func (b *WithdrawalsBuilder) HasPlutusScripts() bool {
	for _, entry := range b.entries {
		if entry.plutus != nil {
			return true
		}
	}
	return false
}

func (b *WithdrawalsBuilder) keyHashes() []crypto.Ed25519KeyHash {
	var ret []crypto.Ed25519KeyHash
	for _, addr := range b.Build().Keys() {
		if hash, ok := addr.Payment.ToKeyHash(); ok {
			ret = append(ret, hash)
		}
		entry := b.entries[addr]
		if entry.native != nil {
			if script, ok := entry.native.Script(); ok {
				ret = append(ret, ledger.NativeScriptRequiredSigners(script)...)
			}
		}
	}
	return ret
}

// witnesses collects the reward account scripts. Reward redeemers are indexed by the position of
// the reward account in ledger order.
func (b *WithdrawalsBuilder) witnesses() scriptWitnesses {
	var ret scriptWitnesses
	keys := b.Build().Keys()
	for index, addr := range keys {
		entry := b.entries[addr]
		switch {
		case entry.native != nil:
			ret.addNative(*entry.native)
		case entry.plutus != nil:
			ret.addPlutus(*entry.plutus, ledger.RedeemerTagReward, index)
		}
	}
	return ret
}
