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
	"maps"
	"math/big"

	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
)

// MintWitness authorizes minting under one policy, with either a native script or a Plutus
// script and its redeemer
type MintWitness struct {
	native *NativeScriptSource
	plutus *PlutusWitness
}

func NewMintWitnessNative(script NativeScriptSource) MintWitness {
	return MintWitness{native: &script}
}

// NewMintWitnessPlutus returns a witness for a Plutus minting policy. Mint scripts take no datum.
func NewMintWitnessPlutus(script PlutusScriptSource, redeemer ledger.Redeemer) MintWitness {
	return MintWitness{plutus: &PlutusWitness{script: script, redeemer: redeemer}}
}

// PolicyID returns the hash of the policy script
func (w MintWitness) PolicyID() crypto.PolicyID {
	if w.native != nil {
		return w.native.Hash()
	}
	return w.plutus.script.Hash()
}

type mintEntry struct {
	witness MintWitness
	assets  ledger.MintAssets
}

// MintBuilder accumulates minted and burned assets along with their policy witnesses
type MintBuilder struct {
	entries map[crypto.PolicyID]*mintEntry
}

func NewMintBuilder() *MintBuilder {
	return &MintBuilder{entries: map[crypto.PolicyID]*mintEntry{}}
}

func (b *MintBuilder) entry(witness MintWitness) (*mintEntry, error) {
	policy := witness.PolicyID()
	entry, ok := b.entries[policy]
	if !ok {
		entry = &mintEntry{witness: witness, assets: ledger.MintAssets{}}
		b.entries[policy] = entry
		return entry, nil
	}
	if (entry.witness.native == nil) != (witness.native == nil) {
		return nil, fmt.Errorf("%w: policy %s", ErrScriptWitnessMismatch, policy)
	}
	return entry, nil
}

// AddAsset adds amount to the quantity of an asset under the witness policy. Negative amounts
// burn.
func (b *MintBuilder) AddAsset(witness MintWitness, name ledger.AssetName, amount num.Int) error {
	if amount.IsZero() {
		return ErrInvalidMintAmount
	}
	entry, err := b.entry(witness)
	if err != nil {
		return err
	}
	prev, ok := entry.assets.Get(name)
	if ok {
		sum := new(big.Int).Add(prev.Big(), amount.Big())
		amount, err = num.IntFromBig(sum)
		if err != nil {
			return err
		}
	}
	if amount.IsZero() {
		delete(entry.assets, name)
		return nil
	}
	_, _, err = entry.assets.Insert(name, amount)
	return err
}

// SetAsset replaces the quantity of an asset under the witness policy
func (b *MintBuilder) SetAsset(witness MintWitness, name ledger.AssetName, amount num.Int) error {
	if amount.IsZero() {
		return ErrInvalidMintAmount
	}
	entry, err := b.entry(witness)
	if err != nil {
		return err
	}
	_, _, err = entry.assets.Insert(name, amount)
	return err
}

// Build returns the mint field. Policies without any remaining assets are left out.
func (b *MintBuilder) Build() ledger.Mint {
	ret := ledger.Mint{}
	for policy, entry := range b.entries {
		if len(entry.assets) == 0 {
			continue
		}
		ret.Insert(policy, maps.Clone(entry.assets))
	}
	return ret
}

// HasPlutusScripts reports whether a Plutus policy still mints or burns anything
func (b *MintBuilder) HasPlutusScripts() bool {
	for _, entry := range b.entries {
		if len(entry.assets) > 0 && entry.witness.plutus != nil {
			return true
		}
	}
	return false
}

// witnesses collects the policy scripts. Mint redeemers are indexed by the position of their
// policy in ledger order.
func (b *MintBuilder) witnesses() scriptWitnesses {
	var ret scriptWitnesses
	policies := b.Build().Keys()
	for index, policy := range policies {
		entry := b.entries[policy]
		switch {
		case entry.witness.native != nil:
			ret.addNative(*entry.witness.native)
		case entry.witness.plutus != nil:
			ret.addPlutus(*entry.witness.plutus, ledger.RedeemerTagMint, index)
		}
	}
	return ret
}

func (b *MintBuilder) keyHashes() []crypto.Ed25519KeyHash {
	var ret []crypto.Ed25519KeyHash
	for _, entry := range b.entries {
		if len(entry.assets) == 0 || entry.witness.native == nil {
			continue
		}
		if script, ok := entry.witness.native.Script(); ok {
			ret = append(ret, ledger.NativeScriptRequiredSigners(script)...)
		}
	}
	return ret
}
