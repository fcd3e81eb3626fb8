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

const (
	NonceTypeNeutral = 0
	NonceTypeNonce   = 1
)

// Nonce is either the neutral nonce or a 32-byte hash
type Nonce struct {
	hash *[32]byte
}

func NewIdentityNonce() Nonce {
	return Nonce{}
}

func NewNonceFromHash(hash []byte) (Nonce, error) {
	if len(hash) != 32 {
		return Nonce{}, crypto.WrongLengthError{Type: "Nonce", Expected: 32, Actual: len(hash)}
	}
	var tmp [32]byte
	copy(tmp[:], hash)
	return Nonce{hash: &tmp}, nil
}

// Hash returns the nonce hash, or false for the neutral nonce
func (n Nonce) Hash() ([]byte, bool) {
	if n.hash == nil {
		return nil, false
	}
	return n.hash[:], true
}

func (n Nonce) MarshalCBOR() ([]byte, error) {
	if n.hash == nil {
		return cbor.EncodeArray([]cbor.RawMessage{cbor.EncodeUint(NonceTypeNeutral)}, false), nil
	}
	return cbor.EncodeArray([]cbor.RawMessage{
		cbor.EncodeUint(NonceTypeNonce),
		cbor.EncodeBytes(n.hash[:]),
	}, false), nil
}

func (n *Nonce) UnmarshalCBOR(data []byte) error {
	nonceType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return cbor.WrapDeserialize("Nonce", err)
	}
	switch nonceType {
	case NonceTypeNeutral:
		if _, err := cbor.DecodeArrayLen(data, "Nonce", 1, 1); err != nil {
			return cbor.WrapDeserialize("Nonce", err)
		}
		n.hash = nil
	case NonceTypeNonce:
		items, err := cbor.DecodeArrayLen(data, "Nonce", 2, 2)
		if err != nil {
			return cbor.WrapDeserialize("Nonce", err)
		}
		hash, err := cbor.DecodeBytes(items[1])
		if err != nil {
			return cbor.WrapDeserialize("Nonce", err)
		}
		tmp, err := NewNonceFromHash(hash)
		if err != nil {
			return cbor.WrapDeserialize("Nonce", err)
		}
		*n = tmp
	default:
		return cbor.WrapDeserialize("Nonce", fmt.Errorf("unsupported nonce type %d", nonceType))
	}
	return nil
}

type ProtocolVersion struct {
	cbor.StructAsArray
	Major uint32
	Minor uint32
}

func NewProtocolVersion(major, minor uint32) ProtocolVersion {
	return ProtocolVersion{Major: major, Minor: minor}
}

// ProtocolParamUpdate is a proposed change to protocol parameters. Unset fields are left
// unchanged by the update.
type ProtocolParamUpdate struct {
	cbor.DecodeStoreCbor
	MinFeeA              *num.BigNum       `cbor:"0,keyasint,omitempty"`
	MinFeeB              *num.BigNum       `cbor:"1,keyasint,omitempty"`
	MaxBlockBodySize     *uint32           `cbor:"2,keyasint,omitempty"`
	MaxTxSize            *uint32           `cbor:"3,keyasint,omitempty"`
	MaxBlockHeaderSize   *uint32           `cbor:"4,keyasint,omitempty"`
	KeyDeposit           *num.BigNum       `cbor:"5,keyasint,omitempty"`
	PoolDeposit          *num.BigNum       `cbor:"6,keyasint,omitempty"`
	MaxEpoch             *uint32           `cbor:"7,keyasint,omitempty"`
	NOpt                 *uint32           `cbor:"8,keyasint,omitempty"`
	PoolPledgeInfluence  *num.UnitInterval `cbor:"9,keyasint,omitempty"`
	ExpansionRate        *num.UnitInterval `cbor:"10,keyasint,omitempty"`
	TreasuryGrowthRate   *num.UnitInterval `cbor:"11,keyasint,omitempty"`
	D                    *num.UnitInterval `cbor:"12,keyasint,omitempty"`
	ExtraEntropy         *Nonce            `cbor:"13,keyasint,omitempty"`
	ProtocolVersion      *ProtocolVersion  `cbor:"14,keyasint,omitempty"`
	MinUtxoValue         *num.BigNum       `cbor:"15,keyasint,omitempty"`
	MinPoolCost          *num.BigNum       `cbor:"16,keyasint,omitempty"`
	AdaPerUtxoByte       *num.BigNum       `cbor:"17,keyasint,omitempty"`
	CostModels           *Costmdls         `cbor:"18,keyasint,omitempty"`
	ExecutionCosts       *ExUnitPrices     `cbor:"19,keyasint,omitempty"`
	MaxTxExUnits         *ExUnits          `cbor:"20,keyasint,omitempty"`
	MaxBlockExUnits      *ExUnits          `cbor:"21,keyasint,omitempty"`
	MaxValueSize         *uint32           `cbor:"22,keyasint,omitempty"`
	CollateralPercentage *uint32           `cbor:"23,keyasint,omitempty"`
	MaxCollateralInputs  *uint32           `cbor:"24,keyasint,omitempty"`
}

func (u *ProtocolParamUpdate) UnmarshalCBOR(data []byte) error {
	if err := u.UnmarshalCborGeneric(data, u); err != nil {
		return cbor.WrapDeserialize("ProtocolParamUpdate", err)
	}
	return nil
}

func (u ProtocolParamUpdate) MarshalCBOR() ([]byte, error) {
	type tProtocolParamUpdate ProtocolParamUpdate
	tmp := tProtocolParamUpdate(u)
	tmp.DecodeStoreCbor = cbor.DecodeStoreCbor{}
	return cbor.Encode(&tmp)
}

// ProposedProtocolParameterUpdates maps genesis key hashes to their proposed updates
type ProposedProtocolParameterUpdates map[crypto.GenesisHash]ProtocolParamUpdate

func (p ProposedProtocolParameterUpdates) MarshalCBOR() ([]byte, error) {
	entries := make([]cbor.MapEntry, 0, len(p))
	for key, value := range p {
		keyCbor, err := key.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		valueCbor, err := value.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		entries = append(entries, cbor.MapEntry{Key: keyCbor, Value: valueCbor})
	}
	return cbor.EncodeMap(entries)
}

func (p *ProposedProtocolParameterUpdates) UnmarshalCBOR(data []byte) error {
	entries, err := cbor.DecodeMapEntries(data)
	if err != nil {
		return err
	}
	ret := make(ProposedProtocolParameterUpdates, len(entries))
	for idx, entry := range entries {
		var key crypto.GenesisHash
		if err := key.UnmarshalCBOR(entry.Key); err != nil {
			return cbor.WrapDeserializeIndex(idx, err)
		}
		var value ProtocolParamUpdate
		if err := value.UnmarshalCBOR(entry.Value); err != nil {
			return cbor.WrapDeserializeIndex(idx, err)
		}
		ret[key] = value
	}
	*p = ret
	return nil
}

// Update is a set of protocol parameter proposals for an epoch
type Update struct {
	ProposedUpdates ProposedProtocolParameterUpdates
	Epoch           uint64
}

func NewUpdate(proposed ProposedProtocolParameterUpdates, epoch uint64) Update {
	return Update{ProposedUpdates: proposed, Epoch: epoch}
}

func (u Update) MarshalCBOR() ([]byte, error) {
	proposed, err := u.ProposedUpdates.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	return cbor.EncodeArray([]cbor.RawMessage{proposed, cbor.EncodeUint(u.Epoch)}, false), nil
}

func (u *Update) UnmarshalCBOR(data []byte) error {
	items, err := cbor.DecodeArrayLen(data, "Update", 2, 2)
	if err != nil {
		return cbor.WrapDeserialize("Update", err)
	}
	if err := u.ProposedUpdates.UnmarshalCBOR(items[0]); err != nil {
		return cbor.WrapDeserialize("Update", cbor.WrapDeserialize("proposed_protocol_parameter_updates", err))
	}
	epoch, err := cbor.DecodeUint(items[1])
	if err != nil {
		return cbor.WrapDeserialize("Update", cbor.WrapDeserialize("epoch", err))
	}
	u.Epoch = epoch
	return nil
}
