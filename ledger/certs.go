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
	"errors"
	"fmt"
	"math"
	"net"
	"slices"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/num"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

type CertificateKind uint8

const (
	CertificateKindStakeRegistration        CertificateKind = 0
	CertificateKindStakeDeregistration      CertificateKind = 1
	CertificateKindStakeDelegation          CertificateKind = 2
	CertificateKindPoolRegistration         CertificateKind = 3
	CertificateKindPoolRetirement           CertificateKind = 4
	CertificateKindGenesisKeyDelegation     CertificateKind = 5
	CertificateKindMoveInstantaneousRewards CertificateKind = 6
)

func (k CertificateKind) String() string {
	switch k {
	case CertificateKindStakeRegistration:
		return "StakeRegistration"
	case CertificateKindStakeDeregistration:
		return "StakeDeregistration"
	case CertificateKindStakeDelegation:
		return "StakeDelegation"
	case CertificateKindPoolRegistration:
		return "PoolRegistration"
	case CertificateKindPoolRetirement:
		return "PoolRetirement"
	case CertificateKindGenesisKeyDelegation:
		return "GenesisKeyDelegation"
	case CertificateKindMoveInstantaneousRewards:
		return "MoveInstantaneousRewardsCert"
	default:
		return fmt.Sprintf("CertificateKind(%d)", uint8(k))
	}
}

// Certificate is one of StakeRegistration, StakeDeregistration, StakeDelegation,
// PoolRegistration, PoolRetirement, GenesisKeyDelegation or MoveInstantaneousRewardsCert
type Certificate interface {
	isCertificate()
	Kind() CertificateKind
	MarshalCBOR() ([]byte, error)
	Utxorpc() (*utxorpc.Certificate, error)
}

// CertificateStakeCredential returns the stake credential a certificate acts on, for the kinds
// that have one
func CertificateStakeCredential(c Certificate) (Credential, bool) {
	switch cert := c.(type) {
	case StakeRegistration:
		return cert.Stake, true
	case StakeDeregistration:
		return cert.Stake, true
	case StakeDelegation:
		return cert.Stake, true
	default:
		return Credential{}, false
	}
}

func certHead(kind CertificateKind, rest ...cbor.RawMessage) []byte {
	items := append([]cbor.RawMessage{cbor.EncodeUint(uint64(kind))}, rest...)
	return cbor.EncodeArray(items, false)
}

func certJSON(kind CertificateKind, fields map[string]any) ([]byte, error) {
	fields["type"] = kind.String()
	return json.Marshal(fields)
}

// StakeRegistration registers a stake credential
type StakeRegistration struct {
	Stake Credential
}

func NewStakeRegistration(stake Credential) StakeRegistration {
	return StakeRegistration{Stake: stake}
}

func (StakeRegistration) isCertificate() {}

func (StakeRegistration) Kind() CertificateKind { return CertificateKindStakeRegistration }

func (c StakeRegistration) MarshalCBOR() ([]byte, error) {
	stake, _ := c.Stake.MarshalCBOR()
	return certHead(c.Kind(), stake), nil
}

func (c StakeRegistration) MarshalJSON() ([]byte, error) {
	return certJSON(c.Kind(), map[string]any{"stake_credential": c.Stake})
}

func (c StakeRegistration) Utxorpc() (*utxorpc.Certificate, error) {
	stake, err := c.Stake.Utxorpc()
	if err != nil {
		return nil, err
	}
	return &utxorpc.Certificate{
		Certificate: &utxorpc.Certificate_StakeRegistration{
			StakeRegistration: stake,
		},
	}, nil
}

// StakeDeregistration deregisters a stake credential
type StakeDeregistration struct {
	Stake Credential
}

func NewStakeDeregistration(stake Credential) StakeDeregistration {
	return StakeDeregistration{Stake: stake}
}

func (StakeDeregistration) isCertificate() {}

func (StakeDeregistration) Kind() CertificateKind { return CertificateKindStakeDeregistration }

func (c StakeDeregistration) MarshalCBOR() ([]byte, error) {
	stake, _ := c.Stake.MarshalCBOR()
	return certHead(c.Kind(), stake), nil
}

func (c StakeDeregistration) MarshalJSON() ([]byte, error) {
	return certJSON(c.Kind(), map[string]any{"stake_credential": c.Stake})
}

func (c StakeDeregistration) Utxorpc() (*utxorpc.Certificate, error) {
	stake, err := c.Stake.Utxorpc()
	if err != nil {
		return nil, err
	}
	return &utxorpc.Certificate{
		Certificate: &utxorpc.Certificate_StakeDeregistration{
			StakeDeregistration: stake,
		},
	}, nil
}

// StakeDelegation delegates a stake credential to a pool
type StakeDelegation struct {
	Stake Credential
	Pool  crypto.Ed25519KeyHash
}

func NewStakeDelegation(stake Credential, pool crypto.Ed25519KeyHash) StakeDelegation {
	return StakeDelegation{Stake: stake, Pool: pool}
}

func (StakeDelegation) isCertificate() {}

func (StakeDelegation) Kind() CertificateKind { return CertificateKindStakeDelegation }

func (c StakeDelegation) MarshalCBOR() ([]byte, error) {
	stake, _ := c.Stake.MarshalCBOR()
	return certHead(c.Kind(), stake, cbor.EncodeBytes(c.Pool.Bytes())), nil
}

func (c StakeDelegation) MarshalJSON() ([]byte, error) {
	return certJSON(c.Kind(), map[string]any{
		"stake_credential": c.Stake,
		"pool_keyhash":     c.Pool,
	})
}

func (c StakeDelegation) Utxorpc() (*utxorpc.Certificate, error) {
	stake, err := c.Stake.Utxorpc()
	if err != nil {
		return nil, err
	}
	return &utxorpc.Certificate{
		Certificate: &utxorpc.Certificate_StakeDelegation{
			StakeDelegation: &utxorpc.StakeDelegationCert{
				StakeCredential: stake,
				PoolKeyhash:     c.Pool.Bytes(),
			},
		},
	}, nil
}

// PoolMetadata points at off-chain pool metadata
type PoolMetadata struct {
	URL  string                  `json:"url"`
	Hash crypto.PoolMetadataHash `json:"hash"`
}

const maxPoolMetadataURLLength = 64

func (m PoolMetadata) MarshalCBOR() ([]byte, error) {
	if len(m.URL) > maxPoolMetadataURLLength {
		return nil, fmt.Errorf("pool metadata URL longer than %d bytes", maxPoolMetadataURLLength)
	}
	return cbor.EncodeArray(
		[]cbor.RawMessage{cbor.EncodeText(m.URL), cbor.EncodeBytes(m.Hash.Bytes())},
		false,
	), nil
}

func (m *PoolMetadata) UnmarshalCBOR(data []byte) error {
	items, err := cbor.DecodeArrayLen(data, "PoolMetadata", 2, 2)
	if err != nil {
		return cbor.WrapDeserialize("PoolMetadata", err)
	}
	url, err := cbor.DecodeText(items[0])
	if err != nil {
		return cbor.WrapDeserialize("PoolMetadata", err)
	}
	if len(url) > maxPoolMetadataURLLength {
		return cbor.WrapDeserialize(
			"PoolMetadata",
			fmt.Errorf("URL longer than %d bytes", maxPoolMetadataURLLength),
		)
	}
	var hash crypto.PoolMetadataHash
	if err := hash.UnmarshalCBOR(items[1]); err != nil {
		return cbor.WrapDeserialize("PoolMetadata", err)
	}
	*m = PoolMetadata{URL: url, Hash: hash}
	return nil
}

const (
	RelayTypeSingleHostAddr = 0
	RelayTypeSingleHostName = 1
	RelayTypeMultiHostName  = 2
)

// Relay is how a pool can be reached. Which fields are used depends on Type.
type Relay struct {
	Type    int     `json:"type"`
	Port    *uint16 `json:"port,omitempty"`
	IPv4    net.IP  `json:"ipv4,omitempty"`
	IPv6    net.IP  `json:"ipv6,omitempty"`
	DNSName string  `json:"dns_name,omitempty"`
}

func NewSingleHostAddrRelay(port *uint16, ipv4 net.IP, ipv6 net.IP) Relay {
	return Relay{Type: RelayTypeSingleHostAddr, Port: port, IPv4: ipv4, IPv6: ipv6}
}

func NewSingleHostNameRelay(port *uint16, dnsName string) Relay {
	return Relay{Type: RelayTypeSingleHostName, Port: port, DNSName: dnsName}
}

func NewMultiHostNameRelay(dnsName string) Relay {
	return Relay{Type: RelayTypeMultiHostName, DNSName: dnsName}
}

func encodeOptional(present bool, data []byte) []byte {
	if !present {
		return cbor.EncodeNull()
	}
	return data
}

func (r Relay) MarshalCBOR() ([]byte, error) {
	port := cbor.EncodeNull()
	if r.Port != nil {
		port = cbor.EncodeUint(uint64(*r.Port))
	}
	switch r.Type {
	case RelayTypeSingleHostAddr:
		var ipv4, ipv6 []byte
		if r.IPv4 != nil {
			if ipv4 = r.IPv4.To4(); ipv4 == nil {
				return nil, fmt.Errorf("invalid IPv4 address %s", r.IPv4)
			}
		}
		if r.IPv6 != nil {
			if ipv6 = r.IPv6.To16(); ipv6 == nil {
				return nil, fmt.Errorf("invalid IPv6 address %s", r.IPv6)
			}
		}
		return cbor.EncodeArray(
			[]cbor.RawMessage{
				cbor.EncodeUint(RelayTypeSingleHostAddr),
				port,
				encodeOptional(ipv4 != nil, cbor.EncodeBytes(ipv4)),
				encodeOptional(ipv6 != nil, cbor.EncodeBytes(ipv6)),
			},
			false,
		), nil
	case RelayTypeSingleHostName:
		return cbor.EncodeArray(
			[]cbor.RawMessage{
				cbor.EncodeUint(RelayTypeSingleHostName),
				port,
				cbor.EncodeText(r.DNSName),
			},
			false,
		), nil
	case RelayTypeMultiHostName:
		return cbor.EncodeArray(
			[]cbor.RawMessage{
				cbor.EncodeUint(RelayTypeMultiHostName),
				cbor.EncodeText(r.DNSName),
			},
			false,
		), nil
	default:
		return nil, fmt.Errorf("invalid relay type: %d", r.Type)
	}
}

func decodeOptionalBytes(data []byte, size int) ([]byte, error) {
	if cbor.IsNull(data) {
		return nil, nil
	}
	b, err := cbor.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		return nil, fmt.Errorf("address length was %d bytes, expected %d", len(b), size)
	}
	return b, nil
}

func (r *Relay) UnmarshalCBOR(data []byte) error {
	if err := r.unmarshalCBOR(data); err != nil {
		return cbor.WrapDeserialize("Relay", err)
	}
	return nil
}

func (r *Relay) unmarshalCBOR(data []byte) error {
	relayType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return err
	}
	decodePort := func(item []byte) (*uint16, error) {
		if cbor.IsNull(item) {
			return nil, nil
		}
		port, err := cbor.DecodeUint(item)
		if err != nil {
			return nil, err
		}
		if port > math.MaxUint16 {
			return nil, fmt.Errorf("port %d out of range", port)
		}
		tmp := uint16(port)
		return &tmp, nil
	}
	ret := Relay{Type: relayType}
	switch relayType {
	case RelayTypeSingleHostAddr:
		items, err := cbor.DecodeArrayLen(data, "Relay", 4, 4)
		if err != nil {
			return err
		}
		if ret.Port, err = decodePort(items[1]); err != nil {
			return err
		}
		ipv4, err := decodeOptionalBytes(items[2], net.IPv4len)
		if err != nil {
			return err
		}
		ipv6, err := decodeOptionalBytes(items[3], net.IPv6len)
		if err != nil {
			return err
		}
		if ipv4 != nil {
			ret.IPv4 = net.IP(ipv4)
		}
		if ipv6 != nil {
			ret.IPv6 = net.IP(ipv6)
		}
	case RelayTypeSingleHostName:
		items, err := cbor.DecodeArrayLen(data, "Relay", 3, 3)
		if err != nil {
			return err
		}
		if ret.Port, err = decodePort(items[1]); err != nil {
			return err
		}
		if ret.DNSName, err = cbor.DecodeText(items[2]); err != nil {
			return err
		}
	case RelayTypeMultiHostName:
		items, err := cbor.DecodeArrayLen(data, "Relay", 2, 2)
		if err != nil {
			return err
		}
		if ret.DNSName, err = cbor.DecodeText(items[1]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid relay type: %d", relayType)
	}
	*r = ret
	return nil
}

func (r Relay) Utxorpc() *utxorpc.Relay {
	ret := &utxorpc.Relay{DnsName: r.DNSName}
	if r.Port != nil {
		ret.Port = uint32(*r.Port)
	}
	if r.IPv4 != nil {
		ret.IpV4 = []byte(r.IPv4.To4())
	}
	if r.IPv6 != nil {
		ret.IpV6 = []byte(r.IPv6.To16())
	}
	return ret
}

// PoolParams are the parameters of a stake pool registration
type PoolParams struct {
	Operator      crypto.Ed25519KeyHash   `json:"operator"`
	VRFKeyHash    crypto.VRFKeyHash       `json:"vrf_keyhash"`
	Pledge        num.BigNum              `json:"pledge"`
	Cost          num.BigNum              `json:"cost"`
	Margin        num.UnitInterval        `json:"margin"`
	RewardAccount RewardAddress           `json:"reward_account"`
	PoolOwners    []crypto.Ed25519KeyHash `json:"pool_owners"`
	Relays        []Relay                 `json:"relays"`
	PoolMetadata  *PoolMetadata           `json:"pool_metadata,omitempty"`
	ownersTagged  bool
}

func (p PoolParams) cborItems() ([]cbor.RawMessage, error) {
	margin, err := p.Margin.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	owners, err := encodeSet(p.PoolOwners, p.ownersTagged)
	if err != nil {
		return nil, err
	}
	relays, err := encodeItems(p.Relays)
	if err != nil {
		return nil, err
	}
	metadata := cbor.EncodeNull()
	if p.PoolMetadata != nil {
		if metadata, err = p.PoolMetadata.MarshalCBOR(); err != nil {
			return nil, err
		}
	}
	return []cbor.RawMessage{
		cbor.EncodeBytes(p.Operator.Bytes()),
		cbor.EncodeBytes(p.VRFKeyHash.Bytes()),
		cbor.EncodeUint(p.Pledge.Uint64()),
		cbor.EncodeUint(p.Cost.Uint64()),
		margin,
		cbor.EncodeBytes(p.RewardAccount.Bytes()),
		owners,
		cbor.EncodeArray(relays, false),
		metadata,
	}, nil
}

func (p *PoolParams) fromCborItems(items []cbor.RawMessage) error {
	if len(items) != 9 {
		return cbor.LengthError{Type: "PoolParams", Expected: "9", Actual: len(items)}
	}
	var ret PoolParams
	if err := ret.Operator.UnmarshalCBOR(items[0]); err != nil {
		return cbor.WrapDeserialize("operator", err)
	}
	if err := ret.VRFKeyHash.UnmarshalCBOR(items[1]); err != nil {
		return cbor.WrapDeserialize("vrf_keyhash", err)
	}
	if err := ret.Pledge.UnmarshalCBOR(items[2]); err != nil {
		return cbor.WrapDeserialize("pledge", err)
	}
	if err := ret.Cost.UnmarshalCBOR(items[3]); err != nil {
		return cbor.WrapDeserialize("cost", err)
	}
	if err := ret.Margin.UnmarshalCBOR(items[4]); err != nil {
		return cbor.WrapDeserialize("margin", err)
	}
	if err := ret.RewardAccount.UnmarshalCBOR(items[5]); err != nil {
		return cbor.WrapDeserialize("reward_account", err)
	}
	owners, tagged, err := decodeList[crypto.Ed25519KeyHash](items[6])
	if err != nil {
		return cbor.WrapDeserialize("pool_owners", err)
	}
	ret.PoolOwners, ret.ownersTagged = owners, tagged
	relayItems, err := cbor.DecodeArray(items[7])
	if err != nil {
		return cbor.WrapDeserialize("relays", err)
	}
	for idx, item := range relayItems {
		var relay Relay
		if err := relay.UnmarshalCBOR(item); err != nil {
			return cbor.WrapDeserialize("relays", cbor.WrapDeserializeIndex(idx, err))
		}
		ret.Relays = append(ret.Relays, relay)
	}
	if !cbor.IsNull(items[8]) {
		var metadata PoolMetadata
		if err := metadata.UnmarshalCBOR(items[8]); err != nil {
			return cbor.WrapDeserialize("pool_metadata", err)
		}
		ret.PoolMetadata = &metadata
	}
	*p = ret
	return nil
}

// PoolRegistration registers a stake pool or updates its parameters
type PoolRegistration struct {
	Params PoolParams
}

func NewPoolRegistration(params PoolParams) PoolRegistration {
	return PoolRegistration{Params: params}
}

func (PoolRegistration) isCertificate() {}

func (PoolRegistration) Kind() CertificateKind { return CertificateKindPoolRegistration }

func (c PoolRegistration) MarshalCBOR() ([]byte, error) {
	items, err := c.Params.cborItems()
	if err != nil {
		return nil, err
	}
	return certHead(c.Kind(), items...), nil
}

func (c PoolRegistration) MarshalJSON() ([]byte, error) {
	return certJSON(c.Kind(), map[string]any{"pool_params": c.Params})
}

func (c PoolRegistration) Utxorpc() (*utxorpc.Certificate, error) {
	p := c.Params
	owners := make([][]byte, 0, len(p.PoolOwners))
	for _, owner := range p.PoolOwners {
		owners = append(owners, owner.Bytes())
	}
	relays := make([]*utxorpc.Relay, 0, len(p.Relays))
	for _, relay := range p.Relays {
		relays = append(relays, relay.Utxorpc())
	}
	if p.Margin.Numerator.Uint64() > math.MaxInt32 ||
		p.Margin.Denominator.Uint64() > math.MaxUint32 {
		return nil, errors.New("pool margin does not fit a utxorpc rational number")
	}
	ret := &utxorpc.PoolRegistrationCert{
		Operator:   p.Operator.Bytes(),
		VrfKeyhash: p.VRFKeyHash.Bytes(),
		Pledge:     p.Pledge.Uint64(),
		Cost:       p.Cost.Uint64(),
		Margin: &utxorpc.RationalNumber{
			Numerator:   int32(p.Margin.Numerator.Uint64()),
			Denominator: uint32(p.Margin.Denominator.Uint64()),
		},
		RewardAccount: p.RewardAccount.Bytes(),
		PoolOwners:    owners,
		Relays:        relays,
	}
	if p.PoolMetadata != nil {
		ret.PoolMetadata = &utxorpc.PoolMetadata{
			Url:  p.PoolMetadata.URL,
			Hash: p.PoolMetadata.Hash.Bytes(),
		}
	}
	return &utxorpc.Certificate{
		Certificate: &utxorpc.Certificate_PoolRegistration{
			PoolRegistration: ret,
		},
	}, nil
}

// PoolRetirement announces that a pool retires at the start of an epoch
type PoolRetirement struct {
	Pool  crypto.Ed25519KeyHash
	Epoch uint64
}

func NewPoolRetirement(pool crypto.Ed25519KeyHash, epoch uint64) PoolRetirement {
	return PoolRetirement{Pool: pool, Epoch: epoch}
}

func (PoolRetirement) isCertificate() {}

func (PoolRetirement) Kind() CertificateKind { return CertificateKindPoolRetirement }

func (c PoolRetirement) MarshalCBOR() ([]byte, error) {
	return certHead(c.Kind(), cbor.EncodeBytes(c.Pool.Bytes()), cbor.EncodeUint(c.Epoch)), nil
}

func (c PoolRetirement) MarshalJSON() ([]byte, error) {
	return certJSON(c.Kind(), map[string]any{"pool_keyhash": c.Pool, "epoch": c.Epoch})
}

func (c PoolRetirement) Utxorpc() (*utxorpc.Certificate, error) {
	return &utxorpc.Certificate{
		Certificate: &utxorpc.Certificate_PoolRetirement{
			PoolRetirement: &utxorpc.PoolRetirementCert{
				PoolKeyhash: c.Pool.Bytes(),
				Epoch:       c.Epoch,
			},
		},
	}, nil
}

// GenesisKeyDelegation changes the delegate of a genesis key
type GenesisKeyDelegation struct {
	GenesisHash         crypto.GenesisHash
	GenesisDelegateHash crypto.GenesisDelegateHash
	VRFKeyHash          crypto.VRFKeyHash
}

func (GenesisKeyDelegation) isCertificate() {}

func (GenesisKeyDelegation) Kind() CertificateKind { return CertificateKindGenesisKeyDelegation }

func (c GenesisKeyDelegation) MarshalCBOR() ([]byte, error) {
	return certHead(
		c.Kind(),
		cbor.EncodeBytes(c.GenesisHash.Bytes()),
		cbor.EncodeBytes(c.GenesisDelegateHash.Bytes()),
		cbor.EncodeBytes(c.VRFKeyHash.Bytes()),
	), nil
}

func (c GenesisKeyDelegation) MarshalJSON() ([]byte, error) {
	return certJSON(c.Kind(), map[string]any{
		"genesishash":           c.GenesisHash,
		"genesis_delegate_hash": c.GenesisDelegateHash,
		"vrf_keyhash":           c.VRFKeyHash,
	})
}

func (c GenesisKeyDelegation) Utxorpc() (*utxorpc.Certificate, error) {
	return &utxorpc.Certificate{
		Certificate: &utxorpc.Certificate_GenesisKeyDelegation{
			GenesisKeyDelegation: &utxorpc.GenesisKeyDelegationCert{
				GenesisHash:         c.GenesisHash.Bytes(),
				GenesisDelegateHash: c.GenesisDelegateHash.Bytes(),
				VrfKeyhash:          c.VRFKeyHash.Bytes(),
			},
		},
	}, nil
}

type MIRPot uint8

const (
	MIRPotReserves MIRPot = 0
	MIRPotTreasury MIRPot = 1
)

func (p MIRPot) String() string {
	if p == MIRPotTreasury {
		return "Treasury"
	}
	return "Reserves"
}

// MoveInstantaneousReward moves funds out of a pot, either to stake credentials or to the other
// pot
type MoveInstantaneousReward struct {
	Pot MIRPot
	// Reward deltas per credential. Nil when moving to the other pot.
	Rewards map[Credential]num.Int
	// Amount moved to the other pot, when Rewards is nil
	ToOtherPot num.BigNum
}

func (m MoveInstantaneousReward) MarshalCBOR() ([]byte, error) {
	var target []byte
	if m.Rewards != nil {
		entries := make([]cbor.MapEntry, 0, len(m.Rewards))
		for cred, delta := range m.Rewards {
			key, _ := cred.MarshalCBOR()
			value, err := delta.MarshalCBOR()
			if err != nil {
				return nil, err
			}
			entries = append(entries, cbor.MapEntry{Key: key, Value: value})
		}
		var err error
		if target, err = cbor.EncodeMap(entries); err != nil {
			return nil, err
		}
	} else {
		target = cbor.EncodeUint(m.ToOtherPot.Uint64())
	}
	return cbor.EncodeArray(
		[]cbor.RawMessage{cbor.EncodeUint(uint64(m.Pot)), target},
		false,
	), nil
}

func (m *MoveInstantaneousReward) UnmarshalCBOR(data []byte) error {
	items, err := cbor.DecodeArrayLen(data, "MoveInstantaneousReward", 2, 2)
	if err != nil {
		return cbor.WrapDeserialize("MoveInstantaneousReward", err)
	}
	pot, err := cbor.DecodeUint(items[0])
	if err != nil || pot > uint64(MIRPotTreasury) {
		return cbor.WrapDeserialize(
			"MoveInstantaneousReward",
			fmt.Errorf("invalid pot %x", []byte(items[0])),
		)
	}
	ret := MoveInstantaneousReward{Pot: MIRPot(pot)}
	t, _ := cbor.MajorType(items[1])
	if t == cbor.MajorTypeMap {
		entries, err := cbor.DecodeMapEntries(items[1])
		if err != nil {
			return cbor.WrapDeserialize("MoveInstantaneousReward", err)
		}
		ret.Rewards = make(map[Credential]num.Int, len(entries))
		for _, entry := range entries {
			var cred Credential
			if err := cred.UnmarshalCBOR(entry.Key); err != nil {
				return cbor.WrapDeserialize("MoveInstantaneousReward", err)
			}
			var delta num.Int
			if err := delta.UnmarshalCBOR(entry.Value); err != nil {
				return cbor.WrapDeserialize("MoveInstantaneousReward", err)
			}
			ret.Rewards[cred] = delta
		}
	} else {
		coin, err := cbor.DecodeUint(items[1])
		if err != nil {
			return cbor.WrapDeserialize("MoveInstantaneousReward", err)
		}
		ret.ToOtherPot = num.BigNum(coin)
	}
	*m = ret
	return nil
}

// MoveInstantaneousRewardsCert moves funds between the reserves, the treasury and reward
// accounts
type MoveInstantaneousRewardsCert struct {
	MIR MoveInstantaneousReward
}

func (MoveInstantaneousRewardsCert) isCertificate() {}

func (MoveInstantaneousRewardsCert) Kind() CertificateKind {
	return CertificateKindMoveInstantaneousRewards
}

func (c MoveInstantaneousRewardsCert) MarshalCBOR() ([]byte, error) {
	mir, err := c.MIR.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	return certHead(c.Kind(), mir), nil
}

func (c MoveInstantaneousRewardsCert) MarshalJSON() ([]byte, error) {
	fields := map[string]any{"pot": c.MIR.Pot.String()}
	if c.MIR.Rewards != nil {
		rewards := make([]map[string]any, 0, len(c.MIR.Rewards))
		for _, cred := range sortedCredentials(c.MIR.Rewards) {
			rewards = append(rewards, map[string]any{
				"stake_credential": cred,
				"delta_coin":       c.MIR.Rewards[cred],
			})
		}
		fields["rewards"] = rewards
	} else {
		fields["to_other_pot"] = c.MIR.ToOtherPot
	}
	return certJSON(c.Kind(), fields)
}

func (c MoveInstantaneousRewardsCert) Utxorpc() (*utxorpc.Certificate, error) {
	ret := &utxorpc.MirCert{
		From: utxorpc.MirSource(c.MIR.Pot + 1),
	}
	if c.MIR.Rewards == nil {
		ret.OtherPot = c.MIR.ToOtherPot.Uint64()
	}
	for _, cred := range sortedCredentials(c.MIR.Rewards) {
		stake, err := cred.Utxorpc()
		if err != nil {
			return nil, err
		}
		delta, err := c.MIR.Rewards[cred].AsInt64()
		if err != nil {
			return nil, err
		}
		ret.To = append(ret.To, &utxorpc.MirTarget{
			StakeCredential: stake,
			DeltaCoin:       delta,
		})
	}
	return &utxorpc.Certificate{
		Certificate: &utxorpc.Certificate_MirCert{MirCert: ret},
	}, nil
}

func sortedCredentials[V any](m map[Credential]V) []Credential {
	ret := make([]Credential, 0, len(m))
	for cred := range m {
		ret = append(ret, cred)
	}
	slices.SortFunc(ret, func(a, b Credential) int {
		if a.kind != b.kind {
			return int(a.kind) - int(b.kind)
		}
		return slices.Compare(a.hash[:], b.hash[:])
	})
	return ret
}

// DecodeCertificate decodes any supported certificate
func DecodeCertificate(data []byte) (Certificate, error) {
	ret, err := decodeCertificate(data)
	if err != nil {
		return nil, cbor.WrapDeserialize("Certificate", err)
	}
	return ret, nil
}

func decodeCertificate(data []byte) (Certificate, error) {
	items, err := cbor.DecodeArray(data)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("empty certificate")
	}
	kind, err := cbor.DecodeUint(items[0])
	if err != nil {
		return nil, err
	}
	expectLen := func(n int) error {
		if len(items) != n {
			return cbor.LengthError{
				Type:     CertificateKind(kind).String(),
				Expected: fmt.Sprintf("%d", n),
				Actual:   len(items),
			}
		}
		return nil
	}
	switch CertificateKind(kind) {
	case CertificateKindStakeRegistration, CertificateKindStakeDeregistration:
		if err := expectLen(2); err != nil {
			return nil, err
		}
		var stake Credential
		if err := stake.UnmarshalCBOR(items[1]); err != nil {
			return nil, err
		}
		if CertificateKind(kind) == CertificateKindStakeRegistration {
			return StakeRegistration{Stake: stake}, nil
		}
		return StakeDeregistration{Stake: stake}, nil
	case CertificateKindStakeDelegation:
		if err := expectLen(3); err != nil {
			return nil, err
		}
		var ret StakeDelegation
		if err := ret.Stake.UnmarshalCBOR(items[1]); err != nil {
			return nil, err
		}
		if err := ret.Pool.UnmarshalCBOR(items[2]); err != nil {
			return nil, err
		}
		return ret, nil
	case CertificateKindPoolRegistration:
		var ret PoolRegistration
		if err := ret.Params.fromCborItems(items[1:]); err != nil {
			return nil, err
		}
		return ret, nil
	case CertificateKindPoolRetirement:
		if err := expectLen(3); err != nil {
			return nil, err
		}
		var ret PoolRetirement
		if err := ret.Pool.UnmarshalCBOR(items[1]); err != nil {
			return nil, err
		}
		if ret.Epoch, err = cbor.DecodeUint(items[2]); err != nil {
			return nil, err
		}
		return ret, nil
	case CertificateKindGenesisKeyDelegation:
		if err := expectLen(4); err != nil {
			return nil, err
		}
		var ret GenesisKeyDelegation
		if err := ret.GenesisHash.UnmarshalCBOR(items[1]); err != nil {
			return nil, err
		}
		if err := ret.GenesisDelegateHash.UnmarshalCBOR(items[2]); err != nil {
			return nil, err
		}
		if err := ret.VRFKeyHash.UnmarshalCBOR(items[3]); err != nil {
			return nil, err
		}
		return ret, nil
	case CertificateKindMoveInstantaneousRewards:
		if err := expectLen(2); err != nil {
			return nil, err
		}
		var ret MoveInstantaneousRewardsCert
		if err := ret.MIR.UnmarshalCBOR(items[1]); err != nil {
			return nil, err
		}
		return ret, nil
	default:
		return nil, fmt.Errorf("unsupported certificate type %d", kind)
	}
}

// Certificates is the certificate list of a transaction body
type Certificates struct {
	items  []Certificate
	tagged bool
}

func NewCertificates(certs ...Certificate) Certificates {
	return Certificates{items: certs}
}

func (c Certificates) Len() int {
	return len(c.items)
}

// Get returns the certificate at index, panicking when it is out of range like a slice does
func (c Certificates) Get(index int) Certificate {
	return c.items[index]
}

func (c *Certificates) Add(cert Certificate) {
	c.items = append(c.items, cert)
}

func (c Certificates) Items() []Certificate {
	return c.items
}

func (c Certificates) MarshalCBOR() ([]byte, error) {
	return encodeSet(c.items, c.tagged)
}

func (c *Certificates) UnmarshalCBOR(data []byte) error {
	var items []Certificate
	tagged, err := decodeSet(data, func(item cbor.RawMessage) error {
		cert, err := DecodeCertificate(item)
		if err != nil {
			return err
		}
		items = append(items, cert)
		return nil
	})
	if err != nil {
		return cbor.WrapDeserialize("Certificates", err)
	}
	*c = Certificates{items: items, tagged: tagged}
	return nil
}

func (c Certificates) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}
