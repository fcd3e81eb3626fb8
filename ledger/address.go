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
	"hash/crc32"
	"slices"
	"strings"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/sha3"
)

const (
	AddressHeaderTypeMask    = 0xF0
	AddressHeaderNetworkMask = 0x0F
	AddressHashSize          = crypto.Blake2b224Size

	AddressNetworkTestnet = 0
	AddressNetworkMainnet = 1

	AddressTypeKeyKey        = 0b0000
	AddressTypeScriptKey     = 0b0001
	AddressTypeKeyScript     = 0b0010
	AddressTypeScriptScript  = 0b0011
	AddressTypeKeyPointer    = 0b0100
	AddressTypeScriptPointer = 0b0101
	AddressTypeKeyNone       = 0b0110
	AddressTypeScriptNone    = 0b0111
	AddressTypeByron         = 0b1000
	AddressTypeNoneKey       = 0b1110
	AddressTypeNoneScript    = 0b1111

	ByronAddressTypePubkey = 0
	ByronAddressTypeScript = 1
	ByronAddressTypeRedeem = 2

	// Byron addresses for this protocol magic carry no network attribute
	ByronMainnetProtocolMagic = 764824073
)

// Bech32 prefixes for Shelley addresses
const (
	AddressPrefixMainnet      = "addr"
	AddressPrefixTestnet      = "addr_test"
	StakeAddressPrefixMainnet = "stake"
	StakeAddressPrefixTestnet = "stake_test"
)

type AddressKind uint8

const (
	AddressKindBase AddressKind = iota
	AddressKindPointer
	AddressKindEnterprise
	AddressKindReward
	AddressKindByron
)

func (k AddressKind) String() string {
	switch k {
	case AddressKindBase:
		return "Base"
	case AddressKindPointer:
		return "Pointer"
	case AddressKindEnterprise:
		return "Enterprise"
	case AddressKindReward:
		return "Reward"
	case AddressKindByron:
		return "Byron"
	default:
		return fmt.Sprintf("AddressKind(%d)", uint8(k))
	}
}

// Address is one of BaseAddress, PointerAddress, EnterpriseAddress, RewardAddress or
// ByronAddress
type Address interface {
	isAddress()
	Kind() AddressKind
	NetworkID() uint8
	// Bytes returns the raw address bytes as they appear inside transaction outputs
	Bytes() []byte
	// String returns the bech32 form, or base58 for Byron addresses
	String() string
}

// PaymentCredential returns the payment credential of addresses that have one
func PaymentCredential(a Address) (Credential, bool) {
	switch addr := a.(type) {
	case BaseAddress:
		return addr.Payment, true
	case EnterpriseAddress:
		return addr.Payment, true
	case PointerAddress:
		return addr.Payment, true
	default:
		return Credential{}, false
	}
}

func shelleyHeader(addrType uint8, network uint8) byte {
	return (addrType << 4) | (network & AddressHeaderNetworkMask)
}

func shelleyBech32(data []byte, network uint8, stake bool) string {
	prefix := AddressPrefixTestnet
	switch {
	case stake && network == AddressNetworkMainnet:
		prefix = StakeAddressPrefixMainnet
	case stake:
		prefix = StakeAddressPrefixTestnet
	case network == AddressNetworkMainnet:
		prefix = AddressPrefixMainnet
	}
	ret, err := crypto.EncodeBech32(prefix, data)
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding address as bech32: %s", err))
	}
	return ret
}

func credentialTypeBit(c Credential) uint8 {
	if c.kind == CredentialKindScriptHash {
		return 1
	}
	return 0
}

// BaseAddress carries a payment credential and a stake credential
type BaseAddress struct {
	Network uint8
	Payment Credential
	Stake   Credential
}

func NewBaseAddress(network uint8, payment Credential, stake Credential) BaseAddress {
	return BaseAddress{Network: network, Payment: payment, Stake: stake}
}

func (BaseAddress) isAddress() {}

func (BaseAddress) Kind() AddressKind { return AddressKindBase }

func (a BaseAddress) NetworkID() uint8 { return a.Network }

func (a BaseAddress) Bytes() []byte {
	addrType := credentialTypeBit(a.Payment) | credentialTypeBit(a.Stake)<<1
	ret := make([]byte, 0, 1+2*AddressHashSize)
	ret = append(ret, shelleyHeader(addrType, a.Network))
	ret = append(ret, a.Payment.hash[:]...)
	return append(ret, a.Stake.hash[:]...)
}

func (a BaseAddress) String() string {
	return shelleyBech32(a.Bytes(), a.Network, false)
}

func (a BaseAddress) MarshalCBOR() ([]byte, error) { return cbor.EncodeBytes(a.Bytes()), nil }

func (a BaseAddress) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }

// EnterpriseAddress carries only a payment credential
type EnterpriseAddress struct {
	Network uint8
	Payment Credential
}

func NewEnterpriseAddress(network uint8, payment Credential) EnterpriseAddress {
	return EnterpriseAddress{Network: network, Payment: payment}
}

func (EnterpriseAddress) isAddress() {}

func (EnterpriseAddress) Kind() AddressKind { return AddressKindEnterprise }

func (a EnterpriseAddress) NetworkID() uint8 { return a.Network }

func (a EnterpriseAddress) Bytes() []byte {
	addrType := AddressTypeKeyNone | credentialTypeBit(a.Payment)
	ret := make([]byte, 0, 1+AddressHashSize)
	ret = append(ret, shelleyHeader(addrType, a.Network))
	return append(ret, a.Payment.hash[:]...)
}

func (a EnterpriseAddress) String() string {
	return shelleyBech32(a.Bytes(), a.Network, false)
}

func (a EnterpriseAddress) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeBytes(a.Bytes()), nil
}

func (a EnterpriseAddress) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }

// Pointer locates a stake registration certificate on chain
type Pointer struct {
	Slot      num.BigNum
	TxIndex   num.BigNum
	CertIndex num.BigNum
}

// PointerAddress carries a payment credential and a pointer to a stake registration
type PointerAddress struct {
	Network uint8
	Payment Credential
	Pointer Pointer
}

func NewPointerAddress(network uint8, payment Credential, pointer Pointer) PointerAddress {
	return PointerAddress{Network: network, Payment: payment, Pointer: pointer}
}

func (PointerAddress) isAddress() {}

func (PointerAddress) Kind() AddressKind { return AddressKindPointer }

func (a PointerAddress) NetworkID() uint8 { return a.Network }

func (a PointerAddress) Bytes() []byte {
	addrType := AddressTypeKeyPointer | credentialTypeBit(a.Payment)
	ret := make([]byte, 0, 1+AddressHashSize+3*10)
	ret = append(ret, shelleyHeader(addrType, a.Network))
	ret = append(ret, a.Payment.hash[:]...)
	ret = appendVarUint(ret, a.Pointer.Slot.Uint64())
	ret = appendVarUint(ret, a.Pointer.TxIndex.Uint64())
	return appendVarUint(ret, a.Pointer.CertIndex.Uint64())
}

func (a PointerAddress) String() string {
	return shelleyBech32(a.Bytes(), a.Network, false)
}

func (a PointerAddress) MarshalCBOR() ([]byte, error) { return cbor.EncodeBytes(a.Bytes()), nil }

func (a PointerAddress) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }

// appendVarUint writes v as big-endian groups of 7 bits, with the high bit set on every group
// but the last
func appendVarUint(buf []byte, v uint64) []byte {
	tmp := []byte{byte(v & 0x7F)}
	v >>= 7
	for v > 0 {
		tmp = append(tmp, byte(v&0x7F)|0x80)
		v >>= 7
	}
	slices.Reverse(tmp)
	return append(buf, tmp...)
}

// readVarUint decodes a value written by appendVarUint and returns the number of bytes consumed
func readVarUint(data []byte) (uint64, int, error) {
	var ret uint64
	for idx, b := range data {
		if ret > (1<<64-1)>>7 {
			return 0, 0, errors.New("pointer value overflows 64 bits")
		}
		ret = (ret << 7) | uint64(b&0x7F)
		if b&0x80 == 0 {
			return ret, idx + 1, nil
		}
	}
	return 0, 0, errors.New("truncated pointer value")
}

// RewardAddress identifies a stake credential's reward account. It is comparable and can be
// used as a map key.
type RewardAddress struct {
	Network uint8
	Payment Credential
}

func NewRewardAddress(network uint8, stake Credential) RewardAddress {
	return RewardAddress{Network: network, Payment: stake}
}

func (RewardAddress) isAddress() {}

func (RewardAddress) Kind() AddressKind { return AddressKindReward }

func (a RewardAddress) NetworkID() uint8 { return a.Network }

func (a RewardAddress) Bytes() []byte {
	addrType := AddressTypeNoneKey | credentialTypeBit(a.Payment)
	ret := make([]byte, 0, 1+AddressHashSize)
	ret = append(ret, shelleyHeader(addrType, a.Network))
	return append(ret, a.Payment.hash[:]...)
}

func (a RewardAddress) String() string {
	return shelleyBech32(a.Bytes(), a.Network, true)
}

func (a RewardAddress) MarshalCBOR() ([]byte, error) { return cbor.EncodeBytes(a.Bytes()), nil }

func (a *RewardAddress) UnmarshalCBOR(data []byte) error {
	b, err := cbor.DecodeBytes(data)
	if err != nil {
		return cbor.WrapDeserialize("RewardAddress", err)
	}
	addr, err := AddressFromBytes(b)
	if err != nil {
		return cbor.WrapDeserialize("RewardAddress", err)
	}
	reward, ok := addr.(RewardAddress)
	if !ok {
		return cbor.WrapDeserialize(
			"RewardAddress",
			AddressError{Reason: fmt.Sprintf("expected reward address, found %s", addr.Kind())},
		)
	}
	*a = reward
	return nil
}

func (a RewardAddress) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }

func (a *RewardAddress) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	addr, err := AddressFromBech32(s)
	if err != nil {
		return err
	}
	reward, ok := addr.(RewardAddress)
	if !ok {
		return AddressError{Reason: fmt.Sprintf("expected reward address, found %s", addr.Kind())}
	}
	*a = reward
	return nil
}

// ByronAddressAttributes are the optional attributes of a Byron address
type ByronAddressAttributes struct {
	// Encrypted HD derivation path, only present on legacy Daedalus addresses
	DerivationPath []byte
	// Absent on mainnet addresses
	ProtocolMagic *uint32
}

func (a ByronAddressAttributes) MarshalCBOR() ([]byte, error) {
	entries := make([]cbor.MapEntry, 0, 2)
	if a.DerivationPath != nil {
		entries = append(entries, cbor.MapEntry{
			Key:   cbor.EncodeUint(1),
			Value: cbor.EncodeBytes(a.DerivationPath),
		})
	}
	if a.ProtocolMagic != nil {
		entries = append(entries, cbor.MapEntry{
			Key:   cbor.EncodeUint(2),
			Value: cbor.EncodeBytes(cbor.EncodeUint(uint64(*a.ProtocolMagic))),
		})
	}
	return cbor.EncodeMap(entries)
}

func (a *ByronAddressAttributes) UnmarshalCBOR(data []byte) error {
	entries, err := cbor.DecodeMapEntries(data)
	if err != nil {
		return cbor.WrapDeserialize("ByronAddressAttributes", err)
	}
	var ret ByronAddressAttributes
	for _, entry := range entries {
		key, err := cbor.DecodeUint(entry.Key)
		if err != nil {
			return cbor.WrapDeserialize("ByronAddressAttributes", err)
		}
		switch key {
		case 1:
			if ret.DerivationPath, err = cbor.DecodeBytes(entry.Value); err != nil {
				return cbor.WrapDeserialize("ByronAddressAttributes", err)
			}
		case 2:
			raw, err := cbor.DecodeBytes(entry.Value)
			if err != nil {
				return cbor.WrapDeserialize("ByronAddressAttributes", err)
			}
			magic, err := cbor.DecodeUint(raw)
			if err != nil || magic > 0xFFFFFFFF {
				return cbor.WrapDeserialize(
					"ByronAddressAttributes",
					fmt.Errorf("invalid protocol magic attribute %x", raw),
				)
			}
			tmp := uint32(magic)
			ret.ProtocolMagic = &tmp
		}
	}
	*a = ret
	return nil
}

// ByronAddress is a legacy bootstrap era address. The original bytes are kept so that addresses
// with non-canonical attributes survive a round trip.
type ByronAddress struct {
	root     [AddressHashSize]byte
	attrs    ByronAddressAttributes
	addrType uint64
	raw      []byte
}

// NewByronAddress builds a Byron address from its root hash, attributes and address type
func NewByronAddress(
	root []byte,
	attrs ByronAddressAttributes,
	addrType uint64,
) (ByronAddress, error) {
	if len(root) != AddressHashSize {
		return ByronAddress{}, crypto.WrongLengthError{
			Type:     "ByronAddress root",
			Expected: AddressHashSize,
			Actual:   len(root),
		}
	}
	ret := ByronAddress{attrs: attrs, addrType: addrType}
	copy(ret.root[:], root)
	return ret, nil
}

// NewIcarusByronAddress derives the Byron address that an Icarus style wallet uses for key
func NewIcarusByronAddress(key crypto.Bip32PublicKey, protocolMagic uint32) ByronAddress {
	var attrs ByronAddressAttributes
	if protocolMagic != ByronMainnetProtocolMagic {
		attrs.ProtocolMagic = &protocolMagic
	}
	attrsCbor, _ := attrs.MarshalCBOR()
	spendingData := cbor.EncodeArray(
		[]cbor.RawMessage{
			cbor.EncodeUint(ByronAddressTypePubkey),
			cbor.EncodeBytes(key.Bytes()),
		},
		false,
	)
	addrRoot := cbor.EncodeArray(
		[]cbor.RawMessage{
			cbor.EncodeUint(ByronAddressTypePubkey),
			spendingData,
			attrsCbor,
		},
		false,
	)
	sha3Sum := sha3.Sum256(addrRoot)
	ret := ByronAddress{attrs: attrs, addrType: ByronAddressTypePubkey}
	copy(ret.root[:], crypto.Blake2b224(sha3Sum[:]))
	return ret
}

func (ByronAddress) isAddress() {}

func (ByronAddress) Kind() AddressKind { return AddressKindByron }

// NetworkID is mainnet unless the address carries a non-mainnet protocol magic
func (a ByronAddress) NetworkID() uint8 {
	if a.attrs.ProtocolMagic == nil || *a.attrs.ProtocolMagic == ByronMainnetProtocolMagic {
		return AddressNetworkMainnet
	}
	return AddressNetworkTestnet
}

// ProtocolMagic returns the protocol magic attribute, defaulting to the mainnet magic
func (a ByronAddress) ProtocolMagic() uint32 {
	if a.attrs.ProtocolMagic == nil {
		return ByronMainnetProtocolMagic
	}
	return *a.attrs.ProtocolMagic
}

func (a ByronAddress) Root() []byte {
	return append([]byte(nil), a.root[:]...)
}

func (a ByronAddress) Attributes() ByronAddressAttributes {
	return a.attrs
}

func (a ByronAddress) AddressType() uint64 {
	return a.addrType
}

func (a ByronAddress) payload() []byte {
	attrsCbor, _ := a.attrs.MarshalCBOR()
	return cbor.EncodeArray(
		[]cbor.RawMessage{
			cbor.EncodeBytes(a.root[:]),
			attrsCbor,
			cbor.EncodeUint(a.addrType),
		},
		false,
	)
}

func (a ByronAddress) Bytes() []byte {
	if a.raw != nil {
		return append([]byte(nil), a.raw...)
	}
	payload := a.payload()
	return cbor.EncodeArray(
		[]cbor.RawMessage{
			cbor.EncodeWrapped(payload),
			cbor.EncodeUint(uint64(crc32.ChecksumIEEE(payload))),
		},
		false,
	)
}

func (a ByronAddress) ToBase58() string {
	return base58.Encode(a.Bytes())
}

func (a ByronAddress) String() string {
	return a.ToBase58()
}

func (a ByronAddress) MarshalCBOR() ([]byte, error) { return cbor.EncodeBytes(a.Bytes()), nil }

func (a ByronAddress) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }

func byronAddressFromBytes(data []byte) (ByronAddress, error) {
	items, err := cbor.DecodeArrayLen(data, "ByronAddress", 2, 2)
	if err != nil {
		return ByronAddress{}, err
	}
	payload, err := cbor.DecodeWrapped(items[0])
	if err != nil {
		return ByronAddress{}, err
	}
	checksum, err := cbor.DecodeUint(items[1])
	if err != nil {
		return ByronAddress{}, err
	}
	if checksum != uint64(crc32.ChecksumIEEE(payload)) {
		return ByronAddress{}, errors.New("checksum does not match")
	}
	payloadItems, err := cbor.DecodeArrayLen(payload, "ByronAddress payload", 3, 3)
	if err != nil {
		return ByronAddress{}, err
	}
	root, err := cbor.DecodeBytes(payloadItems[0])
	if err != nil {
		return ByronAddress{}, err
	}
	var attrs ByronAddressAttributes
	if err := attrs.UnmarshalCBOR(payloadItems[1]); err != nil {
		return ByronAddress{}, err
	}
	addrType, err := cbor.DecodeUint(payloadItems[2])
	if err != nil {
		return ByronAddress{}, err
	}
	ret, err := NewByronAddress(root, attrs, addrType)
	if err != nil {
		return ByronAddress{}, err
	}
	ret.raw = append([]byte(nil), data...)
	return ret, nil
}

// ByronAddressFromBase58 parses the usual string form of a Byron address
func ByronAddressFromBase58(s string) (ByronAddress, error) {
	data := base58.Decode(s)
	if len(data) == 0 {
		return ByronAddress{}, AddressError{Reason: "invalid base58 string"}
	}
	ret, err := byronAddressFromBytes(data)
	if err != nil {
		return ByronAddress{}, AddressError{Reason: "malformed Byron address", Err: err}
	}
	return ret, nil
}

// IsValidByronAddress reports whether s is a well formed base58 Byron address
func IsValidByronAddress(s string) bool {
	_, err := ByronAddressFromBase58(s)
	return err == nil
}

func credentialAt(data []byte, offset int, script bool) (Credential, error) {
	if len(data) < offset+AddressHashSize {
		return Credential{}, fmt.Errorf(
			"address too short: %d bytes, need at least %d",
			len(data),
			offset+AddressHashSize,
		)
	}
	kind := CredentialKindKeyHash
	if script {
		kind = CredentialKindScriptHash
	}
	return credentialFromBytes(kind, data[offset:offset+AddressHashSize])
}

// AddressFromBytes decodes raw address bytes of any kind
func AddressFromBytes(data []byte) (Address, error) {
	if len(data) == 0 {
		return nil, AddressError{Reason: "empty address"}
	}
	header := data[0]
	addrType := (header & AddressHeaderTypeMask) >> 4
	network := header & AddressHeaderNetworkMask
	var ret Address
	var consumed int
	switch addrType {
	case AddressTypeKeyKey, AddressTypeScriptKey, AddressTypeKeyScript, AddressTypeScriptScript:
		payment, err := credentialAt(data, 1, addrType&0b0001 != 0)
		if err != nil {
			return nil, AddressError{Reason: "base address", Err: err}
		}
		stake, err := credentialAt(data, 1+AddressHashSize, addrType&0b0010 != 0)
		if err != nil {
			return nil, AddressError{Reason: "base address", Err: err}
		}
		ret = BaseAddress{Network: network, Payment: payment, Stake: stake}
		consumed = 1 + 2*AddressHashSize
	case AddressTypeKeyPointer, AddressTypeScriptPointer:
		payment, err := credentialAt(data, 1, addrType&0b0001 != 0)
		if err != nil {
			return nil, AddressError{Reason: "pointer address", Err: err}
		}
		consumed = 1 + AddressHashSize
		var values [3]uint64
		for idx := range values {
			v, n, err := readVarUint(data[consumed:])
			if err != nil {
				return nil, AddressError{Reason: "pointer address", Err: err}
			}
			values[idx] = v
			consumed += n
		}
		ret = PointerAddress{
			Network: network,
			Payment: payment,
			Pointer: Pointer{
				Slot:      num.BigNum(values[0]),
				TxIndex:   num.BigNum(values[1]),
				CertIndex: num.BigNum(values[2]),
			},
		}
	case AddressTypeKeyNone, AddressTypeScriptNone:
		payment, err := credentialAt(data, 1, addrType&0b0001 != 0)
		if err != nil {
			return nil, AddressError{Reason: "enterprise address", Err: err}
		}
		ret = EnterpriseAddress{Network: network, Payment: payment}
		consumed = 1 + AddressHashSize
	case AddressTypeNoneKey, AddressTypeNoneScript:
		stake, err := credentialAt(data, 1, addrType&0b0001 != 0)
		if err != nil {
			return nil, AddressError{Reason: "reward address", Err: err}
		}
		ret = RewardAddress{Network: network, Payment: stake}
		consumed = 1 + AddressHashSize
	case AddressTypeByron:
		byron, err := byronAddressFromBytes(data)
		if err != nil {
			return nil, AddressError{Reason: "malformed Byron address", Err: err}
		}
		return byron, nil
	default:
		return nil, AddressError{Reason: fmt.Sprintf("unknown address type %d", addrType)}
	}
	if consumed != len(data) {
		return nil, AddressError{
			Reason: fmt.Sprintf("%d trailing bytes after %s address", len(data)-consumed, ret.Kind()),
		}
	}
	return ret, nil
}

// AddressFromHex decodes hex encoded raw address bytes
func AddressFromHex(s string) (Address, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, AddressError{Reason: "invalid hex", Err: err}
	}
	return AddressFromBytes(data)
}

// AddressFromBech32 decodes a Shelley address. The prefix must match the kind of address, but
// the network in the header is not checked against it.
func AddressFromBech32(s string) (Address, error) {
	hrp, data, err := crypto.DecodeBech32(s)
	if err != nil {
		return nil, AddressError{Reason: "invalid bech32", Err: err}
	}
	addr, err := AddressFromBytes(data)
	if err != nil {
		return nil, err
	}
	stakePrefix := strings.HasPrefix(hrp, StakeAddressPrefixMainnet)
	switch {
	case addr.Kind() == AddressKindByron:
		return nil, AddressError{Reason: "Byron addresses have no bech32 form"}
	case addr.Kind() == AddressKindReward && !stakePrefix:
		return nil, AddressError{Reason: fmt.Sprintf("unexpected prefix %q for reward address", hrp)}
	case addr.Kind() != AddressKindReward && stakePrefix:
		return nil, AddressError{Reason: fmt.Sprintf("unexpected prefix %q for %s address", hrp, addr.Kind())}
	}
	return addr, nil
}

// AddressFromString parses a bech32 Shelley address or a base58 Byron address. Lowercase
// strings are tried as bech32 first.
func AddressFromString(s string) (Address, error) {
	if strings.ToLower(s) == s {
		addr, err := AddressFromBech32(s)
		if err == nil {
			return addr, nil
		}
		if strings.HasPrefix(s, AddressPrefixMainnet) ||
			strings.HasPrefix(s, StakeAddressPrefixMainnet) {
			return nil, err
		}
	}
	return ByronAddressFromBase58(s)
}

// encodeAddress encodes an address as it appears in transaction outputs
func encodeAddress(a Address) []byte {
	return cbor.EncodeBytes(a.Bytes())
}

func decodeAddress(data []byte) (Address, error) {
	b, err := cbor.DecodeBytes(data)
	if err != nil {
		return nil, cbor.WrapDeserialize("Address", err)
	}
	addr, err := AddressFromBytes(b)
	if err != nil {
		return nil, cbor.WrapDeserialize("Address", err)
	}
	return addr, nil
}
