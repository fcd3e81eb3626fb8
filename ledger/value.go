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
	"bytes"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/num"
)

const MaxAssetNameLength = 32

// AssetName is a native asset name of at most 32 bytes. It is comparable and can be used as a
// map key.
type AssetName struct {
	name string
}

func NewAssetName(name []byte) (AssetName, error) {
	if len(name) > MaxAssetNameLength {
		return AssetName{}, fmt.Errorf(
			"asset name length was %d bytes, expected at most %d",
			len(name),
			MaxAssetNameLength,
		)
	}
	return AssetName{name: string(name)}, nil
}

func AssetNameFromHex(s string) (AssetName, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return AssetName{}, fmt.Errorf("AssetName: %w: %w", crypto.ErrMalformedEncoding, err)
	}
	return NewAssetName(b)
}

func (a AssetName) Bytes() []byte {
	return []byte(a.name)
}

func (a AssetName) String() string {
	return hex.EncodeToString([]byte(a.name))
}

func (a AssetName) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeBytes([]byte(a.name)), nil
}

func (a *AssetName) UnmarshalCBOR(data []byte) error {
	b, err := cbor.DecodeBytes(data)
	if err != nil {
		return cbor.WrapDeserialize("AssetName", err)
	}
	tmp, err := NewAssetName(b)
	if err != nil {
		return cbor.WrapDeserialize("AssetName", err)
	}
	*a = tmp
	return nil
}

func (a AssetName) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AssetName) UnmarshalText(text []byte) error {
	tmp, err := AssetNameFromHex(string(text))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

// compareAssetNames orders names the way their CBOR encodings sort: shorter names first
func compareAssetNames(a, b AssetName) int {
	if len(a.name) != len(b.name) {
		return len(a.name) - len(b.name)
	}
	return bytes.Compare([]byte(a.name), []byte(b.name))
}

// AssetFingerprint returns the CIP-14 fingerprint of an asset
func AssetFingerprint(policy crypto.PolicyID, name AssetName) string {
	preimage := append(policy.Bytes(), name.Bytes()...)
	ret, err := crypto.EncodeBech32("asset", crypto.Blake2b160(preimage))
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding asset fingerprint: %s", err))
	}
	return ret
}

// Assets maps asset names to quantities under a single policy
type Assets map[AssetName]num.BigNum

func (a Assets) Len() int {
	return len(a)
}

// Insert sets the quantity for name, returning the previous quantity if there was one
func (a Assets) Insert(name AssetName, quantity num.BigNum) (num.BigNum, bool) {
	prev, ok := a[name]
	a[name] = quantity
	return prev, ok
}

func (a Assets) Get(name AssetName) (num.BigNum, bool) {
	ret, ok := a[name]
	return ret, ok
}

// Keys returns the asset names in canonical order
func (a Assets) Keys() []AssetName {
	return slices.SortedFunc(maps.Keys(a), compareAssetNames)
}

func (a Assets) MarshalCBOR() ([]byte, error) {
	entries := make([]cbor.MapEntry, 0, len(a))
	for name, quantity := range a {
		entries = append(entries, cbor.MapEntry{
			Key:   cbor.EncodeBytes(name.Bytes()),
			Value: cbor.EncodeUint(quantity.Uint64()),
		})
	}
	return cbor.EncodeMap(entries)
}

func (a *Assets) UnmarshalCBOR(data []byte) error {
	entries, err := cbor.DecodeMapEntries(data)
	if err != nil {
		return cbor.WrapDeserialize("Assets", err)
	}
	ret := make(Assets, len(entries))
	for _, entry := range entries {
		var name AssetName
		if err := name.UnmarshalCBOR(entry.Key); err != nil {
			return cbor.WrapDeserialize("Assets", err)
		}
		quantity, err := cbor.DecodeUint(entry.Value)
		if err != nil {
			return cbor.WrapDeserialize("Assets", cbor.WrapDeserialize(name.String(), err))
		}
		ret[name] = num.BigNum(quantity)
	}
	*a = ret
	return nil
}

// MultiAsset maps minting policies to the assets held under them
type MultiAsset map[crypto.PolicyID]Assets

func (m MultiAsset) Len() int {
	return len(m)
}

// Insert sets the assets for policy, returning the previous ones if there were any
func (m MultiAsset) Insert(policy crypto.PolicyID, assets Assets) (Assets, bool) {
	prev, ok := m[policy]
	m[policy] = assets
	return prev, ok
}

func (m MultiAsset) Get(policy crypto.PolicyID) (Assets, bool) {
	ret, ok := m[policy]
	return ret, ok
}

// Keys returns the policies in canonical order
func (m MultiAsset) Keys() []crypto.PolicyID {
	return slices.SortedFunc(maps.Keys(m), crypto.PolicyID.Compare)
}

// SetAsset sets a single asset quantity, returning the previous quantity if there was one
func (m MultiAsset) SetAsset(
	policy crypto.PolicyID,
	name AssetName,
	quantity num.BigNum,
) (num.BigNum, bool) {
	assets, ok := m[policy]
	if !ok {
		assets = Assets{}
		m[policy] = assets
	}
	return assets.Insert(name, quantity)
}

// GetAsset returns the quantity of an asset, which is zero when it is not present
func (m MultiAsset) GetAsset(policy crypto.PolicyID, name AssetName) num.BigNum {
	return m[policy][name]
}

func (m MultiAsset) Clone() MultiAsset {
	if m == nil {
		return nil
	}
	ret := make(MultiAsset, len(m))
	for policy, assets := range m {
		ret[policy] = maps.Clone(assets)
	}
	return ret
}

// normalized returns a copy without zero quantities or empty policies
func (m MultiAsset) normalized() MultiAsset {
	ret := MultiAsset{}
	for policy, assets := range m {
		for name, quantity := range assets {
			if !quantity.IsZero() {
				ret.SetAsset(policy, name, quantity)
			}
		}
	}
	return ret
}

// CheckedAdd returns the sum of both multiassets, failing if any quantity overflows
func (m MultiAsset) CheckedAdd(other MultiAsset) (MultiAsset, error) {
	ret := m.Clone()
	if ret == nil {
		ret = MultiAsset{}
	}
	for policy, assets := range other {
		for name, quantity := range assets {
			sum, err := ret.GetAsset(policy, name).CheckedAdd(quantity)
			if err != nil {
				return nil, fmt.Errorf("asset %s.%s: %w", policy, name, err)
			}
			ret.SetAsset(policy, name, sum)
		}
	}
	return ret.normalized(), nil
}

// Sub subtracts other, clamping every quantity at zero
func (m MultiAsset) Sub(other MultiAsset) MultiAsset {
	ret := m.Clone()
	for policy, assets := range other {
		if _, ok := ret[policy]; !ok {
			continue
		}
		for name, quantity := range assets {
			if current, ok := ret[policy][name]; ok {
				ret[policy][name] = current.ClampedSub(quantity)
			}
		}
	}
	return ret.normalized()
}

// MarshalCBOR encodes the canonical form, which leaves out zero quantities and empty policies
func (m MultiAsset) MarshalCBOR() ([]byte, error) {
	m = m.normalized()
	entries := make([]cbor.MapEntry, 0, len(m))
	for policy, assets := range m {
		assetsCbor, err := assets.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		entries = append(entries, cbor.MapEntry{
			Key:   cbor.EncodeBytes(policy.Bytes()),
			Value: assetsCbor,
		})
	}
	return cbor.EncodeMap(entries)
}

func (m *MultiAsset) UnmarshalCBOR(data []byte) error {
	entries, err := cbor.DecodeMapEntries(data)
	if err != nil {
		return cbor.WrapDeserialize("MultiAsset", err)
	}
	ret := make(MultiAsset, len(entries))
	for _, entry := range entries {
		var policy crypto.PolicyID
		if err := policy.UnmarshalCBOR(entry.Key); err != nil {
			return cbor.WrapDeserialize("MultiAsset", err)
		}
		var assets Assets
		if err := assets.UnmarshalCBOR(entry.Value); err != nil {
			return cbor.WrapDeserialize("MultiAsset", cbor.WrapDeserialize(policy.String(), err))
		}
		ret[policy] = assets
	}
	*m = ret
	return nil
}

// Value is an amount of lovelace plus optional native assets
type Value struct {
	Coin       num.BigNum `json:"coin"`
	MultiAsset MultiAsset `json:"multiasset,omitempty"`
}

func NewValue(coin num.BigNum) Value {
	return Value{Coin: coin}
}

func NewValueFromAssets(multiAsset MultiAsset) Value {
	return Value{MultiAsset: multiAsset}
}

func (v Value) IsZero() bool {
	return v.Coin.IsZero() && !v.HasAssets()
}

func (v Value) HasAssets() bool {
	return len(v.MultiAsset.normalized()) > 0
}

// GetAsset returns the quantity of an asset, which is zero when it is not present
func (v Value) GetAsset(policy crypto.PolicyID, name AssetName) num.BigNum {
	return v.MultiAsset.GetAsset(policy, name)
}

func (v Value) Clone() Value {
	return Value{Coin: v.Coin, MultiAsset: v.MultiAsset.Clone()}
}

func (v Value) CheckedAdd(other Value) (Value, error) {
	coin, err := v.Coin.CheckedAdd(other.Coin)
	if err != nil {
		return Value{}, fmt.Errorf("coin: %w", err)
	}
	ret := Value{Coin: coin}
	if len(v.MultiAsset) > 0 || len(other.MultiAsset) > 0 {
		ma, err := v.MultiAsset.CheckedAdd(other.MultiAsset)
		if err != nil {
			return Value{}, err
		}
		if len(ma) > 0 {
			ret.MultiAsset = ma
		}
	}
	return ret, nil
}

// CheckedSub subtracts other, failing if the coin or any asset quantity would go negative
func (v Value) CheckedSub(other Value) (Value, error) {
	coin, err := v.Coin.CheckedSub(other.Coin)
	if err != nil {
		return Value{}, fmt.Errorf("coin: %w", err)
	}
	for policy, assets := range other.MultiAsset {
		for name, quantity := range assets {
			if _, err := v.GetAsset(policy, name).CheckedSub(quantity); err != nil {
				return Value{}, fmt.Errorf("asset %s.%s: %w", policy, name, err)
			}
		}
	}
	ret := Value{Coin: coin}
	if ma := v.MultiAsset.Sub(other.MultiAsset); len(ma) > 0 {
		ret.MultiAsset = ma
	}
	return ret, nil
}

// ClampedSub subtracts other, clamping the coin and every asset quantity at zero
func (v Value) ClampedSub(other Value) Value {
	ret := Value{Coin: v.Coin.ClampedSub(other.Coin)}
	if ma := v.MultiAsset.Sub(other.MultiAsset); len(ma) > 0 {
		ret.MultiAsset = ma
	}
	return ret
}

// Compare orders values when one is componentwise at least the other. The second return value
// is false when the values are not comparable.
func (v Value) Compare(other Value) (int, bool) {
	sign := v.Coin.Compare(other.Coin)
	ok := true
	merge := func(c int) {
		switch {
		case c == 0:
		case sign == 0:
			sign = c
		case sign != c:
			ok = false
		}
	}
	for policy, assets := range v.MultiAsset {
		for name, quantity := range assets {
			merge(quantity.Compare(other.GetAsset(policy, name)))
		}
	}
	for policy, assets := range other.MultiAsset {
		for name, quantity := range assets {
			if _, found := v.MultiAsset[policy][name]; !found {
				merge(num.BigNum(0).Compare(quantity))
			}
		}
	}
	if !ok {
		return 0, false
	}
	return sign, true
}

// MarshalCBOR encodes a bare coin when no asset has a non-zero quantity
func (v Value) MarshalCBOR() ([]byte, error) {
	if !v.HasAssets() {
		return cbor.EncodeUint(v.Coin.Uint64()), nil
	}
	ma, err := v.MultiAsset.MarshalCBOR()
	if err != nil {
		return nil, err
	}
	return cbor.EncodeArray(
		[]cbor.RawMessage{cbor.EncodeUint(v.Coin.Uint64()), ma},
		false,
	), nil
}

func (v *Value) UnmarshalCBOR(data []byte) error {
	t, err := cbor.MajorType(data)
	if err != nil {
		return cbor.WrapDeserialize("Value", err)
	}
	if t == cbor.MajorTypeUint {
		coin, err := cbor.DecodeUint(data)
		if err != nil {
			return cbor.WrapDeserialize("Value", err)
		}
		*v = Value{Coin: num.BigNum(coin)}
		return nil
	}
	items, err := cbor.DecodeArrayLen(data, "Value", 2, 2)
	if err != nil {
		return cbor.WrapDeserialize("Value", err)
	}
	coin, err := cbor.DecodeUint(items[0])
	if err != nil {
		return cbor.WrapDeserialize("Value", cbor.WrapDeserialize("coin", err))
	}
	var ma MultiAsset
	if err := ma.UnmarshalCBOR(items[1]); err != nil {
		return cbor.WrapDeserialize("Value", err)
	}
	*v = Value{Coin: num.BigNum(coin), MultiAsset: ma}
	return nil
}

// MintAssets maps asset names to signed quantities: positive to mint, negative to burn
type MintAssets map[AssetName]num.Int

func (a MintAssets) Len() int {
	return len(a)
}

// Insert sets the amount for name, returning the previous amount if there was one. Zero amounts
// are not allowed in a mint.
func (a MintAssets) Insert(name AssetName, amount num.Int) (num.Int, bool, error) {
	if amount.IsZero() {
		return num.Int{}, false, fmt.Errorf("mint amount for %s must not be zero", name)
	}
	prev, ok := a[name]
	a[name] = amount
	return prev, ok, nil
}

func (a MintAssets) Get(name AssetName) (num.Int, bool) {
	ret, ok := a[name]
	return ret, ok
}

func (a MintAssets) Keys() []AssetName {
	return slices.SortedFunc(maps.Keys(a), compareAssetNames)
}

func (a MintAssets) MarshalCBOR() ([]byte, error) {
	entries := make([]cbor.MapEntry, 0, len(a))
	for name, amount := range a {
		amountCbor, err := amount.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		entries = append(entries, cbor.MapEntry{
			Key:   cbor.EncodeBytes(name.Bytes()),
			Value: amountCbor,
		})
	}
	return cbor.EncodeMap(entries)
}

func (a *MintAssets) UnmarshalCBOR(data []byte) error {
	entries, err := cbor.DecodeMapEntries(data)
	if err != nil {
		return cbor.WrapDeserialize("MintAssets", err)
	}
	ret := make(MintAssets, len(entries))
	for _, entry := range entries {
		var name AssetName
		if err := name.UnmarshalCBOR(entry.Key); err != nil {
			return cbor.WrapDeserialize("MintAssets", err)
		}
		var amount num.Int
		if err := amount.UnmarshalCBOR(entry.Value); err != nil {
			return cbor.WrapDeserialize("MintAssets", cbor.WrapDeserialize(name.String(), err))
		}
		ret[name] = amount
	}
	*a = ret
	return nil
}

// Mint maps minting policies to the assets minted or burned under them
type Mint map[crypto.PolicyID]MintAssets

func (m Mint) Len() int {
	return len(m)
}

func (m Mint) Insert(policy crypto.PolicyID, assets MintAssets) (MintAssets, bool) {
	prev, ok := m[policy]
	m[policy] = assets
	return prev, ok
}

func (m Mint) Get(policy crypto.PolicyID) (MintAssets, bool) {
	ret, ok := m[policy]
	return ret, ok
}

func (m Mint) Keys() []crypto.PolicyID {
	return slices.SortedFunc(maps.Keys(m), crypto.PolicyID.Compare)
}

func (m Mint) asMultiAsset(positive bool) MultiAsset {
	ret := MultiAsset{}
	for policy, assets := range m {
		for name, amount := range assets {
			var quantity num.BigNum
			var ok bool
			if positive {
				quantity, ok = amount.AsPositive()
			} else {
				quantity, ok = amount.AsNegative()
			}
			if ok && !quantity.IsZero() {
				ret.SetAsset(policy, name, quantity)
			}
		}
	}
	return ret
}

// AsPositiveMultiAsset returns the minted assets
func (m Mint) AsPositiveMultiAsset() MultiAsset {
	return m.asMultiAsset(true)
}

// AsNegativeMultiAsset returns the burned assets, as positive quantities
func (m Mint) AsNegativeMultiAsset() MultiAsset {
	return m.asMultiAsset(false)
}

func (m Mint) MarshalCBOR() ([]byte, error) {
	entries := make([]cbor.MapEntry, 0, len(m))
	for policy, assets := range m {
		assetsCbor, err := assets.MarshalCBOR()
		if err != nil {
			return nil, err
		}
		entries = append(entries, cbor.MapEntry{
			Key:   cbor.EncodeBytes(policy.Bytes()),
			Value: assetsCbor,
		})
	}
	return cbor.EncodeMap(entries)
}

func (m *Mint) UnmarshalCBOR(data []byte) error {
	entries, err := cbor.DecodeMapEntries(data)
	if err != nil {
		return cbor.WrapDeserialize("Mint", err)
	}
	ret := make(Mint, len(entries))
	for _, entry := range entries {
		var policy crypto.PolicyID
		if err := policy.UnmarshalCBOR(entry.Key); err != nil {
			return cbor.WrapDeserialize("Mint", err)
		}
		var assets MintAssets
		if err := assets.UnmarshalCBOR(entry.Value); err != nil {
			return cbor.WrapDeserialize("Mint", cbor.WrapDeserialize(policy.String(), err))
		}
		ret[policy] = assets
	}
	*m = ret
	return nil
}
