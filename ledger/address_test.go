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

package ledger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/internal/test"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressFromBytes(t *testing.T) {
	testDefs := []struct {
		addressBytesHex string
		expectedAddress string
		expectedKind    ledger.AddressKind
		expectedNetwork uint8
	}{
		{
			addressBytesHex: "11e1317b152faac13426e6a83e06ff88a4d62cce3c1634ab0a5ec1330952563c5410bff6a0d43ccebb7c37e1f69f5eb260552521adff33b9c2",
			expectedAddress: "addr1z8snz7c4974vzdpxu65ruphl3zjdvtxw8strf2c2tmqnxz2j2c79gy9l76sdg0xwhd7r0c0kna0tycz4y5s6mlenh8pq0xmsha",
			expectedKind:    ledger.AddressKindBase,
			expectedNetwork: 1,
		},
		{
			addressBytesHex: "013f35615835258addded1c2e169f3a2ab4ae94d606bde030e7947f5184ff5f8e3d43ce6b19ec4197e331e86d0f5e58b02d7a75b5e74cff95d",
			expectedAddress: "addr1qyln2c2cx5jc4hw768pwz60n5245462dvp4auqcw09rl2xz07huw84puu6cea3qe0ce3apks7hjckqkh5ad4uax0l9ws0q9xty",
			expectedKind:    ledger.AddressKindBase,
			expectedNetwork: 1,
		},
		{
			addressBytesHex: "7121bd8c2e0df2fbe92137f78dbaba48f62308e52303049f0d628b6c4c",
			expectedAddress: "addr1wysmmrpwphe0h6fpxlmcmw46frmzxz89yvpsf8cdv29kcnqsw3vw6",
			expectedKind:    ledger.AddressKindEnterprise,
			expectedNetwork: 1,
		},
		{
			addressBytesHex: "61cfe224295a282d69edda5fa8de4f131e2b9cd21a6c9235597fa4ff6b",
			expectedAddress: "addr1v887yfpftg5z660dmf063hj0zv0zh8xjrfkfyd2e07j076cecha5k",
			expectedKind:    ledger.AddressKindEnterprise,
			expectedNetwork: 1,
		},
		// Byron address, mainnet with derivation path
		{
			addressBytesHex: "82d818584283581caf56de241bcca83d72c51e74d18487aa5bc68b45e2caa170fa329d3aa101581e581cea1425ccdd649b25af5deb7e6335da2eb8167353a55e77925122e95f001a3a858621",
			expectedAddress: "DdzFFzCqrht2ii4Vc7KRchSkVvQtCqdGkQt4nF4Yxg1NpsubFBity2Tpt2eSEGrxBH1eva8qCFKM2Y5QkwM1SFBizRwZgz1N452WYvgG",
			expectedKind:    ledger.AddressKindByron,
			expectedNetwork: 1,
		},
		// Byron address, preview
		{
			addressBytesHex: "82d818582483581c5d5e698eba3dd9452add99a1af9461beb0ba61b8bece26e7399878dda1024102001a36d41aba",
			expectedAddress: "FHnt4NL7yPXvDWHa8bVs73UEUdJd64VxWXSFNqetECtYfTd9TtJguJ14Lu3feth",
			expectedKind:    ledger.AddressKindByron,
			expectedNetwork: 0,
		},
	}
	for _, testDef := range testDefs {
		addrBytes := test.DecodeHexString(testDef.addressBytesHex)
		addr, err := ledger.AddressFromBytes(addrBytes)
		if err != nil {
			t.Fatalf("failure populating address from bytes: %s", err)
		}
		if addr.String() != testDef.expectedAddress {
			t.Fatalf(
				"address did not match expected value, got: %s, wanted: %s",
				addr.String(),
				testDef.expectedAddress,
			)
		}
		if addr.Kind() != testDef.expectedKind {
			t.Fatalf("address kind was %s, expected %s", addr.Kind(), testDef.expectedKind)
		}
		if addr.NetworkID() != testDef.expectedNetwork {
			t.Fatalf(
				"address network was %d, expected %d",
				addr.NetworkID(),
				testDef.expectedNetwork,
			)
		}
		if !bytes.Equal(addr.Bytes(), addrBytes) {
			t.Fatalf(
				"address bytes did not round-trip, got: %x, wanted: %x",
				addr.Bytes(),
				addrBytes,
			)
		}
		parsed, err := ledger.AddressFromString(testDef.expectedAddress)
		if err != nil {
			t.Fatalf("failure parsing address string: %s", err)
		}
		if !bytes.Equal(parsed.Bytes(), addrBytes) {
			t.Fatalf("parsed address bytes were %x, expected %x", parsed.Bytes(), addrBytes)
		}
	}
}

func TestAddressTrailingBytes(t *testing.T) {
	// Enterprise address with an extra byte after the payment key hash
	_, err := ledger.AddressFromHex(
		"61549b5a20e449a3e394b762705f64b9a26b99013003a2bfdba239967c00",
	)
	if !errors.Is(err, ledger.ErrInvalidAddress) {
		t.Fatalf("expected invalid address error, got: %v", err)
	}
}

func TestAddressFromParts(t *testing.T) {
	paymentHash, err := crypto.Ed25519KeyHashFromHex(
		"3f35615835258addded1c2e169f3a2ab4ae94d606bde030e7947f518",
	)
	require.NoError(t, err)
	stakeHash, err := crypto.Ed25519KeyHashFromHex(
		"4ff5f8e3d43ce6b19ec4197e331e86d0f5e58b02d7a75b5e74cff95d",
	)
	require.NoError(t, err)
	base := ledger.NewBaseAddress(
		1,
		ledger.NewKeyHashCredential(paymentHash),
		ledger.NewKeyHashCredential(stakeHash),
	)
	assert.Equal(
		t,
		"addr1qyln2c2cx5jc4hw768pwz60n5245462dvp4auqcw09rl2xz07huw84puu6cea3qe0ce3apks7hjckqkh5ad4uax0l9ws0q9xty",
		base.String(),
	)
	payment, ok := ledger.PaymentCredential(base)
	require.True(t, ok)
	keyHash, ok := payment.ToKeyHash()
	require.True(t, ok)
	assert.Equal(t, paymentHash, keyHash)
	reward := ledger.NewRewardAddress(0, ledger.NewKeyHashCredential(stakeHash))
	decoded, err := ledger.AddressFromBech32(reward.String())
	require.NoError(t, err)
	assert.Equal(t, ledger.AddressKindReward, decoded.Kind())
	assert.Equal(t, reward.Bytes(), decoded.Bytes())
}

func TestPointerAddressRoundTrip(t *testing.T) {
	paymentHash, err := crypto.Ed25519KeyHashFromHex(
		"3f35615835258addded1c2e169f3a2ab4ae94d606bde030e7947f518",
	)
	require.NoError(t, err)
	testDefs := []ledger.Pointer{
		{Slot: 0, TxIndex: 0, CertIndex: 0},
		{Slot: 127, TxIndex: 128, CertIndex: 3},
		{Slot: num.BigNum(2498243), TxIndex: 27, CertIndex: 3},
		{Slot: num.BigNum(1 << 63), TxIndex: 1, CertIndex: 1},
	}
	for _, pointer := range testDefs {
		addr := ledger.NewPointerAddress(1, ledger.NewKeyHashCredential(paymentHash), pointer)
		decoded, err := ledger.AddressFromBytes(addr.Bytes())
		if err != nil {
			t.Fatalf("failure decoding pointer address: %s", err)
		}
		tmp, ok := decoded.(ledger.PointerAddress)
		if !ok {
			t.Fatalf("decoded address was %T, expected PointerAddress", decoded)
		}
		if tmp.Pointer != pointer {
			t.Fatalf("pointer was %+v, expected %+v", tmp.Pointer, pointer)
		}
	}
}

func TestAddressBech32WrongPrefix(t *testing.T) {
	stakeHash, err := crypto.Ed25519KeyHashFromHex(
		"4ff5f8e3d43ce6b19ec4197e331e86d0f5e58b02d7a75b5e74cff95d",
	)
	require.NoError(t, err)
	enterprise := ledger.NewEnterpriseAddress(1, ledger.NewKeyHashCredential(stakeHash))
	encoded, err := crypto.EncodeBech32("stake", enterprise.Bytes())
	require.NoError(t, err)
	_, err = ledger.AddressFromBech32(encoded)
	assert.ErrorIs(t, err, ledger.ErrInvalidAddress)
}

func TestIcarusByronAddress(t *testing.T) {
	root := crypto.Bip32PrivateKeyFromBip39Entropy(
		test.DecodeHexString("46e62370a138a182a498b8e2885bc032379ddf38"),
		nil,
	)
	key := root.DerivePath([]uint32{
		crypto.HardenedIndex(44),
		crypto.HardenedIndex(1815),
		crypto.HardenedIndex(0),
		0,
		0,
	})
	addr := ledger.NewIcarusByronAddress(key.ToPublic(), ledger.ByronMainnetProtocolMagic)
	assert.True(t, ledger.IsValidByronAddress(addr.String()))
	decoded, err := ledger.ByronAddressFromBase58(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr.Bytes(), decoded.Bytes())
	assert.Equal(t, uint8(1), decoded.NetworkID())
	testnet := ledger.NewIcarusByronAddress(key.ToPublic(), 1)
	assert.Equal(t, uint32(1), testnet.ProtocolMagic())
	assert.Equal(t, uint8(0), testnet.NetworkID())
}
