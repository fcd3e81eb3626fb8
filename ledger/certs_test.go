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
	"net"
	"testing"

	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/internal/test"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyHash(t *testing.T, hexStr string) crypto.Ed25519KeyHash {
	t.Helper()
	ret, err := crypto.Ed25519KeyHashFromHex(hexStr)
	require.NoError(t, err)
	return ret
}

func TestStakeRegistrationRoundTrip(t *testing.T) {
	keyHash := testKeyHash(t, "4ff5f8e3d43ce6b19ec4197e331e86d0f5e58b02d7a75b5e74cff95d")
	cert := ledger.NewStakeRegistration(ledger.NewKeyHashCredential(keyHash))
	data, err := cert.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(
		t,
		test.DecodeHexString("82008200581c4ff5f8e3d43ce6b19ec4197e331e86d0f5e58b02d7a75b5e74cff95d"),
		data,
	)
	decoded, err := ledger.DecodeCertificate(data)
	require.NoError(t, err)
	assert.Equal(t, ledger.CertificateKindStakeRegistration, decoded.Kind())
	stake, ok := ledger.CertificateStakeCredential(decoded)
	require.True(t, ok)
	decodedHash, ok := stake.ToKeyHash()
	require.True(t, ok)
	assert.Equal(t, keyHash.Bytes(), decodedHash.Bytes())
}

func TestCertificateRoundTrip(t *testing.T) {
	operator := testKeyHash(t, "3f35615835258addded1c2e169f3a2ab4ae94d606bde030e7947f518")
	owner := testKeyHash(t, "4ff5f8e3d43ce6b19ec4197e331e86d0f5e58b02d7a75b5e74cff95d")
	vrfKeyHash, err := crypto.VRFKeyHashFromHex(
		"c2b62ffa92ad18ffc117ea3abeb161a68885000a466f9c71db5e4731d6630061",
	)
	require.NoError(t, err)
	metadataHash, err := crypto.PoolMetadataHashFromHex(
		"0f8b4b5e6f0a3fa94bcfca1d1e0ac1a8aef7d0c42bc0bd22a2abba6fcad7c0d9",
	)
	require.NoError(t, err)
	port := uint16(3001)
	params := ledger.PoolParams{
		Operator:      operator,
		VRFKeyHash:    vrfKeyHash,
		Pledge:        500_000_000,
		Cost:          340_000_000,
		Margin:        num.NewUnitInterval(1, 100),
		RewardAccount: ledger.NewRewardAddress(1, ledger.NewKeyHashCredential(owner)),
		PoolOwners:    []crypto.Ed25519KeyHash{owner},
		Relays: []ledger.Relay{
			ledger.NewSingleHostAddrRelay(&port, net.ParseIP("192.0.2.1"), nil),
			ledger.NewSingleHostNameRelay(&port, "relay.example.com"),
			ledger.NewMultiHostNameRelay("pool.example.com"),
		},
		PoolMetadata: &ledger.PoolMetadata{
			URL:  "https://example.com/pool.json",
			Hash: metadataHash,
		},
	}
	testDefs := []ledger.Certificate{
		ledger.NewStakeDeregistration(ledger.NewKeyHashCredential(owner)),
		ledger.NewStakeDelegation(ledger.NewKeyHashCredential(owner), operator),
		ledger.NewPoolRegistration(params),
		ledger.NewPoolRetirement(operator, 300),
	}
	for _, cert := range testDefs {
		data, err := cert.MarshalCBOR()
		if err != nil {
			t.Fatalf("failure encoding %s: %s", cert.Kind(), err)
		}
		decoded, err := ledger.DecodeCertificate(data)
		if err != nil {
			t.Fatalf("failure decoding %s: %s", cert.Kind(), err)
		}
		if decoded.Kind() != cert.Kind() {
			t.Fatalf("decoded kind was %s, expected %s", decoded.Kind(), cert.Kind())
		}
		reencoded, err := decoded.MarshalCBOR()
		if err != nil {
			t.Fatalf("failure re-encoding %s: %s", cert.Kind(), err)
		}
		assert.Equal(t, data, reencoded, cert.Kind().String())
	}
}

func TestCertificatesSetTag(t *testing.T) {
	keyHash := testKeyHash(t, "4ff5f8e3d43ce6b19ec4197e331e86d0f5e58b02d7a75b5e74cff95d")
	cert := ledger.NewStakeRegistration(ledger.NewKeyHashCredential(keyHash))
	certCbor, err := cert.MarshalCBOR()
	require.NoError(t, err)
	// Tagged set with one certificate
	data := append(test.DecodeHexString("d9010281"), certCbor...)
	var certs ledger.Certificates
	require.NoError(t, certs.UnmarshalCBOR(data))
	assert.Equal(t, 1, certs.Len())
	reencoded, err := certs.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, data, reencoded)
}
