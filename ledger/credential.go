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

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/crypto"
	utxorpc "github.com/utxorpc/go-codegen/utxorpc/v1alpha/cardano"
)

type CredentialKind uint8

const (
	CredentialKindKeyHash    CredentialKind = 0
	CredentialKindScriptHash CredentialKind = 1
)

func (k CredentialKind) String() string {
	switch k {
	case CredentialKindKeyHash:
		return "KeyHash"
	case CredentialKindScriptHash:
		return "ScriptHash"
	default:
		return fmt.Sprintf("CredentialKind(%d)", uint8(k))
	}
}

// Credential is a payment or stake credential: either a key hash or a script hash. It is
// comparable and can be used as a map key.
type Credential struct {
	kind CredentialKind
	hash [crypto.Blake2b224Size]byte
}

// StakeCredential is the name used for credentials in stake certificates and reward accounts
type StakeCredential = Credential

func NewKeyHashCredential(hash crypto.Ed25519KeyHash) Credential {
	ret := Credential{kind: CredentialKindKeyHash}
	copy(ret.hash[:], hash.Bytes())
	return ret
}

func NewScriptHashCredential(hash crypto.ScriptHash) Credential {
	ret := Credential{kind: CredentialKindScriptHash}
	copy(ret.hash[:], hash.Bytes())
	return ret
}

func credentialFromBytes(kind CredentialKind, b []byte) (Credential, error) {
	if len(b) != crypto.Blake2b224Size {
		return Credential{}, crypto.WrongLengthError{
			Type:     "Credential",
			Expected: crypto.Blake2b224Size,
			Actual:   len(b),
		}
	}
	ret := Credential{kind: kind}
	copy(ret.hash[:], b)
	return ret, nil
}

func (c Credential) Kind() CredentialKind {
	return c.kind
}

// Bytes returns the raw 28 byte hash
func (c Credential) Bytes() []byte {
	return append([]byte(nil), c.hash[:]...)
}

func (c Credential) HasScriptHash() bool {
	return c.kind == CredentialKindScriptHash
}

// ToKeyHash returns the key hash when the credential is a key hash credential
func (c Credential) ToKeyHash() (crypto.Ed25519KeyHash, bool) {
	if c.kind != CredentialKindKeyHash {
		return crypto.Ed25519KeyHash{}, false
	}
	ret, _ := crypto.Ed25519KeyHashFromBytes(c.hash[:])
	return ret, true
}

// ToScriptHash returns the script hash when the credential is a script hash credential
func (c Credential) ToScriptHash() (crypto.ScriptHash, bool) {
	if c.kind != CredentialKindScriptHash {
		return crypto.ScriptHash{}, false
	}
	ret, _ := crypto.ScriptHashFromBytes(c.hash[:])
	return ret, true
}

func (c Credential) String() string {
	return fmt.Sprintf("%s(%x)", c.kind, c.hash[:])
}

func (c Credential) MarshalCBOR() ([]byte, error) {
	return cbor.EncodeArray(
		[]cbor.RawMessage{
			cbor.EncodeUint(uint64(c.kind)),
			cbor.EncodeBytes(c.hash[:]),
		},
		false,
	), nil
}

func (c *Credential) UnmarshalCBOR(data []byte) error {
	items, err := cbor.DecodeArrayLen(data, "Credential", 2, 2)
	if err != nil {
		return cbor.WrapDeserialize("Credential", err)
	}
	kind, err := cbor.DecodeUint(items[0])
	if err != nil {
		return cbor.WrapDeserialize("Credential", err)
	}
	if kind > uint64(CredentialKindScriptHash) {
		return cbor.WrapDeserialize(
			"Credential",
			fmt.Errorf("unknown credential kind %d", kind),
		)
	}
	hash, err := cbor.DecodeBytes(items[1])
	if err != nil {
		return cbor.WrapDeserialize("Credential", err)
	}
	tmp, err := credentialFromBytes(CredentialKind(kind), hash)
	if err != nil {
		return cbor.WrapDeserialize("Credential", err)
	}
	*c = tmp
	return nil
}

type credentialJSON struct {
	Key    *string `json:"Key,omitempty"`
	Script *string `json:"Script,omitempty"`
}

func (c Credential) MarshalJSON() ([]byte, error) {
	h := hex.EncodeToString(c.hash[:])
	if c.kind == CredentialKindScriptHash {
		return json.Marshal(credentialJSON{Script: &h})
	}
	return json.Marshal(credentialJSON{Key: &h})
}

func (c *Credential) UnmarshalJSON(data []byte) error {
	var tmp credentialJSON
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	var kind CredentialKind
	var h string
	switch {
	case tmp.Key != nil && tmp.Script == nil:
		kind, h = CredentialKindKeyHash, *tmp.Key
	case tmp.Script != nil && tmp.Key == nil:
		kind, h = CredentialKindScriptHash, *tmp.Script
	default:
		return errors.New("credential JSON must have exactly one of Key or Script")
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return fmt.Errorf("%w: %w", crypto.ErrMalformedEncoding, err)
	}
	tmpCred, err := credentialFromBytes(kind, b)
	if err != nil {
		return err
	}
	*c = tmpCred
	return nil
}

func (c Credential) Utxorpc() (*utxorpc.StakeCredential, error) {
	switch c.kind {
	case CredentialKindKeyHash:
		return &utxorpc.StakeCredential{
			StakeCredential: &utxorpc.StakeCredential_AddrKeyHash{
				AddrKeyHash: c.Bytes(),
			},
		}, nil
	case CredentialKindScriptHash:
		return &utxorpc.StakeCredential{
			StakeCredential: &utxorpc.StakeCredential_ScriptHash{
				ScriptHash: c.Bytes(),
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown credential kind %d", c.kind)
	}
}
