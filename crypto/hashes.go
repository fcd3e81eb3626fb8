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

package crypto

import (
	"golang.org/x/crypto/blake2b"
)

const (
	Blake2b224Size = 28
	Blake2b256Size = 32
)

// Kinds. Prefixes follow CIP-5 where it defines one.
type (
	ed25519KeyHashKind      struct{}
	scriptHashKind          struct{}
	transactionHashKind     struct{}
	poolMetadataHashKind    struct{}
	vrfKeyHashKind          struct{}
	dataHashKind            struct{}
	auxiliaryDataHashKind   struct{}
	scriptDataHashKind      struct{}
	genesisHashKind         struct{}
	genesisDelegateHashKind struct{}
	blockHashKind           struct{}
	vrfVKeyKind             struct{}
	kesVKeyKind             struct{}
	kesSignatureKind        struct{}
	ed25519SignatureKind    struct{}
)

func (ed25519KeyHashKind) Name() string   { return "Ed25519KeyHash" }
func (ed25519KeyHashKind) Size() int      { return Blake2b224Size }
func (ed25519KeyHashKind) Prefix() string { return "addr_vkh" }

func (scriptHashKind) Name() string   { return "ScriptHash" }
func (scriptHashKind) Size() int      { return Blake2b224Size }
func (scriptHashKind) Prefix() string { return "script" }

func (transactionHashKind) Name() string   { return "TransactionHash" }
func (transactionHashKind) Size() int      { return Blake2b256Size }
func (transactionHashKind) Prefix() string { return "tx" }

func (poolMetadataHashKind) Name() string   { return "PoolMetadataHash" }
func (poolMetadataHashKind) Size() int      { return Blake2b256Size }
func (poolMetadataHashKind) Prefix() string { return "pool_md" }

func (vrfKeyHashKind) Name() string   { return "VRFKeyHash" }
func (vrfKeyHashKind) Size() int      { return Blake2b256Size }
func (vrfKeyHashKind) Prefix() string { return "vrf_vkh" }

func (dataHashKind) Name() string   { return "DataHash" }
func (dataHashKind) Size() int      { return Blake2b256Size }
func (dataHashKind) Prefix() string { return "datum" }

func (auxiliaryDataHashKind) Name() string   { return "AuxiliaryDataHash" }
func (auxiliaryDataHashKind) Size() int      { return Blake2b256Size }
func (auxiliaryDataHashKind) Prefix() string { return "auxiliary_data" }

func (scriptDataHashKind) Name() string   { return "ScriptDataHash" }
func (scriptDataHashKind) Size() int      { return Blake2b256Size }
func (scriptDataHashKind) Prefix() string { return "script_data" }

func (genesisHashKind) Name() string   { return "GenesisHash" }
func (genesisHashKind) Size() int      { return Blake2b224Size }
func (genesisHashKind) Prefix() string { return "genesis" }

func (genesisDelegateHashKind) Name() string   { return "GenesisDelegateHash" }
func (genesisDelegateHashKind) Size() int      { return Blake2b224Size }
func (genesisDelegateHashKind) Prefix() string { return "genesis_delegate" }

func (blockHashKind) Name() string   { return "BlockHash" }
func (blockHashKind) Size() int      { return Blake2b256Size }
func (blockHashKind) Prefix() string { return "block" }

func (vrfVKeyKind) Name() string   { return "VRFVKey" }
func (vrfVKeyKind) Size() int      { return 32 }
func (vrfVKeyKind) Prefix() string { return "vrf_vk" }

func (kesVKeyKind) Name() string   { return "KESVKey" }
func (kesVKeyKind) Size() int      { return 32 }
func (kesVKeyKind) Prefix() string { return "kes_vk" }

func (kesSignatureKind) Name() string   { return "KESSignature" }
func (kesSignatureKind) Size() int      { return 448 }
func (kesSignatureKind) Prefix() string { return "kes_sig" }

func (ed25519SignatureKind) Name() string   { return "Ed25519Signature" }
func (ed25519SignatureKind) Size() int      { return 64 }
func (ed25519SignatureKind) Prefix() string { return "ed25519_sig" }

type (
	Ed25519KeyHash      = Fixed[ed25519KeyHashKind]
	ScriptHash          = Fixed[scriptHashKind]
	TransactionHash     = Fixed[transactionHashKind]
	PoolMetadataHash    = Fixed[poolMetadataHashKind]
	VRFKeyHash          = Fixed[vrfKeyHashKind]
	DataHash            = Fixed[dataHashKind]
	AuxiliaryDataHash   = Fixed[auxiliaryDataHashKind]
	ScriptDataHash      = Fixed[scriptDataHashKind]
	GenesisHash         = Fixed[genesisHashKind]
	GenesisDelegateHash = Fixed[genesisDelegateHashKind]
	BlockHash           = Fixed[blockHashKind]
	VRFVKey             = Fixed[vrfVKeyKind]
	KESVKey             = Fixed[kesVKeyKind]
	KESSignature        = Fixed[kesSignatureKind]
	Ed25519Signature    = Fixed[ed25519SignatureKind]
	// PolicyID identifies a minting policy by its script hash
	PolicyID = ScriptHash
)

func Ed25519KeyHashFromBytes(b []byte) (Ed25519KeyHash, error) {
	return FixedFromBytes[ed25519KeyHashKind](b)
}

func Ed25519KeyHashFromHex(s string) (Ed25519KeyHash, error) {
	return FixedFromHex[ed25519KeyHashKind](s)
}

func Ed25519KeyHashFromBech32(s string, prefixes ...string) (Ed25519KeyHash, error) {
	return FixedFromBech32[ed25519KeyHashKind](s, prefixes...)
}

func ScriptHashFromBytes(b []byte) (ScriptHash, error) {
	return FixedFromBytes[scriptHashKind](b)
}

func ScriptHashFromHex(s string) (ScriptHash, error) {
	return FixedFromHex[scriptHashKind](s)
}

func ScriptHashFromBech32(s string, prefixes ...string) (ScriptHash, error) {
	return FixedFromBech32[scriptHashKind](s, prefixes...)
}

func TransactionHashFromBytes(b []byte) (TransactionHash, error) {
	return FixedFromBytes[transactionHashKind](b)
}

func TransactionHashFromHex(s string) (TransactionHash, error) {
	return FixedFromHex[transactionHashKind](s)
}

func TransactionHashFromBech32(s string, prefixes ...string) (TransactionHash, error) {
	return FixedFromBech32[transactionHashKind](s, prefixes...)
}

func PoolMetadataHashFromBytes(b []byte) (PoolMetadataHash, error) {
	return FixedFromBytes[poolMetadataHashKind](b)
}

func PoolMetadataHashFromHex(s string) (PoolMetadataHash, error) {
	return FixedFromHex[poolMetadataHashKind](s)
}

func VRFKeyHashFromBytes(b []byte) (VRFKeyHash, error) {
	return FixedFromBytes[vrfKeyHashKind](b)
}

func VRFKeyHashFromHex(s string) (VRFKeyHash, error) {
	return FixedFromHex[vrfKeyHashKind](s)
}

func DataHashFromBytes(b []byte) (DataHash, error) {
	return FixedFromBytes[dataHashKind](b)
}

func DataHashFromHex(s string) (DataHash, error) {
	return FixedFromHex[dataHashKind](s)
}

func AuxiliaryDataHashFromBytes(b []byte) (AuxiliaryDataHash, error) {
	return FixedFromBytes[auxiliaryDataHashKind](b)
}

func ScriptDataHashFromBytes(b []byte) (ScriptDataHash, error) {
	return FixedFromBytes[scriptDataHashKind](b)
}

func ScriptDataHashFromHex(s string) (ScriptDataHash, error) {
	return FixedFromHex[scriptDataHashKind](s)
}

func GenesisHashFromBytes(b []byte) (GenesisHash, error) {
	return FixedFromBytes[genesisHashKind](b)
}

func GenesisHashFromHex(s string) (GenesisHash, error) {
	return FixedFromHex[genesisHashKind](s)
}

func GenesisDelegateHashFromBytes(b []byte) (GenesisDelegateHash, error) {
	return FixedFromBytes[genesisDelegateHashKind](b)
}

func BlockHashFromBytes(b []byte) (BlockHash, error) {
	return FixedFromBytes[blockHashKind](b)
}

func VRFVKeyFromBytes(b []byte) (VRFVKey, error) {
	return FixedFromBytes[vrfVKeyKind](b)
}

func KESVKeyFromBytes(b []byte) (KESVKey, error) {
	return FixedFromBytes[kesVKeyKind](b)
}

func KESSignatureFromBytes(b []byte) (KESSignature, error) {
	return FixedFromBytes[kesSignatureKind](b)
}

func Ed25519SignatureFromBytes(b []byte) (Ed25519Signature, error) {
	return FixedFromBytes[ed25519SignatureKind](b)
}

func Ed25519SignatureFromHex(s string) (Ed25519Signature, error) {
	return FixedFromHex[ed25519SignatureKind](s)
}

// Blake2b224 returns the 28-byte blake2b digest of data
func Blake2b224(data []byte) []byte {
	// blake2b.New only fails on an invalid size or key
	h, _ := blake2b.New(Blake2b224Size, nil)
	h.Write(data)
	return h.Sum(nil)
}

// Blake2b256 returns the 32-byte blake2b digest of data
func Blake2b256(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}

// Blake2b160 returns the 20-byte blake2b digest of data
func Blake2b160(data []byte) []byte {
	h, _ := blake2b.New(20, nil)
	h.Write(data)
	return h.Sum(nil)
}

// HashTransactionBytes hashes the encoded body of a transaction
func HashTransactionBytes(body []byte) TransactionHash {
	return TransactionHash{data: string(Blake2b256(body))}
}

// HashDataBytes hashes encoded Plutus data
func HashDataBytes(data []byte) DataHash {
	return DataHash{data: string(Blake2b256(data))}
}

// HashAuxiliaryDataBytes hashes encoded auxiliary data
func HashAuxiliaryDataBytes(data []byte) AuxiliaryDataHash {
	return AuxiliaryDataHash{data: string(Blake2b256(data))}
}

// HashScriptDataBytes hashes a script integrity preimage
func HashScriptDataBytes(data []byte) ScriptDataHash {
	return ScriptDataHash{data: string(Blake2b256(data))}
}

// HashScriptBytes hashes a script under its language namespace byte
func HashScriptBytes(namespace byte, script []byte) ScriptHash {
	buf := make([]byte, 0, len(script)+1)
	buf = append(buf, namespace)
	buf = append(buf, script...)
	return ScriptHash{data: string(Blake2b224(buf))}
}

// HashKeyBytes hashes a verification key
func HashKeyBytes(vkey []byte) Ed25519KeyHash {
	return Ed25519KeyHash{data: string(Blake2b224(vkey))}
}

// HashPoolMetadataBytes hashes pool metadata JSON
func HashPoolMetadataBytes(data []byte) PoolMetadataHash {
	return PoolMetadataHash{data: string(Blake2b256(data))}
}

// HashVRFKeyBytes hashes a VRF verification key
func HashVRFKeyBytes(vkey []byte) VRFKeyHash {
	return VRFKeyHash{data: string(Blake2b256(vkey))}
}
