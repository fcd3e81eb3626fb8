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

// Package cbor wraps github.com/fxamacker/cbor/v2 with the encoding rules used by the
// ledger data model.
//
// Encoding is always definite-length with map keys sorted in core deterministic order
// (bytewise lexical order of the encoded keys). The few places where the ledger wants
// indefinite-length framing (Plutus data lists, bounded byte strings) build their own
// framing with EncodeArray and EncodeBoundedBytes.
//
// Decoding is strict: DecodeExact rejects trailing bytes, DecodeMapEntries rejects
// duplicate keys, and every failure is reported as a DeserializeError carrying the path
// of the entity being decoded:
//
//	deserialize error: Transaction -> TransactionBody -> outputs -> [1] -> Value: ...
//
// Types that must keep their original bytes (so that hashes match what was received)
// embed DecodeStoreCbor:
//
//	type MyType struct {
//	    cbor.DecodeStoreCbor
//	    Field1 uint64 `cbor:"0,keyasint,omitempty"`
//	}
//
//	func (m *MyType) UnmarshalCBOR(data []byte) error {
//	    return m.UnmarshalCborGeneric(data, m)
//	}
package cbor
