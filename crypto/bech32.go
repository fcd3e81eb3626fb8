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
	"github.com/btcsuite/btcd/btcutil/bech32"
)

// EncodeBech32 encodes raw bytes with the given human-readable prefix
func EncodeBech32(prefix string, data []byte) (string, error) {
	convData, err := bech32.ConvertBits(data, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(prefix, convData)
}

// DecodeBech32 decodes a bech32 string of any length into its prefix and raw bytes
func DecodeBech32(s string) (string, []byte, error) {
	hrp, data, err := bech32.DecodeNoLimit(s)
	if err != nil {
		return "", nil, err
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	return hrp, decoded, nil
}

// decodeBech32Prefixed decodes s and checks its prefix against any of the allowed ones
func decodeBech32Prefixed(typeName string, s string, allowed ...string) (string, []byte, error) {
	hrp, data, err := DecodeBech32(s)
	if err != nil {
		return "", nil, Bech32Error{Type: typeName, Err: err}
	}
	if len(allowed) == 0 {
		return hrp, data, nil
	}
	for _, prefix := range allowed {
		if hrp == prefix {
			return hrp, data, nil
		}
	}
	return "", nil, Bech32Error{Type: typeName, Expected: allowed[0], Actual: hrp}
}
