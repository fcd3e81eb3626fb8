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

package cbor

import (
	_cbor "github.com/fxamacker/cbor/v2"
)

// Diagnose returns the extended diagnostic notation of a single CBOR item. Byte strings that
// hold valid CBOR are expanded inline.
func Diagnose(data []byte) (string, error) {
	opts := _cbor.DiagOptions{
		ByteStringEmbeddedCBOR: true,
		MaxNestedLevels:        256,
	}
	dm, err := opts.DiagMode()
	if err != nil {
		return "", err
	}
	return dm.Diagnose(data)
}
