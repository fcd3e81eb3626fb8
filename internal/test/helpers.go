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

package test

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/nsf/jsondiff"
)

// DecodeHexString is a helper function for tests that decodes hex strings. It doesn't return
// an error value, which makes it usable inline.
func DecodeHexString(hexData string) []byte {
	// Strip off any leading/trailing whitespace in hex string
	hexData = strings.TrimSpace(hexData)
	decoded, err := hex.DecodeString(hexData)
	if err != nil {
		panic(fmt.Sprintf("error decoding hex: %s", err))
	}
	return decoded
}

// AssertJSONEqual fails the test when actual doesn't semantically match expected. Key order
// and whitespace are ignored.
func AssertJSONEqual(t testing.TB, expected string, actual []byte) {
	t.Helper()
	opts := jsondiff.DefaultConsoleOptions()
	diff, explanation := jsondiff.Compare([]byte(expected), actual, &opts)
	if diff != jsondiff.FullMatch {
		t.Fatalf("JSON mismatch (%s):\n%s", diff, explanation)
	}
}
