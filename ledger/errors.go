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
	"errors"
	"fmt"
)

var (
	ErrInvalidAddress   = errors.New("invalid address")
	ErrMetadataJSON     = errors.New("metadata JSON error")
	ErrMissingCostModel = errors.New("missing cost model")
	ErrNativeScriptJSON = errors.New("native script JSON error")
)

// AddressError reports an address that could not be parsed or constructed
type AddressError struct {
	Reason string
	Err    error
}

func (e AddressError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid address: %s: %v", e.Reason, e.Err)
	}
	return "invalid address: " + e.Reason
}

func (e AddressError) Unwrap() error { return e.Err }

func (AddressError) Is(target error) bool {
	return target == ErrInvalidAddress
}

// MetadataJSONError reports JSON that doesn't fit the selected metadata schema, or metadata
// that the schema can't express
type MetadataJSONError struct {
	Schema MetadataJsonSchema
	Msg    string
}

func (e MetadataJSONError) Error() string {
	return fmt.Sprintf("metadata JSON (%s): %s", e.Schema, e.Msg)
}

func (MetadataJSONError) Is(target error) bool {
	return target == ErrMetadataJSON
}

// NativeScriptJSONError reports a malformed native script JSON document
type NativeScriptJSONError struct {
	Msg string
}

func (e NativeScriptJSONError) Error() string {
	return "native script JSON: " + e.Msg
}

func (NativeScriptJSONError) Is(target error) bool {
	return target == ErrNativeScriptJSON
}

// MissingCostModelError indicates a missing cost model for a Plutus language
type MissingCostModelError struct {
	Language Language
}

func (e MissingCostModelError) Error() string {
	return fmt.Sprintf("missing cost model for %s", e.Language)
}

func (MissingCostModelError) Is(target error) bool {
	return target == ErrMissingCostModel
}
