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
	"errors"
	"fmt"
)

var (
	ErrWrongLength            = errors.New("wrong length")
	ErrMalformedEncoding      = errors.New("malformed encoding")
	ErrInvalidBech32          = errors.New("invalid bech32 checksum or prefix")
	ErrInvalidDerivationIndex = errors.New("invalid derivation index")
	ErrInvalidKey             = errors.New("invalid key")
)

// WrongLengthError indicates a fixed-length value was built from the wrong number of bytes
type WrongLengthError struct {
	Type     string
	Expected int
	Actual   int
}

func (e WrongLengthError) Error() string {
	return fmt.Sprintf(
		"%s length was %d bytes, expected %d",
		e.Type,
		e.Actual,
		e.Expected,
	)
}

func (WrongLengthError) Is(target error) bool {
	return target == ErrWrongLength
}

// Bech32Error indicates a bech32 string that failed to decode or carried an unexpected prefix
type Bech32Error struct {
	Type     string
	Expected string
	Actual   string
	Err      error
}

func (e Bech32Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid bech32 %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf(
		"invalid bech32 %s: prefix was %q, expected %q",
		e.Type,
		e.Actual,
		e.Expected,
	)
}

func (e Bech32Error) Unwrap() error { return e.Err }

func (Bech32Error) Is(target error) bool {
	return target == ErrInvalidBech32
}

// DerivationIndexError indicates a hardened index used for public key derivation
type DerivationIndexError struct {
	Index uint32
}

func (e DerivationIndexError) Error() string {
	return fmt.Sprintf(
		"cannot derive public key at hardened index %d (0x%08x)",
		e.Index&^HardenedOffset,
		e.Index,
	)
}

func (DerivationIndexError) Is(target error) bool {
	return target == ErrInvalidDerivationIndex
}
