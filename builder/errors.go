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

package builder

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/ledger"
)

var (
	ErrInvalidConfig            = errors.New("invalid transaction builder config")
	ErrUTxOBalanceInsufficient  = errors.New("UTxO balance insufficient")
	ErrMissingScriptWitness     = errors.New("missing script witness")
	ErrMissingScriptDataHash    = errors.New("missing script data hash")
	ErrFeeNotSet                = errors.New("fee not specified")
	ErrFeeAlreadySet            = errors.New("cannot calculate change if fee was explicitly specified")
	ErrTransactionTooLarge      = errors.New("transaction too large")
	ErrOutputValueTooLarge      = errors.New("output value too large")
	ErrOutputBelowMinimum       = errors.New("output value below minimum UTxO value")
	ErrUnbalancedTransaction    = errors.New("transaction is not balanced")
	ErrNonAdaOutput             = errors.New("coin selection strategy cannot cover non-ADA outputs")
	ErrScriptWitnessMismatch    = errors.New("script witness does not match")
	ErrMissingCollateral        = errors.New("collateral inputs not set")
	ErrNotEnoughAdaForChange    = errors.New("not enough ADA leftover to include non-ADA assets in a change address")
	ErrUnsupportedInputAddress  = errors.New("address cannot be used as a transaction input")
	ErrIncompleteOutput         = errors.New("output is missing an address or amount")
	ErrInvalidMintAmount        = errors.New("invalid mint amount")
	ErrInvalidLegacyTTL         = errors.New("legacy TTL is out of range")
	ErrCollateralReturnTooLarge = errors.New("collateral return exceeds collateral inputs")
	ErrNetworkMismatch          = errors.New("address network does not match transaction network")
)

// ConfigError reports a missing or invalid builder config setting
type ConfigError struct {
	Field string
	Msg   string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("transaction builder config: %s: %s", e.Field, e.Msg)
}

func (ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// InsufficientBalanceError reports the value still missing after coin selection or when
// balancing a transaction
type InsufficientBalanceError struct {
	Deficit ledger.Value
}

func (e InsufficientBalanceError) Error() string {
	if e.Deficit.HasAssets() {
		return fmt.Sprintf(
			"UTxO balance insufficient: missing %s lovelace and %d asset policies",
			e.Deficit.Coin,
			e.Deficit.MultiAsset.Len(),
		)
	}
	return fmt.Sprintf("UTxO balance insufficient: missing %s lovelace", e.Deficit.Coin)
}

func (InsufficientBalanceError) Is(target error) bool {
	return target == ErrUTxOBalanceInsufficient
}

// MissingScriptWitnessError names a script hash used by an input, mint, certificate or
// withdrawal that no registered witness provides
type MissingScriptWitnessError struct {
	Kind string
	Hash crypto.ScriptHash
}

func (e MissingScriptWitnessError) Error() string {
	return fmt.Sprintf("missing script witness for %s script %s", e.Kind, e.Hash)
}

func (MissingScriptWitnessError) Is(target error) bool {
	return target == ErrMissingScriptWitness
}

// OutputBelowMinimumError reports an output carrying less than its minimum ADA
type OutputBelowMinimumError struct {
	Coin    uint64
	Minimum uint64
}

func (e OutputBelowMinimumError) Error() string {
	return fmt.Sprintf("value %d less than the minimum UTxO value %d", e.Coin, e.Minimum)
}

func (OutputBelowMinimumError) Is(target error) bool {
	return target == ErrOutputBelowMinimum
}

// NetworkMismatchError reports an address whose network id differs from the one set on the
// builder
type NetworkMismatchError struct {
	Expected uint8
	Actual   uint8
	Address  string
}

func (e NetworkMismatchError) Error() string {
	return fmt.Sprintf(
		"address %s is on network %d, expected network %d",
		e.Address,
		e.Actual,
		e.Expected,
	)
}

func (NetworkMismatchError) Is(target error) bool {
	return target == ErrNetworkMismatch
}
