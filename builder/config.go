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
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
)

// TransactionBuilderConfig holds the protocol parameters the builder needs
type TransactionBuilderConfig struct {
	feeAlgo               *ledger.LinearFee
	poolDeposit           *num.BigNum
	keyDeposit            *num.BigNum
	maxValueSize          *uint32
	maxTxSize             *uint32
	coinsPerUtxoByte      *num.BigNum
	exUnitPrices          *ledger.ExUnitPrices
	refScriptCoinsPerByte *num.UnitInterval
	preferPureChange      bool
}

// ConfigOptionFunc is a type that represents functions that modify the builder config
type ConfigOptionFunc func(*TransactionBuilderConfig)

// NewTransactionBuilderConfig returns a config with the given options applied. The fee algorithm,
// deposits, size limits and coins per UTxO byte are required.
func NewTransactionBuilderConfig(
	opts ...ConfigOptionFunc,
) (TransactionBuilderConfig, error) {
	var cfg TransactionBuilderConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return TransactionBuilderConfig{}, err
	}
	return cfg, nil
}

func (c TransactionBuilderConfig) validate() error {
	switch {
	case c.feeAlgo == nil:
		return ConfigError{Field: "fee_algo", Msg: "uninitialized field"}
	case c.poolDeposit == nil:
		return ConfigError{Field: "pool_deposit", Msg: "uninitialized field"}
	case c.keyDeposit == nil:
		return ConfigError{Field: "key_deposit", Msg: "uninitialized field"}
	case c.maxValueSize == nil:
		return ConfigError{Field: "max_value_size", Msg: "uninitialized field"}
	case c.maxTxSize == nil:
		return ConfigError{Field: "max_tx_size", Msg: "uninitialized field"}
	case c.coinsPerUtxoByte == nil:
		return ConfigError{Field: "coins_per_utxo_byte", Msg: "uninitialized field"}
	case c.coinsPerUtxoByte.IsZero():
		return ConfigError{Field: "coins_per_utxo_byte", Msg: "must be greater than zero"}
	}
	if c.exUnitPrices != nil {
		if c.exUnitPrices.MemPrice.Rat() == nil || c.exUnitPrices.StepPrice.Rat() == nil {
			return ConfigError{Field: "ex_unit_prices", Msg: "zero denominator"}
		}
	}
	if c.refScriptCoinsPerByte != nil && c.refScriptCoinsPerByte.Rat() == nil {
		return ConfigError{Field: "ref_script_coins_per_byte", Msg: "zero denominator"}
	}
	return nil
}

func (c TransactionBuilderConfig) FeeAlgo() ledger.LinearFee {
	return *c.feeAlgo
}

func (c TransactionBuilderConfig) PoolDeposit() num.BigNum {
	return *c.poolDeposit
}

func (c TransactionBuilderConfig) KeyDeposit() num.BigNum {
	return *c.keyDeposit
}

func (c TransactionBuilderConfig) MaxValueSize() uint32 {
	return *c.maxValueSize
}

func (c TransactionBuilderConfig) MaxTxSize() uint32 {
	return *c.maxTxSize
}

func (c TransactionBuilderConfig) CoinsPerUtxoByte() num.BigNum {
	return *c.coinsPerUtxoByte
}

// ExUnitPrices returns the execution unit prices, if configured
func (c TransactionBuilderConfig) ExUnitPrices() (ledger.ExUnitPrices, bool) {
	if c.exUnitPrices == nil {
		return ledger.ExUnitPrices{}, false
	}
	return *c.exUnitPrices, true
}

// RefScriptCoinsPerByte returns the reference script price, if configured
func (c TransactionBuilderConfig) RefScriptCoinsPerByte() (num.UnitInterval, bool) {
	if c.refScriptCoinsPerByte == nil {
		return num.UnitInterval{}, false
	}
	return *c.refScriptCoinsPerByte, true
}

func (c TransactionBuilderConfig) PreferPureChange() bool {
	return c.preferPureChange
}

// WithFeeAlgo specifies the linear fee parameters
func WithFeeAlgo(feeAlgo ledger.LinearFee) ConfigOptionFunc {
	return func(c *TransactionBuilderConfig) {
		c.feeAlgo = &feeAlgo
	}
}

// WithPoolDeposit specifies the stake pool registration deposit
func WithPoolDeposit(poolDeposit num.BigNum) ConfigOptionFunc {
	return func(c *TransactionBuilderConfig) {
		c.poolDeposit = &poolDeposit
	}
}

// WithKeyDeposit specifies the stake key registration deposit
func WithKeyDeposit(keyDeposit num.BigNum) ConfigOptionFunc {
	return func(c *TransactionBuilderConfig) {
		c.keyDeposit = &keyDeposit
	}
}

// WithMaxValueSize specifies the maximum encoded size of an output value
func WithMaxValueSize(maxValueSize uint32) ConfigOptionFunc {
	return func(c *TransactionBuilderConfig) {
		c.maxValueSize = &maxValueSize
	}
}

// WithMaxTxSize specifies the maximum encoded size of a transaction
func WithMaxTxSize(maxTxSize uint32) ConfigOptionFunc {
	return func(c *TransactionBuilderConfig) {
		c.maxTxSize = &maxTxSize
	}
}

// WithCoinsPerUtxoByte specifies the lovelace charged per byte of output
func WithCoinsPerUtxoByte(coinsPerUtxoByte num.BigNum) ConfigOptionFunc {
	return func(c *TransactionBuilderConfig) {
		c.coinsPerUtxoByte = &coinsPerUtxoByte
	}
}

// WithExUnitPrices specifies the Plutus execution unit prices
func WithExUnitPrices(prices ledger.ExUnitPrices) ConfigOptionFunc {
	return func(c *TransactionBuilderConfig) {
		c.exUnitPrices = &prices
	}
}

// WithRefScriptCoinsPerByte specifies the base price per byte of reference scripts
func WithRefScriptCoinsPerByte(coinsPerByte num.UnitInterval) ConfigOptionFunc {
	return func(c *TransactionBuilderConfig) {
		c.refScriptCoinsPerByte = &coinsPerByte
	}
}

// WithPreferPureChange specifies whether leftover ADA goes to a separate change output without
// assets when it can cover its own minimum
func WithPreferPureChange(preferPureChange bool) ConfigOptionFunc {
	return func(c *TransactionBuilderConfig) {
		c.preferPureChange = preferPureChange
	}
}
