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

package config

import (
	"fmt"
	"os"

	"github.com/blinklabs-io/gocsl/builder"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
	"gopkg.in/yaml.v3"
)

// Decimal keeps a number from a YAML or JSON document as written so that it can be converted
// to a ratio without going through a float
type Decimal string

func (d *Decimal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	*d = Decimal(node.Value)
	return nil
}

func (d Decimal) UnitInterval() (num.UnitInterval, error) {
	return num.UnitIntervalFromDecimal(string(d))
}

type ExecutionUnitPrices struct {
	PriceMemory Decimal `yaml:"priceMemory"`
	PriceSteps  Decimal `yaml:"priceSteps"`
}

// ProtocolParams is the subset of the protocol parameters the transaction builder uses, in the
// shape printed by "cardano-cli query protocol-parameters"
type ProtocolParams struct {
	TxFeePerByte               uint64               `yaml:"txFeePerByte"`
	TxFeeFixed                 uint64               `yaml:"txFeeFixed"`
	UtxoCostPerByte            uint64               `yaml:"utxoCostPerByte"`
	StakeAddressDeposit        uint64               `yaml:"stakeAddressDeposit"`
	StakePoolDeposit           uint64               `yaml:"stakePoolDeposit"`
	MaxTxSize                  uint32               `yaml:"maxTxSize"`
	MaxValueSize               uint32               `yaml:"maxValueSize"`
	ExecutionUnitPrices        *ExecutionUnitPrices `yaml:"executionUnitPrices"`
	CostModels                 map[string][]int64   `yaml:"costModels"`
	MinFeeRefScriptCostPerByte *Decimal             `yaml:"minFeeRefScriptCostPerByte"`
	CollateralPercentage       uint64               `yaml:"collateralPercentage"`
	MaxCollateralInputs        uint64               `yaml:"maxCollateralInputs"`
}

// LoadProtocolParams reads a protocol parameters file. JSON files are read by the YAML decoder.
func LoadProtocolParams(path string) (*ProtocolParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseProtocolParams(data)
}

func ParseProtocolParams(data []byte) (*ProtocolParams, error) {
	var ret ProtocolParams
	if err := yaml.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("parse protocol parameters: %w", err)
	}
	return &ret, nil
}

// BuilderConfig converts the parameters into a transaction builder config. Options are applied
// after the parameters.
func (p *ProtocolParams) BuilderConfig(
	opts ...builder.ConfigOptionFunc,
) (builder.TransactionBuilderConfig, error) {
	cfgOpts := []builder.ConfigOptionFunc{
		builder.WithFeeAlgo(
			ledger.NewLinearFee(num.BigNum(p.TxFeePerByte), num.BigNum(p.TxFeeFixed)),
		),
		builder.WithPoolDeposit(num.BigNum(p.StakePoolDeposit)),
		builder.WithKeyDeposit(num.BigNum(p.StakeAddressDeposit)),
		builder.WithMaxValueSize(p.MaxValueSize),
		builder.WithMaxTxSize(p.MaxTxSize),
		builder.WithCoinsPerUtxoByte(num.BigNum(p.UtxoCostPerByte)),
	}
	if p.ExecutionUnitPrices != nil {
		mem, err := p.ExecutionUnitPrices.PriceMemory.UnitInterval()
		if err != nil {
			return builder.TransactionBuilderConfig{}, fmt.Errorf("priceMemory: %w", err)
		}
		steps, err := p.ExecutionUnitPrices.PriceSteps.UnitInterval()
		if err != nil {
			return builder.TransactionBuilderConfig{}, fmt.Errorf("priceSteps: %w", err)
		}
		cfgOpts = append(cfgOpts, builder.WithExUnitPrices(ledger.NewExUnitPrices(mem, steps)))
	}
	if p.MinFeeRefScriptCostPerByte != nil {
		price, err := p.MinFeeRefScriptCostPerByte.UnitInterval()
		if err != nil {
			return builder.TransactionBuilderConfig{}, fmt.Errorf(
				"minFeeRefScriptCostPerByte: %w",
				err,
			)
		}
		cfgOpts = append(cfgOpts, builder.WithRefScriptCoinsPerByte(price))
	}
	return builder.NewTransactionBuilderConfig(append(cfgOpts, opts...)...)
}

// Costmdls returns the cost models keyed by language. Unknown language names are rejected.
func (p *ProtocolParams) Costmdls() (ledger.Costmdls, error) {
	ret := ledger.Costmdls{}
	for name, ops := range p.CostModels {
		var language ledger.Language
		switch name {
		case "PlutusV1":
			language = ledger.PlutusV1
		case "PlutusV2":
			language = ledger.PlutusV2
		case "PlutusV3":
			language = ledger.PlutusV3
		default:
			return nil, fmt.Errorf("unknown cost model language: %s", name)
		}
		ret.Insert(language, ledger.NewCostModel(ops...))
	}
	return ret, nil
}
