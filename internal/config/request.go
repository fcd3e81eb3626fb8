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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/blinklabs-io/gocsl/builder"
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
	"gopkg.in/yaml.v3"
)

var ErrInvalidRequest = errors.New("invalid build request")

// BuildRequest describes a payment to build with the CLI
type BuildRequest struct {
	UTxOs         []RequestUTxO   `yaml:"utxos"`
	Outputs       []RequestOutput `yaml:"outputs"`
	ChangeAddress string          `yaml:"change_address"`
	Strategy      string          `yaml:"strategy"`
	TTL           *uint64         `yaml:"ttl"`
	// JSON metadata by label, read with the basic conversions schema
	Metadata map[uint64]string `yaml:"metadata"`
}

type RequestUTxO struct {
	TxHash        string `yaml:"tx_hash"`
	Index         uint32 `yaml:"index"`
	Address       string `yaml:"address"`
	RequestAmount `yaml:",inline"`
}

type RequestOutput struct {
	Address       string `yaml:"address"`
	RequestAmount `yaml:",inline"`
}

// RequestAmount is a coin plus assets keyed by "<policy hex>.<asset name hex>"
type RequestAmount struct {
	Coin   uint64            `yaml:"coin"`
	Assets map[string]uint64 `yaml:"assets"`
}

func LoadBuildRequest(path string) (*BuildRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ret BuildRequest
	if err := yaml.Unmarshal(data, &ret); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return &ret, nil
}

func (a RequestAmount) Value() (ledger.Value, error) {
	ret := ledger.NewValue(num.BigNum(a.Coin))
	if len(a.Assets) == 0 {
		return ret, nil
	}
	ret.MultiAsset = ledger.MultiAsset{}
	for unit, quantity := range a.Assets {
		policyHex, nameHex, _ := strings.Cut(unit, ".")
		policy, err := crypto.ScriptHashFromHex(policyHex)
		if err != nil {
			return ledger.Value{}, fmt.Errorf("%w: asset %s: %w", ErrInvalidRequest, unit, err)
		}
		name, err := ledger.AssetNameFromHex(nameHex)
		if err != nil {
			return ledger.Value{}, fmt.Errorf("%w: asset %s: %w", ErrInvalidRequest, unit, err)
		}
		ret.MultiAsset.SetAsset(policy, name, num.BigNum(quantity))
	}
	return ret, nil
}

func (r *BuildRequest) GetUTxOs() ([]ledger.TransactionUnspentOutput, error) {
	ret := make([]ledger.TransactionUnspentOutput, 0, len(r.UTxOs))
	for _, utxo := range r.UTxOs {
		txID, err := crypto.TransactionHashFromHex(utxo.TxHash)
		if err != nil {
			return nil, fmt.Errorf("%w: utxo %s: %w", ErrInvalidRequest, utxo.TxHash, err)
		}
		addr, err := ledger.AddressFromString(utxo.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: utxo address: %w", ErrInvalidRequest, err)
		}
		amount, err := utxo.Value()
		if err != nil {
			return nil, err
		}
		ret = append(ret, ledger.NewTransactionUnspentOutput(
			ledger.NewTransactionInput(txID, utxo.Index),
			ledger.NewTransactionOutput(addr, amount),
		))
	}
	return ret, nil
}

func (r *BuildRequest) GetOutputs() ([]ledger.TransactionOutput, error) {
	ret := make([]ledger.TransactionOutput, 0, len(r.Outputs))
	for _, output := range r.Outputs {
		addr, err := ledger.AddressFromString(output.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: output address: %w", ErrInvalidRequest, err)
		}
		amount, err := output.Value()
		if err != nil {
			return nil, err
		}
		ret = append(ret, ledger.NewTransactionOutput(addr, amount))
	}
	return ret, nil
}

func (r *BuildRequest) GetChangeAddress() (ledger.Address, error) {
	if r.ChangeAddress == "" {
		return nil, fmt.Errorf("%w: change_address is required", ErrInvalidRequest)
	}
	addr, err := ledger.AddressFromString(r.ChangeAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: change address: %w", ErrInvalidRequest, err)
	}
	return addr, nil
}

// GetStrategy returns the coin selection strategy, defaulting to RandomImproveMultiAsset
func (r *BuildRequest) GetStrategy() (builder.CoinSelectionStrategy, error) {
	if r.Strategy == "" {
		return builder.RandomImproveMultiAsset, nil
	}
	for _, strategy := range []builder.CoinSelectionStrategy{
		builder.LargestFirst,
		builder.RandomImprove,
		builder.LargestFirstMultiAsset,
		builder.RandomImproveMultiAsset,
	} {
		if strings.EqualFold(strategy.String(), r.Strategy) {
			return strategy, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown strategy %s", ErrInvalidRequest, r.Strategy)
}
