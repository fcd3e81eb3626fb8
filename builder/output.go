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
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/blinklabs-io/gocsl/plutus"
)

// TransactionOutputBuilder assembles an output step by step
type TransactionOutputBuilder struct {
	address   ledger.Address
	amount    *ledger.Value
	datum     *ledger.DataOption
	scriptRef *ledger.ScriptRef
}

func NewTransactionOutputBuilder() *TransactionOutputBuilder {
	return &TransactionOutputBuilder{}
}

func (b *TransactionOutputBuilder) WithAddress(addr ledger.Address) *TransactionOutputBuilder {
	b.address = addr
	return b
}

func (b *TransactionOutputBuilder) WithDataHash(hash crypto.DataHash) *TransactionOutputBuilder {
	d := ledger.NewDataOptionHash(hash)
	b.datum = &d
	return b
}

func (b *TransactionOutputBuilder) WithPlutusData(data plutus.PlutusData) *TransactionOutputBuilder {
	d := ledger.NewDataOptionInline(data)
	b.datum = &d
	return b
}

func (b *TransactionOutputBuilder) WithScriptRef(ref ledger.ScriptRef) *TransactionOutputBuilder {
	b.scriptRef = &ref
	return b
}

func (b *TransactionOutputBuilder) WithValue(amount ledger.Value) *TransactionOutputBuilder {
	tmp := amount.Clone()
	b.amount = &tmp
	return b
}

func (b *TransactionOutputBuilder) WithCoin(coin num.BigNum) *TransactionOutputBuilder {
	return b.WithValue(ledger.NewValue(coin))
}

func (b *TransactionOutputBuilder) WithCoinAndAsset(
	coin num.BigNum,
	multiAsset ledger.MultiAsset,
) *TransactionOutputBuilder {
	return b.WithValue(ledger.Value{Coin: coin, MultiAsset: multiAsset})
}

// WithAssetAndMinRequiredCoin sets the assets along with the smallest coin the output can carry.
// The address, datum and script reference must already be set since they count toward the
// output size.
func (b *TransactionOutputBuilder) WithAssetAndMinRequiredCoin(
	multiAsset ledger.MultiAsset,
	coinsPerUtxoByte num.BigNum,
) (*TransactionOutputBuilder, error) {
	b.WithCoinAndAsset(0, multiAsset)
	output, err := b.Build()
	if err != nil {
		return nil, err
	}
	minAda, err := ledger.MinAdaForOutput(output, coinsPerUtxoByte)
	if err != nil {
		return nil, err
	}
	b.amount.Coin = minAda
	return b, nil
}

func (b *TransactionOutputBuilder) Build() (ledger.TransactionOutput, error) {
	if b.address == nil || b.amount == nil {
		return ledger.TransactionOutput{}, ErrIncompleteOutput
	}
	ret := ledger.NewTransactionOutput(b.address, b.amount.Clone())
	ret.Datum = b.datum
	ret.ScriptRef = b.scriptRef
	return ret, nil
}
