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
	"bytes"
	"encoding/json"
	"maps"
	"slices"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/num"
)

// Withdrawals maps reward accounts to the amount withdrawn from them
type Withdrawals map[RewardAddress]num.BigNum

func (w Withdrawals) Len() int {
	return len(w)
}

// Insert sets the amount for account, returning the previous amount if there was one
func (w Withdrawals) Insert(account RewardAddress, amount num.BigNum) (num.BigNum, bool) {
	prev, ok := w[account]
	w[account] = amount
	return prev, ok
}

func (w Withdrawals) Get(account RewardAddress) (num.BigNum, bool) {
	ret, ok := w[account]
	return ret, ok
}

// Keys returns the reward accounts in canonical order
func (w Withdrawals) Keys() []RewardAddress {
	return slices.SortedFunc(maps.Keys(w), func(a, b RewardAddress) int {
		return bytes.Compare(a.Bytes(), b.Bytes())
	})
}

// Total sums every withdrawal
func (w Withdrawals) Total() (num.BigNum, error) {
	return num.SumBigNums(slices.Collect(maps.Values(w))...)
}

func (w Withdrawals) MarshalCBOR() ([]byte, error) {
	entries := make([]cbor.MapEntry, 0, len(w))
	for account, amount := range w {
		entries = append(entries, cbor.MapEntry{
			Key:   cbor.EncodeBytes(account.Bytes()),
			Value: cbor.EncodeUint(amount.Uint64()),
		})
	}
	return cbor.EncodeMap(entries)
}

func (w *Withdrawals) UnmarshalCBOR(data []byte) error {
	entries, err := cbor.DecodeMapEntries(data)
	if err != nil {
		return cbor.WrapDeserialize("Withdrawals", err)
	}
	ret := make(Withdrawals, len(entries))
	for _, entry := range entries {
		var account RewardAddress
		if err := account.UnmarshalCBOR(entry.Key); err != nil {
			return cbor.WrapDeserialize("Withdrawals", err)
		}
		amount, err := cbor.DecodeUint(entry.Value)
		if err != nil {
			return cbor.WrapDeserialize("Withdrawals", cbor.WrapDeserialize(account.String(), err))
		}
		ret[account] = num.BigNum(amount)
	}
	*w = ret
	return nil
}

func (w Withdrawals) MarshalJSON() ([]byte, error) {
	tmp := make(map[string]num.BigNum, len(w))
	for account, amount := range w {
		tmp[account.String()] = amount
	}
	return json.Marshal(tmp)
}
