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

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/spf13/cobra"
)

type addressInfo struct {
	Kind    string             `json:"kind"`
	Network uint8              `json:"network"`
	Bytes   string             `json:"bytes"`
	Payment *ledger.Credential `json:"payment,omitempty"`
	Stake   *ledger.Credential `json:"stake,omitempty"`
}

var addressCmd = &cobra.Command{
	Use:   "address <bech32|base58|hex>",
	Short: "Print the kind, network and credentials of an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := ledger.AddressFromString(args[0])
		if err != nil {
			if data, hexErr := hex.DecodeString(args[0]); hexErr == nil {
				addr, err = ledger.AddressFromBytes(data)
			}
		}
		if err != nil {
			return err
		}
		info := addressInfo{
			Kind:    addr.Kind().String(),
			Network: addr.NetworkID(),
			Bytes:   hex.EncodeToString(addr.Bytes()),
		}
		if payment, ok := ledger.PaymentCredential(addr); ok {
			info.Payment = &payment
		}
		switch a := addr.(type) {
		case ledger.BaseAddress:
			info.Stake = &a.Stake
		case ledger.RewardAddress:
			info.Stake = &a.Payment
		}
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
}
