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
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/spf13/cobra"
)

type keygenResult struct {
	Entropy           string `json:"entropy"`
	PaymentKey        string `json:"payment_key"`
	PaymentKeyHash    string `json:"payment_key_hash"`
	StakeKeyHash      string `json:"stake_key_hash"`
	EnterpriseAddress string `json:"enterprise_address"`
	BaseAddress       string `json:"base_address"`
	RewardAddress     string `json:"reward_address"`
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Derive payment and stake keys from BIP39 entropy and print their addresses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		network, err := cfg.GetNetwork()
		if err != nil {
			return err
		}
		entropyHex, _ := cmd.Flags().GetString("entropy")
		var entropy []byte
		if entropyHex == "" {
			entropy = make([]byte, 32)
			if _, err := rand.Read(entropy); err != nil {
				return err
			}
		} else if entropy, err = hex.DecodeString(entropyHex); err != nil {
			return fmt.Errorf("entropy: %w", err)
		}
		pathFlag, _ := cmd.Flags().GetString("path")
		paymentPath, err := crypto.ParseDerivationPath(pathFlag)
		if err != nil {
			return err
		}
		stakePathFlag, _ := cmd.Flags().GetString("stake-path")
		stakePath, err := crypto.ParseDerivationPath(stakePathFlag)
		if err != nil {
			return err
		}
		root := crypto.Bip32PrivateKeyFromBip39Entropy(entropy, nil)
		paymentKey := root.DerivePath(paymentPath)
		paymentHash := paymentKey.ToPublic().ToRawKey().Hash()
		stakeHash := root.DerivePath(stakePath).ToPublic().ToRawKey().Hash()
		logger.Debug(
			"derived keys",
			"component", "cli",
			"network", network.Name,
			"path", pathFlag,
		)
		payment := ledger.NewKeyHashCredential(paymentHash)
		stake := ledger.NewKeyHashCredential(stakeHash)
		result := keygenResult{
			Entropy:           hex.EncodeToString(entropy),
			PaymentKey:        paymentKey.ToBech32(),
			PaymentKeyHash:    paymentHash.String(),
			StakeKeyHash:      stakeHash.String(),
			EnterpriseAddress: ledger.NewEnterpriseAddress(network.Id, payment).String(),
			BaseAddress:       ledger.NewBaseAddress(network.Id, payment, stake).String(),
			RewardAddress:     ledger.NewRewardAddress(network.Id, stake).String(),
		}
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	keygenCmd.Flags().String("entropy", "", "BIP39 entropy as hex (random if empty)")
	keygenCmd.Flags().String("path", "1852H/1815H/0H/0/0", "payment key derivation path")
	keygenCmd.Flags().String("stake-path", "1852H/1815H/0H/2/0", "stake key derivation path")
	rootCmd.AddCommand(keygenCmd)
}
