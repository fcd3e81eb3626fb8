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
	"errors"
	"fmt"

	"github.com/blinklabs-io/gocsl/builder"
	"github.com/blinklabs-io/gocsl/internal/config"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/spf13/cobra"
)

type buildResult struct {
	TxID    string `json:"tx_id"`
	Fee     string `json:"fee"`
	CborHex string `json:"cbor_hex"`
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an unsigned payment transaction from a request file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		requestPath, _ := cmd.Flags().GetString("request")
		pparamsPath, _ := cmd.Flags().GetString("protocol-params")
		if pparamsPath == "" {
			pparamsPath = cfg.ProtocolParams
		}
		if pparamsPath == "" {
			return errors.New("no protocol parameters file configured")
		}
		pparams, err := config.LoadProtocolParams(pparamsPath)
		if err != nil {
			return err
		}
		preferPure, _ := cmd.Flags().GetBool("prefer-pure-change")
		builderCfg, err := pparams.BuilderConfig(builder.WithPreferPureChange(preferPure))
		if err != nil {
			return err
		}
		req, err := config.LoadBuildRequest(requestPath)
		if err != nil {
			return err
		}
		network, err := cfg.GetNetwork()
		if err != nil {
			return err
		}
		b := builder.NewTransactionBuilder(builderCfg, builder.WithLogger(logger))
		b.SetNetworkID(network.Id)
		tx, err := buildTransaction(b, req)
		if err != nil {
			return err
		}
		txCbor, err := tx.MarshalCBOR()
		if err != nil {
			return err
		}
		txID, err := tx.Hash()
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(buildResult{
			TxID:    txID.String(),
			Fee:     tx.Body.Fee.String(),
			CborHex: hex.EncodeToString(txCbor),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func buildTransaction(
	b *builder.TransactionBuilder,
	req *config.BuildRequest,
) (*ledger.Transaction, error) {
	outputs, err := req.GetOutputs()
	if err != nil {
		return nil, err
	}
	for _, output := range outputs {
		if err := b.AddOutput(output); err != nil {
			return nil, err
		}
	}
	if req.TTL != nil {
		b.SetTTL(num.BigNum(*req.TTL))
	}
	for label, value := range req.Metadata {
		if err := b.AddJSONMetadatum(label, []byte(value), ledger.BasicMetadataConversions); err != nil {
			return nil, fmt.Errorf("metadata label %d: %w", label, err)
		}
	}
	utxos, err := req.GetUTxOs()
	if err != nil {
		return nil, err
	}
	strategy, err := req.GetStrategy()
	if err != nil {
		return nil, err
	}
	if err := b.AddInputsFrom(utxos, strategy); err != nil {
		return nil, err
	}
	changeAddr, err := req.GetChangeAddress()
	if err != nil {
		return nil, err
	}
	if _, err := b.AddChangeIfNeeded(changeAddr); err != nil {
		return nil, err
	}
	return b.BuildTx()
}

func init() {
	buildCmd.Flags().String("request", "", "path to the YAML build request")
	buildCmd.Flags().String("protocol-params", "", "protocol parameters file (overrides config)")
	buildCmd.Flags().Bool("prefer-pure-change", false, "put leftover ADA in its own change output")
	_ = buildCmd.MarkFlagRequired("request")
	rootCmd.AddCommand(buildCmd)
}
