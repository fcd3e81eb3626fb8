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
	"encoding/json"
	"fmt"

	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex|@file>",
	Short: "Decode a transaction and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		if diag, _ := cmd.Flags().GetBool("diag"); diag {
			out, err := cbor.Diagnose(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
		tx, err := ledger.TransactionFromBytes(data)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(tx, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var hashCmd = &cobra.Command{
	Use:   "hash <hex|@file>",
	Short: "Print the ID of a transaction, computed over the body bytes as given",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		tx, err := ledger.FixedTransactionFromBytes(data)
		if err != nil {
			return err
		}
		logger.Debug("decoded transaction", "component", "cli", "body_size", len(tx.RawBody()))
		fmt.Fprintln(cmd.OutOrStdout(), tx.TransactionHash().String())
		return nil
	},
}

func init() {
	decodeCmd.Flags().Bool("diag", false, "print CBOR diagnostic notation instead of JSON")
	rootCmd.AddCommand(decodeCmd, hashCmd)
}
