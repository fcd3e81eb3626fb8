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

package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/gocsl"
	"github.com/blinklabs-io/gocsl/builder"
	"github.com/blinklabs-io/gocsl/internal/config"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProtocolParamsJSON = `{
  "txFeePerByte": 44,
  "txFeeFixed": 155381,
  "utxoCostPerByte": 4310,
  "stakeAddressDeposit": 2000000,
  "stakePoolDeposit": 500000000,
  "maxTxSize": 16384,
  "maxValueSize": 5000,
  "executionUnitPrices": {"priceMemory": 0.0577, "priceSteps": 0.0000721},
  "minFeeRefScriptCostPerByte": 15,
  "collateralPercentage": 150,
  "maxCollateralInputs": 3,
  "costModels": {"PlutusV1": [1, 2, 3], "PlutusV2": [4, 5]}
}`

func writeTestFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "preprod", cfg.Network)
	assert.Equal(t, "info", cfg.Log.Level)
	network, err := cfg.GetNetwork()
	require.NoError(t, err)
	assert.Equal(t, gocsl.NetworkPreprod, network)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeTestFile(t, "gocsl.yaml", "network: preview\nlog:\n  level: debug\n  format: json\n")
	t.Setenv("GOCSL_NETWORK", "mainnet")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mainnet", cfg.Network)
	assert.Equal(t, "debug", cfg.Log.Level)
	var buf bytes.Buffer
	logger, err := cfg.NewLogger(&buf)
	require.NoError(t, err)
	logger.Debug("hello", "component", "test")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestInvalidSettings(t *testing.T) {
	cfg := &config.Config{Network: "bogus", Log: config.LogConfig{Level: "loud"}}
	_, err := cfg.GetNetwork()
	require.ErrorIs(t, err, config.ErrInvalidNetwork)
	_, err = cfg.NewLogger(&bytes.Buffer{})
	require.Error(t, err)
}

func TestProtocolParams(t *testing.T) {
	pparams, err := config.ParseProtocolParams([]byte(testProtocolParamsJSON))
	require.NoError(t, err)
	cfg, err := pparams.BuilderConfig(builder.WithPreferPureChange(true))
	require.NoError(t, err)
	assert.Equal(t, ledger.NewLinearFee(44, 155381), cfg.FeeAlgo())
	assert.Equal(t, num.BigNum(4310), cfg.CoinsPerUtxoByte())
	assert.Equal(t, uint32(5000), cfg.MaxValueSize())
	assert.True(t, cfg.PreferPureChange())
	prices, ok := cfg.ExUnitPrices()
	require.True(t, ok)
	assert.Equal(t, "577/10000", prices.MemPrice.Rat().String())
	assert.Equal(t, "721/10000000", prices.StepPrice.Rat().String())
	refPrice, ok := cfg.RefScriptCoinsPerByte()
	require.True(t, ok)
	assert.Equal(t, "15/1", refPrice.Rat().String())
	costModels, err := pparams.Costmdls()
	require.NoError(t, err)
	assert.Equal(t, 2, costModels.Len())
	model, ok := costModels.Get(ledger.PlutusV2)
	require.True(t, ok)
	assert.Equal(t, 2, model.Len())
}

func TestProtocolParamsYAML(t *testing.T) {
	path := writeTestFile(
		t,
		"pparams.yaml",
		"txFeePerByte: 44\ntxFeeFixed: 155381\nutxoCostPerByte: 4310\n"+
			"stakeAddressDeposit: 2000000\nstakePoolDeposit: 500000000\n"+
			"maxTxSize: 16384\nmaxValueSize: 5000\ncostModels:\n  PlutusV4: [1]\n",
	)
	pparams, err := config.LoadProtocolParams(path)
	require.NoError(t, err)
	cfg, err := pparams.BuilderConfig()
	require.NoError(t, err)
	_, ok := cfg.ExUnitPrices()
	assert.False(t, ok)
	_, err = pparams.Costmdls()
	require.Error(t, err)
}

func TestBuildRequest(t *testing.T) {
	path := writeTestFile(t, "request.yaml", `
utxos:
  - tx_hash: 3b40265111d8bb3c3c608d95b3a0bf83461ace32d79336579a1939b3aad1c0b7
    index: 1
    address: addr_test1vqln2c2cx5jc4hw768pwz60n5245462dvp4auqcw09rl2xqylkuuu
    coin: 5000000
    assets:
      1c7e2a5d4b3f6e8a9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d.746f6b656e: 10
outputs:
  - address: addr_test1vqln2c2cx5jc4hw768pwz60n5245462dvp4auqcw09rl2xqylkuuu
    coin: 2000000
change_address: addr_test1vqln2c2cx5jc4hw768pwz60n5245462dvp4auqcw09rl2xqylkuuu
strategy: largestfirstmultiasset
ttl: 1000
metadata:
  674: '{"msg": "hello"}'
`)
	req, err := config.LoadBuildRequest(path)
	require.NoError(t, err)
	utxos, err := req.GetUTxOs()
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, uint32(1), utxos[0].Input.Index)
	assert.True(t, utxos[0].Output.Amount.HasAssets())
	outputs, err := req.GetOutputs()
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, num.BigNum(2_000_000), outputs[0].Amount.Coin)
	_, err = req.GetChangeAddress()
	require.NoError(t, err)
	strategy, err := req.GetStrategy()
	require.NoError(t, err)
	assert.Equal(t, builder.LargestFirstMultiAsset, strategy)
	assert.Equal(t, `{"msg": "hello"}`, req.Metadata[674])
	req.Strategy = "fastest"
	_, err = req.GetStrategy()
	require.ErrorIs(t, err, config.ErrInvalidRequest)
}
