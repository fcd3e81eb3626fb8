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
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
	"github.com/blinklabs-io/gocsl/plutus"
)

// Fee used while the real fee is unknown. Its encoding is as large as any real fee's.
const feePlaceholder num.BigNum = 0x1_0000_0000

// TransactionBuilder accumulates the parts of a transaction and balances it against the protocol
// parameters in its config. It is not safe for concurrent use.
type TransactionBuilder struct {
	config                TransactionBuilderConfig
	logger                *slog.Logger
	rng                   *rand.Rand
	inputs                *TxInputsBuilder
	collateral            *TxInputsBuilder
	collateralReturn      *ledger.TransactionOutput
	totalCollateral       *num.BigNum
	outputs               []ledger.TransactionOutput
	fee                   *num.BigNum
	ttl                   *num.BigNum
	validityStartInterval *num.BigNum
	certs                 *CertificatesBuilder
	withdrawals           *WithdrawalsBuilder
	auxiliaryData         *ledger.AuxiliaryData
	mint                  *MintBuilder
	referenceInputs       []ledger.TransactionInput
	refInputScriptSize    int
	requiredSigners       []crypto.Ed25519KeyHash
	extraDatums           []plutus.Datum
	scriptDataHash        *crypto.ScriptDataHash
	networkID             *uint8
}

// BuilderOptionFunc is a type that represents functions that modify the transaction builder
type BuilderOptionFunc func(*TransactionBuilder)

// WithLogger specifies the logger to use. The default logger is slog.Default()
func WithLogger(logger *slog.Logger) BuilderOptionFunc {
	return func(b *TransactionBuilder) {
		b.logger = logger
	}
}

// WithRandomSource specifies the random source used by the RandomImprove coin selection
// strategies
func WithRandomSource(rng *rand.Rand) BuilderOptionFunc {
	return func(b *TransactionBuilder) {
		b.rng = rng
	}
}

func NewTransactionBuilder(
	config TransactionBuilderConfig,
	opts ...BuilderOptionFunc,
) *TransactionBuilder {
	b := &TransactionBuilder{
		config:      config,
		inputs:      NewTxInputsBuilder(),
		certs:       NewCertificatesBuilder(),
		withdrawals: NewWithdrawalsBuilder(),
		mint:        NewMintBuilder(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return b
}

// clone returns a copy that can be changed without affecting b
func (b *TransactionBuilder) clone() *TransactionBuilder {
	ret := *b
	inputs := *b.inputs
	inputs.entries = slices.Clone(b.inputs.entries)
	inputs.requiredSigners = slices.Clone(b.inputs.requiredSigners)
	ret.inputs = &inputs
	certs := *b.certs
	certs.entries = slices.Clone(b.certs.entries)
	ret.certs = &certs
	ret.outputs = slices.Clone(b.outputs)
	ret.referenceInputs = slices.Clone(b.referenceInputs)
	ret.requiredSigners = slices.Clone(b.requiredSigners)
	ret.extraDatums = slices.Clone(b.extraDatums)
	return &ret
}

func (b *TransactionBuilder) AddKeyInput(
	hash crypto.Ed25519KeyHash,
	input ledger.TransactionInput,
	amount ledger.Value,
) {
	b.inputs.AddKeyInput(hash, input, amount)
}

// AddScriptInput adds a script locked input whose witness is supplied later
func (b *TransactionBuilder) AddScriptInput(
	hash crypto.ScriptHash,
	input ledger.TransactionInput,
	amount ledger.Value,
) {
	b.inputs.AddScriptInput(hash, input, amount)
}

func (b *TransactionBuilder) AddNativeScriptInput(
	script NativeScriptSource,
	input ledger.TransactionInput,
	amount ledger.Value,
) {
	b.inputs.AddNativeScriptInput(script, input, amount)
}

func (b *TransactionBuilder) AddPlutusScriptInput(
	witness PlutusWitness,
	input ledger.TransactionInput,
	amount ledger.Value,
) {
	b.inputs.AddPlutusScriptInput(witness, input, amount)
}

func (b *TransactionBuilder) AddBootstrapInput(
	addr ledger.ByronAddress,
	input ledger.TransactionInput,
	amount ledger.Value,
) {
	b.inputs.AddBootstrapInput(addr, input, amount)
}

// AddRegularInput adds an input, choosing the witness kind from the address
func (b *TransactionBuilder) AddRegularInput(
	addr ledger.Address,
	input ledger.TransactionInput,
	amount ledger.Value,
) error {
	return b.inputs.AddRegularInput(addr, input, amount)
}

// AddRequiredNativeInputScripts supplies scripts for pending script inputs, returning how many
// script inputs still lack a witness
func (b *TransactionBuilder) AddRequiredNativeInputScripts(scripts ...NativeScriptSource) int {
	return b.inputs.AddRequiredNativeInputScripts(scripts...)
}

// AddRequiredPlutusInputScripts supplies Plutus witnesses for pending script inputs, returning
// how many script inputs still lack a witness
func (b *TransactionBuilder) AddRequiredPlutusInputScripts(witnesses ...PlutusWitness) int {
	return b.inputs.AddRequiredPlutusInputScripts(witnesses...)
}

// SetInputs replaces every input with those of inputs
func (b *TransactionBuilder) SetInputs(inputs *TxInputsBuilder) {
	b.inputs = inputs
}

// AddOutput adds an output after checking its value size and minimum ADA
func (b *TransactionBuilder) AddOutput(output ledger.TransactionOutput) error {
	if err := b.checkOutput(output); err != nil {
		return err
	}
	output.Amount = output.Amount.Clone()
	b.outputs = append(b.outputs, output)
	return nil
}

// checkNetwork fails when a network id is set and addr belongs to another network
func (b *TransactionBuilder) checkNetwork(addr ledger.Address) error {
	if b.networkID == nil || addr == nil {
		return nil
	}
	if addr.NetworkID() != *b.networkID {
		return NetworkMismatchError{
			Expected: *b.networkID,
			Actual:   addr.NetworkID(),
			Address:  addr.String(),
		}
	}
	return nil
}

// checkNetworks checks every address the body carries, for outputs added before the network id
func (b *TransactionBuilder) checkNetworks() error {
	for _, output := range b.outputs {
		if err := b.checkNetwork(output.Address); err != nil {
			return err
		}
	}
	if b.collateralReturn != nil {
		if err := b.checkNetwork(b.collateralReturn.Address); err != nil {
			return err
		}
	}
	for _, account := range b.withdrawals.Build().Keys() {
		if err := b.checkNetwork(account); err != nil {
			return err
		}
	}
	return nil
}

func (b *TransactionBuilder) checkOutput(output ledger.TransactionOutput) error {
	if err := b.checkNetwork(output.Address); err != nil {
		return err
	}
	valueCbor, err := output.Amount.MarshalCBOR()
	if err != nil {
		return err
	}
	if len(valueCbor) > int(b.config.MaxValueSize()) {
		return fmt.Errorf(
			"%w: %d bytes, maximum %d",
			ErrOutputValueTooLarge,
			len(valueCbor),
			b.config.MaxValueSize(),
		)
	}
	minAda, err := ledger.MinAdaForOutput(output, b.config.CoinsPerUtxoByte())
	if err != nil {
		return err
	}
	if output.Amount.Coin < minAda {
		return OutputBelowMinimumError{Coin: output.Amount.Coin.Uint64(), Minimum: minAda.Uint64()}
	}
	return nil
}

// FeeForInput returns the fee the input adds to the transaction
func (b *TransactionBuilder) FeeForInput(
	addr ledger.Address,
	input ledger.TransactionInput,
	amount ledger.Value,
) (num.BigNum, error) {
	tmp := b.clone()
	tmp.SetFee(0)
	before, err := tmp.MinFee()
	if err != nil {
		return 0, err
	}
	if err := tmp.AddRegularInput(addr, input, amount); err != nil {
		return 0, err
	}
	after, err := tmp.MinFee()
	if err != nil {
		return 0, err
	}
	return after.CheckedSub(before)
}

// FeeForOutput returns the fee the output adds to the transaction
func (b *TransactionBuilder) FeeForOutput(output ledger.TransactionOutput) (num.BigNum, error) {
	tmp := b.clone()
	tmp.SetFee(0)
	before, err := tmp.MinFee()
	if err != nil {
		return 0, err
	}
	tmp.outputs = append(tmp.outputs, output)
	after, err := tmp.MinFee()
	if err != nil {
		return 0, err
	}
	return after.CheckedSub(before)
}

func (b *TransactionBuilder) SetFee(fee num.BigNum) {
	b.fee = &fee
}

func (b *TransactionBuilder) SetTTL(ttl num.BigNum) {
	b.ttl = &ttl
}

func (b *TransactionBuilder) SetValidityStartInterval(slot num.BigNum) {
	b.validityStartInterval = &slot
}

func (b *TransactionBuilder) SetNetworkID(networkID uint8) {
	b.networkID = &networkID
}

func (b *TransactionBuilder) SetCerts(certs *CertificatesBuilder) {
	b.certs = certs
}

func (b *TransactionBuilder) SetWithdrawals(withdrawals *WithdrawalsBuilder) {
	b.withdrawals = withdrawals
}

func (b *TransactionBuilder) SetMintBuilder(mint *MintBuilder) {
	b.mint = mint
}

// AddMintAsset mints (or with a negative amount burns) an asset under a native script policy
func (b *TransactionBuilder) AddMintAsset(
	script NativeScriptSource,
	name ledger.AssetName,
	amount num.Int,
) error {
	return b.mint.AddAsset(NewMintWitnessNative(script), name, amount)
}

// AddMintAssetAndOutput mints a positive amount of an asset and sends it to the output being
// built, along with outputCoin
func (b *TransactionBuilder) AddMintAssetAndOutput(
	script NativeScriptSource,
	name ledger.AssetName,
	amount num.Int,
	output *TransactionOutputBuilder,
	outputCoin num.BigNum,
) error {
	multiAsset, err := b.mintAndAssets(script, name, amount)
	if err != nil {
		return err
	}
	tmp, err := output.WithCoinAndAsset(outputCoin, multiAsset).Build()
	if err != nil {
		return err
	}
	return b.AddOutput(tmp)
}

// AddMintAssetAndOutputMinRequiredCoin mints a positive amount of an asset and sends it to the
// output being built with the smallest coin that output can carry
func (b *TransactionBuilder) AddMintAssetAndOutputMinRequiredCoin(
	script NativeScriptSource,
	name ledger.AssetName,
	amount num.Int,
	output *TransactionOutputBuilder,
) error {
	multiAsset, err := b.mintAndAssets(script, name, amount)
	if err != nil {
		return err
	}
	if _, err := output.WithAssetAndMinRequiredCoin(multiAsset, b.config.CoinsPerUtxoByte()); err != nil {
		return err
	}
	tmp, err := output.Build()
	if err != nil {
		return err
	}
	return b.AddOutput(tmp)
}

func (b *TransactionBuilder) mintAndAssets(
	script NativeScriptSource,
	name ledger.AssetName,
	amount num.Int,
) (ledger.MultiAsset, error) {
	quantity, ok := amount.AsPositive()
	if !ok || quantity.IsZero() {
		return nil, fmt.Errorf("%w: output amount must be positive", ErrInvalidMintAmount)
	}
	if err := b.AddMintAsset(script, name, amount); err != nil {
		return nil, err
	}
	ret := ledger.MultiAsset{}
	ret.SetAsset(script.Hash(), name, quantity)
	return ret, nil
}

func (b *TransactionBuilder) SetAuxiliaryData(auxData *ledger.AuxiliaryData) {
	b.auxiliaryData = auxData
}

// AddMetadatum sets a metadata label, creating the auxiliary data if needed
func (b *TransactionBuilder) AddMetadatum(label uint64, value ledger.TransactionMetadatum) {
	if b.auxiliaryData == nil {
		b.auxiliaryData = ledger.NewAuxiliaryData()
	}
	b.auxiliaryData.AddMetadatum(label, value)
}

// AddJSONMetadatum parses a metadatum from JSON with the given schema and sets it as a label
func (b *TransactionBuilder) AddJSONMetadatum(
	label uint64,
	data []byte,
	schema ledger.MetadataJsonSchema,
) error {
	value, err := ledger.MetadatumFromJSON(data, schema)
	if err != nil {
		return err
	}
	b.AddMetadatum(label, value)
	return nil
}

// AddReferenceInput adds an input that is read but not spent
func (b *TransactionBuilder) AddReferenceInput(input ledger.TransactionInput) {
	b.referenceInputs = append(b.referenceInputs, input)
}

// AddScriptReferenceInput adds a reference input carrying a script of scriptSize bytes, which is
// charged the reference script fee
func (b *TransactionBuilder) AddScriptReferenceInput(input ledger.TransactionInput, scriptSize int) {
	b.referenceInputs = append(b.referenceInputs, input)
	b.refInputScriptSize += scriptSize
}

// AddRequiredSigner lists a key hash in the required signers field
func (b *TransactionBuilder) AddRequiredSigner(hash crypto.Ed25519KeyHash) {
	if !slices.Contains(b.requiredSigners, hash) {
		b.requiredSigners = append(b.requiredSigners, hash)
	}
}

// AddExtraWitnessDatum adds a datum to the witness set that no script input provides
func (b *TransactionBuilder) AddExtraWitnessDatum(datum plutus.PlutusData) {
	b.extraDatums = append(b.extraDatums, plutus.NewDatum(datum))
}

// SetCollateral sets the inputs used as collateral for Plutus scripts
func (b *TransactionBuilder) SetCollateral(collateral *TxInputsBuilder) {
	b.collateral = collateral
}

func (b *TransactionBuilder) SetCollateralReturn(output ledger.TransactionOutput) {
	b.collateralReturn = &output
}

func (b *TransactionBuilder) SetTotalCollateral(total num.BigNum) {
	b.totalCollateral = &total
}

// SetCollateralReturnAndTotal sets the collateral return output and sets the total collateral to
// the collateral inputs minus the returned coin
func (b *TransactionBuilder) SetCollateralReturnAndTotal(output ledger.TransactionOutput) error {
	if b.collateral == nil || b.collateral.Len() == 0 {
		return ErrMissingCollateral
	}
	if err := b.checkOutput(output); err != nil {
		return err
	}
	collateral, err := b.collateral.TotalValue()
	if err != nil {
		return err
	}
	total, err := collateral.Coin.CheckedSub(output.Amount.Coin)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCollateralReturnTooLarge, err)
	}
	b.SetCollateralReturn(output)
	b.SetTotalCollateral(total)
	return nil
}

// SetTotalCollateralAndReturn sets the total collateral and returns everything else in the
// collateral inputs to returnAddr
func (b *TransactionBuilder) SetTotalCollateralAndReturn(
	total num.BigNum,
	returnAddr ledger.Address,
) error {
	if b.collateral == nil || b.collateral.Len() == 0 {
		return ErrMissingCollateral
	}
	if err := b.checkNetwork(returnAddr); err != nil {
		return err
	}
	collateral, err := b.collateral.TotalValue()
	if err != nil {
		return err
	}
	remaining, err := collateral.CheckedSub(ledger.NewValue(total))
	if err != nil {
		return InsufficientBalanceError{Deficit: ledger.NewValue(total).ClampedSub(collateral)}
	}
	b.SetTotalCollateral(total)
	if remaining.IsZero() {
		b.collateralReturn = nil
		return nil
	}
	output := ledger.NewTransactionOutput(returnAddr, remaining)
	if err := b.checkOutput(output); err != nil {
		return err
	}
	b.SetCollateralReturn(output)
	return nil
}

// scriptWitnesses collects the scripts, datums and redeemers of every part of the transaction
func (b *TransactionBuilder) scriptWitnesses() scriptWitnesses {
	var ret scriptWitnesses
	ret.merge(b.inputs.witnesses())
	ret.merge(b.mint.witnesses())
	ret.merge(b.certs.witnesses())
	ret.merge(b.withdrawals.witnesses())
	ret.datums = append(ret.datums, b.extraDatums...)
	ret.refScriptSize += b.refInputScriptSize
	return ret
}

func (b *TransactionBuilder) hasPlutusScripts() bool {
	return b.inputs.hasPlutusInputs() ||
		b.mint.HasPlutusScripts() ||
		b.certs.HasPlutusScripts() ||
		b.withdrawals.HasPlutusScripts()
}

// CalcScriptDataHash sets the script data hash from the redeemers, the datums and the cost
// models of the Plutus languages in use
func (b *TransactionBuilder) CalcScriptDataHash(costModels ledger.Costmdls) error {
	w := b.scriptWitnesses()
	if len(w.redeemers) == 0 && len(w.datums) == 0 {
		b.scriptDataHash = nil
		return nil
	}
	languages := slices.Compact(slices.Sorted(slices.Values(w.languages)))
	retained, err := costModels.RetainLanguageVersions(languages)
	if err != nil {
		return err
	}
	redeemers := ledger.NewRedeemers(w.redeemers...)
	redeemers.Sort()
	hash, err := ledger.HashScriptData(&redeemers, retained, uniqueDatums(w.datums))
	if err != nil {
		return err
	}
	b.scriptDataHash = &hash
	return nil
}

func (b *TransactionBuilder) SetScriptDataHash(hash crypto.ScriptDataHash) {
	b.scriptDataHash = &hash
}

func (b *TransactionBuilder) RemoveScriptDataHash() {
	b.scriptDataHash = nil
}

// GetExplicitInput returns the total value of the inputs
func (b *TransactionBuilder) GetExplicitInput() (ledger.Value, error) {
	return b.inputs.TotalValue()
}

// GetImplicitInput returns the withdrawals plus the deposits refunded by certificates
func (b *TransactionBuilder) GetImplicitInput() (ledger.Value, error) {
	withdrawals, err := b.withdrawals.Total()
	if err != nil {
		return ledger.Value{}, err
	}
	refund, err := b.certs.Refund(b.config.KeyDeposit())
	if err != nil {
		return ledger.Value{}, err
	}
	total, err := withdrawals.CheckedAdd(refund)
	if err != nil {
		return ledger.Value{}, err
	}
	return ledger.NewValue(total), nil
}

// GetTotalInput returns the explicit and implicit input plus minted assets
func (b *TransactionBuilder) GetTotalInput() (ledger.Value, error) {
	explicit, err := b.GetExplicitInput()
	if err != nil {
		return ledger.Value{}, err
	}
	implicit, err := b.GetImplicitInput()
	if err != nil {
		return ledger.Value{}, err
	}
	ret, err := explicit.CheckedAdd(implicit)
	if err != nil {
		return ledger.Value{}, err
	}
	return ret.CheckedAdd(ledger.NewValueFromAssets(b.mint.Build().AsPositiveMultiAsset()))
}

// GetExplicitOutput returns the total value of the outputs
func (b *TransactionBuilder) GetExplicitOutput() (ledger.Value, error) {
	var ret ledger.Value
	for _, output := range b.outputs {
		var err error
		ret, err = ret.CheckedAdd(output.Amount)
		if err != nil {
			return ledger.Value{}, err
		}
	}
	return ret, nil
}

// GetDeposit returns the deposits taken by the certificates
func (b *TransactionBuilder) GetDeposit() (num.BigNum, error) {
	return b.certs.Deposit(b.config.PoolDeposit(), b.config.KeyDeposit())
}

// GetTotalOutput returns the explicit output plus deposits and burned assets
func (b *TransactionBuilder) GetTotalOutput() (ledger.Value, error) {
	explicit, err := b.GetExplicitOutput()
	if err != nil {
		return ledger.Value{}, err
	}
	deposit, err := b.GetDeposit()
	if err != nil {
		return ledger.Value{}, err
	}
	ret, err := explicit.CheckedAdd(ledger.NewValue(deposit))
	if err != nil {
		return ledger.Value{}, err
	}
	return ret.CheckedAdd(ledger.NewValueFromAssets(b.mint.Build().AsNegativeMultiAsset()))
}

// GetFeeIfSet returns the fee, if it has been set explicitly or by AddChangeIfNeeded
func (b *TransactionBuilder) GetFeeIfSet() (num.BigNum, bool) {
	if b.fee == nil {
		return 0, false
	}
	return *b.fee, true
}

// GetReferenceInputs returns the reference inputs added directly or through script sources, in
// ledger order and without inputs that are also spent
func (b *TransactionBuilder) GetReferenceInputs() []ledger.TransactionInput {
	refs := slices.Clone(b.referenceInputs)
	refs = append(refs, b.scriptWitnesses().refInputs...)
	slices.SortFunc(refs, ledger.TransactionInput.Compare)
	refs = slices.CompactFunc(refs, func(a, c ledger.TransactionInput) bool {
		return a.Compare(c) == 0
	})
	return slices.DeleteFunc(refs, b.inputs.contains)
}

func (b *TransactionBuilder) Outputs() []ledger.TransactionOutput {
	return slices.Clone(b.outputs)
}

func (b *TransactionBuilder) buildBody(fee num.BigNum) (*ledger.TransactionBody, error) {
	body := ledger.NewTransactionBody(b.inputs.Inputs(), slices.Clone(b.outputs), fee)
	body.TTL = b.ttl
	body.ValidityStartInterval = b.validityStartInterval
	body.NetworkID = b.networkID
	body.ScriptDataHash = b.scriptDataHash
	if b.certs.Len() > 0 {
		certs := b.certs.Build()
		body.Certs = &certs
	}
	if b.withdrawals.Len() > 0 {
		body.Withdrawals = b.withdrawals.Build()
	}
	if mint := b.mint.Build(); mint.Len() > 0 {
		body.Mint = mint
	}
	if b.auxiliaryData != nil && !b.auxiliaryData.IsEmpty() {
		hash, err := b.auxiliaryData.Hash()
		if err != nil {
			return nil, err
		}
		body.AuxiliaryDataHash = &hash
	}
	if b.collateral != nil && b.collateral.Len() > 0 {
		body.Collateral = b.collateral.Inputs()
	}
	body.CollateralReturn = b.collateralReturn
	body.TotalCollateral = b.totalCollateral
	required := slices.Clone(b.requiredSigners)
	for _, hash := range b.inputs.requiredSigners {
		if !slices.Contains(required, hash) {
			required = append(required, hash)
		}
	}
	if len(required) > 0 {
		body.RequiredSigners = required
	}
	if refs := b.GetReferenceInputs(); len(refs) > 0 {
		body.ReferenceInputs = refs
	}
	return body, nil
}

func (b *TransactionBuilder) buildWitnessSet() ledger.TransactionWitnessSet {
	w := b.scriptWitnesses()
	var ret ledger.TransactionWitnessSet
	seen := map[crypto.ScriptHash]bool{}
	for _, script := range w.nativeScripts {
		hash, err := ledger.NativeScriptHash(script)
		if err != nil || seen[hash] {
			continue
		}
		seen[hash] = true
		ret.NativeScripts = append(ret.NativeScripts, script)
	}
	for _, script := range w.plutusScripts {
		if seen[script.Hash()] {
			continue
		}
		seen[script.Hash()] = true
		ret.PlutusScripts = append(ret.PlutusScripts, script)
	}
	ret.PlutusData = uniqueDatums(w.datums)
	if len(w.redeemers) > 0 {
		redeemers := ledger.NewRedeemers(w.redeemers...)
		redeemers.Sort()
		ret.Redeemers = &redeemers
	}
	return ret
}

func uniqueDatums(datums []plutus.Datum) []plutus.Datum {
	var ret []plutus.Datum
	seen := map[crypto.DataHash]bool{}
	for _, datum := range datums {
		hash, err := ledger.HashDatum(datum)
		if err != nil || seen[hash] {
			continue
		}
		seen[hash] = true
		ret = append(ret, datum)
	}
	return ret
}

// signingKeys returns every key hash that must sign the transaction
func (b *TransactionBuilder) signingKeys() []crypto.Ed25519KeyHash {
	var ret []crypto.Ed25519KeyHash
	ret = append(ret, b.inputs.keyHashes()...)
	if b.collateral != nil {
		ret = append(ret, b.collateral.keyHashes()...)
	}
	ret = append(ret, b.mint.keyHashes()...)
	ret = append(ret, b.certs.keyHashes()...)
	ret = append(ret, b.withdrawals.keyHashes()...)
	ret = append(ret, b.requiredSigners...)
	slices.SortFunc(ret, crypto.Ed25519KeyHash.Compare)
	return slices.Compact(ret)
}

// fakeWitnessSet adds placeholder signatures of the right size for every required signer, so
// that the fee can be computed before signing
func (b *TransactionBuilder) fakeWitnessSet() (ledger.TransactionWitnessSet, error) {
	ret := b.buildWitnessSet()
	for idx, hash := range b.signingKeys() {
		ret.Vkeys = append(ret.Vkeys, fakeVkeyWitness(hash.Bytes(), idx))
	}
	bootstraps := b.inputs.bootstrapAddresses()
	if b.collateral != nil {
		bootstraps = append(bootstraps, b.collateral.bootstrapAddresses()...)
	}
	for idx, addr := range bootstraps {
		witness, err := fakeBootstrapWitness(addr, idx)
		if err != nil {
			return ledger.TransactionWitnessSet{}, err
		}
		ret.Bootstraps = append(ret.Bootstraps, witness)
	}
	return ret, nil
}

func fakeVkeyWitness(seed []byte, idx int) ledger.Vkeywitness {
	vkey := make([]byte, crypto.PublicKeySize)
	copy(vkey, seed)
	binary.BigEndian.PutUint32(vkey[len(vkey)-4:], uint32(idx))
	pub, _ := crypto.PublicKeyFromBytes(vkey)
	sig, _ := crypto.Ed25519SignatureFromBytes(make([]byte, 64))
	return ledger.NewVkeywitness(pub, sig)
}

func fakeBootstrapWitness(addr ledger.ByronAddress, idx int) (ledger.BootstrapWitness, error) {
	attributes, err := addr.Attributes().MarshalCBOR()
	if err != nil {
		return ledger.BootstrapWitness{}, err
	}
	vkeyWitness := fakeVkeyWitness(addr.Root(), idx)
	return ledger.NewBootstrapWitness(
		vkeyWitness.Vkey,
		vkeyWitness.Signature,
		make([]byte, 32),
		attributes,
	), nil
}

// fakeTx returns the transaction with placeholder signatures and the given fee
func (b *TransactionBuilder) fakeTx(fee num.BigNum) (*ledger.Transaction, error) {
	body, err := b.buildBody(fee)
	if err != nil {
		return nil, err
	}
	witnessSet, err := b.fakeWitnessSet()
	if err != nil {
		return nil, err
	}
	return ledger.NewTransaction(*body, witnessSet, b.auxiliaryData), nil
}

func (b *TransactionBuilder) currentFee() num.BigNum {
	if b.fee != nil {
		return *b.fee
	}
	return feePlaceholder
}

// MinFee returns the minimum fee of the transaction: the size based fee with placeholder
// signatures, plus the script execution fee and the reference script fee
func (b *TransactionBuilder) MinFee() (num.BigNum, error) {
	return b.minFeeWith(b.currentFee())
}

func (b *TransactionBuilder) minFeeWith(fee num.BigNum) (num.BigNum, error) {
	tx, err := b.fakeTx(fee)
	if err != nil {
		return 0, err
	}
	ret, err := ledger.MinFee(tx, b.config.FeeAlgo())
	if err != nil {
		return 0, err
	}
	if tx.WitnessSet.Redeemers != nil && tx.WitnessSet.Redeemers.Len() > 0 {
		prices, ok := b.config.ExUnitPrices()
		if !ok {
			return 0, ConfigError{Field: "ex_unit_prices", Msg: "required for Plutus scripts"}
		}
		scriptFee, err := ledger.MinScriptFee(tx, prices)
		if err != nil {
			return 0, err
		}
		if ret, err = ret.CheckedAdd(scriptFee); err != nil {
			return 0, err
		}
	}
	if size := b.scriptWitnesses().refScriptSize; size > 0 {
		if price, ok := b.config.RefScriptCoinsPerByte(); ok {
			refFee, err := ledger.MinRefScriptFee(size, price)
			if err != nil {
				return 0, err
			}
			if ret, err = ret.CheckedAdd(refFee); err != nil {
				return 0, err
			}
		}
	}
	return ret, nil
}

// FullSize returns the encoded size of the transaction with placeholder signatures
func (b *TransactionBuilder) FullSize() (int, error) {
	tx, err := b.fakeTx(b.currentFee())
	if err != nil {
		return 0, err
	}
	data, err := tx.MarshalCBOR()
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// OutputSizes returns the encoded size of each output
func (b *TransactionBuilder) OutputSizes() ([]int, error) {
	ret := make([]int, 0, len(b.outputs))
	for _, output := range b.outputs {
		size, err := output.Size()
		if err != nil {
			return nil, err
		}
		ret = append(ret, size)
	}
	return ret, nil
}

// Build returns the transaction body. The fee must be set and the transaction must fit the
// maximum transaction size.
func (b *TransactionBuilder) Build() (*ledger.TransactionBody, error) {
	if b.fee == nil {
		return nil, ErrFeeNotSet
	}
	size, err := b.FullSize()
	if err != nil {
		return nil, err
	}
	if size > int(b.config.MaxTxSize()) {
		return nil, fmt.Errorf(
			"%w: %d bytes, maximum %d",
			ErrTransactionTooLarge,
			size,
			b.config.MaxTxSize(),
		)
	}
	return b.buildBody(*b.fee)
}

// BuildTx returns the unsigned transaction after checking that every script has a witness, that
// Plutus transactions carry a script data hash and collateral, and that the transaction balances
func (b *TransactionBuilder) BuildTx() (*ledger.Transaction, error) {
	if missing := b.inputs.MissingScripts(); len(missing) > 0 {
		return nil, MissingScriptWitnessError{Kind: "input", Hash: missing[0]}
	}
	if err := b.checkNetworks(); err != nil {
		return nil, err
	}
	if b.hasPlutusScripts() {
		if b.scriptDataHash == nil {
			return nil, ErrMissingScriptDataHash
		}
		if b.collateral == nil || b.collateral.Len() == 0 {
			return nil, ErrMissingCollateral
		}
	}
	if err := b.checkBalance(); err != nil {
		return nil, err
	}
	return b.BuildTxUnsafe()
}

func (b *TransactionBuilder) checkBalance() error {
	if b.fee == nil {
		return ErrFeeNotSet
	}
	totalIn, err := b.GetTotalInput()
	if err != nil {
		return err
	}
	totalOut, err := b.GetTotalOutput()
	if err != nil {
		return err
	}
	totalOut, err = totalOut.CheckedAdd(ledger.NewValue(*b.fee))
	if err != nil {
		return err
	}
	if c, ok := totalIn.Compare(totalOut); !ok || c != 0 {
		return fmt.Errorf(
			"%w: input %s lovelace, output plus fee %s lovelace",
			ErrUnbalancedTransaction,
			totalIn.Coin,
			totalOut.Coin,
		)
	}
	return nil
}

// BuildTxUnsafe returns the unsigned transaction without checking script witnesses or balance
func (b *TransactionBuilder) BuildTxUnsafe() (*ledger.Transaction, error) {
	body, err := b.Build()
	if err != nil {
		return nil, err
	}
	return ledger.NewTransaction(*body, b.buildWitnessSet(), b.auxiliaryData), nil
}

// LegacyTTLFromUint32 converts a TTL given as a 32-bit slot
func LegacyTTLFromUint32(ttl uint32) num.BigNum {
	return num.BigNum(ttl)
}

// LegacyTTLToUint32 narrows a TTL to a 32-bit slot, failing when it does not fit
func LegacyTTLToUint32(ttl num.BigNum) (uint32, error) {
	if ttl.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidLegacyTTL, ttl)
	}
	return uint32(ttl.Uint64()), nil
}
