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
	"fmt"

	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/ledger"
	"github.com/blinklabs-io/gocsl/num"
)

type certEntry struct {
	cert   ledger.Certificate
	native *NativeScriptSource
	plutus *PlutusWitness
}

// CertificatesBuilder accumulates certificates along with the script witnesses of those acting
// on script credentials
type CertificatesBuilder struct {
	entries []certEntry
}

func NewCertificatesBuilder() *CertificatesBuilder {
	return &CertificatesBuilder{}
}

// certScriptHash returns the script hash that must witness the certificate, if any. Stake
// registration needs no witness.
func certScriptHash(cert ledger.Certificate) (crypto.ScriptHash, bool) {
	if cert.Kind() == ledger.CertificateKindStakeRegistration {
		return crypto.ScriptHash{}, false
	}
	cred, ok := ledger.CertificateStakeCredential(cert)
	if !ok {
		return crypto.ScriptHash{}, false
	}
	return cred.ToScriptHash()
}

// Add adds a certificate that needs no script witness
func (b *CertificatesBuilder) Add(cert ledger.Certificate) error {
	if hash, ok := certScriptHash(cert); ok {
		return MissingScriptWitnessError{Kind: "certificate", Hash: hash}
	}
	b.entries = append(b.entries, certEntry{cert: cert})
	return nil
}

// AddWithNativeScript adds a certificate acting on a native script credential
func (b *CertificatesBuilder) AddWithNativeScript(
	cert ledger.Certificate,
	script NativeScriptSource,
) error {
	if err := checkCertScript(cert, script.Hash()); err != nil {
		return err
	}
	b.entries = append(b.entries, certEntry{cert: cert, native: &script})
	return nil
}

// AddWithPlutusWitness adds a certificate acting on a Plutus script credential
func (b *CertificatesBuilder) AddWithPlutusWitness(
	cert ledger.Certificate,
	witness PlutusWitness,
) error {
	if err := checkCertScript(cert, witness.script.Hash()); err != nil {
		return err
	}
	b.entries = append(b.entries, certEntry{cert: cert, plutus: &witness})
	return nil
}

func checkCertScript(cert ledger.Certificate, hash crypto.ScriptHash) error {
	expected, ok := certScriptHash(cert)
	if !ok {
		return fmt.Errorf("%w: %s certificate has no script credential", ErrScriptWitnessMismatch, cert.Kind())
	}
	if expected != hash {
		return fmt.Errorf("%w: expected %s, got %s", ErrScriptWitnessMismatch, expected, hash)
	}
	return nil
}

func (b *CertificatesBuilder) Len() int {
	return len(b.entries)
}

func (b *CertificatesBuilder) Build() ledger.Certificates {
	certs := make([]ledger.Certificate, 0, len(b.entries))
	for _, entry := range b.entries {
		certs = append(certs, entry.cert)
	}
	return ledger.NewCertificates(certs...)
}

// Deposit returns the deposits taken by stake and pool registrations
func (b *CertificatesBuilder) Deposit(poolDeposit, keyDeposit num.BigNum) (num.BigNum, error) {
	var ret num.BigNum
	for _, entry := range b.entries {
		var err error
		switch entry.cert.Kind() {
		case ledger.CertificateKindStakeRegistration:
			ret, err = ret.CheckedAdd(keyDeposit)
		case ledger.CertificateKindPoolRegistration:
			ret, err = ret.CheckedAdd(poolDeposit)
		}
		if err != nil {
			return 0, err
		}
	}
	return ret, nil
}

// Refund returns the deposits returned by stake deregistrations
func (b *CertificatesBuilder) Refund(keyDeposit num.BigNum) (num.BigNum, error) {
	var ret num.BigNum
	for _, entry := range b.entries {
		if entry.cert.Kind() != ledger.CertificateKindStakeDeregistration {
			continue
		}
		var err error
		ret, err = ret.CheckedAdd(keyDeposit)
		if err != nil {
			return 0, err
		}
	}
	return ret, nil
}

func (b *CertificatesBuilder) HasPlutusScripts() bool {
	for _, entry := range b.entries {
		if entry.plutus != nil {
			return true
		}
	}
	return false
}

// keyHashes returns the keys whose signatures the certificates need
func (b *CertificatesBuilder) keyHashes() []crypto.Ed25519KeyHash {
	var ret []crypto.Ed25519KeyHash
	for _, entry := range b.entries {
		switch cert := entry.cert.(type) {
		case ledger.StakeDeregistration, ledger.StakeDelegation:
			cred, _ := ledger.CertificateStakeCredential(cert)
			if hash, ok := cred.ToKeyHash(); ok {
				ret = append(ret, hash)
			}
		case ledger.PoolRegistration:
			ret = append(ret, cert.Params.Operator)
			ret = append(ret, cert.Params.PoolOwners...)
		case ledger.PoolRetirement:
			ret = append(ret, cert.Pool)
		}
		if entry.native != nil {
			if script, ok := entry.native.Script(); ok {
				ret = append(ret, ledger.NativeScriptRequiredSigners(script)...)
			}
		}
	}
	return ret
}

// witnesses collects the certificate scripts. Cert redeemers are indexed by certificate position.
func (b *CertificatesBuilder) witnesses() scriptWitnesses {
	var ret scriptWitnesses
	for index, entry := range b.entries {
		switch {
		case entry.native != nil:
			ret.addNative(*entry.native)
		case entry.plutus != nil:
			ret.addPlutus(*entry.plutus, ledger.RedeemerTagCert, index)
		}
	}
	return ret
}
