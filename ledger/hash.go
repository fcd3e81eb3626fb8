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
	"github.com/blinklabs-io/gocsl/cbor"
	"github.com/blinklabs-io/gocsl/crypto"
	"github.com/blinklabs-io/gocsl/plutus"
)

// HashTransaction returns the transaction id for body
func HashTransaction(body *TransactionBody) (crypto.TransactionHash, error) {
	data, err := body.MarshalCBOR()
	if err != nil {
		return crypto.TransactionHash{}, err
	}
	return crypto.HashTransactionBytes(data), nil
}

func HashPlutusData(data plutus.PlutusData) (crypto.DataHash, error) {
	tmp, err := plutus.Encode(data)
	if err != nil {
		return crypto.DataHash{}, err
	}
	return crypto.HashDataBytes(tmp), nil
}

// HashDatum hashes a datum using the bytes it was decoded from when it has them
func HashDatum(datum plutus.Datum) (crypto.DataHash, error) {
	tmp, err := datum.MarshalCBOR()
	if err != nil {
		return crypto.DataHash{}, err
	}
	return crypto.HashDataBytes(tmp), nil
}

func HashAuxiliaryData(auxData *AuxiliaryData) (crypto.AuxiliaryDataHash, error) {
	return auxData.Hash()
}

// HashScriptData computes the script integrity hash over the redeemers, the datums and the
// language views of costModels. A transaction with datums but no redeemers hashes an empty
// redeemer list and omits cost models.
func HashScriptData(
	redeemers *Redeemers,
	costModels Costmdls,
	datums []plutus.Datum,
) (crypto.ScriptDataHash, error) {
	var datumBytes []byte
	if len(datums) > 0 {
		items, err := encodeItems(datums)
		if err != nil {
			return crypto.ScriptDataHash{}, err
		}
		datumBytes = cbor.EncodeArray(items, false)
	}
	var buf []byte
	if (redeemers == nil || redeemers.Len() == 0) && datumBytes != nil {
		buf = append(buf, cbor.MajorTypeArray)
		buf = append(buf, datumBytes...)
		buf = append(buf, cbor.MajorTypeMap)
		return crypto.HashScriptDataBytes(buf), nil
	}
	if redeemers == nil {
		redeemers = &Redeemers{}
	}
	redeemerBytes, err := redeemers.MarshalCBOR()
	if err != nil {
		return crypto.ScriptDataHash{}, err
	}
	views, err := costModels.LanguageViewsEncoding()
	if err != nil {
		return crypto.ScriptDataHash{}, err
	}
	buf = append(buf, redeemerBytes...)
	buf = append(buf, datumBytes...)
	buf = append(buf, views...)
	return crypto.HashScriptDataBytes(buf), nil
}

// MakeVkeyWitness signs a transaction hash
func MakeVkeyWitness(txHash crypto.TransactionHash, key crypto.PrivateKey) Vkeywitness {
	return Vkeywitness{
		Vkey:      key.ToPublic(),
		Signature: key.Sign(txHash.Bytes()),
	}
}

// MakeIcarusBootstrapWitness signs a transaction hash for an Icarus style Byron address derived
// from key
func MakeIcarusBootstrapWitness(
	txHash crypto.TransactionHash,
	addr ByronAddress,
	key crypto.Bip32PrivateKey,
) (BootstrapWitness, error) {
	attributes, err := addr.Attributes().MarshalCBOR()
	if err != nil {
		return BootstrapWitness{}, err
	}
	return BootstrapWitness{
		Vkey:       key.ToPublic().ToRawKey(),
		Signature:  key.ToRawKey().Sign(txHash.Bytes()),
		ChainCode:  key.ChainCode(),
		Attributes: attributes,
	}, nil
}
