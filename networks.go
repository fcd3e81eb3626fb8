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

// Package gocsl holds the registry of known Cardano networks. The codec lives in the cbor, num,
// crypto, plutus and ledger packages and the transaction builder in the builder package.
package gocsl

import "github.com/blinklabs-io/gocsl/ledger"

// Network definitions
var (
	NetworkMainnet = Network{
		Id:           ledger.AddressNetworkMainnet,
		Name:         "mainnet",
		NetworkMagic: ledger.ByronMainnetProtocolMagic,
	}
	NetworkPreprod = Network{
		Id:           ledger.AddressNetworkTestnet,
		Name:         "preprod",
		NetworkMagic: 1,
	}
	NetworkPreview = Network{
		Id:           ledger.AddressNetworkTestnet,
		Name:         "preview",
		NetworkMagic: 2,
	}
	NetworkSancho = Network{
		Id:           ledger.AddressNetworkTestnet,
		Name:         "sanchonet",
		NetworkMagic: 4,
	}
	NetworkTestnet = Network{
		Id:           ledger.AddressNetworkTestnet,
		Name:         "testnet",
		NetworkMagic: 1097911063,
	}

	NetworkInvalid = Network{
		Id:           0,
		Name:         "invalid",
		NetworkMagic: 0,
	} // NetworkInvalid is used as a return value for lookup functions when a network isn't found
)

// List of valid networks for use in lookup functions
var networks = []Network{
	NetworkMainnet,
	NetworkPreprod,
	NetworkPreview,
	NetworkSancho,
	NetworkTestnet,
}

// NetworkByName returns a predefined network by name
func NetworkByName(name string) Network {
	for _, network := range networks {
		if network.Name == name {
			return network
		}
	}
	return NetworkInvalid
}

// NetworkByMagic returns a predefined network by protocol magic
func NetworkByMagic(networkMagic uint32) Network {
	for _, network := range networks {
		if network.NetworkMagic == networkMagic {
			return network
		}
	}
	return NetworkInvalid
}

// Network represents a Cardano network
type Network struct {
	Id           uint8 // network ID used in Shelley addresses and transaction bodies
	Name         string
	NetworkMagic uint32 // protocol magic, also carried in Byron testnet addresses
}

func (n Network) String() string {
	return n.Name
}

// IsMainnet reports whether addresses for the network use the mainnet network ID
func (n Network) IsMainnet() bool {
	return n.Id == ledger.AddressNetworkMainnet
}
