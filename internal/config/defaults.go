// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package config

import "time"

// Devnet profile. The account is the first prefunded account of a local
// starknet-devnet started with --seed 0; none of these values protect real
// funds. The account signs with the legacy (Cairo 0) calldata encoding.
const (
	DefaultNetwork         = "devnet"
	DefaultAccountAddress  = "0x4ad77233a32945d633558939989ca6abcc87a51ccc9d22587528f937c0956cd"
	DefaultPrivateKey      = "0x1c39c193193ee90f688703409a1a0a0f63d933c771cac9230e75ce4dad21ab7"
	DefaultClassHash       = "0x26c4d6961674f8c33c55d2f7c9e78c32d00e73552bd0c1df8652db0b42bdd9c"
	DefaultSalt            = "0x679ca888a3102b4"
	DefaultClientPublicKey = "0xe5f5c0f64f7d753a3094d012a62d714f0fe3ca320df466cee03bf393d352f"
	DefaultServerPublicKey = "0x70bf7cc40c6ea06a861742fa98c2a22e077672a1dd9ed2aa025ec2f8258a2e5"
	DefaultArtifactDir     = "target/dev"
	DefaultUDCVersion      = "cairo0"
	DefaultAccountCairo    = 0
	DefaultHistoryDB       = ".stark-deploy/history.db"
	DefaultPollInterval    = time.Second
)

// Defaults returns the built-in devnet profile.
func Defaults() Config {
	return Config{
		Network:         DefaultNetwork,
		AccountAddress:  DefaultAccountAddress,
		PrivateKey:      DefaultPrivateKey,
		ClassHash:       DefaultClassHash,
		Salt:            DefaultSalt,
		UDCVersion:      DefaultUDCVersion,
		AccountCairo:    DefaultAccountCairo,
		Unique:          true,
		ClientPublicKey: DefaultClientPublicKey,
		ServerPublicKey: DefaultServerPublicKey,
		ArtifactDir:     DefaultArtifactDir,
		Wait:            true,
		PollInterval:    DefaultPollInterval,
		HistoryDB:       DefaultHistoryDB,
	}
}
