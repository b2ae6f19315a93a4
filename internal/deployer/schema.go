// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package deployer

import (
	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/utils"

	"github.com/dotandev/stark-deploy/internal/artifact"
	"github.com/dotandev/stark-deploy/internal/rpc"
)

// DeployParams describes one Universal Deployer Contract deployment.
type DeployParams struct {
	ClassHash  *felt.Felt
	Salt       *felt.Felt
	UDCVersion utils.UDCVersion
	// UDC, when set, must equal the address of the selected UDC version.
	UDC                 *felt.Felt
	Unique              bool
	ConstructorCalldata []*felt.Felt
}

// Plan is the input of a full declare-and-deploy run.
type Plan struct {
	Network         string
	RPCURL          string
	ExpectedChainID string
	// Artifact is nil for deploy-only runs of an already declared class.
	Artifact *artifact.Artifact
	// ClassHash is the configured class hash. When an artifact is present the
	// locally computed hash takes precedence.
	ClassHash *felt.Felt
	Deploy    DeployParams
}

type DeclareResult struct {
	ClassHash       *felt.Felt   `json:"class_hash"`
	TxHash          *felt.Felt   `json:"transaction_hash,omitempty"`
	AlreadyDeclared bool         `json:"already_declared"`
	Receipt         *rpc.Receipt `json:"receipt,omitempty"`
}

type DeployResult struct {
	ContractAddress *felt.Felt   `json:"contract_address"`
	TxHash          *felt.Felt   `json:"transaction_hash"`
	Receipt         *rpc.Receipt `json:"receipt,omitempty"`
}

// Result is the document printed by `deploy --json`.
type Result struct {
	ID          string         `json:"id,omitempty"`
	Network     string         `json:"network"`
	Account     *felt.Felt     `json:"account"`
	ClassHash   *felt.Felt     `json:"class_hash"`
	Salt        *felt.Felt     `json:"salt"`
	Fingerprint string         `json:"artifact_sha256,omitempty"`
	Declare     *DeclareResult `json:"declare,omitempty"`
	Deploy      *DeployResult  `json:"deploy,omitempty"`
}
