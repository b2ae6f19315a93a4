// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/spf13/cobra"

	"github.com/dotandev/stark-deploy/internal/deployer"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Predict the contract address without contacting a node",
	Long: `Compute the address the Universal Deployer Contract will assign for the
current profile. The class hash comes from the local artifact when one is
found, otherwise from --class-hash.`,
	Args: cobra.NoArgs,
	RunE: runAddress,
}

func init() {
	addProfileFlags(addressCmd.Flags())
}

type addressResult struct {
	ContractAddress *felt.Felt `json:"contract_address"`
	ClassHash       *felt.Felt `json:"class_hash"`
	Deployer        *felt.Felt `json:"deployer"`
	Salt            *felt.Felt `json:"salt"`
	Unique          bool       `json:"unique"`
}

func runAddress(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}
	a, err := loadArtifact(cfg, true)
	if err != nil {
		return err
	}

	classHash, err := deployer.ResolveClassHash(deployer.Plan{Artifact: a, ClassHash: params.ClassHash})
	if err != nil {
		return err
	}
	p := deployer.DeployParams{
		ClassHash:           classHash,
		Salt:                params.Salt,
		UDCVersion:          params.UDCVersion,
		UDC:                 params.UDC,
		Unique:              params.Unique,
		ConstructorCalldata: params.ConstructorCalldata(),
	}
	if _, err := deployer.UDCCall(p); err != nil {
		return err
	}
	res := addressResult{
		ContractAddress: deployer.ComputeAddress(params.Account, p),
		ClassHash:       classHash,
		Deployer:        params.Account,
		Salt:            params.Salt,
		Unique:          params.Unique,
	}

	if jsonOutput {
		return printJSON(out, res)
	}
	field(out, "Contract address", res.ContractAddress)
	field(out, "Class hash", res.ClassHash)
	field(out, "Deployer", res.Deployer)
	field(out, "Salt", res.Salt)
	field(out, "Unique", fmt.Sprint(res.Unique))
	return nil
}
