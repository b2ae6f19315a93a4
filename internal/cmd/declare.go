// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotandev/stark-deploy/internal/deployer"
)

var declareCmd = &cobra.Command{
	Use:   "declare",
	Short: "Declare the contract class without deploying it",
	Long: `Declare the contract class from its Scarb artifacts. Nothing is sent when
the node already knows the class.

Example:
  stark-deploy declare --sierra target/dev/app_Escrow.contract_class.json`,
	Args: cobra.NoArgs,
	RunE: runDeclare,
}

func init() {
	addProfileFlags(declareCmd.Flags())
}

func runDeclare(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}
	defer startTelemetry(ctx, cfg)()

	a, err := loadArtifact(cfg, false)
	if err != nil {
		return err
	}

	acct, err := connect(cmd, cfg, params)
	if err != nil {
		return err
	}
	if err := acct.CheckChainID(ctx, params.ChainID); err != nil {
		return err
	}

	res, err := deployer.New(acct, deployer.WithWait(cfg.Wait)).Declare(ctx, a)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(out, res)
	}
	fmt.Fprintln(out)
	field(out, "Class hash", res.ClassHash)
	if res.AlreadyDeclared {
		warning.Fprintln(out, "Class already declared, nothing sent")
		return nil
	}
	field(out, "Declare tx", res.TxHash)
	success.Fprintln(out, "✓ Class declared")
	return nil
}
