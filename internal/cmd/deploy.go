// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dotandev/stark-deploy/internal/config"
	"github.com/dotandev/stark-deploy/internal/deployer"
	"github.com/dotandev/stark-deploy/internal/history"
	"github.com/dotandev/stark-deploy/internal/logger"
	"github.com/dotandev/stark-deploy/internal/rpc"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Declare (if needed) and deploy the contract",
	Long: `Declare the contract class when the node does not know it yet, then deploy
an instance through the Universal Deployer Contract with the client and
server public keys as constructor arguments.

The class is taken from the Scarb artifacts in --artifact-dir (or --sierra
and --casm). Without artifacts the configured --class-hash must already be
declared.

Example:
  stark-deploy deploy
  stark-deploy deploy --network sepolia --account 0x... --private-key 0x...
  stark-deploy deploy -i profile.json --contract Escrow --json`,
	Args: cobra.NoArgs,
	RunE: runDeploy,
}

func init() {
	addProfileFlags(deployCmd.Flags())
}

func runDeploy(cmd *cobra.Command, _ []string) error {
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

	a, err := loadArtifact(cfg, true)
	if err != nil {
		return err
	}

	acct, err := connect(cmd, cfg, params)
	if err != nil {
		return err
	}

	opts := []deployer.Option{deployer.WithWait(cfg.Wait)}
	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			logger.Logger.Warn("Deployment history disabled", "error", err)
		} else {
			defer store.Close()
			opts = append(opts, deployer.WithRecorder(store))
		}
	}

	plan := deployer.Plan{
		Network:         params.Network,
		RPCURL:          params.RPCURL,
		ExpectedChainID: params.ChainID,
		Artifact:        a,
		ClassHash:       params.ClassHash,
		Deploy: deployer.DeployParams{
			Salt:                params.Salt,
			UDCVersion:          params.UDCVersion,
			UDC:                 params.UDC,
			Unique:              params.Unique,
			ConstructorCalldata: params.ConstructorCalldata(),
		},
	}

	res, runErr := deployer.New(acct, opts...).Run(ctx, plan)
	if jsonOutput {
		if res != nil {
			if err := printJSON(out, res); err != nil {
				return err
			}
		}
		return runErr
	}

	if res != nil {
		printResult(out, res)
	}
	if runErr != nil {
		failure.Fprintf(out, "✗ Deployment failed: %v\n", runErr)
		return runErr
	}
	success.Fprintln(out, "✓ Contract deployed")
	return nil
}

// connect dials the node, checks its spec version and builds the signing
// account.
func connect(cmd *cobra.Command, cfg *config.Config, params *config.Params) (*rpc.Account, error) {
	client, err := rpc.NewClient(params.Network, params.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize RPC client: %w", err)
	}
	if !jsonOutput {
		heading.Fprintf(cmd.OutOrStdout(), "Connecting to %s\n", client.URL)
	}
	if _, err := client.CheckSpecVersion(cmd.Context()); err != nil {
		return nil, err
	}
	return rpc.NewAccount(client, params.Account, params.PrivateKey, params.PublicKey, params.AccountCairo, cfg.PollInterval)
}

func printResult(w io.Writer, res *deployer.Result) {
	fmt.Fprintln(w)
	heading.Fprintln(w, "Deployment")
	field(w, "Network", res.Network)
	field(w, "Account", res.Account)
	field(w, "Class hash", res.ClassHash)
	field(w, "Salt", res.Salt)
	if res.Fingerprint != "" {
		field(w, "Artifact sha256", res.Fingerprint)
	}
	if d := res.Declare; d != nil {
		if d.AlreadyDeclared {
			field(w, "Declare", "class already declared")
		} else {
			field(w, "Declare tx", d.TxHash)
		}
	}
	if d := res.Deploy; d != nil {
		field(w, "Contract address", d.ContractAddress)
		field(w, "Deploy tx", d.TxHash)
		if d.Receipt != nil {
			field(w, "Status", d.Receipt.ExecutionStatus+" / "+d.Receipt.FinalityStatus)
			if d.Receipt.RevertReason != "" {
				warning.Fprintf(w, "  Revert reason: %s\n", d.Receipt.RevertReason)
			}
		}
	}
	if res.ID != "" {
		field(w, "History id", res.ID)
	}
	fmt.Fprintln(w)
}
