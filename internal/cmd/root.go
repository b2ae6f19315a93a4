// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dotandev/stark-deploy/internal/config"
	"github.com/dotandev/stark-deploy/internal/logger"
)

// InterruptExitCode is the conventional exit status after SIGINT.
const InterruptExitCode = 130

// ErrInterrupted marks a command stopped by SIGINT or SIGTERM.
var ErrInterrupted = errors.New("interrupted")

var (
	inputFile  string
	logLevel   string
	logJSON    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "stark-deploy",
	Short: "stark-deploy declares and deploys a Starknet contract",
	Long: `stark-deploy declares and deploys a Starknet contract through the
Universal Deployer Contract.

It takes the deployment profile from built-in devnet defaults, an optional
JSON input file, STARK_DEPLOY_* environment variables (a .env file is read
when present) and command-line flags, then:
  - Declares the contract class unless the node already knows it
  - Deploys an instance with the client and server public keys
  - Prints the contract address and transaction hashes`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		return logger.Init(cmd.ErrOrStderr(), logLevel, logJSON)
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context; the resulting error satisfies IsInterrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	return err
}

// IsInterrupted reports whether err was caused by a signal.
func IsInterrupted(err error) bool {
	return errors.Is(err, ErrInterrupted) || errors.Is(err, context.Canceled)
}

func init() {
	d := config.Defaults()
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&inputFile, "input", "i", "", "JSON file with deployment parameters")
	pf.StringP("network", "n", d.Network, "Network preset (devnet, sepolia, mainnet)")
	pf.String("rpc-url", "", "Starknet JSON-RPC endpoint (overrides --network)")
	pf.String("history-db", d.HistoryDB, "Path of the deployment history database")
	pf.String("otlp-endpoint", "", "OTLP/HTTP endpoint for traces (disabled when empty)")
	pf.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.BoolVar(&logJSON, "log-json", false, "Emit logs as JSON lines")
	pf.BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(declareCmd)
	rootCmd.AddCommand(addressCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(agreementCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
