// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dotandev/stark-deploy/internal/artifact"
	"github.com/dotandev/stark-deploy/internal/config"
	"github.com/dotandev/stark-deploy/internal/logger"
	"github.com/dotandev/stark-deploy/internal/telemetry"
)

// addProfileFlags registers the deployment profile flags. Defaults shown in
// help come from the devnet profile; only flags set explicitly override the
// input file and environment.
func addProfileFlags(fs *pflag.FlagSet) {
	d := config.Defaults()
	fs.String("chain-id", "", "Expected chain id, e.g. SN_SEPOLIA (derived from --network when empty)")
	fs.String("account", d.AccountAddress, "Deployer account address")
	fs.String("private-key", "", "Deployer account private key (defaults to the devnet key)")
	fs.String("public-key", "", "Deployer account public key (keystore id)")
	fs.String("class-hash", d.ClassHash, "Class hash to deploy when no artifact is found")
	fs.String("salt", d.Salt, "Deployment salt")
	fs.String("udc-version", d.UDCVersion, "Universal Deployer Contract version (cairo0 or cairo2)")
	fs.String("udc", d.UDCAddress, "Expected Universal Deployer Contract address (checked against --udc-version)")
	fs.Int("account-cairo-version", d.AccountCairo, "Cairo version of the account contract (0 or 2)")
	fs.Bool("unique", d.Unique, "Mix the deployer address into the salt")
	fs.String("client-public-key", d.ClientPublicKey, "First constructor argument")
	fs.String("server-public-key", d.ServerPublicKey, "Second constructor argument")
	fs.String("sierra", "", "Path of the Sierra contract class")
	fs.String("casm", "", "Path of the compiled CASM class (derived from --sierra when empty)")
	fs.String("artifact-dir", d.ArtifactDir, "Directory scanned for Scarb build artifacts")
	fs.String("contract", "", "Contract name when the artifact directory holds several")
	fs.Bool("wait", d.Wait, "Wait for transaction receipts")
	fs.Duration("poll-interval", d.PollInterval, "Receipt polling interval")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(inputFile, cmd.Flags())
}

// loadArtifact resolves and parses the contract artifact. When nothing is
// found and optional is set it returns nil without error so the run can
// fall back to the configured class hash.
func loadArtifact(cfg *config.Config, optional bool) (*artifact.Artifact, error) {
	r := artifact.NewResolver(
		artifact.WithTargetDir(cfg.ArtifactDir),
		artifact.WithContractName(cfg.ContractName),
		artifact.WithPaths(cfg.SierraPath, cfg.CasmPath),
	)
	paths, err := r.Resolve()
	if err != nil {
		explicit := cfg.SierraPath != "" || cfg.ContractName != ""
		if optional && !explicit && errors.Is(err, artifact.ErrArtifactNotFound) {
			logger.Logger.Info("No contract artifact found, using configured class hash", "error", err)
			return nil, nil
		}
		return nil, err
	}
	return artifact.Load(paths)
}

// startTelemetry installs the tracer provider and returns its shutdown
// function. Exporter failures are logged, never fatal.
func startTelemetry(ctx context.Context, cfg *config.Config) func() {
	shutdown, err := telemetry.Init(ctx, cfg.OTLPEndpoint, version)
	if err != nil {
		logger.Logger.Warn("Tracing disabled", "error", err)
		return func() {}
	}
	return func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Logger.Warn("Failed to flush traces", "error", err)
		}
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	heading = color.New(color.FgCyan)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
	warning = color.New(color.FgYellow)
)

func field(w io.Writer, name string, value any) {
	fmt.Fprintf(w, "  %-18s %v\n", name+":", value)
}
