// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved deployment profile",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged profile with the private key masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), cfg.Redacted())
	},
}

func init() {
	addProfileFlags(configShowCmd.Flags())
	configCmd.AddCommand(configShowCmd)
}
