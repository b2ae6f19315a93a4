// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotandev/stark-deploy/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect previous deployment runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded deployment runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			if entries == nil {
				entries = []history.Entry{}
			}
			return printJSON(cmd.OutOrStdout(), entries)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tNETWORK\tSTATUS\tCONTRACT")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				e.ID, e.CreatedAt.Local().Format(time.DateTime), e.Network, e.Status, e.ContractAddress)
		}
		return tw.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one deployment run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		e, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, e)
		}
		field(out, "ID", e.ID)
		field(out, "Status", e.Status)
		field(out, "Network", e.Network)
		field(out, "RPC URL", e.RPCURL)
		field(out, "Account", e.Account)
		field(out, "Class hash", e.ClassHash)
		field(out, "Salt", e.Salt)
		field(out, "Contract address", e.ContractAddress)
		field(out, "Declare tx", e.DeclareTxHash)
		field(out, "Deploy tx", e.DeployTxHash)
		field(out, "Created", e.CreatedAt.Local().Format(time.RFC3339))
		field(out, "Updated", e.UpdatedAt.Local().Format(time.RFC3339))
		if e.Error != "" {
			failure.Fprintf(out, "  Error: %s\n", e.Error)
		}
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show (0 for all)")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.HistoryDB == "" {
		return nil, fmt.Errorf("history database path is empty (set --history-db)")
	}
	return history.Open(cfg.HistoryDB)
}
