// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dotandev/stark-deploy/internal/server"
)

var (
	listenAddr  string
	corsOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the deployment history over JSON-RPC",
	Long: `Serve the deployment history as a read-only JSON-RPC 2.0 endpoint at /rpc.

Methods:
  History.List {"limit": 10}
  History.Get  {"id": "<run id>"}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		h, err := server.NewHandler(store, corsOrigins)
		if err != nil {
			return err
		}
		heading.Fprintf(cmd.OutOrStdout(), "Serving history on http://%s/rpc\n", listenAddr)
		return server.Serve(cmd.Context(), listenAddr, h)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:8545", "Address to listen on")
	serveCmd.Flags().StringSliceVar(&corsOrigins, "cors-origin", nil, "Origins allowed to call the endpoint from a browser")
}
