// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotandev/stark-deploy/internal/agreement"
)

var agreementCmd = &cobra.Command{
	Use:   "agreement",
	Short: "Work with signed price agreements",
}

var agreementEncodeCmd = &cobra.Command{
	Use:   "encode <file>",
	Short: "Print the calldata of a signed agreement",
	Long: `Decode a signed agreement JSON document and print its fields as felts in
calldata order: quantity, nonce, price, serverSignatureR, serverSignatureS,
clientSignatureR, clientSignatureS.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := agreement.Load(args[0])
		if err != nil {
			return err
		}
		f, err := a.Felts()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, f.Calldata())
		}
		for _, v := range f.Calldata() {
			fmt.Fprintln(out, v)
		}
		return nil
	},
}

func init() {
	agreementCmd.AddCommand(agreementEncodeCmd)
}
