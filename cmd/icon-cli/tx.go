package main

import (
	"github.com/spf13/cobra"

	"github.com/Klingon-tech/icon-cli/internal/console"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

func newTxCmd(root *rootConfiguration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Look up transactions",
	}

	var wait bool
	result := &cobra.Command{
		Use:   "result HASH",
		Short: "Get the result of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			hash, err := types.ParseHash(args[0])
			if err != nil {
				return err
			}
			if wait {
				_, err := a.handler.AwaitResult(cmd.Context(), hash, true)
				return err
			}
			r, err := a.chain.GetTransactionResult(cmd.Context(), hash)
			if err != nil {
				return err
			}
			return console.PrintResponse(a.out, "result", r.Raw)
		},
	}
	result.Flags().BoolVar(&wait, "wait", false, "poll until the result is final")

	get := &cobra.Command{
		Use:   "get HASH",
		Short: "Get a transaction by hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			hash, err := types.ParseHash(args[0])
			if err != nil {
				return err
			}
			t, err := a.chain.GetTransactionByHash(cmd.Context(), hash)
			if err != nil {
				return err
			}
			return console.PrintResponse(a.out, "transaction", t.Raw)
		},
	}

	cmd.AddCommand(result, get)
	return cmd
}
