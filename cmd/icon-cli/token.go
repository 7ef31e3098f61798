package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/icon-cli/internal/console"
	"github.com/Klingon-tech/icon-cli/internal/token"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

// tokenClient resolves a symbol or contract address to a client backed by
// the metadata store.
func tokenClient(a *app, symbol string) (*token.Client, error) {
	addr, err := token.Resolve(symbol)
	if err != nil {
		return nil, err
	}
	db, err := a.storage()
	if err != nil {
		return nil, err
	}
	return token.New(addr, a.chain, a.handler).WithStore(token.NewStore(db)), nil
}

func newTokenCmd(root *rootConfiguration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "IRC2 token operations",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List known tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			for _, sym := range token.Symbols() {
				fmt.Fprintf(a.out, "%-6s %s\n", sym, token.Known[sym])
			}
			db, err := a.storage()
			if err != nil {
				return err
			}
			cached, err := token.NewStore(db).List()
			if err != nil {
				return err
			}
			if len(cached) > 0 {
				fmt.Fprintln(a.out, "[Cached metadata]")
			}
			for _, e := range cached {
				fmt.Fprintf(a.out, "%s %s (%s, %d decimals)\n", e.Address, e.Name, e.Symbol, e.Decimals)
			}
			return nil
		},
	}

	var address string
	balance := &cobra.Command{
		Use:   "balance SYMBOL",
		Short: "Get the token balance of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			ctx := cmd.Context()
			c, err := tokenClient(a, args[0])
			if err != nil {
				return err
			}
			owner, err := a.address(address)
			if err != nil {
				return err
			}
			meta, err := c.Metadata(ctx)
			if err != nil {
				return err
			}
			bal, err := c.BalanceOf(ctx, owner)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "[%s]\n", meta.Name)
			console.Field(a.out, "contract", "%s", c.Address())
			console.Field(a.out, owner.String(), "%s", meta.Format(bal))
			return nil
		},
	}
	balance.Flags().StringVar(&address, "address", "", "target address (default: keystore account)")

	var (
		to     string
		amount string
		data   string
	)
	transfer := &cobra.Command{
		Use:   "transfer SYMBOL",
		Short: "Transfer tokens to an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			ctx := cmd.Context()
			c, err := tokenClient(a, args[0])
			if err != nil {
				return err
			}
			recipient, err := types.ParseAddress(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			from, err := a.address("")
			if err != nil {
				return err
			}
			meta, err := c.Metadata(ctx)
			if err != nil {
				return err
			}
			value, err := types.ParseUnits(amount, meta.Decimals)
			if err != nil {
				return fmt.Errorf("--amount: %w", err)
			}
			bal, err := c.BalanceOf(ctx, from)
			if err != nil {
				return err
			}
			if value.IsZero() || value.Cmp(bal) > 0 {
				return fmt.Errorf("value should be 0 < (value) <= %s", meta.Format(bal))
			}
			details := map[string]string{
				"token":     c.Address().String(),
				"recipient": recipient.String(),
				"amount":    meta.Format(value),
			}
			if err := console.PrintResponse(a.out, "Details", details); err != nil {
				return err
			}
			ok, err := a.confirm.Confirm(fmt.Sprintf("Are you sure you want to transfer the %s?", meta.Symbol))
			if err != nil || !ok {
				return err
			}
			signer, err := a.signer()
			if err != nil {
				return err
			}
			var payload []byte
			if data != "" {
				payload = []byte(data)
			}
			_, err = c.Transfer(ctx, signer, recipient, value, payload)
			return err
		},
	}
	transfer.Flags().StringVar(&to, "to", "", "the recipient address")
	transfer.Flags().StringVar(&amount, "amount", "", "amount in token units")
	transfer.Flags().StringVar(&data, "data", "", "data passed to the recipient contract")
	_ = transfer.MarkFlagRequired("to")
	_ = transfer.MarkFlagRequired("amount")

	cmd.AddCommand(list, balance, transfer)
	return cmd
}
