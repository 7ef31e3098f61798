package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/console"
	"github.com/Klingon-tech/icon-cli/pkg/tx"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

type balanceStatus struct {
	Available string `json:"ICX (avail)"`
	Stake     string `json:"ICX (stake),omitempty"`
	Unstaking string `json:"ICX (unstaking),omitempty"`
	Delegated string `json:"ICX (delegated),omitempty"`
	IScore    string `json:"ICX (iscore),omitempty"`
	Total     string `json:"Total ICX,omitempty"`
}

func newBalanceCmd(root *rootConfiguration) *cobra.Command {
	var (
		address string
		all     bool
	)
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Get ICX balance of an address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			ctx := cmd.Context()
			addr, err := a.address(address)
			if err != nil {
				return err
			}
			balance, err := a.chain.GetBalance(ctx, addr, chain.Latest)
			if err != nil {
				return err
			}
			status := balanceStatus{Available: balance.ICXString()}
			if all {
				stake, err := a.iiss.GetStake(ctx, addr)
				if err != nil {
					return err
				}
				unstaking, err := stake.TotalUnstaking()
				if err != nil {
					return err
				}
				deleg, err := a.iiss.GetDelegation(ctx, addr)
				if err != nil {
					return err
				}
				iscore, err := a.iiss.QueryIScore(ctx, addr)
				if err != nil {
					return err
				}
				total, err := sum(balance, stake.Stake, unstaking)
				if err != nil {
					return err
				}
				status.Stake = stake.Stake.ICXString()
				status.Unstaking = unstaking.ICXString()
				status.Delegated = deleg.TotalDelegated.ICXString()
				status.IScore = iscore.EstimatedICX.ICXString()
				status.Total = total.ICXString()
			}
			fmt.Fprintln(a.out, "[Balance]")
			return console.PrintResponse(a.out, addr.String(), status)
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "target address (default: keystore account)")
	cmd.Flags().BoolVar(&all, "all", false, "include staked, unstaking and delegated ICX")
	return cmd
}

func newTransferCmd(root *rootConfiguration) *cobra.Command {
	var (
		to     string
		amount string
	)
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer ICX to an address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			ctx := cmd.Context()
			recipient, err := types.ParseAddress(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			from, err := a.address("")
			if err != nil {
				return err
			}
			balance, err := a.chain.GetBalance(ctx, from, chain.Latest)
			if err != nil {
				return err
			}
			fee, err := a.gov.DefaultFee(ctx)
			if err != nil {
				return err
			}
			spendable, err := tx.Spendable(balance, fee)
			if err != nil {
				return err
			}
			console.Field(a.out, "Balance", "%s ICX", balance.ICXString())

			if amount == "" {
				amount, err = a.term.Line("Amount of transfer in ICX (or [a]ll): ")
				if err != nil {
					return err
				}
			}
			var value types.Amount
			if amount == "a" {
				value = spendable
			} else if value, err = types.ParseICX(amount); err != nil {
				return err
			}
			if err := tx.CheckValue(balance, value, fee); err != nil {
				return err
			}

			after, err := balance.Sub(value)
			if err == nil {
				after, err = after.Sub(fee)
			}
			if err != nil {
				return err
			}
			details := map[string]string{
				"recipient":                        recipient.String(),
				"amount":                           fmt.Sprintf("%s (%s ICX)", value.String(), value.ICXString()),
				"estimated balance after transfer": after.ICXString() + " ICX",
			}
			if err := console.PrintResponse(a.out, "Details", details); err != nil {
				return err
			}
			ok, err := a.confirm.Confirm("Are you sure you want to transfer the ICX?")
			if err != nil || !ok {
				return err
			}

			signer, err := a.signer()
			if err != nil {
				return err
			}
			hash, err := a.handler.SubmitTransfer(ctx, signer, recipient, value, 0)
			if err != nil {
				return err
			}
			_, err = a.handler.AwaitResult(ctx, hash, true)
			return err
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "the recipient address")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in ICX, or \"a\" for the whole spendable balance")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// sum adds amounts.
func sum(amounts ...types.Amount) (types.Amount, error) {
	var total types.Amount
	for _, x := range amounts {
		var err error
		if total, err = total.Add(x); err != nil {
			return types.Amount{}, err
		}
	}
	return total, nil
}
