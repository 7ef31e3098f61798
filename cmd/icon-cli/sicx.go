package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/console"
	"github.com/Klingon-tech/icon-cli/internal/sicx"
	"github.com/Klingon-tech/icon-cli/internal/token"
	"github.com/Klingon-tech/icon-cli/pkg/tx"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

func newSICXCmd(root *rootConfiguration) *cobra.Command {
	var (
		address     string
		stake       string
		unstake     string
		claim       bool
		info        bool
		preps       string
		delegations string
	)
	cmd := &cobra.Command{
		Use:   "sicx",
		Short: "Liquid staking through the Staked ICX manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			ctx := cmd.Context()
			m := sicx.NewManager(sicx.ManagerAddress, a.chain, a.handler)

			switch {
			case preps != "":
				return printManagerPReps(ctx, a, m, preps)
			case delegations != "":
				return printManagerDelegations(ctx, a, m, delegations)
			}

			changes := cmd.Flags().Changed("stake") || cmd.Flags().Changed("unstake") || claim
			if changes && address != "" {
				return fmt.Errorf("staking actions use the keystore account, not --address")
			}
			owner, err := a.address(address)
			if err != nil {
				return err
			}
			tok, err := tokenClient(a, "sicx")
			if err != nil {
				return err
			}
			meta, err := tok.Metadata(ctx)
			if err != nil {
				return err
			}
			bal, err := tok.BalanceOf(ctx, owner)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "[%s]\n", meta.Name)
			console.Field(a.out, owner.String(), "%s", meta.Format(bal))

			switch {
			case cmd.Flags().Changed("stake"):
				return stakeICX(ctx, a, m, owner, stake)
			case cmd.Flags().Changed("unstake"):
				return unstakeSICX(ctx, a, m, tok, meta, bal, unstake)
			case claim:
				return claimUnstaked(ctx, a, m, owner)
			case info:
				if _, err := printClaimable(ctx, a, m, owner); err != nil {
					return err
				}
				entries, err := m.UnstakeInfo(ctx, owner)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(a.out, "No unstake info")
					return nil
				}
				return console.PrintResponse(a.out, "Unstake Info", entries)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "target address (default: keystore account)")
	cmd.Flags().StringVar(&stake, "stake", "", "stake the given ICX for sICX")
	cmd.Flags().StringVar(&unstake, "unstake", "", `unstake the given sICX, or "a" for all`)
	cmd.Flags().BoolVar(&claim, "claim", false, "claim unstaked ICX")
	cmd.Flags().BoolVar(&info, "info", false, "show claimable ICX and pending unstakes")
	cmd.Flags().StringVar(&preps, "get-preps", "", "list manager P-Reps (top|valid)")
	cmd.Flags().StringVar(&delegations, "get-delegations", "", "list manager delegations (actual|bomm|final)")
	cmd.MarkFlagsMutuallyExclusive("stake", "unstake", "claim", "info", "get-preps", "get-delegations")
	return cmd
}

func stakeICX(ctx context.Context, a *app, m *sicx.Manager, owner types.Address, amount string) error {
	balance, err := a.chain.GetBalance(ctx, owner, chain.Latest)
	if err != nil {
		return err
	}
	fee, err := a.gov.DefaultFee(ctx)
	if err != nil {
		return err
	}
	value, err := types.ParseICX(amount)
	if err != nil {
		return fmt.Errorf("--stake: %w", err)
	}
	if err := tx.CheckValue(balance, value, fee); err != nil {
		return err
	}
	after, err := balance.Sub(value)
	if err != nil {
		return err
	}
	details := map[string]string{
		"recipient":                     m.Address().String(),
		"amount":                        fmt.Sprintf("%s (%s ICX)", value.String(), value.ICXString()),
		"estimated balance after stake": after.ICXString() + " ICX",
	}
	if err := console.PrintResponse(a.out, "Details", details); err != nil {
		return err
	}
	ok, err := a.confirm.Confirm("Are you sure you want to stake?")
	if err != nil || !ok {
		return err
	}
	signer, err := a.signer()
	if err != nil {
		return err
	}
	_, err = m.StakeICX(ctx, signer, signer.Address(), value)
	return err
}

func unstakeSICX(ctx context.Context, a *app, m *sicx.Manager, tok *token.Client, meta *token.Metadata, bal types.Amount, amount string) error {
	value := bal
	if amount != "a" {
		var err error
		if value, err = types.ParseUnits(amount, meta.Decimals); err != nil {
			return fmt.Errorf("--unstake: %w", err)
		}
	}
	if value.IsZero() || value.Cmp(bal) > 0 {
		return fmt.Errorf("value should be 0 < (value) <= %s", meta.Format(bal))
	}
	after, err := bal.Sub(value)
	if err != nil {
		return err
	}
	details := map[string]string{
		"recipient":                       m.Address().String(),
		"amount":                          meta.Format(value),
		"estimated balance after unstake": meta.Format(after),
	}
	if err := console.PrintResponse(a.out, "Details", details); err != nil {
		return err
	}
	ok, err := a.confirm.Confirm("Are you sure you want to unstake?")
	if err != nil || !ok {
		return err
	}
	signer, err := a.signer()
	if err != nil {
		return err
	}
	_, err = m.Unstake(ctx, signer, tok, value)
	return err
}

func claimUnstaked(ctx context.Context, a *app, m *sicx.Manager, owner types.Address) error {
	claimable, err := printClaimable(ctx, a, m, owner)
	if err != nil {
		return err
	}
	if claimable.IsZero() {
		fmt.Fprintln(a.out, "No claimable ICX")
		return nil
	}
	ok, err := a.confirm.Confirm("Are you sure you want to claim?")
	if err != nil || !ok {
		return err
	}
	signer, err := a.signer()
	if err != nil {
		return err
	}
	_, err = m.ClaimUnstakedICX(ctx, signer)
	return err
}

func printClaimable(ctx context.Context, a *app, m *sicx.Manager, owner types.Address) (types.Amount, error) {
	v, err := m.ClaimableICX(ctx, owner)
	if err != nil {
		return types.Amount{}, err
	}
	fmt.Fprintln(a.out, "[Claimable ICX]")
	fmt.Fprintf(a.out, "%q (%s ICX)\n", v.Hex(), v.ICXString())
	return v, nil
}

func printManagerPReps(ctx context.Context, a *app, m *sicx.Manager, kind string) error {
	list, err := m.PReps(ctx, kind)
	if err != nil {
		return err
	}
	names, err := a.iiss.PRepNames(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, ">>> Count: %d\n", len(list))
	for _, p := range list {
		fmt.Fprintf(a.out, "%s (%s)\n", p, names[p])
	}
	return nil
}

func printManagerDelegations(ctx context.Context, a *app, m *sicx.Manager, kind string) error {
	list, err := m.Delegations(ctx, kind)
	if err != nil {
		return err
	}
	names, err := a.iiss.PRepNames(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, ">>> Count: %d\n", len(list))
	for _, d := range list {
		name, ok := names[d.Address]
		if !ok {
			name = "============"
		}
		fmt.Fprintf(a.out, "%s (%s): %s ICX\n", d.Address, name, d.Value.ICXString())
	}
	return nil
}
