package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/internal/console"
	"github.com/Klingon-tech/icon-cli/internal/delegation"
	"github.com/Klingon-tech/icon-cli/internal/iiss"
	klog "github.com/Klingon-tech/icon-cli/internal/log"
	"github.com/Klingon-tech/icon-cli/pkg/tx"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

func newIScoreCmd(root *rootConfiguration) *cobra.Command {
	var (
		address string
		claim   bool
	)
	cmd := &cobra.Command{
		Use:   "iscore",
		Short: "Query and claim IScore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			ctx := cmd.Context()
			addr, err := a.address(address)
			if err != nil {
				return err
			}
			is, err := a.iiss.QueryIScore(ctx, addr)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "[IScore]")
			if err := console.PrintResponse(a.out, addr.String(), is); err != nil {
				return err
			}
			console.Field(a.out, "EstimatedICX", "%s", is.EstimatedICX.ICXString())
			if !claim {
				return nil
			}
			if is.IScore.IsZero() {
				fmt.Fprintln(a.out, "Nothing to claim")
				return nil
			}
			ok, err := a.confirm.Confirm("Are you sure you want to claim the IScore?")
			if err != nil || !ok {
				return err
			}
			signer, err := a.signer()
			if err != nil {
				return err
			}
			_, err = a.iiss.ClaimIScore(ctx, signer)
			return err
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "target address (default: keystore account)")
	cmd.Flags().BoolVar(&claim, "claim", false, "claim the reward that has been received")
	return cmd
}

func newStakeCmd(root *rootConfiguration) *cobra.Command {
	var (
		address string
		set     string
		auto    bool
		reserve string
	)
	cmd := &cobra.Command{
		Use:   "stake",
		Short: "Query and set staking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			ctx := cmd.Context()
			if auto {
				return runAutoStake(cmd, a, reserve)
			}
			addr, err := a.address(address)
			if err != nil {
				return err
			}
			stake, err := a.iiss.GetStake(ctx, addr)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "[Stake]")
			if err := console.PrintResponse(a.out, addr.String(), stake); err != nil {
				return err
			}
			console.Field(a.out, "StakedICX", "%s", stake.Stake.ICXString())
			if set == "" {
				return nil
			}
			if address != "" {
				return fmt.Errorf("--set uses the keystore account, not --address")
			}
			amount, err := types.ParseICX(set)
			if err != nil {
				return err
			}
			if err := checkNewStake(cmd, a, addr, stake.Stake, amount); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Requested amount = %s ICX (%s loop)\n", amount.ICXString(), amount.String())
			ok, err := a.confirm.Confirm("Are you sure you want to set new staking amount?")
			if err != nil || !ok {
				return err
			}
			signer, err := a.signer()
			if err != nil {
				return err
			}
			_, err = a.iiss.SetStake(ctx, signer, amount)
			return err
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "target address (default: keystore account)")
	cmd.Flags().StringVar(&set, "set", "", "set new staking amount in ICX")
	cmd.Flags().BoolVar(&auto, "auto", false, "claim, stake the free balance and delegate it")
	cmd.Flags().StringVar(&reserve, "reserve", "", "ICX kept liquid by --auto (default from stake.reserve)")
	cmd.MarkFlagsMutuallyExclusive("set", "auto")
	return cmd
}

// checkNewStake validates a stake change against delegations, bonds and
// the free balance.
func checkNewStake(cmd *cobra.Command, a *app, addr types.Address, current, amount types.Amount) error {
	ctx := cmd.Context()
	deleg, err := a.iiss.GetDelegation(ctx, addr)
	if err != nil {
		return err
	}
	bond, err := a.iiss.GetBond(ctx, addr)
	if err != nil {
		return err
	}
	used, err := sum(deleg.TotalDelegated, bond.TotalBonded)
	if err != nil {
		return err
	}
	if amount.Cmp(used) <= 0 {
		return fmt.Errorf("amount (%s ICX) should be larger than the current total delegated and bonded (%s ICX)",
			amount.ICXString(), used.ICXString())
	}
	if amount.Cmp(current) <= 0 {
		return nil
	}
	increase, err := amount.Sub(current)
	if err != nil {
		return err
	}
	balance, err := a.chain.GetBalance(ctx, addr, chain.Latest)
	if err != nil {
		return err
	}
	fee, err := a.gov.DefaultFee(ctx)
	if err != nil {
		return err
	}
	return tx.CheckValue(balance, increase, fee)
}

func runAutoStake(cmd *cobra.Command, a *app, reserveFlag string) error {
	reserve, err := a.cfg.ReserveAmount()
	if err != nil {
		return err
	}
	if reserveFlag != "" {
		if reserve, err = types.ParseICX(reserveFlag); err != nil {
			return fmt.Errorf("--reserve: %w", err)
		}
	}
	signer, err := a.signer()
	if err != nil {
		return err
	}
	staker := iiss.NewAutoStaker(a.iiss, a.chain, a.confirm,
		iiss.WithReserve(reserve),
		iiss.WithAutoClock(a.clock),
	)
	report, err := staker.Run(cmd.Context(), signer)
	if report != nil {
		printStep(a, "Claim", report.Claim)
		printStep(a, "Stake", report.Stake)
		printStep(a, "Delegation", report.Delegation)
	}
	return err
}

func printStep(a *app, label string, h types.Hash) {
	if h.IsZero() {
		console.Field(a.out, label, "skipped")
		return
	}
	console.Field(a.out, label, "%s", h)
}

func newDelegationCmd(root *rootConfiguration) *cobra.Command {
	var (
		address string
		set     string
	)
	cmd := &cobra.Command{
		Use:     "delegation",
		Aliases: []string{"delegate"},
		Short:   "Query and set delegations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			ctx := cmd.Context()
			addr, err := a.address(address)
			if err != nil {
				return err
			}
			d, err := a.iiss.GetDelegation(ctx, addr)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "[Delegation]")
			if err := console.PrintResponse(a.out, addr.String(), d); err != nil {
				return err
			}
			if len(d.Delegations) > 0 {
				names, err := a.iiss.PRepNames(ctx)
				if err != nil {
					return err
				}
				for _, e := range d.Delegations {
					console.Field(a.out, e.Address.String(), "%s ICX (%s)", e.Value.ICXString(), names[e.Address])
				}
			}
			if !cmd.Flags().Changed("set") {
				return nil
			}
			if address != "" {
				return fmt.Errorf("--set uses the keystore account, not --address")
			}
			next, err := delegation.Parse(set)
			if err != nil {
				return err
			}
			authorized, err := a.iiss.Authorized(ctx, addr)
			if err != nil {
				return err
			}
			if err := next.CheckWithin(authorized); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "New delegations: %s\n", next)
			ok, err := a.confirm.Confirm("Are you sure you want to set new delegations?")
			if err != nil || !ok {
				return err
			}
			signer, err := a.signer()
			if err != nil {
				return err
			}
			_, err = a.iiss.SetDelegation(ctx, signer, next)
			return err
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "target address (default: keystore account)")
	cmd.Flags().StringVar(&set, "set", "", `new delegations, "hx...=ICX,hx...=ICX" (empty value clears)`)
	return cmd
}

func newPRepCmd(root *rootConfiguration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prep",
		Short: "Query P-Rep information",
	}

	var height uint64
	get := &cobra.Command{
		Use:   "get ADDRESS",
		Short: "Get P-Rep register information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			addr, err := types.ParseAddress(args[0])
			if err != nil {
				return err
			}
			p, err := a.iiss.GetPRep(cmd.Context(), addr, height)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, "[PRep]")
			return console.PrintResponse(a.out, addr.String(), p.Raw)
		},
	}
	get.Flags().Uint64Var(&height, "height", chain.Latest, "block height (0 for latest)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List main and sub P-Reps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			preps, err := a.iiss.GetPReps(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "[PReps] height %d\n", uint64(preps.BlockHeight))
			for i, p := range preps.PReps {
				if uint64(p.Grade) == iiss.GradeCandidate {
					continue
				}
				grade := "sub"
				if uint64(p.Grade) == iiss.GradeMain {
					grade = "main"
				}
				fmt.Fprintf(a.out, "%3d %s %-4s %s ICX %s\n", i+1, p.Address, grade, p.Power.ICXString(), p.Name)
			}
			return nil
		},
	}

	cmd.AddCommand(get, list)
	return cmd
}

func newInfoCmd(root *rootConfiguration) *cobra.Command {
	var nextTerm bool
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show IISS and network information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			ctx := cmd.Context()
			info, err := a.iiss.GetIISSInfo(ctx)
			if err != nil {
				return err
			}
			if nextTerm {
				// getIISSInfo can trail the chain head by a block.
				if last, err := a.chain.GetLastBlockHeight(ctx); err != nil {
					klog.RPC.Debug().Err(err).Msg("Last block unavailable, using IISS height")
				} else if last > uint64(info.BlockHeight) {
					info.BlockHeight = types.HexUint64(last)
				}
				c := iiss.NextTerm(info)
				console.Field(a.out, "Block height", "%d", uint64(info.BlockHeight))
				console.Field(a.out, "Next term", "%d (%d blocks, %s)", uint64(info.NextPRepTerm), c.Blocks, c)
				return nil
			}
			fmt.Fprintln(a.out, "[IISS]")
			if err := console.PrintResponse(a.out, "info", info.Raw); err != nil {
				return err
			}
			network, err := a.iiss.GetNetworkInfo(ctx)
			if err != nil {
				return err
			}
			return console.PrintResponse(a.out, "network", network)
		},
	}
	cmd.Flags().BoolVar(&nextTerm, "next-term", false, "show the countdown to the next P-Rep term")
	return cmd
}
