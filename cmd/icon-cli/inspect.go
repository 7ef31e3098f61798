package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/icon-cli/internal/bisect"
	"github.com/Klingon-tech/icon-cli/internal/chain"
	"github.com/Klingon-tech/icon-cli/pkg/types"
)

func newInspectCmd(root *rootConfiguration) *cobra.Command {
	var (
		check   string
		address string
		window  string
		height  uint64
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect historical state of an account",
		Long: `Observes a scalar of an account (see --check) at one height, or bisects a
height window for the first block where the value changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			ctx := cmd.Context()
			addr, err := types.ParseAddress(address)
			if err != nil {
				return fmt.Errorf("--address: %w", err)
			}
			fn, err := bisect.NewCheck(check, bisect.Sources{PReps: a.iiss, State: a.chain}, addr)
			if err != nil {
				return err
			}

			if window == "" {
				v, err := fn(ctx, height)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, ">>> height(%d) ret(%s)\n", height, v)
				return nil
			}

			w, err := parseWindow(window)
			if err != nil {
				return err
			}
			var opts []bisect.Option
			if a.cfg.Cache {
				db, err := a.storage()
				if err != nil {
					return err
				}
				opts = append(opts, bisect.WithCache(bisect.NewCache(db, check+"/"+addr.String())))
			}

			fmt.Fprintf(a.out, "*** start %d to %d (%d blocks)\n", w.Low, w.High, w.High-w.Low)
			res, err := bisect.Search(ctx, w, fn, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, ">>> old=(%s)\n", res.Previous)
			for _, o := range res.Intermediates {
				fmt.Fprintf(a.out, ">>> Found other value: height(%d) ret(%s)\n", o.Height, o.Value)
			}
			fmt.Fprintf(a.out, ">>> END: height(%d) ret(%s)\n", res.Height, res.Value)
			fmt.Fprintf(a.out, ">>> probes=%d cached=%d\n", res.Probes, res.CacheHits)
			return nil
		},
	}
	cmd.Flags().StringVar(&check, "check", bisect.CheckPRepDelegated, "value to observe ("+strings.Join(bisect.Checks, ", ")+")")
	cmd.Flags().StringVar(&address, "address", "", "target address to observe")
	cmd.Flags().StringVar(&window, "bisect", "", "start and end heights to bisect, START,END")
	cmd.Flags().Uint64Var(&height, "height", chain.Latest, "height to observe without --bisect (0 for latest)")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}

// parseWindow parses "LOW,HIGH".
func parseWindow(s string) (bisect.Window, error) {
	lo, hi, ok := strings.Cut(s, ",")
	if !ok {
		return bisect.Window{}, fmt.Errorf("--bisect: want START,END, got %q", s)
	}
	low, err := strconv.ParseUint(strings.TrimSpace(lo), 10, 64)
	if err != nil {
		return bisect.Window{}, fmt.Errorf("--bisect start: %w", err)
	}
	high, err := strconv.ParseUint(strings.TrimSpace(hi), 10, 64)
	if err != nil {
		return bisect.Window{}, fmt.Errorf("--bisect end: %w", err)
	}
	w := bisect.Window{Low: low, High: high}
	return w, w.Validate()
}
