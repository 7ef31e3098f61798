package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/icon-cli/internal/audit"
)

func newAuditCmd(root *rootConfiguration) *cobra.Command {
	var (
		list         bool
		export       string
		dumpContract bool
		outDir       string
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Review contract deploys waiting for audit",
		Long: `Lists the deploys waiting for audit on the network tracker and opens an
interactive menu to accept, reject, download, verify or inspect them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			ctx := cmd.Context()
			tracker := audit.NewTracker(a.net.Tracker)

			if dumpContract {
				contracts, err := tracker.ContractList(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, "count =", len(contracts))
				results := make(map[string]string, len(contracts))
				for _, c := range contracts {
					results[c.Address.String()] = c.Name + ", " + c.VerifiedDate
				}
				return json.NewEncoder(a.out).Encode(results)
			}

			ignore := audit.IgnoreList{}
			if path := a.ignoreListPath(); path != "" {
				var err error
				if ignore, err = audit.LoadIgnoreList(path); err != nil {
					return err
				}
			}
			contracts, err := tracker.PendingList(ctx, ignore)
			if err != nil {
				return err
			}
			if len(contracts) == 0 {
				return fmt.Errorf("no pending contracts")
			}

			switch {
			case export == "-":
				return audit.Export(a.out, contracts)
			case export != "":
				f, err := os.Create(export)
				if err != nil {
					return err
				}
				if err := audit.Export(f, contracts); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			case list:
				audit.PrintPending(a.out, contracts)
				return nil
			}

			auditor := audit.NewAuditor(audit.Config{
				Gov:      a.gov,
				Chain:    a.chain,
				Signer:   a.signer,
				Input:    a.term,
				Verifier: audit.NewVerifier(a.cfg.VerifierURL),
				Network:  a.net.Name,
				OutDir:   outDir,
				Out:      a.out,
			})
			return auditor.Menu(ctx, contracts)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print the pending list and exit")
	cmd.Flags().StringVar(&export, "export", "", "write the pending list as JSON to this file (- for stdout)")
	cmd.Flags().BoolVar(&dumpContract, "dump-contract", false, "dump the active contract list")
	cmd.Flags().StringVar(&outDir, "outdir", ".", "directory for downloaded contracts")
	cmd.MarkFlagsMutuallyExclusive("list", "export", "dump-contract")
	return cmd
}
