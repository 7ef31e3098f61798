package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/icon-cli/internal/console"
)

func newGovCmd(root *rootConfiguration) *cobra.Command {
	var audit bool
	cmd := &cobra.Command{
		Use:   "gov",
		Short: "Check governance status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			ctx := cmd.Context()

			fmt.Fprintln(a.out, "[Endpoint]")
			console.Field(a.out, "network", "%s", a.net.Name)
			console.Field(a.out, "endpoint", "%s", a.net.Endpoint)
			console.Field(a.out, "nid", "%#x", a.net.NID)

			if audit {
				enc, err := a.auditEncoding()
				if err != nil {
					return err
				}
				enabled, err := a.gov.AuditEnabled(ctx, enc)
				if err != nil {
					return err
				}
				console.Field(a.out, "audit", "%t", enabled)
				return nil
			}

			fmt.Fprintln(a.out, "[Governance]")
			version, err := a.gov.GetVersion(ctx)
			if err != nil {
				return err
			}
			if err := console.PrintResponse(a.out, "version", version); err != nil {
				return err
			}
			revision, err := a.gov.GetRevision(ctx)
			if err != nil {
				return err
			}
			if err := console.PrintResponse(a.out, "revision", fmt.Sprintf("%#x", revision)); err != nil {
				return err
			}
			price, err := a.gov.GetStepPrice(ctx)
			if err != nil {
				return err
			}
			if err := console.PrintResponse(a.out, "stepPrice", price); err != nil {
				return err
			}
			limits := make(map[string]string, 2)
			for _, ctype := range []string{"invoke", "query"} {
				limit, err := a.gov.GetMaxStepLimit(ctx, ctype)
				if err != nil {
					return err
				}
				limits[ctype] = fmt.Sprintf("%#x", limit)
			}
			if err := console.PrintResponse(a.out, "stepLimit", limits); err != nil {
				return err
			}
			costs, err := a.gov.GetStepCosts(ctx)
			if err != nil {
				return err
			}
			if err := console.PrintResponse(a.out, "stepCosts", costs); err != nil {
				return err
			}
			cfg, err := a.gov.GetServiceConfig(ctx)
			if err != nil {
				return err
			}
			return console.PrintResponse(a.out, "serviceConfig", cfg)
		},
	}
	cmd.Flags().BoolVar(&audit, "audit", false, "only report whether contract audit is enabled")
	return cmd
}
