package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd(root *rootConfiguration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the on-disk probe and metadata cache",
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry of the selected network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := root.app
			a.cfg.Cache = true
			db, err := a.storage()
			if err != nil {
				return err
			}
			n, err := db.DeleteAll()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Removed %d entries\n", n)
			return nil
		},
	}
	cmd.AddCommand(clearCmd)
	return cmd
}
