package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/artistban/internal/application"
)

func newLedgerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the local record of blocked artists",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print every blocked artist ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := openStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			ledger := application.NewLedger(store)
			ids, err := ledger.IDs(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, id := range ids {
				fmt.Fprintln(w, id)
			}
			if day, found, err := ledger.LastRunDate(cmd.Context()); err == nil && found {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d blocked, last run %s\n", len(ids), day.Format(application.DateLayout))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "has <artist-id>",
		Short: "Report whether an artist ID is recorded as blocked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			found, err := application.NewLedger(store).Contains(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), found)
			return nil
		},
	})

	return cmd
}
