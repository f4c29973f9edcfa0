package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := newAPIClient(a.cfg.APIAddr, a.cfg.HTTPTimeout).Status(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "state:       %s\n", st.State)
			fmt.Fprintf(w, "credential:  %t\n", st.HasCredential)
			if st.Account != "" {
				fmt.Fprintf(w, "account:     %s\n", st.Account)
			}
			fmt.Fprintf(w, "blocked:     %d\n", st.LedgerSize)
			lastRun := st.LastRunDate
			if lastRun == "" {
				lastRun = "never"
			}
			fmt.Fprintf(w, "last run:    %s\n", lastRun)
			if r := st.LastReport; r != nil {
				fmt.Fprintf(w, "last report: %s %s (%s) fetched=%d pending=%d ok=%d expired=%d failed=%d\n",
					r.ID, r.Mode, r.State, r.Fetched, r.Pending, r.Succeeded, r.AuthExpired, r.Failed)
				if r.Error != "" {
					fmt.Fprintf(w, "error:       %s\n", r.Error)
				}
			}
			return nil
		},
	}
}
