package main

import (
	"errors"

	"github.com/spf13/cobra"

	"lume/internal/display"
	"lume/internal/store"
)

func auditCmd() *cobra.Command {
	var (
		limit int
		runID string
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent executions from the audit store",
		Long: `Lists the most recent runs recorded in the audit database, newest first.
With --run, shows the security decisions taken during one run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()
			if !cfg.Audit.Enabled {
				return errors.New("audit is disabled (audit.enabled = false)")
			}

			st, err := store.NewSQLiteStore(cfg.Audit.DBPath, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			p := display.New(cmd.OutOrStdout(), !noColor)
			if runID != "" {
				entries, err := st.AuditForRun(cmd.Context(), runID)
				if err != nil {
					return err
				}
				p.AuditTrail(runID, entries)
				return nil
			}
			recs, err := st.RecentExecutions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			p.Executions(recs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of executions to list")
	cmd.Flags().StringVar(&runID, "run", "", "show the security decisions of one run ID")
	return cmd
}
