package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"clipsort/internal/decisionlog"
	"clipsort/internal/logging"
)

func newLogCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent sorting decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			policy, err := decisionlog.ParsePolicy(cfg.DecisionLog.CorruptRows)
			if err != nil {
				return err
			}
			dlog := decisionlog.New(cfg.DecisionLog.Path, policy, logging.NewNop())
			entries, err := dlog.Load()
			if err != nil {
				return fmt.Errorf("load decision log: %w", err)
			}

			stdout := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(stdout, "No decisions recorded yet")
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
					entry.Key,
					entry.Label,
					filepath.Base(entry.OriginalPath),
					entry.Action,
					entry.DestinationPath,
				})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"When", "Key", "Label", "Clip", "Action", "Destination"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of recent decisions to show (0 for all)")
	return cmd
}
