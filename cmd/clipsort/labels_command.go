package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipsort/internal/labels"
)

func newLabelsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List the configured label hotkeys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry, err := labels.Build(cfg.Labels, cfg.Paths.SortedRoot)
			if err != nil {
				return err
			}

			rules := registry.Rules()
			rows := make([][]string, 0, len(rules))
			for _, rule := range rules {
				rows = append(rows, []string{rule.Key, rule.Name, rule.Dest})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Key", "Label", "Destination"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
