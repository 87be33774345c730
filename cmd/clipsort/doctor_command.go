package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipsort/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, the decision log, and external binaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)
			problems := 0

			for _, line := range renderSectionHeader("Environment", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
					problems++
				}
				fmt.Fprintln(stdout, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Binaries", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, status := range preflight.CheckBinaries(preflight.SystemRequirements(cfg)) {
				kind := statusOK
				message := status.Command
				switch {
				case status.Available:
				case status.Optional:
					kind = statusWarn
					message = status.Detail
				default:
					kind = statusError
					message = status.Detail
					problems++
				}
				fmt.Fprintln(stdout, renderStatusLine(status.Name, kind, message, colorize))
			}
			fmt.Fprintln(stdout)

			if problems > 0 {
				return fmt.Errorf("doctor found %d problem(s)", problems)
			}
			fmt.Fprintln(stdout, "Everything looks ready")
			return nil
		},
	}
}
