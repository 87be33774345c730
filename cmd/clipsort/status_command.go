package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"clipsort/internal/decisionlog"
	"clipsort/internal/logging"
	"clipsort/internal/media/ffprobe"
	"clipsort/internal/scan"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the sorting queue and where clips will go",
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
			clips, err := scan.Dir(cfg.Paths.SourceDir, cfg.Scan.Extensions)
			if err != nil {
				return err
			}
			pending := scan.Pending(clips, decisionlog.ResumeSet(entries))

			stdout := cmd.OutOrStdout()
			rows := [][]string{
				{"Source", cfg.Paths.SourceDir},
				{"Sorted root", cfg.Paths.SortedRoot},
				{"Decision log", dlog.Path()},
				{"Mode", cfg.Placement.Mode},
				{"Player", yesNo(cfg.Player.Enabled)},
				{"Decided", strconv.Itoa(len(entries))},
				{"Pending", strconv.Itoa(len(pending))},
				{"Pending size", humanize.IBytes(uint64(scan.TotalSize(pending)))},
			}
			fmt.Fprintln(stdout, renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))

			if !probe || len(pending) == 0 {
				return nil
			}
			probeRows := make([][]string, 0, len(pending))
			for _, clip := range pending {
				row := []string{clip.Name, "-", "-", humanize.IBytes(uint64(clip.Size))}
				result, probeErr := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), clip.Path)
				if probeErr == nil {
					row[1] = formatClipDuration(result.DurationSeconds())
					if width, height := result.Resolution(); width > 0 && height > 0 {
						row[2] = fmt.Sprintf("%dx%d", width, height)
					}
				}
				probeRows = append(probeRows, row)
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"Clip", "Duration", "Resolution", "Size"},
				probeRows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "Inspect pending clips with ffprobe")
	return cmd
}

func formatClipDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}
