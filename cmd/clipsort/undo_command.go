package main

import (
	"bufio"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"clipsort/internal/decisionlog"
	"clipsort/internal/logging"
	"clipsort/internal/placer"
)

func newUndoCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Revert the most recent sorting decision",
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
			if err := dlog.Lock(); err != nil {
				if errors.Is(err, decisionlog.ErrLocked) {
					return errors.New("decision log is in use; quit the running session first")
				}
				return err
			}
			defer dlog.Unlock()

			entries, err := dlog.Load()
			if err != nil {
				return fmt.Errorf("load decision log: %w", err)
			}
			stdout := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(stdout, "Nothing to undo")
				return nil
			}

			last := entries[len(entries)-1]
			fmt.Fprintf(stdout, "Last decision: %s -> %s (%s)\n",
				filepath.Base(last.OriginalPath), last.Label, last.DestinationPath)
			if !assumeYes && !confirm(cmd, "Undo this decision?") {
				fmt.Fprintln(stdout, "Aborted")
				return nil
			}

			entry, err := dlog.PopLast()
			if err != nil {
				return err
			}
			mover := placer.New(logging.NewNop())
			if err := mover.Unplace(entry.DestinationPath, entry.OriginalPath); err != nil {
				if errors.Is(err, placer.ErrMissingFile) {
					fmt.Fprintf(stdout, "Entry removed, but the placed file was already gone: %s\n", entry.DestinationPath)
					return nil
				}
				// The file is still placed, so the record must stay too.
				if appendErr := dlog.Append(entry); appendErr != nil {
					return fmt.Errorf("undo failed: %v (restore log entry: %w)", err, appendErr)
				}
				return err
			}
			fmt.Fprintf(stdout, "Restored %s\n", entry.OriginalPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
