package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"clipsort/internal/config"
	"clipsort/internal/decisionlog"
	"clipsort/internal/input"
	"clipsort/internal/labels"
	"clipsort/internal/logging"
	"clipsort/internal/placer"
	"clipsort/internal/player"
	"clipsort/internal/preflight"
	"clipsort/internal/session"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var sourceFlag string
	var sortedRootFlag string
	var logFlag string
	var modeFlag string
	var noPlayer bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start an interactive sorting session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyRunOverrides(cfg, sourceFlag, sortedRootFlag, logFlag, modeFlag); err != nil {
				return err
			}
			if noPlayer {
				cfg.Player.Enabled = false
			}
			return runSession(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&sourceFlag, "source", "s", "", "Directory of clips to sort")
	cmd.Flags().StringVar(&sortedRootFlag, "sorted-root", "", "Root directory for label destinations")
	cmd.Flags().StringVar(&logFlag, "log", "", "Decision log path")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "Placement mode: move or copy")
	cmd.Flags().BoolVar(&noPlayer, "no-player", false, "Sort without launching the preview player")
	return cmd
}

// applyRunOverrides folds run flags into the loaded config. Overriding the
// source without an explicit sorted root re-derives the root as the source's
// sibling, the same default a config built from that source would get.
func applyRunOverrides(cfg *config.Config, source, sortedRoot, logPath, mode string) error {
	if source = strings.TrimSpace(source); source != "" {
		expanded, err := config.ExpandPath(source)
		if err != nil {
			return fmt.Errorf("resolve source directory: %w", err)
		}
		cfg.Paths.SourceDir = expanded
		if strings.TrimSpace(sortedRoot) == "" {
			cfg.Paths.SortedRoot = filepath.Join(filepath.Dir(expanded), "sorted")
		}
	}
	if sortedRoot = strings.TrimSpace(sortedRoot); sortedRoot != "" {
		expanded, err := config.ExpandPath(sortedRoot)
		if err != nil {
			return fmt.Errorf("resolve sorted root: %w", err)
		}
		cfg.Paths.SortedRoot = expanded
	}
	if logPath = strings.TrimSpace(logPath); logPath != "" {
		expanded, err := config.ExpandPath(logPath)
		if err != nil {
			return fmt.Errorf("resolve decision log path: %w", err)
		}
		cfg.DecisionLog.Path = expanded
	}
	if mode = strings.TrimSpace(mode); mode != "" {
		action, err := placer.ParseAction(mode)
		if err != nil {
			return err
		}
		cfg.Placement.Mode = string(action)
	}
	return cfg.EnsureDirectories()
}

func runSession(cmdCtx context.Context, cfg *config.Config, out io.Writer) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("clipsort-%s.log", runID))
	// The session owns the terminal in raw mode, so structured logs go to
	// the run file only and operator feedback uses the session's output.
	logger, err := logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           "json",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
		SessionID:        uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "clipsort-*.log", Exclude: []string{logPath}},
	)

	if err := reportPreflight(signalCtx, cfg, out); err != nil {
		return err
	}

	registry, err := labels.Build(cfg.Labels, cfg.Paths.SortedRoot)
	if err != nil {
		return err
	}
	policy, err := decisionlog.ParsePolicy(cfg.DecisionLog.CorruptRows)
	if err != nil {
		return err
	}
	dlog := decisionlog.New(cfg.DecisionLog.Path, policy, logger)

	var preview player.Player = player.Null{}
	if cfg.Player.Enabled {
		preview = player.NewMPV(cfg.PlayerBinary(), logger, player.WithExtraArgs(cfg.Player.ExtraArgs))
	}

	fmt.Fprintf(out, "Sorting %s into %s (%s)\n", cfg.Paths.SourceDir, cfg.Paths.SortedRoot, cfg.Placement.Mode)
	fmt.Fprintf(out, "Run log: %s\n", logPath)

	keys, err := input.NewTerminal(os.Stdin)
	if err != nil {
		return fmt.Errorf("open terminal input: %w", err)
	}
	defer keys.Close()

	sess := session.New(cfg, registry, dlog, logger,
		session.WithPlayer(preview),
		session.WithInput(keys),
		session.WithOutput(out),
	)
	return sess.Run(signalCtx)
}

// reportPreflight refuses to start a session in a broken environment and
// prints each failing check so the fix is obvious without a doctor run.
func reportPreflight(ctx context.Context, cfg *config.Config, out io.Writer) error {
	failed := false
	for _, result := range preflight.RunAll(ctx, cfg) {
		if result.Passed {
			continue
		}
		failed = true
		fmt.Fprintf(out, "  %s: %s\n", result.Name, result.Detail)
	}
	for _, status := range preflight.CheckBinaries(preflight.SystemRequirements(cfg)) {
		if status.Available || status.Optional {
			continue
		}
		failed = true
		fmt.Fprintf(out, "  %s: %s\n", status.Name, status.Detail)
	}
	if failed {
		return errors.New("environment checks failed (see clipsort doctor)")
	}
	return nil
}
