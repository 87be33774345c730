package main

import (
	"path/filepath"
	"testing"
	"time"

	"clipsort/internal/decisionlog"
	"clipsort/internal/logging"
	"clipsort/internal/testsupport"
)

func seedDecision(t *testing.T, env *cliTestEnv, original, label, dest string) {
	t.Helper()
	dlog := decisionlog.New(env.cfg.DecisionLog.Path, decisionlog.CorruptRowsSkip, logging.NewNop())
	entry := decisionlog.Entry{
		Timestamp:       time.Now().UTC(),
		Key:             "1",
		Label:           label,
		OriginalPath:    original,
		DestinationPath: dest,
		Action:          "move",
	}
	if err := dlog.Append(entry); err != nil {
		t.Fatalf("seed decision: %v", err)
	}
}

func TestCLILabelsListsRules(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"labels"}, env.configPath)
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	requireContains(t, stdout, "Highlight")
	requireContains(t, stdout, "Discard")
	requireContains(t, stdout, filepath.Join(env.cfg.Paths.SortedRoot, "highlight"))
}

func TestCLIStatusCountsPending(t *testing.T) {
	env := setupCLITestEnv(t)
	decided := testsupport.WriteClip(t, env.cfg, "a.mp4")
	testsupport.WriteClip(t, env.cfg, "b.mp4")
	seedDecision(t, env, decided, "Highlight", filepath.Join(env.cfg.Paths.SortedRoot, "highlight", "a.mp4"))

	stdout, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, stdout, env.cfg.Paths.SourceDir)
	requireContains(t, stdout, "Decided")
	requireContains(t, stdout, "Pending")
	requireContains(t, stdout, "2.0 KiB")
}

func TestCLIStatusProbeListsClips(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteClip(t, env.cfg, "b.mp4")

	stdout, _, err := runCLI(t, []string{"status", "--probe"}, env.configPath)
	if err != nil {
		t.Fatalf("status --probe: %v", err)
	}
	requireContains(t, stdout, "Duration")
	requireContains(t, stdout, "b.mp4")
}

func TestCLILogShowsMostRecentDecisions(t *testing.T) {
	env := setupCLITestEnv(t)
	src := env.cfg.Paths.SourceDir
	seedDecision(t, env, filepath.Join(src, "a.mp4"), "Alpha", filepath.Join(env.cfg.Paths.SortedRoot, "x", "a.mp4"))
	seedDecision(t, env, filepath.Join(src, "b.mp4"), "Beta", filepath.Join(env.cfg.Paths.SortedRoot, "x", "b.mp4"))
	seedDecision(t, env, filepath.Join(src, "c.mp4"), "Gamma", filepath.Join(env.cfg.Paths.SortedRoot, "x", "c.mp4"))

	stdout, _, err := runCLI(t, []string{"log", "-n", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	requireContains(t, stdout, "Beta")
	requireContains(t, stdout, "Gamma")
	requireNotContains(t, stdout, "Alpha")
}

func TestCLILogEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"log"}, env.configPath)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	requireContains(t, stdout, "No decisions recorded yet")
}
