package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clipsort/internal/decisionlog"
	"clipsort/internal/logging"
	"clipsort/internal/testsupport"
)

// placeClip simulates a finished decision: the clip sits in its destination
// and the decision log records how it got there.
func placeClip(t *testing.T, env *cliTestEnv, name string) (original, dest string) {
	t.Helper()
	original = testsupport.WriteClip(t, env.cfg, name)
	destDir := filepath.Join(env.cfg.Paths.SortedRoot, "highlight")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		t.Fatalf("mkdir dest: %v", err)
	}
	dest = filepath.Join(destDir, name)
	if err := os.Rename(original, dest); err != nil {
		t.Fatalf("place clip: %v", err)
	}
	seedDecision(t, env, original, "Highlight", dest)
	return original, dest
}

func TestCLIUndoRestoresPlacedFile(t *testing.T) {
	env := setupCLITestEnv(t)
	original, dest := placeClip(t, env, "clip.mp4")

	stdout, _, err := runCLI(t, []string{"undo", "--yes"}, env.configPath)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	requireContains(t, stdout, "Restored")
	if _, err := os.Stat(original); err != nil {
		t.Fatalf("expected original back at %s: %v", original, err)
	}
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected destination removed, got %v", err)
	}

	dlog := decisionlog.New(env.cfg.DecisionLog.Path, decisionlog.CorruptRowsAbort, logging.NewNop())
	entries, err := dlog.Load()
	if err != nil {
		t.Fatalf("load log: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty log after undo, got %d entries", len(entries))
	}
}

func TestCLIUndoPromptAcceptsYes(t *testing.T) {
	env := setupCLITestEnv(t)
	original, _ := placeClip(t, env, "clip.mp4")

	stdout, _, err := runCLIWithInput(t, []string{"undo"}, env.configPath, "y\n")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	requireContains(t, stdout, "Undo this decision?")
	requireContains(t, stdout, "Restored")
	if _, err := os.Stat(original); err != nil {
		t.Fatalf("expected original back: %v", err)
	}
}

func TestCLIUndoPromptDeclines(t *testing.T) {
	env := setupCLITestEnv(t)
	_, dest := placeClip(t, env, "clip.mp4")

	stdout, _, err := runCLIWithInput(t, []string{"undo"}, env.configPath, "n\n")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	requireContains(t, stdout, "Aborted")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected clip to stay placed: %v", err)
	}

	dlog := decisionlog.New(env.cfg.DecisionLog.Path, decisionlog.CorruptRowsAbort, logging.NewNop())
	entries, err := dlog.Load()
	if err != nil {
		t.Fatalf("load log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected decision to remain, got %d entries", len(entries))
	}
}

func TestCLIUndoEmptyLog(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := runCLI(t, []string{"undo", "--yes"}, env.configPath)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	requireContains(t, stdout, "Nothing to undo")
}

func TestCLIUndoRefusedWhileSessionHoldsLock(t *testing.T) {
	env := setupCLITestEnv(t)
	placeClip(t, env, "clip.mp4")

	holder := decisionlog.New(env.cfg.DecisionLog.Path, decisionlog.CorruptRowsSkip, logging.NewNop())
	if err := holder.Lock(); err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer holder.Unlock()

	_, _, err := runCLI(t, []string{"undo", "--yes"}, env.configPath)
	if err == nil {
		t.Fatal("expected undo to refuse while the log is locked")
	}
	requireContains(t, err.Error(), "quit the running session")
}
