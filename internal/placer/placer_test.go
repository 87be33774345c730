package placer_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clipsort/internal/logging"
	"clipsort/internal/placer"
)

func writeClip(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readClip(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestPlaceMoveRelocatesClip(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "source", "clip001.mp4")
	destDir := filepath.Join(base, "sorted", "Not Sure")
	writeClip(t, src, "payload")

	p := placer.New(logging.NewNop())
	final, err := p.Place(src, destDir, placer.ActionMove)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if final != filepath.Join(destDir, "clip001.mp4") {
		t.Fatalf("unexpected destination: %q", final)
	}
	if readClip(t, final) != "payload" {
		t.Fatal("destination content mismatch")
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed after move, stat err=%v", err)
	}
}

func TestPlaceCopyKeepsSource(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "source", "clip001.mp4")
	destDir := filepath.Join(base, "sorted", "highlights")
	writeClip(t, src, "payload")

	p := placer.New(logging.NewNop())
	final, err := p.Place(src, destDir, placer.ActionCopy)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if readClip(t, final) != "payload" {
		t.Fatal("destination content mismatch")
	}
	if readClip(t, src) != "payload" {
		t.Fatal("expected source retained after copy")
	}
}

func TestPlacePicksSmallestUnusedSuffix(t *testing.T) {
	base := t.TempDir()
	destDir := filepath.Join(base, "sorted", "goals")
	writeClip(t, filepath.Join(destDir, "clip.mp4"), "existing")
	writeClip(t, filepath.Join(destDir, "clip__002.mp4"), "existing")

	src := filepath.Join(base, "source", "clip.mp4")
	writeClip(t, src, "fresh")

	p := placer.New(logging.NewNop())
	final, err := p.Place(src, destDir, placer.ActionMove)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if final != filepath.Join(destDir, "clip__001.mp4") {
		t.Fatalf("expected smallest unused suffix, got %q", final)
	}
	if readClip(t, filepath.Join(destDir, "clip.mp4")) != "existing" {
		t.Fatal("existing file must never be overwritten")
	}
}

func TestPlaceSuffixCountsUpward(t *testing.T) {
	base := t.TempDir()
	destDir := filepath.Join(base, "sorted", "goals")
	writeClip(t, filepath.Join(destDir, "clip.mp4"), "one")
	writeClip(t, filepath.Join(destDir, "clip__001.mp4"), "two")

	src := filepath.Join(base, "source", "clip.mp4")
	writeClip(t, src, "three")

	p := placer.New(logging.NewNop())
	final, err := p.Place(src, destDir, placer.ActionMove)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if final != filepath.Join(destDir, "clip__002.mp4") {
		t.Fatalf("expected next free suffix, got %q", final)
	}
}

func TestPlaceSamePathIsNoOp(t *testing.T) {
	base := t.TempDir()
	destDir := filepath.Join(base, "sorted", "keep")
	src := filepath.Join(destDir, "clip.mp4")
	writeClip(t, src, "payload")

	p := placer.New(logging.NewNop())
	final, err := p.Place(src, destDir, placer.ActionMove)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if final != src {
		t.Fatalf("expected unchanged path, got %q", final)
	}

	entries, err := os.ReadDir(destDir)
	if err != nil {
		t.Fatalf("read dest dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no extra files, got %d entries", len(entries))
	}
}

func TestPlaceMissingSource(t *testing.T) {
	p := placer.New(logging.NewNop())
	_, err := p.Place(filepath.Join(t.TempDir(), "gone.mp4"), t.TempDir(), placer.ActionMove)
	if !errors.Is(err, placer.ErrPlacement) {
		t.Fatalf("expected ErrPlacement, got %v", err)
	}
}

func TestUnplaceRestoresOriginal(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "source", "clip.mp4")
	destDir := filepath.Join(base, "sorted", "goals")
	writeClip(t, src, "payload")

	p := placer.New(logging.NewNop())
	final, err := p.Place(src, destDir, placer.ActionMove)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	if err := p.Unplace(final, src); err != nil {
		t.Fatalf("Unplace returned error: %v", err)
	}
	if readClip(t, src) != "payload" {
		t.Fatal("expected original restored")
	}
	if _, err := os.Stat(final); !os.IsNotExist(err) {
		t.Fatalf("expected placed file removed, stat err=%v", err)
	}
}

func TestUnplaceRemovesCopiedPlacement(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "source", "clip.mp4")
	destDir := filepath.Join(base, "sorted", "goals")
	writeClip(t, src, "payload")

	p := placer.New(logging.NewNop())
	final, err := p.Place(src, destDir, placer.ActionCopy)
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	// The original still exists after a copy; undo moves the duplicate
	// back over it so no copy remains.
	if err := p.Unplace(final, src); err != nil {
		t.Fatalf("Unplace returned error: %v", err)
	}
	if readClip(t, src) != "payload" {
		t.Fatal("expected restored content")
	}
	if _, err := os.Stat(final); !os.IsNotExist(err) {
		t.Fatalf("expected placement removed after undo, stat err=%v", err)
	}
}

func TestUnplaceMissingPlacement(t *testing.T) {
	base := t.TempDir()
	p := placer.New(logging.NewNop())
	err := p.Unplace(filepath.Join(base, "gone.mp4"), filepath.Join(base, "clip.mp4"))
	if !errors.Is(err, placer.ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
}

func TestParseAction(t *testing.T) {
	if action, err := placer.ParseAction(" MOVE "); err != nil || action != placer.ActionMove {
		t.Fatalf("ParseAction(MOVE) = %v, %v", action, err)
	}
	if action, err := placer.ParseAction("copy"); err != nil || action != placer.ActionCopy {
		t.Fatalf("ParseAction(copy) = %v, %v", action, err)
	}
	if _, err := placer.ParseAction("archive"); err == nil {
		t.Fatal("expected error for unknown action")
	}
}
