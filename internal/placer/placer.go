package placer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"clipsort/internal/logging"
)

var (
	// ErrPlacement marks failed placements; the clip stays where it was.
	ErrPlacement = errors.New("placement error")
	// ErrMissingFile marks undo targets that no longer exist on disk.
	ErrMissingFile = errors.New("missing file")
)

// Action selects how a clip reaches its destination.
type Action string

const (
	ActionMove Action = "move"
	ActionCopy Action = "copy"
)

// ParseAction converts a config or flag value into an Action.
func ParseAction(value string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ActionMove):
		return ActionMove, nil
	case string(ActionCopy):
		return ActionCopy, nil
	default:
		return "", fmt.Errorf("action must be %q or %q, got %q", ActionMove, ActionCopy, value)
	}
}

// Placer writes clips into label destinations.
type Placer struct {
	logger *slog.Logger
}

// New constructs a Placer. A nil logger falls back to a no-op logger.
func New(logger *slog.Logger) *Placer {
	return &Placer{logger: logging.NewComponentLogger(logger, "placer")}
}

// Place puts src into destDir under its base name, adding a numeric suffix
// when the name is taken, and returns the final destination path. A source
// that already sits at the computed destination is left alone.
func (p *Placer) Place(src, destDir string, action Action) (string, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: source vanished: %s", ErrPlacement, src)
		}
		return "", fmt.Errorf("%w: stat source: %w", ErrPlacement, err)
	}
	if srcInfo.IsDir() {
		return "", fmt.Errorf("%w: source is a directory: %s", ErrPlacement, src)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create destination %s: %w", ErrPlacement, destDir, err)
	}

	direct := filepath.Join(destDir, filepath.Base(src))
	if samePath(src, direct) {
		p.logger.Debug("clip already at destination", logging.String(logging.FieldClip, src))
		return direct, nil
	}

	target, err := nextFreePath(direct)
	if err != nil {
		return "", fmt.Errorf("%w: allocate destination name: %w", ErrPlacement, err)
	}

	switch action {
	case ActionCopy:
		if err := copyFileVerified(src, target); err != nil {
			return "", fmt.Errorf("%w: copy %s: %w", ErrPlacement, filepath.Base(src), err)
		}
	case ActionMove:
		if err := moveFile(src, target); err != nil {
			return "", fmt.Errorf("%w: move %s: %w", ErrPlacement, filepath.Base(src), err)
		}
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrPlacement, action)
	}

	p.logger.Debug("clip placed",
		logging.String(logging.FieldClip, src),
		logging.String(logging.FieldDestination, target),
		logging.String(logging.FieldAction, string(action)),
	)
	return target, nil
}

// Unplace moves a placed file back to originalPath. The restore is a move
// even for copied clips, so undoing a copy removes the duplicate and an
// original left behind by copy mode is simply replaced.
func (p *Placer) Unplace(destPath, originalPath string) error {
	if _, err := os.Stat(destPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissingFile, destPath)
		}
		return fmt.Errorf("%w: stat placed file: %w", ErrPlacement, err)
	}
	if err := os.MkdirAll(filepath.Dir(originalPath), 0o755); err != nil {
		return fmt.Errorf("%w: create original directory: %w", ErrPlacement, err)
	}
	if err := moveFile(destPath, originalPath); err != nil {
		return fmt.Errorf("%w: restore %s: %w", ErrPlacement, filepath.Base(originalPath), err)
	}
	p.logger.Debug("clip restored",
		logging.String(logging.FieldClip, originalPath),
		logging.String(logging.FieldDestination, destPath),
	)
	return nil
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

// nextFreePath returns direct when unoccupied, otherwise the first
// "name__NNN.ext" variant that does not exist yet.
func nextFreePath(direct string) (string, error) {
	const maxAttempts = 10000

	free, err := pathFree(direct)
	if err != nil {
		return "", err
	}
	if free {
		return direct, nil
	}

	dir := filepath.Dir(direct)
	ext := filepath.Ext(direct)
	stem := strings.TrimSuffix(filepath.Base(direct), ext)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s__%03d%s", stem, attempt, ext))
		free, err := pathFree(candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("exhausted destination name slots for %s", direct)
}

func pathFree(path string) (bool, error) {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// moveFile renames src to dst, copying across filesystems when rename is
// not possible.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if copyErr := copyFileVerified(src, dst); copyErr != nil {
			return copyErr
		}
		return os.Remove(src)
	}
	return err
}
