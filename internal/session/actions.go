package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipsort/internal/decisionlog"
	"clipsort/internal/input"
	"clipsort/internal/labels"
	"clipsort/internal/logging"
	"clipsort/internal/notifications"
	"clipsort/internal/placer"
	"clipsort/internal/player"
)

// handleKey dispatches one key press. It reports true when the session
// should end.
func (s *Session) handleKey(ctx context.Context, key input.Key) bool {
	switch key.Kind {
	case input.KindCtrlC, input.KindEscape:
		return true
	case input.KindSpace:
		s.handlePlayPause(ctx)
	case input.KindBackspace:
		s.handleUndo(ctx)
	case input.KindTab:
		s.handleSpeedCycle(ctx)
	case input.KindLeft:
		s.handleSeek(ctx, -s.seekStep())
	case input.KindRight:
		s.handleSeek(ctx, s.seekStep())
	case input.KindRune:
		return s.handleRune(ctx, key.Rune)
	}
	return false
}

func (s *Session) handleRune(ctx context.Context, r rune) bool {
	key := strings.ToLower(string(r))
	switch key {
	case "q":
		return true
	case "s":
		s.handleSkip(ctx)
		return false
	}
	rule := s.registry.Resolve(key)
	if rule == nil {
		s.printf("Key %q is not mapped. Use a label key, s, space, backspace, tab, or q.", key)
		return false
	}
	s.handleLabel(ctx, *rule)
	return false
}

// handleLabel places the current clip under the rule's destination and
// records the decision. On placement failure the clip stays current, is
// reloaded, and nothing is logged; pressing the key again retries.
func (s *Session) handleLabel(ctx context.Context, rule labels.Rule) {
	if len(s.queue) == 0 {
		s.printf("Nothing left to label.")
		return
	}
	current := s.queue[0]
	name := filepath.Base(current)

	// The player holds an open handle on the clip until it unloads.
	if err := s.player.Stop(ctx); err != nil {
		s.logger.Warn("player stop before placement failed",
			logging.Error(err),
			logging.String(logging.FieldClip, current),
		)
	}

	dest, err := s.placer.Place(current, rule.Dest, s.action)
	if err != nil {
		s.reportPlacementFailure(ctx, current, err)
		s.reload(ctx)
		return
	}

	entry := decisionlog.Entry{
		Timestamp:       time.Now().UTC(),
		Key:             rule.Key,
		Label:           rule.Name,
		OriginalPath:    current,
		DestinationPath: dest,
		Action:          string(s.action),
	}
	if err := s.log.Append(entry); err != nil {
		// A placed but unrecorded clip would poison every future resume,
		// so roll the placement back and keep the clip current.
		s.logger.Error("decision log append failed, restoring clip",
			logging.Error(err),
			logging.String(logging.FieldClip, current),
			logging.String(logging.FieldErrorHint, "check decision log permissions and free space"),
		)
		if restoreErr := s.placer.Unplace(dest, current); restoreErr != nil {
			s.logger.Error("restore after failed append also failed",
				logging.Error(restoreErr),
				logging.String(logging.FieldDestination, dest),
			)
			s.printf("Could not record the decision (%v) and could not move %s back from %s.", err, name, dest)
		} else {
			s.printf("Could not record the decision: %v. %s was put back.", err, name)
		}
		s.reload(ctx)
		return
	}

	s.placed++
	s.logger.Info("clip placed",
		logging.String(logging.FieldClip, current),
		logging.String(logging.FieldKey, rule.Key),
		logging.String(logging.FieldLabel, rule.Name),
		logging.String(logging.FieldDestination, dest),
		logging.String(logging.FieldAction, string(s.action)),
	)
	s.printf("%s -> %s", name, rule.Name)
	s.advance(ctx)
}

// handleSkip advances past the current clip without a placement or a log
// row, so the clip comes back in the next session.
func (s *Session) handleSkip(ctx context.Context) {
	if len(s.queue) == 0 {
		s.printf("Nothing left to skip.")
		return
	}
	current := s.queue[0]
	if err := s.player.Stop(ctx); err != nil {
		s.logger.Warn("player stop before skip failed", logging.Error(err))
	}
	s.skipped++
	s.logger.Info("clip skipped", logging.String(logging.FieldClip, current))
	s.printf("Skipped %s", filepath.Base(current))
	s.advance(ctx)
}

// handleUndo pops the most recent decision and moves the placed file back.
// The restore is always a move, so undoing a copy removes the duplicate.
func (s *Session) handleUndo(ctx context.Context) {
	entry, err := s.log.PopLast()
	if err != nil {
		if errors.Is(err, decisionlog.ErrEmptyLog) {
			s.printf("Nothing to undo.")
			return
		}
		s.logger.Error("undo could not read the decision log", logging.Error(err))
		s.printf("Undo failed: %v", err)
		return
	}

	name := filepath.Base(entry.OriginalPath)
	if err := s.placer.Unplace(entry.DestinationPath, entry.OriginalPath); err != nil {
		if errors.Is(err, placer.ErrMissingFile) {
			// The placed file is gone; leaving the entry popped keeps the
			// log matching what is actually on disk.
			s.logger.Warn("undo target missing, entry removed from log",
				logging.Error(err),
				logging.String(logging.FieldDestination, entry.DestinationPath),
			)
			s.printf("Cannot undo %s: the placed file is gone.", name)
			if _, statErr := os.Stat(entry.OriginalPath); statErr == nil && s.inSourceDir(entry.OriginalPath) {
				s.requeue(ctx, entry.OriginalPath)
			}
			return
		}
		// The placement still stands on disk, so the entry goes back too.
		if appendErr := s.log.Append(entry); appendErr != nil {
			s.logger.Error("could not re-append entry after failed undo", logging.Error(appendErr))
		}
		s.logger.Error("undo failed",
			logging.Error(err),
			logging.String(logging.FieldDestination, entry.DestinationPath),
		)
		s.printf("Undo failed: %v", err)
		return
	}

	if s.placed > 0 {
		s.placed--
	}
	s.logger.Info("decision undone",
		logging.String(logging.FieldClip, entry.OriginalPath),
		logging.String(logging.FieldLabel, entry.Label),
		logging.String(logging.FieldDestination, entry.DestinationPath),
	)
	if !s.inSourceDir(entry.OriginalPath) {
		s.printf("Undid %s, restored to %s (outside the source directory, not queued).", name, entry.OriginalPath)
		return
	}
	s.printf("Undid %s (%s)", name, entry.Label)
	s.requeue(ctx, entry.OriginalPath)
}

func (s *Session) handlePlayPause(ctx context.Context) {
	switch s.state {
	case StatePlaying:
		if err := s.player.TogglePause(ctx); err != nil {
			s.logger.Warn("pause failed", logging.Error(err))
			return
		}
		s.state = StatePaused
	case StatePaused:
		if err := s.player.TogglePause(ctx); err != nil {
			s.logger.Warn("resume failed", logging.Error(err))
			return
		}
		s.state = StatePlaying
	case StateAwaitingNextClip:
		// Replay the finished clip from the start.
		s.reload(ctx)
	}
}

func (s *Session) handleSpeedCycle(ctx context.Context) {
	if s.state == StateExhausted {
		return
	}
	next := (s.speedIdx + 1) % len(speedSteps)
	if err := s.player.SetSpeed(ctx, speedSteps[next]); err != nil {
		s.logger.Warn("speed change failed", logging.Error(err))
		return
	}
	s.speedIdx = next
	s.printf("Speed %gx", speedSteps[next])
}

func (s *Session) handleSeek(ctx context.Context, seconds float64) {
	if s.state == StateExhausted || len(s.queue) == 0 {
		return
	}
	if err := s.player.Seek(ctx, seconds); err != nil {
		s.logger.Debug("seek failed", logging.Error(err))
	}
}

func (s *Session) handlePlayerEvent(ctx context.Context, event player.Event) {
	switch event.Kind {
	case player.EventEndReached:
		if s.state != StatePlaying && s.state != StatePaused {
			return
		}
		s.state = StateAwaitingNextClip
		s.printf("Clip finished. Pick a label, skip, or replay with space.")
		s.logger.Debug("end of clip", logging.String(logging.FieldState, string(s.state)))
	case player.EventLoadFailed:
		if len(s.queue) == 0 {
			return
		}
		current := s.queue[0]
		s.logger.Warn("clip cannot be played, advancing",
			logging.String(logging.FieldClip, current),
			logging.String("detail", event.Detail),
			logging.String(logging.FieldErrorHint, "inspect the file with ffprobe"),
		)
		s.printf("Cannot play %s (%s). Leaving it in place.", filepath.Base(current), event.Detail)
		s.advance(ctx)
	case player.EventShutdown:
		s.dropPlayer("player shut down")
	}
}

// reportPlacementFailure surfaces a failed placement to the operator, the
// log, and the notifier. There is no automatic retry; a blind retry would
// mint suffixed duplicates.
func (s *Session) reportPlacementFailure(ctx context.Context, clip string, err error) {
	s.logger.Error("placement failed",
		logging.Error(err),
		logging.String(logging.FieldClip, clip),
		logging.String(logging.FieldErrorHint, "fix the destination and press the label key again"),
	)
	s.printf("Could not place %s: %v", filepath.Base(clip), err)
	notifyErr := s.notifier.Publish(ctx, notifications.EventPlacementFailed, notifications.Payload{
		"clip":  filepath.Base(clip),
		"error": err.Error(),
	})
	if notifyErr != nil {
		s.logger.Debug("placement failure notification failed", logging.Error(notifyErr))
	}
}

// advance drops the queue head and moves on to the next clip.
func (s *Session) advance(ctx context.Context) {
	s.queue = s.queue[1:]
	if len(s.queue) == 0 {
		s.finish(ctx)
		return
	}
	s.loadCurrent(ctx)
}

// requeue puts path at the front of the queue and makes it current.
func (s *Session) requeue(ctx context.Context, path string) {
	s.queue = append([]string{path}, s.queue...)
	s.loadCurrent(ctx)
}

// loadCurrent starts playback of the queue head and announces it. A load
// failure is not fatal; labeling works without a preview.
func (s *Session) loadCurrent(ctx context.Context) {
	current := s.queue[0]
	if err := s.player.Load(ctx, current); err != nil {
		s.logger.Warn("could not load clip",
			logging.Error(err),
			logging.String(logging.FieldClip, current),
		)
		s.printf("Cannot preview %s (%v).", filepath.Base(current), err)
	}
	s.state = StatePlaying
	s.printf("Loaded %s (%d left)", filepath.Base(current), len(s.queue))
	s.logger.Debug("clip loaded",
		logging.String(logging.FieldClip, current),
		logging.Int("remaining", len(s.queue)),
		logging.String(logging.FieldState, string(s.state)),
	)
}

// reload restarts the current clip without re-announcing it, after a
// failed placement or an end-of-clip replay.
func (s *Session) reload(ctx context.Context) {
	if len(s.queue) == 0 {
		return
	}
	if err := s.player.Load(ctx, s.queue[0]); err != nil {
		s.logger.Warn("could not reload clip",
			logging.Error(err),
			logging.String(logging.FieldClip, s.queue[0]),
		)
		return
	}
	s.state = StatePlaying
}
