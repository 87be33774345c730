package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"clipsort/internal/decisionlog"
	"clipsort/internal/logging"
	"clipsort/internal/notifications"
	"clipsort/internal/placer"
	"clipsort/internal/player"
	"clipsort/internal/scan"
)

// Run executes the sorting loop until the operator quits, the input source
// closes, or the context is canceled. The clip queue is rebuilt from the
// decision log on every call; nothing about ordering is persisted between
// runs.
func (s *Session) Run(ctx context.Context) error {
	if s.keys == nil {
		return errors.New("session has no input source")
	}
	action, err := placer.ParseAction(s.cfg.Placement.Mode)
	if err != nil {
		return err
	}
	s.action = action

	if err := s.log.Lock(); err != nil {
		return err
	}
	defer func() {
		if err := s.log.Unlock(); err != nil {
			s.logger.Warn("decision log unlock failed", logging.Error(err))
		}
	}()

	entries, err := s.log.Load()
	if err != nil {
		return fmt.Errorf("load decision log: %w", err)
	}
	clips, err := scan.Dir(s.cfg.Paths.SourceDir, s.cfg.Scan.Extensions)
	if err != nil {
		return err
	}
	pending := scan.Pending(clips, decisionlog.ResumeSet(entries))
	s.queue = make([]string, 0, len(pending))
	for _, clip := range pending {
		s.queue = append(s.queue, clip.Path)
	}
	s.started = time.Now()
	s.logger.Info("session starting",
		logging.Int("pending", len(s.queue)),
		logging.Int("decided", len(entries)),
		logging.String(logging.FieldAction, string(s.action)),
	)

	if err := s.player.Start(ctx); err != nil {
		return fmt.Errorf("start player: %w", err)
	}
	defer func() {
		if err := s.player.Close(); err != nil {
			s.logger.Warn("player close failed", logging.Error(err))
		}
	}()

	s.printHelp()
	if len(s.queue) == 0 {
		s.printf("Nothing to sort in %s.", s.cfg.Paths.SourceDir)
		s.state = StateExhausted
	} else {
		s.loadCurrent(ctx)
	}

	events := s.player.Events()
	for {
		select {
		case <-ctx.Done():
			s.summary()
			return ctx.Err()
		case key, ok := <-s.keys.Keys():
			if !ok {
				s.summary()
				return nil
			}
			if quit := s.handleKey(ctx, key); quit {
				s.summary()
				return nil
			}
		case event, ok := <-events:
			if !ok {
				events = nil
				s.dropPlayer("connection closed")
				continue
			}
			s.handlePlayerEvent(ctx, event)
		}
	}
}

// finish marks the queue exhausted. The loop keeps running so the operator
// can still undo or quit; an undo that revives the queue leaves this state
// again through loadCurrent.
func (s *Session) finish(ctx context.Context) {
	if s.state == StateExhausted {
		return
	}
	s.state = StateExhausted
	if err := s.player.Stop(ctx); err != nil {
		s.logger.Debug("player stop at exhaustion failed", logging.Error(err))
	}
	s.printf("All clips sorted: %d placed, %d skipped. Undo or quit.", s.placed, s.skipped)
	s.logger.Info("queue exhausted",
		logging.Int("placed", s.placed),
		logging.Int("skipped", s.skipped),
		logging.String(logging.FieldState, string(s.state)),
	)
	if s.placed == 0 && s.skipped == 0 {
		return
	}
	err := s.notifier.Publish(ctx, notifications.EventSessionCompleted, notifications.Payload{
		"placed":   strconv.Itoa(s.placed),
		"skipped":  strconv.Itoa(s.skipped),
		"duration": time.Since(s.started).Round(time.Second).String(),
	})
	if err != nil {
		s.logger.Debug("completion notification failed", logging.Error(err))
	}
}

// dropPlayer swaps in the Null player after the real one went away, so the
// rest of the session keeps working without playback.
func (s *Session) dropPlayer(reason string) {
	if _, isNull := s.player.(player.Null); isNull {
		return
	}
	s.logger.Warn("continuing without playback",
		logging.String("reason", reason),
		logging.String(logging.FieldErrorHint, "restart the session to bring the player back"),
	)
	s.printf("Player went away (%s). Sorting continues without preview.", reason)
	if err := s.player.Close(); err != nil {
		s.logger.Debug("player close after shutdown failed", logging.Error(err))
	}
	s.player = player.Null{}
}

func (s *Session) summary() {
	duration := time.Since(s.started).Round(time.Second)
	s.printf("Session over: %d placed, %d skipped in %s.", s.placed, s.skipped, duration)
	s.logger.Info("session finished",
		logging.Int("placed", s.placed),
		logging.Int("skipped", s.skipped),
		logging.Duration("duration", duration),
	)
}
