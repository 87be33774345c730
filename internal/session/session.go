package session

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipsort/internal/config"
	"clipsort/internal/decisionlog"
	"clipsort/internal/input"
	"clipsort/internal/labels"
	"clipsort/internal/logging"
	"clipsort/internal/notifications"
	"clipsort/internal/placer"
	"clipsort/internal/player"
)

// Session coordinates one interactive sorting run.
type Session struct {
	cfg      *config.Config
	registry *labels.Registry
	log      *decisionlog.Log
	placer   *placer.Placer
	logger   *slog.Logger

	player   player.Player
	keys     input.Source
	notifier notifications.Service
	out      io.Writer

	action   placer.Action
	queue    []string
	state    State
	speedIdx int

	placed  int
	skipped int
	started time.Time
}

// Option configures optional Session collaborators.
type Option func(*Session)

// WithPlayer substitutes the playback surface, replacing the default Null
// player.
func WithPlayer(p player.Player) Option {
	return func(s *Session) {
		if p != nil {
			s.player = p
		}
	}
}

// WithInput sets the key source the session reads from.
func WithInput(src input.Source) Option {
	return func(s *Session) { s.keys = src }
}

// WithNotifier overrides the notification service (used in tests).
func WithNotifier(n notifications.Service) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithOutput redirects operator feedback away from stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		if w != nil {
			s.out = w
		}
	}
}

// New constructs a session over the given collaborators. Playback defaults
// to the Null player and feedback to stdout; an input source must be
// provided before Run.
func New(cfg *config.Config, registry *labels.Registry, log *decisionlog.Log, logger *slog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Session{
		cfg:      cfg,
		registry: registry,
		log:      log,
		placer:   placer.New(logger),
		logger:   logging.NewComponentLogger(logger, "session"),
		player:   player.Null{},
		notifier: notifications.NewService(cfg),
		out:      os.Stdout,
		state:    StateIdle,
		speedIdx: normalSpeedIndex,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current lifecycle state.
func (s *Session) State() State { return s.state }

// Placed reports how many placements this run completed, net of undos.
func (s *Session) Placed() int { return s.placed }

// Skipped reports how many clips this run skipped.
func (s *Session) Skipped() int { return s.skipped }

// Remaining reports the number of undecided clips, including the current
// one.
func (s *Session) Remaining() int { return len(s.queue) }

// Current returns the clip under review, or "" once the queue is empty.
func (s *Session) Current() string {
	if len(s.queue) == 0 {
		return ""
	}
	return s.queue[0]
}

// printf emits one operator feedback line. The terminal sits in raw mode
// during a session, so lines end with an explicit carriage return.
func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\r\n", args...)
}

// printHelp shows the active key map once at startup.
func (s *Session) printHelp() {
	var keys strings.Builder
	for _, rule := range s.registry.Rules() {
		fmt.Fprintf(&keys, "[%s] %s  ", rule.Key, rule.Name)
	}
	s.printf("%s", strings.TrimRight(keys.String(), " "))
	s.printf("[s] skip  [space] pause  [backspace] undo  [tab] speed  [arrows] seek  [q] quit")
}

func (s *Session) seekStep() float64 {
	if s.cfg.Player.SeekSeconds > 0 {
		return s.cfg.Player.SeekSeconds
	}
	return 5
}

func (s *Session) inSourceDir(path string) bool {
	return filepath.Dir(filepath.Clean(path)) == filepath.Clean(s.cfg.Paths.SourceDir)
}
