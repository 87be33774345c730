// Package player drives the external preview window during a sorting
// session.
//
// The production implementation supervises a single idle mpv process and
// speaks its JSON IPC protocol over a unix socket, so consecutive clips
// reuse one window instead of flashing a new one per file. A Null player
// stands in when previewing is disabled.
package player

import "context"

// EventKind names an asynchronous playback notification.
type EventKind string

const (
	// EventEndReached fires when the current clip plays to its final frame.
	EventEndReached EventKind = "end-reached"
	// EventLoadFailed fires when the current clip could not be decoded.
	EventLoadFailed EventKind = "load-failed"
	// EventShutdown fires when the player process is going away.
	EventShutdown EventKind = "shutdown"
)

// Event is one asynchronous notification from the player.
type Event struct {
	Kind EventKind
	// Detail carries the player's failure description for EventLoadFailed.
	Detail string
}

// Player is the control surface a sorting session drives.
type Player interface {
	// Start brings the player up. It must be called before any other method.
	Start(ctx context.Context) error
	// Load replaces the current clip and plays it from the beginning.
	Load(ctx context.Context, path string) error
	// Stop unloads the current clip, releasing the player's handle on the
	// file so it can be moved.
	Stop(ctx context.Context) error
	// TogglePause flips between playing and paused.
	TogglePause(ctx context.Context) error
	// SetSpeed applies a playback speed multiplier.
	SetSpeed(ctx context.Context, speed float64) error
	// Seek jumps by the given number of seconds, negative to rewind.
	Seek(ctx context.Context, seconds float64) error
	// Events exposes asynchronous playback notifications. The channel is
	// closed when the player connection goes away.
	Events() <-chan Event
	// Close shuts the player down and reaps any child process.
	Close() error
}

// Null is a Player that accepts every command and does nothing, used when
// preview playback is disabled.
type Null struct{}

func (Null) Start(context.Context) error             { return nil }
func (Null) Load(context.Context, string) error      { return nil }
func (Null) Stop(context.Context) error              { return nil }
func (Null) TogglePause(context.Context) error       { return nil }
func (Null) SetSpeed(context.Context, float64) error { return nil }
func (Null) Seek(context.Context, float64) error     { return nil }
func (Null) Events() <-chan Event                    { return nil }
func (Null) Close() error                            { return nil }

var _ Player = Null{}
