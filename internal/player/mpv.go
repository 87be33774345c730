package player

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"clipsort/internal/logging"
)

var commandContext = exec.CommandContext

const (
	socketDialTimeout = 10 * time.Second
	quitGracePeriod   = 3 * time.Second
)

// MPV supervises one idle mpv process and drives it over its JSON IPC
// socket. The process outlives individual clips; Load swaps the file playing
// in the existing window.
type MPV struct {
	binary     string
	extraArgs  []string
	socketPath string
	logger     *slog.Logger

	cmd  *exec.Cmd
	conn *ipcConn
}

// Option configures the MPV player.
type Option func(*MPV)

// WithExtraArgs appends operator-configured mpv arguments to the launch
// command.
func WithExtraArgs(args []string) Option {
	return func(p *MPV) {
		p.extraArgs = append(p.extraArgs, args...)
	}
}

// WithSocketPath overrides the IPC socket location.
func WithSocketPath(path string) Option {
	return func(p *MPV) {
		if path != "" {
			p.socketPath = path
		}
	}
}

// NewMPV builds an MPV player around the given binary.
func NewMPV(binary string, logger *slog.Logger, opts ...Option) *MPV {
	p := &MPV{
		binary:     binary,
		socketPath: filepath.Join(os.TempDir(), fmt.Sprintf("clipsort-mpv-%d.sock", os.Getpid())),
		logger:     logging.NewComponentLogger(logger, "player"),
	}
	if p.binary == "" {
		p.binary = "mpv"
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches mpv idle with a forced window and connects to its IPC
// socket. keep-open makes a finished clip freeze on its last frame, and the
// observed eof-reached property tells the session when that happens.
func (p *MPV) Start(ctx context.Context) error {
	_ = os.Remove(p.socketPath)

	args := []string{
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=yes",
		"--no-terminal",
		"--input-ipc-server=" + p.socketPath,
	}
	args = append(args, p.extraArgs...)

	cmd := commandContext(ctx, p.binary, args...) //nolint:gosec
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.binary, err)
	}
	p.cmd = cmd

	socket, err := dialSocket(ctx, p.socketPath)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return err
	}
	p.conn = newIPCConn(socket, p.logger)

	if _, err := p.conn.command(ctx, "observe_property", 1, "eof-reached"); err != nil {
		_ = p.Close()
		return fmt.Errorf("observe playback end: %w", err)
	}

	p.logger.Debug("mpv started", logging.String("socket", p.socketPath))
	return nil
}

// dialSocket retries until mpv creates its IPC socket, which happens shortly
// after process start.
func dialSocket(ctx context.Context, path string) (net.Conn, error) {
	deadline := time.Now().Add(socketDialTimeout)
	for {
		socket, err := net.DialTimeout("unix", path, time.Second)
		if err == nil {
			return socket, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("mpv IPC socket %s not ready: %w", path, err)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// Load replaces the current clip and plays it from the beginning. The pause
// flag is cleared explicitly because keep-open leaves mpv paused after a
// clip runs out.
func (p *MPV) Load(ctx context.Context, path string) error {
	conn, err := p.ipc()
	if err != nil {
		return err
	}
	if _, err := conn.command(ctx, "loadfile", path, "replace"); err != nil {
		return err
	}
	_, err = conn.command(ctx, "set_property", "pause", false)
	return err
}

// Stop unloads the current clip so mpv no longer holds the file open.
func (p *MPV) Stop(ctx context.Context) error {
	conn, err := p.ipc()
	if err != nil {
		return err
	}
	_, err = conn.command(ctx, "stop")
	return err
}

// TogglePause flips between playing and paused.
func (p *MPV) TogglePause(ctx context.Context) error {
	conn, err := p.ipc()
	if err != nil {
		return err
	}
	_, err = conn.command(ctx, "cycle", "pause")
	return err
}

// SetSpeed applies a playback speed multiplier.
func (p *MPV) SetSpeed(ctx context.Context, speed float64) error {
	conn, err := p.ipc()
	if err != nil {
		return err
	}
	_, err = conn.command(ctx, "set_property", "speed", speed)
	return err
}

// Seek jumps by the given number of seconds, negative to rewind.
func (p *MPV) Seek(ctx context.Context, seconds float64) error {
	conn, err := p.ipc()
	if err != nil {
		return err
	}
	_, err = conn.command(ctx, "seek", seconds, "relative")
	return err
}

// Events exposes asynchronous playback notifications.
func (p *MPV) Events() <-chan Event {
	if p.conn == nil {
		return nil
	}
	return p.conn.events
}

// Close asks mpv to quit, then reaps the process, killing it if it ignores
// the request.
func (p *MPV) Close() error {
	if p.conn != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, _ = p.conn.command(ctx, "quit")
		cancel()
		p.conn.close()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		waited := make(chan error, 1)
		go func() { waited <- p.cmd.Wait() }()
		select {
		case <-waited:
		case <-time.After(quitGracePeriod):
			_ = p.cmd.Process.Kill()
			<-waited
		}
	}
	_ = os.Remove(p.socketPath)
	return nil
}

func (p *MPV) ipc() (*ipcConn, error) {
	if p.conn == nil {
		return nil, ErrClosed
	}
	return p.conn, nil
}

var _ Player = (*MPV)(nil)
