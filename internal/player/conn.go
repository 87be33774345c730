package player

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"clipsort/internal/logging"
)

// ErrClosed is returned for commands issued after the player connection shut
// down.
var ErrClosed = errors.New("player connection closed")

// message is one line of mpv's JSON IPC protocol, with response and event
// fields folded together.
type message struct {
	RequestID int64           `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Reason    string          `json:"reason"`
	FileError string          `json:"file_error"`
}

type request struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

// ipcConn correlates mpv IPC requests with their responses by request id and
// forwards asynchronous events. readLoop is the sole sender on events and
// closes it when the socket goes away.
type ipcConn struct {
	socket net.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan message
	closed  bool

	events chan Event
	done   chan struct{}
}

func newIPCConn(socket net.Conn, logger *slog.Logger) *ipcConn {
	c := &ipcConn{
		socket:  socket,
		logger:  logger,
		pending: make(map[int64]chan message),
		events:  make(chan Event, 16),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *ipcConn) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.nextID++
	id := c.nextID
	reply := make(chan message, 1)
	c.pending[id] = reply
	c.mu.Unlock()

	payload, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("encode mpv command: %w", err)
	}
	payload = append(payload, '\n')

	c.writeMu.Lock()
	_, err = c.socket.Write(payload)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return nil, fmt.Errorf("write mpv command: %w", err)
	}

	select {
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	case msg := <-reply:
		if msg.Error != "" && msg.Error != "success" {
			return nil, fmt.Errorf("mpv rejected command %v: %s", args, msg.Error)
		}
		return msg.Data, nil
	}
}

func (c *ipcConn) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *ipcConn) readLoop() {
	scanner := bufio.NewScanner(c.socket)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var msg message
		if err := json.Unmarshal(line, &msg); err != nil {
			c.logger.Debug("discarding unparseable mpv line", logging.Error(err))
			continue
		}
		if msg.Event != "" {
			c.dispatchEvent(msg)
			continue
		}
		c.mu.Lock()
		reply, ok := c.pending[msg.RequestID]
		if ok {
			delete(c.pending, msg.RequestID)
		}
		c.mu.Unlock()
		if ok {
			reply <- msg
		}
	}

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	close(c.done)
	_ = c.socket.Close()
	close(c.events)
}

func (c *ipcConn) dispatchEvent(msg message) {
	var event Event
	switch msg.Event {
	case "property-change":
		if msg.Name != "eof-reached" {
			return
		}
		var reached bool
		if err := json.Unmarshal(msg.Data, &reached); err != nil || !reached {
			return
		}
		event = Event{Kind: EventEndReached}
	case "end-file":
		// Regular end of playback surfaces through eof-reached because
		// keep-open holds the file; end-file only matters on decode failure.
		if msg.Reason != "error" {
			return
		}
		detail := msg.FileError
		if detail == "" {
			detail = "loading failed"
		}
		event = Event{Kind: EventLoadFailed, Detail: detail}
	case "shutdown":
		event = Event{Kind: EventShutdown}
	default:
		return
	}
	select {
	case c.events <- event:
	default:
		c.logger.Debug("dropping mpv event, consumer is behind",
			logging.String(logging.FieldEventType, string(event.Kind)))
	}
}

// close tears the socket down and waits for readLoop to finish, so no
// goroutine outlives the player.
func (c *ipcConn) close() {
	_ = c.socket.Close()
	<-c.done
}
