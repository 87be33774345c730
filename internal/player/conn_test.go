package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"clipsort/internal/logging"
)

func writeLine(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		t.Errorf("write line: %v", err)
	}
}

func TestCommandCorrelatesOutOfOrderReplies(t *testing.T) {
	client, server := net.Pipe()
	ipc := newIPCConn(client, logging.NewNop())
	defer ipc.close()

	reader := bufio.NewReader(server)
	go func() {
		var reqs []request
		for i := 0; i < 2; i++ {
			line, err := reader.ReadBytes('\n')
			if err != nil {
				return
			}
			var req request
			if err := json.Unmarshal(line, &req); err != nil {
				return
			}
			reqs = append(reqs, req)
		}
		// Reply to the later request first; callers must still receive
		// their own responses.
		for i := len(reqs) - 1; i >= 0; i-- {
			data, _ := json.Marshal(reqs[i].Command[1])
			payload, _ := json.Marshal(message{RequestID: reqs[i].RequestID, Error: "success", Data: data})
			if _, err := server.Write(append(payload, '\n')); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	results := make(chan error, 2)
	for _, name := range []string{"alpha", "beta"} {
		go func(name string) {
			data, err := ipc.command(ctx, "get_property", name)
			if err != nil {
				results <- err
				return
			}
			var got string
			if err := json.Unmarshal(data, &got); err != nil {
				results <- err
				return
			}
			if got != name {
				results <- fmt.Errorf("response %q delivered to caller %q", got, name)
				return
			}
			results <- nil
		}(name)
	}
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			t.Fatalf("command failed: %v", err)
		}
	}
}

func TestCommandSurfacesMpvError(t *testing.T) {
	client, server := net.Pipe()
	ipc := newIPCConn(client, logging.NewNop())
	defer ipc.close()

	go func() {
		reader := bufio.NewReader(server)
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}
		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			return
		}
		payload, _ := json.Marshal(message{RequestID: req.RequestID, Error: "invalid parameter"})
		_, _ = server.Write(append(payload, '\n'))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := ipc.command(ctx, "seek", "sideways")
	if err == nil || !strings.Contains(err.Error(), "invalid parameter") {
		t.Fatalf("expected mpv error to surface, got %v", err)
	}
}

func TestEventsForwardedAndChannelClosed(t *testing.T) {
	client, server := net.Pipe()
	ipc := newIPCConn(client, logging.NewNop())

	go func() {
		writeLine(t, server, `{"event":"property-change","id":1,"name":"eof-reached","data":true}`)
		writeLine(t, server, `{"event":"property-change","id":1,"name":"eof-reached","data":null}`)
		writeLine(t, server, `{"event":"end-file","reason":"eof"}`)
		writeLine(t, server, `{"event":"end-file","reason":"error","file_error":"unrecognized format"}`)
		writeLine(t, server, `{"event":"shutdown"}`)
		server.Close()
	}()

	for _, want := range []EventKind{EventEndReached, EventLoadFailed, EventShutdown} {
		select {
		case event, ok := <-ipc.events:
			if !ok {
				t.Fatalf("events channel closed before %q", want)
			}
			if event.Kind != want {
				t.Fatalf("event = %q, want %q", event.Kind, want)
			}
			if want == EventLoadFailed && event.Detail != "unrecognized format" {
				t.Fatalf("load failure detail = %q, want file_error text", event.Detail)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}

	select {
	case _, ok := <-ipc.events:
		if ok {
			t.Fatal("expected events channel to close after disconnect")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events channel to close")
	}
}

func TestCommandAfterDisconnectReturnsErrClosed(t *testing.T) {
	client, server := net.Pipe()
	ipc := newIPCConn(client, logging.NewNop())

	server.Close()
	select {
	case <-ipc.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for read loop to stop")
	}

	if _, err := ipc.command(context.Background(), "stop"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
