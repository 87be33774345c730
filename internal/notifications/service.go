package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipsort/internal/config"
)

const userAgent = "Clipsort/0.1.0"

// Event identifies a notification-worthy session milestone.
type Event string

const (
	// EventSessionCompleted fires when the clip queue runs out.
	EventSessionCompleted Event = "session-completed"
	// EventPlacementFailed fires when a move or copy could not complete.
	EventPlacementFailed Event = "placement-failed"
	// EventTest exercises the delivery path on demand.
	EventTest Event = "test"
)

// Payload carries event-specific fields referenced by the formatter.
type Payload map[string]string

// Service publishes operator notifications.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		sessionDone: cfg.Notifications.SessionDone,
		errors:      cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	sessionDone bool
	errors      bool
}

// Publish formats the event into an ntfy message and posts it. Events the
// configuration suppresses return nil without a request.
func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventSessionCompleted:
		if !n.sessionDone {
			return message{}, false
		}
		body := fmt.Sprintf("Sorting session complete: %s clips placed", orUnknown(payload["placed"]))
		if skipped := strings.TrimSpace(payload["skipped"]); skipped != "" && skipped != "0" {
			body = fmt.Sprintf("%s, %s skipped", body, skipped)
		}
		if duration := strings.TrimSpace(payload["duration"]); duration != "" {
			body = fmt.Sprintf("%s in %s", body, duration)
		}
		return message{
			title: "Clipsort - Session Complete",
			body:  body,
			tags:  []string{"clipsort", "session", "completed"},
		}, true
	case EventPlacementFailed:
		if !n.errors {
			return message{}, false
		}
		return message{
			title:    "Clipsort - Placement Failed",
			body:     fmt.Sprintf("Could not place %s: %s", orUnknown(payload["clip"]), orUnknown(payload["error"])),
			tags:     []string{"clipsort", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Clipsort - Test",
			body:     "Notification delivery test",
			tags:     []string{"clipsort", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func orUnknown(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
