// Package notifications delivers session events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Enumerated event types cover the session milestones worth a push
// message so the session loop can emit them without duplicating HTTP glue.
//
// Extend this package if you need alternative transports; session code
// depends only on the simple Service interface.
package notifications
