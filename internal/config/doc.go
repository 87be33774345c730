// Package config loads, normalizes, and validates clipsort configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CLIPSORT_NTFY_TOPIC. The Config type centralizes every knob the CLI needs,
// from the scanned source directory and label rules to decision log and
// player settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
