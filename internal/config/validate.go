package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePlacement(); err != nil {
		return err
	}
	if err := c.validateDecisionLog(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validatePlayer(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.SourceDir == "" {
		return errors.New("paths.source_dir must be set")
	}
	if c.Paths.SortedRoot == "" {
		return errors.New("paths.sorted_root must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validatePlacement() error {
	switch c.Placement.Mode {
	case "move", "copy":
		return nil
	default:
		return fmt.Errorf("placement.mode must be %q or %q, got %q", "move", "copy", c.Placement.Mode)
	}
}

func (c *Config) validateDecisionLog() error {
	if c.DecisionLog.Path == "" {
		return errors.New("decision_log.path must be set")
	}
	switch c.DecisionLog.CorruptRows {
	case "skip", "abort":
		return nil
	default:
		return fmt.Errorf("decision_log.corrupt_rows must be %q or %q, got %q", "skip", "abort", c.DecisionLog.CorruptRows)
	}
}

func (c *Config) validateScan() error {
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must include at least one extension")
	}
	return nil
}

func (c *Config) validatePlayer() error {
	if !c.Player.Enabled {
		return nil
	}
	if c.Player.Binary == "" {
		return errors.New("player.binary must be set when player.enabled is true")
	}
	if c.Player.SeekSeconds <= 0 {
		return errors.New("player.seek_seconds must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}
