package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDecisionLog(); err != nil {
		return err
	}
	c.normalizePlacement()
	c.normalizeScan()
	c.normalizePlayer()
	c.normalizeNotifications()
	c.normalizeLogging()
	c.normalizeLabels()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir, err = expandPath(c.Paths.SourceDir); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SortedRoot) == "" && c.Paths.SourceDir != "" {
		c.Paths.SortedRoot = filepath.Join(filepath.Dir(c.Paths.SourceDir), defaultSortedRootDirname)
	}
	if c.Paths.SortedRoot, err = expandPath(c.Paths.SortedRoot); err != nil {
		return fmt.Errorf("paths.sorted_root: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDecisionLog() error {
	var err error
	if strings.TrimSpace(c.DecisionLog.Path) == "" {
		c.DecisionLog.Path = filepath.Join(c.Paths.LogDir, defaultDecisionLogFilename)
	}
	if c.DecisionLog.Path, err = expandPath(c.DecisionLog.Path); err != nil {
		return fmt.Errorf("decision_log.path: %w", err)
	}
	c.DecisionLog.CorruptRows = strings.ToLower(strings.TrimSpace(c.DecisionLog.CorruptRows))
	if c.DecisionLog.CorruptRows == "" {
		c.DecisionLog.CorruptRows = defaultCorruptRows
	}
	return nil
}

func (c *Config) normalizePlacement() {
	c.Placement.Mode = strings.ToLower(strings.TrimSpace(c.Placement.Mode))
	if c.Placement.Mode == "" {
		c.Placement.Mode = defaultPlacementMode
	}
}

func (c *Config) normalizeScan() {
	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = defaultExtensions()
		return
	}
	exts := make([]string, 0, len(c.Scan.Extensions))
	seen := make(map[string]struct{}, len(c.Scan.Extensions))
	for _, ext := range c.Scan.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = defaultExtensions()
	}
	c.Scan.Extensions = exts
}

func (c *Config) normalizePlayer() {
	c.Player.Binary = strings.TrimSpace(c.Player.Binary)
	if c.Player.Binary == "" {
		c.Player.Binary = defaultPlayerBinary
	}
	if c.Player.SeekSeconds <= 0 {
		c.Player.SeekSeconds = defaultSeekSeconds
	}
	args := make([]string, 0, len(c.Player.ExtraArgs))
	for _, arg := range c.Player.ExtraArgs {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			args = append(args, trimmed)
		}
	}
	c.Player.ExtraArgs = args
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("CLIPSORT_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeLabels() {
	for i := range c.Labels {
		c.Labels[i].Key = strings.TrimSpace(c.Labels[i].Key)
		c.Labels[i].Name = strings.TrimSpace(c.Labels[i].Name)
		c.Labels[i].Dest = strings.TrimSpace(c.Labels[i].Dest)
	}
}
