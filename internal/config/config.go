package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	SourceDir  string `toml:"source_dir"`
	SortedRoot string `toml:"sorted_root"`
	LogDir     string `toml:"log_dir"`
}

// Placement controls how labeled clips land in their destinations.
type Placement struct {
	Mode string `toml:"mode"`
}

// DecisionLog configures the append-only placement record.
type DecisionLog struct {
	Path        string `toml:"path"`
	CorruptRows string `toml:"corrupt_rows"`
}

// Scan controls which files the source directory listing picks up.
type Scan struct {
	Extensions []string `toml:"extensions"`
}

// Player configures the external playback process.
type Player struct {
	Enabled     bool     `toml:"enabled"`
	Binary      string   `toml:"binary"`
	SeekSeconds float64  `toml:"seek_seconds"`
	ExtraArgs   []string `toml:"extra_args"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	SessionDone    bool   `toml:"session_done"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Label declares one hotkey rule. Dest is joined to sorted_root unless it is
// absolute; an empty name falls back to a title-cased dest.
type Label struct {
	Key  string `toml:"key"`
	Name string `toml:"name"`
	Dest string `toml:"dest"`
}

// Config encapsulates all configuration values for clipsort.
//
// Configuration sections by subsystem:
//   - Paths: source directory, sorted root, and log directory
//   - Placement: move versus copy behavior
//   - DecisionLog: CSV location and corrupt-row policy
//   - Scan: clip extension filter
//   - Player: external playback binary and seek step
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
//   - Labels: ordered hotkey rules
type Config struct {
	Paths         Paths         `toml:"paths"`
	Placement     Placement     `toml:"placement"`
	DecisionLog   DecisionLog   `toml:"decision_log"`
	Scan          Scan          `toml:"scan"`
	Player        Player        `toml:"player"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
	Labels        []Label       `toml:"labels"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipsort/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipsort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a labeling session writes to.
// The source directory is never created here; a missing source is a
// configuration problem that preflight reports instead of masking.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	if dir := filepath.Dir(c.DecisionLog.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.SortedRoot) != "" {
		// Best-effort: the sorted tree may sit on storage that is offline
		// at load time.
		_ = os.MkdirAll(c.Paths.SortedRoot, 0o755)
	}
	return nil
}

// PlayerBinary returns the playback executable name.
func (c *Config) PlayerBinary() string {
	if bin := strings.TrimSpace(c.Player.Binary); bin != "" {
		return bin
	}
	return defaultPlayerBinary
}

// FFprobeBinary returns the ffprobe executable name used for clip inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
