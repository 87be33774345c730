package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"clipsort/internal/config"
)

type pathsPayload struct {
	SourceDir  string `toml:"source_dir,omitempty"`
	SortedRoot string `toml:"sorted_root,omitempty"`
	LogDir     string `toml:"log_dir,omitempty"`
}

type labelPayload struct {
	Key  string `toml:"key"`
	Name string `toml:"name,omitempty"`
	Dest string `toml:"dest,omitempty"`
}

func writeConfigFile(t *testing.T, payload any) string {
	t.Helper()
	data, err := toml.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal config payload: %v", err)
	}
	path := filepath.Join(t.TempDir(), "clipsort.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config payload: %v", err)
	}
	return path
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if !filepath.IsAbs(cfg.Paths.SourceDir) {
		t.Fatalf("expected absolute source dir, got %q", cfg.Paths.SourceDir)
	}
	if filepath.Base(cfg.Paths.SourceDir) != "videos_to_label" {
		t.Fatalf("unexpected source dir: %q", cfg.Paths.SourceDir)
	}
	wantSorted := filepath.Join(filepath.Dir(cfg.Paths.SourceDir), "sorted")
	if cfg.Paths.SortedRoot != wantSorted {
		t.Fatalf("unexpected sorted root: got %q want %q", cfg.Paths.SortedRoot, wantSorted)
	}
	wantLogDir := filepath.Join(tempHome, ".local", "share", "clipsort", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if cfg.DecisionLog.Path != filepath.Join(wantLogDir, "decisions.csv") {
		t.Fatalf("unexpected decision log path: %q", cfg.DecisionLog.Path)
	}
	if cfg.Placement.Mode != "move" {
		t.Fatalf("expected default mode move, got %q", cfg.Placement.Mode)
	}
	if cfg.DecisionLog.CorruptRows != "skip" {
		t.Fatalf("expected corrupt_rows skip, got %q", cfg.DecisionLog.CorruptRows)
	}
	if len(cfg.Scan.Extensions) == 0 || cfg.Scan.Extensions[0] != ".mp4" {
		t.Fatalf("unexpected extensions: %v", cfg.Scan.Extensions)
	}
	if !cfg.Player.Enabled || cfg.PlayerBinary() != "mpv" {
		t.Fatalf("unexpected player defaults: enabled=%v binary=%q", cfg.Player.Enabled, cfg.PlayerBinary())
	}
	if cfg.Player.SeekSeconds != 5.0 {
		t.Fatalf("unexpected seek step: %v", cfg.Player.SeekSeconds)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if len(cfg.Labels) != 0 {
		t.Fatalf("expected no default labels, got %v", cfg.Labels)
	}
}

func TestLoadCustomPath(t *testing.T) {
	base := t.TempDir()
	type payload struct {
		Paths     pathsPayload `toml:"paths"`
		Placement struct {
			Mode string `toml:"mode"`
		} `toml:"placement"`
		Labels []labelPayload `toml:"labels"`
	}
	custom := payload{}
	custom.Paths.SourceDir = filepath.Join(base, "clips")
	custom.Paths.SortedRoot = filepath.Join(base, "out")
	custom.Paths.LogDir = filepath.Join(base, "logs")
	custom.Placement.Mode = "COPY"
	custom.Labels = []labelPayload{
		{Key: " 1 ", Name: "Not Sure", Dest: "Not Sure"},
		{Key: "g", Name: "Goal", Dest: "goals"},
	}

	configPath := writeConfigFile(t, custom)
	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.SourceDir != filepath.Join(base, "clips") {
		t.Fatalf("unexpected source dir: %q", cfg.Paths.SourceDir)
	}
	if cfg.Paths.SortedRoot != filepath.Join(base, "out") {
		t.Fatalf("unexpected sorted root: %q", cfg.Paths.SortedRoot)
	}
	if cfg.Placement.Mode != "copy" {
		t.Fatalf("expected mode normalized to copy, got %q", cfg.Placement.Mode)
	}
	if len(cfg.Labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(cfg.Labels))
	}
	if cfg.Labels[0].Key != "1" {
		t.Fatalf("expected trimmed label key, got %q", cfg.Labels[0].Key)
	}
	if cfg.DecisionLog.Path != filepath.Join(base, "logs", "decisions.csv") {
		t.Fatalf("unexpected decision log path: %q", cfg.DecisionLog.Path)
	}
}

func TestNtfyTopicEnvFallback(t *testing.T) {
	base := t.TempDir()
	type payload struct {
		Paths pathsPayload `toml:"paths"`
	}
	custom := payload{}
	custom.Paths.SourceDir = filepath.Join(base, "clips")
	custom.Paths.LogDir = filepath.Join(base, "logs")

	t.Setenv("CLIPSORT_NTFY_TOPIC", "https://ntfy.sh/clipsort-test")

	configPath := writeConfigFile(t, custom)
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/clipsort-test" {
		t.Fatalf("expected topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestNtfyTopicFileWinsOverEnv(t *testing.T) {
	base := t.TempDir()
	type payload struct {
		Paths         pathsPayload `toml:"paths"`
		Notifications struct {
			NtfyTopic string `toml:"ntfy_topic"`
		} `toml:"notifications"`
	}
	custom := payload{}
	custom.Paths.SourceDir = filepath.Join(base, "clips")
	custom.Paths.LogDir = filepath.Join(base, "logs")
	custom.Notifications.NtfyTopic = "https://ntfy.sh/from-file"

	t.Setenv("CLIPSORT_NTFY_TOPIC", "https://ntfy.sh/from-env")

	configPath := writeConfigFile(t, custom)
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/from-file" {
		t.Fatalf("expected topic from file, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestLoadRejectsInvalidEnums(t *testing.T) {
	base := t.TempDir()
	type payload struct {
		Paths     pathsPayload `toml:"paths"`
		Placement struct {
			Mode string `toml:"mode"`
		} `toml:"placement"`
		DecisionLog struct {
			CorruptRows string `toml:"corrupt_rows"`
		} `toml:"decision_log"`
	}

	custom := payload{}
	custom.Paths.SourceDir = filepath.Join(base, "clips")
	custom.Paths.LogDir = filepath.Join(base, "logs")
	custom.Placement.Mode = "archive"
	if _, _, _, err := config.Load(writeConfigFile(t, custom)); err == nil || !strings.Contains(err.Error(), "placement.mode") {
		t.Fatalf("expected placement.mode error, got %v", err)
	}

	custom = payload{}
	custom.Paths.SourceDir = filepath.Join(base, "clips")
	custom.Paths.LogDir = filepath.Join(base, "logs")
	custom.DecisionLog.CorruptRows = "ignore"
	if _, _, _, err := config.Load(writeConfigFile(t, custom)); err == nil || !strings.Contains(err.Error(), "decision_log.corrupt_rows") {
		t.Fatalf("expected corrupt_rows error, got %v", err)
	}
}

func TestScanExtensionsNormalized(t *testing.T) {
	base := t.TempDir()
	type payload struct {
		Paths pathsPayload `toml:"paths"`
		Scan  struct {
			Extensions []string `toml:"extensions"`
		} `toml:"scan"`
	}
	custom := payload{}
	custom.Paths.SourceDir = filepath.Join(base, "clips")
	custom.Paths.LogDir = filepath.Join(base, "logs")
	custom.Scan.Extensions = []string{"MP4", ".MOV", "mov", " "}

	cfg, _, _, err := config.Load(writeConfigFile(t, custom))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := []string{".mp4", ".mov"}
	if len(cfg.Scan.Extensions) != len(want) {
		t.Fatalf("unexpected extensions: %v", cfg.Scan.Extensions)
	}
	for i, ext := range want {
		if cfg.Scan.Extensions[i] != ext {
			t.Fatalf("extension %d = %q, want %q", i, cfg.Scan.Extensions[i], ext)
		}
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	type payload struct {
		Paths pathsPayload `toml:"paths"`
	}
	custom := payload{}
	custom.Paths.SourceDir = filepath.Join(base, "clips")
	custom.Paths.SortedRoot = filepath.Join(base, "sorted")
	custom.Paths.LogDir = filepath.Join(base, "logs")

	cfg, _, _, err := config.Load(writeConfigFile(t, custom))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.SortedRoot} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if _, err := os.Stat(cfg.Paths.SourceDir); !os.IsNotExist(err) {
		t.Fatalf("expected source dir untouched, stat err=%v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[[labels]]") {
		t.Fatalf("sample config missing label rules: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if len(cfg.Labels) == 0 {
		t.Fatal("expected sample labels to decode")
	}
	if cfg.Labels[0].Key != "1" || cfg.Labels[0].Name != "Not Sure" {
		t.Fatalf("unexpected first sample label: %+v", cfg.Labels[0])
	}
	if cfg.Placement.Mode != "move" {
		t.Fatalf("unexpected sample mode: %q", cfg.Placement.Mode)
	}
}
