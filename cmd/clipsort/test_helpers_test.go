package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipsort/internal/config"
	"clipsort/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

// setupCLITestEnv builds a temp-dir config and the matching TOML file the
// CLI loads through --config.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, args, configPath, "")
}

func runCLIWithInput(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	var sb strings.Builder
	fmt.Fprintf(&sb, "[paths]\nsource_dir = %q\nsorted_root = %q\nlog_dir = %q\n\n",
		cfg.Paths.SourceDir, cfg.Paths.SortedRoot, cfg.Paths.LogDir)
	fmt.Fprintf(&sb, "[placement]\nmode = %q\n\n", cfg.Placement.Mode)
	fmt.Fprintf(&sb, "[decision_log]\npath = %q\n\n", cfg.DecisionLog.Path)
	fmt.Fprintf(&sb, "[player]\nenabled = %v\n\n", cfg.Player.Enabled)
	if cfg.Notifications.NtfyTopic != "" {
		fmt.Fprintf(&sb, "[notifications]\nntfy_topic = %q\n\n", cfg.Notifications.NtfyTopic)
	}
	for _, label := range cfg.Labels {
		fmt.Fprintf(&sb, "[[labels]]\nkey = %q\nname = %q\ndest = %q\n\n",
			label.Key, label.Name, label.Dest)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q to not contain %q", output, substr)
	}
}
