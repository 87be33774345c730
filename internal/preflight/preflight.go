package preflight

import (
	"context"
	"strings"

	"clipsort/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Move mode pulls files out of the source directory, which needs write
	// access there; copy mode only reads it.
	results = append(results, CheckSourceDir(cfg.Paths.SourceDir, cfg.Placement.Mode != "copy"))
	results = append(results, CheckWritableRoot("Sorted root", cfg.Paths.SortedRoot))
	results = append(results, CheckWritableRoot("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckDecisionLog(cfg))

	if cfg.Placement.Mode == "copy" {
		results = append(results, CheckFreeSpace(cfg))
	}
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) != "" {
		results = append(results, CheckNtfy(ctx, cfg.Notifications.NtfyTopic))
	}

	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
