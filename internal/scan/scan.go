// Package scan discovers candidate clips in the source directory.
//
// Scanning is deliberately shallow: only files directly inside the source
// directory count, and only those whose extension is configured. The queue
// for a session is the scan result minus everything the decision log has
// already recorded.
package scan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Clip is one candidate file found in the source directory.
type Clip struct {
	Path string
	Name string
	Size int64
}

// Dir lists the clips directly inside sourceDir whose lowercased extension
// appears in extensions. Results come back in filename order, which is the
// order a session presents them in. Subdirectories are never descended into.
func Dir(sourceDir string, extensions []string) ([]Clip, error) {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}

	clips := make([]Clip, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		path := filepath.Join(sourceDir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			// Vanished between ReadDir and Stat, or a dangling symlink.
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		clips = append(clips, Clip{Path: path, Name: entry.Name(), Size: info.Size()})
	}
	return clips, nil
}

// Pending filters out clips whose path the decision log has already seen,
// preserving scan order.
func Pending(clips []Clip, seen map[string]struct{}) []Clip {
	if len(seen) == 0 {
		return clips
	}
	pending := make([]Clip, 0, len(clips))
	for _, clip := range clips {
		if _, ok := seen[clip.Path]; ok {
			continue
		}
		pending = append(pending, clip)
	}
	return pending
}

// TotalSize sums the sizes of clips, used to judge free space before a
// copy-mode session.
func TotalSize(clips []Clip) int64 {
	var total int64
	for _, clip := range clips {
		total += clip.Size
	}
	return total
}
