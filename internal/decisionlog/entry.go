package decisionlog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// header is the first row of every decision log file.
var header = []string{"timestamp", "key", "label", "original_path", "destination_path", "action"}

// Entry is a single recorded placement decision.
type Entry struct {
	Timestamp       time.Time
	Key             string
	Label           string
	OriginalPath    string
	DestinationPath string
	Action          string
}

// CorruptRowPolicy selects how Load reacts to rows it cannot parse.
type CorruptRowPolicy string

const (
	// CorruptRowsSkip drops malformed rows with a warning and keeps loading.
	CorruptRowsSkip CorruptRowPolicy = "skip"
	// CorruptRowsAbort fails the load on the first malformed row.
	CorruptRowsAbort CorruptRowPolicy = "abort"
)

// ParsePolicy converts a configuration string into a CorruptRowPolicy.
func ParsePolicy(value string) (CorruptRowPolicy, error) {
	switch CorruptRowPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case CorruptRowsSkip:
		return CorruptRowsSkip, nil
	case CorruptRowsAbort:
		return CorruptRowsAbort, nil
	default:
		return "", fmt.Errorf("corrupt_rows must be %q or %q, got %q", CorruptRowsSkip, CorruptRowsAbort, value)
	}
}

// ResumeSet collects the original paths of entries, the set of clips a new
// session must not offer again.
func ResumeSet(entries []Entry) map[string]struct{} {
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		seen[entry.OriginalPath] = struct{}{}
	}
	return seen
}

func parseRecord(record []string) (Entry, error) {
	if len(record) != len(header) {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", len(header), len(record))
	}
	timestamp, err := time.Parse(time.RFC3339, strings.TrimSpace(record[0]))
	if err != nil {
		return Entry{}, fmt.Errorf("timestamp: %w", err)
	}
	entry := Entry{
		Timestamp:       timestamp,
		Key:             record[1],
		Label:           record[2],
		OriginalPath:    record[3],
		DestinationPath: record[4],
		Action:          strings.ToLower(strings.TrimSpace(record[5])),
	}
	if strings.TrimSpace(entry.OriginalPath) == "" {
		return Entry{}, errors.New("original_path is empty")
	}
	if strings.TrimSpace(entry.DestinationPath) == "" {
		return Entry{}, errors.New("destination_path is empty")
	}
	if entry.Action != "move" && entry.Action != "copy" {
		return Entry{}, fmt.Errorf("unknown action %q", record[5])
	}
	return entry, nil
}

func recordFromEntry(entry Entry) []string {
	return []string{
		entry.Timestamp.UTC().Format(time.RFC3339),
		entry.Key,
		entry.Label,
		entry.OriginalPath,
		entry.DestinationPath,
		entry.Action,
	}
}

func isHeader(record []string) bool {
	if len(record) != len(header) {
		return false
	}
	for i, field := range record {
		if strings.TrimSpace(field) != header[i] {
			return false
		}
	}
	return true
}
