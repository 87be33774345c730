package decisionlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"clipsort/internal/logging"
)

var (
	// ErrCorruptLog marks a decision log the configured policy refuses to read.
	ErrCorruptLog = errors.New("corrupt decision log")
	// ErrEmptyLog is returned when an undo finds no recorded decision.
	ErrEmptyLog = errors.New("decision log is empty")
	// ErrLocked is returned when another session holds the decision log lock.
	ErrLocked = errors.New("decision log is locked by another process")
)

// Log reads and writes the append-only CSV decision record at a fixed path.
type Log struct {
	path   string
	policy CorruptRowPolicy
	logger *slog.Logger
	lock   *flock.Flock
}

// New prepares a Log for the file at path. The file itself is created lazily
// on the first Append, so inspecting a fresh setup never touches disk.
func New(path string, policy CorruptRowPolicy, logger *slog.Logger) *Log {
	return &Log{
		path:   path,
		policy: policy,
		logger: logging.NewComponentLogger(logger, "decisionlog"),
	}
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

// Lock takes the advisory session lock next to the log file. Callers that
// mutate the log (run, undo) must hold it; read-only inspection may not.
func (l *Log) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("ensure decision log directory: %w", err)
	}
	lock := flock.New(l.path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire decision log lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}
	l.lock = lock
	return nil
}

// Unlock releases the advisory lock if held.
func (l *Log) Unlock() error {
	if l.lock == nil {
		return nil
	}
	lock := l.lock
	l.lock = nil
	return lock.Unlock()
}

// Load reads every recorded decision in file order. A missing file is an
// empty log. Malformed rows are skipped with a warning or abort the load,
// depending on the configured policy; a damaged header always aborts.
func (l *Log) Load() ([]Entry, error) {
	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open decision log: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable header: %w", ErrCorruptLog, err)
	}
	if !isHeader(first) {
		return nil, fmt.Errorf("%w: unexpected header %q", ErrCorruptLog, strings.Join(first, ","))
	}

	var entries []Entry
	row := 1
	for {
		row++
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if policyErr := l.corruptRow(row, err); policyErr != nil {
				return nil, policyErr
			}
			continue
		}
		entry, err := parseRecord(record)
		if err != nil {
			if policyErr := l.corruptRow(row, err); policyErr != nil {
				return nil, policyErr
			}
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Append records one decision and forces it to disk before returning, so a
// crash immediately afterwards cannot lose an already-moved clip.
func (l *Log) Append(entry Entry) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("ensure decision log directory: %w", err)
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open decision log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat decision log: %w", err)
	}

	writer := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("write decision log header: %w", err)
		}
	}
	if err := writer.Write(recordFromEntry(entry)); err != nil {
		return fmt.Errorf("write decision log row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush decision log: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync decision log: %w", err)
	}
	return file.Close()
}

// PopLast removes the most recent decision and returns it. The remaining
// rows are rewritten through a temp file and rename, so the log on disk is
// either the old content or the new content, never a truncated mix. Rows the
// load policy skipped are preserved byte for byte.
func (l *Log) PopLast() (Entry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Entry{}, ErrEmptyLog
		}
		return Entry{}, fmt.Errorf("read decision log: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if end == 0 {
		return Entry{}, ErrEmptyLog
	}

	headerRecord, err := csv.NewReader(strings.NewReader(lines[0])).Read()
	if err != nil || !isHeader(headerRecord) {
		return Entry{}, fmt.Errorf("%w: unexpected header %q", ErrCorruptLog, lines[0])
	}
	if end == 1 {
		return Entry{}, ErrEmptyLog
	}

	record, err := csv.NewReader(strings.NewReader(lines[end-1])).Read()
	if err != nil {
		return Entry{}, fmt.Errorf("%w: last row unreadable: %w", ErrCorruptLog, err)
	}
	entry, err := parseRecord(record)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: last row: %w", ErrCorruptLog, err)
	}

	remaining := strings.Join(lines[:end-1], "\n") + "\n"
	if err := l.rewrite([]byte(remaining)); err != nil {
		return Entry{}, err
	}
	l.logger.Debug("decision removed from log",
		logging.String(logging.FieldClip, entry.OriginalPath),
		logging.String(logging.FieldDestination, entry.DestinationPath),
	)
	return entry, nil
}

func (l *Log) corruptRow(row int, cause error) error {
	if l.policy == CorruptRowsAbort {
		return fmt.Errorf("%w: row %d: %w", ErrCorruptLog, row, cause)
	}
	l.logger.Warn("skipping malformed decision log row",
		logging.Int("row", row),
		logging.Error(cause),
		logging.String(logging.FieldErrorHint, "repair or archive the decision log to silence this warning"),
	)
	return nil
}

func (l *Log) rewrite(content []byte) error {
	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".decisions-*.csv")
	if err != nil {
		return fmt.Errorf("create decision log temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write decision log temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync decision log temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close decision log temp file: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace decision log: %w", err)
	}
	return nil
}
