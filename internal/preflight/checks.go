package preflight

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"clipsort/internal/config"
	"clipsort/internal/decisionlog"
	"clipsort/internal/logging"
	"clipsort/internal/scan"
)

// CheckSourceDir verifies the clip source exists and the session can read
// it. With needWrite the directory must also allow removing entries.
func CheckSourceDir(path string, needWrite bool) Result {
	const name = "Source directory"

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}

	mode := uint32(unix.R_OK | unix.X_OK)
	detail := "read ok"
	if needWrite {
		mode |= unix.W_OK
		detail = "read/write ok"
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, detail)}
}

// CheckWritableRoot verifies a directory the tool creates on demand: either
// the path itself grants write access, or its nearest existing ancestor
// does.
func CheckWritableRoot(name, path string) Result {
	existing, err := nearestExisting(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	info, err := os.Stat(existing)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat %s: %v)", path, existing, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, existing)}
	}
	if err := unix.Access(existing, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s not writable: %v)", path, existing, err)}
	}
	if existing == path {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (write ok)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created under %s)", path, existing)}
}

// CheckDecisionLog verifies the log parses under the configured corrupt-row
// policy, so a session does not discover an unreadable log after the
// operator sat down to sort.
func CheckDecisionLog(cfg *config.Config) Result {
	const name = "Decision log"

	policy, err := decisionlog.ParsePolicy(cfg.DecisionLog.CorruptRows)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	path := cfg.DecisionLog.Path
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not created yet)", path)}
	}
	entries, err := decisionlog.New(path, policy, logging.NewNop()).Load()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d decisions recorded)", path, len(entries))}
}

// CheckFreeSpace compares the space left under the sorted root against the
// bytes still pending in the source directory. Only copy mode doubles disk
// usage, so only copy mode runs this check.
func CheckFreeSpace(cfg *config.Config) Result {
	const name = "Free space"

	clips, err := scan.Dir(cfg.Paths.SourceDir, cfg.Scan.Extensions)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("scan source: %v", err)}
	}
	policy, err := decisionlog.ParsePolicy(cfg.DecisionLog.CorruptRows)
	if err != nil {
		policy = decisionlog.CorruptRowsSkip
	}
	entries, err := decisionlog.New(cfg.DecisionLog.Path, policy, logging.NewNop()).Load()
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("read decision log: %v", err)}
	}
	pending := scan.Pending(clips, decisionlog.ResumeSet(entries))
	required := uint64(scan.TotalSize(pending))

	target, err := nearestExisting(cfg.Paths.SortedRoot)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("resolve sorted root: %v", err)}
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(target, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("statfs %s: %v", target, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)

	detail := fmt.Sprintf("%s free, %s pending across %d clips",
		humanize.IBytes(free), humanize.IBytes(required), len(pending))
	if free < required {
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckNtfy verifies the configured ntfy topic answers HTTP.
func CheckNtfy(ctx context.Context, topic string) Result {
	const name = "Ntfy topic"

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Result{Name: name, Detail: "missing topic url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodHead, topic, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

func nearestExisting(path string) (string, error) {
	current := filepath.Clean(path)
	for {
		if _, err := os.Stat(current); err == nil {
			return current, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return current, nil
		}
		current = parent
	}
}
