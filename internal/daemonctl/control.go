package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"tvmeta/internal/config"
)

const (
	lockSuffix = ".daemon.lock"
	pidName    = "tvmetad.pid"
	pollEvery  = 50 * time.Millisecond
)

// ErrDaemonNotRunning indicates no tvmetad holds the daemon lock.
var ErrDaemonNotRunning = errors.New("daemon not running")

// LockPath returns the single-instance lock file for cfg's database.
func LockPath(cfg *config.Config) string {
	return cfg.Cache.DBPath + lockSuffix
}

// PIDPath returns the pid file written by a running tvmetad.
func PIDPath(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(cfg.Cache.DBPath), pidName)
}

// ProcessInfo probes the daemon lock and reports whether a daemon is running
// and its PID when the pid file is readable.
func ProcessInfo(cfg *config.Config) (bool, int, error) {
	if cfg == nil {
		return false, 0, errors.New("config is required")
	}
	held, err := lockHeld(LockPath(cfg))
	if err != nil || !held {
		return false, 0, err
	}
	pid, err := readPID(PIDPath(cfg))
	if err != nil {
		return true, 0, err
	}
	return true, pid, nil
}

// StopResult captures daemon stop/termination outcome.
type StopResult struct {
	PID        int  `json:"pid"`
	ForcedKill bool `json:"forced_kill"`
}

// StopAndTerminate sends SIGTERM to the daemon and force-kills it if the lock
// is still held after gracePeriod.
func StopAndTerminate(cfg *config.Config, gracePeriod time.Duration) (StopResult, error) {
	running, pid, err := ProcessInfo(cfg)
	if err != nil {
		return StopResult{}, err
	}
	if !running {
		return StopResult{}, ErrDaemonNotRunning
	}
	if pid <= 0 {
		return StopResult{}, fmt.Errorf("unable to determine daemon pid (pid file: %s)", PIDPath(cfg))
	}
	if pid == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return StopResult{}, fmt.Errorf("locate daemon process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return StopResult{}, fmt.Errorf("signal daemon process %d: %w", pid, err)
	}

	result := StopResult{PID: pid}
	if waitForRelease(LockPath(cfg), gracePeriod) {
		return result, nil
	}
	if err := proc.Kill(); err != nil {
		return result, fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	result.ForcedKill = true
	if err := os.Remove(PIDPath(cfg)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return result, fmt.Errorf("remove pid file %q: %w", PIDPath(cfg), err)
	}
	return result, nil
}

func lockHeld(path string) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	probe := flock.New(path)
	ok, err := probe.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe daemon lock: %w", err)
	}
	if ok {
		_ = probe.Unlock()
		return false, nil
	}
	return true, nil
}

func waitForRelease(lockPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		held, err := lockHeld(lockPath)
		if err == nil && !held {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollEvery)
	}
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read daemon pid file %q: %w", path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("daemon pid file %q is malformed", path)
	}
	return pid, nil
}
