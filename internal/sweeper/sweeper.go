package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"tvmeta/internal/logging"
	"tvmeta/internal/metastore"
)

// Cleaner deletes cached records older than maxAge.
type Cleaner interface {
	Cleanup(ctx context.Context, maxAge time.Duration) (metastore.SweepResult, error)
}

// Sweeper runs Cleaner on a fixed interval under a file lock.
type Sweeper struct {
	cleaner  Cleaner
	lockPath string
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger
}

// New constructs a sweeper. A non-positive maxAge lets the cleaner apply its
// own retention window.
func New(cleaner Cleaner, lockPath string, interval, maxAge time.Duration, logger *slog.Logger) (*Sweeper, error) {
	if cleaner == nil {
		return nil, errors.New("sweeper requires a cleaner")
	}
	lockPath = strings.TrimSpace(lockPath)
	if lockPath == "" {
		return nil, errors.New("sweeper requires a lock path")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	return &Sweeper{
		cleaner:  cleaner,
		lockPath: lockPath,
		interval: interval,
		maxAge:   maxAge,
		logger:   logging.NewComponentLogger(logger, "sweeper"),
	}, nil
}

// LockPath returns the advisory lock file location.
func (s *Sweeper) LockPath() string {
	return s.lockPath
}

// RunOnce performs a single sweep. ran is false when another process holds
// the lock.
func (s *Sweeper) RunOnce(ctx context.Context) (result metastore.SweepResult, ran bool, err error) {
	if dir := filepath.Dir(s.lockPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return result, false, fmt.Errorf("ensure lock directory: %w", err)
		}
	}

	lock := flock.New(s.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return result, false, fmt.Errorf("acquire sweep lock: %w", err)
	}
	if !ok {
		s.logger.Debug("sweep skipped; lock held elsewhere", logging.String("lock", s.lockPath))
		return result, false, nil
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			s.logger.Warn("failed to release sweep lock", logging.Error(unlockErr))
		}
	}()

	result, err = s.cleaner.Cleanup(ctx, s.maxAge)
	return result, true, err
}

// Run sweeps immediately and then on every interval until ctx is done.
// Sweep failures are logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("sweeper started",
		logging.Duration("interval", s.interval),
		logging.String("lock", s.lockPath),
	)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.tick(ctx)
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.WarnWithContext(s.logger, "sweep failed", "sweep_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale rows stay until the next tick"),
		)
	}
}
