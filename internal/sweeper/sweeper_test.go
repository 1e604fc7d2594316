package sweeper_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"tvmeta/internal/logging"
	"tvmeta/internal/metastore"
	"tvmeta/internal/sweeper"
)

type countingCleaner struct {
	mu     sync.Mutex
	calls  int
	maxAge []time.Duration
	err    error
}

func (c *countingCleaner) Cleanup(_ context.Context, maxAge time.Duration) (metastore.SweepResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.maxAge = append(c.maxAge, maxAge)
	return metastore.SweepResult{Series: 1}, c.err
}

func (c *countingCleaner) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestNewValidates(t *testing.T) {
	lock := filepath.Join(t.TempDir(), "sweep.lock")
	if _, err := sweeper.New(nil, lock, time.Minute, 0, logging.NewNop()); err == nil {
		t.Fatal("expected error for nil cleaner")
	}
	if _, err := sweeper.New(&countingCleaner{}, " ", time.Minute, 0, logging.NewNop()); err == nil {
		t.Fatal("expected error for empty lock path")
	}
	if _, err := sweeper.New(&countingCleaner{}, lock, 0, 0, logging.NewNop()); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

func TestRunOncePassesMaxAge(t *testing.T) {
	cleaner := &countingCleaner{}
	lock := filepath.Join(t.TempDir(), "nested", "sweep.lock")
	s, err := sweeper.New(cleaner, lock, time.Minute, 48*time.Hour, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, ran, err := s.RunOnce(context.Background())
	if err != nil || !ran {
		t.Fatalf("RunOnce: ran=%v err=%v", ran, err)
	}
	if result.Series != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if cleaner.maxAge[0] != 48*time.Hour {
		t.Fatalf("expected max age forwarded, got %v", cleaner.maxAge)
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	cleaner := &countingCleaner{}
	lockPath := filepath.Join(t.TempDir(), "sweep.lock")
	s, err := sweeper.New(cleaner, lockPath, time.Minute, 0, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	holder := flock.New(lockPath)
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold lock: ok=%v err=%v", ok, err)
	}

	_, ran, err := s.RunOnce(context.Background())
	if err != nil || ran {
		t.Fatalf("expected skipped sweep, ran=%v err=%v", ran, err)
	}
	if cleaner.count() != 0 {
		t.Fatal("cleaner must not run without the lock")
	}

	if err := holder.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, ran, err := s.RunOnce(context.Background()); err != nil || !ran {
		t.Fatalf("expected sweep after release, ran=%v err=%v", ran, err)
	}
}

func TestRunOnceReturnsCleanerError(t *testing.T) {
	boom := errors.New("disk full")
	s, err := sweeper.New(&countingCleaner{err: boom}, filepath.Join(t.TempDir(), "sweep.lock"), time.Minute, 0, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ran, err := s.RunOnce(context.Background()); !ran || !errors.Is(err, boom) {
		t.Fatalf("expected cleaner error, ran=%v err=%v", ran, err)
	}
}

func TestRunTicksUntilCancelled(t *testing.T) {
	cleaner := &countingCleaner{err: errors.New("transient")}
	s, err := sweeper.New(cleaner, filepath.Join(t.TempDir(), "sweep.lock"), 10*time.Millisecond, 0, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for cleaner.count() < 3 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("expected repeated sweeps, got %d", cleaner.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
