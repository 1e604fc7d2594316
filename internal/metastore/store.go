package metastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tvmeta/internal/services"
)

// Store persists catalog records in SQLite. All writes are upserts keyed by
// catalog external ID, so concurrent writers converge on the latest payload.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp and age records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open initializes or connects to the metadata database and applies migrations.
func Open(path string, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "metastore", "open", "database path is empty", nil)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure database directory: %w", err)
		}
	}

	// Pragmas ride on the DSN so every pooled connection gets them.
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect sqlite db: %w", err)
	}

	store := &Store{db: db, path: path, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Now returns the store clock reading in UTC.
func (s *Store) Now() time.Time {
	return s.now().UTC()
}

// Stale reports whether a record synced at syncedAt is older than maxAge.
// A zero timestamp is always stale.
func (s *Store) Stale(syncedAt time.Time, maxAge time.Duration) bool {
	if syncedAt.IsZero() {
		return true
	}
	return s.Now().Sub(syncedAt) > maxAge
}

func persistErr(operation string, err error) error {
	return services.Wrap(services.ErrPersistence, "metastore", operation, "", err)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
