package testsupport

import (
	"context"
	"testing"

	"tvmeta/internal/config"
	"tvmeta/internal/metastore"
)

// MustOpenStore opens a metastore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...metastore.Option) *metastore.Store {
	t.Helper()

	store, err := metastore.Open(cfg.Cache.DBPath, opts...)
	if err != nil {
		t.Fatalf("metastore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedSeries upserts a series for tests.
func SeedSeries(t testing.TB, store *metastore.Store, id int64, name string) *metastore.Series {
	t.Helper()

	series, err := store.UpsertSeries(context.Background(), metastore.Series{ID: id, Name: name})
	if err != nil {
		t.Fatalf("store.UpsertSeries: %v", err)
	}
	return series
}
