package testsupport

import (
	"path/filepath"
	"testing"

	"tvmeta/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Catalog credentials are blank, so the result runs in cache-only mode unless
// WithCatalogToken is supplied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Cache.DBPath = filepath.Join(base, "cache", "metadata.db")
	cfgVal.Cache.LockPath = filepath.Join(base, "cache", "metadata.db.sweep.lock")
	cfgVal.Catalog.BaseURL = "http://127.0.0.1:0"
	cfgVal.Catalog.RequestsPerSecond = 0
	cfgVal.Metrics.Bind = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCatalogToken sets a static bearer token on the test config.
func WithCatalogToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.Token = token
	}
}

// WithCatalogURL points the test config at a fake catalog server.
func WithCatalogURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Catalog.BaseURL = url
	}
}

// WithStaleAfterHours overrides the freshness window.
func WithStaleAfterHours(hours int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.StaleAfterHours = hours
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Cache.DBPath))
}
