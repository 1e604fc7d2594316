package resolver

import (
	"fmt"
	"log/slog"

	"tvmeta/internal/catalog"
	"tvmeta/internal/config"
	"tvmeta/internal/logging"
	"tvmeta/internal/metastore"
	"tvmeta/internal/metrics"
)

// Open wires a store, a catalog client, and an engine from configuration.
// The returned close function releases the store.
func Open(cfg *config.Config, logger *slog.Logger, collector *metrics.Collector) (*Engine, func() error, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	store, err := metastore.Open(cfg.Cache.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open metadata store: %w", err)
	}

	client, err := catalog.New(
		cfg.Catalog.BaseURL,
		cfg.CatalogSettings(),
		catalog.WithTimeout(cfg.CatalogTimeout()),
		catalog.WithRateLimit(cfg.Catalog.RequestsPerSecond),
		catalog.WithLogger(logger),
		catalog.WithMetrics(collector),
	)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("create catalog client: %w", err)
	}
	source := catalog.WithRetry(client, cfg.Catalog.RetryAttempts, logger)

	engine, err := New(cfg, store, source, logger, WithMetrics(collector))
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	if !client.Authorized() {
		logging.WarnWithContext(engine.logger, "catalog credentials not configured", "degraded_mode",
			logging.String(logging.FieldErrorHint, "set catalog.token or catalog.api_key (or TVDB_API_KEY)"),
			logging.String(logging.FieldImpact, "lookups are served from the local cache only"),
		)
	}
	return engine, store.Close, nil
}
