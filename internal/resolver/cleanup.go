package resolver

import (
	"context"
	"time"

	"tvmeta/internal/logging"
	"tvmeta/internal/metastore"
	"tvmeta/internal/services"
)

// Cleanup removes cached records older than maxAge. A non-positive maxAge
// uses the configured retention window.
func (e *Engine) Cleanup(ctx context.Context, maxAge time.Duration) (metastore.SweepResult, error) {
	ctx = services.WithOperation(ctx, opCleanup)
	if maxAge <= 0 {
		maxAge = e.retention
	}
	start := time.Now()
	result, err := e.store.SweepOlderThan(ctx, maxAge)
	if err != nil {
		e.observe(opCleanup, "error")
		logging.ErrorWithContext(e.loggerFor(ctx), "cache sweep failed", "cache_sweep_failed",
			logging.Duration("max_age", maxAge),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the database file; the next sweep will retry"),
		)
		return result, err
	}
	e.observe(opCleanup, "ok")
	e.metrics.ObserveSweep(result)
	e.loggerFor(ctx).Info("cache sweep complete",
		logging.Duration("max_age", maxAge),
		logging.Int64("artworks", result.Artworks),
		logging.Int64("episodes", result.Episodes),
		logging.Int64("seasons", result.Seasons),
		logging.Int64("series", result.Series),
		logging.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}
