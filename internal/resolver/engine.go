package resolver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"tvmeta/internal/artwork"
	"tvmeta/internal/catalog"
	"tvmeta/internal/config"
	"tvmeta/internal/logging"
	"tvmeta/internal/metastore"
	"tvmeta/internal/metrics"
	"tvmeta/internal/services"
	"tvmeta/internal/textmatch"
)

// Source labels where a resolved series came from.
type Source string

const (
	SourceCache    Source = "cache"
	SourceRemote   Source = "remote"
	SourceDegraded Source = "degraded"
)

const (
	opResolveSeries  = "resolve_series"
	opResolveEpisode = "resolve_episode"
	opResolveArtwork = "resolve_artwork"
	opCleanup        = "cleanup"
)

// SeriesMatch is a resolved series with the score that selected it.
type SeriesMatch struct {
	Series *metastore.Series `json:"series"`
	Score  float64           `json:"score"`
	Source Source            `json:"source"`
}

// Engine resolves series, episodes, and artwork cache-first.
type Engine struct {
	store   *metastore.Store
	source  catalog.Source
	logger  *slog.Logger
	metrics *metrics.Collector

	staleAfter      time.Duration
	retention       time.Duration
	acceptThreshold float64
	gaps            textmatch.Thresholds
	artworkPrefs    artwork.Preferences

	flight    singleflight.Group
	flightMu  sync.Mutex
	inflights map[string]*inflight
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records resolution outcomes.
func WithMetrics(collector *metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = collector
	}
}

// New builds an engine from configuration. A nil source behaves like a
// catalog without credentials.
func New(cfg *config.Config, store *metastore.Store, source catalog.Source, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "resolver", "new", "config required", nil)
	}
	if store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "resolver", "new", "metadata store required", nil)
	}
	e := &Engine{
		store:           store,
		source:          source,
		logger:          logging.NewComponentLogger(logger, "resolver"),
		staleAfter:      cfg.StaleAfter(),
		retention:       cfg.Retention(),
		acceptThreshold: cfg.Matching.CacheAcceptThreshold,
		gaps: textmatch.Thresholds{
			Minor:       cfg.Matching.MinorGap,
			Significant: cfg.Matching.SignificantGap,
			Major:       cfg.Matching.MajorGap,
		},
		artworkPrefs: artwork.Preferences{
			Language: cfg.Catalog.Language,
			BaseURL:  cfg.Catalog.ArtworkBaseURL,
		},
		inflights: map[string]*inflight{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Store returns the backing metadata store.
func (e *Engine) Store() *metastore.Store {
	return e.store
}

func (e *Engine) authorized() bool {
	return e.source != nil && e.source.Authorized()
}

// fresh reports whether a record synced at t can be served without a remote
// refresh. Without credentials every cached record counts as fresh.
func (e *Engine) fresh(t time.Time) bool {
	if !e.authorized() {
		return true
	}
	return !e.store.Stale(t, e.staleAfter)
}

func (e *Engine) observe(operation, outcome string) {
	e.metrics.ObserveResolution(operation, outcome)
}

func (e *Engine) loggerFor(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, e.logger)
}

func (e *Engine) warnCacheRead(ctx context.Context, what string, err error) {
	logging.WarnWithContext(e.loggerFor(ctx), "cache read failed", "cache_read_failed",
		logging.String("target", what),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the database file and disk space"),
		logging.String(logging.FieldImpact, "falling back to the remote catalog"),
	)
}

func (e *Engine) warnWriteBack(ctx context.Context, what string, err error) {
	logging.WarnWithContext(e.loggerFor(ctx), "cache write-back failed", "cache_write_failed",
		logging.String("target", what),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the database file and disk space"),
		logging.String(logging.FieldImpact, "result returned but not cached; next lookup hits the catalog"),
	)
}

func (e *Engine) warnRemote(ctx context.Context, what string, err error) {
	logging.WarnWithContext(e.loggerFor(ctx), "catalog request failed", "remote_fallback",
		logging.String("target", what),
		logging.String("error_kind", services.Kind(err)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check catalog credentials and connectivity"),
		logging.String(logging.FieldImpact, "serving cached data"),
	)
}

func (e *Engine) logDecision(ctx context.Context, msg, decisionType, result, reason string, attrs ...logging.Attr) {
	all := append(logging.DecisionAttrs(decisionType, result, reason), attrs...)
	e.loggerFor(ctx).Info(msg, logging.Args(all...)...)
}
