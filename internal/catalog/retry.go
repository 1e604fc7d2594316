package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"tvmeta/internal/logging"
)

const retryDelay = 250 * time.Millisecond

type retrying struct {
	next     Source
	attempts uint
	delay    time.Duration
	logger   *slog.Logger
}

// WithRetry wraps src so that transport failures, 429 and 5xx responses are
// retried with exponential backoff. Attempts below two return src unchanged.
func WithRetry(src Source, attempts int, logger *slog.Logger) Source {
	if src == nil || attempts < 2 {
		return src
	}
	return &retrying{
		next:     src,
		attempts: uint(attempts),
		delay:    retryDelay,
		logger:   logging.NewComponentLogger(logger, "catalog-retry"),
	}
}

// Retryable reports whether a catalog error is worth another attempt.
// Per-request timeouts are retryable; caller cancellation is not.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}
	return errors.Is(err, ErrTransport)
}

func (r *retrying) Authorized() bool {
	return r.next.Authorized()
}

func (r *retrying) SearchSeries(ctx context.Context, name string) ([]SeriesCandidate, error) {
	return retry.DoWithData(func() ([]SeriesCandidate, error) {
		return r.next.SearchSeries(ctx, name)
	}, r.options(ctx, "search")...)
}

func (r *retrying) SeriesDetail(ctx context.Context, id int64) (*SeriesDetail, error) {
	return retry.DoWithData(func() (*SeriesDetail, error) {
		return r.next.SeriesDetail(ctx, id)
	}, r.options(ctx, "series")...)
}

func (r *retrying) SeasonDetail(ctx context.Context, id int64) (*SeasonDetail, error) {
	return retry.DoWithData(func() (*SeasonDetail, error) {
		return r.next.SeasonDetail(ctx, id)
	}, r.options(ctx, "season")...)
}

func (r *retrying) EpisodeDetail(ctx context.Context, id int64) (*EpisodeDetail, error) {
	return retry.DoWithData(func() (*EpisodeDetail, error) {
		return r.next.EpisodeDetail(ctx, id)
	}, r.options(ctx, "episode")...)
}

func (r *retrying) options(ctx context.Context, endpoint string) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(Retryable),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Debug("retrying catalog request",
				logging.String("endpoint", endpoint),
				logging.Int("attempt", int(n)+1),
				logging.Error(err),
			)
		}),
	}
}
