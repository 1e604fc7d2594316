package catalog

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"tvmeta/internal/services"
)

type flakySource struct {
	failures []error
	calls    int
}

func (f *flakySource) Authorized() bool { return true }

func (f *flakySource) next() error {
	f.calls++
	if f.calls <= len(f.failures) {
		return f.failures[f.calls-1]
	}
	return nil
}

func (f *flakySource) SearchSeries(context.Context, string) ([]SeriesCandidate, error) {
	if err := f.next(); err != nil {
		return nil, err
	}
	return []SeriesCandidate{{ID: 1, Name: "Lost"}}, nil
}

func (f *flakySource) SeriesDetail(context.Context, int64) (*SeriesDetail, error) {
	if err := f.next(); err != nil {
		return nil, err
	}
	return &SeriesDetail{Series: Series{ID: 1, Name: "Lost"}}, nil
}

func (f *flakySource) SeasonDetail(context.Context, int64) (*SeasonDetail, error) {
	return nil, f.next()
}

func (f *flakySource) EpisodeDetail(context.Context, int64) (*EpisodeDetail, error) {
	return nil, f.next()
}

func fastRetry(src Source, attempts int) Source {
	wrapped := WithRetry(src, attempts, nil)
	if r, ok := wrapped.(*retrying); ok {
		r.delay = time.Millisecond
	}
	return wrapped
}

func TestWithRetryRecoversFromTemporaryFailures(t *testing.T) {
	src := &flakySource{failures: []error{
		&StatusError{Endpoint: "search", StatusCode: http.StatusServiceUnavailable},
		transportError("search", errors.New("connection reset")),
	}}
	results, err := fastRetry(src, 3).SearchSeries(context.Background(), "Lost")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(results) != 1 || src.calls != 3 {
		t.Fatalf("unexpected results %v after %d calls", results, src.calls)
	}
}

func TestWithRetrySkipsPermanentFailures(t *testing.T) {
	src := &flakySource{failures: []error{
		&StatusError{Endpoint: "series", StatusCode: http.StatusNotFound},
	}}
	_, err := fastRetry(src, 3).SeriesDetail(context.Background(), 1)
	if !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if src.calls != 1 {
		t.Fatalf("expected a single call, got %d", src.calls)
	}
}

func TestWithRetryDoesNotRetryMalformedData(t *testing.T) {
	src := &flakySource{failures: []error{malformed("series detail", "bad", nil)}}
	_, err := fastRetry(src, 4).SeriesDetail(context.Background(), 1)
	if !errors.Is(err, services.ErrMalformedRemoteData) || src.calls != 1 {
		t.Fatalf("expected one malformed failure, got %v after %d calls", err, src.calls)
	}
}

func TestWithRetryBelowTwoAttemptsIsIdentity(t *testing.T) {
	src := &flakySource{}
	if WithRetry(src, 1, nil) != Source(src) {
		t.Fatal("expected source returned unchanged")
	}
}
