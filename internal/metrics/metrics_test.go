package metrics_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"tvmeta/internal/metastore"
	"tvmeta/internal/metrics"
)

func TestNilCollectorIsNoop(t *testing.T) {
	var c *metrics.Collector
	c.ObserveResolution("resolve_series", "cache")
	c.ObserveRemote("search", 200, time.Millisecond)
	c.ObserveSweep(metastore.SweepResult{Series: 1})
	if c.Registry() != nil {
		t.Fatal("expected nil registry")
	}
}

func TestCollectorCountsResolutionsAndSweeps(t *testing.T) {
	c := metrics.New()
	c.ObserveResolution("resolve_series", "cache")
	c.ObserveResolution("resolve_series", "cache")
	c.ObserveSweep(metastore.SweepResult{Artworks: 3, Series: 1})

	expected := `
# HELP tvmeta_cache_swept_rows_total Rows removed by staleness sweeps by entity
# TYPE tvmeta_cache_swept_rows_total counter
tvmeta_cache_swept_rows_total{entity="artwork"} 3
tvmeta_cache_swept_rows_total{entity="episode"} 0
tvmeta_cache_swept_rows_total{entity="season"} 0
tvmeta_cache_swept_rows_total{entity="series"} 1
`
	if err := testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "tvmeta_cache_swept_rows_total"); err != nil {
		t.Fatalf("unexpected sweep metrics: %v", err)
	}
	if got := testutil.CollectAndCount(c.Registry(), "tvmeta_resolver_resolutions_total"); got != 1 {
		t.Fatalf("expected one resolution series, got %d", got)
	}
}

func TestHandlerServesRemoteMetrics(t *testing.T) {
	c := metrics.New()
	c.ObserveRemote("search", 503, 20*time.Millisecond)
	c.ObserveRemote("search", 0, time.Second)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`tvmeta_catalog_requests_total{endpoint="search",status="5xx"} 1`,
		`tvmeta_catalog_requests_total{endpoint="search",status="error"} 1`,
		`tvmeta_catalog_request_duration_seconds_count{endpoint="search"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{0: "error", 200: "2xx", 404: "4xx", 429: "4xx", 503: "5xx"}
	for status, want := range cases {
		if got := metrics.StatusClass(status); got != want {
			t.Fatalf("StatusClass(%d) = %q, want %q", status, got, want)
		}
	}
}
