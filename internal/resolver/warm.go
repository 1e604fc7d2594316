package resolver

import (
	"context"
	"slices"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"tvmeta/internal/logging"
)

// WarmResult reports the outcome of pre-resolving one name.
type WarmResult struct {
	Name  string       `json:"name"`
	Match *SeriesMatch `json:"match,omitempty"`
	Err   error        `json:"-"`
	Error string       `json:"error,omitempty"`
}

// Warm resolves names concurrently with at most concurrency lookups in
// flight. Results follow the input order; blank names are skipped.
func (e *Engine) Warm(ctx context.Context, names []string, concurrency int) []WarmResult {
	if concurrency < 1 {
		concurrency = 1
	}

	type indexed struct {
		index  int
		result WarmResult
	}

	p := pool.NewWithResults[indexed]().WithMaxGoroutines(concurrency)
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p.Go(func() indexed {
			res := WarmResult{Name: name}
			if err := ctx.Err(); err != nil {
				res.Err = err
			} else {
				res.Match, res.Err = e.ResolveSeries(ctx, name)
			}
			if res.Err != nil {
				res.Error = res.Err.Error()
			}
			return indexed{index: i, result: res}
		})
	}
	collected := p.Wait()
	slices.SortFunc(collected, func(a, b indexed) int { return a.index - b.index })

	results := make([]WarmResult, 0, len(collected))
	resolved := 0
	for _, item := range collected {
		if item.result.Match != nil {
			resolved++
		}
		results = append(results, item.result)
	}
	e.loggerFor(ctx).Info("warm complete",
		logging.Int("requested", len(results)),
		logging.Int("resolved", resolved),
		logging.Int("concurrency", concurrency),
	)
	return results
}
