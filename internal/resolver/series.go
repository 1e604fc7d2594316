package resolver

import (
	"context"
	"strings"

	"tvmeta/internal/catalog"
	"tvmeta/internal/logging"
	"tvmeta/internal/metastore"
	"tvmeta/internal/services"
	"tvmeta/internal/textmatch"
)

// ResolveSeries finds the best series for name. Identical concurrent queries
// share one resolution. A nil match with a nil error means not found.
func (e *Engine) ResolveSeries(ctx context.Context, name string) (*SeriesMatch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	ctx = services.WithOperation(ctx, opResolveSeries)
	key := strings.Join(strings.Fields(strings.ToLower(name)), " ")

	flightCtx := e.joinFlight(ctx, key)
	defer e.leaveFlight(key)

	ch := e.flight.DoChan(key, func() (any, error) {
		return e.resolveSeries(flightCtx, name)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			e.observe(opResolveSeries, "error")
			return nil, res.Err
		}
		match, _ := res.Val.(*SeriesMatch)
		if match == nil {
			e.observe(opResolveSeries, "not_found")
			return nil, nil
		}
		e.observe(opResolveSeries, string(match.Source))
		clone := *match
		return &clone, nil
	}
}

func (e *Engine) resolveSeries(ctx context.Context, name string) (*SeriesMatch, error) {
	logger := e.loggerFor(ctx)

	var cacheErr error
	cached, err := e.store.GetAllSeriesLike(ctx, name)
	if err != nil {
		cacheErr = err
		e.warnCacheRead(ctx, "series candidates", err)
	}
	best, bestScore := bestCachedSeries(name, cached)
	if best != nil && bestScore >= e.acceptThreshold {
		logger.Debug("series cache hit",
			logging.String("query", name),
			logging.Int64(logging.FieldSeriesID, best.ID),
			logging.Float64("score", bestScore),
		)
		return &SeriesMatch{Series: best, Score: bestScore, Source: SourceCache}, nil
	}

	if !e.authorized() {
		logger.Debug("catalog not configured; using cache only", logging.String("query", name))
		return degradedSeries(best, bestScore, cacheErr)
	}

	results, err := e.source.SearchSeries(ctx, name)
	if err != nil {
		e.warnRemote(ctx, "series search", err)
		return degradedSeries(best, bestScore, cacheErr)
	}

	names := make([]string, len(results))
	for i, result := range results {
		names[i] = result.Name
	}
	idx, remoteScore := textmatch.Best(name, names)
	gap := e.gaps.Classify(remoteScore, bestScore)

	if idx < 0 || bestScore >= remoteScore {
		e.logDecision(ctx, "series source decision", "series_source", "cache", "cache score not beaten by remote",
			logging.String("query", name),
			logging.Float64("cache_score", bestScore),
			logging.Float64("remote_score", remoteScore),
			logging.String("gap", string(gap)),
		)
		if best == nil {
			return nil, cacheErr
		}
		return &SeriesMatch{Series: best, Score: bestScore, Source: SourceCache}, nil
	}

	candidate := results[idx]
	e.logDecision(ctx, "series source decision", "series_source", "remote", "remote score exceeds cache",
		logging.String("query", name),
		logging.Int64(logging.FieldSeriesID, candidate.ID),
		logging.String("remote_name", candidate.Name),
		logging.Float64("cache_score", bestScore),
		logging.Float64("remote_score", remoteScore),
		logging.String("gap", string(gap)),
	)

	detail, err := e.source.SeriesDetail(services.WithSeriesID(ctx, candidate.ID), candidate.ID)
	if err != nil {
		e.warnRemote(ctx, "series detail", err)
		return degradedSeries(best, bestScore, cacheErr)
	}
	stored, _ := e.persistSeriesDetail(ctx, detail)
	return &SeriesMatch{Series: stored, Score: remoteScore, Source: SourceRemote}, nil
}

func bestCachedSeries(name string, candidates []*metastore.Series) (*metastore.Series, float64) {
	names := make([]string, len(candidates))
	for i, candidate := range candidates {
		names[i] = candidate.Name
	}
	idx, score := textmatch.Best(name, names)
	if idx < 0 {
		return nil, 0
	}
	return candidates[idx], score
}

func degradedSeries(best *metastore.Series, score float64, cacheErr error) (*SeriesMatch, error) {
	if best != nil {
		return &SeriesMatch{Series: best, Score: score, Source: SourceDegraded}, nil
	}
	return nil, cacheErr
}

// persistSeriesDetail writes the series, its official seasons, and its
// artwork. Write failures are logged; the converted records are returned
// either way.
func (e *Engine) persistSeriesDetail(ctx context.Context, detail *catalog.SeriesDetail) (*metastore.Series, []*metastore.Season) {
	ctx = services.WithSeriesID(ctx, detail.ID)
	now := e.store.Now()

	series := seriesFromDetail(detail)
	stored, err := e.store.UpsertSeries(ctx, series)
	if err != nil {
		e.warnWriteBack(ctx, "series", err)
		series.LastSyncedAt = now
		stored = &series
	}

	seasons := make([]*metastore.Season, 0, len(detail.Seasons))
	for _, season := range detail.Seasons {
		if !season.Official() {
			continue
		}
		converted := seasonFromCatalog(season, detail.ID)
		saved, err := e.store.UpsertSeason(ctx, converted, detail.ID)
		if err != nil {
			e.warnWriteBack(ctx, "season", err)
			converted.LastSyncedAt = now
			saved = &converted
		}
		seasons = append(seasons, saved)
	}

	if len(detail.Artworks) > 0 {
		if _, err := e.store.UpsertArtworks(ctx, artworksFromCatalog(detail.Artworks, detail.ID, nil), detail.ID, nil); err != nil {
			e.warnWriteBack(ctx, "series artwork", err)
		}
	}
	return stored, seasons
}
