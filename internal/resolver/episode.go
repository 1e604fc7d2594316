package resolver

import (
	"context"

	"tvmeta/internal/catalog"
	"tvmeta/internal/logging"
	"tvmeta/internal/metastore"
	"tvmeta/internal/services"
)

// ResolveEpisode returns the episode at seasonNumber/episodeNumber of the
// series. Fresh cache entries are served directly; otherwise the season and
// episode lists are walked cache-or-remote and the episode detail refreshed.
func (e *Engine) ResolveEpisode(ctx context.Context, seriesID int64, seasonNumber, episodeNumber int) (*metastore.Episode, error) {
	ctx = services.WithSeriesID(services.WithOperation(ctx, opResolveEpisode), seriesID)
	ep, source, err := e.resolveEpisode(ctx, seriesID, seasonNumber, episodeNumber)
	switch {
	case err != nil:
		e.observe(opResolveEpisode, "error")
	case ep == nil:
		e.observe(opResolveEpisode, "not_found")
	default:
		e.observe(opResolveEpisode, string(source))
	}
	return ep, err
}

func (e *Engine) resolveEpisode(ctx context.Context, seriesID int64, seasonNumber, episodeNumber int) (*metastore.Episode, Source, error) {
	if seriesID <= 0 {
		return nil, "", nil
	}
	logger := e.loggerFor(ctx)

	var cacheErr error
	cached, err := e.store.GetEpisodeByNumbers(ctx, seriesID, seasonNumber, episodeNumber)
	if err != nil {
		cacheErr = err
		e.warnCacheRead(ctx, "episode", err)
	}
	if cached != nil && e.fresh(cached.LastSyncedAt) {
		source := SourceCache
		if !e.authorized() {
			source = SourceDegraded
		}
		return cached, source, nil
	}
	if !e.authorized() {
		return nil, "", cacheErr
	}

	// stale returns the best answer available once the remote walk fails.
	stale := func() (*metastore.Episode, Source, error) {
		if cached != nil {
			logger.Debug("serving stale cached episode",
				logging.Int("season", seasonNumber),
				logging.Int("episode", episodeNumber),
			)
			return cached, SourceDegraded, nil
		}
		return nil, "", cacheErr
	}

	seasons, err := e.ensureSeasons(ctx, seriesID)
	if err != nil {
		return nil, "", err
	}
	season := seasonByNumber(seasons, seasonNumber)
	if season == nil {
		return stale()
	}

	episodes, err := e.ensureSeasonEpisodes(ctx, seriesID, season)
	if err != nil {
		return nil, "", err
	}
	listed := episodeByNumber(episodes, episodeNumber)
	if listed == nil {
		return stale()
	}

	detail, err := e.source.EpisodeDetail(ctx, listed.ID)
	if err != nil {
		e.warnRemote(ctx, "episode detail", err)
		return listed, SourceDegraded, nil
	}
	episode := episodeFromCatalog(detail.Episode, season.ID, seriesID)
	if episode.Number == 0 {
		episode.Number = listed.Number
	}
	if episode.SeasonNumber == 0 {
		episode.SeasonNumber = season.Number
	}
	stored, err := e.store.UpsertEpisode(ctx, episode, season.ID, seriesID)
	if err != nil {
		e.warnWriteBack(ctx, "episode", err)
		episode.LastSyncedAt = e.store.Now()
		return &episode, SourceRemote, nil
	}
	return stored, SourceRemote, nil
}

// ensureSeasons returns the series' seasons, refreshing them from the
// catalog when the series record is stale or no seasons are cached. A failed
// refresh falls back to whatever is cached. An error is returned only when
// nothing is available and the cache could not be read.
func (e *Engine) ensureSeasons(ctx context.Context, seriesID int64) ([]*metastore.Season, error) {
	seasons, readErr := e.store.SeasonsForSeries(ctx, seriesID)
	if readErr != nil {
		e.warnCacheRead(ctx, "seasons", readErr)
	}
	series, err := e.store.GetSeriesByID(ctx, seriesID)
	if err != nil {
		e.warnCacheRead(ctx, "series", err)
	}
	if len(seasons) > 0 && series != nil && e.fresh(series.LastSyncedAt) {
		return seasons, nil
	}
	if !e.authorized() {
		if len(seasons) == 0 && readErr != nil {
			return nil, readErr
		}
		return seasons, nil
	}

	detail, err := e.source.SeriesDetail(ctx, seriesID)
	if err != nil {
		e.warnRemote(ctx, "series detail", err)
		if len(seasons) == 0 && readErr != nil {
			return nil, readErr
		}
		return seasons, nil
	}
	_, refreshed := e.persistSeriesDetail(ctx, detail)
	return refreshed, nil
}

// ensureSeasonEpisodes returns the season's episodes, refreshing the season
// from the catalog when it is stale or has no cached episodes.
func (e *Engine) ensureSeasonEpisodes(ctx context.Context, seriesID int64, season *metastore.Season) ([]*metastore.Episode, error) {
	episodes, readErr := e.store.EpisodesForSeason(ctx, season.ID)
	if readErr != nil {
		e.warnCacheRead(ctx, "episodes", readErr)
	}
	if len(episodes) > 0 && e.fresh(season.LastSyncedAt) {
		return episodes, nil
	}
	if !e.authorized() {
		if len(episodes) == 0 && readErr != nil {
			return nil, readErr
		}
		return episodes, nil
	}

	detail, err := e.source.SeasonDetail(ctx, season.ID)
	if err != nil {
		e.warnRemote(ctx, "season detail", err)
		if len(episodes) == 0 && readErr != nil {
			return nil, readErr
		}
		return episodes, nil
	}
	_, refreshed, _ := e.persistSeasonDetail(ctx, seriesID, detail)
	return refreshed, nil
}

// persistSeasonDetail writes the season, its episodes, and its artwork and
// returns the converted records.
func (e *Engine) persistSeasonDetail(ctx context.Context, seriesID int64, detail *catalog.SeasonDetail) (*metastore.Season, []*metastore.Episode, []metastore.Artwork) {
	now := e.store.Now()

	season := seasonFromCatalog(detail.Season, seriesID)
	storedSeason, err := e.store.UpsertSeason(ctx, season, seriesID)
	if err != nil {
		e.warnWriteBack(ctx, "season", err)
		season.LastSyncedAt = now
		storedSeason = &season
	}

	episodes := make([]*metastore.Episode, 0, len(detail.Episodes))
	for _, ep := range detail.Episodes {
		converted := episodeFromCatalog(ep, season.ID, seriesID)
		if converted.SeasonNumber == 0 {
			converted.SeasonNumber = season.Number
		}
		stored, err := e.store.UpsertEpisode(ctx, converted, season.ID, seriesID)
		if err != nil {
			e.warnWriteBack(ctx, "episode", err)
			converted.LastSyncedAt = now
			stored = &converted
		}
		episodes = append(episodes, stored)
	}

	seasonID := season.ID
	artworks := artworksFromCatalog(detail.Artworks, seriesID, &seasonID)
	if len(artworks) > 0 {
		if _, err := e.store.UpsertArtworks(ctx, artworks, seriesID, &seasonID); err != nil {
			e.warnWriteBack(ctx, "season artwork", err)
		}
	}
	return storedSeason, episodes, artworks
}
