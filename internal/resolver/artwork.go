package resolver

import (
	"context"
	"strings"

	"tvmeta/internal/artwork"
	"tvmeta/internal/logging"
	"tvmeta/internal/metastore"
	"tvmeta/internal/services"
)

// ArtworkResult is the artwork chosen for a series or one of its seasons,
// plus the context a caller needs to label it.
type ArtworkResult struct {
	URL           string                 `json:"url"`
	ThumbnailURL  string                 `json:"thumbnail_url,omitempty"`
	ArtworkID     int64                  `json:"artwork_id,omitempty"`
	Type          artwork.Type           `json:"type"`
	Context       artwork.Context        `json:"context"`
	Language      string                 `json:"language,omitempty"`
	SeriesID      int64                  `json:"series_id"`
	SeriesName    string                 `json:"series_name"`
	SeriesStatus  metastore.SeriesStatus `json:"series_status"`
	SeasonID      *int64                 `json:"season_id,omitempty"`
	SeasonNumber  *int                   `json:"season_number,omitempty"`
	Episode       *metastore.Episode     `json:"episode,omitempty"`
	FinaleType    string                 `json:"finale_type,omitempty"`
	IsFinalSeason bool                   `json:"is_final_season"`
}

// ResolveCurrentSeasonArtwork resolves name and picks artwork for the given
// season, falling back to series artwork. Episode lookup failures never
// abort artwork selection. A nil result means nothing usable was found.
func (e *Engine) ResolveCurrentSeasonArtwork(ctx context.Context, name string, seasonNumber, episodeNumber *int) (*ArtworkResult, error) {
	ctx = services.WithOperation(ctx, opResolveArtwork)
	result, err := e.resolveArtwork(ctx, name, seasonNumber, episodeNumber)
	switch {
	case err != nil:
		e.observe(opResolveArtwork, "error")
	case result == nil:
		e.observe(opResolveArtwork, "not_found")
	default:
		e.observe(opResolveArtwork, string(result.Context))
	}
	return result, err
}

func (e *Engine) resolveArtwork(ctx context.Context, name string, seasonNumber, episodeNumber *int) (*ArtworkResult, error) {
	match, err := e.ResolveSeries(ctx, name)
	if err != nil || match == nil {
		return nil, err
	}
	series := match.Series
	ctx = services.WithSeriesID(ctx, series.ID)
	logger := e.loggerFor(ctx)

	base := ArtworkResult{
		SeriesID:     series.ID,
		SeriesName:   series.Name,
		SeriesStatus: series.Status,
	}

	var seasons []*metastore.Season
	if seasonNumber != nil {
		number := *seasonNumber
		base.SeasonNumber = &number
		seasons, err = e.ensureSeasons(ctx, series.ID)
		if err != nil {
			logger.Debug("season lookup failed", logging.Error(err))
		}
		if series.Status == metastore.StatusEnded {
			if final := finalSeasonNumber(seasons); final > 0 {
				base.IsFinalSeason = number == final
			}
		}
	}

	if seasonNumber != nil && episodeNumber != nil {
		ep, err := e.ResolveEpisode(ctx, series.ID, *seasonNumber, *episodeNumber)
		if err != nil {
			logging.WarnWithContext(logger, "episode lookup failed during artwork resolution", "episode_lookup_failed",
				logging.Int("season", *seasonNumber),
				logging.Int("episode", *episodeNumber),
				logging.Error(err),
				logging.String(logging.FieldImpact, "artwork returned without episode details"),
			)
		} else if ep != nil {
			base.Episode = ep
			base.FinaleType = ep.FinaleType
		}
	}

	if seasonNumber != nil {
		if season := seasonByNumber(seasons, *seasonNumber); season != nil {
			candidates := e.seasonArtworks(ctx, series.ID, season)
			if selection, ok := artwork.SelectBest(candidates, artwork.ContextSeason, e.artworkPrefs); ok {
				seasonID := season.ID
				base.SeasonID = &seasonID
				return withSelection(base, selection), nil
			}
			logger.Debug("no usable season artwork; falling back to series", logging.Int("season", *seasonNumber))
		}
	}

	candidates := e.seriesArtworks(ctx, series)
	selection, ok := artwork.SelectBest(candidates, artwork.ContextSeries, e.artworkPrefs)
	if !ok {
		return nil, nil
	}
	return withSelection(base, selection), nil
}

func withSelection(base ArtworkResult, selection artwork.Selection) *ArtworkResult {
	base.URL = selection.URL
	base.ThumbnailURL = selection.ThumbnailURL
	base.ArtworkID = selection.Artwork.ID
	base.Type = selection.Type
	base.Context = selection.Context
	if selection.Artwork.Language != nil {
		base.Language = *selection.Artwork.Language
	}
	return &base
}

// seasonArtworks returns cached season artwork when the season is fresh,
// otherwise refreshes the season from the catalog.
func (e *Engine) seasonArtworks(ctx context.Context, seriesID int64, season *metastore.Season) []metastore.Artwork {
	seasonID := season.ID
	cached, err := e.store.ArtworksFor(ctx, seriesID, &seasonID)
	if err != nil {
		e.warnCacheRead(ctx, "season artwork", err)
	}
	if len(cached) > 0 && e.fresh(season.LastSyncedAt) {
		return cached
	}
	if !e.authorized() {
		return cached
	}
	detail, err := e.source.SeasonDetail(ctx, season.ID)
	if err != nil {
		e.warnRemote(ctx, "season detail", err)
		return cached
	}
	_, _, artworks := e.persistSeasonDetail(ctx, seriesID, detail)
	return artworks
}

// seriesArtworks returns cached series artwork when the series is fresh,
// otherwise refreshes it from the catalog. With no candidates at all the
// series primary image stands in as a poster.
func (e *Engine) seriesArtworks(ctx context.Context, series *metastore.Series) []metastore.Artwork {
	cached, err := e.store.ArtworksFor(ctx, series.ID, nil)
	if err != nil {
		e.warnCacheRead(ctx, "series artwork", err)
	}
	if (len(cached) == 0 || !e.fresh(series.LastSyncedAt)) && e.authorized() {
		detail, err := e.source.SeriesDetail(ctx, series.ID)
		if err != nil {
			e.warnRemote(ctx, "series detail", err)
		} else {
			series, _ = e.persistSeriesDetail(ctx, detail)
			if remote := artworksFromCatalog(detail.Artworks, series.ID, nil); len(remote) > 0 {
				cached = remote
			}
		}
	}
	if len(cached) == 0 && strings.TrimSpace(series.Image) != "" {
		cached = []metastore.Artwork{{
			SeriesID: series.ID,
			Image:    series.Image,
			Type:     int(artwork.SeriesPoster),
		}}
	}
	return cached
}
