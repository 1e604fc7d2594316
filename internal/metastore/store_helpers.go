package metastore

import (
	"database/sql"
	"strings"
	"time"
)

const (
	seriesColumns  = "tvdb_id, name, slug, image, first_aired, last_aired, status, overview, country, language, last_synced_at"
	seasonColumns  = "tvdb_id, series_id, number, name, image, last_synced_at"
	episodeColumns = "tvdb_id, series_id, season_id, season_number, number, name, overview, aired, runtime, finale_type, image, last_synced_at"
	artworkColumns = "tvdb_id, series_id, season_id, image, thumbnail, language, type, width, height, score, includes_text, last_synced_at"
)

type scanner interface{ Scan(dest ...any) error }

func scanSeries(row scanner) (*Series, error) {
	var (
		series     Series
		slug       sql.NullString
		image      sql.NullString
		firstAired sql.NullString
		lastAired  sql.NullString
		status     string
		overview   sql.NullString
		country    sql.NullString
		language   sql.NullString
		synced     int64
	)
	if err := row.Scan(&series.ID, &series.Name, &slug, &image, &firstAired, &lastAired, &status, &overview, &country, &language, &synced); err != nil {
		return nil, err
	}
	series.Slug = slug.String
	series.Image = image.String
	series.FirstAired = firstAired.String
	series.LastAired = lastAired.String
	series.Status = ParseSeriesStatus(status)
	series.Overview = overview.String
	series.Country = country.String
	series.Language = language.String
	series.LastSyncedAt = fromMillis(synced)
	return &series, nil
}

func scanSeason(row scanner) (*Season, error) {
	var (
		season Season
		name   sql.NullString
		image  sql.NullString
		synced int64
	)
	if err := row.Scan(&season.ID, &season.SeriesID, &season.Number, &name, &image, &synced); err != nil {
		return nil, err
	}
	season.Name = name.String
	season.Image = image.String
	season.LastSyncedAt = fromMillis(synced)
	return &season, nil
}

func scanEpisode(row scanner) (*Episode, error) {
	var (
		episode    Episode
		name       sql.NullString
		overview   sql.NullString
		aired      sql.NullString
		finaleType sql.NullString
		image      sql.NullString
		synced     int64
	)
	if err := row.Scan(
		&episode.ID,
		&episode.SeriesID,
		&episode.SeasonID,
		&episode.SeasonNumber,
		&episode.Number,
		&name,
		&overview,
		&aired,
		&episode.Runtime,
		&finaleType,
		&image,
		&synced,
	); err != nil {
		return nil, err
	}
	episode.Name = name.String
	episode.Overview = overview.String
	episode.Aired = aired.String
	episode.FinaleType = finaleType.String
	episode.Image = image.String
	episode.LastSyncedAt = fromMillis(synced)
	return &episode, nil
}

func scanArtwork(row scanner) (*Artwork, error) {
	var (
		art          Artwork
		seasonID     int64
		thumbnail    sql.NullString
		language     sql.NullString
		includesText int
		synced       int64
	)
	if err := row.Scan(
		&art.ID,
		&art.SeriesID,
		&seasonID,
		&art.Image,
		&thumbnail,
		&language,
		&art.Type,
		&art.Width,
		&art.Height,
		&art.Score,
		&includesText,
		&synced,
	); err != nil {
		return nil, err
	}
	art.SeasonID = seasonScope(seasonID)
	art.Thumbnail = thumbnail.String
	if language.Valid && strings.TrimSpace(language.String) != "" {
		lang := language.String
		art.Language = &lang
	}
	art.IncludesText = includesText != 0
	art.LastSyncedAt = fromMillis(synced)
	return &art, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableStringPtr(value *string) any {
	if value == nil {
		return nil
	}
	return nullableString(*value)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// scopeKey maps the optional season scope onto the stored column value.
func scopeKey(seasonID *int64) int64 {
	if seasonID == nil {
		return 0
	}
	return *seasonID
}

func seasonScope(stored int64) *int64 {
	if stored == 0 {
		return nil
	}
	id := stored
	return &id
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
