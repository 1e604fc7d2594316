package metastore

import (
	"context"
	"errors"
)

// GetEpisodeByID fetches an episode by catalog identifier.
func (s *Store) GetEpisodeByID(ctx context.Context, id int64) (*Episode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+episodeColumns+` FROM episodes WHERE tvdb_id = ?`, id)
	episode, err := scanEpisode(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get episode", err)
	}
	return episode, nil
}

// GetEpisodeByNumbers fetches the most recently synced episode matching the
// series, season number, and episode number.
func (s *Store) GetEpisodeByNumbers(ctx context.Context, seriesID int64, seasonNumber, episodeNumber int) (*Episode, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+episodeColumns+` FROM episodes
         WHERE series_id = ? AND season_number = ? AND number = ?
         ORDER BY last_synced_at DESC LIMIT 1`,
		seriesID, seasonNumber, episodeNumber,
	)
	episode, err := scanEpisode(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get episode by numbers", err)
	}
	return episode, nil
}

// EpisodesForSeason lists cached episodes of a season ordered by number.
func (s *Store) EpisodesForSeason(ctx context.Context, seasonID int64) ([]*Episode, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+episodeColumns+` FROM episodes WHERE season_id = ? ORDER BY number, tvdb_id`, seasonID)
	if err != nil {
		return nil, persistErr("list episodes", err)
	}
	defer rows.Close()

	var out []*Episode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, persistErr("scan episode", err)
		}
		out = append(out, episode)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate episodes", err)
	}
	return out, nil
}

// UpsertEpisode creates or replaces the episode keyed by its catalog ID under
// the given season and series.
func (s *Store) UpsertEpisode(ctx context.Context, episode Episode, seasonID, seriesID int64) (*Episode, error) {
	if episode.ID <= 0 {
		return nil, persistErr("upsert episode", errors.New("episode id must be positive"))
	}
	if seriesID <= 0 {
		return nil, persistErr("upsert episode", errors.New("series id must be positive"))
	}
	episode.SeasonID = seasonID
	episode.SeriesID = seriesID
	episode.LastSyncedAt = s.Now()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO episodes (
            tvdb_id, series_id, season_id, season_number, number, name, overview,
            aired, runtime, finale_type, image, last_synced_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(tvdb_id) DO UPDATE SET
            series_id = excluded.series_id,
            season_id = excluded.season_id,
            season_number = excluded.season_number,
            number = excluded.number,
            name = excluded.name,
            overview = excluded.overview,
            aired = excluded.aired,
            runtime = excluded.runtime,
            finale_type = excluded.finale_type,
            image = excluded.image,
            last_synced_at = excluded.last_synced_at`,
		episode.ID,
		episode.SeriesID,
		episode.SeasonID,
		episode.SeasonNumber,
		episode.Number,
		nullableString(episode.Name),
		nullableString(episode.Overview),
		nullableString(episode.Aired),
		episode.Runtime,
		nullableString(episode.FinaleType),
		nullableString(episode.Image),
		toMillis(episode.LastSyncedAt),
	)
	if err != nil {
		return nil, persistErr("upsert episode", err)
	}
	return &episode, nil
}
