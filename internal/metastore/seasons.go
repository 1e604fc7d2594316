package metastore

import (
	"context"
	"errors"
)

// GetSeasonByID fetches a season by catalog identifier.
func (s *Store) GetSeasonByID(ctx context.Context, id int64) (*Season, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+seasonColumns+` FROM seasons WHERE tvdb_id = ?`, id)
	season, err := scanSeason(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get season", err)
	}
	return season, nil
}

// SeasonsForSeries lists the cached seasons of a series ordered by number.
func (s *Store) SeasonsForSeries(ctx context.Context, seriesID int64) ([]*Season, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+seasonColumns+` FROM seasons WHERE series_id = ? ORDER BY number, tvdb_id`, seriesID)
	if err != nil {
		return nil, persistErr("list seasons", err)
	}
	defer rows.Close()

	var out []*Season
	for rows.Next() {
		season, err := scanSeason(rows)
		if err != nil {
			return nil, persistErr("scan season", err)
		}
		out = append(out, season)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate seasons", err)
	}
	return out, nil
}

// UpsertSeason creates or replaces the season keyed by its catalog ID under seriesID.
func (s *Store) UpsertSeason(ctx context.Context, season Season, seriesID int64) (*Season, error) {
	if season.ID <= 0 {
		return nil, persistErr("upsert season", errors.New("season id must be positive"))
	}
	if seriesID <= 0 {
		return nil, persistErr("upsert season", errors.New("series id must be positive"))
	}
	season.SeriesID = seriesID
	season.LastSyncedAt = s.Now()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO seasons (tvdb_id, series_id, number, name, image, last_synced_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(tvdb_id) DO UPDATE SET
            series_id = excluded.series_id,
            number = excluded.number,
            name = excluded.name,
            image = excluded.image,
            last_synced_at = excluded.last_synced_at`,
		season.ID,
		season.SeriesID,
		season.Number,
		nullableString(season.Name),
		nullableString(season.Image),
		toMillis(season.LastSyncedAt),
	)
	if err != nil {
		return nil, persistErr("upsert season", err)
	}
	return &season, nil
}
