package metastore

import (
	"context"
	"errors"
	"strings"

	"tvmeta/internal/textmatch"
)

// GetSeriesByID fetches a series by catalog identifier. Missing rows return nil, nil.
func (s *Store) GetSeriesByID(ctx context.Context, id int64) (*Series, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+seriesColumns+` FROM series WHERE tvdb_id = ?`, id)
	series, err := scanSeries(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get series", err)
	}
	return series, nil
}

// GetSeriesByExactName returns the most recently synced series whose name
// equals name, ignoring case.
func (s *Store) GetSeriesByExactName(ctx context.Context, name string) (*Series, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+seriesColumns+` FROM series WHERE name = ? COLLATE NOCASE ORDER BY last_synced_at DESC LIMIT 1`,
		name,
	)
	series, err := scanSeries(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("get series by name", err)
	}
	return series, nil
}

// GetAllSeriesLike returns every cached series whose name contains name, or
// whose normalized name is contained in the normalized query. Results are in
// storage order and carry no ranking.
func (s *Store) GetAllSeriesLike(ctx context.Context, name string) ([]*Series, error) {
	raw := strings.ToLower(strings.TrimSpace(name))
	if raw == "" {
		return nil, nil
	}
	normalized := textmatch.Normalize(raw)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+seriesColumns+` FROM series
         WHERE instr(lower(name), ?) > 0
            OR (? <> '' AND instr(search_name, ?) > 0)
            OR (? <> '' AND search_name <> '' AND instr(?, search_name) > 0)
         ORDER BY tvdb_id`,
		raw,
		normalized, normalized,
		normalized, normalized,
	)
	if err != nil {
		return nil, persistErr("query series like", err)
	}
	defer rows.Close()

	var out []*Series
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, persistErr("scan series", err)
		}
		out = append(out, series)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate series", err)
	}
	return out, nil
}

// ListSeries returns up to limit series ordered by most recent sync. A
// non-positive limit returns everything.
func (s *Store) ListSeries(ctx context.Context, limit int) ([]*Series, error) {
	query := `SELECT ` + seriesColumns + ` FROM series ORDER BY last_synced_at DESC, tvdb_id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("list series", err)
	}
	defer rows.Close()

	var out []*Series
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, persistErr("scan series", err)
		}
		out = append(out, series)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate series", err)
	}
	return out, nil
}

// UpsertSeries creates or replaces the series keyed by its catalog ID and
// stamps LastSyncedAt. The stored copy is returned.
func (s *Store) UpsertSeries(ctx context.Context, series Series) (*Series, error) {
	if series.ID <= 0 {
		return nil, persistErr("upsert series", errors.New("series id must be positive"))
	}
	if strings.TrimSpace(series.Name) == "" {
		return nil, persistErr("upsert series", errors.New("series name is required"))
	}
	if series.Status == "" {
		series.Status = StatusUnknown
	}
	series.LastSyncedAt = s.Now()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO series (
            tvdb_id, name, search_name, slug, image, first_aired, last_aired,
            status, overview, country, language, last_synced_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(tvdb_id) DO UPDATE SET
            name = excluded.name,
            search_name = excluded.search_name,
            slug = excluded.slug,
            image = excluded.image,
            first_aired = excluded.first_aired,
            last_aired = excluded.last_aired,
            status = excluded.status,
            overview = excluded.overview,
            country = excluded.country,
            language = excluded.language,
            last_synced_at = excluded.last_synced_at`,
		series.ID,
		series.Name,
		textmatch.Normalize(series.Name),
		nullableString(series.Slug),
		nullableString(series.Image),
		nullableString(series.FirstAired),
		nullableString(series.LastAired),
		string(series.Status),
		nullableString(series.Overview),
		nullableString(series.Country),
		nullableString(series.Language),
		toMillis(series.LastSyncedAt),
	)
	if err != nil {
		return nil, persistErr("upsert series", err)
	}
	return &series, nil
}
