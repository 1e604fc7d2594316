package metastore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

var kindTables = map[EntityKind]string{
	KindSeries:  "series",
	KindSeason:  "seasons",
	KindEpisode: "episodes",
	KindArtwork: "artworks",
}

// sweepOrder deletes children before parents.
var sweepOrder = []EntityKind{KindArtwork, KindEpisode, KindSeason, KindSeries}

// IsStale reports whether the record of the given kind is missing or was last
// synced more than maxAge ago. Artwork IDs may appear under several scopes;
// the freshest copy decides.
func (s *Store) IsStale(ctx context.Context, kind EntityKind, id int64, maxAge time.Duration) (bool, error) {
	table, ok := kindTables[kind]
	if !ok {
		return false, persistErr("is stale", fmt.Errorf("unknown entity kind %q", kind))
	}
	var synced sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(last_synced_at) FROM `+table+` WHERE tvdb_id = ?`, id).Scan(&synced)
	if err != nil && !isNoRows(err) {
		return false, persistErr("is stale", err)
	}
	if !synced.Valid {
		return true, nil
	}
	return s.Stale(fromMillis(synced.Int64), maxAge), nil
}

// SweepOlderThan deletes records last synced more than maxAge ago, table by
// table in referential order. Each table is a separate statement so readers
// are never blocked for the whole sweep.
func (s *Store) SweepOlderThan(ctx context.Context, maxAge time.Duration) (SweepResult, error) {
	var result SweepResult
	if maxAge < 0 {
		return result, persistErr("sweep", fmt.Errorf("negative max age %s", maxAge))
	}
	cutoff := toMillis(s.Now().Add(-maxAge))

	for _, kind := range sweepOrder {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+kindTables[kind]+` WHERE last_synced_at < ?`, cutoff)
		if err != nil {
			return result, persistErr("sweep "+string(kind), err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return result, persistErr("sweep "+string(kind), err)
		}
		switch kind {
		case KindArtwork:
			result.Artworks = affected
		case KindEpisode:
			result.Episodes = affected
		case KindSeason:
			result.Seasons = affected
		case KindSeries:
			result.Series = affected
		}
	}
	return result, nil
}

// Stats counts cached records and reports the series sync range.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		stats  Stats
		oldest sql.NullInt64
		newest sql.NullInt64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT
            (SELECT COUNT(1) FROM series),
            (SELECT COUNT(1) FROM seasons),
            (SELECT COUNT(1) FROM episodes),
            (SELECT COUNT(1) FROM artworks),
            (SELECT MIN(last_synced_at) FROM series),
            (SELECT MAX(last_synced_at) FROM series)`,
	).Scan(&stats.Series, &stats.Seasons, &stats.Episodes, &stats.Artworks, &oldest, &newest)
	if err != nil {
		return Stats{}, persistErr("stats", err)
	}
	if oldest.Valid {
		stats.OldestSyncAt = fromMillis(oldest.Int64)
	}
	if newest.Valid {
		stats.NewestSyncAt = fromMillis(newest.Int64)
	}
	return stats, nil
}

// Clear removes every cached record.
func (s *Store) Clear(ctx context.Context) (SweepResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SweepResult{}, persistErr("clear", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var result SweepResult
	for _, kind := range sweepOrder {
		res, err := tx.ExecContext(ctx, `DELETE FROM `+kindTables[kind])
		if err != nil {
			return SweepResult{}, persistErr("clear "+string(kind), err)
		}
		affected, _ := res.RowsAffected()
		switch kind {
		case KindArtwork:
			result.Artworks = affected
		case KindEpisode:
			result.Episodes = affected
		case KindSeason:
			result.Seasons = affected
		case KindSeries:
			result.Series = affected
		}
	}
	if err := tx.Commit(); err != nil {
		return SweepResult{}, persistErr("clear", err)
	}
	return result, nil
}
