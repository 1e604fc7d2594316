package metastore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ArtworksFor lists cached artwork candidates for a scope. A nil seasonID
// selects series-level artwork.
func (s *Store) ArtworksFor(ctx context.Context, seriesID int64, seasonID *int64) ([]Artwork, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+artworkColumns+` FROM artworks WHERE series_id = ? AND season_id = ? ORDER BY tvdb_id`,
		seriesID, scopeKey(seasonID),
	)
	if err != nil {
		return nil, persistErr("list artworks", err)
	}
	defer rows.Close()

	var out []Artwork
	for rows.Next() {
		art, err := scanArtwork(rows)
		if err != nil {
			return nil, persistErr("scan artwork", err)
		}
		out = append(out, *art)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate artworks", err)
	}
	return out, nil
}

// UpsertArtworks stores artworks under the (seriesID, seasonID) scope in a
// single transaction. The same artwork ID may exist under several scopes.
func (s *Store) UpsertArtworks(ctx context.Context, artworks []Artwork, seriesID int64, seasonID *int64) (int, error) {
	if len(artworks) == 0 {
		return 0, nil
	}
	if seriesID <= 0 {
		return 0, persistErr("upsert artworks", errors.New("series id must be positive"))
	}
	scope := scopeKey(seasonID)
	synced := toMillis(s.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, persistErr("upsert artworks", fmt.Errorf("begin tx: %w", err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO artworks (
            tvdb_id, series_id, season_id, image, thumbnail, language, type,
            width, height, score, includes_text, last_synced_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(tvdb_id, series_id, season_id) DO UPDATE SET
            image = excluded.image,
            thumbnail = excluded.thumbnail,
            language = excluded.language,
            type = excluded.type,
            width = excluded.width,
            height = excluded.height,
            score = excluded.score,
            includes_text = excluded.includes_text,
            last_synced_at = excluded.last_synced_at`,
	)
	if err != nil {
		return 0, persistErr("upsert artworks", fmt.Errorf("prepare: %w", err))
	}
	defer stmt.Close()

	written := 0
	for _, art := range artworks {
		if art.ID <= 0 || strings.TrimSpace(art.Image) == "" {
			continue
		}
		if _, err := stmt.ExecContext(
			ctx,
			art.ID,
			seriesID,
			scope,
			art.Image,
			nullableString(art.Thumbnail),
			nullableStringPtr(art.Language),
			art.Type,
			art.Width,
			art.Height,
			art.Score,
			boolToInt(art.IncludesText),
			synced,
		); err != nil {
			return 0, persistErr("upsert artworks", fmt.Errorf("artwork %d: %w", art.ID, err))
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, persistErr("upsert artworks", fmt.Errorf("commit: %w", err))
	}
	return written, nil
}
