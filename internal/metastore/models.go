package metastore

import (
	"strings"
	"time"
)

// EntityKind names one of the cached record tables.
type EntityKind string

const (
	KindSeries  EntityKind = "series"
	KindSeason  EntityKind = "season"
	KindEpisode EntityKind = "episode"
	KindArtwork EntityKind = "artwork"
)

// SeriesStatus mirrors the catalog's airing status.
type SeriesStatus string

const (
	StatusContinuing SeriesStatus = "Continuing"
	StatusEnded      SeriesStatus = "Ended"
	StatusUpcoming   SeriesStatus = "Upcoming"
	StatusUnknown    SeriesStatus = "Unknown"
)

// ParseSeriesStatus maps free-form catalog status names onto SeriesStatus.
func ParseSeriesStatus(value string) SeriesStatus {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "continuing":
		return StatusContinuing
	case "ended":
		return StatusEnded
	case "upcoming":
		return StatusUpcoming
	default:
		return StatusUnknown
	}
}

// Series is a cached catalog series record.
type Series struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug,omitempty"`
	Image        string       `json:"image,omitempty"`
	FirstAired   string       `json:"first_aired,omitempty"`
	LastAired    string       `json:"last_aired,omitempty"`
	Status       SeriesStatus `json:"status"`
	Overview     string       `json:"overview,omitempty"`
	Country      string       `json:"country,omitempty"`
	Language     string       `json:"language,omitempty"`
	LastSyncedAt time.Time    `json:"last_synced_at"`
}

// Season is a cached season record. Number 0 holds specials.
type Season struct {
	ID           int64     `json:"id"`
	SeriesID     int64     `json:"series_id"`
	Number       int       `json:"number"`
	Name         string    `json:"name,omitempty"`
	Image        string    `json:"image,omitempty"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// Episode is a cached episode record.
type Episode struct {
	ID           int64     `json:"id"`
	SeriesID     int64     `json:"series_id"`
	SeasonID     int64     `json:"season_id"`
	SeasonNumber int       `json:"season_number"`
	Number       int       `json:"number"`
	Name         string    `json:"name,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	Aired        string    `json:"aired,omitempty"`
	Runtime      int       `json:"runtime,omitempty"`
	FinaleType   string    `json:"finale_type,omitempty"`
	Image        string    `json:"image,omitempty"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// Artwork is a cached image candidate. A nil SeasonID marks series-level art
// and a nil Language means the image carries no language tag.
type Artwork struct {
	ID           int64     `json:"id"`
	SeriesID     int64     `json:"series_id"`
	SeasonID     *int64    `json:"season_id,omitempty"`
	Image        string    `json:"image"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	Language     *string   `json:"language,omitempty"`
	Type         int       `json:"type"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	Score        float64   `json:"score,omitempty"`
	IncludesText bool      `json:"includes_text,omitempty"`
	LastSyncedAt time.Time `json:"last_synced_at"`
}

// Area returns the pixel area, treating missing dimensions as zero.
func (a Artwork) Area() int64 {
	if a.Width <= 0 || a.Height <= 0 {
		return 0
	}
	return int64(a.Width) * int64(a.Height)
}

// SweepResult counts the rows removed by a staleness sweep.
type SweepResult struct {
	Artworks int64 `json:"artworks"`
	Episodes int64 `json:"episodes"`
	Seasons  int64 `json:"seasons"`
	Series   int64 `json:"series"`
}

// Total returns the number of rows removed across all tables.
func (r SweepResult) Total() int64 {
	return r.Artworks + r.Episodes + r.Seasons + r.Series
}

// Stats summarizes cache contents.
type Stats struct {
	Series       int       `json:"series"`
	Seasons      int       `json:"seasons"`
	Episodes     int       `json:"episodes"`
	Artworks     int       `json:"artworks"`
	OldestSyncAt time.Time `json:"oldest_sync_at,omitzero"`
	NewestSyncAt time.Time `json:"newest_sync_at,omitzero"`
}
