package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SeriesCandidate is one series search hit.
type SeriesCandidate struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Slug       string   `json:"slug,omitempty"`
	Image      string   `json:"image,omitempty"`
	FirstAired string   `json:"first_aired,omitempty"`
	Year       string   `json:"year,omitempty"`
	Status     string   `json:"status,omitempty"`
	Overview   string   `json:"overview,omitempty"`
	Country    string   `json:"country,omitempty"`
	Language   string   `json:"language,omitempty"`
	Aliases    []string `json:"aliases,omitempty"`
}

// Series is the series portion of an extended record.
type Series struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug,omitempty"`
	Image      string `json:"image,omitempty"`
	FirstAired string `json:"first_aired,omitempty"`
	LastAired  string `json:"last_aired,omitempty"`
	Status     string `json:"status,omitempty"`
	Overview   string `json:"overview,omitempty"`
	Country    string `json:"country,omitempty"`
	Language   string `json:"language,omitempty"`
}

// SeriesDetail is a series with its seasons and artwork.
type SeriesDetail struct {
	Series
	Seasons  []Season  `json:"seasons"`
	Artworks []Artwork `json:"artworks"`
}

// Season is a season summary. Type is the ordering ("official", "dvd", ...).
type Season struct {
	ID       int64  `json:"id"`
	SeriesID int64  `json:"series_id"`
	Number   int    `json:"number"`
	Name     string `json:"name,omitempty"`
	Image    string `json:"image,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Official reports whether the season belongs to the aired ordering.
// Records without a type are treated as official.
func (s Season) Official() bool {
	t := strings.ToLower(strings.TrimSpace(s.Type))
	return t == "" || t == "official" || t == "default"
}

// SeasonDetail is a season with its episode list and artwork.
type SeasonDetail struct {
	Season
	Episodes []Episode `json:"episodes"`
	Artworks []Artwork `json:"artworks"`
}

// Episode is an episode record.
type Episode struct {
	ID           int64  `json:"id"`
	SeriesID     int64  `json:"series_id"`
	SeasonID     int64  `json:"season_id,omitempty"`
	SeasonNumber int    `json:"season_number"`
	Number       int    `json:"number"`
	Name         string `json:"name,omitempty"`
	Overview     string `json:"overview,omitempty"`
	Aired        string `json:"aired,omitempty"`
	Runtime      int    `json:"runtime,omitempty"`
	FinaleType   string `json:"finale_type,omitempty"`
	Image        string `json:"image,omitempty"`
}

// EpisodeDetail is the extended episode record.
type EpisodeDetail struct {
	Episode
}

// Artwork is an image candidate.
type Artwork struct {
	ID           int64   `json:"id"`
	Image        string  `json:"image"`
	Thumbnail    string  `json:"thumbnail,omitempty"`
	Language     string  `json:"language,omitempty"`
	Type         int     `json:"type"`
	Width        int     `json:"width,omitempty"`
	Height       int     `json:"height,omitempty"`
	Score        float64 `json:"score,omitempty"`
	IncludesText bool    `json:"includes_text,omitempty"`
}

// Wire shapes below mirror the remote JSON.

type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

type wireSearchResult struct {
	TVDBID          string   `json:"tvdb_id"`
	ObjectID        string   `json:"id"`
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	ImageURL        string   `json:"image_url"`
	FirstAirTime    string   `json:"first_air_time"`
	Year            string   `json:"year"`
	Status          string   `json:"status"`
	Overview        string   `json:"overview"`
	Country         string   `json:"country"`
	PrimaryLanguage string   `json:"primary_language"`
	Aliases         []string `json:"aliases"`
}

func (r wireSearchResult) id() int64 {
	raw := strings.TrimSpace(r.TVDBID)
	if raw == "" {
		raw = strings.TrimPrefix(strings.TrimSpace(r.ObjectID), "series-")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

type wireStatus struct {
	Name string `json:"name"`
}

type wireSeasonType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type wireSeason struct {
	ID       int64          `json:"id"`
	SeriesID int64          `json:"seriesId"`
	Type     wireSeasonType `json:"type"`
	Name     string         `json:"name"`
	Number   int            `json:"number"`
	Image    string         `json:"image"`
}

type wireSeasonRef struct {
	ID     int64          `json:"id"`
	Number int            `json:"number"`
	Type   wireSeasonType `json:"type"`
}

type wireEpisode struct {
	ID           int64           `json:"id"`
	SeriesID     int64           `json:"seriesId"`
	SeasonID     int64           `json:"seasonId"`
	SeasonNumber int             `json:"seasonNumber"`
	Number       int             `json:"number"`
	Name         string          `json:"name"`
	Overview     string          `json:"overview"`
	Aired        string          `json:"aired"`
	Runtime      int             `json:"runtime"`
	FinaleType   string          `json:"finaleType"`
	Image        string          `json:"image"`
	Seasons      []wireSeasonRef `json:"seasons"`
}

// artworkType accepts the type code as a JSON number or a numeric string.
type artworkType int

func (t *artworkType) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*t = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*t = 0
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*t = artworkType(n)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	v, err := n.Int64()
	if err != nil {
		return err
	}
	*t = artworkType(v)
	return nil
}

type wireArtwork struct {
	ID           int64       `json:"id"`
	Image        string      `json:"image"`
	Thumbnail    string      `json:"thumbnail"`
	Language     *string     `json:"language"`
	Type         artworkType `json:"type"`
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	Score        float64     `json:"score"`
	IncludesText bool        `json:"includesText"`
}

type wireSeries struct {
	ID                 int64         `json:"id"`
	Name               string        `json:"name"`
	Slug               string        `json:"slug"`
	Image              string        `json:"image"`
	FirstAired         string        `json:"firstAired"`
	LastAired          string        `json:"lastAired"`
	Status             wireStatus    `json:"status"`
	Overview           string        `json:"overview"`
	OriginalCountry    string        `json:"originalCountry"`
	OriginalLanguage   string        `json:"originalLanguage"`
	Seasons            []wireSeason  `json:"seasons"`
	Artworks           []wireArtwork `json:"artworks"`
}

type wireSeasonDetail struct {
	wireSeason
	Episodes []wireEpisode `json:"episodes"`
	Artwork  []wireArtwork `json:"artwork"`
}

func (w wireSeason) toSeason() Season {
	return Season{
		ID:       w.ID,
		SeriesID: w.SeriesID,
		Number:   w.Number,
		Name:     w.Name,
		Image:    w.Image,
		Type:     w.Type.Type,
	}
}

func (w wireEpisode) toEpisode() Episode {
	ep := Episode{
		ID:           w.ID,
		SeriesID:     w.SeriesID,
		SeasonID:     w.SeasonID,
		SeasonNumber: w.SeasonNumber,
		Number:       w.Number,
		Name:         w.Name,
		Overview:     w.Overview,
		Aired:        w.Aired,
		Runtime:      w.Runtime,
		FinaleType:   w.FinaleType,
		Image:        w.Image,
	}
	if ep.SeasonID == 0 {
		for _, ref := range w.Seasons {
			if ref.Number == w.SeasonNumber && (ref.Type.Type == "" || ref.Type.Type == "official") {
				ep.SeasonID = ref.ID
				break
			}
		}
	}
	return ep
}

func (w wireArtwork) toArtwork() Artwork {
	art := Artwork{
		ID:           w.ID,
		Image:        w.Image,
		Thumbnail:    w.Thumbnail,
		Type:         int(w.Type),
		Width:        w.Width,
		Height:       w.Height,
		Score:        w.Score,
		IncludesText: w.IncludesText,
	}
	if w.Language != nil {
		art.Language = strings.TrimSpace(*w.Language)
	}
	return art
}

func convertArtworks(in []wireArtwork) []Artwork {
	if len(in) == 0 {
		return nil
	}
	out := make([]Artwork, 0, len(in))
	for _, w := range in {
		if w.ID <= 0 || strings.TrimSpace(w.Image) == "" {
			continue
		}
		out = append(out, w.toArtwork())
	}
	return out
}
