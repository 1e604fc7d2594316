package resolver

import (
	"strings"

	"tvmeta/internal/catalog"
	"tvmeta/internal/language"
	"tvmeta/internal/metastore"
)

func seriesFromDetail(detail *catalog.SeriesDetail) metastore.Series {
	return metastore.Series{
		ID:         detail.ID,
		Name:       strings.TrimSpace(detail.Name),
		Slug:       detail.Slug,
		Image:      detail.Image,
		FirstAired: detail.FirstAired,
		LastAired:  detail.LastAired,
		Status:     metastore.ParseSeriesStatus(detail.Status),
		Overview:   detail.Overview,
		Country:    detail.Country,
		Language:   detail.Language,
	}
}

func seasonFromCatalog(season catalog.Season, seriesID int64) metastore.Season {
	return metastore.Season{
		ID:       season.ID,
		SeriesID: seriesID,
		Number:   season.Number,
		Name:     season.Name,
		Image:    season.Image,
	}
}

func episodeFromCatalog(ep catalog.Episode, seasonID, seriesID int64) metastore.Episode {
	return metastore.Episode{
		ID:           ep.ID,
		SeriesID:     seriesID,
		SeasonID:     seasonID,
		SeasonNumber: ep.SeasonNumber,
		Number:       ep.Number,
		Name:         ep.Name,
		Overview:     ep.Overview,
		Aired:        ep.Aired,
		Runtime:      ep.Runtime,
		FinaleType:   ep.FinaleType,
		Image:        ep.Image,
	}
}

func artworksFromCatalog(in []catalog.Artwork, seriesID int64, seasonID *int64) []metastore.Artwork {
	out := make([]metastore.Artwork, 0, len(in))
	for _, art := range in {
		converted := metastore.Artwork{
			ID:           art.ID,
			SeriesID:     seriesID,
			SeasonID:     seasonID,
			Image:        art.Image,
			Thumbnail:    art.Thumbnail,
			Type:         art.Type,
			Width:        art.Width,
			Height:       art.Height,
			Score:        art.Score,
			IncludesText: art.IncludesText,
		}
		if code := strings.TrimSpace(art.Language); code != "" {
			iso := language.ToISO3(code)
			if iso == "und" {
				iso = strings.ToLower(code)
			}
			converted.Language = &iso
		}
		out = append(out, converted)
	}
	return out
}

func seasonByNumber(seasons []*metastore.Season, number int) *metastore.Season {
	for _, season := range seasons {
		if season != nil && season.Number == number {
			return season
		}
	}
	return nil
}

func episodeByNumber(episodes []*metastore.Episode, number int) *metastore.Episode {
	for _, ep := range episodes {
		if ep != nil && ep.Number == number {
			return ep
		}
	}
	return nil
}

// finalSeasonNumber returns the highest regular season number, ignoring
// specials. Zero means no regular season is known.
func finalSeasonNumber(seasons []*metastore.Season) int {
	highest := 0
	for _, season := range seasons {
		if season != nil && season.Number > highest {
			highest = season.Number
		}
	}
	return highest
}
