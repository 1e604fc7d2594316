package artwork

import (
	"slices"
	"strings"

	"tvmeta/internal/language"
	"tvmeta/internal/metastore"
)

// DefaultBaseURL hosts relative artwork references.
const DefaultBaseURL = "https://artworks.thetvdb.com"

// Preferences carries the caller's language and artwork host.
type Preferences struct {
	Language string
	BaseURL  string
}

// Selection is the chosen candidate with absolute image URLs.
type Selection struct {
	Artwork      metastore.Artwork
	Type         Type
	Context      Context
	URL          string
	ThumbnailURL string
}

// SelectBest filters candidates to the context's accepted types and returns
// the largest, breaking ties by explicit preferred language then catalog score.
func SelectBest(candidates []metastore.Artwork, ctx Context, prefs Preferences) (Selection, bool) {
	pool := make([]metastore.Artwork, 0, len(candidates))
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate.Image) == "" {
			continue
		}
		if ctx.Accepts(Type(candidate.Type)) {
			pool = append(pool, candidate)
		}
	}
	if len(pool) == 0 {
		return Selection{}, false
	}

	acceptable := make([]metastore.Artwork, 0, len(pool))
	for _, candidate := range pool {
		if untagged(candidate) || explicitMatch(candidate, prefs.Language) {
			acceptable = append(acceptable, candidate)
		}
	}
	if len(acceptable) > 0 {
		pool = acceptable
	}

	slices.SortStableFunc(pool, func(a, b metastore.Artwork) int {
		if areaA, areaB := a.Area(), b.Area(); areaA != areaB {
			if areaA > areaB {
				return -1
			}
			return 1
		}
		if langA, langB := explicitMatch(a, prefs.Language), explicitMatch(b, prefs.Language); langA != langB {
			if langA {
				return -1
			}
			return 1
		}
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	best := pool[0]
	selection := Selection{
		Artwork: best,
		Type:    Type(best.Type),
		Context: ctx,
		URL:     ResolveURL(best.Image, prefs.BaseURL),
	}
	if best.Thumbnail != "" {
		selection.ThumbnailURL = ResolveURL(best.Thumbnail, prefs.BaseURL)
	}
	return selection, true
}

func untagged(a metastore.Artwork) bool {
	return a.Language == nil || strings.TrimSpace(*a.Language) == ""
}

func explicitMatch(a metastore.Artwork, preferred string) bool {
	if untagged(a) || strings.TrimSpace(preferred) == "" {
		return false
	}
	return language.Same(*a.Language, preferred)
}

// ResolveURL turns a stored image reference into an absolute URL. Absolute
// references are returned unchanged and protocol-relative ones get https.
func ResolveURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return base + "/" + strings.TrimLeft(ref, "/")
}
