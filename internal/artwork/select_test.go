package artwork_test

import (
	"testing"

	"tvmeta/internal/artwork"
	"tvmeta/internal/metastore"
)

func lang(code string) *string { return &code }

var english = artwork.Preferences{Language: "eng"}

func TestSelectBestExplicitLanguageBreaksTie(t *testing.T) {
	candidates := []metastore.Artwork{
		{ID: 1, Image: "/banners/untagged.jpg", Type: int(artwork.SeasonPoster), Width: 800, Height: 600, Score: 9},
		{ID: 2, Image: "/banners/english.jpg", Language: lang("eng"), Type: int(artwork.SeasonPoster), Width: 800, Height: 600, Score: 7},
	}
	selection, ok := artwork.SelectBest(candidates, artwork.ContextSeason, english)
	if !ok {
		t.Fatal("expected a selection")
	}
	if selection.Artwork.ID != 2 {
		t.Fatalf("expected explicit eng artwork, got id %d", selection.Artwork.ID)
	}
	if selection.URL != "https://artworks.thetvdb.com/banners/english.jpg" {
		t.Fatalf("unexpected url %q", selection.URL)
	}
}

func TestSelectBestResolutionBeatsLanguage(t *testing.T) {
	candidates := []metastore.Artwork{
		{ID: 1, Image: "/fra.jpg", Language: lang("fra"), Type: int(artwork.SeriesPoster), Width: 1200, Height: 1800},
		{ID: 2, Image: "/eng.jpg", Language: lang("eng"), Type: int(artwork.SeriesPoster), Width: 600, Height: 900},
	}
	// No preferred language: neither tagged image is acceptable, so both stay in
	// the pool and resolution decides. With a preferred language the pool narrows
	// first; see TestSelectBestPreferredLanguageNarrowsBeforeResolution.
	selection, ok := artwork.SelectBest(candidates, artwork.ContextSeries, artwork.Preferences{})
	if !ok {
		t.Fatal("expected a selection")
	}
	if selection.Artwork.ID != 1 {
		t.Fatalf("expected larger fra artwork, got id %d", selection.Artwork.ID)
	}
}

func TestSelectBestPreferredLanguageNarrowsBeforeResolution(t *testing.T) {
	candidates := []metastore.Artwork{
		{ID: 1, Image: "/fra.jpg", Language: lang("fra"), Type: int(artwork.SeriesPoster), Width: 1200, Height: 1800},
		{ID: 2, Image: "/eng.jpg", Language: lang("eng"), Type: int(artwork.SeriesPoster), Width: 600, Height: 900},
	}
	// The default catalog language is eng, so the larger fra poster is filtered
	// out before resolution is compared.
	selection, ok := artwork.SelectBest(candidates, artwork.ContextSeries, english)
	if !ok {
		t.Fatal("expected a selection")
	}
	if selection.Artwork.ID != 2 {
		t.Fatalf("expected smaller eng artwork under eng preference, got id %d", selection.Artwork.ID)
	}
}

func TestSelectBestLargeUntaggedBeatsSmallPreferred(t *testing.T) {
	candidates := []metastore.Artwork{
		{ID: 1, Image: "/plain.jpg", Type: int(artwork.SeriesPoster), Width: 1200, Height: 1800},
		{ID: 2, Image: "/eng.jpg", Language: lang("en"), Type: int(artwork.SeriesPoster), Width: 600, Height: 900},
	}
	selection, ok := artwork.SelectBest(candidates, artwork.ContextSeries, english)
	if !ok || selection.Artwork.ID != 1 {
		t.Fatalf("expected larger untagged artwork, got %+v", selection)
	}
}

func TestSelectBestFallsBackToForeignLanguage(t *testing.T) {
	candidates := []metastore.Artwork{
		{ID: 4, Image: "/deu.jpg", Language: lang("deu"), Type: int(artwork.SeasonBackground), Width: 1920, Height: 1080},
	}
	selection, ok := artwork.SelectBest(candidates, artwork.ContextSeason, english)
	if !ok || selection.Artwork.ID != 4 {
		t.Fatalf("expected foreign artwork fallback, got %+v ok=%v", selection, ok)
	}
}

func TestSelectBestPrefersAcceptableLanguagePartition(t *testing.T) {
	candidates := []metastore.Artwork{
		{ID: 1, Image: "/deu.jpg", Language: lang("deu"), Type: int(artwork.SeriesPoster), Width: 2000, Height: 3000},
		{ID: 2, Image: "/plain.jpg", Type: int(artwork.SeriesPoster), Width: 680, Height: 1000},
	}
	selection, ok := artwork.SelectBest(candidates, artwork.ContextSeries, english)
	if !ok || selection.Artwork.ID != 2 {
		t.Fatalf("expected untagged artwork from acceptable partition, got %+v", selection)
	}
}

func TestSelectBestFiltersByContext(t *testing.T) {
	candidates := []metastore.Artwork{
		{ID: 1, Image: "/banner.jpg", Type: int(artwork.SeriesBanner), Width: 758, Height: 140},
		{ID: 2, Image: "/season.jpg", Type: int(artwork.SeasonPoster), Width: 680, Height: 1000},
		{ID: 3, Image: "/logo.png", Type: int(artwork.ClearLogo), Width: 800, Height: 310},
	}
	if _, ok := artwork.SelectBest(candidates, artwork.ContextSeries, english); ok {
		t.Fatal("expected no series selection from banner, season and logo art")
	}
	selection, ok := artwork.SelectBest(candidates, artwork.ContextSeason, english)
	if !ok || selection.Artwork.ID != 2 {
		t.Fatalf("expected season poster, got %+v", selection)
	}
}

func TestSelectBestScoreBreaksRemainingTie(t *testing.T) {
	candidates := []metastore.Artwork{
		{ID: 1, Image: "/a.jpg", Type: int(artwork.SeriesBackground), Width: 1920, Height: 1080, Score: 3},
		{ID: 2, Image: "/b.jpg", Type: int(artwork.SeriesBackground), Width: 1920, Height: 1080, Score: 8},
		{ID: 3, Image: "/c.jpg", Type: int(artwork.SeriesBackground), Score: 100},
	}
	selection, ok := artwork.SelectBest(candidates, artwork.ContextSeries, english)
	if !ok || selection.Artwork.ID != 2 {
		t.Fatalf("expected highest score among largest, got %+v", selection)
	}
}

func TestSelectBestEmpty(t *testing.T) {
	if _, ok := artwork.SelectBest(nil, artwork.ContextSeason, english); ok {
		t.Fatal("expected no selection for empty input")
	}
}

func TestResolveURL(t *testing.T) {
	cases := []struct {
		ref, base, want string
	}{
		{"/banners/x.jpg", "", "https://artworks.thetvdb.com/banners/x.jpg"},
		{"banners/x.jpg", "https://img.example.com/", "https://img.example.com/banners/x.jpg"},
		{"https://cdn.example.com/x.jpg", "", "https://cdn.example.com/x.jpg"},
		{"//cdn.example.com/x.jpg", "", "https://cdn.example.com/x.jpg"},
		{"  ", "", ""},
	}
	for _, tc := range cases {
		if got := artwork.ResolveURL(tc.ref, tc.base); got != tc.want {
			t.Fatalf("ResolveURL(%q, %q) = %q, want %q", tc.ref, tc.base, got, tc.want)
		}
	}
}
