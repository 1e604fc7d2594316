package resolver_test

import (
	"context"
	"strings"
	"sync"

	"tvmeta/internal/catalog"
	"tvmeta/internal/services"
)

type fakeCatalog struct {
	mu sync.Mutex

	authorized bool
	searches   map[string][]catalog.SeriesCandidate
	series     map[int64]*catalog.SeriesDetail
	seasons    map[int64]*catalog.SeasonDetail
	episodes   map[int64]*catalog.EpisodeDetail
	failAll    error
	failEps    error
	searchGate chan struct{}
	// searchAborted is closed when a gated search sees its context end.
	searchAborted chan struct{}

	searchCalls  int
	seriesCalls  int
	seasonCalls  int
	episodeCalls int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		authorized: true,
		searches:   map[string][]catalog.SeriesCandidate{},
		series:     map[int64]*catalog.SeriesDetail{},
		seasons:    map[int64]*catalog.SeasonDetail{},
		episodes:   map[int64]*catalog.EpisodeDetail{},
	}
}

func (f *fakeCatalog) Authorized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authorized
}

func (f *fakeCatalog) SearchSeries(ctx context.Context, name string) ([]catalog.SeriesCandidate, error) {
	f.mu.Lock()
	f.searchCalls++
	gate, aborted := f.searchGate, f.searchAborted
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			if aborted != nil {
				close(aborted)
			}
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return nil, f.failAll
	}
	return f.searches[strings.ToLower(name)], nil
}

func (f *fakeCatalog) SeriesDetail(ctx context.Context, id int64) (*catalog.SeriesDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seriesCalls++
	if f.failAll != nil {
		return nil, f.failAll
	}
	detail, ok := f.series[id]
	if !ok {
		return nil, &catalog.StatusError{Endpoint: "series", StatusCode: 404}
	}
	return detail, nil
}

func (f *fakeCatalog) SeasonDetail(ctx context.Context, id int64) (*catalog.SeasonDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seasonCalls++
	if f.failAll != nil {
		return nil, f.failAll
	}
	detail, ok := f.seasons[id]
	if !ok {
		return nil, &catalog.StatusError{Endpoint: "season", StatusCode: 404}
	}
	return detail, nil
}

func (f *fakeCatalog) EpisodeDetail(ctx context.Context, id int64) (*catalog.EpisodeDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.episodeCalls++
	if f.failAll != nil {
		return nil, f.failAll
	}
	if f.failEps != nil {
		return nil, f.failEps
	}
	detail, ok := f.episodes[id]
	if !ok {
		return nil, &catalog.StatusError{Endpoint: "episode", StatusCode: 404}
	}
	return detail, nil
}

func (f *fakeCatalog) counts() (search, series, season, episode int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchCalls, f.seriesCalls, f.seasonCalls, f.episodeCalls
}

func (f *fakeCatalog) setFailure(err error) {
	f.mu.Lock()
	f.failAll = err
	f.mu.Unlock()
}

var errUnavailable = services.Wrap(services.ErrRemoteUnavailable, "fake", "call", "offline", nil)

// addEndedSeries registers a series with regular seasons 1..n plus specials.
// Season ids are seriesID*100+number and episode ids seasonID*100+number.
func (f *fakeCatalog) addSeries(id int64, name, status string, seasons int, episodesPerSeason int) {
	detail := &catalog.SeriesDetail{
		Series: catalog.Series{ID: id, Name: name, Status: status, Image: "/banners/posters/" + name + ".jpg"},
		Artworks: []catalog.Artwork{
			{ID: id*10 + 1, Image: "/series-poster.jpg", Type: 2, Width: 680, Height: 1000, Language: "eng"},
			{ID: id*10 + 2, Image: "/series-banner.jpg", Type: 1, Width: 758, Height: 140},
		},
	}
	for n := 0; n <= seasons; n++ {
		seasonID := id*100 + int64(n)
		detail.Seasons = append(detail.Seasons, catalog.Season{ID: seasonID, SeriesID: id, Number: n, Type: "official"})
		sd := &catalog.SeasonDetail{
			Season: catalog.Season{ID: seasonID, SeriesID: id, Number: n, Type: "official"},
			Artworks: []catalog.Artwork{
				{ID: seasonID*10 + 1, Image: "/season-untagged.jpg", Type: 7, Width: 680, Height: 1000, Score: 9},
				{ID: seasonID*10 + 2, Image: "/season-eng.jpg", Type: 7, Width: 680, Height: 1000, Score: 2, Language: "eng"},
			},
		}
		for e := 1; e <= episodesPerSeason; e++ {
			epID := seasonID*100 + int64(e)
			ep := catalog.Episode{ID: epID, SeriesID: id, SeasonID: seasonID, SeasonNumber: n, Number: e, Name: name + " episode"}
			sd.Episodes = append(sd.Episodes, ep)
			full := ep
			full.Overview = "full detail"
			if n == seasons && e == episodesPerSeason && status == "Ended" {
				full.FinaleType = "series"
			}
			f.episodes[epID] = &catalog.EpisodeDetail{Episode: full}
		}
		f.seasons[seasonID] = sd
	}
	detail.Seasons = append(detail.Seasons, catalog.Season{ID: id*100 + 99, SeriesID: id, Number: 1, Type: "dvd"})
	f.series[id] = detail
	key := strings.ToLower(name)
	f.searches[key] = append(f.searches[key], catalog.SeriesCandidate{ID: id, Name: name, Status: status})
}
