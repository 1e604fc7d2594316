package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tvmeta/internal/language"
	"tvmeta/internal/logging"
	"tvmeta/internal/metrics"
	"tvmeta/internal/services"
)

const (
	// DefaultBaseURL is the public TVDB v4 endpoint.
	DefaultBaseURL = "https://api4.thetvdb.com/v4"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second

	tokenLifetime = 23 * time.Hour
	tokenLeeway   = time.Minute
	maxErrorBody  = 2048
)

// Settings supplies credentials and the preferred language. A blank token
// and API key is a valid state meaning cache-only operation.
type Settings interface {
	CatalogToken() string
	CatalogAPIKey() string
	CatalogPIN() string
	PreferredLanguage() string
}

// Source is the catalog surface consumed by the resolver.
type Source interface {
	Authorized() bool
	SearchSeries(ctx context.Context, name string) ([]SeriesCandidate, error)
	SeriesDetail(ctx context.Context, id int64) (*SeriesDetail, error)
	SeasonDetail(ctx context.Context, id int64) (*SeasonDetail, error)
	EpisodeDetail(ctx context.Context, id int64) (*EpisodeDetail, error)
}

// Client is an HTTP catalog client holding its own bearer token.
type Client struct {
	baseURL    string
	settings   Settings
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    *metrics.Collector
	now        func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

var _ Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRateLimit spaces requests to at most rps per second. Zero or negative
// disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records request counts and latency.
func WithMetrics(collector *metrics.Collector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithClock overrides the clock used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a catalog client. No request is made until the first call.
func New(baseURL string, settings Settings, opts ...Option) (*Client, error) {
	if settings == nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "new", "settings source required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "new", "invalid base url", err)
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		settings:   settings,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "catalog")
	return client, nil
}

// Authorized reports whether credentials are configured. It makes no request.
func (c *Client) Authorized() bool {
	c.mu.Lock()
	cached := c.token != ""
	c.mu.Unlock()
	if cached {
		return true
	}
	return strings.TrimSpace(c.settings.CatalogToken()) != "" || strings.TrimSpace(c.settings.CatalogAPIKey()) != ""
}

// SearchSeries searches for series by name. Results missing an id or name
// are dropped.
func (c *Client) SearchSeries(ctx context.Context, name string) ([]SeriesCandidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	params := url.Values{}
	params.Set("query", name)
	params.Set("type", "series")

	var payload envelope[[]wireSearchResult]
	if err := c.get(ctx, "search", "/search", params, &payload); err != nil {
		return nil, err
	}

	results := make([]SeriesCandidate, 0, len(payload.Data))
	for _, item := range payload.Data {
		id := item.id()
		if id <= 0 || strings.TrimSpace(item.Name) == "" {
			c.logger.Debug("dropping malformed search result",
				logging.String("object_id", item.ObjectID),
				logging.String("name", item.Name),
			)
			continue
		}
		results = append(results, SeriesCandidate{
			ID:         id,
			Name:       item.Name,
			Slug:       item.Slug,
			Image:      item.ImageURL,
			FirstAired: item.FirstAirTime,
			Year:       item.Year,
			Status:     item.Status,
			Overview:   item.Overview,
			Country:    item.Country,
			Language:   item.PrimaryLanguage,
			Aliases:    item.Aliases,
		})
	}
	return results, nil
}

// SeriesDetail fetches the extended series record with seasons and artwork.
func (c *Client) SeriesDetail(ctx context.Context, id int64) (*SeriesDetail, error) {
	if id <= 0 {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "series detail", "invalid series id", nil)
	}
	params := url.Values{}
	params.Set("meta", "translations")
	params.Set("short", "false")

	var payload envelope[*wireSeries]
	if err := c.get(ctx, "series", "/series/"+strconv.FormatInt(id, 10)+"/extended", params, &payload); err != nil {
		return nil, err
	}
	data := payload.Data
	if data == nil || data.ID <= 0 || strings.TrimSpace(data.Name) == "" {
		return nil, malformed("series detail", fmt.Sprintf("series %d missing id or name", id), nil)
	}

	detail := &SeriesDetail{
		Series: Series{
			ID:         data.ID,
			Name:       data.Name,
			Slug:       data.Slug,
			Image:      data.Image,
			FirstAired: data.FirstAired,
			LastAired:  data.LastAired,
			Status:     data.Status.Name,
			Overview:   data.Overview,
			Country:    data.OriginalCountry,
			Language:   data.OriginalLanguage,
		},
		Artworks: convertArtworks(data.Artworks),
	}
	for _, season := range data.Seasons {
		if season.ID <= 0 {
			continue
		}
		s := season.toSeason()
		if s.SeriesID == 0 {
			s.SeriesID = data.ID
		}
		detail.Seasons = append(detail.Seasons, s)
	}
	return detail, nil
}

// SeasonDetail fetches a season with its episodes and artwork.
func (c *Client) SeasonDetail(ctx context.Context, id int64) (*SeasonDetail, error) {
	if id <= 0 {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "season detail", "invalid season id", nil)
	}
	var payload envelope[*wireSeasonDetail]
	if err := c.get(ctx, "season", "/seasons/"+strconv.FormatInt(id, 10)+"/extended", nil, &payload); err != nil {
		return nil, err
	}
	data := payload.Data
	if data == nil || data.ID <= 0 {
		return nil, malformed("season detail", fmt.Sprintf("season %d missing id", id), nil)
	}

	detail := &SeasonDetail{
		Season:   data.toSeason(),
		Artworks: convertArtworks(data.Artwork),
	}
	for _, wire := range data.Episodes {
		if wire.ID <= 0 {
			continue
		}
		ep := wire.toEpisode()
		if ep.SeasonID == 0 {
			ep.SeasonID = detail.ID
		}
		if ep.SeriesID == 0 {
			ep.SeriesID = detail.SeriesID
		}
		if ep.SeasonNumber == 0 && detail.Number != 0 {
			ep.SeasonNumber = detail.Number
		}
		detail.Episodes = append(detail.Episodes, ep)
	}
	return detail, nil
}

// EpisodeDetail fetches the extended episode record.
func (c *Client) EpisodeDetail(ctx context.Context, id int64) (*EpisodeDetail, error) {
	if id <= 0 {
		return nil, services.Wrap(services.ErrNotFound, "catalog", "episode detail", "invalid episode id", nil)
	}
	var payload envelope[*wireEpisode]
	if err := c.get(ctx, "episode", "/episodes/"+strconv.FormatInt(id, 10)+"/extended", nil, &payload); err != nil {
		return nil, err
	}
	if payload.Data == nil || payload.Data.ID <= 0 {
		return nil, malformed("episode detail", fmt.Sprintf("episode %d missing id", id), nil)
	}
	return &EpisodeDetail{Episode: payload.Data.toEpisode()}, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	token, err := c.bearer(ctx)
	if err != nil {
		return err
	}

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)
	headers.Set("Accept", "application/json")
	if lang := language.AcceptLanguage(c.settings.PreferredLanguage()); lang != "" {
		headers.Set("Accept-Language", lang)
	}

	body, status, err := c.do(ctx, endpoint, http.MethodGet, target, headers, nil)
	if err != nil {
		if status == http.StatusUnauthorized {
			c.InvalidateToken()
		}
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return malformed(endpoint, "decode response", err)
	}
	return nil
}

// do performs one request and returns the body of a 2xx response. The
// returned status is zero when no response was received.
func (c *Client) do(ctx context.Context, endpoint, method, target string, headers http.Header, payload []byte) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, transportError(endpoint, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, target, reader)
	if err != nil {
		return nil, 0, transportError(endpoint, fmt.Errorf("build request: %w", err))
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		c.metrics.ObserveRemote(endpoint, 0, latency)
		c.logger.Debug("catalog request failed",
			logging.String("endpoint", endpoint),
			logging.Duration("latency", latency),
			logging.Error(err),
		)
		return nil, 0, transportError(endpoint, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveRemote(endpoint, resp.StatusCode, latency)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("catalog request rejected",
			logging.String("endpoint", endpoint),
			logging.Int("status", resp.StatusCode),
			logging.Duration("latency", latency),
		)
		return nil, resp.StatusCode, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, transportError(endpoint, fmt.Errorf("read body: %w", err))
	}
	c.logger.Debug("catalog request complete",
		logging.String("endpoint", endpoint),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
		logging.Int("bytes", len(body)),
	)
	return body, resp.StatusCode, nil
}
