package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"tvmeta/internal/services"
)

type loginRequest struct {
	APIKey string `json:"apikey"`
	PIN    string `json:"pin,omitempty"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// bearer returns the cached token, loading it from settings or exchanging
// the API key when absent or close to expiry.
func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && (c.tokenExpiry.IsZero() || c.now().Before(c.tokenExpiry.Add(-tokenLeeway))) {
		return c.token, nil
	}
	if err := c.loadTokenLocked(ctx); err != nil {
		return "", err
	}
	return c.token, nil
}

// RefreshToken discards the cached token and reloads it from settings,
// logging in again when only an API key is configured.
func (c *Client) RefreshToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	return c.loadTokenLocked(ctx)
}

// InvalidateToken drops the cached token so the next call reloads it.
func (c *Client) InvalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

func (c *Client) loadTokenLocked(ctx context.Context) error {
	if token := strings.TrimSpace(c.settings.CatalogToken()); token != "" {
		c.token = token
		c.tokenExpiry = time.Time{}
		return nil
	}
	apiKey := strings.TrimSpace(c.settings.CatalogAPIKey())
	if apiKey == "" {
		c.token = ""
		return services.Wrap(services.ErrAuthNotConfigured, "catalog", "token", "no token or api key configured", nil)
	}

	payload, err := json.Marshal(loginRequest{APIKey: apiKey, PIN: strings.TrimSpace(c.settings.CatalogPIN())})
	if err != nil {
		return malformed("login", "encode request", err)
	}
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	body, _, err := c.do(ctx, "login", http.MethodPost, c.baseURL+"/login", headers, payload)
	if err != nil {
		return err
	}
	var resp envelope[loginResponse]
	if err := json.Unmarshal(body, &resp); err != nil {
		return malformed("login", "decode response", err)
	}
	if strings.TrimSpace(resp.Data.Token) == "" {
		return malformed("login", "response missing token", nil)
	}
	c.token = resp.Data.Token
	c.tokenExpiry = c.now().Add(tokenLifetime)
	c.logger.Info("catalog login succeeded")
	return nil
}
