package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable. Missing catalog credentials
// are allowed; the engine then runs from cache only.
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if c.Warm.Concurrency < 1 {
		return errors.New("warm.concurrency must be at least 1")
	}
	return c.validateLogging()
}

func (c *Config) validateCatalog() error {
	for key, raw := range map[string]string{
		"catalog.base_url":         c.Catalog.BaseURL,
		"catalog.artwork_base_url": c.Catalog.ArtworkBaseURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", key, raw)
		}
	}
	if c.Catalog.Language == "und" {
		return errors.New("catalog.language must be a recognizable language code")
	}
	if c.Catalog.TimeoutSeconds < 0 {
		return errors.New("catalog.timeout_seconds must be positive")
	}
	if c.Catalog.RequestsPerSecond < 0 {
		return errors.New("catalog.requests_per_second must be >= 0")
	}
	if c.Catalog.RetryAttempts < 0 {
		return errors.New("catalog.retry_attempts must be >= 0")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.StaleAfterHours <= 0 {
		return errors.New("cache.stale_after_hours must be positive")
	}
	if c.Cache.RetentionHours <= 0 {
		return errors.New("cache.retention_hours must be positive")
	}
	if c.Cache.RetentionHours < c.Cache.StaleAfterHours {
		return errors.New("cache.retention_hours must be >= cache.stale_after_hours")
	}
	if c.Cache.SweepIntervalMinutes <= 0 {
		return errors.New("cache.sweep_interval_minutes must be positive")
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	for key, value := range map[string]float64{
		"matching.cache_accept_threshold": m.CacheAcceptThreshold,
		"matching.minor_gap":              m.MinorGap,
		"matching.significant_gap":        m.SignificantGap,
		"matching.major_gap":              m.MajorGap,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", key)
		}
	}
	if m.MinorGap > m.SignificantGap || m.SignificantGap > m.MajorGap {
		return errors.New("matching gaps must satisfy minor_gap <= significant_gap <= major_gap")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return errors.New("logging rotation limits must be >= 0")
	}
	return nil
}
