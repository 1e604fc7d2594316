package config

import (
	"fmt"
	"os"
	"strings"

	"tvmeta/internal/language"
)

func (c *Config) normalize() error {
	c.normalizeCatalog()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeWarm()
	c.Metrics.Bind = strings.TrimSpace(c.Metrics.Bind)
	return c.normalizeLogging()
}

func (c *Config) normalizeCatalog() {
	c.Catalog.Token = strings.TrimSpace(c.Catalog.Token)
	if c.Catalog.Token == "" {
		if value, ok := os.LookupEnv("TVMETA_CATALOG_TOKEN"); ok {
			c.Catalog.Token = strings.TrimSpace(value)
		}
	}
	c.Catalog.APIKey = strings.TrimSpace(c.Catalog.APIKey)
	if c.Catalog.APIKey == "" {
		if value, ok := os.LookupEnv("TVDB_API_KEY"); ok {
			c.Catalog.APIKey = strings.TrimSpace(value)
		}
	}
	c.Catalog.PIN = strings.TrimSpace(c.Catalog.PIN)
	if c.Catalog.PIN == "" {
		if value, ok := os.LookupEnv("TVDB_PIN"); ok {
			c.Catalog.PIN = strings.TrimSpace(value)
		}
	}
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = defaultCatalogBaseURL
	}
	c.Catalog.ArtworkBaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.ArtworkBaseURL), "/")
	if c.Catalog.ArtworkBaseURL == "" {
		c.Catalog.ArtworkBaseURL = defaultArtworkBaseURL
	}
	lang := strings.TrimSpace(c.Catalog.Language)
	if lang == "" {
		lang = defaultCatalogLanguage
	}
	c.Catalog.Language = language.ToISO3(lang)
	if c.Catalog.TimeoutSeconds == 0 {
		c.Catalog.TimeoutSeconds = defaultCatalogTimeout
	}
}

func (c *Config) normalizeCache() error {
	var err error
	if strings.TrimSpace(c.Cache.DBPath) == "" {
		c.Cache.DBPath = defaultDBPath
	}
	if c.Cache.DBPath, err = expandPath(strings.TrimSpace(c.Cache.DBPath)); err != nil {
		return fmt.Errorf("cache.db_path: %w", err)
	}
	if strings.TrimSpace(c.Cache.LockPath) == "" {
		c.Cache.LockPath = c.Cache.DBPath + lockSuffix
	}
	if c.Cache.LockPath, err = expandPath(strings.TrimSpace(c.Cache.LockPath)); err != nil {
		return fmt.Errorf("cache.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeWarm() {
	names := make([]string, 0, len(c.Warm.Series))
	seen := make(map[string]struct{}, len(c.Warm.Series))
	for _, name := range c.Warm.Series {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, trimmed)
	}
	c.Warm.Series = names
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	file := strings.TrimSpace(c.Logging.File)
	if file == "" {
		c.Logging.File = ""
		return nil
	}
	expanded, err := expandPath(file)
	if err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	c.Logging.File = expanded
	return nil
}
