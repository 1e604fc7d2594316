package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"tvmeta/internal/config"
)

func TestLoadDefaultConfigUsesEnvAndExpandsPaths(t *testing.T) {
	t.Setenv("TVDB_API_KEY", "env-key")
	t.Setenv("TVMETA_CATALOG_TOKEN", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantDB := filepath.Join(tempHome, ".local", "share", "tvmeta", "metadata.db")
	if cfg.Cache.DBPath != wantDB {
		t.Fatalf("unexpected db path: got %q want %q", cfg.Cache.DBPath, wantDB)
	}
	if cfg.Cache.LockPath != wantDB+".sweep.lock" {
		t.Fatalf("unexpected lock path: %q", cfg.Cache.LockPath)
	}
	if cfg.Catalog.APIKey != "env-key" {
		t.Fatalf("expected api key from env, got %q", cfg.Catalog.APIKey)
	}
	if cfg.Catalog.Token != "" {
		t.Fatalf("expected empty token, got %q", cfg.Catalog.Token)
	}
	if !cfg.HasCatalogCredentials() {
		t.Fatal("expected credentials to be reported")
	}
	if cfg.CatalogTimeout() != 10*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.CatalogTimeout())
	}
	if cfg.StaleAfter() != 24*time.Hour || cfg.Retention() != 168*time.Hour {
		t.Fatalf("unexpected windows: stale=%s retention=%s", cfg.StaleAfter(), cfg.Retention())
	}
	if cfg.Matching.CacheAcceptThreshold != 0.98 {
		t.Fatalf("unexpected accept threshold %v", cfg.Matching.CacheAcceptThreshold)
	}
}

func TestLoadWithoutCredentialsIsAllowed(t *testing.T) {
	t.Setenv("TVDB_API_KEY", "")
	t.Setenv("TVMETA_CATALOG_TOKEN", "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HasCatalogCredentials() {
		t.Fatal("expected no credentials")
	}
}

func TestLoadCustomPathNormalizesValues(t *testing.T) {
	t.Setenv("TVDB_API_KEY", "")
	t.Setenv("TVMETA_CATALOG_TOKEN", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[catalog]
token = "  tok  "
language = "fr"
base_url = "https://catalog.example/v4/"

[cache]
db_path = "~/meta/cache.db"
stale_after_hours = 12

[warm]
series = ["South Park", " south park ", "", "Doctor Who"]

[logging]
format = "JSON"
level = "DEBUG"
file = "~/logs/tvmeta.log"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Catalog.Token != "tok" {
		t.Fatalf("expected trimmed token, got %q", cfg.Catalog.Token)
	}
	if cfg.Catalog.Language != "fra" {
		t.Fatalf("expected ISO 639-2 language, got %q", cfg.Catalog.Language)
	}
	if cfg.Catalog.BaseURL != "https://catalog.example/v4" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Catalog.BaseURL)
	}
	if cfg.Cache.DBPath != filepath.Join(tempHome, "meta", "cache.db") {
		t.Fatalf("unexpected db path %q", cfg.Cache.DBPath)
	}
	if got := strings.Join(cfg.Warm.Series, "|"); got != "South Park|Doctor Who" {
		t.Fatalf("unexpected warm list %q", got)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging settings %+v", cfg.Logging)
	}
	if cfg.Logging.File != filepath.Join(tempHome, "logs", "tvmeta.log") {
		t.Fatalf("unexpected log file %q", cfg.Logging.File)
	}
	settings := cfg.CatalogSettings()
	if settings.CatalogToken() != "tok" || settings.PreferredLanguage() != "fra" {
		t.Fatalf("settings accessor mismatch: %q %q", settings.CatalogToken(), settings.PreferredLanguage())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"retention below stale", func(c *config.Config) { c.Cache.RetentionHours = 1 }, "retention_hours"},
		{"threshold out of range", func(c *config.Config) { c.Matching.CacheAcceptThreshold = 1.5 }, "cache_accept_threshold"},
		{"gap ordering", func(c *config.Config) { c.Matching.MinorGap = 0.6 }, "minor_gap"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"base url scheme", func(c *config.Config) { c.Catalog.BaseURL = "ftp://x" }, "catalog.base_url"},
		{"warm concurrency", func(c *config.Config) { c.Warm.Concurrency = 0 }, "warm.concurrency"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error %q", tc.want, err)
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}

func TestEncodeMasksCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog.Token = "secret-token"
	cfg.Catalog.APIKey = "secret-key"
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Fatalf("expected credentials masked, got:\n%s", data)
	}
}
