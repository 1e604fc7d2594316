package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Catalog contains connection settings for the remote series catalog.
type Catalog struct {
	BaseURL           string  `toml:"base_url"`
	ArtworkBaseURL    string  `toml:"artwork_base_url"`
	Token             string  `toml:"token"`
	APIKey            string  `toml:"api_key"`
	PIN               string  `toml:"pin"`
	Language          string  `toml:"language"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	// RetryAttempts wraps the client in a retrying decorator when > 0.
	// The resolution engine itself never retries.
	RetryAttempts int `toml:"retry_attempts"`
}

// Cache contains settings for the SQLite metadata cache.
type Cache struct {
	DBPath               string `toml:"db_path"`
	StaleAfterHours      int    `toml:"stale_after_hours"`
	RetentionHours       int    `toml:"retention_hours"`
	SweepIntervalMinutes int    `toml:"sweep_interval_minutes"`
	LockPath             string `toml:"lock_path"`
}

// Matching contains the score thresholds used when comparing cached and
// remote candidates.
type Matching struct {
	CacheAcceptThreshold float64 `toml:"cache_accept_threshold"`
	MinorGap             float64 `toml:"minor_gap"`
	SignificantGap       float64 `toml:"significant_gap"`
	MajorGap             float64 `toml:"major_gap"`
}

// Warm contains settings for batch pre-resolution of series names.
type Warm struct {
	Concurrency int      `toml:"concurrency"`
	Series      []string `toml:"series"`
}

// Metrics contains the Prometheus listener configuration for the daemon.
type Metrics struct {
	Bind string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Config encapsulates all configuration values for tvmeta.
//
// Configuration sections by subsystem:
//   - Catalog: remote catalog endpoint, credentials, and request pacing
//   - Cache: database location, staleness, and retention windows
//   - Matching: cache acceptance and score gap thresholds
//   - Warm: names resolved ahead of time and batch concurrency
//   - Metrics: daemon Prometheus listener
//   - Logging: log format, level, and rotating file output
type Config struct {
	Catalog  Catalog  `toml:"catalog"`
	Cache    Cache    `toml:"cache"`
	Matching Matching `toml:"matching"`
	Warm     Warm     `toml:"warm"`
	Metrics  Metrics  `toml:"metrics"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tvmeta.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories holding the database and log file.
func (c *Config) EnsureDirectories() error {
	dirs := []string{filepath.Dir(c.Cache.DBPath)}
	if c.Logging.File != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CatalogTimeout returns the per-request timeout for catalog calls.
func (c *Config) CatalogTimeout() time.Duration {
	return time.Duration(c.Catalog.TimeoutSeconds) * time.Second
}

// StaleAfter returns the age after which cached records are refreshed.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Cache.StaleAfterHours) * time.Hour
}

// Retention returns the age after which the sweep deletes cached records.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Cache.RetentionHours) * time.Hour
}

// SweepInterval returns how often the daemon runs the retention sweep.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Cache.SweepIntervalMinutes) * time.Minute
}

// HasCatalogCredentials reports whether a token or API key is configured.
func (c *Config) HasCatalogCredentials() bool {
	return strings.TrimSpace(c.Catalog.Token) != "" || strings.TrimSpace(c.Catalog.APIKey) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders cfg as TOML with credentials masked.
func (c *Config) Encode() ([]byte, error) {
	masked := *c
	masked.Catalog.Token = mask(masked.Catalog.Token)
	masked.Catalog.APIKey = mask(masked.Catalog.APIKey)
	masked.Catalog.PIN = mask(masked.Catalog.PIN)
	data, err := toml.Marshal(masked)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func mask(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return "********"
}
