package config

const (
	defaultConfigPath           = "~/.config/tvmeta/config.toml"
	defaultDBPath               = "~/.local/share/tvmeta/metadata.db"
	defaultCatalogBaseURL       = "https://api4.thetvdb.com/v4"
	defaultArtworkBaseURL       = "https://artworks.thetvdb.com"
	defaultCatalogLanguage      = "eng"
	defaultCatalogTimeout       = 10
	defaultRequestsPerSecond    = 20
	defaultStaleAfterHours      = 24
	defaultRetentionHours       = 168
	defaultSweepIntervalMinutes = 60
	defaultCacheAcceptThreshold = 0.98
	defaultMinorGap             = 0.1
	defaultSignificantGap       = 0.3
	defaultMajorGap             = 0.5
	defaultWarmConcurrency      = 4
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogMaxSizeMB         = 50
	defaultLogMaxBackups        = 5
	defaultLogMaxAgeDays        = 30
	lockSuffix                  = ".sweep.lock"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Catalog: Catalog{
			BaseURL:           defaultCatalogBaseURL,
			ArtworkBaseURL:    defaultArtworkBaseURL,
			Language:          defaultCatalogLanguage,
			TimeoutSeconds:    defaultCatalogTimeout,
			RequestsPerSecond: defaultRequestsPerSecond,
		},
		Cache: Cache{
			DBPath:               defaultDBPath,
			StaleAfterHours:      defaultStaleAfterHours,
			RetentionHours:       defaultRetentionHours,
			SweepIntervalMinutes: defaultSweepIntervalMinutes,
		},
		Matching: Matching{
			CacheAcceptThreshold: defaultCacheAcceptThreshold,
			MinorGap:             defaultMinorGap,
			SignificantGap:       defaultSignificantGap,
			MajorGap:             defaultMajorGap,
		},
		Warm: Warm{
			Concurrency: defaultWarmConcurrency,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
