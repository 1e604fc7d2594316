// Package config loads, normalizes, and validates tvmeta configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TVDB_API_KEY and TVMETA_CATALOG_TOKEN. The Config type centralizes every knob
// the CLI and daemon need: catalog credentials, cache windows, matching
// thresholds, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, ISO 639-2 language codes, and clear validation errors.
package config
