// Package services defines shared utilities consumed by the resolution engine
// and its collaborators.
//
// Key responsibilities:
//   - Context helpers that stamp series IDs, operation names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (auth missing, remote unavailable, persistence) with errors.Is.
//
// Use these helpers when wiring new components so fallback decisions and log
// fields stay uniform across the engine, the CLI, and the daemon.
package services
