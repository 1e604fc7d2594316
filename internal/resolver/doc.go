// Package resolver coordinates the metadata cache and the remote catalog.
//
// Engine answers series, episode, and artwork lookups from the SQLite cache
// when a cached record is good enough, and otherwise races the cache against
// a fresh catalog search, keeping whichever scores higher. Remote results are
// written back opportunistically; a failed write-back is logged and the
// resolved record is still returned. Without catalog credentials the engine
// serves whatever is cached regardless of age.
//
// Not-found is reported as a nil result with a nil error. Errors are only
// returned when every fallback path failed and the cache itself could not be
// read.
package resolver
