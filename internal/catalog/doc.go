// Package catalog talks to a TVDB v4 compatible metadata API.
//
// Client issues exactly one authenticated request per call, paced by a rate
// limiter and bounded by a timeout. It never retries; WithRetry wraps any
// Source with a bounded retry policy for callers that want one. Errors are
// tagged with the services sentinels so the resolver can tell an
// unconfigured token from an unavailable remote.
package catalog
