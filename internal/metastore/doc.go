// Package metastore persists catalog series, seasons, episodes, and artwork in
// SQLite so repeated lookups can skip the remote catalog.
//
// Every record is keyed by its catalog external ID and written through
// idempotent upserts that stamp a last-synced time. Parents and children are
// linked by indexed back-references rather than foreign keys; SweepOlderThan
// removes anything past the retention window in the order artworks, episodes,
// seasons, series. Reads return nil, nil for missing rows and every database
// failure carries the services.ErrPersistence marker.
//
// The schema lives in embedded migrations applied on Open. The database runs
// in WAL mode so sweeps and writes never block concurrent readers.
package metastore
