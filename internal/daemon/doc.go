// Package daemon coordinates the long-running tvmetad process.
//
// It wires the resolution engine, the retention sweeper, the optional warm
// list, and the optional Prometheus listener into a single lifecycle with
// flock-based locking to prevent multiple instances against one database.
//
// Keep orchestration logic here: resolution lives in the resolver package and
// sweeping in the sweeper package, while the daemon focuses on startup,
// shutdown, and high level coordination.
package daemon
