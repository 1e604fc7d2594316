// Package sweeper runs the periodic cache retention sweep.
//
// Each pass takes an advisory file lock first so that only one process
// (daemon or CLI) deletes rows at a time. A pass that cannot take the lock is
// skipped, never queued.
package sweeper
