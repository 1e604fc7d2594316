// Package daemonrun builds and runs the tvmetad process: logger, metrics
// collector, resolution engine, and daemon lifecycle.
package daemonrun
