// Package daemonctl inspects and stops a running tvmetad from another
// process using the daemon's lock and pid files.
package daemonctl
