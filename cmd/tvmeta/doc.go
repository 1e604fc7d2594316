// Command tvmeta resolves series, episodes, and artwork against the local
// metadata cache and the remote catalog, and manages the cache.
//
// Every lookup command prints a table by default and JSON with --json. Logs
// go to stderr so stdout stays machine readable.
package main
