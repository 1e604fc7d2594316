// Package language normalizes language codes between the ISO 639-1 form used
// in configuration and HTTP headers and the ISO 639-2 form the catalog tags
// artwork and translations with.
package language
