// Package utils provides small shared helpers: terminal passphrase
// input, vault root discovery, and system identity lookups.
package utils
