// Package blob converts between structured protected records and the
// versioned transport envelope exchanged with the storage backend.
//
// Records (rosters, seating charts) exist in plaintext only transiently in
// client memory. Their canonical byte form is JSON; the encrypted result
// travels as an Envelope carrying ciphertext, nonce, and a format_version.
// Decoding an unknown version fails with ErrUnsupportedFormat rather than
// guessing a layout.
package blob
