// Package storage defines the wire contract with the envelope storage
// backend and provides two implementations.
//
// The backend persists three artifact kinds, all opaque:
//
//   - Enrollment: per-user salt plus kdf version, created once
//   - WrappedKey: the data key encrypted under the password-derived KEK
//     (purpose "primary") or a recovery key (purpose "recovery")
//   - RecordEnvelope: ciphertext, nonce, and format version for one
//     protected record, indexed only by non-protected metadata
//
// Filestore keeps everything in a local .satchel/ directory and backs the
// CLI. Client speaks the same fields over HTTP to a remote backend.
// Transport security and retry policy are the caller's concern; nothing
// in this package retries a failed operation.
package storage
