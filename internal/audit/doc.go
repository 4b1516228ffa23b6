// Package audit records key lifecycle events to an append-only JSONL
// trail inside the vault's data directory.
//
// Entries cover enrollment, unlock attempts, rotation, recovery, and
// integrity failures, and contain metadata only. An entry never includes
// a secret, derived key, data key, or record plaintext. Logging is
// best-effort: an audit write failure never fails the operation it
// describes.
package audit
