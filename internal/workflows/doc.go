// Package workflows provides high-level orchestration for Satchel
// commands.
//
// Workflows coordinate the crypto layers (kdf, envelope, session, blob)
// with the storage backend to implement complete user-facing features.
// Each workflow handles a single command's business logic, independent of
// CLI concerns like flag parsing, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Reads the secret from the terminal
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Resolving the storage backend
//   - Deriving keys and driving the session lifecycle
//   - Performing the core operation
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - Enroll: creates the salt, data key, and primary key envelope
//   - Unlock: derives the KEK and opens an active session
//   - WriteRecord / ReadRecord / RemoveRecord / ListRecords: protected
//     record round-trips through an active session
//   - Rotate: re-wraps the data key under a new secret
//   - RecoverySetup / Recover: the optional recovery key envelope
//   - Status: non-protected vault metadata
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, so the
// CLI layer can provide user-facing messages without string matching:
//
//	result, err := workflows.Unlock(ctx, opts)
//	if errors.Is(err, serrors.ErrAuthenticationFailed) {
//	    // Show "incorrect password", never distinguished further
//	}
//
// Authentication and integrity failures are terminal; nothing here
// retries them.
package workflows
