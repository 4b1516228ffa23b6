// Package errors defines typed sentinel errors for Satchel operations.
//
// These errors enable programmatic error handling using errors.Is() checks
// rather than string matching. Call sites wrap them with context using
// fmt.Errorf and the %w verb.
//
// # Usage
//
// Check for specific error conditions:
//
//	session, err := workflows.Unlock(ctx, opts)
//	if errors.Is(err, serrors.ErrAuthenticationFailed) {
//	    // Show "incorrect password" message
//	}
//
// Wrap errors with additional context:
//
//	if err != nil {
//	    return fmt.Errorf("%w: unwrapping primary key envelope", serrors.ErrAuthenticationFailed)
//	}
//
// # Error Categories
//
//   - Input/lifecycle errors: caller bugs (ErrInvalidInput, ErrNotInitialized)
//   - Cryptographic errors: wrong secret or tampered data (ErrAuthenticationFailed,
//     ErrIntegrityFailed), unknown versions (ErrUnsupportedFormat, ErrUnsupportedKDFVersion)
//   - Storage errors: enrollment and envelope store conditions
//
// None of these are retried inside the encryption layer: retrying with the
// same key never changes the outcome, and retrying with a different key
// requires new user input.
package errors
