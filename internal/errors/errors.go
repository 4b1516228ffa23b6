package errors

import "errors"

// Input and lifecycle errors indicate caller bugs, not user-facing failures.
var (
	// ErrInvalidInput indicates malformed parameters (empty secret, wrong salt length, nil envelope).
	ErrInvalidInput = errors.New("invalid input parameters")

	// ErrNotInitialized indicates an operation was attempted outside an active session.
	ErrNotInitialized = errors.New("session key store is not active")
)

// Cryptographic errors indicate failures during key unwrapping or record decryption.
var (
	// ErrAuthenticationFailed indicates the wrapped data key could not be unwrapped.
	// This is how a wrong secret is detected; it is never distinguished further.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrIntegrityFailed indicates a ciphertext failed its integrity check.
	// No partial plaintext is ever returned alongside this error.
	ErrIntegrityFailed = errors.New("integrity check failed")

	// ErrUnsupportedFormat indicates an encrypted blob carries an unknown format version.
	ErrUnsupportedFormat = errors.New("unsupported record format version")

	// ErrUnsupportedKDFVersion indicates a stored kdf_version has no known parameter set.
	ErrUnsupportedKDFVersion = errors.New("unsupported key derivation version")
)

// Storage errors indicate issues with the enrollment and envelope store.
var (
	// ErrNotEnrolled indicates no enrollment record exists for this vault.
	ErrNotEnrolled = errors.New("vault has not been enrolled")

	// ErrAlreadyEnrolled indicates the vault already has an enrollment record.
	ErrAlreadyEnrolled = errors.New("vault has already been enrolled")

	// ErrWrappedKeyNotFound indicates no wrapped key exists for the requested purpose.
	ErrWrappedKeyNotFound = errors.New("wrapped key not found")

	// ErrWrappedKeyConflict indicates a wrapped key replacement lost a revision race.
	ErrWrappedKeyConflict = errors.New("wrapped key was modified concurrently")

	// ErrRecordNotFound indicates the requested record envelope could not be located.
	ErrRecordNotFound = errors.New("record not found")
)
