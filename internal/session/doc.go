// Package session owns the in-memory key lifecycle for one authenticated
// session.
//
// A Store moves through three states:
//
//	Uninitialized -> Active -> Cleared
//
// Initialize derives the key-encryption key from the user secret, unwraps
// (or first creates) the data-encryption key, and transitions to Active.
// Encrypt and decrypt operations are valid only while Active and are safe
// for concurrent use: they only read the held key. Clear is exclusive,
// immediate, and terminal; after it, key material is zeroized and every
// operation fails with ErrNotInitialized.
//
// Key material must never be copied out of the store into caches, logs,
// or long-lived containers.
package session
