// Package envelope implements the wrap/unwrap transform between a
// data-encryption key and its stored form.
//
// # Envelope Architecture
//
// Satchel uses a two-stage envelope scheme:
//
//  1. A random 256-bit data-encryption key (DEK) encrypts all protected
//     records for a user
//  2. The DEK is stored wrapped (encrypted) under a key-encryption key
//     (KEK) derived from the user's secret
//  3. Rotating the secret re-wraps the DEK under a new KEK; the DEK and
//     every existing record blob stay untouched
//
// The server only ever sees the wrapped form. Unwrapping with a KEK
// derived from the wrong secret fails authentication, which is how an
// incorrect password is detected without storing anything comparable to
// the password itself.
package envelope
