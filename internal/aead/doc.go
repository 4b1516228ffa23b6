// Package aead provides the authenticated encryption primitive used for
// both key wrapping and record encryption.
//
// The construction is XChaCha20-Poly1305, which provides confidentiality
// and integrity in one primitive and fails closed on any tag mismatch.
// The 24-byte extended nonce is generated fresh and randomly per Seal
// call; nonce reuse under the same key would break confidentiality, and
// the extended nonce space makes random generation safe for that
// invariant.
package aead
