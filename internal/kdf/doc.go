// Package kdf derives key-encryption keys from user secrets.
//
// Derivation uses Argon2id, a deliberately expensive memory-hard function,
// so that brute-forcing a secret from a captured salt is infeasible at
// scale. Cost parameters are versioned: the version number is persisted
// with the enrollment record, and ParamsForVersion resolves it back to
// concrete costs, so parameters can be strengthened over time without
// invalidating keys wrapped under older versions.
//
// Derivation is pure and deterministic. The derived key exists only in
// memory and is never persisted or transmitted.
package kdf
