package kdf

import (
	"crypto/rand"
	"fmt"
	"io"

	serrors "github.com/teachertools/satchel/internal/errors"

	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of a per-user derivation salt in bytes.
const SaltSize = 16

// KeySize is the length of a derived key-encryption key in bytes.
const KeySize = 32

// DefaultVersion is the parameter version used for new enrollments.
const DefaultVersion = 1

// Params describes one versioned Argon2id cost configuration.
//
// The version travels with the enrollment record so that costs can be
// raised over time without breaking keys wrapped under older parameters.
type Params struct {
	Version     int
	Time        uint32
	MemoryKiB   uint32
	Parallelism uint8
}

// ParamsForVersion resolves a stored kdf_version to its cost parameters.
// Unknown versions fail rather than falling back to weaker defaults.
func ParamsForVersion(version int) (Params, error) {
	switch version {
	case 1:
		// time=3, memory=64MiB, parallelism=4.
		return Params{Version: 1, Time: 3, MemoryKiB: 64 * 1024, Parallelism: 4}, nil
	default:
		return Params{}, fmt.Errorf("%w: kdf version %d", serrors.ErrUnsupportedKDFVersion, version)
	}
}

// NewSalt generates a fresh random salt for enrollment.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Derive stretches a low-entropy user secret into a 256-bit key-encryption
// key using Argon2id. Identical inputs always yield the identical key, which
// is what makes the KEK reproducible on every login without storing it.
func Derive(secret, salt []byte, params Params) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: secret must not be empty", serrors.ErrInvalidInput)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be exactly %d bytes, got %d", serrors.ErrInvalidInput, SaltSize, len(salt))
	}
	if params.Time == 0 || params.MemoryKiB == 0 || params.Parallelism == 0 {
		return nil, fmt.Errorf("%w: derivation cost parameters must not be zero", serrors.ErrInvalidInput)
	}

	return argon2.IDKey(secret, salt, params.Time, params.MemoryKiB, params.Parallelism, KeySize), nil
}
