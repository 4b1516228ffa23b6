package envelope

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/teachertools/satchel/internal/aead"
	serrors "github.com/teachertools/satchel/internal/errors"
)

// DEKSize is the length of a data-encryption key in bytes.
const DEKSize = 32

// wrapPurpose is authenticated into every key envelope so that a record
// blob can never be presented as a wrapped key, or vice versa.
var wrapPurpose = []byte("satchel/wrapped-dek/v1")

// WrappedDEK is the stored form of a data-encryption key: the DEK encrypted
// under a key-encryption key. It is the only server-visible artifact
// connecting a user to their DEK, and is opaque to the server.
type WrappedDEK struct {
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`

	// KDFVersion records which derivation parameters produced the wrapping
	// key, so the same KEK can be re-derived at unwrap time. Zero means the
	// wrapping key was not password-derived (e.g. a recovery key).
	KDFVersion int `json:"kdf_version"`
}

// WrapNewDEK generates a fresh random DEK and wraps it under kek.
// Called once, at first-ever encryption use for a user. Returns both the
// usable key and the storable wrapped form.
func WrapNewDEK(kek []byte, kdfVersion int) ([]byte, *WrappedDEK, error) {
	dek := make([]byte, DEKSize)
	if _, err := io.ReadFull(rand.Reader, dek); err != nil {
		return nil, nil, fmt.Errorf("failed to generate data key: %w", err)
	}

	wrapped, err := Wrap(kek, dek, kdfVersion)
	if err != nil {
		aead.Zero(dek)
		return nil, nil, err
	}

	return dek, wrapped, nil
}

// Wrap encrypts an existing DEK under kek with a fresh nonce.
func Wrap(kek, dek []byte, kdfVersion int) (*WrappedDEK, error) {
	if len(dek) != DEKSize {
		return nil, fmt.Errorf("%w: data key must be exactly %d bytes, got %d", serrors.ErrInvalidInput, DEKSize, len(dek))
	}

	sealed, err := aead.Seal(kek, dek, wrapPurpose)
	if err != nil {
		return nil, err
	}

	return &WrappedDEK{
		Ciphertext: sealed.Ciphertext,
		Nonce:      sealed.Nonce,
		KDFVersion: kdfVersion,
	}, nil
}

// Unwrap decrypts a stored WrappedDEK under kek.
//
// A tag mismatch fails with ErrAuthenticationFailed rather than a generic
// decode error: this is the mechanism by which a wrong secret is detected
// without ever comparing plaintext secrets.
func Unwrap(kek []byte, wrapped *WrappedDEK) ([]byte, error) {
	if wrapped == nil {
		return nil, fmt.Errorf("%w: wrapped data key is nil", serrors.ErrInvalidInput)
	}

	dek, err := aead.Open(kek, wrapped.Ciphertext, wrapped.Nonce, wrapPurpose)
	if err != nil {
		if errors.Is(err, serrors.ErrIntegrityFailed) {
			return nil, fmt.Errorf("%w: wrapped data key did not unwrap", serrors.ErrAuthenticationFailed)
		}
		return nil, err
	}

	return dek, nil
}

// Rewrap unwraps under oldKek and wraps the same DEK under newKek.
//
// Used on secret rotation: the DEK itself never changes, so every blob
// encrypted under it remains valid without re-encryption.
func Rewrap(oldKek, newKek []byte, wrapped *WrappedDEK, newKDFVersion int) (*WrappedDEK, error) {
	dek, err := Unwrap(oldKek, wrapped)
	if err != nil {
		return nil, err
	}
	defer aead.Zero(dek)

	return Wrap(newKek, dek, newKDFVersion)
}
