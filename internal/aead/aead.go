package aead

import (
	"crypto/rand"
	"fmt"
	"io"

	serrors "github.com/teachertools/satchel/internal/errors"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the symmetric key length in bytes.
const KeySize = chacha20poly1305.KeySize

// NonceSize is the XChaCha20-Poly1305 nonce length in bytes. The extended
// nonce makes random generation per Seal call safe against reuse.
const NonceSize = chacha20poly1305.NonceSizeX

// Sealed is the output of one authenticated encryption operation.
type Sealed struct {
	Ciphertext []byte
	Nonce      []byte
}

// Seal encrypts plaintext under key with a fresh random nonce.
//
// Additional data, when supplied, is authenticated but not encrypted,
// binding the ciphertext to its context (record id, owner id) so a blob
// cannot be relabeled or replayed under a different identity.
func Seal(key, plaintext, additionalData []byte) (Sealed, error) {
	c, err := chacha20poly1305.NewX(key)
	if err != nil {
		return Sealed{}, fmt.Errorf("%w: %v", serrors.ErrInvalidInput, err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return Sealed{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return Sealed{
		Ciphertext: c.Seal(nil, nonce, plaintext, additionalData),
		Nonce:      nonce,
	}, nil
}

// Open decrypts ciphertext and verifies its integrity tag. Any mismatch of
// key, nonce, ciphertext, or additional data fails with ErrIntegrityFailed;
// no partial plaintext is ever returned.
func Open(key, ciphertext, nonce, additionalData []byte) ([]byte, error) {
	c, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", serrors.ErrInvalidInput, err)
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be exactly %d bytes, got %d", serrors.ErrInvalidInput, NonceSize, len(nonce))
	}

	plaintext, err := c.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext did not verify", serrors.ErrIntegrityFailed)
	}

	return plaintext, nil
}

// Zero wipes sensitive byte slices so key material does not linger in memory.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
