package aead

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"testing"

	serrors "github.com/teachertools/satchel/internal/errors"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := testKey(t)
	plaintext := []byte(`{"name":"Alex"}`)

	sealed, err := Seal(key, plaintext, nil)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if len(sealed.Nonce) != NonceSize {
		t.Fatalf("nonce is %d bytes, expected %d", len(sealed.Nonce), NonceSize)
	}

	opened, err := Open(key, sealed.Ciphertext, sealed.Nonce, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("round trip mismatch: got %q, want %q", opened, plaintext)
	}
}

func TestSealOpenWithAssociatedData(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("seat assignments")
	aad := []byte("owner-1\x00record-42")

	sealed, err := Seal(key, plaintext, aad)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if _, err := Open(key, sealed.Ciphertext, sealed.Nonce, aad); err != nil {
		t.Fatalf("Open with matching associated data failed: %v", err)
	}

	// A different context must not accept the same ciphertext.
	if _, err := Open(key, sealed.Ciphertext, sealed.Nonce, []byte("owner-2\x00record-42")); !errors.Is(err, serrors.ErrIntegrityFailed) {
		t.Errorf("expected ErrIntegrityFailed for relabeled blob, got %v", err)
	}
	if _, err := Open(key, sealed.Ciphertext, sealed.Nonce, nil); !errors.Is(err, serrors.ErrIntegrityFailed) {
		t.Errorf("expected ErrIntegrityFailed for stripped associated data, got %v", err)
	}
}

func TestOpenFailsClosed(t *testing.T) {
	key := testKey(t)
	sealed, err := Seal(key, []byte("protected"), nil)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	tamperedCiphertext := append([]byte(nil), sealed.Ciphertext...)
	tamperedCiphertext[0] ^= 0x01

	tamperedNonce := append([]byte(nil), sealed.Nonce...)
	tamperedNonce[0] ^= 0x01

	wrongKey := testKey(t)

	tests := []struct {
		name       string
		key        []byte
		ciphertext []byte
		nonce      []byte
	}{
		{"flipped ciphertext bit", key, tamperedCiphertext, sealed.Nonce},
		{"flipped nonce bit", key, sealed.Ciphertext, tamperedNonce},
		{"wrong key", wrongKey, sealed.Ciphertext, sealed.Nonce},
		{"truncated ciphertext", key, sealed.Ciphertext[:len(sealed.Ciphertext)-1], sealed.Nonce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plaintext, err := Open(tt.key, tt.ciphertext, tt.nonce, nil)
			if !errors.Is(err, serrors.ErrIntegrityFailed) {
				t.Errorf("expected ErrIntegrityFailed, got %v", err)
			}
			if plaintext != nil {
				t.Error("Open returned plaintext alongside an integrity failure")
			}
		})
	}
}

func TestInvalidKeySize(t *testing.T) {
	if _, err := Seal(make([]byte, 16), []byte("x"), nil); !errors.Is(err, serrors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for short key, got %v", err)
	}
	if _, err := Open(make([]byte, 16), []byte("x"), make([]byte, NonceSize), nil); !errors.Is(err, serrors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for short key, got %v", err)
	}
}

func TestOpenRejectsWrongNonceLength(t *testing.T) {
	key := testKey(t)
	if _, err := Open(key, []byte("x"), make([]byte, NonceSize-1), nil); !errors.Is(err, serrors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for short nonce, got %v", err)
	}
}

func TestNonceUniqueness(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("x")

	const samples = 10000
	seen := make(map[string]bool, samples)
	for i := 0; i < samples; i++ {
		sealed, err := Seal(key, plaintext, nil)
		if err != nil {
			t.Fatalf("Seal failed on sample %d: %v", i, err)
		}
		nonce := string(sealed.Nonce)
		if seen[nonce] {
			t.Fatalf("nonce repeated after %d samples", i)
		}
		seen[nonce] = true
	}
}

func TestZero(t *testing.T) {
	key := testKey(t)
	Zero(key)
	for i, b := range key {
		if b != 0 {
			t.Fatalf("byte %d not zeroed", i)
		}
	}
}
