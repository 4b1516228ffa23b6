package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/teachertools/satchel/internal/aead"
	"github.com/teachertools/satchel/internal/blob"
	"github.com/teachertools/satchel/internal/envelope"
	serrors "github.com/teachertools/satchel/internal/errors"
	"github.com/teachertools/satchel/internal/kdf"
)

type state int

const (
	stateUninitialized state = iota
	stateActive
	stateCleared
)

// Binding is the associated data that ties an encrypted record to its
// identity. It is authenticated but not encrypted, so a blob cannot be
// silently relabeled or replayed under a different record or owner.
type Binding struct {
	RecordID string
	OwnerID  string
}

func (b Binding) bytes() []byte {
	if b == (Binding{}) {
		return nil
	}
	// NUL-delimited so ("ab","c") and ("a","bc") never collide.
	return []byte(b.OwnerID + "\x00" + b.RecordID)
}

// Store holds the unwrapped data-encryption key for the duration of one
// authenticated session. It is the only legitimate residency of key
// material while active, and guarantees the key is unreachable after
// Clear.
//
// Stores are explicitly constructed and injected, never ambient globals,
// so tests can assert cleared behavior without cross-test leakage.
type Store struct {
	mu         sync.RWMutex
	st         state
	kek        []byte
	dek        []byte
	kdfVersion int
}

// NewStore returns an uninitialized session key store.
func NewStore() *Store {
	return &Store{}
}

// Initialize derives the KEK from secret and salt, then installs the DEK:
// unwrapping the stored envelope when wrapped is non-nil, or generating a
// fresh DEK on first use. On first use the returned WrappedDEK must be
// persisted; otherwise the return is nil.
//
// On derivation or unwrap failure the store remains uninitialized and the
// error surfaces untouched. Cancellation before key material is installed
// also leaves the store uninitialized.
func (s *Store) Initialize(ctx context.Context, secret, salt []byte, wrapped *envelope.WrappedDEK, params kdf.Params) (*envelope.WrappedDEK, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.st {
	case stateActive:
		return nil, fmt.Errorf("%w: session is already active", serrors.ErrInvalidInput)
	case stateCleared:
		return nil, fmt.Errorf("%w: store has been cleared", serrors.ErrNotInitialized)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kek, err := kdf.Derive(secret, salt, params)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		aead.Zero(kek)
		return nil, err
	}

	var dek []byte
	var created *envelope.WrappedDEK
	if wrapped == nil {
		dek, created, err = envelope.WrapNewDEK(kek, params.Version)
	} else {
		dek, err = envelope.Unwrap(kek, wrapped)
	}
	if err != nil {
		aead.Zero(kek)
		return nil, err
	}

	s.kek = kek
	s.dek = dek
	s.kdfVersion = params.Version
	s.st = stateActive
	return created, nil
}

// Active reports whether the store currently holds a usable key.
func (s *Store) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st == stateActive
}

// EncryptRecord serializes record to its canonical byte form and seals it
// under the live DEK. Valid only while active.
func (s *Store) EncryptRecord(record any, binding Binding) (*blob.Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.st != stateActive {
		return nil, serrors.ErrNotInitialized
	}

	data, err := blob.Encode(record)
	if err != nil {
		return nil, err
	}

	sealed, err := aead.Seal(s.dek, data, binding.bytes())
	aead.Zero(data)
	if err != nil {
		return nil, err
	}

	return &blob.Envelope{
		Ciphertext:    sealed.Ciphertext,
		Nonce:         sealed.Nonce,
		FormatVersion: blob.FormatVersion,
	}, nil
}

// DecryptRecord opens an envelope and deserializes it into record.
// Integrity failures propagate untouched; the caller must treat them as
// "cannot display this record", never as empty data.
func (s *Store) DecryptRecord(env *blob.Envelope, binding Binding, record any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.st != stateActive {
		return serrors.ErrNotInitialized
	}
	if env == nil {
		return fmt.Errorf("%w: envelope is nil", serrors.ErrInvalidInput)
	}
	if err := blob.CheckVersion(env.FormatVersion); err != nil {
		return err
	}

	plaintext, err := aead.Open(s.dek, env.Ciphertext, env.Nonce, binding.bytes())
	if err != nil {
		return err
	}
	defer aead.Zero(plaintext)

	return blob.Decode(plaintext, record)
}

// Rewrap wraps the live DEK under a KEK derived from a new secret and
// salt. Used on secret rotation: the DEK never changes, so existing
// envelopes stay valid.
func (s *Store) Rewrap(newSecret, newSalt []byte, params kdf.Params) (*envelope.WrappedDEK, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.st != stateActive {
		return nil, serrors.ErrNotInitialized
	}

	newKek, err := kdf.Derive(newSecret, newSalt, params)
	if err != nil {
		return nil, err
	}
	defer aead.Zero(newKek)

	return envelope.Wrap(newKek, s.dek, params.Version)
}

// WrapUnder wraps the live DEK under an externally supplied high-entropy
// key, such as a recovery key. The resulting envelope carries kdf version
// zero since no derivation is involved.
func (s *Store) WrapUnder(key []byte) (*envelope.WrappedDEK, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.st != stateActive {
		return nil, serrors.ErrNotInitialized
	}

	return envelope.Wrap(key, s.dek, 0)
}

// KDFVersion returns the derivation version the active KEK was derived
// with, or zero when the store is not active.
func (s *Store) KDFVersion() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.st != stateActive {
		return 0
	}
	return s.kdfVersion
}

// Clear wipes the KEK and DEK immediately and is terminal: every
// subsequent operation fails with ErrNotInitialized. Must be invoked on
// every session-ending path.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	aead.Zero(s.kek)
	aead.Zero(s.dek)
	s.kek = nil
	s.dek = nil
	s.kdfVersion = 0
	s.st = stateCleared
}
