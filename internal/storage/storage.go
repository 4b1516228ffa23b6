package storage

import (
	"context"
	"time"

	"github.com/teachertools/satchel/internal/envelope"
)

// Wrapped key purposes. The primary envelope is wrapped under the
// password-derived KEK; the recovery envelope under a separate random key.
// The two are never conflated.
const (
	PurposePrimary  = "primary"
	PurposeRecovery = "recovery"
)

// Enrollment is the per-user derivation record created once at enrollment.
// The salt is non-secret; the server stores it opaque.
type Enrollment struct {
	Salt       []byte `json:"salt"`
	KDFVersion int    `json:"kdf_version"`
}

// WrappedKey is the stored form of a wrapped data-encryption key plus the
// metadata the backend needs to replace it atomically.
type WrappedKey struct {
	Purpose    string `json:"purpose"`
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`
	KDFVersion int    `json:"kdf_version"`

	// Revision guards compare-and-replace on rotation: a replacement with a
	// stale revision fails instead of clobbering a concurrent swap.
	Revision int `json:"revision"`
}

// Envelope converts the stored form back to the crypto layer's type.
func (w WrappedKey) Envelope() *envelope.WrappedDEK {
	return &envelope.WrappedDEK{
		Ciphertext: w.Ciphertext,
		Nonce:      w.Nonce,
		KDFVersion: w.KDFVersion,
	}
}

// NewWrappedKey builds the stored form of a freshly wrapped DEK.
func NewWrappedKey(purpose string, wrapped *envelope.WrappedDEK) WrappedKey {
	return WrappedKey{
		Purpose:    purpose,
		Ciphertext: wrapped.Ciphertext,
		Nonce:      wrapped.Nonce,
		KDFVersion: wrapped.KDFVersion,
	}
}

// RecordEnvelope is one protected record as the backend stores it:
// an opaque ciphertext indexed only by non-protected metadata.
type RecordEnvelope struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Kind          string    `json:"kind"`
	Ciphertext    []byte    `json:"ciphertext"`
	Nonce         []byte    `json:"nonce"`
	FormatVersion int       `json:"format_version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Store is the wire contract with the storage backend. The backend never
// inspects or validates ciphertext contents, and never sees a secret, a
// derived key, or an unwrapped DEK.
type Store interface {
	// SaveEnrollment stores the salt and kdf version once, at enrollment.
	// Returns ErrAlreadyEnrolled if an enrollment record exists.
	SaveEnrollment(ctx context.Context, e Enrollment) error

	// FetchEnrollment retrieves the enrollment record before derivation.
	// Returns ErrNotEnrolled if none exists.
	FetchEnrollment(ctx context.Context) (Enrollment, error)

	// ReplaceEnrollment swaps the enrollment record on secret rotation.
	ReplaceEnrollment(ctx context.Context, e Enrollment) error

	// SaveWrappedKey stores a wrapped key for its purpose at revision 1.
	SaveWrappedKey(ctx context.Context, k WrappedKey) error

	// FetchWrappedKey retrieves the wrapped key for a purpose.
	// Returns ErrWrappedKeyNotFound if none exists.
	FetchWrappedKey(ctx context.Context, purpose string) (WrappedKey, error)

	// ReplaceWrappedKey swaps a wrapped key all-or-nothing. The stored
	// revision must equal expectedRevision or the call fails with
	// ErrWrappedKeyConflict; a reader never observes a half-written swap.
	ReplaceWrappedKey(ctx context.Context, k WrappedKey, expectedRevision int) error

	// PutRecord creates or replaces one record envelope, stored as-is.
	PutRecord(ctx context.Context, r RecordEnvelope) error

	// GetRecord returns the envelope fields verbatim.
	// Returns ErrRecordNotFound if the id is unknown.
	GetRecord(ctx context.Context, id string) (RecordEnvelope, error)

	// ListRecords returns all stored envelopes, metadata ordering only.
	ListRecords(ctx context.Context) ([]RecordEnvelope, error)

	// DeleteRecord removes a record envelope.
	// Returns ErrRecordNotFound if the id is unknown.
	DeleteRecord(ctx context.Context, id string) error
}
