package workflows

import (
	"context"
	"errors"
	"time"

	"github.com/teachertools/satchel/internal/audit"
	"github.com/teachertools/satchel/internal/blob"
	serrors "github.com/teachertools/satchel/internal/errors"
	"github.com/teachertools/satchel/internal/session"
	"github.com/teachertools/satchel/internal/storage"

	"github.com/google/uuid"
)

// WriteRecordOptions configures one protected-record write.
type WriteRecordOptions struct {
	Session *session.Store
	Store   storage.Store

	// ID of the record to replace. Empty creates a new record.
	ID string

	// Name is a non-protected display label (e.g. "Period 1"), stored as
	// plaintext metadata. It must never contain student data.
	Name string

	// Kind is the record kind metadata (blob.KindRoster, ...).
	Kind string

	// OwnerID is authenticated into the envelope so the blob cannot be
	// replayed under a different account.
	OwnerID string

	// Record is the plaintext domain object to encrypt.
	Record any
}

// WriteRecordResult contains the outcome of a record write.
type WriteRecordResult struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WriteRecord encrypts a protected record in the active session and
// persists the resulting envelope. The backend stores it as-is, indexed
// only by the non-protected metadata.
func WriteRecord(ctx context.Context, opts WriteRecordOptions) (*WriteRecordResult, error) {
	id := opts.ID
	now := time.Now().UTC()
	createdAt := now

	if id == "" {
		id = uuid.New().String()
	} else if existing, err := opts.Store.GetRecord(ctx, id); err == nil {
		createdAt = existing.CreatedAt
	}

	env, err := opts.Session.EncryptRecord(opts.Record, session.Binding{RecordID: id, OwnerID: opts.OwnerID})
	if err != nil {
		return nil, err
	}

	record := storage.RecordEnvelope{
		ID:            id,
		Name:          opts.Name,
		Kind:          opts.Kind,
		Ciphertext:    env.Ciphertext,
		Nonce:         env.Nonce,
		FormatVersion: env.FormatVersion,
		CreatedAt:     createdAt,
		UpdatedAt:     now,
	}
	if err := opts.Store.PutRecord(ctx, record); err != nil {
		return nil, err
	}

	return &WriteRecordResult{ID: id, CreatedAt: createdAt, UpdatedAt: now}, nil
}

// ReadRecordOptions configures one protected-record read.
type ReadRecordOptions struct {
	Session *session.Store
	Store   storage.Store

	// ID of the record to fetch and decrypt.
	ID string

	// OwnerID must match the value the record was written under.
	OwnerID string

	// Out receives the decrypted record; it must be a pointer.
	Out any

	// UserEmail and UserUUID identify the actor in the audit trail.
	UserEmail string
	UserUUID  string
}

// ReadRecordResult contains the non-protected metadata of a decrypted record.
type ReadRecordResult struct {
	Name      string
	Kind      string
	UpdatedAt time.Time
}

// ReadRecord fetches a record envelope and decrypts it in the active
// session. An integrity failure is audited and propagated untouched: the
// caller must treat it as "cannot display this record", never as empty
// data.
func ReadRecord(ctx context.Context, opts ReadRecordOptions) (*ReadRecordResult, error) {
	record, err := opts.Store.GetRecord(ctx, opts.ID)
	if err != nil {
		return nil, err
	}

	env := &blob.Envelope{
		Ciphertext:    record.Ciphertext,
		Nonce:         record.Nonce,
		FormatVersion: record.FormatVersion,
	}
	binding := session.Binding{RecordID: record.ID, OwnerID: opts.OwnerID}

	if err := opts.Session.DecryptRecord(env, binding, opts.Out); err != nil {
		if errors.Is(err, serrors.ErrIntegrityFailed) {
			audit.Log(audit.Entry{
				User:       opts.UserEmail,
				UserUUID:   opts.UserUUID,
				Operation:  audit.OpIntegrityFailure,
				RecordID:   record.ID,
				RecordKind: record.Kind,
			})
		}
		return nil, err
	}

	return &ReadRecordResult{
		Name:      record.Name,
		Kind:      record.Kind,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

// ListRecords returns the stored envelopes' non-protected metadata without
// decrypting anything.
func ListRecords(ctx context.Context, store storage.Store) ([]storage.RecordEnvelope, error) {
	return store.ListRecords(ctx)
}

// RemoveRecord deletes a record envelope from the backend.
func RemoveRecord(ctx context.Context, store storage.Store, id string) error {
	return store.DeleteRecord(ctx, id)
}
