package workflows

import (
	"context"
	"fmt"

	"github.com/teachertools/satchel/internal/aead"
	"github.com/teachertools/satchel/internal/audit"
	"github.com/teachertools/satchel/internal/envelope"
	"github.com/teachertools/satchel/internal/kdf"
	"github.com/teachertools/satchel/internal/storage"
)

// RotateOptions configures the secret rotation workflow.
type RotateOptions struct {
	// OldSecret is the current credential; rotation fails with
	// ErrAuthenticationFailed if it is wrong.
	OldSecret []byte

	// NewSecret is the replacement credential.
	NewSecret []byte

	// Store is the envelope storage backend.
	Store storage.Store

	// KDFVersion selects derivation parameters for the new secret.
	// Zero means the current default version.
	KDFVersion int

	// UserEmail and UserUUID identify the actor in the audit trail.
	UserEmail string
	UserUUID  string
}

// RotateResult contains the outcome of a rotation.
type RotateResult struct {
	// KDFVersion is the derivation version the vault now uses.
	KDFVersion int
}

// Rotate re-wraps the data key under a key derived from the new secret.
//
// The data key itself never changes, so every existing record envelope
// remains valid without re-encryption. The salt is reused, so the whole
// rotation is one revision-guarded swap of the primary envelope: a crash
// at any point leaves the vault openable with exactly one of the two
// secrets. The workflow:
//
//  1. Derives the old KEK from the stored salt and unwraps the envelope
//  2. Derives the new KEK from the new secret and the same salt
//  3. Swaps the primary envelope with a compare-and-replace guarded by
//     its revision
//
// Returns ErrAuthenticationFailed if the old secret is wrong and
// ErrWrappedKeyConflict if a concurrent rotation won the swap.
func Rotate(ctx context.Context, opts RotateOptions) (*RotateResult, error) {
	enrollment, err := opts.Store.FetchEnrollment(ctx)
	if err != nil {
		return nil, err
	}

	primary, err := opts.Store.FetchWrappedKey(ctx, storage.PurposePrimary)
	if err != nil {
		return nil, err
	}

	oldParams, err := kdf.ParamsForVersion(primary.KDFVersion)
	if err != nil {
		return nil, err
	}
	oldKek, err := kdf.Derive(opts.OldSecret, enrollment.Salt, oldParams)
	if err != nil {
		return nil, err
	}
	defer aead.Zero(oldKek)

	newVersion := opts.KDFVersion
	if newVersion == 0 {
		newVersion = kdf.DefaultVersion
	}
	newParams, err := kdf.ParamsForVersion(newVersion)
	if err != nil {
		return nil, err
	}
	newKek, err := kdf.Derive(opts.NewSecret, enrollment.Salt, newParams)
	if err != nil {
		return nil, err
	}
	defer aead.Zero(newKek)

	rewrapped, err := envelope.Rewrap(oldKek, newKek, primary.Envelope(), newVersion)
	if err != nil {
		return nil, fmt.Errorf("rotating secret: %w", err)
	}

	replacement := storage.NewWrappedKey(storage.PurposePrimary, rewrapped)
	if err := opts.Store.ReplaceWrappedKey(ctx, replacement, primary.Revision); err != nil {
		return nil, err
	}

	// The swap above is the rotation; the envelope records the version its
	// KEK was derived with, so the enrollment record is trailing metadata
	// and only needs rewriting when the default version moved.
	if newVersion != enrollment.KDFVersion {
		if err := opts.Store.ReplaceEnrollment(ctx, storage.Enrollment{Salt: enrollment.Salt, KDFVersion: newVersion}); err != nil {
			return nil, fmt.Errorf("replacing enrollment record: %w", err)
		}
	}

	audit.Log(audit.Entry{
		User:       opts.UserEmail,
		UserUUID:   opts.UserUUID,
		Operation:  audit.OpRotate,
		Purpose:    storage.PurposePrimary,
		KDFVersion: newVersion,
	})

	return &RotateResult{KDFVersion: newVersion}, nil
}
