package workflows

import (
	"context"
	"fmt"

	"github.com/teachertools/satchel/internal/audit"
	"github.com/teachertools/satchel/internal/kdf"
	"github.com/teachertools/satchel/internal/session"
	"github.com/teachertools/satchel/internal/storage"
)

// EnrollOptions configures the enroll workflow.
type EnrollOptions struct {
	// Secret is the user-supplied credential. It is consumed during
	// derivation and never persisted or transmitted.
	Secret []byte

	// Store is the envelope storage backend.
	Store storage.Store

	// KDFVersion selects derivation parameters. Zero means the current
	// default version.
	KDFVersion int

	// UserEmail and UserUUID identify the actor in the audit trail.
	UserEmail string
	UserUUID  string
}

// EnrollResult contains the outcome of an enrollment.
type EnrollResult struct {
	// Session is the live session created by enrollment. The caller owns
	// it and must Clear it when the session ends.
	Session *session.Store

	// Salt is the generated derivation salt, already persisted.
	Salt []byte

	// KDFVersion is the derivation version the salt was enrolled with.
	KDFVersion int
}

// Enroll performs first-time setup for a vault:
//
//  1. Generates a fresh random salt
//  2. Derives the key-encryption key from the secret
//  3. Generates the data-encryption key and wraps it
//  4. Persists the enrollment record and the primary key envelope
//
// Returns ErrAlreadyEnrolled if the backend already holds an enrollment
// record. On any failure no session remains active.
func Enroll(ctx context.Context, opts EnrollOptions) (*EnrollResult, error) {
	version := opts.KDFVersion
	if version == 0 {
		version = kdf.DefaultVersion
	}
	params, err := kdf.ParamsForVersion(version)
	if err != nil {
		return nil, err
	}

	salt, err := kdf.NewSalt()
	if err != nil {
		return nil, err
	}

	sess := session.NewStore()
	wrapped, err := sess.Initialize(ctx, opts.Secret, salt, nil, params)
	if err != nil {
		return nil, err
	}

	enrollment := storage.Enrollment{Salt: salt, KDFVersion: version}
	if err := opts.Store.SaveEnrollment(ctx, enrollment); err != nil {
		sess.Clear()
		return nil, err
	}

	if err := opts.Store.SaveWrappedKey(ctx, storage.NewWrappedKey(storage.PurposePrimary, wrapped)); err != nil {
		sess.Clear()
		return nil, fmt.Errorf("saving primary key envelope: %w", err)
	}

	audit.Log(audit.Entry{
		User:       opts.UserEmail,
		UserUUID:   opts.UserUUID,
		Operation:  audit.OpEnroll,
		Purpose:    storage.PurposePrimary,
		KDFVersion: version,
	})

	return &EnrollResult{
		Session:    sess,
		Salt:       salt,
		KDFVersion: version,
	}, nil
}
