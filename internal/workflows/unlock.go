package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/teachertools/satchel/internal/audit"
	serrors "github.com/teachertools/satchel/internal/errors"
	"github.com/teachertools/satchel/internal/kdf"
	"github.com/teachertools/satchel/internal/session"
	"github.com/teachertools/satchel/internal/storage"
)

// UnlockOptions configures the unlock workflow.
type UnlockOptions struct {
	// Secret is the user-supplied credential.
	Secret []byte

	// Store is the envelope storage backend.
	Store storage.Store

	// UserEmail and UserUUID identify the actor in the audit trail.
	UserEmail string
	UserUUID  string
}

// UnlockResult contains the outcome of an unlock.
type UnlockResult struct {
	// Session is the live session. The caller owns it and must Clear it
	// when the session ends.
	Session *session.Store

	// KDFVersion is the derivation version used for this unlock.
	KDFVersion int
}

// Unlock fetches the enrollment record and primary key envelope, derives
// the key-encryption key, and unwraps the data key into a fresh session.
//
// Returns ErrNotEnrolled if the vault has no enrollment record, and
// ErrAuthenticationFailed on a wrong secret or corrupted envelope; the
// two are never distinguished.
func Unlock(ctx context.Context, opts UnlockOptions) (*UnlockResult, error) {
	enrollment, err := opts.Store.FetchEnrollment(ctx)
	if err != nil {
		return nil, err
	}

	primary, err := opts.Store.FetchWrappedKey(ctx, storage.PurposePrimary)
	if err != nil {
		return nil, err
	}

	params, err := kdf.ParamsForVersion(primary.KDFVersion)
	if err != nil {
		return nil, err
	}

	sess := session.NewStore()
	if _, err := sess.Initialize(ctx, opts.Secret, enrollment.Salt, primary.Envelope(), params); err != nil {
		if errors.Is(err, serrors.ErrAuthenticationFailed) {
			audit.Log(audit.Entry{
				User:      opts.UserEmail,
				UserUUID:  opts.UserUUID,
				Operation: audit.OpUnlockFailed,
			})
		}
		return nil, fmt.Errorf("unlocking vault: %w", err)
	}

	audit.Log(audit.Entry{
		User:      opts.UserEmail,
		UserUUID:  opts.UserUUID,
		Operation: audit.OpUnlock,
	})

	return &UnlockResult{Session: sess, KDFVersion: params.Version}, nil
}
