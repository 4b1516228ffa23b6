package workflows

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"strings"

	"github.com/teachertools/satchel/internal/aead"
	"github.com/teachertools/satchel/internal/audit"
	"github.com/teachertools/satchel/internal/envelope"
	serrors "github.com/teachertools/satchel/internal/errors"
	"github.com/teachertools/satchel/internal/kdf"
	"github.com/teachertools/satchel/internal/session"
	"github.com/teachertools/satchel/internal/storage"
)

// recoveryKeySize is the length of the random recovery key in bytes.
// The key is high-entropy, so unlike the user secret it is used directly
// as a wrapping key with no derivation step.
const recoveryKeySize = 32

var recoveryEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// FormatRecoveryCode renders a recovery key as dash-separated base32
// groups for the user to write down.
func FormatRecoveryCode(key []byte) string {
	encoded := recoveryEncoding.EncodeToString(key)
	var groups []string
	for len(encoded) > 4 {
		groups = append(groups, encoded[:4])
		encoded = encoded[4:]
	}
	groups = append(groups, encoded)
	return strings.Join(groups, "-")
}

// ParseRecoveryCode converts a user-entered code back into key bytes,
// tolerating dashes, spaces, and case differences.
func ParseRecoveryCode(code string) ([]byte, error) {
	cleaned := strings.ToUpper(strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, code))

	key, err := recoveryEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: recovery code is not valid base32", serrors.ErrInvalidInput)
	}
	if len(key) != recoveryKeySize {
		return nil, fmt.Errorf("%w: recovery code has wrong length", serrors.ErrInvalidInput)
	}
	return key, nil
}

// RecoverySetupOptions configures recovery key creation.
type RecoverySetupOptions struct {
	// Session must be active; the live data key is wrapped under the new
	// recovery key.
	Session *session.Store

	// Store is the envelope storage backend.
	Store storage.Store

	// UserEmail and UserUUID identify the actor in the audit trail.
	UserEmail string
	UserUUID  string
}

// RecoverySetupResult contains the outcome of recovery setup.
type RecoverySetupResult struct {
	// Code is the one-time-displayed recovery code. It is never persisted;
	// losing it and the secret makes the data permanently unrecoverable.
	Code string
}

// RecoverySetup generates a random recovery key, wraps the live data key
// under it, and stores the result as a second envelope with purpose
// "recovery". It never touches the primary password-derived envelope.
func RecoverySetup(ctx context.Context, opts RecoverySetupOptions) (*RecoverySetupResult, error) {
	key := make([]byte, recoveryKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate recovery key: %w", err)
	}
	defer aead.Zero(key)

	wrapped, err := opts.Session.WrapUnder(key)
	if err != nil {
		return nil, err
	}

	if err := opts.Store.SaveWrappedKey(ctx, storage.NewWrappedKey(storage.PurposeRecovery, wrapped)); err != nil {
		return nil, fmt.Errorf("saving recovery key envelope: %w", err)
	}

	audit.Log(audit.Entry{
		User:      opts.UserEmail,
		UserUUID:  opts.UserUUID,
		Operation: audit.OpRecoverySetup,
		Purpose:   storage.PurposeRecovery,
	})

	return &RecoverySetupResult{Code: FormatRecoveryCode(key)}, nil
}

// RecoverOptions configures recovery of a vault whose secret was lost.
type RecoverOptions struct {
	// Code is the recovery code the user wrote down at setup.
	Code string

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

// RecoverResult contains the outcome of a recovery.
type RecoverResult struct {
	// KDFVersion is the derivation version the vault now uses.
	KDFVersion int
}

// Recover unwraps the data key from the recovery envelope and re-wraps it
// under a key derived from the new secret, swapping the primary envelope.
// The data key never changes, so all record envelopes stay valid; the
// salt is reused, so the swap alone completes the recovery.
// Returns ErrAuthenticationFailed on a wrong code.
func Recover(ctx context.Context, opts RecoverOptions) (*RecoverResult, error) {
	key, err := ParseRecoveryCode(opts.Code)
	if err != nil {
		return nil, err
	}
	defer aead.Zero(key)

	enrollment, err := opts.Store.FetchEnrollment(ctx)
	if err != nil {
		return nil, err
	}

	recovery, err := opts.Store.FetchWrappedKey(ctx, storage.PurposeRecovery)
	if err != nil {
		return nil, err
	}

	dek, err := envelope.Unwrap(key, recovery.Envelope())
	if err != nil {
		return nil, fmt.Errorf("recovering data key: %w", err)
	}
	defer aead.Zero(dek)

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

	rewrapped, err := envelope.Wrap(newKek, dek, newVersion)
	if err != nil {
		return nil, err
	}

	primary, err := opts.Store.FetchWrappedKey(ctx, storage.PurposePrimary)
	if err != nil {
		return nil, err
	}
	if err := opts.Store.ReplaceWrappedKey(ctx, storage.NewWrappedKey(storage.PurposePrimary, rewrapped), primary.Revision); err != nil {
		return nil, err
	}

	// Same as rotation: the swap completes the recovery, and the
	// enrollment record only trails the default version.
	if newVersion != enrollment.KDFVersion {
		if err := opts.Store.ReplaceEnrollment(ctx, storage.Enrollment{Salt: enrollment.Salt, KDFVersion: newVersion}); err != nil {
			return nil, fmt.Errorf("replacing enrollment record: %w", err)
		}
	}

	audit.Log(audit.Entry{
		User:       opts.UserEmail,
		UserUUID:   opts.UserUUID,
		Operation:  audit.OpRecover,
		Purpose:    storage.PurposePrimary,
		KDFVersion: newVersion,
	})

	return &RecoverResult{KDFVersion: newVersion}, nil
}
