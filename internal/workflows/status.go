package workflows

import (
	"context"
	"errors"

	serrors "github.com/teachertools/satchel/internal/errors"
	"github.com/teachertools/satchel/internal/storage"
)

// StatusOptions configures the status workflow.
type StatusOptions struct {
	Store storage.Store
}

// StatusResult describes the vault's non-protected state.
type StatusResult struct {
	Enrolled    bool
	KDFVersion  int
	HasRecovery bool
	RecordCount int
}

// Status reports enrollment state and envelope counts without touching
// any key material or plaintext.
func Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	result := &StatusResult{}

	enrollment, err := opts.Store.FetchEnrollment(ctx)
	if err != nil {
		if errors.Is(err, serrors.ErrNotEnrolled) {
			return result, nil
		}
		return nil, err
	}
	result.Enrolled = true
	result.KDFVersion = enrollment.KDFVersion

	if _, err := opts.Store.FetchWrappedKey(ctx, storage.PurposeRecovery); err == nil {
		result.HasRecovery = true
	} else if !errors.Is(err, serrors.ErrWrappedKeyNotFound) {
		return nil, err
	}

	records, err := opts.Store.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	result.RecordCount = len(records)

	return result, nil
}
