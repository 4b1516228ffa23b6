package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	serrors "github.com/teachertools/satchel/internal/errors"
)

func testFilestore(t *testing.T) *Filestore {
	t.Helper()
	store, err := NewFilestore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilestore failed: %v", err)
	}
	return store
}

func TestEnrollmentLifecycle(t *testing.T) {
	store := testFilestore(t)
	ctx := context.Background()

	if _, err := store.FetchEnrollment(ctx); !errors.Is(err, serrors.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled before save, got %v", err)
	}

	enrollment := Enrollment{Salt: bytes.Repeat([]byte{0x01}, 16), KDFVersion: 1}
	if err := store.SaveEnrollment(ctx, enrollment); err != nil {
		t.Fatalf("SaveEnrollment failed: %v", err)
	}

	fetched, err := store.FetchEnrollment(ctx)
	if err != nil {
		t.Fatalf("FetchEnrollment failed: %v", err)
	}
	if !bytes.Equal(fetched.Salt, enrollment.Salt) || fetched.KDFVersion != 1 {
		t.Errorf("enrollment did not round trip: %+v", fetched)
	}

	// Enrollment happens once.
	if err := store.SaveEnrollment(ctx, enrollment); !errors.Is(err, serrors.ErrAlreadyEnrolled) {
		t.Errorf("expected ErrAlreadyEnrolled, got %v", err)
	}

	// Rotation replaces the record.
	rotated := Enrollment{Salt: bytes.Repeat([]byte{0x02}, 16), KDFVersion: 1}
	if err := store.ReplaceEnrollment(ctx, rotated); err != nil {
		t.Fatalf("ReplaceEnrollment failed: %v", err)
	}
	fetched, err = store.FetchEnrollment(ctx)
	if err != nil {
		t.Fatalf("FetchEnrollment after replace failed: %v", err)
	}
	if !bytes.Equal(fetched.Salt, rotated.Salt) {
		t.Error("replaced enrollment not visible")
	}
}

func TestReplaceEnrollmentRequiresExisting(t *testing.T) {
	store := testFilestore(t)
	err := store.ReplaceEnrollment(context.Background(), Enrollment{Salt: make([]byte, 16), KDFVersion: 1})
	if !errors.Is(err, serrors.ErrNotEnrolled) {
		t.Errorf("expected ErrNotEnrolled, got %v", err)
	}
}

func TestWrappedKeyRevisionGuard(t *testing.T) {
	store := testFilestore(t)
	ctx := context.Background()

	if _, err := store.FetchWrappedKey(ctx, PurposePrimary); !errors.Is(err, serrors.ErrWrappedKeyNotFound) {
		t.Fatalf("expected ErrWrappedKeyNotFound before save, got %v", err)
	}

	original := WrappedKey{Purpose: PurposePrimary, Ciphertext: []byte{0x01}, Nonce: []byte{0x02}, KDFVersion: 1}
	if err := store.SaveWrappedKey(ctx, original); err != nil {
		t.Fatalf("SaveWrappedKey failed: %v", err)
	}

	stored, err := store.FetchWrappedKey(ctx, PurposePrimary)
	if err != nil {
		t.Fatalf("FetchWrappedKey failed: %v", err)
	}
	if stored.Revision != 1 {
		t.Fatalf("fresh key has revision %d, expected 1", stored.Revision)
	}

	replacement := WrappedKey{Purpose: PurposePrimary, Ciphertext: []byte{0x03}, Nonce: []byte{0x04}, KDFVersion: 1}
	if err := store.ReplaceWrappedKey(ctx, replacement, stored.Revision); err != nil {
		t.Fatalf("ReplaceWrappedKey failed: %v", err)
	}

	// A second swap against the stale revision loses the race.
	if err := store.ReplaceWrappedKey(ctx, replacement, stored.Revision); !errors.Is(err, serrors.ErrWrappedKeyConflict) {
		t.Errorf("expected ErrWrappedKeyConflict for stale revision, got %v", err)
	}

	current, err := store.FetchWrappedKey(ctx, PurposePrimary)
	if err != nil {
		t.Fatalf("FetchWrappedKey after replace failed: %v", err)
	}
	if current.Revision != 2 || !bytes.Equal(current.Ciphertext, replacement.Ciphertext) {
		t.Errorf("replacement not fully visible: %+v", current)
	}
}

func TestWrappedKeyPurposesIsolated(t *testing.T) {
	store := testFilestore(t)
	ctx := context.Background()

	primary := WrappedKey{Purpose: PurposePrimary, Ciphertext: []byte{0x01}}
	recovery := WrappedKey{Purpose: PurposeRecovery, Ciphertext: []byte{0x02}}
	if err := store.SaveWrappedKey(ctx, primary); err != nil {
		t.Fatalf("SaveWrappedKey primary failed: %v", err)
	}
	if err := store.SaveWrappedKey(ctx, recovery); err != nil {
		t.Fatalf("SaveWrappedKey recovery failed: %v", err)
	}

	got, err := store.FetchWrappedKey(ctx, PurposeRecovery)
	if err != nil {
		t.Fatalf("FetchWrappedKey recovery failed: %v", err)
	}
	if !bytes.Equal(got.Ciphertext, recovery.Ciphertext) {
		t.Error("recovery fetch returned primary material")
	}
}

func TestRecordCRUD(t *testing.T) {
	store := testFilestore(t)
	ctx := context.Background()

	if _, err := store.GetRecord(ctx, "missing"); !errors.Is(err, serrors.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first := RecordEnvelope{
		ID:            "r1",
		Name:          "Period 3",
		Kind:          "roster",
		Ciphertext:    []byte{0xaa},
		Nonce:         []byte{0xbb},
		FormatVersion: 1,
		CreatedAt:     base,
		UpdatedAt:     base,
	}
	second := first
	second.ID = "r2"
	second.CreatedAt = base.Add(time.Hour)

	// Inserted out of creation order to exercise the listing sort.
	if err := store.PutRecord(ctx, second); err != nil {
		t.Fatalf("PutRecord failed: %v", err)
	}
	if err := store.PutRecord(ctx, first); err != nil {
		t.Fatalf("PutRecord failed: %v", err)
	}

	got, err := store.GetRecord(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if !bytes.Equal(got.Ciphertext, first.Ciphertext) || got.Kind != "roster" {
		t.Errorf("record did not round trip: %+v", got)
	}

	records, err := store.ListRecords(ctx)
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 2 || records[0].ID != "r1" || records[1].ID != "r2" {
		t.Errorf("unexpected listing order: %+v", records)
	}

	if err := store.DeleteRecord(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if err := store.DeleteRecord(ctx, "r1"); !errors.Is(err, serrors.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound on double delete, got %v", err)
	}
}

func TestPutRecordRequiresID(t *testing.T) {
	store := testFilestore(t)
	if err := store.PutRecord(context.Background(), RecordEnvelope{}); !errors.Is(err, serrors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty id, got %v", err)
	}
}

func TestFilestoreHonorsCancellation(t *testing.T) {
	store := testFilestore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.SaveEnrollment(ctx, Enrollment{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, err := store.ListRecords(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
