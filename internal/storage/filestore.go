package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	serrors "github.com/teachertools/satchel/internal/errors"
)

// Filestore persists envelopes under a local .satchel/ directory:
//
//	.satchel/enrollment.json
//	.satchel/keys/<purpose>.json
//	.satchel/records/<id>.json
//
// Wrapped key replacement goes through a temp file plus rename so a
// concurrent reader sees either the old or the new envelope, never a
// partial write.
type Filestore struct {
	mu   sync.Mutex
	root string
}

// NewFilestore opens (creating if needed) a filestore rooted at dir.
func NewFilestore(dir string) (*Filestore, error) {
	for _, sub := range []string{"keys", "records"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return &Filestore{root: dir}, nil
}

func (f *Filestore) enrollmentPath() string { return filepath.Join(f.root, "enrollment.json") }

func (f *Filestore) keyPath(purpose string) string {
	return filepath.Join(f.root, "keys", purpose+".json")
}

func (f *Filestore) recordPath(id string) string {
	return filepath.Join(f.root, "records", id+".json")
}

// writeJSON writes v to path atomically with owner-only permissions.
func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (f *Filestore) SaveEnrollment(ctx context.Context, e Enrollment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(f.enrollmentPath()); err == nil {
		return serrors.ErrAlreadyEnrolled
	}
	return writeJSON(f.enrollmentPath(), e)
}

func (f *Filestore) FetchEnrollment(ctx context.Context) (Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Enrollment{}, err
	}

	var e Enrollment
	if err := readJSON(f.enrollmentPath(), &e); err != nil {
		if os.IsNotExist(err) {
			return Enrollment{}, serrors.ErrNotEnrolled
		}
		return Enrollment{}, fmt.Errorf("failed to read enrollment: %w", err)
	}
	return e, nil
}

func (f *Filestore) ReplaceEnrollment(ctx context.Context, e Enrollment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(f.enrollmentPath()); os.IsNotExist(err) {
		return serrors.ErrNotEnrolled
	}
	return writeJSON(f.enrollmentPath(), e)
}

func (f *Filestore) SaveWrappedKey(ctx context.Context, k WrappedKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	k.Revision = 1
	return writeJSON(f.keyPath(k.Purpose), k)
}

func (f *Filestore) FetchWrappedKey(ctx context.Context, purpose string) (WrappedKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return WrappedKey{}, err
	}

	var k WrappedKey
	if err := readJSON(f.keyPath(purpose), &k); err != nil {
		if os.IsNotExist(err) {
			return WrappedKey{}, fmt.Errorf("%w: purpose %q", serrors.ErrWrappedKeyNotFound, purpose)
		}
		return WrappedKey{}, fmt.Errorf("failed to read wrapped key: %w", err)
	}
	return k, nil
}

func (f *Filestore) ReplaceWrappedKey(ctx context.Context, k WrappedKey, expectedRevision int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	var current WrappedKey
	if err := readJSON(f.keyPath(k.Purpose), &current); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: purpose %q", serrors.ErrWrappedKeyNotFound, k.Purpose)
		}
		return fmt.Errorf("failed to read wrapped key: %w", err)
	}
	if current.Revision != expectedRevision {
		return fmt.Errorf("%w: revision %d, expected %d", serrors.ErrWrappedKeyConflict, current.Revision, expectedRevision)
	}

	k.Revision = expectedRevision + 1
	return writeJSON(f.keyPath(k.Purpose), k)
}

func (f *Filestore) PutRecord(ctx context.Context, r RecordEnvelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if r.ID == "" {
		return fmt.Errorf("%w: record id must not be empty", serrors.ErrInvalidInput)
	}
	return writeJSON(f.recordPath(r.ID), r)
}

func (f *Filestore) GetRecord(ctx context.Context, id string) (RecordEnvelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return RecordEnvelope{}, err
	}

	var r RecordEnvelope
	if err := readJSON(f.recordPath(id), &r); err != nil {
		if os.IsNotExist(err) {
			return RecordEnvelope{}, fmt.Errorf("%w: %s", serrors.ErrRecordNotFound, id)
		}
		return RecordEnvelope{}, fmt.Errorf("failed to read record %s: %w", id, err)
	}
	return r, nil
}

func (f *Filestore) ListRecords(ctx context.Context) ([]RecordEnvelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(f.root, "records"))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	var records []RecordEnvelope
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		var r RecordEnvelope
		if err := readJSON(filepath.Join(f.root, "records", entry.Name()), &r); err != nil {
			return nil, fmt.Errorf("failed to read record %s: %w", entry.Name(), err)
		}
		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

func (f *Filestore) DeleteRecord(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(f.recordPath(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", serrors.ErrRecordNotFound, id)
		}
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	return nil
}
