package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	serrors "github.com/teachertools/satchel/internal/errors"
)

// fakeBackend is an in-memory server speaking the envelope wire contract.
// It stores whatever opaque bytes it is handed, like the real backend.
type fakeBackend struct {
	mu         sync.Mutex
	enrollment *Enrollment
	keys       map[string]WrappedKey
	records    map[string]RecordEnvelope
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		keys:    make(map[string]WrappedKey),
		records: make(map[string]RecordEnvelope),
	}
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	switch {
	case path == "vault/enrollment":
		b.serveEnrollment(w, r)
	case strings.HasPrefix(path, "vault/keys/"):
		b.serveKey(w, r, strings.TrimPrefix(path, "vault/keys/"))
	case path == "records":
		b.serveRecordList(w)
	case strings.HasPrefix(path, "records/"):
		b.serveRecord(w, r, strings.TrimPrefix(path, "records/"))
	default:
		http.NotFound(w, r)
	}
}

func (b *fakeBackend) serveEnrollment(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		if b.enrollment != nil {
			w.WriteHeader(http.StatusConflict)
			return
		}
		var e Enrollment
		_ = json.NewDecoder(r.Body).Decode(&e)
		b.enrollment = &e
	case http.MethodGet:
		if b.enrollment == nil {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(b.enrollment)
	case http.MethodPut:
		if b.enrollment == nil {
			http.NotFound(w, r)
			return
		}
		var e Enrollment
		_ = json.NewDecoder(r.Body).Decode(&e)
		b.enrollment = &e
	}
}

func (b *fakeBackend) serveKey(w http.ResponseWriter, r *http.Request, purpose string) {
	switch r.Method {
	case http.MethodPost:
		var k WrappedKey
		_ = json.NewDecoder(r.Body).Decode(&k)
		b.keys[purpose] = k
	case http.MethodGet:
		k, ok := b.keys[purpose]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(k)
	case http.MethodPut:
		current, ok := b.keys[purpose]
		if !ok {
			http.NotFound(w, r)
			return
		}
		expected, _ := strconv.Atoi(r.URL.Query().Get("expected_revision"))
		if current.Revision != expected {
			w.WriteHeader(http.StatusConflict)
			return
		}
		var k WrappedKey
		_ = json.NewDecoder(r.Body).Decode(&k)
		b.keys[purpose] = k
	}
}

func (b *fakeBackend) serveRecordList(w http.ResponseWriter) {
	records := make([]RecordEnvelope, 0, len(b.records))
	for _, r := range b.records {
		records = append(records, r)
	}
	_ = json.NewEncoder(w).Encode(records)
}

func (b *fakeBackend) serveRecord(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPut:
		var env RecordEnvelope
		_ = json.NewDecoder(r.Body).Decode(&env)
		b.records[id] = env
	case http.MethodGet:
		env, ok := b.records[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(env)
	case http.MethodDelete:
		if _, ok := b.records[id]; !ok {
			http.NotFound(w, r)
			return
		}
		delete(b.records, id)
	}
}

func testClient(t *testing.T) *Client {
	t.Helper()
	server := httptest.NewServer(newFakeBackend())
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, server.Client())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestClientEnrollment(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	if _, err := client.FetchEnrollment(ctx); !errors.Is(err, serrors.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}

	enrollment := Enrollment{Salt: bytes.Repeat([]byte{0x07}, 16), KDFVersion: 1}
	if err := client.SaveEnrollment(ctx, enrollment); err != nil {
		t.Fatalf("SaveEnrollment failed: %v", err)
	}
	if err := client.SaveEnrollment(ctx, enrollment); !errors.Is(err, serrors.ErrAlreadyEnrolled) {
		t.Errorf("expected ErrAlreadyEnrolled, got %v", err)
	}

	fetched, err := client.FetchEnrollment(ctx)
	if err != nil {
		t.Fatalf("FetchEnrollment failed: %v", err)
	}
	if !bytes.Equal(fetched.Salt, enrollment.Salt) || fetched.KDFVersion != 1 {
		t.Errorf("enrollment did not survive the wire: %+v", fetched)
	}
}

func TestClientWrappedKeyReplace(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	if _, err := client.FetchWrappedKey(ctx, PurposePrimary); !errors.Is(err, serrors.ErrWrappedKeyNotFound) {
		t.Fatalf("expected ErrWrappedKeyNotFound, got %v", err)
	}

	key := WrappedKey{Purpose: PurposePrimary, Ciphertext: []byte{0x01}, Nonce: []byte{0x02}, KDFVersion: 1}
	if err := client.SaveWrappedKey(ctx, key); err != nil {
		t.Fatalf("SaveWrappedKey failed: %v", err)
	}

	stored, err := client.FetchWrappedKey(ctx, PurposePrimary)
	if err != nil {
		t.Fatalf("FetchWrappedKey failed: %v", err)
	}
	if stored.Revision != 1 {
		t.Fatalf("fresh key has revision %d, expected 1", stored.Revision)
	}

	replacement := WrappedKey{Purpose: PurposePrimary, Ciphertext: []byte{0x03}, Nonce: []byte{0x04}, KDFVersion: 1}
	if err := client.ReplaceWrappedKey(ctx, replacement, stored.Revision); err != nil {
		t.Fatalf("ReplaceWrappedKey failed: %v", err)
	}
	if err := client.ReplaceWrappedKey(ctx, replacement, stored.Revision); !errors.Is(err, serrors.ErrWrappedKeyConflict) {
		t.Errorf("expected ErrWrappedKeyConflict for stale revision, got %v", err)
	}

	current, err := client.FetchWrappedKey(ctx, PurposePrimary)
	if err != nil {
		t.Fatalf("FetchWrappedKey after replace failed: %v", err)
	}
	if current.Revision != 2 {
		t.Errorf("revision after replace is %d, expected 2", current.Revision)
	}
}

func TestClientRecordsVerbatim(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	record := RecordEnvelope{
		ID:            "r1",
		Name:          "Period 3",
		Kind:          "roster",
		Ciphertext:    []byte{0xde, 0xad},
		Nonce:         []byte{0xbe, 0xef},
		FormatVersion: 1,
	}
	if err := client.PutRecord(ctx, record); err != nil {
		t.Fatalf("PutRecord failed: %v", err)
	}

	got, err := client.GetRecord(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if !bytes.Equal(got.Ciphertext, record.Ciphertext) || !bytes.Equal(got.Nonce, record.Nonce) || got.FormatVersion != 1 {
		t.Errorf("envelope fields changed on the wire: %+v", got)
	}

	records, err := client.ListRecords(ctx)
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "r1" {
		t.Errorf("unexpected listing: %+v", records)
	}

	if err := client.DeleteRecord(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if _, err := client.GetRecord(ctx, "r1"); !errors.Is(err, serrors.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound after delete, got %v", err)
	}
}

func TestClientRejectsEmptyRecordID(t *testing.T) {
	client := testClient(t)
	if err := client.PutRecord(context.Background(), RecordEnvelope{}); !errors.Is(err, serrors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty id, got %v", err)
	}
}
