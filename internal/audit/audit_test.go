package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/teachertools/satchel/internal/configs"
)

// withVaultDataPath points audit logging at a temp directory for the
// duration of one test.
func withVaultDataPath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	original := configs.VaultSatchelSettings
	configs.VaultSatchelSettings = &configs.VaultSettings{VaultDataPath: dir}
	t.Cleanup(func() { configs.VaultSatchelSettings = original })
	return dir
}

func TestLogAppendsEntries(t *testing.T) {
	dir := withVaultDataPath(t)

	Log(Entry{User: "teacher@example.edu", UserUUID: "u-1", Operation: OpUnlock})
	Log(Entry{User: "teacher@example.edu", UserUUID: "u-1", Operation: OpIntegrityFailure, RecordID: "r1", RecordKind: "roster"})

	f, err := os.Open(filepath.Join(dir, "audit.jsonl"))
	if err != nil {
		t.Fatalf("audit log not written: %v", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		entries = append(entries, entry)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Operation != OpUnlock || entries[0].Timestamp == "" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].RecordID != "r1" || entries[1].RecordKind != "roster" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestLogWithoutVaultIsDropped(t *testing.T) {
	original := configs.VaultSatchelSettings
	configs.VaultSatchelSettings = &configs.VaultSettings{}
	t.Cleanup(func() { configs.VaultSatchelSettings = original })

	// Must not panic or create files anywhere.
	Log(Entry{Operation: OpClear})
}
