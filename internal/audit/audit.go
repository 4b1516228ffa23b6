package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/teachertools/satchel/internal/configs"
)

// Operation names recorded in the audit trail.
const (
	OpEnroll           = "enroll"
	OpUnlock           = "unlock"
	OpUnlockFailed     = "unlock_failed"
	OpRotate           = "rotate"
	OpRecoverySetup    = "recovery_setup"
	OpRecover          = "recover"
	OpClear            = "clear"
	OpIntegrityFailure = "integrity_failure"
)

// Entry represents a single audit log entry. Entries carry metadata only:
// never a secret, key bytes, or record plaintext.
type Entry struct {
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	User      string `json:"user"` // Email of user performing action.
	UserUUID  string `json:"uuid"` // UUID of user performing action.
	Operation string `json:"op"`   // Operation name.

	// Optional fields depending on operation.
	RecordID   string `json:"record_id,omitempty"`   // For record read/write failures.
	RecordKind string `json:"record_kind,omitempty"` // roster or seating_chart.
	Purpose    string `json:"purpose,omitempty"`     // Wrapped key purpose.
	KDFVersion int    `json:"kdf_version,omitempty"` // For enroll/rotate.
}

// Log appends an entry to the audit log.
// If logging fails, the entry is dropped silently. Key lifecycle
// operations must not fail just because audit logging failed.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	dataPath := configs.VaultSatchelSettings.VaultDataPath
	if dataPath == "" {
		// No vault resolved, skip logging.
		return
	}

	logPath := filepath.Join(dataPath, "audit.jsonl")

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}
