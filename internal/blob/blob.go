package blob

import (
	"encoding/json"
	"fmt"

	serrors "github.com/teachertools/satchel/internal/errors"
)

// FormatVersion is the canonical serialization version written into every
// new envelope. It is carried alongside the ciphertext so record schemas
// can evolve without re-deriving keys or breaking old blobs.
const FormatVersion = 1

// Envelope is the transport form of one encrypted record: what the storage
// backend persists and returns verbatim. Byte fields marshal to base64 in
// JSON, matching the wire contract.
type Envelope struct {
	Ciphertext    []byte `json:"ciphertext"`
	Nonce         []byte `json:"nonce"`
	FormatVersion int    `json:"format_version"`
}

// Encode serializes a record to its canonical byte form.
func Encode(record any) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: record is not serializable: %v", serrors.ErrInvalidInput, err)
	}
	return data, nil
}

// Decode deserializes canonical bytes into record, which must be a pointer.
func Decode(data []byte, record any) error {
	if err := json.Unmarshal(data, record); err != nil {
		return fmt.Errorf("%w: record bytes do not decode: %v", serrors.ErrInvalidInput, err)
	}
	return nil
}

// CheckVersion rejects envelopes with an unknown format version before any
// decryption is attempted. Guessing a layout is never acceptable.
func CheckVersion(version int) error {
	if version != FormatVersion {
		return fmt.Errorf("%w: format_version %d", serrors.ErrUnsupportedFormat, version)
	}
	return nil
}
