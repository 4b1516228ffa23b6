package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindVaultRoot walks up from the working directory looking for a
// .satchel directory. Returns an empty string when none is found.
func FindVaultRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for {
		info, err := os.Stat(filepath.Join(dir, ".satchel"))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// GetVaultName returns the working directory's base name, used as the
// vault's non-protected display name.
func GetVaultName() (string, error) {
	workingDirectory, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Base(workingDirectory), nil
}
