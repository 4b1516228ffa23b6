package configs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/teachertools/satchel/internal/utils"
)

type UserSettings struct {
	UserConfigsPath string
	Username        string
}

type VaultSettings struct {
	VaultName     string
	VaultPath     string
	VaultDataPath string
}

var (
	UserSatchelSettings  *UserSettings
	VaultSatchelSettings *VaultSettings
)

func init() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatalf("error getting config directory: %s", err)
	}

	username, err := utils.GetUsername()
	if err != nil {
		log.Fatalf("error getting username: %s", err)
	}

	// This is independent of which vault you are in, so it is ok to init here
	UserSatchelSettings = &UserSettings{
		UserConfigsPath: filepath.Join(configDir, "satchel"),
		Username:        username,
	}
	VaultSatchelSettings = &VaultSettings{
		VaultName:     "",
		VaultPath:     "",
		VaultDataPath: "",
	}
}

// InitVaultSettings resolves the enclosing vault from the working
// directory. VaultPath stays empty when no .satchel directory is found.
func InitVaultSettings() error {
	vaultName, err := utils.GetVaultName()
	if err != nil {
		return fmt.Errorf("error getting vault name: %w", err)
	}

	vaultPath, err := utils.FindVaultRoot()
	if err != nil {
		return fmt.Errorf("error getting vault root: %w", err)
	}

	dataPath := ""
	if vaultPath != "" {
		dataPath = filepath.Join(vaultPath, ".satchel")
	}

	VaultSatchelSettings = &VaultSettings{
		VaultName:     vaultName,
		VaultPath:     vaultPath,
		VaultDataPath: dataPath,
	}

	return nil
}
