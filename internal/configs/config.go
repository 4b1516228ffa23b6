package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/teachertools/satchel/internal/kdf"

	"github.com/google/uuid"
)

type UserConfig struct {
	User     User     `toml:"user"`
	Server   Server   `toml:"server"`
	Defaults Defaults `toml:"defaults"`
}

type User struct {
	Email string `toml:"email"`
	UUID  string `toml:"user_uuid"`
}

type Server struct {
	// URL of the envelope storage backend. Empty means local filestore only.
	URL string `toml:"url"`
}

type Defaults struct {
	// KDFVersion selects the derivation cost parameters for new enrollments.
	KDFVersion int `toml:"kdf_version"`
}

// LoadUserConfig loads the user configuration from the config file.
func LoadUserConfig() (*UserConfig, error) {
	configPath := filepath.Join(UserSatchelSettings.UserConfigsPath, "config.toml")

	config := &UserConfig{
		Defaults: Defaults{KDFVersion: kdf.DefaultVersion},
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if config.Defaults.KDFVersion == 0 {
		config.Defaults.KDFVersion = kdf.DefaultVersion
	}

	return config, nil
}

// SaveUserConfig saves the user configuration to the config file.
func SaveUserConfig(config *UserConfig) error {
	configPath := filepath.Join(UserSatchelSettings.UserConfigsPath, "config.toml")

	if err := SaveTOML(configPath, config); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}

	return nil
}

// EnsureUserConfig ensures the user configuration exists and has a UUID.
func EnsureUserConfig() (*UserConfig, error) {
	config, err := LoadUserConfig()
	if err != nil {
		return nil, err
	}

	if config.User.UUID == "" {
		config.User.UUID = uuid.New().String()
		if err := SaveUserConfig(config); err != nil {
			return nil, fmt.Errorf("failed to persist generated user UUID: %w", err)
		}
	}

	return config, nil
}
