package cmd

import (
	"fmt"
	"time"

	"github.com/teachertools/satchel/internal/configs"
	"github.com/teachertools/satchel/internal/storage"
	"github.com/teachertools/satchel/internal/utils"

	"github.com/briandowns/spinner"
)

// startSpinner starts a progress spinner unless verbose output is on.
// The returned cleanup stops it and is safe to call twice.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	if verbose {
		return nil, func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Start()
	return s, func() { s.Stop() }
}

// openStore resolves the vault's storage backend: the remote backend when
// a server URL is configured, the local .satchel/ filestore otherwise.
func openStore() (storage.Store, *configs.UserConfig, error) {
	userConfig, err := configs.EnsureUserConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading user config: %w", err)
	}

	if userConfig.Server.URL != "" {
		client, err := storage.NewClient(userConfig.Server.URL, nil)
		if err != nil {
			return nil, nil, err
		}
		return client, userConfig, nil
	}

	if err := configs.InitVaultSettings(); err != nil {
		return nil, nil, err
	}
	dataPath := configs.VaultSatchelSettings.VaultDataPath
	if dataPath == "" {
		return nil, nil, fmt.Errorf("no vault found: run `satchel vault enroll` first")
	}

	store, err := storage.NewFilestore(dataPath)
	if err != nil {
		return nil, nil, err
	}
	return store, userConfig, nil
}

// readSecret prompts for the vault passphrase without echo.
func readSecret(prompt string) ([]byte, error) {
	if !utils.IsTerminal() {
		return nil, fmt.Errorf("cannot prompt for passphrase: stdin is not a terminal")
	}
	return utils.ReadPassphrase(prompt)
}
