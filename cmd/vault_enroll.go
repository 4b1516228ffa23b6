package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/teachertools/satchel/internal/aead"
	"github.com/teachertools/satchel/internal/configs"
	"github.com/teachertools/satchel/internal/storage"
	"github.com/teachertools/satchel/internal/ui"
	"github.com/teachertools/satchel/internal/workflows"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Create an encrypted vault in the current directory",
	Long: `Creates a .satchel/ vault and enrolls you with a passphrase.

The command will:
  1. Generate a random per-user salt
  2. Derive a key-encryption key from your passphrase
  3. Generate the data key that encrypts all protected records
  4. Store the data key wrapped, so the backend never sees it unwrapped

Your passphrase is never stored or transmitted. If you lose it and have
no recovery code, the protected records cannot be recovered by anyone.

Examples:
  # Enroll in the current directory
  satchel vault enroll`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting enroll command")

		figure.NewFigure("Satchel", "", true).Print()
		fmt.Println()

		userConfig, err := configs.EnsureUserConfig()
		if err != nil {
			Logger.Errorf("Failed to load user config: %v", err)
			return err
		}

		secret, err := readSecret("Choose a vault passphrase: ")
		if err != nil {
			return err
		}
		defer aead.Zero(secret)
		confirm, err := readSecret("Confirm passphrase: ")
		if err != nil {
			return err
		}
		defer aead.Zero(confirm)
		if !bytes.Equal(secret, confirm) {
			return fmt.Errorf("passphrases do not match")
		}

		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		store, err := storage.NewFilestore(filepath.Join(wd, ".satchel"))
		if err != nil {
			return err
		}
		if err := configs.InitVaultSettings(); err != nil {
			return err
		}

		s, cleanup := startSpinner("Enrolling vault...", verbose)
		defer cleanup()

		result, err := workflows.Enroll(cmd.Context(), workflows.EnrollOptions{
			Secret:    secret,
			Store:     store,
			UserEmail: userConfig.User.Email,
			UserUUID:  userConfig.User.UUID,
		})
		if err != nil {
			return err
		}
		defer result.Session.Clear()

		if s != nil {
			s.Stop()
		}
		fmt.Printf("%s Vault enrolled in %s\n", ui.Success.Sprint("✓"), ui.Highlight.Sprint(".satchel/"))
		fmt.Printf("  Derivation version: %d\n", result.KDFVersion)
		fmt.Printf("  %s\n", ui.Muted.Sprint("consider running `satchel vault recovery setup` next"))
		return nil
	},
}
