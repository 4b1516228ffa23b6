package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/teachertools/satchel/internal/aead"
	"github.com/teachertools/satchel/internal/ui"
	"github.com/teachertools/satchel/internal/workflows"

	"github.com/spf13/cobra"
)

var rotateForce bool

func init() {
	rotateCmd.Flags().BoolVar(&rotateForce, "force", false, "skip confirmation prompt")
}

// confirmRotate prompts the user to confirm the passphrase rotation.
// Returns true if the user confirms, false otherwise.
func confirmRotate() bool {
	fmt.Printf("\n%s This will replace your vault passphrase.\n", ui.Warning.Sprint("Warning:"))
	fmt.Println("  Your old passphrase will no longer unlock this vault.")
	fmt.Println("  Existing records stay valid; nothing is re-encrypted.")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Do you want to continue? [y/N]: ")
	response, err := reader.ReadString('\n')
	if err != nil {
		Logger.Errorf("Failed to read response: %v", err)
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))

	return response == "y" || response == "yes"
}

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Rotate your vault passphrase",
	Long: `Replaces the passphrase protecting the vault's data key.

The command will:
  1. Derive the old key-encryption key and unwrap the data key
  2. Derive a new key-encryption key from your new passphrase
  3. Re-wrap the same data key and swap the stored envelope atomically

The data key never changes, so existing records remain valid without
re-encryption. A wrong old passphrase fails before anything is replaced.

Examples:
  # Rotate with confirmation prompt
  satchel vault rotate

  # Rotate without confirmation prompt
  satchel vault rotate --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting rotate command")

		if !rotateForce && !confirmRotate() {
			fmt.Println("Rotation cancelled.")
			return nil
		}

		store, userConfig, err := openStore()
		if err != nil {
			return err
		}

		oldSecret, err := readSecret("Current passphrase: ")
		if err != nil {
			return err
		}
		defer aead.Zero(oldSecret)

		newSecret, err := readSecret("New passphrase: ")
		if err != nil {
			return err
		}
		defer aead.Zero(newSecret)
		confirm, err := readSecret("Confirm new passphrase: ")
		if err != nil {
			return err
		}
		defer aead.Zero(confirm)
		if !bytes.Equal(newSecret, confirm) {
			return fmt.Errorf("passphrases do not match")
		}

		s, cleanup := startSpinner("Rotating passphrase...", verbose)
		defer cleanup()

		result, err := workflows.Rotate(cmd.Context(), workflows.RotateOptions{
			OldSecret: oldSecret,
			NewSecret: newSecret,
			Store:     store,
			UserEmail: userConfig.User.Email,
			UserUUID:  userConfig.User.UUID,
		})
		if err != nil {
			return err
		}

		if s != nil {
			s.Stop()
		}
		fmt.Printf("%s Passphrase rotated (derivation version %d)\n", ui.Success.Sprint("✓"), result.KDFVersion)
		return nil
	},
}
