package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/teachertools/satchel/internal/aead"
	serrors "github.com/teachertools/satchel/internal/errors"
	"github.com/teachertools/satchel/internal/ui"
	"github.com/teachertools/satchel/internal/workflows"

	"github.com/spf13/cobra"
)

var decryptOutput string

func init() {
	decryptCmd.Flags().StringVarP(&decryptOutput, "output", "o", "", "write plaintext JSON to a file instead of stdout")
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <record-id>",
	Short: "Decrypt a protected record from the vault",
	Long: `Fetches a record envelope and decrypts it with the vault's data key.

A record that fails its integrity check cannot be displayed at all;
Satchel never shows partially decrypted or empty data in its place.

Examples:
  # Print a decrypted roster to stdout
  satchel vault decrypt 4f7c...

  # Write it to a file
  satchel vault decrypt 4f7c... --output period1.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting decrypt command")
		recordID := args[0]

		store, userConfig, err := openStore()
		if err != nil {
			return err
		}

		secret, err := readSecret("Vault passphrase: ")
		if err != nil {
			return err
		}
		defer aead.Zero(secret)

		s, cleanup := startSpinner("Decrypting record...", verbose)
		defer cleanup()

		unlock, err := workflows.Unlock(cmd.Context(), workflows.UnlockOptions{
			Secret:    secret,
			Store:     store,
			UserEmail: userConfig.User.Email,
			UserUUID:  userConfig.User.UUID,
		})
		if err != nil {
			return err
		}
		defer unlock.Session.Clear()

		var record json.RawMessage
		result, err := workflows.ReadRecord(cmd.Context(), workflows.ReadRecordOptions{
			Session:   unlock.Session,
			Store:     store,
			ID:        recordID,
			OwnerID:   userConfig.User.UUID,
			Out:       &record,
			UserEmail: userConfig.User.Email,
			UserUUID:  userConfig.User.UUID,
		})
		if err != nil {
			if errors.Is(err, serrors.ErrIntegrityFailed) {
				return fmt.Errorf("record %s could not be read: it failed its integrity check", recordID)
			}
			return err
		}

		if s != nil {
			s.Stop()
		}

		if decryptOutput != "" {
			if err := os.WriteFile(decryptOutput, record, 0600); err != nil {
				return fmt.Errorf("failed to write %s: %w", decryptOutput, err)
			}
			fmt.Printf("%s Decrypted %s to %s\n", ui.Success.Sprint("✓"), ui.Highlight.Sprint(result.Name), ui.Code.Sprint(decryptOutput))
			return nil
		}

		fmt.Println(string(record))
		return nil
	},
}
