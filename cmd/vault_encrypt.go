package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/teachertools/satchel/internal/aead"
	"github.com/teachertools/satchel/internal/blob"
	"github.com/teachertools/satchel/internal/ui"
	"github.com/teachertools/satchel/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	encryptFile string
	encryptName string
	encryptKind string
	encryptID   string
)

func init() {
	encryptCmd.Flags().StringVarP(&encryptFile, "file", "f", "", "plaintext JSON file containing the record")
	encryptCmd.Flags().StringVarP(&encryptName, "name", "n", "", "non-protected display name (never student data)")
	encryptCmd.Flags().StringVar(&encryptKind, "kind", blob.KindRoster, "record kind: roster or seating_chart")
	encryptCmd.Flags().StringVar(&encryptID, "id", "", "existing record id to replace")
	_ = encryptCmd.MarkFlagRequired("file")
	_ = encryptCmd.MarkFlagRequired("name")
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt a protected record into the vault",
	Long: `Encrypts a roster or seating chart and stores the envelope.

The plaintext file is read, serialized to its canonical form, and sealed
with the vault's data key. The stored envelope is bound to the record id
and your user id, so it cannot be replayed under a different identity.

Examples:
  # Encrypt a roster
  satchel vault encrypt --file period1.json --name "Period 1"

  # Replace an existing record
  satchel vault encrypt --file period1.json --name "Period 1" --id <record-id>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting encrypt command")

		if encryptKind != blob.KindRoster && encryptKind != blob.KindSeatingChart {
			return fmt.Errorf("unknown record kind %q", encryptKind)
		}

		plaintext, err := os.ReadFile(encryptFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", encryptFile, err)
		}
		var record json.RawMessage
		if err := json.Unmarshal(plaintext, &record); err != nil {
			return fmt.Errorf("%s is not valid JSON: %w", encryptFile, err)
		}

		store, userConfig, err := openStore()
		if err != nil {
			return err
		}

		secret, err := readSecret("Vault passphrase: ")
		if err != nil {
			return err
		}
		defer aead.Zero(secret)

		s, cleanup := startSpinner("Encrypting record...", verbose)
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

		result, err := workflows.WriteRecord(cmd.Context(), workflows.WriteRecordOptions{
			Session: unlock.Session,
			Store:   store,
			ID:      encryptID,
			Name:    encryptName,
			Kind:    encryptKind,
			OwnerID: userConfig.User.UUID,
			Record:  record,
		})
		if err != nil {
			return err
		}

		if s != nil {
			s.Stop()
		}
		fmt.Printf("%s Encrypted %s as record %s\n", ui.Success.Sprint("✓"), ui.Highlight.Sprint(encryptName), ui.Code.Sprint(result.ID))
		return nil
	},
}
