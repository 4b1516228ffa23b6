package cmd

import (
	"fmt"

	"github.com/teachertools/satchel/internal/ui"
	"github.com/teachertools/satchel/internal/workflows"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <record-id>",
	Short: "Delete a record envelope from the vault",
	Long: `Deletes a stored record envelope.

Deleting the envelope makes the record unrecoverable: only the
ciphertext exists outside an active session.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting remove command")
		recordID := args[0]

		store, _, err := openStore()
		if err != nil {
			return err
		}

		if err := workflows.RemoveRecord(cmd.Context(), store, recordID); err != nil {
			return err
		}

		fmt.Printf("%s Removed record %s\n", ui.Success.Sprint("✓"), ui.Code.Sprint(recordID))
		return nil
	},
}
