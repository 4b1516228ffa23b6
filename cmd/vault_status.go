package cmd

import (
	"fmt"

	"github.com/teachertools/satchel/internal/ui"
	"github.com/teachertools/satchel/internal/workflows"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the vault's non-protected state",
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting status command")

		store, _, err := openStore()
		if err != nil {
			return err
		}

		result, err := workflows.Status(cmd.Context(), workflows.StatusOptions{Store: store})
		if err != nil {
			return err
		}

		if !result.Enrolled {
			fmt.Printf("%s Vault is not enrolled, run %s\n", ui.Warning.Sprint("!"), ui.Code.Sprint("satchel vault enroll"))
			return nil
		}

		fmt.Printf("%s Vault enrolled\n", ui.Success.Sprint("✓"))
		fmt.Printf("  Derivation version: %d\n", result.KDFVersion)
		if result.HasRecovery {
			fmt.Printf("  Recovery code:      %s\n", ui.Success.Sprint("configured"))
		} else {
			fmt.Printf("  Recovery code:      %s\n", ui.Muted.Sprint("not configured"))
		}
		fmt.Printf("  Records stored:     %d\n", result.RecordCount)
		return nil
	},
}
