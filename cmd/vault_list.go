package cmd

import (
	"fmt"

	"github.com/teachertools/satchel/internal/ui"
	"github.com/teachertools/satchel/internal/workflows"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored record envelopes",
	Long: `Lists the vault's records by their non-protected metadata.

No passphrase is needed: only ids, names, kinds, and timestamps are
shown. Student data stays encrypted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting list command")

		store, _, err := openStore()
		if err != nil {
			return err
		}

		records, err := workflows.ListRecords(cmd.Context(), store)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println(ui.Muted.Sprint("no records stored"))
			return nil
		}

		for _, r := range records {
			fmt.Printf("%s  %-14s %s  %s\n",
				ui.Code.Sprint(r.ID),
				r.Kind,
				ui.Highlight.Sprint(r.Name),
				ui.Muted.Sprint(r.UpdatedAt.Format("2006-01-02 15:04")))
		}
		return nil
	},
}
