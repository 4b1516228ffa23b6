package main

import (
	"fmt"
	"os"

	"github.com/teachertools/satchel/cmd"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "satchel",
	Short: "Satchel - End-to-end encryption for classroom student data.",
	Long: `Satchel keeps personally identifiable student data encrypted end-to-end.

Rosters and seating charts are encrypted on this machine with a key derived
from your passphrase. The storage backend only ever sees opaque envelopes:
it cannot read student data, and neither can anyone who compromises it.

Usage:
  satchel <command> [flags]

Available Commands:
  vault      Manage the encrypted vault and protected records

Run 'satchel help <command>' for more details on a specific command.
`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Welcome to Satchel! Run 'satchel --help' to see available commands.")
	},
}

func main() {
	rootCmd.AddCommand(cmd.VaultCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
