package cmd

import (
	logger "github.com/teachertools/satchel/internal/logging"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	VaultCmd = &cobra.Command{
		Use:   "vault",
		Short: "Manage the encrypted vault and protected records",
		Long:  `Provides enrollment, encryption, decryption, rotation, and recovery for protected student records.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing vault command with verbose=%t, debug=%t", verbose, debug)
		},
	}
)

func init() {
	VaultCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	VaultCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	VaultCmd.AddCommand(enrollCmd)
	VaultCmd.AddCommand(encryptCmd)
	VaultCmd.AddCommand(decryptCmd)
	VaultCmd.AddCommand(listCmd)
	VaultCmd.AddCommand(removeCmd)
	VaultCmd.AddCommand(rotateCmd)
	VaultCmd.AddCommand(recoveryCmd)
	VaultCmd.AddCommand(statusCmd)
}
