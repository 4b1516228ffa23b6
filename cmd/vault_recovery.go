package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/teachertools/satchel/internal/aead"
	"github.com/teachertools/satchel/internal/ui"
	"github.com/teachertools/satchel/internal/workflows"

	"github.com/spf13/cobra"
)

var recoveryCmd = &cobra.Command{
	Use:   "recovery",
	Short: "Manage the vault's recovery code",
}

func init() {
	recoveryCmd.AddCommand(recoverySetupCmd)
	recoveryCmd.AddCommand(recoveryRestoreCmd)
}

var recoverySetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create a recovery code for this vault",
	Long: `Wraps the vault's data key under a new random recovery key.

The recovery code is shown exactly once and never stored anywhere.
Write it down and keep it offline: it unlocks all protected records if
the passphrase is lost. Losing both makes the data permanently
unrecoverable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting recovery setup command")

		store, userConfig, err := openStore()
		if err != nil {
			return err
		}

		secret, err := readSecret("Vault passphrase: ")
		if err != nil {
			return err
		}
		defer aead.Zero(secret)

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

		result, err := workflows.RecoverySetup(cmd.Context(), workflows.RecoverySetupOptions{
			Session:   unlock.Session,
			Store:     store,
			UserEmail: userConfig.User.Email,
			UserUUID:  userConfig.User.UUID,
		})
		if err != nil {
			return err
		}

		fmt.Printf("%s Recovery code created. Write it down now, it will not be shown again:\n\n", ui.Success.Sprint("✓"))
		fmt.Printf("  %s\n\n", ui.Code.Sprint(result.Code))
		fmt.Printf("%s\n", ui.Warning.Sprint("Anyone holding this code can decrypt the vault."))
		return nil
	},
}

var recoveryRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Regain access with a recovery code",
	Long: `Unwraps the data key with a recovery code and sets a new passphrase.

The data key never changes, so all existing records stay valid. The old
passphrase stops working once restore completes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting recovery restore command")

		store, userConfig, err := openStore()
		if err != nil {
			return err
		}

		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Recovery code: ")
		code, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read recovery code: %w", err)
		}
		code = strings.TrimSpace(code)

		newSecret, err := readSecret("New passphrase: ")
		if err != nil {
			return err
		}
		defer aead.Zero(newSecret)

		s, cleanup := startSpinner("Restoring vault access...", verbose)
		defer cleanup()

		result, err := workflows.Recover(cmd.Context(), workflows.RecoverOptions{
			Code:      code,
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
		fmt.Printf("%s Vault access restored (derivation version %d)\n", ui.Success.Sprint("✓"), result.KDFVersion)
		return nil
	},
}
