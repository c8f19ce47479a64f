// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var lockStatusCmd = &cobra.Command{
	Use:   "lock-status",
	Short: "Show whether the migration lock is held",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := NewEngine()
		if err != nil {
			return err
		}
		defer m.Close()

		status, err := m.LockStatus(cmd.Context())
		if err != nil {
			return err
		}

		if !status.IsLocked {
			pterm.Info.Println("The migration lock is not held")
			return nil
		}

		if status.LockedAt.Valid {
			pterm.Warning.Printfln("The migration lock is held since %s", status.LockedAt.Time.Format(appliedAtLayout))
		} else {
			pterm.Warning.Println("The migration lock is held")
		}
		return nil
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Force-release the migration lock",
	Long:  "Force-release the migration lock. Only do this when no other migration run is in flight.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := NewEngine()
		if err != nil {
			return err
		}
		defer m.Close()

		if err := m.Unlock(cmd.Context()); err != nil {
			return err
		}

		pterm.Success.Println("Migration lock released")
		return nil
	},
}
