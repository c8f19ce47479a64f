// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jetbase-hq/jetbase/cmd/flags"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the migrations directory",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		dir := flags.MigrationsDir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		pterm.Success.Printfln("Created %s", dir)
		return nil
	},
}

var newCmd = &cobra.Command{
	Use:     "new <description>",
	Short:   "Scaffold the next versioned migration file",
	Example: "new \"add users table\"",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := NewEngine()
		if err != nil {
			return err
		}
		defer m.Close()

		filename, err := m.NewMigration(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		pterm.Success.Printfln("Created %s", filename)
		return nil
	},
}
