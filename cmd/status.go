// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the latest applied version and all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := NewEngine()
		if err != nil {
			return err
		}
		defer m.Close()

		s, err := m.Status(cmd.Context())
		if err != nil {
			return err
		}

		if s.LatestVersion == "" {
			pterm.Info.Println("No versioned migrations have been applied")
		} else {
			pterm.Info.Printfln("Current version: %s", s.LatestVersion)
		}

		rows := pterm.TableData{{"Filename", "Kind"}}
		for _, v := range s.PendingVersioned {
			rows = append(rows, []string{v.Filename, "versioned"})
		}
		for _, f := range s.PendingRunsAlways {
			rows = append(rows, []string{f.Filename, "runs-always"})
		}
		for _, f := range s.PendingRunsOnChange {
			rows = append(rows, []string{f.Filename, "runs-on-change"})
		}

		if len(rows) == 1 {
			pterm.Info.Println("No pending migrations")
			return nil
		}

		pterm.DefaultSection.Println("Pending migrations")
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}
