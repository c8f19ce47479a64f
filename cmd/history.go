// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jetbase-hq/jetbase/pkg/state"
)

// appliedAtLayout renders applied_at timestamps for display.
const appliedAtLayout = "2006-01-02 15:04:05.000000"

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List every applied migration in execution order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := NewEngine()
		if err != nil {
			return err
		}
		defer m.Close()

		records, err := m.History(cmd.Context())
		if err != nil {
			return err
		}

		if len(records) == 0 {
			pterm.Info.Println("No migrations have been applied")
			return nil
		}

		rows := pterm.TableData{{"Version", "Description", "Filename", "Type", "Applied At", "Checksum"}}
		for _, r := range records {
			rows = append(rows, historyRow(r))
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the most recently applied versioned migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := NewEngine()
		if err != nil {
			return err
		}
		defer m.Close()

		record, err := m.Current(cmd.Context())
		if err != nil {
			return err
		}

		if record == nil {
			pterm.Info.Println("No versioned migrations have been applied")
			return nil
		}

		rows := pterm.TableData{
			{"Version", "Description", "Filename", "Type", "Applied At", "Checksum"},
			historyRow(*record),
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

func historyRow(r state.Record) []string {
	version := ""
	if r.Version != nil {
		version = *r.Version
	}
	appliedAt := ""
	if r.AppliedAt.Valid {
		appliedAt = r.AppliedAt.Time.Format(appliedAtLayout)
	}
	return []string{version, r.Description, r.Filename, string(r.MigrationType), appliedAt, r.Checksum}
}
