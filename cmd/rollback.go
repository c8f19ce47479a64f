// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jetbase-hq/jetbase/pkg/engine"
)

func rollbackCmd() *cobra.Command {
	var count int
	var toVersion string
	var dryRun bool

	rollbackCmd := &cobra.Command{
		Use:     "rollback",
		Short:   "Roll back applied versioned migrations",
		Example: "rollback --count 1",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts []engine.RollbackOption
			if cmd.Flags().Changed("count") {
				opts = append(opts, engine.WithRollbackCount(count))
			}
			if toVersion != "" {
				opts = append(opts, engine.WithRollbackToVersion(toVersion))
			}
			if dryRun {
				opts = append(opts, engine.WithRollbackDryRun())
			}

			m, err := NewEngine(engine.WithEvents(printEvent))
			if err != nil {
				return err
			}
			defer m.Close()

			p, err := m.Rollback(cmd.Context(), opts...)
			if err != nil {
				return err
			}

			if len(p.Items) == 0 {
				pterm.Info.Println("Nothing to roll back")
				return nil
			}

			if dryRun {
				for _, item := range p.Items {
					pterm.DefaultSection.Println(item.Filename)
					for _, stmt := range item.Statements {
						fmt.Println(stmt + ";")
					}
				}
				return nil
			}

			pterm.Success.Printfln("Rolled back %d migration(s)", len(p.Items))
			return nil
		},
	}

	rollbackCmd.Flags().IntVarP(&count, "count", "n", 1, "Roll back this many of the most recently applied versioned migrations")
	rollbackCmd.Flags().StringVarP(&toVersion, "to-version", "t", "", "Roll back every versioned migration applied after this version")
	rollbackCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the planned statements without executing them")

	return rollbackCmd
}
