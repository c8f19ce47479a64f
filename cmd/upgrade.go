// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jetbase-hq/jetbase/pkg/engine"
)

func upgradeCmd() *cobra.Command {
	var count int
	var toVersion string
	var dryRun bool

	upgradeCmd := &cobra.Command{
		Use:     "upgrade",
		Short:   "Apply pending migrations to the database",
		Example: "upgrade --count 2",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts []engine.UpgradeOption
			if cmd.Flags().Changed("count") {
				opts = append(opts, engine.WithUpgradeCount(count))
			}
			if toVersion != "" {
				opts = append(opts, engine.WithUpgradeToVersion(toVersion))
			}
			if dryRun {
				opts = append(opts, engine.WithUpgradeDryRun())
			}

			m, err := NewEngine(engine.WithEvents(printEvent))
			if err != nil {
				return err
			}
			defer m.Close()

			p, err := m.Upgrade(cmd.Context(), opts...)
			if err != nil {
				return err
			}

			if len(p.Items) == 0 {
				pterm.Info.Println("Database is up to date; no migrations to apply")
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

			pterm.Success.Printfln("Applied %d migration(s)", len(p.Items))
			return nil
		},
	}

	upgradeCmd.Flags().IntVarP(&count, "count", "n", 0, "Apply at most this many pending versioned migrations")
	upgradeCmd.Flags().StringVarP(&toVersion, "to-version", "t", "", "Apply pending versioned migrations up to and including this version")
	upgradeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the planned statements without executing them")

	return upgradeCmd
}

// printEvent renders one engine progress event.
func printEvent(ev engine.Event) {
	switch ev.Outcome {
	case engine.Started:
		pterm.Info.Printfln("Applying %s...", ev.Filename)
	case engine.Applied:
		pterm.Success.Printfln("Applied %s", ev.Filename)
	case engine.Failed:
		pterm.Error.Printfln("Failed %s: %s", ev.Filename, ev.Err)
	case engine.Skipped:
		pterm.Debug.Printfln("Skipped %s", ev.Filename)
	}
}
