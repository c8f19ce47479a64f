// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jetbase-hq/jetbase/pkg/engine"
)

func validateChecksumsCmd() *cobra.Command {
	var fix bool

	validateChecksumsCmd := &cobra.Command{
		Use:   "validate-checksums",
		Short: "Audit applied migrations for checksum drift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := NewEngine()
			if err != nil {
				return err
			}
			defer m.Close()

			drift, err := m.ValidateChecksums(cmd.Context(), fix)
			if err != nil {
				return err
			}

			printChecksumDrift(drift, fix)
			return nil
		},
	}

	validateChecksumsCmd.Flags().BoolVar(&fix, "fix", false, "Repair the stored checksums instead of only reporting drift")

	return validateChecksumsCmd
}

func validateFilesCmd() *cobra.Command {
	var fix bool

	validateFilesCmd := &cobra.Command{
		Use:   "validate-files",
		Short: "Audit applied migrations whose files are missing from disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := NewEngine()
			if err != nil {
				return err
			}
			defer m.Close()

			drift, err := m.ValidateFiles(cmd.Context(), fix)
			if err != nil {
				return err
			}

			printFileDrift(drift, fix)
			return nil
		},
	}

	validateFilesCmd.Flags().BoolVar(&fix, "fix", false, "Delete the orphaned history rows instead of only reporting them")

	return validateFilesCmd
}

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Repair both checksum drift and missing-file drift",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := NewEngine()
		if err != nil {
			return err
		}
		defer m.Close()

		report, err := m.Fix(cmd.Context())
		if err != nil {
			return err
		}

		printChecksumDrift(report.RepairedChecksums, true)
		printFileDrift(report.RemovedFiles, true)
		return nil
	},
}

func printChecksumDrift(drift []engine.ChecksumDrift, fixed bool) {
	if len(drift) == 0 {
		pterm.Info.Println("No checksum drift found")
		return
	}
	for _, d := range drift {
		if fixed {
			pterm.Success.Printfln("Repaired checksum for version %s (%s -> %s)", d.Version, d.OldChecksum, d.NewChecksum)
		} else {
			pterm.Warning.Printfln("Checksum drift for version %s (stored %s, expected %s)", d.Version, d.OldChecksum, d.NewChecksum)
		}
	}
}

func printFileDrift(drift engine.FileDrift, fixed bool) {
	if drift.IsEmpty() {
		pterm.Info.Println("No missing migration files found")
		return
	}
	for _, version := range drift.MissingVersions {
		if fixed {
			pterm.Success.Printfln("Forgot missing versioned migration %s", version)
		} else {
			pterm.Warning.Printfln("Applied version %s has no file on disk", version)
		}
	}
	for _, filename := range drift.MissingRepeatables {
		if fixed {
			pterm.Success.Printfln("Forgot missing repeatable migration %s", filename)
		} else {
			pterm.Warning.Printfln("Applied repeatable %s has no file on disk", filename)
		}
	}
}
