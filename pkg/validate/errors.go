// SPDX-License-Identifier: Apache-2.0

package validate

import "fmt"

// OutOfOrderMigrationError is raised when a catalog file carries a version
// lower than the latest applied version and was never itself applied.
type OutOfOrderMigrationError struct {
	Filename      string
	Version       string
	LatestVersion string
}

func (e OutOfOrderMigrationError) Error() string {
	return fmt.Sprintf(
		"%s has version %s which is lower than the latest migrated version %s; "+
			"new migration files cannot have versions lower than the latest migrated version",
		e.Filename, e.Version, e.LatestVersion)
}

// MissingMigrationFileError is raised when a version recorded as applied in
// jetbase_migrations has no corresponding file in the current catalog.
type MissingMigrationFileError struct {
	Version string
}

func (e MissingMigrationFileError) Error() string {
	return fmt.Sprintf("version %s has been migrated but is missing from the current migration files", e.Version)
}

// MissingRepeatableFileError is raised when a repeatable filename recorded
// as applied has no corresponding file in the current catalog.
type MissingRepeatableFileError struct {
	Filename string
}

func (e MissingRepeatableFileError) Error() string {
	return fmt.Sprintf("%s has been migrated but is missing from the current migration files", e.Filename)
}

// MigrationChecksumMismatchError is raised when a still-present file's
// recomputed checksum no longer matches the one stored at apply time.
type MigrationChecksumMismatchError struct {
	Version  string
	Filename string
}

func (e MigrationChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for version %s: %s has changed since it was applied", e.Version, e.Filename)
}

// MigrationVersionMismatchError is raised when the checksum-fidelity check
// expects a catalog entry for an applied version and finds none. Normally
// the presence check reports MissingMigrationFileError first; this kind
// fires only when that check was individually skipped.
type MigrationVersionMismatchError struct {
	Expected string
}

func (e MigrationVersionMismatchError) Error() string {
	return fmt.Sprintf("expected a migration file for applied version %s but none was found in the current catalog", e.Expected)
}
