// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"

	"github.com/jetbase-hq/jetbase/pkg/engine"
)

// ExitCode maps an error returned by Execute onto the process exit code:
// 0 success, 1 generic failure, 2 invalid arguments, 3 lock held,
// 4 validation failure.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var (
		invalidArg   engine.InvalidArgumentError
		notFound     engine.VersionNotFoundError
		locked       engine.AlreadyLockedError
		outOfOrder   engine.OutOfOrderMigrationError
		missingFile  engine.MissingMigrationFileError
		missingRep   engine.MissingRepeatableFileError
		checksum     engine.MigrationChecksumMismatchError
		verMismatch  engine.MigrationVersionMismatchError
		badFilename  engine.InvalidMigrationFilenameError
		longFilename engine.MigrationFilenameTooLongError
		dupVersion   engine.DuplicateMigrationVersionError
	)

	switch {
	case errors.As(err, &invalidArg), errors.As(err, &notFound):
		return 2
	case errors.As(err, &locked):
		return 3
	case errors.As(err, &outOfOrder), errors.As(err, &missingFile),
		errors.As(err, &missingRep), errors.As(err, &checksum),
		errors.As(err, &verMismatch), errors.As(err, &badFilename),
		errors.As(err, &longFilename), errors.As(err, &dupVersion):
		return 4
	default:
		return 1
	}
}
