// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"

	"github.com/jetbase-hq/jetbase/pkg/catalog"
	"github.com/jetbase-hq/jetbase/pkg/plan"
	"github.com/jetbase-hq/jetbase/pkg/state"
	"github.com/jetbase-hq/jetbase/pkg/validate"
)

// DatabaseError wraps a driver error with the file and statement index that
// was executing when it surfaced. File is empty and
// StatementIndex is -1 for errors raised outside a per-file transaction
// (e.g. ensure_tables, lock acquisition).
type DatabaseError struct {
	File           string
	StatementIndex int
	Err            error
}

func (e DatabaseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("database error: %v", e.Err)
	}
	return fmt.Sprintf("database error in %s, statement %d: %v", e.File, e.StatementIndex, e.Err)
}

func (e DatabaseError) Unwrap() error { return e.Err }

// CancelledError reports that an operation stopped because its context was
// cancelled. The lock, if held, is always released before this is returned.
type CancelledError struct {
	Err error
}

func (e CancelledError) Error() string {
	return fmt.Sprintf("operation cancelled: %v", e.Err)
}

func (e CancelledError) Unwrap() error { return e.Err }

// asCancelled reports whether err is exactly context cancellation/deadline
// expiry, wrapping it as CancelledError if so.
func asCancelled(err error) (error, bool) {
	if err == nil {
		return nil, false
	}
	if err == context.Canceled || err == context.DeadlineExceeded {
		return CancelledError{Err: err}, true
	}
	return nil, false
}

// The remaining error kinds are raised by the leaf packages that own the
// checks producing them (pkg/catalog, pkg/validate, pkg/state), not here:
// pkg/engine imports all three, so centralizing their error types in this
// package would create an import cycle the moment one of those packages
// needed to name an engine type. These aliases re-export them so a caller
// importing only pkg/engine can still name every kind with errors.As.
type (
	InvalidMigrationFilenameError  = catalog.InvalidMigrationFilenameError
	MigrationFilenameTooLongError  = catalog.MigrationFilenameTooLongError
	DuplicateMigrationVersionError = catalog.DuplicateMigrationVersionError
	DirectoryNotFoundError         = catalog.DirectoryNotFoundError

	OutOfOrderMigrationError       = validate.OutOfOrderMigrationError
	MissingMigrationFileError      = validate.MissingMigrationFileError
	MissingRepeatableFileError     = validate.MissingRepeatableFileError
	MigrationChecksumMismatchError = validate.MigrationChecksumMismatchError
	MigrationVersionMismatchError  = validate.MigrationVersionMismatchError

	AlreadyLockedError   = state.AlreadyLockedError
	VersionNotFoundError = state.VersionNotFoundError

	// InvalidArgumentError covers the mutually-exclusive-options and
	// non-positive-count cases.
	InvalidArgumentError = plan.InvalidPlanOptionsError
)
