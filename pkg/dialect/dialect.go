// SPDX-License-Identifier: Apache-2.0

// Package dialect isolates the SQL text and small per-backend behaviors that
// differ across the database backends jetbase supports. Each backend is a
// package-level value implementing Dialect; nothing here dispatches through a
// runtime class hierarchy, a single function table is selected once at
// connection time.
package dialect

import "fmt"

// HistoryFilter narrows a history snapshot query.
type HistoryFilter struct {
	// MigrationType restricts to an exact migration_type, e.g. "VERSIONED".
	// Empty means no type filter.
	MigrationType string
	// AllRepeatables restricts to RUNS_ALWAYS and RUNS_ON_CHANGE rows.
	AllRepeatables bool
	// Ascending orders by order_executed ascending when true, descending
	// when false.
	Ascending bool
}

// Dialect exposes every statement whose text varies across backends, plus
// the handful of connection-time behaviors (search path, identity columns,
// boolean encoding) that vary with it.
type Dialect interface {
	// Name is the short backend name, e.g. "postgres".
	Name() string

	// DriverName is the database/sql driver name to pass to sql.Open.
	DriverName() string

	// IdentityColumnClause is the column-definition suffix that makes
	// order_executed a server-assigned monotonic integer.
	IdentityColumnClause() string

	// BooleanLiteral renders a bool the way this backend expects it in a
	// literal SQL statement (used only for the lock row's DEFAULT).
	BooleanLiteral(b bool) string

	CreateMigrationsTableSQL() string
	CreateLockTableSQL() string
	InitializeLockRowSQL() string

	// TableExistsSQL returns the query text and its bind arguments for the
	// table name being checked; every backend passes the name as a bind
	// parameter.
	TableExistsSQL(table string) (query string, args []any)

	InsertVersionedSQL() string
	InsertRepeatableSQL() string
	DeleteByVersionSQL() string
	UpdateRepeatableSQL() string
	RepairChecksumSQL() string
	DeleteMissingVersionSQL() string
	DeleteMissingRepeatableSQL() string

	AcquireLockSQL() string
	ReleaseLockSQL() string
	ForceUnlockSQL() string
	LockStatusSQL() string

	HistorySQL(filter HistoryFilter) string
	LatestVersionedSQL() string
	LatestVersionsSQL() string
	VersionsAfterSQL() string
	VersionExistsSQL() string
	VersionsAndChecksumsSQL() string
	RunsOnChangeChecksumsSQL() string
	RunsAlwaysFilenamesSQL() string

	// SearchPathStatement returns the statement that scopes a connection
	// to a schema, and whether this backend honors one at all.
	SearchPathStatement(schema string) (stmt string, ok bool)

	// SuppressesDriverLogs reports whether pkg/store should quiet the
	// standard logger for the duration of a call against this backend.
	SuppressesDriverLogs() bool

	// IsTransientError reports whether err is a backend-reported
	// serialization/lock-busy condition safe to retry with backoff.
	IsTransientError(err error) bool
}

// ErrUnknownScheme is returned by For when a database URL's scheme does not
// match any registered backend.
type ErrUnknownScheme struct {
	Scheme string
}

func (e ErrUnknownScheme) Error() string {
	return fmt.Sprintf("unrecognized database URL scheme: %q", e.Scheme)
}
