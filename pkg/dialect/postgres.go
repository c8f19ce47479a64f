// SPDX-License-Identifier: Apache-2.0

package dialect

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// serializationFailureErrorCode and lockNotAvailableErrorCode are the two
// PostgreSQL error codes a caller may safely retry: a concurrent
// serializable-transaction conflict, and a statement-level lock_timeout.
const (
	serializationFailureErrorCode pq.ErrorCode = "40001"
	lockNotAvailableErrorCode     pq.ErrorCode = "55P03"
)

type postgresDialect struct{}

// Postgres is the PostgreSQL implementation of Dialect. Its query surface
// is the baseline the other backends diverge from.
var Postgres Dialect = postgresDialect{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "postgres" }

func (postgresDialect) IdentityColumnClause() string {
	return "GENERATED ALWAYS AS IDENTITY"
}

func (postgresDialect) BooleanLiteral(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (postgresDialect) CreateMigrationsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS jetbase_migrations (
	order_executed INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	version TEXT,
	description TEXT,
	filename TEXT NOT NULL,
	migration_type TEXT NOT NULL,
	applied_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP,
	checksum TEXT
)`
}

func (postgresDialect) CreateLockTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS jetbase_lock (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	is_locked BOOLEAN NOT NULL DEFAULT FALSE,
	locked_at TIMESTAMP(6),
	process_id TEXT
)`
}

func (postgresDialect) InitializeLockRowSQL() string {
	return `INSERT INTO jetbase_lock (id, is_locked) VALUES (1, FALSE) ON CONFLICT (id) DO NOTHING`
}

func (postgresDialect) TableExistsSQL(table string) (string, []any) {
	return `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1)`,
		[]any{table}
}

func (postgresDialect) InsertVersionedSQL() string {
	return `INSERT INTO jetbase_migrations (version, description, filename, migration_type, checksum) VALUES ($1, $2, $3, $4, $5)`
}

func (postgresDialect) InsertRepeatableSQL() string {
	return `INSERT INTO jetbase_migrations (version, description, filename, migration_type, checksum) VALUES (NULL, $1, $2, $3, $4)`
}

func (postgresDialect) DeleteByVersionSQL() string {
	return `DELETE FROM jetbase_migrations WHERE version = $1`
}

func (postgresDialect) UpdateRepeatableSQL() string {
	return `UPDATE jetbase_migrations SET checksum = $1, applied_at = CURRENT_TIMESTAMP WHERE filename = $2 AND migration_type = $3`
}

func (postgresDialect) RepairChecksumSQL() string {
	return `UPDATE jetbase_migrations SET checksum = $1 WHERE version = $2`
}

func (postgresDialect) DeleteMissingVersionSQL() string {
	return `DELETE FROM jetbase_migrations WHERE version = $1`
}

func (postgresDialect) DeleteMissingRepeatableSQL() string {
	return `DELETE FROM jetbase_migrations WHERE filename = $1`
}

func (postgresDialect) AcquireLockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = TRUE, locked_at = $1, process_id = $2 WHERE id = 1 AND is_locked = FALSE`
}

func (postgresDialect) ReleaseLockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = FALSE, locked_at = NULL, process_id = NULL WHERE id = 1 AND process_id = $1`
}

func (postgresDialect) ForceUnlockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = FALSE, locked_at = NULL, process_id = NULL WHERE id = 1`
}

func (postgresDialect) LockStatusSQL() string {
	return `SELECT is_locked, locked_at FROM jetbase_lock WHERE id = 1`
}

func (postgresDialect) HistorySQL(filter HistoryFilter) string {
	return historySQL(filter, "$1")
}

func (postgresDialect) LatestVersionedSQL() string {
	return `SELECT order_executed, version, description, filename, migration_type, applied_at, checksum
		FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed DESC LIMIT 1`
}

func (postgresDialect) LatestVersionsSQL() string {
	return `SELECT version FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed DESC LIMIT $1`
}

func (postgresDialect) VersionsAfterSQL() string {
	return `SELECT version FROM jetbase_migrations
		WHERE migration_type = 'VERSIONED'
		AND order_executed > (SELECT order_executed FROM jetbase_migrations WHERE version = $1)
		ORDER BY order_executed DESC`
}

func (postgresDialect) VersionExistsSQL() string {
	return `SELECT EXISTS (SELECT 1 FROM jetbase_migrations WHERE version = $1 AND migration_type = 'VERSIONED')`
}

func (postgresDialect) VersionsAndChecksumsSQL() string {
	return `SELECT version, checksum FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed ASC`
}

func (postgresDialect) RunsOnChangeChecksumsSQL() string {
	return `SELECT filename, checksum FROM jetbase_migrations WHERE migration_type = 'RUNS_ON_CHANGE'`
}

func (postgresDialect) RunsAlwaysFilenamesSQL() string {
	return `SELECT filename FROM jetbase_migrations WHERE migration_type = 'RUNS_ALWAYS'`
}

func (postgresDialect) SearchPathStatement(schema string) (string, bool) {
	if schema == "" {
		return "", false
	}
	return fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(schema)), true
}

func (postgresDialect) SuppressesDriverLogs() bool { return false }

func (postgresDialect) IsTransientError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == serializationFailureErrorCode || pqErr.Code == lockNotAvailableErrorCode
	}
	return false
}

// historySQL builds the history-snapshot statement shared by all five
// backends. param is the bind-parameter placeholder to use for the
// migration_type filter ("$1" for Postgres, "?" for the others).
func historySQL(filter HistoryFilter, param string) string {
	const cols = `order_executed, version, description, filename, migration_type, applied_at, checksum`
	query := "SELECT " + cols + " FROM jetbase_migrations"

	switch {
	case filter.MigrationType != "":
		query += " WHERE migration_type = " + param
	case filter.AllRepeatables:
		query += ` WHERE migration_type IN ('RUNS_ALWAYS', 'RUNS_ON_CHANGE')`
	}

	if filter.Ascending {
		query += " ORDER BY order_executed ASC"
	} else {
		query += " ORDER BY order_executed DESC"
	}

	return query
}
