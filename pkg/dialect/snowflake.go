// SPDX-License-Identifier: Apache-2.0

package dialect

type snowflakeDialect struct{}

// Snowflake implements the full Dialect statement surface so the
// validator/planner/executor never special-case it, but DriverName points
// at a database/sql driver name ("snowflake") this module does not register
// itself, so callers must import a compatible driver.
var Snowflake Dialect = snowflakeDialect{}

func (snowflakeDialect) Name() string       { return "snowflake" }
func (snowflakeDialect) DriverName() string { return "snowflake" }

func (snowflakeDialect) IdentityColumnClause() string {
	return "AUTOINCREMENT"
}

func (snowflakeDialect) BooleanLiteral(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (snowflakeDialect) CreateMigrationsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS jetbase_migrations (
	order_executed INTEGER AUTOINCREMENT PRIMARY KEY,
	version VARCHAR,
	description VARCHAR,
	filename VARCHAR NOT NULL,
	migration_type VARCHAR NOT NULL,
	applied_at TIMESTAMP_NTZ(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	checksum VARCHAR
)`
}

func (snowflakeDialect) CreateLockTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS jetbase_lock (
	id INTEGER PRIMARY KEY,
	is_locked BOOLEAN NOT NULL DEFAULT FALSE,
	locked_at TIMESTAMP_NTZ(6),
	process_id VARCHAR
)`
}

func (snowflakeDialect) InitializeLockRowSQL() string {
	return `INSERT INTO jetbase_lock (id, is_locked) SELECT 1, FALSE WHERE NOT EXISTS (SELECT 1 FROM jetbase_lock WHERE id = 1)`
}

func (snowflakeDialect) TableExistsSQL(table string) (string, []any) {
	return `SELECT COUNT(*) > 0 FROM information_schema.tables WHERE table_schema = CURRENT_SCHEMA() AND table_name = UPPER(?)`,
		[]any{table}
}

func (snowflakeDialect) InsertVersionedSQL() string {
	return `INSERT INTO jetbase_migrations (version, description, filename, migration_type, checksum) VALUES (?, ?, ?, ?, ?)`
}

func (snowflakeDialect) InsertRepeatableSQL() string {
	return `INSERT INTO jetbase_migrations (version, description, filename, migration_type, checksum) VALUES (NULL, ?, ?, ?, ?)`
}

func (snowflakeDialect) DeleteByVersionSQL() string {
	return `DELETE FROM jetbase_migrations WHERE version = ?`
}

func (snowflakeDialect) UpdateRepeatableSQL() string {
	return `UPDATE jetbase_migrations SET checksum = ?, applied_at = CURRENT_TIMESTAMP(6) WHERE filename = ? AND migration_type = ?`
}

func (snowflakeDialect) RepairChecksumSQL() string {
	return `UPDATE jetbase_migrations SET checksum = ? WHERE version = ?`
}

func (snowflakeDialect) DeleteMissingVersionSQL() string {
	return `DELETE FROM jetbase_migrations WHERE version = ?`
}

func (snowflakeDialect) DeleteMissingRepeatableSQL() string {
	return `DELETE FROM jetbase_migrations WHERE filename = ?`
}

func (snowflakeDialect) AcquireLockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = TRUE, locked_at = ?, process_id = ? WHERE id = 1 AND is_locked = FALSE`
}

func (snowflakeDialect) ReleaseLockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = FALSE, locked_at = NULL, process_id = NULL WHERE id = 1 AND process_id = ?`
}

func (snowflakeDialect) ForceUnlockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = FALSE, locked_at = NULL, process_id = NULL WHERE id = 1`
}

func (snowflakeDialect) LockStatusSQL() string {
	return `SELECT is_locked, locked_at FROM jetbase_lock WHERE id = 1`
}

func (snowflakeDialect) HistorySQL(filter HistoryFilter) string {
	return historySQL(filter, "?")
}

func (snowflakeDialect) LatestVersionedSQL() string {
	return `SELECT order_executed, version, description, filename, migration_type, applied_at, checksum
		FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed DESC LIMIT 1`
}

func (snowflakeDialect) LatestVersionsSQL() string {
	return `SELECT version FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed DESC LIMIT ?`
}

func (snowflakeDialect) VersionsAfterSQL() string {
	return `SELECT version FROM jetbase_migrations
		WHERE migration_type = 'VERSIONED'
		AND order_executed > (SELECT order_executed FROM jetbase_migrations WHERE version = ?)
		ORDER BY order_executed DESC`
}

func (snowflakeDialect) VersionExistsSQL() string {
	return `SELECT COUNT(*) > 0 FROM jetbase_migrations WHERE version = ? AND migration_type = 'VERSIONED'`
}

func (snowflakeDialect) VersionsAndChecksumsSQL() string {
	return `SELECT version, checksum FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed ASC`
}

func (snowflakeDialect) RunsOnChangeChecksumsSQL() string {
	return `SELECT filename, checksum FROM jetbase_migrations WHERE migration_type = 'RUNS_ON_CHANGE'`
}

func (snowflakeDialect) RunsAlwaysFilenamesSQL() string {
	return `SELECT filename FROM jetbase_migrations WHERE migration_type = 'RUNS_ALWAYS'`
}

func (snowflakeDialect) SearchPathStatement(string) (string, bool) {
	return "", false
}

func (snowflakeDialect) SuppressesDriverLogs() bool { return false }

func (snowflakeDialect) IsTransientError(error) bool { return false }
