// SPDX-License-Identifier: Apache-2.0

package dialect

type databricksDialect struct{}

// Databricks implements the full Dialect statement surface; DriverName
// points at a database/sql driver name ("databricks") this module does not
// register itself, so callers must import a compatible driver.
// SuppressesDriverLogs is true: the Databricks connector logs at a noisy
// default level that the storage adapter quiets for the call.
var Databricks Dialect = databricksDialect{}

func (databricksDialect) Name() string       { return "databricks" }
func (databricksDialect) DriverName() string { return "databricks" }

func (databricksDialect) IdentityColumnClause() string {
	return "GENERATED ALWAYS AS IDENTITY"
}

func (databricksDialect) BooleanLiteral(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func (databricksDialect) CreateMigrationsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS jetbase_migrations (
	order_executed BIGINT GENERATED ALWAYS AS IDENTITY,
	version STRING,
	description STRING,
	filename STRING NOT NULL,
	migration_type STRING NOT NULL,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP(),
	checksum STRING
)`
}

func (databricksDialect) CreateLockTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS jetbase_lock (
	id INT NOT NULL,
	is_locked BOOLEAN NOT NULL DEFAULT FALSE,
	locked_at TIMESTAMP,
	process_id STRING
)`
}

func (databricksDialect) InitializeLockRowSQL() string {
	return `INSERT INTO jetbase_lock (id, is_locked) SELECT 1, FALSE WHERE NOT EXISTS (SELECT 1 FROM jetbase_lock WHERE id = 1)`
}

func (databricksDialect) TableExistsSQL(table string) (string, []any) {
	return `SELECT COUNT(*) > 0 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?`,
		[]any{table}
}

func (databricksDialect) InsertVersionedSQL() string {
	return `INSERT INTO jetbase_migrations (version, description, filename, migration_type, checksum) VALUES (?, ?, ?, ?, ?)`
}

func (databricksDialect) InsertRepeatableSQL() string {
	return `INSERT INTO jetbase_migrations (version, description, filename, migration_type, checksum) VALUES (NULL, ?, ?, ?, ?)`
}

func (databricksDialect) DeleteByVersionSQL() string {
	return `DELETE FROM jetbase_migrations WHERE version = ?`
}

func (databricksDialect) UpdateRepeatableSQL() string {
	return `UPDATE jetbase_migrations SET checksum = ?, applied_at = CURRENT_TIMESTAMP() WHERE filename = ? AND migration_type = ?`
}

func (databricksDialect) RepairChecksumSQL() string {
	return `UPDATE jetbase_migrations SET checksum = ? WHERE version = ?`
}

func (databricksDialect) DeleteMissingVersionSQL() string {
	return `DELETE FROM jetbase_migrations WHERE version = ?`
}

func (databricksDialect) DeleteMissingRepeatableSQL() string {
	return `DELETE FROM jetbase_migrations WHERE filename = ?`
}

func (databricksDialect) AcquireLockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = TRUE, locked_at = ?, process_id = ? WHERE id = 1 AND is_locked = FALSE`
}

func (databricksDialect) ReleaseLockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = FALSE, locked_at = NULL, process_id = NULL WHERE id = 1 AND process_id = ?`
}

func (databricksDialect) ForceUnlockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = FALSE, locked_at = NULL, process_id = NULL WHERE id = 1`
}

func (databricksDialect) LockStatusSQL() string {
	return `SELECT is_locked, locked_at FROM jetbase_lock WHERE id = 1`
}

func (databricksDialect) HistorySQL(filter HistoryFilter) string {
	return historySQL(filter, "?")
}

func (databricksDialect) LatestVersionedSQL() string {
	return `SELECT order_executed, version, description, filename, migration_type, applied_at, checksum
		FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed DESC LIMIT 1`
}

func (databricksDialect) LatestVersionsSQL() string {
	return `SELECT version FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed DESC LIMIT ?`
}

func (databricksDialect) VersionsAfterSQL() string {
	return `SELECT version FROM jetbase_migrations
		WHERE migration_type = 'VERSIONED'
		AND order_executed > (SELECT order_executed FROM jetbase_migrations WHERE version = ?)
		ORDER BY order_executed DESC`
}

func (databricksDialect) VersionExistsSQL() string {
	return `SELECT COUNT(*) > 0 FROM jetbase_migrations WHERE version = ? AND migration_type = 'VERSIONED'`
}

func (databricksDialect) VersionsAndChecksumsSQL() string {
	return `SELECT version, checksum FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed ASC`
}

func (databricksDialect) RunsOnChangeChecksumsSQL() string {
	return `SELECT filename, checksum FROM jetbase_migrations WHERE migration_type = 'RUNS_ON_CHANGE'`
}

func (databricksDialect) RunsAlwaysFilenamesSQL() string {
	return `SELECT filename FROM jetbase_migrations WHERE migration_type = 'RUNS_ALWAYS'`
}

func (databricksDialect) SearchPathStatement(string) (string, bool) {
	return "", false
}

func (databricksDialect) SuppressesDriverLogs() bool { return true }

func (databricksDialect) IsTransientError(error) bool { return false }
