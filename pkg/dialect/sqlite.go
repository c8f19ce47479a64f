// SPDX-License-Identifier: Apache-2.0

package dialect

type sqliteDialect struct{}

// SQLite is the SQLite implementation of Dialect: INTEGER PRIMARY KEY
// AUTOINCREMENT identities, 0/1 booleans, sqlite_master existence checks, and
// STRFTIME-formatted microsecond timestamps.
var SQLite Dialect = sqliteDialect{}

func (sqliteDialect) Name() string       { return "sqlite" }
func (sqliteDialect) DriverName() string { return "sqlite" }

func (sqliteDialect) IdentityColumnClause() string {
	return "AUTOINCREMENT"
}

func (sqliteDialect) BooleanLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (sqliteDialect) CreateMigrationsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS jetbase_migrations (
	order_executed INTEGER PRIMARY KEY AUTOINCREMENT,
	version TEXT,
	description TEXT,
	filename TEXT NOT NULL,
	migration_type TEXT NOT NULL,
	applied_at TEXT DEFAULT (STRFTIME('%Y-%m-%d %H:%M:%f', 'NOW')),
	checksum TEXT
)`
}

func (sqliteDialect) CreateLockTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS jetbase_lock (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	is_locked BOOLEAN NOT NULL DEFAULT 0,
	locked_at TEXT,
	process_id TEXT
)`
}

func (sqliteDialect) InitializeLockRowSQL() string {
	return `INSERT OR IGNORE INTO jetbase_lock (id, is_locked) VALUES (1, 0)`
}

func (sqliteDialect) TableExistsSQL(table string) (string, []any) {
	return `SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = ?`, []any{table}
}

func (sqliteDialect) InsertVersionedSQL() string {
	return `INSERT INTO jetbase_migrations (version, description, filename, migration_type, checksum) VALUES (?, ?, ?, ?, ?)`
}

func (sqliteDialect) InsertRepeatableSQL() string {
	return `INSERT INTO jetbase_migrations (version, description, filename, migration_type, checksum) VALUES (NULL, ?, ?, ?, ?)`
}

func (sqliteDialect) DeleteByVersionSQL() string {
	return `DELETE FROM jetbase_migrations WHERE version = ?`
}

func (sqliteDialect) UpdateRepeatableSQL() string {
	return `UPDATE jetbase_migrations
	SET checksum = ?, applied_at = STRFTIME('%Y-%m-%d %H:%M:%f', 'NOW')
	WHERE filename = ? AND migration_type = ?`
}

func (sqliteDialect) RepairChecksumSQL() string {
	return `UPDATE jetbase_migrations SET checksum = ? WHERE version = ?`
}

func (sqliteDialect) DeleteMissingVersionSQL() string {
	return `DELETE FROM jetbase_migrations WHERE version = ?`
}

func (sqliteDialect) DeleteMissingRepeatableSQL() string {
	return `DELETE FROM jetbase_migrations WHERE filename = ?`
}

func (sqliteDialect) AcquireLockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = 1, locked_at = ?, process_id = ? WHERE id = 1 AND is_locked = 0`
}

func (sqliteDialect) ReleaseLockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = 0, locked_at = NULL, process_id = NULL WHERE id = 1 AND process_id = ?`
}

func (sqliteDialect) ForceUnlockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = 0, locked_at = NULL, process_id = NULL WHERE id = 1`
}

func (sqliteDialect) LockStatusSQL() string {
	return `SELECT is_locked, locked_at FROM jetbase_lock WHERE id = 1`
}

func (sqliteDialect) HistorySQL(filter HistoryFilter) string {
	return historySQL(filter, "?")
}

func (sqliteDialect) LatestVersionedSQL() string {
	return `SELECT order_executed, version, description, filename, migration_type, applied_at, checksum
		FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed DESC LIMIT 1`
}

func (sqliteDialect) LatestVersionsSQL() string {
	return `SELECT version FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed DESC LIMIT ?`
}

func (sqliteDialect) VersionsAfterSQL() string {
	return `SELECT version FROM jetbase_migrations
		WHERE migration_type = 'VERSIONED'
		AND order_executed > (SELECT order_executed FROM jetbase_migrations WHERE version = ?)
		ORDER BY order_executed DESC`
}

func (sqliteDialect) VersionExistsSQL() string {
	return `SELECT COUNT(*) > 0 FROM jetbase_migrations WHERE version = ? AND migration_type = 'VERSIONED'`
}

func (sqliteDialect) VersionsAndChecksumsSQL() string {
	return `SELECT version, checksum FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed ASC`
}

func (sqliteDialect) RunsOnChangeChecksumsSQL() string {
	return `SELECT filename, checksum FROM jetbase_migrations WHERE migration_type = 'RUNS_ON_CHANGE'`
}

func (sqliteDialect) RunsAlwaysFilenamesSQL() string {
	return `SELECT filename FROM jetbase_migrations WHERE migration_type = 'RUNS_ALWAYS'`
}

func (sqliteDialect) SearchPathStatement(string) (string, bool) {
	return "", false
}

func (sqliteDialect) SuppressesDriverLogs() bool { return false }

func (sqliteDialect) IsTransientError(err error) bool {
	// modernc.org/sqlite surfaces SQLITE_BUSY as a plain error whose text
	// carries the code; a single-process test database never contends, so
	// no retry predicate is ported here. Kept false and named rather than
	// matching on the driver's error string, which is not a stable contract.
	return false
}
