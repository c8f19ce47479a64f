// SPDX-License-Identifier: Apache-2.0

package dialect

import "github.com/go-sql-driver/mysql"

type mysqlDialect struct{}

// MySQL is the MySQL implementation of Dialect: AUTO_INCREMENT identities,
// TINYINT(1) booleans, and a DATABASE()-scoped existence check instead of
// information_schema's explicit schema column.
var MySQL Dialect = mysqlDialect{}

func (mysqlDialect) Name() string       { return "mysql" }
func (mysqlDialect) DriverName() string { return "mysql" }

func (mysqlDialect) IdentityColumnClause() string {
	return "AUTO_INCREMENT"
}

func (mysqlDialect) BooleanLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (mysqlDialect) CreateMigrationsTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS jetbase_migrations (
	order_executed INTEGER AUTO_INCREMENT PRIMARY KEY,
	version VARCHAR(512),
	description TEXT,
	filename VARCHAR(512) NOT NULL,
	migration_type VARCHAR(32) NOT NULL,
	applied_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	checksum VARCHAR(64)
)`
}

func (mysqlDialect) CreateLockTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS jetbase_lock (
	id INTEGER PRIMARY KEY,
	is_locked TINYINT(1) NOT NULL DEFAULT 0,
	locked_at TIMESTAMP(6) NULL,
	process_id VARCHAR(36),
	CONSTRAINT jetbase_lock_singleton CHECK (id = 1)
)`
}

func (mysqlDialect) InitializeLockRowSQL() string {
	return `INSERT IGNORE INTO jetbase_lock (id, is_locked) VALUES (1, 0)`
}

func (mysqlDialect) TableExistsSQL(table string) (string, []any) {
	return `SELECT COUNT(*) > 0 FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`,
		[]any{table}
}

func (mysqlDialect) InsertVersionedSQL() string {
	return `INSERT INTO jetbase_migrations (version, description, filename, migration_type, checksum) VALUES (?, ?, ?, ?, ?)`
}

func (mysqlDialect) InsertRepeatableSQL() string {
	return `INSERT INTO jetbase_migrations (version, description, filename, migration_type, checksum) VALUES (NULL, ?, ?, ?, ?)`
}

func (mysqlDialect) DeleteByVersionSQL() string {
	return `DELETE FROM jetbase_migrations WHERE version = ?`
}

func (mysqlDialect) UpdateRepeatableSQL() string {
	return `UPDATE jetbase_migrations SET checksum = ?, applied_at = CURRENT_TIMESTAMP(6) WHERE filename = ? AND migration_type = ?`
}

func (mysqlDialect) RepairChecksumSQL() string {
	return `UPDATE jetbase_migrations SET checksum = ? WHERE version = ?`
}

func (mysqlDialect) DeleteMissingVersionSQL() string {
	return `DELETE FROM jetbase_migrations WHERE version = ?`
}

func (mysqlDialect) DeleteMissingRepeatableSQL() string {
	return `DELETE FROM jetbase_migrations WHERE filename = ?`
}

func (mysqlDialect) AcquireLockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = 1, locked_at = ?, process_id = ? WHERE id = 1 AND is_locked = 0`
}

func (mysqlDialect) ReleaseLockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = 0, locked_at = NULL, process_id = NULL WHERE id = 1 AND process_id = ?`
}

func (mysqlDialect) ForceUnlockSQL() string {
	return `UPDATE jetbase_lock SET is_locked = 0, locked_at = NULL, process_id = NULL WHERE id = 1`
}

func (mysqlDialect) LockStatusSQL() string {
	return `SELECT is_locked, locked_at FROM jetbase_lock WHERE id = 1`
}

func (mysqlDialect) HistorySQL(filter HistoryFilter) string {
	return historySQL(filter, "?")
}

func (mysqlDialect) LatestVersionedSQL() string {
	return `SELECT order_executed, version, description, filename, migration_type, applied_at, checksum
		FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed DESC LIMIT 1`
}

func (mysqlDialect) LatestVersionsSQL() string {
	return `SELECT version FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed DESC LIMIT ?`
}

func (mysqlDialect) VersionsAfterSQL() string {
	return `SELECT version FROM jetbase_migrations
		WHERE migration_type = 'VERSIONED'
		AND order_executed > (SELECT order_executed FROM jetbase_migrations WHERE version = ?)
		ORDER BY order_executed DESC`
}

func (mysqlDialect) VersionExistsSQL() string {
	return `SELECT COUNT(*) > 0 FROM jetbase_migrations WHERE version = ? AND migration_type = 'VERSIONED'`
}

func (mysqlDialect) VersionsAndChecksumsSQL() string {
	return `SELECT version, checksum FROM jetbase_migrations WHERE migration_type = 'VERSIONED' ORDER BY order_executed ASC`
}

func (mysqlDialect) RunsOnChangeChecksumsSQL() string {
	return `SELECT filename, checksum FROM jetbase_migrations WHERE migration_type = 'RUNS_ON_CHANGE'`
}

func (mysqlDialect) RunsAlwaysFilenamesSQL() string {
	return `SELECT filename FROM jetbase_migrations WHERE migration_type = 'RUNS_ALWAYS'`
}

func (mysqlDialect) SearchPathStatement(string) (string, bool) {
	return "", false
}

func (mysqlDialect) SuppressesDriverLogs() bool { return false }

func (mysqlDialect) IsTransientError(err error) bool {
	mysqlErr, ok := err.(*mysql.MySQLError)
	if !ok {
		return false
	}
	switch mysqlErr.Number {
	case 1205, // ER_LOCK_WAIT_TIMEOUT
		1213: // ER_LOCK_DEADLOCK
		return true
	default:
		return false
	}
}
