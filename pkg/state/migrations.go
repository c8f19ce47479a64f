// SPDX-License-Identifier: Apache-2.0

// Package state implements the migrations repository and lock manager:
// typed reads and writes over the two system tables, and the cross-process
// mutex built on the lock row.
package state

import (
	"context"
	"database/sql"

	"github.com/jetbase-hq/jetbase/pkg/dialect"
)

// Executor is the subset of *sql.Tx / *sql.DB the repository needs, so a
// caller can run a sequence of repository calls inside one caller-owned
// transaction or let each call open its own via pkg/store.Adapter.Run.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MigrationType names the three kinds a jetbase_migrations row can hold.
type MigrationType string

const (
	Versioned    MigrationType = "VERSIONED"
	RunsAlways   MigrationType = "RUNS_ALWAYS"
	RunsOnChange MigrationType = "RUNS_ON_CHANGE"
)

// Record is one row of jetbase_migrations.
type Record struct {
	OrderExecuted int64
	Version       *string
	Description   string
	Filename      string
	MigrationType MigrationType
	AppliedAt     Timestamp
	Checksum      string
}

// Migrations is the repository over jetbase_migrations. It holds no
// connection of its own; every method takes the Executor to run against, so
// callers can compose repository calls with other statements inside a
// single transaction.
type Migrations struct {
	d dialect.Dialect
}

// NewMigrations constructs a Migrations repository for d's query surface.
func NewMigrations(d dialect.Dialect) *Migrations {
	return &Migrations{d: d}
}

// EnsureTable issues the idempotent CREATE TABLE for jetbase_migrations.
func (m *Migrations) EnsureTable(ctx context.Context, exec Executor) error {
	_, err := exec.ExecContext(ctx, m.d.CreateMigrationsTableSQL())
	return err
}

// TableExists reports whether jetbase_migrations is present.
func (m *Migrations) TableExists(ctx context.Context, exec Executor) (bool, error) {
	query, args := m.d.TableExistsSQL("jetbase_migrations")
	var exists bool
	if err := exec.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// InsertRecord inserts one applied-migration row. version is nil for
// repeatables.
func (m *Migrations) InsertRecord(ctx context.Context, exec Executor, version *string, description, filename string, migrationType MigrationType, checksum string) error {
	if version != nil {
		_, err := exec.ExecContext(ctx, m.d.InsertVersionedSQL(), *version, description, filename, string(migrationType), checksum)
		return err
	}
	_, err := exec.ExecContext(ctx, m.d.InsertRepeatableSQL(), description, filename, string(migrationType), checksum)
	return err
}

// DeleteByVersion removes the row for version, used on rollback.
func (m *Migrations) DeleteByVersion(ctx context.Context, exec Executor, version string) error {
	_, err := exec.ExecContext(ctx, m.d.DeleteByVersionSQL(), version)
	return err
}

// UpdateRepeatable rewrites checksum and applied_at for an existing
// repeatable row, used when its content has changed.
func (m *Migrations) UpdateRepeatable(ctx context.Context, exec Executor, filename string, migrationType MigrationType, checksum string) error {
	_, err := exec.ExecContext(ctx, m.d.UpdateRepeatableSQL(), checksum, filename, string(migrationType))
	return err
}

// FetchHistory returns every matching row ordered per filter.
func (m *Migrations) FetchHistory(ctx context.Context, exec Executor, filter dialect.HistoryFilter) ([]Record, error) {
	var args []any
	if filter.MigrationType != "" {
		args = append(args, filter.MigrationType)
	}

	rows, err := exec.QueryContext(ctx, m.d.HistorySQL(filter), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FetchLatestVersioned returns the most-recently-applied versioned record,
// or nil if none has ever been applied.
func (m *Migrations) FetchLatestVersioned(ctx context.Context, exec Executor) (*Record, error) {
	rows, err := exec.QueryContext(ctx, m.d.LatestVersionedSQL())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// FetchLatestVersions returns up to limit applied versions, most recent
// first, used by rollback's count-bounded planning.
func (m *Migrations) FetchLatestVersions(ctx context.Context, exec Executor, limit int) ([]string, error) {
	rows, err := exec.QueryContext(ctx, m.d.LatestVersionsSQL(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

// FetchVersionsAfter returns every applied version more recent than
// startingVersion, most recent first, failing with VersionNotFoundError if
// startingVersion was never applied.
func (m *Migrations) FetchVersionsAfter(ctx context.Context, exec Executor, startingVersion string) ([]string, error) {
	exists, err := m.VersionExists(ctx, exec, startingVersion)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, VersionNotFoundError{Version: startingVersion}
	}

	rows, err := exec.QueryContext(ctx, m.d.VersionsAfterSQL(), startingVersion)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

// VersionExists reports whether version has an applied versioned row.
func (m *Migrations) VersionExists(ctx context.Context, exec Executor, version string) (bool, error) {
	var exists bool
	if err := exec.QueryRowContext(ctx, m.d.VersionExistsSQL(), version).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// FetchVersionsAndChecksums returns every applied version's stored
// checksum, for the checksum audit.
func (m *Migrations) FetchVersionsAndChecksums(ctx context.Context, exec Executor) (map[string]string, error) {
	rows, err := exec.QueryContext(ctx, m.d.VersionsAndChecksumsSQL())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var version, checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, err
		}
		out[version] = checksum
	}
	return out, rows.Err()
}

// FetchRunsOnChangeChecksums returns a filename -> checksum map for every
// applied RUNS_ON_CHANGE row.
func (m *Migrations) FetchRunsOnChangeChecksums(ctx context.Context, exec Executor) (map[string]string, error) {
	rows, err := exec.QueryContext(ctx, m.d.RunsOnChangeChecksumsSQL())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var filename, checksum string
		if err := rows.Scan(&filename, &checksum); err != nil {
			return nil, err
		}
		out[filename] = checksum
	}
	return out, rows.Err()
}

// FetchRunsAlwaysFilenames returns every filename with an applied
// RUNS_ALWAYS row.
func (m *Migrations) FetchRunsAlwaysFilenames(ctx context.Context, exec Executor) ([]string, error) {
	rows, err := exec.QueryContext(ctx, m.d.RunsAlwaysFilenamesSQL())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

// RepairChecksum overwrites the stored checksum for an already-applied
// version, used by the checksum fixer.
func (m *Migrations) RepairChecksum(ctx context.Context, exec Executor, version, checksum string) error {
	_, err := exec.ExecContext(ctx, m.d.RepairChecksumSQL(), checksum, version)
	return err
}

// DeleteMissingVersion removes a row whose file no longer exists on disk.
func (m *Migrations) DeleteMissingVersion(ctx context.Context, exec Executor, version string) error {
	_, err := exec.ExecContext(ctx, m.d.DeleteMissingVersionSQL(), version)
	return err
}

// DeleteMissingRepeatable removes a repeatable row whose file no longer
// exists on disk.
func (m *Migrations) DeleteMissingRepeatable(ctx context.Context, exec Executor, filename string) error {
	_, err := exec.ExecContext(ctx, m.d.DeleteMissingRepeatableSQL(), filename)
	return err
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var r Record
		var migrationType string
		if err := rows.Scan(&r.OrderExecuted, &r.Version, &r.Description, &r.Filename, &migrationType, &r.AppliedAt, &r.Checksum); err != nil {
			return nil, err
		}
		r.MigrationType = MigrationType(migrationType)
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
