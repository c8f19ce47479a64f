// SPDX-License-Identifier: Apache-2.0

package state

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/jetbase-hq/jetbase/pkg/dialect"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// A single shared connection: modernc.org/sqlite's ":memory:" database
	// is private per connection, so a pool of more than one would make each
	// query see a different, empty database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func TestMigrations_EnsureAndInsertVersioned(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	m := NewMigrations(dialect.SQLite)

	require.NoError(t, m.EnsureTable(ctx, db))

	exists, err := m.TableExists(ctx, db)
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, m.InsertRecord(ctx, db, strPtr("1.0"), "create users", "V1_0__create_users.sql", Versioned, "abc123"))

	latest, err := m.FetchLatestVersioned(ctx, db)
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Equal(t, "1.0", *latest.Version)
	require.Equal(t, "abc123", latest.Checksum)
}

func TestMigrations_InsertRepeatableHasNilVersion(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	m := NewMigrations(dialect.SQLite)
	require.NoError(t, m.EnsureTable(ctx, db))

	require.NoError(t, m.InsertRecord(ctx, db, nil, "refresh views", "RA__refresh.sql", RunsAlways, "sum1"))

	filenames, err := m.FetchRunsAlwaysFilenames(ctx, db)
	require.NoError(t, err)
	require.Equal(t, []string{"RA__refresh.sql"}, filenames)
}

func TestMigrations_DeleteByVersion(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	m := NewMigrations(dialect.SQLite)
	require.NoError(t, m.EnsureTable(ctx, db))
	require.NoError(t, m.InsertRecord(ctx, db, strPtr("1.0"), "d", "V1_0__d.sql", Versioned, "c"))

	exists, err := m.VersionExists(ctx, db, "1.0")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, m.DeleteByVersion(ctx, db, "1.0"))

	exists, err = m.VersionExists(ctx, db, "1.0")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestMigrations_FetchVersionsAfterUnknownStartFails(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	m := NewMigrations(dialect.SQLite)
	require.NoError(t, m.EnsureTable(ctx, db))

	_, err := m.FetchVersionsAfter(ctx, db, "9.9")
	require.Error(t, err)
	var notFound VersionNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestMigrations_FetchVersionsAfterOrdersDescending(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	m := NewMigrations(dialect.SQLite)
	require.NoError(t, m.EnsureTable(ctx, db))
	require.NoError(t, m.InsertRecord(ctx, db, strPtr("1"), "a", "V1__a.sql", Versioned, "c1"))
	require.NoError(t, m.InsertRecord(ctx, db, strPtr("2"), "b", "V2__b.sql", Versioned, "c2"))
	require.NoError(t, m.InsertRecord(ctx, db, strPtr("3"), "c", "V3__c.sql", Versioned, "c3"))

	versions, err := m.FetchVersionsAfter(ctx, db, "1")
	require.NoError(t, err)
	require.Equal(t, []string{"3", "2"}, versions)
}

func TestMigrations_UpdateRepeatable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	m := NewMigrations(dialect.SQLite)
	require.NoError(t, m.EnsureTable(ctx, db))
	require.NoError(t, m.InsertRecord(ctx, db, nil, "seed", "RC__seed.sql", RunsOnChange, "old"))

	require.NoError(t, m.UpdateRepeatable(ctx, db, "RC__seed.sql", RunsOnChange, "new"))

	checksums, err := m.FetchRunsOnChangeChecksums(ctx, db)
	require.NoError(t, err)
	require.Equal(t, "new", checksums["RC__seed.sql"])
}

func TestMigrations_FetchHistoryFilters(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	m := NewMigrations(dialect.SQLite)
	require.NoError(t, m.EnsureTable(ctx, db))
	require.NoError(t, m.InsertRecord(ctx, db, strPtr("1"), "a", "V1__a.sql", Versioned, "c1"))
	require.NoError(t, m.InsertRecord(ctx, db, nil, "ra", "RA__ra.sql", RunsAlways, "c2"))

	versionedOnly, err := m.FetchHistory(ctx, db, dialect.HistoryFilter{MigrationType: string(Versioned), Ascending: true})
	require.NoError(t, err)
	require.Len(t, versionedOnly, 1)
	require.Equal(t, Versioned, versionedOnly[0].MigrationType)

	all, err := m.FetchHistory(ctx, db, dialect.HistoryFilter{Ascending: true})
	require.NoError(t, err)
	require.Len(t, all, 2)
}
