// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;\n"), 0o644))
}

func TestWalk_ClassifiesAndOrders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V2__second.sql")
	writeFile(t, dir, "V1_0__first.sql")
	writeFile(t, dir, "V10__tenth.sql")
	writeFile(t, dir, "RA__refresh.sql")
	writeFile(t, dir, "RC__seed.sql")
	writeFile(t, dir, "README.md")

	cat, err := Walk(dir)
	require.NoError(t, err)

	require.Len(t, cat.Versioned, 3)
	assert.Equal(t, "1.0", cat.Versioned[0].Version)
	assert.Equal(t, "2", cat.Versioned[1].Version)
	assert.Equal(t, "10", cat.Versioned[2].Version)

	require.Len(t, cat.RunsAlways, 1)
	assert.Equal(t, "RA__refresh.sql", cat.RunsAlways[0].Filename)
	require.Len(t, cat.RunsOnChange, 1)
	assert.Equal(t, "RC__seed.sql", cat.RunsOnChange[0].Filename)
}

func TestWalk_DirectoryNotFound(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	var notFound DirectoryNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestWalk_EmptyDirectoryIsNotAnError(t *testing.T) {
	cat, err := Walk(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cat.Versioned)
	assert.Empty(t, cat.RunsAlways)
	assert.Empty(t, cat.RunsOnChange)
}

func TestWalk_DuplicateVersionFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__first.sql")
	writeFile(t, dir, "V1_0__first_again.sql")

	_, err := Walk(dir)
	require.Error(t, err)
	var dup DuplicateMigrationVersionError
	assert.ErrorAs(t, err, &dup)
}

func TestWalk_InvalidFilenameFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "not_a_migration.sql")

	_, err := Walk(dir)
	require.Error(t, err)
	var invalid InvalidMigrationFilenameError
	assert.ErrorAs(t, err, &invalid)
}

func TestCatalog_VersionedInRange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__a.sql")
	writeFile(t, dir, "V2__b.sql")
	writeFile(t, dir, "V3__c.sql")

	cat, err := Walk(dir)
	require.NoError(t, err)

	inRange := cat.VersionedInRange("2", "")
	require.Len(t, inRange, 2)
	assert.Equal(t, "2", inRange[0].Version)
	assert.Equal(t, "3", inRange[1].Version)

	bounded := cat.VersionedInRange("", "2")
	require.Len(t, bounded, 2)
	assert.Equal(t, "1", bounded[0].Version)
	assert.Equal(t, "2", bounded[1].Version)
}

func TestCatalog_HasRepeatable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "RA__refresh.sql")

	cat, err := Walk(dir)
	require.NoError(t, err)

	assert.True(t, cat.HasRunsAlways("RA__refresh.sql"))
	assert.True(t, cat.HasRepeatable("RA__refresh.sql"))
	assert.False(t, cat.HasRepeatable("RC__missing.sql"))
}
