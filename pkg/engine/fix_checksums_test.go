// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngine_ValidateChecksumsReportsDriftWithoutFixing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "V1__a.sql")
	writeMigration(t, dir, "V1__a.sql", "-- upgrade\nCREATE TABLE a (id INT);\n-- rollback\nDROP TABLE a;\n")

	e := openTestEngine(t, dir)
	_, err := e.Upgrade(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("-- upgrade\nCREATE TABLE a (id INT, name TEXT);\n-- rollback\nDROP TABLE a;\n"), 0o644))

	drift, err := e.ValidateChecksums(ctx, false)
	require.NoError(t, err)
	require.Len(t, drift, 1)
	require.Equal(t, "1", drift[0].Version)
	require.NotEqual(t, drift[0].OldChecksum, drift[0].NewChecksum)

	// Audit-only: the stored checksum is untouched.
	drift2, err := e.ValidateChecksums(ctx, false)
	require.NoError(t, err)
	require.Len(t, drift2, 1)
}

func TestEngine_ValidateChecksumsFixRepairsStoredChecksum(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "V1__a.sql")
	writeMigration(t, dir, "V1__a.sql", "-- upgrade\nCREATE TABLE a (id INT);\n-- rollback\nDROP TABLE a;\n")

	e := openTestEngine(t, dir)
	_, err := e.Upgrade(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("-- upgrade\nCREATE TABLE a (id INT, name TEXT);\n-- rollback\nDROP TABLE a;\n"), 0o644))

	drift, err := e.ValidateChecksums(ctx, true)
	require.NoError(t, err)
	require.Len(t, drift, 1)

	drift2, err := e.ValidateChecksums(ctx, false)
	require.NoError(t, err)
	require.Empty(t, drift2)
}

func TestEngine_ValidateChecksumsNoAppliedHistoryIsNil(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := openTestEngine(t, dir)

	drift, err := e.ValidateChecksums(ctx, false)
	require.NoError(t, err)
	require.Nil(t, drift)
}

func TestEngine_ValidateChecksumsMissingFileErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "V1__a.sql")
	writeMigration(t, dir, "V1__a.sql", "-- upgrade\nCREATE TABLE a (id INT);\n-- rollback\nDROP TABLE a;\n")

	e := openTestEngine(t, dir)
	_, err := e.Upgrade(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	_, err = e.ValidateChecksums(ctx, false)
	require.Error(t, err)
	var missing MissingMigrationFileError
	require.ErrorAs(t, err, &missing)
}
