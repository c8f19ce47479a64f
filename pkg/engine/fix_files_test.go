// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngine_ValidateFilesReportsMissingVersionedWithoutDeleting(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "V1__a.sql")
	writeMigration(t, dir, "V1__a.sql", "-- upgrade\nCREATE TABLE a (id INT);\n-- rollback\nDROP TABLE a;\n")

	e := openTestEngine(t, dir)
	_, err := e.Upgrade(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	drift, err := e.ValidateFiles(ctx, false)
	require.NoError(t, err)
	require.Equal(t, []string{"1"}, drift.MissingVersions)

	current, err := e.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
}

func TestEngine_ValidateFilesFixDeletesMissingRows(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "V1__a.sql")
	writeMigration(t, dir, "V1__a.sql", "-- upgrade\nCREATE TABLE a (id INT);\n-- rollback\nDROP TABLE a;\n")

	e := openTestEngine(t, dir)
	_, err := e.Upgrade(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	drift, err := e.ValidateFiles(ctx, true)
	require.NoError(t, err)
	require.False(t, drift.IsEmpty())

	current, err := e.Current(ctx)
	require.NoError(t, err)
	require.Nil(t, current)
}

func TestEngine_ValidateFilesDetectsMissingRepeatable(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "RA__seed.sql")
	writeMigration(t, dir, "RA__seed.sql", "-- upgrade\nSELECT 1;\n-- rollback\n")

	e := openTestEngine(t, dir)
	_, err := e.Upgrade(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	drift, err := e.ValidateFiles(ctx, true)
	require.NoError(t, err)
	require.Equal(t, []string{"RA__seed.sql"}, drift.MissingRepeatables)
}

func TestEngine_ValidateFilesNoDriftIsEmpty(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeMigration(t, dir, "V1__a.sql", "-- upgrade\nCREATE TABLE a (id INT);\n-- rollback\nDROP TABLE a;\n")

	e := openTestEngine(t, dir)
	_, err := e.Upgrade(ctx)
	require.NoError(t, err)

	drift, err := e.ValidateFiles(ctx, false)
	require.NoError(t, err)
	require.True(t, drift.IsEmpty())
}
