// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngine_FixRepairsBothChecksumAndFileDrift(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	drifted := filepath.Join(dir, "V1__a.sql")
	missing := filepath.Join(dir, "V2__b.sql")
	writeMigration(t, dir, "V1__a.sql", "-- upgrade\nCREATE TABLE a (id INT);\n-- rollback\nDROP TABLE a;\n")
	writeMigration(t, dir, "V2__b.sql", "-- upgrade\nCREATE TABLE b (id INT);\n-- rollback\nDROP TABLE b;\n")

	e := openTestEngine(t, dir)
	_, err := e.Upgrade(ctx)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(drifted, []byte("-- upgrade\nCREATE TABLE a (id INT, name TEXT);\n-- rollback\nDROP TABLE a;\n"), 0o644))
	require.NoError(t, os.Remove(missing))

	report, err := e.Fix(ctx)
	require.NoError(t, err)
	require.Len(t, report.RepairedChecksums, 1)
	require.Equal(t, "1", report.RepairedChecksums[0].Version)
	require.Equal(t, []string{"2"}, report.RemovedFiles.MissingVersions)

	remainingDrift, err := e.ValidateChecksums(ctx, false)
	require.NoError(t, err)
	require.Empty(t, remainingDrift)

	remainingFiles, err := e.ValidateFiles(ctx, false)
	require.NoError(t, err)
	require.True(t, remainingFiles.IsEmpty())
}

func TestEngine_FixWithNoDriftIsNoop(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeMigration(t, dir, "V1__a.sql", "-- upgrade\nCREATE TABLE a (id INT);\n-- rollback\nDROP TABLE a;\n")

	e := openTestEngine(t, dir)
	_, err := e.Upgrade(ctx)
	require.NoError(t, err)

	report, err := e.Fix(ctx)
	require.NoError(t, err)
	require.Empty(t, report.RepairedChecksums)
	require.True(t, report.RemovedFiles.IsEmpty())
}
