// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetbase-hq/jetbase/pkg/catalog"
)

func writeMigration(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func mustWalk(t *testing.T, dir string) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Walk(dir)
	require.NoError(t, err)
	return cat
}

func TestValidate_NoHistoryPasses(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "V1__a.sql", "SELECT 1;\n")
	cat := mustWalk(t, dir)

	err := Validate(cat, History{}, Options{})
	assert.NoError(t, err)
}

func TestNoBackfill_FailsOnLowerUnappliedVersion(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "V1__a.sql", "SELECT 1;\n")
	writeMigration(t, dir, "V3__c.sql", "SELECT 3;\n")
	cat := mustWalk(t, dir)

	hist := History{
		LatestVersion:        "3",
		VersionsAndChecksums: map[string]string{"3": catalog.Checksum([]string{"SELECT 3"})},
	}

	err := NoBackfill(cat, hist)
	require.Error(t, err)
	var outOfOrder OutOfOrderMigrationError
	assert.ErrorAs(t, err, &outOfOrder)
	assert.Equal(t, "1", outOfOrder.Version)
}

func TestNoBackfill_AllowsAlreadyAppliedLowerVersion(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "V1__a.sql", "SELECT 1;\n")
	writeMigration(t, dir, "V3__c.sql", "SELECT 3;\n")
	cat := mustWalk(t, dir)

	hist := History{
		LatestVersion: "3",
		VersionsAndChecksums: map[string]string{
			"1": catalog.Checksum([]string{"SELECT 1"}),
			"3": catalog.Checksum([]string{"SELECT 3"}),
		},
	}

	assert.NoError(t, NoBackfill(cat, hist))
}

func TestAllAppliedVersionsPresent_FailsWhenFileRemoved(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "V1__a.sql", "SELECT 1;\n")
	cat := mustWalk(t, dir)

	hist := History{VersionsAndChecksums: map[string]string{"1": "x", "2": "y"}}

	err := AllAppliedVersionsPresent(cat, hist)
	require.Error(t, err)
	var missing MissingMigrationFileError
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, "2", missing.Version)
}

func TestAllAppliedRepeatablesPresent_FailsWhenRunsAlwaysFileRemoved(t *testing.T) {
	cat := &catalog.Catalog{}
	hist := History{RunsAlwaysFilenames: []string{"RA__refresh.sql"}}

	err := AllAppliedRepeatablesPresent(cat, hist)
	require.Error(t, err)
	var missing MissingRepeatableFileError
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, "RA__refresh.sql", missing.Filename)
}

func TestChecksumFidelity_PassesWhenUnchanged(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "V1__a.sql", "SELECT 1;\n")
	cat := mustWalk(t, dir)

	hist := History{VersionsAndChecksums: map[string]string{"1": catalog.Checksum([]string{"SELECT 1"})}}
	assert.NoError(t, ChecksumFidelity(cat, hist))
}

func TestChecksumFidelity_FailsWhenFileChanged(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "V1__a.sql", "SELECT 2;\n")
	cat := mustWalk(t, dir)

	hist := History{VersionsAndChecksums: map[string]string{"1": catalog.Checksum([]string{"SELECT 1"})}}

	err := ChecksumFidelity(cat, hist)
	require.Error(t, err)
	var mismatch MigrationChecksumMismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "1", mismatch.Version)
}

func TestChecksumFidelity_MissingFileRaisesVersionMismatchWhenPresenceCheckSkipped(t *testing.T) {
	cat := &catalog.Catalog{}
	hist := History{VersionsAndChecksums: map[string]string{"1": "whatever"}}

	err := ChecksumFidelity(cat, hist)
	require.Error(t, err)
	var mismatch MigrationVersionMismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "1", mismatch.Expected)
}

func TestValidate_SkipFlagsBypassTheirCheck(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "V1__a.sql", "SELECT 2;\n") // checksum will not match
	cat := mustWalk(t, dir)

	hist := History{VersionsAndChecksums: map[string]string{"1": catalog.Checksum([]string{"SELECT 1"})}}

	assert.Error(t, Validate(cat, hist, Options{}))
	assert.NoError(t, Validate(cat, hist, Options{SkipChecksumCheck: true}))
	assert.NoError(t, Validate(cat, hist, Options{SkipValidation: true}))
}
