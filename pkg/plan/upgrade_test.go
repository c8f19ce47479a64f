// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetbase-hq/jetbase/pkg/catalog"
	"github.com/jetbase-hq/jetbase/pkg/state"
)

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestUpgrade_OnlyPendingVersionsIncluded(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__a.sql", "SELECT 1;\n")
	writeFile(t, dir, "V2__b.sql", "SELECT 2;\n")
	writeFile(t, dir, "V3__c.sql", "SELECT 3;\n")
	cat, err := catalog.Walk(dir)
	require.NoError(t, err)

	p, err := Upgrade(cat, "1", nil, UpgradeOptions{})
	require.NoError(t, err)
	require.Len(t, p.Items, 2)
	assert.Equal(t, "2", p.Items[0].Version)
	assert.Equal(t, "3", p.Items[1].Version)
}

func TestUpgrade_CountBoundsPrefix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__a.sql", "SELECT 1;\n")
	writeFile(t, dir, "V2__b.sql", "SELECT 2;\n")
	writeFile(t, dir, "V3__c.sql", "SELECT 3;\n")
	cat, err := catalog.Walk(dir)
	require.NoError(t, err)

	count := 1
	p, err := Upgrade(cat, "", nil, UpgradeOptions{Count: &count})
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "1", p.Items[0].Version)
}

func TestUpgrade_ToVersionBoundsInclusive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__a.sql", "SELECT 1;\n")
	writeFile(t, dir, "V2__b.sql", "SELECT 2;\n")
	writeFile(t, dir, "V3__c.sql", "SELECT 3;\n")
	cat, err := catalog.Walk(dir)
	require.NoError(t, err)

	p, err := Upgrade(cat, "", nil, UpgradeOptions{ToVersion: "2"})
	require.NoError(t, err)
	require.Len(t, p.Items, 2)
	assert.Equal(t, "1", p.Items[0].Version)
	assert.Equal(t, "2", p.Items[1].Version)
}

func TestUpgrade_ToVersionNotInPendingFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__a.sql", "SELECT 1;\n")
	cat, err := catalog.Walk(dir)
	require.NoError(t, err)

	_, err = Upgrade(cat, "", nil, UpgradeOptions{ToVersion: "9"})
	require.Error(t, err)
	var notFound state.VersionNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestUpgrade_CountAndToVersionMutuallyExclusive(t *testing.T) {
	cat := &catalog.Catalog{}
	count := 1
	_, err := Upgrade(cat, "", nil, UpgradeOptions{Count: &count, ToVersion: "1"})
	require.Error(t, err)
	var invalid InvalidPlanOptionsError
	assert.ErrorAs(t, err, &invalid)
}

func TestUpgrade_IncludesRunsAlwaysAndDriftedRunsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "RA__refresh.sql", "REFRESH MATERIALIZED VIEW v;\n")
	writeFile(t, dir, "RC__seed.sql", "INSERT INTO t VALUES (1);\n")
	cat, err := catalog.Walk(dir)
	require.NoError(t, err)

	p, err := Upgrade(cat, "", nil, UpgradeOptions{})
	require.NoError(t, err)
	require.Len(t, p.Items, 2)
	assert.Equal(t, catalog.RunsAlways, p.Items[0].Kind)
	assert.Equal(t, catalog.RunsOnChange, p.Items[1].Kind)
}

func TestUpgrade_UnchangedRunsOnChangeSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "RC__seed.sql", "INSERT INTO t VALUES (1);\n")
	cat, err := catalog.Walk(dir)
	require.NoError(t, err)

	statements, err := catalog.ParseUpgrade(filepath.Join(dir, "RC__seed.sql"), false)
	require.NoError(t, err)
	checksum := catalog.Checksum(statements)

	p, err := Upgrade(cat, "", map[string]string{"RC__seed.sql": checksum}, UpgradeOptions{})
	require.NoError(t, err)
	assert.Empty(t, p.Items)
}

func TestUpgradeDryRun_PopulatesStatements(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__a.sql", "SELECT 1;\n")
	cat, err := catalog.Walk(dir)
	require.NoError(t, err)

	p, err := UpgradeDryRun(cat, "", nil, UpgradeOptions{})
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, []string{"SELECT 1"}, p.Items[0].Statements)
}
