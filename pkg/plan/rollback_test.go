// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetbase-hq/jetbase/pkg/catalog"
	"github.com/jetbase-hq/jetbase/pkg/state"
)

func TestRollback_PreservesGivenOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__a.sql", "SELECT 1;\n-- rollback\nDROP TABLE a;\n")
	writeFile(t, dir, "V2__b.sql", "SELECT 2;\n-- rollback\nDROP TABLE b;\n")
	cat, err := catalog.Walk(dir)
	require.NoError(t, err)

	p, err := Rollback(cat, []string{"2", "1"})
	require.NoError(t, err)
	require.Len(t, p.Items, 2)
	assert.Equal(t, "2", p.Items[0].Version)
	assert.Equal(t, "1", p.Items[1].Version)
}

func TestRollback_MissingFileFails(t *testing.T) {
	cat := &catalog.Catalog{}

	_, err := Rollback(cat, []string{"1"})
	require.Error(t, err)
	var notFound state.VersionNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestRollbackDryRun_PopulatesRollbackStatements(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "V1__a.sql", "SELECT 1;\n-- rollback\nDROP TABLE a;\n")
	cat, err := catalog.Walk(dir)
	require.NoError(t, err)

	p, err := RollbackDryRun(cat, []string{"1"})
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, []string{"DROP TABLE a"}, p.Items[0].Statements)
}
