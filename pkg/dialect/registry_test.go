// SPDX-License-Identifier: Apache-2.0

package dialect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetbase-hq/jetbase/pkg/dialect"
)

func TestForRecognizedSchemes(t *testing.T) {
	cases := map[string]dialect.Dialect{
		"postgres://u:p@host/db":   dialect.Postgres,
		"postgresql://u:p@host/db": dialect.Postgres,
		"mysql://u:p@host/db":      dialect.MySQL,
		"sqlite:///tmp/test.db":    dialect.SQLite,
		"sqlite3:///tmp/test.db":   dialect.SQLite,
		"snowflake://account/db":   dialect.Snowflake,
		"databricks://host/db":     dialect.Databricks,
	}

	for url, want := range cases {
		got, err := dialect.For(url)
		require.NoError(t, err, url)
		assert.Equal(t, want, got, url)
	}
}

func TestForUnknownScheme(t *testing.T) {
	_, err := dialect.For("oracle://host/db")
	require.Error(t, err)
	var unknown dialect.ErrUnknownScheme
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oracle", unknown.Scheme)
}

func TestEveryDialectImplementsFullSurface(t *testing.T) {
	for _, d := range []dialect.Dialect{dialect.Postgres, dialect.MySQL, dialect.SQLite, dialect.Snowflake, dialect.Databricks} {
		assert.NotEmpty(t, d.Name())
		assert.NotEmpty(t, d.DriverName())
		assert.NotEmpty(t, d.CreateMigrationsTableSQL())
		assert.NotEmpty(t, d.CreateLockTableSQL())
		assert.NotEmpty(t, d.AcquireLockSQL())
		query, args := d.TableExistsSQL("jetbase_migrations")
		assert.NotEmpty(t, query)
		assert.Len(t, args, 1)
	}
}
