// SPDX-License-Identifier: Apache-2.0

package dialect

import "net/url"

// For resolves the Dialect implementation for a database URL by inspecting
// its scheme. It never opens a connection.
func For(databaseURL string) (Dialect, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "snowflake":
		return Snowflake, nil
	case "databricks":
		return Databricks, nil
	default:
		return nil, ErrUnknownScheme{Scheme: u.Scheme}
	}
}
