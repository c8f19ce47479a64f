// SPDX-License-Identifier: Apache-2.0

// Package engine ties the dialect, storage adapter, migrations repository,
// lock manager, file catalog, validator, and planner together: ensure
// tables, plan, acquire the lock, execute, release. It is the only package
// that touches all of the others.
package engine

// Config carries everything an Engine needs to run. It is a plain struct
// rather than a loader: reading it from files, environment variables, or
// TOML is the CLI's job, not the engine's.
type Config struct {
	// DatabaseURL selects the dialect by scheme and is passed to
	// pkg/store.Open unchanged.
	DatabaseURL string

	// MigrationsDir is the directory pkg/catalog.Walk reads.
	MigrationsDir string

	// PostgresSchema is applied via SET search_path on PostgreSQL only;
	// ignored by every other dialect.
	PostgresSchema string

	// SkipValidation, SkipChecksumValidation, and SkipFileValidation map
	// onto pkg/validate.Options' fine-grained flags; SkipValidation is the
	// coarse flag that implies the others.
	SkipValidation         bool
	SkipChecksumValidation bool
	SkipFileValidation     bool

	// AsyncMode is accepted for configuration compatibility; the engine is
	// synchronous (the database-side lock is the actual serialization
	// point), so this field is currently inert.
	AsyncMode bool

	// SnowflakePrivateKey and SnowflakePrivateKeyPassword pass through to
	// the Snowflake driver unexamined; the engine never inspects them.
	SnowflakePrivateKey         string
	SnowflakePrivateKeyPassword string
}
