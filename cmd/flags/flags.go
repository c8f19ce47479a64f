// SPDX-License-Identifier: Apache-2.0

package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func DatabaseURL() string {
	return viper.GetString("DATABASE_URL")
}

func MigrationsDir() string {
	return viper.GetString("MIGRATIONS_DIR")
}

func PostgresSchema() string {
	return viper.GetString("POSTGRES_SCHEMA")
}

func SkipValidation() bool { return viper.GetBool("SKIP_VALIDATION") }

func SkipChecksumValidation() bool { return viper.GetBool("SKIP_CHECKSUM_VALIDATION") }

func SkipFileValidation() bool { return viper.GetBool("SKIP_FILE_VALIDATION") }

func SnowflakePrivateKey() string {
	return viper.GetString("SNOWFLAKE_PRIVATE_KEY")
}

func SnowflakePrivateKeyPassword() string {
	return viper.GetString("SNOWFLAKE_PRIVATE_KEY_PASSWORD")
}

// ConnectionFlags registers the persistent flags shared by every command
// and binds each one to its JETBASE_* environment variable.
func ConnectionFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("url", "", "Database URL; the scheme selects the backend")
	cmd.PersistentFlags().StringP("directory", "d", "migrations", "Directory containing the migration files")
	cmd.PersistentFlags().String("postgres-schema", "", "Postgres schema to set as the search path (Postgres only)")
	cmd.PersistentFlags().Bool("skip-validation", false, "Skip all pre-upgrade validation checks")
	cmd.PersistentFlags().Bool("skip-checksum-validation", false, "Skip the checksum validation check")
	cmd.PersistentFlags().Bool("skip-file-validation", false, "Skip the file presence validation checks")
	cmd.PersistentFlags().String("snowflake-private-key", "", "Path to a private key for Snowflake key-pair authentication")
	cmd.PersistentFlags().String("snowflake-private-key-password", "", "Passphrase for the Snowflake private key")

	viper.BindPFlag("DATABASE_URL", cmd.PersistentFlags().Lookup("url"))
	viper.BindPFlag("MIGRATIONS_DIR", cmd.PersistentFlags().Lookup("directory"))
	viper.BindPFlag("POSTGRES_SCHEMA", cmd.PersistentFlags().Lookup("postgres-schema"))
	viper.BindPFlag("SKIP_VALIDATION", cmd.PersistentFlags().Lookup("skip-validation"))
	viper.BindPFlag("SKIP_CHECKSUM_VALIDATION", cmd.PersistentFlags().Lookup("skip-checksum-validation"))
	viper.BindPFlag("SKIP_FILE_VALIDATION", cmd.PersistentFlags().Lookup("skip-file-validation"))
	viper.BindPFlag("SNOWFLAKE_PRIVATE_KEY", cmd.PersistentFlags().Lookup("snowflake-private-key"))
	viper.BindPFlag("SNOWFLAKE_PRIVATE_KEY_PASSWORD", cmd.PersistentFlags().Lookup("snowflake-private-key-password"))
}
