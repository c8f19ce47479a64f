// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	// The Postgres and MySQL drivers register themselves through the
	// dialect package's imports; SQLite has no other import path.
	_ "modernc.org/sqlite"

	"github.com/jetbase-hq/jetbase/cmd/flags"
	"github.com/jetbase-hq/jetbase/pkg/engine"
)

// Version is the jetbase version
var Version = "development"

func init() {
	viper.SetEnvPrefix("JETBASE")
	viper.AutomaticEnv()

	flags.ConnectionFlags(rootCmd)
}

var rootCmd = &cobra.Command{
	Use:          "jetbase",
	Short:        "Apply, roll back, and audit SQL schema migrations",
	SilenceUsage: true,
	Version:      Version,
}

func engineConfig() engine.Config {
	return engine.Config{
		DatabaseURL:                 flags.DatabaseURL(),
		MigrationsDir:               flags.MigrationsDir(),
		PostgresSchema:              flags.PostgresSchema(),
		SkipValidation:              flags.SkipValidation(),
		SkipChecksumValidation:      flags.SkipChecksumValidation(),
		SkipFileValidation:          flags.SkipFileValidation(),
		SnowflakePrivateKey:         flags.SnowflakePrivateKey(),
		SnowflakePrivateKeyPassword: flags.SnowflakePrivateKeyPassword(),
	}
}

// NewEngine constructs an Engine from the resolved flag/environment
// configuration. Callers must Close it.
func NewEngine(opts ...engine.Option) (*engine.Engine, error) {
	return engine.New(engineConfig(), opts...)
}

// Execute executes the root command.
func Execute() error {
	// register subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(upgradeCmd())
	rootCmd.AddCommand(rollbackCmd())
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(currentCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(lockStatusCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(validateChecksumsCmd())
	rootCmd.AddCommand(validateFilesCmd())
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(newCmd)

	return rootCmd.Execute()
}
