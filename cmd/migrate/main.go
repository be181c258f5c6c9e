package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Apurer/go-gin-bookstore/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-gin-bookstore/internal/platform/postgres"
)

const dsnKey = "POSTGRES_DSN"

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the bookstore database schema",
	Long: `migrate applies or reverts the SQL schema embedded in the bookstore binary.
The target database is read from --dsn or the POSTGRES_DSN environment variable.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(m *migrate.Migrate) error {
			return ignoreNoChange(m.Up())
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := cmd.Flags().GetInt("steps")
		if err != nil {
			return err
		}
		return withMigrator(cmd, func(m *migrate.Migrate) error {
			if steps > 0 {
				return ignoreNoChange(m.Steps(-steps))
			}
			return ignoreNoChange(m.Down())
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd, func(m *migrate.Migrate) error {
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		})
	},
}

func init() {
	viper.AutomaticEnv()
	rootCmd.PersistentFlags().String("dsn", "", "PostgreSQL DSN (default from POSTGRES_DSN env)")
	_ = viper.BindPFlag(dsnKey, rootCmd.PersistentFlags().Lookup("dsn"))
	downCmd.Flags().Int("steps", 0, "number of migrations to revert; 0 reverts all")
	rootCmd.AddCommand(upCmd, downCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func withMigrator(cmd *cobra.Command, fn func(*migrate.Migrate) error) error {
	sqlDB, err := platformpostgres.Open(viper.GetString(dsnKey))
	if err != nil {
		return err
	}
	m, err := migrations.New(sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer m.Close()
	if err := fn(m); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
