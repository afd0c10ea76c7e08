// Command migrate applies, rolls back and reports the category schema
// migrations for the SQLite and PostgreSQL stores.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ammiranda/category_service/config"
	"github.com/ammiranda/category_service/logging"
	"github.com/ammiranda/category_service/migrations"
	"github.com/ammiranda/category_service/repository"
)

var (
	storeDriver string
	sqlitePath  string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the category store schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&storeDriver, "driver", config.StoreSQLite, "store driver: sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite-path", "", "SQLite database file (defaults to ~/.category_service/categories.db)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db *sql.DB, driver migrations.Driver) error {
				if err := migrations.Up(db, driver); err != nil {
					return err
				}
				return printVersion(cmd, db, driver)
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db *sql.DB, driver migrations.Driver) error {
				if err := migrations.Down(db, driver); err != nil {
					return err
				}
				return printVersion(cmd, db, driver)
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(db *sql.DB, driver migrations.Driver) error {
				return printVersion(cmd, db, driver)
			})
		},
	})

	return rootCmd
}

// withDB opens the selected store without migrating it and runs fn
func withDB(ctx context.Context, fn func(*sql.DB, migrations.Driver) error) error {
	var (
		db     *sql.DB
		driver migrations.Driver
		err    error
	)
	switch storeDriver {
	case config.StoreSQLite:
		path := sqlitePath
		if path == "" {
			path = repository.DefaultSQLitePath()
		}
		driver = migrations.SQLite
		db, err = repository.OpenSQLite(ctx, path)
	case config.StorePostgres:
		provider := config.NewEnvProvider("")
		dbCfg, cfgErr := config.GetDatabaseConfig(ctx, provider)
		if cfgErr != nil {
			return fmt.Errorf("failed to get database config: %w", cfgErr)
		}
		driver = migrations.Postgres
		db, err = repository.OpenPostgres(ctx, dbCfg)
	default:
		return fmt.Errorf("unsupported driver %q", storeDriver)
	}
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db, driver)
}

func printVersion(cmd *cobra.Command, db *sql.DB, driver migrations.Driver) error {
	version, dirty, err := migrations.Version(db, driver)
	if err != nil {
		return err
	}
	cmd.Printf("schema version %d (dirty=%t)\n", version, dirty)
	return nil
}

func main() {
	logger := logging.New(os.Getenv("LOG_LEVEL"), "text")

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.Error("migration failed", "driver", storeDriver, "error", err)
		os.Exit(1)
	}
}
