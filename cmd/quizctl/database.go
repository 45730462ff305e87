package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/beverage/language-quiz-service/internal/seed"
	"github.com/beverage/language-quiz-service/internal/store"
)

const migrationsDir = "migrations"

var databaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Schema migration and seed-data commands",
}

// databaseInitCmd applies every pending migration (idempotent — a second
// run against an already-migrated database is a no-op) and then seeds the
// canonical verb set, per the CLI's "database init to seed verbs" contract.
var databaseInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Apply pending migrations and seed the canonical verb set",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := withGoose(func(sqlDB *sql.DB) error {
			return goose.Up(sqlDB, migrationsDir)
		}); err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		ctx := context.Background()
		database, err := openDB(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		stores := store.NewStores(database.Pool())
		created, skipped, err := seed.LoadVerbs(ctx, stores.Verbs())
		if err != nil {
			return fmt.Errorf("seeding verbs: %w", err)
		}
		fmt.Printf("seeded %d verb(s), %d already present\n", created, skipped)
		return nil
	},
}

var databaseMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGoose(func(sqlDB *sql.DB) error {
			return goose.Up(sqlDB, migrationsDir)
		})
	},
}

// databaseCleanCmd removes every entity flagged is_test (verbs and the
// sentences that reference them), per the CLI's "database clean to remove
// entities tagged test" contract. It never touches the schema.
var databaseCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every verb (and sentence) flagged is_test",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		ctx := context.Background()
		database, err := openDB(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		stores := store.NewStores(database.Pool())
		n, err := stores.Verbs().DeleteTestTagged(ctx)
		if err != nil {
			return fmt.Errorf("cleaning test-tagged verbs: %w", err)
		}
		fmt.Printf("deleted %d test-tagged verb(s)\n", n)
		return nil
	},
}

var databaseStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print which migrations have been applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGoose(func(sqlDB *sql.DB) error {
			return goose.Status(sqlDB, migrationsDir)
		})
	},
}

func init() {
	databaseCmd.AddCommand(databaseInitCmd, databaseMigrateCmd, databaseCleanCmd, databaseStatusCmd)
}

// withGoose opens a database/sql handle over the same DSN the service uses
// and hands it to fn; goose operates on *sql.DB, not the pgxpool the rest of
// the service shares, since it drives schema changes outside request scope.
func withGoose(fn func(*sql.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sqlDB, err := sql.Open("pgx", cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(context.Background()); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return fn(sqlDB)
}
