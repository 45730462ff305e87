// Command quizctl is the operator CLI for the language quiz service: schema
// migrations, stale-data cleanup, and cache/key administration against the
// same Postgres/Redis the HTTP API and worker pool talk to.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/beverage/language-quiz-service/core/config"
	"github.com/beverage/language-quiz-service/core/db"
)

var rootCmd = &cobra.Command{
	Use:   "quizctl",
	Short: "Administer the language quiz service's storage and cache layers",
}

func init() {
	rootCmd.AddCommand(databaseCmd)
	rootCmd.AddCommand(problemCmd)
	rootCmd.AddCommand(generationRequestCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(apikeyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig is shared by every subcommand that needs DB/Redis settings.
func loadConfig() (config.Config, error) {
	return config.Load()
}

// openDB opens a connection pool using the loaded configuration, for
// subcommands that talk to storage directly rather than through the HTTP API.
func openDB(ctx context.Context, cfg config.Config) (*db.DB, error) {
	return db.New(ctx, cfg.DB)
}
