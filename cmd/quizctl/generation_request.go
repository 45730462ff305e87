package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/beverage/language-quiz-service/internal/durationspec"
	"github.com/beverage/language-quiz-service/internal/store"
)

var generationRequestCleanOlderThan string

var generationRequestCmd = &cobra.Command{
	Use:     "generation-request",
	Aliases: []string{"generation-requests"},
	Short:   "Generation request tracking maintenance commands",
}

var generationRequestCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete terminal generation requests older than a cutoff",
	RunE: func(cmd *cobra.Command, args []string) error {
		cutoff, err := durationspec.Parse(generationRequestCleanOlderThan, time.Now())
		if err != nil {
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
		n, err := stores.Requests().DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("cleaning generation requests: %w", err)
		}
		fmt.Printf("deleted %d generation request(s)\n", n)
		return nil
	},
}

func init() {
	generationRequestCleanCmd.Flags().StringVar(&generationRequestCleanOlderThan, "older-than", "", "relative (e.g. 30d) or ISO-8601 cutoff (required)")
	_ = generationRequestCleanCmd.MarkFlagRequired("older-than")

	generationRequestCmd.AddCommand(generationRequestCleanCmd)
}
