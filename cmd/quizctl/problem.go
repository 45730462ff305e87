package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/beverage/language-quiz-service/internal/durationspec"
	"github.com/beverage/language-quiz-service/internal/store"
)

var (
	problemPurgeOlderThan string
	problemPurgeTopic     string
	problemPurgeForce     bool
)

var problemCmd = &cobra.Command{
	Use:   "problem",
	Short: "Problem pool maintenance commands",
}

var problemPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete problems created before a cutoff",
	Long: `Deletes problems whose created_at predates the given cutoff, optionally
restricted to one topic tag. Without --force this only prints the cutoff (and
topic tag) it would use; it neither counts nor deletes any rows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cutoff, err := durationspec.Parse(problemPurgeOlderThan, time.Now())
		if err != nil {
			return err
		}

		var topic *string
		if problemPurgeTopic != "" {
			topic = &problemPurgeTopic
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

		if !problemPurgeForce {
			fmt.Printf("dry run: pass --force to delete problems created before %s", cutoff.Format(time.RFC3339))
			if topic != nil {
				fmt.Printf(" with topic tag %q", *topic)
			}
			fmt.Println()
			return nil
		}

		n, err := stores.Problems().DeleteOlderThan(ctx, cutoff, topic)
		if err != nil {
			return fmt.Errorf("purging problems: %w", err)
		}
		fmt.Printf("deleted %d problem(s)\n", n)
		return nil
	},
}

func init() {
	problemPurgeCmd.Flags().StringVar(&problemPurgeOlderThan, "older-than", "", "relative (e.g. 30d) or ISO-8601 cutoff (required)")
	problemPurgeCmd.Flags().StringVar(&problemPurgeTopic, "topic", "", "restrict to this topic tag")
	problemPurgeCmd.Flags().BoolVar(&problemPurgeForce, "force", false, "actually delete rather than report a dry run")
	_ = problemPurgeCmd.MarkFlagRequired("older-than")

	problemCmd.AddCommand(problemPurgeCmd)
}
