package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beverage/language-quiz-service/internal/cache"
	"github.com/beverage/language-quiz-service/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache administration commands",
}

// cacheReloadCmd builds its own throwaway cache instances and reloads them;
// it does not reach into a running server's process. Use the HTTP
// /api/v1/cache/reload endpoint to invalidate a live server's cache.
var cacheReloadCmd = &cobra.Command{
	Use:   "reload [verbs|conjugations|keys|all]",
	Short: "Drop and re-populate a cache",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		which := "all"
		if len(args) == 1 {
			which = args[0]
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
		caches := &cache.Caches{
			Verbs:        cache.NewVerbCache(stores.Verbs()),
			Conjugations: cache.NewConjugationCache(stores.Conjugations()),
			Keys:         cache.NewKeyCache(stores.APIKeys()),
		}

		switch which {
		case "all":
			if err := caches.ReloadAll(ctx); err != nil {
				return fmt.Errorf("reloading caches: %w", err)
			}
		case "verbs":
			caches.Verbs.ReloadAll()
		case "conjugations":
			caches.Conjugations.ReloadAll()
		case "keys":
			if err := caches.Keys.ReloadAll(ctx); err != nil {
				return fmt.Errorf("reloading key cache: %w", err)
			}
		default:
			return fmt.Errorf("unknown cache %q (want verbs, conjugations, keys, or all)", which)
		}

		fmt.Printf("reloaded %s\n", which)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheReloadCmd)
}
