package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beverage/language-quiz-service/common/id"
	"github.com/beverage/language-quiz-service/internal/apikeyauth"
	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/store"
)

var (
	apikeyCreateName        string
	apikeyCreatePermissions string
	apikeyCreateRPM         int
	apikeyCreateAllowedIPs  string
)

var apikeyCmd = &cobra.Command{
	Use:     "apikey",
	Aliases: []string{"api-key"},
	Short:   "API key administration commands",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Mint a new API key and print its raw secret once",
	RunE: func(cmd *cobra.Command, args []string) error {
		perms, err := parsePermissions(apikeyCreatePermissions)
		if err != nil {
			return err
		}

		raw, prefix, salt, hash, err := apikeyauth.Generate()
		if err != nil {
			return fmt.Errorf("generating key material: %w", err)
		}

		key := &model.APIKey{
			ID:           id.New().String(),
			SecretHash:   hash,
			Salt:         salt,
			Prefix:       prefix,
			Name:         apikeyCreateName,
			Active:       true,
			Permissions:  perms,
			RateLimitRPM: apikeyCreateRPM,
		}
		if apikeyCreateAllowedIPs != "" {
			key.AllowedIPs = strings.Split(apikeyCreateAllowedIPs, ",")
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
		if err := stores.APIKeys().Create(ctx, key); err != nil {
			return fmt.Errorf("creating api key: %w", err)
		}

		fmt.Printf("id:     %s\n", key.ID)
		fmt.Printf("prefix: %s\n", key.Prefix)
		fmt.Printf("key:    %s\n", raw)
		fmt.Println("the raw key above is shown once; only its hash is stored")
		return nil
	},
}

var apikeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active API keys",
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
		keys, err := stores.APIKeys().ListActive(ctx)
		if err != nil {
			return fmt.Errorf("listing api keys: %w", err)
		}

		for _, k := range keys {
			fmt.Printf("%s\t%s\t%s\t%v\n", k.ID, k.Prefix, k.Name, k.Permissions)
		}
		return nil
	},
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke <id>",
	Short: "Deactivate an API key",
	Args:  cobra.ExactArgs(1),
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
		key, err := stores.APIKeys().GetByID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("looking up api key: %w", err)
		}
		key.Active = false
		if err := stores.APIKeys().Update(ctx, key); err != nil {
			return fmt.Errorf("revoking api key: %w", err)
		}
		fmt.Printf("revoked %s\n", key.ID)
		return nil
	},
}

func init() {
	apikeyCreateCmd.Flags().StringVar(&apikeyCreateName, "name", "", "human-readable label (required)")
	apikeyCreateCmd.Flags().StringVar(&apikeyCreatePermissions, "permissions", "read", "comma-separated permissions: read,write,admin")
	apikeyCreateCmd.Flags().IntVar(&apikeyCreateRPM, "rate-limit-rpm", 60, "per-key requests-per-minute override")
	apikeyCreateCmd.Flags().StringVar(&apikeyCreateAllowedIPs, "allowed-ips", "", "comma-separated IPs/CIDRs; empty means unrestricted")
	_ = apikeyCreateCmd.MarkFlagRequired("name")

	apikeyCmd.AddCommand(apikeyCreateCmd, apikeyListCmd, apikeyRevokeCmd)
}

func parsePermissions(csv string) ([]model.Permission, error) {
	parts := strings.Split(csv, ",")
	perms := make([]model.Permission, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		switch model.Permission(p) {
		case model.PermissionRead, model.PermissionWrite, model.PermissionAdmin:
			perms = append(perms, model.Permission(p))
		default:
			return nil, fmt.Errorf("unknown permission %q", p)
		}
	}
	if len(perms) == 0 {
		return nil, fmt.Errorf("at least one permission is required")
	}
	return perms, nil
}
