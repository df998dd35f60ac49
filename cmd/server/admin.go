package main

import (
	"context"
	"fmt"

	"ethicrawler/config"
	"ethicrawler/internal/auth"
	"ethicrawler/internal/database"
	"ethicrawler/internal/domain"
	"ethicrawler/internal/repository"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the invoice, record and key tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			db, err := database.NewDB(&cfg.Database)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Println("schema up to date")
			return nil
		},
	}
}

func rotateKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate-key",
		Short: "Generate a new token-signing key and retire the current one",
		Long: `Generate a new Ed25519 token-signing key and make it active.

The previous key keeps verifying tokens for token.key_retention after the
rotation, so tokens already handed out stay valid until then.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			db, err := database.NewDB(&cfg.Database)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			ring := auth.NewKeyRing(repository.NewGormStore(db), domain.SystemClock{}, cfg.Token.KeyRetention)
			key, err := ring.Rotate(context.Background())
			if err != nil {
				return fmt.Errorf("rotate: %w", err)
			}
			fmt.Printf("active signing key: %s\n", key.KID)
			return nil
		},
	}
}
