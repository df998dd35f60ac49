package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ethicrawler/config"
	"ethicrawler/internal/cache"
	"ethicrawler/internal/database"
	"ethicrawler/internal/domain"
	"ethicrawler/internal/middleware"
	"ethicrawler/internal/repository"
	"ethicrawler/internal/router"
	"ethicrawler/pkg/payment"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", true, "run schema migration before serving")
	return cmd
}

func verifierFor(cfg *config.PaymentConfig) payment.Verifier {
	if cfg.HorizonURL != "" {
		log.Printf("[Payment] verifying transactions against %s", cfg.HorizonURL)
		return payment.NewHorizonVerifier(cfg.HorizonURL, cfg.MinTxHashLength, cfg.HorizonTimeout)
	}
	log.Printf("[Payment] horizon disabled: only checking tx hash length >= %d", cfg.MinTxHashLength)
	return payment.NewLengthVerifier(cfg.MinTxHashLength)
}

// limiterFor returns nil when rate limiting is switched off.
func limiterFor(cfg *config.ServerConfig) *middleware.InMemoryRateLimiter {
	if cfg.RateLimit <= 0 {
		return nil
	}
	return middleware.NewInMemoryRateLimiter(cfg.RateLimit, cfg.RateWindow)
}

func runServe(autoMigrate bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if autoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	store := repository.NewGormStore(db)

	ctx := context.Background()
	var revoked repository.RevocationList = store
	if cfg.Redis.Addr != "" {
		list, err := cache.ConnectRevocationList(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer list.Close()
		revoked = list
	} else {
		log.Printf("[Redis] disabled: revocation list kept in the database")
	}

	limiter := limiterFor(&cfg.Server)
	if limiter != nil {
		defer limiter.Stop()
	}

	engine, err := router.Setup(ctx, cfg, router.Deps{
		Store:    store,
		Revoked:  revoked,
		Clock:    domain.SystemClock{},
		Verifier: verifierFor(&cfg.Payment),
		Limiter:  limiter,
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Println("server stopped")
	return nil
}
