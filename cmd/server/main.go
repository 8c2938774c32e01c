// File: cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/iyunix/go-chatstore/internal/config"
	"github.com/iyunix/go-chatstore/internal/database"
	"github.com/iyunix/go-chatstore/internal/handlers"
	"github.com/iyunix/go-chatstore/internal/logging"
	"github.com/iyunix/go-chatstore/internal/ratelimit"
	"github.com/iyunix/go-chatstore/internal/repository"
	"github.com/iyunix/go-chatstore/internal/server"
	"github.com/iyunix/go-chatstore/internal/services"
)

const serviceName = "chatstore"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Chat persistence API",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and serve the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	})

	return root
}

// bootstrap loads configuration and opens a migrated database.
func bootstrap(ctx context.Context) (*config.Config, logging.Logger, *gorm.DB, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := logging.NewLogger(serviceName, cfg.Environment, cfg.LogLevel)

	db, err := database.Open(ctx, database.OptionsFromConfig(cfg), logger)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.DBDriver, "error", err)
		return nil, nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		logger.Error("failed to migrate database", "error", err)
		return nil, nil, nil, err
	}
	return cfg, logger, db, nil
}

func runMigrate(ctx context.Context) error {
	_, logger, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	logger.Info("schema migrated")
	return database.Close(db)
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	chatService, err := services.NewChatService(repository.NewStore(db, logger), nil, logger)
	if err != nil {
		return err
	}
	chatHandler, err := handlers.NewChatHandler(chatService, logger)
	if err != nil {
		return err
	}

	opts := server.RouterOptions{AllowedOrigins: cfg.AllowedOrigins, Logger: logger}
	if cfg.RateLimitRPS > 0 {
		limiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{
			RPS:   cfg.RateLimitRPS,
			Burst: cfg.RateLimitBurst,
		})
		defer limiter.Close()
		opts.Limiter = limiter
	}

	logger.Info("starting server",
		"port", cfg.ServerPort,
		"driver", cfg.DBDriver,
		"rate_limit_rps", cfg.RateLimitRPS)

	return server.New(cfg, server.NewRouter(chatHandler, opts), logger).Run(ctx)
}
