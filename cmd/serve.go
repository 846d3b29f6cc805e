package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sittawut/coverage-admin/config"
	"github.com/sittawut/coverage-admin/middleware"
	"github.com/sittawut/coverage-admin/repository"
	"github.com/sittawut/coverage-admin/routes"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.Port = port
			}

			logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat, "coverage-api")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			store, closeStore, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			limiter, closeLimiter, err := newLimiter(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeLimiter()

			if cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}
			if !cfg.AuthEnabled() {
				logger.Warn("JWT_SECRET is empty, API routes are unauthenticated")
			}

			router := routes.NewRouter(store, limiter, cfg, logger)
			logger.Info("api configured",
				zap.String("store", cfg.StoreDriver),
				zap.String("rate_limit_backend", cfg.RateLimitBackend),
				zap.String("environment", cfg.Environment),
			)
			return runServer(&http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}, logger)
		},
	}
	cmd.Flags().String("port", "", "listen port (overrides PORT)")
	return cmd
}

func openStore(cfg *config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case "supabase":
		client, err := config.NewSupabaseClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSupabaseStore(client, logger), func() {}, nil
	case "sql":
		db, err := config.OpenDatabase(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repository.NewSQLStore(db, logger), closeDB, nil
	}
	return nil, nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
}

func newLimiter(ctx context.Context, cfg *config.Config) (middleware.Limiter, func(), error) {
	switch cfg.RateLimitBackend {
	case "memory":
		return middleware.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow), func() {}, nil
	case "redis":
		client, err := config.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return middleware.NewRedisLimiter(client, cfg.RateLimitMax, cfg.RateLimitWindow), func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported RATE_LIMIT_BACKEND %q", cfg.RateLimitBackend)
}
