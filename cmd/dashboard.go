package cmd

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sittawut/coverage-admin/apiclient"
	"github.com/sittawut/coverage-admin/config"
	"github.com/sittawut/coverage-admin/dashboard"
	"github.com/sittawut/coverage-admin/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func DashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Run the staff admin UI against the REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.DashboardPort = port
			}
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat, "coverage-dashboard")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			api := apiclient.New(cfg.APIBaseURL,
				apiclient.WithToken(cfg.APIToken),
				apiclient.WithCacheTTL(cfg.CacheTTL),
				apiclient.WithLogger(logger),
			)
			if email != "" {
				if err := api.Login(cmd.Context(), email, password); err != nil {
					return err
				}
				logger.Info("dashboard signed in", zap.String("email", email))
			}

			if cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}
			router, err := dashboard.NewServer(api, logger).Router(
				middleware.RequestID(),
				middleware.RequestLogger(logger),
			)
			if err != nil {
				return err
			}

			logger.Info("dashboard configured",
				zap.String("api_base_url", cfg.APIBaseURL),
				zap.Duration("cache_ttl", cfg.CacheTTL),
			)
			return runServer(&http.Server{
				Addr:              ":" + cfg.DashboardPort,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}, logger)
		},
	}
	cmd.Flags().String("port", "", "listen port (overrides DASHBOARD_PORT)")
	cmd.Flags().String("email", "", "staff email to sign in with when API_TOKEN is not set")
	cmd.Flags().String("password", "", "staff password")
	return cmd
}
