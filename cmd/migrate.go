package cmd

import (
	"fmt"

	"github.com/sittawut/coverage-admin/config"
	"github.com/sittawut/coverage-admin/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm/schema"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the tables used by the sql store",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			cfg := config.NewConfig()
			logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat, "coverage-migrate")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if dryRun {
				fmt.Println("Tables:")
				for _, m := range repository.Models() {
					if t, ok := m.(schema.Tabler); ok {
						fmt.Printf("- %s\n", t.TableName())
					}
				}
				return nil
			}

			db, err := config.OpenDatabase(cfg, logger)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := db.AutoMigrate(repository.Models()...); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			logger.Info("migration complete", zap.Int("tables", len(repository.Models())))
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, "list the tables without touching the database")
	return cmd
}
