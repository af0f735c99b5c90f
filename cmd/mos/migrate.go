package main

import (
	"fmt"

	"github.com/rubuy74/market-ops/internal/config"
	"github.com/rubuy74/market-ops/internal/platform/logger"
	"github.com/rubuy74/market-ops/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate {up|down|status|version}",
		Short:     "Manage the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus, postgres.MigrateVersion},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadMOS(*configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			log, err := logger.Setup(cfg.Server, "mos")
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}

			db, err := postgres.Open(cmd.Context(), cfg.Database.URL,
				cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			log.Info("running migration", "command", args[0])
			return postgres.Migrate(cmd.Context(), db, args[0], log)
		},
	}
}
