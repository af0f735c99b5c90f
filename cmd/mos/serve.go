package main

import (
	"fmt"

	"github.com/rubuy74/market-ops/internal/config"
	"github.com/rubuy74/market-ops/internal/mos"
	"github.com/rubuy74/market-ops/internal/platform/logger"
	"github.com/spf13/cobra"
)

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Consume market change commands and serve the event listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadMOS(*configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			log, err := logger.Setup(cfg.Server, "mos")
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}

			app, err := mos.New(cmd.Context(), cfg, log)
			if err != nil {
				log.Error("failed to initialize service", "error", err)
				return err
			}
			return app.Run(cmd.Context())
		},
	}
}
