// Command rhs runs the request handling service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rubuy74/market-ops/internal/config"
	"github.com/rubuy74/market-ops/internal/platform/logger"
	"github.com/rubuy74/market-ops/internal/rhs"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "rhs",
		Short:         "Request handling service for market changes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and consume market change results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configFile)
		},
	})
	return root
}

func serve(ctx context.Context, configFile string) error {
	cfg, err := config.LoadRHS(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server, "rhs")
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	app, err := rhs.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize service", "error", err)
		return err
	}
	return app.Run(ctx)
}
