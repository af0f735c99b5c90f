package mos

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/rubuy74/market-ops/internal/platform/httpserver"
	"golang.org/x/sync/errgroup"
)

// Run serves HTTP on the configured port and consumes commands until ctx is
// canceled or either side fails.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.config.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", a.config.Server.Port, err)
	}
	return a.RunListener(ctx, ln)
}

// RunListener is Run on an already bound listener.
func (a *Application) RunListener(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpserver.ServeListener(ctx, ln, a.Handler(), a.logger)
	})
	g.Go(func() error {
		return a.consumer.Run(ctx)
	})

	err := g.Wait()
	if cerr := a.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		a.logger.Error("market operations service stopped", slog.String("error", err.Error()))
		return err
	}
	a.logger.Info("market operations service stopped")
	return nil
}
