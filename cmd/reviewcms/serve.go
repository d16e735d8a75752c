package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/reviewcms"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(rootOpts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the content API, feeds and admin endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			if addr != "" {
				cfg.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func runServe(parent context.Context, cfg reviewcms.SiteConfig) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := reviewcms.New(cfg)
	defer app.Close()
	if err := app.Open(); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- app.Serve() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	app.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("shutdown", zap.Error(err))
		return err
	}
	return <-errc
}
