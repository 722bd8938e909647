package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/wordsmith/internal/app"
	"github.com/dshills/wordsmith/internal/config"
	"github.com/dshills/wordsmith/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := newLogger(cfg)
		application, err := app.New(ctx, cfg, app.WithLogger(logger))
		if err != nil {
			return err
		}

		srv := server.New(application)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Run(gctx)
		})
		if configPath != "" {
			g.Go(func() error {
				return config.Watch(gctx, configPath, logger.WithComponent("config"), application.Reload)
			})
		}

		runErr := g.Wait()

		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
		defer cancel()
		if err := application.Close(closeCtx); err != nil {
			logger.Warn("shutdown incomplete", "error", err)
		}
		return runErr
	},
}
