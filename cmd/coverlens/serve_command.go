package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sydlexius/coverlens/internal/api"
	"github.com/sydlexius/coverlens/internal/config"
	"github.com/sydlexius/coverlens/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON and chart API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			svc, client, err := ctx.services(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			router := api.NewRouter(api.RouterDeps{
				Searcher:           client,
				Analyzer:           svc,
				Logger:             ctx.logger,
				BasePath:           cfg.Server.BasePath,
				RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
			})

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			srv := &http.Server{
				Addr:              addr,
				Handler:           router.Handler(runCtx),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			if ctx.configPath != "" {
				go watchLogging(runCtx, ctx.configPath, *ctx.logLevelFlag, ctx.logs, ctx.logger)
			}

			errCh := make(chan error, 1)
			go func() {
				ctx.logger.Info("server starting", slog.String("addr", addr), slog.String("base_path", cfg.Server.BasePath))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server: %w", err)
				}
			case <-runCtx.Done():
			}
			ctx.logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config)")
	return cmd
}

// watchLogging applies logging changes from the config file while serving.
// A --log-level flag keeps precedence. Upstream and server settings take
// effect on restart.
func watchLogging(ctx context.Context, path, levelFlag string, logs *logging.Manager, logger *slog.Logger) {
	err := config.Watch(ctx, path, logger, func(cfg *config.Config) {
		next := logging.FromConfig(cfg.Logging)
		if levelFlag != "" {
			next.Level = levelFlag
		}
		logs.Reconfigure(next)
		logger.Info("logging reconfigured", slog.String("logging", next.String()))
	})
	if err != nil {
		logger.Warn("config watch stopped", slog.String("error", err.Error()))
	}
}
