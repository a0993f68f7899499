package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vitaliisemenov/netgate/internal/api"
	"github.com/vitaliisemenov/netgate/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Gateway HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	log, handlers, err := build(cfg)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	routerCfg := api.DefaultRouterConfig(log)
	routerCfg.EnableRateLimit = cfg.RateLimit.Enabled
	routerCfg.RateLimitPerMinute = cfg.RateLimit.RequestsPerMinute
	routerCfg.RateLimitBurst = cfg.RateLimit.Burst
	router := api.NewRouter(handlers, routerCfg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("gateway starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-quit:
	}

	log.Info("gateway shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("serve: graceful shutdown: %w", err)
	}

	log.Info("gateway exited")
	return nil
}
