package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"tabletop-server/internal/config"
	"tabletop-server/internal/core"
	"tabletop-server/internal/monitor"
	transporthttp "tabletop-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	registry, err := core.NewRegistry(cfg.DMSecret)
	if err != nil {
		return nil, fmt.Errorf("init registry: %w", err)
	}
	if cfg.DMSecret == "" {
		logger.Warn().Msg("no dm secret configured; dm login is disabled")
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	mon := monitor.New("tabletop")
	hub := core.NewHub(registry, mon, logger)
	server := transporthttp.NewServer(hub, *cfg, mon.Handler(), mon.UploadStored, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
