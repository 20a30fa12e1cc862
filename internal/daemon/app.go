// SPDX-License-Identifier: MIT

// Package daemon owns the long-lived runtime lifecycle: the HTTP server,
// the config watcher and the reload signal handling.
package daemon

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/polarmd/dpinput/internal/api"
	"github.com/polarmd/dpinput/internal/inputstore"
	"github.com/polarmd/dpinput/internal/log"
)

const shutdownTimeout = 10 * time.Second

// App wires the HTTP server, input store and config holder together and
// runs them until the context is cancelled.
type App struct {
	holder       *Holder
	store        inputstore.Store
	logger       zerolog.Logger
	reloadSignal os.Signal
}

// NewApp creates the daemon orchestrator.
func NewApp(holder *Holder, store inputstore.Store) *App {
	return &App{
		holder:       holder,
		store:        store,
		logger:       log.WithComponent("daemon"),
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts the server and all background loops and blocks until ctx is
// cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	cfg := a.holder.Get()
	server := api.NewServer(cfg, a.store)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Watcher start is best-effort: a missing config file must not keep
	// the daemon from serving.
	if err := a.holder.StartWatcher(ctx); err != nil {
		a.logger.Warn().
			Err(err).
			Str(log.FieldEvent, "config.watcher_start_failed").
			Msg("failed to start config watcher")
	}

	// SIGHUP triggers a manual reload.
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, a.reloadSignal)
		defer signal.Stop(hup)

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-hup:
				a.logger.Info().
					Str(log.FieldEvent, "config.reload_signal").
					Str("signal", a.reloadSignal.String()).
					Msg("received reload signal")
				if err := a.holder.Reload(context.Background()); err != nil {
					a.logger.Warn().
						Err(err).
						Str(log.FieldEvent, "config.reload_failed").
						Msg("config reload failed")
				}
			}
		}
	})

	g.Go(func() error {
		a.logger.Info().
			Str(log.FieldEvent, "server.start").
			Str("addr", cfg.ListenAddr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info().Str(log.FieldEvent, "server.shutdown").Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
