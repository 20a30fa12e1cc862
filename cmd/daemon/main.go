// SPDX-License-Identifier: MIT

// daemon runs the dpinput HTTP service: validation, migration, schedule
// preview and the input registry.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/polarmd/dpinput/internal/config"
	"github.com/polarmd/dpinput/internal/daemon"
	"github.com/polarmd/dpinput/internal/inputstore"
	"github.com/polarmd/dpinput/internal/log"
	"github.com/polarmd/dpinput/internal/metrics"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to daemon config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Safe defaults until the config is loaded.
	log.Configure(log.Config{Level: "info", Service: "dpinput"})
	logger := log.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := config.NewServiceLoader(strings.TrimSpace(*configPath))
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(log.FieldEvent, "config.load_failed").
			Str(log.FieldPath, *configPath).
			Msg("failed to load configuration")
	}
	if err := config.ValidateService(cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str(log.FieldEvent, "config.invalid").
			Msg("invalid configuration")
	}
	log.SetLevel(cfg.LogLevel)

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		logger.Fatal().
			Err(err).
			Str(log.FieldEvent, "datadir.create_failed").
			Str(log.FieldPath, cfg.DataDir).
			Msg("failed to create data directory")
	}

	store, err := inputstore.NewSqliteStore(filepath.Join(cfg.DataDir, "inputs.sqlite"))
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(log.FieldEvent, "store.open_failed").
			Msg("failed to open input store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("close input store")
		}
	}()

	// Seed the registry gauge so it survives restarts.
	if recs, err := store.List(ctx); err == nil {
		metrics.RegisteredInputs.Set(float64(len(recs)))
	}

	holder := daemon.NewHolder(cfg, loader, strings.TrimSpace(*configPath))
	app := daemon.NewApp(holder, store)

	logger.Info().
		Str(log.FieldEvent, "daemon.start").
		Str("version", version).
		Str("addr", cfg.ListenAddr).
		Msg("dpinput daemon starting")

	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().
			Err(err).
			Str(log.FieldEvent, "daemon.failed").
			Msg("daemon exited with error")
	}

	logger.Info().Str(log.FieldEvent, "daemon.stopped").Msg("dpinput daemon stopped")
}
