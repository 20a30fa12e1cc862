// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/polarmd/dpinput/internal/config"
	"github.com/polarmd/dpinput/internal/log"
	"github.com/polarmd/dpinput/internal/metrics"
)

// Holder holds the daemon configuration with atomic reloading. It watches
// the config file and supports manual reload via SIGHUP or the watcher.
// Reloads are debounced and rate limited so editor write bursts trigger a
// single reload.
type Holder struct {
	mu         sync.RWMutex
	current    config.ServiceConfig
	loader     *config.ServiceLoader
	configPath string
	watcher    *fsnotify.Watcher
	limiter    *rate.Limiter
	logger     zerolog.Logger

	listenMu  sync.RWMutex
	listeners []chan<- config.ChangeSummary
}

// NewHolder creates a configuration holder seeded with the initial config.
func NewHolder(initial config.ServiceConfig, loader *config.ServiceLoader, configPath string) *Holder {
	return &Holder{
		current:    initial,
		loader:     loader,
		configPath: configPath,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 2),
		logger:     log.WithComponent("config"),
	}
}

// Get returns the current configuration.
func (h *Holder) Get() config.ServiceConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload loads and validates a fresh configuration. On any failure the old
// configuration is kept, so a half-edited config file never takes effect.
func (h *Holder) Reload(_ context.Context) error {
	h.logger.Info().Str(log.FieldEvent, "config.reload_start").Msg("reloading configuration")

	next, err := h.loader.Load()
	if err != nil {
		metrics.ConfigReloadTotal.WithLabelValues("failure").Inc()
		h.logger.Error().
			Err(err).
			Str(log.FieldEvent, "config.reload_failed").
			Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.ValidateService(next); err != nil {
		metrics.ConfigReloadTotal.WithLabelValues("failure").Inc()
		h.logger.Error().
			Err(err).
			Str(log.FieldEvent, "config.validation_failed").
			Msg("new configuration failed validation")
		return fmt.Errorf("validate config: %w", err)
	}

	h.mu.Lock()
	old := h.current
	h.current = next
	h.mu.Unlock()

	summary := config.DiffService(old, next)
	if len(summary.ChangedFields) == 0 {
		metrics.ConfigReloadTotal.WithLabelValues("noop").Inc()
		h.logger.Info().Str(log.FieldEvent, "config.reload_noop").Msg("configuration unchanged")
		return nil
	}

	// Log level is the only field applied without a restart.
	if old.LogLevel != next.LogLevel {
		log.SetLevel(next.LogLevel)
		h.logger.Info().
			Str(log.FieldEvent, "config.log_level_changed").
			Str(log.FieldOldField, old.LogLevel).
			Str(log.FieldNewField, next.LogLevel).
			Msg("log level updated")
	}
	if summary.RestartRequired {
		h.logger.Warn().
			Strs("changed", summary.ChangedFields).
			Str(log.FieldEvent, "config.restart_required").
			Msg("changed fields take effect after restart")
	}

	h.notifyListeners(summary)
	metrics.ConfigReloadTotal.WithLabelValues("success").Inc()
	h.logger.Info().
		Strs("changed", summary.ChangedFields).
		Str(log.FieldEvent, "config.reload_success").
		Msg("configuration reloaded")
	return nil
}

// StartWatcher begins watching the config file. With no config path this is
// a no-op since configuration comes from ENV only.
func (h *Holder) StartWatcher(ctx context.Context) error {
	if h.configPath == "" {
		h.logger.Info().
			Str(log.FieldEvent, "config.watcher_disabled").
			Msg("config file watcher disabled (ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(h.configPath); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config file: %w", err)
	}
	h.watcher = watcher

	h.logger.Info().
		Str(log.FieldEvent, "config.watcher_started").
		Str(log.FieldPath, h.configPath).
		Msg("watching config file for changes")

	go h.watchLoop(ctx)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context) {
	// Debounce so a burst of write events from an editor save yields one
	// reload of the final file contents.
	var debounce *time.Timer
	const debounceDelay = 500 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(log.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			_ = h.watcher.Close()
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				if !h.limiter.Allow() {
					h.logger.Debug().
						Str(log.FieldEvent, "config.reload_throttled").
						Msg("reload throttled")
					return
				}
				if err := h.Reload(ctx); err != nil {
					h.logger.Error().
						Err(err).
						Str(log.FieldEvent, "config.auto_reload_failed").
						Msg("automatic config reload failed")
				}
			})

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str(log.FieldEvent, "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// RegisterListener registers a channel that receives a change summary after
// every successful reload. Sends are non-blocking.
func (h *Holder) RegisterListener(ch chan<- config.ChangeSummary) {
	h.listenMu.Lock()
	defer h.listenMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notifyListeners(summary config.ChangeSummary) {
	h.listenMu.RLock()
	defer h.listenMu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- summary:
		default:
			h.logger.Warn().
				Str(log.FieldEvent, "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}
