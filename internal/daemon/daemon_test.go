// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/polarmd/dpinput/internal/config"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestHolder_Reload_AppliesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dpinput.yaml")
	writeConfig(t, path, "logLevel: info\n")

	loader := config.NewServiceLoader(path)
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewHolder(initial, loader, path)
	assert.Equal(t, "info", h.Get().LogLevel)

	writeConfig(t, path, "logLevel: debug\n")
	require.NoError(t, h.Reload(context.Background()))
	assert.Equal(t, "debug", h.Get().LogLevel)
}

func TestHolder_Reload_KeepsOldConfigOnInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dpinput.yaml")
	writeConfig(t, path, "logLevel: info\n")

	loader := config.NewServiceLoader(path)
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewHolder(initial, loader, path)

	writeConfig(t, path, "logLevel: [not, a, string\n")
	require.Error(t, h.Reload(context.Background()))
	assert.Equal(t, "info", h.Get().LogLevel, "old config must survive a failed reload")
}

func TestHolder_Reload_NotifiesListeners(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dpinput.yaml")
	writeConfig(t, path, "rateLimitRPS: 20\nrateLimitBurst: 40\n")

	loader := config.NewServiceLoader(path)
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewHolder(initial, loader, path)
	ch := make(chan config.ChangeSummary, 1)
	h.RegisterListener(ch)

	writeConfig(t, path, "rateLimitRPS: 50\nrateLimitBurst: 100\n")
	require.NoError(t, h.Reload(context.Background()))

	select {
	case summary := <-ch:
		assert.True(t, summary.RestartRequired)
		assert.Contains(t, summary.ChangedFields, "RateLimitRPS")
	case <-time.After(time.Second):
		t.Fatal("no change summary received")
	}
}

func TestHolder_Watcher_PicksUpFileChange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "dpinput.yaml")
	writeConfig(t, path, "logLevel: info\n")

	loader := config.NewServiceLoader(path)
	initial, err := loader.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	h := NewHolder(initial, loader, path)
	require.NoError(t, h.StartWatcher(ctx))

	writeConfig(t, path, "logLevel: warn\n")

	require.Eventually(t, func() bool {
		return h.Get().LogLevel == "warn"
	}, 5*time.Second, 50*time.Millisecond, "watcher did not pick up the change")

	cancel()
	// Let the watch loop observe cancellation before the leak check runs.
	time.Sleep(100 * time.Millisecond)
}

func TestApp_RunStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := config.DefaultServiceConfig()
	cfg.ListenAddr = "127.0.0.1:0"

	h := NewHolder(cfg, config.NewServiceLoader(""), "")
	app := NewApp(h, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}
