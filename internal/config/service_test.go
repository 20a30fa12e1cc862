package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceLoader_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewServiceLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.MetricsEnabled)
	assert.True(t, filepath.IsAbs(cfg.DataDir), "data dir must be resolved to an absolute path")
}

func TestServiceLoader_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daemon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"listenAddr: \":9000\"\nlogLevel: debug\nmetricsEnabled: false\ndataDir: "+dir+"\n"), 0o600))

	cfg, err := NewServiceLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.MetricsEnabled)
}

func TestServiceLoader_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daemon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listenAddr: \":9000\"\ndataDir: "+dir+"\n"), 0o600))

	t.Setenv(EnvListenAddr, ":7000")
	t.Setenv(EnvRateLimitRPS, "50")
	t.Setenv(EnvRateLimitBurst, "100")

	cfg, err := NewServiceLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.ListenAddr, "environment wins over file")
	assert.Equal(t, 50, cfg.RateLimitRPS)
	assert.Equal(t, 100, cfg.RateLimitBurst)
}

func TestServiceLoader_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daemon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listenAdr: \":9000\"\n"), 0o600))

	_, err := NewServiceLoader(path).Load()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownField), "want ErrUnknownField, got %v", err)
}

func TestServiceLoader_NonYAMLRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daemon.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	_, err := NewServiceLoader(path).Load()
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestValidateService_BurstBelowRPS(t *testing.T) {
	cfg := DefaultServiceConfig()
	cfg.DataDir = t.TempDir()
	cfg.RateLimitRPS = 100
	cfg.RateLimitBurst = 10
	err := ValidateService(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RateLimitBurst")
}

func TestValidateService_BadLogLevel(t *testing.T) {
	cfg := DefaultServiceConfig()
	cfg.DataDir = t.TempDir()
	cfg.LogLevel = "verbose"
	require.Error(t, ValidateService(cfg))
}

func TestDiffService(t *testing.T) {
	old := DefaultServiceConfig()

	t.Run("no changes", func(t *testing.T) {
		summary := DiffService(old, old)
		assert.Empty(t, summary.ChangedFields)
		assert.False(t, summary.RestartRequired)
	})

	t.Run("log level is hot reloadable", func(t *testing.T) {
		next := old
		next.LogLevel = "debug"
		summary := DiffService(old, next)
		assert.Equal(t, []string{"LogLevel"}, summary.ChangedFields)
		assert.False(t, summary.RestartRequired)
	})

	t.Run("listen addr requires restart", func(t *testing.T) {
		next := old
		next.ListenAddr = ":1234"
		summary := DiffService(old, next)
		assert.Equal(t, []string{"ListenAddr"}, summary.ChangedFields)
		assert.True(t, summary.RestartRequired)
	})
}
