package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/polarmd/dpinput/internal/validate"
)

// ServiceConfig is the daemon's own configuration, separate from the
// training-input schema it manages.
type ServiceConfig struct {
	ListenAddr     string `yaml:"listenAddr"`
	DataDir        string `yaml:"dataDir"`
	LogLevel       string `yaml:"logLevel"`
	MetricsEnabled bool   `yaml:"metricsEnabled"`
	RateLimitRPS   int    `yaml:"rateLimitRPS"`
	RateLimitBurst int    `yaml:"rateLimitBurst"`
}

// ServiceFileConfig mirrors ServiceConfig with pointer fields so a file
// can distinguish "not set" from explicit zero values.
type ServiceFileConfig struct {
	ListenAddr     *string `yaml:"listenAddr,omitempty"`
	DataDir        *string `yaml:"dataDir,omitempty"`
	LogLevel       *string `yaml:"logLevel,omitempty"`
	MetricsEnabled *bool   `yaml:"metricsEnabled,omitempty"`
	RateLimitRPS   *int    `yaml:"rateLimitRPS,omitempty"`
	RateLimitBurst *int    `yaml:"rateLimitBurst,omitempty"`
}

// DefaultServiceConfig returns the daemon defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ListenAddr:     ":8080",
		DataDir:        "data",
		LogLevel:       "info",
		MetricsEnabled: true,
		RateLimitRPS:   20,
		RateLimitBurst: 40,
	}
}

// ServiceLoader loads the daemon configuration with precedence
// ENV > file > defaults.
type ServiceLoader struct {
	configPath string
}

// NewServiceLoader creates a loader for the given config path. An empty
// path skips the file layer.
func NewServiceLoader(configPath string) *ServiceLoader {
	return &ServiceLoader{configPath: configPath}
}

// Load resolves the daemon configuration: defaults, then file, then
// environment, then validation.
func (l *ServiceLoader) Load() (ServiceConfig, error) {
	cfg := DefaultServiceConfig()

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		mergeServiceFile(&cfg, fileCfg)
	}

	mergeServiceEnv(&cfg)

	if abs, err := filepath.Abs(cfg.DataDir); err == nil {
		cfg.DataDir = abs
	}

	if err := ValidateService(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile parses the daemon YAML config with strict field checking.
func (l *ServiceLoader) loadFile(path string) (*ServiceFileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg ServiceFileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields

	if err := dec.Decode(&fileCfg); err != nil {
		if err == io.EOF {
			return &ServiceFileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}

	return &fileCfg, nil
}

func mergeServiceFile(cfg *ServiceConfig, file *ServiceFileConfig) {
	if file.ListenAddr != nil {
		cfg.ListenAddr = *file.ListenAddr
	}
	if file.DataDir != nil {
		cfg.DataDir = *file.DataDir
	}
	if file.LogLevel != nil {
		cfg.LogLevel = *file.LogLevel
	}
	if file.MetricsEnabled != nil {
		cfg.MetricsEnabled = *file.MetricsEnabled
	}
	if file.RateLimitRPS != nil {
		cfg.RateLimitRPS = *file.RateLimitRPS
	}
	if file.RateLimitBurst != nil {
		cfg.RateLimitBurst = *file.RateLimitBurst
	}
}

// Environment variable names understood by the daemon.
const (
	EnvListenAddr     = "DPINPUT_LISTEN"
	EnvDataDir        = "DPINPUT_DATA"
	EnvLogLevel       = "DPINPUT_LOG_LEVEL"
	EnvMetricsEnabled = "DPINPUT_METRICS"
	EnvRateLimitRPS   = "DPINPUT_RATE_LIMIT_RPS"
	EnvRateLimitBurst = "DPINPUT_RATE_LIMIT_BURST"
)

func mergeServiceEnv(cfg *ServiceConfig) {
	cfg.ListenAddr = envString(EnvListenAddr, cfg.ListenAddr)
	cfg.DataDir = envString(EnvDataDir, cfg.DataDir)
	cfg.LogLevel = envString(EnvLogLevel, cfg.LogLevel)
	cfg.MetricsEnabled = envBool(EnvMetricsEnabled, cfg.MetricsEnabled)
	cfg.RateLimitRPS = envInt(EnvRateLimitRPS, cfg.RateLimitRPS)
	cfg.RateLimitBurst = envInt(EnvRateLimitBurst, cfg.RateLimitBurst)
}

func envString(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// ValidateService validates the daemon configuration.
func ValidateService(cfg ServiceConfig) error {
	v := validate.New()

	v.NotEmpty("ListenAddr", cfg.ListenAddr)
	v.Directory("DataDir", cfg.DataDir, false)
	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("LogLevel", err.Error(), cfg.LogLevel)
	}
	v.Min("RateLimitRPS", cfg.RateLimitRPS, 1)
	if cfg.RateLimitBurst < cfg.RateLimitRPS {
		v.AddError("RateLimitBurst", "must be >= RateLimitRPS", cfg.RateLimitBurst)
	}

	return v.Err()
}
