// Package config provides configuration loading and validation for stepwise.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidTransport   = errors.New("invalid server transport")
	ErrMissingAddr        = errors.New("http transport requires server.addr")
	ErrInvalidBuffer      = errors.New("archive buffer must be positive")
	ErrInvalidTimeout     = errors.New("timeout must be positive")
	ErrInvalidSampleRatio = errors.New("sample ratio must be between 0 and 1")
	ErrInvalidLogLevel    = errors.New("invalid log level")
)

// Transport names accepted by server.transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Default configuration values.
const (
	defaultAddr              = "127.0.0.1:8765"
	defaultReadHeaderTimeout = 10 * time.Second
	defaultArchiveBuffer     = 256
	defaultTrackerTimeout    = 15 * time.Second
	defaultLogLevel          = "info"

	envPrefix = "STEPWISE"

	// envDisableThoughtLogging is the unprefixed variable MCP hosts already set.
	envDisableThoughtLogging = "DISABLE_THOUGHT_LOGGING"
)

// Config holds all configuration for stepwise.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Display   DisplayConfig   `mapstructure:"display"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Tracker   TrackerConfig   `mapstructure:"tracker"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds MCP server configuration.
type ServerConfig struct {
	Transport         string        `mapstructure:"transport"`
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
}

// DisplayConfig controls the boxed thought rendering on stderr.
type DisplayConfig struct {
	DisableThoughtLogging bool `mapstructure:"disable_thought_logging"`
	Color                 bool `mapstructure:"color"`
}

// ArchiveConfig holds the optional Postgres audit archive settings.
// An empty DSN disables archiving.
type ArchiveConfig struct {
	DSN    string `mapstructure:"dsn"`
	Buffer int    `mapstructure:"buffer"`
}

// TrackerConfig holds the optional issue-tracker GraphQL endpoint.
// An empty Endpoint disables the tracker tool.
type TrackerConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig holds logging and OpenTelemetry settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	LogLevel     string  `mapstructure:"log_level"`
	LogJSON      bool    `mapstructure:"log_json"`
	Environment  string  `mapstructure:"environment"`
}

// Load loads configuration from file and environment variables.
// A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("stepwise")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("$HOME/.stepwise")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Hosts configure the display switch without our prefix.
	if err := viperCfg.BindEnv("display.disable_thought_logging",
		envPrefix+"_DISPLAY_DISABLE_THOUGHT_LOGGING", envDisableThoughtLogging); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	if err := viperCfg.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	// Server defaults.
	viperCfg.SetDefault("server.transport", TransportStdio)
	viperCfg.SetDefault("server.addr", defaultAddr)
	viperCfg.SetDefault("server.read_header_timeout", defaultReadHeaderTimeout)

	// Display defaults.
	viperCfg.SetDefault("display.disable_thought_logging", false)
	viperCfg.SetDefault("display.color", true)

	// Archive defaults.
	viperCfg.SetDefault("archive.dsn", "")
	viperCfg.SetDefault("archive.buffer", defaultArchiveBuffer)

	// Tracker defaults.
	viperCfg.SetDefault("tracker.endpoint", "")
	viperCfg.SetDefault("tracker.api_key", "")
	viperCfg.SetDefault("tracker.timeout", defaultTrackerTimeout)

	// Telemetry defaults.
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.log_level", defaultLogLevel)
	viperCfg.SetDefault("telemetry.log_json", false)
	viperCfg.SetDefault("telemetry.environment", "")
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	switch config.Server.Transport {
	case TransportStdio:
	case TransportHTTP:
		if config.Server.Addr == "" {
			return ErrMissingAddr
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransport, config.Server.Transport)
	}

	if config.Server.ReadHeaderTimeout <= 0 {
		return fmt.Errorf("%w: server.read_header_timeout %s", ErrInvalidTimeout, config.Server.ReadHeaderTimeout)
	}

	if config.Archive.Buffer <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBuffer, config.Archive.Buffer)
	}

	if config.Tracker.Timeout <= 0 {
		return fmt.Errorf("%w: tracker.timeout %s", ErrInvalidTimeout, config.Tracker.Timeout)
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Telemetry.SampleRatio)
	}

	if _, err := config.Telemetry.Level(); err != nil {
		return err
	}

	return nil
}

// Level parses LogLevel into a slog level.
func (t TelemetryConfig) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(t.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, t.LogLevel)
	}
	return level, nil
}
