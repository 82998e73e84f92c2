// Package commands implements the stepwise CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/zoobzio/stepwise/internal/config"
	"github.com/zoobzio/stepwise/internal/mcp"
	"github.com/zoobzio/stepwise/internal/observability"
)

// Options holds the persistent root flags shared by every subcommand.
type Options struct {
	ConfigPath string
	Debug      bool
}

func (o *Options) load() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// initObservability builds providers from the telemetry section. --debug
// forces debug logging regardless of the configured level.
func initObservability(cfg *config.Config, mode observability.AppMode, debug bool) (observability.Providers, error) {
	level, err := cfg.Telemetry.Level()
	if err != nil {
		return observability.Providers{}, err
	}
	if debug {
		level = slog.LevelDebug
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = mcp.Version
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Telemetry.LogJSON

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	return providers, nil
}
