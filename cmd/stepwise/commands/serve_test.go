package commands

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/stepwise/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Transport:         config.TransportHTTP,
			Addr:              "127.0.0.1:0",
			ReadHeaderTimeout: time.Second,
		},
		Display: config.DisplayConfig{DisableThoughtLogging: true},
		Archive: config.ArchiveConfig{Buffer: 8},
		Tracker: config.TrackerConfig{Timeout: time.Second},
		Telemetry: config.TelemetryConfig{
			LogLevel: "error",
		},
	}
}

func TestOpenArchive_Disabled(t *testing.T) {
	t.Parallel()

	opts, closeFn, err := openArchive(context.Background(), config.ArchiveConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Empty(t, opts)
	require.NotNil(t, closeFn)
	closeFn()
}

func TestRunServe_HTTPStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, testConfig(), false)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestRunServe_HTTPBadAddr(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Addr = "256.0.0.1:bad"

	require.Error(t, runServe(context.Background(), cfg, false))
}

func TestInitObservability_InvalidLevel(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Telemetry.LogLevel = "loud"

	_, err := initObservability(cfg, "cli", false)
	require.ErrorIs(t, err, config.ErrInvalidLogLevel)
}
