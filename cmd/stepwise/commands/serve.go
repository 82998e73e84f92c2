package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"

	"github.com/zoobzio/stepwise"
	"github.com/zoobzio/stepwise/internal/config"
	"github.com/zoobzio/stepwise/internal/mcp"
	"github.com/zoobzio/stepwise/internal/observability"
	"github.com/zoobzio/stepwise/internal/tracker"
)

// shutdownGrace bounds how long the HTTP server waits for open requests.
const shutdownGrace = 5 * time.Second

// NewServeCommand creates the MCP server command.
func NewServeCommand(opts *Options) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start a Model Context Protocol (MCP) server exposing the thought ledger.

Tools:
  - sequentialthinking: record one reasoning step and return progress
  - tracker_graphql: query the issue tracker (only when tracker.endpoint is set)

The stdio transport (default) speaks MCP on stdin/stdout; logs and thought
boxes go to stderr. The http transport serves MCP at /mcp and Prometheus
metrics at /metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			if transport != "" {
				cfg.Server.Transport = transport
			}

			return runServe(cobraCmd.Context(), cfg, opts.Debug)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "override server.transport (stdio|http)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, debug bool) error {
	mode := observability.ModeMCP
	if cfg.Server.Transport == config.TransportHTTP {
		mode = observability.ModeServe
	}

	providers, err := initObservability(cfg, mode, debug)
	if err != nil {
		return err
	}

	logger := providers.Logger

	defer func() {
		if shutdownErr := providers.Shutdown(context.Background()); shutdownErr != nil {
			logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	meter := providers.Meter

	var metricsHandler http.Handler
	if mode == observability.ModeServe {
		var mp metric.MeterProvider

		metricsHandler, mp, err = observability.PrometheusHandler()
		if err != nil {
			return err
		}

		meter = mp.Meter("stepwise")
	}

	red, err := observability.NewREDMetrics(meter)
	if err != nil {
		return err
	}

	ledgerMetrics, err := observability.NewLedgerMetrics(meter)
	if err != nil {
		return err
	}

	bridge := observability.BridgeSignals(logger, ledgerMetrics)
	defer bridge.Close()

	ledgerOpts, closeArchive, err := openArchive(ctx, cfg.Archive, logger)
	if err != nil {
		return err
	}
	defer closeArchive()

	deps := mcp.ServerDeps{
		Logger:  logger,
		Metrics: red,
		Tracer:  providers.Tracer,
		Ledger:  stepwise.NewLedger(ledgerOpts...),
	}

	if !cfg.Display.DisableThoughtLogging {
		deps.Renderer = stepwise.NewRenderer(os.Stderr, cfg.Display.Color)
	}

	if cfg.Tracker.Endpoint != "" {
		deps.Tracker = tracker.New(cfg.Tracker.Endpoint, cfg.Tracker.APIKey, tracker.WithTimeout(cfg.Tracker.Timeout))
	}

	srv := mcp.NewServer(deps)

	logger.Info("stepwise server starting",
		"transport", cfg.Server.Transport,
		"session_id", deps.Ledger.ID,
		"tools", srv.ListToolNames(),
	)

	if mode == observability.ModeMCP {
		return srv.Run(ctx)
	}

	return serveHTTP(ctx, cfg.Server, srv, providers, metricsHandler)
}

// openArchive connects the audit archive when a DSN is configured. The
// returned close function drains the archiver before closing the database.
func openArchive(ctx context.Context, cfg config.ArchiveConfig, logger *slog.Logger) ([]stepwise.Option, func(), error) {
	if cfg.DSN == "" {
		return nil, func() {}, nil
	}

	archive, err := stepwise.OpenSoyArchive(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	archiver := stepwise.NewArchiver(archive, cfg.Buffer)

	closeFn := func() {
		if err := archiver.Close(); err != nil {
			logger.Warn("archiver close failed", "error", err)
		}
		if err := archive.Close(); err != nil {
			logger.Warn("archive close failed", "error", err)
		}
	}

	return []stepwise.Option{stepwise.WithArchiver(archiver)}, closeFn, nil
}

func serveHTTP(
	ctx context.Context,
	cfg config.ServerConfig,
	srv *mcp.Server,
	providers observability.Providers,
	metricsHandler http.Handler,
) error {
	mux := http.NewServeMux()
	mux.Handle("/mcp", observability.HTTPMiddleware(providers.Tracer, srv.HTTPHandler()))
	mux.Handle("/metrics", metricsHandler)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		providers.Logger.Info("listening", "addr", cfg.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	return nil
}
