// Package mcp implements a Model Context Protocol server exposing the
// thought ledger as MCP tools over stdio or streamable HTTP.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zoobzio/stepwise"
	"github.com/zoobzio/stepwise/internal/observability"
	"github.com/zoobzio/stepwise/internal/tracker"
)

const (
	// serverName is the MCP server implementation name.
	serverName = "stepwise"

	// toolCount is the maximum number of registered tools.
	toolCount = 2
)

// Version is the MCP server implementation version, set at build time.
var Version = "0.2.0"

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer

	// Ledger receives every thought. Nil creates a fresh ledger.
	Ledger *stepwise.Ledger

	// Renderer draws each recorded thought. Nil disables display.
	Renderer *stepwise.Renderer

	// Tracker enables the tracker_graphql tool. Nil leaves it unregistered.
	Tracker *tracker.Client
}

// Server wraps the MCP SDK server with the stepwise tool registrations.
type Server struct {
	inner    *mcpsdk.Server
	mu       sync.RWMutex
	tools    []string
	logger   *slog.Logger
	metrics  *observability.REDMetrics
	tracer   trace.Tracer
	ledger   *stepwise.Ledger
	renderer *stepwise.Renderer
	tracker  *tracker.Client
}

// NewServer creates a new MCP server with all configured tools registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: Version,
		},
		opts,
	)

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ledger := deps.Ledger
	if ledger == nil {
		ledger = stepwise.NewLedger()
	}

	srv := &Server{
		inner:    inner,
		tools:    make([]string, 0, toolCount),
		logger:   logger,
		metrics:  deps.Metrics,
		tracer:   deps.Tracer,
		ledger:   ledger,
		renderer: deps.Renderer,
		tracker:  deps.Tracker,
	}

	srv.registerTools()

	return srv
}

// Ledger returns the ledger the server records into.
func (s *Server) Ledger() *stepwise.Ledger {
	return s.ledger
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.tools))
	copy(names, s.tools)
	sort.Strings(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport starts the MCP server on the given transport. It blocks
// until the context is canceled or the connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	if err := s.inner.Run(ctx, transport); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// HTTPHandler serves the MCP streamable HTTP transport. Every HTTP session
// shares this server and therefore its ledger.
func (s *Server) HTTPHandler() http.Handler {
	return mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return s.inner
	}, nil)
}

// registerTools adds the configured MCP tools to the server.
func (s *Server) registerTools() {
	s.registerThinkingTool()

	if s.tracker != nil {
		s.registerTrackerTool()
	}
}

func (s *Server) registerThinkingTool() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameSequentialThinking,
		Description: sequentialThinkingDescription,
	}, withMetrics(s.metrics, ToolNameSequentialThinking,
		withTracing(s.tracer, ToolNameSequentialThinking, s.handleSequentialThinking)))

	s.trackTool(ToolNameSequentialThinking)
}

func (s *Server) registerTrackerTool() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameTrackerGraphQL,
		Description: trackerGraphQLDescription,
	}, withMetrics(s.metrics, ToolNameTrackerGraphQL,
		withTracing(s.tracer, ToolNameTrackerGraphQL, s.handleTrackerGraphQL)))

	s.trackTool(ToolNameTrackerGraphQL)
}

// mcpSpanPrefix is the prefix for MCP tool span names.
const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the metadata key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// withTracing wraps an MCP tool handler to create an OTel span per invocation
// and include trace_id in the response content when sampled.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics wraps an MCP tool handler to record RED metrics per invocation.
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		decInflight := metrics.TrackInflight(ctx, mcpSpanPrefix+toolName)
		defer decInflight()

		result, output, err := handler(ctx, req, input)

		status := observability.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = observability.StatusError
		}

		metrics.RecordRequest(ctx, mcpSpanPrefix+toolName, status, time.Since(start))

		return result, output, err
	}
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}
