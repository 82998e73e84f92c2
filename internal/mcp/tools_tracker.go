package mcp

import (
	"context"
	"encoding/json"
	"errors"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrEmptyQuery indicates the query parameter is empty.
var ErrEmptyQuery = errors.New("query parameter is required and must not be empty")

// TrackerInput is the input schema for the tracker_graphql tool.
type TrackerInput struct {
	Query     string         `json:"query"               jsonschema:"GraphQL query or mutation document"`
	Variables map[string]any `json:"variables,omitempty" jsonschema:"optional GraphQL variables"`
}

func (s *Server) handleTrackerGraphQL(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input TrackerInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Query == "" {
		return errorResult(ErrEmptyQuery)
	}

	var data json.RawMessage
	if err := s.tracker.Do(ctx, input.Query, input.Variables, &data); err != nil {
		s.logger.WarnContext(ctx, "tracker call failed", "endpoint", s.tracker.Endpoint(), "error", err)
		return errorResult(err)
	}

	return jsonResult(data)
}
