package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zoobzio/stepwise"
)

// handleSequentialThinking records one thought and returns the ledger summary.
// Rendering failures are logged and never fail the call.
func (s *Server) handleSequentialThinking(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input stepwise.Submission,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	entry, summary, err := s.ledger.Record(ctx, input)
	if err != nil {
		return errorResult(err)
	}

	if s.renderer != nil {
		if renderErr := s.renderer.Render(entry); renderErr != nil {
			s.logger.WarnContext(ctx, "render thought", "entry_id", entry.ID, "error", renderErr)
		}
	}

	return jsonResult(summary)
}
