package mcp

import (
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameSequentialThinking = "sequentialthinking"
	ToolNameTrackerGraphQL     = "tracker_graphql"
)

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// failure is the JSON body of a rejected call.
type failure struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// errorResult builds a CallToolResult with isError set. The text content is
// a JSON object carrying the error message.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	text := err.Error()
	if data, marshalErr := json.MarshalIndent(failure{Error: err.Error(), Status: "failed"}, "", "  "); marshalErr == nil {
		text = string(data)
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: text},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// Tool description constants.
const (
	sequentialThinkingDescription = `Record one step of a dynamic, reflective problem-solving process.

Each call adds a thought to a running ledger and returns progress: the thought number,
the (possibly raised) total estimate, whether another thought is needed, the branch labels
seen so far and the number of thoughts recorded.

Use it to break a problem into steps, to plan while leaving room for revision, to
course-correct when an earlier step turns out wrong, and to explore alternatives.

- totalThoughts is an estimate. Raise or lower it freely; if thoughtNumber exceeds it, the
  total is raised to match.
- Set isRevision and revisesThought to reconsider an earlier thought.
- Set branchId (and optionally branchFromThought) to explore an alternative path. Each new
  branchId is listed once, in order of first use.
- Set nextThoughtNeeded to false only when a satisfactory answer has been reached.

Required: thought, thoughtNumber (>= 1), totalThoughts (>= 1), nextThoughtNeeded.`

	trackerGraphQLDescription = "Run a GraphQL query or mutation against the configured issue tracker. " +
		"Accepts a query document and optional variables; returns the response data. " +
		"Any GraphQL error fails the whole call."
)
