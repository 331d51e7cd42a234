package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/byronwade/memoria/internal/history"
	"github.com/byronwade/memoria/internal/pipeline"
)

// AnalyzeFileInput is the analyze_file request body.
type AnalyzeFileInput struct {
	Path string `json:"path" jsonschema:"Path to the file to analyze, relative to the repository root."`
}

// AskHistoryInput is the ask_history request body.
type AskHistoryInput struct {
	Query     string `json:"query" jsonschema:"Search term: a commit-message substring, or a pickaxe string/regex for mode=diff."`
	Path      string `json:"path,omitempty" jsonschema:"Restrict the search to this file or path prefix."`
	Mode      string `json:"mode,omitempty" jsonschema:"message, diff, or both (default)."`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of results. Default 20."`
	StartLine int    `json:"startLine,omitempty" jsonschema:"Start of a line range; switches to line-range history regardless of mode."`
	EndLine   int    `json:"endLine,omitempty" jsonschema:"End of a line range; requires startLine."`
}

func (s *Server) handleAnalyzeFile(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeFileInput) (*mcp.CallToolResult, any, error) {
	if input.Path == "" {
		return toolError("path is required")
	}

	coord := pipeline.New(s.repoRoot)
	rep, err := coord.AnalyzeFile(ctx, input.Path)
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(rep)
}

func (s *Server) handleAskHistory(ctx context.Context, req *mcp.CallToolRequest, input AskHistoryInput) (*mcp.CallToolResult, any, error) {
	if input.Query == "" && input.StartLine == 0 && input.EndLine == 0 {
		return toolError("query is required unless startLine/endLine is set")
	}

	out, err := history.Search(ctx, s.repoRoot, history.Request{
		Query:     input.Query,
		Path:      input.Path,
		Mode:      input.Mode,
		Limit:     input.Limit,
		StartLine: input.StartLine,
		EndLine:   input.EndLine,
	})
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(out)
}

// toolResult encodes data as the tool's text content: the wire format is
// plain JSON, since the consumer is an MCP client parsing a structured
// report, not a human reading a terminal.
func toolResult(data any) (*mcp.CallToolResult, any, error) {
	text, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(text)},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}
