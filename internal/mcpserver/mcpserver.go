// Package mcpserver is thin stdio JSON-RPC/MCP transport: it registers the
// two core tools and forwards every call straight into internal/pipeline and
// internal/history. No business logic lives here.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server, scoped to a single repository root.
type Server struct {
	server   *mcp.Server
	repoRoot string
}

// NewServer creates an MCP server rooted at repoRoot with both tools
// registered.
func NewServer(version, repoRoot string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "memoria",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server, repoRoot: repoRoot}
	s.registerTools()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_file",
		Description: describeAnalyzeFile(),
	}, s.handleAnalyzeFile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_history",
		Description: describeAskHistory(),
	}, s.handleAskHistory)
}
