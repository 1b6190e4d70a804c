// Package mcpserver exposes a finished chrones run to MCP-speaking
// clients: a run-result digest and the event-stream analyzer's
// summaries, both read-only, both computed on demand from whatever
// logs directory the caller names.
package mcpserver

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps the MCP server instance.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server with the chrones tools registered.
func NewServer(version string) *Server {
	s := server.NewMCPServer("chrones", version, server.WithLogging())
	registerTools(s)
	return &Server{mcpServer: s}
}

// Start runs the server in stdio mode (blocking).
func (s *Server) Start(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.mcpServer)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func registerTools(s *server.MCPServer) {
	runSummaryTool := mcp.NewTool("get_run_summary",
		mcp.WithDescription("Health-style digest of a finished chrones run: exit code, wall-clock duration, peak main-process RSS, and whether GPU monitoring was on. Reads run-result.json from the given logs directory."),
		mcp.WithString("logs_dir",
			mcp.Description("Directory containing run-result.json. Defaults to the current directory."),
			mcp.DefaultString("."),
		),
	)
	s.AddTool(runSummaryTool, handleGetRunSummary)

	functionSummariesTool := mcp.NewTool("get_function_summaries",
		mcp.WithDescription("Per-(function,label) timing summaries for a finished chrones run, synthesized from its event-stream CSV files. Optionally filtered by a substring of the function name."),
		mcp.WithString("logs_dir",
			mcp.Description("Directory containing run-result.json and the *.chrones.csv event files. Defaults to the current directory."),
			mcp.DefaultString("."),
		),
		mcp.WithString("function_filter",
			mcp.Description("Only include functions whose name contains this substring. Omit for every function."),
		),
	)
	s.AddTool(functionSummariesTool, handleGetFunctionSummaries)
}
