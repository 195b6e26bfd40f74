package admin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names served on the MCP endpoint.
const (
	ToolStatus   = "console_status"
	ToolShutdown = "console_shutdown"
)

func newMCPServer(h *handler) *server.MCPServer {
	s := server.NewMCPServer(
		"dbconsole",
		h.version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(
		mcp.NewTool(ToolStatus,
			mcp.WithDescription("Report the state of the admin endpoint, the TCP listener and the PG listener"),
		),
		h.handleStatusTool,
	)
	s.AddTool(
		mcp.NewTool(ToolShutdown,
			mcp.WithDescription("Stop every running service and exit the launcher"),
		),
		h.handleShutdownTool,
	)

	return s
}

func (h *handler) handleStatusTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(h.sup.Status(), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *handler) handleShutdownTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requestShutdown(h.sup)
	return mcp.NewToolResultText("Shutdown requested"), nil
}
