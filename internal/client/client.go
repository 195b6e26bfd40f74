// Package client talks to a running launcher through the MCP tools served by
// its admin endpoint.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"dbconsole/internal/services"
	"dbconsole/internal/services/admin"
	"dbconsole/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// Client calls the console tools of one admin endpoint. Each call opens its
// own short-lived MCP session.
type Client struct {
	baseURL string
	version string
}

// New creates a client for the admin endpoint at baseURL, e.g.
// "http://localhost:8082".
func New(baseURL, version string) *Client {
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), version: version}
}

// Status returns the launcher's view of its three services.
func (c *Client) Status(ctx context.Context) ([]services.SlotStatus, error) {
	text, err := c.callTool(ctx, admin.ToolStatus)
	if err != nil {
		return nil, err
	}
	var statuses []services.SlotStatus
	if err := json.Unmarshal([]byte(text), &statuses); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}
	return statuses, nil
}

// Shutdown asks the launcher to stop all services and exit.
func (c *Client) Shutdown(ctx context.Context) (string, error) {
	return c.callTool(ctx, admin.ToolShutdown)
}

func (c *Client) callTool(ctx context.Context, name string) (string, error) {
	endpoint := c.baseURL + "/sse"
	logging.Debug("Client", "Connecting to %s", endpoint)

	sseClient, err := client.NewSSEMCPClient(endpoint,
		transport.WithHeaders(map[string]string{admin.RequestHeader: "1"}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create SSE client: %w", err)
	}
	if err := sseClient.Start(ctx); err != nil {
		return "", fmt.Errorf("failed to connect to %s: %w", c.baseURL, err)
	}
	defer sseClient.Close()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "dbconsole-cli",
		Version: c.version,
	}
	if _, err := sseClient.Initialize(ctx, initReq); err != nil {
		return "", fmt.Errorf("initialization failed: %w", err)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	result, err := sseClient.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("tool %s failed: %w", name, err)
	}

	text := resultText(result)
	if result.IsError {
		return "", errors.New(text)
	}
	return text, nil
}

func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		switch c := content.(type) {
		case mcp.TextContent:
			parts = append(parts, c.Text)
		case *mcp.TextContent:
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}
