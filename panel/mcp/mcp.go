// Package mcp exposes the panel's Gateway tools over the Model Context
// Protocol so agent-side tooling can drive the same sessions, jobs and
// memory operations the browser UI uses.
package mcp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jlud7/goddard-gui/pkg/gateway"
	"github.com/jlud7/goddard-gui/pkg/utils"
)

type Config struct {
	// Gateway is the client used to invoke tools upstream.
	Gateway *gateway.Client

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the Gateway tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "goddard",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if c.Noop {
		// return the empty MCP server with no tools configured
		// if the noop flag is set (i.e., MCP capabilities are disabled)
		s.mcpServer = mcpServer
		return s, nil
	}

	if c.Gateway == nil {
		return nil, errors.New("gateway client is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	// Add tools
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        sessionsListToolName,
		Description: sessionsListDescription,
	}, s.handleSessionsList)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        sessionHistoryToolName,
		Description: sessionHistoryDescription,
	}, s.handleSessionHistory)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        cronListToolName,
		Description: cronListDescription,
	}, s.handleCronList)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        cronRunToolName,
		Description: cronRunDescription,
	}, s.handleCronRun)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memoryListToolName,
		Description: memoryListDescription,
	}, s.handleMemoryList)
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memoryGetToolName,
		Description: memoryGetDescription,
	}, s.handleMemoryGet)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// errorResult wraps a Gateway failure into an MCP tool error result.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: err.Error()},
		},
	}
}

// jsonResult serializes output into a TextContent block.
// Per MCP spec: tools returning structured content should also return
// serialized JSON in a TextContent block for backwards compatibility.
func jsonResult(output any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, nil
}
