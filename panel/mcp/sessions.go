package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jlud7/goddard-gui/pkg/gateway"
)

var (
	sessionsListToolName    = "sessions_list"
	sessionsListDescription = "List the Gateway's agent sessions, most recently updated first."

	sessionHistoryToolName    = "session_history"
	sessionHistoryDescription = "Return the full transcript of one agent session by its key."
)

// SessionsListInput represents the input arguments for the sessions_list tool.
type SessionsListInput struct{}

// SessionsListOutput represents the output of the sessions_list tool.
type SessionsListOutput struct {
	Sessions []gateway.Session `json:"sessions"`
	Count    int               `json:"count"`
}

// SessionHistoryInput represents the input arguments for the session_history tool.
type SessionHistoryInput struct {
	Key string `json:"key" jsonschema:"the session key to fetch the transcript for"`
}

// SessionHistoryOutput represents the output of the session_history tool.
type SessionHistoryOutput struct {
	Key     string                 `json:"key"`
	History []gateway.HistoryEntry `json:"history"`
	Depth   int                    `json:"depth"`
}

// handleSessionsList lists sessions via the Gateway.
func (s *Server) handleSessionsList(ctx context.Context, req *mcp.CallToolRequest, input SessionsListInput) (*mcp.CallToolResult, SessionsListOutput, error) {
	sessions, err := s.config.Gateway.ListSessions(ctx)
	if err != nil {
		s.config.Logger.Error("MCP sessions_list failed", "error", err)
		return errorResult(err), SessionsListOutput{}, nil
	}

	output := SessionsListOutput{
		Sessions: sessions,
		Count:    len(sessions),
	}

	result, err := jsonResult(output)
	if err != nil {
		return errorResult(err), SessionsListOutput{}, nil
	}
	return result, output, nil
}

// handleSessionHistory fetches one session transcript via the Gateway.
func (s *Server) handleSessionHistory(ctx context.Context, req *mcp.CallToolRequest, input SessionHistoryInput) (*mcp.CallToolResult, SessionHistoryOutput, error) {
	history, err := s.config.Gateway.SessionHistory(ctx, input.Key)
	if err != nil {
		s.config.Logger.Error("MCP session_history failed",
			"key", input.Key,
			"error", err,
		)
		return errorResult(err), SessionHistoryOutput{}, nil
	}

	output := SessionHistoryOutput{
		Key:     input.Key,
		History: history,
		Depth:   len(history),
	}

	result, err := jsonResult(output)
	if err != nil {
		return errorResult(err), SessionHistoryOutput{}, nil
	}
	return result, output, nil
}
