package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jlud7/goddard-gui/pkg/gateway"
)

var (
	memoryListToolName    = "memory_list"
	memoryListDescription = "List the Gateway's memory files with sizes and modification times."

	memoryGetToolName    = "memory_get"
	memoryGetDescription = "Return the content of one memory file by name."
)

// MemoryListInput represents the input arguments for the memory_list tool.
type MemoryListInput struct{}

// MemoryListOutput represents the output of the memory_list tool.
type MemoryListOutput struct {
	Files []gateway.MemoryFile `json:"files"`
	Count int                  `json:"count"`
}

// MemoryGetInput represents the input arguments for the memory_get tool.
type MemoryGetInput struct {
	Name string `json:"name" jsonschema:"the memory file name to read"`
}

// MemoryGetOutput represents the output of the memory_get tool.
type MemoryGetOutput struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// handleMemoryList lists memory files via the Gateway.
func (s *Server) handleMemoryList(ctx context.Context, req *mcp.CallToolRequest, input MemoryListInput) (*mcp.CallToolResult, MemoryListOutput, error) {
	files, err := s.config.Gateway.ListMemory(ctx)
	if err != nil {
		s.config.Logger.Error("MCP memory_list failed", "error", err)
		return errorResult(err), MemoryListOutput{}, nil
	}

	output := MemoryListOutput{
		Files: files,
		Count: len(files),
	}

	result, err := jsonResult(output)
	if err != nil {
		return errorResult(err), MemoryListOutput{}, nil
	}
	return result, output, nil
}

// handleMemoryGet reads one memory file via the Gateway.
func (s *Server) handleMemoryGet(ctx context.Context, req *mcp.CallToolRequest, input MemoryGetInput) (*mcp.CallToolResult, MemoryGetOutput, error) {
	content, err := s.config.Gateway.ReadMemory(ctx, input.Name)
	if err != nil {
		s.config.Logger.Error("MCP memory_get failed",
			"name", input.Name,
			"error", err,
		)
		return errorResult(err), MemoryGetOutput{}, nil
	}

	output := MemoryGetOutput{
		Name:    input.Name,
		Content: content,
	}

	result, err := jsonResult(output)
	if err != nil {
		return errorResult(err), MemoryGetOutput{}, nil
	}
	return result, output, nil
}
