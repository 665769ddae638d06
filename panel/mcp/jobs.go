package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jlud7/goddard-gui/pkg/gateway"
)

var (
	cronListToolName    = "cron_list"
	cronListDescription = "List the Gateway's scheduled cron jobs with their schedules and last run status."

	cronRunToolName    = "cron_run"
	cronRunDescription = "Trigger an immediate run of a cron job by its id."
)

// CronListInput represents the input arguments for the cron_list tool.
type CronListInput struct{}

// CronListOutput represents the output of the cron_list tool.
type CronListOutput struct {
	Jobs  []gateway.Job `json:"jobs"`
	Count int           `json:"count"`
}

// CronRunInput represents the input arguments for the cron_run tool.
type CronRunInput struct {
	ID string `json:"id" jsonschema:"the id of the cron job to run now"`
}

// CronRunOutput represents the output of the cron_run tool.
type CronRunOutput struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// handleCronList lists cron jobs via the Gateway.
func (s *Server) handleCronList(ctx context.Context, req *mcp.CallToolRequest, input CronListInput) (*mcp.CallToolResult, CronListOutput, error) {
	jobs, err := s.config.Gateway.ListJobs(ctx)
	if err != nil {
		s.config.Logger.Error("MCP cron_list failed", "error", err)
		return errorResult(err), CronListOutput{}, nil
	}

	output := CronListOutput{
		Jobs:  jobs,
		Count: len(jobs),
	}

	result, err := jsonResult(output)
	if err != nil {
		return errorResult(err), CronListOutput{}, nil
	}
	return result, output, nil
}

// handleCronRun triggers one cron job via the Gateway.
func (s *Server) handleCronRun(ctx context.Context, req *mcp.CallToolRequest, input CronRunInput) (*mcp.CallToolResult, CronRunOutput, error) {
	if err := s.config.Gateway.RunJob(ctx, input.ID); err != nil {
		s.config.Logger.Error("MCP cron_run failed",
			"id", input.ID,
			"error", err,
		)
		return errorResult(err), CronRunOutput{}, nil
	}

	output := CronRunOutput{
		ID:     input.ID,
		Status: "started",
	}

	result, err := jsonResult(output)
	if err != nil {
		return errorResult(err), CronRunOutput{}, nil
	}
	return result, output, nil
}
