package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// toolRequest is the wire shape of a tool invocation.
type toolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// toolEnvelope is the Gateway's response envelope for tool calls: either a
// success carrying a structured result, or a failure carrying a
// human-readable message.
type toolEnvelope struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// CallTool invokes a named tool on the Gateway and returns its structured
// result unchanged. A single attempt is made per call: no retries, no
// backoff, no caching — the caller decides whether to retry.
//
// A reported failure surfaces as a *ToolError carrying the Gateway's message
// text; a non-success HTTP status surfaces as a *StatusError.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(toolRequest{Tool: name, Args: args})
	if err != nil {
		return nil, fmt.Errorf("marshaling tool request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/tools/invoke", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating tool request: %w", err)
	}
	c.setCommonHeaders(httpReq)

	c.logger.Debug("invoking gateway tool", "tool", name)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("invoking tool %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ReadStatusError(resp)
	}

	var env toolEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding tool response: %w", err)
	}

	if !env.OK {
		return nil, &ToolError{Tool: name, Message: env.Error}
	}

	return env.Result, nil
}

// callToolAs invokes a tool and unmarshals its result into out.
func (c *Client) callToolAs(ctx context.Context, name string, args map[string]any, out any) error {
	result, err := c.CallTool(ctx, name, args)
	if err != nil {
		return err
	}
	if len(result) == 0 {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", name, err)
	}
	return nil
}

// ListSessions returns the Gateway's sessions. The canonical contract is a
// plain array of session objects.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := c.callToolAs(ctx, "sessions_list", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SessionHistory returns the message history of one session, oldest first.
func (c *Client) SessionHistory(ctx context.Context, key string) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	args := map[string]any{"key": key}
	if err := c.callToolAs(ctx, "session_history", args, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListJobs returns the Gateway's scheduled jobs.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	var jobs []Job
	if err := c.callToolAs(ctx, "cron_list", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// RunJob triggers an immediate run of the given job.
func (c *Client) RunJob(ctx context.Context, id string) error {
	_, err := c.CallTool(ctx, "cron_run", map[string]any{"id": id})
	return err
}

// SetJobEnabled enables or disables the given job.
func (c *Client) SetJobEnabled(ctx context.Context, id string, enabled bool) error {
	_, err := c.CallTool(ctx, "cron_toggle", map[string]any{"id": id, "enabled": enabled})
	return err
}

// ListMemory returns the Gateway's memory files.
func (c *Client) ListMemory(ctx context.Context) ([]MemoryFile, error) {
	var files []MemoryFile
	if err := c.callToolAs(ctx, "memory_list", nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// ReadMemory returns the content of one memory file.
func (c *Client) ReadMemory(ctx context.Context, name string) (string, error) {
	var content string
	args := map[string]any{"name": name}
	if err := c.callToolAs(ctx, "memory_get", args, &content); err != nil {
		return "", err
	}
	return content, nil
}

// Status returns the Gateway's health and identity info as a free-form map.
func (c *Client) Status(ctx context.Context) (map[string]any, error) {
	var status map[string]any
	if err := c.callToolAs(ctx, "status", nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}
