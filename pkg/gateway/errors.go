package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrStreamClosed is returned by Recv after Close has been called.
var ErrStreamClosed = errors.New("gateway: stream closed")

// statusErrorBodyLimit caps how much of an error response body is read into
// the error message.
const statusErrorBodyLimit = 4 * 1024

// StatusError is a terminal transport failure: the Gateway answered with a
// non-success status before any streaming began. It is distinct from
// in-stream parse irregularities, which are absorbed silently.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Message)
}

// ToolError is a failure envelope reported by the Gateway for a tool call.
// The Message is the Gateway's own human-readable text, surfaced unchanged.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed: %s", e.Tool, e.Message)
}

// ReadStatusError builds a StatusError from a non-success response,
// consuming (a bounded prefix of) its body for the message text. The caller
// still owns resp.Body.
func ReadStatusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, statusErrorBodyLimit))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
}
