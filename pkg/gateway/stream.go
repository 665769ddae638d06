package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// ChatStream is a lazy, single-pass sequence of assistant output deltas from
// one streaming chat request. Deltas arrive strictly in network order;
// concatenating every delta reconstructs the full assistant message.
//
// A ChatStream is owned by a single consumer. Call Recv until it returns
// io.EOF, and Close when done (safe to call at any point, including
// mid-stream to abandon consumption).
type ChatStream struct {
	body   io.ReadCloser
	dec    *deltaDecoder
	closed bool
}

// NewChatStream wraps an already-open SSE response body in a delta stream.
// Callers that issue their own upstream request (e.g. the panel's streaming
// pass-through) use this; StreamChat does it for you. The stream takes
// ownership of rc.
func NewChatStream(rc io.ReadCloser) *ChatStream {
	return &ChatStream{
		body: rc,
		dec:  newDeltaDecoder(rc),
	}
}

// Recv returns the next delta. It returns io.EOF when the stream terminates
// (explicit [DONE] sentinel or natural end of input — both are normal
// completion), and ErrStreamClosed after Close.
func (s *ChatStream) Recv() (string, error) {
	if s.closed {
		return "", ErrStreamClosed
	}
	return s.dec.Next()
}

// Close releases the underlying response body. Any blocked or subsequent
// Recv stops promptly; no further deltas are delivered.
func (s *ChatStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// StreamChat issues a streaming chat request and returns the delta stream.
//
// A non-success status before streaming starts is returned as a *StatusError
// carrying the Gateway's message text; no stream is constructed in that
// case. Cancelling ctx aborts the request and any in-flight reads.
func (c *Client) StreamChat(ctx context.Context, req ChatRequest) (*ChatStream, error) {
	req.Stream = true
	if req.Model == "" {
		req.Model = c.model
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	c.setCommonHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")

	c.logger.Debug("sending streaming chat request",
		"model", req.Model,
		"message_count", len(req.Messages),
	)

	resp, err := c.streamHTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending chat request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, ReadStatusError(resp)
	}

	return &ChatStream{
		body: resp.Body,
		dec:  newDeltaDecoder(resp.Body),
	}, nil
}

// ChatCompletion issues a non-streaming chat request and returns the single
// completion object's first choice.
func (c *Client) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	req.Stream = false
	if req.Model == "" {
		req.Model = c.model
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	c.setCommonHeaders(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ReadStatusError(resp)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("decoding chat response: %w", err)
	}

	result := &ChatResult{Model: completion.Model}
	if len(completion.Choices) > 0 {
		result.Content = completion.Choices[0].Message.Content
		result.StopReason = completion.Choices[0].FinishReason
	}

	return result, nil
}
