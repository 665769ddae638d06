package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jlud7/goddard-gui/panel/worker"
	"github.com/jlud7/goddard-gui/pkg/events"
	"github.com/jlud7/goddard-gui/pkg/gateway"
)

const chatCompletionsPath = "/v1/chat/completions"

// sseChunk is the OpenAI-compatible delta frame the panel re-emits to the
// browser, so the browser-side decoder sees the same shape the Gateway sends.
type sseChunk struct {
	Choices []sseChoice `json:"choices"`
}

type sseChoice struct {
	Delta sseDelta `json:"delta"`
}

type sseDelta struct {
	Content string `json:"content"`
}

// handleChat forwards a chat request to the Gateway. Non-streaming requests
// return the single completion object; streaming requests re-emit each delta
// as an SSE data: line with direct per-chunk backpressure.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req gateway.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "messages required"})
	}
	if req.Model == "" {
		req.Model = s.config.Model
	}

	if !req.Stream {
		return s.handleChatCompletion(c, req)
	}

	return s.handleChatStream(c, req)
}

// handleChatCompletion handles non-streaming requests via the typed client.
func (s *Server) handleChatCompletion(c *fiber.Ctx, req gateway.ChatRequest) error {
	start := time.Now()
	result, err := s.gw.ChatCompletion(c.Context(), req)
	s.auditChat(c, req.Model, start, false, err)
	if err != nil {
		return s.gatewayError(c, err)
	}

	return c.JSON(result)
}

// handleChatStream forwards the streaming leg itself so the header filter
// governs exactly what crosses each hop, then decodes the Gateway's SSE
// stream and re-emits one data: line per delta.
func (s *Server) handleChatStream(c *fiber.Ctx, req gateway.ChatRequest) error {
	start := time.Now()

	body, err := json.Marshal(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	// Use context.Background() instead of c.Context() because fasthttp
	// recycles its RequestCtx after the handler returns, but the streaming
	// goroutine needs the Gateway connection to remain open.
	httpReq, err := http.NewRequestWithContext(context.Background(), http.MethodPost,
		strings.TrimRight(s.config.GatewayURL, "/")+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		s.logger.Error("failed to create gateway request", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
	}

	s.headerHandler.SetUpstreamRequestHeaders(c, httpReq)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	s.logger.Debug("forwarding streaming chat request",
		"model", req.Model,
		"message_count", len(req.Messages),
	)

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logger.Error("gateway request failed", "error", err)
		s.auditChat(c, req.Model, start, true, err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "gateway request failed"})
	}
	if httpResp.StatusCode != http.StatusOK {
		// Terminal pre-stream failure: hand the Gateway's message back and
		// never construct a stream.
		statusErr := gateway.ReadStatusError(httpResp)
		httpResp.Body.Close()
		s.auditChat(c, req.Model, start, true, statusErr)
		return c.Status(statusErr.StatusCode).JSON(ErrorResponse{Error: statusErr.Message})
	}

	s.headerHandler.SetClientResponseHeaders(c, httpResp)
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	// Use io.Pipe + SetBodyStream rather than SetBodyStreamWriter: with
	// io.Pipe, pw.Write blocks until fasthttp's chunked writer has flushed
	// the previous chunk to the TCP socket, so every delta reaches the
	// browser as it arrives instead of buffering in memory.
	pr, pw := io.Pipe()
	go s.relayDeltas(httpResp.Body, pw, c.IP(), req.Model, start)

	// Unknown size (-1) triggers chunked transfer encoding in fasthttp.
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// relayDeltas pulls deltas off the Gateway stream and re-emits them as SSE
// frames, closing with an explicit [DONE] sentinel.
func (s *Server) relayDeltas(rc io.ReadCloser, pw *io.PipeWriter, remoteAddr, model string, start time.Time) {
	defer pw.Close()

	stream := gateway.NewChatStream(rc)
	defer stream.Close()

	var relayed int
	var streamErr error

	for {
		delta, err := stream.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Error("error reading gateway stream", "error", err)
				streamErr = err
			}
			break
		}

		frame, err := json.Marshal(sseChunk{Choices: []sseChoice{{Delta: sseDelta{Content: delta}}}})
		if err != nil {
			continue
		}

		if _, err := pw.Write([]byte("data: ")); err != nil {
			return
		}
		if _, err := pw.Write(frame); err != nil {
			return
		}
		if _, err := pw.Write([]byte("\n\n")); err != nil {
			return
		}
		relayed++
	}

	if streamErr == nil {
		// Best effort; the browser also treats plain EOF as completion.
		pw.Write([]byte("data: [DONE]\n\n"))
	}

	op := events.OpMeta{
		Model:       model,
		StartedAt:   start,
		CompletedAt: time.Now(),
		Streaming:   true,
		Status:      "ok",
	}
	if streamErr != nil {
		op.Status = "error"
		op.Error = streamErr.Error()
	}

	s.workerPool.Enqueue(worker.Job{
		Event: events.NewAuditEvent(events.EventTypeChatCompleted, events.EventSource{
			Panel:      s.config.ListenAddr,
			RemoteAddr: remoteAddr,
			Gateway:    s.config.GatewayURL,
		}, op),
	})

	s.logger.Debug("chat stream relayed",
		"model", model,
		"delta_count", relayed,
		"duration", time.Since(start),
	)
}

// auditChat enqueues an audit event for a chat request that completed (or
// failed) without entering the relay goroutine.
func (s *Server) auditChat(c *fiber.Ctx, model string, start time.Time, streaming bool, opErr error) {
	op := events.OpMeta{
		Model:       model,
		StartedAt:   start,
		CompletedAt: time.Now(),
		Streaming:   streaming,
		Status:      "ok",
	}
	if opErr != nil {
		op.Status = "error"
		op.Error = opErr.Error()
	}

	s.workerPool.Enqueue(worker.Job{
		Event: events.NewAuditEvent(events.EventTypeChatCompleted, events.EventSource{
			Panel:      s.config.ListenAddr,
			RemoteAddr: c.IP(),
			Gateway:    s.config.GatewayURL,
		}, op),
	})
}
