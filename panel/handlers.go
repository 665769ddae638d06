package panel

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jlud7/goddard-gui/panel/worker"
	"github.com/jlud7/goddard-gui/pkg/events"
	"github.com/jlud7/goddard-gui/pkg/gateway"
)

// ErrorResponse is the JSON error envelope returned by every /api route.
type ErrorResponse struct {
	Error string `json:"error"`
}

// healthzTimeout bounds the Gateway reachability probe on /healthz so a dead
// Gateway cannot stall the panel's own health check.
const healthzTimeout = 2 * time.Second

// handleHealthz reports panel health and whether the Gateway answers.
func (s *Server) handleHealthz(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), healthzTimeout)
	defer cancel()

	reachable := true
	if _, err := s.gw.Status(ctx); err != nil {
		reachable = false
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"gateway": s.config.GatewayURL,
		"gateway_reachable": reachable,
	})
}

// handleSessions returns the Gateway's session list.
func (s *Server) handleSessions(c *fiber.Ctx) error {
	start := time.Now()
	sessions, err := s.gw.ListSessions(c.Context())
	s.audit(c, "sessions_list", nil, start, err)
	if err != nil {
		return s.gatewayError(c, err)
	}

	return c.JSON(fiber.Map{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

// handleSessionHistory returns the transcript for one session.
func (s *Server) handleSessionHistory(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "key parameter required"})
	}

	start := time.Now()
	history, err := s.gw.SessionHistory(c.Context(), key)
	s.audit(c, "session_history", fiber.Map{"key": key}, start, err)
	if err != nil {
		return s.gatewayError(c, err)
	}

	return c.JSON(fiber.Map{
		"key":     key,
		"depth":   len(history),
		"history": history,
	})
}

// handleJobs returns the Gateway's cron job list.
func (s *Server) handleJobs(c *fiber.Ctx) error {
	start := time.Now()
	jobs, err := s.gw.ListJobs(c.Context())
	s.audit(c, "cron_list", nil, start, err)
	if err != nil {
		return s.gatewayError(c, err)
	}

	return c.JSON(fiber.Map{
		"count": len(jobs),
		"jobs":  jobs,
	})
}

// handleJobRun triggers an immediate run of a cron job.
func (s *Server) handleJobRun(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	start := time.Now()
	err := s.gw.RunJob(c.Context(), id)
	s.audit(c, "cron_run", fiber.Map{"id": id}, start, err)
	if err != nil {
		return s.gatewayError(c, err)
	}

	return c.JSON(fiber.Map{"id": id, "status": "started"})
}

// handleJobToggle enables or disables a cron job.
func (s *Server) handleJobToggle(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	start := time.Now()
	err := s.gw.SetJobEnabled(c.Context(), id, body.Enabled)
	s.audit(c, "cron_toggle", fiber.Map{"id": id, "enabled": body.Enabled}, start, err)
	if err != nil {
		return s.gatewayError(c, err)
	}

	return c.JSON(fiber.Map{"id": id, "enabled": body.Enabled})
}

// handleMemory returns the Gateway's memory file list.
func (s *Server) handleMemory(c *fiber.Ctx) error {
	start := time.Now()
	files, err := s.gw.ListMemory(c.Context())
	s.audit(c, "memory_list", nil, start, err)
	if err != nil {
		return s.gatewayError(c, err)
	}

	return c.JSON(fiber.Map{
		"count": len(files),
		"files": files,
	})
}

// handleMemoryFile returns the content of one memory file.
func (s *Server) handleMemoryFile(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "name parameter required"})
	}

	start := time.Now()
	content, err := s.gw.ReadMemory(c.Context(), name)
	s.audit(c, "memory_get", fiber.Map{"name": name}, start, err)
	if err != nil {
		return s.gatewayError(c, err)
	}

	return c.JSON(fiber.Map{
		"name":    name,
		"content": content,
	})
}

// handleTool is the generic tool pass-through: one attempt, no retries, the
// Gateway's answer (or its error text) handed straight back.
func (s *Server) handleTool(c *fiber.Ctx) error {
	var body struct {
		Tool string         `json:"tool"`
		Args map[string]any `json:"args"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if body.Tool == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "tool name required"})
	}

	start := time.Now()
	result, err := s.gw.CallTool(c.Context(), body.Tool, body.Args)
	s.audit(c, body.Tool, body.Args, start, err)
	if err != nil {
		return s.gatewayError(c, err)
	}

	if len(result) == 0 {
		result = json.RawMessage("null")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send([]byte(`{"ok":true,"result":` + string(result) + `}`))
}

// gatewayError maps a Gateway failure onto the panel's JSON error envelope.
// The Gateway's own message text is preserved; the panel never reports an
// upstream irregularity as its own 500.
func (s *Server) gatewayError(c *fiber.Ctx, err error) error {
	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) {
		return c.Status(statusErr.StatusCode).JSON(ErrorResponse{Error: statusErr.Message})
	}

	var toolErr *gateway.ToolError
	if errors.As(err, &toolErr) {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: toolErr.Message})
	}

	s.logger.Error("gateway request failed", "error", err)
	return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "gateway request failed"})
}

// audit enqueues an audit event for a completed Gateway operation.
// Enqueue is non-blocking; a full queue drops the event rather than slowing
// the request.
func (s *Server) audit(c *fiber.Ctx, tool string, args any, start time.Time, opErr error) {
	op := events.OpMeta{
		Tool:        tool,
		StartedAt:   start,
		CompletedAt: time.Now(),
		Status:      "ok",
	}
	if opErr != nil {
		op.Status = "error"
		op.Error = opErr.Error()
	}
	if args != nil {
		if raw, err := json.Marshal(args); err == nil {
			op.Args = raw
		}
	}

	event := events.NewAuditEvent(events.EventTypeToolInvoked, events.EventSource{
		Panel:      s.config.ListenAddr,
		RemoteAddr: c.IP(),
		Gateway:    s.config.GatewayURL,
	}, op)

	s.workerPool.Enqueue(worker.Job{Event: event})
}
