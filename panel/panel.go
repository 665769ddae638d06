package panel

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"

	"github.com/jlud7/goddard-gui/panel/header"
	"github.com/jlud7/goddard-gui/panel/mcp"
	"github.com/jlud7/goddard-gui/panel/web"
	"github.com/jlud7/goddard-gui/panel/worker"
	"github.com/jlud7/goddard-gui/pkg/events"
	"github.com/jlud7/goddard-gui/pkg/events/nop"
	"github.com/jlud7/goddard-gui/pkg/gateway"
)

// Server is the control-panel HTTP server. It is deliberately thin: every
// /api route forwards to the Gateway and the only state it holds is the
// connection configuration.
type Server struct {
	config        Config
	gw            *gateway.Client
	workerPool    *worker.Pool
	publisher     events.Publisher
	logger        *slog.Logger
	app           *fiber.App
	headerHandler *header.Handler
	httpClient    *http.Client
}

// NewServer creates a new panel server.
// The gateway client is injected to allow sharing with other components
// (e.g., the CLI when serve and dash run in one process).
func NewServer(config Config, gw *gateway.Client, logger *slog.Logger) (*Server, error) {
	if config.GatewayURL == "" {
		return nil, errors.New("gateway URL is required")
	}
	if gw == nil {
		return nil, errors.New("gateway client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	publisher := config.Publisher
	if publisher == nil {
		publisher = nop.NewPublisher()
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		// Enable streaming
		StreamRequestBody: true,
	})

	// Add compression middleware to handle responses
	app.Use(compress.New())

	wp, err := worker.NewPool(&worker.Config{
		Publisher: publisher,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create worker pool: %w", err)
	}

	s := &Server{
		config:        config,
		gw:            gw,
		workerPool:    wp,
		publisher:     publisher,
		logger:        logger,
		app:           app,
		headerHandler: header.NewHandler(config.GatewayToken),
		httpClient: &http.Client{
			// Streamed chat responses can be slow, especially with thinking models
			Timeout: 5 * time.Minute,
		},
	}

	app.Get("/healthz", s.handleHealthz)

	api := app.Group("/api")
	api.Get("/sessions", s.handleSessions)
	api.Get("/sessions/:key", s.handleSessionHistory)
	api.Get("/jobs", s.handleJobs)
	api.Post("/jobs/:id/run", s.handleJobRun)
	api.Post("/jobs/:id/toggle", s.handleJobToggle)
	api.Get("/memory", s.handleMemory)
	api.Get("/memory/:name", s.handleMemoryFile)
	api.Post("/tool", s.handleTool)
	api.Post("/chat", s.handleChat)

	if config.MCPEnabled {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Gateway: gw,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create MCP server: %w", err)
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	app.Get("/", s.handleIndex)

	return s, nil
}

// Run starts the panel server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting panel server",
		"listen", s.config.ListenAddr,
		"gateway", s.config.GatewayURL,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the panel server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting panel server",
		"listen", listener.Addr().String(),
		"gateway", s.config.GatewayURL,
	)
	return s.app.Listener(listener)
}

// Close gracefully shuts down the panel and waits for the audit pipeline to drain.
func (s *Server) Close() error {
	err := s.app.Shutdown()
	s.workerPool.Close()
	if cerr := s.publisher.Close(); err == nil {
		err = cerr
	}
	return err
}

// Test dispatches a request against the in-process fiber app; test helper.
func (s *Server) Test(req *http.Request, msTimeout ...int) (*http.Response, error) {
	return s.app.Test(req, msTimeout...)
}

// handleIndex serves the embedded browser UI.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html")
	return c.Send(web.Index)
}
