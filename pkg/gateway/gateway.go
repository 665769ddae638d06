// Package gateway provides the HTTP client for the Goddard Gateway: streaming
// and non-streaming chat, and pass-through invocation of the Gateway's tools
// (sessions, cron jobs, memory files).
//
// The client is a pure function of its Config. There is no hidden global
// state: construct one Client at startup and thread it through.
package gateway

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// defaultTimeout bounds non-streaming calls. Streaming requests are exempt:
// an in-flight stream is bounded only by its context and Close.
const defaultTimeout = 5 * time.Minute

// Config holds the connection settings for a Gateway.
type Config struct {
	// BaseURL is the Gateway's base URL (scheme + host + port).
	BaseURL string

	// Token is the optional bearer credential sent with every request.
	Token string

	// Model is the default model identifier for chat requests that
	// don't set one.
	Model string

	// HTTPClient overrides the underlying HTTP client. Used in tests.
	HTTPClient *http.Client

	// Logger is the configured slog logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client talks to a single Gateway.
type Client struct {
	baseURL    string
	token      string
	model      string
	http       *http.Client
	streamHTTP *http.Client
	logger     *slog.Logger
}

// NewClient creates a Gateway client from the given Config.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("gateway base URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		// Assistant responses can be slow, especially with thinking blocks
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	// http.Client.Timeout covers body reads, which would cut a long stream
	// mid-response. Streaming uses a copy with the deadline cleared.
	streamClient := *httpClient
	streamClient.Timeout = 0

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		token:      config.Token,
		model:      config.Model,
		http:       httpClient,
		streamHTTP: &streamClient,
		logger:     logger,
	}, nil
}

// Model returns the client's default chat model.
func (c *Client) Model() string {
	return c.model
}

// setCommonHeaders applies the headers shared by every Gateway request.
func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
