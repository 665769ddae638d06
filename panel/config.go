// Package panel provides the control-panel HTTP server: it serves the
// browser UI, forwards operator actions to the Gateway, and streams chat
// responses back down without buffering.
package panel

import "github.com/jlud7/goddard-gui/pkg/events"

// Config is the panel server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8776")
	ListenAddr string

	// GatewayURL is the Gateway base URL (e.g., "http://localhost:18789")
	GatewayURL string

	// GatewayToken is the bearer token injected on the upstream leg.
	GatewayToken string

	// Model is the default chat model when a request omits one.
	Model string

	// Publisher receives audit events for completed operations.
	// If nil, auditing is disabled (a no-op publisher is used).
	Publisher events.Publisher

	// MCPEnabled mounts the MCP handler at /mcp when true.
	MCPEnabled bool
}
