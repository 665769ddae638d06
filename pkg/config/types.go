package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent goddard configuration stored as
// config.toml in the .goddard/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version int           `toml:"version"`
	Gateway GatewayConfig `toml:"gateway"`
	Panel   PanelConfig   `toml:"panel"`
	Chat    ChatConfig    `toml:"chat"`
	Events  EventsConfig  `toml:"events"`
	MCP     MCPConfig     `toml:"mcp"`
}

// GatewayConfig holds the connection settings for the upstream Gateway.
type GatewayConfig struct {
	URL   string `toml:"url,omitempty"`
	Token string `toml:"token,omitempty"`
	Mode  string `toml:"mode,omitempty"`
}

// PanelConfig holds settings for the panel HTTP server.
type PanelConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ChatConfig holds chat defaults.
type ChatConfig struct {
	Model string `toml:"model,omitempty"`
}

// EventsConfig holds audit event publishing settings. Publishing is
// disabled when Brokers is empty.
type EventsConfig struct {
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// MCPConfig holds MCP surface settings.
type MCPConfig struct {
	Enabled bool `toml:"enabled,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"gateway.url": {
		get: func(c *Config) string { return c.Gateway.URL },
		set: func(c *Config, v string) error { c.Gateway.URL = v; return nil },
	},
	"gateway.token": {
		get: func(c *Config) string { return c.Gateway.Token },
		set: func(c *Config, v string) error { c.Gateway.Token = v; return nil },
	},
	"gateway.mode": {
		get: func(c *Config) string { return c.Gateway.Mode },
		set: func(c *Config, v string) error { c.Gateway.Mode = v; return nil },
	},
	"panel.listen": {
		get: func(c *Config) string { return c.Panel.Listen },
		set: func(c *Config, v string) error { c.Panel.Listen = v; return nil },
	},
	"chat.model": {
		get: func(c *Config) string { return c.Chat.Model },
		set: func(c *Config, v string) error { c.Chat.Model = v; return nil },
	},
	"events.brokers": {
		get: func(c *Config) string { return c.Events.Brokers },
		set: func(c *Config, v string) error { c.Events.Brokers = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"mcp.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.MCP.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for mcp.enabled: %w", err)
			}
			c.MCP.Enabled = b
			return nil
		},
	},
}
