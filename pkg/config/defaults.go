package config

const (
	defaultGatewayURL  = "http://localhost:18789"
	defaultGatewayMode = "http"
	defaultPanelListen = ":8776"
	defaultChatModel   = "goddard-default"
	defaultEventsTopic = "goddard.audit"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Gateway: GatewayConfig{
			URL:  defaultGatewayURL,
			Mode: defaultGatewayMode,
		},
		Panel: PanelConfig{
			Listen: defaultPanelListen,
		},
		Chat: ChatConfig{
			Model: defaultChatModel,
		},
		Events: EventsConfig{
			Topic: defaultEventsTopic,
		},
	}
}
