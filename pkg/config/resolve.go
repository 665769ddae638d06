package config

import (
	"github.com/spf13/cobra"
)

// GatewaySettings are the resolved connection values a CLI command needs to
// talk to the Gateway.
type GatewaySettings struct {
	URL   string
	Token string
	Model string
}

// gatewayFlagKeys are the registry keys every gateway-talking command binds.
var gatewayFlagKeys = []string{
	FlagGatewayURL,
	FlagGatewayToken,
	FlagChatModel,
}

// AddGatewayFlags registers the gateway connection flags on cmd, writing
// into the given targets. Pass nil for model on commands that don't chat.
func AddGatewayFlags(cmd *cobra.Command, url, token, model *string) {
	AddStringFlag(cmd, Flags, FlagGatewayURL, url)
	AddStringFlag(cmd, Flags, FlagGatewayToken, token)
	if model != nil {
		AddStringFlag(cmd, Flags, FlagChatModel, model)
	}
}

// ResolveGateway initializes viper for cmd (honoring the persistent
// config-dir flag), binds the gateway registry flags, and returns the
// resolved settings with the usual precedence: flag > env > config.toml >
// default.
func ResolveGateway(cmd *cobra.Command) (GatewaySettings, error) {
	configDir, err := cmd.Flags().GetString("config-dir")
	if err != nil {
		configDir = ""
	}

	v, err := InitViper(configDir)
	if err != nil {
		return GatewaySettings{}, err
	}

	BindRegisteredFlags(v, cmd, Flags, gatewayFlagKeys)

	return GatewaySettings{
		URL:   v.GetString("gateway.url"),
		Token: v.GetString("gateway.token"),
		Model: v.GetString("chat.model"),
	}, nil
}
