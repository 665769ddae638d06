// Package configcmder provides the config command for managing persistent
// goddard configuration stored in the .goddard/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent goddard configuration.

Configuration is stored as config.toml in the .goddard/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values, and GODDARD_* environment variables sit between
the two.

Keys use dotted notation matching the TOML section structure:
  gateway.url, gateway.token, gateway.mode,
  panel.listen, chat.model,
  events.brokers, events.topic,
  mcp.enabled

Use subcommands to get, set, or list configuration values:
  goddard config set <key> [value]  Set a configuration value
  goddard config get <key>          Get a configuration value
  goddard config list               List all configuration values

Examples:
  goddard config set gateway.url http://gateway.internal:18789
  goddard config set gateway.token
  goddard config get chat.model
  goddard config list`

const configShortDesc string = "Manage persistent goddard configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
