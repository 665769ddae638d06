package configcmder

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jlud7/goddard-gui/pkg/cliui"
	"github.com/jlud7/goddard-gui/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file stored in
the .goddard/ directory. Keys use dotted notation matching the TOML section
structure.

When setting gateway.token, omit the value to be prompted for it without
echoing (and without leaving the token in shell history).

Valid keys:
  gateway.url, gateway.token, gateway.mode,
  panel.listen, chat.model,
  events.brokers, events.topic,
  mcp.enabled

Examples:
  goddard config set gateway.url http://gateway.internal:18789
  goddard config set gateway.token
  goddard config set mcp.enabled true`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> [value]",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			if len(args) == 2 {
				return runSet(args[0], args[1], configDir)
			}

			// A bare key only makes sense for the token prompt.
			if args[0] != "gateway.token" {
				return fmt.Errorf("missing value for config key %q", args[0])
			}

			value, err := cliui.ReadSecret(os.Stdout, os.Stdin, "Gateway token: ")
			if err != nil {
				return fmt.Errorf("reading token: %w", err)
			}
			return runSet(args[0], value, configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runSet(key, value, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	target := cfger.GetTarget()
	if target != "" {
		fmt.Printf("\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}

	err = cfger.SetConfigValue(key, value)
	if err != nil {
		return err
	}

	shown := value
	if key == "gateway.token" && shown != "" {
		shown = redactToken(shown)
	}

	fmt.Printf("  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(shown),
	)
	return nil
}
