// Package dashcmder provides the dash command, a full-screen terminal
// dashboard over the Gateway's sessions and scheduled jobs.
package dashcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jlud7/goddard-gui/pkg/config"
	"github.com/jlud7/goddard-gui/pkg/gateway"
	"github.com/jlud7/goddard-gui/pkg/logger"
)

const dashLongDesc string = `Dash is a full-screen terminal dashboard for the Gateway.

Shows agent sessions and scheduled jobs side by side. Drill into a session
to read its history, trigger jobs, and flip their schedules on and off
without leaving the terminal.

Examples:
  goddard dash
  goddard dash --gateway http://gateway.internal:18789
  goddard dash --session agent:main`

const dashShortDesc string = "Dash - terminal dashboard for the Gateway"

type dashCommander struct {
	gatewayURL string
	token      string
	session    string
}

func NewDashCmd() *cobra.Command {
	cmder := &dashCommander{}

	cmd := &cobra.Command{
		Use:   "dash",
		Short: dashShortDesc,
		Long:  dashLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.ResolveGateway(cmd)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.gatewayURL = settings.URL
			cmder.token = settings.Token
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddGatewayFlags(cmd, &cmder.gatewayURL, &cmder.token, nil)
	cmd.Flags().StringVar(&cmder.session, "session", "", "Open directly on a session's history")

	return cmd
}

func (c *dashCommander) run(ctx context.Context) error {
	gw, err := gateway.NewClient(gateway.Config{
		BaseURL: c.gatewayURL,
		Token:   c.token,
		// Log lines would tear the alternate screen.
		Logger: logger.Nop(),
	})
	if err != nil {
		return fmt.Errorf("creating gateway client: %w", err)
	}

	return runDashTUI(ctx, gw, c.session)
}
