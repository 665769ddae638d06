// Package sessionscmder provides the sessions command for inspecting the
// Gateway's agent sessions.
package sessionscmder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jlud7/goddard-gui/pkg/cliui"
	"github.com/jlud7/goddard-gui/pkg/config"
	"github.com/jlud7/goddard-gui/pkg/gateway"
	"github.com/jlud7/goddard-gui/pkg/logger"
	"github.com/jlud7/goddard-gui/pkg/utils"
)

type sessionsCommander struct {
	gatewayURL string
	token      string
	debug      bool

	logger *slog.Logger
}

const sessionsLongDesc string = `Inspect the Gateway's agent sessions.

With no arguments, lists every session the Gateway knows about. Given a
session key, prints that session's message history.

Examples:
  goddard sessions
  goddard sessions agent:main`

const sessionsShortDesc string = "Inspect agent sessions"

func NewSessionsCmd() *cobra.Command {
	cmder := &sessionsCommander{}

	cmd := &cobra.Command{
		Use:   "sessions [key]",
		Short: sessionsShortDesc,
		Long:  sessionsLongDesc,
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.ResolveGateway(cmd)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.gatewayURL = settings.URL
			cmder.token = settings.Token
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			if len(args) == 1 {
				return cmder.runHistory(args[0])
			}
			return cmder.runList()
		},
	}

	config.AddGatewayFlags(cmd, &cmder.gatewayURL, &cmder.token, nil)

	return cmd
}

func (c *sessionsCommander) client() (*gateway.Client, error) {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	gw, err := gateway.NewClient(gateway.Config{
		BaseURL: c.gatewayURL,
		Token:   c.token,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gateway client: %w", err)
	}
	return gw, nil
}

func (c *sessionsCommander) runList() error {
	gw, err := c.client()
	if err != nil {
		return err
	}

	sessions, err := gw.ListSessions(context.Background())
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Printf("  %s No sessions.\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Println()
	for _, s := range sessions {
		label := s.Label
		if label == "" {
			label = s.Key
		}

		fmt.Printf("  %s %s\n",
			cliui.KeyStyle.Render(s.Key),
			cliui.NameStyle.Render(label),
		)
		fmt.Printf("    %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d messages, updated %s", s.Size, s.Updated)),
		)
	}
	fmt.Println()

	return nil
}

func (c *sessionsCommander) runHistory(key string) error {
	gw, err := c.client()
	if err != nil {
		return err
	}

	history, err := gw.SessionHistory(context.Background(), key)
	if err != nil {
		return fmt.Errorf("fetching history for %s: %w", key, err)
	}

	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("Session: "), cliui.NameStyle.Render(key))
	fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render("Messages:"), cliui.ValueStyle.Render(strconv.Itoa(len(history))))

	for i, entry := range history {
		preview := utils.Truncate(entry.Content, 72)
		fmt.Printf("  %s %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
			cliui.KeyStyle.Render("["+entry.Role+"]"),
			cliui.ValueStyle.Render(preview),
		)
	}

	fmt.Println()
	return nil
}
