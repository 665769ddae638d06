// Package memorycmder provides the memory command for browsing the
// Gateway's agent memory files.
package memorycmder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jlud7/goddard-gui/pkg/cliui"
	"github.com/jlud7/goddard-gui/pkg/config"
	"github.com/jlud7/goddard-gui/pkg/gateway"
	"github.com/jlud7/goddard-gui/pkg/logger"
)

type memoryCommander struct {
	gatewayURL string
	token      string
	raw        bool
	debug      bool

	logger *slog.Logger
}

const memoryLongDesc string = `Browse the Gateway's agent memory files.

With no arguments, lists the memory files. Given a file name, prints its
content. Memory files are markdown; they render styled for the terminal
unless --raw is set.

Examples:
  goddard memory
  goddard memory projects.md
  goddard memory projects.md --raw`

const memoryShortDesc string = "Browse agent memory files"

func NewMemoryCmd() *cobra.Command {
	cmder := &memoryCommander{}

	cmd := &cobra.Command{
		Use:   "memory [name]",
		Short: memoryShortDesc,
		Long:  memoryLongDesc,
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
				return cmder.runShow(args[0])
			}
			return cmder.runList()
		},
	}

	config.AddGatewayFlags(cmd, &cmder.gatewayURL, &cmder.token, nil)
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print file content without markdown rendering")

	return cmd
}

func (c *memoryCommander) client() (*gateway.Client, error) {
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

func (c *memoryCommander) runList() error {
	gw, err := c.client()
	if err != nil {
		return err
	}

	files, err := gw.ListMemory(context.Background())
	if err != nil {
		return fmt.Errorf("listing memory files: %w", err)
	}

	if len(files) == 0 {
		fmt.Printf("  %s No memory files.\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Println()
	for _, f := range files {
		fmt.Printf("  %s %s\n",
			cliui.NameStyle.Render(f.Name),
			cliui.DimStyle.Render(fmt.Sprintf("%d bytes, modified %s", f.Size, f.Modified)),
		)
	}
	fmt.Println()

	return nil
}

func (c *memoryCommander) runShow(name string) error {
	gw, err := c.client()
	if err != nil {
		return err
	}

	content, err := gw.ReadMemory(context.Background(), name)
	if err != nil {
		return fmt.Errorf("reading memory file %s: %w", name, err)
	}

	if c.raw {
		fmt.Println(content)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(content)
	if err != nil {
		// Fall back to the raw content rather than failing the command.
		c.logger.Debug("markdown rendering failed", "file", name, "error", err)
		fmt.Println(content)
		return nil
	}

	fmt.Println(strings.TrimRight(rendered, "\n"))
	return nil
}
