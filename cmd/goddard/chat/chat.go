// Package chatcmder provides the chat command for interactive streaming
// chat against the Gateway.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jlud7/goddard-gui/pkg/cliui"
	"github.com/jlud7/goddard-gui/pkg/config"
	"github.com/jlud7/goddard-gui/pkg/gateway"
	"github.com/jlud7/goddard-gui/pkg/logger"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("assistant> ")
)

type chatCommander struct {
	gatewayURL string
	token      string
	model      string
	debug      bool

	logger *slog.Logger
	gw     *gateway.Client
}

const chatLongDesc string = `Start an interactive chat session with the Gateway's agent.

Messages stream back token by token as the agent produces them. Press
Ctrl+C during a response to cut it off without leaving the session.

Examples:
  goddard chat
  goddard chat --model goddard-default
  goddard chat --gateway http://gateway.internal:18789`

const chatShortDesc string = "Interactive streaming chat with the Gateway"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.ResolveGateway(cmd)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.gatewayURL = settings.URL
			cmder.token = settings.Token
			cmder.model = settings.Model
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	config.AddGatewayFlags(cmd, &cmder.gatewayURL, &cmder.token, &cmder.model)

	return cmd
}

func (c *chatCommander) run() error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
	)

	gw, err := gateway.NewClient(gateway.Config{
		BaseURL: c.gatewayURL,
		Token:   c.token,
		Model:   c.model,
		Logger:  c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating gateway client: %w", err)
	}
	c.gw = gw

	fmt.Println()
	fmt.Printf("  %s %s\n",
		cliui.KeyStyle.Render("Gateway:"),
		cliui.NameStyle.Render(c.gatewayURL),
	)
	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Model:"),
		cliui.NameStyle.Render(c.model),
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	var messages []gateway.Message

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		messages = append(messages, gateway.Message{
			Role:    "user",
			Content: input,
		})

		assistantContent, err := c.sendAndStream(messages)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			// Remove the failed user message so it can be retried
			messages = messages[:len(messages)-1]
			continue
		}

		messages = append(messages, gateway.Message{
			Role:    "assistant",
			Content: assistantContent,
		})

		fmt.Println()
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// sendAndStream sends the conversation to the Gateway and prints the
// response deltas to stdout as they arrive. Ctrl+C cancels just the
// in-flight response; the partial text is kept in the history.
func (c *chatCommander) sendAndStream(messages []gateway.Message) (string, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	stream, err := c.gw.StreamChat(ctx, gateway.ChatRequest{
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	defer stream.Close()

	fmt.Print(assistantPrompt)

	var fullContent strings.Builder
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				fmt.Printf(" %s", cliui.DimStyle.Render("[interrupted]"))
				break
			}
			return fullContent.String(), fmt.Errorf("reading stream: %w", err)
		}

		fmt.Print(delta)
		fullContent.WriteString(delta)
	}

	return fullContent.String(), nil
}
