// Package servecmder provides the serve command for running the panel server.
package servecmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jlud7/goddard-gui/panel"
	"github.com/jlud7/goddard-gui/pkg/config"
	"github.com/jlud7/goddard-gui/pkg/dotdir"
	"github.com/jlud7/goddard-gui/pkg/events"
	"github.com/jlud7/goddard-gui/pkg/events/kafka"
	"github.com/jlud7/goddard-gui/pkg/events/nop"
	"github.com/jlud7/goddard-gui/pkg/gateway"
	"github.com/jlud7/goddard-gui/pkg/logger"
)

type ServeCommander struct {
	listen     string
	gatewayURL string
	token      string
	model      string
	brokers    string
	topic      string
	mcpEnabled bool
	debug      bool
	configDir  string
	v          *viper.Viper
	logger     *slog.Logger
}

// serveFlagKeys are the registry keys the serve command binds into viper.
var serveFlagKeys = []string{
	config.FlagPanelListen,
	config.FlagGatewayURL,
	config.FlagGatewayToken,
	config.FlagChatModel,
	config.FlagEventsBroker,
	config.FlagEventsTopic,
	config.FlagMCPEnabled,
}

const serveLongDesc string = `Run the Goddard panel server.

Serves the browser UI, the /api routes that forward operator actions to the
Gateway, and (optionally) the MCP surface at /mcp. The server picks up edits
to config.toml while running and restarts itself with the new settings.`

const serveShortDesc string = "Run the Goddard panel server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, err = cmd.Flags().GetString("config-dir")
			if err != nil {
				return fmt.Errorf("could not get config-dir flag: %v", err)
			}

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlagKeys)
			cmder.v = v
			cmder.apply()

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagPanelListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagGatewayURL, &cmder.gatewayURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagGatewayToken, &cmder.token)
	config.AddStringFlag(cmd, config.Flags, config.FlagChatModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsBroker, &cmder.brokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsTopic, &cmder.topic)
	config.AddBoolFlag(cmd, config.Flags, config.FlagMCPEnabled, &cmder.mcpEnabled)

	return cmd
}

// apply snapshots the resolved viper values into the commander. Called once
// at startup and again after a config file change.
func (c *ServeCommander) apply() {
	c.listen = c.v.GetString("panel.listen")
	c.gatewayURL = c.v.GetString("gateway.url")
	c.token = c.v.GetString("gateway.token")
	c.model = c.v.GetString("chat.model")
	c.brokers = c.v.GetString("events.brokers")
	c.topic = c.v.GetString("events.topic")
	c.mcpEnabled = c.v.GetBool("mcp.enabled")
}

func (c *ServeCommander) run() error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	reload, stopWatching, err := c.watchConfig()
	if err != nil {
		c.logger.Warn("config watching disabled", "error", err)
	} else {
		defer stopWatching()
	}

	for {
		srv, err := c.buildServer()
		if err != nil {
			return err
		}

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Run(); err != nil {
				errChan <- fmt.Errorf("panel server: %w", err)
			}
		}()

		c.logger.Info("panel listening",
			"addr", c.listen,
			"gateway", c.gatewayURL,
			"mcp", c.mcpEnabled,
		)

		select {
		case err := <-errChan:
			return err

		case sig := <-sigChan:
			c.logger.Info("received signal, shutting down", "signal", sig.String())
			return srv.Close()

		case <-reload:
			c.logger.Info("config file changed, restarting panel")
			if err := srv.Close(); err != nil {
				c.logger.Warn("closing panel before restart", "error", err)
			}
			if err := c.v.ReadInConfig(); err != nil {
				c.logger.Error("re-reading config, keeping previous settings", "error", err)
				continue
			}
			c.apply()
		}
	}
}

// buildServer constructs the gateway client, audit publisher, and panel
// server from the commander's current settings. Each restart gets fresh
// instances; panel.Server.Close tears down the publisher with it.
func (c *ServeCommander) buildServer() (*panel.Server, error) {
	gw, err := gateway.NewClient(gateway.Config{
		BaseURL: c.gatewayURL,
		Token:   c.token,
		Model:   c.model,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gateway client: %w", err)
	}

	pub, err := c.createPublisher()
	if err != nil {
		return nil, err
	}

	srv, err := panel.NewServer(panel.Config{
		ListenAddr:   c.listen,
		GatewayURL:   c.gatewayURL,
		GatewayToken: c.token,
		Model:        c.model,
		Publisher:    pub,
		MCPEnabled:   c.mcpEnabled,
	}, gw, c.logger)
	if err != nil {
		return nil, fmt.Errorf("creating panel server: %w", err)
	}

	return srv, nil
}

// createPublisher returns a Kafka publisher when brokers are configured,
// a no-op publisher otherwise.
func (c *ServeCommander) createPublisher() (events.Publisher, error) {
	if c.brokers == "" {
		c.logger.Info("audit publishing disabled")
		return nop.NewPublisher(), nil
	}

	brokers := strings.Split(c.brokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}

	pub, err := kafka.NewPublisher(kafka.Config{
		Brokers: brokers,
		Topic:   c.topic,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	c.logger.Info("publishing audit events", "brokers", brokers, "topic", c.topic)
	return pub, nil
}

// watchConfig watches the resolved .goddard/ directory for changes to
// config.toml and signals on the returned channel when it is written.
// Watching the directory rather than the file survives editors that
// replace the file on save.
func (c *ServeCommander) watchConfig() (<-chan struct{}, func(), error) {
	ddm := dotdir.NewManager()
	target, err := ddm.Target(c.configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving config dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("creating config watcher: %w", err)
	}

	if err := watcher.Add(target); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("watching %s: %w", target, err)
	}

	reload := make(chan struct{}, 1)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != "config.toml" {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				// Coalesce bursts of write events into one reload.
				select {
				case reload <- struct{}{}:
				default:
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn("config watcher error", "error", err)
			}
		}
	}()

	return reload, func() { watcher.Close() }, nil
}
