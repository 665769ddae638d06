// Package goddardcmder
package goddardcmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/jlud7/goddard-gui/cmd/goddard/chat"
	configcmder "github.com/jlud7/goddard-gui/cmd/goddard/config"
	dashcmder "github.com/jlud7/goddard-gui/cmd/goddard/dash"
	jobscmder "github.com/jlud7/goddard-gui/cmd/goddard/jobs"
	memorycmder "github.com/jlud7/goddard-gui/cmd/goddard/memory"
	servecmder "github.com/jlud7/goddard-gui/cmd/goddard/serve"
	sessionscmder "github.com/jlud7/goddard-gui/cmd/goddard/sessions"
	versioncmder "github.com/jlud7/goddard-gui/cmd/version"
)

const goddardLongDesc string = `Goddard is a control panel for a remote Gateway agent service.

Run the browser panel with:
  goddard serve        Serve the panel UI and API

Or drive the Gateway from the terminal:
  goddard chat         Interactive streaming chat
  goddard sessions     Inspect agent sessions
  goddard jobs         Manage scheduled jobs
  goddard memory       Browse agent memory files
  goddard dash         Full-screen terminal dashboard`

const goddardShortDesc string = "Goddard - Gateway control panel"

func NewGoddardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goddard",
		Short: goddardShortDesc,
		Long:  goddardLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .goddard/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(sessionscmder.NewSessionsCmd())
	cmd.AddCommand(jobscmder.NewJobsCmd())
	cmd.AddCommand(memorycmder.NewMemoryCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(dashcmder.NewDashCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
