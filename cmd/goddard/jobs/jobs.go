// Package jobscmder provides the jobs command for managing the Gateway's
// scheduled jobs.
package jobscmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jlud7/goddard-gui/pkg/cliui"
	"github.com/jlud7/goddard-gui/pkg/config"
	"github.com/jlud7/goddard-gui/pkg/gateway"
	"github.com/jlud7/goddard-gui/pkg/logger"
)

type jobsCommander struct {
	gatewayURL string
	token      string
	debug      bool

	logger *slog.Logger
}

const jobsLongDesc string = `Manage the Gateway's scheduled jobs.

With no subcommand, lists every job with its schedule, enabled state, and
last run result.

Examples:
  goddard jobs
  goddard jobs run nightly-report
  goddard jobs enable nightly-report
  goddard jobs disable nightly-report`

const jobsShortDesc string = "Manage scheduled jobs"

func NewJobsCmd() *cobra.Command {
	cmder := &jobsCommander{}

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: jobsShortDesc,
		Long:  jobsLongDesc,
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.ResolveGateway(cmd)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.gatewayURL = settings.URL
			cmder.token = settings.Token

			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.runList()
		},
	}

	// Persistent so "jobs run" and friends inherit the connection flags.
	config.AddPersistentStringFlag(cmd, config.Flags, config.FlagGatewayURL, &cmder.gatewayURL)
	config.AddPersistentStringFlag(cmd, config.Flags, config.FlagGatewayToken, &cmder.token)

	cmd.AddCommand(&cobra.Command{
		Use:   "run <id>",
		Short: "Trigger a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmder.runJob(args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "enable <id>",
		Short: "Enable a job's schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmder.setEnabled(args[0], true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "disable <id>",
		Short: "Disable a job's schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return cmder.setEnabled(args[0], false)
		},
	})

	return cmd
}

func (c *jobsCommander) client() (*gateway.Client, error) {
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

func (c *jobsCommander) runList() error {
	gw, err := c.client()
	if err != nil {
		return err
	}

	jobs, err := gw.ListJobs(context.Background())
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Printf("  %s No scheduled jobs.\n", cliui.DimStyle.Render("●"))
		return nil
	}

	fmt.Println()
	for _, j := range jobs {
		state := cliui.SuccessMark
		if !j.Enabled {
			state = cliui.DimStyle.Render("○")
		}

		fmt.Printf("  %s %s %s\n",
			state,
			cliui.NameStyle.Render(j.Name),
			cliui.DimStyle.Render("("+j.ID+")"),
		)
		detail := fmt.Sprintf("schedule %s", j.Schedule)
		if j.LastRun != "" {
			detail += fmt.Sprintf(", last run %s (%s)", j.LastRun, j.LastStatus)
		}
		fmt.Printf("    %s\n", cliui.DimStyle.Render(detail))
	}
	fmt.Println()

	return nil
}

func (c *jobsCommander) runJob(id string) error {
	gw, err := c.client()
	if err != nil {
		return err
	}

	err = cliui.Step(os.Stdout, fmt.Sprintf("Running %s", id), func() error {
		return gw.RunJob(context.Background(), id)
	})
	if err != nil {
		return fmt.Errorf("running job %s: %w", id, err)
	}

	return nil
}

func (c *jobsCommander) setEnabled(id string, enabled bool) error {
	gw, err := c.client()
	if err != nil {
		return err
	}

	if err := gw.SetJobEnabled(context.Background(), id, enabled); err != nil {
		return fmt.Errorf("updating job %s: %w", id, err)
	}

	verb := "enabled"
	if !enabled {
		verb = "disabled"
	}
	fmt.Printf("  %s %s %s\n", cliui.SuccessMark, cliui.NameStyle.Render(id), verb)

	return nil
}
