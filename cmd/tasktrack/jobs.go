package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasktrack/tasktrack/cmd/tasktrack/cli"
	"github.com/tasktrack/tasktrack/internal/app"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Background job commands",
}

var jobsTriggerCmd = &cobra.Command{
	Use:   "trigger TYPE",
	Short: "Enqueue a background job immediately",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobsCLI, err := newJobsCLI()
		if err != nil {
			return err
		}
		defer func() { _ = jobsCLI.Close() }()

		info, err := jobsCLI.Trigger(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("jobs trigger: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s as %s on %s\n", info.Type, info.ID, info.Queue)
		return nil
	},
}

var jobsInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print queue counters as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobsCLI, err := newJobsCLI()
		if err != nil {
			return err
		}
		defer func() { _ = jobsCLI.Close() }()

		stats, err := jobsCLI.InspectQueue(cmd.Context())
		if err != nil {
			return fmt.Errorf("jobs inspect: %w", err)
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(stats)
	},
}

func newJobsCLI() (*cli.JobsCLI, error) {
	cfg, err := app.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cli.NewJobsCLI(cfg.RedisAddr), nil
}

func init() {
	jobsCmd.AddCommand(jobsTriggerCmd, jobsInspectCmd)
	rootCmd.AddCommand(jobsCmd)
}
