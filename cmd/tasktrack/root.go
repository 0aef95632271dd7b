package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// exitCode carries a command's status once the command has already reported
// the failure itself.
type exitCode int

func (c exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(c))
}

var rootCmd = &cobra.Command{
	Use:   "tasktrack",
	Short: "Todo API with role-based access control",
	Long: `tasktrack serves the todo API by default. The remaining commands are
operator tools that talk to PostgreSQL or the job queue directly.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}
