package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tasktrack/tasktrack/cmd/tasktrack/cli"
	"github.com/tasktrack/tasktrack/internal/app"
	"github.com/tasktrack/tasktrack/internal/platform/db"
	"github.com/tasktrack/tasktrack/internal/users"
)

var setRoleOpts cli.SetRoleOptions

var setRoleCmd = &cobra.Command{
	Use:   "set-role",
	Short: "Assign a role to an existing account",
	Long:  `Assign the user or admin role to the account with the given email. Use it to bootstrap the first administrator.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := app.LoadEnv()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		pool, err := db.New(cmd.Context(), cfg.PGDSN, db.PoolOptions{MaxConns: 1, ConnectTimeout: 10 * time.Second})
		if err != nil {
			return fmt.Errorf("set-role: %w", err)
		}
		defer pool.Close()

		roles, err := cli.NewRoleCLI(users.NewRepository(pool))
		if err != nil {
			return err
		}
		opts := setRoleOpts
		opts.Stdout, opts.Stderr = cmd.OutOrStdout(), cmd.ErrOrStderr()
		if code := roles.SetRoleCommand(cmd.Context(), opts); code != 0 {
			return exitCode(code)
		}
		return nil
	},
}

func init() {
	setRoleCmd.Flags().StringVar(&setRoleOpts.Email, "email", "", "account email")
	setRoleCmd.Flags().StringVar(&setRoleOpts.Role, "role", "", "user or admin")
	setRoleCmd.Flags().BoolVar(&setRoleOpts.JSONOutput, "json", false, "print the updated account as JSON")
	rootCmd.AddCommand(setRoleCmd)
}
