package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tasktrack/tasktrack/internal/rbac"
	"github.com/tasktrack/tasktrack/internal/shared"
	"github.com/tasktrack/tasktrack/internal/users"
)

// UserStore is the persistence the role command needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	UpdateRole(ctx context.Context, id string, role rbac.Role) (*users.User, error)
}

// RoleCLI changes account roles from the command line, for bootstrapping the
// first administrator.
type RoleCLI struct {
	store UserStore
}

// NewRoleCLI constructs the helper.
func NewRoleCLI(store UserStore) (*RoleCLI, error) {
	if store == nil {
		return nil, errors.New("role cli: store is required")
	}
	return &RoleCLI{store: store}, nil
}

// SetRoleOptions defines the flags of the set-role command.
type SetRoleOptions struct {
	Email      string
	Role       string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// SetRoleCommand assigns a role to the account with the given email and
// returns the process exit code.
func (c *RoleCLI) SetRoleCommand(ctx context.Context, opts SetRoleOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	email := users.NormalizeEmail(opts.Email)
	if email == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "set-role: --email is required")
		return 1
	}
	role, err := rbac.ParseRole(strings.TrimSpace(opts.Role))
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "set-role: invalid role %q (expected user or admin)\n", opts.Role)
		return 1
	}

	user, err := c.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			_, _ = fmt.Fprintf(opts.Stderr, "set-role: no account with email %s\n", email)
			return 2
		}
		_, _ = fmt.Fprintf(opts.Stderr, "set-role: %v\n", err)
		return 1
	}
	updated, err := c.store.UpdateRole(ctx, user.ID, role)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "set-role: %v\n", err)
		return 1
	}

	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(updated.Summary()); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "set-role: encode json: %v\n", err)
			return 1
		}
		return 0
	}
	_, _ = fmt.Fprintf(opts.Stdout, "%s (%s) is now %s\n", updated.Username, updated.Email, updated.Role)
	return 0
}
