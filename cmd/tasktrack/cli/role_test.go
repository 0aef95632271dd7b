package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack/internal/rbac"
	"github.com/tasktrack/tasktrack/internal/shared"
	"github.com/tasktrack/tasktrack/internal/users"
)

type stubUserStore struct {
	user      *users.User
	updateErr error
}

func (s *stubUserStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubUserStore) UpdateRole(ctx context.Context, id string, role rbac.Role) (*users.User, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	s.user.Role = role
	return s.user, nil
}

func runSetRole(t *testing.T, store UserStore, opts SetRoleOptions) (int, string, string) {
	t.Helper()
	cli, err := NewRoleCLI(store)
	require.NoError(t, err)
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	opts.Stdout, opts.Stderr = stdout, stderr
	code := cli.SetRoleCommand(context.Background(), opts)
	return code, stdout.String(), stderr.String()
}

func TestSetRolePromotesAccount(t *testing.T) {
	store := &stubUserStore{user: &users.User{ID: "u1", Username: "alice", Email: "alice@example.com", Role: rbac.RoleUser}}

	code, stdout, stderr := runSetRole(t, store, SetRoleOptions{Email: " Alice@Example.com ", Role: "admin", JSONOutput: true})
	require.Equal(t, 0, code, stderr)

	var summary users.Summary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	require.Equal(t, rbac.RoleAdmin, summary.Role)
	require.Equal(t, rbac.RoleAdmin, store.user.Role)
}

func TestSetRoleHumanOutput(t *testing.T) {
	store := &stubUserStore{user: &users.User{ID: "u1", Username: "alice", Email: "alice@example.com", Role: rbac.RoleAdmin}}

	code, stdout, _ := runSetRole(t, store, SetRoleOptions{Email: "alice@example.com", Role: "user"})
	require.Equal(t, 0, code)
	require.Equal(t, "alice (alice@example.com) is now user\n", stdout)
}

func TestSetRoleRejectsBadInput(t *testing.T) {
	store := &stubUserStore{}

	code, _, stderr := runSetRole(t, store, SetRoleOptions{Role: "admin"})
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "--email is required")

	code, _, stderr = runSetRole(t, store, SetRoleOptions{Email: "a@example.com", Role: "root"})
	require.Equal(t, 1, code)
	require.Contains(t, stderr, `invalid role "root"`)
}

func TestSetRoleUnknownAccount(t *testing.T) {
	code, _, stderr := runSetRole(t, &stubUserStore{}, SetRoleOptions{Email: "ghost@example.com", Role: "admin"})
	require.Equal(t, 2, code)
	require.Contains(t, stderr, "no account with email ghost@example.com")
}

func TestSetRoleStoreFailure(t *testing.T) {
	store := &stubUserStore{
		user:      &users.User{ID: "u1", Email: "alice@example.com", Role: rbac.RoleUser},
		updateErr: errors.New("connection reset"),
	}
	code, _, stderr := runSetRole(t, store, SetRoleOptions{Email: "alice@example.com", Role: "admin"})
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "connection reset")
}

func TestNewRoleCLIRequiresStore(t *testing.T) {
	_, err := NewRoleCLI(nil)
	require.Error(t, err)
}
