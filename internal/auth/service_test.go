package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasktrack/tasktrack/internal/rbac"
	"github.com/tasktrack/tasktrack/internal/shared"
)

func newTestService(t *testing.T) (*Service, *memStore, *TokenCodec) {
	t.Helper()
	now := time.Now()
	codec := newTestCodec(t, &now)
	store := newMemStore()
	svc := NewService(store, codec, BcryptHasher{Cost: bcrypt.MinCost})
	return svc, store, codec
}

func TestRegisterIssuesVerifiableToken(t *testing.T) {
	svc, store, codec := newTestService(t)

	sess, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    " Alice@Example.com ",
		Password: "secret1",
		Role:     rbac.RoleUser,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.User.ID)
	assert.Equal(t, "alice@example.com", sess.User.Email)
	assert.NotEqual(t, "secret1", sess.User.PasswordHash)

	claims, err := codec.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.SubjectID)
	assert.Equal(t, rbac.RoleUser, claims.Role)

	stored, err := store.FindByID(context.Background(), sess.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)
}

func TestRegisterRejectsExistingAccount(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "a@example.com", Password: "secret1", Role: rbac.RoleUser})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "other@example.com", Password: "secret1", Role: rbac.RoleUser})
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))
	e, _ := shared.AsError(err)
	assert.Equal(t, "User already exists", e.Message)
}

func TestLoginFlows(t *testing.T) {
	svc, store, _ := newTestService(t)
	reg, err := svc.Register(context.Background(), RegisterInput{Username: "bob", Email: "bob@example.com", Password: "secret1", Role: rbac.RoleAdmin})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		sess, err := svc.Login(context.Background(), "BOB@example.com", "secret1", rbac.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, reg.User.ID, sess.User.ID)
		assert.NotEmpty(t, sess.Token)
		assert.NotEmpty(t, store.touches)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "bob@example.com", "nope", rbac.RoleAdmin)
		assert.Equal(t, shared.KindUnauthenticated, shared.KindOf(err))
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@example.com", "secret1", rbac.RoleAdmin)
		assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("role mismatch", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "bob@example.com", "secret1", rbac.RoleUser)
		e, ok := shared.AsError(err)
		require.True(t, ok)
		assert.Equal(t, shared.KindForbidden, e.Kind)
		assert.Equal(t, "Please login as a admin", e.Message)
	})
}

func TestMeReportsMissingAccount(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Me(context.Background(), rbac.Principal{ID: "ghost", Role: rbac.RoleUser})
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}
