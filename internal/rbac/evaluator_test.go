package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrack/tasktrack/internal/shared"
)

var (
	userA = Principal{ID: "a", Role: RoleUser}
	userB = Principal{ID: "b", Role: RoleUser}
	admin = Principal{ID: "root", Role: RoleAdmin}
)

type ownedByID string

func (o ownedByID) OwnerID() string { return string(o) }

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	for _, raw := range []string{"", "Admin", "root", "users"} {
		_, err := ParseRole(raw)
		assert.ErrorIs(t, err, ErrUnknownRole, raw)
	}
	assert.ElementsMatch(t, []Role{RoleUser, RoleAdmin}, Roles())
}

func TestRoleGate(t *testing.T) {
	assert.NoError(t, RoleGate(RoleAdmin)(admin))
	assert.NoError(t, RoleGate(RoleUser)(userA))

	err := RoleGate(RoleAdmin)(userA)
	e, ok := shared.AsError(err)
	require.True(t, ok)
	assert.Equal(t, shared.KindForbidden, e.Kind)
	assert.Equal(t, ReasonRole, e.Reason)
	assert.Equal(t, "Access denied. Admin privileges required.", e.Message)

	assert.Error(t, RoleGate(Role("root"))(Principal{ID: "x", Role: Role("root")}))
	assert.Error(t, RoleGate(RoleUser)(admin))
}

func TestOwnershipMatrix(t *testing.T) {
	tests := []struct {
		name    string
		p       Principal
		owner   string
		allowed bool
	}{
		{"user owns resource", userA, "a", true},
		{"user foreign resource", userB, "a", false},
		{"admin owns resource", admin, "root", true},
		{"admin foreign resource", admin, "a", true},
		{"user empty owner", userA, "", false},
		{"unknown role", Principal{ID: "a", Role: Role("guest")}, "a", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireOwnerOrAdmin(tt.p, ownedByID(tt.owner))
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			e, ok := shared.AsError(err)
			require.True(t, ok)
			assert.Equal(t, ReasonNotOwner, e.Reason)
			assert.Equal(t, MsgNotAuthorized, e.Message)
		})
	}
	assert.Error(t, RequireOwnerOrAdmin(userA, nil))
}

func TestChainStopsAtFirstDenial(t *testing.T) {
	calls := 0
	counting := func(Principal) error { calls++; return nil }

	err := Chain(counting, RoleGate(RoleAdmin), counting)(userA)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)

	assert.NoError(t, Chain(nil, counting)(userA))
	assert.NoError(t, Chain()(userA))
}

func TestEvaluate(t *testing.T) {
	assert.NoError(t, Evaluate(AccessRequest{Principal: userA}))
	assert.NoError(t, Evaluate(AccessRequest{Principal: userA, ResourceOwnerID: "a"}))
	assert.NoError(t, Evaluate(AccessRequest{Principal: admin, RequiredRole: RoleAdmin, ResourceOwnerID: "a"}))

	err := Evaluate(AccessRequest{Principal: userA, RequiredRole: RoleAdmin, ResourceOwnerID: "b"})
	e, ok := shared.AsError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonRole, e.Reason, "role is checked before ownership")

	err = Evaluate(AccessRequest{Principal: userA, ResourceOwnerID: "b"})
	e, ok = shared.AsError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNotOwner, e.Reason)
}

func TestEvaluateRequiredOwnershipWithoutOwner(t *testing.T) {
	err := Evaluate(AccessRequest{Principal: userA, OwnershipRequired: true})
	e, ok := shared.AsError(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNotOwner, e.Reason)

	assert.NoError(t, Evaluate(AccessRequest{Principal: admin, OwnershipRequired: true}))
}

func TestGuardsMatchEvaluator(t *testing.T) {
	for _, p := range []Principal{userA, admin, {ID: "x", Role: "root"}} {
		for _, owner := range []string{"a", "b", ""} {
			want := Evaluate(AccessRequest{Principal: p, ResourceOwnerID: owner, OwnershipRequired: true})
			got := RequireOwnerOrAdmin(p, ownedByID(owner))
			assert.Equal(t, want == nil, got == nil, "principal %v owner %q", p, owner)
		}
		assert.Equal(t, Evaluate(AccessRequest{Principal: p, RequiredRole: RoleAdmin}) == nil, RequireAdmin(p) == nil)
	}
}

func TestScopeListQuery(t *testing.T) {
	assert.Equal(t, OwnerFilter{All: true}, ScopeListQuery(admin))
	assert.Equal(t, OwnerFilter{OwnerID: "a"}, ScopeListQuery(userA))

	empty := ScopeListQuery(Principal{ID: "a", Role: Role("guest")})
	assert.True(t, empty.Empty())
	assert.False(t, empty.Matches("a"))

	f := ScopeListQuery(userA)
	assert.True(t, f.Matches("a"))
	assert.False(t, f.Matches("b"))
	assert.False(t, OwnerFilter{}.Matches(""))
	assert.True(t, OwnerFilter{All: true}.Matches("anyone"))
}
