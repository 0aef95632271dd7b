package rbac

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account classifications.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ErrUnknownRole is returned when a value outside the role set crosses a boundary.
var ErrUnknownRole = errors.New("rbac: unknown role")

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin}
}

// Valid reports whether r belongs to the role set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// ParseRole converts raw input into a Role, rejecting anything unknown.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.TrimSpace(raw))
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
	return role, nil
}

// Principal describes the authenticated actor of a single request. It is
// built by the identity resolver and never persisted.
type Principal struct {
	ID           string
	Role         Role
	LastActiveAt time.Time
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// AccessRequest is the full input of an access decision. An empty
// RequiredRole means no role constraint. Ownership is checked when
// OwnershipRequired is set or ResourceOwnerID is not empty; a required
// ownership check against an empty owner denies non-admins.
type AccessRequest struct {
	Principal         Principal
	ResourceOwnerID   string
	OwnershipRequired bool
	RequiredRole      Role
}

// Denial reasons.
const (
	ReasonRole     = "role"
	ReasonNotOwner = "not owner"
)

// MsgNotAuthorized is the default caller-facing text for ownership denials.
const MsgNotAuthorized = "Not authorized"
