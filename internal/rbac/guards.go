package rbac

// Owned is implemented by resources that carry an owner reference.
type Owned interface {
	OwnerID() string
}

// RequireAdmin guards user-management and global statistics operations.
func RequireAdmin(p Principal) error {
	return Evaluate(AccessRequest{Principal: p, RequiredRole: RoleAdmin})
}

// RequireOwnerOrAdmin guards mutation of an already fetched resource.
func RequireOwnerOrAdmin(p Principal, resource Owned) error {
	owner := ""
	if resource != nil {
		owner = resource.OwnerID()
	}
	return Evaluate(AccessRequest{Principal: p, ResourceOwnerID: owner, OwnershipRequired: true})
}

// OwnerFilter restricts list queries by owner. When All is false only rows
// owned by OwnerID are visible; an empty OwnerID then matches nothing.
type OwnerFilter struct {
	All     bool
	OwnerID string
}

// Matches reports whether a row owned by owner passes the filter.
func (f OwnerFilter) Matches(owner string) bool {
	if f.All {
		return true
	}
	return f.OwnerID != "" && f.OwnerID == owner
}

// Empty reports whether the filter can match no row at all.
func (f OwnerFilter) Empty() bool {
	return !f.All && f.OwnerID == ""
}

// ScopeListQuery returns the owner filter applied when building list queries.
func ScopeListQuery(p Principal) OwnerFilter {
	switch p.Role {
	case RoleAdmin:
		return OwnerFilter{All: true}
	case RoleUser:
		return OwnerFilter{OwnerID: p.ID}
	default:
		return OwnerFilter{}
	}
}
