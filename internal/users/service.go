package users

import (
	"context"
	"errors"
	"time"

	"github.com/tasktrack/tasktrack/internal/rbac"
	"github.com/tasktrack/tasktrack/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	FindByID(ctx context.Context, id string) (*User, error)
	UpdateRole(ctx context.Context, id string, role rbac.Role) (*User, error)
	List(ctx context.Context) ([]User, error)
	CountActiveSince(ctx context.Context, since time.Time) (int, error)
}

// Service handles user management.
type Service struct {
	repo RepositoryPort
	now  func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ListUsers returns every account together with the active-user count.
func (s *Service) ListUsers(ctx context.Context) (Directory, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return Directory{}, shared.Internal("Error fetching users", err)
	}
	active, err := s.repo.CountActiveSince(ctx, s.now().Add(-ActiveWindow))
	if err != nil {
		return Directory{}, shared.Internal("Error fetching users", err)
	}
	profiles := make([]Profile, 0, len(list))
	for _, u := range list {
		profiles = append(profiles, u.Profile())
	}
	return Directory{Users: profiles, Total: len(profiles), Active: active}, nil
}

// UpdateRole changes the role of id. The new role is authoritative for every
// subsequent request, including those carrying tokens issued earlier.
func (s *Service) UpdateRole(ctx context.Context, id string, role rbac.Role) (*User, error) {
	if !role.Valid() {
		return nil, shared.ValidationFailed([]shared.FieldError{{Field: "role", Message: msgRoleInvalid}})
	}
	user, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("User not found")
		}
		return nil, shared.Internal("Error updating user role", err)
	}
	return user, nil
}
