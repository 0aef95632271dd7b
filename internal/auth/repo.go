package auth

import (
	"context"
	"time"

	"github.com/tasktrack/tasktrack/internal/users"
)

// CredentialStore is the persistence the identity resolver depends on.
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (*users.User, error)
	TouchLastActive(ctx context.Context, id string, at time.Time) error
}

// Repository defines persistence operations for the auth module.
type Repository interface {
	CredentialStore
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (*users.User, error)
	Create(ctx context.Context, user *users.User) error
}

var _ Repository = (*users.Repository)(nil)
