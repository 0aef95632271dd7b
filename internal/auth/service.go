package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tasktrack/tasktrack/internal/rbac"
	"github.com/tasktrack/tasktrack/internal/shared"
	"github.com/tasktrack/tasktrack/internal/users"
)

// TokenIssuer issues bearer tokens.
type TokenIssuer interface {
	Issue(subjectID string, role rbac.Role) (string, error)
}

// Service wraps registration and login rules.
type Service struct {
	repo   Repository
	tokens TokenIssuer
	hasher PasswordHasher
	now    func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens TokenIssuer, hasher PasswordHasher) *Service {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &Service{repo: repo, tokens: tokens, hasher: hasher, now: time.Now}
}

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     rbac.Role
}

// Session is the result of a successful registration or login.
type Session struct {
	Token string
	User  users.User
}

// Register creates an account and issues its first token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	username := strings.TrimSpace(in.Username)
	email := users.NormalizeEmail(in.Email)

	_, err := s.repo.FindByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		return nil, shared.Conflict("User already exists", shared.ErrDuplicate)
	case !errors.Is(err, shared.ErrNotFound):
		return nil, shared.Internal("Error registering user", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, shared.Internal("Error registering user", err)
	}
	user := &users.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		LastActiveAt: s.now(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			return nil, shared.Conflict("User already exists", err)
		}
		return nil, shared.Internal("Error registering user", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, shared.Internal("Error registering user", err)
	}
	return &Session{Token: token, User: *user}, nil
}

// Login validates credentials. The caller must ask for the role the account
// actually holds.
func (s *Service) Login(ctx context.Context, email, password string, role rbac.Role) (*Session, error) {
	user, err := s.repo.FindByEmail(ctx, users.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, invalidCredentials()
		}
		return nil, shared.Internal("Error logging in", err)
	}
	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return nil, invalidCredentials()
	}
	if user.Role != role {
		return nil, shared.Forbidden(rbac.ReasonRole, "Please login as a "+user.Role.String())
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, shared.Internal("Error logging in", err)
	}
	at := s.now()
	if err := s.repo.TouchLastActive(ctx, user.ID, at); err != nil {
		return nil, shared.Internal("Error logging in", err)
	}
	user.LastActiveAt = at
	return &Session{Token: token, User: *user}, nil
}

// Me returns the stored record of the principal.
func (s *Service) Me(ctx context.Context, p rbac.Principal) (*users.User, error) {
	user, err := s.repo.FindByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NotFound("User not found")
		}
		return nil, shared.Internal("Error fetching user", err)
	}
	return user, nil
}

func invalidCredentials() error {
	return &shared.Error{
		Kind:    shared.KindUnauthenticated,
		Reason:  "invalid credentials",
		Message: "Invalid credentials",
		Err:     shared.ErrInvalidCredentials,
	}
}
