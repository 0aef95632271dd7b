package todos

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tasktrack/tasktrack/internal/rbac"
	"github.com/tasktrack/tasktrack/internal/shared"
)

const (
	msgNotFound        = "Todo not found"
	msgUpdateForbidden = "Not authorized to update this todo"
	msgDeleteForbidden = "Not authorized to delete this todo"
)

// RepositoryPort defines data access methods for todos.
type RepositoryPort interface {
	FindByID(ctx context.Context, id string) (*Todo, error)
	FindScoped(ctx context.Context, id string, scope rbac.OwnerFilter) (*Todo, error)
	List(ctx context.Context, filter ListFilter) ([]Todo, error)
	Create(ctx context.Context, todo *Todo) error
	Update(ctx context.Context, todo *Todo) error
	Delete(ctx context.Context, id string) error
}

// StatsInvalidator drops cached aggregates after a todo mutation.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service applies ownership rules to todo operations.
type Service struct {
	repo   RepositoryPort
	stats  StatsInvalidator
	logger *slog.Logger
}

// NewService builds Service instance. stats may be nil.
func NewService(repo RepositoryPort, stats StatsInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, stats: stats, logger: logger}
}

// CreateInput carries a validated creation request.
type CreateInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Category    Category
	Completed   bool
}

// Create stores a new todo owned by the principal.
func (s *Service) Create(ctx context.Context, p rbac.Principal, in CreateInput) (*Todo, error) {
	category := in.Category
	if category == "" {
		category = CategoryNonUrgent
	}
	todo := &Todo{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		DueDate:     in.DueDate,
		Category:    category,
		Completed:   in.Completed,
		UserID:      p.ID,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, shared.Internal("Error creating todo", err)
	}
	s.invalidate(ctx)
	if stored, err := s.repo.FindByID(ctx, todo.ID); err == nil {
		return stored, nil
	}
	return todo, nil
}

// List returns the todos visible to the principal.
func (s *Service) List(ctx context.Context, p rbac.Principal, filter ListFilter) ([]Todo, error) {
	filter.Scope = rbac.ScopeListQuery(p)
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Internal("Error fetching todos", err)
	}
	return list, nil
}

// Get fetches a single todo through the principal's scope, so a todo owned by
// someone else is reported as missing.
func (s *Service) Get(ctx context.Context, p rbac.Principal, id string) (*Todo, error) {
	todo, err := s.repo.FindScoped(ctx, id, rbac.ScopeListQuery(p))
	if err != nil {
		return nil, notFoundOr(err, "Error fetching todo")
	}
	return todo, nil
}

// Update applies changes after the ownership guard allows it.
func (s *Service) Update(ctx context.Context, p rbac.Principal, id string, changes Changes) (*Todo, error) {
	todo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Error updating todo")
	}
	if err := rbac.RequireOwnerOrAdmin(p, todo); err != nil {
		return nil, shared.WithMessage(err, msgUpdateForbidden)
	}
	changes.Apply(todo)
	if err := s.repo.Update(ctx, todo); err != nil {
		return nil, notFoundOr(err, "Error updating todo")
	}
	s.invalidate(ctx)
	return todo, nil
}

// Delete removes a todo after the ownership guard allows it.
func (s *Service) Delete(ctx context.Context, p rbac.Principal, id string) error {
	todo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Error deleting todo")
	}
	if err := rbac.RequireOwnerOrAdmin(p, todo); err != nil {
		return shared.WithMessage(err, msgDeleteForbidden)
	}
	if err := s.repo.Delete(ctx, todo.ID); err != nil {
		return notFoundOr(err, "Error deleting todo")
	}
	s.invalidate(ctx)
	return nil
}

// ListByOwner returns every todo of ownerID. Callers must hold the admin role.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Todo, error) {
	if _, err := uuid.Parse(ownerID); err != nil {
		return nil, shared.ValidationFailed([]shared.FieldError{{Field: "userId", Message: "Invalid user ID"}})
	}
	list, err := s.repo.List(ctx, ListFilter{Scope: rbac.OwnerFilter{OwnerID: ownerID}})
	if err != nil {
		return nil, shared.Internal("Error fetching user todos", err)
	}
	return list, nil
}

// ListAll returns every todo. Callers must hold the admin role.
func (s *Service) ListAll(ctx context.Context) ([]Todo, error) {
	list, err := s.repo.List(ctx, ListFilter{Scope: rbac.OwnerFilter{All: true}})
	if err != nil {
		return nil, shared.Internal("Error fetching todos", err)
	}
	return list, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate todo stats", slog.Any("error", err))
	}
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFound(msgNotFound)
	}
	return shared.Internal(msg, err)
}
