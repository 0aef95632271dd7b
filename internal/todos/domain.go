package todos

import (
	"time"

	"github.com/tasktrack/tasktrack/internal/rbac"
)

// Category classifies a todo by urgency.
type Category string

const (
	CategoryUrgent    Category = "Urgent"
	CategoryNonUrgent Category = "Non-Urgent"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryUrgent || c == CategoryNonUrgent
}

// Todo is a single task owned by exactly one user. The owner never changes
// after creation.
type Todo struct {
	ID          string
	Title       string
	Description string
	DueDate     *time.Time
	Category    Category
	Completed   bool
	UserID      string
	Owner       Owner
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnerID implements rbac.Owned.
func (t Todo) OwnerID() string { return t.UserID }

var _ rbac.Owned = Todo{}

// Owner is the populated owner reference returned with every todo.
type Owner struct {
	ID       string `json:"_id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// View is the JSON representation of a todo.
type View struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Category    Category   `json:"category"`
	Completed   bool       `json:"completed"`
	User        Owner      `json:"user"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// View returns the JSON representation of t.
func (t Todo) View() View {
	owner := t.Owner
	owner.ID = t.UserID
	return View{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Category:    t.Category,
		Completed:   t.Completed,
		User:        owner,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// Views converts a slice of todos, never returning nil.
func Views(list []Todo) []View {
	out := make([]View, 0, len(list))
	for _, t := range list {
		out = append(out, t.View())
	}
	return out
}

// ListFilter narrows list queries. Scope is always applied; the remaining
// fields are optional.
type ListFilter struct {
	Scope     rbac.OwnerFilter
	Completed *bool
	Category  Category
	Search    string
}

// Changes carries a partial update; nil fields are left untouched.
type Changes struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Category    *Category
	Completed   *bool
}

// Apply copies the set fields of c onto t.
func (c Changes) Apply(t *Todo) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.DueDate != nil {
		due := *c.DueDate
		t.DueDate = &due
	}
	if c.Category != nil {
		t.Category = *c.Category
	}
	if c.Completed != nil {
		t.Completed = *c.Completed
	}
}
