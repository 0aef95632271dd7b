package todos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasktrack/tasktrack/internal/rbac"
	"github.com/tasktrack/tasktrack/internal/shared"
)

const selectTodo = `
	SELECT t.id, t.title, t.description, t.due_date, t.category, t.completed,
	       t.user_id, t.created_at, t.updated_at,
	       COALESCE(u.username, ''), COALESCE(u.email, '')
	FROM todos t
	LEFT JOIN users u ON u.id = t.user_id`

// Repository provides PostgreSQL backed todo persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByID fetches a todo regardless of owner.
func (r *Repository) FindByID(ctx context.Context, id string) (*Todo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, shared.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, selectTodo+` WHERE t.id = $1`, id)
	return scanTodo(row)
}

// FindScoped fetches a todo only when it is visible through scope.
func (r *Repository) FindScoped(ctx context.Context, id string, scope rbac.OwnerFilter) (*Todo, error) {
	if scope.Empty() {
		return nil, shared.ErrNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, shared.ErrNotFound
	}
	if scope.All {
		return r.FindByID(ctx, id)
	}
	row := r.pool.QueryRow(ctx, selectTodo+` WHERE t.id = $1 AND t.user_id = $2`, id, scope.OwnerID)
	return scanTodo(row)
}

// List returns todos matching filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Todo, error) {
	query, args, ok := buildListQuery(filter)
	if !ok {
		return []Todo{}, nil
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("todos: list: %w", err)
	}
	defer rows.Close()

	list := []Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("todos: list: %w", err)
	}
	return list, nil
}

// buildListQuery renders the list statement for filter. ok is false when the
// scope admits no row, in which case nothing should be sent to the database.
func buildListQuery(filter ListFilter) (query string, args []any, ok bool) {
	if filter.Scope.Empty() {
		return "", nil, false
	}
	var conditions []string
	argPos := 1

	if !filter.Scope.All {
		conditions = append(conditions, fmt.Sprintf("t.user_id = $%d", argPos))
		args = append(args, filter.Scope.OwnerID)
		argPos++
	}
	if filter.Completed != nil {
		conditions = append(conditions, fmt.Sprintf("t.completed = $%d", argPos))
		args = append(args, *filter.Completed)
		argPos++
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("t.category = $%d", argPos))
		args = append(args, string(filter.Category))
		argPos++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("t.title ILIKE $%d", argPos))
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	query = selectTodo
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	return query + listOrder, args, true
}

const listOrder = " ORDER BY t.created_at DESC, t.id DESC"

// Create inserts todo, assigning its identifier and timestamps.
func (r *Repository) Create(ctx context.Context, todo *Todo) error {
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	todo.CreatedAt, todo.UpdatedAt = now, now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO todos (id, title, description, due_date, category, completed, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		todo.ID, todo.Title, todo.Description, todo.DueDate, string(todo.Category), todo.Completed,
		todo.UserID, todo.CreatedAt, todo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("todos: create: %w", err)
	}
	return nil
}

// Update persists the mutable fields of todo. The owner column is never written.
func (r *Repository) Update(ctx context.Context, todo *Todo) error {
	todo.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE todos
		SET title = $2, description = $3, due_date = $4, category = $5, completed = $6, updated_at = $7
		WHERE id = $1`,
		todo.ID, todo.Title, todo.Description, todo.DueDate, string(todo.Category), todo.Completed, todo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("todos: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes the todo identified by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("todos: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanTodo(row pgx.Row) (*Todo, error) {
	var (
		todo     Todo
		category string
		due      pgtype.Timestamptz
	)
	err := row.Scan(&todo.ID, &todo.Title, &todo.Description, &due, &category, &todo.Completed,
		&todo.UserID, &todo.CreatedAt, &todo.UpdatedAt, &todo.Owner.Username, &todo.Owner.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("todos: scan: %w", err)
	}
	if due.Valid {
		t := due.Time
		todo.DueDate = &t
	}
	todo.Category = Category(category)
	todo.Owner.ID = todo.UserID
	return &todo, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
