package stats

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the aggregate queries against PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Counts returns the total and completed todo counts.
func (r *Repository) Counts(ctx context.Context) (total, completed int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE completed) FROM todos`).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("stats: counts: %w", err)
	}
	return total, completed, nil
}

// ByCategory groups todos by category.
func (r *Repository) ByCategory(ctx context.Context) ([]CategoryCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM todos GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("stats: by category: %w", err)
	}
	defer rows.Close()
	out := []CategoryCount{}
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("stats: by category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ByUser groups todos by owner. Owners that no longer exist are skipped.
func (r *Repository) ByUser(ctx context.Context) ([]UserCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, COUNT(t.id), u.username, u.email
		FROM todos t
		JOIN users u ON u.id = t.user_id
		GROUP BY u.id, u.username, u.email
		ORDER BY COUNT(t.id) DESC, u.username`)
	if err != nil {
		return nil, fmt.Errorf("stats: by user: %w", err)
	}
	defer rows.Close()
	out := []UserCount{}
	for rows.Next() {
		var c UserCount
		if err := rows.Scan(&c.UserID, &c.Count, &c.Username, &c.Email); err != nil {
			return nil, fmt.Errorf("stats: by user: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
