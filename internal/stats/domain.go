// Package stats aggregates todo statistics for the admin dashboard.
package stats

// Summary is the aggregate view of every todo in the system.
type Summary struct {
	Total      int             `json:"total"`
	Completed  int             `json:"completed"`
	Pending    int             `json:"pending"`
	ByCategory []CategoryCount `json:"byCategory"`
	ByUser     []UserCount     `json:"byUser"`
}

// CategoryCount is the number of todos in a category.
type CategoryCount struct {
	Category string `json:"_id"`
	Count    int    `json:"count"`
}

// UserCount is the number of todos owned by a user.
type UserCount struct {
	UserID   string `json:"_id"`
	Count    int    `json:"count"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
