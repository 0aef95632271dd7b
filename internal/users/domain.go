package users

import (
	"strings"
	"time"

	"github.com/tasktrack/tasktrack/internal/rbac"
)

// User represents a stored account and its credentials.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         rbac.Role
	LastActiveAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal builds the request identity from the stored record.
func (u User) Principal() rbac.Principal {
	return rbac.Principal{ID: u.ID, Role: u.Role, LastActiveAt: u.LastActiveAt}
}

// Profile is the public JSON view of a user; it never carries the hash.
type Profile struct {
	ID         string    `json:"_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       rbac.Role `json:"role"`
	LastActive time.Time `json:"lastActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Profile returns the public view of u.
func (u User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		LastActive: u.LastActiveAt,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// Summary is the compact view echoed by login, registration and role updates.
type Summary struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     rbac.Role `json:"role"`
}

// Summary returns the compact view of u.
func (u User) Summary() Summary {
	return Summary{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// Directory is the admin listing of all accounts.
type Directory struct {
	Users  []Profile `json:"users"`
	Total  int       `json:"total"`
	Active int       `json:"active"`
}

// ActiveWindow is how recently a user must have been seen to count as active.
const ActiveWindow = 24 * time.Hour

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
