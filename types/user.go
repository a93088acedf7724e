package types

import "time"

// User roles. A user is either a regular account or an administrator;
// there is no third value.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the two known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user (a UUID string).
	ID string `json:"id" db:"id"`

	// Email is the user's email address. Unique, stored case-sensitively.
	Email string `json:"email" db:"email"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Role indicates the user's authorization level within the
	// system, either RoleUser or RoleAdmin.
	Role string `json:"role" db:"role"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserWithTodoCounts is a user row joined with aggregate counts over the
// user's todos. Returned by the admin user listing.
type UserWithTodoCounts struct {
	User

	// TotalTodos is the number of todos owned by the user.
	TotalTodos int `json:"total_todos"`

	// CompletedTodos is the number of those todos marked completed.
	CompletedTodos int `json:"completed_todos"`
}

// UserWithTodos bundles a user with every todo the user owns.
type UserWithTodos struct {
	User  User   `json:"user"`
	Todos []Todo `json:"todos"`
}

// SystemStats holds system-wide aggregate counts for the admin dashboard.
type SystemStats struct {
	TotalUsers     int `json:"total_users"`
	TotalAdmins    int `json:"total_admins"`
	TotalTodos     int `json:"total_todos"`
	CompletedTodos int `json:"completed_todos"`
}
