package types

import "time"

// Todo priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidPriority reports whether priority is one of the known priorities.
func ValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Todo represents a single todo item owned by exactly one user.
type Todo struct {
	// ID is the unique identifier of the todo (a UUID string).
	ID string `json:"id" db:"id"`

	// UserID is the id of the owning user. Deleting the owner
	// cascades to the todo.
	UserID string `json:"user_id" db:"user_id"`

	// Title is the todo's title. Always non-empty.
	Title string `json:"title" db:"title"`

	// Description is an optional free-form description. Nil when unset.
	Description *string `json:"description" db:"description"`

	// Completed reports whether the todo has been marked done.
	Completed bool `json:"completed" db:"completed"`

	// Priority is one of PriorityLow, PriorityMedium, PriorityHigh.
	Priority string `json:"priority" db:"priority"`

	// DueDate is an optional due date. Nil when unset.
	DueDate *time.Time `json:"due_date" db:"due_date"`

	// CreatedAt is the timestamp when the todo was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the todo.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TodoPatch describes a partial update to a todo. Nil fields are left
// unchanged.
type TodoPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Completed   *bool      `json:"completed"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}
