package services

import (
	"context"
	"time"

	"github.com/todostack/apiserver/types"
)

// TodoRepository defines persistence operations for todos.
type TodoRepository interface {
	ListByUser(ctx context.Context, userID string) ([]types.Todo, error)
	GetByIDAndUser(ctx context.Context, id, userID string) (types.Todo, error)
	Create(ctx context.Context, todo types.Todo) (types.Todo, error)
	Update(ctx context.Context, id, userID string, patch types.TodoPatch) (types.Todo, error)
	Delete(ctx context.Context, id, userID string) error
	DeleteAny(ctx context.Context, id string) error
	Toggle(ctx context.Context, id, userID string) (bool, error)
	Count(ctx context.Context) (total, completed int, err error)
}

// TodoService encapsulates todo use-cases. Every operation takes the caller
// id and the repository scopes each statement to that owner, so a caller can
// never observe or mutate another user's todos.
type TodoService struct {
	todos TodoRepository
}

func NewTodoService(todos TodoRepository) *TodoService {
	return &TodoService{todos: todos}
}

func (s *TodoService) List(ctx context.Context, callerID string) ([]types.Todo, error) {
	return s.todos.ListByUser(ctx, callerID)
}

func (s *TodoService) Get(ctx context.Context, id, callerID string) (types.Todo, error) {
	return s.todos.GetByIDAndUser(ctx, id, callerID)
}

// Create makes a new incomplete todo for the caller. An unset priority
// defaults to medium.
func (s *TodoService) Create(ctx context.Context, callerID, title string, description *string, priority string, dueDate *time.Time) (types.Todo, error) {
	if priority == "" {
		priority = types.PriorityMedium
	}
	if !types.ValidPriority(priority) {
		return types.Todo{}, ErrInvalid
	}
	return s.todos.Create(ctx, types.Todo{
		UserID:      callerID,
		Title:       title,
		Description: description,
		Completed:   false,
		Priority:    priority,
		DueDate:     dueDate,
	})
}

func (s *TodoService) Update(ctx context.Context, id, callerID string, patch types.TodoPatch) (types.Todo, error) {
	if patch.Priority != nil && !types.ValidPriority(*patch.Priority) {
		return types.Todo{}, ErrInvalid
	}
	return s.todos.Update(ctx, id, callerID, patch)
}

func (s *TodoService) Delete(ctx context.Context, id, callerID string) error {
	return s.todos.Delete(ctx, id, callerID)
}

// Toggle flips the completion flag and returns the new value.
func (s *TodoService) Toggle(ctx context.Context, id, callerID string) (bool, error) {
	return s.todos.Toggle(ctx, id, callerID)
}
