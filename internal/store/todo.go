package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/todostack/apiserver/types"
)

const todoColumns = "id, user_id, title, description, completed, priority, due_date, created_at, updated_at"

// TodoRepository handles persistence for todos. Every read and write that
// acts on behalf of a regular user is scoped by owner id in the statement
// itself, so ownership checks and mutations are a single atomic operation.
type TodoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// ListByUser returns all todos owned by userID, newest first.
func (r *TodoRepository) ListByUser(ctx context.Context, userID string) ([]types.Todo, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at DESC`, todoColumns)
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make([]types.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return todos, nil
}

// GetByIDAndUser returns the todo only when it exists and is owned by userID.
func (r *TodoRepository) GetByIDAndUser(ctx context.Context, id, userID string) (types.Todo, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM todos
		WHERE id = $1 AND user_id = $2`, todoColumns)
	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Todo{}, ErrNotFound
		}
		return types.Todo{}, err
	}
	return todo, nil
}

func (r *TodoRepository) Create(ctx context.Context, todo types.Todo) (types.Todo, error) {
	now := time.Now()
	todo.ID = uuid.NewString()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	const query = `
		INSERT INTO todos (id, user_id, title, description, completed, priority, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		todo.ID,
		todo.UserID,
		todo.Title,
		todo.Description,
		todo.Completed,
		todo.Priority,
		todo.DueDate,
		todo.CreatedAt,
		todo.UpdatedAt,
	); err != nil {
		return types.Todo{}, err
	}
	return todo, nil
}

// Update applies the non-nil fields of patch to the todo owned by userID in
// one conditional UPDATE. A missing or foreign row yields ErrNotFound.
func (r *TodoRepository) Update(ctx context.Context, id, userID string, patch types.TodoPatch) (types.Todo, error) {
	assignments := make([]string, 0, 6)
	args := make([]any, 0, 8)

	appendSet := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		appendSet("title", *patch.Title)
	}
	if patch.Description != nil {
		appendSet("description", *patch.Description)
	}
	if patch.Completed != nil {
		appendSet("completed", *patch.Completed)
	}
	if patch.Priority != nil {
		appendSet("priority", *patch.Priority)
	}
	if patch.DueDate != nil {
		appendSet("due_date", *patch.DueDate)
	}
	appendSet("updated_at", time.Now())

	args = append(args, id, userID)
	query := fmt.Sprintf(`
		UPDATE todos
		SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING %s`,
		strings.Join(assignments, ", "), len(args)-1, len(args), todoColumns)

	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Todo{}, ErrNotFound
		}
		return types.Todo{}, err
	}
	return todo, nil
}

// Delete removes the todo owned by userID. A missing or foreign row yields
// ErrNotFound.
func (r *TodoRepository) Delete(ctx context.Context, id, userID string) error {
	const query = `DELETE FROM todos WHERE id = $1 AND user_id = $2`
	return r.execExpectingRow(ctx, query, id, userID)
}

// DeleteAny removes a todo regardless of owner. Used by admin procedures.
func (r *TodoRepository) DeleteAny(ctx context.Context, id string) error {
	const query = `DELETE FROM todos WHERE id = $1`
	return r.execExpectingRow(ctx, query, id)
}

// Toggle flips the completion flag of the todo owned by userID and returns
// the new value, all in a single statement.
func (r *TodoRepository) Toggle(ctx context.Context, id, userID string) (bool, error) {
	const query = `
		UPDATE todos
		SET completed = NOT completed,
			updated_at = $1
		WHERE id = $2 AND user_id = $3
		RETURNING completed`
	var completed bool
	err := r.db.QueryRowContext(ctx, query, time.Now(), id, userID).Scan(&completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return completed, nil
}

// Count returns the total number of todos and how many are completed.
func (r *TodoRepository) Count(ctx context.Context) (total, completed int, err error) {
	const query = `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE completed)
		FROM todos`
	if err := r.db.QueryRowContext(ctx, query).Scan(&total, &completed); err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}

func (r *TodoRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (types.Todo, error) {
	var todo types.Todo
	err := s.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.Description,
		&todo.Completed,
		&todo.Priority,
		&todo.DueDate,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return types.Todo{}, err
	}
	return todo, nil
}
