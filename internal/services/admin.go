package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/todostack/apiserver/internal/store"
	"github.com/todostack/apiserver/types"
)

// AdminService encapsulates user management and system-wide operations.
// Every method runs the same admin guard before touching the store.
type AdminService struct {
	users UserRepository
	todos TodoRepository
}

func NewAdminService(users UserRepository, todos TodoRepository) *AdminService {
	return &AdminService{users: users, todos: todos}
}

// requireAdmin loads the caller and demands the admin role. Shared by every
// admin procedure so the check lives in exactly one place.
func (s *AdminService) requireAdmin(ctx context.Context, callerID string) error {
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("load caller: %w", err)
	}
	if caller.Role != types.RoleAdmin {
		return ErrUnauthorized
	}
	return nil
}

// ListUsers returns every user joined with per-user todo counts.
func (s *AdminService) ListUsers(ctx context.Context, callerID string) ([]types.UserWithTodoCounts, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.users.ListWithTodoCounts(ctx)
}

// GetUserWithTodos returns the target user's account plus all owned todos.
func (s *AdminService) GetUserWithTodos(ctx context.Context, callerID, targetUserID string) (types.UserWithTodos, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return types.UserWithTodos{}, err
	}

	user, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		return types.UserWithTodos{}, err
	}
	todos, err := s.todos.ListByUser(ctx, targetUserID)
	if err != nil {
		return types.UserWithTodos{}, fmt.Errorf("list todos: %w", err)
	}
	return types.UserWithTodos{User: user, Todos: todos}, nil
}

// UpdateUserRole changes the target's role. Admins cannot change their own
// role.
func (s *AdminService) UpdateUserRole(ctx context.Context, callerID, targetUserID, newRole string) (types.User, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return types.User{}, err
	}
	if !types.ValidRole(newRole) {
		return types.User{}, ErrInvalid
	}
	if callerID == targetUserID {
		return types.User{}, ErrForbidden
	}
	if err := s.users.UpdateRole(ctx, targetUserID, newRole); err != nil {
		return types.User{}, err
	}
	return s.users.GetByID(ctx, targetUserID)
}

// DeleteTodo removes any todo by id regardless of owner. A missing todo
// yields store.ErrNotFound.
func (s *AdminService) DeleteTodo(ctx context.Context, callerID, todoID string) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}
	return s.todos.DeleteAny(ctx, todoID)
}

// Stats returns system-wide aggregate counts.
func (s *AdminService) Stats(ctx context.Context, callerID string) (types.SystemStats, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return types.SystemStats{}, err
	}

	totalUsers, totalAdmins, err := s.users.CountByRole(ctx)
	if err != nil {
		return types.SystemStats{}, fmt.Errorf("count users: %w", err)
	}
	totalTodos, completed, err := s.todos.Count(ctx)
	if err != nil {
		return types.SystemStats{}, fmt.Errorf("count todos: %w", err)
	}
	return types.SystemStats{
		TotalUsers:     totalUsers,
		TotalAdmins:    totalAdmins,
		TotalTodos:     totalTodos,
		CompletedTodos: completed,
	}, nil
}
