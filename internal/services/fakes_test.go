package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/todostack/apiserver/internal/store"
	"github.com/todostack/apiserver/types"
)

// In-memory repositories mirroring the Postgres semantics the services
// rely on: owner-scoped statements, typed not-found/conflict errors, and
// newest-first listing. Both track write counts so tests can assert that
// rejected calls left the store untouched.

type fakeUserRepo struct {
	users     map[string]types.User
	todos     *fakeTodoRepo
	mutations int
}

func newFakeUserRepo(todos *fakeTodoRepo) *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]types.User), todos: todos}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	r.mutations++
	return user, nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id, role string) error {
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Role = role
	user.UpdatedAt = time.Now()
	r.users[id] = user
	r.mutations++
	return nil
}

func (r *fakeUserRepo) ListWithTodoCounts(_ context.Context) ([]types.UserWithTodoCounts, error) {
	result := make([]types.UserWithTodoCounts, 0, len(r.users))
	for _, user := range r.users {
		row := types.UserWithTodoCounts{User: user}
		for _, todo := range r.todos.todos {
			if todo.UserID != user.ID {
				continue
			}
			row.TotalTodos++
			if todo.Completed {
				row.CompletedTodos++
			}
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context) (total, admins int, err error) {
	for _, user := range r.users {
		total++
		if user.Role == types.RoleAdmin {
			admins++
		}
	}
	return total, admins, nil
}

type fakeTodoRepo struct {
	todos     map[string]types.Todo
	seq       int
	mutations int
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{todos: make(map[string]types.Todo)}
}

// nextTime hands out strictly increasing timestamps so creation order is
// unambiguous in listings.
func (r *fakeTodoRepo) nextTime() time.Time {
	r.seq++
	return time.Unix(0, 0).Add(time.Duration(r.seq) * time.Second)
}

func (r *fakeTodoRepo) ListByUser(_ context.Context, userID string) ([]types.Todo, error) {
	owned := make([]types.Todo, 0)
	for _, todo := range r.todos {
		if todo.UserID == userID {
			owned = append(owned, todo)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	return owned, nil
}

func (r *fakeTodoRepo) GetByIDAndUser(_ context.Context, id, userID string) (types.Todo, error) {
	todo, ok := r.todos[id]
	if !ok || todo.UserID != userID {
		return types.Todo{}, store.ErrNotFound
	}
	return todo, nil
}

func (r *fakeTodoRepo) Create(_ context.Context, todo types.Todo) (types.Todo, error) {
	now := r.nextTime()
	todo.ID = uuid.NewString()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	r.todos[todo.ID] = todo
	r.mutations++
	return todo, nil
}

func (r *fakeTodoRepo) Update(_ context.Context, id, userID string, patch types.TodoPatch) (types.Todo, error) {
	todo, ok := r.todos[id]
	if !ok || todo.UserID != userID {
		return types.Todo{}, store.ErrNotFound
	}
	if patch.Title != nil {
		todo.Title = *patch.Title
	}
	if patch.Description != nil {
		todo.Description = patch.Description
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}
	if patch.Priority != nil {
		todo.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		todo.DueDate = patch.DueDate
	}
	todo.UpdatedAt = r.nextTime()
	r.todos[id] = todo
	r.mutations++
	return todo, nil
}

func (r *fakeTodoRepo) Delete(_ context.Context, id, userID string) error {
	todo, ok := r.todos[id]
	if !ok || todo.UserID != userID {
		return store.ErrNotFound
	}
	delete(r.todos, id)
	r.mutations++
	return nil
}

func (r *fakeTodoRepo) DeleteAny(_ context.Context, id string) error {
	if _, ok := r.todos[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.todos, id)
	r.mutations++
	return nil
}

func (r *fakeTodoRepo) Toggle(_ context.Context, id, userID string) (bool, error) {
	todo, ok := r.todos[id]
	if !ok || todo.UserID != userID {
		return false, store.ErrNotFound
	}
	todo.Completed = !todo.Completed
	todo.UpdatedAt = r.nextTime()
	r.todos[id] = todo
	r.mutations++
	return todo.Completed, nil
}

func (r *fakeTodoRepo) Count(_ context.Context) (total, completed int, err error) {
	for _, todo := range r.todos {
		total++
		if todo.Completed {
			completed++
		}
	}
	return total, completed, nil
}

// seedUser inserts a user directly, bypassing registration.
func seedUser(repo *fakeUserRepo, email, role string) types.User {
	user, _ := repo.Create(context.Background(), types.User{
		Email:        email,
		Name:         "Test " + email,
		Role:         role,
		PasswordHash: "digest",
	})
	repo.mutations = 0
	return user
}
