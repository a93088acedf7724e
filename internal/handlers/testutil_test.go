package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/todostack/apiserver/internal/rpc"
	"github.com/todostack/apiserver/internal/services"
	"github.com/todostack/apiserver/internal/store"
	"github.com/todostack/apiserver/types"
)

const testJWTSecret = "test-secret"

// memUserRepo and memTodoRepo are in-memory stand-ins for the Postgres
// repositories, preserving owner scoping and typed errors.

type memUserRepo struct {
	users map[string]types.User
	todos *memTodoRepo
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
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
	return user, nil
}

func (r *memUserRepo) UpdateRole(_ context.Context, id, role string) error {
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Role = role
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return nil
}

func (r *memUserRepo) ListWithTodoCounts(_ context.Context) ([]types.UserWithTodoCounts, error) {
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

func (r *memUserRepo) CountByRole(_ context.Context) (total, admins int, err error) {
	for _, user := range r.users {
		total++
		if user.Role == types.RoleAdmin {
			admins++
		}
	}
	return total, admins, nil
}

type memTodoRepo struct {
	todos map[string]types.Todo
	seq   int
}

func (r *memTodoRepo) nextTime() time.Time {
	r.seq++
	return time.Unix(0, 0).Add(time.Duration(r.seq) * time.Second)
}

func (r *memTodoRepo) ListByUser(_ context.Context, userID string) ([]types.Todo, error) {
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

func (r *memTodoRepo) GetByIDAndUser(_ context.Context, id, userID string) (types.Todo, error) {
	todo, ok := r.todos[id]
	if !ok || todo.UserID != userID {
		return types.Todo{}, store.ErrNotFound
	}
	return todo, nil
}

func (r *memTodoRepo) Create(_ context.Context, todo types.Todo) (types.Todo, error) {
	now := r.nextTime()
	todo.ID = uuid.NewString()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	r.todos[todo.ID] = todo
	return todo, nil
}

func (r *memTodoRepo) Update(_ context.Context, id, userID string, patch types.TodoPatch) (types.Todo, error) {
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
	return todo, nil
}

func (r *memTodoRepo) Delete(_ context.Context, id, userID string) error {
	todo, ok := r.todos[id]
	if !ok || todo.UserID != userID {
		return store.ErrNotFound
	}
	delete(r.todos, id)
	return nil
}

func (r *memTodoRepo) DeleteAny(_ context.Context, id string) error {
	if _, ok := r.todos[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.todos, id)
	return nil
}

func (r *memTodoRepo) Toggle(_ context.Context, id, userID string) (bool, error) {
	todo, ok := r.todos[id]
	if !ok || todo.UserID != userID {
		return false, store.ErrNotFound
	}
	todo.Completed = !todo.Completed
	todo.UpdatedAt = r.nextTime()
	r.todos[id] = todo
	return todo.Completed, nil
}

func (r *memTodoRepo) Count(_ context.Context) (total, completed int, err error) {
	for _, todo := range r.todos {
		total++
		if todo.Completed {
			completed++
		}
	}
	return total, completed, nil
}

// testAPI wires real services and handlers over the in-memory repositories,
// exposing the same chi mux the server mounts.
type testAPI struct {
	mux   *chi.Mux
	users *memUserRepo
	todos *memTodoRepo
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	todoRepo := &memTodoRepo{todos: make(map[string]types.Todo)}
	userRepo := &memUserRepo{users: make(map[string]types.User), todos: todoRepo}

	authService := services.NewAuthService(userRepo)
	todoService := services.NewTodoService(todoRepo)
	adminService := services.NewAdminService(userRepo, todoRepo)

	authMiddleware := RequireAuth(testJWTSecret)

	rpcRouter := rpc.NewRouter()
	AuthProcedures(rpcRouter, authService, testJWTSecret)
	TodoProcedures(rpcRouter, todoService, authMiddleware)
	AdminProcedures(rpcRouter, adminService, authMiddleware)

	mux := chi.NewRouter()
	mux.Route("/rpc", func(r chi.Router) {
		rpcRouter.Mount(r)
	})

	return &testAPI{mux: mux, users: userRepo, todos: todoRepo}
}

// call invokes a procedure with an optional bearer token and JSON payload.
func (api *testAPI) call(t *testing.T, procedure, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body := []byte("{}")
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, "/rpc/"+procedure, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	api.mux.ServeHTTP(rec, req)
	return rec
}

// registerUser registers an account through the API and returns its token
// and user payload.
func (api *testAPI) registerUser(t *testing.T, email, name, password string) (string, types.User) {
	t.Helper()

	rec := api.call(t, "auth.register", "", map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User
}

// promoteToAdmin flips a role directly in the repository, standing in for
// out-of-band promotion.
func (api *testAPI) promoteToAdmin(t *testing.T, userID string) {
	t.Helper()
	require.NoError(t, api.users.UpdateRole(context.Background(), userID, types.RoleAdmin))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}
