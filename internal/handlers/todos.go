package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/todostack/apiserver/internal/rpc"
	"github.com/todostack/apiserver/internal/services"
	"github.com/todostack/apiserver/internal/store"
	"github.com/todostack/apiserver/types"
)

// TodoHandler provides the todos.* procedures. The owning user is always
// the authenticated caller; no procedure accepts a user id in its payload.
type TodoHandler struct {
	todoService *services.TodoService
}

func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// TodoProcedures registers the todos namespace on the RPC router. Every
// procedure requires authentication.
func TodoProcedures(r *rpc.Router, todoService *services.TodoService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewTodoHandler(todoService)

	register := func(name string, fn http.HandlerFunc) {
		r.Register("todos", name, authMiddleware(fn))
	}
	register("getTodos", handler.ListTodos)
	register("getTodo", handler.GetTodo)
	register("createTodo", handler.CreateTodo)
	register("updateTodo", handler.UpdateTodo)
	register("deleteTodo", handler.DeleteTodo)
	register("toggleTodo", handler.ToggleTodo)
}

// ListTodos returns every todo owned by the caller, newest first.
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	todos, err := h.todoService.List(r.Context(), callerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, todos)
}

// GetTodo returns one of the caller's todos, or an explicit null result
// when no owned todo matches.
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	var req TodoIDRequest
	if err := decodeRequest(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	todo, err := h.todoService.Get(r.Context(), req.ID, callerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteJSON(w, http.StatusOK, nil)
			return
		}
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	var req CreateTodoRequest
	if err := decodeRequest(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	todo, err := h.todoService.Create(r.Context(), callerID, req.Title, req.Description, req.Priority, req.DueDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, todo)
}

// UpdateTodo applies only the provided fields to one of the caller's todos.
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	var req UpdateTodoRequest
	if err := decodeRequest(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	todo, err := h.todoService.Update(r.Context(), req.ID, callerID, types.TodoPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	var req TodoIDRequest
	if err := decodeRequest(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if err := h.todoService.Delete(r.Context(), req.ID, callerID); err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// ToggleTodo flips the completion flag and returns the new id/flag pair.
func (h *TodoHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	var req TodoIDRequest
	if err := decodeRequest(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	completed, err := h.todoService.Toggle(r.Context(), req.ID, callerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, ToggleTodoResponse{ID: req.ID, Completed: completed})
}

type TodoIDRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

type CreateTodoRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description *string    `json:"description"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTodoRequest struct {
	ID          string     `json:"id" validate:"required,uuid"`
	Title       *string    `json:"title" validate:"omitempty,min=1"`
	Description *string    `json:"description"`
	Completed   *bool      `json:"completed"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
}

type ToggleTodoResponse struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
}
