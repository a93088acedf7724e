package handlers

import (
	"net/http"

	"github.com/todostack/apiserver/internal/rpc"
	"github.com/todostack/apiserver/internal/services"
)

// AdminHandler provides the admin.* procedures. The role check itself
// lives in the service guard, so these handlers only shape input and output.
type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// AdminProcedures registers the admin namespace on the RPC router. Every
// procedure requires authentication; the admin role is enforced per call
// by the service.
func AdminProcedures(r *rpc.Router, adminService *services.AdminService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewAdminHandler(adminService)

	register := func(name string, fn http.HandlerFunc) {
		r.Register("admin", name, authMiddleware(fn))
	}
	register("getAllUsers", handler.GetAllUsers)
	register("getUserWithTodos", handler.GetUserWithTodos)
	register("updateUserRole", handler.UpdateUserRole)
	register("deleteTodoAdmin", handler.DeleteTodo)
	register("getSystemStats", handler.GetSystemStats)
}

// GetAllUsers returns every user with per-user todo counts.
func (h *AdminHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	users, err := h.adminService.ListUsers(r.Context(), callerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, users)
}

// GetUserWithTodos returns the target user's account and all owned todos.
func (h *AdminHandler) GetUserWithTodos(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	var req TargetUserRequest
	if err := decodeRequest(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	result, err := h.adminService.GetUserWithTodos(r.Context(), callerID, req.TargetUserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// UpdateUserRole changes the target's role. Self-targeting is forbidden.
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	var req UpdateUserRoleRequest
	if err := decodeRequest(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	user, err := h.adminService.UpdateUserRole(r.Context(), callerID, req.TargetUserID, req.NewRole)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, user)
}

// DeleteTodo removes any todo by id regardless of owner.
func (h *AdminHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	var req DeleteTodoAdminRequest
	if err := decodeRequest(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	if err := h.adminService.DeleteTodo(r.Context(), callerID, req.TodoID); err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// GetSystemStats returns system-wide aggregate counts.
func (h *AdminHandler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	callerID, err := userIDFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
		return
	}

	stats, err := h.adminService.Stats(r.Context(), callerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

type TargetUserRequest struct {
	TargetUserID string `json:"target_user_id" validate:"required,uuid"`
}

type UpdateUserRoleRequest struct {
	TargetUserID string `json:"target_user_id" validate:"required,uuid"`
	NewRole      string `json:"new_role" validate:"required,oneof=user admin"`
}

type DeleteTodoAdminRequest struct {
	TodoID string `json:"todo_id" validate:"required,uuid"`
}
