package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/todostack/apiserver/internal/services"
	"github.com/todostack/apiserver/internal/store"
)

// Error codes surfaced to callers. Every failure a procedure can produce
// maps onto exactly one of these.
const (
	CodeValidation   = "validation_error"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInternal     = "internal_error"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

// validate checks request payloads against their struct tags before any
// handler logic runs.
var validate = validator.New()

// ErrorResponse is the failure payload returned by every procedure.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// SuccessResponse acknowledges procedures that return no resource.
type SuccessResponse struct {
	Success bool `json:"success"`
}

func userIDFromContext(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(contextSubjectKey).(string)
	if !ok || strings.TrimSpace(subject) == "" {
		return "", errors.New("missing subject")
	}
	return subject, nil
}

// WriteJSON writes value as the JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// WriteError writes an ErrorResponse with the given status and code.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{Code: code, Error: message})
}

// decodeRequest decodes the body into dst and validates it. A malformed
// body or a failed validation tag both count as validation errors.
func decodeRequest(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return errors.New("invalid field: " + strings.ToLower(fieldErrs[0].Field()))
		}
		return errors.New("invalid request")
	}
	return nil
}

// writeServiceError maps service and store failures onto the error
// taxonomy. Unknown errors become opaque 500s.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalid):
		WriteError(w, http.StatusBadRequest, CodeValidation, "invalid argument")
	case errors.Is(err, services.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	case errors.Is(err, services.ErrForbidden):
		WriteError(w, http.StatusForbidden, CodeForbidden, "forbidden")
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, http.StatusNotFound, CodeNotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		WriteError(w, http.StatusConflict, CodeConflict, "already exists")
	default:
		WriteError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

// Healthz reports process liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
