// Package rpc implements a minimal procedure-call surface over HTTP.
// Procedures are addressed by a fully qualified "namespace.name" and the
// table is populated once at server assembly; dispatch is a single map
// lookup with no pattern matching or dynamic registration.
package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router holds the static name-to-procedure table.
type Router struct {
	procedures map[string]http.Handler
}

func NewRouter() *Router {
	return &Router{procedures: make(map[string]http.Handler)}
}

// Register adds a procedure under namespace.name. Handlers are expected to
// arrive with any required middleware already applied. Registering the same
// name twice is a programming error and panics at startup.
func (r *Router) Register(namespace, name string, handler http.Handler) {
	qualified := fmt.Sprintf("%s.%s", namespace, name)
	if _, exists := r.procedures[qualified]; exists {
		panic(fmt.Sprintf("rpc: procedure %q registered twice", qualified))
	}
	r.procedures[qualified] = handler
}

// Handler returns the procedure registered under the qualified name.
func (r *Router) Handler(qualified string) (http.Handler, bool) {
	handler, ok := r.procedures[qualified]
	return handler, ok
}

// Mount attaches the dispatch endpoint to a chi router. Every procedure is
// invoked as POST {prefix}/{procedure}.
func (r *Router) Mount(mux chi.Router) {
	mux.Post("/{procedure}", r.dispatch)
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	qualified := chi.URLParam(req, "procedure")
	handler, ok := r.Handler(qualified)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":  "not_found",
			"error": "unknown procedure",
		})
		return
	}
	handler.ServeHTTP(w, req)
}
