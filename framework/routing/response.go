package routing

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ── JSON responses ────────────────────────────────────────────────────────────

type envelope map[string]any

// JSON sends a JSON response.
//
//	routing.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends {"message": message} with status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, envelope{"message": message})
}

// ── Error handlers ────────────────────────────────────────────────────────────

// ErrorHandler renders routing failures and recovered panics as JSON.
// With DisplayDetails the panic value is included under "error".
type ErrorHandler struct {
	DisplayDetails bool
}

// NotFound sends 404.
func (h ErrorHandler) NotFound(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusNotFound, "Not found.")
}

// MethodNotAllowed sends 405.
func (h ErrorHandler) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusMethodNotAllowed, "Method not allowed.")
}

// Recover turns a panic in next into a 500 JSON response.
func (h ErrorHandler) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			body := envelope{"message": "Server Error."}
			if h.DisplayDetails {
				body["error"] = fmt.Sprint(rec)
			}
			JSON(w, http.StatusInternalServerError, body)
		}()
		next.ServeHTTP(w, r)
	})
}

// Use installs h on r: JSON 404/405 handlers and the panic middleware.
// It must run before any route is added to r.
func (h ErrorHandler) Use(r *Router) {
	r.mux.Use(h.Recover)
	r.mux.NotFound(h.NotFound)
	r.mux.MethodNotAllowed(h.MethodNotAllowed)
}
