package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"campushub/internal/auth"
	"campushub/internal/models"
	"campushub/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps the services sentinel errors to HTTP statuses. The
// caller sees a single generic message per class; details stay in the logs.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrForbidden):
		http.Error(w, "permission denied", http.StatusForbidden)
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// userFromRequest resolves the caller from a bearer token, falling back to
// the token query parameter (the websocket endpoint cannot set headers).
func userFromRequest(r *http.Request, authService *auth.Service) (*models.User, error) {
	tokenStr := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		tokenStr = strings.TrimPrefix(h, "Bearer ")
	}
	if tokenStr == "" {
		tokenStr = r.URL.Query().Get("token")
	}
	if tokenStr == "" {
		return nil, fmt.Errorf("missing token")
	}

	return authService.GetUserFromToken(r.Context(), tokenStr)
}

// pathPart returns the idx-th segment of the URL path, or "".
func pathPart(r *http.Request, idx int) string {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if idx < 0 || idx >= len(parts) {
		return ""
	}
	return parts[idx]
}
