package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"campushub/internal/auth"
	"campushub/internal/models"
	"campushub/internal/services"
	"campushub/pkg/logger"
)

type UserHandlers struct {
	authService     *auth.Service
	userService     *services.UserService
	searchService   *services.SearchService
	presenceService *services.PresenceService
}

func NewUserHandlers(authService *auth.Service, userService *services.UserService,
	searchService *services.SearchService, presenceService *services.PresenceService) *UserHandlers {
	return &UserHandlers{
		authService:     authService,
		userService:     userService,
		searchService:   searchService,
		presenceService: presenceService,
	}
}

// SearchUsers handles GET /users/search?q=...
func (h *UserHandlers) SearchUsers(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	results, err := h.searchService.SearchUsers(r.Context(), r.URL.Query().Get("q"), user.ID)
	if err != nil {
		logger.Error("Search error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []*models.User{}
	}
	writeJSON(w, http.StatusOK, results)
}

// GetUser handles GET /users/{id}
func (h *UserHandlers) GetUser(w http.ResponseWriter, r *http.Request) {
	if _, err := userFromRequest(r, h.authService); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(pathPart(r, 1))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	target, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

// GetPresence handles GET /users/{id}/presence
func (h *UserHandlers) GetPresence(w http.ResponseWriter, r *http.Request) {
	if _, err := userFromRequest(r, h.authService); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(pathPart(r, 1))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	status, err := h.presenceService.Status(r.Context(), id)
	if err != nil {
		logger.Error("Presence read error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// UpdateProfile handles PUT /users/me
func (h *UserHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, &req)
	if err != nil {
		logger.Error("Profile update error: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
