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

type LearningHandlers struct {
	authService     *auth.Service
	learningService *services.LearningService
}

func NewLearningHandlers(authService *auth.Service, learningService *services.LearningService) *LearningHandlers {
	return &LearningHandlers{
		authService:     authService,
		learningService: learningService,
	}
}

// ListModules handles GET /learning
func (h *LearningHandlers) ListModules(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	modules, err := h.learningService.ListModules(r.Context(), user.ID)
	if err != nil {
		logger.Error("List modules error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if modules == nil {
		modules = []*models.LearningModule{}
	}
	writeJSON(w, http.StatusOK, modules)
}

// GetModule handles GET /learning/{id}
func (h *LearningHandlers) GetModule(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	moduleID, err := strconv.Atoi(pathPart(r, 1))
	if err != nil {
		http.Error(w, "invalid module ID", http.StatusBadRequest)
		return
	}

	mod, err := h.learningService.GetModule(r.Context(), moduleID, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mod)
}

// RecordProgress handles PUT /learning/{id}/progress
func (h *LearningHandlers) RecordProgress(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	moduleID, err := strconv.Atoi(pathPart(r, 1))
	if err != nil {
		http.Error(w, "invalid module ID", http.StatusBadRequest)
		return
	}

	var req models.ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	progress, err := h.learningService.RecordProgress(r.Context(), user.ID, moduleID, req.LessonsDone)
	if err != nil {
		logger.Error("Record progress error: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// CreateModule handles POST /learning
func (h *LearningHandlers) CreateModule(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.UpsertModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	mod, err := h.learningService.CreateModule(r.Context(), user.ID, &req)
	if err != nil {
		logger.Error("Create module error: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mod)
}

// UpdateModule handles PUT /learning/{id}
func (h *LearningHandlers) UpdateModule(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	moduleID, err := strconv.Atoi(pathPart(r, 1))
	if err != nil {
		http.Error(w, "invalid module ID", http.StatusBadRequest)
		return
	}

	var req models.UpsertModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	mod, err := h.learningService.UpdateModule(r.Context(), user.ID, moduleID, &req)
	if err != nil {
		logger.Error("Update module error: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mod)
}

// DeleteModule handles DELETE /learning/{id}
func (h *LearningHandlers) DeleteModule(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	moduleID, err := strconv.Atoi(pathPart(r, 1))
	if err != nil {
		http.Error(w, "invalid module ID", http.StatusBadRequest)
		return
	}

	if err := h.learningService.DeleteModule(r.Context(), user.ID, moduleID); err != nil {
		logger.Error("Delete module error: %v", err)
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("module deleted"))
}
