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

type FeedHandlers struct {
	authService *auth.Service
	feedService *services.FeedService
}

func NewFeedHandlers(authService *auth.Service, feedService *services.FeedService) *FeedHandlers {
	return &FeedHandlers{
		authService: authService,
		feedService: feedService,
	}
}

// ListPosts handles GET /posts
func (h *FeedHandlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	posts, err := h.feedService.ListPosts(r.Context(), user.ID, limit)
	if err != nil {
		logger.Error("List posts error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// CreatePost handles POST /posts
func (h *FeedHandlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	post, err := h.feedService.CreatePost(r.Context(), user.ID, &req)
	if err != nil {
		logger.Error("Create post error: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// ToggleLike handles POST /posts/{id}/like
func (h *FeedHandlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := strconv.ParseInt(pathPart(r, 1), 10, 64)
	if err != nil {
		http.Error(w, "invalid post ID", http.StatusBadRequest)
		return
	}

	result, err := h.feedService.ToggleLike(r.Context(), postID, user.ID)
	if err != nil {
		logger.Error("Toggle like error: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DeletePost handles DELETE /posts/{id}
func (h *FeedHandlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := strconv.ParseInt(pathPart(r, 1), 10, 64)
	if err != nil {
		http.Error(w, "invalid post ID", http.StatusBadRequest)
		return
	}

	if err := h.feedService.DeletePost(r.Context(), postID, user.ID); err != nil {
		logger.Error("Delete post error: %v", err)
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("post deleted"))
}
