package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"campushub/internal/auth"
	"campushub/internal/models"
	"campushub/internal/services"
	ws "campushub/internal/websocket"
	"campushub/pkg/logger"
)

type ChatHandlers struct {
	authService    *auth.Service
	chatService    *services.ChatService
	messageService *services.MessageService
	hubManager     *ws.Manager
}

func NewChatHandlers(authService *auth.Service, chatService *services.ChatService,
	messageService *services.MessageService, hubManager *ws.Manager) *ChatHandlers {
	return &ChatHandlers{
		authService:    authService,
		chatService:    chatService,
		messageService: messageService,
		hubManager:     hubManager,
	}
}

// ListChats handles GET /chats
func (h *ChatHandlers) ListChats(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	chats, err := h.chatService.ListUserChats(r.Context(), user.ID)
	if err != nil {
		logger.Error("List chats error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if chats == nil {
		chats = []*models.Chat{}
	}
	writeJSON(w, http.StatusOK, chats)
}

// CreateIndividualChat handles POST /chats/individual
func (h *ChatHandlers) CreateIndividualChat(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateIndividualChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	chat, err := h.chatService.GetOrCreateIndividualChat(r.Context(), user.ID, req.OtherID)
	if err != nil {
		logger.Error("Create individual chat error: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

// CreateGroupChat handles POST /chats/group
func (h *ChatHandlers) CreateGroupChat(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreateGroupChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	chat, err := h.chatService.CreateGroupChat(r.Context(), user.ID, &req)
	if err != nil {
		logger.Error("Create group chat error: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, chat)
}

// GetChat handles GET /chats/{id}
func (h *ChatHandlers) GetChat(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	chat, err := h.chatService.GetChat(r.Context(), pathPart(r, 1), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

// RenameGroup handles PUT /chats/{id}/name
func (h *ChatHandlers) RenameGroup(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.RenameGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	chat, err := h.chatService.RenameGroup(r.Context(), pathPart(r, 1), user.ID, req.Name)
	if err != nil {
		logger.Error("Rename group error: %v", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

// RemoveMember handles DELETE /chats/{id}/members/{uid}
func (h *ChatHandlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	targetID, err := strconv.Atoi(pathPart(r, 3))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.chatService.RemoveMember(r.Context(), pathPart(r, 1), user.ID, targetID); err != nil {
		logger.Error("Remove member error: %v", err)
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("member removed"))
}

// ToggleAdmin handles POST /chats/{id}/admins/{uid}
func (h *ChatHandlers) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	targetID, err := strconv.Atoi(pathPart(r, 3))
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.chatService.ToggleAdmin(r.Context(), pathPart(r, 1), user.ID, targetID); err != nil {
		logger.Error("Toggle admin error: %v", err)
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("admin flag toggled"))
}

// LeaveGroup handles DELETE /chats/{id}/leave
func (h *ChatHandlers) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.chatService.LeaveGroup(r.Context(), pathPart(r, 1), user.ID); err != nil {
		logger.Error("Leave group error: %v", err)
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("left chat successfully"))
}

// DeleteChat handles DELETE /chats/{id}
func (h *ChatHandlers) DeleteChat(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.chatService.DeleteIndividualChat(r.Context(), pathPart(r, 1), user.ID); err != nil {
		logger.Error("Delete chat error: %v", err)
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("chat deleted"))
}

// GetMessages handles GET /chats/{id}/messages
func (h *ChatHandlers) GetMessages(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	messages, err := h.messageService.History(r.Context(), pathPart(r, 1), user.ID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

// SendMessage handles POST /chats/{id}/messages. The saved message is also
// broadcast to the chat's live subscribers, mirroring the websocket path.
func (h *ChatHandlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	chatID := pathPart(r, 1)
	msg, err := h.messageService.Send(r.Context(), chatID, user.ID, req.Content, req.Type)
	if err != nil {
		logger.Error("Send message error: %v", err)
		writeServiceError(w, err)
		return
	}

	event := models.WebSocketEvent{
		Type:      models.EventMessage,
		ChatID:    chatID,
		Message:   msg,
		Timestamp: msg.CreatedAt.Format(time.RFC3339),
	}
	if data, err := json.Marshal(event); err == nil {
		h.hubManager.BroadcastToChat(chatID, data)
	}

	writeJSON(w, http.StatusCreated, msg)
}
