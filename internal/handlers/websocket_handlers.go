package handlers

import (
	"net/http"

	"campushub/internal/auth"
	"campushub/internal/services"
	ws "campushub/internal/websocket"
	"campushub/pkg/logger"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Auth happens via token, not origin.
		return true
	},
}

type WebSocketHandlers struct {
	authService     *auth.Service
	chatService     *services.ChatService
	messageService  *services.MessageService
	presenceService *services.PresenceService
	hubManager      *ws.Manager
	events          *ws.EventHub
}

func NewWebSocketHandlers(authService *auth.Service, chatService *services.ChatService,
	messageService *services.MessageService, presenceService *services.PresenceService,
	hubManager *ws.Manager, events *ws.EventHub) *WebSocketHandlers {
	return &WebSocketHandlers{
		authService:     authService,
		chatService:     chatService,
		messageService:  messageService,
		presenceService: presenceService,
		hubManager:      hubManager,
		events:          events,
	}
}

// HandleWebSocket handles GET /ws/{chatID}?token=...
//
// Membership is checked before the upgrade, so a non-member never holds a
// socket on the chat's hub.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r, h.authService)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	chatID := pathPart(r, 1)
	if chatID == "" {
		http.Error(w, "chat ID required", http.StatusBadRequest)
		return
	}

	if _, err := h.chatService.GetChat(r.Context(), chatID, user.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade error: %v", err)
		return
	}

	client := ws.NewClient(h.events, conn, user.ID, chatID, h.messageService, h.presenceService)
	h.hubManager.RegisterClient(chatID, client)

	go client.SendRecentMessages()
	go client.WritePump()
	go client.ReadPump()
}
