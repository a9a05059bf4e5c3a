package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"campushub/internal/models"
	"campushub/pkg/logger"
)

// Hub fans messages out to every client subscribed to one chat. It replaces
// the per-path listener delivery of the hosted tree store the platform
// originally leaned on.
type Hub struct {
	chatID      string
	clients     map[*Client]bool
	Broadcast   chan []byte
	Register    chan *Client
	Unregister  chan *Client
	onlineUsers map[int]int // userID -> live connection count
	shutdown    chan bool
}

func NewHub(chatID string) *Hub {
	return &Hub{
		chatID:      chatID,
		clients:     make(map[*Client]bool),
		Broadcast:   make(chan []byte),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		onlineUsers: make(map[int]int),
		shutdown:    make(chan bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.shutdown:
			for client := range h.clients {
				close(client.send)
			}
			return

		case client := <-h.Register:
			h.clients[client] = true
			h.onlineUsers[client.userID]++
			h.broadcastPresenceUpdate()
			logger.Info("User %d joined chat %s", client.userID, h.chatID)

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.dropOnline(client.userID)
				h.broadcastPresenceUpdate()
				logger.Info("User %d left chat %s", client.userID, h.chatID)
			}

		case message := <-h.Broadcast:
			h.broadcastToAll(message)
		}
	}
}

func (h *Hub) broadcastToAll(message []byte) {
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
			h.dropOnline(client.userID)
		}
	}
}

func (h *Hub) dropOnline(userID int) {
	if h.onlineUsers[userID] <= 1 {
		delete(h.onlineUsers, userID)
	} else {
		h.onlineUsers[userID]--
	}
}

func (h *Hub) broadcastPresenceUpdate() {
	ids := make([]int, 0, len(h.onlineUsers))
	for id := range h.onlineUsers {
		ids = append(ids, id)
	}

	presenceMsg := models.WebSocketEvent{
		Type:        models.EventPresenceUpdate,
		ChatID:      h.chatID,
		OnlineUsers: ids,
		UserCount:   len(ids),
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	if data, err := json.Marshal(presenceMsg); err == nil {
		h.broadcastToAll(data)
	} else {
		logger.Error("Error marshaling presence update: %v", err)
	}
}

func (h *Hub) GetOnlineUserCount() int {
	return len(h.onlineUsers)
}

func (h *Hub) ShutdownHub() {
	select {
	case h.shutdown <- true:
	default:
	}
}

// Hub Manager
type Manager struct {
	hubs  map[string]*Hub
	mutex sync.Mutex
}

func NewManager() *Manager {
	manager := &Manager{
		hubs: make(map[string]*Hub),
	}

	go manager.cleanupUnusedHubs()
	return manager
}

// hubLocked returns the chat's hub, starting one if needed. Callers must
// hold the manager mutex.
func (m *Manager) hubLocked(chatID string) *Hub {
	hub, exists := m.hubs[chatID]
	if !exists {
		hub = NewHub(chatID)
		m.hubs[chatID] = hub
		go hub.Run()
	}
	return hub
}

// RegisterClient attaches the client to its chat's hub. Lookup and the
// register send happen under the manager lock, so the idle sweep cannot shut
// the hub down in between and strand the send.
func (m *Manager) RegisterClient(chatID string, client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	hub := m.hubLocked(chatID)
	client.hub = hub
	hub.Register <- client
}

// BroadcastToChat delivers a raw frame to the chat's live subscribers.
func (m *Manager) BroadcastToChat(chatID string, message []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.hubLocked(chatID).Broadcast <- message
}

func (m *Manager) cleanupUnusedHubs() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.mutex.Lock()
		for chatID, hub := range m.hubs {
			if hub.GetOnlineUserCount() == 0 {
				hub.ShutdownHub()
				delete(m.hubs, chatID)
				logger.Debug("Cleaned up unused hub for chat %s", chatID)
			}
		}
		m.mutex.Unlock()
	}
}
