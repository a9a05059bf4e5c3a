package websocket

import (
	"sync"

	"campushub/internal/models"
	"campushub/pkg/logger"
)

// EventSender is the minimal interface the event hub needs from a
// connection: the ability to push one event to the connected client.
type EventSender interface {
	SendEvent(*models.WebSocketEvent) error
}

// EventHub maps user ids to their live connections so chat-directory changes
// (created, renamed, membership changed, deleted) reach every endpoint the
// user has open, not just the chat they are currently viewing.
type EventHub struct {
	mu     sync.RWMutex
	conns  map[int]map[int64]EventSender
	nextID int64
}

func NewEventHub() *EventHub {
	return &EventHub{conns: make(map[int]map[int64]EventSender)}
}

// Register adds a connection for the user and returns an id used to
// unregister it on teardown.
func (h *EventHub) Register(userID int, s EventSender) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[userID]; !ok {
		h.conns[userID] = make(map[int64]EventSender)
	}

	h.nextID++
	id := h.nextID
	h.conns[userID][id] = s
	return id
}

func (h *EventHub) Unregister(userID int, id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.conns[userID]; ok {
		delete(conns, id)
		if len(conns) == 0 {
			delete(h.conns, userID)
		}
	}
}

// NotifyUser pushes the event to all of the user's connections, best-effort.
// Connections that fail to accept the event are pruned so broken endpoints
// do not linger. An offline user simply receives nothing.
func (h *EventHub) NotifyUser(userID int, event *models.WebSocketEvent) {
	h.mu.RLock()
	conns, ok := h.conns[userID]
	senders := make(map[int64]EventSender, len(conns))
	for id, s := range conns {
		senders[id] = s
	}
	h.mu.RUnlock()

	if !ok || len(senders) == 0 {
		return
	}

	var failedIDs []int64
	for id, s := range senders {
		if err := s.SendEvent(event); err != nil {
			failedIDs = append(failedIDs, id)
		}
	}

	for _, id := range failedIDs {
		h.Unregister(userID, id)
	}
	if len(failedIDs) > 0 {
		logger.Debug("pruned %d dead connections for user %d", len(failedIDs), userID)
	}
}

// Connections reports how many live connections the user has.
func (h *EventHub) Connections(userID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}
