package models

type EventType string

const (
	EventMessage        EventType = "message"
	EventHistory        EventType = "history"
	EventPresenceUpdate EventType = "presence_update"
	EventChatUpdated    EventType = "chat_updated"
	EventChatDeleted    EventType = "chat_deleted"
)

// WebSocketEvent is the single envelope pushed to connected clients, for both
// per-chat broadcasts and user-level directory notifications.
type WebSocketEvent struct {
	Type        EventType  `json:"type"`
	ChatID      string     `json:"chat_id,omitempty"`
	Message     *Message   `json:"message,omitempty"`
	Messages    []*Message `json:"messages,omitempty"`
	Chat        *Chat      `json:"chat,omitempty"`
	OnlineUsers []int      `json:"online_users,omitempty"`
	UserCount   int        `json:"user_count,omitempty"`
	Timestamp   string     `json:"timestamp,omitempty"`
}

// WebSocketInbound is what a connected client sends: a message for the chat
// the connection is subscribed to.
type WebSocketInbound struct {
	Content string      `json:"content"`
	Type    MessageType `json:"type,omitempty"`
}
