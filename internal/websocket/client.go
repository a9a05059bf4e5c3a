package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"campushub/internal/models"
	"campushub/internal/presence"
	"campushub/internal/services"
	"campushub/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// pongWait must exceed the heartbeat interval or healthy connections
	// would be dropped between pings.
	pongWait = 3 * presence.HeartbeatInterval
)

type Client struct {
	hub       *Hub
	events    *EventHub
	eventID   int64
	conn      *websocket.Conn
	send      chan []byte
	userID    int
	chatID    string
	sessionID string
	messages  *services.MessageService
	presence  *services.PresenceService
}

// NewClient prepares a connection for a chat. The hub field is attached by
// Manager.RegisterClient before any pump starts.
func NewClient(events *EventHub, conn *websocket.Conn, userID int, chatID string,
	messages *services.MessageService, presenceSvc *services.PresenceService) *Client {

	client := &Client{
		events:    events,
		conn:      conn,
		send:      make(chan []byte, 256),
		userID:    userID,
		chatID:    chatID,
		sessionID: uuid.NewString(),
		messages:  messages,
		presence:  presenceSvc,
	}

	// Connection established: mark online immediately and register for
	// directory events. The offline write happens in ReadPump's teardown,
	// which also covers ungraceful disconnects.
	client.presence.SetOnline(context.Background(), userID)
	client.eventID = events.Register(userID, client)
	logger.Debug("session %s opened: user %d chat %s", client.sessionID, userID, chatID)
	return client
}

// SendEvent queues a directory event for this connection. A full send
// buffer counts as a dead connection.
func (c *Client) SendEvent(event *models.WebSocketEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("send buffer full")
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.events.Unregister(c.userID, c.eventID)
		// Only flip to offline when this was the user's last connection;
		// another open tab keeps them online.
		if c.events.Connections(c.userID) == 0 {
			c.presence.SetOffline(context.Background(), c.userID)
		}
		c.hub.Unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		// Each pong doubles as a presence heartbeat, keeping last_seen
		// fresh for other viewers.
		c.presence.Heartbeat(context.Background(), c.userID)
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket error: %v", err)
			}
			break
		}

		var inbound models.WebSocketInbound
		if err := json.Unmarshal(raw, &inbound); err != nil {
			logger.Debug("Ignoring malformed frame from user %d: %v", c.userID, err)
			continue
		}

		msg, err := c.messages.Send(context.Background(), c.chatID, c.userID, inbound.Content, inbound.Type)
		if err != nil {
			logger.Debug("Rejected message from user %d: %v", c.userID, err)
			continue
		}

		event := models.WebSocketEvent{
			Type:      models.EventMessage,
			ChatID:    c.chatID,
			Message:   msg,
			Timestamp: msg.CreatedAt.Format(time.RFC3339),
		}
		if data, err := json.Marshal(event); err == nil {
			c.hub.Broadcast <- data
		} else {
			logger.Error("Error marshaling message: %v", err)
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(presence.HeartbeatInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendRecentMessages replays the chat's recent history to a newly connected
// client as a single event.
func (c *Client) SendRecentMessages() {
	history, err := c.messages.History(context.Background(), c.chatID, c.userID, 50)
	if err != nil {
		logger.Error("Error loading recent messages: %v", err)
		return
	}
	if len(history) == 0 {
		return
	}

	event := models.WebSocketEvent{
		Type:      models.EventHistory,
		ChatID:    c.chatID,
		Messages:  history,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if data, err := json.Marshal(event); err == nil {
		select {
		case c.send <- data:
		default:
		}
	}
}
