package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"campushub/internal/models"
)

func TestManagerRegisterAfterIdleSweep(t *testing.T) {
	m := NewManager()

	m.mutex.Lock()
	first := m.hubLocked("g-1")
	m.mutex.Unlock()

	// The same teardown the idle sweep performs: shut the hub down and drop
	// it from the map under the lock.
	m.mutex.Lock()
	first.ShutdownHub()
	delete(m.hubs, "g-1")
	m.mutex.Unlock()

	client := &Client{send: make(chan []byte, 8), userID: 7, chatID: "g-1"}
	done := make(chan struct{})
	go func() {
		m.RegisterClient("g-1", client)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("register blocked after the hub was swept")
	}

	if client.hub == nil || client.hub == first {
		t.Error("client should land on a fresh hub, not the swept one")
	}
}

func TestManagerBroadcastReachesClient(t *testing.T) {
	m := NewManager()
	client := &Client{send: make(chan []byte, 8), userID: 7, chatID: "g-2"}
	m.RegisterClient("g-2", client)

	payload, _ := json.Marshal(models.WebSocketEvent{Type: models.EventMessage, ChatID: "g-2"})
	m.BroadcastToChat("g-2", payload)

	// Registration pushes a presence update first; drain until the broadcast
	// frame arrives.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msg := <-client.send:
			var event models.WebSocketEvent
			if err := json.Unmarshal(msg, &event); err != nil {
				t.Fatalf("malformed frame: %v", err)
			}
			if event.Type == models.EventMessage {
				return
			}
		case <-deadline:
			t.Fatal("broadcast frame never arrived")
		}
	}
}
