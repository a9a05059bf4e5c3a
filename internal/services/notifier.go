package services

import "campushub/internal/models"

// Notifier pushes directory-level events (chat created, renamed, membership
// changed, deleted) to a user's live connections. Delivery is best-effort;
// services never fail an operation because a push did not land.
type Notifier interface {
	NotifyUser(userID int, event *models.WebSocketEvent)
}

// NopNotifier is used where no fan-out layer is wired (tests, one-off tools).
type NopNotifier struct{}

func (NopNotifier) NotifyUser(int, *models.WebSocketEvent) {}
