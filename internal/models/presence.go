package models

import "time"

type PresenceRecord struct {
	UserID   int       `json:"user_id"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

// PresenceStatus is the derived view other users see: the stored flag
// combined with a staleness window, plus a human-readable label.
type PresenceStatus struct {
	UserID   int    `json:"user_id"`
	IsOnline bool   `json:"is_online"`
	Label    string `json:"label"`
}
