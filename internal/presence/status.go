// Package presence derives the effective online status other users see from
// a stored presence record. A record can claim online but is treated as
// offline once its last heartbeat is older than the staleness window.
package presence

import (
	"fmt"
	"time"

	"campushub/internal/models"
)

const (
	// StaleAfter is how long a stored online flag stays believable without a
	// fresh heartbeat.
	StaleAfter = 120 * time.Second

	// HeartbeatInterval is how often connected clients refresh last_seen.
	// Kept well under StaleAfter so one missed beat does not flip status.
	HeartbeatInterval = 30 * time.Second
)

// Effective reports whether the record should be shown as online right now.
func Effective(rec *models.PresenceRecord, now time.Time) bool {
	return rec != nil && rec.IsOnline && now.Sub(rec.LastSeen) < StaleAfter
}

// Label renders the human-readable status with fixed thresholds:
// "Online", then "Just now" under a minute, minutes under an hour, hours
// under a day, days beyond that.
func Label(rec *models.PresenceRecord, now time.Time) string {
	if Effective(rec, now) {
		return "Online"
	}
	if rec == nil || rec.LastSeen.IsZero() {
		return "Offline"
	}
	d := now.Sub(rec.LastSeen)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// Status combines Effective and Label into the API shape.
func Status(userID int, rec *models.PresenceRecord, now time.Time) *models.PresenceStatus {
	return &models.PresenceStatus{
		UserID:   userID,
		IsOnline: Effective(rec, now),
		Label:    Label(rec, now),
	}
}
