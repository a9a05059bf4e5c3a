package presence

import (
	"testing"
	"time"

	"campushub/internal/models"
)

func record(online bool, lastSeen time.Time) *models.PresenceRecord {
	return &models.PresenceRecord{UserID: 1, IsOnline: online, LastSeen: lastSeen}
}

func TestEffectiveWithinWindow(t *testing.T) {
	now := time.Now()
	rec := record(true, now.Add(-119*time.Second))
	if !Effective(rec, now) {
		t.Fatalf("expected online 119s after last heartbeat")
	}
	if Label(rec, now) != "Online" {
		t.Fatalf("expected Online label, got %q", Label(rec, now))
	}
}

func TestEffectiveStale(t *testing.T) {
	now := time.Now()
	rec := record(true, now.Add(-121*time.Second))
	if Effective(rec, now) {
		t.Fatalf("expected offline 121s after last heartbeat")
	}
	if got := Label(rec, now); got != "2m ago" {
		t.Fatalf("expected minutes label for stale record, got %q", got)
	}
}

func TestEffectiveOfflineFlag(t *testing.T) {
	now := time.Now()
	if Effective(record(false, now), now) {
		t.Fatalf("stored offline flag must win even with fresh last_seen")
	}
}

func TestLabelThresholds(t *testing.T) {
	now := time.Now()
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{5 * time.Minute, "5m ago"},
		{2 * time.Hour, "2h ago"},
		{3 * 24 * time.Hour, "3d ago"},
	}
	for _, c := range cases {
		rec := record(false, now.Add(-c.ago))
		if got := Label(rec, now); got != c.want {
			t.Errorf("label for %v ago: got %q, want %q", c.ago, got, c.want)
		}
	}
}

func TestLabelNeverSeen(t *testing.T) {
	if got := Label(nil, time.Now()); got != "Offline" {
		t.Fatalf("expected Offline for unknown user, got %q", got)
	}
}
