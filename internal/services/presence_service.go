package services

import (
	"context"
	"errors"
	"time"

	"campushub/internal/database"
	"campushub/internal/models"
	"campushub/internal/presence"
	"campushub/pkg/logger"
)

// PresenceService writes connect/disconnect/heartbeat state and derives the
// effective status other users see. Write failures are logged, not surfaced:
// a missed write just makes the user look stale to others after the window.
type PresenceService struct {
	db database.Database
}

func NewPresenceService(db database.Database) *PresenceService {
	return &PresenceService{db: db}
}

func (s *PresenceService) SetOnline(ctx context.Context, userID int) {
	if err := s.db.SetPresence(ctx, userID, true); err != nil {
		logger.Error("presence write failed for user %d: %v", userID, err)
	}
}

func (s *PresenceService) SetOffline(ctx context.Context, userID int) {
	if err := s.db.SetPresence(ctx, userID, false); err != nil {
		logger.Error("presence write failed for user %d: %v", userID, err)
	}
}

// Heartbeat re-asserts online so last_seen stays fresh for other viewers.
func (s *PresenceService) Heartbeat(ctx context.Context, userID int) {
	s.SetOnline(ctx, userID)
}

// Status combines the stored flag with the staleness window.
func (s *PresenceService) Status(ctx context.Context, userID int) (*models.PresenceStatus, error) {
	rec, err := s.db.GetPresence(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return presence.Status(userID, nil, time.Now()), nil
		}
		return nil, err
	}
	return presence.Status(userID, rec, time.Now()), nil
}

// RunJanitor periodically flips long-stale online flags to offline. The
// read path already applies the staleness window; this keeps the stored
// records from lying forever after a crashed client.
func (s *PresenceService) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := s.db.MarkStaleOffline(ctx, presence.StaleAfter)
			if err != nil {
				logger.Error("presence janitor sweep failed: %v", err)
				continue
			}
			if n > 0 {
				logger.Debug("presence janitor marked %d stale records offline", n)
			}
		}
	}
}
