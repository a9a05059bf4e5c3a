package database

import (
	"context"
	"time"

	"campushub/internal/models"
)

func (db *PostgresDB) SetPresence(ctx context.Context, userID int, isOnline bool) error {
	_, err := db.pool.Exec(ctx, `
		INSERT INTO presence (user_id, is_online, last_seen)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET is_online = $2, last_seen = NOW()`,
		userID, isOnline)
	return err
}

func (db *PostgresDB) GetPresence(ctx context.Context, userID int) (*models.PresenceRecord, error) {
	rec := &models.PresenceRecord{}
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, is_online, last_seen FROM presence WHERE user_id = $1`,
		userID).Scan(&rec.UserID, &rec.IsOnline, &rec.LastSeen)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return rec, nil
}

func (db *PostgresDB) MarkStaleOffline(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := db.pool.Exec(ctx, `
		UPDATE presence SET is_online = FALSE
		WHERE is_online AND last_seen < NOW() - make_interval(secs => $1)`,
		olderThan.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
