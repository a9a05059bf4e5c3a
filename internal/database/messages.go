package database

import (
	"context"
	"fmt"

	"campushub/internal/models"
)

// SaveMessage appends the message and refreshes the chat's last-message
// summary in a single transaction. The source behavior issued these as two
// independent writes; folding them removes the window where another client
// could observe one without the other.
func (db *PostgresDB) SaveMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	saved := *msg
	err = tx.QueryRow(ctx, `
		INSERT INTO messages (chat_id, sender_id, sender_name, sender_avatar, content, msg_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at`,
		msg.ChatID, msg.SenderID, msg.SenderName, msg.SenderAvatar, msg.Content, msg.Type,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE chats SET
			last_message_content = $2,
			last_message_sender_id = $3,
			last_message_sender_name = $4,
			last_message_at = $5,
			updated_at = $5
		WHERE id = $1`,
		msg.ChatID, msg.Content, msg.SenderID, msg.SenderName, saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update chat summary: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &saved, nil
}

// LoadMessages returns the newest messages in chronological order. Ties on
// the server timestamp break on id, which is monotonic by insertion.
func (db *PostgresDB) LoadMessages(ctx context.Context, chatID string, limit int) ([]*models.Message, error) {
	query := `
		SELECT id, chat_id, sender_id, sender_name, sender_avatar, content, msg_type, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := db.pool.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.SenderName,
			&msg.SenderAvatar, &msg.Content, &msg.Type, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to show oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
