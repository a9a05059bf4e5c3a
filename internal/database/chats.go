package database

import (
	"context"
	"fmt"
	"time"

	"campushub/internal/models"
)

const chatColumns = `id, chat_type, name, COALESCE(created_by, 0),
	last_message_content, last_message_sender_id, last_message_sender_name, last_message_at,
	created_at, updated_at`

func scanChat(row interface{ Scan(...any) error }) (*models.Chat, error) {
	chat := &models.Chat{}
	var lmContent, lmSenderName *string
	var lmSenderID *int
	var lmSentAt *time.Time
	err := row.Scan(
		&chat.ID, &chat.Type, &chat.Name, &chat.CreatedBy,
		&lmContent, &lmSenderID, &lmSenderName, &lmSentAt,
		&chat.CreatedAt, &chat.UpdatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if lmContent != nil {
		chat.LastMessage = &models.LastMessage{Content: *lmContent}
		if lmSenderID != nil {
			chat.LastMessage.SenderID = *lmSenderID
		}
		if lmSenderName != nil {
			chat.LastMessage.SenderName = *lmSenderName
		}
		if lmSentAt != nil {
			chat.LastMessage.SentAt = *lmSentAt
		}
	}
	return chat, nil
}

func (db *PostgresDB) GetChatByID(ctx context.Context, id string) (*models.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE id = $1`
	chat, err := scanChat(db.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	members, err := db.loadMembers(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	chat.Members = members[id]
	return chat, nil
}

func (db *PostgresDB) ListUserChats(ctx context.Context, userID int) ([]*models.Chat, error) {
	query := `
		SELECT ` + chatColumns + `
		FROM chats c
		JOIN chat_members m ON m.chat_id = c.id AND m.user_id = $1
		ORDER BY c.updated_at DESC`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*models.Chat
	var ids []string
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
		ids = append(ids, chat.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return chats, nil
	}

	members, err := db.loadMembers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, chat := range chats {
		chat.Members = members[chat.ID]
	}
	return chats, nil
}

func (db *PostgresDB) loadMembers(ctx context.Context, chatIDs []string) (map[string][]*models.ChatMember, error) {
	query := `
		SELECT chat_id, user_id, display_name, avatar_url, is_admin, joined_at
		FROM chat_members
		WHERE chat_id = ANY($1)
		ORDER BY joined_at, user_id`

	rows, err := db.pool.Query(ctx, query, chatIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]*models.ChatMember)
	for rows.Next() {
		m := &models.ChatMember{}
		if err := rows.Scan(&m.ChatID, &m.UserID, &m.DisplayName, &m.AvatarURL, &m.IsAdmin, &m.JoinedAt); err != nil {
			return nil, err
		}
		out[m.ChatID] = append(out[m.ChatID], m)
	}
	return out, rows.Err()
}

func (db *PostgresDB) CreateIndividualChat(ctx context.Context, id string, a, b *models.User) (*models.Chat, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// The canonical id makes concurrent creation from both sides converge:
	// the loser of the race hits the conflict and keeps the existing record.
	_, err = tx.Exec(ctx, `
		INSERT INTO chats (id, chat_type, created_by, created_at, updated_at)
		VALUES ($1, 'individual', $2, NOW(), NOW())
		ON CONFLICT (id) DO NOTHING`, id, a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	for _, u := range []*models.User{a, b} {
		_, err = tx.Exec(ctx, `
			INSERT INTO chat_members (chat_id, user_id, display_name, avatar_url, joined_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (chat_id, user_id) DO NOTHING`,
			id, u.ID, u.DisplayName, u.AvatarURL)
		if err != nil {
			return nil, fmt.Errorf("failed to add participant %d: %w", u.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return db.GetChatByID(ctx, id)
}

func (db *PostgresDB) CreateGroupChat(ctx context.Context, id, name string, creator *models.User, members []*models.User) (*models.Chat, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO chats (id, chat_type, name, created_by, created_at, updated_at)
		VALUES ($1, 'group', $2, $3, NOW(), NOW())`, id, name, creator.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	insert := func(u *models.User, isAdmin bool) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO chat_members (chat_id, user_id, display_name, avatar_url, is_admin, joined_at)
			VALUES ($1, $2, $3, $4, $5, NOW())`,
			id, u.ID, u.DisplayName, u.AvatarURL, isAdmin)
		return err
	}
	if err := insert(creator, true); err != nil {
		return nil, fmt.Errorf("failed to add creator: %w", err)
	}
	for _, u := range members {
		if err := insert(u, false); err != nil {
			return nil, fmt.Errorf("failed to add member %d: %w", u.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return db.GetChatByID(ctx, id)
}

func (db *PostgresDB) RenameChat(ctx context.Context, chatID, name string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE chats SET name = $2, updated_at = NOW() WHERE id = $1`, chatID, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *PostgresDB) GetMember(ctx context.Context, chatID string, userID int) (*models.ChatMember, error) {
	m := &models.ChatMember{}
	err := db.pool.QueryRow(ctx, `
		SELECT chat_id, user_id, display_name, avatar_url, is_admin, joined_at
		FROM chat_members WHERE chat_id = $1 AND user_id = $2`,
		chatID, userID).Scan(&m.ChatID, &m.UserID, &m.DisplayName, &m.AvatarURL, &m.IsAdmin, &m.JoinedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return m, nil
}

func (db *PostgresDB) RemoveMember(ctx context.Context, chatID string, userID int) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM chat_members WHERE chat_id = $1 AND user_id = $2`, chatID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(ctx,
		`UPDATE chats SET updated_at = NOW() WHERE id = $1`, chatID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (db *PostgresDB) SetAdmin(ctx context.Context, chatID string, userID int, isAdmin bool) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE chat_members SET is_admin = $3 WHERE chat_id = $1 AND user_id = $2`,
		chatID, userID, isAdmin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *PostgresDB) LeaveChat(ctx context.Context, chatID string, userID, promoteID int) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM chat_members WHERE chat_id = $1 AND user_id = $2`, chatID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if promoteID != 0 {
		tag, err := tx.Exec(ctx,
			`UPDATE chat_members SET is_admin = TRUE WHERE chat_id = $1 AND user_id = $2`,
			chatID, promoteID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE chats SET updated_at = NOW() WHERE id = $1`, chatID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (db *PostgresDB) DeleteChat(ctx context.Context, chatID string) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Membership rows and messages cascade from the chats FK, but delete
	// explicitly so the intent survives schema changes.
	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE chat_id = $1`, chatID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM chat_members WHERE chat_id = $1`, chatID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM chats WHERE id = $1`, chatID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
