package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campushub/internal/database"
	"campushub/internal/models"
)

const defaultHistoryLimit = 50

// MessageService validates and appends messages. Messages are immutable once
// written; they disappear only when their chat is deleted.
type MessageService struct {
	db database.Database
}

func NewMessageService(db database.Database) *MessageService {
	return &MessageService{db: db}
}

// Send rejects empty content before touching the database, verifies the
// sender belongs to the chat, and appends the message together with the
// chat's last-message summary. The sender snapshot is refreshed from the
// live user record on every send.
func (s *MessageService) Send(ctx context.Context, chatID string, senderID int, content string, msgType models.MessageType) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content is empty", ErrValidation)
	}
	switch msgType {
	case "":
		msgType = models.MessageTypeText
	case models.MessageTypeText, models.MessageTypeImage, models.MessageTypeFile:
	default:
		return nil, fmt.Errorf("%w: unknown message type %q", ErrValidation, msgType)
	}

	if _, err := s.db.GetMember(ctx, chatID, senderID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: not a participant", ErrForbidden)
		}
		return nil, err
	}

	sender, err := s.db.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sender profile: %w", err)
	}

	return s.db.SaveMessage(ctx, &models.Message{
		ChatID:       chatID,
		SenderID:     senderID,
		SenderName:   sender.DisplayName,
		SenderAvatar: sender.AvatarURL,
		Content:      content,
		Type:         msgType,
	})
}

// History returns up to limit recent messages in chronological order, gated
// on membership.
func (s *MessageService) History(ctx context.Context, chatID string, requesterID, limit int) ([]*models.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}

	if _, err := s.db.GetMember(ctx, chatID, requesterID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: not a participant", ErrForbidden)
		}
		return nil, err
	}

	return s.db.LoadMessages(ctx, chatID, limit)
}
