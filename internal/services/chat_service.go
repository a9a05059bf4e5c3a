package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campushub/internal/chatid"
	"campushub/internal/database"
	"campushub/internal/models"
)

// ChatService owns chat lifecycle rules: canonical individual chats, group
// creation, admin-gated mutations, and membership cleanup. Permission checks
// run here, on the server, so a client cannot bypass them by issuing raw
// storage writes.
type ChatService struct {
	db       database.Database
	notifier Notifier
}

func NewChatService(db database.Database, notifier Notifier) *ChatService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ChatService{db: db, notifier: notifier}
}

// GetOrCreateIndividualChat returns the one chat between the two users,
// creating it on first contact. Both sides calling concurrently converge on
// the same record through the canonical id.
func (s *ChatService) GetOrCreateIndividualChat(ctx context.Context, selfID, otherID int) (*models.Chat, error) {
	if selfID == otherID {
		return nil, fmt.Errorf("%w: cannot start a chat with yourself", ErrValidation)
	}

	id := chatid.Individual(selfID, otherID)
	chat, err := s.db.GetChatByID(ctx, id)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	self, err := s.db.GetUserByID(ctx, selfID)
	if err != nil {
		return nil, fmt.Errorf("failed to load own profile: %w", err)
	}
	other, err := s.db.GetUserByID(ctx, otherID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, otherID)
		}
		return nil, err
	}

	chat, err = s.db.CreateIndividualChat(ctx, id, self, other)
	if err != nil {
		return nil, err
	}

	s.notifyMembers(chat, &models.WebSocketEvent{Type: models.EventChatUpdated, ChatID: chat.ID, Chat: chat})
	return chat, nil
}

// CreateGroupChat requires at least one member besides the creator. The
// creator becomes the initial admin.
func (s *ChatService) CreateGroupChat(ctx context.Context, creatorID int, req *models.CreateGroupChatRequest) (*models.Chat, error) {
	memberIDs := dedupeIDs(req.MemberIDs, creatorID)
	if len(memberIDs) < 1 {
		return nil, fmt.Errorf("%w: select at least one other member", ErrValidation)
	}

	creator, err := s.db.GetUserByID(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator profile: %w", err)
	}

	members := make([]*models.User, 0, len(memberIDs))
	for _, id := range memberIDs {
		u, err := s.db.GetUserByID(ctx, id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
			}
			return nil, err
		}
		members = append(members, u)
	}

	chat, err := s.db.CreateGroupChat(ctx, chatid.NewGroup(), req.Name, creator, members)
	if err != nil {
		return nil, err
	}

	s.notifyMembers(chat, &models.WebSocketEvent{Type: models.EventChatUpdated, ChatID: chat.ID, Chat: chat})
	return chat, nil
}

func (s *ChatService) ListUserChats(ctx context.Context, userID int) ([]*models.Chat, error) {
	return s.db.ListUserChats(ctx, userID)
}

// GetChat returns the chat if the requester is a participant.
func (s *ChatService) GetChat(ctx context.Context, chatID string, requesterID int) (*models.Chat, error) {
	chat, err := s.db.GetChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: chat %s", ErrNotFound, chatID)
		}
		return nil, err
	}
	if memberOf(chat, requesterID) == nil {
		return nil, fmt.Errorf("%w: not a participant", ErrForbidden)
	}
	return chat, nil
}

// RenameGroup is admin-only; non-admins get a permission error and no write
// happens.
func (s *ChatService) RenameGroup(ctx context.Context, chatID string, actorID int, newName string) (*models.Chat, error) {
	if newName == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrValidation)
	}

	chat, actor, err := s.groupWithActor(ctx, chatID, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: only admins may rename the group", ErrForbidden)
	}

	if err := s.db.RenameChat(ctx, chatID, newName); err != nil {
		return nil, err
	}
	chat.Name = newName
	chat.UpdatedAt = time.Now()

	s.notifyMembers(chat, &models.WebSocketEvent{Type: models.EventChatUpdated, ChatID: chatID, Chat: chat})
	return chat, nil
}

// RemoveMember is admin-only. The last admin cannot be removed; removing
// yourself goes through LeaveGroup instead.
func (s *ChatService) RemoveMember(ctx context.Context, chatID string, actorID, targetID int) error {
	if actorID == targetID {
		return fmt.Errorf("%w: leave the group instead of removing yourself", ErrValidation)
	}

	chat, actor, err := s.groupWithActor(ctx, chatID, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return fmt.Errorf("%w: only admins may remove members", ErrForbidden)
	}

	target := memberOf(chat, targetID)
	if target == nil {
		return fmt.Errorf("%w: user %d is not a member", ErrNotFound, targetID)
	}
	if target.IsAdmin && countAdmins(chat) <= 1 {
		return fmt.Errorf("%w: cannot remove the last admin", ErrForbidden)
	}

	if err := s.db.RemoveMember(ctx, chatID, targetID); err != nil {
		return err
	}

	s.notifier.NotifyUser(targetID, &models.WebSocketEvent{Type: models.EventChatDeleted, ChatID: chatID})
	s.notifyMembers(chat, &models.WebSocketEvent{Type: models.EventChatUpdated, ChatID: chatID}, targetID)
	return nil
}

// ToggleAdmin flips the target's admin flag. Demoting the last remaining
// admin is refused so a non-empty group never ends up adminless.
func (s *ChatService) ToggleAdmin(ctx context.Context, chatID string, actorID, targetID int) error {
	chat, actor, err := s.groupWithActor(ctx, chatID, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return fmt.Errorf("%w: only admins may promote or demote", ErrForbidden)
	}

	target := memberOf(chat, targetID)
	if target == nil {
		return fmt.Errorf("%w: user %d is not a member", ErrNotFound, targetID)
	}
	if target.IsAdmin && countAdmins(chat) <= 1 {
		return fmt.Errorf("%w: cannot demote the last admin", ErrForbidden)
	}

	if err := s.db.SetAdmin(ctx, chatID, targetID, !target.IsAdmin); err != nil {
		return err
	}

	s.notifyMembers(chat, &models.WebSocketEvent{Type: models.EventChatUpdated, ChatID: chatID})
	return nil
}

// LeaveGroup removes the caller. The last participant to leave takes the
// chat and its message log with them. If the only admin leaves a non-empty
// group, the longest-standing remaining member is promoted.
func (s *ChatService) LeaveGroup(ctx context.Context, chatID string, selfID int) error {
	chat, self, err := s.groupWithActor(ctx, chatID, selfID)
	if err != nil {
		return err
	}

	remaining := make([]*models.ChatMember, 0, len(chat.Members))
	for _, m := range chat.Members {
		if m.UserID != selfID {
			remaining = append(remaining, m)
		}
	}

	if len(remaining) == 0 {
		if err := s.db.DeleteChat(ctx, chatID); err != nil {
			return err
		}
		return nil
	}

	// Members load ordered by joined_at, so the first remaining entry is the
	// longest-standing member. Removal and promotion commit together; a
	// failure leaves the member in place rather than the group adminless.
	promoteID := 0
	if self.IsAdmin && countAdmins(chat) <= 1 {
		promoteID = remaining[0].UserID
	}
	if err := s.db.LeaveChat(ctx, chatID, selfID, promoteID); err != nil {
		return err
	}

	for _, m := range remaining {
		s.notifier.NotifyUser(m.UserID, &models.WebSocketEvent{Type: models.EventChatUpdated, ChatID: chatID})
	}
	return nil
}

// DeleteIndividualChat removes the chat and its message log for both sides.
func (s *ChatService) DeleteIndividualChat(ctx context.Context, chatID string, selfID int) error {
	chat, err := s.db.GetChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: chat %s", ErrNotFound, chatID)
		}
		return err
	}
	if chat.Type != models.ChatTypeIndividual {
		return fmt.Errorf("%w: not an individual chat", ErrValidation)
	}
	if memberOf(chat, selfID) == nil {
		return fmt.Errorf("%w: not a participant", ErrForbidden)
	}

	if err := s.db.DeleteChat(ctx, chatID); err != nil {
		return err
	}

	s.notifyMembers(chat, &models.WebSocketEvent{Type: models.EventChatDeleted, ChatID: chatID})
	return nil
}

// groupWithActor loads the chat, verifies it is a group and that actorID is
// a member, returning the membership row.
func (s *ChatService) groupWithActor(ctx context.Context, chatID string, actorID int) (*models.Chat, *models.ChatMember, error) {
	chat, err := s.db.GetChatByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: chat %s", ErrNotFound, chatID)
		}
		return nil, nil, err
	}
	if chat.Type != models.ChatTypeGroup {
		return nil, nil, fmt.Errorf("%w: not a group chat", ErrValidation)
	}
	actor := memberOf(chat, actorID)
	if actor == nil {
		return nil, nil, fmt.Errorf("%w: not a participant", ErrForbidden)
	}
	return chat, actor, nil
}

func (s *ChatService) notifyMembers(chat *models.Chat, event *models.WebSocketEvent, exclude ...int) {
	skip := make(map[int]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	for _, m := range chat.Members {
		if !skip[m.UserID] {
			s.notifier.NotifyUser(m.UserID, event)
		}
	}
}

func memberOf(chat *models.Chat, userID int) *models.ChatMember {
	for _, m := range chat.Members {
		if m.UserID == userID {
			return m
		}
	}
	return nil
}

func countAdmins(chat *models.Chat) int {
	n := 0
	for _, m := range chat.Members {
		if m.IsAdmin {
			n++
		}
	}
	return n
}

func dedupeIDs(ids []int, exclude int) []int {
	seen := map[int]bool{exclude: true}
	var out []int
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
