package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"campushub/internal/database"
	"campushub/internal/models"
)

// fakeDB is an in-memory database.Database for service tests. Methods a test
// does not exercise fall through to the embedded nil interface and panic,
// which is the desired failure mode for an unexpected call.
type fakeDB struct {
	database.Database

	mu       sync.Mutex
	users    map[int]*models.User
	chats    map[string]*models.Chat
	messages map[string][]*models.Message
	nextMsg  int64
	now      time.Time
}

func newFakeDB(users ...*models.User) *fakeDB {
	db := &fakeDB{
		users:    make(map[int]*models.User),
		chats:    make(map[string]*models.Chat),
		messages: make(map[string][]*models.Message),
		now:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, u := range users {
		db.users[u.ID] = u
	}
	return db
}

// tick advances the fake clock so joined_at ordering is deterministic.
func (f *fakeDB) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *fakeDB) GetUserByID(_ context.Context, id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return u, nil
}

func (f *fakeDB) UpdateProfile(_ context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	if req.DisplayName != nil {
		u.DisplayName = *req.DisplayName
	}
	if req.Username != nil {
		u.Username = *req.Username
	}
	if req.AvatarURL != nil {
		u.AvatarURL = *req.AvatarURL
	}
	if req.BannerURL != nil {
		u.BannerURL = *req.BannerURL
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.Links != nil {
		u.Links = req.Links
	}
	if req.Skills != nil {
		u.Skills = req.Skills
	}
	copied := *u
	return &copied, nil
}

func (f *fakeDB) SearchUsersPrefix(_ context.Context, query string, excludeID, limit int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	var out []*models.User
	for _, u := range f.users {
		if u.ID == excludeID {
			continue
		}
		if strings.HasPrefix(strings.ToLower(u.DisplayName), q) ||
			strings.HasPrefix(strings.ToLower(u.Username), q) {
			out = append(out, u)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeDB) ScanUsers(_ context.Context, excludeID, limit int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, u := range f.users {
		if u.ID == excludeID {
			continue
		}
		out = append(out, u)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeDB) GetChatByID(_ context.Context, id string) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return chat, nil
}

func (f *fakeDB) ListUserChats(_ context.Context, userID int) ([]*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Chat
	for _, chat := range f.chats {
		for _, m := range chat.Members {
			if m.UserID == userID {
				out = append(out, chat)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeDB) CreateIndividualChat(_ context.Context, id string, a, b *models.User) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if chat, ok := f.chats[id]; ok {
		return chat, nil
	}
	ts := f.tick()
	chat := &models.Chat{
		ID:   id,
		Type: models.ChatTypeIndividual,
		Members: []*models.ChatMember{
			{ChatID: id, UserID: a.ID, DisplayName: a.DisplayName, JoinedAt: ts},
			{ChatID: id, UserID: b.ID, DisplayName: b.DisplayName, JoinedAt: ts},
		},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	f.chats[id] = chat
	return chat, nil
}

func (f *fakeDB) CreateGroupChat(_ context.Context, id, name string, creator *models.User, members []*models.User) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ts := f.tick()
	chat := &models.Chat{
		ID:        id,
		Type:      models.ChatTypeGroup,
		Name:      name,
		CreatedBy: creator.ID,
		Members: []*models.ChatMember{
			{ChatID: id, UserID: creator.ID, DisplayName: creator.DisplayName, IsAdmin: true, JoinedAt: ts},
		},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	for _, m := range members {
		chat.Members = append(chat.Members, &models.ChatMember{
			ChatID: id, UserID: m.ID, DisplayName: m.DisplayName, JoinedAt: f.tick(),
		})
	}
	f.chats[id] = chat
	return chat, nil
}

func (f *fakeDB) RenameChat(_ context.Context, chatID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[chatID]
	if !ok {
		return database.ErrNotFound
	}
	chat.Name = name
	chat.UpdatedAt = f.tick()
	return nil
}

func (f *fakeDB) GetMember(_ context.Context, chatID string, userID int) (*models.ChatMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[chatID]
	if !ok {
		return nil, database.ErrNotFound
	}
	for _, m := range chat.Members {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeDB) RemoveMember(_ context.Context, chatID string, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[chatID]
	if !ok {
		return database.ErrNotFound
	}
	kept := chat.Members[:0]
	for _, m := range chat.Members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	chat.Members = kept
	chat.UpdatedAt = f.tick()
	return nil
}

func (f *fakeDB) LeaveChat(_ context.Context, chatID string, userID, promoteID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[chatID]
	if !ok {
		return database.ErrNotFound
	}

	// Applied all-or-nothing, mirroring the single transaction the real
	// store runs.
	var promoted *models.ChatMember
	found := false
	for _, m := range chat.Members {
		if m.UserID == userID {
			found = true
		}
		if m.UserID == promoteID {
			promoted = m
		}
	}
	if !found || (promoteID != 0 && promoted == nil) {
		return database.ErrNotFound
	}

	kept := chat.Members[:0]
	for _, m := range chat.Members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	chat.Members = kept
	if promoted != nil {
		promoted.IsAdmin = true
	}
	chat.UpdatedAt = f.tick()
	return nil
}

func (f *fakeDB) SetAdmin(_ context.Context, chatID string, userID int, isAdmin bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[chatID]
	if !ok {
		return database.ErrNotFound
	}
	for _, m := range chat.Members {
		if m.UserID == userID {
			m.IsAdmin = isAdmin
			return nil
		}
	}
	return database.ErrNotFound
}

func (f *fakeDB) CountAdmins(_ context.Context, chatID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[chatID]
	if !ok {
		return 0, database.ErrNotFound
	}
	n := 0
	for _, m := range chat.Members {
		if m.IsAdmin {
			n++
		}
	}
	return n, nil
}

func (f *fakeDB) DeleteChat(_ context.Context, chatID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.chats[chatID]; !ok {
		return database.ErrNotFound
	}
	delete(f.chats, chatID)
	delete(f.messages, chatID)
	return nil
}

func (f *fakeDB) SaveMessage(_ context.Context, msg *models.Message) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[msg.ChatID]
	if !ok {
		return nil, fmt.Errorf("chat %s does not exist", msg.ChatID)
	}

	f.nextMsg++
	saved := *msg
	saved.ID = f.nextMsg
	saved.CreatedAt = f.tick()
	f.messages[msg.ChatID] = append(f.messages[msg.ChatID], &saved)

	chat.LastMessage = &models.LastMessage{
		Content:    saved.Content,
		SenderID:   saved.SenderID,
		SenderName: saved.SenderName,
		SentAt:     saved.CreatedAt,
	}
	chat.UpdatedAt = saved.CreatedAt
	return &saved, nil
}

func (f *fakeDB) LoadMessages(_ context.Context, chatID string, limit int) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[chatID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]*models.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// recordingNotifier captures per-user event deliveries.
type recordingNotifier struct {
	mu     sync.Mutex
	events map[int][]*models.WebSocketEvent
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(map[int][]*models.WebSocketEvent)}
}

func (n *recordingNotifier) NotifyUser(userID int, event *models.WebSocketEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[userID] = append(n.events[userID], event)
}

func (n *recordingNotifier) count(userID int) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events[userID])
}

func (n *recordingNotifier) last(userID int) *models.WebSocketEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	events := n.events[userID]
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}
