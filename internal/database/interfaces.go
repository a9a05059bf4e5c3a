package database

import (
	"context"
	"errors"
	"time"

	"campushub/internal/models"
)

// ErrNotFound is returned when a requested record does not exist. Callers
// use errors.Is; the Postgres implementation maps pgx.ErrNoRows to it.
var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	CreateUser(ctx context.Context, email, displayName, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error)
	// SearchUsersPrefix runs the indexed prefix query over display name and
	// username, ranked prefix-first then by display name.
	SearchUsersPrefix(ctx context.Context, query string, excludeID, limit int) ([]*models.User, error)
	// ScanUsers is the bounded fallback scan for mid-string matches.
	ScanUsers(ctx context.Context, excludeID, limit int) ([]*models.User, error)
}

type ChatRepository interface {
	// GetChatByID returns the chat with its membership rows loaded.
	GetChatByID(ctx context.Context, id string) (*models.Chat, error)
	ListUserChats(ctx context.Context, userID int) ([]*models.Chat, error)
	// CreateIndividualChat writes the chat and both membership rows in one
	// transaction. Safe to call concurrently from both sides: the canonical
	// id makes the insert converge on a single record.
	CreateIndividualChat(ctx context.Context, id string, a, b *models.User) (*models.Chat, error)
	// CreateGroupChat writes the chat and every membership row in one
	// transaction; the creator is the initial admin.
	CreateGroupChat(ctx context.Context, id, name string, creator *models.User, members []*models.User) (*models.Chat, error)
	RenameChat(ctx context.Context, chatID, name string) error
	GetMember(ctx context.Context, chatID string, userID int) (*models.ChatMember, error)
	RemoveMember(ctx context.Context, chatID string, userID int) error
	// LeaveChat removes the member and, when promoteID is non-zero, grants
	// that member the admin flag in the same transaction. Both writes commit
	// or neither does, so a departing sole admin cannot leave the group
	// adminless through a partial failure.
	LeaveChat(ctx context.Context, chatID string, userID, promoteID int) error
	SetAdmin(ctx context.Context, chatID string, userID int, isAdmin bool) error
	// DeleteChat removes the chat, its membership rows and its entire
	// message log in one transaction.
	DeleteChat(ctx context.Context, chatID string) error
}

type MessageRepository interface {
	// SaveMessage inserts the message and updates the chat's last-message
	// summary in one transaction, so readers never observe one without the
	// other.
	SaveMessage(ctx context.Context, msg *models.Message) (*models.Message, error)
	LoadMessages(ctx context.Context, chatID string, limit int) ([]*models.Message, error)
}

type PresenceRepository interface {
	SetPresence(ctx context.Context, userID int, isOnline bool) error
	GetPresence(ctx context.Context, userID int) (*models.PresenceRecord, error)
	// MarkStaleOffline flips records that still claim online but have not
	// heartbeated within the given window. Returns rows changed.
	MarkStaleOffline(ctx context.Context, olderThan time.Duration) (int64, error)
}

type FeedRepository interface {
	CreatePost(ctx context.Context, authorID int, content, imageURL string) (*models.Post, error)
	ListPosts(ctx context.Context, viewerID, limit int) ([]*models.Post, error)
	GetPost(ctx context.Context, id int64) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error
	ToggleLike(ctx context.Context, postID int64, userID int) (*models.LikeResult, error)
}

type LearningRepository interface {
	ListModules(ctx context.Context, userID int, includeUnpublished bool) ([]*models.LearningModule, error)
	GetModule(ctx context.Context, id, userID int) (*models.LearningModule, error)
	CreateModule(ctx context.Context, req *models.UpsertModuleRequest) (*models.LearningModule, error)
	UpdateModule(ctx context.Context, id int, req *models.UpsertModuleRequest) (*models.LearningModule, error)
	DeleteModule(ctx context.Context, id int) error
	UpsertProgress(ctx context.Context, userID, moduleID, lessonsDone int, completed bool) (*models.ModuleProgress, error)
}

type Database interface {
	UserRepository
	ChatRepository
	MessageRepository
	PresenceRepository
	FeedRepository
	LearningRepository
	Close() error
}
