package models

import "time"

type ChatType string

const (
	ChatTypeIndividual ChatType = "individual"
	ChatTypeGroup      ChatType = "group"
)

type Chat struct {
	ID          string        `json:"id"`
	Type        ChatType      `json:"type"`
	Name        string        `json:"name,omitempty"`
	CreatedBy   int           `json:"created_by,omitempty"`
	LastMessage *LastMessage  `json:"last_message,omitempty"`
	Members     []*ChatMember `json:"members,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// LastMessage is the denormalized summary kept on the chat record so chat
// lists render without loading the message log.
type LastMessage struct {
	Content    string    `json:"content"`
	SenderID   int       `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SentAt     time.Time `json:"sent_at"`
}

// ChatMember is both a participant entry and the per-user membership index
// row. DisplayName and AvatarURL are snapshots taken when the member joined;
// they may lag behind the live user record.
type ChatMember struct {
	ChatID      string    `json:"chat_id,omitempty"`
	UserID      int       `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	IsAdmin     bool      `json:"is_admin"`
	JoinedAt    time.Time `json:"joined_at"`
}

type CreateIndividualChatRequest struct {
	OtherID int `json:"other_id"`
}

type CreateGroupChatRequest struct {
	Name      string `json:"name"`
	MemberIDs []int  `json:"member_ids"`
}

type RenameGroupRequest struct {
	Name string `json:"name"`
}
