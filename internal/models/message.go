package models

import "time"

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
)

type Message struct {
	ID           int64       `json:"id"`
	ChatID       string      `json:"chat_id"`
	SenderID     int         `json:"sender_id"`
	SenderName   string      `json:"sender_name"`
	SenderAvatar string      `json:"sender_avatar,omitempty"`
	Content      string      `json:"content"`
	Type         MessageType `json:"type"`
	CreatedAt    time.Time   `json:"created_at"`
}

type SendMessageRequest struct {
	Content string      `json:"content"`
	Type    MessageType `json:"type,omitempty"`
}
