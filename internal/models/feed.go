package models

import "time"

type Post struct {
	ID           int64     `json:"id"`
	AuthorID     int       `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar,omitempty"`
	Content      string    `json:"content"`
	ImageURL     string    `json:"image_url,omitempty"`
	LikeCount    int       `json:"like_count"`
	Liked        bool      `json:"liked"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreatePostRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

type LikeResult struct {
	PostID    int64 `json:"post_id"`
	Liked     bool  `json:"liked"`
	LikeCount int   `json:"like_count"`
}
