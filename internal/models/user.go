package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Username     string    `json:"username,omitempty"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	BannerURL    string    `json:"banner_url,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Links        []string  `json:"links,omitempty"`
	Skills       []string  `json:"skills,omitempty"`
	IsAdmin      bool      `json:"is_admin,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UpdateProfileRequest uses pointers so a field absent from the request body
// leaves the stored value untouched. Username is settable exactly once.
type UpdateProfileRequest struct {
	DisplayName *string  `json:"display_name"`
	Username    *string  `json:"username"`
	AvatarURL   *string  `json:"avatar_url"`
	BannerURL   *string  `json:"banner_url"`
	Bio         *string  `json:"bio"`
	Links       []string `json:"links"`
	Skills      []string `json:"skills"`
}
