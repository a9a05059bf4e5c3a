package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"campushub/internal/database"
	"campushub/internal/models"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// UserService handles profile reads and edits. Username is settable exactly
// once and never changes afterwards.
type UserService struct {
	db database.Database
}

func NewUserService(db database.Database) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.db.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if len(name) < 2 || len(name) > 50 {
			return nil, fmt.Errorf("%w: display name must be 2-50 characters long", ErrValidation)
		}
		req.DisplayName = &name
	}

	if req.Username != nil {
		current, err := s.db.GetUserByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if current.Username != "" {
			return nil, fmt.Errorf("%w: username cannot be changed once set", ErrValidation)
		}
		username := strings.ToLower(strings.TrimSpace(*req.Username))
		if !usernameRegex.MatchString(username) {
			return nil, fmt.Errorf("%w: username must be 3-30 lowercase letters, digits or underscores", ErrValidation)
		}
		req.Username = &username
	}

	user, err := s.db.UpdateProfile(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}
