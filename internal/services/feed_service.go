package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campushub/internal/database"
	"campushub/internal/models"
)

const defaultFeedLimit = 50

type FeedService struct {
	db database.Database
}

func NewFeedService(db database.Database) *FeedService {
	return &FeedService{db: db}
}

func (s *FeedService) CreatePost(ctx context.Context, authorID int, req *models.CreatePostRequest) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: post content is empty", ErrValidation)
	}
	return s.db.CreatePost(ctx, authorID, content, req.ImageURL)
}

func (s *FeedService) ListPosts(ctx context.Context, viewerID, limit int) ([]*models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultFeedLimit
	}
	return s.db.ListPosts(ctx, viewerID, limit)
}

func (s *FeedService) ToggleLike(ctx context.Context, postID int64, userID int) (*models.LikeResult, error) {
	if _, err := s.db.GetPost(ctx, postID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
		}
		return nil, err
	}
	return s.db.ToggleLike(ctx, postID, userID)
}

// DeletePost allows the author, or any platform admin, to remove a post.
func (s *FeedService) DeletePost(ctx context.Context, postID int64, actorID int) error {
	post, err := s.db.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: post %d", ErrNotFound, postID)
		}
		return err
	}

	if post.AuthorID != actorID {
		actor, err := s.db.GetUserByID(ctx, actorID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin {
			return fmt.Errorf("%w: only the author or an admin may delete a post", ErrForbidden)
		}
	}

	return s.db.DeletePost(ctx, postID)
}
