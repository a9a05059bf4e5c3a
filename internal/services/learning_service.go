package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campushub/internal/database"
	"campushub/internal/models"
)

// LearningService serves the structured learning catalog with per-user
// progress. Catalog mutations are reserved for platform admins.
type LearningService struct {
	db database.Database
}

func NewLearningService(db database.Database) *LearningService {
	return &LearningService{db: db}
}

func (s *LearningService) ListModules(ctx context.Context, userID int) ([]*models.LearningModule, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Admins also see unpublished drafts.
	return s.db.ListModules(ctx, userID, user.IsAdmin)
}

func (s *LearningService) GetModule(ctx context.Context, moduleID, userID int) (*models.LearningModule, error) {
	mod, err := s.db.GetModule(ctx, moduleID, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: module %d", ErrNotFound, moduleID)
		}
		return nil, err
	}
	if !mod.Published {
		user, err := s.db.GetUserByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !user.IsAdmin {
			return nil, fmt.Errorf("%w: module %d", ErrNotFound, moduleID)
		}
	}
	return mod, nil
}

// RecordProgress clamps lessons-done to the module's lesson count and marks
// completion when every lesson is done.
func (s *LearningService) RecordProgress(ctx context.Context, userID, moduleID, lessonsDone int) (*models.ModuleProgress, error) {
	mod, err := s.GetModule(ctx, moduleID, userID)
	if err != nil {
		return nil, err
	}

	if lessonsDone < 0 {
		lessonsDone = 0
	}
	if lessonsDone > mod.LessonCount {
		lessonsDone = mod.LessonCount
	}
	completed := mod.LessonCount > 0 && lessonsDone >= mod.LessonCount

	return s.db.UpsertProgress(ctx, userID, moduleID, lessonsDone, completed)
}

func (s *LearningService) CreateModule(ctx context.Context, actorID int, req *models.UpsertModuleRequest) (*models.LearningModule, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if err := validateModuleRequest(req); err != nil {
		return nil, err
	}
	return s.db.CreateModule(ctx, req)
}

func (s *LearningService) UpdateModule(ctx context.Context, actorID, moduleID int, req *models.UpsertModuleRequest) (*models.LearningModule, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if err := validateModuleRequest(req); err != nil {
		return nil, err
	}
	mod, err := s.db.UpdateModule(ctx, moduleID, req)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: module %d", ErrNotFound, moduleID)
		}
		return nil, err
	}
	return mod, nil
}

func (s *LearningService) DeleteModule(ctx context.Context, actorID, moduleID int) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if err := s.db.DeleteModule(ctx, moduleID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%w: module %d", ErrNotFound, moduleID)
		}
		return err
	}
	return nil
}

func (s *LearningService) requireAdmin(ctx context.Context, actorID int) error {
	actor, err := s.db.GetUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin {
		return fmt.Errorf("%w: admin access required", ErrForbidden)
	}
	return nil
}

func validateModuleRequest(req *models.UpsertModuleRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: module title is required", ErrValidation)
	}
	if req.LessonCount < 0 {
		return fmt.Errorf("%w: lesson count cannot be negative", ErrValidation)
	}
	return nil
}
