package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campushub/internal/models"
)

const moduleColumns = `m.id, m.title, m.description, m.lesson_count, m.position, m.published, m.created_at, m.updated_at`

func (db *PostgresDB) ListModules(ctx context.Context, userID int, includeUnpublished bool) ([]*models.LearningModule, error) {
	query := `
		SELECT ` + moduleColumns + `,
		       p.lessons_done, p.completed, p.updated_at
		FROM learning_modules m
		LEFT JOIN module_progress p ON p.module_id = m.id AND p.user_id = $1
		WHERE m.published OR $2
		ORDER BY m.position, m.id`

	rows, err := db.pool.Query(ctx, query, userID, includeUnpublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mods []*models.LearningModule
	for rows.Next() {
		mod := &models.LearningModule{}
		var lessonsDone *int
		var completed *bool
		var progressUpdated *time.Time
		if err := rows.Scan(&mod.ID, &mod.Title, &mod.Description, &mod.LessonCount,
			&mod.Position, &mod.Published, &mod.CreatedAt, &mod.UpdatedAt,
			&lessonsDone, &completed, &progressUpdated); err != nil {
			return nil, err
		}
		if lessonsDone != nil {
			mod.Progress = &models.ModuleProgress{
				UserID:      userID,
				ModuleID:    mod.ID,
				LessonsDone: *lessonsDone,
			}
			if completed != nil {
				mod.Progress.Completed = *completed
			}
			if progressUpdated != nil {
				mod.Progress.UpdatedAt = *progressUpdated
			}
		}
		mods = append(mods, mod)
	}
	return mods, rows.Err()
}

func (db *PostgresDB) GetModule(ctx context.Context, id, userID int) (*models.LearningModule, error) {
	mod := &models.LearningModule{}
	err := db.pool.QueryRow(ctx, `
		SELECT `+moduleColumns+` FROM learning_modules m WHERE m.id = $1`,
		id).Scan(&mod.ID, &mod.Title, &mod.Description, &mod.LessonCount,
		&mod.Position, &mod.Published, &mod.CreatedAt, &mod.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}

	prog := &models.ModuleProgress{}
	err = db.pool.QueryRow(ctx, `
		SELECT user_id, module_id, lessons_done, completed, updated_at
		FROM module_progress WHERE module_id = $1 AND user_id = $2`,
		id, userID).Scan(&prog.UserID, &prog.ModuleID, &prog.LessonsDone, &prog.Completed, &prog.UpdatedAt)
	if err == nil {
		mod.Progress = prog
	} else if !errors.Is(mapNotFound(err), ErrNotFound) {
		return nil, err
	}
	return mod, nil
}

func (db *PostgresDB) CreateModule(ctx context.Context, req *models.UpsertModuleRequest) (*models.LearningModule, error) {
	mod := &models.LearningModule{
		Title:       req.Title,
		Description: req.Description,
		LessonCount: req.LessonCount,
		Position:    req.Position,
		Published:   req.Published,
	}
	err := db.pool.QueryRow(ctx, `
		INSERT INTO learning_modules (title, description, lesson_count, position, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		req.Title, req.Description, req.LessonCount, req.Position, req.Published,
	).Scan(&mod.ID, &mod.CreatedAt, &mod.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create module: %w", err)
	}
	return mod, nil
}

func (db *PostgresDB) UpdateModule(ctx context.Context, id int, req *models.UpsertModuleRequest) (*models.LearningModule, error) {
	mod := &models.LearningModule{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		LessonCount: req.LessonCount,
		Position:    req.Position,
		Published:   req.Published,
	}
	err := db.pool.QueryRow(ctx, `
		UPDATE learning_modules
		SET title = $2, description = $3, lesson_count = $4, position = $5, published = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		id, req.Title, req.Description, req.LessonCount, req.Position, req.Published,
	).Scan(&mod.CreatedAt, &mod.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return mod, nil
}

func (db *PostgresDB) DeleteModule(ctx context.Context, id int) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM learning_modules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *PostgresDB) UpsertProgress(ctx context.Context, userID, moduleID, lessonsDone int, completed bool) (*models.ModuleProgress, error) {
	prog := &models.ModuleProgress{UserID: userID, ModuleID: moduleID, LessonsDone: lessonsDone, Completed: completed}
	err := db.pool.QueryRow(ctx, `
		INSERT INTO module_progress (user_id, module_id, lessons_done, completed, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, module_id)
		DO UPDATE SET lessons_done = $3, completed = $4, updated_at = NOW()
		RETURNING updated_at`,
		userID, moduleID, lessonsDone, completed).Scan(&prog.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record progress: %w", err)
	}
	return prog, nil
}
