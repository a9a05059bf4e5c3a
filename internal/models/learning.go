package models

import "time"

type LearningModule struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	LessonCount int             `json:"lesson_count"`
	Position    int             `json:"position"`
	Published   bool            `json:"published"`
	Progress    *ModuleProgress `json:"progress,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ModuleProgress struct {
	UserID      int       `json:"user_id"`
	ModuleID    int       `json:"module_id"`
	LessonsDone int       `json:"lessons_done"`
	Completed   bool      `json:"completed"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpsertModuleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	LessonCount int    `json:"lesson_count"`
	Position    int    `json:"position"`
	Published   bool   `json:"published"`
}

type ProgressRequest struct {
	LessonsDone int `json:"lessons_done"`
}
