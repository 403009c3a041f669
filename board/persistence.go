package board

import (
	"context"

	"taskcanvas/models"
)

// Persistence is the remote store a board is synchronized with.
type Persistence interface {
	// FetchBoard returns the default layout when the user has none stored.
	FetchBoard(ctx context.Context, userID string) (models.Layout, error)
	FetchTasks(ctx context.Context, userID string) ([]models.Task, error)
	// CreateTask returns the task with its store-assigned id.
	CreateTask(ctx context.Context, userID, title, description string, labels []models.Label, columnID string) (models.Task, error)
	UpdateTask(ctx context.Context, taskID string, patch models.TaskPatch) error
	DeleteTask(ctx context.Context, taskID string) error
	// UpdateBoard creates the stored layout if it does not exist yet.
	UpdateBoard(ctx context.Context, userID string, layout models.Layout) error
}
