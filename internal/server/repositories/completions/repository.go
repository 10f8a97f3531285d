// Package completions stores per-user task completion flags ("userTasks").
package completions

import (
	"context"

	"github.com/dmitrijs2005/teamboard/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, id string) (*models.Completion, error)
	// Upsert creates or overwrites the record keyed by models.CompletionID.
	Upsert(ctx context.Context, c *models.Completion) (*models.Completion, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Completion, error)
	ListByTask(ctx context.Context, taskID string) ([]*models.Completion, error)
	Delete(ctx context.Context, id string) error
}
