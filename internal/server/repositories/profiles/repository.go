// Package profiles stores the "users" collection of display profiles.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/teamboard/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	// Save merges patch into the profile with the given id, creating it when absent.
	Save(ctx context.Context, id string, patch models.ProfilePatch) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
	Delete(ctx context.Context, id string) error
}
