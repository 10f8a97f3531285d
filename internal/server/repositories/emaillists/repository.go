// Package emaillists stores the allowed and admin email lists.
package emaillists

import (
	"context"

	"github.com/dmitrijs2005/teamboard/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.EmailEntry, error)
	// Add stores entry. A duplicate email yields common.ErrAlreadyExists.
	Add(ctx context.Context, entry *models.EmailEntry) (*models.EmailEntry, error)
	// Remove deletes email. A missing email yields common.ErrorNotFound.
	Remove(ctx context.Context, email string) error
	Contains(ctx context.Context, email string) (bool, error)
}
