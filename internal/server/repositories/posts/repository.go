// Package posts stores status updates and their replies.
package posts

import (
	"context"

	"github.com/dmitrijs2005/teamboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error)
	// Like records userID as a liker. It fails with common.ErrAlreadyLiked
	// when userID already liked the post.
	Like(ctx context.Context, id, userID string) (*models.Post, error)
	UpdateSnapshot(ctx context.Context, id string, patch models.ProfilePatch) error
	Delete(ctx context.Context, id string) error
}
