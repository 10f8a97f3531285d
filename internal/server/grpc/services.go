package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"github.com/dmitrijs2005/teamboard/internal/server/services"
)

// The handlers depend on these interfaces; the services package provides the
// implementations.

type IdentityService interface {
	SignUp(ctx context.Context, email, password string) (*services.Session, error)
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.Session, error)
	SignOut(ctx context.Context, caller *models.Caller) error
	Reauthenticate(ctx context.Context, caller *models.Caller, password string) (*services.Session, error)
	UpdateEmail(ctx context.Context, caller *models.Caller, email string) (*services.Session, error)
	UpdatePassword(ctx context.Context, caller *models.Caller, password string) (*services.Session, error)
}

type ProfileService interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	Save(ctx context.Context, caller *models.Caller, userID string, patch models.ProfilePatch) (*models.Profile, error)
	List(ctx context.Context, caller *models.Caller) ([]*models.Profile, error)
	Delete(ctx context.Context, caller *models.Caller, id string) error
}

type PostService interface {
	Add(ctx context.Context, caller *models.Caller, post *models.Post) (*models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error)
	Like(ctx context.Context, caller *models.Caller, id string) (*models.Post, error)
}

type TaskService interface {
	Add(ctx context.Context, caller *models.Caller, title string, dueDate time.Time) (*models.Task, error)
	Get(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
	SetCompletion(ctx context.Context, caller *models.Caller, taskID string, completed bool) (*models.Completion, error)
	ListCompletions(ctx context.Context, caller *models.Caller, userID, taskID string) ([]*models.Completion, error)
	DeleteCompletion(ctx context.Context, caller *models.Caller, id string) error
}

type EmailListService interface {
	List(ctx context.Context, caller *models.Caller, list models.EmailList) ([]*models.EmailEntry, error)
	Add(ctx context.Context, caller *models.Caller, list models.EmailList, email string) (*models.EmailEntry, error)
	Remove(ctx context.Context, caller *models.Caller, list models.EmailList, email string) error
	IsListed(ctx context.Context, caller *models.Caller, list models.EmailList, email string) (bool, error)
}

type BatchService interface {
	Commit(ctx context.Context, caller *models.Caller, writes []models.Write) error
}

type AvatarService interface {
	UploadURL(ctx context.Context, caller *models.Caller) (string, string, error)
	URL(ctx context.Context, key string) (string, error)
}

// Services bundles everything the handlers call.
type Services struct {
	Identity   IdentityService
	Profiles   ProfileService
	Posts      PostService
	Tasks      TaskService
	EmailLists EmailListService
	Batch      BatchService
	Avatars    AvatarService
}
