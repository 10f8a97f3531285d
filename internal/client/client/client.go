// Package client is the CLI's link to the teamboard backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see Client) grouping the identity
//     provider, the document store and the live subscriptions.
//  2. A gRPC implementation (see GRPCClient) that injects the access token,
//     refreshes it once per call when it has expired, persists the refresh
//     token locally and maps status codes back to the sentinel errors of
//     internal/common.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     SQLite database the CLI keeps next to it.
//
// Implementations are safe for concurrent use. All operations accept a
// context.Context and honor cancellation.
package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/client/models"
)

// Identity is the identity provider: email/password accounts and the
// current sign-in.
type Identity interface {
	SignUp(ctx context.Context, email, password string) (*models.Identity, error)
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
	SignOut(ctx context.Context) error
	Reauthenticate(ctx context.Context, password string) error
	UpdateEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, password string) error
	CurrentIdentity() *models.Identity
	// Restore signs back in with the login kept on disk, if any.
	Restore(ctx context.Context) (*models.Identity, error)
	// OnAuthStateChanged registers fn for sign-ins and sign-outs the caller
	// did not ask for: a restored login, or a session the backend ended.
	// The returned func unregisters it.
	OnAuthStateChanged(fn func(*models.Identity)) (unsubscribe func())
}

// Documents is the document store.
type Documents interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	SaveProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]*models.Profile, error)
	DeleteProfile(ctx context.Context, userID string) error

	AddPost(ctx context.Context, p *models.NewPost) (*models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, filter models.PostFilter) ([]*models.Post, error)
	LikePost(ctx context.Context, id string) (*models.Post, error)

	AddTask(ctx context.Context, title string, dueDate time.Time) (*models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context) ([]*models.Task, error)

	SetCompletion(ctx context.Context, taskID string, completed bool) (*models.Completion, error)
	// ListCompletions selects by taskID when set, otherwise by userID
	// (empty means the caller).
	ListCompletions(ctx context.Context, userID, taskID string) ([]*models.Completion, error)
	DeleteCompletion(ctx context.Context, id string) error

	ListEmails(ctx context.Context, list string) ([]*models.EmailEntry, error)
	AddEmail(ctx context.Context, list, email string) (*models.EmailEntry, error)
	RemoveEmail(ctx context.Context, list, email string) error
	IsEmailListed(ctx context.Context, list, email string) (bool, error)

	// Commit applies every write or none of them.
	Commit(ctx context.Context, writes []models.Write) error

	AvatarUploadURL(ctx context.Context) (key, url string, err error)
	AvatarURL(ctx context.Context, key string) (string, error)
}

// Watcher opens live subscriptions. Each channel first carries a snapshot,
// then a new one after every change, and is closed when ctx is cancelled or
// after an Update carrying the error that ended the stream.
type Watcher interface {
	WatchPosts(ctx context.Context) (<-chan models.Update[*models.Post], error)
	WatchTasks(ctx context.Context) (<-chan models.Update[*models.Task], error)
	WatchCompletions(ctx context.Context) (<-chan models.Update[*models.Completion], error)
}

type Client interface {
	Identity
	Documents
	Watcher
	Ping(ctx context.Context) error
	Close() error
}
