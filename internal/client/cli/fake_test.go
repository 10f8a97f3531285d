package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/client/client"
	"github.com/dmitrijs2005/teamboard/internal/client/config"
	"github.com/dmitrijs2005/teamboard/internal/client/models"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/logging"
)

// fakeBackend implements the parts of client.Client the commands reach.
// Anything else panics through the nil embedded interface.
type fakeBackend struct {
	client.Client

	mu          sync.Mutex
	identity    *models.Identity
	password    string
	posts       []*models.Post
	replies     map[string][]*models.Post
	tasks       []*models.Task
	completions []*models.Completion
	lists       map[string][]*models.EmailEntry
	reauth      bool
	listener    func(*models.Identity)
	added       []*models.NewPost
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		password: "secret1",
		replies:  map[string][]*models.Post{},
		lists:    map[string][]*models.EmailEntry{},
	}
}

func (f *fakeBackend) OnAuthStateChanged(fn func(*models.Identity)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listener = fn
	return func() {}
}

func (f *fakeBackend) Restore(context.Context) (*models.Identity, error) {
	f.mu.Lock()
	id, fn := f.identity, f.listener
	f.mu.Unlock()
	fn(id)
	return id, nil
}

func (f *fakeBackend) SignIn(_ context.Context, email, password string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if password != f.password {
		return nil, common.ErrInvalidCredentials
	}
	f.identity = &models.Identity{UserID: "u1", Email: email}
	return &models.Identity{UserID: "u1", Email: email}, nil
}

func (f *fakeBackend) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identity = nil
	return nil
}

func (f *fakeBackend) Reauthenticate(_ context.Context, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if password != f.password {
		return common.ErrInvalidCredentials
	}
	f.reauth = false
	return nil
}

func (f *fakeBackend) UpdatePassword(_ context.Context, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reauth {
		return common.ErrReauthenticationRequired
	}
	f.password = password
	return nil
}

func (f *fakeBackend) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	p := models.DefaultProfile(userID, "")
	p.Username = "Ana"
	return &p, nil
}

func (f *fakeBackend) IsEmailListed(_ context.Context, list, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.lists[list] {
		if e.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBackend) ListEmails(_ context.Context, list string) ([]*models.EmailEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[list], nil
}

func (f *fakeBackend) AddEmail(_ context.Context, list, email string) (*models.EmailEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := &models.EmailEntry{ID: "e1", Email: email, CreatedAt: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)}
	f.lists[list] = append(f.lists[list], e)
	return e, nil
}

func (f *fakeBackend) ListPosts(_ context.Context, filter models.PostFilter) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if filter.Kind == models.FilterReplies {
		return f.replies[filter.ReplyToID], nil
	}
	return f.posts, nil
}

func (f *fakeBackend) AddPost(_ context.Context, np *models.NewPost) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, np)
	return &models.Post{ID: "p9", UserID: "u1", Username: np.Username, Content: np.Content, ReplyToID: np.ReplyToID, IsReply: np.ReplyToID != ""}, nil
}

func (f *fakeBackend) GetTask(_ context.Context, id string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			c := *t
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeBackend) SetCompletion(_ context.Context, taskID string, completed bool) (*models.Completion, error) {
	return &models.Completion{ID: models.CompletionID("u1", taskID), UserID: "u1", TaskID: taskID, Completed: completed}, nil
}

func snapshotOnce[T any](ctx context.Context, items []T) <-chan models.Update[T] {
	ch := make(chan models.Update[T], 1)
	ch <- models.Update[T]{Items: items}
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

func (f *fakeBackend) WatchPosts(ctx context.Context) (<-chan models.Update[*models.Post], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return snapshotOnce(ctx, f.posts), nil
}

func (f *fakeBackend) WatchTasks(ctx context.Context) (<-chan models.Update[*models.Task], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return snapshotOnce(ctx, f.tasks), nil
}

func (f *fakeBackend) WatchCompletions(ctx context.Context) (<-chan models.Update[*models.Completion], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return snapshotOnce(ctx, f.completions), nil
}

func (f *fakeBackend) Ping(context.Context) error { return nil }
func (f *fakeBackend) Close() error               { return nil }

// memMetadata is an in-memory metadata.Repository.
type memMetadata struct {
	mu sync.Mutex
	m  map[string]string
}

func (r *memMetadata) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[key]
	return v, ok, nil
}

func (r *memMetadata) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[key] = value
	return nil
}

func (r *memMetadata) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, key)
	return nil
}

type testApp struct {
	*App
	backend *fakeBackend
	local   *memMetadata
	out     *bytes.Buffer
	errOut  *bytes.Buffer
}

// newTestApp builds an app reading input from stdin. Passwords are read
// as plain lines.
func newTestApp(t *testing.T, backend *fakeBackend, stdin string) *testApp {
	t.Helper()
	stubTerminal(t, false, nil, nil)

	cfg := &config.Config{
		AdminEmails:         []string{"boss@team.io"},
		ProtectedAdminEmail: "boss@team.io",
		RequestTimeout:      time.Second,
	}
	local := &memMetadata{m: map[string]string{}}
	var out, errOut bytes.Buffer
	a := newApp(cfg, backend, local, logging.Nop{}, strings.NewReader(stdin), &out, &errOut)
	t.Cleanup(a.Close)

	return &testApp{App: a, backend: backend, local: local, out: &out, errOut: &errOut}
}

// signedIn resumes a login for email as the app does at startup.
func signedIn(t *testing.T, backend *fakeBackend, email, stdin string) *testApp {
	t.Helper()
	backend.identity = &models.Identity{UserID: "u1", Email: email}
	ta := newTestApp(t, backend, stdin)
	ta.Start(context.Background())
	return ta
}
