package stores

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/client/client"
	"github.com/dmitrijs2005/teamboard/internal/client/config"
	"github.com/dmitrijs2005/teamboard/internal/client/models"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/logging"
	"github.com/stretchr/testify/require"
)

type account struct {
	uid      string
	email    string
	password string
}

// fakeBackend is an in-memory client.Client.
type fakeBackend struct {
	mu sync.Mutex

	builtinAdmins []string
	identity      *models.Identity
	stored        *models.Identity // returned by Restore
	accounts      map[string]*account
	profiles      map[string]*models.Profile
	posts         map[string]*models.Post
	tasks         map[string]*models.Task
	completions   map[string]*models.Completion
	lists         map[string][]*models.EmailEntry
	commits       [][]models.Write
	seq           int
	clock         time.Time

	reauthRequired      bool
	signOutErr          error
	commitErr           error
	deleteCompletionErr error
	addPostGate         chan struct{}

	listeners map[int]func(*models.Identity)
	nextL     int
	kicks     []chan struct{}
}

var _ client.Client = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		builtinAdmins: []string{"boss@team.io"},
		accounts:      map[string]*account{},
		profiles:      map[string]*models.Profile{},
		posts:         map[string]*models.Post{},
		tasks:         map[string]*models.Task{},
		completions:   map[string]*models.Completion{},
		lists:         map[string][]*models.EmailEntry{},
		clock:         time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		listeners:     map[int]func(*models.Identity){},
	}
}

func (f *fakeBackend) nextIDLocked(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

func (f *fakeBackend) tickLocked() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fakeBackend) authedLocked() (*models.Identity, error) {
	if f.identity == nil {
		return nil, common.ErrNotAuthenticated
	}
	return f.identity, nil
}

func (f *fakeBackend) publishLocked() {
	for _, k := range f.kicks {
		select {
		case k <- struct{}{}:
		default:
		}
	}
}

// test helpers

func (f *fakeBackend) addAccount(uid, email, password, username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[email] = &account{uid: uid, email: email, password: password}
	p := models.DefaultProfile(uid, email)
	p.Username = username
	f.profiles[uid] = &p
}

func (f *fakeBackend) allow(list, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[list] = append(f.lists[list], &models.EmailEntry{ID: f.nextIDLocked("e"), Email: email, CreatedAt: f.tickLocked()})
}

func (f *fakeBackend) seedPost(p models.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = f.tickLocked()
	}
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	p.IsReply = p.ReplyToID != ""
	f.posts[p.ID] = &p
	f.publishLocked()
}

func (f *fakeBackend) seedTask(t models.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[t.ID] = &t
	f.publishLocked()
}

func (f *fakeBackend) seedCompletion(uid, taskID string, done bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := models.CompletionID(uid, taskID)
	f.completions[id] = &models.Completion{ID: id, UserID: uid, TaskID: taskID, Completed: done}
	f.publishLocked()
}

func (f *fakeBackend) post(id string) (*models.Post, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (f *fakeBackend) postCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

func (f *fakeBackend) commitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.commits)
}

func (f *fakeBackend) fireAuth(id *models.Identity) {
	f.mu.Lock()
	f.identity = id
	fns := make([]func(*models.Identity), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(id)
	}
}

// Identity

func (f *fakeBackend) isBuiltin(email string) bool {
	return slices.Contains(f.builtinAdmins, email)
}

func (f *fakeBackend) listedLocked(list, email string) bool {
	return slices.ContainsFunc(f.lists[list], func(e *models.EmailEntry) bool { return e.Email == email })
}

func (f *fakeBackend) SignUp(_ context.Context, email, password string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.isBuiltin(email) && !f.listedLocked(models.ListAllowed, email) {
		return nil, common.ErrNotAllowed
	}
	if len(password) < common.MinPasswordLength {
		return nil, common.ErrWeakPassword
	}
	if _, ok := f.accounts[email]; ok {
		return nil, common.ErrEmailInUse
	}
	uid := f.nextIDLocked("u")
	f.accounts[email] = &account{uid: uid, email: email, password: password}
	p := models.DefaultProfile(uid, email)
	p.CreatedAt = f.tickLocked()
	f.profiles[uid] = &p
	f.identity = &models.Identity{UserID: uid, Email: email}
	return &models.Identity{UserID: uid, Email: email}, nil
}

func (f *fakeBackend) SignIn(_ context.Context, email, password string) (*models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[email]
	if !ok || a.password != password {
		return nil, common.ErrInvalidCredentials
	}
	f.identity = &models.Identity{UserID: a.uid, Email: a.email}
	return &models.Identity{UserID: a.uid, Email: a.email}, nil
}

func (f *fakeBackend) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identity = nil
	return f.signOutErr
}

func (f *fakeBackend) Reauthenticate(_ context.Context, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, err := f.authedLocked()
	if err != nil {
		return err
	}
	if f.accounts[id.Email].password != password {
		return common.ErrInvalidCredentials
	}
	f.reauthRequired = false
	return nil
}

func (f *fakeBackend) UpdateEmail(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, err := f.authedLocked()
	if err != nil {
		return err
	}
	if f.reauthRequired {
		return common.ErrReauthenticationRequired
	}
	a := f.accounts[id.Email]
	delete(f.accounts, id.Email)
	a.email = email
	f.accounts[email] = a
	f.profiles[id.UserID].Email = email
	f.identity = &models.Identity{UserID: id.UserID, Email: email}
	return nil
}

func (f *fakeBackend) UpdatePassword(_ context.Context, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, err := f.authedLocked()
	if err != nil {
		return err
	}
	if f.reauthRequired {
		return common.ErrReauthenticationRequired
	}
	f.accounts[id.Email].password = password
	return nil
}

func (f *fakeBackend) CurrentIdentity() *models.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.identity == nil {
		return nil
	}
	c := *f.identity
	return &c
}

func (f *fakeBackend) Restore(context.Context) (*models.Identity, error) {
	f.mu.Lock()
	id := f.stored
	f.mu.Unlock()
	f.fireAuth(id)
	return id, nil
}

func (f *fakeBackend) OnAuthStateChanged(fn func(*models.Identity)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextL
	f.nextL++
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

// Documents

func (f *fakeBackend) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.authedLocked(); err != nil {
		return nil, err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeBackend) SaveProfile(_ context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.authedLocked(); err != nil {
		return nil, err
	}
	p, ok := f.profiles[userID]
	if !ok {
		np := models.DefaultProfile(userID, "")
		p = &np
		f.profiles[userID] = p
	}
	patch.Apply(p)
	c := *p
	return &c, nil
}

func (f *fakeBackend) ListProfiles(context.Context) ([]*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		c := *p
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.Profile) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (f *fakeBackend) DeleteProfile(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.profiles, userID)
	return nil
}

func (f *fakeBackend) AddPost(_ context.Context, np *models.NewPost) (*models.Post, error) {
	if f.addPostGate != nil {
		<-f.addPostGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id, err := f.authedLocked()
	if err != nil {
		return nil, err
	}
	p := &models.Post{
		ID:          f.nextIDLocked("p"),
		UserID:      id.UserID,
		Username:    np.Username,
		AvatarColor: np.AvatarColor,
		AvatarImage: np.AvatarImage,
		Content:     np.Content,
		CreatedAt:   f.tickLocked(),
		LikedBy:     []string{},
		IsReply:     np.ReplyToID != "",
		ReplyToID:   np.ReplyToID,
	}
	f.posts[p.ID] = p
	f.publishLocked()
	return p.Clone(), nil
}

func (f *fakeBackend) GetPost(_ context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p.Clone(), nil
}

func (f *fakeBackend) listPostsLocked(filter models.PostFilter) []*models.Post {
	var out []*models.Post
	for _, p := range f.posts {
		switch filter.Kind {
		case models.FilterTopLevel:
			if p.IsReply {
				continue
			}
		case models.FilterReplies:
			if p.ReplyToID != filter.ReplyToID {
				continue
			}
		case models.FilterAuthor:
			if p.UserID != filter.UserID {
				continue
			}
		}
		out = append(out, p.Clone())
	}
	asc := filter.Kind == models.FilterReplies
	slices.SortFunc(out, func(a, b *models.Post) int {
		if asc {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (f *fakeBackend) ListPosts(_ context.Context, filter models.PostFilter) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.authedLocked(); err != nil {
		return nil, err
	}
	return f.listPostsLocked(filter), nil
}

func (f *fakeBackend) LikePost(_ context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	who, err := f.authedLocked()
	if err != nil {
		return nil, err
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if p.LikedByUser(who.UserID) {
		return nil, common.ErrAlreadyLiked
	}
	p.LikedBy = append(p.LikedBy, who.UserID)
	p.Likes++
	f.publishLocked()
	return p.Clone(), nil
}

func (f *fakeBackend) AddTask(_ context.Context, title string, due time.Time) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, err := f.authedLocked()
	if err != nil {
		return nil, err
	}
	t := &models.Task{ID: f.nextIDLocked("t"), Title: title, DueDate: due, CreatedBy: id.UserID, CreatedAt: f.tickLocked()}
	f.tasks[t.ID] = t
	f.publishLocked()
	c := *t
	return &c, nil
}

func (f *fakeBackend) GetTask(_ context.Context, id string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeBackend) taskSnapshot() []*models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		c := *t
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.Task) int { return a.DueDate.Compare(b.DueDate) })
	return out
}

func (f *fakeBackend) ListTasks(context.Context) ([]*models.Task, error) {
	return f.taskSnapshot(), nil
}

func (f *fakeBackend) SetCompletion(_ context.Context, taskID string, completed bool) (*models.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	who, err := f.authedLocked()
	if err != nil {
		return nil, err
	}
	if _, ok := f.tasks[taskID]; !ok {
		return nil, common.ErrorNotFound
	}
	id := models.CompletionID(who.UserID, taskID)
	c := &models.Completion{ID: id, UserID: who.UserID, TaskID: taskID, Completed: completed, UpdatedAt: f.tickLocked()}
	f.completions[id] = c
	f.publishLocked()
	cc := *c
	return &cc, nil
}

func (f *fakeBackend) ListCompletions(_ context.Context, userID, taskID string) ([]*models.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Completion
	for _, c := range f.completions {
		if (taskID != "" && c.TaskID == taskID) || (taskID == "" && c.UserID == userID) {
			cc := *c
			out = append(out, &cc)
		}
	}
	return out, nil
}

func (f *fakeBackend) completionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.completions)
}

func (f *fakeBackend) DeleteCompletion(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteCompletionErr != nil {
		return f.deleteCompletionErr
	}
	if _, ok := f.completions[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.completions, id)
	f.publishLocked()
	return nil
}

func (f *fakeBackend) ListEmails(_ context.Context, list string) ([]*models.EmailEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.lists[list]), nil
}

func (f *fakeBackend) AddEmail(_ context.Context, list, email string) (*models.EmailEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listedLocked(list, email) {
		return nil, common.ErrAlreadyExists
	}
	e := &models.EmailEntry{ID: f.nextIDLocked("e"), Email: email, CreatedAt: f.tickLocked()}
	f.lists[list] = append(f.lists[list], e)
	return e, nil
}

func (f *fakeBackend) RemoveEmail(_ context.Context, list, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.listedLocked(list, email) {
		return common.ErrorNotFound
	}
	f.lists[list] = slices.DeleteFunc(f.lists[list], func(e *models.EmailEntry) bool { return e.Email == email })
	return nil
}

func (f *fakeBackend) IsEmailListed(_ context.Context, list, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listedLocked(list, email), nil
}

func (f *fakeBackend) listLen(list string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lists[list])
}

func (f *fakeBackend) Commit(_ context.Context, writes []models.Write) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits = append(f.commits, slices.Clone(writes))
	for _, w := range writes {
		switch {
		case w.Op == models.OpDelete && w.Collection == models.CollectionPosts:
			delete(f.posts, w.ID)
		case w.Op == models.OpDelete && w.Collection == models.CollectionTasks:
			delete(f.tasks, w.ID)
		case w.Op == models.OpDelete && w.Collection == models.CollectionUsers:
			delete(f.profiles, w.ID)
		case w.Op == models.OpUpdate && w.Collection == models.CollectionUsers:
			if p, ok := f.profiles[w.ID]; ok {
				w.Patch.Apply(p)
			}
		case w.Op == models.OpUpdate && w.Collection == models.CollectionPosts:
			if p, ok := f.posts[w.ID]; ok {
				if w.Patch.Username != nil {
					p.Username = *w.Patch.Username
				}
				if w.Patch.AvatarColor != nil {
					p.AvatarColor = *w.Patch.AvatarColor
				}
				if w.Patch.AvatarImage != nil {
					p.AvatarImage = *w.Patch.AvatarImage
				}
			}
		}
	}
	f.publishLocked()
	return nil
}

func (f *fakeBackend) AvatarUploadURL(context.Context) (string, string, error) {
	return "", "", common.ErrUnavailable
}

func (f *fakeBackend) AvatarURL(_ context.Context, key string) (string, error) {
	return "https://objects.example/" + key, nil
}

// Watcher

func watchFake[T any](ctx context.Context, f *fakeBackend, snapshot func() []T) <-chan models.Update[T] {
	out := make(chan models.Update[T])
	kick := make(chan struct{}, 1)
	kick <- struct{}{}

	f.mu.Lock()
	f.kicks = append(f.kicks, kick)
	f.mu.Unlock()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-kick:
			}
			select {
			case out <- models.Update[T]{Items: snapshot()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (f *fakeBackend) WatchPosts(ctx context.Context) (<-chan models.Update[*models.Post], error) {
	return watchFake(ctx, f, func() []*models.Post {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.listPostsLocked(models.PostFilter{Kind: models.FilterTopLevel})
	}), nil
}

func (f *fakeBackend) WatchTasks(ctx context.Context) (<-chan models.Update[*models.Task], error) {
	return watchFake(ctx, f, f.taskSnapshot), nil
}

func (f *fakeBackend) WatchCompletions(ctx context.Context) (<-chan models.Update[*models.Completion], error) {
	f.mu.Lock()
	id, err := f.authedLocked()
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	uid := id.UserID
	return watchFake(ctx, f, func() []*models.Completion {
		f.mu.Lock()
		defer f.mu.Unlock()
		var out []*models.Completion
		for _, c := range f.completions {
			if c.UserID == uid {
				cc := *c
				out = append(out, &cc)
			}
		}
		return out
	}), nil
}

func (f *fakeBackend) Ping(context.Context) error { return nil }
func (f *fakeBackend) Close() error               { return nil }

// memMetadata is an in-memory metadata.Repository.
type memMetadata struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemMetadata() *memMetadata { return &memMetadata{m: map[string]string{}} }

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

type env struct {
	backend  *fakeBackend
	local    *memMetadata
	sessions *SessionStore
	feed     *FeedStore
	tasks    *TaskStore
}

func testConfig() *config.Config {
	return &config.Config{
		AdminEmails:         []string{"boss@team.io"},
		ProtectedAdminEmail: "boss@team.io",
		RequestTimeout:      time.Second,
	}
}

func newEnv(t *testing.T) *env {
	t.Helper()
	b := newFakeBackend()
	local := newMemMetadata()
	sessions := NewSessionStore(b, local, testConfig(), logging.Nop{})
	e := &env{
		backend:  b,
		local:    local,
		sessions: sessions,
		feed:     NewFeedStore(b, sessions, logging.Nop{}),
		tasks:    NewTaskStore(b, sessions, logging.Nop{}),
	}
	t.Cleanup(func() {
		e.feed.Close()
		e.tasks.Close()
		e.sessions.Close()
	})
	return e
}

// login creates the account when needed and signs in.
func (e *env) login(t *testing.T, uid, email string) *Session {
	t.Helper()
	e.backend.mu.Lock()
	_, exists := e.backend.accounts[email]
	e.backend.mu.Unlock()
	if !exists {
		e.backend.addAccount(uid, email, "secret1", uid+"-name")
	}
	s, err := e.sessions.Login(context.Background(), email, "secret1")
	require.NoError(t, err)
	return s
}
