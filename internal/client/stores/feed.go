package stores

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/client/client"
	"github.com/dmitrijs2005/teamboard/internal/client/models"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/logging"
	"github.com/google/uuid"
)

// localKeyPrefix marks replies that have not been written yet.
const localKeyPrefix = "local-"

// unsaved marks a pending reply no snapshot can confirm or drop.
const unsaved = ^uint64(0)

// FeedStore mirrors the top-level posts and their replies.
//
// Both live in maps keyed by document id, so a snapshot overwrites whatever
// the store holds for the same id. Replies added from this store are shown
// at once under a temporary key, moved to their real id when the write
// returns and kept until a snapshot contains them. A saved reply missing
// from a snapshot whose reads began after the write returned was deleted
// and is dropped.
type FeedStore struct {
	backend  client.Client
	sessions *SessionStore
	logger   logging.Logger
	now      func() time.Time

	mu      sync.Mutex
	posts   map[string]*models.Post
	replies map[string]*models.Post
	pending map[string]uint64 // reply id -> last snapshot begun before its write returned
	seq     uint64
	gen     uint64
	synced  bool
	cancel  context.CancelFunc
	err     error
	changes chan struct{}

	wg sync.WaitGroup
}

func NewFeedStore(backend client.Client, sessions *SessionStore, logger logging.Logger) *FeedStore {
	f := &FeedStore{
		backend:  backend,
		sessions: sessions,
		logger:   logger.With("store", "feed"),
		now:      time.Now,
		posts:    make(map[string]*models.Post),
		replies:  make(map[string]*models.Post),
		pending:  make(map[string]uint64),
		changes:  make(chan struct{}, 1),
	}
	sessions.OnSessionChange(f.onSessionChange)
	return f
}

func (f *FeedStore) onSessionChange(ctx context.Context, s *Session) {
	f.stop()
	if s != nil {
		f.start()
	}
}

func (f *FeedStore) start() {
	ctx, cancel := context.WithCancel(context.Background())

	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.cancel = cancel
	f.err = nil
	f.synced = false
	f.mu.Unlock()

	f.wg.Add(1)
	go f.run(ctx, gen)
}

// stop cancels the subscription, waits for it to finish and clears the
// mirror. Snapshots still in flight carry an old generation and are dropped.
func (f *FeedStore) stop() {
	f.mu.Lock()
	f.gen++
	cancel := f.cancel
	f.cancel = nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	f.wg.Wait()

	f.mu.Lock()
	clear(f.posts)
	clear(f.replies)
	clear(f.pending)
	f.synced = false
	f.mu.Unlock()
	f.signal()
}

// Close ends the subscription.
func (f *FeedStore) Close() {
	f.stop()
}

func (f *FeedStore) run(ctx context.Context, gen uint64) {
	defer f.wg.Done()

	updates, err := f.backend.WatchPosts(ctx)
	if err != nil {
		f.fail(ctx, gen, err)
		return
	}

	for u := range updates {
		if u.Err != nil {
			f.fail(ctx, gen, u.Err)
			return
		}

		started := f.beginSnapshot()
		replies, err := f.fetchReplies(ctx, u.Items)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			f.logger.Warn(ctx, "fetch replies", "error", err)
			f.setErr(gen, err)
			continue
		}
		f.apply(gen, started, u.Items, replies)
	}
}

// beginSnapshot numbers a snapshot before its replies are read.
func (f *FeedStore) beginSnapshot() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return f.seq
}

// fetchReplies reads the replies of every post, oldest first.
func (f *FeedStore) fetchReplies(ctx context.Context, posts []*models.Post) ([]*models.Post, error) {
	var all []*models.Post
	for _, p := range posts {
		replies, err := f.backend.ListPosts(ctx, models.PostFilter{Kind: models.FilterReplies, ReplyToID: p.ID})
		if err != nil {
			return nil, fmt.Errorf("replies of %s: %w", p.ID, err)
		}
		all = append(all, replies...)
	}
	return all, nil
}

// apply replaces the mirror with a snapshot whose replies were read after
// beginSnapshot returned started. Pending replies the snapshot does not
// contain are kept while their post exists and the snapshot may predate
// their write.
func (f *FeedStore) apply(gen, started uint64, posts, replies []*models.Post) {
	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		return
	}

	nextPosts := make(map[string]*models.Post, len(posts))
	for _, p := range posts {
		nextPosts[p.ID] = p
	}
	nextReplies := make(map[string]*models.Post, len(replies))
	for _, r := range replies {
		nextReplies[r.ID] = r
		delete(f.pending, r.ID)
	}
	for id, mark := range f.pending {
		r, ok := f.replies[id]
		if !ok || (mark != unsaved && started > mark) {
			delete(f.pending, id)
			continue
		}
		if _, ok := nextPosts[r.ReplyToID]; !ok {
			delete(f.pending, id)
			continue
		}
		nextReplies[id] = r
	}

	f.posts = nextPosts
	f.replies = nextReplies
	f.err = nil
	f.synced = true
	f.mu.Unlock()

	f.signal()
}

func (f *FeedStore) fail(ctx context.Context, gen uint64, err error) {
	if ctx.Err() != nil {
		return
	}
	f.logger.Error(ctx, "post subscription ended", "error", err)
	f.setErr(gen, err)
}

func (f *FeedStore) setErr(gen uint64, err error) {
	f.mu.Lock()
	if gen == f.gen {
		f.err = err
	}
	f.mu.Unlock()
	f.signal()
}

func (f *FeedStore) signal() {
	select {
	case f.changes <- struct{}{}:
	default:
	}
}

// Changes fires after the mirror changed. Ticks coalesce.
func (f *FeedStore) Changes() <-chan struct{} {
	return f.changes
}

// Synced reports whether a snapshot arrived since the session started.
func (f *FeedStore) Synced() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.synced
}

// Err is the error that ended or interrupted the subscription.
func (f *FeedStore) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Posts returns the threads, newest post first, each with its replies
// oldest first.
func (f *FeedStore) Posts() []models.Thread {
	f.mu.Lock()
	defer f.mu.Unlock()

	byParent := make(map[string][]*models.Post)
	for _, r := range f.replies {
		byParent[r.ReplyToID] = append(byParent[r.ReplyToID], r.Clone())
	}

	threads := make([]models.Thread, 0, len(f.posts))
	for _, p := range f.posts {
		replies := byParent[p.ID]
		slices.SortFunc(replies, func(a, b *models.Post) int {
			return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
		})
		threads = append(threads, models.Thread{Post: p.Clone(), Replies: replies})
	}
	slices.SortFunc(threads, func(a, b models.Thread) int {
		return cmp.Or(b.Post.CreatedAt.Compare(a.Post.CreatedAt), cmp.Compare(a.Post.ID, b.Post.ID))
	})
	return threads
}

// Post looks a post or reply up in the mirror.
func (f *FeedStore) Post(id string) (*models.Post, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.posts[id]; ok {
		return p.Clone(), true
	}
	if r, ok := f.replies[id]; ok {
		return r.Clone(), true
	}
	return nil, false
}

func (f *FeedStore) newPost(content, replyTo string) (*Session, *models.NewPost, error) {
	s := f.sessions.Current()
	if s == nil {
		return nil, nil, common.ErrNotAuthenticated
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil, common.ErrEmptyContent
	}
	return s, &models.NewPost{
		Content:     content,
		ReplyToID:   replyTo,
		Username:    s.Profile.Username,
		AvatarColor: cmp.Or(s.Profile.AvatarColor, common.DefaultAvatarColor),
		AvatarImage: s.Profile.AvatarImage,
	}, nil
}

// AddPost writes a top-level post carrying the author's current name and
// avatar.
func (f *FeedStore) AddPost(ctx context.Context, content string) (*models.Post, error) {
	_, np, err := f.newPost(content, "")
	if err != nil {
		return nil, err
	}
	return f.backend.AddPost(ctx, np)
}

// AddReply writes a reply and shows it right away.
func (f *FeedStore) AddReply(ctx context.Context, postID, content string) (*models.Post, error) {
	s, np, err := f.newPost(content, postID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	if _, ok := f.posts[postID]; !ok {
		if _, isReply := f.replies[postID]; isReply {
			f.mu.Unlock()
			return nil, fmt.Errorf("%w: replies attach to top-level posts only", common.ErrValidation)
		}
	}
	gen := f.gen
	key := localKeyPrefix + uuid.NewString()
	f.replies[key] = &models.Post{
		ID:          key,
		UserID:      s.Identity.UserID,
		Username:    np.Username,
		AvatarColor: np.AvatarColor,
		AvatarImage: np.AvatarImage,
		Content:     np.Content,
		CreatedAt:   f.now(),
		LikedBy:     []string{},
		IsReply:     true,
		ReplyToID:   postID,
	}
	f.pending[key] = unsaved
	f.mu.Unlock()
	f.signal()

	reply, err := f.backend.AddPost(ctx, np)

	f.mu.Lock()
	delete(f.replies, key)
	delete(f.pending, key)
	if err == nil && gen == f.gen {
		if _, seen := f.replies[reply.ID]; !seen {
			f.replies[reply.ID] = reply.Clone()
			f.pending[reply.ID] = f.seq
		}
	}
	f.mu.Unlock()
	f.signal()

	if err != nil {
		return nil, err
	}
	return reply, nil
}

// LikePost adds the caller to the post's likers. A second like by the same
// user fails with ErrAlreadyLiked.
func (f *FeedStore) LikePost(ctx context.Context, postID string) (*models.Post, error) {
	s := f.sessions.Current()
	if s == nil {
		return nil, common.ErrNotAuthenticated
	}
	if strings.HasPrefix(postID, localKeyPrefix) {
		return nil, fmt.Errorf("%w: post is not saved yet", common.ErrValidation)
	}
	if p, ok := f.Post(postID); ok && p.LikedByUser(s.Identity.UserID) {
		return nil, common.ErrAlreadyLiked
	}

	p, err := f.backend.LikePost(ctx, postID)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	if _, ok := f.posts[p.ID]; ok {
		f.posts[p.ID] = p.Clone()
	} else if _, ok := f.replies[p.ID]; ok {
		f.replies[p.ID] = p.Clone()
	}
	f.mu.Unlock()
	f.signal()

	return p, nil
}

// DeletePost removes a post and all of its replies in one batch. Only the
// author or an administrator may do so.
func (f *FeedStore) DeletePost(ctx context.Context, postID string) error {
	s := f.sessions.Current()
	if s == nil {
		return common.ErrNotAuthenticated
	}

	p, err := f.backend.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if p.UserID != s.Identity.UserID && !s.Admin {
		return common.ErrForbidden
	}

	writes := []models.Write{}
	if !p.IsReply {
		replies, err := f.backend.ListPosts(ctx, models.PostFilter{Kind: models.FilterReplies, ReplyToID: postID})
		if err != nil {
			return err
		}
		for _, r := range replies {
			writes = append(writes, models.DeleteWrite(models.CollectionPosts, r.ID))
		}
	}
	writes = append(writes, models.DeleteWrite(models.CollectionPosts, postID))

	if err := f.backend.Commit(ctx, writes); err != nil {
		return err
	}

	f.mu.Lock()
	delete(f.posts, postID)
	delete(f.replies, postID)
	delete(f.pending, postID)
	for id, r := range f.replies {
		if r.ReplyToID == postID {
			delete(f.replies, id)
			delete(f.pending, id)
		}
	}
	f.mu.Unlock()
	f.signal()

	f.logger.Debug(ctx, "post deleted", "post", postID, "documents", len(writes))
	return nil
}

// Progress is the share of allow-listed members who wrote a top-level post.
type Progress struct {
	Percent   int
	Submitted int
	Total     int
}

// WeeklyProgress counts the distinct authors of the mirrored top-level posts
// against the size of the allow-list.
func (f *FeedStore) WeeklyProgress(ctx context.Context) (Progress, error) {
	if _, err := f.sessions.requireAdmin(); err != nil {
		return Progress{}, err
	}

	allowed, err := f.backend.ListEmails(ctx, models.ListAllowed)
	if err != nil {
		return Progress{}, err
	}

	f.mu.Lock()
	authors := make(map[string]struct{})
	for _, p := range f.posts {
		if !p.IsReply {
			authors[p.UserID] = struct{}{}
		}
	}
	f.mu.Unlock()

	return computeProgress(len(authors), len(allowed)), nil
}

func computeProgress(submitted, total int) Progress {
	p := Progress{Submitted: submitted, Total: total}
	if total > 0 {
		p.Percent = int(float64(submitted)/float64(total)*100 + 0.5)
	}
	return p
}

// TimeAgo renders how long ago t was, relative to now.
func (f *FeedStore) TimeAgo(t time.Time) string {
	return TimeAgo(f.now(), t)
}

var ageUnits = []struct {
	seconds int64
	name    string
}{
	{31536000, "year"},
	{2592000, "month"},
	{86400, "day"},
	{3600, "hour"},
	{60, "minute"},
}

// TimeAgo renders the age of t in its largest whole unit, such as
// "3 days ago". Future times count as zero seconds.
func TimeAgo(now, t time.Time) string {
	secs := int64(now.Sub(t) / time.Second)
	if secs < 0 {
		secs = 0
	}
	for _, u := range ageUnits {
		if n := secs / u.seconds; n >= 1 {
			return plural(n, u.name) + " ago"
		}
	}
	return plural(secs, "second") + " ago"
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
