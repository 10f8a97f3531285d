package stores

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/client/models"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second
const tick = 10 * time.Millisecond

func threadIDs(threads []models.Thread) []string {
	ids := make([]string, 0, len(threads))
	for _, th := range threads {
		ids = append(ids, th.Post.ID)
	}
	return ids
}

func TestFeed_SnapshotAssemblesThreads(t *testing.T) {
	e := newEnv(t)
	e.backend.seedPost(models.Post{ID: "p1", UserID: "u2", Content: "older"})
	e.backend.seedPost(models.Post{ID: "p2", UserID: "u3", Content: "newer"})
	e.backend.seedPost(models.Post{ID: "r1", UserID: "u3", Content: "first", ReplyToID: "p1"})
	e.backend.seedPost(models.Post{ID: "r2", UserID: "u2", Content: "second", ReplyToID: "p1"})

	e.login(t, "u1", "ana@team.io")

	require.Eventually(t, func() bool { return len(e.feed.Posts()) == 2 }, waitFor, tick)
	threads := e.feed.Posts()
	assert.Equal(t, []string{"p2", "p1"}, threadIDs(threads))
	require.Len(t, threads[1].Replies, 2)
	assert.Equal(t, "r1", threads[1].Replies[0].ID)
	assert.Equal(t, "r2", threads[1].Replies[1].ID)
	assert.Empty(t, threads[0].Replies)
	assert.NoError(t, e.feed.Err())
}

func TestFeed_ClearedOnLogout(t *testing.T) {
	e := newEnv(t)
	e.backend.seedPost(models.Post{ID: "p1", UserID: "u2", Content: "hello"})
	e.login(t, "u1", "ana@team.io")
	require.Eventually(t, func() bool { return len(e.feed.Posts()) == 1 }, waitFor, tick)

	require.NoError(t, e.sessions.Logout(context.Background()))

	assert.Empty(t, e.feed.Posts())
	_, ok := e.feed.Post("p1")
	assert.False(t, ok)
}

func TestAddPost_Validation(t *testing.T) {
	e := newEnv(t)

	_, err := e.feed.AddPost(context.Background(), "hello")
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)

	e.login(t, "u1", "ana@team.io")
	_, err = e.feed.AddPost(context.Background(), " \n\t ")
	assert.ErrorIs(t, err, common.ErrEmptyContent)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, 0, e.backend.postCount())
}

func TestAddPost_SnapshotsAuthor(t *testing.T) {
	e := newEnv(t)
	e.login(t, "u1", "ana@team.io")

	p, err := e.feed.AddPost(context.Background(), "status")
	require.NoError(t, err)

	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "u1-name", p.Username)
	assert.Equal(t, common.DefaultAvatarColor, p.AvatarColor)
	assert.False(t, p.IsReply)
	require.Eventually(t, func() bool {
		_, ok := e.feed.Post(p.ID)
		return ok
	}, waitFor, tick)
}

func TestAddReply_OptimisticThenReconciled(t *testing.T) {
	e := newEnv(t)
	e.backend.seedPost(models.Post{ID: "p1", UserID: "u2", Content: "question"})
	e.login(t, "u1", "ana@team.io")
	require.Eventually(t, func() bool { return len(e.feed.Posts()) == 1 }, waitFor, tick)

	gate := make(chan struct{})
	e.backend.addPostGate = gate

	done := make(chan error, 1)
	go func() {
		_, err := e.feed.AddReply(context.Background(), "p1", "answer")
		done <- err
	}()

	require.Eventually(t, func() bool {
		replies := e.feed.Posts()[0].Replies
		return len(replies) == 1 && strings.HasPrefix(replies[0].ID, localKeyPrefix)
	}, waitFor, tick)

	close(gate)
	require.NoError(t, <-done)

	require.Eventually(t, func() bool {
		replies := e.feed.Posts()[0].Replies
		return len(replies) == 1 && !strings.HasPrefix(replies[0].ID, localKeyPrefix)
	}, waitFor, tick)

	// Later snapshots must not duplicate it.
	e.backend.seedPost(models.Post{ID: "p2", UserID: "u2", Content: "another"})
	require.Eventually(t, func() bool { return len(e.feed.Posts()) == 2 }, waitFor, tick)
	for _, th := range e.feed.Posts() {
		if th.Post.ID == "p1" {
			require.Len(t, th.Replies, 1)
			assert.Equal(t, "answer", th.Replies[0].Content)
		}
	}
}

func TestAddReply_FailureRemovesOptimisticReply(t *testing.T) {
	e := newEnv(t)
	e.backend.seedPost(models.Post{ID: "p1", UserID: "u2", Content: "question"})
	e.login(t, "u1", "ana@team.io")
	require.Eventually(t, func() bool { return len(e.feed.Posts()) == 1 }, waitFor, tick)

	e.backend.mu.Lock()
	e.backend.identity = nil
	e.backend.mu.Unlock()

	_, err := e.feed.AddReply(context.Background(), "p1", "answer")

	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.Empty(t, e.feed.Posts()[0].Replies)
}

func TestApply_SavedReplyDeletedElsewhere(t *testing.T) {
	e := newEnv(t)
	f := e.feed
	post := &models.Post{ID: "p1", UserID: "u2", Content: "question"}
	reply := &models.Post{ID: "r1", UserID: "u1", Content: "answer", IsReply: true, ReplyToID: "p1"}

	// write returned while snapshot 3 was the latest begun
	f.mu.Lock()
	f.seq = 3
	f.posts["p1"] = post
	f.replies["r1"] = reply
	f.pending["r1"] = 3
	gen := f.gen
	f.mu.Unlock()

	f.apply(gen, 3, []*models.Post{post}, nil)
	_, ok := f.Post("r1")
	require.True(t, ok, "a snapshot read before the write returned keeps the reply")

	f.apply(gen, 4, []*models.Post{post}, nil)
	_, ok = f.Post("r1")
	assert.False(t, ok, "a later snapshot without the reply removes it")

	f.apply(gen, 5, []*models.Post{post}, nil)
	assert.Empty(t, f.Posts()[0].Replies)
}

func TestApply_UnsavedReplySurvivesSnapshots(t *testing.T) {
	e := newEnv(t)
	f := e.feed
	post := &models.Post{ID: "p1", UserID: "u2", Content: "question"}
	key := localKeyPrefix + "x"

	f.mu.Lock()
	f.posts["p1"] = post
	f.replies[key] = &models.Post{ID: key, UserID: "u1", Content: "answer", IsReply: true, ReplyToID: "p1"}
	f.pending[key] = unsaved
	gen := f.gen
	f.mu.Unlock()

	f.apply(gen, 10, []*models.Post{post}, nil)
	_, ok := f.Post(key)
	assert.True(t, ok)

	f.apply(gen, 11, nil, nil)
	_, ok = f.Post(key)
	assert.False(t, ok, "the reply goes with its post")
}

func TestAddReply_ToReplyRejected(t *testing.T) {
	e := newEnv(t)
	e.backend.seedPost(models.Post{ID: "p1", UserID: "u2", Content: "question"})
	e.backend.seedPost(models.Post{ID: "r1", UserID: "u2", Content: "reply", ReplyToID: "p1"})
	e.login(t, "u1", "ana@team.io")
	require.Eventually(t, func() bool {
		_, ok := e.feed.Post("r1")
		return ok
	}, waitFor, tick)

	_, err := e.feed.AddReply(context.Background(), "r1", "nested")

	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, 2, e.backend.postCount())
}

func TestLikePost_Twice(t *testing.T) {
	e := newEnv(t)
	e.backend.seedPost(models.Post{ID: "p1", UserID: "u2", Content: "like me"})
	e.login(t, "u1", "ana@team.io")
	require.Eventually(t, func() bool { return len(e.feed.Posts()) == 1 }, waitFor, tick)

	p, err := e.feed.LikePost(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Likes)

	_, err = e.feed.LikePost(context.Background(), "p1")
	assert.ErrorIs(t, err, common.ErrAlreadyLiked)

	stored, _ := e.backend.post("p1")
	assert.Equal(t, 1, stored.Likes)
	assert.Equal(t, []string{"u1"}, stored.LikedBy)
}

func TestLikePost_UnsavedReply(t *testing.T) {
	e := newEnv(t)
	e.login(t, "u1", "ana@team.io")

	_, err := e.feed.LikePost(context.Background(), localKeyPrefix+"x")

	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestDeletePost_CascadesReplies(t *testing.T) {
	e := newEnv(t)
	e.login(t, "u1", "ana@team.io")
	e.backend.seedPost(models.Post{ID: "p1", UserID: "u1", Content: "mine"})
	e.backend.seedPost(models.Post{ID: "r1", UserID: "u2", Content: "a", ReplyToID: "p1"})
	e.backend.seedPost(models.Post{ID: "r2", UserID: "u3", Content: "b", ReplyToID: "p1"})
	e.backend.seedPost(models.Post{ID: "p2", UserID: "u2", Content: "theirs"})

	require.NoError(t, e.feed.DeletePost(context.Background(), "p1"))

	require.Equal(t, 1, e.backend.commitCount())
	assert.Len(t, e.backend.commits[0], 3)
	assert.Equal(t, 1, e.backend.postCount())
	assert.Eventually(t, func() bool {
		_, post := e.feed.Post("p1")
		_, reply := e.feed.Post("r1")
		return !post && !reply
	}, waitFor, tick)
}

func TestDeletePost_Authorization(t *testing.T) {
	t.Run("other member", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "u1", "ana@team.io")
		e.backend.seedPost(models.Post{ID: "p1", UserID: "u2", Content: "theirs"})

		err := e.feed.DeletePost(context.Background(), "p1")

		assert.ErrorIs(t, err, common.ErrForbidden)
		assert.Equal(t, 1, e.backend.postCount())
		assert.Equal(t, 0, e.backend.commitCount())
	})

	t.Run("administrator", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "u1", "boss@team.io")
		e.backend.seedPost(models.Post{ID: "p1", UserID: "u2", Content: "theirs"})

		require.NoError(t, e.feed.DeletePost(context.Background(), "p1"))
		assert.Equal(t, 0, e.backend.postCount())
	})

	t.Run("missing post", func(t *testing.T) {
		e := newEnv(t)
		e.login(t, "u1", "boss@team.io")

		assert.ErrorIs(t, e.feed.DeletePost(context.Background(), "nope"), common.ErrorNotFound)
	})
}

func TestWeeklyProgress(t *testing.T) {
	e := newEnv(t)
	for _, email := range []string{"a@team.io", "b@team.io", "c@team.io"} {
		e.backend.allow(models.ListAllowed, email)
	}
	e.backend.seedPost(models.Post{ID: "p1", UserID: "u2", Content: "one"})
	e.backend.seedPost(models.Post{ID: "p2", UserID: "u2", Content: "two"})
	e.backend.seedPost(models.Post{ID: "p3", UserID: "u3", Content: "three"})
	e.backend.seedPost(models.Post{ID: "r1", UserID: "u4", Content: "reply", ReplyToID: "p1"})
	e.login(t, "u1", "boss@team.io")
	require.Eventually(t, func() bool { return len(e.feed.Posts()) == 3 }, waitFor, tick)

	got, err := e.feed.WeeklyProgress(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Progress{Percent: 67, Submitted: 2, Total: 3}, got)
}

func TestWeeklyProgress_NonAdmin(t *testing.T) {
	e := newEnv(t)
	e.login(t, "u1", "ana@team.io")

	_, err := e.feed.WeeklyProgress(context.Background())

	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestComputeProgress(t *testing.T) {
	assert.Equal(t, Progress{}, computeProgress(0, 0))
	assert.Equal(t, Progress{Percent: 50, Submitted: 1, Total: 2}, computeProgress(1, 2))
	assert.Equal(t, Progress{Percent: 33, Submitted: 1, Total: 3}, computeProgress(1, 3))
	assert.Equal(t, Progress{Percent: 100, Submitted: 4, Total: 4}, computeProgress(4, 4))
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "0 seconds ago"},
		{time.Second, "1 second ago"},
		{59 * time.Second, "59 seconds ago"},
		{time.Minute, "1 minute ago"},
		{90 * time.Minute, "1 hour ago"},
		{5 * time.Hour, "5 hours ago"},
		{24 * time.Hour, "1 day ago"},
		{29 * 24 * time.Hour, "29 days ago"},
		{30 * 24 * time.Hour, "1 month ago"},
		{364 * 24 * time.Hour, "12 months ago"},
		{365 * 24 * time.Hour, "1 year ago"},
		{3 * 365 * 24 * time.Hour, "3 years ago"},
		{-time.Hour, "0 seconds ago"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeAgo(now, now.Add(-tt.ago)))
		})
	}
}

func TestFeedStore_TimeAgoUsesClock(t *testing.T) {
	e := newEnv(t)
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	e.feed.now = func() time.Time { return now }

	assert.Equal(t, "2 hours ago", e.feed.TimeAgo(now.Add(-2*time.Hour)))
}

func TestFeed_Synced(t *testing.T) {
	e := newEnv(t)
	assert.False(t, e.feed.Synced())

	e.login(t, "u1", "ana@team.io")
	assert.Eventually(t, e.feed.Synced, waitFor, tick)

	require.NoError(t, e.sessions.Logout(context.Background()))
	assert.False(t, e.feed.Synced())
}
