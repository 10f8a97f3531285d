package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/logging"
	"github.com/dmitrijs2005/teamboard/internal/server/changefeed"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	feed        changefeed.Publisher
	logger      logging.Logger
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, feed changefeed.Publisher, logger logging.Logger) *PostService {
	return &PostService{db: db, repomanager: m, feed: feed, logger: logger.With("module", "posts")}
}

// Add stores a post authored by caller. post carries the content, the
// optional parent and the author snapshot; everything else is assigned here.
// Replies may only target top-level posts.
func (s *PostService) Add(ctx context.Context, caller *models.Caller, post *models.Post) (*models.Post, error) {
	post.Content = strings.TrimSpace(post.Content)
	if post.Content == "" {
		return nil, common.ErrEmptyContent
	}

	repo := s.repomanager.Posts(s.db)

	if post.ReplyToID != "" {
		if err := validateID(post.ReplyToID); err != nil {
			return nil, err
		}
		parent, err := repo.Get(ctx, post.ReplyToID)
		if err != nil {
			return nil, err
		}
		if parent.IsReply {
			return nil, fmt.Errorf("%w: cannot reply to a reply", common.ErrValidation)
		}
	}

	if post.AvatarColor == "" {
		post.AvatarColor = common.DefaultAvatarColor
	}
	post.ID = uuid.NewString()
	post.UserID = caller.UserID
	post.IsReply = post.ReplyToID != ""

	created, err := repo.Create(ctx, post)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.feed, s.logger, changefeed.TopicPosts)
	return created, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Posts(s.db).Get(ctx, id)
}

func (s *PostService) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	if filter.ReplyToID != "" {
		if err := validateID(filter.ReplyToID); err != nil {
			return nil, err
		}
	}
	if filter.UserID != "" {
		if err := validateID(filter.UserID); err != nil {
			return nil, err
		}
	}
	return s.repomanager.Posts(s.db).List(ctx, filter)
}

// Like adds the caller to the post's likers. A second like by the same
// caller fails with common.ErrAlreadyLiked and changes nothing.
func (s *PostService) Like(ctx context.Context, caller *models.Caller, id string) (*models.Post, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	post, err := s.repomanager.Posts(s.db).Like(ctx, id, caller.UserID)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.feed, s.logger, changefeed.TopicPosts)
	return post, nil
}
