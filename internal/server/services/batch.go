package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/dbx"
	"github.com/dmitrijs2005/teamboard/internal/logging"
	"github.com/dmitrijs2005/teamboard/internal/server/changefeed"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/repomanager"
)

// BatchService applies multi-document writes atomically.
type BatchService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	access      *Access
	feed        changefeed.Publisher
	logger      logging.Logger
}

func NewBatchService(db *sql.DB, m repomanager.RepositoryManager, access *Access, feed changefeed.Publisher, logger logging.Logger) *BatchService {
	return &BatchService{db: db, repomanager: m, access: access, feed: feed, logger: logger.With("module", "batch")}
}

// Commit checks every write, then applies them all in one transaction. Any
// failure leaves the store untouched. Deleting a missing document succeeds.
func (s *BatchService) Commit(ctx context.Context, caller *models.Caller, writes []models.Write) error {
	for i := range writes {
		if err := checkWrite(&writes[i]); err != nil {
			return err
		}
	}
	if len(writes) == 0 {
		return nil
	}

	topics := make(map[string]struct{})

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		a := &batchApply{s: s, tx: tx, caller: caller, topics: topics}
		for _, w := range writes {
			if err := a.apply(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for topic := range topics {
		publish(ctx, s.feed, s.logger, topic)
	}
	return nil
}

func checkWrite(w *models.Write) error {
	if w.ID == "" {
		return fmt.Errorf("%w: write without id", common.ErrValidation)
	}
	if w.Collection != models.CollectionUserTasks {
		if err := validateID(w.ID); err != nil {
			return err
		}
	}

	switch w.Op {
	case models.OpDelete:
		switch w.Collection {
		case models.CollectionUsers, models.CollectionPosts, models.CollectionTasks, models.CollectionUserTasks:
			return nil
		}
	case models.OpUpdate:
		if w.Patch.Empty() {
			return fmt.Errorf("%w: empty update of %s/%s", common.ErrValidation, w.Collection, w.ID)
		}
		switch w.Collection {
		case models.CollectionUsers:
			return nil
		case models.CollectionPosts:
			if w.Patch.Email != nil {
				return fmt.Errorf("%w: posts carry no email", common.ErrValidation)
			}
			return nil
		}
	default:
		return fmt.Errorf("%w: unknown operation %q", common.ErrValidation, w.Op)
	}
	return fmt.Errorf("%w: %s is not supported on %q", common.ErrValidation, w.Op, w.Collection)
}

// batchApply holds the per-commit state: the transaction, the caller and
// the topics to announce afterwards.
type batchApply struct {
	s       *BatchService
	tx      dbx.DBTX
	caller  *models.Caller
	topics  map[string]struct{}
	isAdmin *bool
}

func (a *batchApply) admin(ctx context.Context) (bool, error) {
	if a.isAdmin == nil {
		ok, err := a.s.access.IsAdmin(ctx, a.tx, a.caller.Email)
		if err != nil {
			return false, err
		}
		a.isAdmin = &ok
	}
	return *a.isAdmin, nil
}

func (a *batchApply) requireAdmin(ctx context.Context) error {
	ok, err := a.admin(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrForbidden
	}
	return nil
}

// requireOwnerOrAdmin lets owners through without a lookup of the admin list.
func (a *batchApply) requireOwnerOrAdmin(ctx context.Context, owner string) error {
	if owner == a.caller.UserID {
		return nil
	}
	return a.requireAdmin(ctx)
}

func (a *batchApply) apply(ctx context.Context, w models.Write) error {
	rm := a.s.repomanager

	switch w.Collection {
	case models.CollectionUsers:
		if w.Op == models.OpUpdate {
			if w.ID != a.caller.UserID {
				return common.ErrForbidden
			}
			_, err := rm.Profiles(a.tx).Save(ctx, w.ID, w.Patch)
			return err
		}
		if err := a.requireAdmin(ctx); err != nil {
			return err
		}
		return rm.Profiles(a.tx).Delete(ctx, w.ID)

	case models.CollectionPosts:
		repo := rm.Posts(a.tx)
		post, err := repo.Get(ctx, w.ID)
		if err != nil {
			if w.Op == models.OpDelete && isNotFound(err) {
				return nil
			}
			return err
		}
		a.topics[changefeed.TopicPosts] = struct{}{}
		if w.Op == models.OpUpdate {
			if post.UserID != a.caller.UserID {
				return common.ErrForbidden
			}
			return repo.UpdateSnapshot(ctx, w.ID, w.Patch.AuthorOnly())
		}
		owner := post.UserID
		if post.IsReply && owner != a.caller.UserID {
			// The author of a thread may clear its replies.
			parent, err := repo.Get(ctx, post.ReplyToID)
			if err != nil && !isNotFound(err) {
				return err
			}
			if parent != nil && parent.UserID == a.caller.UserID {
				owner = parent.UserID
			}
		}
		if err := a.requireOwnerOrAdmin(ctx, owner); err != nil {
			return err
		}
		return repo.Delete(ctx, w.ID)

	case models.CollectionTasks:
		if err := a.requireAdmin(ctx); err != nil {
			return err
		}
		completions, err := rm.Completions(a.tx).ListByTask(ctx, w.ID)
		if err != nil {
			return err
		}
		for _, c := range completions {
			a.topics[changefeed.CompletionsTopic(c.UserID)] = struct{}{}
		}
		a.topics[changefeed.TopicTasks] = struct{}{}
		return rm.Tasks(a.tx).Delete(ctx, w.ID)

	case models.CollectionUserTasks:
		repo := rm.Completions(a.tx)
		c, err := repo.Get(ctx, w.ID)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		if err := a.requireOwnerOrAdmin(ctx, c.UserID); err != nil {
			return err
		}
		a.topics[changefeed.CompletionsTopic(c.UserID)] = struct{}{}
		return repo.Delete(ctx, w.ID)
	}

	return fmt.Errorf("%w: unknown collection %q", common.ErrValidation, w.Collection)
}
