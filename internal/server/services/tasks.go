package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/logging"
	"github.com/dmitrijs2005/teamboard/internal/server/changefeed"
	"github.com/dmitrijs2005/teamboard/internal/server/models"
	"github.com/dmitrijs2005/teamboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/teamboard/internal/timex"
	"github.com/google/uuid"
)

// TaskService serves tasks and the per-user completion records.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	access      *Access
	feed        changefeed.Publisher
	logger      logging.Logger
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, access *Access, feed changefeed.Publisher, logger logging.Logger) *TaskService {
	return &TaskService{db: db, repomanager: m, access: access, feed: feed, logger: logger.With("module", "tasks")}
}

func (s *TaskService) Add(ctx context.Context, caller *models.Caller, title string, dueDate time.Time) (*models.Task, error) {
	if err := s.access.RequireAdmin(ctx, s.db, caller); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	if dueDate.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", common.ErrValidation)
	}

	task, err := s.repomanager.Tasks(s.db).Create(ctx, &models.Task{
		ID:        uuid.NewString(),
		Title:     title,
		DueDate:   timex.StartOfDay(dueDate),
		CreatedBy: caller.UserID,
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.feed, s.logger, changefeed.TopicTasks)
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Tasks(s.db).Get(ctx, id)
}

func (s *TaskService) List(ctx context.Context) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).List(ctx)
}

// SetCompletion records the caller's completion flag for a task. The task
// must exist; nothing is written otherwise.
func (s *TaskService) SetCompletion(ctx context.Context, caller *models.Caller, taskID string, completed bool) (*models.Completion, error) {
	if err := validateID(taskID); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Tasks(s.db).Get(ctx, taskID); err != nil {
		return nil, err
	}

	c, err := s.repomanager.Completions(s.db).Upsert(ctx, &models.Completion{
		UserID:    caller.UserID,
		TaskID:    taskID,
		Completed: completed,
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.feed, s.logger, changefeed.CompletionsTopic(caller.UserID))
	return c, nil
}

// ListCompletions returns the records of one task (administrators only) or of
// one user. An empty userID means the caller; other users need administrator
// rights.
func (s *TaskService) ListCompletions(ctx context.Context, caller *models.Caller, userID, taskID string) ([]*models.Completion, error) {
	repo := s.repomanager.Completions(s.db)

	if taskID != "" {
		if err := s.access.RequireAdmin(ctx, s.db, caller); err != nil {
			return nil, err
		}
		if err := validateID(taskID); err != nil {
			return nil, err
		}
		return repo.ListByTask(ctx, taskID)
	}

	if userID == "" {
		userID = caller.UserID
	}
	if userID != caller.UserID {
		if err := s.access.RequireAdmin(ctx, s.db, caller); err != nil {
			return nil, err
		}
	}
	return repo.ListByUser(ctx, userID)
}

// DeleteCompletion removes one record. Owners and administrators only.
func (s *TaskService) DeleteCompletion(ctx context.Context, caller *models.Caller, id string) error {
	repo := s.repomanager.Completions(s.db)

	c, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != caller.UserID {
		if err := s.access.RequireAdmin(ctx, s.db, caller); err != nil {
			return err
		}
	}
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	publish(ctx, s.feed, s.logger, changefeed.CompletionsTopic(c.UserID))
	return nil
}
