package stores

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/teamboard/internal/client/client"
	"github.com/dmitrijs2005/teamboard/internal/client/models"
	"github.com/dmitrijs2005/teamboard/internal/common"
	"github.com/dmitrijs2005/teamboard/internal/logging"
	"github.com/dmitrijs2005/teamboard/internal/timex"
)

// TaskStore mirrors the shared task list and the signed-in user's
// completion flags.
type TaskStore struct {
	backend  client.Client
	sessions *SessionStore
	logger   logging.Logger
	now      func() time.Time

	mu          sync.Mutex
	tasks       map[string]*models.Task
	completions map[string]*models.Completion // by task id
	gen         uint64
	synced      [2]bool // tasks, completions
	cancel      context.CancelFunc
	err         error
	changes     chan struct{}

	wg sync.WaitGroup
}

func NewTaskStore(backend client.Client, sessions *SessionStore, logger logging.Logger) *TaskStore {
	t := &TaskStore{
		backend:     backend,
		sessions:    sessions,
		logger:      logger.With("store", "tasks"),
		now:         time.Now,
		tasks:       make(map[string]*models.Task),
		completions: make(map[string]*models.Completion),
		changes:     make(chan struct{}, 1),
	}
	sessions.OnSessionChange(t.onSessionChange)
	return t
}

func (t *TaskStore) onSessionChange(ctx context.Context, s *Session) {
	t.stop()
	if s != nil {
		t.start()
	}
}

func (t *TaskStore) start() {
	ctx, cancel := context.WithCancel(context.Background())

	t.mu.Lock()
	t.gen++
	gen := t.gen
	t.cancel = cancel
	t.err = nil
	t.synced = [2]bool{}
	t.mu.Unlock()

	t.wg.Add(2)
	go t.watchTasks(ctx, gen)
	go t.watchCompletions(ctx, gen)
}

func (t *TaskStore) stop() {
	t.mu.Lock()
	t.gen++
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	t.wg.Wait()

	t.mu.Lock()
	clear(t.tasks)
	clear(t.completions)
	t.synced = [2]bool{}
	t.mu.Unlock()
	t.signal()
}

// Close ends both subscriptions.
func (t *TaskStore) Close() {
	t.stop()
}

func (t *TaskStore) watchTasks(ctx context.Context, gen uint64) {
	defer t.wg.Done()

	updates, err := t.backend.WatchTasks(ctx)
	if err != nil {
		t.fail(ctx, gen, err)
		return
	}
	for u := range updates {
		if u.Err != nil {
			t.fail(ctx, gen, u.Err)
			return
		}

		next := make(map[string]*models.Task, len(u.Items))
		for _, task := range u.Items {
			next[task.ID] = task
		}
		t.replace(gen, func() {
			t.tasks = next
			t.synced[0] = true
		})
	}
}

func (t *TaskStore) watchCompletions(ctx context.Context, gen uint64) {
	defer t.wg.Done()

	updates, err := t.backend.WatchCompletions(ctx)
	if err != nil {
		t.fail(ctx, gen, err)
		return
	}
	for u := range updates {
		if u.Err != nil {
			t.fail(ctx, gen, u.Err)
			return
		}

		next := make(map[string]*models.Completion, len(u.Items))
		for _, c := range u.Items {
			next[c.TaskID] = c
		}
		t.replace(gen, func() {
			t.completions = next
			t.synced[1] = true
		})
	}
}

func (t *TaskStore) replace(gen uint64, fn func()) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	fn()
	t.mu.Unlock()
	t.signal()
}

func (t *TaskStore) fail(ctx context.Context, gen uint64, err error) {
	if ctx.Err() != nil {
		return
	}
	t.logger.Error(ctx, "task subscription ended", "error", err)

	t.mu.Lock()
	if gen == t.gen {
		t.err = err
	}
	t.mu.Unlock()
	t.signal()
}

func (t *TaskStore) signal() {
	select {
	case t.changes <- struct{}{}:
	default:
	}
}

// Changes fires after the tasks or completions changed. Ticks coalesce.
func (t *TaskStore) Changes() <-chan struct{} {
	return t.changes
}

// Synced reports whether both subscriptions delivered a snapshot since the
// session started.
func (t *TaskStore) Synced() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.synced[0] && t.synced[1]
}

func (t *TaskStore) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Tasks returns the tasks ordered by due date, earliest first.
func (t *TaskStore) Tasks() []*models.Task {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*models.Task, 0, len(t.tasks))
	for _, task := range t.tasks {
		c := *task
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *models.Task) int {
		return cmp.Or(a.DueDate.Compare(b.DueDate), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// IsCompleted reports the caller's flag for a task. No record means no.
func (t *TaskStore) IsCompleted(taskID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.completions[taskID]
	return ok && c.Completed
}

// AddTask creates a task due on the calendar day of dueDate.
func (t *TaskStore) AddTask(ctx context.Context, title string, dueDate time.Time) (*models.Task, error) {
	if _, err := t.sessions.requireAdmin(); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	if dueDate.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", common.ErrValidation)
	}

	return t.backend.AddTask(ctx, title, timex.StartOfDay(dueDate))
}

// DeleteTask removes the task, then each completion record of it one by
// one. The task delete decides the outcome: completion deletes that fail
// are logged and skipped.
func (t *TaskStore) DeleteTask(ctx context.Context, taskID string) error {
	if _, err := t.sessions.requireAdmin(); err != nil {
		return err
	}

	completions, err := t.backend.ListCompletions(ctx, "", taskID)
	if err != nil {
		return err
	}

	if err := t.backend.Commit(ctx, []models.Write{models.DeleteWrite(models.CollectionTasks, taskID)}); err != nil {
		return err
	}

	for _, c := range completions {
		err := t.backend.DeleteCompletion(ctx, c.ID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			t.logger.Warn(ctx, "delete completion", "task", taskID, "completion", c.ID, "error", err)
		}
	}

	t.mu.Lock()
	delete(t.tasks, taskID)
	delete(t.completions, taskID)
	t.mu.Unlock()
	t.signal()

	return nil
}

// ToggleCompletion sets the caller's flag for a task. A task that does not
// exist gets no record.
func (t *TaskStore) ToggleCompletion(ctx context.Context, taskID string, completed bool) error {
	if _, err := t.sessions.requireIdentity(); err != nil {
		return err
	}

	t.mu.Lock()
	gen := t.gen
	t.mu.Unlock()

	if _, err := t.backend.GetTask(ctx, taskID); err != nil {
		return err
	}

	c, err := t.backend.SetCompletion(ctx, taskID, completed)
	if err != nil {
		return err
	}

	t.replace(gen, func() { t.completions[taskID] = c })
	return nil
}

// DaysUntilDue counts calendar days from today to dueDate; negative when
// the task is overdue.
func (t *TaskStore) DaysUntilDue(dueDate time.Time) int {
	return timex.DaysBetween(t.now(), dueDate)
}

// FormatDueDate renders the distance to dueDate, such as "2 days overdue",
// "due today" or "3 days remaining".
func (t *TaskStore) FormatDueDate(dueDate time.Time) string {
	return FormatDueDate(t.DaysUntilDue(dueDate))
}

func FormatDueDate(days int) string {
	switch {
	case days < 0:
		return plural(int64(-days), "day") + " overdue"
	case days == 0:
		return "due today"
	default:
		return plural(int64(days), "day") + " remaining"
	}
}
